// Package adapter translates between typed task records and the wire text
// exchanged with completion providers, and owns the generation control
// loop that drives a provider with bounded retries.
//
// Two rendering strategies are provided. ChatAdapter frames every field as
// a `[[ ## name ## ]]` section terminated by a `[[ ## completed ## ]]`
// sentinel; JSONAdapter asks for and parses a single JSON object. Both
// implement the Adapter interface over JSON-level field values, leaving
// typed marshalling to the generic Generate function, so the control loop
// exists exactly once.
package adapter
