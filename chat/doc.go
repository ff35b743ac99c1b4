// Package chat contains the conversation data types exchanged with
// completion providers: roles, messages, tool calls and tool declarations.
// The types mirror the wire shapes used by chat completion APIs while
// keeping the surface Go-friendly (exported structs with json tags, string
// constants for roles, helper constructors and validation).
//
// The package is intentionally free of rendering and transport logic:
// adapters build message sequences from these types and provider bindings
// translate them to vendor request formats.
package chat
