// Package schema reflects Go struct types into structural JSON schema
// documents and extracts per-field display metadata from them.
//
// Reflection itself is delegated to invopop/jsonschema; this package treats
// the resulting document as the source of truth and navigates its
// properties/required members. Extraction preserves struct declaration
// order, and type labels are normalized to a small fixed vocabulary so
// adapters can render them directly into prompts.
package schema
