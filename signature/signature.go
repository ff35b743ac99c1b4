package signature

import (
	"fmt"

	"github.com/promptsig/promptsig-go/chat"
	"github.com/promptsig/promptsig-go/schema"
)

// Demo pairs example inputs with the outputs the model should produce for
// them. Demos are immutable once constructed; adapters borrow them to
// render few-shot examples.
type Demo[I, O any] struct {
	Inputs  I `json:"inputs"`
	Outputs O `json:"outputs"`
}

// Signature is a caller-declared task contract: the input and output shapes
// of one generation task plus the hooks that route special fields (history,
// tool declarations, tool-call results) around normal prompt rendering.
//
// Prompt schemas must exclude every special field, and FilterSpecialFields
// must strip the same fields from the rendered inputs. Base enforces both
// sides of that invariant structurally; hand-written implementations carry
// the obligation themselves.
type Signature[I, O any] interface {
	Name() string
	Description() string

	Instructions() string
	SetInstructions(instructions string)

	// PromptInputSchema and PromptOutputSchema describe the fields adapters
	// render against. Both are computed before any provider call.
	PromptInputSchema() *schema.Schema
	PromptOutputSchema() *schema.Schema

	// ExtractHistory pulls a history-category field's content into a message
	// list, or returns nil when the signature has none.
	ExtractHistory(inputs I) []chat.Message

	// ExtractTools returns the tool declarations carried by the inputs, or
	// nil when the signature has none.
	ExtractTools(inputs I) []chat.AvailableTool

	// FilterSpecialFields returns a copy of inputs with special fields
	// zeroed. It must not mutate the original.
	FilterSpecialFields(inputs I) I

	// InjectToolCalls writes provider tool calls into the designated output
	// field. A *MergeError signals that the output type cannot hold them.
	InjectToolCalls(outputs *O, calls []chat.ToolCall) error

	// MergeSpecialOutputs is the final assembly step, invoked once per
	// successful generation attempt.
	MergeSpecialOutputs(outputs O, calls []chat.ToolCall) (O, error)
}

// MergeError indicates a signature hook rejected the assembled output. It
// is never retried by the generation loop: a structural mismatch in
// caller-provided hooks cannot self-correct through resampling.
type MergeError struct {
	Signature string
	Field     string
	Err       error
}

func (e *MergeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("signature %s: cannot merge into field %s: %v", e.Signature, e.Field, e.Err)
	}
	return fmt.Sprintf("signature %s: merge failed: %v", e.Signature, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }
