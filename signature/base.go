package signature

import (
	"fmt"

	"github.com/promptsig/promptsig-go/chat"
	"github.com/promptsig/promptsig-go/schema"
)

// Base is the stock Signature implementation. Special fields are declared
// through a manifest of named fields on the Builder; the named fields are
// checked against the reflected schemas once, at Build, and excluded from
// the prompt schemas from then on.
type Base[I, O any] struct {
	name         string
	desc         string
	instructions string

	inputSchema  *schema.Schema // full, as declared
	outputSchema *schema.Schema
	promptIn     *schema.Schema // manifest fields removed
	promptOut    *schema.Schema

	historyField string
	historyFn    func(I) []chat.Message

	toolsField string
	toolsFn    func(I) []chat.AvailableTool

	toolCallsField string
	injectFn       func(*O, []chat.ToolCall) error

	filterFn func(I) I
	mergeFn  func(O, []chat.ToolCall) (O, error)
}

// Builder assembles a Base signature. Obtain one with Define, chain the
// configuration calls, then Build.
type Builder[I, O any] struct {
	base Base[I, O]
}

// Define starts a signature declaration for the input type I and output
// type O.
func Define[I, O any](name string) *Builder[I, O] {
	b := &Builder[I, O]{}
	b.base.name = name
	return b
}

// Description sets the human-readable task description.
func (b *Builder[I, O]) Description(desc string) *Builder[I, O] {
	b.base.desc = desc
	return b
}

// Instructions sets the initial instruction text.
func (b *Builder[I, O]) Instructions(instructions string) *Builder[I, O] {
	b.base.instructions = instructions
	return b
}

// HistoryField registers the named input field as conversation history.
// The field is excluded from the prompt input schema and extract pulls its
// content into a message list instead.
func (b *Builder[I, O]) HistoryField(field string, extract func(I) []chat.Message) *Builder[I, O] {
	b.base.historyField = field
	b.base.historyFn = extract
	return b
}

// ToolsField registers the named input field as a tool declaration set.
// The field is excluded from the prompt input schema and extract yields
// the declarations passed to the provider config instead.
func (b *Builder[I, O]) ToolsField(field string, extract func(I) []chat.AvailableTool) *Builder[I, O] {
	b.base.toolsField = field
	b.base.toolsFn = extract
	return b
}

// ToolCallsField registers the named output field as the destination for
// provider tool calls. The field is excluded from the prompt output schema
// and inject writes the calls into it after parsing.
func (b *Builder[I, O]) ToolCallsField(field string, inject func(*O, []chat.ToolCall) error) *Builder[I, O] {
	b.base.toolCallsField = field
	b.base.injectFn = inject
	return b
}

// InputFilter overrides how special fields are stripped from inputs before
// rendering. Without it, inputs pass through unchanged, which is safe
// because adapters render only prompt-schema fields.
func (b *Builder[I, O]) InputFilter(filter func(I) I) *Builder[I, O] {
	b.base.filterFn = filter
	return b
}

// Merge overrides the final output assembly step.
func (b *Builder[I, O]) Merge(merge func(O, []chat.ToolCall) (O, error)) *Builder[I, O] {
	b.base.mergeFn = merge
	return b
}

// Build reflects both schemas and verifies the special-field manifest.
// Doing this here means schema failures surface before any provider call,
// and a manifest naming a nonexistent field is rejected up front.
func (b *Builder[I, O]) Build() (*Base[I, O], error) {
	base := b.base

	in, err := schema.Reflect[I]()
	if err != nil {
		return nil, fmt.Errorf("signature %s: input schema: %w", base.name, err)
	}
	out, err := schema.Reflect[O]()
	if err != nil {
		return nil, fmt.Errorf("signature %s: output schema: %w", base.name, err)
	}
	base.inputSchema = in
	base.outputSchema = out

	var hideIn, hideOut []string
	for _, f := range []string{base.historyField, base.toolsField} {
		if f == "" {
			continue
		}
		if _, ok := in.Field(f); !ok {
			return nil, fmt.Errorf("signature %s: special field %q not found on inputs", base.name, f)
		}
		hideIn = append(hideIn, f)
	}
	if f := base.toolCallsField; f != "" {
		if _, ok := out.Field(f); !ok {
			return nil, fmt.Errorf("signature %s: special field %q not found on outputs", base.name, f)
		}
		hideOut = append(hideOut, f)
	}

	base.promptIn = in.Without(hideIn...)
	base.promptOut = out.Without(hideOut...)
	return &base, nil
}

func (b *Base[I, O]) Name() string        { return b.name }
func (b *Base[I, O]) Description() string { return b.desc }

func (b *Base[I, O]) Instructions() string { return b.instructions }

// SetInstructions rewrites the instruction text. Callers must not invoke
// it concurrently with an in-flight generation using this signature.
func (b *Base[I, O]) SetInstructions(instructions string) { b.instructions = instructions }

// InputSchema returns the full input schema, special fields included.
func (b *Base[I, O]) InputSchema() *schema.Schema { return b.inputSchema }

// OutputSchema returns the full output schema, special fields included.
func (b *Base[I, O]) OutputSchema() *schema.Schema { return b.outputSchema }

func (b *Base[I, O]) PromptInputSchema() *schema.Schema  { return b.promptIn }
func (b *Base[I, O]) PromptOutputSchema() *schema.Schema { return b.promptOut }

func (b *Base[I, O]) ExtractHistory(inputs I) []chat.Message {
	if b.historyFn == nil {
		return nil
	}
	return b.historyFn(inputs)
}

func (b *Base[I, O]) ExtractTools(inputs I) []chat.AvailableTool {
	if b.toolsFn == nil {
		return nil
	}
	return b.toolsFn(inputs)
}

func (b *Base[I, O]) FilterSpecialFields(inputs I) I {
	if b.filterFn == nil {
		return inputs
	}
	return b.filterFn(inputs)
}

func (b *Base[I, O]) InjectToolCalls(outputs *O, calls []chat.ToolCall) error {
	if b.injectFn == nil {
		return nil
	}
	if err := b.injectFn(outputs, calls); err != nil {
		return &MergeError{Signature: b.name, Field: b.toolCallsField, Err: err}
	}
	return nil
}

func (b *Base[I, O]) MergeSpecialOutputs(outputs O, calls []chat.ToolCall) (O, error) {
	if b.mergeFn == nil {
		return outputs, nil
	}
	merged, err := b.mergeFn(outputs, calls)
	if err != nil {
		return merged, &MergeError{Signature: b.name, Err: err}
	}
	return merged, nil
}
