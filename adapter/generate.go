package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/promptsig/promptsig-go/chat"
	"github.com/promptsig/promptsig-go/internal/logctx"
	"github.com/promptsig/promptsig-go/provider"
	"github.com/promptsig/promptsig-go/schema"
	"github.com/promptsig/promptsig-go/signature"
)

// DefaultMaxRetries bounds generation attempts when neither the adapter
// config nor a GenerateOption says otherwise.
const DefaultMaxRetries = 3

// GenerateOption configures one Generate call.
type GenerateOption func(*generateOptions)

type generateOptions struct {
	logger     *slog.Logger
	maxRetries int
}

// WithLogger routes retry diagnostics to the given logger instead of
// slog.Default.
func WithLogger(logger *slog.Logger) GenerateOption {
	return func(o *generateOptions) { o.logger = logger }
}

// WithMaxRetries overrides the attempt budget for this call.
func WithMaxRetries(n int) GenerateOption {
	return func(o *generateOptions) { o.maxRetries = n }
}

// FormatMessages renders the full message sequence for one generation
// attempt: a system message (field descriptions, structure skeleton, task
// description), a user/assistant pair per demo, then the current inputs as
// the final user message.
func FormatMessages[I, O any](a Adapter, instructions string, demos []signature.Demo[I, O], inputs I, in, out *schema.Schema) ([]chat.Message, error) {
	system := strings.Join([]string{
		a.FormatFieldDescription(in),
		a.FormatFieldStructure(in, out),
		a.FormatTaskDescription(instructions),
	}, "\n")
	messages := []chat.Message{chat.System(system)}

	for i, d := range demos {
		uv, err := ValuesOf(d.Inputs)
		if err != nil {
			return nil, fmt.Errorf("demo %d inputs: %w", i, err)
		}
		ov, err := ValuesOf(d.Outputs)
		if err != nil {
			return nil, fmt.Errorf("demo %d outputs: %w", i, err)
		}
		messages = append(messages,
			chat.User(a.FormatUserMessageContent(uv, in, out)),
			chat.AssistantText(a.FormatAssistantMessageContent(ov, out)),
		)
	}

	v, err := ValuesOf(inputs)
	if err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	messages = append(messages, chat.User(a.FormatUserMessageContent(v, in, out)))
	return messages, nil
}

// Generate runs the full control loop for one typed generation call:
// special-field extraction, message rendering, history splicing, tool
// config merging, the bounded provider/parse retry loop, tool-call
// injection and final output assembly.
//
// Provider failures and parse failures are retried up to the attempt
// budget; both are plausibly transient for a stochastic generator. Merge
// and shape errors are terminal. The provider call is the only suspension
// point and the only place ctx is consulted.
func Generate[I, O any](
	ctx context.Context,
	a Adapter,
	prov provider.Provider,
	cfg chat.CompletionConfig,
	sig signature.Signature[I, O],
	demos []signature.Demo[I, O],
	inputs I,
	opts ...GenerateOption,
) (O, error) {
	var zero O

	o := generateOptions{maxRetries: a.Config().MaxRetries}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxRetries == 0 {
		o.maxRetries = DefaultMaxRetries
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	history := sig.ExtractHistory(inputs)
	tools := sig.ExtractTools(inputs)
	filtered := sig.FilterSpecialFields(inputs)

	inSchema := sig.PromptInputSchema()
	outSchema := sig.PromptOutputSchema()

	messages, err := FormatMessages(a, sig.Instructions(), demos, filtered, inSchema, outSchema)
	if err != nil {
		return zero, err
	}

	// Conversation history belongs immediately after the system message.
	if len(history) > 0 {
		if len(messages) > 0 {
			spliced := make([]chat.Message, 0, len(messages)+len(history))
			spliced = append(spliced, messages[0])
			spliced = append(spliced, history...)
			spliced = append(spliced, messages[1:]...)
			messages = spliced
		} else {
			messages = append(messages, history...)
		}
	}

	// Tools extracted from the inputs take precedence over the caller's
	// base config.
	if len(tools) > 0 {
		cfg.Tools = tools
	}

	ctx = logctx.WithGeneration(ctx, &logctx.GenerationData{
		Signature: sig.Name(),
		Adapter:   a.Name(),
		Model:     cfg.Model,
	})

	for attempt := 0; attempt < o.maxRetries; attempt++ {
		resp, err := prov.Complete(ctx, messages, cfg)
		if err != nil {
			if attempt < o.maxRetries-1 {
				o.logger.WarnContext(ctx, "provider error, retrying",
					slog.Int("attempt", attempt+1),
					slog.String("err", err.Error()))
				continue
			}
			return zero, fmt.Errorf("completion failed on attempt %d: %w", attempt+1, err)
		}

		switch {
		case resp.Role == chat.RoleAssistant && resp.HasText():
			raw, perr := a.Parse(resp.Text(), outSchema)
			var outputs O
			if perr == nil {
				if uerr := json.Unmarshal(raw, &outputs); uerr != nil {
					perr = &ParseError{Adapter: a.Name(), Err: fmt.Errorf("decode outputs: %w", uerr)}
				}
			}
			if perr != nil {
				if attempt < o.maxRetries-1 {
					o.logger.WarnContext(ctx, "parse error, retrying",
						slog.Int("attempt", attempt+1),
						slog.String("err", perr.Error()))
					continue
				}
				return zero, perr
			}
			if resp.HasToolCalls() {
				if err := sig.InjectToolCalls(&outputs, resp.ToolCalls); err != nil {
					return zero, err
				}
				return sig.MergeSpecialOutputs(outputs, resp.ToolCalls)
			}
			return sig.MergeSpecialOutputs(outputs, nil)

		case resp.Role == chat.RoleAssistant && resp.HasToolCalls():
			// Tool-only response: the output shell comes from an empty
			// object, which cannot satisfy required prompt fields.
			if req := outSchema.RequiredFields(); len(req) > 0 {
				return zero, &ShapeError{
					Reason:   fmt.Sprintf("tool-only response cannot satisfy required output fields: %s", strings.Join(req, ", ")),
					Response: resp,
				}
			}
			var outputs O
			if err := json.Unmarshal([]byte("{}"), &outputs); err != nil {
				return zero, &ParseError{Adapter: a.Name(), Err: fmt.Errorf("build empty outputs: %w", err)}
			}
			if err := sig.InjectToolCalls(&outputs, resp.ToolCalls); err != nil {
				return zero, err
			}
			return sig.MergeSpecialOutputs(outputs, resp.ToolCalls)

		default:
			return zero, &ShapeError{Response: resp}
		}
	}

	return zero, fmt.Errorf("generation failed after %d attempts", o.maxRetries)
}
