package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/promptsig/promptsig-go/schema"
)

// Config carries adapter behavior settings.
type Config struct {
	// MaxRetries bounds generation attempts per call. Zero means
	// DefaultMaxRetries.
	MaxRetries int
}

// DefaultConfig returns the stock adapter configuration.
func DefaultConfig() Config {
	return Config{MaxRetries: DefaultMaxRetries}
}

// Values holds a record's fields as raw JSON, keyed by field name. The
// generic layer owns typed marshalling; adapters render and parse at this
// level only.
type Values map[string]json.RawMessage

// ValuesOf marshals v (a struct or map) into per-field raw JSON.
func ValuesOf(v any) (Values, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal values: %w", err)
	}
	var out Values
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("values must be a JSON object: %w", err)
	}
	return out, nil
}

// Adapter is a rendering and parsing strategy translating between typed
// records and the wire text exchanged with a completion provider. The
// format methods are pure; Parse must recover a JSON object containing the
// output schema's fields from a raw completion.
type Adapter interface {
	Name() string
	Config() Config

	// FormatFieldDescription renders a human-readable bullet list of the
	// schema's fields.
	FormatFieldDescription(s *schema.Schema) string

	// FormatFieldStructure renders the structural skeleton shown to the
	// model for every input then output field.
	FormatFieldStructure(in, out *schema.Schema) string

	// FormatTaskDescription renders the signature's instruction text.
	FormatTaskDescription(instructions string) string

	// FormatUserMessageContent serializes inputs field by field in input
	// schema order and appends the response-shape instruction derived from
	// the output schema.
	FormatUserMessageContent(inputs Values, in, out *schema.Schema) string

	// FormatAssistantMessageContent renders demo outputs the way a
	// well-formed completion should look.
	FormatAssistantMessageContent(outputs Values, out *schema.Schema) string

	// Parse recovers the output object from a raw completion. Every
	// required field of the output schema must be present in the result.
	Parse(completion string, out *schema.Schema) (json.RawMessage, error)
}

// formatValue renders one field value for prompt text: JSON strings render
// as their bare content, everything else as indented JSON.
func formatValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// missingRequired returns the output schema's required fields absent from
// the assembled object.
func missingRequired(obj map[string]json.RawMessage, out *schema.Schema) []string {
	var missing []string
	for _, name := range out.RequiredFields() {
		if _, ok := obj[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
