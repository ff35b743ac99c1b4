package adapter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/promptsig/promptsig-go/schema"
)

// JSONAdapter instructs the model to answer with a single JSON object and
// parses the first balanced object span out of the completion. Prefer it
// for models with reliable JSON output; ChatAdapter's delimited format is
// more forgiving otherwise.
type JSONAdapter struct {
	cfg Config
}

// NewJSONAdapter builds a JSONAdapter with the given config.
func NewJSONAdapter(cfg Config) *JSONAdapter {
	return &JSONAdapter{cfg: cfg}
}

func (a *JSONAdapter) Name() string   { return "json" }
func (a *JSONAdapter) Config() Config { return a.cfg }

func (a *JSONAdapter) FormatFieldDescription(s *schema.Schema) string {
	var lines []string
	for _, f := range s.Fields() {
		desc := f.Description
		if desc == "" {
			desc = "No description"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (%s)", f.Name, desc, f.TypeName))
	}
	return strings.Join(lines, "\n")
}

func (a *JSONAdapter) FormatFieldStructure(in, out *schema.Schema) string {
	parts := []string{
		"All interactions will be structured in the following way:",
		"",
		"Input fields:",
		a.FormatFieldDescription(in),
		"",
		"Output will be a JSON object with the following fields:",
		a.FormatFieldDescription(out),
	}
	return strings.Join(parts, "\n")
}

func (a *JSONAdapter) FormatTaskDescription(instructions string) string {
	return "Your task: " + instructions
}

func (a *JSONAdapter) FormatUserMessageContent(inputs Values, in, out *schema.Schema) string {
	var parts []string
	for _, f := range in.Fields() {
		if raw, ok := inputs[f.Name]; ok {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Name, formatValue(raw)))
		}
	}
	parts = append(parts, fmt.Sprintf("\nRespond with a JSON object containing these fields: %s",
		strings.Join(out.FieldNames(), ", ")))
	return strings.Join(parts, "\n")
}

func (a *JSONAdapter) FormatAssistantMessageContent(outputs Values, out *schema.Schema) string {
	// Render only prompt-schema fields, in schema order.
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range out.Fields() {
		raw, ok := outputs[f.Name]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, _ := json.Marshal(f.Name)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(raw)
	}
	buf.WriteByte('}')

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", "  "); err != nil {
		return buf.String()
	}
	return pretty.String()
}

// Parse locates the first balanced {...} span in the completion (falling
// back to the whole text when none is found) and verifies it decodes as an
// object carrying every required output field.
func (a *JSONAdapter) Parse(completion string, out *schema.Schema) (json.RawMessage, error) {
	span := extractJSONObject(completion)
	if span == "" {
		span = completion
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, &ParseError{Adapter: a.Name(), Err: fmt.Errorf("invalid JSON response: %w", err)}
	}
	if missing := missingRequired(obj, out); len(missing) > 0 {
		return nil, &ParseError{Adapter: a.Name(), Err: fmt.Errorf("missing required output fields: %s", strings.Join(missing, ", "))}
	}
	return json.RawMessage(span), nil
}

// extractJSONObject returns the first balanced top-level {...} span,
// respecting strings and escapes, or "" when the text holds none.
func extractJSONObject(s string) string {
	depth := 0
	start := -1
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

var _ Adapter = (*JSONAdapter)(nil)
