package adapter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/promptsig/promptsig-go/schema"
)

// fieldHeaderPattern matches a delimited section header anywhere in a line.
var fieldHeaderPattern = regexp.MustCompile(`\[\[ ## (\w+) ## \]\]`)

// completedMarker names the sentinel section ending a delimited response.
const completedMarker = "completed"

// ChatAdapter renders records as delimited sections, one `[[ ## name ## ]]`
// header per field, terminated by the `[[ ## completed ## ]]` sentinel.
// It is the default strategy: plain field text survives models that would
// mangle strict JSON.
type ChatAdapter struct {
	cfg Config
}

// NewChatAdapter builds a ChatAdapter with the given config.
func NewChatAdapter(cfg Config) *ChatAdapter {
	return &ChatAdapter{cfg: cfg}
}

func (a *ChatAdapter) Name() string   { return "chat" }
func (a *ChatAdapter) Config() Config { return a.cfg }

func (a *ChatAdapter) FormatFieldDescription(s *schema.Schema) string {
	var lines []string
	for _, f := range s.Fields() {
		desc := f.Description
		if desc == "" {
			desc = "No description"
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", f.Name, desc))
	}
	return strings.Join(lines, "\n")
}

func (a *ChatAdapter) FormatFieldStructure(in, out *schema.Schema) string {
	parts := []string{"All interactions will be structured in the following way, with the appropriate values filled in."}
	for _, f := range in.Fields() {
		parts = append(parts, fmt.Sprintf("[[ ## %s ## ]]\n%s", f.Name, f.TypeName))
	}
	for _, f := range out.Fields() {
		parts = append(parts, fmt.Sprintf("[[ ## %s ## ]]\n%s", f.Name, f.TypeName))
	}
	parts = append(parts, "[[ ## "+completedMarker+" ## ]]")
	return strings.Join(parts, "\n\n")
}

func (a *ChatAdapter) FormatTaskDescription(instructions string) string {
	lines := strings.Split(instructions, "\n")
	for i, line := range lines {
		lines[i] = "        " + line
	}
	return "In adhering to this structure, your objective is:\n" + strings.Join(lines, "\n")
}

func (a *ChatAdapter) FormatUserMessageContent(inputs Values, in, out *schema.Schema) string {
	var parts []string
	for _, f := range in.Fields() {
		if raw, ok := inputs[f.Name]; ok {
			parts = append(parts, fmt.Sprintf("[[ ## %s ## ]]\n%s", f.Name, formatValue(raw)))
		}
	}

	names := out.FieldNames()
	refs := make([]string, len(names))
	for i, name := range names {
		refs[i] = fmt.Sprintf("`[[ ## %s ## ]]`", name)
	}
	parts = append(parts,
		"Respond with the corresponding output fields, starting with the field "+
			strings.Join(refs, ", then ")+
			", and then ending with the marker for `[[ ## "+completedMarker+" ## ]]`.")

	return strings.Join(parts, "\n\n")
}

func (a *ChatAdapter) FormatAssistantMessageContent(outputs Values, out *schema.Schema) string {
	var parts []string
	for _, f := range out.Fields() {
		if raw, ok := outputs[f.Name]; ok {
			parts = append(parts, fmt.Sprintf("[[ ## %s ## ]]\n%s", f.Name, formatValue(raw)))
		}
	}
	parts = append(parts, "[[ ## "+completedMarker+" ## ]]")
	return strings.Join(parts, "\n\n")
}

// Parse splits the completion into delimited sections and assembles them
// into a JSON object. A header line opens a new section, consuming any
// trailing text on the same line as the section's first content line; text
// before the first header has no key and is discarded. Duplicate headers
// follow mapping semantics: the later occurrence wins. Section text that is
// valid JSON is kept as JSON, everything else becomes a string value.
func (a *ChatAdapter) Parse(completion string, out *schema.Schema) (json.RawMessage, error) {
	type section struct {
		key   string
		lines []string
	}
	sections := []section{{}}

	for _, line := range strings.Split(completion, "\n") {
		trimmed := strings.TrimSpace(line)
		if loc := fieldHeaderPattern.FindStringSubmatchIndex(trimmed); loc != nil {
			sec := section{key: trimmed[loc[2]:loc[3]]}
			if rest := strings.TrimSpace(trimmed[loc[1]:]); rest != "" {
				sec.lines = append(sec.lines, rest)
			}
			sections = append(sections, sec)
		} else {
			sections[len(sections)-1].lines = append(sections[len(sections)-1].lines, line)
		}
	}

	obj := make(map[string]json.RawMessage)
	for _, sec := range sections {
		if sec.key == "" || sec.key == completedMarker {
			continue
		}
		text := strings.TrimSpace(strings.Join(sec.lines, "\n"))
		if text != "" && json.Valid([]byte(text)) {
			obj[sec.key] = json.RawMessage(text)
		} else {
			quoted, err := json.Marshal(text)
			if err != nil {
				return nil, &ParseError{Adapter: a.Name(), Err: fmt.Errorf("section %s: %w", sec.key, err)}
			}
			obj[sec.key] = quoted
		}
	}

	if missing := missingRequired(obj, out); len(missing) > 0 {
		return nil, &ParseError{Adapter: a.Name(), Err: fmt.Errorf("missing required output fields: %s", strings.Join(missing, ", "))}
	}

	doc, err := json.Marshal(obj)
	if err != nil {
		return nil, &ParseError{Adapter: a.Name(), Err: err}
	}
	return doc, nil
}

var _ Adapter = (*ChatAdapter)(nil)
