package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeError indicates that a structural schema document could not be
// produced or navigated.
type DecodeError struct {
	Op  string // "reflect" or "parse"
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("schema: %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// FieldInfo describes one field of an object schema. TypeName is a
// normalized display label (String, Integer, Number, Boolean, Array,
// Object, Null, AnyOf, OneOf, AllOf, Reference or Unknown).
type FieldInfo struct {
	Name        string
	TypeName    string
	Description string
	Required    bool
}

type property struct {
	name string
	raw  json.RawMessage
	info FieldInfo
}

// Schema is a structural description of a typed record, held as the JSON
// schema document plus a pre-extracted, declaration-ordered field list.
// Values are immutable once constructed; derived schemas are built with
// Without.
type Schema struct {
	doc      json.RawMessage
	props    []property
	required []string
}

// FromJSON parses a structural JSON schema document. A document without a
// properties object yields a schema with an empty field list, not an error.
func FromJSON(doc []byte) (*Schema, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		return nil, &DecodeError{Op: "parse", Err: errors.New("empty schema document")}
	}
	var root struct {
		Properties json.RawMessage `json:"properties"`
		Required   []string        `json:"required"`
	}
	if err := json.Unmarshal(doc, &root); err != nil {
		return nil, &DecodeError{Op: "parse", Err: err}
	}
	s := &Schema{
		doc:      append(json.RawMessage(nil), doc...),
		required: root.Required,
	}
	if len(root.Properties) == 0 || bytes.Equal(bytes.TrimSpace(root.Properties), []byte("null")) {
		return s, nil
	}
	props, err := parseProperties(root.Properties)
	if err != nil {
		return nil, &DecodeError{Op: "parse", Err: err}
	}
	requiredSet := make(map[string]bool, len(root.Required))
	for _, name := range root.Required {
		requiredSet[name] = true
	}
	for i := range props {
		props[i].info = fieldInfo(props[i].name, props[i].raw, requiredSet[props[i].name])
	}
	s.props = props
	return s, nil
}

// FieldsFromJSON extracts the ordered field list directly from a structural
// JSON schema document.
func FieldsFromJSON(doc []byte) ([]FieldInfo, error) {
	s, err := FromJSON(doc)
	if err != nil {
		return nil, err
	}
	return s.Fields(), nil
}

// parseProperties walks the properties object with a token decoder so that
// field order matches the document (and therefore struct declaration order
// when the document came from Reflect).
func parseProperties(raw json.RawMessage) ([]property, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("properties is not an object")
	}
	var props []property
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected property key token %v", keyTok)
		}
		var node json.RawMessage
		if err := dec.Decode(&node); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		props = append(props, property{name: name, raw: node})
	}
	return props, nil
}

func fieldInfo(name string, raw json.RawMessage, required bool) FieldInfo {
	var node struct {
		Description string `json:"description"`
	}
	_ = json.Unmarshal(raw, &node)
	return FieldInfo{
		Name:        name,
		TypeName:    typeLabel(raw),
		Description: node.Description,
		Required:    required,
	}
}

// typeLabel normalizes a schema node to a display label. It is total: every
// node yields exactly one label, malformed nodes included.
func typeLabel(raw json.RawMessage) string {
	var node struct {
		Type  json.RawMessage `json:"type"`
		AnyOf json.RawMessage `json:"anyOf"`
		OneOf json.RawMessage `json:"oneOf"`
		AllOf json.RawMessage `json:"allOf"`
		Ref   string          `json:"$ref"`
	}
	if err := json.Unmarshal(raw, &node); err != nil {
		return "Unknown"
	}
	if len(node.Type) > 0 {
		var single string
		if err := json.Unmarshal(node.Type, &single); err == nil {
			return primitiveLabel(single)
		}
		var multi []string
		if err := json.Unmarshal(node.Type, &multi); err == nil && len(multi) > 0 {
			labels := make([]string, len(multi))
			for i, t := range multi {
				labels[i] = primitiveLabel(t)
			}
			return strings.Join(labels, " | ")
		}
	}
	switch {
	case len(node.AnyOf) > 0:
		return "AnyOf"
	case len(node.OneOf) > 0:
		return "OneOf"
	case len(node.AllOf) > 0:
		return "AllOf"
	case node.Ref != "":
		return "Reference"
	}
	return "Unknown"
}

func primitiveLabel(t string) string {
	switch t {
	case "string":
		return "String"
	case "integer":
		return "Integer"
	case "number":
		return "Number"
	case "boolean":
		return "Boolean"
	case "array":
		return "Array"
	case "object":
		return "Object"
	case "null":
		return "Null"
	default:
		// Pass nonstandard type strings through unchanged.
		return t
	}
}

// JSON returns the schema document.
func (s *Schema) JSON() json.RawMessage {
	return append(json.RawMessage(nil), s.doc...)
}

// Fields returns the schema's fields in declaration order.
func (s *Schema) Fields() []FieldInfo {
	out := make([]FieldInfo, len(s.props))
	for i, p := range s.props {
		out[i] = p.info
	}
	return out
}

// Field looks up a single field by name.
func (s *Schema) Field(name string) (FieldInfo, bool) {
	for _, p := range s.props {
		if p.name == name {
			return p.info, true
		}
	}
	return FieldInfo{}, false
}

// FieldNames returns the field names in declaration order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.props))
	for i, p := range s.props {
		out[i] = p.name
	}
	return out
}

// RequiredFields returns the names listed in the document's required set.
func (s *Schema) RequiredFields() []string {
	return append([]string(nil), s.required...)
}

// Without returns a derived schema with the named fields removed from both
// the property list and the required set. The receiver is left untouched.
func (s *Schema) Without(names ...string) *Schema {
	if len(names) == 0 {
		return s
	}
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := &Schema{}
	for _, p := range s.props {
		if !drop[p.name] {
			out.props = append(out.props, p)
		}
	}
	for _, r := range s.required {
		if !drop[r] {
			out.required = append(out.required, r)
		}
	}
	out.doc = buildObjectDoc(out.props, out.required)
	return out
}

// buildObjectDoc renders a minimal object schema document, preserving
// property order.
func buildObjectDoc(props []property, required []string) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteString(`{"type":"object","properties":{`)
	for i, p := range props {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(p.name)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(p.raw)
	}
	buf.WriteByte('}')
	if len(required) > 0 {
		buf.WriteString(`,"required":`)
		req, _ := json.Marshal(required)
		buf.Write(req)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
