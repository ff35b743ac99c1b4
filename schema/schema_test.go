package schema

import (
	"reflect"
	"testing"
)

type profile struct {
	Name   string   `json:"name" jsonschema:"description=Full name"`
	Age    int      `json:"age"`
	Score  float64  `json:"score"`
	Active bool     `json:"active"`
	Tags   []string `json:"tags,omitempty"`
	Email  string   `json:"email,omitempty"`
}

func TestReflect_FieldOrderAndRequired(t *testing.T) {
	s, err := Reflect[profile]()
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}

	wantOrder := []string{"name", "age", "score", "active", "tags", "email"}
	if got := s.FieldNames(); !reflect.DeepEqual(got, wantOrder) {
		t.Fatalf("field order = %v, want %v", got, wantOrder)
	}

	fields := s.Fields()
	byName := map[string]FieldInfo{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	if !byName["name"].Required {
		t.Fatalf("name must be required")
	}
	if byName["email"].Required {
		t.Fatalf("email (omitempty) must not be required")
	}
	if byName["tags"].Required {
		t.Fatalf("tags (omitempty) must not be required")
	}

	if got := byName["name"].Description; got != "Full name" {
		t.Fatalf("name description = %q", got)
	}

	typeChecks := map[string]string{
		"name":   "String",
		"age":    "Integer",
		"score":  "Number",
		"active": "Boolean",
		"tags":   "Array",
	}
	for name, want := range typeChecks {
		if got := byName[name].TypeName; got != want {
			t.Fatalf("%s type = %q, want %q", name, got, want)
		}
	}
}

func TestFieldsFromJSON_CompositeLabels(t *testing.T) {
	doc := []byte(`{
		"type": "object",
		"properties": {
			"a": {"anyOf": [{"type": "string"}, {"type": "null"}]},
			"b": {"oneOf": [{"type": "string"}, {"type": "integer"}]},
			"c": {"allOf": [{"type": "object"}]},
			"d": {"$ref": "#/$defs/thing"},
			"e": {},
			"f": {"type": ["string", "null"]},
			"g": {"type": "null"},
			"h": {"type": "custom"}
		},
		"required": ["a"]
	}`)

	fields, err := FieldsFromJSON(doc)
	if err != nil {
		t.Fatalf("FieldsFromJSON failed: %v", err)
	}

	want := map[string]string{
		"a": "AnyOf",
		"b": "OneOf",
		"c": "AllOf",
		"d": "Reference",
		"e": "Unknown",
		"f": "String | Null",
		"g": "Null",
		"h": "custom",
	}
	if len(fields) != len(want) {
		t.Fatalf("got %d fields, want %d", len(fields), len(want))
	}
	for _, f := range fields {
		if got := f.TypeName; got != want[f.Name] {
			t.Fatalf("field %s label = %q, want %q", f.Name, got, want[f.Name])
		}
	}
	if !fields[0].Required || fields[1].Required {
		t.Fatalf("required flags wrong: a=%v b=%v", fields[0].Required, fields[1].Required)
	}
}

func TestFieldsFromJSON_OrderOfAppearance(t *testing.T) {
	doc := []byte(`{"type":"object","properties":{"z":{"type":"string"},"a":{"type":"string"},"m":{"type":"string"}}}`)
	fields, err := FieldsFromJSON(doc)
	if err != nil {
		t.Fatalf("FieldsFromJSON failed: %v", err)
	}
	got := []string{fields[0].Name, fields[1].Name, fields[2].Name}
	if !reflect.DeepEqual(got, []string{"z", "a", "m"}) {
		t.Fatalf("order = %v, want document order", got)
	}
}

func TestFromJSON_NoProperties(t *testing.T) {
	for _, doc := range []string{`{}`, `{"type":"object"}`} {
		s, err := FromJSON([]byte(doc))
		if err != nil {
			t.Fatalf("FromJSON(%s) failed: %v", doc, err)
		}
		if len(s.Fields()) != 0 {
			t.Fatalf("FromJSON(%s) yielded fields: %v", doc, s.Fields())
		}
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	if _, err := FromJSON([]byte(`{"properties": 42}`)); err == nil {
		t.Fatalf("expected error for non-object properties")
	}
	if _, err := FromJSON([]byte(`not json`)); err == nil {
		t.Fatalf("expected error for malformed document")
	}
	if _, err := FromJSON(nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
}

func TestTypeLabel_Idempotent(t *testing.T) {
	nodes := [][]byte{
		[]byte(`{"type":"string"}`),
		[]byte(`{"anyOf":[{"type":"string"}]}`),
		[]byte(`{"$ref":"#/x"}`),
		[]byte(`{}`),
		[]byte(`{"type":["integer","null"]}`),
	}
	for _, node := range nodes {
		first := typeLabel(node)
		second := typeLabel(node)
		if first != second {
			t.Fatalf("typeLabel not deterministic for %s: %q then %q", node, first, second)
		}
	}
}

func TestWithout(t *testing.T) {
	s, err := Reflect[profile]()
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}

	filtered := s.Without("age", "tags")
	want := []string{"name", "score", "active", "email"}
	if got := filtered.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("filtered fields = %v, want %v", got, want)
	}
	for _, r := range filtered.RequiredFields() {
		if r == "age" {
			t.Fatalf("age still in required set after Without")
		}
	}

	// The receiver is untouched.
	if len(s.FieldNames()) != 6 {
		t.Fatalf("Without mutated receiver: %v", s.FieldNames())
	}

	// The rebuilt document round-trips.
	again, err := FromJSON(filtered.JSON())
	if err != nil {
		t.Fatalf("reparse filtered doc: %v", err)
	}
	if got := again.FieldNames(); !reflect.DeepEqual(got, want) {
		t.Fatalf("reparsed fields = %v, want %v", got, want)
	}
}
