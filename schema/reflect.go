package schema

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Reflect derives a Schema from the struct type T. The reflected document
// is self-contained: definitions are inlined rather than referenced so
// field nodes can be inspected in place, and the struct's own fields sit at
// the top level in declaration order.
//
// Field naming follows json tags; descriptions come from jsonschema tags
// (`jsonschema:"description=..."`). Fields whose json tag carries omitempty
// are reflected as optional, everything else lands in the required set.
func Reflect[T any]() (*Schema, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
	}
	js := r.Reflect(new(T))
	doc, err := json.Marshal(js)
	if err != nil {
		return nil, &DecodeError{Op: "reflect", Err: err}
	}
	return FromJSON(doc)
}
