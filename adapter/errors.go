package adapter

import (
	"fmt"

	"github.com/promptsig/promptsig-go/chat"
)

// ParseError indicates a completion did not match the declared output
// schema: malformed JSON, a missing required field, or an undecodable
// section. The generation loop retries it like a provider failure, on the
// premise that a fresh attempt may yield well-formed output.
type ParseError struct {
	Adapter string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("adapter %s: parse: %v", e.Adapter, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ShapeError indicates the provider returned a response shape the
// generation loop does not recognize. It is terminal: retrying cannot fix
// a provider that violates its contract.
type ShapeError struct {
	Reason   string
	Response chat.Message
}

func (e *ShapeError) Error() string {
	if e.Reason != "" {
		return "unexpected response shape: " + e.Reason
	}
	return "expected assistant message with text content or tool calls"
}
