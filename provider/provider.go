// Package provider defines the completion backend abstraction the
// generation loop drives, together with the typed error provider bindings
// report failures through. Concrete vendor bindings live in subpackages.
package provider

import (
	"context"
	"fmt"

	"github.com/promptsig/promptsig-go/chat"
)

// Provider is a completion backend. Complete must return exactly one
// assistant message (text and/or tool calls populated) or fail with an
// error; any other return is a contract violation the generation loop
// treats as a terminal shape error.
//
// The message slice is an owned snapshot built fresh per generation call;
// implementations may read it freely but must not retain or mutate it.
type Provider interface {
	Complete(ctx context.Context, messages []chat.Message, cfg chat.CompletionConfig) (chat.Message, error)
}

// Error wraps a transport or vendor failure with the name of the provider
// that produced it.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Name, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
