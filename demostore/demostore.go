// Package demostore persists named few-shot demo sets keyed by signature
// name. Backends live in subpackages: memory (LRU), redis, and fsdemo
// (file-backed with hot reload). The package-level Load/Save helpers add a
// typed JSON codec on top of the byte-level Store interface.
package demostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/promptsig/promptsig-go/signature"
)

// Store is the byte-level persistence interface for demo sets.
type Store interface {
	// Get retrieves the demo set stored under (signature, name). Returns
	// nil when the set doesn't exist or has expired; errors are reserved
	// for storage system failures.
	Get(ctx context.Context, signature, name string) (*Item, error)

	// Put stores an encoded demo set under (signature, name).
	Put(ctx context.Context, signature, name string, data []byte, opts ...Option) error

	// Delete removes the demo set under (signature, name).
	Delete(ctx context.Context, signature, name string) error

	// Close releases backend resources.
	Close() error
}

// Item is a stored demo set with metadata.
type Item struct {
	Data      []byte
	CreatedAt time.Time
	ExpiresAt *time.Time // nil = no expiration
}

// IsExpired checks if the item has expired.
func (it *Item) IsExpired() bool {
	return it.ExpiresAt != nil && time.Now().After(*it.ExpiresAt)
}

// Option configures a Put operation.
type Option func(*Options)

// Options contains configuration for store operations.
type Options struct {
	TTL *time.Duration
}

// WithTTL sets a time-to-live for the stored demo set.
func WithTTL(ttl time.Duration) Option {
	return func(o *Options) { o.TTL = &ttl }
}

// Encode serializes a demo set to JSON.
func Encode[I, O any](demos []signature.Demo[I, O]) ([]byte, error) {
	data, err := json.Marshal(demos)
	if err != nil {
		return nil, fmt.Errorf("demostore: encode demos: %w", err)
	}
	return data, nil
}

// Decode deserializes a demo set from JSON.
func Decode[I, O any](data []byte) ([]signature.Demo[I, O], error) {
	var demos []signature.Demo[I, O]
	if err := json.Unmarshal(data, &demos); err != nil {
		return nil, fmt.Errorf("demostore: decode demos: %w", err)
	}
	return demos, nil
}

// Save encodes demos and stores them under (signature, name).
func Save[I, O any](ctx context.Context, s Store, signatureName, name string, demos []signature.Demo[I, O], opts ...Option) error {
	data, err := Encode(demos)
	if err != nil {
		return err
	}
	return s.Put(ctx, signatureName, name, data, opts...)
}

// Load retrieves and decodes the demo set under (signature, name). A
// missing or expired set yields (nil, nil).
func Load[I, O any](ctx context.Context, s Store, signatureName, name string) ([]signature.Demo[I, O], error) {
	item, err := s.Get(ctx, signatureName, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return Decode[I, O](item.Data)
}
