// Package memory provides an in-memory implementation of the demostore
// interface using github.com/hashicorp/golang-lru/v2 for bounded caching
// with TTL support.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/promptsig/promptsig-go/demostore"
)

// Store implements demostore.Store in process memory.
type Store struct {
	mu    sync.RWMutex
	cache *lru.Cache[string, *demostore.Item]
	done  chan struct{}
	once  sync.Once
}

// New creates an in-memory store holding at most maxSets demo sets.
func New(maxSets int) (*Store, error) {
	cache, err := lru.New[string, *demostore.Item](maxSets)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	s := &Store{cache: cache, done: make(chan struct{})}
	go s.cleanupExpired()
	return s, nil
}

// Get implements demostore.Store.
func (s *Store) Get(ctx context.Context, signature, name string) (*demostore.Item, error) {
	key := buildKey(signature, name)

	s.mu.RLock()
	item, exists := s.cache.Get(key)
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	if item.IsExpired() {
		s.mu.Lock()
		s.cache.Remove(key)
		s.mu.Unlock()
		return nil, nil
	}
	return item, nil
}

// Put implements demostore.Store.
func (s *Store) Put(ctx context.Context, signature, name string, data []byte, opts ...demostore.Option) error {
	options := &demostore.Options{}
	for _, opt := range opts {
		opt(options)
	}

	now := time.Now()
	item := &demostore.Item{
		Data:      append([]byte(nil), data...),
		CreatedAt: now,
	}
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		item.ExpiresAt = &expiresAt
	}

	s.mu.Lock()
	s.cache.Add(buildKey(signature, name), item)
	s.mu.Unlock()
	return nil
}

// Delete implements demostore.Store.
func (s *Store) Delete(ctx context.Context, signature, name string) error {
	s.mu.Lock()
	s.cache.Remove(buildKey(signature, name))
	s.mu.Unlock()
	return nil
}

// Close purges the cache and stops the background sweep.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.done) })
	s.mu.Lock()
	s.cache.Purge()
	s.mu.Unlock()
	return nil
}

// The separator cannot appear in a signature or set name that round-trips
// through JSON cleanly, so keys stay unambiguous.
func buildKey(signature, name string) string {
	return signature + "\x00" + name
}

// cleanupExpired periodically removes expired items so the LRU doesn't pin
// stale sets until capacity pressure evicts them.
func (s *Store) cleanupExpired() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		now := time.Now()
		for _, key := range s.cache.Keys() {
			if item, exists := s.cache.Peek(key); exists {
				if item.ExpiresAt != nil && now.After(*item.ExpiresAt) {
					s.cache.Remove(key)
				}
			}
		}
		s.mu.Unlock()
	}
}

var _ demostore.Store = (*Store)(nil)
