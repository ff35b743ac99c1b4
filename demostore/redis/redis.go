// Package redis provides a Redis-backed implementation of the demostore
// interface, suitable for sharing curated demo sets across processes.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/redis/go-redis/v9"

	"github.com/promptsig/promptsig-go/demostore"
)

// Config contains configuration options for the Redis store. Defaults can
// be loaded via envdecode.
type Config struct {
	// Client is an existing Redis client to reuse. When nil, a client is
	// dialed from Addr.
	Client *redis.Client

	// Addr like "localhost:6379". ENV: REDIS_ADDR
	Addr string `env:"REDIS_ADDR,default=localhost:6379"`

	// KeyPrefix for all keys. ENV: DEMOS_KEY_PREFIX
	KeyPrefix string `env:"DEMOS_KEY_PREFIX,default=promptsig:demos:"`
}

// Store implements demostore.Store using Redis.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

// storedItem is the JSON envelope persisted in Redis.
type storedItem struct {
	Data      []byte     `json:"data"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// New creates a Redis-backed store. When no client is supplied, one is
// dialed from Addr and verified with a ping.
func New(cfg Config) (*Store, error) {
	client := cfg.Client
	if client == nil {
		addr := cfg.Addr
		if addr == "" {
			addr = "localhost:6379"
		}
		client = redis.NewClient(&redis.Options{Addr: addr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, fmt.Errorf("redis ping: %w", err)
		}
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "promptsig:demos:"
	}
	return &Store{client: client, keyPrefix: prefix}, nil
}

// NewFromEnv builds a Store using envdecode to populate Config.
func NewFromEnv() (*Store, error) {
	var cfg Config
	_ = envdecode.Decode(&cfg)
	return New(cfg)
}

// Get implements demostore.Store.
func (s *Store) Get(ctx context.Context, signature, name string) (*demostore.Item, error) {
	key := s.buildKey(signature, name)

	result := s.client.Get(ctx, key)
	if err := result.Err(); err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get key %s: %w", key, err)
	}

	var stored storedItem
	if err := json.Unmarshal([]byte(result.Val()), &stored); err != nil {
		return nil, fmt.Errorf("unmarshal stored demo set: %w", err)
	}

	item := &demostore.Item{
		Data:      stored.Data,
		CreatedAt: stored.CreatedAt,
		ExpiresAt: stored.ExpiresAt,
	}
	if item.IsExpired() {
		s.client.Del(ctx, key)
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

	key := s.buildKey(signature, name)
	now := time.Now()
	stored := storedItem{
		Data:      data,
		CreatedAt: now,
	}

	var redisTTL time.Duration
	if options.TTL != nil {
		expiresAt := now.Add(*options.TTL)
		stored.ExpiresAt = &expiresAt
		redisTTL = *options.TTL
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal demo set: %w", err)
	}
	if err := s.client.Set(ctx, key, payload, redisTTL).Err(); err != nil {
		return fmt.Errorf("set key %s: %w", key, err)
	}
	return nil
}

// Delete implements demostore.Store.
func (s *Store) Delete(ctx context.Context, signature, name string) error {
	key := s.buildKey(signature, name)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) buildKey(signature, name string) string {
	return fmt.Sprintf("%ssig:%s:set:%s", s.keyPrefix, signature, name)
}

var _ demostore.Store = (*Store)(nil)
