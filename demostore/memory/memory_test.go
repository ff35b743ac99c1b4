package memory

import (
	"context"
	"testing"
	"time"

	"github.com/promptsig/promptsig-go/demostore"
)

func TestPutGetDelete(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "qa", "default", []byte(`[1,2]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	item, err := s.Get(ctx, "qa", "default")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item == nil || string(item.Data) != "[1,2]" {
		t.Fatalf("Get = %+v", item)
	}
	if item.CreatedAt.IsZero() || item.ExpiresAt != nil {
		t.Fatalf("metadata wrong: %+v", item)
	}

	if err := s.Delete(ctx, "qa", "default"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	item, err = s.Get(ctx, "qa", "default")
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if item != nil {
		t.Fatalf("item survived delete: %+v", item)
	}
}

func TestKeysAreScopedBySignature(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "qa", "default", []byte("a")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := s.Put(ctx, "math", "default", []byte("b")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	item, err := s.Get(ctx, "qa", "default")
	if err != nil || item == nil {
		t.Fatalf("Get qa = %+v, %v", item, err)
	}
	if string(item.Data) != "a" {
		t.Fatalf("signatures share a namespace: %q", item.Data)
	}
}

func TestTTLExpiry(t *testing.T) {
	s, err := New(8)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if err := s.Put(ctx, "qa", "short", []byte("x"), demostore.WithTTL(10*time.Millisecond)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	item, err := s.Get(ctx, "qa", "short")
	if err != nil || item == nil {
		t.Fatalf("item missing before expiry: %+v, %v", item, err)
	}

	time.Sleep(20 * time.Millisecond)
	item, err = s.Get(ctx, "qa", "short")
	if err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if item != nil {
		t.Fatalf("expired item served: %+v", item)
	}
}

func TestCapacityEviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		if err := s.Put(ctx, "qa", name, []byte(name)); err != nil {
			t.Fatalf("Put %s failed: %v", name, err)
		}
	}

	// Oldest entry is evicted once capacity is exceeded.
	item, err := s.Get(ctx, "qa", "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if item != nil {
		t.Fatalf("LRU did not evict the oldest set")
	}
	if item, _ := s.Get(ctx, "qa", "c"); item == nil {
		t.Fatalf("newest set evicted")
	}
}

func TestPutCopiesData(t *testing.T) {
	s, err := New(4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	buf := []byte("original")
	if err := s.Put(ctx, "qa", "default", buf); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	copy(buf, "mutated!")

	item, err := s.Get(ctx, "qa", "default")
	if err != nil || item == nil {
		t.Fatalf("Get = %+v, %v", item, err)
	}
	if string(item.Data) != "original" {
		t.Fatalf("store aliased caller buffer: %q", item.Data)
	}
}
