package demostore_test

import (
	"context"
	"testing"
	"time"

	"github.com/promptsig/promptsig-go/demostore"
	"github.com/promptsig/promptsig-go/demostore/memory"
	"github.com/promptsig/promptsig-go/signature"
)

type demoIn struct {
	Question string `json:"question"`
}

type demoOut struct {
	Answer string `json:"answer"`
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := memory.New(16)
	if err != nil {
		t.Fatalf("memory.New failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	demos := []signature.Demo[demoIn, demoOut]{
		{Inputs: demoIn{Question: "2+2"}, Outputs: demoOut{Answer: "4"}},
		{Inputs: demoIn{Question: "3+3"}, Outputs: demoOut{Answer: "6"}},
	}

	if err := demostore.Save(ctx, store, "math", "default", demos); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := demostore.Load[demoIn, demoOut](ctx, store, "math", "default")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(got) != 2 || got[0].Inputs.Question != "2+2" || got[1].Outputs.Answer != "6" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestLoadMissingSet(t *testing.T) {
	store, err := memory.New(16)
	if err != nil {
		t.Fatalf("memory.New failed: %v", err)
	}
	defer store.Close()

	got, err := demostore.Load[demoIn, demoOut](context.Background(), store, "math", "nope")
	if err != nil {
		t.Fatalf("Load of missing set errored: %v", err)
	}
	if got != nil {
		t.Fatalf("missing set yielded demos: %+v", got)
	}
}

func TestDecodeMalformed(t *testing.T) {
	if _, err := demostore.Decode[demoIn, demoOut]([]byte("not json")); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestItemIsExpired(t *testing.T) {
	item := &demostore.Item{}
	if item.IsExpired() {
		t.Fatalf("item without expiry reported expired")
	}
	past := time.Now().Add(-time.Second)
	item.ExpiresAt = &past
	if !item.IsExpired() {
		t.Fatalf("expired item not reported")
	}
}
