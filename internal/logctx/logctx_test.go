package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestHandlerAddsGenerationAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(Handler{slog.NewTextHandler(&buf, nil)})

	ctx := WithGeneration(context.Background(), &GenerationData{
		Signature: "qa",
		Adapter:   "chat",
		Model:     "gpt-4o-mini",
	})
	logger.InfoContext(ctx, "attempt")

	out := buf.String()
	for _, want := range []string{"gen.signature=qa", "gen.adapter=chat", "gen.model=gpt-4o-mini"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %q: %s", want, out)
		}
	}
}

func TestHandlerWithoutGeneration(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(Handler{slog.NewTextHandler(&buf, nil)})

	logger.Info("plain")
	if strings.Contains(buf.String(), "gen.") {
		t.Fatalf("unexpected generation attrs: %s", buf.String())
	}
}
