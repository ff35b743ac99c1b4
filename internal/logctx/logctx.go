// Package logctx enriches slog records with generation-scoped attributes
// carried on the context. Install Handler over any slog.Handler to have
// every log line emitted during a generation call tagged with the
// signature, adapter and model driving it.
package logctx

import (
	"context"
	"log/slog"
)

type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if gd, ok := ctx.Value(generationKey{}).(*GenerationData); ok {
		r.AddAttrs(slog.Group("gen",
			slog.String("signature", gd.Signature),
			slog.String("adapter", gd.Adapter),
			slog.String("model", gd.Model),
		))
	}
	return h.Handler.Handle(ctx, r)
}

type generationKey struct{}

type GenerationData struct {
	Signature string
	Adapter   string
	Model     string
}

func WithGeneration(ctx context.Context, data *GenerationData) context.Context {
	return context.WithValue(ctx, generationKey{}, data)
}
