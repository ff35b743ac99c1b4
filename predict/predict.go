// Package predict bundles a signature, an adapter and a provider into a
// reusable prediction module. It is the smallest composition unit: richer
// multi-step pipelines can be built by chaining Forward calls, but no
// orchestration beyond that lives here.
package predict

import (
	"context"

	"github.com/promptsig/promptsig-go/adapter"
	"github.com/promptsig/promptsig-go/chat"
	"github.com/promptsig/promptsig-go/provider"
	"github.com/promptsig/promptsig-go/signature"
)

// Predict runs one signature against one provider through one adapter.
// Demos attached to the module are rendered as few-shot examples on every
// call. The zero value is not usable; construct with New.
type Predict[I, O any] struct {
	sig   signature.Signature[I, O]
	ad    adapter.Adapter
	prov  provider.Provider
	cfg   chat.CompletionConfig
	demos []signature.Demo[I, O]
}

// New constructs a prediction module.
func New[I, O any](sig signature.Signature[I, O], ad adapter.Adapter, prov provider.Provider, cfg chat.CompletionConfig) *Predict[I, O] {
	return &Predict[I, O]{sig: sig, ad: ad, prov: prov, cfg: cfg}
}

// Signature returns the module's signature, e.g. for instruction rewrites.
func (p *Predict[I, O]) Signature() signature.Signature[I, O] { return p.sig }

// SetDemos replaces the module's few-shot examples. Not safe to call
// concurrently with Forward.
func (p *Predict[I, O]) SetDemos(demos []signature.Demo[I, O]) { p.demos = demos }

// Demos returns the module's current few-shot examples.
func (p *Predict[I, O]) Demos() []signature.Demo[I, O] { return p.demos }

// Forward runs one generation call.
func (p *Predict[I, O]) Forward(ctx context.Context, inputs I, opts ...adapter.GenerateOption) (O, error) {
	return adapter.Generate(ctx, p.ad, p.prov, p.cfg, p.sig, p.demos, inputs, opts...)
}
