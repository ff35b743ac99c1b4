// Package providertest provides a scripted in-memory Provider for tests.
// Each call consumes the next scripted result in order and records the
// message snapshot and config it was invoked with.
package providertest

import (
	"context"
	"errors"
	"sync"

	"github.com/promptsig/promptsig-go/chat"
)

// Result is one scripted provider outcome.
type Result struct {
	Message chat.Message
	Err     error
}

// Reply scripts a successful response.
func Reply(m chat.Message) Result { return Result{Message: m} }

// ReplyText scripts a successful text-only assistant response.
func ReplyText(text string) Result { return Result{Message: chat.AssistantText(text)} }

// Fail scripts a provider failure.
func Fail(err error) Result { return Result{Err: err} }

// Provider is a scripted completion backend. Safe for concurrent use.
type Provider struct {
	mu      sync.Mutex
	script  []Result
	calls   [][]chat.Message
	configs []chat.CompletionConfig
}

// New builds a Provider that will serve the given results in order.
func New(script ...Result) *Provider {
	return &Provider{script: script}
}

// Complete consumes the next scripted result. Calling past the end of the
// script is an error so tests fail loudly on unexpected extra attempts.
func (p *Provider) Complete(ctx context.Context, messages []chat.Message, cfg chat.CompletionConfig) (chat.Message, error) {
	if err := ctx.Err(); err != nil {
		return chat.Message{}, err
	}

	p.mu.Lock()
	snapshot := append([]chat.Message(nil), messages...)
	p.calls = append(p.calls, snapshot)
	p.configs = append(p.configs, cfg)
	idx := len(p.calls) - 1
	var res Result
	scripted := idx < len(p.script)
	if scripted {
		res = p.script[idx]
	}
	p.mu.Unlock()

	if !scripted {
		return chat.Message{}, errors.New("providertest: script exhausted")
	}
	return res.Message, res.Err
}

// Calls reports how many times Complete was invoked.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

// Messages returns the message snapshot of the i-th call.
func (p *Provider) Messages(i int) []chat.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[i]
}

// Config returns the completion config of the i-th call.
func (p *Provider) Config(i int) chat.CompletionConfig {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.configs[i]
}
