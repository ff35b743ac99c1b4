package predict

import (
	"context"
	"strings"
	"testing"

	"github.com/promptsig/promptsig-go/adapter"
	"github.com/promptsig/promptsig-go/chat"
	"github.com/promptsig/promptsig-go/provider/providertest"
	"github.com/promptsig/promptsig-go/signature"
)

type mathIn struct {
	Problem string `json:"problem"`
}

type mathOut struct {
	Answer string `json:"answer"`
}

func mathSig(t *testing.T) signature.Signature[mathIn, mathOut] {
	t.Helper()
	sig, err := signature.Define[mathIn, mathOut]("math").
		Instructions("Solve the problem.").
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return sig
}

func TestForward(t *testing.T) {
	prov := providertest.New(providertest.ReplyText("[[ ## answer ## ]]\nsix\n\n[[ ## completed ## ]]"))
	p := New(mathSig(t), adapter.NewChatAdapter(adapter.DefaultConfig()), prov, chat.CompletionConfig{Model: "m"})

	out, err := p.Forward(context.Background(), mathIn{Problem: "3+3"})
	if err != nil {
		t.Fatalf("Forward failed: %v", err)
	}
	if out.Answer != "six" {
		t.Fatalf("answer = %q", out.Answer)
	}
	if got := prov.Config(0).Model; got != "m" {
		t.Fatalf("model = %q", got)
	}
}

func TestForward_UsesAttachedDemos(t *testing.T) {
	prov := providertest.New(providertest.ReplyText("[[ ## answer ## ]]\nten\n\n[[ ## completed ## ]]"))
	p := New(mathSig(t), adapter.NewChatAdapter(adapter.DefaultConfig()), prov, chat.CompletionConfig{})

	p.SetDemos([]signature.Demo[mathIn, mathOut]{
		{Inputs: mathIn{Problem: "2+2"}, Outputs: mathOut{Answer: "four"}},
	})
	if len(p.Demos()) != 1 {
		t.Fatalf("Demos() = %v", p.Demos())
	}

	if _, err := p.Forward(context.Background(), mathIn{Problem: "5+5"}); err != nil {
		t.Fatalf("Forward failed: %v", err)
	}

	msgs := prov.Messages(0)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages, want system + demo pair + user", len(msgs))
	}
	if !strings.Contains(msgs[1].Text(), "2+2") || !strings.Contains(msgs[2].Text(), "four") {
		t.Fatalf("demo not rendered: %+v", msgs[1:3])
	}
}

func TestForward_PassesGenerateOptions(t *testing.T) {
	prov := providertest.New() // empty script: every call errors
	p := New(mathSig(t), adapter.NewChatAdapter(adapter.DefaultConfig()), prov, chat.CompletionConfig{})

	_, err := p.Forward(context.Background(), mathIn{Problem: "1+1"}, adapter.WithMaxRetries(2))
	if err == nil {
		t.Fatalf("expected error from exhausted script")
	}
	if prov.Calls() != 2 {
		t.Fatalf("calls = %d, want the overridden budget of 2", prov.Calls())
	}
}

func TestSignatureAccessor(t *testing.T) {
	p := New(mathSig(t), adapter.NewChatAdapter(adapter.DefaultConfig()), providertest.New(), chat.CompletionConfig{})
	p.Signature().SetInstructions("Show your work.")
	if got := p.Signature().Instructions(); got != "Show your work." {
		t.Fatalf("Instructions = %q", got)
	}
}
