// Package openai provides a Provider over the OpenAI chat completions API
// (and any endpoint speaking the same wire format via BaseURL).
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/promptsig/promptsig-go/chat"
	"github.com/promptsig/promptsig-go/provider"
)

const providerName = "openai"

// Config contains credential and runtime options. Fields carry envdecode
// tags so a Config can be populated from the environment.
type Config struct {
	// APIKey authenticates requests. ENV: OPENAI_API_KEY
	APIKey string `env:"OPENAI_API_KEY"`
	// BaseURL overrides the API endpoint, e.g. for proxies or compatible
	// vendors. ENV: OPENAI_BASE_URL
	BaseURL string `env:"OPENAI_BASE_URL"`
	// HTTPClient overrides the transport used for API calls.
	HTTPClient *http.Client
}

// Client implements provider.Provider using OpenAI chat completions.
type Client struct {
	client *goopenai.Client
}

// New builds an OpenAI-backed completion provider.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai: api key is required")
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}
	return &Client{client: goopenai.NewClientWithConfig(apiCfg)}, nil
}

// NewFromEnv builds a Client using envdecode to populate Config. Missing
// variables surface through New's validation rather than decode errors.
func NewFromEnv() (*Client, error) {
	var cfg Config
	_ = envdecode.Decode(&cfg)
	return New(cfg)
}

// Complete implements provider.Provider.
func (c *Client) Complete(ctx context.Context, messages []chat.Message, cfg chat.CompletionConfig) (chat.Message, error) {
	req := goopenai.ChatCompletionRequest{
		Model:    cfg.Model,
		Messages: toRequestMessages(messages),
	}
	if len(cfg.Tools) > 0 {
		req.Tools = toRequestTools(cfg.Tools)
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return chat.Message{}, &provider.Error{Name: providerName, Err: err}
	}
	if len(resp.Choices) == 0 {
		return chat.Message{}, &provider.Error{Name: providerName, Err: errors.New("no choices returned")}
	}

	choice := resp.Choices[0]
	calls := fromResponseToolCalls(choice.Message.ToolCalls)

	var content *string
	if choice.Message.Content != "" || len(calls) == 0 {
		text := choice.Message.Content
		content = &text
	}
	return chat.Assistant(content, calls), nil
}

func toRequestMessages(messages []chat.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		om := goopenai.ChatCompletionMessage{Content: m.Text()}
		switch m.Role {
		case chat.RoleSystem:
			om.Role = goopenai.ChatMessageRoleSystem
		case chat.RoleAssistant:
			om.Role = goopenai.ChatMessageRoleAssistant
			if len(m.ToolCalls) > 0 {
				om.ToolCalls = toRequestToolCalls(m.ToolCalls)
			}
		case chat.RoleTool:
			om.Role = goopenai.ChatMessageRoleTool
			om.ToolCallID = m.ToolCallID
		default:
			om.Role = goopenai.ChatMessageRoleUser
		}
		out[i] = om
	}
	return out
}

func toRequestToolCalls(calls []chat.ToolCall) []goopenai.ToolCall {
	out := make([]goopenai.ToolCall, len(calls))
	for i, tc := range calls {
		out[i] = goopenai.ToolCall{
			ID:   tc.ID,
			Type: goopenai.ToolTypeFunction,
			Function: goopenai.FunctionCall{
				Name:      tc.Name,
				Arguments: string(tc.Arguments),
			},
		}
	}
	return out
}

func toRequestTools(tools []chat.AvailableTool) []goopenai.Tool {
	out := make([]goopenai.Tool, len(tools))
	for i, t := range tools {
		fn := &goopenai.FunctionDefinition{
			Name:        t.Name,
			Description: t.Description,
		}
		if len(t.InputSchema) > 0 {
			fn.Parameters = t.InputSchema
		}
		out[i] = goopenai.Tool{Type: goopenai.ToolTypeFunction, Function: fn}
	}
	return out
}

func fromResponseToolCalls(calls []goopenai.ToolCall) []chat.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]chat.ToolCall, len(calls))
	for i, tc := range calls {
		id := tc.ID
		if id == "" {
			// Some compatible backends omit call ids.
			id = uuid.NewString()
		}
		args := json.RawMessage(tc.Function.Arguments)
		if !json.Valid(args) {
			args, _ = json.Marshal(tc.Function.Arguments)
		}
		out[i] = chat.ToolCall{ID: id, Name: tc.Function.Name, Arguments: args}
	}
	return out
}

var _ provider.Provider = (*Client)(nil)
