package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Role indicates the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a single tool invocation requested by the model. Arguments
// carries the raw JSON argument object as produced by the provider.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// AvailableTool declares a tool the model may call. InputSchema, when set,
// is a JSON Schema document describing the tool's argument object.
type AvailableTool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema,omitempty"`
}

// CompletionConfig carries per-call provider settings.
type CompletionConfig struct {
	Model string
	Tools []AvailableTool
}

// Message is one entry in a conversation. Content is a pointer so an
// assistant message can distinguish "no text" from empty text: a provider
// response carrying only tool calls has a nil Content.
type Message struct {
	Role       Role       `json:"role"`
	Content    *string    `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// System constructs a system message.
func System(text string) Message {
	return Message{Role: RoleSystem, Content: &text}
}

// User constructs a user message.
func User(text string) Message {
	return Message{Role: RoleUser, Content: &text}
}

// Assistant constructs an assistant message. Either content or calls may be
// nil, but a message with neither fails Validate.
func Assistant(content *string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// AssistantText constructs an assistant message with text content only.
func AssistantText(text string) Message {
	return Message{Role: RoleAssistant, Content: &text}
}

// ToolResult constructs a tool message answering the given tool call.
func ToolResult(text, toolCallID string) Message {
	return Message{Role: RoleTool, Content: &text, ToolCallID: toolCallID}
}

// Text returns the message content, or the empty string when absent.
func (m Message) Text() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

// HasText reports whether the message carries text content.
func (m Message) HasText() bool { return m.Content != nil }

// HasToolCalls reports whether the message carries tool calls.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// Validate checks the structural rules for each message shape: assistant
// messages need text and/or tool calls, tool messages need the id of the
// call they answer, and every other role needs text content.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser:
		if m.Content == nil {
			return fmt.Errorf("%s message requires text content", m.Role)
		}
		if len(m.ToolCalls) > 0 {
			return fmt.Errorf("%s message cannot carry tool calls", m.Role)
		}
	case RoleAssistant:
		if m.Content == nil && len(m.ToolCalls) == 0 {
			return errors.New("assistant message requires text content or tool calls")
		}
	case RoleTool:
		if m.Content == nil {
			return errors.New("tool message requires text content")
		}
		if m.ToolCallID == "" {
			return errors.New("tool message requires a tool call id")
		}
	default:
		return fmt.Errorf("unknown role: %q", m.Role)
	}
	return nil
}
