// Package llm normalizes the chat-completion APIs of the supported
// providers behind a single Gateway interface. Every provider is reduced to
// the same three-way outcome: final text, a batch of tool calls, or a
// truncated/other stop.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Roles used in conversation history. They follow the naming shared by the
// OpenAI-compatible providers; backends that use other conventions translate
// on the way out.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one entry of the conversation history sent to a provider.
type Message struct {
	Role    string
	Content string

	// ToolCalls is set on assistant messages that requested tool
	// invocations.
	ToolCalls []ToolCall

	// ToolCallID and ToolName tie a tool-role message back to the call
	// that produced it.
	ToolCallID string
	ToolName   string
}

// SystemMessage returns a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage returns a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage returns an assistant-role message carrying text and any
// tool calls the model issued alongside it.
func AssistantMessage(content string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage returns a tool-role message holding the result of a single
// tool call.
func ToolMessage(callID, toolName, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID, ToolName: toolName}
}

// ToolCall is one tool invocation requested by the model. Arguments holds
// the raw JSON payload exactly as the provider produced it.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolSchema describes a callable tool in the shape the providers'
// function-calling APIs expect. Parameters is a JSON-schema object.
type ToolSchema struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// FinishReason selects which field of a Completion is meaningful.
type FinishReason string

const (
	// FinishStop means the model produced a final text answer.
	FinishStop FinishReason = "stop"
	// FinishToolCalls means the model requested one or more tool calls.
	FinishToolCalls FinishReason = "tool_calls"
	// FinishOther covers truncation and any provider-specific stop the
	// caller should treat as terminal.
	FinishOther FinishReason = "other"
)

// Completion is a provider response reduced to the common shape. Text is
// meaningful when FinishReason is FinishStop or FinishOther, ToolCalls when
// it is FinishToolCalls.
type Completion struct {
	FinishReason FinishReason
	Text         string
	ToolCalls    []ToolCall
}

// Gateway performs one completion round-trip against a provider.
type Gateway interface {
	Complete(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error)
}

// Defaults applied by Config when fields are left zero.
const (
	DefaultMaxTokens = 1000
	DefaultGroqModel = "llama-3.3-70b-versatile"
)

// Config carries the settings for constructing a Gateway. Zero values fall
// back to provider-specific environment variables and defaults.
type Config struct {
	// Provider selects the backend: groq, openai, anthropic, gemini,
	// ollama or dummy. Empty means groq.
	Provider string
	// Model is the provider-specific model identifier.
	Model string
	// APIKey overrides the provider's environment variable.
	APIKey string
	// BaseURL overrides the provider endpoint where supported.
	BaseURL string
	// MaxTokens caps the completion length. Zero means DefaultMaxTokens.
	MaxTokens int
}

func (c Config) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return DefaultMaxTokens
}

// New builds a Gateway for the provider named in cfg.
func New(ctx context.Context, cfg Config) (Gateway, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "groq":
		return NewGroqGateway(cfg), nil
	case "openai":
		return NewOpenAIGateway(cfg), nil
	case "anthropic", "claude":
		return NewAnthropicGateway(cfg), nil
	case "gemini", "google":
		return NewGeminiGateway(ctx, cfg)
	case "ollama":
		return NewOllamaGateway(cfg)
	case "dummy":
		return &DummyGateway{}, nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}

// normalize validates a decoded provider response and packages it as a
// Completion. It enforces the Completion contract: tool_calls responses must
// carry at least one call and stop responses must carry text.
func normalize(provider string, reason FinishReason, text string, calls []ToolCall) (*Completion, error) {
	switch reason {
	case FinishToolCalls:
		if len(calls) == 0 {
			return nil, &InvalidResponseError{Provider: provider, Reason: "tool_calls finish without tool calls"}
		}
		for _, call := range calls {
			if call.Name == "" {
				return nil, &InvalidResponseError{Provider: provider, Reason: "tool call without a name"}
			}
		}
	case FinishStop:
		if strings.TrimSpace(text) == "" {
			return nil, &InvalidResponseError{Provider: provider, Reason: "stop finish without text"}
		}
	}
	return &Completion{FinishReason: reason, Text: text, ToolCalls: calls}, nil
}

// schemaProperties extracts the properties object from a JSON-schema map.
func schemaProperties(params map[string]any) map[string]any {
	if props, ok := params["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}

// schemaRequired extracts the required list from a JSON-schema map,
// tolerating both []string and the []any produced by json.Unmarshal.
func schemaRequired(params map[string]any) []string {
	switch v := params["required"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
