package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// GroqBaseURL is Groq's OpenAI-compatible endpoint, the default backend of
// the chat client.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// OpenAIGateway speaks the OpenAI chat-completions API, including
// OpenAI-compatible servers such as Groq.
type OpenAIGateway struct {
	client    *openai.Client
	provider  string
	model     string
	maxTokens int
}

// NewOpenAIGateway builds a gateway against api.openai.com, or against
// cfg.BaseURL when set. The API key falls back to OPENAI_API_KEY.
func NewOpenAIGateway(cfg Config) *OpenAIGateway {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIGateway{
		client:    openai.NewClientWithConfig(clientCfg),
		provider:  "openai",
		model:     model,
		maxTokens: cfg.maxTokens(),
	}
}

// NewGroqGateway builds a gateway against Groq. The API key falls back to
// GROQ_API_KEY and the model to DefaultGroqModel.
func NewGroqGateway(cfg Config) *OpenAIGateway {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = GroqBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}
	gw := NewOpenAIGateway(cfg)
	gw.provider = "groq"
	return gw
}

func (g *OpenAIGateway) Complete(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error) {
	req := openai.ChatCompletionRequest{
		Model:     g.model,
		Messages:  toOpenAIMessages(messages),
		MaxTokens: g.maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, classifyOpenAIError(g.provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &InvalidResponseError{Provider: g.provider, Reason: "response has no choices"}
	}

	choice := resp.Choices[0]
	calls := make([]ToolCall, 0, len(choice.Message.ToolCalls))
	for _, tc := range choice.Message.ToolCalls {
		calls = append(calls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	reason := FinishOther
	switch {
	case len(calls) > 0:
		reason = FinishToolCalls
	case choice.FinishReason == openai.FinishReasonStop:
		reason = FinishStop
	}
	return normalize(g.provider, reason, choice.Message.Content, calls)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		if m.Role == RoleTool {
			msg.ToolCallID = m.ToolCallID
			msg.Name = m.ToolName
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []ToolSchema) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func classifyOpenAIError(provider string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		transient := apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode == http.StatusRequestTimeout ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
		return &GatewayError{Provider: provider, Transient: transient, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Provider: provider, Transient: true, Err: err}
	}
	return &GatewayError{Provider: provider, Err: err}
}
