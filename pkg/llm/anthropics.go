package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGateway speaks Anthropic's Messages API.
type AnthropicGateway struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicGateway constructs a gateway. The API key falls back to
// ANTHROPIC_API_KEY from the env.
func NewAnthropicGateway(cfg Config) *AnthropicGateway {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("ANTHROPIC_API_KEY")
	}
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(key),
	)
	model := cfg.Model
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}
	return &AnthropicGateway{
		client:    &cl,
		model:     model,
		maxTokens: cfg.maxTokens(),
	}
}

func (a *AnthropicGateway) Complete(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error) {
	system, history := toAnthropicMessages(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: int64(a.maxTokens),
		System:    system,
		Messages:  history,
	}
	for _, t := range tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: schemaProperties(t.Parameters),
					Required:   schemaRequired(t.Parameters),
				},
			},
		})
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, classifyAnthropicError(err)
	}

	var b strings.Builder
	var calls []ToolCall
	for _, cb := range msg.Content {
		switch block := cb.AsAny().(type) {
		case anthropic.TextBlock:
			b.WriteString(block.Text)
		case anthropic.ToolUseBlock:
			calls = append(calls, ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: string(block.Input),
			})
		}
	}

	reason := FinishOther
	switch {
	case len(calls) > 0:
		reason = FinishToolCalls
	case msg.StopReason == anthropic.StopReasonEndTurn:
		reason = FinishStop
	}
	return normalize("anthropic", reason, b.String(), calls)
}

// toAnthropicMessages splits the history into the system prompt blocks and
// the user/assistant turns of the Messages API. Tool results travel as
// tool_result blocks inside user turns.
func toAnthropicMessages(messages []Message) ([]anthropic.TextBlockParam, []anthropic.MessageParam) {
	var system []anthropic.TextBlockParam
	var history []anthropic.MessageParam
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: m.Content})
		case RoleUser:
			history = append(history, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			var blocks []anthropic.ContentBlockParamUnion
			if strings.TrimSpace(m.Content) != "" {
				blocks = append(blocks, anthropic.NewTextBlock(m.Content))
			}
			for _, tc := range m.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, json.RawMessage(tc.Arguments), tc.Name))
			}
			if len(blocks) > 0 {
				history = append(history, anthropic.NewAssistantMessage(blocks...))
			}
		case RoleTool:
			history = append(history, anthropic.NewUserMessage(anthropic.NewToolResultBlock(m.ToolCallID, m.Content, false)))
		}
	}
	return system, history
}

func classifyAnthropicError(err error) error {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		transient := apiErr.StatusCode == http.StatusTooManyRequests ||
			apiErr.StatusCode == http.StatusRequestTimeout ||
			apiErr.StatusCode >= http.StatusInternalServerError
		return &GatewayError{Provider: "anthropic", Transient: transient, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Provider: "anthropic", Transient: true, Err: err}
	}
	return &GatewayError{Provider: "anthropic", Err: err}
}
