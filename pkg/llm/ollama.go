package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaGateway speaks the chat API of a local or remote Ollama server.
type OllamaGateway struct {
	client    *ollama.Client
	model     string
	maxTokens int
}

// NewOllamaGateway constructs a gateway. The host falls back to OLLAMA_HOST,
// then http://localhost:11434.
func NewOllamaGateway(cfg Config) (*OllamaGateway, error) {
	host := cfg.BaseURL
	if host == "" {
		host = os.Getenv("OLLAMA_HOST")
	}
	if host == "" {
		host = "http://localhost:11434"
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("llm: invalid ollama host %q: %w", host, err)
	}
	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}
	model := cfg.Model
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaGateway{
		client:    ollama.NewClient(u, httpClient),
		model:     model,
		maxTokens: cfg.maxTokens(),
	}, nil
}

func (o *OllamaGateway) Complete(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error) {
	chatMessages, err := toOllamaMessages(messages)
	if err != nil {
		return nil, err
	}
	chatTools, err := toOllamaTools(tools)
	if err != nil {
		return nil, err
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    o.model,
		Messages: chatMessages,
		Tools:    chatTools,
		Stream:   &stream,
		Options: map[string]any{
			"num_predict": o.maxTokens,
		},
	}

	var (
		text  strings.Builder
		calls []ToolCall
		last  ollama.ChatResponse
	)
	err = o.client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		if cr.Message.Content != "" {
			text.WriteString(cr.Message.Content)
		}
		for _, tc := range cr.Message.ToolCalls {
			args, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				return fmt.Errorf("encode tool call arguments: %w", err)
			}
			// Ollama does not assign call IDs, so synthesize stable ones.
			calls = append(calls, ToolCall{
				ID:        fmt.Sprintf("call-%s-%d", tc.Function.Name, len(calls)),
				Name:      tc.Function.Name,
				Arguments: string(args),
			})
		}
		last = cr
		return nil
	})
	if err != nil {
		return nil, classifyOllamaError(err)
	}

	reason := FinishOther
	switch {
	case len(calls) > 0:
		reason = FinishToolCalls
	case last.Done && (last.DoneReason == "" || last.DoneReason == "stop"):
		reason = FinishStop
	}
	return normalize("ollama", reason, text.String(), calls)
}

func toOllamaMessages(messages []Message) ([]ollama.Message, error) {
	out := make([]ollama.Message, 0, len(messages))
	for _, m := range messages {
		msg := ollama.Message{Role: m.Role, Content: m.Content}
		for _, tc := range m.ToolCalls {
			var call ollama.ToolCall
			call.Function.Name = tc.Name
			if err := json.Unmarshal([]byte(tc.Arguments), &call.Function.Arguments); err != nil {
				return nil, fmt.Errorf("llm: decode tool call arguments for %s: %w", tc.Name, err)
			}
			msg.ToolCalls = append(msg.ToolCalls, call)
		}
		out = append(out, msg)
	}
	return out, nil
}

// toOllamaTools fills the SDK's typed tool parameters by round-tripping the
// JSON-schema map through encoding/json.
func toOllamaTools(tools []ToolSchema) ([]ollama.Tool, error) {
	out := make([]ollama.Tool, 0, len(tools))
	for _, t := range tools {
		var tool ollama.Tool
		tool.Type = "function"
		tool.Function.Name = t.Name
		tool.Function.Description = t.Description
		raw, err := json.Marshal(t.Parameters)
		if err != nil {
			return nil, fmt.Errorf("llm: encode schema for %s: %w", t.Name, err)
		}
		if err := json.Unmarshal(raw, &tool.Function.Parameters); err != nil {
			return nil, fmt.Errorf("llm: decode schema for %s: %w", t.Name, err)
		}
		out = append(out, tool)
	}
	return out, nil
}

func classifyOllamaError(err error) error {
	var statusErr ollama.StatusError
	if errors.As(err, &statusErr) {
		transient := statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
		return &GatewayError{Provider: "ollama", Transient: transient, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Provider: "ollama", Transient: true, Err: err}
	}
	return &GatewayError{Provider: "ollama", Err: err}
}
