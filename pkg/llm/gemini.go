package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiGateway speaks the Gemini API via the generative-ai-go SDK.
type GeminiGateway struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiGateway constructs a gateway. The API key falls back to
// GOOGLE_API_KEY, then GEMINI_API_KEY.
func NewGeminiGateway(ctx context.Context, cfg Config) (*GeminiGateway, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("llm: GOOGLE_API_KEY or GEMINI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("llm: create gemini client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiGateway{client: client, model: model, maxTokens: cfg.maxTokens()}, nil
}

// Close releases the underlying gRPC connection.
func (g *GeminiGateway) Close() error { return g.client.Close() }

func (g *GeminiGateway) Complete(ctx context.Context, messages []Message, tools []ToolSchema) (*Completion, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetMaxOutputTokens(int32(g.maxTokens))
	if len(tools) > 0 {
		model.Tools = toGeminiTools(tools)
	}

	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(m.Content)},
			})
		case RoleAssistant:
			var parts []genai.Part
			if m.Content != "" {
				parts = append(parts, genai.Text(m.Content))
			}
			for _, tc := range m.ToolCalls {
				var args map[string]any
				if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
					args = map[string]any{}
				}
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: args})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}
		case RoleTool:
			contents = append(contents, &genai.Content{
				Role: "function",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     m.ToolName,
					Response: map[string]any{"content": m.Content},
				}},
			})
		}
	}
	if len(contents) == 0 {
		return nil, errors.New("llm: gemini request has no messages")
	}

	chat := model.StartChat()
	chat.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := chat.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &InvalidResponseError{Provider: "gemini", Reason: "response has no candidates"}
	}

	candidate := resp.Candidates[0]
	var b strings.Builder
	var calls []ToolCall
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			b.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				return nil, &InvalidResponseError{Provider: "gemini", Reason: "unencodable function call arguments"}
			}
			// Gemini does not assign call IDs, so synthesize stable ones.
			calls = append(calls, ToolCall{
				ID:        fmt.Sprintf("call-%s-%d", p.Name, len(calls)),
				Name:      p.Name,
				Arguments: string(args),
			})
		}
	}

	reason := FinishOther
	switch {
	case len(calls) > 0:
		reason = FinishToolCalls
	case candidate.FinishReason == genai.FinishReasonStop:
		reason = FinishStop
	}
	return normalize("gemini", reason, b.String(), calls)
}

func toGeminiTools(tools []ToolSchema) []*genai.Tool {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  toGeminiSchema(t.Parameters),
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}
}

// toGeminiSchema converts a JSON-schema map into the SDK's typed Schema.
// Unknown types default to object so empty schemas stay valid.
func toGeminiSchema(schema map[string]any) *genai.Schema {
	out := &genai.Schema{Type: genai.TypeObject}
	if desc, ok := schema["description"].(string); ok {
		out.Description = desc
	}
	typ, _ := schema["type"].(string)
	switch typ {
	case "string":
		out.Type = genai.TypeString
	case "number":
		out.Type = genai.TypeNumber
	case "integer":
		out.Type = genai.TypeInteger
	case "boolean":
		out.Type = genai.TypeBoolean
	case "array":
		out.Type = genai.TypeArray
		if items, ok := schema["items"].(map[string]any); ok {
			out.Items = toGeminiSchema(items)
		}
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]any); ok {
				out.Properties[name] = toGeminiSchema(sub)
			}
		}
	}
	out.Required = schemaRequired(schema)
	return out
}

func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		transient := apiErr.Code == 429 || apiErr.Code == 408 || apiErr.Code >= 500
		return &GatewayError{Provider: "gemini", Transient: transient, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return &GatewayError{Provider: "gemini", Transient: true, Err: err}
	}
	return &GatewayError{Provider: "gemini", Err: err}
}
