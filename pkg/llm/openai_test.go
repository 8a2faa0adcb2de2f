package llm

import (
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func TestToOpenAIMessagesMapsToolMessages(t *testing.T) {
	msgs := toOpenAIMessages([]Message{
		SystemMessage("preamble"),
		UserMessage("question"),
		AssistantMessage("", ToolCall{ID: "call-1", Name: "search_papers", Arguments: `{"topic":"agents"}`}),
		ToolMessage("call-1", "search_papers", "result payload"),
	})
	if len(msgs) != 4 {
		t.Fatalf("unexpected message count: %d", len(msgs))
	}
	assistant := msgs[2]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].Function.Name != "search_papers" {
		t.Fatalf("assistant tool calls not mapped: %+v", assistant.ToolCalls)
	}
	if assistant.ToolCalls[0].Type != openai.ToolTypeFunction {
		t.Fatalf("unexpected tool call type: %s", assistant.ToolCalls[0].Type)
	}
	result := msgs[3]
	if result.Role != RoleTool || result.ToolCallID != "call-1" || result.Name != "search_papers" {
		t.Fatalf("tool result not mapped: %+v", result)
	}
}

func TestToOpenAIToolsCarriesSchema(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{"type": "string"},
		},
		"required": []string{"topic"},
	}
	out := toOpenAITools([]ToolSchema{{Name: "search_papers", Description: "Search papers", Parameters: schema}})
	if len(out) != 1 {
		t.Fatalf("unexpected tool count: %d", len(out))
	}
	fn := out[0].Function
	if fn.Name != "search_papers" || fn.Description != "Search papers" {
		t.Fatalf("unexpected function definition: %+v", fn)
	}
	if fn.Parameters == nil {
		t.Fatalf("schema not carried through")
	}
}

func TestClassifyOpenAIErrorTransient(t *testing.T) {
	for _, status := range []int{408, 429, 500, 503} {
		err := classifyOpenAIError("groq", &openai.APIError{HTTPStatusCode: status})
		var gwErr *GatewayError
		if !errors.As(err, &gwErr) || !gwErr.Transient {
			t.Fatalf("status %d should be transient, got %v", status, err)
		}
	}
}

func TestClassifyOpenAIErrorFatal(t *testing.T) {
	err := classifyOpenAIError("groq", &openai.APIError{HTTPStatusCode: 401})
	var gwErr *GatewayError
	if !errors.As(err, &gwErr) || gwErr.Transient {
		t.Fatalf("status 401 should be fatal, got %v", err)
	}
}
