package llm

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestToOllamaToolsRoundTripsSchema(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{"type": "string", "description": "Search topic"},
		},
		"required": []string{"topic"},
	}
	out, err := toOllamaTools([]ToolSchema{{Name: "search_papers", Description: "Search papers", Parameters: schema}})
	if err != nil {
		t.Fatalf("toOllamaTools returned error: %v", err)
	}
	if len(out) != 1 || out[0].Function.Name != "search_papers" {
		t.Fatalf("unexpected tools: %+v", out)
	}

	raw, err := json.Marshal(out[0].Function.Parameters)
	if err != nil {
		t.Fatalf("marshal parameters: %v", err)
	}
	for _, want := range []string{`"topic"`, `"required"`, `"string"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("parameters missing %s: %s", want, raw)
		}
	}
}

func TestToOllamaMessagesDecodesToolCallArguments(t *testing.T) {
	msgs, err := toOllamaMessages([]Message{
		AssistantMessage("", ToolCall{ID: "call-1", Name: "search_papers", Arguments: `{"topic":"agents"}`}),
		ToolMessage("call-1", "search_papers", "result"),
	})
	if err != nil {
		t.Fatalf("toOllamaMessages returned error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("unexpected message count: %d", len(msgs))
	}
	if len(msgs[0].ToolCalls) != 1 || msgs[0].ToolCalls[0].Function.Name != "search_papers" {
		t.Fatalf("tool call not mapped: %+v", msgs[0].ToolCalls)
	}
	if msgs[1].Role != RoleTool || msgs[1].Content != "result" {
		t.Fatalf("tool result not mapped: %+v", msgs[1])
	}
}

func TestToOllamaMessagesRejectsBadArguments(t *testing.T) {
	_, err := toOllamaMessages([]Message{
		AssistantMessage("", ToolCall{ID: "call-1", Name: "search_papers", Arguments: "not json"}),
	})
	if err == nil {
		t.Fatalf("expected error for undecodable arguments")
	}
}
