package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestToGeminiSchemaConvertsTypes(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"topic": map[string]any{"type": "string", "description": "Search topic"},
			"limit": map[string]any{"type": "integer"},
			"tags":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"topic"},
	}

	got := toGeminiSchema(schema)
	if got.Type != genai.TypeObject {
		t.Fatalf("unexpected root type: %v", got.Type)
	}
	if got.Properties["topic"].Type != genai.TypeString {
		t.Fatalf("unexpected topic type: %v", got.Properties["topic"].Type)
	}
	if got.Properties["topic"].Description != "Search topic" {
		t.Fatalf("description dropped")
	}
	if got.Properties["limit"].Type != genai.TypeInteger {
		t.Fatalf("unexpected limit type: %v", got.Properties["limit"].Type)
	}
	if got.Properties["tags"].Items == nil || got.Properties["tags"].Items.Type != genai.TypeString {
		t.Fatalf("array items not converted")
	}
	if len(got.Required) != 1 || got.Required[0] != "topic" {
		t.Fatalf("unexpected required list: %v", got.Required)
	}
}

func TestToGeminiSchemaDefaultsToObject(t *testing.T) {
	got := toGeminiSchema(map[string]any{})
	if got.Type != genai.TypeObject {
		t.Fatalf("empty schema should default to object, got %v", got.Type)
	}
}

func TestToGeminiToolsGroupsDeclarations(t *testing.T) {
	out := toGeminiTools([]ToolSchema{
		{Name: "search_papers", Description: "Search papers", Parameters: map[string]any{"type": "object"}},
		{Name: "extract_info", Description: "Extract info", Parameters: map[string]any{"type": "object"}},
	})
	if len(out) != 1 {
		t.Fatalf("expected a single tool grouping, got %d", len(out))
	}
	if len(out[0].FunctionDeclarations) != 2 {
		t.Fatalf("unexpected declaration count: %d", len(out[0].FunctionDeclarations))
	}
	if out[0].FunctionDeclarations[0].Name != "search_papers" {
		t.Fatalf("declaration order not preserved")
	}
}
