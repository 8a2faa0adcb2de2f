package tools

import (
	"context"
	"testing"

	utcptools "github.com/universal-tool-calling-protocol/go-utcp/src/tools"
)

type fakeUTCPClient struct {
	tools   []utcptools.Tool
	callOut any
	callErr error
	queries []string
}

func (f *fakeUTCPClient) SearchTools(query string, limit int) ([]utcptools.Tool, error) {
	f.queries = append(f.queries, query)
	return f.tools, nil
}

func (f *fakeUTCPClient) CallTool(_ context.Context, toolName string, args map[string]any) (any, error) {
	return f.callOut, f.callErr
}

func TestUTCPServerListToolsMapsSchemas(t *testing.T) {
	client := &fakeUTCPClient{tools: []utcptools.Tool{
		{
			Name:        "lookup_weather",
			Description: "Returns the weather for a city",
			Inputs: utcptools.ToolInputOutputSchema{
				Type: "object",
				Properties: map[string]any{
					"city": map[string]any{"type": "string"},
				},
				Required: []string{"city"},
			},
		},
		{Name: "bare_tool"},
	}}
	srv := NewUTCPServer("utilities", client)

	descs, err := srv.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("unexpected descriptor count: %d", len(descs))
	}
	if descs[0].Name != "lookup_weather" {
		t.Fatalf("unexpected first tool: %s", descs[0].Name)
	}
	required, _ := descs[0].Parameters["required"].([]string)
	if len(required) != 1 || required[0] != "city" {
		t.Fatalf("required list not mapped: %v", descs[0].Parameters)
	}
	if typ, _ := descs[1].Parameters["type"].(string); typ != "object" {
		t.Fatalf("missing schema type should default to object: %v", descs[1].Parameters)
	}
	if len(client.queries) != 1 || client.queries[0] != "" {
		t.Fatalf("listing should search with an empty query: %v", client.queries)
	}
}

func TestUTCPServerCallToolFlattensResults(t *testing.T) {
	srv := NewUTCPServer("utilities", &fakeUTCPClient{callOut: "sunny"})
	result, err := srv.CallTool(context.Background(), "lookup_weather", map[string]any{"city": "Oslo"})
	if err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	if result.Text != "sunny" {
		t.Fatalf("unexpected text: %q", result.Text)
	}

	srv = NewUTCPServer("utilities", &fakeUTCPClient{callOut: map[string]any{"temp": 21}})
	result, err = srv.CallTool(context.Background(), "lookup_weather", nil)
	if err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	if result.Text != `{"temp":21}` {
		t.Fatalf("map result should render as JSON, got %q", result.Text)
	}
}
