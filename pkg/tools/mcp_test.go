package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/relaydev/mcp-chat-client/pkg/mcp"
)

type fakeMCPClient struct {
	defs    []mcp.ToolDefinition
	result  mcp.CallResult
	callErr error
	closed  bool
}

func (f *fakeMCPClient) ListTools(_ context.Context) ([]mcp.ToolDefinition, error) {
	return f.defs, nil
}

func (f *fakeMCPClient) CallTool(_ context.Context, name string, args map[string]any) (mcp.CallResult, error) {
	return f.result, f.callErr
}

func (f *fakeMCPClient) Close() error {
	f.closed = true
	return nil
}

func TestMCPServerDecodesInputSchema(t *testing.T) {
	client := &fakeMCPClient{defs: []mcp.ToolDefinition{
		{
			Name:        "search_papers",
			Description: "Searches arXiv",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"topic":{"type":"string"}},"required":["topic"]}`),
		},
		{Name: "no_schema"},
	}}
	srv := NewMCPServer("research", client)

	descs, err := srv.ListTools(context.Background())
	if err != nil {
		t.Fatalf("ListTools error: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("unexpected descriptor count: %d", len(descs))
	}
	props, ok := descs[0].Parameters["properties"].(map[string]any)
	if !ok || props["topic"] == nil {
		t.Fatalf("schema not decoded: %v", descs[0].Parameters)
	}
	if typ, _ := descs[1].Parameters["type"].(string); typ != "object" {
		t.Fatalf("missing schema should default to an object: %v", descs[1].Parameters)
	}
}

func TestMCPServerCallToolFlattensContent(t *testing.T) {
	client := &fakeMCPClient{result: mcp.CallResult{Content: []mcp.Content{
		{Type: "text", Text: "first"},
		{Type: "text", Text: "second"},
	}}}
	srv := NewMCPServer("research", client)

	result, err := srv.CallTool(context.Background(), "search_papers", nil)
	if err != nil {
		t.Fatalf("CallTool error: %v", err)
	}
	if result.Text != "first\nsecond" {
		t.Fatalf("unexpected text: %q", result.Text)
	}
}

func TestMCPServerCallToolKeepsPayloadOnError(t *testing.T) {
	client := &fakeMCPClient{
		result:  mcp.CallResult{IsError: true, Content: []mcp.Content{{Type: "text", Text: "rate limited"}}},
		callErr: errors.New("tool failed"),
	}
	srv := NewMCPServer("research", client)

	result, err := srv.CallTool(context.Background(), "search_papers", nil)
	if err == nil {
		t.Fatalf("expected error")
	}
	if result.Text != "rate limited" {
		t.Fatalf("payload dropped on error: %q", result.Text)
	}
}

func TestMCPServerClosePropagates(t *testing.T) {
	client := &fakeMCPClient{}
	srv := NewMCPServer("research", client)
	if err := srv.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}
	if !client.closed {
		t.Fatalf("client not closed")
	}
}
