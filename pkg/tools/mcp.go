package tools

import (
	"context"
	"encoding/json"

	"github.com/relaydev/mcp-chat-client/pkg/mcp"
)

// MCPClient is the subset of the MCP client surface the adapter uses.
type MCPClient interface {
	ListTools(ctx context.Context) ([]mcp.ToolDefinition, error)
	CallTool(ctx context.Context, name string, arguments map[string]any) (mcp.CallResult, error)
	Close() error
}

// MCPServer adapts a connected MCP client to the Server interface.
type MCPServer struct {
	name   string
	client MCPClient
}

func NewMCPServer(name string, client MCPClient) *MCPServer {
	return &MCPServer{name: name, client: client}
}

func (s *MCPServer) Name() string { return s.name }

// ListTools fetches the server's tool definitions and decodes their input
// schemas. Tools without a schema advertise an empty object so the
// completion APIs still accept them.
func (s *MCPServer) ListTools(ctx context.Context) ([]Descriptor, error) {
	defs, err := s.client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(defs))
	for _, def := range defs {
		params := map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
		if len(def.InputSchema) > 0 {
			var decoded map[string]any
			if err := json.Unmarshal(def.InputSchema, &decoded); err == nil && decoded != nil {
				params = decoded
			}
		}
		out = append(out, Descriptor{
			Name:        def.Name,
			Description: def.Description,
			Parameters:  params,
		})
	}
	return out, nil
}

// CallTool invokes the remote tool. On failure the flattened payload is still
// returned alongside the error so callers can fold it into their context.
func (s *MCPServer) CallTool(ctx context.Context, name string, args map[string]any) (Result, error) {
	result, err := s.client.CallTool(ctx, name, args)
	return Result{Text: result.PrimaryText()}, err
}

func (s *MCPServer) Close() error { return s.client.Close() }

var _ Server = (*MCPServer)(nil)
