package tools

import (
	"context"
	"encoding/json"
	"fmt"

	utcptools "github.com/universal-tool-calling-protocol/go-utcp/src/tools"
)

// UTCPClient is the slice of the go-utcp client surface the adapter needs.
type UTCPClient interface {
	SearchTools(query string, limit int) ([]utcptools.Tool, error)
	CallTool(ctx context.Context, toolName string, args map[string]any) (any, error)
}

const defaultUTCPSearchLimit = 100

// UTCPServer adapts a go-utcp client to the Server interface.
type UTCPServer struct {
	name   string
	client UTCPClient
	limit  int
}

func NewUTCPServer(name string, client UTCPClient) *UTCPServer {
	return &UTCPServer{name: name, client: client, limit: defaultUTCPSearchLimit}
}

func (s *UTCPServer) Name() string { return s.name }

// ListTools enumerates the tools registered with the UTCP client. An empty
// query matches every provider.
func (s *UTCPServer) ListTools(_ context.Context) ([]Descriptor, error) {
	found, err := s.client.SearchTools("", s.limit)
	if err != nil {
		return nil, err
	}
	out := make([]Descriptor, 0, len(found))
	for _, t := range found {
		schemaType := t.Inputs.Type
		if schemaType == "" {
			schemaType = "object"
		}
		props := t.Inputs.Properties
		if props == nil {
			props = map[string]any{}
		}
		params := map[string]any{
			"type":       schemaType,
			"properties": props,
		}
		if len(t.Inputs.Required) > 0 {
			params["required"] = t.Inputs.Required
		}
		out = append(out, Descriptor{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return out, nil
}

// CallTool invokes the tool and flattens the dynamically typed result into
// text. Non-string payloads are rendered as JSON.
func (s *UTCPServer) CallTool(ctx context.Context, name string, args map[string]any) (Result, error) {
	out, err := s.client.CallTool(ctx, name, args)
	if err != nil {
		return Result{}, err
	}
	switch v := out.(type) {
	case nil:
		return Result{}, nil
	case string:
		return Result{Text: v}, nil
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return Result{Text: fmt.Sprintf("%v", v)}, nil
		}
		return Result{Text: string(encoded)}, nil
	}
}

func (s *UTCPServer) Close() error { return nil }

var _ Server = (*UTCPServer)(nil)
