// Package tools aggregates the tools exposed by MCP and UTCP servers into a
// single catalog the chat loop can advertise to a model and dispatch
// invocations against.
package tools

import "context"

// Descriptor describes one remote tool. Parameters holds the JSON-schema
// object advertised by the server.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Result is the flattened output of a tool invocation.
type Result struct {
	Text string
}

// Server is a connected tool provider. Implementations adapt a concrete
// protocol client to the catalog.
type Server interface {
	Name() string
	ListTools(ctx context.Context) ([]Descriptor, error)
	CallTool(ctx context.Context, name string, args map[string]any) (Result, error)
	Close() error
}
