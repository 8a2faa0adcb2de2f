package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/relaydev/mcp-chat-client/pkg/llm"
)

// Catalog merges the tools of the registered servers into one routing table.
// Tool names are the routing key: when two servers advertise the same name
// the first registration wins and the duplicate is logged.
type Catalog struct {
	servers []Server
	logger  *slog.Logger

	mu          sync.RWMutex
	byName      map[string]Server
	descriptors []Descriptor
	closed      bool
}

// NewCatalog builds a catalog over the given servers in registration order.
// The catalog is empty until Refresh is called.
func NewCatalog(logger *slog.Logger, servers ...Server) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		servers: servers,
		logger:  logger,
		byName:  make(map[string]Server),
	}
}

// Refresh fetches the tool lists of every server and rebuilds the routing
// table. A failing server aborts the refresh and leaves the previous state
// untouched.
func (c *Catalog) Refresh(ctx context.Context) error {
	byName := make(map[string]Server)
	var descriptors []Descriptor

	for _, srv := range c.servers {
		defs, err := srv.ListTools(ctx)
		if err != nil {
			return &CatalogUnavailableError{Server: srv.Name(), Err: err}
		}
		for _, def := range defs {
			if _, dup := byName[def.Name]; dup {
				c.logger.Warn("duplicate tool name, keeping first registration",
					"tool", def.Name, "server", srv.Name())
				continue
			}
			byName[def.Name] = srv
			descriptors = append(descriptors, def)
		}
	}

	c.mu.Lock()
	c.byName = byName
	c.descriptors = descriptors
	c.mu.Unlock()
	return nil
}

// Descriptors returns the merged tool list in registration order.
func (c *Catalog) Descriptors() []Descriptor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Descriptor(nil), c.descriptors...)
}

// Len reports the number of routable tools.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.descriptors)
}

// CompletionSchema projects the catalog into the shape the completion APIs
// expect. The projection is read-only and deterministic: identical catalog
// state always yields an identical schema.
func (c *Catalog) CompletionSchema() []llm.ToolSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]llm.ToolSchema, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		out = append(out, llm.ToolSchema{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters,
		})
	}
	return out
}

// Summary renders a short human-readable tool listing, used both in the
// system preamble and in the CLI startup banner.
func (c *Catalog) Summary() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var b strings.Builder
	for i, d := range c.descriptors {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "- %s: %s", d.Name, d.Description)
	}
	return b.String()
}

// Invoke routes a tool call to the owning server. Unknown tools fail without
// contacting any server; execution failures wrap the remote payload in a
// ToolExecutionError.
func (c *Catalog) Invoke(ctx context.Context, name string, args map[string]any) (Result, error) {
	c.mu.RLock()
	srv := c.byName[name]
	c.mu.RUnlock()

	if srv == nil {
		return Result{}, &UnknownToolError{Name: name}
	}

	result, err := srv.CallTool(ctx, name, args)
	if err != nil {
		return result, &ToolExecutionError{Tool: name, Output: result.Text, Err: err}
	}
	return result, nil
}

// Close shuts down every server, returning the first error. Close is
// idempotent.
func (c *Catalog) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	var first error
	for _, srv := range c.servers {
		if err := srv.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
