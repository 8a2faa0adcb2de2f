// Command mcp-tools connects to an MCP server, pings it and prints the
// tools it advertises. Useful for checking what a server exposes before
// pointing mcp-chat at it.
//
//	mcp-tools -endpoint http://127.0.0.1:8000/mcp
//	mcp-tools -endpoint "uv run research_server.py" -schemas
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/relaydev/mcp-chat-client/pkg/mcp"
)

func main() {
	endpoint := flag.String("endpoint", "", "MCP server endpoint: an http(s) URL or a stdio command")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	schemas := flag.Bool("schemas", false, "Print the input schema of every tool")
	flag.Parse()

	if strings.TrimSpace(*endpoint) == "" {
		log.Fatalf("-endpoint is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client, err := connect(ctx, *endpoint)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	info := client.Server()
	fmt.Printf("Server: %s %s\n", info.Name, info.Version)

	if err := client.Ping(ctx); err != nil {
		fmt.Printf("Ping: failed (%v)\n", err)
	} else {
		fmt.Println("Ping: ok")
	}

	defs, err := client.ListTools(ctx)
	if err != nil {
		log.Fatalf("failed to list tools: %v", err)
	}

	fmt.Printf("Tools (%d):\n", len(defs))
	for _, def := range defs {
		fmt.Printf("  %s: %s\n", def.Name, def.Description)
		if *schemas && len(def.InputSchema) > 0 {
			fmt.Printf("    schema: %s\n", def.InputSchema)
		}
	}
}

func connect(ctx context.Context, endpoint string) (*mcp.Client, error) {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return mcp.NewHTTPClient(ctx, mcp.HTTPConfig{Endpoint: endpoint})
	}
	parts := strings.Fields(endpoint)
	return mcp.NewStdioClient(ctx, mcp.StdioConfig{Command: parts[0], Args: parts[1:]})
}
