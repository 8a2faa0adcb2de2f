// Command mcp-chat is an interactive chat client that connects an LLM
// provider to the tools of one or more MCP or UTCP servers.
//
// Server endpoints are passed as repeated -server flags in name=endpoint
// form. http:// and https:// endpoints use the MCP streamable HTTP
// transport, endpoints prefixed with utcp: name a UTCP providers file, and
// anything else is run as a stdio server command:
//
//	mcp-chat -server research=http://127.0.0.1:8000/mcp \
//	         -server files="uv run research_server.py" \
//	         -server misc=utcp:providers.json
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	utcp "github.com/universal-tool-calling-protocol/go-utcp"

	agent "github.com/relaydev/mcp-chat-client"
	"github.com/relaydev/mcp-chat-client/pkg/llm"
	"github.com/relaydev/mcp-chat-client/pkg/mcp"
	"github.com/relaydev/mcp-chat-client/pkg/tools"
)

// serverFlags collects repeated -server name=endpoint values.
type serverFlags []string

func (s *serverFlags) String() string { return strings.Join(*s, ",") }

func (s *serverFlags) Set(value string) error {
	if !strings.Contains(value, "=") {
		return fmt.Errorf("expected name=endpoint, got %q", value)
	}
	*s = append(*s, value)
	return nil
}

func main() {
	var servers serverFlags
	flag.Var(&servers, "server", "Tool server as name=endpoint (repeatable)")
	provider := flag.String("provider", "groq", "LLM provider: groq, openai, anthropic, gemini, ollama or dummy")
	model := flag.String("model", "", "Model ID for the selected provider")
	maxTokens := flag.Int("max-tokens", llm.DefaultMaxTokens, "Completion token cap")
	maxTurns := flag.Int("max-turns", agent.DefaultMaxTurns, "Completion round-trips per query")
	retries := flag.Int("retries", 0, "Retries for transient provider failures")
	systemPrompt := flag.String("system-prompt", "", "Override the default system prompt")
	envFile := flag.String("env-file", "", "Load environment variables from this file")
	flag.Parse()

	if *envFile != "" {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("failed to load %s: %v", *envFile, err)
		}
	} else {
		// Best effort, matching the usual .env convention.
		_ = godotenv.Load()
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	// Positional arguments are endpoints too, named server-1, server-2, ...
	for i, endpoint := range flag.Args() {
		servers = append(servers, fmt.Sprintf("server-%d=%s", i+1, endpoint))
	}
	if len(servers) == 0 {
		log.Fatalf("at least one server endpoint is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var toolServers []tools.Server
	for _, spec := range servers {
		name, endpoint, _ := strings.Cut(spec, "=")
		srv, err := buildServer(ctx, name, endpoint, logger)
		if err != nil {
			log.Fatalf("failed to connect server %s: %v", name, err)
		}
		toolServers = append(toolServers, srv)
	}

	catalog := tools.NewCatalog(logger, toolServers...)
	defer catalog.Close()

	if err := catalog.Refresh(ctx); err != nil {
		log.Fatalf("failed to load tool catalog: %v", err)
	}

	gateway, err := llm.New(ctx, llm.Config{
		Provider:  *provider,
		Model:     *model,
		MaxTokens: *maxTokens,
	})
	if err != nil {
		log.Fatalf("failed to create %s gateway: %v", *provider, err)
	}

	bot, err := agent.New(agent.Options{
		Gateway:      gateway,
		Catalog:      catalog,
		SystemPrompt: *systemPrompt,
		MaxTurns:     *maxTurns,
		Retries:      *retries,
		Logger:       logger,
	})
	if err != nil {
		log.Fatalf("failed to create agent: %v", err)
	}

	fmt.Printf("Connected to %d tool(s):\n%s\n", catalog.Len(), catalog.Summary())
	fmt.Println("\nMCP chat client started!")
	fmt.Println("Type your queries or 'quit' to exit.")

	runChatLoop(ctx, bot)
}

// runChatLoop reads queries from stdin until EOF or "quit". Errors are
// reported per query; the loop itself keeps running.
func runChatLoop(ctx context.Context, bot *agent.Agent) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nQuery: ")
		if !scanner.Scan() {
			return
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") {
			return
		}

		answer, err := bot.ProcessQuery(ctx, query)
		var maxErr *agent.MaxTurnsExceededError
		switch {
		case errors.As(err, &maxErr):
			if answer != nil && answer.Text != "" {
				fmt.Printf("\nResponse (incomplete after %d turns): %s\n", maxErr.Turns, answer.Text)
			} else {
				fmt.Printf("\nNo final answer after %d turns.\n", maxErr.Turns)
			}
		case errors.Is(err, context.Canceled):
			return
		case err != nil:
			fmt.Printf("\nError: %v\n", err)
		default:
			fmt.Printf("\nResponse: %s\n", answer.Text)
		}
	}
}

// buildServer connects a tool server from its endpoint form.
func buildServer(ctx context.Context, name, endpoint string, logger *slog.Logger) (tools.Server, error) {
	endpoint = strings.TrimSpace(endpoint)
	switch {
	case endpoint == "":
		return nil, errors.New("endpoint is empty")

	case strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://"):
		client, err := mcp.NewHTTPClient(ctx, mcp.HTTPConfig{Endpoint: endpoint})
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := client.Ping(pingCtx); err != nil {
			logger.Warn("server did not answer ping", "server", name, "error", err)
		}
		cancel()
		return tools.NewMCPServer(name, client), nil

	case strings.HasPrefix(endpoint, "utcp:"):
		client, err := utcp.NewUTCPClient(ctx, &utcp.UtcpClientConfig{
			ProvidersFilePath: strings.TrimPrefix(endpoint, "utcp:"),
		}, nil, nil)
		if err != nil {
			return nil, err
		}
		return tools.NewUTCPServer(name, client), nil

	default:
		parts := strings.Fields(endpoint)
		client, err := mcp.NewStdioClient(ctx, mcp.StdioConfig{
			Command: parts[0],
			Args:    parts[1:],
		})
		if err != nil {
			return nil, err
		}
		return tools.NewMCPServer(name, client), nil
	}
}
