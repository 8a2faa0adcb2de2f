// Package agent implements the multi-turn chat loop that connects an LLM
// provider to the tools of MCP and UTCP servers: it advertises the tool
// catalog on every completion, executes the tool calls the model requests
// and feeds the results back until the model produces a final answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/relaydev/mcp-chat-client/pkg/llm"
	"github.com/relaydev/mcp-chat-client/pkg/tools"
)

const defaultSystemPrompt = "You are a helpful assistant with access to external tools. Call tools when they help answer the user's question and reply with plain text once you have enough information."

// SteeringInstruction is appended to the conversation after every tool
// result to direct the model back to the user's question. It is a fixed
// part of the conversation contract; treat any wording change as a new
// version.
const SteeringInstruction = "Use the tool result above to continue answering the original question. When no further tool calls are needed, reply with your final answer."

// Defaults applied by New when the corresponding option is zero.
const (
	DefaultMaxTurns     = 8
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Agent drives the chat loop for one conversation at a time.
type Agent struct {
	gateway      llm.Gateway
	catalog      *tools.Catalog
	systemPrompt string
	maxTurns     int
	retries      int
	retryBackoff time.Duration
	logger       *slog.Logger
}

// Options configure a new Agent.
type Options struct {
	// Gateway performs the completion round-trips. Required.
	Gateway llm.Gateway
	// Catalog supplies and executes the available tools. Required.
	Catalog *tools.Catalog
	// SystemPrompt overrides the default system preamble.
	SystemPrompt string
	// MaxTurns caps the number of completion round-trips per query.
	MaxTurns int
	// Retries is how many times a transient gateway failure is retried
	// within a single turn. Zero disables retries.
	Retries int
	// RetryBackoff is the base delay between retries, growing linearly
	// with the attempt number.
	RetryBackoff time.Duration
	// Logger receives tool call and retry telemetry. Defaults to
	// slog.Default.
	Logger *slog.Logger
}

// New creates an Agent with the provided options.
func New(opts Options) (*Agent, error) {
	if opts.Gateway == nil {
		return nil, errors.New("agent requires a completion gateway")
	}
	if opts.Catalog == nil {
		return nil, errors.New("agent requires a tool catalog")
	}

	maxTurns := opts.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}

	systemPrompt := opts.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt
	}

	backoff := opts.RetryBackoff
	if backoff <= 0 {
		backoff = DefaultRetryBackoff
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Agent{
		gateway:      opts.Gateway,
		catalog:      opts.Catalog,
		systemPrompt: systemPrompt,
		maxTurns:     maxTurns,
		retries:      opts.Retries,
		retryBackoff: backoff,
		logger:       logger,
	}, nil
}

// ToolTrace records one executed tool call for callers that want to inspect
// what happened during a query.
type ToolTrace struct {
	Tool    string
	Output  string
	IsError bool
}

// Answer is the outcome of a processed query.
type Answer struct {
	// Text is the concatenation of the text fragments the model produced
	// across turns.
	Text string
	// ToolResults lists the executed tool calls in execution order.
	ToolResults []ToolTrace
	// Turns is the number of completion round-trips performed.
	Turns int
}

// ProcessQuery runs the chat loop for a single user query. The loop asks the
// gateway for a completion, executes any requested tool calls in the order
// the model returned them and repeats until the model answers with text,
// the turn budget runs out or the context is cancelled. Cancellation is
// observed between turns, never in the middle of one.
func (a *Agent) ProcessQuery(ctx context.Context, query string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("agent: query is empty")
	}

	conv := NewConversation(a.buildPreamble(), query)
	answer := &Answer{}
	var text strings.Builder

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if answer.Turns >= a.maxTurns {
			answer.Text = strings.TrimSpace(text.String())
			return answer, &MaxTurnsExceededError{Turns: answer.Turns}
		}

		completion, err := a.complete(ctx, conv)
		if err != nil {
			return nil, err
		}
		answer.Turns++

		if completion.FinishReason != llm.FinishToolCalls {
			appendFragment(&text, completion.Text)
			answer.Text = strings.TrimSpace(text.String())
			return answer, nil
		}

		// Text the model produced alongside its tool calls is part of
		// the final answer.
		appendFragment(&text, completion.Text)
		conv.Append(llm.AssistantMessage(completion.Text, completion.ToolCalls...))
		for _, call := range completion.ToolCalls {
			answer.ToolResults = append(answer.ToolResults, a.runToolCall(ctx, conv, call))
		}
	}
}

// complete performs one completion round-trip, retrying transient gateway
// failures with linear backoff.
func (a *Agent) complete(ctx context.Context, conv *Conversation) (*llm.Completion, error) {
	schema := a.catalog.CompletionSchema()
	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if attempt > 0 {
			a.logger.Warn("retrying completion", "attempt", attempt, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(a.retryBackoff * time.Duration(attempt)):
			}
		}
		completion, err := a.gateway.Complete(ctx, conv.Messages(), schema)
		if err == nil {
			return completion, nil
		}
		lastErr = err
		var gwErr *llm.GatewayError
		if !errors.As(err, &gwErr) || !gwErr.Transient {
			return nil, err
		}
	}
	return nil, lastErr
}

// runToolCall executes one tool call and folds its outcome into the
// conversation. Failures never abort the query: undecodable arguments,
// unknown tools and execution errors all become tool results the model can
// react to. The steering instruction follows every result.
func (a *Agent) runToolCall(ctx context.Context, conv *Conversation, call llm.ToolCall) ToolTrace {
	a.logger.Info("calling tool", "tool", call.Name, "arguments", call.Arguments)

	var (
		output string
		failed bool
	)
	args, err := tools.ParseArguments(call.Arguments)
	if err != nil {
		output = err.Error()
		failed = true
	} else {
		result, invokeErr := a.catalog.Invoke(ctx, call.Name, args)
		switch {
		case invokeErr != nil:
			output = invokeErr.Error()
			failed = true
		case result.Text == "":
			output = "(the tool returned no content)"
		default:
			output = result.Text
		}
	}
	if failed {
		a.logger.Warn("tool call failed", "tool", call.Name, "error", output)
	}

	conv.Append(llm.ToolMessage(call.ID, call.Name, output))
	conv.Append(llm.UserMessage(SteeringInstruction))
	return ToolTrace{Tool: call.Name, Output: output, IsError: failed}
}

// buildPreamble renders the system prompt plus the serialized tool listing.
func (a *Agent) buildPreamble() string {
	summary := a.catalog.Summary()
	if summary == "" {
		return a.systemPrompt
	}
	return fmt.Sprintf("%s\n\nAvailable tools:\n%s", a.systemPrompt, summary)
}

func appendFragment(b *strings.Builder, fragment string) {
	if fragment == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	b.WriteString(fragment)
}
