package llm

import (
	"context"
	"fmt"
	"sync"
)

// DummyGateway is a scripted Gateway useful for tests and offline runs. With
// an empty Script it echoes the last user message as a final answer;
// otherwise it replays the scripted completions in order and records every
// request it receives.
type DummyGateway struct {
	Prefix string
	Script []*Completion

	// Errs, when non-nil at the current step, is returned instead of the
	// scripted completion.
	Errs []error

	mu       sync.Mutex
	step     int
	Requests [][]Message
	Schemas  [][]ToolSchema
}

func (d *DummyGateway) Complete(_ context.Context, messages []Message, tools []ToolSchema) (*Completion, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.Requests = append(d.Requests, append([]Message(nil), messages...))
	d.Schemas = append(d.Schemas, append([]ToolSchema(nil), tools...))

	step := d.step
	d.step++

	if step < len(d.Errs) && d.Errs[step] != nil {
		return nil, d.Errs[step]
	}
	if step < len(d.Script) {
		return d.Script[step], nil
	}
	if len(d.Script) > 0 {
		return nil, fmt.Errorf("llm: dummy script exhausted after %d completions", len(d.Script))
	}

	prefix := d.Prefix
	if prefix == "" {
		prefix = "Dummy response:"
	}
	last := "<empty prompt>"
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser && messages[i].Content != "" {
			last = messages[i].Content
			break
		}
	}
	return &Completion{FinishReason: FinishStop, Text: fmt.Sprintf("%s %s", prefix, last)}, nil
}

// Steps reports how many completions were requested.
func (d *DummyGateway) Steps() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.step
}

var _ Gateway = (*DummyGateway)(nil)
