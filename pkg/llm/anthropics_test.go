package llm

import "testing"

func TestToAnthropicMessagesSplitsSystem(t *testing.T) {
	system, history := toAnthropicMessages([]Message{
		SystemMessage("preamble"),
		UserMessage("question"),
		AssistantMessage("thinking", ToolCall{ID: "call-1", Name: "search_papers", Arguments: `{"topic":"agents"}`}),
		ToolMessage("call-1", "search_papers", "result"),
		UserMessage("follow up"),
	})
	if len(system) != 1 || system[0].Text != "preamble" {
		t.Fatalf("system prompt not extracted: %+v", system)
	}
	// user, assistant, tool result (as user), follow up
	if len(history) != 4 {
		t.Fatalf("unexpected history length: %d", len(history))
	}
}

func TestToAnthropicMessagesSkipsEmptyAssistantTurn(t *testing.T) {
	_, history := toAnthropicMessages([]Message{
		UserMessage("question"),
		AssistantMessage("   "),
	})
	if len(history) != 1 {
		t.Fatalf("empty assistant turn should be dropped, got %d messages", len(history))
	}
}
