package agent

import (
	"testing"

	"github.com/relaydev/mcp-chat-client/pkg/llm"
)

func TestNewConversationSeedsPreambleAndQuery(t *testing.T) {
	conv := NewConversation("preamble", "question")
	if conv.Len() != 2 {
		t.Fatalf("unexpected length: %d", conv.Len())
	}
	msgs := conv.Messages()
	if msgs[0].Role != llm.RoleSystem || msgs[0].Content != "preamble" {
		t.Fatalf("unexpected first message: %+v", msgs[0])
	}
	if msgs[1].Role != llm.RoleUser || msgs[1].Content != "question" {
		t.Fatalf("unexpected second message: %+v", msgs[1])
	}
}

func TestConversationAppendPreservesOrder(t *testing.T) {
	conv := NewConversation("p", "q")
	conv.Append(llm.AssistantMessage("", llm.ToolCall{ID: "call-1", Name: "search_papers"}))
	conv.Append(llm.ToolMessage("call-1", "search_papers", "result"))
	conv.Append(llm.UserMessage(SteeringInstruction))

	msgs := conv.Messages()
	if len(msgs) != 5 {
		t.Fatalf("unexpected length: %d", len(msgs))
	}
	if msgs[2].Role != llm.RoleAssistant || msgs[3].Role != llm.RoleTool || msgs[4].Role != llm.RoleUser {
		t.Fatalf("order not preserved: %+v", msgs)
	}
	if conv.Last().Content != SteeringInstruction {
		t.Fatalf("unexpected last message: %+v", conv.Last())
	}
}

func TestConversationMessagesIsASnapshot(t *testing.T) {
	conv := NewConversation("p", "q")
	snapshot := conv.Messages()
	conv.Append(llm.UserMessage("later"))
	if len(snapshot) != 2 {
		t.Fatalf("snapshot grew with the conversation")
	}
	snapshot[0].Content = "mutated"
	if conv.Messages()[0].Content != "p" {
		t.Fatalf("snapshot aliases the conversation")
	}
}
