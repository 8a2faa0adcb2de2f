package llm

import (
	"context"
	"errors"
	"testing"
)

func TestNormalizeRejectsEmptyToolCalls(t *testing.T) {
	_, err := normalize("test", FinishToolCalls, "", nil)
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
}

func TestNormalizeRejectsUnnamedToolCall(t *testing.T) {
	_, err := normalize("test", FinishToolCalls, "", []ToolCall{{ID: "call-1"}})
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
}

func TestNormalizeRejectsEmptyStopText(t *testing.T) {
	_, err := normalize("test", FinishStop, "   ", nil)
	var invalid *InvalidResponseError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
}

func TestNormalizeAllowsOtherWithoutText(t *testing.T) {
	completion, err := normalize("test", FinishOther, "", nil)
	if err != nil {
		t.Fatalf("normalize returned error: %v", err)
	}
	if completion.FinishReason != FinishOther {
		t.Fatalf("unexpected finish reason: %s", completion.FinishReason)
	}
}

func TestNewErrorsOnUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "unknown"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestSchemaRequiredToleratesDecodedJSON(t *testing.T) {
	params := map[string]any{
		"type":     "object",
		"required": []any{"topic", 7, "limit"},
	}
	got := schemaRequired(params)
	if len(got) != 2 || got[0] != "topic" || got[1] != "limit" {
		t.Fatalf("unexpected required list: %v", got)
	}
}

func TestDummyGatewayEchoesLastUserMessage(t *testing.T) {
	gw := &DummyGateway{}
	completion, err := gw.Complete(context.Background(), []Message{
		SystemMessage("system"),
		UserMessage("first"),
		UserMessage("second"),
	}, nil)
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if completion.Text != "Dummy response: second" {
		t.Fatalf("unexpected text: %q", completion.Text)
	}
	if completion.FinishReason != FinishStop {
		t.Fatalf("unexpected finish reason: %s", completion.FinishReason)
	}
}

func TestDummyGatewayReplaysScript(t *testing.T) {
	scripted := []*Completion{
		{FinishReason: FinishToolCalls, ToolCalls: []ToolCall{{ID: "call-1", Name: "search", Arguments: "{}"}}},
		{FinishReason: FinishStop, Text: "done"},
	}
	gw := &DummyGateway{Script: scripted}

	first, err := gw.Complete(context.Background(), []Message{UserMessage("q")}, nil)
	if err != nil {
		t.Fatalf("first Complete returned error: %v", err)
	}
	if first.FinishReason != FinishToolCalls {
		t.Fatalf("unexpected first finish reason: %s", first.FinishReason)
	}

	second, err := gw.Complete(context.Background(), []Message{UserMessage("q")}, nil)
	if err != nil {
		t.Fatalf("second Complete returned error: %v", err)
	}
	if second.Text != "done" {
		t.Fatalf("unexpected second text: %q", second.Text)
	}

	if _, err := gw.Complete(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error once script is exhausted")
	}
	if gw.Steps() != 3 {
		t.Fatalf("unexpected step count: %d", gw.Steps())
	}
}

func TestDummyGatewayRecordsRequestSnapshots(t *testing.T) {
	gw := &DummyGateway{}
	messages := []Message{UserMessage("q")}
	if _, err := gw.Complete(context.Background(), messages, nil); err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	messages[0].Content = "mutated"
	if gw.Requests[0][0].Content != "q" {
		t.Fatalf("recorded request aliases the caller's slice")
	}
}
