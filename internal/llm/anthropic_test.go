package llm

import (
	"testing"
)

func TestConvertToAnthropic(t *testing.T) {
	messages := []Message{
		{Role: "system", Content: "You are a warranty support specialist."},
		{Role: "user", Content: "Hello!"},
		{Role: "assistant", Content: "Hi there!"},
		{Role: "user", Content: "Is my car eligible for CCP?"},
	}

	result, system := convertToAnthropic(messages)

	if system != "You are a warranty support specialist." {
		t.Errorf("expected system prompt extracted, got %q", system)
	}

	if len(result) != 3 {
		t.Fatalf("expected 3 messages (no system), got %d", len(result))
	}

	if result[0].Role != "user" {
		t.Errorf("expected first message to be user, got %s", result[0].Role)
	}
}

func TestConvertToAnthropicWithToolCalls(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "Check warranty status for MH02XX1234."},
		{
			Role: "assistant",
			ToolCalls: []ToolCall{
				NewToolCall("toolu_abc123", "check_warranty_status",
					map[string]any{"vehicle_registration": "MH02XX1234"}),
			},
		},
		{Role: "tool", Content: `{"has_ccp": true}`, ToolCallID: "toolu_abc123"},
	}

	result, _ := convertToAnthropic(messages)

	if len(result) != 3 { // user, assistant with tool_use, user with tool_result
		t.Fatalf("expected 3 messages, got %d", len(result))
	}

	assistantContent, ok := result[1].Content.([]anthropicContent)
	if !ok {
		t.Fatal("expected assistant content to be []anthropicContent")
	}
	if len(assistantContent) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(assistantContent))
	}
	if assistantContent[0].Type != "tool_use" {
		t.Errorf("expected tool_use block, got %s", assistantContent[0].Type)
	}
	if assistantContent[0].Name != "check_warranty_status" {
		t.Errorf("expected tool name check_warranty_status, got %s", assistantContent[0].Name)
	}

	toolResultContent, ok := result[2].Content.([]anthropicContent)
	if !ok {
		t.Fatal("expected tool result content to be []anthropicContent")
	}
	if toolResultContent[0].Type != "tool_result" {
		t.Errorf("expected tool_result, got %s", toolResultContent[0].Type)
	}
	if toolResultContent[0].ToolUseID != "toolu_abc123" {
		t.Errorf("expected tool_use_id toolu_abc123, got %s", toolResultContent[0].ToolUseID)
	}
}

func TestConvertToolsToAnthropic(t *testing.T) {
	tools := []map[string]any{
		{
			"type": "function",
			"function": map[string]any{
				"name":        "calculator",
				"description": "Basic arithmetic.",
				"parameters": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"operation": map[string]any{"type": "string"},
					},
				},
			},
		},
	}

	result := convertToolsToAnthropic(tools)
	if len(result) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(result))
	}
	if result[0].Name != "calculator" {
		t.Errorf("expected calculator, got %s", result[0].Name)
	}
	if result[0].InputSchema == nil {
		t.Error("expected input schema to be carried over")
	}
}

func TestConvertFromAnthropic(t *testing.T) {
	resp := &anthropicResponse{
		Model: "claude-sonnet-4-20250514",
		Content: []anthropicContent{
			{Type: "text", Text: "Your vehicle is eligible."},
			{Type: "tool_use", ID: "toolu_1", Name: "check_ccp_eligibility",
				Input: map[string]any{"vehicle_registration": "KA01AB0001"}},
		},
		Usage: anthropicUsage{InputTokens: 1200, OutputTokens: 80},
	}

	got := convertFromAnthropic(resp)
	if got.Message.Content != "Your vehicle is eligible." {
		t.Errorf("content = %q", got.Message.Content)
	}
	if len(got.Message.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(got.Message.ToolCalls))
	}
	if got.Message.ToolCalls[0].Function.Name != "check_ccp_eligibility" {
		t.Errorf("tool name = %s", got.Message.ToolCalls[0].Function.Name)
	}
	if got.TotalTokens() != 1280 {
		t.Errorf("TotalTokens = %d, want 1280", got.TotalTokens())
	}
}
