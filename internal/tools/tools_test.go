package tools

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/ashwink/warranty-agent/internal/llm"
)

func newTestRegistry() *Registry {
	r := NewRegistry()
	r.Register(&Tool{
		Name:        "echo",
		Description: "Echoes the input back.",
		Parameters:  map[string]any{"type": "object"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			s, _ := args["text"].(string)
			return s, nil
		},
	})
	r.Register(&Tool{
		Name:        "broken",
		Description: "Always fails.",
		Parameters:  map[string]any{"type": "object"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			return "", errors.New("vehicle not found")
		},
	})
	r.Register(&Tool{
		Name:        "panicky",
		Description: "Panics.",
		Parameters:  map[string]any{"type": "object"},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			panic("nil map write")
		},
	})
	return r
}

func TestRegistryListOrder(t *testing.T) {
	r := newTestRegistry()

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 tools, got %d", len(list))
	}
	first, _ := list[0]["function"].(map[string]any)
	if first["name"] != "echo" {
		t.Errorf("expected registration order preserved, first = %v", first["name"])
	}
}

func TestExecuteUnknownTool(t *testing.T) {
	r := newTestRegistry()

	_, err := r.Execute(context.Background(), "no_such_tool", nil)
	var unavailable *ErrToolUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
	if unavailable.ToolName != "no_such_tool" {
		t.Errorf("ToolName = %q", unavailable.ToolName)
	}
}

func TestDispatchSuccess(t *testing.T) {
	r := newTestRegistry()
	call := llm.NewToolCall("toolu_1", "echo", map[string]any{"text": "hello"})

	msg := Dispatch(context.Background(), r, call, slog.Default())
	if msg.Role != "tool" {
		t.Errorf("role = %q", msg.Role)
	}
	if msg.ToolCallID != "toolu_1" {
		t.Errorf("tool call id = %q", msg.ToolCallID)
	}
	if msg.Content != "hello" {
		t.Errorf("content = %q", msg.Content)
	}
	if msg.ToolErr {
		t.Error("unexpected tool error flag")
	}
}

func TestDispatchErrorShape(t *testing.T) {
	tests := []struct {
		name string
		tool string
		want string
	}{
		{"handler error", "broken", "Error: vehicle not found\n please fix your mistakes."},
		{"unknown tool", "missing", `Error: tool "missing" is not available in this context` + "\n please fix your mistakes."},
	}

	r := newTestRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call := llm.NewToolCall("toolu_9", tt.tool, nil)
			msg := Dispatch(context.Background(), r, call, slog.Default())
			if !msg.ToolErr {
				t.Error("expected tool error flag")
			}
			if msg.Content != tt.want {
				t.Errorf("content:\n got %q\nwant %q", msg.Content, tt.want)
			}
			if msg.ToolCallID != "toolu_9" {
				t.Errorf("tool call id = %q", msg.ToolCallID)
			}
		})
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	r := newTestRegistry()
	call := llm.NewToolCall("toolu_2", "panicky", nil)

	msg := Dispatch(context.Background(), r, call, slog.Default())
	if !msg.ToolErr {
		t.Fatal("expected tool error flag after panic")
	}
	if !strings.Contains(msg.Content, "nil map write") {
		t.Errorf("content = %q", msg.Content)
	}
	if !strings.HasSuffix(msg.Content, "please fix your mistakes.") {
		t.Errorf("content missing correction suffix: %q", msg.Content)
	}
}

func TestUserIDContext(t *testing.T) {
	ctx := context.Background()

	if _, ok := UserIDFromContext(ctx); ok {
		t.Fatal("empty context should carry no user")
	}

	ctx = WithUserID(ctx, 101)
	id, ok := UserIDFromContext(ctx)
	if !ok || id != 101 {
		t.Errorf("got %d, %v", id, ok)
	}
}
