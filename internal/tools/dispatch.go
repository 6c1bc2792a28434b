package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ashwink/warranty-agent/internal/llm"
	"github.com/ashwink/warranty-agent/internal/memory"
)

// Dispatch executes one tool call and returns the tool message to append
// to the session log. Execution failures never escape as Go errors: the
// model is told what went wrong, in a phrasing that prompts it to correct
// its own arguments, and the conversation continues.
func Dispatch(ctx context.Context, reg *Registry, call llm.ToolCall, logger *slog.Logger) memory.Message {
	name := call.Function.Name

	content, err := safeExecute(ctx, reg, name, call.Function.Arguments)
	msg := memory.NewMessage(memory.RoleTool, content)
	msg.ToolCallID = call.ID

	if err != nil {
		logger.Warn("tool execution failed", "tool", name, "error", err)
		msg.Content = fmt.Sprintf("Error: %s\n please fix your mistakes.", err)
		msg.ToolErr = true
		return msg
	}

	logger.Debug("tool executed", "tool", name, "result_len", len(content))
	return msg
}

// safeExecute runs the handler with panic recovery. A panicking tool is a
// bug, but it must not take the session down with it.
func safeExecute(ctx context.Context, reg *Registry, name string, args map[string]any) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool %s panicked: %v", name, r)
		}
	}()
	return reg.Execute(ctx, name, args)
}
