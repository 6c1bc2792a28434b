package agent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ashwink/warranty-agent/internal/llm"
	"github.com/ashwink/warranty-agent/internal/memory"
	"github.com/ashwink/warranty-agent/internal/tools"
)

// fakeClient replays a scripted sequence of model responses and records
// the message lists it was invoked with.
type fakeClient struct {
	mu     sync.Mutex
	script []scripted
	calls  [][]llm.Message
}

type scripted struct {
	resp *llm.ChatResponse
	err  error
}

func (f *fakeClient) Chat(ctx context.Context, model string, messages []llm.Message, toolDefs []map[string]any) (*llm.ChatResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append([]llm.Message(nil), messages...))
	if len(f.script) == 0 {
		return nil, errors.New("fake client: script exhausted")
	}
	next := f.script[0]
	f.script = f.script[1:]
	return next.resp, next.err
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }

func finalResp(content string, tokens int) scripted {
	return scripted{resp: &llm.ChatResponse{
		Message:      llm.Message{Role: "assistant", Content: content},
		InputTokens:  tokens,
		OutputTokens: 0,
	}}
}

func toolResp(name string, args map[string]any) scripted {
	return scripted{resp: &llm.ChatResponse{
		Message: llm.Message{
			Role:      "assistant",
			ToolCalls: []llm.ToolCall{llm.NewToolCall("call_1", name, args)},
		},
		InputTokens: 100,
	}}
}

func errResp() scripted {
	return scripted{err: errors.New("model unavailable")}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoRegistry() *tools.Registry {
	reg := tools.NewRegistry()
	reg.Register(&tools.Tool{
		Name:        "echo",
		Description: "echoes its input",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			s, _ := args["text"].(string)
			return s, nil
		},
	})
	return reg
}

func newAssistant(client llm.Client, reg *tools.Registry) *Assistant {
	return NewAssistant(client, "test-model", reg, Options{}, testLogger())
}

func TestRunToolCallCycle(t *testing.T) {
	client := &fakeClient{script: []scripted{
		toolResp("echo", map[string]any{"text": "pong"}),
		finalResp("The tool said pong.", 500),
	}}
	a := newAssistant(client, echoRegistry())

	msgs := []memory.Message{memory.NewMessage(memory.RoleUser, "ping the tool")}
	out, err := a.Run(context.Background(), "system", msgs)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	last := out[len(out)-1]
	if last.Content != "The tool said pong." {
		t.Errorf("reply = %q", last.Content)
	}
	// user, assistant tool call, tool result, assistant final.
	if len(out) != 4 {
		t.Fatalf("log length = %d, want 4", len(out))
	}
	if out[2].Role != memory.RoleTool || out[2].Content != "pong" {
		t.Errorf("tool message = %+v", out[2])
	}
	if out[2].ToolCallID != "call_1" {
		t.Errorf("tool call id = %q", out[2].ToolCallID)
	}
}

func TestEmptyResponseIsRepromptedAndStripped(t *testing.T) {
	client := &fakeClient{script: []scripted{
		finalResp("", 0), // empty, triggers the nudge
		finalResp("A real answer.", 300),
	}}
	a := newAssistant(client, echoRegistry())

	out, err := a.Run(context.Background(), "system", []memory.Message{memory.NewMessage(memory.RoleUser, "hello")})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if out[len(out)-1].Content != "A real answer." {
		t.Errorf("reply = %q", out[len(out)-1].Content)
	}
	for _, m := range out {
		if m.Content == memory.RePrompt {
			t.Error("re-prompt left in final log")
		}
	}

	// The second invocation must have carried the nudge.
	second := client.calls[1]
	sawNudge := false
	for _, m := range second {
		if m.Role == "user" && m.Content == memory.RePrompt {
			sawNudge = true
		}
	}
	if !sawNudge {
		t.Error("second model call did not include the re-prompt")
	}
}

func TestModelFailureYieldsApology(t *testing.T) {
	client := &fakeClient{script: []scripted{errResp()}}
	a := newAssistant(client, echoRegistry())

	out, err := a.Run(context.Background(), "system", []memory.Message{memory.NewMessage(memory.RoleUser, "hi")})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out[len(out)-1].Content != Apology {
		t.Errorf("reply = %q, want apology", out[len(out)-1].Content)
	}
}

func TestRunStopsRunawayToolLoop(t *testing.T) {
	script := make([]scripted, 0, maxToolRounds)
	for range maxToolRounds {
		script = append(script, toolResp("echo", map[string]any{"text": "again"}))
	}
	client := &fakeClient{script: script}
	a := newAssistant(client, echoRegistry())

	_, err := a.Run(context.Background(), "system", []memory.Message{memory.NewMessage(memory.RoleUser, "loop")})
	if !errors.Is(err, ErrToolLoop) {
		t.Fatalf("err = %v, want ErrToolLoop", err)
	}
}

func TestSystemPromptIsFirstMessage(t *testing.T) {
	client := &fakeClient{script: []scripted{finalResp("ok", 100)}}
	a := newAssistant(client, echoRegistry())

	if _, err := a.Run(context.Background(), "the system prompt", []memory.Message{memory.NewMessage(memory.RoleUser, "hi")}); err != nil {
		t.Fatalf("run: %v", err)
	}
	first := client.calls[0][0]
	if first.Role != "system" || first.Content != "the system prompt" {
		t.Errorf("first wire message = %+v", first)
	}
}

func newDriver(client llm.Client) *Driver {
	a := newAssistant(client, echoRegistry())
	return NewDriver(a, memory.NewStore(), nil, nil, 2, testLogger())
}

func TestRunTurn(t *testing.T) {
	client := &fakeClient{script: []scripted{finalResp("Hello! How can I help?", 400)}}
	d := newDriver(client)

	reply := d.RunTurn(context.Background(), "sess-1", 1, "hi there")
	if reply != "Hello! How can I help?" {
		t.Errorf("reply = %q", reply)
	}

	sess := d.Sessions().Get("sess-1")
	if sess == nil {
		t.Fatal("session not persisted")
	}
	if len(sess.Messages) != 2 {
		t.Fatalf("session log = %d messages, want 2", len(sess.Messages))
	}
	if sess.Messages[0].Content != "hi there" || sess.Messages[1].Content != "Hello! How can I help?" {
		t.Errorf("session log = %+v", sess.Messages)
	}
}

func TestRunTurnRetriesAfterApology(t *testing.T) {
	client := &fakeClient{script: []scripted{
		errResp(), // first attempt fails, apology committed
		finalResp("Recovered now.", 350),
	}}
	d := newDriver(client)

	reply := d.RunTurn(context.Background(), "sess-1", 1, "do the thing")
	if reply != "Recovered now." {
		t.Errorf("reply = %q", reply)
	}

	// The retry enters the log with the substitute prompt.
	sess := d.Sessions().Get("sess-1")
	found := false
	for _, m := range sess.Messages {
		if m.Role == memory.RoleUser && m.Content == retryPrompt {
			found = true
		}
	}
	if !found {
		t.Error("substitute retry prompt missing from session log")
	}
}

func TestRunTurnExhaustsRetries(t *testing.T) {
	client := &fakeClient{script: []scripted{errResp(), errResp()}}
	d := newDriver(client)

	reply := d.RunTurn(context.Background(), "sess-1", 1, "broken")
	if reply != ClarifyMessage {
		t.Errorf("reply = %q, want clarification", reply)
	}
}

func TestRunTurnKeepsSessionUserBinding(t *testing.T) {
	client := &fakeClient{script: []scripted{
		finalResp("first", 100),
		finalResp("second", 100),
	}}
	d := newDriver(client)

	d.RunTurn(context.Background(), "sess-1", 7, "hello")
	// A different user ID on the same session does not rebind it.
	d.RunTurn(context.Background(), "sess-1", 99, "again")

	if sess := d.Sessions().Get("sess-1"); sess.UserID != 7 {
		t.Errorf("session user = %d, want 7", sess.UserID)
	}
}
