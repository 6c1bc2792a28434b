// Package agent runs the assistant loop: compact the session log, invoke
// the model with the tool catalog, execute requested tools, and repeat
// until the model produces a customer-facing reply.
package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashwink/warranty-agent/internal/llm"
	"github.com/ashwink/warranty-agent/internal/memory"
	"github.com/ashwink/warranty-agent/internal/tools"
)

// Apology is the canned assistant reply substituted when the model call
// itself fails. The turn driver recognizes it and retries the turn.
const Apology = "I apologize for the inconvenience. I'm having trouble processing your request right now. Could you please try rephrasing your question or providing more details?"

// maxToolRounds bounds one turn's think-act cycles so a model stuck
// requesting tools cannot spin forever.
const maxToolRounds = 25

// ErrToolLoop reports that a turn exceeded the tool-round budget.
var ErrToolLoop = errors.New("agent: turn exceeded tool round limit")

// defaultMaxReprompts bounds the empty-response nudge loop.
const defaultMaxReprompts = 5

// Assistant wraps one model binding: the client, the tool catalog, and the
// compaction policy applied before every invocation.
type Assistant struct {
	client       llm.Client
	model        string
	registry     *tools.Registry
	compaction   memory.CompactionConfig
	maxReprompts int
	modelTimeout time.Duration
	logger       *slog.Logger
}

// Options adjusts assistant behavior. Zero values select the defaults.
type Options struct {
	Compaction   memory.CompactionConfig
	MaxReprompts int
	ModelTimeout time.Duration
}

// NewAssistant builds an assistant bound to a model and tool registry.
func NewAssistant(client llm.Client, model string, registry *tools.Registry, opts Options, logger *slog.Logger) *Assistant {
	if opts.MaxReprompts <= 0 {
		opts.MaxReprompts = defaultMaxReprompts
	}
	return &Assistant{
		client:       client,
		model:        model,
		registry:     registry,
		compaction:   opts.Compaction,
		maxReprompts: opts.MaxReprompts,
		modelTimeout: opts.ModelTimeout,
		logger:       logger,
	}
}

// step compacts the log and invokes the model once, re-prompting on empty
// responses. It returns the updated log with the assistant's message
// appended. A model failure is absorbed into the Apology reply.
func (a *Assistant) step(ctx context.Context, system string, msgs []memory.Message) []memory.Message {
	msgs = memory.Compact(msgs, a.compaction)

	for range a.maxReprompts {
		resp, err := a.invoke(ctx, system, msgs)
		if err != nil {
			a.logger.Error("model invocation failed", "error", err)
			return append(msgs, memory.NewMessage(memory.RoleAssistant, Apology))
		}

		result := memory.NewMessage(memory.RoleAssistant, resp.Message.Content)
		result.ToolCalls = resp.Message.ToolCalls
		result.Usage = resp.TotalTokens()

		// An empty response with no tool calls gets one nudge per round.
		if len(result.ToolCalls) == 0 && result.Content == "" {
			a.logger.Debug("empty model response, re-prompting")
			msgs = append(msgs, memory.NewMessage(memory.RoleUser, memory.RePrompt))
			continue
		}

		msgs = memory.StripReprompts(msgs)
		return append(msgs, result)
	}

	a.logger.Warn("model returned only empty responses", "attempts", a.maxReprompts)
	return append(memory.StripReprompts(msgs), memory.NewMessage(memory.RoleAssistant, Apology))
}

// Run executes one full turn: model steps interleaved with tool execution
// until the assistant answers without requesting tools.
func (a *Assistant) Run(ctx context.Context, system string, msgs []memory.Message) ([]memory.Message, error) {
	for range maxToolRounds {
		msgs = a.step(ctx, system, msgs)

		last := msgs[len(msgs)-1]
		if len(last.ToolCalls) == 0 {
			return msgs, nil
		}
		for _, call := range last.ToolCalls {
			msgs = append(msgs, tools.Dispatch(ctx, a.registry, call, a.logger))
		}
	}
	return msgs, ErrToolLoop
}

func (a *Assistant) invoke(ctx context.Context, system string, msgs []memory.Message) (*llm.ChatResponse, error) {
	if a.modelTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.modelTimeout)
		defer cancel()
	}

	wire := make([]llm.Message, 0, len(msgs)+1)
	wire = append(wire, llm.Message{Role: "system", Content: system})
	for _, m := range msgs {
		wire = append(wire, llm.Message{
			Role:       m.Role,
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
		})
	}
	return a.client.Chat(ctx, a.model, wire, a.registry.List())
}
