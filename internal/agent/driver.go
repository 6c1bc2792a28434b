package agent

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/ashwink/warranty-agent/internal/memory"
	"github.com/ashwink/warranty-agent/internal/prompts"
	"github.com/ashwink/warranty-agent/internal/store"
	"github.com/ashwink/warranty-agent/internal/tools"
)

// Turn retry prompts. The first substitutes after an apology reply, the
// second after a hard failure of the turn itself.
const (
	retryPrompt         = "Please help me with my request."
	retryPreviousPrompt = "Please help me with my previous request."
)

// ClarifyMessage is the terminal reply when a turn burns through its
// retry budget.
const ClarifyMessage = "Can you clarify your request please!"

// apologyMarker identifies the canned failure reply, case-insensitively.
const apologyMarker = "having trouble processing"

const defaultTurnRetries = 2

// Driver owns the per-turn retry policy and the session lifecycle around
// the assistant: prompt construction, user binding, persistence.
type Driver struct {
	assistant  *Assistant
	sessions   *memory.Store
	checkpoint *memory.CheckpointStore
	records    *store.Store
	retries    int
	now        func() time.Time
	logger     *slog.Logger
}

// NewDriver builds a turn driver. The checkpoint store may be nil, in
// which case sessions live only in memory.
func NewDriver(assistant *Assistant, sessions *memory.Store, checkpoint *memory.CheckpointStore, records *store.Store, retries int, logger *slog.Logger) *Driver {
	if retries <= 0 {
		retries = defaultTurnRetries
	}
	return &Driver{
		assistant:  assistant,
		sessions:   sessions,
		checkpoint: checkpoint,
		records:    records,
		retries:    retries,
		now:        time.Now,
		logger:     logger,
	}
}

// WithClock overrides the driver clock for tests.
func (d *Driver) WithClock(now func() time.Time) *Driver {
	d.now = now
	return d
}

// RunTurn processes one user prompt in a session and returns the
// assistant's reply. Failed turns are retried with substitute prompts; a
// turn that exhausts its budget returns the clarification message.
func (d *Driver) RunTurn(ctx context.Context, sessionID string, userID int, prompt string) string {
	sess := d.sessions.GetOrCreate(sessionID, userID)
	ctx = tools.WithUserID(ctx, sess.UserID)

	system := d.systemPrompt(sess.UserID)
	current := sess.Messages

	for attempt := 0; attempt < d.retries; attempt++ {
		msgs := append(slices.Clone(current), memory.NewMessage(memory.RoleUser, prompt))

		out, err := d.assistant.Run(ctx, system, msgs)
		if err != nil {
			d.logger.Warn("turn failed", "session", sessionID, "attempt", attempt, "error", err)
			prompt = retryPreviousPrompt
			continue
		}

		last := out[len(out)-1]
		d.commit(sessionID, out)

		if strings.Contains(strings.ToLower(last.Content), apologyMarker) {
			d.logger.Warn("model reported trouble, retrying turn", "session", sessionID, "attempt", attempt)
			current = out
			prompt = retryPrompt
			continue
		}

		d.logger.Info("turn complete",
			"session", sessionID,
			"messages", len(out),
			"total_tokens", last.Usage)
		return last.Content
	}

	return ClarifyMessage
}

// Sessions exposes the in-memory session store, for the HTTP layer.
func (d *Driver) Sessions() *memory.Store {
	return d.sessions
}

func (d *Driver) systemPrompt(userID int) string {
	var customer store.Customer
	if d.records != nil {
		if c, ok, err := d.records.CustomerByID(userID); err == nil && ok {
			customer = c
		}
	}
	return prompts.System(customer, d.now())
}

// commit writes the turn's final log back to the session store and
// checkpoints it. Checkpoint failures are logged, not surfaced: losing
// durability must not lose the reply.
func (d *Driver) commit(sessionID string, msgs []memory.Message) {
	d.sessions.Replace(sessionID, msgs)
	if d.checkpoint == nil {
		return
	}
	sess := d.sessions.Get(sessionID)
	if sess == nil {
		return
	}
	if err := d.checkpoint.SaveSession(sess); err != nil {
		d.logger.Error("session checkpoint failed", "session", sessionID, "error", err)
	}
}
