package memory

import "strings"

// RePrompt is the synthetic user message appended when the model returns an
// empty response. It is stripped from the log once a real response arrives.
const RePrompt = "Respond with a real output."

// CompactionConfig sets the token thresholds that trigger history
// truncation. Zero values fall back to the defaults.
type CompactionConfig struct {
	// TruncateTokens: above this, keep only the last three messages.
	TruncateTokens int
	// StrictTokens: above this, drop every intermediate step from closed
	// turns and keep only the last four messages.
	StrictTokens int
}

// DefaultCompactionConfig returns the stock thresholds.
func DefaultCompactionConfig() CompactionConfig {
	return CompactionConfig{TruncateTokens: 5000, StrictTokens: 7000}
}

func (c CompactionConfig) withDefaults() CompactionConfig {
	d := DefaultCompactionConfig()
	if c.TruncateTokens <= 0 {
		c.TruncateTokens = d.TruncateTokens
	}
	if c.StrictTokens <= 0 {
		c.StrictTokens = d.StrictTokens
	}
	return c
}

// Compact rewrites a session log before a model call. It removes the
// intermediate steps of closed turns, normalizes identifier-bearing tool
// output so it survives in compact form, and truncates the tail when the
// last reported token usage crosses the configured thresholds. Messages are
// never reordered and user messages are never synthesized.
func Compact(msgs []Message, cfg CompactionConfig) []Message {
	cfg = cfg.withDefaults()
	out := cleanTurns(msgs, false)

	if len(out) >= 2 {
		switch usage := out[len(out)-2].Usage; {
		case usage > cfg.StrictTokens:
			out = cleanTurns(out, true)
			out = tail(out, 4)
		case usage > cfg.TruncateTokens:
			out = tail(out, 3)
		}
	}
	return out
}

// cleanTurns walks the log tracking the current turn's intermediate steps.
// A turn closes when the number of user messages equals the number of final
// assistant messages; at the close the turn's intermediates are dropped.
// In the default mode, tool messages carrying booking or vehicle
// identifiers are exempt from removal and are rewritten to their normalized
// form at the close. Strict mode exempts nothing.
func cleanTurns(msgs []Message, strict bool) []Message {
	var out []Message
	var middle []int
	users, finals := 0, 0

	for _, m := range msgs {
		switch {
		case m.Role == RoleUser:
			out = append(out, m)
			users++

		case m.IsFinal():
			out = append(out, m)
			finals++
			if users != finals {
				continue
			}
			if !strict {
				for i := range out {
					if out[i].Role == RoleTool && hasIdentifiers(out[i].Content) {
						out[i].Content = NormalizeToolContent(out[i].Content)
					}
				}
			}
			out = dropIndices(out, middle)
			middle = nil

		case m.Role == RoleAssistant:
			middle = append(middle, len(out))
			out = append(out, m)

		case m.Role == RoleTool:
			if strict || !hasIdentifiers(m.Content) {
				middle = append(middle, len(out))
			}
			out = append(out, m)
		}
	}
	return out
}

func hasIdentifiers(content string) bool {
	return strings.Contains(content, "booking_id") || strings.Contains(content, "car_id")
}

func dropIndices(msgs []Message, drop []int) []Message {
	if len(drop) == 0 {
		return msgs
	}
	skip := make(map[int]bool, len(drop))
	for _, i := range drop {
		skip[i] = true
	}
	out := msgs[:0]
	for i, m := range msgs {
		if !skip[i] {
			out = append(out, m)
		}
	}
	return out
}

func tail(msgs []Message, n int) []Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

// StripReprompts removes every synthetic re-prompt from a log. Called after
// the model produces a real response so the nudges never persist.
func StripReprompts(msgs []Message) []Message {
	out := msgs[:0]
	for _, m := range msgs {
		if m.Role == RoleUser && m.Content == RePrompt {
			continue
		}
		out = append(out, m)
	}
	return out
}
