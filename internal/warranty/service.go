// Package warranty implements the warranty and Customer Convenience
// Package (CCP) business operations: status checks, eligibility windows,
// purchases, cancellations and claims over the flat-file record store.
package warranty

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/ashwink/warranty-agent/internal/events"
	"github.com/ashwink/warranty-agent/internal/notify"
	"github.com/ashwink/warranty-agent/internal/store"
)

// DateLayout is the dd/mm/yyyy layout used across all record dates.
const DateLayout = "02/01/2006"

// Eligibility windows measured from the vehicle purchase date. The CCP
// window approximates 21 months as 21 thirty-day blocks, matching how the
// deadlines in existing records were computed.
const (
	extendedWarrantyWindowDays = 3 * 365
	ccpWindowDays              = 21 * 30
)

// Service executes warranty operations. Email and event delivery are
// advisory: their failures surface in tool payloads but never abort the
// record mutation that triggered them.
type Service struct {
	store    *store.Store
	notifier *notify.Notifier
	events   *events.Publisher
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a warranty service. A nil clock defaults to time.Now.
func New(st *store.Store, notifier *notify.Notifier, pub *events.Publisher, logger *slog.Logger) *Service {
	return &Service{store: st, notifier: notifier, events: pub, now: time.Now, logger: logger}
}

// WithClock overrides the service clock. Tests use this to pin the
// eligibility windows.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func findVehicle(vs []store.Vehicle, registration string) (store.Vehicle, bool) {
	for _, v := range vs {
		if v.Registration == registration {
			return v, true
		}
	}
	return store.Vehicle{}, false
}

// errResult is the domain-rule violation payload. The model relays these
// to the customer instead of retrying.
func errResult(msg string) map[string]any {
	return map[string]any{"error": msg}
}

// groupThousands renders 120000 as "120,000".
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

func rupees(n int) string {
	return "₹" + groupThousands(n)
}

// titleCase renders a snake_case claim type as display text, so
// "water_damage" becomes "Water Damage".
func titleCase(snake string) string {
	out := []rune(snake)
	upper := true
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
			upper = true
			continue
		}
		if upper && 'a' <= r && r <= 'z' {
			out[i] = r - 'a' + 'A'
		}
		upper = false
	}
	return string(out)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// daysUntil counts whole days from now to the deadline.
func daysUntil(now, deadline time.Time) int {
	return int(deadline.Sub(now).Hours() / 24)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
