package status

import (
	"fmt"
	"strings"
	"time"
)

// Availability represents the closed set of player availability codes
// reported by the status feed.
type Availability string

const (
	AvailabilityAvailable   Availability = "a"
	AvailabilityDoubtful    Availability = "d"
	AvailabilityInjured     Availability = "i"
	AvailabilityOnLoan      Availability = "l"
	AvailabilitySuspended   Availability = "s"
	AvailabilityUnavailable Availability = "u"
)

var AllAvailabilities = map[Availability]struct{}{
	AvailabilityAvailable:   {},
	AvailabilityDoubtful:    {},
	AvailabilityInjured:     {},
	AvailabilityOnLoan:      {},
	AvailabilitySuspended:   {},
	AvailabilityUnavailable: {},
}

// Event is one reported status transition for one player. The feed reports
// the state before and after the change plus the chance-of-playing scale
// (0/25/50/75/100) paired with each state.
type Event struct {
	PlayerID   int64
	PlayerName string
	News       string

	// RawDate is the feed's day-month string, e.g. "14 Aug". It carries no
	// year, so Date is only set once the season base year is applied.
	RawDate string
	Date    *time.Time

	PriorState  Availability
	ResultState Availability
	StateKnown  bool

	PriorChance  int
	ResultChance int
	ChanceKnown  bool

	// Step is the per-player ordering key. Zero means not yet assigned
	// (or unassignable because the date could not be resolved).
	Step int
}

// linksTo reports whether next can immediately follow e in a timeline:
// next's recorded "before" state must equal e's recorded "after" state.
// Events with missing transition fields never form a valid link.
func (e Event) linksTo(next Event) bool {
	if !e.StateKnown || !next.StateKnown || !e.ChanceKnown || !next.ChanceKnown {
		return false
	}
	return e.ResultState == next.PriorState && e.ResultChance == next.PriorChance
}

func (e Event) Validate() error {
	if e.PlayerID <= 0 {
		return fmt.Errorf("status event player id is required")
	}
	if e.StateKnown {
		if _, ok := AllAvailabilities[e.PriorState]; !ok {
			return fmt.Errorf("invalid prior availability: %q", e.PriorState)
		}
		if _, ok := AllAvailabilities[e.ResultState]; !ok {
			return fmt.Errorf("invalid resulting availability: %q", e.ResultState)
		}
	}
	return nil
}

// SplitTransition parses the feed's combined "<old> to <new>" form. The feed
// occasionally emits malformed values; those are reported via ok=false and
// treated as absent rather than fatal.
func SplitTransition(raw string) (old string, new_ string, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(raw), " to ", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	old = strings.TrimSpace(parts[0])
	new_ = strings.TrimSpace(parts[1])
	if old == "" || new_ == "" {
		return "", "", false
	}
	return old, new_, true
}
