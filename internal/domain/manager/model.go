package manager

import "fmt"

// Chip names as reported by the provider; empty means no chip played.
const (
	ChipBenchBoost    = "bboost"
	ChipTripleCaptain = "3xc"
	ChipWildcard      = "wildcard"
	ChipFreeHit       = "freehit"
)

// GameweekSummary is one manager's season row for one gameweek.
type GameweekSummary struct {
	ManagerID   int64
	ManagerName string
	Year        int

	Gameweek      int
	Points        int
	TotalPoints   int
	Rank          int
	Transfers     int
	TransfersCost int
	BankValue     int
	TeamValue     int
	BenchPoints   int
	Chip          string
}

// Pick is one slot of a manager's selected team for one gameweek. Bench
// picks carry multiplier zero unless bench boost was active, so points
// totals are a plain multiply-and-sum.
type Pick struct {
	ManagerID int64
	Year      int

	Gameweek      int
	PlayerID      int64
	Slot          int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
}

// H2HResult is one side of one head-to-head league fixture, mirrored the
// same way team matches are.
type H2HResult struct {
	LeagueID int64
	Year     int

	Gameweek     int
	ManagerName  string
	OpponentName string

	Points         int
	OpponentPoints int
	H2HPoints      int

	// Result is w/d/l, or "-" for fixtures not yet played.
	Result string

	// RunningTotal accumulates H2HPoints over gameweeks per manager.
	RunningTotal int
}

func (s GameweekSummary) Validate() error {
	if s.ManagerID <= 0 {
		return fmt.Errorf("manager id is required")
	}
	if s.Gameweek <= 0 {
		return fmt.Errorf("manager gameweek must be greater than zero")
	}
	return nil
}

// StartingSlots is the number of non-bench slots in a picked team.
const StartingSlots = 11
