package match

import (
	"fmt"
	"time"
)

const (
	VenueHome = "home"
	VenueAway = "away"

	ResultWin      = "w"
	ResultDraw     = "d"
	ResultLoss     = "l"
	ResultUnplayed = "-"
)

// TeamMatch is one team's side of one fixture: every fixture produces a home
// row and a mirrored away row, which is the shape the analysis tables use.
type TeamMatch struct {
	MatchID  int64
	Gameweek int
	Year     int

	TeamID           int64
	TeamName         string
	OpponentTeamID   int64
	OpponentTeamName string
	Venue            string

	Score         int
	OpponentScore int
	Result        string

	KickoffAt  time.Time
	DeadlineAt time.Time
}

func (m TeamMatch) Validate() error {
	if m.MatchID <= 0 {
		return fmt.Errorf("match id is required")
	}
	if m.Gameweek <= 0 {
		return fmt.Errorf("match gameweek must be greater than zero")
	}
	if m.Venue != VenueHome && m.Venue != VenueAway {
		return fmt.Errorf("invalid venue: %q", m.Venue)
	}
	return nil
}

// ResultFor returns the match result relative to a team.
func ResultFor(score, opponentScore int) string {
	switch {
	case score > opponentScore:
		return ResultWin
	case score < opponentScore:
		return ResultLoss
	default:
		return ResultDraw
	}
}
