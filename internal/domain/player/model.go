package player

import (
	"fmt"
	"strings"
)

// Position is the single-letter position code used across the analysis
// tables: g, d, m, f.
type Position string

const (
	PositionGoalkeeper Position = "g"
	PositionDefender   Position = "d"
	PositionMidfielder Position = "m"
	PositionForward    Position = "f"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Appearance is one player's row for one match of one gameweek.
type Appearance struct {
	PlayerID   int64
	PlayerName string
	Position   Position
	Year       int

	Gameweek int
	MatchID  int64
	// GWMatch distinguishes the matches of a double gameweek: 1 for the
	// latest match of the gameweek, counting up for earlier ones.
	GWMatch int

	TeamID           int64
	TeamName         string
	OpponentTeamID   int64
	OpponentTeamName string
	Venue            string

	Points         int
	Minutes        int
	Goals          int
	Assists        int
	CleanSheets    int
	GoalsConceded  int
	Bonus          int
	Saves          int
	CBI            int
	ShotsOffTarget int
	YellowCards    int
	RedCards       int
}

func (a Appearance) Validate() error {
	if a.PlayerID <= 0 {
		return fmt.Errorf("appearance player id is required")
	}
	if a.Gameweek <= 0 {
		return fmt.Errorf("appearance gameweek must be greater than zero")
	}
	if _, ok := AllPositions[a.Position]; !ok {
		return fmt.Errorf("invalid position code: %q", a.Position)
	}
	return nil
}

// SeasonTotal is one row of a player's historical season aggregates.
type SeasonTotal struct {
	PlayerID   int64
	PlayerName string
	Year       int
	// Season is the start year of the aggregated season, parsed from the
	// provider's "2016/17" form.
	Season  int
	Points  int
	Minutes int
	Goals   int
	Assists int
	Bonus   int
}

// FullName joins and lowercases a player's name parts the way every
// analysis table keys on it.
func FullName(firstName, lastName string) string {
	return strings.ToLower(strings.TrimSpace(firstName + " " + lastName))
}

// PositionCode collapses a provider position label ("Midfielder") to the
// single-letter code.
func PositionCode(label string) (Position, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(label))
	if trimmed == "" {
		return "", false
	}
	code := Position(trimmed[:1])
	if _, ok := AllPositions[code]; !ok {
		return "", false
	}
	return code, true
}

// ParseSeasonStartYear converts the provider's "2016/17" season label to
// its start year.
func ParseSeasonStartYear(label string) (int, bool) {
	trimmed := strings.TrimSpace(label)
	if len(trimmed) < 4 {
		return 0, false
	}
	year := 0
	for _, r := range trimmed[:4] {
		if r < '0' || r > '9' {
			return 0, false
		}
		year = year*10 + int(r-'0')
	}
	return year, true
}
