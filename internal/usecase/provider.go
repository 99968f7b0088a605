package usecase

import (
	"context"
	"time"
)

// External DTOs are the provider-shaped records the clients return; the
// ingestion builders flatten them into the analysis row types.

type ExternalTeam struct {
	ID   int64
	Name string
}

type ExternalPlayer struct {
	ID         int64
	FirstName  string
	SecondName string
	Position   string
	TeamID     int64

	History     []ExternalPlayerMatch
	HistoryPast []ExternalPlayerSeason
}

// ExternalPlayerMatch is one per-match row of a player's current season.
type ExternalPlayerMatch struct {
	MatchID        int64
	Gameweek       int
	OpponentTeamID int64
	WasHome        bool

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

// ExternalPlayerSeason is one aggregated row of a player's past seasons.
type ExternalPlayerSeason struct {
	// SeasonName is the provider's "2016/17" form.
	SeasonName string
	Points     int
	Minutes    int
	Goals      int
	Assists    int
	Bonus      int
}

type ExternalGameweek struct {
	ID         int
	DeadlineAt time.Time
	Finished   bool
	Fixtures   []ExternalFixture
}

type ExternalFixture struct {
	MatchID    int64
	HomeTeamID int64
	AwayTeamID int64
	HomeScore  int
	AwayScore  int
	KickoffAt  time.Time
}

type ExternalManager struct {
	ID        int64
	FirstName string
	LastName  string

	History []ExternalManagerGameweek
	// ChipByGameweek maps a gameweek to the chip played in it.
	ChipByGameweek map[int]string
	Picks          []ExternalManagerPicks
}

type ExternalManagerGameweek struct {
	Gameweek      int
	Points        int
	TotalPoints   int
	Rank          int
	Transfers     int
	TransfersCost int
	BankValue     int
	TeamValue     int
	BenchPoints   int
}

type ExternalManagerPicks struct {
	Gameweek   int
	Finished   bool
	ActiveChip string
	Picks      []ExternalPick
}

type ExternalPick struct {
	PlayerID      int64
	Slot          int
	Multiplier    int
	IsCaptain     bool
	IsViceCaptain bool
}

// ExternalH2HFixture is one head-to-head league fixture, both entries in
// one record the way the provider reports it.
type ExternalH2HFixture struct {
	Gameweek int

	Entry1Name      string
	Entry1Points    int
	Entry1H2HPoints int

	Entry2Name      string
	Entry2Points    int
	Entry2H2HPoints int
}

// RawStatusRecord is one unparsed status change from the status feed:
// combined "<old> to <new>" transition strings and a year-less date.
type RawStatusRecord struct {
	PlayerID   int64
	PlayerName string
	RawDate    string
	// Probability is the combined chance transition, e.g. "75 to 100".
	Probability string
	// Status is the combined availability transition, e.g. "A to I".
	Status string
	News   string
}

// StatsProvider is the remote FPL statistics source.
type StatsProvider interface {
	FetchTeams(ctx context.Context) ([]ExternalTeam, error)
	FetchPlayers(ctx context.Context) ([]ExternalPlayer, error)
	FetchGameweeks(ctx context.Context) ([]ExternalGameweek, error)
	FetchManager(ctx context.Context, managerID int64) (ExternalManager, error)
	FetchH2HLeague(ctx context.Context, leagueID int64) ([]ExternalH2HFixture, error)
}

// StatusProvider is the remote player-status-change feed.
type StatusProvider interface {
	FetchStatusChanges(ctx context.Context) ([]RawStatusRecord, error)
}
