package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/manager"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/match"
	"github.com/riskibarqy/fpl-pipeline/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

type fakeStatsProvider struct {
	teams     []ExternalTeam
	players   []ExternalPlayer
	gameweeks []ExternalGameweek
	managers  map[int64]ExternalManager
	h2h       []ExternalH2HFixture
}

func (p *fakeStatsProvider) FetchTeams(_ context.Context) ([]ExternalTeam, error) {
	return p.teams, nil
}

func (p *fakeStatsProvider) FetchPlayers(_ context.Context) ([]ExternalPlayer, error) {
	return p.players, nil
}

func (p *fakeStatsProvider) FetchGameweeks(_ context.Context) ([]ExternalGameweek, error) {
	return p.gameweeks, nil
}

func (p *fakeStatsProvider) FetchManager(_ context.Context, managerID int64) (ExternalManager, error) {
	return p.managers[managerID], nil
}

func (p *fakeStatsProvider) FetchH2HLeague(_ context.Context, _ int64) ([]ExternalH2HFixture, error) {
	return p.h2h, nil
}

func TestBuildAppearances_DoubleGameweekOrdering(t *testing.T) {
	players := []ExternalPlayer{{
		ID:         42,
		FirstName:  "Mohamed",
		SecondName: "Salah",
		Position:   "Midfielder",
		TeamID:     1,
		History: []ExternalPlayerMatch{
			{MatchID: 101, Gameweek: 8, OpponentTeamID: 2, Points: 6},
			{MatchID: 110, Gameweek: 8, OpponentTeamID: 3, Points: 12},
			{MatchID: 90, Gameweek: 7, OpponentTeamID: 3, Points: 2},
		},
	}}
	teamNames := map[int64]string{1: "liverpool", 2: "everton", 3: "fulham"}

	rows, skipped := buildAppearances(2020, players, teamNames)
	if skipped != 0 {
		t.Fatalf("expected no skipped rows, got %d", skipped)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 appearances, got %d", len(rows))
	}

	if rows[0].Gameweek != 7 || rows[0].GWMatch != 1 {
		t.Fatalf("single gameweek match should be gw_match 1: %+v", rows[0])
	}
	// Double gameweek: the later match (higher id) is gw_match 1.
	if rows[1].MatchID != 101 || rows[1].GWMatch != 2 {
		t.Fatalf("earlier double-gameweek match should be gw_match 2: %+v", rows[1])
	}
	if rows[2].MatchID != 110 || rows[2].GWMatch != 1 {
		t.Fatalf("later double-gameweek match should be gw_match 1: %+v", rows[2])
	}
	if rows[0].PlayerName != "mohamed salah" || rows[0].Position != "m" {
		t.Fatalf("unexpected identity columns: %+v", rows[0])
	}
	if rows[0].TeamName != "liverpool" || rows[0].OpponentTeamName != "fulham" {
		t.Fatalf("unexpected team names: %+v", rows[0])
	}
}

func TestBuildAppearances_SkipsUnknownPositions(t *testing.T) {
	players := []ExternalPlayer{{
		ID:         9,
		FirstName:  "New",
		SecondName: "Role",
		Position:   "Coach",
		History:    []ExternalPlayerMatch{{MatchID: 1, Gameweek: 1}},
	}}

	rows, skipped := buildAppearances(2020, players, nil)
	if len(rows) != 0 || skipped != 1 {
		t.Fatalf("expected 0 rows and 1 skipped, got %d and %d", len(rows), skipped)
	}
}

func TestBuildSeasonTotals(t *testing.T) {
	players := []ExternalPlayer{{
		ID:         42,
		FirstName:  "Mohamed",
		SecondName: "Salah",
		HistoryPast: []ExternalPlayerSeason{
			{SeasonName: "2018/19", Points: 259},
			{SeasonName: "2017/18", Points: 303},
			{SeasonName: "unknown", Points: 1},
		},
	}}

	rows, skipped := buildSeasonTotals(2020, players)
	if skipped != 1 {
		t.Fatalf("expected 1 skipped label, got %d", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 totals, got %d", len(rows))
	}
	if rows[0].Season != 2017 || rows[1].Season != 2018 {
		t.Fatalf("expected seasons sorted ascending, got %d and %d", rows[0].Season, rows[1].Season)
	}
	if rows[0].Year != 2020 {
		t.Fatalf("expected current season year 2020, got %d", rows[0].Year)
	}
}

func TestBuildTeamMatches_MirrorsFixtures(t *testing.T) {
	deadline := time.Date(2020, time.September, 12, 10, 0, 0, 0, time.UTC)
	gameweeks := []ExternalGameweek{
		{
			ID: 1, Finished: true, DeadlineAt: deadline,
			Fixtures: []ExternalFixture{{MatchID: 5, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 3, AwayScore: 1}},
		},
		{
			ID: 2, Finished: false,
			Fixtures: []ExternalFixture{{MatchID: 6, HomeTeamID: 2, AwayTeamID: 1}},
		},
	}
	teamNames := map[int64]string{1: "liverpool", 2: "everton"}

	rows := buildTeamMatches(2020, gameweeks, teamNames)
	if len(rows) != 4 {
		t.Fatalf("expected 4 mirrored rows, got %d", len(rows))
	}

	home, away := rows[0], rows[1]
	if home.Venue != match.VenueHome || away.Venue != match.VenueAway {
		t.Fatalf("expected home row first, got %q then %q", home.Venue, away.Venue)
	}
	if home.Result != match.ResultWin || away.Result != match.ResultLoss {
		t.Fatalf("expected mirrored results w/l, got %q and %q", home.Result, away.Result)
	}
	if home.Score != 3 || away.Score != 1 || away.OpponentScore != 3 {
		t.Fatalf("expected mirrored scores, got %+v and %+v", home, away)
	}
	if !home.DeadlineAt.Equal(deadline) {
		t.Fatalf("expected gameweek deadline on the row, got %v", home.DeadlineAt)
	}

	if rows[2].Result != match.ResultUnplayed || rows[3].Result != match.ResultUnplayed {
		t.Fatalf("unfinished gameweek should be unplayed, got %q and %q", rows[2].Result, rows[3].Result)
	}
}

func TestBuildManagerPicks_BenchRules(t *testing.T) {
	data := ExternalManager{
		ID: 77,
		Picks: []ExternalManagerPicks{
			{
				Gameweek: 1, Finished: true,
				Picks: []ExternalPick{
					{PlayerID: 1, Slot: 1, Multiplier: 1},
					{PlayerID: 2, Slot: 12, Multiplier: 1},
				},
			},
			{
				Gameweek: 2, Finished: true, ActiveChip: manager.ChipBenchBoost,
				Picks: []ExternalPick{{PlayerID: 2, Slot: 12, Multiplier: 1}},
			},
			{
				Gameweek: 3, Finished: false,
				Picks: []ExternalPick{{PlayerID: 1, Slot: 1, Multiplier: 1}},
			},
		},
	}

	rows := buildManagerPicks(2020, data)
	if len(rows) != 3 {
		t.Fatalf("expected 3 picks from finished gameweeks, got %d", len(rows))
	}
	if rows[1].Slot != 12 || rows[1].Multiplier != 0 {
		t.Fatalf("bench pick should score zero without bench boost: %+v", rows[1])
	}
	if rows[2].Gameweek != 2 || rows[2].Multiplier != 1 {
		t.Fatalf("bench boost should keep the bench multiplier: %+v", rows[2])
	}
}

func TestBuildH2HResults_MirrorAndRunningTotal(t *testing.T) {
	fixtures := []ExternalH2HFixture{
		{Gameweek: 1, Entry1Name: "Alpha FC", Entry1Points: 60, Entry1H2HPoints: 3, Entry2Name: "Beta FC", Entry2Points: 50},
		{Gameweek: 2, Entry1Name: "Beta FC", Entry1Points: 40, Entry1H2HPoints: 1, Entry2Name: "Alpha FC", Entry2Points: 40, Entry2H2HPoints: 1},
		{Gameweek: 3, Entry1Name: "Alpha FC", Entry2Name: "Beta FC"},
	}

	rows := buildH2HResults(2020, 555, fixtures)
	if len(rows) != 6 {
		t.Fatalf("expected 6 mirrored rows, got %d", len(rows))
	}

	if rows[0].ManagerName != "alpha fc" || rows[0].Result != match.ResultWin {
		t.Fatalf("unexpected first row: %+v", rows[0])
	}
	if rows[1].ManagerName != "beta fc" || rows[1].Result != match.ResultLoss {
		t.Fatalf("unexpected mirrored row: %+v", rows[1])
	}
	if rows[2].Result != match.ResultDraw || rows[3].Result != match.ResultDraw {
		t.Fatalf("expected a drawn gameweek 2, got %q and %q", rows[2].Result, rows[3].Result)
	}
	if rows[4].Result != match.ResultUnplayed {
		t.Fatalf("fixture without h2h points should be unplayed, got %q", rows[4].Result)
	}

	// alpha: 3 then 3+1, beta: 0 then 0+1.
	if rows[0].RunningTotal != 3 || rows[2].RunningTotal != 4 {
		t.Fatalf("unexpected alpha running totals: %d then %d", rows[0].RunningTotal, rows[2].RunningTotal)
	}
	if rows[1].RunningTotal != 0 || rows[3].RunningTotal != 1 {
		t.Fatalf("unexpected beta running totals: %d then %d", rows[1].RunningTotal, rows[3].RunningTotal)
	}
	if rows[0].LeagueID != 555 {
		t.Fatalf("expected league id on rows, got %d", rows[0].LeagueID)
	}
}

func TestSyncServiceRun_WritesAllTables(t *testing.T) {
	provider := &fakeStatsProvider{
		teams: []ExternalTeam{{ID: 1, Name: "Liverpool"}, {ID: 2, Name: "Everton"}},
		players: []ExternalPlayer{{
			ID: 42, FirstName: "Mohamed", SecondName: "Salah", Position: "Midfielder", TeamID: 1,
			History:     []ExternalPlayerMatch{{MatchID: 5, Gameweek: 1, OpponentTeamID: 2, Points: 10}},
			HistoryPast: []ExternalPlayerSeason{{SeasonName: "2018/19", Points: 259}},
		}},
		gameweeks: []ExternalGameweek{{
			ID: 1, Finished: true,
			Fixtures: []ExternalFixture{{MatchID: 5, HomeTeamID: 1, AwayTeamID: 2, HomeScore: 2, AwayScore: 0}},
		}},
		managers: map[int64]ExternalManager{
			77: {
				ID: 77, FirstName: "Pep", LastName: "Guardiola",
				History:        []ExternalManagerGameweek{{Gameweek: 1, Points: 60, TotalPoints: 60}},
				ChipByGameweek: map[int]string{1: manager.ChipWildcard},
				Picks: []ExternalManagerPicks{{
					Gameweek: 1, Finished: true,
					Picks: []ExternalPick{{PlayerID: 42, Slot: 1, Multiplier: 2, IsCaptain: true}},
				}},
			},
		},
		h2h: []ExternalH2HFixture{{Gameweek: 1, Entry1Name: "A", Entry1Points: 60, Entry1H2HPoints: 3, Entry2Name: "B", Entry2Points: 50}},
	}

	playerRepo := memory.NewPlayerRepository()
	matchRepo := memory.NewMatchRepository()
	managerRepo := memory.NewManagerRepository()
	service := NewSyncService(provider, playerRepo, matchRepo, managerRepo, logging.NewNop())

	report, err := service.Run(context.Background(), SyncInput{Season: 2020, ManagerIDs: []int64{77}, H2HLeagueID: 555})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Appearances != 1 || report.SeasonTotals != 1 || report.TeamMatches != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.ManagerGameweeks != 1 || report.Picks != 1 || report.H2HResults != 2 {
		t.Fatalf("unexpected manager counts: %+v", report)
	}

	if rows := playerRepo.AppearancesBySeason(2020); len(rows) != 1 || rows[0].PlayerName != "mohamed salah" {
		t.Fatalf("unexpected stored appearances: %+v", rows)
	}
	if rows := matchRepo.MatchesBySeason(2020); len(rows) != 2 {
		t.Fatalf("expected mirrored match rows, got %d", len(rows))
	}
	summaries := managerRepo.GameweeksBySeason(2020)
	if len(summaries) != 1 || summaries[0].Chip != manager.ChipWildcard || summaries[0].ManagerName != "pep guardiola" {
		t.Fatalf("unexpected stored manager gameweeks: %+v", summaries)
	}
}
