package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/manager"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/match"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/player"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

// SyncService pulls the season's statistics from the remote provider and
// flattens them into the analysis tables: appearances, season totals, team
// matches, manager gameweeks, picks and head-to-head results.
type SyncService struct {
	stats    StatsProvider
	players  player.Repository
	matches  match.Repository
	managers manager.Repository
	logger   *logging.Logger
	validate *validator.Validate
}

func NewSyncService(
	stats StatsProvider,
	players player.Repository,
	matches match.Repository,
	managers manager.Repository,
	logger *logging.Logger,
) *SyncService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SyncService{
		stats:    stats,
		players:  players,
		matches:  matches,
		managers: managers,
		logger:   logger,
		validate: validator.New(),
	}
}

type SyncInput struct {
	Season      int     `validate:"required,gte=1992,lte=2100"`
	ManagerIDs  []int64 `validate:"max=64,dive,gt=0"`
	H2HLeagueID int64   `validate:"gte=0"`
}

type SyncReport struct {
	Teams            int `json:"teams"`
	Players          int `json:"players"`
	Appearances      int `json:"appearances"`
	SeasonTotals     int `json:"season_totals"`
	TeamMatches      int `json:"team_matches"`
	Managers         int `json:"managers"`
	ManagerGameweeks int `json:"manager_gameweeks"`
	Picks            int `json:"picks"`
	H2HResults       int `json:"h2h_results"`
	SkippedRows      int `json:"skipped_rows"`
}

func (s *SyncService) Run(ctx context.Context, input SyncInput) (SyncReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SyncService.Run")
	defer span.End()

	if s.stats == nil {
		return SyncReport{}, fmt.Errorf("%w: stats provider is not configured", ErrDependencyUnavailable)
	}
	if err := s.validate.Struct(input); err != nil {
		return SyncReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		teams       []ExternalTeam
		playersData []ExternalPlayer
		gameweeks   []ExternalGameweek
		h2hFixtures []ExternalH2HFixture
	)
	managersData := make([]ExternalManager, len(input.ManagerIDs))

	fetch := pool.New().WithContext(ctx).WithCancelOnError()
	fetch.Go(func(ctx context.Context) error {
		var err error
		teams, err = s.stats.FetchTeams(ctx)
		return err
	})
	fetch.Go(func(ctx context.Context) error {
		var err error
		playersData, err = s.stats.FetchPlayers(ctx)
		return err
	})
	fetch.Go(func(ctx context.Context) error {
		var err error
		gameweeks, err = s.stats.FetchGameweeks(ctx)
		return err
	})
	for i, managerID := range input.ManagerIDs {
		i, managerID := i, managerID
		fetch.Go(func(ctx context.Context) error {
			data, err := s.stats.FetchManager(ctx, managerID)
			if err != nil {
				return fmt.Errorf("fetch manager %d: %w", managerID, err)
			}
			managersData[i] = data
			return nil
		})
	}
	if input.H2HLeagueID > 0 {
		fetch.Go(func(ctx context.Context) error {
			var err error
			h2hFixtures, err = s.stats.FetchH2HLeague(ctx, input.H2HLeagueID)
			return err
		})
	}
	if err := fetch.Wait(); err != nil {
		return SyncReport{}, fmt.Errorf("fetch season sources: %w", err)
	}

	teamNames := make(map[int64]string, len(teams))
	for _, team := range teams {
		teamNames[team.ID] = strings.ToLower(team.Name)
	}

	appearances, skippedAppearances := buildAppearances(input.Season, playersData, teamNames)
	totals, skippedTotals := buildSeasonTotals(input.Season, playersData)
	teamMatches := buildTeamMatches(input.Season, gameweeks, teamNames)

	var (
		summaries []manager.GameweekSummary
		picks     []manager.Pick
	)
	for _, data := range managersData {
		summaries = append(summaries, buildManagerGameweeks(input.Season, data)...)
		picks = append(picks, buildManagerPicks(input.Season, data)...)
	}
	h2hResults := buildH2HResults(input.Season, input.H2HLeagueID, h2hFixtures)

	report := SyncReport{
		Teams:            len(teams),
		Players:          len(playersData),
		Appearances:      len(appearances),
		SeasonTotals:     len(totals),
		TeamMatches:      len(teamMatches),
		Managers:         len(managersData),
		ManagerGameweeks: len(summaries),
		Picks:            len(picks),
		H2HResults:       len(h2hResults),
		SkippedRows:      skippedAppearances + skippedTotals,
	}

	write := pool.New().WithContext(ctx).WithCancelOnError()
	write.Go(func(ctx context.Context) error {
		return s.players.ReplaceAppearances(ctx, input.Season, appearances)
	})
	write.Go(func(ctx context.Context) error {
		return s.players.ReplaceSeasonTotals(ctx, input.Season, totals)
	})
	write.Go(func(ctx context.Context) error {
		return s.matches.ReplaceSeason(ctx, input.Season, teamMatches)
	})
	write.Go(func(ctx context.Context) error {
		return s.managers.ReplaceGameweeks(ctx, input.Season, summaries)
	})
	write.Go(func(ctx context.Context) error {
		return s.managers.ReplacePicks(ctx, input.Season, picks)
	})
	write.Go(func(ctx context.Context) error {
		return s.managers.ReplaceH2HResults(ctx, input.Season, h2hResults)
	})
	if err := write.Wait(); err != nil {
		return SyncReport{}, fmt.Errorf("write season tables: %w", err)
	}

	s.logger.InfoContext(ctx, "season sync finished",
		"season", input.Season,
		"teams", report.Teams,
		"players", report.Players,
		"appearances", report.Appearances,
		"team_matches", report.TeamMatches,
		"managers", report.Managers,
		"skipped_rows", report.SkippedRows,
	)

	return report, nil
}

// buildAppearances flattens per-match player history into appearance rows.
// Rows whose position label cannot be collapsed to a known code are
// skipped and counted.
func buildAppearances(season int, players []ExternalPlayer, teamNames map[int64]string) ([]player.Appearance, int) {
	var rows []player.Appearance
	skipped := 0

	for _, p := range players {
		position, ok := player.PositionCode(p.Position)
		if !ok {
			skipped += len(p.History)
			continue
		}
		name := player.FullName(p.FirstName, p.SecondName)

		// Latest match of a gameweek is gw_match 1, earlier matches of
		// a double gameweek count up from there.
		byGameweek := make(map[int][]ExternalPlayerMatch)
		for _, m := range p.History {
			byGameweek[m.Gameweek] = append(byGameweek[m.Gameweek], m)
		}

		for gameweek, matches := range byGameweek {
			sort.Slice(matches, func(i, j int) bool {
				return matches[i].MatchID > matches[j].MatchID
			})
			for order, m := range matches {
				venue := match.VenueAway
				if m.WasHome {
					venue = match.VenueHome
				}
				rows = append(rows, player.Appearance{
					PlayerID:         p.ID,
					PlayerName:       name,
					Position:         position,
					Year:             season,
					Gameweek:         gameweek,
					MatchID:          m.MatchID,
					GWMatch:          order + 1,
					TeamID:           p.TeamID,
					TeamName:         teamNames[p.TeamID],
					OpponentTeamID:   m.OpponentTeamID,
					OpponentTeamName: teamNames[m.OpponentTeamID],
					Venue:            venue,
					Points:           m.Points,
					Minutes:          m.Minutes,
					Goals:            m.Goals,
					Assists:          m.Assists,
					CleanSheets:      m.CleanSheets,
					GoalsConceded:    m.GoalsConceded,
					Bonus:            m.Bonus,
					Saves:            m.Saves,
					CBI:              m.CBI,
					ShotsOffTarget:   m.ShotsOffTarget,
					YellowCards:      m.YellowCards,
					RedCards:         m.RedCards,
				})
			}
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlayerID != rows[j].PlayerID {
			return rows[i].PlayerID < rows[j].PlayerID
		}
		if rows[i].Gameweek != rows[j].Gameweek {
			return rows[i].Gameweek < rows[j].Gameweek
		}
		return rows[i].MatchID < rows[j].MatchID
	})

	return rows, skipped
}

// buildSeasonTotals flattens past-season aggregates. Season labels that do
// not parse as "2016/17" are skipped and counted.
func buildSeasonTotals(season int, players []ExternalPlayer) ([]player.SeasonTotal, int) {
	var rows []player.SeasonTotal
	skipped := 0

	for _, p := range players {
		name := player.FullName(p.FirstName, p.SecondName)
		for _, past := range p.HistoryPast {
			startYear, ok := player.ParseSeasonStartYear(past.SeasonName)
			if !ok {
				skipped++
				continue
			}
			rows = append(rows, player.SeasonTotal{
				PlayerID:   p.ID,
				PlayerName: name,
				Year:       season,
				Season:     startYear,
				Points:     past.Points,
				Minutes:    past.Minutes,
				Goals:      past.Goals,
				Assists:    past.Assists,
				Bonus:      past.Bonus,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlayerID != rows[j].PlayerID {
			return rows[i].PlayerID < rows[j].PlayerID
		}
		return rows[i].Season < rows[j].Season
	})

	return rows, skipped
}

// buildTeamMatches mirrors every fixture into a home row and an away row.
// Fixtures of unfinished gameweeks carry the unplayed result.
func buildTeamMatches(season int, gameweeks []ExternalGameweek, teamNames map[int64]string) []match.TeamMatch {
	var rows []match.TeamMatch

	for _, gw := range gameweeks {
		for _, fixture := range gw.Fixtures {
			homeResult := match.ResultUnplayed
			awayResult := match.ResultUnplayed
			if gw.Finished {
				homeResult = match.ResultFor(fixture.HomeScore, fixture.AwayScore)
				awayResult = match.ResultFor(fixture.AwayScore, fixture.HomeScore)
			}

			rows = append(rows, match.TeamMatch{
				MatchID:          fixture.MatchID,
				Gameweek:         gw.ID,
				Year:             season,
				TeamID:           fixture.HomeTeamID,
				TeamName:         teamNames[fixture.HomeTeamID],
				OpponentTeamID:   fixture.AwayTeamID,
				OpponentTeamName: teamNames[fixture.AwayTeamID],
				Venue:            match.VenueHome,
				Score:            fixture.HomeScore,
				OpponentScore:    fixture.AwayScore,
				Result:           homeResult,
				KickoffAt:        fixture.KickoffAt,
				DeadlineAt:       gw.DeadlineAt,
			}, match.TeamMatch{
				MatchID:          fixture.MatchID,
				Gameweek:         gw.ID,
				Year:             season,
				TeamID:           fixture.AwayTeamID,
				TeamName:         teamNames[fixture.AwayTeamID],
				OpponentTeamID:   fixture.HomeTeamID,
				OpponentTeamName: teamNames[fixture.HomeTeamID],
				Venue:            match.VenueAway,
				Score:            fixture.AwayScore,
				OpponentScore:    fixture.HomeScore,
				Result:           awayResult,
				KickoffAt:        fixture.KickoffAt,
				DeadlineAt:       gw.DeadlineAt,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gameweek != rows[j].Gameweek {
			return rows[i].Gameweek < rows[j].Gameweek
		}
		if rows[i].MatchID != rows[j].MatchID {
			return rows[i].MatchID < rows[j].MatchID
		}
		return rows[i].Venue == match.VenueHome
	})

	return rows
}

func buildManagerGameweeks(season int, data ExternalManager) []manager.GameweekSummary {
	name := strings.ToLower(strings.TrimSpace(data.FirstName + " " + data.LastName))
	rows := make([]manager.GameweekSummary, 0, len(data.History))

	for _, gw := range data.History {
		rows = append(rows, manager.GameweekSummary{
			ManagerID:     data.ID,
			ManagerName:   name,
			Year:          season,
			Gameweek:      gw.Gameweek,
			Points:        gw.Points,
			TotalPoints:   gw.TotalPoints,
			Rank:          gw.Rank,
			Transfers:     gw.Transfers,
			TransfersCost: gw.TransfersCost,
			BankValue:     gw.BankValue,
			TeamValue:     gw.TeamValue,
			BenchPoints:   gw.BenchPoints,
			Chip:          data.ChipByGameweek[gw.Gameweek],
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Gameweek < rows[j].Gameweek })

	return rows
}

// buildManagerPicks keeps only finished gameweeks and normalizes the bench:
// slots past the starting eleven score zero unless bench boost was active.
func buildManagerPicks(season int, data ExternalManager) []manager.Pick {
	var rows []manager.Pick

	for _, gw := range data.Picks {
		if !gw.Finished {
			continue
		}
		for _, pick := range gw.Picks {
			multiplier := pick.Multiplier
			if pick.Slot > manager.StartingSlots && gw.ActiveChip != manager.ChipBenchBoost {
				multiplier = 0
			}
			rows = append(rows, manager.Pick{
				ManagerID:     data.ID,
				Year:          season,
				Gameweek:      gw.Gameweek,
				PlayerID:      pick.PlayerID,
				Slot:          pick.Slot,
				Multiplier:    multiplier,
				IsCaptain:     pick.IsCaptain,
				IsViceCaptain: pick.IsViceCaptain,
			})
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Gameweek != rows[j].Gameweek {
			return rows[i].Gameweek < rows[j].Gameweek
		}
		return rows[i].Slot < rows[j].Slot
	})

	return rows
}

// buildH2HResults mirrors each head-to-head fixture into one row per
// entry and accumulates each manager's running total over gameweeks. A
// fixture where neither side earned head-to-head points has not been
// played yet.
func buildH2HResults(season int, leagueID int64, fixtures []ExternalH2HFixture) []manager.H2HResult {
	var rows []manager.H2HResult

	for _, fixture := range fixtures {
		played := fixture.Entry1H2HPoints != 0 || fixture.Entry2H2HPoints != 0

		entry1 := manager.H2HResult{
			LeagueID:       leagueID,
			Year:           season,
			Gameweek:       fixture.Gameweek,
			ManagerName:    strings.ToLower(strings.TrimSpace(fixture.Entry1Name)),
			OpponentName:   strings.ToLower(strings.TrimSpace(fixture.Entry2Name)),
			Points:         fixture.Entry1Points,
			OpponentPoints: fixture.Entry2Points,
			H2HPoints:      fixture.Entry1H2HPoints,
			Result:         match.ResultUnplayed,
		}
		entry2 := manager.H2HResult{
			LeagueID:       leagueID,
			Year:           season,
			Gameweek:       fixture.Gameweek,
			ManagerName:    entry1.OpponentName,
			OpponentName:   entry1.ManagerName,
			Points:         fixture.Entry2Points,
			OpponentPoints: fixture.Entry1Points,
			H2HPoints:      fixture.Entry2H2HPoints,
			Result:         match.ResultUnplayed,
		}
		if played {
			entry1.Result = match.ResultFor(fixture.Entry1Points, fixture.Entry2Points)
			entry2.Result = match.ResultFor(fixture.Entry2Points, fixture.Entry1Points)
		}
		rows = append(rows, entry1, entry2)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Gameweek != rows[j].Gameweek {
			return rows[i].Gameweek < rows[j].Gameweek
		}
		return rows[i].ManagerName < rows[j].ManagerName
	})

	running := make(map[string]int)
	for i := range rows {
		running[rows[i].ManagerName] += rows[i].H2HPoints
		rows[i].RunningTotal = running[rows[i].ManagerName]
	}

	return rows
}
