package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/feature"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/match"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/player"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

// FeatureService turns the season's flat tables into model-ready feature
// rows: points lags and diffs, venue and position encodings, gameweek
// shape columns and the latest pre-deadline status per player.
type FeatureService struct {
	players  player.Repository
	matches  match.Repository
	statuses status.Repository
	features feature.Repository
	logger   *logging.Logger
	validate *validator.Validate
}

func NewFeatureService(
	players player.Repository,
	matches match.Repository,
	statuses status.Repository,
	features feature.Repository,
	logger *logging.Logger,
) *FeatureService {
	if logger == nil {
		logger = logging.Default()
	}
	return &FeatureService{
		players:  players,
		matches:  matches,
		statuses: statuses,
		features: features,
		logger:   logger,
		validate: validator.New(),
	}
}

type FeatureRunInput struct {
	Season int `validate:"required,gte=1992,lte=2100"`
	DryRun bool
}

type FeatureRunReport struct {
	Rows               int `json:"rows"`
	BackfilledStatuses int `json:"backfilled_statuses"`
	MissingStatuses    int `json:"missing_statuses"`
}

func (s *FeatureService) Run(ctx context.Context, input FeatureRunInput) (FeatureRunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FeatureService.Run")
	defer span.End()

	if s.players == nil || s.matches == nil || s.statuses == nil || s.features == nil {
		return FeatureRunReport{}, fmt.Errorf("%w: feature pipeline is not fully configured", ErrDependencyUnavailable)
	}
	if err := s.validate.Struct(input); err != nil {
		return FeatureRunReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var (
		appearances []player.Appearance
		teamMatches []match.TeamMatch
		events      []status.Event
	)
	read := pool.New().WithContext(ctx).WithCancelOnError()
	read.Go(func(ctx context.Context) error {
		var err error
		appearances, err = s.players.ListAppearances(ctx, input.Season)
		return err
	})
	read.Go(func(ctx context.Context) error {
		var err error
		teamMatches, err = s.matches.ListBySeason(ctx, input.Season)
		return err
	})
	read.Go(func(ctx context.Context) error {
		var err error
		events, err = s.statuses.ListBySeason(ctx, input.Season)
		return err
	})
	if err := read.Wait(); err != nil {
		return FeatureRunReport{}, fmt.Errorf("read season tables: %w", err)
	}

	rows, report := buildFeatureRows(input.Season, appearances, teamMatches, events)

	if !input.DryRun {
		if err := s.features.ReplaceSeason(ctx, input.Season, rows); err != nil {
			return FeatureRunReport{}, fmt.Errorf("export feature rows: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "feature run finished",
		"season", input.Season,
		"rows", report.Rows,
		"backfilled_statuses", report.BackfilledStatuses,
		"missing_statuses", report.MissingStatuses,
		"dry_run", input.DryRun,
	)

	return report, nil
}

var positionOrdinals = map[player.Position]int{
	player.PositionGoalkeeper: 0,
	player.PositionDefender:   1,
	player.PositionMidfielder: 2,
	player.PositionForward:    3,
}

type teamGameweek struct {
	teamID   int64
	gameweek int
}

func buildFeatureRows(
	season int,
	appearances []player.Appearance,
	teamMatches []match.TeamMatch,
	events []status.Event,
) ([]feature.Row, FeatureRunReport) {
	sorted := make([]player.Appearance, len(appearances))
	copy(sorted, appearances)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].PlayerID != sorted[j].PlayerID {
			return sorted[i].PlayerID < sorted[j].PlayerID
		}
		if sorted[i].Gameweek != sorted[j].Gameweek {
			return sorted[i].Gameweek < sorted[j].Gameweek
		}
		return sorted[i].MatchID < sorted[j].MatchID
	})

	gwTeams := countGameweekTeams(teamMatches)

	// Double gameweeks produce one deadline per team per gameweek, so the
	// first row wins.
	deadlines := make(map[teamGameweek]time.Time)
	for _, m := range teamMatches {
		key := teamGameweek{teamID: m.TeamID, gameweek: m.Gameweek}
		if _, ok := deadlines[key]; !ok {
			deadlines[key] = m.DeadlineAt
		}
	}

	eventsByPlayer := make(map[int64][]status.Event)
	for _, item := range events {
		eventsByPlayer[item.PlayerID] = append(eventsByPlayer[item.PlayerID], item)
	}

	var report FeatureRunReport
	rows := make([]feature.Row, 0, len(sorted))

	var (
		prevPlayerID   int64
		playerPoints   []int
		prevStatusType int
		statusRun      int
	)
	for _, appearance := range sorted {
		if appearance.PlayerID != prevPlayerID {
			prevPlayerID = appearance.PlayerID
			playerPoints = playerPoints[:0]
			statusRun = 0
		}

		row := feature.Row{
			PlayerID:   appearance.PlayerID,
			PlayerName: appearance.PlayerName,
			Year:       season,
			Gameweek:   appearance.Gameweek,
			MatchID:    appearance.MatchID,
			Points:     appearance.Points,

			PositionOrdinal: positionOrdinals[appearance.Position],
			DoubleGW:        appearance.GWMatch,
			GWTeams:         gwTeams[appearance.Gameweek],
		}
		if appearance.Venue == match.VenueHome {
			row.VenueHome = 1
		} else {
			row.VenueAway = 1
		}

		row.PointsLag1 = lagAt(playerPoints, 1)
		row.PointsLag2 = lagAt(playerPoints, 2)
		row.PointsLag3 = lagAt(playerPoints, 3)
		row.PointsDiff1 = diffOf(row.PointsLag1, row.PointsLag2)
		row.PointsDiff2 = diffOf(row.PointsLag2, row.PointsLag3)

		deadline := deadlines[teamGameweek{teamID: appearance.TeamID, gameweek: appearance.Gameweek}]
		latest, found, backfilled := latestStatusBefore(eventsByPlayer[appearance.PlayerID], deadline)
		switch {
		case found:
			row.Status = string(latest.state)
			row.Chance = intPtr(latest.chance)
			row.Step = intPtr(latest.step)
			if backfilled {
				report.BackfilledStatuses++
			}
		default:
			report.MissingStatuses++
		}
		row.StatusType = statusTypeOf(row.Status)

		if statusRun == 0 || row.StatusType != prevStatusType {
			statusRun = 1
		} else {
			statusRun++
		}
		prevStatusType = row.StatusType
		if row.StatusType == 1 {
			row.St1Run = statusRun
		} else {
			row.St0Run = statusRun
		}
		if statusRun == 1 {
			if row.StatusType == 1 {
				row.StatusChange = 1
			} else {
				row.StatusChange = -1
			}
		}

		playerPoints = append(playerPoints, appearance.Points)
		rows = append(rows, row)
	}

	report.Rows = len(rows)
	return rows, report
}

func countGameweekTeams(teamMatches []match.TeamMatch) map[int]int {
	seen := make(map[teamGameweek]struct{})
	counts := make(map[int]int)
	for _, m := range teamMatches {
		key := teamGameweek{teamID: m.TeamID, gameweek: m.Gameweek}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		counts[m.Gameweek]++
	}
	return counts
}

type latestStatus struct {
	state  status.Availability
	chance int
	step   int
}

// latestStatusBefore returns the last status recorded before the given
// deadline's calendar date. When the player has history but none of it
// predates the deadline, the earliest change's prior values are returned
// with step 0, marking a backfill.
func latestStatusBefore(events []status.Event, deadline time.Time) (latestStatus, bool, bool) {
	var (
		best      latestStatus
		bestFound bool
	)
	for _, item := range events {
		if item.Date == nil || item.Step <= 0 {
			continue
		}
		if !calendarBefore(*item.Date, deadline) {
			continue
		}
		if !bestFound || item.Step > best.step {
			best = latestStatus{state: item.ResultState, chance: item.ResultChance, step: item.Step}
			bestFound = true
		}
	}
	if bestFound {
		return best, true, false
	}

	for _, item := range events {
		if item.Step == 1 {
			return latestStatus{state: item.PriorState, chance: item.PriorChance, step: 0}, true, true
		}
	}

	return latestStatus{}, false, false
}

func calendarBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}

func statusTypeOf(code string) int {
	if code == "" || code == string(status.AvailabilityAvailable) {
		return 1
	}
	return 0
}

func lagAt(history []int, offset int) *int {
	if offset > len(history) {
		return nil
	}
	return intPtr(history[len(history)-offset])
}

func diffOf(a, b *int) *int {
	if a == nil || b == nil {
		return nil
	}
	return intPtr(*a - *b)
}

func intPtr(v int) *int { return &v }
