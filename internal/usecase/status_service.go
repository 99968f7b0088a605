package usecase

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

// StatusService rebuilds per-player status timelines from the raw feed:
// resolve dates, rank them into steps, reconcile duplicated steps against
// the transition-continuity rule, then export the validated rows.
type StatusService struct {
	provider StatusProvider
	repo     status.Repository
	logger   *logging.Logger
	validate *validator.Validate
}

func NewStatusService(provider StatusProvider, repo status.Repository, logger *logging.Logger) *StatusService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatusService{
		provider: provider,
		repo:     repo,
		logger:   logger,
		validate: validator.New(),
	}
}

type StatusRunInput struct {
	// Season is the start year of the season the feed covers; it anchors
	// the year-less feed dates.
	Season     int  `validate:"required,gte=1992,lte=2100"`
	MaxWorkers int  `validate:"gte=0,lte=128"`
	DryRun     bool
}

type StatusRunReport struct {
	PlayerCount      int             `json:"player_count"`
	ReconciledCount  int             `json:"reconciled_count"`
	FailedCount      int             `json:"failed_count"`
	EventCount       int             `json:"event_count"`
	ExportedCount    int             `json:"exported_count"`
	UnresolvedDates  int             `json:"unresolved_dates"`
	MalformedSplits  int             `json:"malformed_splits"`
	WorkerCount      int             `json:"worker_count"`
	Failures         []StatusFailure `json:"failures,omitempty"`
}

// StatusFailure identifies one player whose timeline could not be
// reconciled; those players are withheld from export.
type StatusFailure struct {
	PlayerID int64  `json:"player_id"`
	Step     int    `json:"step"`
	Message  string `json:"message"`
}

type playerTimelineResult struct {
	playerID        int64
	events          []status.Event
	unresolvedDates int
	failure         *StatusFailure
}

func (s *StatusService) Run(ctx context.Context, input StatusRunInput) (StatusRunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatusService.Run")
	defer span.End()

	if s.provider == nil || s.repo == nil {
		return StatusRunReport{}, fmt.Errorf("%w: status pipeline is not fully configured", ErrDependencyUnavailable)
	}
	if err := s.validate.Struct(input); err != nil {
		return StatusRunReport{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	records, err := s.provider.FetchStatusChanges(ctx)
	if err != nil {
		return StatusRunReport{}, fmt.Errorf("fetch status changes: %w", err)
	}

	events, malformedSplits := parseStatusRecords(records)

	grouped := make(map[int64][]status.Event)
	for _, item := range events {
		grouped[item.PlayerID] = append(grouped[item.PlayerID], item)
	}

	report := StatusRunReport{
		PlayerCount:     len(grouped),
		EventCount:      len(events),
		MalformedSplits: malformedSplits,
	}
	if len(grouped) == 0 {
		return report, nil
	}

	workerCount := normalizeWorkerCount(input.MaxWorkers, len(grouped))
	report.WorkerCount = workerCount

	results := make(chan playerTimelineResult, len(grouped))
	var unresolvedDates atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return StatusRunReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for playerID, playerEvents := range grouped {
		playerID := playerID
		playerEvents := playerEvents
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			result := reconcilePlayerTimeline(playerID, playerEvents, input.Season)
			unresolvedDates.Add(int32(result.unresolvedDates))
			results <- result
		}); err != nil {
			workers.Done()
			return StatusRunReport{}, fmt.Errorf("submit player timeline to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	exportable := make([]status.Event, 0, len(events))
	for result := range results {
		if result.failure != nil {
			report.FailedCount++
			report.Failures = append(report.Failures, *result.failure)
			continue
		}
		report.ReconciledCount++
		exportable = append(exportable, result.events...)
	}
	report.UnresolvedDates = int(unresolvedDates.Load())

	sort.SliceStable(report.Failures, func(i, j int) bool {
		return report.Failures[i].PlayerID < report.Failures[j].PlayerID
	})
	sortTimelineForExport(exportable)
	report.ExportedCount = len(exportable)

	if !input.DryRun && len(exportable) > 0 {
		if err := s.repo.ReplaceSeason(ctx, input.Season, exportable); err != nil {
			return StatusRunReport{}, fmt.Errorf("export status timeline: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "status timeline run finished",
		"season", input.Season,
		"players", report.PlayerCount,
		"reconciled", report.ReconciledCount,
		"failed", report.FailedCount,
		"events", report.EventCount,
		"unresolved_dates", report.UnresolvedDates,
		"malformed_splits", report.MalformedSplits,
		"dry_run", input.DryRun,
	)

	return report, nil
}

// reconcilePlayerTimeline runs one player's events through the whole
// sequence: date resolution, step ranking, duplicate-step reconciliation
// and the final uniqueness check. Players are independent, so this is the
// unit of work handed to the pool.
func reconcilePlayerTimeline(playerID int64, events []status.Event, season int) playerTimelineResult {
	result := playerTimelineResult{playerID: playerID}

	resolved := make([]status.Event, len(events))
	copy(resolved, events)
	for i := range resolved {
		if date, ok := status.ResolveDate(resolved[i].RawDate, season); ok {
			resolved[i].Date = &date
		} else {
			resolved[i].Date = nil
			result.unresolvedDates++
		}
	}

	ranked := status.AssignSteps(resolved)

	reconciled, err := status.ReconcileSteps(playerID, ranked)
	if err == nil {
		err = status.ValidateTimeline(playerID, reconciled)
	}
	if err != nil {
		failure := StatusFailure{PlayerID: playerID, Message: err.Error()}
		var dup *status.DuplicateStepError
		if errors.As(err, &dup) {
			failure.Step = dup.Step
		}
		result.failure = &failure
		return result
	}

	result.events = reconciled
	return result
}

// parseStatusRecords splits the feed's combined transition strings into
// explicit fields. Malformed splits leave the field absent and count as an
// anomaly; they never abort the run.
func parseStatusRecords(records []RawStatusRecord) ([]status.Event, int) {
	events := make([]status.Event, 0, len(records))
	malformed := 0

	for _, record := range records {
		if record.PlayerID <= 0 {
			malformed++
			continue
		}

		item := status.Event{
			PlayerID:   record.PlayerID,
			PlayerName: strings.ToLower(strings.TrimSpace(record.PlayerName)),
			News:       strings.ToLower(strings.TrimSpace(record.News)),
			RawDate:    strings.TrimSpace(record.RawDate),
		}

		if oldState, newState, ok := status.SplitTransition(strings.ToLower(record.Status)); ok {
			item.PriorState = status.Availability(oldState)
			item.ResultState = status.Availability(newState)
			item.StateKnown = true
		} else {
			malformed++
		}

		if oldChance, newChance, ok := status.SplitTransition(record.Probability); ok {
			prior, errPrior := strconv.Atoi(oldChance)
			result, errResult := strconv.Atoi(newChance)
			if errPrior == nil && errResult == nil {
				item.PriorChance = prior
				item.ResultChance = result
				item.ChanceKnown = true
			} else {
				malformed++
			}
		} else {
			malformed++
		}

		events = append(events, item)
	}

	return events, malformed
}

// sortTimelineForExport orders the flat export by player then step, with
// step-less (date-unresolved) events trailing their player's timeline.
func sortTimelineForExport(events []status.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].PlayerID != events[j].PlayerID {
			return events[i].PlayerID < events[j].PlayerID
		}
		if (events[i].Step > 0) != (events[j].Step > 0) {
			return events[i].Step > 0
		}
		return events[i].Step < events[j].Step
	})
}

func normalizeWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = runtime.NumCPU()
	}
	if count > taskCount {
		count = taskCount
	}
	if count < 1 {
		count = 1
	}
	return count
}
