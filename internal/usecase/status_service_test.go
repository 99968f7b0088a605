package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
	"github.com/riskibarqy/fpl-pipeline/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/fpl-pipeline/internal/platform/logging"
)

type fakeStatusProvider struct {
	records []RawStatusRecord
	err     error
}

func (p *fakeStatusProvider) FetchStatusChanges(_ context.Context) ([]RawStatusRecord, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.records, nil
}

func TestStatusServiceRun_BuildsAndExportsTimelines(t *testing.T) {
	provider := &fakeStatusProvider{records: []RawStatusRecord{
		{PlayerID: 10, PlayerName: "Mohamed Salah", RawDate: "15 Aug", Status: "A to D", Probability: "100 to 75", News: "Knock"},
		{PlayerID: 10, PlayerName: "Mohamed Salah", RawDate: "22 Aug", Status: "D to A", Probability: "75 to 100"},
		{PlayerID: 10, PlayerName: "Mohamed Salah", RawDate: "10 Mar", Status: "A to I", Probability: "100 to 0"},
		{PlayerID: 4, PlayerName: "Kevin De Bruyne", RawDate: "not a date", Status: "A to D", Probability: "100 to 50"},
	}}
	repo := memory.NewStatusRepository()
	service := NewStatusService(provider, repo, logging.NewNop())

	report, err := service.Run(context.Background(), StatusRunInput{Season: 2020, MaxWorkers: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.PlayerCount != 2 {
		t.Fatalf("expected 2 players, got %d", report.PlayerCount)
	}
	if report.ReconciledCount != 2 || report.FailedCount != 0 {
		t.Fatalf("expected 2 reconciled and 0 failed, got %d and %d", report.ReconciledCount, report.FailedCount)
	}
	if report.UnresolvedDates != 1 {
		t.Fatalf("expected 1 unresolved date, got %d", report.UnresolvedDates)
	}
	if report.ExportedCount != 4 {
		t.Fatalf("expected 4 exported events, got %d", report.ExportedCount)
	}

	stored := repo.EventsBySeason(2020)
	if len(stored) != 4 {
		t.Fatalf("expected 4 stored events, got %d", len(stored))
	}

	var salah []status.Event
	for _, item := range stored {
		if item.PlayerID == 10 {
			salah = append(salah, item)
		}
	}
	if len(salah) != 3 {
		t.Fatalf("expected 3 events for player 10, got %d", len(salah))
	}
	for i, want := range []struct {
		step int
		raw  string
	}{{1, "15 Aug"}, {2, "22 Aug"}, {3, "10 Mar"}} {
		if salah[i].Step != want.step || salah[i].RawDate != want.raw {
			t.Fatalf("event %d: expected step %d for %q, got step %d for %q",
				i, want.step, want.raw, salah[i].Step, salah[i].RawDate)
		}
	}
	if salah[0].PlayerName != "mohamed salah" {
		t.Fatalf("expected lowercased player name, got %q", salah[0].PlayerName)
	}
	if !salah[0].StateKnown || salah[0].PriorState != status.AvailabilityAvailable || salah[0].ResultState != status.AvailabilityDoubtful {
		t.Fatalf("unexpected first transition: %+v", salah[0])
	}
	if salah[0].Date == nil || salah[0].Date.Year() != 2020 {
		t.Fatalf("expected August date in 2020, got %v", salah[0].Date)
	}
	if salah[2].Date == nil || salah[2].Date.Year() != 2021 {
		t.Fatalf("expected March date in 2021, got %v", salah[2].Date)
	}

	for _, item := range stored {
		if item.PlayerID == 4 && item.Step != 0 {
			t.Fatalf("date-less event should carry step 0, got %d", item.Step)
		}
	}
}

func TestStatusServiceRun_IsolatesUnreconcilablePlayers(t *testing.T) {
	// Player 7's two same-day transitions contradict each other in both
	// orders, so only player 3 should reach the export.
	provider := &fakeStatusProvider{records: []RawStatusRecord{
		{PlayerID: 7, PlayerName: "Harry Kane", RawDate: "5 Sep", Status: "a to d", Probability: "100 to 75"},
		{PlayerID: 7, PlayerName: "Harry Kane", RawDate: "5 Sep", Status: "i to s", Probability: "0 to 0"},
		{PlayerID: 3, PlayerName: "Jack Grealish", RawDate: "5 Sep", Status: "a to i", Probability: "100 to 0"},
	}}
	repo := memory.NewStatusRepository()
	service := NewStatusService(provider, repo, logging.NewNop())

	report, err := service.Run(context.Background(), StatusRunInput{Season: 2020})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.ReconciledCount != 1 || report.FailedCount != 1 {
		t.Fatalf("expected 1 reconciled and 1 failed, got %d and %d", report.ReconciledCount, report.FailedCount)
	}
	if len(report.Failures) != 1 {
		t.Fatalf("expected 1 failure entry, got %d", len(report.Failures))
	}
	failure := report.Failures[0]
	if failure.PlayerID != 7 || failure.Step != 1 {
		t.Fatalf("unexpected failure %+v", failure)
	}
	if failure.Message == "" {
		t.Fatal("expected a diagnostic failure message")
	}

	stored := repo.EventsBySeason(2020)
	if len(stored) != 1 || stored[0].PlayerID != 3 {
		t.Fatalf("expected only player 3 exported, got %+v", stored)
	}
}

func TestStatusServiceRun_CountsMalformedFields(t *testing.T) {
	provider := &fakeStatusProvider{records: []RawStatusRecord{
		{PlayerID: 9, PlayerName: "Test Player", RawDate: "1 Oct", Status: "suspended", Probability: "100 to 75"},
		{PlayerID: 9, PlayerName: "Test Player", RawDate: "8 Oct", Status: "a to d", Probability: "n/a"},
		{PlayerID: 0, PlayerName: "Ghost", RawDate: "8 Oct", Status: "a to d", Probability: "100 to 75"},
	}}
	repo := memory.NewStatusRepository()
	service := NewStatusService(provider, repo, logging.NewNop())

	report, err := service.Run(context.Background(), StatusRunInput{Season: 2020})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.MalformedSplits != 3 {
		t.Fatalf("expected 3 malformed fields, got %d", report.MalformedSplits)
	}
	if report.EventCount != 2 {
		t.Fatalf("expected 2 parsed events, got %d", report.EventCount)
	}
	if report.FailedCount != 0 {
		t.Fatalf("malformed fields must not fail the player, got %d failures", report.FailedCount)
	}

	stored := repo.EventsBySeason(2020)
	if len(stored) != 2 {
		t.Fatalf("expected 2 stored events, got %d", len(stored))
	}
	if stored[0].StateKnown {
		t.Fatalf("unsplittable status should stay unknown: %+v", stored[0])
	}
	if stored[1].ChanceKnown {
		t.Fatalf("unsplittable probability should stay unknown: %+v", stored[1])
	}
}

func TestStatusServiceRun_DryRunSkipsExport(t *testing.T) {
	provider := &fakeStatusProvider{records: []RawStatusRecord{
		{PlayerID: 1, PlayerName: "A", RawDate: "1 Oct", Status: "a to d", Probability: "100 to 75"},
	}}
	repo := memory.NewStatusRepository()
	service := NewStatusService(provider, repo, logging.NewNop())

	report, err := service.Run(context.Background(), StatusRunInput{Season: 2020, DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.ExportedCount != 1 {
		t.Fatalf("dry run should still report exportable rows, got %d", report.ExportedCount)
	}
	if stored := repo.EventsBySeason(2020); len(stored) != 0 {
		t.Fatalf("dry run must not write, got %d rows", len(stored))
	}
}

func TestStatusServiceRun_RejectsInvalidInput(t *testing.T) {
	service := NewStatusService(&fakeStatusProvider{}, memory.NewStatusRepository(), logging.NewNop())

	_, err := service.Run(context.Background(), StatusRunInput{Season: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestStatusServiceRun_ProviderFailure(t *testing.T) {
	provider := &fakeStatusProvider{err: errors.New("feed unreachable")}
	service := NewStatusService(provider, memory.NewStatusRepository(), logging.NewNop())

	_, err := service.Run(context.Background(), StatusRunInput{Season: 2020})
	if err == nil {
		t.Fatal("expected an error when the feed fetch fails")
	}
}
