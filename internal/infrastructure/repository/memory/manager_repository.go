package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/manager"
)

type ManagerRepository struct {
	mu                sync.RWMutex
	gameweeksBySeason map[int][]manager.GameweekSummary
	picksBySeason     map[int][]manager.Pick
	h2hBySeason       map[int][]manager.H2HResult
}

func NewManagerRepository() *ManagerRepository {
	return &ManagerRepository{
		gameweeksBySeason: make(map[int][]manager.GameweekSummary),
		picksBySeason:     make(map[int][]manager.Pick),
		h2hBySeason:       make(map[int][]manager.H2HResult),
	}
}

func (r *ManagerRepository) ReplaceGameweeks(_ context.Context, season int, rows []manager.GameweekSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]manager.GameweekSummary, len(rows))
	copy(out, rows)
	r.gameweeksBySeason[season] = out

	return nil
}

func (r *ManagerRepository) ReplacePicks(_ context.Context, season int, rows []manager.Pick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]manager.Pick, len(rows))
	copy(out, rows)
	r.picksBySeason[season] = out

	return nil
}

func (r *ManagerRepository) ReplaceH2HResults(_ context.Context, season int, rows []manager.H2HResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]manager.H2HResult, len(rows))
	copy(out, rows)
	r.h2hBySeason[season] = out

	return nil
}

func (r *ManagerRepository) GameweeksBySeason(season int) []manager.GameweekSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.gameweeksBySeason[season]
	out := make([]manager.GameweekSummary, len(rows))
	copy(out, rows)

	return out
}

func (r *ManagerRepository) PicksBySeason(season int) []manager.Pick {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.picksBySeason[season]
	out := make([]manager.Pick, len(rows))
	copy(out, rows)

	return out
}

func (r *ManagerRepository) H2HResultsBySeason(season int) []manager.H2HResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.h2hBySeason[season]
	out := make([]manager.H2HResult, len(rows))
	copy(out, rows)

	return out
}
