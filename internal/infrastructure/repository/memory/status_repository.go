package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
)

type StatusRepository struct {
	mu             sync.RWMutex
	eventsBySeason map[int][]status.Event
}

func NewStatusRepository() *StatusRepository {
	return &StatusRepository{eventsBySeason: make(map[int][]status.Event)}
}

func (r *StatusRepository) ReplaceSeason(_ context.Context, season int, events []status.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := make([]status.Event, len(events))
	copy(rows, events)
	r.eventsBySeason[season] = rows

	return nil
}

func (r *StatusRepository) ListBySeason(_ context.Context, season int) ([]status.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.eventsBySeason[season]
	out := make([]status.Event, len(rows))
	copy(out, rows)

	return out, nil
}

func (r *StatusRepository) CountBySeason(_ context.Context, season int) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.eventsBySeason[season]), nil
}

// EventsBySeason is a test convenience around ListBySeason.
func (r *StatusRepository) EventsBySeason(season int) []status.Event {
	rows, _ := r.ListBySeason(context.Background(), season)
	return rows
}
