package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/feature"
)

type FeatureRepository struct {
	mu           sync.RWMutex
	rowsBySeason map[int][]feature.Row
}

func NewFeatureRepository() *FeatureRepository {
	return &FeatureRepository{rowsBySeason: make(map[int][]feature.Row)}
}

func (r *FeatureRepository) ReplaceSeason(_ context.Context, season int, rows []feature.Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]feature.Row, len(rows))
	copy(out, rows)
	r.rowsBySeason[season] = out

	return nil
}

func (r *FeatureRepository) RowsBySeason(season int) []feature.Row {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.rowsBySeason[season]
	out := make([]feature.Row, len(rows))
	copy(out, rows)

	return out
}
