package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/match"
)

type MatchRepository struct {
	mu              sync.RWMutex
	matchesBySeason map[int][]match.TeamMatch
}

func NewMatchRepository() *MatchRepository {
	return &MatchRepository{matchesBySeason: make(map[int][]match.TeamMatch)}
}

func (r *MatchRepository) ReplaceSeason(_ context.Context, season int, rows []match.TeamMatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]match.TeamMatch, len(rows))
	copy(out, rows)
	r.matchesBySeason[season] = out

	return nil
}

func (r *MatchRepository) ListBySeason(_ context.Context, season int) ([]match.TeamMatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.matchesBySeason[season]
	out := make([]match.TeamMatch, len(rows))
	copy(out, rows)

	return out, nil
}

// MatchesBySeason is a test convenience around ListBySeason.
func (r *MatchRepository) MatchesBySeason(season int) []match.TeamMatch {
	rows, _ := r.ListBySeason(context.Background(), season)
	return rows
}
