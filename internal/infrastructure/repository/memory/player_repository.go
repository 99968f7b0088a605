package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/player"
)

type PlayerRepository struct {
	mu                  sync.RWMutex
	appearancesBySeason map[int][]player.Appearance
	totalsBySeason      map[int][]player.SeasonTotal
}

func NewPlayerRepository() *PlayerRepository {
	return &PlayerRepository{
		appearancesBySeason: make(map[int][]player.Appearance),
		totalsBySeason:      make(map[int][]player.SeasonTotal),
	}
}

func (r *PlayerRepository) ReplaceAppearances(_ context.Context, season int, rows []player.Appearance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]player.Appearance, len(rows))
	copy(out, rows)
	r.appearancesBySeason[season] = out

	return nil
}

func (r *PlayerRepository) ReplaceSeasonTotals(_ context.Context, season int, rows []player.SeasonTotal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]player.SeasonTotal, len(rows))
	copy(out, rows)
	r.totalsBySeason[season] = out

	return nil
}

func (r *PlayerRepository) ListAppearances(_ context.Context, season int) ([]player.Appearance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.appearancesBySeason[season]
	out := make([]player.Appearance, len(rows))
	copy(out, rows)

	return out, nil
}

// AppearancesBySeason is a test convenience around ListAppearances.
func (r *PlayerRepository) AppearancesBySeason(season int) []player.Appearance {
	rows, _ := r.ListAppearances(context.Background(), season)
	return rows
}

func (r *PlayerRepository) SeasonTotalsBySeason(season int) []player.SeasonTotal {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.totalsBySeason[season]
	out := make([]player.SeasonTotal, len(rows))
	copy(out, rows)

	return out
}
