package player

import "context"

// Repository describes player table persistence needs from use cases.
type Repository interface {
	ReplaceAppearances(ctx context.Context, season int, rows []Appearance) error
	ReplaceSeasonTotals(ctx context.Context, season int, rows []SeasonTotal) error
	ListAppearances(ctx context.Context, season int) ([]Appearance, error)
}
