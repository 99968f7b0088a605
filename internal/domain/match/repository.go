package match

import "context"

// Repository describes match table persistence needs from use cases.
type Repository interface {
	ReplaceSeason(ctx context.Context, season int, rows []TeamMatch) error
	ListBySeason(ctx context.Context, season int) ([]TeamMatch, error)
}
