package feature

import "context"

// Repository describes feature table persistence needs from use cases.
type Repository interface {
	ReplaceSeason(ctx context.Context, season int, rows []Row) error
}
