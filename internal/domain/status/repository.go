package status

import "context"

// Repository describes status timeline persistence needs from use cases.
// ReplaceSeason refreshes a season's rows wholesale; implementations must
// refuse a refresh that would shrink the table.
type Repository interface {
	ReplaceSeason(ctx context.Context, season int, events []Event) error
	ListBySeason(ctx context.Context, season int) ([]Event, error)
	CountBySeason(ctx context.Context, season int) (int, error)
}
