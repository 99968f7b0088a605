package manager

import "context"

// Repository describes manager table persistence needs from use cases.
type Repository interface {
	ReplaceGameweeks(ctx context.Context, season int, rows []GameweekSummary) error
	ReplacePicks(ctx context.Context, season int, rows []Pick) error
	ReplaceH2HResults(ctx context.Context, season int, rows []H2HResult) error
}
