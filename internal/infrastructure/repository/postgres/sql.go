package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	qb "github.com/riskibarqy/fpl-pipeline/internal/platform/querybuilder"
)

// insertChunkSize keeps multi-row inserts well under the positional
// parameter limit even for the widest table.
const insertChunkSize = 400

// ensureSeasonNotShrinking guards every season refresh: replacing a
// season's rows with fewer rows than are already stored points at a broken
// upstream fetch, so the refresh is refused.
func ensureSeasonNotShrinking(ctx context.Context, tx *sqlx.Tx, table string, season, incoming int) error {
	query, args, err := qb.Select("COUNT(*)").From(table).Where(qb.Eq("season", season)).ToSQL()
	if err != nil {
		return fmt.Errorf("build count %s query: %w", table, err)
	}

	var existing int
	if err := tx.GetContext(ctx, &existing, query, args...); err != nil {
		return fmt.Errorf("count %s season=%d: %w", table, season, err)
	}
	if incoming < existing {
		return fmt.Errorf("refuse %s season=%d refresh: %d incoming rows would shrink %d stored rows", table, season, incoming, existing)
	}

	return nil
}

func deleteSeason(ctx context.Context, tx *sqlx.Tx, table string, season int) error {
	query, args, err := qb.DeleteFrom(table).Where(qb.Eq("season", season)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete %s query: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %s season=%d: %w", table, season, err)
	}
	return nil
}

func countSeason(ctx context.Context, db *sqlx.DB, table string, season int) (int, error) {
	query, args, err := qb.Select("COUNT(*)").From(table).Where(qb.Eq("season", season)).ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count %s query: %w", table, err)
	}

	var count int
	if err := db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count %s season=%d: %w", table, season, err)
	}
	return count, nil
}

func chunkEnd(start, total int) int {
	end := start + insertChunkSize
	if end > total {
		end = total
	}
	return end
}
