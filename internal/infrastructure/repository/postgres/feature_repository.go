package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/feature"
	qb "github.com/riskibarqy/fpl-pipeline/internal/platform/querybuilder"
)

const playerFeaturesTable = "player_features"

var playerFeatureColumns = []string{
	"season", "player_id", "player_name", "gw", "match_id", "points",
	"points_lag1_ft", "points_lag2_ft", "points_lag3_ft", "points_diff1_ft", "points_diff2_ft",
	"venue_home_ft", "venue_away_ft", "position_ft", "double_gw_ft", "gw_teams_ft",
	"status", "prob", "step", "status_type", "st1_run_ft", "st0_run_ft", "st_change_ft",
}

type FeatureRepository struct {
	db *sqlx.DB
}

func NewFeatureRepository(db *sqlx.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

func (r *FeatureRepository) ReplaceSeason(ctx context.Context, season int, rows []feature.Row) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace player features: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, playerFeaturesTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, playerFeaturesTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(playerFeaturesTable).Columns(playerFeatureColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.PlayerID, row.PlayerName, row.Gameweek, row.MatchID, row.Points,
				row.PointsLag1, row.PointsLag2, row.PointsLag3, row.PointsDiff1, row.PointsDiff2,
				row.VenueHome, row.VenueAway, row.PositionOrdinal, row.DoubleGW, row.GWTeams,
				nullableFeatureStatus(row.Status), row.Chance, row.Step, row.StatusType,
				row.St1Run, row.St0Run, row.StatusChange,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert player features query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert player features season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace player features tx: %w", err)
	}

	return nil
}

func nullableFeatureStatus(value string) any {
	if value == "" {
		return nil
	}
	return value
}
