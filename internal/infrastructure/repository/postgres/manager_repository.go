package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/manager"
	qb "github.com/riskibarqy/fpl-pipeline/internal/platform/querybuilder"
)

const (
	managerGameweeksTable = "manager_gameweeks"
	managerPicksTable     = "manager_picks"
	h2hResultsTable       = "h2h_results"
)

var managerGameweekColumns = []string{
	"season", "manager_id", "manager_name", "gw", "points", "total_points", "overall_rank",
	"transfers", "transfers_cost", "bank_value", "team_value", "bench_points", "chip",
}

var managerPickColumns = []string{
	"season", "manager_id", "gw", "player_id", "slot", "multiplier", "is_captain", "is_vice_captain",
}

var h2hResultColumns = []string{
	"season", "league_id", "gw", "manager_name", "opponent_name",
	"points", "points_o", "h2h_points", "result", "running_total",
}

type ManagerRepository struct {
	db *sqlx.DB
}

func NewManagerRepository(db *sqlx.DB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

func (r *ManagerRepository) ReplaceGameweeks(ctx context.Context, season int, rows []manager.GameweekSummary) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace manager gameweeks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, managerGameweeksTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, managerGameweeksTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(managerGameweeksTable).Columns(managerGameweekColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.ManagerID, row.ManagerName, row.Gameweek, row.Points, row.TotalPoints, row.Rank,
				row.Transfers, row.TransfersCost, row.BankValue, row.TeamValue, row.BenchPoints, row.Chip,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert manager gameweeks query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert manager gameweeks season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace manager gameweeks tx: %w", err)
	}

	return nil
}

func (r *ManagerRepository) ReplacePicks(ctx context.Context, season int, rows []manager.Pick) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace manager picks: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, managerPicksTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, managerPicksTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(managerPicksTable).Columns(managerPickColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.ManagerID, row.Gameweek, row.PlayerID, row.Slot,
				row.Multiplier, row.IsCaptain, row.IsViceCaptain,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert manager picks query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert manager picks season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace manager picks tx: %w", err)
	}

	return nil
}

func (r *ManagerRepository) ReplaceH2HResults(ctx context.Context, season int, rows []manager.H2HResult) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace h2h results: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, h2hResultsTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, h2hResultsTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(h2hResultsTable).Columns(h2hResultColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.LeagueID, row.Gameweek, row.ManagerName, row.OpponentName,
				row.Points, row.OpponentPoints, row.H2HPoints, row.Result, row.RunningTotal,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert h2h results query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert h2h results season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace h2h results tx: %w", err)
	}

	return nil
}
