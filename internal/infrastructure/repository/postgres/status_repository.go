package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
	qb "github.com/riskibarqy/fpl-pipeline/internal/platform/querybuilder"
)

const statusEventsTable = "status_events"

var statusEventColumns = []string{
	"season", "player_id", "player_name", "news", "raw_date",
	"status_date", "old_status", "new_status", "old_prob", "new_prob", "step",
}

type StatusRepository struct {
	db *sqlx.DB
}

func NewStatusRepository(db *sqlx.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

func (r *StatusRepository) ReplaceSeason(ctx context.Context, season int, events []status.Event) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace status events: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, statusEventsTable, season, len(events)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, statusEventsTable, season); err != nil {
		return err
	}

	for start := 0; start < len(events); start = chunkEnd(start, len(events)) {
		chunk := events[start:chunkEnd(start, len(events))]
		builder := qb.InsertInto(statusEventsTable).Columns(statusEventColumns...)
		for _, event := range chunk {
			model := statusEventToModel(season, event)
			builder.Row(
				model.Season, model.PlayerID, model.PlayerName, model.News, model.RawDate,
				model.StatusDate, model.OldStatus, model.NewStatus, model.OldProb, model.NewProb, model.Step,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert status events query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert status events season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace status events tx: %w", err)
	}

	return nil
}

func (r *StatusRepository) ListBySeason(ctx context.Context, season int) ([]status.Event, error) {
	query, args, err := qb.Select(statusEventColumns...).From(statusEventsTable).
		Where(qb.Eq("season", season)).
		OrderBy("player_id", "step", "raw_date").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select status events query: %w", err)
	}

	var rows []statusEventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select status events season=%d: %w", season, err)
	}

	out := make([]status.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *StatusRepository) CountBySeason(ctx context.Context, season int) (int, error) {
	return countSeason(ctx, r.db, statusEventsTable, season)
}
