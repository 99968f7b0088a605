package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/player"
	qb "github.com/riskibarqy/fpl-pipeline/internal/platform/querybuilder"
)

const (
	appearancesTable  = "player_appearances"
	seasonTotalsTable = "player_season_totals"
)

var appearanceColumns = []string{
	"season", "player_id", "player_name", "position", "gw", "match_id", "gw_match",
	"team_id", "team_name", "team_o_id", "team_o_name", "venue",
	"points", "minutes", "goals", "assists", "clean_sheets", "goals_conceded",
	"bonus", "saves", "cbi", "shots_off_target", "yellow_cards", "red_cards",
}

var seasonTotalColumns = []string{
	"season", "player_id", "player_name", "past_season",
	"points", "minutes", "goals", "assists", "bonus",
}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ReplaceAppearances(ctx context.Context, season int, rows []player.Appearance) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace appearances: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, appearancesTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, appearancesTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(appearancesTable).Columns(appearanceColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.PlayerID, row.PlayerName, string(row.Position), row.Gameweek, row.MatchID, row.GWMatch,
				row.TeamID, row.TeamName, row.OpponentTeamID, row.OpponentTeamName, row.Venue,
				row.Points, row.Minutes, row.Goals, row.Assists, row.CleanSheets, row.GoalsConceded,
				row.Bonus, row.Saves, row.CBI, row.ShotsOffTarget, row.YellowCards, row.RedCards,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert appearances query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert appearances season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace appearances tx: %w", err)
	}

	return nil
}

func (r *PlayerRepository) ReplaceSeasonTotals(ctx context.Context, season int, rows []player.SeasonTotal) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace season totals: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, seasonTotalsTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, seasonTotalsTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(seasonTotalsTable).Columns(seasonTotalColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.PlayerID, row.PlayerName, row.Season,
				row.Points, row.Minutes, row.Goals, row.Assists, row.Bonus,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert season totals query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert season totals season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace season totals tx: %w", err)
	}

	return nil
}

func (r *PlayerRepository) ListAppearances(ctx context.Context, season int) ([]player.Appearance, error) {
	query, args, err := qb.Select(appearanceColumns...).From(appearancesTable).
		Where(qb.Eq("season", season)).
		OrderBy("player_id", "gw", "match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select appearances query: %w", err)
	}

	var rows []appearanceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select appearances season=%d: %w", season, err)
	}

	out := make([]player.Appearance, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
