package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/match"
	qb "github.com/riskibarqy/fpl-pipeline/internal/platform/querybuilder"
)

const teamMatchesTable = "team_matches"

var teamMatchColumns = []string{
	"season", "match_id", "gw", "team_id", "team_name", "team_o_id", "team_o_name",
	"venue", "score", "score_o", "result", "kickoff_at", "deadline_at",
}

type teamMatchTableModel struct {
	Season         int       `db:"season"`
	MatchID        int64     `db:"match_id"`
	Gameweek       int       `db:"gw"`
	TeamID         int64     `db:"team_id"`
	TeamName       string    `db:"team_name"`
	OpponentTeamID int64     `db:"team_o_id"`
	OpponentName   string    `db:"team_o_name"`
	Venue          string    `db:"venue"`
	Score          int       `db:"score"`
	OpponentScore  int       `db:"score_o"`
	Result         string    `db:"result"`
	KickoffAt      time.Time `db:"kickoff_at"`
	DeadlineAt     time.Time `db:"deadline_at"`
}

func (m teamMatchTableModel) toDomain() match.TeamMatch {
	return match.TeamMatch{
		MatchID:          m.MatchID,
		Gameweek:         m.Gameweek,
		Year:             m.Season,
		TeamID:           m.TeamID,
		TeamName:         m.TeamName,
		OpponentTeamID:   m.OpponentTeamID,
		OpponentTeamName: m.OpponentName,
		Venue:            m.Venue,
		Score:            m.Score,
		OpponentScore:    m.OpponentScore,
		Result:           m.Result,
		KickoffAt:        m.KickoffAt,
		DeadlineAt:       m.DeadlineAt,
	}
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ReplaceSeason(ctx context.Context, season int, rows []match.TeamMatch) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace team matches: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := ensureSeasonNotShrinking(ctx, tx, teamMatchesTable, season, len(rows)); err != nil {
		return err
	}
	if err := deleteSeason(ctx, tx, teamMatchesTable, season); err != nil {
		return err
	}

	for start := 0; start < len(rows); start = chunkEnd(start, len(rows)) {
		chunk := rows[start:chunkEnd(start, len(rows))]
		builder := qb.InsertInto(teamMatchesTable).Columns(teamMatchColumns...)
		for _, row := range chunk {
			builder.Row(
				season, row.MatchID, row.Gameweek, row.TeamID, row.TeamName, row.OpponentTeamID, row.OpponentTeamName,
				row.Venue, row.Score, row.OpponentScore, row.Result, row.KickoffAt, row.DeadlineAt,
			)
		}
		query, args, err := builder.ToSQL()
		if err != nil {
			return fmt.Errorf("build insert team matches query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert team matches season=%d: %w", season, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace team matches tx: %w", err)
	}

	return nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, season int) ([]match.TeamMatch, error) {
	query, args, err := qb.Select(teamMatchColumns...).From(teamMatchesTable).
		Where(qb.Eq("season", season)).
		OrderBy("gw", "match_id", "venue").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team matches query: %w", err)
	}

	var rows []teamMatchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team matches season=%d: %w", season, err)
	}

	out := make([]match.TeamMatch, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
