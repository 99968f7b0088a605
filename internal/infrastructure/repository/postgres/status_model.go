package postgres

import (
	"database/sql"
	"time"

	"github.com/riskibarqy/fpl-pipeline/internal/domain/status"
)

type statusEventTableModel struct {
	Season     int            `db:"season"`
	PlayerID   int64          `db:"player_id"`
	PlayerName string         `db:"player_name"`
	News       string         `db:"news"`
	RawDate    string         `db:"raw_date"`
	StatusDate *time.Time     `db:"status_date"`
	OldStatus  sql.NullString `db:"old_status"`
	NewStatus  sql.NullString `db:"new_status"`
	OldProb    sql.NullInt64  `db:"old_prob"`
	NewProb    sql.NullInt64  `db:"new_prob"`
	Step       int            `db:"step"`
}

func (m statusEventTableModel) toDomain() status.Event {
	event := status.Event{
		PlayerID:   m.PlayerID,
		PlayerName: m.PlayerName,
		News:       m.News,
		RawDate:    m.RawDate,
		Date:       m.StatusDate,
		Step:       m.Step,
	}
	if m.OldStatus.Valid && m.NewStatus.Valid {
		event.PriorState = status.Availability(m.OldStatus.String)
		event.ResultState = status.Availability(m.NewStatus.String)
		event.StateKnown = true
	}
	if m.OldProb.Valid && m.NewProb.Valid {
		event.PriorChance = int(m.OldProb.Int64)
		event.ResultChance = int(m.NewProb.Int64)
		event.ChanceKnown = true
	}
	return event
}

func statusEventToModel(season int, event status.Event) statusEventTableModel {
	model := statusEventTableModel{
		Season:     season,
		PlayerID:   event.PlayerID,
		PlayerName: event.PlayerName,
		News:       event.News,
		RawDate:    event.RawDate,
		StatusDate: event.Date,
		Step:       event.Step,
	}
	if event.StateKnown {
		model.OldStatus = sql.NullString{String: string(event.PriorState), Valid: true}
		model.NewStatus = sql.NullString{String: string(event.ResultState), Valid: true}
	}
	if event.ChanceKnown {
		model.OldProb = sql.NullInt64{Int64: int64(event.PriorChance), Valid: true}
		model.NewProb = sql.NullInt64{Int64: int64(event.ResultChance), Valid: true}
	}
	return model
}
