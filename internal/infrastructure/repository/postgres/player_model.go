package postgres

import "github.com/riskibarqy/fpl-pipeline/internal/domain/player"

type appearanceTableModel struct {
	Season         int    `db:"season"`
	PlayerID       int64  `db:"player_id"`
	PlayerName     string `db:"player_name"`
	Position       string `db:"position"`
	Gameweek       int    `db:"gw"`
	MatchID        int64  `db:"match_id"`
	GWMatch        int    `db:"gw_match"`
	TeamID         int64  `db:"team_id"`
	TeamName       string `db:"team_name"`
	OpponentTeamID int64  `db:"team_o_id"`
	OpponentName   string `db:"team_o_name"`
	Venue          string `db:"venue"`
	Points         int    `db:"points"`
	Minutes        int    `db:"minutes"`
	Goals          int    `db:"goals"`
	Assists        int    `db:"assists"`
	CleanSheets    int    `db:"clean_sheets"`
	GoalsConceded  int    `db:"goals_conceded"`
	Bonus          int    `db:"bonus"`
	Saves          int    `db:"saves"`
	CBI            int    `db:"cbi"`
	ShotsOffTarget int    `db:"shots_off_target"`
	YellowCards    int    `db:"yellow_cards"`
	RedCards       int    `db:"red_cards"`
}

func (m appearanceTableModel) toDomain() player.Appearance {
	return player.Appearance{
		PlayerID:         m.PlayerID,
		PlayerName:       m.PlayerName,
		Position:         player.Position(m.Position),
		Year:             m.Season,
		Gameweek:         m.Gameweek,
		MatchID:          m.MatchID,
		GWMatch:          m.GWMatch,
		TeamID:           m.TeamID,
		TeamName:         m.TeamName,
		OpponentTeamID:   m.OpponentTeamID,
		OpponentTeamName: m.OpponentName,
		Venue:            m.Venue,
		Points:           m.Points,
		Minutes:          m.Minutes,
		Goals:            m.Goals,
		Assists:          m.Assists,
		CleanSheets:      m.CleanSheets,
		GoalsConceded:    m.GoalsConceded,
		Bonus:            m.Bonus,
		Saves:            m.Saves,
		CBI:              m.CBI,
		ShotsOffTarget:   m.ShotsOffTarget,
		YellowCards:      m.YellowCards,
		RedCards:         m.RedCards,
	}
}

type seasonTotalTableModel struct {
	Season     int    `db:"season"`
	PlayerID   int64  `db:"player_id"`
	PlayerName string `db:"player_name"`
	PastSeason int    `db:"past_season"`
	Points     int    `db:"points"`
	Minutes    int    `db:"minutes"`
	Goals      int    `db:"goals"`
	Assists    int    `db:"assists"`
	Bonus      int    `db:"bonus"`
}
