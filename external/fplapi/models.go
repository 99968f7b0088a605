package fplapi

// Wire shapes for the fantasy game API. Only the fields the pipeline
// flattens are declared; everything else in the payloads is ignored.

type bootstrapEnvelope struct {
	Events       []bootstrapEvent    `json:"events"`
	Teams        []bootstrapTeam     `json:"teams"`
	Elements     []bootstrapElement  `json:"elements"`
	ElementTypes []bootstrapElemType `json:"element_types"`
}

type bootstrapEvent struct {
	ID           int    `json:"id"`
	DeadlineTime string `json:"deadline_time"`
	Finished     bool   `json:"finished"`
}

type bootstrapTeam struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type bootstrapElement struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"first_name"`
	SecondName  string `json:"second_name"`
	ElementType int    `json:"element_type"`
	Team        int64  `json:"team"`
}

type bootstrapElemType struct {
	ID           int    `json:"id"`
	SingularName string `json:"singular_name"`
}

type fixtureRow struct {
	ID          int64  `json:"id"`
	Event       int    `json:"event"`
	TeamH       int64  `json:"team_h"`
	TeamA       int64  `json:"team_a"`
	TeamHScore  *int   `json:"team_h_score"`
	TeamAScore  *int   `json:"team_a_score"`
	KickoffTime string `json:"kickoff_time"`
}

type elementSummaryEnvelope struct {
	History     []elementHistoryRow `json:"history"`
	HistoryPast []elementPastRow    `json:"history_past"`
}

type elementHistoryRow struct {
	Fixture        int64 `json:"fixture"`
	Round          int   `json:"round"`
	OpponentTeam   int64 `json:"opponent_team"`
	WasHome        bool  `json:"was_home"`
	TotalPoints    int   `json:"total_points"`
	Minutes        int   `json:"minutes"`
	GoalsScored    int   `json:"goals_scored"`
	Assists        int   `json:"assists"`
	CleanSheets    int   `json:"clean_sheets"`
	GoalsConceded  int   `json:"goals_conceded"`
	Bonus          int   `json:"bonus"`
	Saves          int   `json:"saves"`
	CBI            int   `json:"clearances_blocks_interceptions"`
	ShotsOffTarget int   `json:"shots_off_target"`
	YellowCards    int   `json:"yellow_cards"`
	RedCards       int   `json:"red_cards"`
}

type elementPastRow struct {
	SeasonName  string `json:"season_name"`
	TotalPoints int    `json:"total_points"`
	Minutes     int    `json:"minutes"`
	GoalsScored int    `json:"goals_scored"`
	Assists     int    `json:"assists"`
	Bonus       int    `json:"bonus"`
}

type entryEnvelope struct {
	ID              int64  `json:"id"`
	PlayerFirstName string `json:"player_first_name"`
	PlayerLastName  string `json:"player_last_name"`
}

type entryHistoryEnvelope struct {
	Current []entryGameweekRow `json:"current"`
	Chips   []entryChipRow     `json:"chips"`
}

type entryGameweekRow struct {
	Event              int `json:"event"`
	Points             int `json:"points"`
	TotalPoints        int `json:"total_points"`
	OverallRank        int `json:"overall_rank"`
	EventTransfers     int `json:"event_transfers"`
	EventTransfersCost int `json:"event_transfers_cost"`
	Bank               int `json:"bank"`
	Value              int `json:"value"`
	PointsOnBench      int `json:"points_on_bench"`
}

type entryChipRow struct {
	Name  string `json:"name"`
	Event int    `json:"event"`
}

type entryPicksEnvelope struct {
	ActiveChip string    `json:"active_chip"`
	Picks      []pickRow `json:"picks"`
}

type pickRow struct {
	Element       int64 `json:"element"`
	Position      int   `json:"position"`
	Multiplier    int   `json:"multiplier"`
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

type h2hMatchesEnvelope struct {
	HasNext bool          `json:"has_next"`
	Results []h2hMatchRow `json:"results"`
}

type h2hMatchRow struct {
	Event        int    `json:"event"`
	Entry1Name   string `json:"entry_1_name"`
	Entry1Points int    `json:"entry_1_points"`
	Entry1Total  int    `json:"entry_1_total"`
	Entry2Name   string `json:"entry_2_name"`
	Entry2Points int    `json:"entry_2_points"`
	Entry2Total  int    `json:"entry_2_total"`
}
