package feature

// Row is one player's fully engineered feature vector for one match of one
// gameweek, flattened from the appearance, match and status tables.
type Row struct {
	PlayerID   int64
	PlayerName string
	Year       int
	Gameweek   int
	MatchID    int64

	Points int

	// Lags and diffs are nil where not enough history exists yet.
	PointsLag1  *int
	PointsLag2  *int
	PointsLag3  *int
	PointsDiff1 *int
	PointsDiff2 *int

	VenueHome int
	VenueAway int

	// PositionOrdinal encodes the position code along the pitch:
	// g=0, d=1, m=2, f=3.
	PositionOrdinal int

	// DoubleGW is the match count ordinal within the gameweek.
	DoubleGW int
	// GWTeams is the number of distinct teams with a match in the gameweek.
	GWTeams int

	// Status columns are the latest availability recorded before the
	// gameweek deadline. Step 0 marks a backfilled value taken from the
	// player's first recorded change; nil means no status history at all.
	Status string
	Chance *int
	Step   *int

	// StatusType collapses availability to positive (1) or negative (0);
	// players without any history count as positive.
	StatusType int
	// St1Run and St0Run count consecutive gameweeks of the same status
	// type, one counter per type.
	St1Run int
	St0Run int
	// StatusChange flags the first gameweek of a run: 1 turning positive,
	// -1 turning negative, 0 otherwise.
	StatusChange int
}
