package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("player_id", "step").From("status_events").
		Where(Eq("season", 2020), IsNull("deleted_at")).
		OrderBy("player_id", "step").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT player_id, step FROM status_events WHERE season = $1 AND deleted_at IS NULL ORDER BY player_id, step LIMIT 10"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 1 || args[0] != 2020 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestSelectBuilder_InCondition(t *testing.T) {
	query, args, err := Select("id").From("players").
		Where(In("player_id", []any{int64(1), int64(2)})).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT id FROM players WHERE player_id IN ($1, $2)"
	if query != want {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestSelectBuilder_EmptyInNeverMatches(t *testing.T) {
	query, args, err := Select("id").From("players").
		Where(In("player_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}
	if query != "SELECT id FROM players WHERE player_id IN (NULL)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("matches").
		Columns("match_id", "venue").
		Row(int64(1), "home").
		Row(int64(1), "away").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO matches (match_id, venue) VALUES ($1, $2), ($3, $4)"
	if query != want {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %v", args)
	}
}

func TestInsertBuilder_RowWidthMismatch(t *testing.T) {
	_, _, err := InsertInto("matches").
		Columns("match_id", "venue").
		Row(int64(1)).
		ToSQL()
	if err == nil {
		t.Fatalf("expected row width mismatch error")
	}
}

func TestDeleteBuilder_RequiresCondition(t *testing.T) {
	if _, _, err := DeleteFrom("matches").ToSQL(); err == nil {
		t.Fatalf("unconditional delete must be rejected")
	}

	query, args, err := DeleteFrom("matches").Where(Eq("season", 2020)).ToSQL()
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	if query != "DELETE FROM matches WHERE season = $1" || len(args) != 1 {
		t.Fatalf("unexpected delete: %s %v", query, args)
	}
}
