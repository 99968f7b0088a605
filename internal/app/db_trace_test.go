package app

import (
	"strings"
	"testing"
)

func TestFormatDBQueryForTrace(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		got := formatDBQueryForTrace("SELECT count(1)\n\tFROM   status_events\n WHERE season = $1")
		want := "SELECT count(1) FROM status_events WHERE season = $1"
		if got != want {
			t.Fatalf("unexpected formatted query: %q", got)
		}
	})

	t.Run("truncates long statements", func(t *testing.T) {
		long := "INSERT INTO player_features VALUES " + strings.Repeat("($1,$2,$3),", 200)
		got := formatDBQueryForTrace(long)
		if len(got) != maxTracedQueryLength+3 {
			t.Fatalf("unexpected truncated length: %d", len(got))
		}
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("truncated query must end with ellipsis: %q", got[len(got)-10:])
		}
	})

	t.Run("empty stays empty", func(t *testing.T) {
		if got := formatDBQueryForTrace("   "); got != "" {
			t.Fatalf("expected empty result, got %q", got)
		}
	})
}
