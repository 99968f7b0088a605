package status

import (
	"testing"
	"time"
)

func TestResolveDate_SeasonYearAssignment(t *testing.T) {
	got, ok := ResolveDate("15 Aug", 2020)
	if !ok {
		t.Fatalf("expected august date to resolve")
	}
	if got.Year() != 2020 || got.Month() != time.August || got.Day() != 15 {
		t.Fatalf("unexpected resolved date: %v", got)
	}

	got, ok = ResolveDate("10 Mar", 2020)
	if !ok {
		t.Fatalf("expected march date to resolve")
	}
	if got.Year() != 2021 {
		t.Fatalf("march belongs to the second half of the season, got year %d", got.Year())
	}
}

func TestResolveDate_JuneJulyBoundary(t *testing.T) {
	june, ok := ResolveDate("30 Jun", 2019)
	if !ok || june.Year() != 2020 {
		t.Fatalf("june must roll into the following year, got ok=%v year=%d", ok, june.Year())
	}

	july, ok := ResolveDate("1 Jul", 2019)
	if !ok || july.Year() != 2019 {
		t.Fatalf("july must stay in the base year, got ok=%v year=%d", ok, july.Year())
	}
}

func TestResolveDate_Malformed(t *testing.T) {
	for _, raw := range []string{"not a date", "", "32 Jan", "Aug 15", "15-08"} {
		if _, ok := ResolveDate(raw, 2020); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestSplitTransition(t *testing.T) {
	old, updated, ok := SplitTransition("75 to 100")
	if !ok || old != "75" || updated != "100" {
		t.Fatalf("unexpected split: %q %q ok=%v", old, updated, ok)
	}

	old, updated, ok = SplitTransition("A to I")
	if !ok || old != "A" || updated != "I" {
		t.Fatalf("unexpected split: %q %q ok=%v", old, updated, ok)
	}

	for _, raw := range []string{"", "100", "to 100", "100 to "} {
		if _, _, ok := SplitTransition(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}
