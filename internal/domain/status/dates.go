package status

import (
	"strings"
	"time"
)

// ResolveDate converts the feed's day-month string into a full calendar date.
// The feed omits the year, and a season spans a calendar-year boundary
// (August of baseYear through May of baseYear+1), so months after June
// belong to baseYear and the rest to baseYear+1.
//
// Malformed input is expected feed noise and reported via ok=false.
func ResolveDate(raw string, baseYear int) (time.Time, bool) {
	parsed, err := time.Parse("2 Jan", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, false
	}

	year := baseYear
	if parsed.Month() <= time.June {
		year = baseYear + 1
	}

	return time.Date(year, parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), true
}
