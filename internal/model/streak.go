package model

import (
	"time"
)

// RecomputeStreak updates the consecutive-day count after a ledger append
// dated entryDate. The rules, applied against the previous counted entry:
//
//   - goal not active: streak is 0
//   - first counted entry: streak starts at 1
//   - same calendar day as the last entry: unchanged (one count per day)
//   - exactly the next calendar day: increment
//   - gap of more than one day: reset to 1
//
// Calendar days are compared in UTC.
func (g *Goal) RecomputeStreak(entryDate time.Time) {
	if g.Status != GoalStatusActive {
		g.Streak.Current = 0
		return
	}

	// The entry being counted is already the last ledger element; the one
	// before it is the previous counted day.
	if len(g.Progress) < 2 {
		g.Streak.Current = 1
		return
	}
	prev := calendarDay(g.Progress[len(g.Progress)-2].Date)
	cur := calendarDay(entryDate)

	switch cur.Sub(prev) {
	case 0:
		// second log on the same day, streak unchanged
	case 24 * time.Hour:
		g.Streak.Current++
	default:
		g.Streak.Current = 1
	}
}

func calendarDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
