package model

import (
	"time"
)

// ApplyProgress appends an entry to the ledger and derives the resulting
// state: Current always tracks the newest entry's value, and an active goal
// that reaches its target flips to completed. No other transition is
// automatic; pausing, cancelling and reactivating are explicit edits.
//
// A completed goal stays completed under later smaller values, and Current is
// never capped at the target (only the displayed percentage is clamped).
func (g *Goal) ApplyProgress(entry ProgressEntry) {
	g.Progress = append(g.Progress, entry)
	g.Current = entry.Value

	// Streak is judged against the status the goal had when the entry was
	// logged, so recompute before any transition.
	if g.StreakRequired {
		g.RecomputeStreak(entry.Date)
	}

	if g.Status == GoalStatusActive && entry.Value >= g.Target {
		g.Status = GoalStatusCompleted
	}
}

// NormalizeDefaults fills creation-time defaults for omitted fields.
func (g *Goal) NormalizeDefaults(now time.Time) {
	if g.Status == "" {
		g.Status = GoalStatusActive
	}
	if g.Priority == "" {
		g.Priority = PriorityMedium
	}
	if g.Category == "" {
		g.Category = CategoryFitness
	}
	if g.StartDate.IsZero() {
		g.StartDate = now
	}
}
