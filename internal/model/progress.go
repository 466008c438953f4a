package model

import (
	"time"
)

const (
	ReminderDaily   = "daily"
	ReminderWeekly  = "weekly"
	ReminderMonthly = "monthly"
)

var reminderFrequencies = []string{ReminderDaily, ReminderWeekly, ReminderMonthly}

// ProgressEntry is one dated observation in a goal's append-only ledger.
type ProgressEntry struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
	Notes string    `json:"notes,omitempty"`
}

// Milestone is an intermediate sub-target, tracked independently of the
// goal's top-level target.
type Milestone struct {
	Title         string     `json:"title"`
	Target        float64    `json:"target"`
	Current       float64    `json:"current"`
	Unit          string     `json:"unit"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completedDate,omitempty"`
}

// Reminders holds the reminder preference. No scheduling happens here; the
// fields are informational for clients.
type Reminders struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency,omitempty"`
}

// Streak counts consecutive qualifying days of logged progress.
type Streak struct {
	Current int `json:"current"`
	Target  int `json:"target"`
}

// LastEntry returns the most recently appended ledger entry, or nil for an
// empty ledger.
func (g *Goal) LastEntry() *ProgressEntry {
	if len(g.Progress) == 0 {
		return nil
	}
	return &g.Progress[len(g.Progress)-1]
}
