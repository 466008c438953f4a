package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	GoalStatusActive    = "active"
	GoalStatusCompleted = "completed"
	GoalStatusPaused    = "paused"
	GoalStatusCancelled = "cancelled"
)

const (
	GoalTypeWeight      = "weight"
	GoalTypeStrength    = "strength"
	GoalTypeEndurance   = "endurance"
	GoalTypeFlexibility = "flexibility"
	GoalTypeNutrition   = "nutrition"
	GoalTypeHabit       = "habit"
	GoalTypeCustom      = "custom"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

const (
	CategoryFitness     = "fitness"
	CategoryHealth      = "health"
	CategoryLifestyle   = "lifestyle"
	CategoryPerformance = "performance"
)

var (
	goalStatuses   = []string{GoalStatusActive, GoalStatusCompleted, GoalStatusPaused, GoalStatusCancelled}
	goalTypes      = []string{GoalTypeWeight, GoalTypeStrength, GoalTypeEndurance, GoalTypeFlexibility, GoalTypeNutrition, GoalTypeHabit, GoalTypeCustom}
	goalPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
	goalCategories = []string{CategoryFitness, CategoryHealth, CategoryLifestyle, CategoryPerformance}
)

// Goal is the persisted goal document. Current is a cached projection of the
// last ledger entry; the Progress ledger is the source of truth.
type Goal struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"ownerId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Type           string          `json:"type"`
	Target         float64         `json:"target"`
	Current        float64         `json:"current"`
	Unit           string          `json:"unit"`
	StartDate      time.Time       `json:"startDate"`
	TargetDate     time.Time       `json:"targetDate"`
	Milestones     []Milestone     `json:"milestones"`
	Status         string          `json:"status"`
	Priority       string          `json:"priority"`
	Category       string          `json:"category"`
	Progress       []ProgressEntry `json:"progress"`
	Reminders      Reminders       `json:"reminders"`
	StreakRequired bool            `json:"streakRequired"`
	Streak         Streak          `json:"streak"`
	Tags           []string        `json:"tags"`
	IsPublic       bool            `json:"isPublic"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Version        int64           `json:"-"`
}

// ProgressPercentage reports completion toward the target, clamped to [0,100].
// A zero target reports 0 to guard the division.
func (g *Goal) ProgressPercentage() int {
	if g.Target == 0 {
		return 0
	}
	pct := int(math.Round(g.Current / g.Target * 100))
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// DaysRemaining reports whole days until the target date, clamped to >= 0.
func (g *Goal) DaysRemaining(now time.Time) int {
	d := daysBetween(now, g.TargetDate)
	if d < 0 {
		return 0
	}
	return d
}

// DaysElapsed reports whole days since the start date.
func (g *Goal) DaysElapsed(now time.Time) int {
	return daysBetween(g.StartDate, now)
}

// IsOverdue reports whether an active goal is past its target date. It is
// computed from the unclamped day difference: the clamped DaysRemaining can
// never go negative, so testing it would make overdue unreachable.
func (g *Goal) IsOverdue(now time.Time) bool {
	return g.Status == GoalStatusActive && daysBetween(now, g.TargetDate) < 0
}

func daysBetween(from, to time.Time) int {
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// FieldError describes a single invalid or missing field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects all field-level problems found in one pass.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) OrNil() *ValidationError {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Validate checks the goal for creation. Required fields, enum membership and
// date ordering are all reported together rather than first-error-wins.
func (g *Goal) Validate() *ValidationError {
	e := &ValidationError{}

	if strings.TrimSpace(g.Title) == "" {
		e.Add("title", "title is required")
	}
	if g.Type == "" {
		e.Add("type", "type is required")
	} else if !oneOf(g.Type, goalTypes) {
		e.Add("type", fmt.Sprintf("type must be one of %s", strings.Join(goalTypes, ", ")))
	}
	if g.Target < 0 {
		e.Add("target", "target must not be negative")
	}
	if strings.TrimSpace(g.Unit) == "" {
		e.Add("unit", "unit is required")
	}
	if g.TargetDate.IsZero() {
		e.Add("targetDate", "targetDate is required")
	} else if !g.StartDate.IsZero() && g.TargetDate.Before(g.StartDate) {
		e.Add("targetDate", "targetDate must not be before startDate")
	}
	if g.Status != "" && !oneOf(g.Status, goalStatuses) {
		e.Add("status", fmt.Sprintf("status must be one of %s", strings.Join(goalStatuses, ", ")))
	}
	if g.Priority != "" && !oneOf(g.Priority, goalPriorities) {
		e.Add("priority", fmt.Sprintf("priority must be one of %s", strings.Join(goalPriorities, ", ")))
	}
	if g.Category != "" && !oneOf(g.Category, goalCategories) {
		e.Add("category", fmt.Sprintf("category must be one of %s", strings.Join(goalCategories, ", ")))
	}
	if g.Reminders.Enabled && !oneOf(g.Reminders.Frequency, reminderFrequencies) {
		e.Add("reminders.frequency", fmt.Sprintf("frequency must be one of %s", strings.Join(reminderFrequencies, ", ")))
	}
	for i, m := range g.Milestones {
		if strings.TrimSpace(m.Title) == "" {
			e.Add(fmt.Sprintf("milestones[%d].title", i), "milestone title is required")
		}
		if m.Target < 0 {
			e.Add(fmt.Sprintf("milestones[%d].target", i), "milestone target must not be negative")
		}
	}

	return e.OrNil()
}

// ValidStatus reports whether s is a known goal status.
func ValidStatus(s string) bool { return oneOf(s, goalStatuses) }

// ValidType reports whether t is a known goal type.
func ValidType(t string) bool { return oneOf(t, goalTypes) }

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool { return oneOf(p, goalPriorities) }

// ValidCategory reports whether c is a known category.
func ValidCategory(c string) bool { return oneOf(c, goalCategories) }

// ValidReminderFrequency reports whether f is a known reminder frequency.
func ValidReminderFrequency(f string) bool { return oneOf(f, reminderFrequencies) }

func oneOf(v string, set []string) bool {
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
