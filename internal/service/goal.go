package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stridelog/stridelog/internal/model"
	"github.com/stridelog/stridelog/internal/repository"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type GoalService struct {
	repo repository.GoalRepository
	now  func() time.Time
}

func NewGoalService(repo repository.GoalRepository) *GoalService {
	return &GoalService{
		repo: repo,
		now:  time.Now,
	}
}

// CreateGoalInput carries the caller-supplied fields for a new goal. Omitted
// status/priority/category/startDate get defaults.
type CreateGoalInput struct {
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Type           string            `json:"type"`
	Target         float64           `json:"target"`
	Current        float64           `json:"current"`
	Unit           string            `json:"unit"`
	StartDate      time.Time         `json:"startDate"`
	TargetDate     time.Time         `json:"targetDate"`
	Milestones     []model.Milestone `json:"milestones"`
	Status         string            `json:"status"`
	Priority       string            `json:"priority"`
	Category       string            `json:"category"`
	Reminders      model.Reminders   `json:"reminders"`
	StreakRequired bool              `json:"streakRequired"`
	StreakTarget   int               `json:"streakTarget"`
	Tags           []string          `json:"tags"`
	IsPublic       bool              `json:"isPublic"`
}

func (s *GoalService) Create(ctx context.Context, ownerID string, input CreateGoalInput) (*model.Goal, error) {
	now := s.now()

	goal := &model.Goal{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Title:          input.Title,
		Description:    input.Description,
		Type:           input.Type,
		Target:         input.Target,
		Current:        input.Current,
		Unit:           input.Unit,
		StartDate:      input.StartDate,
		TargetDate:     input.TargetDate,
		Milestones:     input.Milestones,
		Status:         input.Status,
		Priority:       input.Priority,
		Category:       input.Category,
		Reminders:      input.Reminders,
		StreakRequired: input.StreakRequired,
		Streak:         model.Streak{Target: input.StreakTarget},
		Tags:           input.Tags,
		IsPublic:       input.IsPublic,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	goal.NormalizeDefaults(now)

	if verr := goal.Validate(); verr != nil {
		return nil, verr
	}

	err := s.repo.Insert(ctx, goal)
	if err != nil {
		return nil, err
	}

	slog.Info("goal created", "goal_id", goal.ID, "owner_id", ownerID, "type", goal.Type)
	return goal, nil
}

func (s *GoalService) ByID(ctx context.Context, ownerID, goalID string) (*model.Goal, error) {
	return s.repo.ByID(ctx, ownerID, goalID)
}

// List returns a page of the owner's goals, newest first, plus the total
// count matching the filter.
func (s *GoalService) List(ctx context.Context, ownerID string, filter repository.Filter, page, limit int) ([]*model.Goal, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	return s.repo.List(ctx, ownerID, filter, (page-1)*limit, limit)
}

// UpdateGoalInput is a partial update: nil fields are left untouched.
type UpdateGoalInput struct {
	Title          *string            `json:"title"`
	Description    *string            `json:"description"`
	Type           *string            `json:"type"`
	Target         *float64           `json:"target"`
	Unit           *string            `json:"unit"`
	TargetDate     *time.Time         `json:"targetDate"`
	Milestones     *[]model.Milestone `json:"milestones"`
	Status         *string            `json:"status"`
	Priority       *string            `json:"priority"`
	Category       *string            `json:"category"`
	Reminders      *model.Reminders   `json:"reminders"`
	StreakRequired *bool              `json:"streakRequired"`
	StreakTarget   *int               `json:"streakTarget"`
	Tags           *[]string          `json:"tags"`
	IsPublic       *bool              `json:"isPublic"`
}

func (s *GoalService) Update(ctx context.Context, ownerID, goalID string, input UpdateGoalInput) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}

	if verr := validateUpdate(input); verr != nil {
		return nil, verr
	}

	now := s.now()
	applyUpdate(goal, input, now)
	goal.UpdatedAt = now

	err = s.repo.UpdateAtomic(ctx, goal, goal.Version)
	if err != nil {
		return nil, err
	}

	return goal, nil
}

// AppendProgress records one observation dated now, derives the resulting
// status and streak, and writes the document back in a single conditional
// update. A lost version race surfaces as repository.ErrConflict; the caller
// retries just the append.
func (s *GoalService) AppendProgress(ctx context.Context, ownerID, goalID string, value float64, notes string) (*model.Goal, error) {
	goal, err := s.repo.ByID(ctx, ownerID, goalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	entry := model.ProgressEntry{
		ID:    uuid.New().String(),
		Date:  now,
		Value: value,
		Notes: notes,
	}

	prevStatus := goal.Status
	goal.ApplyProgress(entry)
	goal.UpdatedAt = now

	err = s.repo.UpdateAtomic(ctx, goal, goal.Version)
	if err != nil {
		return nil, err
	}

	if prevStatus != goal.Status {
		slog.Info("goal completed", "goal_id", goal.ID, "owner_id", ownerID, "value", value, "target", goal.Target)
	}

	return goal, nil
}

func (s *GoalService) Delete(ctx context.Context, ownerID, goalID string) error {
	err := s.repo.Delete(ctx, ownerID, goalID)
	if err != nil {
		return err
	}

	slog.Info("goal deleted", "goal_id", goalID, "owner_id", ownerID)
	return nil
}

// validateUpdate checks only the fields the caller is changing. The
// startDate/targetDate ordering rule is a creation-time check and is not
// re-applied here.
func validateUpdate(input UpdateGoalInput) *model.ValidationError {
	e := &model.ValidationError{}

	if input.Title != nil && *input.Title == "" {
		e.Add("title", "title must not be empty")
	}
	if input.Type != nil && !model.ValidType(*input.Type) {
		e.Add("type", "unknown goal type")
	}
	if input.Target != nil && *input.Target < 0 {
		e.Add("target", "target must not be negative")
	}
	if input.Unit != nil && *input.Unit == "" {
		e.Add("unit", "unit must not be empty")
	}
	if input.Status != nil && !model.ValidStatus(*input.Status) {
		e.Add("status", "unknown status")
	}
	if input.Priority != nil && !model.ValidPriority(*input.Priority) {
		e.Add("priority", "unknown priority")
	}
	if input.Category != nil && !model.ValidCategory(*input.Category) {
		e.Add("category", "unknown category")
	}
	if input.Reminders != nil && input.Reminders.Enabled && !model.ValidReminderFrequency(input.Reminders.Frequency) {
		e.Add("reminders.frequency", "unknown reminder frequency")
	}

	return e.OrNil()
}

func applyUpdate(goal *model.Goal, input UpdateGoalInput, now time.Time) {
	if input.Title != nil {
		goal.Title = *input.Title
	}
	if input.Description != nil {
		goal.Description = *input.Description
	}
	if input.Type != nil {
		goal.Type = *input.Type
	}
	if input.Target != nil {
		goal.Target = *input.Target
	}
	if input.Unit != nil {
		goal.Unit = *input.Unit
	}
	if input.TargetDate != nil {
		goal.TargetDate = *input.TargetDate
	}
	if input.Milestones != nil {
		goal.Milestones = *input.Milestones
	}
	if input.Status != nil {
		goal.Status = *input.Status
	}
	if input.Priority != nil {
		goal.Priority = *input.Priority
	}
	if input.Category != nil {
		goal.Category = *input.Category
	}
	if input.Reminders != nil {
		goal.Reminders = *input.Reminders
	}
	if input.StreakRequired != nil {
		goal.StreakRequired = *input.StreakRequired
	}
	if input.StreakTarget != nil {
		goal.Streak.Target = *input.StreakTarget
	}
	if input.Tags != nil {
		goal.Tags = *input.Tags
	}
	if input.IsPublic != nil {
		goal.IsPublic = *input.IsPublic
	}

	// A milestone that has reached its own target gets marked completed.
	for i := range goal.Milestones {
		m := &goal.Milestones[i]
		if !m.Completed && m.Target > 0 && m.Current >= m.Target {
			m.Completed = true
			completedAt := now
			m.CompletedDate = &completedAt
		}
	}
}
