package service

import (
	"context"

	"github.com/stridelog/stridelog/internal/model"
	"github.com/stridelog/stridelog/internal/repository"
)

// OwnerSummary is the per-user dashboard rollup.
type OwnerSummary struct {
	TotalGoals      int     `json:"totalGoals"`
	Active          int     `json:"active"`
	Completed       int     `json:"completed"`
	Paused          int     `json:"paused"`
	Cancelled       int     `json:"cancelled"`
	Overdue         int     `json:"overdue"`
	AverageProgress float64 `json:"averageProgress"`
	BestStreak      int     `json:"bestStreak"`
}

// Summary aggregates all of one owner's goals.
func (s *GoalService) Summary(ctx context.Context, ownerID string) (*OwnerSummary, error) {
	goals, err := s.repo.Scan(ctx, repository.ScanFilter{OwnerID: ownerID})
	if err != nil {
		return nil, err
	}

	now := s.now()
	summary := &OwnerSummary{TotalGoals: len(goals)}

	for _, g := range goals {
		switch g.Status {
		case model.GoalStatusActive:
			summary.Active++
		case model.GoalStatusCompleted:
			summary.Completed++
		case model.GoalStatusPaused:
			summary.Paused++
		case model.GoalStatusCancelled:
			summary.Cancelled++
		}
		if g.IsOverdue(now) {
			summary.Overdue++
		}
		if g.StreakRequired && g.Streak.Current > summary.BestStreak {
			summary.BestStreak = g.Streak.Current
		}
	}
	summary.AverageProgress = AverageProgress(goals)

	return summary, nil
}
