package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelog/stridelog/internal/model"
)

func analyticsGoal(category, status string, current, target float64, createdAt time.Time) *model.Goal {
	return &model.Goal{
		Category:  category,
		Status:    status,
		Current:   current,
		Target:    target,
		CreatedAt: createdAt,
	}
}

func TestAggregatesTolerateEmptyInput(t *testing.T) {
	assert.Equal(t, 0.0, CompletionRate(nil))
	assert.Equal(t, 0.0, AverageProgress(nil))
	assert.Empty(t, CategoryBreakdown(nil))
	assert.Empty(t, TimeSeries(nil, GranularityDay))
}

func TestCompletionRate(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	goals := []*model.Goal{
		analyticsGoal(model.CategoryFitness, model.GoalStatusCompleted, 10, 10, base),
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 5, 10, base),
		analyticsGoal(model.CategoryHealth, model.GoalStatusCancelled, 0, 10, base),
	}

	assert.Equal(t, 33.3, CompletionRate(goals))
}

func TestAverageProgressUsesActiveSubset(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	goals := []*model.Goal{
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 4, 10, base),  // 40
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 25, 10, base), // clamped 100
		analyticsGoal(model.CategoryFitness, model.GoalStatusCompleted, 10, 10, base),
	}

	assert.Equal(t, 70.0, AverageProgress(goals))

	// No active goals at all.
	assert.Equal(t, 0.0, AverageProgress(goals[2:]))
}

func TestCategoryBreakdownPartitionsAllGoals(t *testing.T) {
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	goals := []*model.Goal{
		analyticsGoal(model.CategoryFitness, model.GoalStatusCompleted, 10, 10, base),
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 5, 10, base),
		analyticsGoal(model.CategoryHealth, model.GoalStatusActive, 5, 10, base),
		analyticsGoal(model.CategoryLifestyle, model.GoalStatusCompleted, 10, 10, base),
	}

	stats := CategoryBreakdown(goals)
	require.Len(t, stats, 3)

	total := 0
	for _, s := range stats {
		total += s.Count
	}
	assert.Equal(t, len(goals), total)

	// Sorted by category name.
	assert.Equal(t, model.CategoryFitness, stats[0].Category)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 50.0, stats[0].CompletionRate)
	assert.Equal(t, model.CategoryHealth, stats[1].Category)
	assert.Equal(t, 0.0, stats[1].CompletionRate)
	assert.Equal(t, model.CategoryLifestyle, stats[2].Category)
	assert.Equal(t, 100.0, stats[2].CompletionRate)
}

func TestTimeSeriesDayBuckets(t *testing.T) {
	d1 := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 2, 3, 22, 0, 0, 0, time.UTC)
	goals := []*model.Goal{
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 0, 10, d1),
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 0, 10, d1.Add(2*time.Hour)),
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 0, 10, d2),
	}

	series := TimeSeries(goals, GranularityDay)
	require.Len(t, series, 2)
	assert.Equal(t, TimeBucket{Bucket: "2026-02-01", Count: 2}, series[0])
	assert.Equal(t, TimeBucket{Bucket: "2026-02-03", Count: 1}, series[1])
}

func TestTimeSeriesWeekAndMonthBuckets(t *testing.T) {
	// Sunday Feb 1 2026 belongs to the week starting Monday Jan 26.
	sun := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	mon := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	goals := []*model.Goal{
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 0, 10, sun),
		analyticsGoal(model.CategoryFitness, model.GoalStatusActive, 0, 10, mon),
	}

	weeks := TimeSeries(goals, GranularityWeek)
	require.Len(t, weeks, 2)
	assert.Equal(t, "2026-01-26", weeks[0].Bucket)
	assert.Equal(t, "2026-02-02", weeks[1].Bucket)

	months := TimeSeries(goals, GranularityMonth)
	require.Len(t, months, 1)
	assert.Equal(t, TimeBucket{Bucket: "2026-02", Count: 2}, months[0])
}

func TestReportWindowsTheScan(t *testing.T) {
	repo := newFakeRepo()
	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC)

	for i, created := range []time.Time{jan, feb, feb.AddDate(0, 0, 1)} {
		svc := newTestService(repo, created)
		goal, err := svc.Create(context.Background(), "u1", createInput())
		require.NoError(t, err)
		if i > 0 {
			// Complete the February goals.
			_, err = svc.AppendProgress(context.Background(), "u1", goal.ID, 10, "")
			require.NoError(t, err)
		}
	}

	agg := NewAnalyticsAggregator(repo)
	report, err := agg.Report(context.Background(),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		GranularityDay)
	require.NoError(t, err)

	assert.Equal(t, 2, report.TotalGoals)
	assert.Equal(t, 100.0, report.CompletionRate)
	require.Len(t, report.Series, 2)
	assert.Equal(t, "2026-02-15", report.Series[0].Bucket)
}
