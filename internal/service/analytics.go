package service

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/stridelog/stridelog/internal/model"
	"github.com/stridelog/stridelog/internal/repository"
)

const (
	GranularityDay   = "day"
	GranularityWeek  = "week"
	GranularityMonth = "month"
)

// AnalyticsAggregator produces cross-user rollups for the admin reporting
// surface. It never mutates a goal; all computation happens in memory over
// records scanned from the repository.
type AnalyticsAggregator struct {
	repo repository.GoalRepository
}

func NewAnalyticsAggregator(repo repository.GoalRepository) *AnalyticsAggregator {
	return &AnalyticsAggregator{repo: repo}
}

type CategoryStat struct {
	Category       string  `json:"category"`
	Count          int     `json:"count"`
	CompletionRate float64 `json:"completionRate"`
}

type TimeBucket struct {
	Bucket string `json:"bucket"`
	Count  int    `json:"count"`
}

type AnalyticsReport struct {
	TotalGoals      int            `json:"totalGoals"`
	CompletionRate  float64        `json:"completionRate"`
	AverageProgress float64        `json:"averageProgress"`
	Categories      []CategoryStat `json:"categories"`
	Series          []TimeBucket   `json:"series"`
}

// Report scans every goal created inside the window and bundles the rollups.
// The scan honors ctx cancellation; aggregation of an aborted scan is simply
// discarded.
func (a *AnalyticsAggregator) Report(ctx context.Context, from, to time.Time, granularity string) (*AnalyticsReport, error) {
	goals, err := a.repo.Scan(ctx, repository.ScanFilter{From: from, To: to})
	if err != nil {
		return nil, err
	}

	return &AnalyticsReport{
		TotalGoals:      len(goals),
		CompletionRate:  CompletionRate(goals),
		AverageProgress: AverageProgress(goals),
		Categories:      CategoryBreakdown(goals),
		Series:          TimeSeries(goals, granularity),
	}, nil
}

// CompletionRate is the percentage of goals with status completed among all
// goals in scope. Empty input yields 0.
func CompletionRate(goals []*model.Goal) float64 {
	if len(goals) == 0 {
		return 0
	}
	completed := 0
	for _, g := range goals {
		if g.Status == model.GoalStatusCompleted {
			completed++
		}
	}
	return round1(float64(completed) / float64(len(goals)) * 100)
}

// AverageProgress is the mean progress percentage across the active subset.
func AverageProgress(goals []*model.Goal) float64 {
	sum := 0
	active := 0
	for _, g := range goals {
		if g.Status != model.GoalStatusActive {
			continue
		}
		sum += g.ProgressPercentage()
		active++
	}
	if active == 0 {
		return 0
	}
	return round1(float64(sum) / float64(active))
}

// CategoryBreakdown groups goals by category with a per-category completion
// rate. Counts always sum to the number of goals in scope.
func CategoryBreakdown(goals []*model.Goal) []CategoryStat {
	counts := map[string]int{}
	completed := map[string]int{}
	for _, g := range goals {
		counts[g.Category]++
		if g.Status == model.GoalStatusCompleted {
			completed[g.Category]++
		}
	}

	categories := make([]string, 0, len(counts))
	for c := range counts {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	stats := make([]CategoryStat, 0, len(categories))
	for _, c := range categories {
		stats = append(stats, CategoryStat{
			Category:       c,
			Count:          counts[c],
			CompletionRate: round1(float64(completed[c]) / float64(counts[c]) * 100),
		})
	}
	return stats
}

// TimeSeries buckets goals by truncated creation date, ascending. Unknown
// granularity falls back to day.
func TimeSeries(goals []*model.Goal, granularity string) []TimeBucket {
	counts := map[time.Time]int{}
	for _, g := range goals {
		counts[truncateToBucket(g.CreatedAt, granularity)]++
	}

	starts := make([]time.Time, 0, len(counts))
	for t := range counts {
		starts = append(starts, t)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })

	series := make([]TimeBucket, 0, len(starts))
	for _, t := range starts {
		series = append(series, TimeBucket{
			Bucket: formatBucket(t, granularity),
			Count:  counts[t],
		})
	}
	return series
}

func truncateToBucket(t time.Time, granularity string) time.Time {
	u := t.UTC()
	switch granularity {
	case GranularityWeek:
		day := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		// Back up to Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonth:
		return time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	}
}

func formatBucket(t time.Time, granularity string) string {
	if granularity == GranularityMonth {
		return t.Format("2006-01")
	}
	return t.Format("2006-01-02")
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
