package coordinator

import (
	"context"

	"github.com/kodeflow/tempod/internal/config"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/pomodoro"
	"github.com/kodeflow/tempod/internal/ports"
)

// GetConfig returns the configuration currently in effect.
func (co *Coordinator) GetConfig() *config.Config {
	return co.cfg
}

// GetProjects lists projects, optionally including archived ones.
func (co *Coordinator) GetProjects(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return co.store.Projects().List(ctx, includeArchived)
}

// GetRules lists the classification rules RuleEngine currently loads from.
func (co *Coordinator) GetRules(ctx context.Context) ([]*domain.Rule, error) {
	return co.store.Rules().List(ctx)
}

// GetActivities returns every tracked activity segment starting in r.
func (co *Coordinator) GetActivities(ctx context.Context, r ports.TimeRange) ([]*domain.Activity, error) {
	return co.store.Activities().Query(ctx, r)
}

// GetPomodoroSessions returns every pomodoro session starting in r.
func (co *Coordinator) GetPomodoroSessions(ctx context.Context, r ports.TimeRange) ([]*domain.PomodoroSession, error) {
	return co.store.Sessions().Query(ctx, r)
}

// GetCurrentActivity reports the in-progress activity segment, if any.
func (co *Coordinator) GetCurrentActivity(ctx context.Context) (*domain.Activity, error) {
	return co.sample.CurrentActivity(ctx)
}

// GetCurrentPomodoro reports the Timer's current phase and session.
func (co *Coordinator) GetCurrentPomodoro(ctx context.Context) (pomodoro.Snapshot, error) {
	return co.timer.CurrentSession(ctx)
}

// ProductivityStats aggregates DailySummary rollups over a range.
type ProductivityStats struct {
	TotalActivities    int
	TotalTrackedTime   int64 // nanoseconds; callers format with time.Duration
	ProductiveTime     int64
	ProductivityRatio  float64 // ProductiveTime / TotalTrackedTime, 0 when nothing tracked
}

// GetProductivityStats aggregates daily summaries over r into overall
// productive-vs-total tracked time. Backed by Store.Summaries() rather than
// scanning raw activities, since DailySummary already rolls up exactly this
// shape once per calendar date.
func (co *Coordinator) GetProductivityStats(ctx context.Context, r ports.TimeRange) (ProductivityStats, error) {
	summaries, err := co.store.Summaries().Query(ctx, r)
	if err != nil {
		return ProductivityStats{}, err
	}
	var stats ProductivityStats
	var total, productive int64
	for _, s := range summaries {
		stats.TotalActivities += s.ActivitiesTracked
		total += int64(s.TotalWorkTime + s.TotalBreakTime)
		productive += int64(s.ProductiveDuration)
	}
	stats.TotalTrackedTime = total
	stats.ProductiveTime = productive
	if total > 0 {
		stats.ProductivityRatio = float64(productive) / float64(total)
	}
	return stats, nil
}

// PomodoroStats aggregates DailySummary rollups into overall pomodoro
// counts and durations over a range.
type PomodoroStats struct {
	WorkSessions   int
	BreaksTaken    int
	TotalWorkTime  int64 // nanoseconds
	TotalBreakTime int64
}

// GetPomodoroStats aggregates daily summaries over r into pomodoro session
// counts, the same rollup GetProductivityStats reads from.
func (co *Coordinator) GetPomodoroStats(ctx context.Context, r ports.TimeRange) (PomodoroStats, error) {
	summaries, err := co.store.Summaries().Query(ctx, r)
	if err != nil {
		return PomodoroStats{}, err
	}
	var stats PomodoroStats
	for _, s := range summaries {
		stats.WorkSessions += s.WorkSessions
		stats.BreaksTaken += s.BreaksTaken
		stats.TotalWorkTime += int64(s.TotalWorkTime)
		stats.TotalBreakTime += int64(s.TotalBreakTime)
	}
	return stats, nil
}

// CategoryStats is one category's share of tracked time over a range.
type CategoryStats struct {
	Category string
	Duration int64 // nanoseconds
	Count    int
}

// GetCategoryStats groups raw activities over r by category. Unlike the
// other two stats queries this reads Store.Activities() directly rather than
// DailySummary, since daily rollups carry no per-category breakdown.
func (co *Coordinator) GetCategoryStats(ctx context.Context, r ports.TimeRange) ([]CategoryStats, error) {
	activities, err := co.store.Activities().Query(ctx, r)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]*CategoryStats)
	var order []string
	for _, a := range activities {
		cat := a.Category
		if cat == "" {
			cat = "uncategorized"
		}
		entry, ok := byCategory[cat]
		if !ok {
			entry = &CategoryStats{Category: cat}
			byCategory[cat] = entry
			order = append(order, cat)
		}
		entry.Duration += int64(a.Duration)
		entry.Count++
	}

	result := make([]CategoryStats, 0, len(order))
	for _, cat := range order {
		result = append(result, *byCategory[cat])
	}
	return result, nil
}
