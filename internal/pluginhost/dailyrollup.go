package pluginhost

import (
	"context"
	"encoding/json"
	"time"

	"github.com/kodeflow/tempod/internal/apperr"
	"github.com/kodeflow/tempod/internal/clock"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

// DailyRollupPlugin is the built-in plugin that maintains per-date
// DailySummary rows, supplementing the distilled spec's data model with the
// aggregate query original_source exposes via its daily/weekly reports.
type DailyRollupPlugin struct {
	summaries ports.SummaryRepository
	clock     clock.Clock
}

// NewDailyRollupPlugin constructs the dailyrollup plugin. clock sources
// "today" for hooks (OnBreakStart) whose event carries no timestamp of its
// own; hooks that do carry a timestamped entity key off that instead.
func NewDailyRollupPlugin(summaries ports.SummaryRepository, c clock.Clock) *DailyRollupPlugin {
	return &DailyRollupPlugin{summaries: summaries, clock: c}
}

func (p *DailyRollupPlugin) Metadata() Metadata {
	return Metadata{
		ID:      "dailyrollup",
		Name:    "Daily Rollup",
		Version: "1.0.0",
		Author:  "tempod",
	}
}

func (p *DailyRollupPlugin) Initialize(_ context.Context, _ json.RawMessage) error { return nil }
func (p *DailyRollupPlugin) Start(_ context.Context) error                        { return nil }
func (p *DailyRollupPlugin) Stop(_ context.Context) error                         { return nil }

func (p *DailyRollupPlugin) OnActivityChange(ctx context.Context, activity domain.Activity) error {
	return p.mutate(ctx, activity.StartTime, func(s *domain.DailySummary) {
		s.ActivitiesTracked++
		if activity.IsProductive {
			s.ProductiveDuration += activity.Duration
		}
	})
}

func (p *DailyRollupPlugin) OnPomodoroStart(_ context.Context, _ domain.PomodoroSession) error {
	return nil
}

func (p *DailyRollupPlugin) OnPomodoroEnd(ctx context.Context, session domain.PomodoroSession) error {
	if session.IsBreak() {
		return nil
	}
	return p.mutate(ctx, session.StartTime, func(s *domain.DailySummary) {
		s.TotalWorkTime += session.Duration
		if session.Status == domain.SessionCompleted {
			s.WorkSessions++
		}
	})
}

func (p *DailyRollupPlugin) OnBreakStart(ctx context.Context, duration time.Duration) error {
	return p.mutate(ctx, p.clock.Now(), func(s *domain.DailySummary) {
		s.BreaksTaken++
		s.TotalBreakTime += duration
	})
}

func (p *DailyRollupPlugin) OnBreakEnd(_ context.Context) error { return nil }

func (p *DailyRollupPlugin) mutate(ctx context.Context, at time.Time, fn func(*domain.DailySummary)) error {
	day := truncateToDate(at)
	summary, err := p.summaries.Get(ctx, day)
	if apperr.Is(err, apperr.NotFound) {
		summary = &domain.DailySummary{Date: day}
	} else if err != nil {
		return err
	}
	fn(summary)
	return p.summaries.Upsert(ctx, summary)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
