package domain

import "time"

// DailySummary is a per-calendar-date rollup, upserted whenever a
// PomodoroSession or Activity terminates on that date. Supplements the
// distilled spec's data model with the aggregate original_source exposes
// via its daily/weekly session queries.
type DailySummary struct {
	Date               time.Time
	WorkSessions       int
	BreaksTaken        int
	TotalWorkTime      time.Duration
	TotalBreakTime     time.Duration
	ActivitiesTracked  int
	ProductiveDuration time.Duration
}
