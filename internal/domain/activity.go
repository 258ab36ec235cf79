package domain

import "time"

// Activity is one maximal contiguous interval during which the foreground
// window's (app, title) was constant and the user was not idle.
type Activity struct {
	ID            int64
	AppName       string
	WindowTitle   string
	StartTime     time.Time
	Duration      time.Duration
	Category      string
	IsProductive  bool
	ProjectID     *int64
}

// EndTime is StartTime+Duration, the closing instant of the segment.
func (a *Activity) EndTime() time.Time {
	return a.StartTime.Add(a.Duration)
}

// Overlaps reports whether a and other share any instant.
func (a *Activity) Overlaps(other *Activity) bool {
	return a.StartTime.Before(other.EndTime()) && other.StartTime.Before(a.EndTime())
}
