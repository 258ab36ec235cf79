package domain

import "time"

// SessionStatus is the persisted status of a PomodoroSession. Exactly one
// session in the system may be Running or Paused at a time.
type SessionStatus string

const (
	SessionRunning     SessionStatus = "running"
	SessionPaused      SessionStatus = "paused"
	SessionCompleted   SessionStatus = "completed"
	SessionInterrupted SessionStatus = "interrupted"
	// SessionBreak marks a currently-active break session the way Running
	// marks a currently-active work session; BreakKind distinguishes short
	// from long once the session has terminated.
	SessionBreak SessionStatus = "break"
)

// BreakKind further classifies a break session; empty for work sessions.
type BreakKind string

const (
	BreakNone  BreakKind = ""
	BreakShort BreakKind = "short"
	BreakLong  BreakKind = "long"
)

// PomodoroSession is one instance of the Working→(break)→(next) cycle,
// recorded as a single row with a terminal status once it ends.
type PomodoroSession struct {
	ID        int64
	StartTime time.Time
	EndTime   *time.Time
	Duration  time.Duration
	Status    SessionStatus
	BreakKind BreakKind
	Notes     string
	Tags      []string
	ProjectID *int64
}

// IsActive reports whether the session currently holds the single
// Running/Paused/Break slot the Coordinator enforces system-wide.
func (s *PomodoroSession) IsActive() bool {
	return s.Status == SessionRunning || s.Status == SessionPaused || s.Status == SessionBreak
}

// IsBreak reports whether this session represents a break rather than work.
func (s *PomodoroSession) IsBreak() bool {
	return s.BreakKind != BreakNone
}
