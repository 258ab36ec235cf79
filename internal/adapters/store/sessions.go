package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

type sessionRepository struct {
	db *sql.DB
}

func newSessionRepository(db *sql.DB) ports.SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Save(ctx context.Context, s *domain.PomodoroSession) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO pomodoro_sessions
			(start_time, end_time, duration_ms, status, break_kind, notes, tags, project_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, s.StartTime, nullableTime(s.EndTime), s.Duration.Milliseconds(), string(s.Status), string(s.BreakKind),
		s.Notes, strings.Join(s.Tags, ","), s.ProjectID)
	if err != nil {
		return apperrWrapIO("failed to save pomodoro session", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrWrapIO("failed to read session id", err)
	}
	s.ID = id
	return nil
}

func (r *sessionRepository) Get(ctx context.Context, id int64) (*domain.PomodoroSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, duration_ms, status, break_kind, notes, tags, project_id
		FROM pomodoro_sessions WHERE id = ?
	`, id)
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, notFound("pomodoro session", id)
	}
	if err != nil {
		return nil, apperrWrapIO("failed to get pomodoro session", err)
	}
	return s, nil
}

// FindActive returns the single Running/Paused/Break session, if any. The
// Coordinator enforces at most one at a time; this query trusts that
// invariant and returns the most recently started match.
func (r *sessionRepository) FindActive(ctx context.Context) (*domain.PomodoroSession, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, duration_ms, status, break_kind, notes, tags, project_id
		FROM pomodoro_sessions
		WHERE status IN (?, ?, ?)
		ORDER BY start_time DESC
		LIMIT 1
	`, string(domain.SessionRunning), string(domain.SessionPaused), string(domain.SessionBreak))
	s, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrWrapIO("failed to find active pomodoro session", err)
	}
	return s, nil
}

func (r *sessionRepository) Update(ctx context.Context, s *domain.PomodoroSession) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pomodoro_sessions
		SET end_time = ?, duration_ms = ?, status = ?, break_kind = ?, notes = ?, tags = ?, project_id = ?
		WHERE id = ?
	`, nullableTime(s.EndTime), s.Duration.Milliseconds(), string(s.Status), string(s.BreakKind),
		s.Notes, strings.Join(s.Tags, ","), s.ProjectID, s.ID)
	if err != nil {
		return apperrWrapIO("failed to update pomodoro session", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("pomodoro session", s.ID)
	}
	return nil
}

func (r *sessionRepository) Query(ctx context.Context, tr ports.TimeRange) ([]*domain.PomodoroSession, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, start_time, end_time, duration_ms, status, break_kind, notes, tags, project_id
		FROM pomodoro_sessions
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`, tr.Start, tr.End)
	if err != nil {
		return nil, apperrWrapIO("failed to query pomodoro sessions", err)
	}
	defer rows.Close()

	var sessions []*domain.PomodoroSession
	for rows.Next() {
		s, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *sessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pomodoro_sessions WHERE start_time < ?`, cutoff)
	if err != nil {
		return 0, apperrWrapIO("failed to delete old pomodoro sessions", err)
	}
	return res.RowsAffected()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*domain.PomodoroSession, error) {
	var s domain.PomodoroSession
	var endTime sql.NullTime
	var durationMs int64
	var status, breakKind, tagsStr string
	var projectID sql.NullInt64

	if err := row.Scan(&s.ID, &s.StartTime, &endTime, &durationMs, &status, &breakKind, &s.Notes, &tagsStr, &projectID); err != nil {
		return nil, err
	}
	if endTime.Valid {
		t := endTime.Time
		s.EndTime = &t
	}
	s.Duration = time.Duration(durationMs) * time.Millisecond
	s.Status = domain.SessionStatus(status)
	s.BreakKind = domain.BreakKind(breakKind)
	if tagsStr != "" {
		s.Tags = strings.Split(tagsStr, ",")
	}
	if projectID.Valid {
		id := projectID.Int64
		s.ProjectID = &id
	}
	return &s, nil
}

func scanSessionRows(rows *sql.Rows) (*domain.PomodoroSession, error) {
	return scanSession(rows)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
