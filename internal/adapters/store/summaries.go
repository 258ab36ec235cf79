package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

const summaryDateLayout = "2006-01-02"

type summaryRepository struct {
	db *sql.DB
}

func newSummaryRepository(db *sql.DB) ports.SummaryRepository {
	return &summaryRepository{db: db}
}

func (r *summaryRepository) Upsert(ctx context.Context, s *domain.DailySummary) error {
	key := s.Date.Format(summaryDateLayout)
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO daily_summaries
			(date, work_sessions, breaks_taken, total_work_ms, total_break_ms, activities_tracked, productive_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (date) DO UPDATE SET
			work_sessions = excluded.work_sessions,
			breaks_taken = excluded.breaks_taken,
			total_work_ms = excluded.total_work_ms,
			total_break_ms = excluded.total_break_ms,
			activities_tracked = excluded.activities_tracked,
			productive_ms = excluded.productive_ms
	`, key, s.WorkSessions, s.BreaksTaken, s.TotalWorkTime.Milliseconds(), s.TotalBreakTime.Milliseconds(),
		s.ActivitiesTracked, s.ProductiveDuration.Milliseconds())
	if err != nil {
		return apperrWrapIO("failed to upsert daily summary", err)
	}
	return nil
}

func (r *summaryRepository) Get(ctx context.Context, date time.Time) (*domain.DailySummary, error) {
	key := date.Format(summaryDateLayout)
	row := r.db.QueryRowContext(ctx, `
		SELECT date, work_sessions, breaks_taken, total_work_ms, total_break_ms, activities_tracked, productive_ms
		FROM daily_summaries WHERE date = ?
	`, key)
	s, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, notFound("daily summary", key)
	}
	if err != nil {
		return nil, apperrWrapIO("failed to get daily summary", err)
	}
	return s, nil
}

func (r *summaryRepository) Query(ctx context.Context, tr ports.TimeRange) ([]*domain.DailySummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, work_sessions, breaks_taken, total_work_ms, total_break_ms, activities_tracked, productive_ms
		FROM daily_summaries
		WHERE date >= ? AND date < ?
		ORDER BY date ASC
	`, tr.Start.Format(summaryDateLayout), tr.End.Format(summaryDateLayout))
	if err != nil {
		return nil, apperrWrapIO("failed to query daily summaries", err)
	}
	defer rows.Close()

	var summaries []*domain.DailySummary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, apperrWrapIO("failed to scan daily summary", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func scanSummary(row rowScanner) (*domain.DailySummary, error) {
	var s domain.DailySummary
	var dateStr string
	var workMs, breakMs, productiveMs int64
	if err := row.Scan(&dateStr, &s.WorkSessions, &s.BreaksTaken, &workMs, &breakMs, &s.ActivitiesTracked, &productiveMs); err != nil {
		return nil, err
	}
	date, err := time.Parse(summaryDateLayout, dateStr)
	if err != nil {
		return nil, err
	}
	s.Date = date
	s.TotalWorkTime = time.Duration(workMs) * time.Millisecond
	s.TotalBreakTime = time.Duration(breakMs) * time.Millisecond
	s.ProductiveDuration = time.Duration(productiveMs) * time.Millisecond
	return &s, nil
}
