package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

type activityRepository struct {
	db *sql.DB
}

func newActivityRepository(db *sql.DB) ports.ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Save(ctx context.Context, a *domain.Activity) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO activities (app_name, window_title, start_time, duration_ms, category, is_productive, project_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.AppName, a.WindowTitle, a.StartTime, a.Duration.Milliseconds(), a.Category, a.IsProductive, a.ProjectID)
	if err != nil {
		return apperrWrapIO("failed to save activity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrWrapIO("failed to read activity id", err)
	}
	a.ID = id
	return nil
}

func (r *activityRepository) Query(ctx context.Context, tr ports.TimeRange) ([]*domain.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, app_name, window_title, start_time, duration_ms, category, is_productive, project_id
		FROM activities
		WHERE start_time >= ? AND start_time < ?
		ORDER BY start_time ASC
	`, tr.Start, tr.End)
	if err != nil {
		return nil, apperrWrapIO("failed to query activities", err)
	}
	defer rows.Close()

	var activities []*domain.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (r *activityRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE start_time < ?`, cutoff)
	if err != nil {
		return 0, apperrWrapIO("failed to delete old activities", err)
	}
	return res.RowsAffected()
}

func scanActivity(rows *sql.Rows) (*domain.Activity, error) {
	var a domain.Activity
	var durationMs int64
	var productive int
	var projectID sql.NullInt64
	if err := rows.Scan(&a.ID, &a.AppName, &a.WindowTitle, &a.StartTime, &durationMs, &a.Category, &productive, &projectID); err != nil {
		return nil, apperrWrapIO("failed to scan activity", err)
	}
	a.Duration = time.Duration(durationMs) * time.Millisecond
	a.IsProductive = productive != 0
	if projectID.Valid {
		id := projectID.Int64
		a.ProjectID = &id
	}
	return &a, nil
}
