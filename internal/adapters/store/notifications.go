package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

type notificationRepository struct {
	db *sql.DB
}

func newNotificationRepository(db *sql.DB) ports.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Save(ctx context.Context, n *domain.Notification) error {
	meta, err := json.Marshal(n.Metadata)
	if err != nil {
		return apperrWrapIO("failed to encode notification metadata", err)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (type, title, message, timestamp, read, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(n.Type), n.Title, n.Message, n.Timestamp, n.Read, string(meta))
	if err != nil {
		return apperrWrapIO("failed to save notification", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrWrapIO("failed to read notification id", err)
	}
	n.ID = id
	return nil
}

func (r *notificationRepository) List(ctx context.Context, limit int) ([]*domain.Notification, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, title, message, timestamp, read, metadata
		FROM notifications
		ORDER BY timestamp DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, apperrWrapIO("failed to list notifications", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var typ string
		var read int
		var meta string
		if err := rows.Scan(&n.ID, &typ, &n.Title, &n.Message, &n.Timestamp, &read, &meta); err != nil {
			return nil, apperrWrapIO("failed to scan notification", err)
		}
		n.Type = domain.NotificationType(typ)
		n.Read = read != 0
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &n.Metadata); err != nil {
				return nil, apperrWrapIO("failed to decode notification metadata", err)
			}
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

func (r *notificationRepository) MarkRead(ctx context.Context, id int64, read bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notifications SET read = ? WHERE id = ?`, read, id)
	if err != nil {
		return apperrWrapIO("failed to update notification", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("notification", id)
	}
	return nil
}

func (r *notificationRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, apperrWrapIO("failed to delete old notifications", err)
	}
	return res.RowsAffected()
}
