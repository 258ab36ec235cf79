package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

type pluginRepository struct {
	db *sql.DB
}

func newPluginRepository(db *sql.DB) ports.PluginRepository {
	return &pluginRepository{db: db}
}

// Save upserts by id: plugin records are keyed by the plugin's own stable
// id, not a database-assigned sequence.
func (r *pluginRepository) Save(ctx context.Context, rec *domain.PluginRecord) error {
	cfg := rec.Config
	if cfg == nil {
		cfg = json.RawMessage("{}")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO plugin_records (id, enabled, config) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET enabled = excluded.enabled, config = excluded.config
	`, rec.ID, rec.Enabled, string(cfg))
	if err != nil {
		return apperrWrapIO("failed to save plugin record", err)
	}
	return nil
}

func (r *pluginRepository) Get(ctx context.Context, id string) (*domain.PluginRecord, error) {
	var rec domain.PluginRecord
	var enabled int
	var cfg string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, enabled, config FROM plugin_records WHERE id = ?
	`, id).Scan(&rec.ID, &enabled, &cfg)
	if err == sql.ErrNoRows {
		return nil, notFound("plugin record", id)
	}
	if err != nil {
		return nil, apperrWrapIO("failed to get plugin record", err)
	}
	rec.Enabled = enabled != 0
	rec.Config = json.RawMessage(cfg)
	return &rec, nil
}

func (r *pluginRepository) List(ctx context.Context) ([]*domain.PluginRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, enabled, config FROM plugin_records ORDER BY id ASC`)
	if err != nil {
		return nil, apperrWrapIO("failed to list plugin records", err)
	}
	defer rows.Close()

	var records []*domain.PluginRecord
	for rows.Next() {
		var rec domain.PluginRecord
		var enabled int
		var cfg string
		if err := rows.Scan(&rec.ID, &enabled, &cfg); err != nil {
			return nil, apperrWrapIO("failed to scan plugin record", err)
		}
		rec.Enabled = enabled != 0
		rec.Config = json.RawMessage(cfg)
		records = append(records, &rec)
	}
	return records, rows.Err()
}
