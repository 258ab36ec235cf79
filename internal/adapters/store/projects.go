package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kodeflow/tempod/internal/apperr"
	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

type projectRepository struct {
	db *sql.DB
}

func newProjectRepository(db *sql.DB) ports.ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Save(ctx context.Context, p *domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO projects (name, description, color, created_at, updated_at, archived)
		VALUES (?, ?, ?, ?, ?, ?)
	`, p.Name, p.Description, p.Color, p.CreatedAt, p.UpdatedAt, p.Archived)
	if err != nil {
		if isUniqueConstraintError(err) {
			return apperr.New(apperr.Conflict, fmt.Sprintf("project named %q already exists", p.Name))
		}
		return apperrWrapIO("failed to save project", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrWrapIO("failed to read project id", err)
	}
	p.ID = id
	return nil
}

func (r *projectRepository) Get(ctx context.Context, id int64) (*domain.Project, error) {
	var p domain.Project
	var archived int
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, color, created_at, updated_at, archived
		FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.CreatedAt, &p.UpdatedAt, &archived)
	if err == sql.ErrNoRows {
		return nil, notFound("project", id)
	}
	if err != nil {
		return nil, apperrWrapIO("failed to get project", err)
	}
	p.Archived = archived != 0
	return &p, nil
}

func (r *projectRepository) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT id, name, description, color, created_at, updated_at, archived FROM projects`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrWrapIO("failed to list projects", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		var archived int
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Color, &p.CreatedAt, &p.UpdatedAt, &archived); err != nil {
			return nil, apperrWrapIO("failed to scan project", err)
		}
		p.Archived = archived != 0
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

func (r *projectRepository) Update(ctx context.Context, p *domain.Project) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET name = ?, description = ?, color = ?, updated_at = ?, archived = ?
		WHERE id = ?
	`, p.Name, p.Description, p.Color, p.UpdatedAt, p.Archived, p.ID)
	if err != nil {
		if isUniqueConstraintError(err) {
			return apperr.New(apperr.Conflict, fmt.Sprintf("project named %q already exists", p.Name))
		}
		return apperrWrapIO("failed to update project", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("project", p.ID)
	}
	return nil
}

// Delete hard-deletes a project, but only when no activity references it;
// projects with tracked history report Conflict so the caller falls back to
// Archive instead, per the soft-archive-when-referenced lifecycle rule.
func (r *projectRepository) Delete(ctx context.Context, id int64) error {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM activities WHERE project_id = ?`, id).Scan(&count); err != nil {
		return apperrWrapIO("failed to check project references", err)
	}
	if count > 0 {
		return apperr.New(apperr.Conflict, "project has tracked activities; archive it instead of deleting")
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return apperrWrapIO("failed to delete project", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("project", id)
	}
	return nil
}

func (r *projectRepository) Archive(ctx context.Context, id int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE projects SET archived = 1, updated_at = ? WHERE id = ?
	`, now, id)
	if err != nil {
		return apperrWrapIO("failed to archive project", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("project", id)
	}
	return nil
}
