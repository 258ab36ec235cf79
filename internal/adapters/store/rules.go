package store

import (
	"context"
	"database/sql"

	"github.com/kodeflow/tempod/internal/domain"
	"github.com/kodeflow/tempod/internal/ports"
)

type ruleRepository struct {
	db *sql.DB
}

func newRuleRepository(db *sql.DB) ports.RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) Save(ctx context.Context, rule *domain.Rule) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO rules (name, app_pattern, title_pattern, category, is_productive, priority)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rule.Name, rule.AppPattern, rule.TitlePattern, rule.Category, rule.IsProductive, rule.Priority)
	if err != nil {
		return apperrWrapIO("failed to save rule", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return apperrWrapIO("failed to read rule id", err)
	}
	rule.ID = id
	return nil
}

func (r *ruleRepository) Get(ctx context.Context, id int64) (*domain.Rule, error) {
	var rule domain.Rule
	var productive int
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, app_pattern, title_pattern, category, is_productive, priority
		FROM rules WHERE id = ?
	`, id).Scan(&rule.ID, &rule.Name, &rule.AppPattern, &rule.TitlePattern, &rule.Category, &productive, &rule.Priority)
	if err == sql.ErrNoRows {
		return nil, notFound("rule", id)
	}
	if err != nil {
		return nil, apperrWrapIO("failed to get rule", err)
	}
	rule.IsProductive = productive != 0
	return &rule, nil
}

// List returns every rule ordered by descending priority, ties broken by
// descending id so a newer rule wins over an older one at equal priority.
func (r *ruleRepository) List(ctx context.Context) ([]*domain.Rule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, app_pattern, title_pattern, category, is_productive, priority
		FROM rules
		ORDER BY priority DESC, id DESC
	`)
	if err != nil {
		return nil, apperrWrapIO("failed to list rules", err)
	}
	defer rows.Close()

	var rules []*domain.Rule
	for rows.Next() {
		var rule domain.Rule
		var productive int
		if err := rows.Scan(&rule.ID, &rule.Name, &rule.AppPattern, &rule.TitlePattern, &rule.Category, &productive, &rule.Priority); err != nil {
			return nil, apperrWrapIO("failed to scan rule", err)
		}
		rule.IsProductive = productive != 0
		rules = append(rules, &rule)
	}
	return rules, rows.Err()
}

func (r *ruleRepository) Update(ctx context.Context, rule *domain.Rule) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE rules SET name = ?, app_pattern = ?, title_pattern = ?, category = ?, is_productive = ?, priority = ?
		WHERE id = ?
	`, rule.Name, rule.AppPattern, rule.TitlePattern, rule.Category, rule.IsProductive, rule.Priority, rule.ID)
	if err != nil {
		return apperrWrapIO("failed to update rule", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("rule", rule.ID)
	}
	return nil
}

func (r *ruleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rules WHERE id = ?`, id)
	if err != nil {
		return apperrWrapIO("failed to delete rule", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return notFound("rule", id)
	}
	return nil
}
