package domain

import "time"

// Project groups activities and pomodoro sessions under a named effort.
type Project struct {
	ID          int64
	Name        string
	Description string
	Color       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Archived    bool
}

// NewProject constructs a Project ready to be saved; validation of Name is
// the caller's responsibility (see apperr.Validation at the Coordinator).
func NewProject(name, description, color string, now time.Time) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Archive soft-archives the project rather than deleting it, preserving any
// activities that reference it.
func (p *Project) Archive(now time.Time) {
	p.Archived = true
	p.UpdatedAt = now
}
