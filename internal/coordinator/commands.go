package coordinator

import (
	"context"
	"encoding/json"

	"github.com/kodeflow/tempod/internal/apperr"
	"github.com/kodeflow/tempod/internal/config"
	"github.com/kodeflow/tempod/internal/domain"
)

// StartPomodoro begins a new work session, optionally against a project and
// with the given tags.
func (co *Coordinator) StartPomodoro(ctx context.Context, projectID *int64, tags []string) error {
	return co.timer.Start(ctx, projectID, tags)
}

// PausePomodoro freezes the active phase's remaining time.
func (co *Coordinator) PausePomodoro(ctx context.Context) error {
	return co.timer.Pause(ctx)
}

// ResumePomodoro returns from Paused to the phase it paused from.
func (co *Coordinator) ResumePomodoro(ctx context.Context) error {
	return co.timer.Resume(ctx)
}

// StopPomodoro ends the active session early.
func (co *Coordinator) StopPomodoro(ctx context.Context) error {
	return co.timer.Stop(ctx)
}

// CreateProject saves a new Project after validating its name.
func (co *Coordinator) CreateProject(ctx context.Context, name, description, color string) (*domain.Project, error) {
	if name == "" {
		return nil, apperr.New(apperr.Validation, "project name must not be empty")
	}
	p := domain.NewProject(name, description, color, co.clock.WallNow())
	if err := co.store.Projects().Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProject persists changes to an existing project.
func (co *Coordinator) UpdateProject(ctx context.Context, p *domain.Project) error {
	if p.Name == "" {
		return apperr.New(apperr.Validation, "project name must not be empty")
	}
	p.UpdatedAt = co.clock.WallNow()
	return co.store.Projects().Update(ctx, p)
}

// DeleteProject hard-deletes a project with no tracked history; a project
// referenced by activities is archived instead, per the soft-archive
// lifecycle rule.
func (co *Coordinator) DeleteProject(ctx context.Context, id int64) error {
	err := co.store.Projects().Delete(ctx, id)
	if err == nil {
		return nil
	}
	if apperr.Is(err, apperr.Conflict) {
		return co.store.Projects().Archive(ctx, id, co.clock.WallNow())
	}
	return err
}

// ArchiveProject soft-archives a project directly, without attempting a
// hard delete first.
func (co *Coordinator) ArchiveProject(ctx context.Context, id int64) error {
	return co.store.Projects().Archive(ctx, id, co.clock.WallNow())
}

// AddRule saves a new classification rule and reloads RuleEngine so the new
// rule takes effect on the next sampled activity.
func (co *Coordinator) AddRule(ctx context.Context, r *domain.Rule) error {
	if !r.HasPattern() {
		return apperr.New(apperr.Validation, "rule must declare an app_pattern or title_pattern")
	}
	if err := co.store.Rules().Save(ctx, r); err != nil {
		return err
	}
	return co.rules.Load(ctx)
}

// UpdateRule persists changes to an existing rule and reloads RuleEngine.
func (co *Coordinator) UpdateRule(ctx context.Context, r *domain.Rule) error {
	if !r.HasPattern() {
		return apperr.New(apperr.Validation, "rule must declare an app_pattern or title_pattern")
	}
	if err := co.store.Rules().Update(ctx, r); err != nil {
		return err
	}
	return co.rules.Load(ctx)
}

// DeleteRule removes a rule and reloads RuleEngine.
func (co *Coordinator) DeleteRule(ctx context.Context, id int64) error {
	if err := co.store.Rules().Delete(ctx, id); err != nil {
		return err
	}
	return co.rules.Load(ctx)
}

// EnablePlugin turns on a registered plugin.
func (co *Coordinator) EnablePlugin(ctx context.Context, id string) error {
	return co.host.Enable(ctx, id)
}

// DisablePlugin turns off a registered plugin.
func (co *Coordinator) DisablePlugin(ctx context.Context, id string) error {
	return co.host.Disable(ctx, id)
}

// ConfigurePlugin validates and persists new plugin configuration.
func (co *Coordinator) ConfigurePlugin(ctx context.Context, id string, cfg json.RawMessage) error {
	return co.host.Configure(ctx, id, cfg)
}

// UpdateConfig validates, saves, and applies a full configuration update.
// Components already running keep their current durations until restarted;
// the next Start picks up the new values, consistent with the teacher's
// restart-to-apply settings model.
func (co *Coordinator) UpdateConfig(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return apperr.Wrap(apperr.InvalidConfig, "invalid configuration", err)
	}
	if err := config.Save(co.cfgPath, cfg); err != nil {
		return err
	}
	co.cfg = cfg
	co.bus.Publish(domain.Event{Kind: domain.EventConfigUpdated, At: co.clock.WallNow(), Payload: domain.ConfigUpdatedPayload{}})
	return nil
}

// Quit runs the shutdown sequence. It is the command surface's name for
// Stop, so callers driving Coordinator purely through Commands/Queries never
// need to reach for the lifecycle method directly.
func (co *Coordinator) Quit(ctx context.Context) error {
	return co.Stop(ctx)
}
