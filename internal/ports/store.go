package ports

import (
	"context"
	"time"

	"github.com/kodeflow/tempod/internal/domain"
)

// ProjectRepository persists Project entities.
type ProjectRepository interface {
	Save(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) error
	Delete(ctx context.Context, id int64) error
	Archive(ctx context.Context, id int64, now time.Time) error
}

// ActivityRepository persists Activity segments.
type ActivityRepository interface {
	Save(ctx context.Context, a *domain.Activity) error
	Query(ctx context.Context, r TimeRange) ([]*domain.Activity, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SessionRepository persists PomodoroSession entities.
type SessionRepository interface {
	Save(ctx context.Context, s *domain.PomodoroSession) error
	Get(ctx context.Context, id int64) (*domain.PomodoroSession, error)
	FindActive(ctx context.Context) (*domain.PomodoroSession, error)
	Update(ctx context.Context, s *domain.PomodoroSession) error
	Query(ctx context.Context, r TimeRange) ([]*domain.PomodoroSession, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RuleRepository persists classification Rules.
type RuleRepository interface {
	Save(ctx context.Context, r *domain.Rule) error
	Get(ctx context.Context, id int64) (*domain.Rule, error)
	List(ctx context.Context) ([]*domain.Rule, error)
	Update(ctx context.Context, r *domain.Rule) error
	Delete(ctx context.Context, id int64) error
}

// PluginRepository persists PluginRecord enable-state and config.
type PluginRepository interface {
	Save(ctx context.Context, r *domain.PluginRecord) error
	Get(ctx context.Context, id string) (*domain.PluginRecord, error)
	List(ctx context.Context) ([]*domain.PluginRecord, error)
}

// NotificationRepository persists Notifications.
type NotificationRepository interface {
	Save(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, limit int) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, id int64, read bool) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SummaryRepository persists the daily rollups PluginHost's built-in
// dailyrollup plugin maintains.
type SummaryRepository interface {
	Upsert(ctx context.Context, s *domain.DailySummary) error
	Get(ctx context.Context, date time.Time) (*domain.DailySummary, error)
	Query(ctx context.Context, r TimeRange) ([]*domain.DailySummary, error)
}

// IntegrityReport is the result of Store.IntegrityCheck.
type IntegrityReport struct {
	OK             bool
	SizeBytes      int64
	ProjectCount   int64
	ActivityCount  int64
	SessionCount   int64
	RuleCount      int64
	LastBackupPath string
	LastBackupAt   *time.Time
}

// Store is the combined repository and maintenance surface Coordinator and
// every core component depend on.
type Store interface {
	Projects() ProjectRepository
	Activities() ActivityRepository
	Sessions() SessionRepository
	Rules() RuleRepository
	Plugins() PluginRepository
	Notifications() NotificationRepository
	Summaries() SummaryRepository

	Migrate(ctx context.Context) error
	Backup(ctx context.Context, destDir string) (string, error)
	Vacuum(ctx context.Context) error
	CleanupOldBackups(ctx context.Context, backupDir string, maxCount int) error
	CleanupOldData(ctx context.Context, days int) error
	IntegrityCheck(ctx context.Context) (*IntegrityReport, error)

	Close() error
}
