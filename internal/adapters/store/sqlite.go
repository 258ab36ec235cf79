// Package store provides the SQLite implementation of ports.Store, built on
// modernc.org/sqlite exactly as the teacher codebase's storage adapter does:
// WAL journal mode, foreign keys on, one pool shared by readers and writers.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kodeflow/tempod/internal/apperr"
	"github.com/kodeflow/tempod/internal/ports"
	"modernc.org/sqlite"
)

// sqliteStore implements ports.Store using SQLite.
type sqliteStore struct {
	db            *sql.DB
	projects      ports.ProjectRepository
	activities    ports.ActivityRepository
	sessions      ports.SessionRepository
	rules         ports.RuleRepository
	plugins       ports.PluginRepository
	notifications ports.NotificationRepository
	summaries     ports.SummaryRepository
	path          string
	lastBackup    string
	lastBackupAt  *time.Time
}

// Ensure sqliteStore implements ports.Store.
var _ ports.Store = (*sqliteStore)(nil)

// New opens (creating if necessary) the SQLite database at path and runs
// migrations.
func New(path string) (ports.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperr.Wrap(apperr.IOPlatform, "failed to open database", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, apperr.Wrap(apperr.IOPlatform, "failed to enable foreign keys", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, apperr.Wrap(apperr.IOPlatform, "failed to set WAL mode", err)
	}
	// Reads and writes share one pool capped at eight connections; no
	// connection is reserved for writes, so concurrent writers are serialized
	// only by SQLite's own locking.
	db.SetMaxOpenConns(8)

	s := &sqliteStore{db: db, path: path}
	s.projects = newProjectRepository(db)
	s.activities = newActivityRepository(db)
	s.sessions = newSessionRepository(db)
	s.rules = newRuleRepository(db)
	s.plugins = newPluginRepository(db)
	s.notifications = newNotificationRepository(db)
	s.summaries = newSummaryRepository(db)

	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// NewMemory opens an in-memory database, used by tests.
func NewMemory() (ports.Store, error) {
	return New(":memory:")
}

func (s *sqliteStore) Projects() ports.ProjectRepository           { return s.projects }
func (s *sqliteStore) Activities() ports.ActivityRepository        { return s.activities }
func (s *sqliteStore) Sessions() ports.SessionRepository           { return s.sessions }
func (s *sqliteStore) Rules() ports.RuleRepository                 { return s.rules }
func (s *sqliteStore) Plugins() ports.PluginRepository             { return s.plugins }
func (s *sqliteStore) Notifications() ports.NotificationRepository { return s.notifications }
func (s *sqliteStore) Summaries() ports.SummaryRepository          { return s.summaries }

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// isUniqueConstraintError reports whether err is a SQLite unique-constraint
// violation, the signal a Conflict is surfaced from.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	sqliteErr, ok := err.(*sqlite.Error)
	return ok && sqliteErr.Code() == 2067 // SQLITE_CONSTRAINT_UNIQUE
}

func notFound(kind, id any) error {
	return apperr.New(apperr.NotFound, fmt.Sprintf("%s not found: %v", kind, id))
}

func apperrWrapIO(message string, cause error) error {
	return apperr.Wrap(apperr.IOPlatform, message, cause)
}

func migrationDrift(version int, got, want string) error {
	return apperr.New(apperr.MigrationDrift, fmt.Sprintf(
		"migration %d recorded as %q but binary expects %q", version, got, want))
}
