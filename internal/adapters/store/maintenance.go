package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kodeflow/tempod/internal/ports"
)

// backupTimeLayout produces names like backup_20260730_143205_123.db, sortable
// lexicographically in the same order as chronologically.
const backupTimeLayout = "20060102_150405"

// Backup snapshots the live database into destDir via VACUUM INTO, the same
// single-statement approach the original backup routine used before
// delegating to a (never-finished) file-copy plugin.
func (s *sqliteStore) Backup(ctx context.Context, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", apperrWrapIO("failed to create backup directory", err)
	}

	now := time.Now()
	name := fmt.Sprintf("backup_%s_%03d.db", now.Format(backupTimeLayout), now.Nanosecond()/1_000_000)
	dest := filepath.Join(destDir, name)

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return "", apperrWrapIO("failed to write backup", err)
	}

	s.lastBackup = dest
	backedUpAt := now
	s.lastBackupAt = &backedUpAt

	return dest, nil
}

// Vacuum reclaims free pages. It runs VACUUM unconditionally; no size
// threshold is checked, and nothing in the daemon calls it.
func (s *sqliteStore) Vacuum(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return apperrWrapIO("failed to vacuum database", err)
	}
	return nil
}

// CleanupOldBackups keeps the maxCount most recent backup files in backupDir
// and removes the rest, newest-first by filename (which sorts chronologically
// thanks to backupTimeLayout).
func (s *sqliteStore) CleanupOldBackups(ctx context.Context, backupDir string, maxCount int) error {
	entries, err := os.ReadDir(backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperrWrapIO("failed to list backup directory", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == ".db" {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if len(names) <= maxCount {
		return nil
	}

	for _, name := range names[maxCount:] {
		if err := os.Remove(filepath.Join(backupDir, name)); err != nil && !os.IsNotExist(err) {
			return apperrWrapIO(fmt.Sprintf("failed to remove old backup %s", name), err)
		}
	}
	return nil
}

// CleanupOldData purges activities, pomodoro sessions, and notifications
// older than days. Nothing in the daemon calls it on a schedule.
func (s *sqliteStore) CleanupOldData(ctx context.Context, days int) error {
	cutoff := time.Now().AddDate(0, 0, -days)

	if _, err := s.activities.DeleteOlderThan(ctx, cutoff); err != nil {
		return err
	}
	if _, err := s.sessions.DeleteOlderThan(ctx, cutoff); err != nil {
		return err
	}
	if _, err := s.notifications.DeleteOlderThan(ctx, cutoff); err != nil {
		return err
	}
	return nil
}

// IntegrityCheck runs SQLite's built-in consistency check and reports row
// counts and the last known backup location alongside it.
func (s *sqliteStore) IntegrityCheck(ctx context.Context) (*ports.IntegrityReport, error) {
	var result string
	if err := s.db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return nil, apperrWrapIO("failed to run integrity check", err)
	}

	report := &ports.IntegrityReport{
		OK:             result == "ok",
		LastBackupPath: s.lastBackup,
		LastBackupAt:   s.lastBackupAt,
	}

	if s.path != ":memory:" {
		if info, err := os.Stat(s.path); err == nil {
			report.SizeBytes = info.Size()
		}
	}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"projects", &report.ProjectCount},
		{"activities", &report.ActivityCount},
		{"pomodoro_sessions", &report.SessionCount},
		{"rules", &report.RuleCount},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table)).Scan(c.dest); err != nil {
			return nil, apperrWrapIO(fmt.Sprintf("failed to count %s", c.table), err)
		}
	}

	return report, nil
}
