package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodeflow/tempod/internal/export"
	"github.com/kodeflow/tempod/internal/ports"
)

var (
	exportKind   string
	exportFormat string
	exportSince  string
	exportUntil  string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export activities or pomodoro sessions as CSV or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := exportRange()
		if err != nil {
			return err
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", exportOut, err)
			}
			defer f.Close()
			out = f
		}

		format := export.Format(exportFormat)
		ctx := context.Background()

		switch exportKind {
		case "activities":
			activities, err := co.GetActivities(ctx, r)
			if err != nil {
				return fmt.Errorf("failed to query activities: %w", err)
			}
			return export.Activities(out, format, activities)
		case "sessions":
			sessions, err := co.GetPomodoroSessions(ctx, r)
			if err != nil {
				return fmt.Errorf("failed to query sessions: %w", err)
			}
			return export.PomodoroSessions(out, format, sessions)
		default:
			return fmt.Errorf("unknown --kind %q, want activities or sessions", exportKind)
		}
	},
}

func exportRange() (ports.TimeRange, error) {
	now := time.Now()
	start := now.Add(-30 * 24 * time.Hour)
	end := now
	var err error
	if exportSince != "" {
		start, err = parseRFC3339(exportSince)
		if err != nil {
			return ports.TimeRange{}, err
		}
	}
	if exportUntil != "" {
		end, err = parseRFC3339(exportUntil)
		if err != nil {
			return ports.TimeRange{}, err
		}
	}
	return ports.TimeRange{Start: start, End: end}, nil
}

func init() {
	exportCmd.Flags().StringVar(&exportKind, "kind", "activities", "activities or sessions")
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "csv or json")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "RFC3339 range start (default: 30 days ago)")
	exportCmd.Flags().StringVar(&exportUntil, "until", "", "RFC3339 range end (default: now)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default: stdout)")
}
