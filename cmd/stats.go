package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kodeflow/tempod/internal/ports"
)

var (
	statsSince string
	statsUntil string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show productivity, pomodoro, and category statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := statsRange()
		if err != nil {
			return err
		}
		ctx := context.Background()

		productivity, err := co.GetProductivityStats(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to compute productivity stats: %w", err)
		}
		pomodoro, err := co.GetPomodoroStats(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to compute pomodoro stats: %w", err)
		}
		categories, err := co.GetCategoryStats(ctx, r)
		if err != nil {
			return fmt.Errorf("failed to compute category stats: %w", err)
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"productivity": productivity,
				"pomodoro":     pomodoro,
				"categories":   categories,
			})
		}

		fmt.Printf("Tracked time:    %s\n", time.Duration(productivity.TotalTrackedTime))
		fmt.Printf("Productive time: %s (%.1f%%)\n", time.Duration(productivity.ProductiveTime), productivity.ProductivityRatio*100)
		fmt.Printf("Work sessions:   %d\n", pomodoro.WorkSessions)
		fmt.Printf("Breaks taken:    %d\n", pomodoro.BreaksTaken)
		fmt.Println("\nBy category:")
		for _, c := range categories {
			fmt.Printf("  %-20s %10s (%d segments)\n", c.Category, time.Duration(c.Duration), c.Count)
		}
		return nil
	},
}

func statsRange() (ports.TimeRange, error) {
	now := time.Now()
	start := now.Add(-7 * 24 * time.Hour)
	end := now
	var err error
	if statsSince != "" {
		start, err = parseRFC3339(statsSince)
		if err != nil {
			return ports.TimeRange{}, err
		}
	}
	if statsUntil != "" {
		end, err = parseRFC3339(statsUntil)
		if err != nil {
			return ports.TimeRange{}, err
		}
	}
	return ports.TimeRange{Start: start, End: end}, nil
}

func init() {
	statsCmd.Flags().StringVar(&statsSince, "since", "", "RFC3339 range start (default: 7 days ago)")
	statsCmd.Flags().StringVar(&statsUntil, "until", "", "RFC3339 range end (default: now)")
}
