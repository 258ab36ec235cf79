package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current activity and pomodoro state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		activity, err := co.GetCurrentActivity(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current activity: %w", err)
		}
		pomodoro, err := co.GetCurrentPomodoro(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current pomodoro: %w", err)
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"activity": activity, "pomodoro": pomodoro})
		}

		if activity != nil {
			fmt.Printf("activity: %s — %s (%s)\n", activity.AppName, activity.WindowTitle, activity.Category)
		} else {
			fmt.Println("activity: none")
		}
		fmt.Printf("pomodoro: %s, %s remaining\n", pomodoro.State, pomodoro.Remaining)
		return nil
	},
}
