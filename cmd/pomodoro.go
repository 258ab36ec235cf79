package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	startProjectID int64
	startTags      []string
)

var pomodoroCmd = &cobra.Command{
	Use:     "pomodoro",
	Aliases: []string{"pom"},
	Short:   "Control the pomodoro timer",
}

var pomodoroStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new pomodoro work session",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		var projectID *int64
		if startProjectID != 0 {
			projectID = &startProjectID
		}
		if err := co.StartPomodoro(ctx, projectID, startTags); err != nil {
			return fmt.Errorf("failed to start pomodoro: %w", err)
		}
		fmt.Println("pomodoro started")
		return nil
	},
}

var pomodoroPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active pomodoro phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := co.PausePomodoro(context.Background()); err != nil {
			return fmt.Errorf("failed to pause pomodoro: %w", err)
		}
		fmt.Println("pomodoro paused")
		return nil
	},
}

var pomodoroResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused pomodoro phase",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := co.ResumePomodoro(context.Background()); err != nil {
			return fmt.Errorf("failed to resume pomodoro: %w", err)
		}
		fmt.Println("pomodoro resumed")
		return nil
	},
}

var pomodoroStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the active pomodoro session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := co.StopPomodoro(context.Background()); err != nil {
			return fmt.Errorf("failed to stop pomodoro: %w", err)
		}
		fmt.Println("pomodoro stopped")
		return nil
	},
}

func init() {
	pomodoroStartCmd.Flags().Int64VarP(&startProjectID, "project", "p", 0, "project id to associate with this session")
	pomodoroStartCmd.Flags().StringSliceVarP(&startTags, "tags", "t", nil, "tags to attach to this session")

	pomodoroCmd.AddCommand(pomodoroStartCmd)
	pomodoroCmd.AddCommand(pomodoroPauseCmd)
	pomodoroCmd.AddCommand(pomodoroResumeCmd)
	pomodoroCmd.AddCommand(pomodoroStopCmd)
}
