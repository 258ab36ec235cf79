package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or update the daemon's configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(co.GetConfig())
	},
}

var (
	configWorkDuration  string
	configShortBreak    string
	configLongBreak     string
	configPollInterval  string
	configIdleThreshold string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update one or more configuration fields and persist them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := co.GetConfig()

		if configWorkDuration != "" {
			d, err := time.ParseDuration(configWorkDuration)
			if err != nil {
				return fmt.Errorf("invalid --work-duration: %w", err)
			}
			cfg.Pomodoro.WorkDuration = durationFrom(d)
		}
		if configShortBreak != "" {
			d, err := time.ParseDuration(configShortBreak)
			if err != nil {
				return fmt.Errorf("invalid --short-break: %w", err)
			}
			cfg.Pomodoro.ShortBreakDuration = durationFrom(d)
		}
		if configLongBreak != "" {
			d, err := time.ParseDuration(configLongBreak)
			if err != nil {
				return fmt.Errorf("invalid --long-break: %w", err)
			}
			cfg.Pomodoro.LongBreakDuration = durationFrom(d)
		}
		if configPollInterval != "" {
			d, err := time.ParseDuration(configPollInterval)
			if err != nil {
				return fmt.Errorf("invalid --poll-interval: %w", err)
			}
			cfg.Sampler.PollInterval = durationFrom(d)
		}
		if configIdleThreshold != "" {
			d, err := time.ParseDuration(configIdleThreshold)
			if err != nil {
				return fmt.Errorf("invalid --idle-threshold: %w", err)
			}
			cfg.Sampler.IdleThreshold = durationFrom(d)
		}

		if err := co.UpdateConfig(context.Background(), cfg); err != nil {
			return fmt.Errorf("failed to update config: %w", err)
		}
		fmt.Println("configuration updated")
		return nil
	},
}

func init() {
	configSetCmd.Flags().StringVar(&configWorkDuration, "work-duration", "", "pomodoro work duration, e.g. 25m")
	configSetCmd.Flags().StringVar(&configShortBreak, "short-break", "", "short break duration, e.g. 5m")
	configSetCmd.Flags().StringVar(&configLongBreak, "long-break", "", "long break duration, e.g. 15m")
	configSetCmd.Flags().StringVar(&configPollInterval, "poll-interval", "", "activity sampler poll interval, e.g. 30s")
	configSetCmd.Flags().StringVar(&configIdleThreshold, "idle-threshold", "", "idle detection threshold, e.g. 5m")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
