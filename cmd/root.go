// Package cmd provides the CLI surface for the time-tracking daemon. Every
// subcommand goes through a *coordinator.Coordinator the way the MCP and TUI
// shells do, never touching the core components directly.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kodeflow/tempod/internal/coordinator"
)

var (
	// Version info, set at build time via ldflags.
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	configPath string
	dataDir    string
	jsonOutput bool

	co *coordinator.Coordinator
)

var rootCmd = &cobra.Command{
	Use:   "tempod",
	Short: "A desktop activity tracker and pomodoro coordinator",
	Long: `tempod samples the active window on an interval, classifies it against
user-defined rules, and coordinates pomodoro sessions, plugins, and
configuration around that activity stream.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startCoordinator()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return stopCoordinator()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (default: {config_dir}/time_tracker/config.json)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding the sqlite store (default: the config's storage.data_dir)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output results as JSON")

	viper.SetEnvPrefix("TEMPOD")
	viper.AutomaticEnv()
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("data-dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("tempod\nVersion: {{.Version}}\n")

	rootCmd.AddCommand(pomodoroCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(ruleCmd)
	rootCmd.AddCommand(pluginCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(tuiCmd)
}

// startCoordinator wires and starts the Coordinator from flag/env-resolved
// paths. Every subcommand's RunE can assume co is live by the time it runs.
func startCoordinator() error {
	resolvedConfig := viper.GetString("config")
	resolvedData := viper.GetString("data-dir")

	c, err := coordinator.New(coordinator.Deps{
		ConfigPath: resolvedConfig,
		DataDir:    resolvedData,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	if err := c.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	co = c
	return nil
}

func stopCoordinator() error {
	if co == nil {
		return nil
	}
	return co.Stop(context.Background())
}

// setupSignalHandler returns a context canceled on SIGINT/SIGTERM, for
// subcommands that run until interrupted (tui, mcp).
func setupSignalHandler() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx
}
