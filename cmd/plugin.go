package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var pluginConfigJSON string

var pluginCmd = &cobra.Command{
	Use:   "plugin",
	Short: "Manage plugins",
}

var pluginEnableCmd = &cobra.Command{
	Use:   "enable <id>",
	Short: "Enable a plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := co.EnablePlugin(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to enable plugin: %w", err)
		}
		fmt.Printf("enabled plugin %s\n", args[0])
		return nil
	},
}

var pluginDisableCmd = &cobra.Command{
	Use:   "disable <id>",
	Short: "Disable a plugin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := co.DisablePlugin(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to disable plugin: %w", err)
		}
		fmt.Printf("disabled plugin %s\n", args[0])
		return nil
	},
}

var pluginConfigureCmd = &cobra.Command{
	Use:   "configure <id>",
	Short: "Set a plugin's configuration from a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !json.Valid([]byte(pluginConfigJSON)) {
			return fmt.Errorf("--config must be a valid JSON document")
		}
		if err := co.ConfigurePlugin(context.Background(), args[0], json.RawMessage(pluginConfigJSON)); err != nil {
			return fmt.Errorf("failed to configure plugin: %w", err)
		}
		fmt.Printf("configured plugin %s\n", args[0])
		return nil
	},
}

func init() {
	pluginConfigureCmd.Flags().StringVar(&pluginConfigJSON, "config", "{}", "plugin configuration as a JSON document")

	pluginCmd.AddCommand(pluginEnableCmd)
	pluginCmd.AddCommand(pluginDisableCmd)
	pluginCmd.AddCommand(pluginConfigureCmd)
}
