package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kodeflow/tempod/internal/adapters/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the live-status terminal view",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := tui.Run(setupSignalHandler(), co); err != nil {
			return fmt.Errorf("tui error: %w", err)
		}
		return nil
	},
}
