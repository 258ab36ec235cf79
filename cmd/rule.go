package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kodeflow/tempod/internal/domain"
)

var (
	ruleAppPattern   string
	ruleTitlePattern string
	ruleCategory     string
	ruleProductive   bool
	rulePriority     int
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Manage activity classification rules",
}

var ruleAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a classification rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := &domain.Rule{
			Name:         args[0],
			AppPattern:   ruleAppPattern,
			TitlePattern: ruleTitlePattern,
			Category:     ruleCategory,
			IsProductive: ruleProductive,
			Priority:     rulePriority,
		}
		if err := co.AddRule(context.Background(), r); err != nil {
			return fmt.Errorf("failed to add rule: %w", err)
		}
		fmt.Printf("added rule %d: %s\n", r.ID, r.Name)
		return nil
	},
}

var ruleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List classification rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := co.GetRules(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list rules: %w", err)
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(rules)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tAPP\tTITLE\tCATEGORY\tPRODUCTIVE\tPRIORITY")
		for _, r := range rules {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\t%d\n",
				r.ID, r.Name, r.AppPattern, r.TitlePattern, r.Category, r.IsProductive, r.Priority)
		}
		return w.Flush()
	},
}

var ruleDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a classification rule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := co.DeleteRule(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete rule: %w", err)
		}
		fmt.Println("rule deleted")
		return nil
	},
}

func init() {
	ruleAddCmd.Flags().StringVar(&ruleAppPattern, "app", "", "regex matched against the foreground app name")
	ruleAddCmd.Flags().StringVar(&ruleTitlePattern, "title", "", "regex matched against the foreground window title")
	ruleAddCmd.Flags().StringVar(&ruleCategory, "category", "", "category label applied on match")
	ruleAddCmd.Flags().BoolVar(&ruleProductive, "productive", false, "mark matching activity as productive")
	ruleAddCmd.Flags().IntVar(&rulePriority, "priority", 0, "higher priority rules are tried first")

	ruleCmd.AddCommand(ruleAddCmd)
	ruleCmd.AddCommand(ruleListCmd)
	ruleCmd.AddCommand(ruleDeleteCmd)
}
