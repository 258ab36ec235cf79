package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	projectDescription string
	projectColor        string
	projectIncludeArch  bool
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := co.CreateProject(context.Background(), args[0], projectDescription, projectColor)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		fmt.Printf("created project %d: %s\n", p.ID, p.Name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		projects, err := co.GetProjects(context.Background(), projectIncludeArch)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(projects)
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCOLOR\tARCHIVED")
		for _, p := range projects {
			fmt.Fprintf(w, "%d\t%s\t%s\t%t\n", p.ID, p.Name, p.Color, p.Archived)
		}
		return w.Flush()
	},
}

var projectArchiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := co.ArchiveProject(context.Background(), id); err != nil {
			return fmt.Errorf("failed to archive project: %w", err)
		}
		fmt.Println("project archived")
		return nil
	},
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project (archives it instead if it has tracked history)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := co.DeleteProject(context.Background(), id); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		fmt.Println("project removed")
		return nil
	},
}

func init() {
	projectAddCmd.Flags().StringVarP(&projectDescription, "description", "d", "", "project description")
	projectAddCmd.Flags().StringVarP(&projectColor, "color", "c", "", "project color, e.g. a hex code")
	projectListCmd.Flags().BoolVar(&projectIncludeArch, "include-archived", false, "include archived projects")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectArchiveCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
