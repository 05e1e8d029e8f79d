package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const apiBase = "/api/v1"

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage material projects",
}

var (
	projectCompany   string
	projectAppName   string
	projectDeadline  string
	projectReviewers []string
)

var projectsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		body := map[string]any{
			"name":    args[0],
			"company": projectCompany,
			"appName": projectAppName,
		}
		if projectDeadline != "" {
			body["deadline"] = projectDeadline
		}
		if len(projectReviewers) > 0 {
			body["reviewers"] = projectReviewers
		}

		var result map[string]any
		if err := client.postJSON(apiBase+"/projects", body, &result); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Project %v created\n", result["id"])
		return nil
	},
}

var projectStatusFilter string

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		path := apiBase + "/projects"
		if projectStatusFilter != "" {
			path += "?status=" + projectStatusFilter
		}

		var result struct {
			Projects []struct {
				ID        string   `json:"id"`
				Name      string   `json:"name"`
				Company   string   `json:"company"`
				Status    string   `json:"status"`
				Deadline  string   `json:"deadline"`
				CreatedBy string   `json:"createdBy"`
				Reviewers []string `json:"reviewers"`
			} `json:"projects"`
			TotalSize int `json:"totalSize"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Name", "Company", "Status", "Deadline", "Reviewers"}
		rows := make([][]string, 0, len(result.Projects))
		for _, p := range result.Projects {
			rows = append(rows, []string{
				truncate(p.ID, 12),
				p.Name,
				p.Company,
				p.Status,
				truncate(p.Deadline, 10),
				fmt.Sprintf("%d", len(p.Reviewers)),
			})
		}
		printTable(headers, rows)
		fmt.Printf("Total: %d\n", result.TotalSize)
		return nil
	},
}

var projectsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get project details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		result, err := client.getRaw(fmt.Sprintf("%s/projects/%s", apiBase, args[0]))
		if err != nil {
			return fmt.Errorf("failed to get project: %w", err)
		}
		return printOutput(result)
	},
}

var projectsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a project to a new status (draft, in_progress, completed, cancelled)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]string{"status": args[1]}
		if err := client.patchJSON(fmt.Sprintf("%s/projects/%s/status", apiBase, args[0]), body, &result); err != nil {
			return fmt.Errorf("failed to update project status: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Project %s moved to %s\n", truncate(args[0], 12), args[1])
		return nil
	},
}

var projectsAssignCmd = &cobra.Command{
	Use:   "assign <id> <reviewer>...",
	Short: "Replace a project's reviewer set (admin only)",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]any{"reviewers": args[1:]}
		if err := client.putJSON(fmt.Sprintf("%s/projects/%s/reviewers", apiBase, args[0]), body, &result); err != nil {
			return fmt.Errorf("failed to assign reviewers: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Reviewers for project %s: %v\n", truncate(args[0], 12), args[1:])
		return nil
	},
}

var projectsStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Show project completion statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		result, err := client.getRaw(fmt.Sprintf("%s/projects/%s/stats", apiBase, args[0]))
		if err != nil {
			return fmt.Errorf("failed to get project stats: %w", err)
		}
		return printOutput(result)
	},
}

func init() {
	projectsCreateCmd.Flags().StringVar(&projectCompany, "company", "", "Client company name")
	projectsCreateCmd.Flags().StringVar(&projectAppName, "app", "", "Application name")
	projectsCreateCmd.Flags().StringVar(&projectDeadline, "deadline", "", "Deadline (RFC3339)")
	projectsCreateCmd.Flags().StringSliceVar(&projectReviewers, "reviewers", nil, "Reviewer identities")
	projectsListCmd.Flags().StringVar(&projectStatusFilter, "status", "", "Filter by project status")

	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsGetCmd)
	projectsCmd.AddCommand(projectsStatusCmd)
	projectsCmd.AddCommand(projectsAssignCmd)
	projectsCmd.AddCommand(projectsStatsCmd)
}
