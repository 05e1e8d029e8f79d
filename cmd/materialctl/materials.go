package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var materialsCmd = &cobra.Command{
	Use:   "materials",
	Short: "Manage uploaded materials",
}

var (
	uploadProject string
	uploadSlot    string
)

var materialsUploadCmd = &cobra.Command{
	Use:   "upload <platform> <file>",
	Short: "Validate and upload a material file into an asset slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Material struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"material"`
			Warnings []string `json:"warnings"`
		}
		fields := map[string]string{
			"projectId": uploadProject,
			"platform":  args[0],
			"assetSlot": uploadSlot,
		}
		if err := client.uploadFile(apiBase+"/materials", args[1], fields, &result); err != nil {
			return fmt.Errorf("upload failed: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Material %s accepted (status: %s)\n", truncate(result.Material.ID, 12), result.Material.Status)
		for _, warning := range result.Warnings {
			fmt.Printf("Warning: %s\n", warning)
		}
		return nil
	},
}

var materialProjectFilter string

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a project's materials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if materialProjectFilter == "" {
			return fmt.Errorf("--project is required")
		}
		client := newClient()

		var result struct {
			Materials []struct {
				ID        string `json:"id"`
				Platform  string `json:"platform"`
				AssetSlot string `json:"assetSlot"`
				FileName  string `json:"fileName"`
				Status    string `json:"status"`
				Comments  string `json:"comments"`
			} `json:"materials"`
		}
		path := fmt.Sprintf("%s/projects/%s/materials", apiBase, materialProjectFilter)
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list materials: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Platform", "Slot", "File", "Status", "Comments"}
		rows := make([][]string, 0, len(result.Materials))
		for _, m := range result.Materials {
			rows = append(rows, []string{
				truncate(m.ID, 12),
				m.Platform,
				m.AssetSlot,
				m.FileName,
				m.Status,
				truncate(m.Comments, 40),
			})
		}
		printTable(headers, rows)
		return nil
	},
}

var materialsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get material details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		result, err := client.getRaw(fmt.Sprintf("%s/materials/%s", apiBase, args[0]))
		if err != nil {
			return fmt.Errorf("failed to get material: %w", err)
		}
		return printOutput(result)
	},
}

var statusComment string

var materialsStatusCmd = &cobra.Command{
	Use:   "status <id> <status>",
	Short: "Move a material to a new status (pending, in_review, approved, needs_correction)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]string{"status": args[1], "comments": statusComment}
		if err := client.postJSON(fmt.Sprintf("%s/materials/%s/status", apiBase, args[0]), body, &result); err != nil {
			return fmt.Errorf("failed to change status: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Material %s moved to %s\n", truncate(args[0], 12), args[1])
		return nil
	},
}

var materialsRollbackCmd = &cobra.Command{
	Use:   "rollback <id> <version-id>",
	Short: "Restore a material to a prior version",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]string{"versionId": args[1]}
		if err := client.postJSON(fmt.Sprintf("%s/materials/%s/rollback", apiBase, args[0]), body, &result); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Material %s rolled back to version %s\n", truncate(args[0], 12), truncate(args[1], 12))
		return nil
	},
}

var materialsVersionsCmd = &cobra.Command{
	Use:   "versions <id>",
	Short: "List a material's version history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Versions []struct {
				ID            string `json:"id"`
				VersionNumber int    `json:"versionNumber"`
				FileName      string `json:"fileName"`
				FileSize      int64  `json:"fileSize"`
				FileHash      string `json:"fileHash"`
				UploadedBy    string `json:"uploadedBy"`
				CreatedAt     string `json:"createdAt"`
			} `json:"versions"`
		}
		if err := client.getJSON(fmt.Sprintf("%s/materials/%s/versions", apiBase, args[0]), &result); err != nil {
			return fmt.Errorf("failed to list versions: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Version", "ID", "File", "Size", "Hash", "Uploader", "Created"}
		rows := make([][]string, 0, len(result.Versions))
		for _, v := range result.Versions {
			rows = append(rows, []string{
				fmt.Sprintf("#%d", v.VersionNumber),
				truncate(v.ID, 12),
				v.FileName,
				fmt.Sprintf("%d", v.FileSize),
				truncate(v.FileHash, 12),
				v.UploadedBy,
				v.CreatedAt,
			})
		}
		printTable(headers, rows)
		return nil
	},
}

var materialsHistoryCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show a material's audit trail",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		result, err := client.getRaw(fmt.Sprintf("%s/materials/%s/history", apiBase, args[0]))
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		return printOutput(result)
	},
}

func init() {
	materialsUploadCmd.Flags().StringVar(&uploadProject, "project", "", "Project ID (required)")
	materialsUploadCmd.Flags().StringVar(&uploadSlot, "slot", "", "Asset slot (required)")
	_ = materialsUploadCmd.MarkFlagRequired("project")
	_ = materialsUploadCmd.MarkFlagRequired("slot")
	materialsListCmd.Flags().StringVar(&materialProjectFilter, "project", "", "Project ID (required)")
	materialsStatusCmd.Flags().StringVarP(&statusComment, "comment", "c", "", "Reviewer comment")

	materialsCmd.AddCommand(materialsUploadCmd)
	materialsCmd.AddCommand(materialsListCmd)
	materialsCmd.AddCommand(materialsGetCmd)
	materialsCmd.AddCommand(materialsStatusCmd)
	materialsCmd.AddCommand(materialsRollbackCmd)
	materialsCmd.AddCommand(materialsVersionsCmd)
	materialsCmd.AddCommand(materialsHistoryCmd)
}
