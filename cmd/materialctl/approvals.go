package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Manage review approvals",
}

var approvalsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the acting reviewer's pending approvals",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Approvals []struct {
				ID         string `json:"id"`
				MaterialID string `json:"materialId"`
				Status     string `json:"status"`
				CreatedAt  string `json:"createdAt"`
			} `json:"approvals"`
		}
		if err := client.getJSON(apiBase+"/approvals/pending", &result); err != nil {
			return fmt.Errorf("failed to list approvals: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Material", "Status", "Created"}
		rows := make([][]string, 0, len(result.Approvals))
		for _, a := range result.Approvals {
			rows = append(rows, []string{
				truncate(a.ID, 12),
				truncate(a.MaterialID, 12),
				a.Status,
				a.CreatedAt,
			})
		}
		printTable(headers, rows)
		return nil
	},
}

var approvalComment string

func resolveApproval(verb, past string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result map[string]any
		body := map[string]string{"comments": approvalComment}
		path := fmt.Sprintf("%s/approvals/%s/%s", apiBase, args[0], verb)
		if err := client.postJSON(path, body, &result); err != nil {
			return fmt.Errorf("failed to %s: %w", verb, err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Approval %s %s\n", truncate(args[0], 12), past)
		return nil
	}
}

var approvalsApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a material",
	Args:  cobra.ExactArgs(1),
	RunE:  resolveApproval("approve", "approved"),
}

var approvalsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Send a material back for correction",
	Args:  cobra.ExactArgs(1),
	RunE:  resolveApproval("reject", "rejected"),
}

func init() {
	approvalsApproveCmd.Flags().StringVarP(&approvalComment, "comment", "c", "", "Reviewer comment")
	approvalsRejectCmd.Flags().StringVarP(&approvalComment, "comment", "c", "", "Reviewer comment")

	approvalsCmd.AddCommand(approvalsPendingCmd)
	approvalsCmd.AddCommand(approvalsApproveCmd)
	approvalsCmd.AddCommand(approvalsRejectCmd)
}
