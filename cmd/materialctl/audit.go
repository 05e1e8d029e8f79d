package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	auditAction string
	auditActor  string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse the audit ledger (admin only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		query := url.Values{}
		if auditAction != "" {
			query.Set("action", auditAction)
		}
		if auditActor != "" {
			query.Set("actor", auditActor)
		}
		path := apiBase + "/audit"
		if len(query) > 0 {
			path += "?" + query.Encode()
		}

		var result struct {
			Events []struct {
				ID         string `json:"id"`
				Action     string `json:"action"`
				Actor      string `json:"actor"`
				EntityType string `json:"entityType"`
				EntityID   string `json:"entityId"`
				CreatedAt  string `json:"createdAt"`
			} `json:"events"`
			TotalSize int `json:"totalSize"`
		}
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list audit events: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"ID", "Action", "Actor", "Entity", "Created"}
		rows := make([][]string, 0, len(result.Events))
		for _, e := range result.Events {
			entity := fmt.Sprintf("%s/%s", e.EntityType, truncate(e.EntityID, 12))
			rows = append(rows, []string{
				truncate(e.ID, 12),
				e.Action,
				e.Actor,
				entity,
				e.CreatedAt,
			})
		}
		printTable(headers, rows)
		fmt.Printf("Total: %d\n", result.TotalSize)
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action")
	auditCmd.Flags().StringVar(&auditActor, "actor", "", "Filter by actor")
}
