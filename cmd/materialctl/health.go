package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server health and readiness",
	RunE:  runHealth,
}

func runHealth(cmd *cobra.Command, args []string) error {
	client := newClient()

	check := func(path string) string {
		req, err := client.newRequest(http.MethodGet, path, nil)
		if err != nil {
			return err.Error()
		}
		resp, err := client.http.Do(req)
		if err != nil {
			return "unreachable"
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			return fmt.Sprintf("unhealthy (%d)", resp.StatusCode)
		}
		return string(body)
	}

	liveness := check("/healthz")
	if liveness == "unreachable" {
		return fmt.Errorf("server unreachable at %s", serverURL)
	}
	readiness := check("/readyz")

	if outputFmt == "json" || outputFmt == "yaml" {
		return printOutput(map[string]string{
			"liveness":  liveness,
			"readiness": readiness,
		})
	}

	printTable([]string{"Check", "Status"}, [][]string{
		{"Liveness", liveness},
		{"Readiness", readiness},
	})
	return nil
}
