package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	outputFmt string
	asUser    string
	asRole    string
)

var rootCmd = &cobra.Command{
	Use:   "materialctl",
	Short: "CLI for the material registry server",
	Long: `materialctl manages brand material projects, uploads, reviews, and
platform specs against a material registry server.

Identity is passed through the X-Remote-User and X-Remote-Role headers,
the same way a fronting proxy would set them.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Material server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&asUser, "as-user", "", "Identity to act as (default: MATERIAL_USER env or current user)")
	rootCmd.PersistentFlags().StringVar(&asRole, "as-role", "", "Role to act as: admin, reviewer, client (default: MATERIAL_ROLE env)")

	rootCmd.AddCommand(platformsCmd)
	rootCmd.AddCommand(specsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(materialsCmd)
	rootCmd.AddCommand(approvalsCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(healthCmd)
}

// resolvedUser returns the effective acting identity.
// Priority: --as-user flag > MATERIAL_USER env var > OS user.
func resolvedUser() string {
	if asUser != "" {
		return asUser
	}
	if u := os.Getenv("MATERIAL_USER"); u != "" {
		return u
	}
	return os.Getenv("USER")
}

// resolvedRole returns the effective acting role.
func resolvedRole() string {
	if asRole != "" {
		return asRole
	}
	return os.Getenv("MATERIAL_ROLE")
}
