package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

const specsAPIBase = "/api/v1/specs"

var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "List supported platforms",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Platforms []string `json:"platforms"`
		}
		if err := client.getJSON(specsAPIBase+"/platforms", &result); err != nil {
			return fmt.Errorf("failed to list platforms: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		rows := make([][]string, 0, len(result.Platforms))
		for _, p := range result.Platforms {
			rows = append(rows, []string{p})
		}
		printTable([]string{"Platform"}, rows)
		return nil
	},
}

var specsCmd = &cobra.Command{
	Use:   "specs",
	Short: "Manage platform asset specs",
}

var specsListCmd = &cobra.Command{
	Use:   "list <platform>",
	Short: "List asset slots and their specs for a platform",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		var result struct {
			Slots []struct {
				AssetSlot  string `json:"assetSlot"`
				Overridden bool   `json:"overridden"`
				Spec       struct {
					Width         *int     `json:"width"`
					Height        *int     `json:"height"`
					Formats       []string `json:"formats"`
					TransparentBG *bool    `json:"transparentBg"`
					MaxSizeBytes  int64    `json:"maxSizeBytes"`
				} `json:"spec"`
			} `json:"slots"`
		}
		path := fmt.Sprintf("%s/platforms/%s/slots", specsAPIBase, args[0])
		if err := client.getJSON(path, &result); err != nil {
			return fmt.Errorf("failed to list slots: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}

		headers := []string{"Slot", "Dimensions", "Formats", "Transparency", "Max Size", "Source"}
		rows := make([][]string, 0, len(result.Slots))
		for _, s := range result.Slots {
			dims := "-"
			if s.Spec.Width != nil && s.Spec.Height != nil {
				dims = fmt.Sprintf("%dx%d", *s.Spec.Width, *s.Spec.Height)
			}
			transparency := "any"
			if s.Spec.TransparentBG != nil {
				if *s.Spec.TransparentBG {
					transparency = "required"
				} else {
					transparency = "forbidden"
				}
			}
			source := "default"
			if s.Overridden {
				source = "override"
			}
			rows = append(rows, []string{
				s.AssetSlot,
				dims,
				fmt.Sprintf("%v", s.Spec.Formats),
				transparency,
				strconv.FormatInt(s.Spec.MaxSizeBytes, 10),
				source,
			})
		}
		printTable(headers, rows)
		return nil
	},
}

var specsGetCmd = &cobra.Command{
	Use:   "get <platform> <slot>",
	Short: "Get the effective spec for an asset slot",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()

		path := fmt.Sprintf("%s/platforms/%s/slots/%s", specsAPIBase, args[0], args[1])
		result, err := client.getRaw(path)
		if err != nil {
			return fmt.Errorf("failed to get spec: %w", err)
		}
		return printOutput(result)
	},
}

var specFile string

var specsSetCmd = &cobra.Command{
	Use:   "set <platform> <slot>",
	Short: "Create or update a spec override (admin only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(specFile)
		if err != nil {
			return fmt.Errorf("read spec file: %w", err)
		}
		var spec map[string]any
		if err := json.Unmarshal(data, &spec); err != nil {
			return fmt.Errorf("parse spec file: %w", err)
		}

		client := newClient()
		path := fmt.Sprintf("%s/platforms/%s/slots/%s", specsAPIBase, args[0], args[1])

		var result map[string]any
		if err := client.putJSON(path, spec, &result); err != nil {
			return fmt.Errorf("failed to set spec: %w", err)
		}

		if outputFmt == "json" || outputFmt == "yaml" {
			return printOutput(result)
		}
		fmt.Printf("Spec override for %s/%s saved\n", args[0], args[1])
		return nil
	},
}

var specsUnsetCmd = &cobra.Command{
	Use:   "unset <platform> <slot>",
	Short: "Retire a spec override, restoring the built-in default (admin only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		path := fmt.Sprintf("%s/platforms/%s/slots/%s", specsAPIBase, args[0], args[1])
		if err := client.deleteJSON(path, nil); err != nil {
			return fmt.Errorf("failed to unset spec: %w", err)
		}
		fmt.Printf("Spec override for %s/%s retired\n", args[0], args[1])
		return nil
	},
}

func init() {
	specsSetCmd.Flags().StringVarP(&specFile, "file", "f", "", "Path to a JSON spec file (required)")
	_ = specsSetCmd.MarkFlagRequired("file")

	specsCmd.AddCommand(specsListCmd)
	specsCmd.AddCommand(specsGetCmd)
	specsCmd.AddCommand(specsSetCmd)
	specsCmd.AddCommand(specsUnsetCmd)
}
