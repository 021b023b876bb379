package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <source>",
	Short: "Check a board set for consistency",
	Long:  `Loads the board set and reports duplicate ids, grid conflicts, dangling navigation and pages unreachable from the root.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		report, err := cli.Validate(cmd.Context(), rt, args[0], cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if !report.OK() {
			return fmt.Errorf("validation failed with %d errors", len(report.Errors()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
