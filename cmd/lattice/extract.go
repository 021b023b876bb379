package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/cli"
)

var extractCmd = &cobra.Command{
	Use:   "extract <source>",
	Short: "List the translatable texts of a board set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		return cli.Extract(cmd.Context(), rt, args[0], cmd.OutOrStdout(), asJSON)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().Bool("json", false, "Print a JSON array instead of one text per line")
}
