package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/cli"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <source>",
	Short: "Export the navigation graph visualization",
	Long:  `Loads the board set and outputs a Mermaid diagram (graph TD) of the navigation between pages.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		highlight, _ := cmd.Flags().GetBool("highlight")
		return cli.Graph(cmd.Context(), rt, args[0], cmd.OutOrStdout(), highlight)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("highlight", false, "Mark pages unreachable from the root")
}
