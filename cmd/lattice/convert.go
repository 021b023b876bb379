package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/cli"
)

var convertCmd = &cobra.Command{
	Use:   "convert <source> <destination>",
	Short: "Convert a board set to the format of the destination extension",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("no-audio") {
			skip, _ := cmd.Flags().GetBool("no-audio")
			rt.Config.Import.LoadAudio = !skip
		}
		if cmd.Flags().Changed("no-images") {
			skip, _ := cmd.Flags().GetBool("no-images")
			rt.Config.Import.LoadImages = !skip
		}
		return cli.Convert(cmd.Context(), rt, args[0], args[1], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().Bool("no-audio", false, "Do not carry recorded audio")
	convertCmd.Flags().Bool("no-images", false, "Do not carry image data")
}
