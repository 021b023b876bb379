package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/cli"
)

var translateCmd = &cobra.Command{
	Use:   "translate <source>",
	Short: "Write a translated copy of a board set",
	Long: `Applies the stored translation table for --lang to the board set and writes
<name>_<lang><ext> next to it (or --out). With --seed, texts missing from the
table are added to it with an empty translation first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lang, _ := cmd.Flags().GetString("lang")
		out, _ := cmd.Flags().GetString("out")
		seed, _ := cmd.Flags().GetBool("seed")
		return cli.Translate(cmd.Context(), rt, cli.TranslateOptions{
			Source:      args[0],
			Lang:        lang,
			Destination: out,
			Seed:        seed,
		}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)
	translateCmd.Flags().StringP("lang", "l", "", "Target language code (e.g. fr, es-MX)")
	translateCmd.Flags().StringP("out", "o", "", "Destination path")
	translateCmd.Flags().Bool("seed", false, "Add missing texts to the translation table")
	_ = translateCmd.MarkFlagRequired("lang")
}
