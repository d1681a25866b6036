package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"reluxc/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "reluxc",
	Short: "Relux plugin compiler",
	Long:  `reluxc compiles tree-rewriting plugins into a Babel visitor and an SWC visitor with identical behavior`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(mappingsCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
