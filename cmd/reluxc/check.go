package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reluxc/internal/driver"
	"reluxc/internal/source"
)

var (
	checkEntry  string
	checkFormat string
)

func init() {
	checkCmd.Flags().StringVar(&checkEntry, "entry", "", "check this AST document instead of consulting plugin.toml")
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "diagnostic format (pretty|json|msgpack)")
}

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Run semantic analysis without generating code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDir := "."
		if len(args) == 1 {
			startDir = args[0]
		}
		in, err := resolveInput(checkEntry, startDir, "")
		if err != nil {
			return err
		}

		fs := source.NewFileSet()
		prog, err := driver.LoadFile(fs, in.entry)
		if err != nil {
			return err
		}
		res := driver.CheckOnly(prog, driver.Options{MaxDiagnostics: maxDiagnostics(cmd)})
		hadErrors, err := reportDiagnostics(cmd, checkFormat, res.Bag, fs)
		if err != nil {
			return err
		}
		if hadErrors {
			return fmt.Errorf("check failed")
		}
		if res.Bag.Len() == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", prog.DeclName())
		}
		return nil
	},
}
