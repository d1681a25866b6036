package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"reluxc/internal/driver"
	"reluxc/internal/source"
)

var (
	buildEntry  string
	buildOutDir string
	buildFormat string
	buildUI     string
)

func init() {
	buildCmd.Flags().StringVar(&buildEntry, "entry", "", "compile this AST document instead of consulting plugin.toml")
	buildCmd.Flags().StringVar(&buildOutDir, "out-dir", "dist", "output directory when no manifest supplies one")
	buildCmd.Flags().StringVar(&buildFormat, "format", "pretty", "diagnostic format (pretty|json|msgpack)")
	buildCmd.Flags().StringVar(&buildUI, "ui", "auto", "interactive progress (auto|on|off)")
}

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Compile a plugin into both backends",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDir := "."
		if len(args) == 1 {
			startDir = args[0]
		}
		in, err := resolveInput(buildEntry, startDir, buildOutDir)
		if err != nil {
			return err
		}
		mode, err := readUIMode(buildUI)
		if err != nil {
			return err
		}

		fs := source.NewFileSet()
		prog, err := driver.LoadFile(fs, in.entry)
		if err != nil {
			return err
		}
		name := prog.DeclName()
		if in.manifest != nil && in.manifest.Plugin.Name != name {
			return fmt.Errorf("manifest names plugin %q but %s declares %q",
				in.manifest.Plugin.Name, in.entry, name)
		}

		opts := driver.Options{MaxDiagnostics: maxDiagnostics(cmd)}
		var res *driver.Result
		if shouldUseTUI(mode) {
			res, err = runCompileWithUI(cmd.Context(), name, prog, opts)
		} else {
			res, err = driver.Compile(cmd.Context(), prog, opts)
		}
		if err != nil {
			return err
		}

		hadErrors, err := reportDiagnostics(cmd, buildFormat, res.Bag, fs)
		if err != nil {
			return err
		}
		if hadErrors {
			return fmt.Errorf("compilation failed")
		}
		return writeOutputs(cmd, in, name, res)
	},
}

func writeOutputs(cmd *cobra.Command, in compileInput, name string, res *driver.Result) error {
	babelPath := in.babelPath(name)
	swcPath := in.swcPath(name)
	for _, out := range []struct {
		path    string
		content string
	}{
		{babelPath, res.Babel},
		{swcPath, res.Swc},
	} {
		if err := os.MkdirAll(filepath.Dir(out.path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(out.path, []byte(out.content), 0o644); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nwrote %s\n", babelPath, swcPath)
	return nil
}
