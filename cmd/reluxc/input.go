package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reluxc/internal/diag"
	"reluxc/internal/diagfmt"
	"reluxc/internal/project"
	"reluxc/internal/source"
)

// compileInput names the AST document to compile and where the generated
// backends should land. When a manifest is in play it supplies the output
// paths; a bare --entry run falls back to <name>.<backend> under outDir.
type compileInput struct {
	entry    string
	manifest *project.Manifest
	outDir   string
}

// resolveInput turns command flags and the optional positional dir into a
// concrete input. Priority: explicit --entry, then a manifest found by
// walking up from the start directory.
func resolveInput(entry, startDir, outDir string) (compileInput, error) {
	if entry != "" {
		return compileInput{entry: entry, outDir: outDir}, nil
	}
	path, ok, err := project.FindManifest(startDir)
	if err != nil {
		return compileInput{}, err
	}
	if !ok {
		return compileInput{}, fmt.Errorf("no %s found; pass --entry or run inside a plugin project", project.ManifestName)
	}
	m, err := project.Load(path)
	if err != nil {
		return compileInput{}, err
	}
	return compileInput{entry: m.EntryPath(), manifest: m, outDir: outDir}, nil
}

func (in compileInput) babelPath(pluginName string) string {
	if in.manifest != nil {
		return in.manifest.BabelPath()
	}
	return filepath.Join(in.outDir, pluginName+".babel.js")
}

func (in compileInput) swcPath(pluginName string) string {
	if in.manifest != nil {
		return in.manifest.SwcPath()
	}
	return filepath.Join(in.outDir, pluginName+".swc.rs")
}

func colorEnabled(cmd *cobra.Command) bool {
	mode, _ := cmd.Flags().GetString("color")
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "on":
		return true
	case "off":
		return false
	}
	return isTerminal(os.Stdout)
}

// reportDiagnostics renders the bag in the requested format and returns
// whether errors were present.
func reportDiagnostics(cmd *cobra.Command, format string, bag *diag.Bag, fs *source.FileSet) (bool, error) {
	w := cmd.OutOrStdout()
	switch format {
	case "pretty":
		opts := diagfmt.DefaultPrettyOpts()
		opts.Color = colorEnabled(cmd)
		diagfmt.Pretty(w, bag, fs, opts)
	case "json":
		if err := diagfmt.JSON(w, bag, fs, payloadOpts(cmd)); err != nil {
			return bag.HasErrors(), err
		}
	case "msgpack":
		if err := diagfmt.Msgpack(w, bag, fs, payloadOpts(cmd)); err != nil {
			return bag.HasErrors(), err
		}
	default:
		return bag.HasErrors(), fmt.Errorf("unsupported format %q (must be pretty, json or msgpack)", format)
	}
	return bag.HasErrors(), nil
}

func payloadOpts(cmd *cobra.Command) diagfmt.PayloadOpts {
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	return diagfmt.PayloadOpts{Max: maxDiags}
}

func maxDiagnostics(cmd *cobra.Command) int {
	maxDiags, _ := cmd.Flags().GetInt("max-diagnostics")
	return maxDiags
}
