package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reluxc/internal/driver"
	"reluxc/internal/project"
	"reluxc/internal/source"
)

var (
	watchEntry    string
	watchOutDir   string
	watchInterval time.Duration
)

func init() {
	watchCmd.Flags().StringVar(&watchEntry, "entry", "", "watch this AST document instead of consulting plugin.toml")
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "dist", "output directory when no manifest supplies one")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 300*time.Millisecond, "poll interval")
}

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Recompile whenever the input changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDir := "."
		if len(args) == 1 {
			startDir = args[0]
		}
		in, err := resolveInput(watchEntry, startDir, watchOutDir)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s (interval %s)\n", in.entry, watchInterval)

		// Content digests, not mtimes: a save that leaves the bytes
		// unchanged must not rebuild.
		var last project.Digest
		var haveBuilt bool
		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()
		for {
			digest, err := project.HashFile(in.entry)
			switch {
			case err != nil:
				// The editor may be mid-save; report once it settles.
				if !errors.Is(err, os.ErrNotExist) {
					fmt.Fprintf(cmd.ErrOrStderr(), "read %s: %v\n", in.entry, err)
				}
			case !haveBuilt || digest != last:
				last = digest
				haveBuilt = true
				rebuild(ctx, cmd, in)
			}
			select {
			case <-ctx.Done():
				fmt.Fprintln(cmd.OutOrStdout(), "stopped")
				return nil
			case <-ticker.C:
			}
		}
	},
}

func rebuild(ctx context.Context, cmd *cobra.Command, in compileInput) {
	started := time.Now()
	fs := source.NewFileSet()
	prog, err := driver.LoadFile(fs, in.entry)
	if err != nil {
		failLine(cmd, "load failed: %v", err)
		return
	}
	name := prog.DeclName()
	res, err := driver.Compile(ctx, prog, driver.Options{MaxDiagnostics: maxDiagnostics(cmd)})
	if err != nil {
		failLine(cmd, "compile failed: %v", err)
		return
	}
	hadErrors, err := reportDiagnostics(cmd, "pretty", res.Bag, fs)
	if err != nil {
		failLine(cmd, "%v", err)
		return
	}
	if hadErrors {
		failLine(cmd, "%s: %d diagnostics", name, res.Bag.Len())
		return
	}
	if err := writeOutputs(cmd, in, name, res); err != nil {
		failLine(cmd, "write failed: %v", err)
		return
	}
	okStyle := color.New(color.FgGreen)
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s rebuilt in %s\n",
		okStyle.Sprint("ok:"), name, time.Since(started).Round(time.Millisecond))
}

func failLine(cmd *cobra.Command, format string, args ...any) {
	failStyle := color.New(color.FgRed, color.Bold)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", failStyle.Sprint("fail:"), fmt.Sprintf(format, args...))
}
