// Package driver orchestrates one compilation: semantic analysis, backend
// decoration, and both generators running in parallel over the immutable
// decorated program.
package driver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"reluxc/internal/ast"
	"reluxc/internal/codegen/babel"
	"reluxc/internal/codegen/swc"
	"reluxc/internal/decorate"
	"reluxc/internal/diag"
	"reluxc/internal/sema"
	"reluxc/internal/types"
)

// Stage identifies one phase of a compilation for progress reporting.
type Stage uint8

const (
	StageCheck Stage = iota
	StageDecorate
	StageEmitBabel
	StageEmitSwc
)

func (s Stage) String() string {
	switch s {
	case StageCheck:
		return "check"
	case StageDecorate:
		return "decorate"
	case StageEmitBabel:
		return "emit babel"
	case StageEmitSwc:
		return "emit swc"
	}
	return "unknown"
}

// Status is the lifecycle of one stage.
type Status uint8

const (
	StatusStarted Status = iota
	StatusDone
	StatusFailed
	StatusSkipped
)

// Event is one progress notification. Observers must be fast; Compile calls
// them inline. Emit-stage events may arrive from concurrent goroutines.
type Event struct {
	Plugin string
	Stage  Stage
	Status Status
}

// Options configure one Compile call.
type Options struct {
	// Types supplies a shared interner; nil allocates a fresh one.
	Types *types.Interner
	// MaxDiagnostics caps the bag; zero means a default of 256.
	MaxDiagnostics int
	// Observer receives stage events when non-nil.
	Observer func(Event)
}

// Result carries everything one compilation produced. When Bag has errors
// both outputs are empty; a plugin never ships with one working backend.
type Result struct {
	Program   *ast.Program
	Sem       *sema.Result
	Decorated *decorate.DecoratedProgram
	Babel     string
	Swc       string
	Bag       *diag.Bag
}

// Compile runs the full pipeline over one parsed program. User-attributable
// failures land in Result.Bag; the returned error is reserved for internal
// defects and cancellation, and no partial output survives one.
func Compile(ctx context.Context, prog *ast.Program, opts Options) (*Result, error) {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 256
	}
	res := &Result{
		Program: prog,
		Bag:     diag.NewBag(maxDiags),
	}
	name := ""
	if prog != nil {
		name = prog.DeclName()
	}
	notify := func(stage Stage, status Status) {
		if opts.Observer != nil {
			opts.Observer(Event{Plugin: name, Stage: stage, Status: status})
		}
	}

	notify(StageCheck, StatusStarted)
	res.Sem = sema.Check(prog, sema.Options{
		Reporter: diag.NewBagReporter(res.Bag),
		Types:    opts.Types,
	})
	res.Bag.Sort()
	res.Bag.Dedup()
	if res.Bag.HasErrors() {
		notify(StageCheck, StatusFailed)
		notify(StageDecorate, StatusSkipped)
		notify(StageEmitBabel, StatusSkipped)
		notify(StageEmitSwc, StatusSkipped)
		return res, nil
	}
	notify(StageCheck, StatusDone)

	notify(StageDecorate, StatusStarted)
	dec, err := decorate.Run(res.Sem)
	if err != nil {
		notify(StageDecorate, StatusFailed)
		return nil, err
	}
	res.Decorated = dec
	notify(StageDecorate, StatusDone)

	// Both generators are pure readers of the decorated program, so they
	// run concurrently. Either failure discards both outputs.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		notify(StageEmitBabel, StatusStarted)
		if err := gctx.Err(); err != nil {
			notify(StageEmitBabel, StatusFailed)
			return err
		}
		out, err := babel.Generate(dec)
		if err != nil {
			notify(StageEmitBabel, StatusFailed)
			return err
		}
		res.Babel = out
		notify(StageEmitBabel, StatusDone)
		return nil
	})
	g.Go(func() error {
		notify(StageEmitSwc, StatusStarted)
		if err := gctx.Err(); err != nil {
			notify(StageEmitSwc, StatusFailed)
			return err
		}
		out, err := swc.Generate(dec)
		if err != nil {
			notify(StageEmitSwc, StatusFailed)
			return err
		}
		res.Swc = out
		notify(StageEmitSwc, StatusDone)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

// CheckOnly runs semantic analysis without generating code.
func CheckOnly(prog *ast.Program, opts Options) *Result {
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = 256
	}
	res := &Result{
		Program: prog,
		Bag:     diag.NewBag(maxDiags),
	}
	res.Sem = sema.Check(prog, sema.Options{
		Reporter: diag.NewBagReporter(res.Bag),
		Types:    opts.Types,
	})
	res.Bag.Sort()
	res.Bag.Dedup()
	return res
}
