package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"reluxc/internal/ast"
	"reluxc/internal/driver"
	"reluxc/internal/ui"
)

type compileOutcome struct {
	result *driver.Result
	err    error
}

// runCompileWithUI runs one compilation while a Bubble Tea model renders its
// stage progress. The channel closes when the compile goroutine finishes,
// which quits the model.
func runCompileWithUI(ctx context.Context, title string, prog *ast.Program, opts driver.Options) (*driver.Result, error) {
	events := make(chan driver.Event, 64)
	outcomeCh := make(chan compileOutcome, 1)

	go func() {
		opts.Observer = func(ev driver.Event) { events <- ev }
		res, err := driver.Compile(ctx, prog, opts)
		outcomeCh <- compileOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
