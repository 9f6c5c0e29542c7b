package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"eqlint/internal/driver"
	"eqlint/internal/ui"
)

type diagnoseOutcome struct {
	result *driver.DiagnoseResult
	err    error
}

var diagnosePhases = []string{"load", "evaluate", "report"}

// runDiagnoseWithUI runs Diagnose in the background and renders its phases
// as a progress view on stderr.
func runDiagnoseWithUI(ctx context.Context, title string, opts driver.DiagnoseOptions, targets []string) (*driver.DiagnoseResult, error) {
	events := make(chan driver.PhaseEvent, 16)
	outcomeCh := make(chan diagnoseOutcome, 1)

	go func() {
		optsCopy := opts
		prev := opts.PhaseObserver
		optsCopy.PhaseObserver = func(ev driver.PhaseEvent) {
			if prev != nil {
				prev(ev)
			}
			events <- ev
		}
		res, err := driver.Diagnose(ctx, optsCopy, targets...)
		outcomeCh <- diagnoseOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, diagnosePhases, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep the producer from blocking on a view that is gone
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
