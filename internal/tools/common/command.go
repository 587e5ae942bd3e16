package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sandeepkv93/product-catalog-api/internal/observability"
	"github.com/sandeepkv93/product-catalog-api/internal/tools/ui"
)

// Action is the body of one tool subcommand. It returns human readable detail lines.
type Action func(context.Context) ([]string, error)

// Invocation describes how a subcommand is run.
type Invocation struct {
	Tool     string
	Command  string
	CI       bool
	Timeout  time.Duration
	ExitCode int
	Out      io.Writer
}

func (inv Invocation) Title() string {
	return inv.Tool + " " + inv.Command
}

// Instrument records run count and duration for one tool subcommand.
func Instrument(tool, command string, fn Action) Action {
	return func(ctx context.Context) ([]string, error) {
		start := time.Now()
		details, err := fn(ctx)
		outcome := "success"
		if err != nil {
			outcome = "error"
		}
		observability.RecordToolCommandRun(ctx, tool, command, outcome)
		observability.RecordToolCommandDuration(ctx, tool, command, outcome, time.Since(start))
		return details, err
	}
}

// Run executes fn directly with a JSON result in CI mode, or behind the
// interactive UI otherwise.
func Run(inv Invocation, fn Action) ([]string, error) {
	fn = Instrument(inv.Tool, inv.Command, fn)
	if !inv.CI {
		return ui.Run(ui.Task{Title: inv.Title(), Timeout: inv.Timeout, Action: fn})
	}

	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	details, err := fn(ctx)
	out := inv.Out
	if out == nil {
		out = os.Stdout
	}
	if werr := WriteCIResult(out, NewCIResult(inv, details, err, time.Since(start))); werr != nil && err == nil {
		err = fmt.Errorf("write ci result: %w", werr)
	}
	return details, err
}

// Execute runs fn and exits the process with inv.ExitCode on failure.
func Execute(inv Invocation, fn Action) error {
	if _, err := Run(inv, fn); err != nil {
		os.Exit(inv.ExitCode)
	}
	return nil
}
