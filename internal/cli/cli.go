package cli

import (
	"context"
	"errors"
	"io"

	"github.com/vk/experimentor/internal/app"
	"github.com/vk/experimentor/internal/runner"
)

// Exit codes returned by the process.
const (
	ExitFailure     = 1
	ExitUsage       = 2
	ExitInterrupted = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs the command line given by args. Any error it returns is an
// *ExitError carrying the process exit code.
func Execute(ctx context.Context, args []string, outW, errW io.Writer, opts ...app.Option) error {
	cmd := RootCmd(outW, errW, opts...)
	cmd.SetArgs(args)
	cmd.SetOut(outW)
	cmd.SetErr(errW)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Everything that did not come out of a command is cobra rejecting the
	// command line.
	return &ExitError{Code: ExitUsage, Message: err.Error() + "\nRun 'experimentor --help' for usage.", Err: err}
}

func usageError(err error) error {
	return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
}

// exitError classifies an error returned by the application.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var cfgErr *runner.ConfigurationError
	switch {
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitInterrupted, Message: "interrupted", Err: err}
	case errors.As(err, &cfgErr):
		return &ExitError{Code: ExitUsage, Message: err.Error(), Err: err}
	default:
		return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
	}
}
