package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/vk/experimentor/internal/app"
	"github.com/vk/experimentor/internal/cli"
	"github.com/vk/experimentor/internal/progress"
)

// main is the entrypoint for the experimentor application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// Cancel the batch on the first signal; the log directory is still
	// released on the way out.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []app.Option
	if w := progress.TerminalWriter(os.Stdout, os.Stderr); w != nil {
		opts = append(opts, app.WithProgressWriter(w))
	}

	// The real main function handles errors and exit codes.
	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:], opts...); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.ExitFailure)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, errW io.Writer, args []string, opts ...app.Option) (err error) {
	// A panic is a bug, but the user still gets a message and an exit code
	// instead of a stack trace.
	defer func() {
		if r := recover(); r != nil {
			err = &cli.ExitError{Code: cli.ExitFailure, Message: fmt.Sprintf("application panicked: %v", r)}
		}
	}()

	return cli.Execute(ctx, args, outW, errW, opts...)
}
