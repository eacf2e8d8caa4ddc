package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/vk/experimentor/internal/cmdexecutor"
	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/executor"
	"github.com/vk/experimentor/internal/grid"
	"github.com/vk/experimentor/internal/gridfile"
	"github.com/vk/experimentor/internal/httpexecutor"
	"github.com/vk/experimentor/internal/runner"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	progressW io.Writer
	logger    *slog.Logger
	config    *Config
	grid      grid.Grid
	exec      executor.Executor
	registry  *prometheus.Registry
	batchID   string
	result    *runner.BatchResult
}

// Option customizes an App.
type Option func(*App)

// WithExecutor replaces the executor selected from the configuration.
func WithExecutor(exec executor.Executor) Option {
	return func(a *App) { a.exec = exec }
}

// WithProgressWriter enables the terminal progress display on w.
func WithProgressWriter(w io.Writer) Option {
	return func(a *App) { a.progressW = w }
}

// NewApp is the constructor for the main application. It builds an isolated
// logger, loads the grid file and selects the executor.
func NewApp(outW io.Writer, cfg *Config, opts ...Option) (*App, error) {
	a := &App{
		outW:     outW,
		config:   cfg,
		registry: prometheus.NewRegistry(),
		batchID:  uuid.NewString(),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.logger = newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("batch_id", a.batchID)
	ctx := ctxlog.WithLogger(context.Background(), a.logger)
	a.logger.Debug("Logger configured successfully.")

	g, err := gridfile.Load(ctx, cfg.GridPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load grid: %w", err)
	}
	a.grid = g
	a.logger.Debug("Grid loaded.", "sets", len(g), "combinations", grid.Count(g))

	if a.exec == nil {
		exec, err := newExecutor(cfg)
		if err != nil {
			return nil, err
		}
		a.exec = exec
	}

	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return a, nil
}

func newExecutor(cfg *Config) (executor.Executor, error) {
	if cfg.Endpoint != "" {
		var opts []httpexecutor.Option
		if cfg.RequestTimeout > 0 {
			opts = append(opts, httpexecutor.WithTimeout(cfg.RequestTimeout))
		}
		return httpexecutor.New(cfg.Endpoint, opts...)
	}

	var opts []cmdexecutor.Option
	if cfg.Direct {
		opts = append(opts, cmdexecutor.WithDirect())
	}
	if cfg.Shell != "" {
		opts = append(opts, cmdexecutor.WithShell(cfg.Shell))
	}
	return cmdexecutor.New(cfg.Script, opts...)
}

// BatchID identifies this run in logs, the lock file and progress events.
func (a *App) BatchID() string {
	return a.batchID
}

// Grid returns the loaded grid.
func (a *App) Grid() grid.Grid {
	return a.grid
}

// Result returns the outcome of the last Run, or nil before one finished.
func (a *App) Result() *runner.BatchResult {
	return a.result
}
