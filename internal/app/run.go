package app

import (
	"context"
	"fmt"

	"github.com/vk/experimentor/internal/cmdexecutor"
	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/grid"
	"github.com/vk/experimentor/internal/logdir"
	"github.com/vk/experimentor/internal/progress"
	"github.com/vk/experimentor/internal/runner"
	"golang.org/x/sync/errgroup"
)

// Run executes the batch described by the configuration. With a metrics port
// the health and metrics server runs alongside the batch and stops with it.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.DryRun {
		return a.dryRun(ctx)
	}

	eg, egCtx := errgroup.WithContext(ctx)
	batchDone := make(chan struct{})

	if a.config.MetricsPort > 0 {
		eg.Go(func() error {
			return a.serve(egCtx, a.config.MetricsPort, batchDone)
		})
	}
	eg.Go(func() error {
		defer close(batchDone)
		return a.runBatch(egCtx)
	})

	err := eg.Wait()
	a.logger.Debug("App.Run method finished.")
	return err
}

func (a *App) runBatch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	observers := []progress.Observer{progress.NewMetrics(a.registry)}
	if a.progressW != nil {
		observers = append(observers, progress.NewTerminal(a.progressW))
	}

	opts := []runner.Option{
		runner.WithMaxTrials(a.config.MaxTrials),
		runner.WithRetryDelay(a.config.RetryDelay),
	}

	if root := a.config.LogRoot(); root != "" {
		dirOpts := []logdir.Option{logdir.WithOwner(a.batchID)}
		if a.config.DisableLock {
			dirOpts = append(dirOpts, logdir.WithoutLock())
		}
		dir, err := logdir.Open(ctx, root, dirOpts...)
		if err != nil {
			return err
		}
		defer func() {
			if err := dir.Close(); err != nil {
				logger.Error("Failed to release log directory.", "root", root, "error", err)
			}
		}()
		opts = append(opts, runner.WithLogDirectory(dir), runner.WithSkipIfExists(a.config.SkipExisting))
	} else {
		logger.Info("Logging to files is disabled.")
	}

	if a.config.ProgressSocket != "" {
		feed, err := progress.DialSocketIO(ctx, progress.SocketIOConfig{
			URL:       a.config.ProgressSocket,
			Namespace: a.config.ProgressNamespace,
			BatchID:   a.batchID,
		})
		if err != nil {
			// The feed is informational; the batch runs without it.
			logger.Warn("Progress feed unavailable.", "error", err)
		} else {
			defer feed.Close()
			observers = append(observers, feed)
		}
	}
	opts = append(opts, runner.WithObserver(progress.Join(observers...)))

	if closer, ok := a.exec.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	result, err := runner.New(a.exec, opts...).Run(ctx, a.grid)
	a.result = result
	return err
}

// dryRun prints what would run for every combination without allocating log
// files or invoking the executor.
func (a *App) dryRun(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	combos, err := grid.All(a.grid)
	if err != nil {
		return &runner.ConfigurationError{Err: err}
	}

	cmdExec, isCommand := a.exec.(*cmdexecutor.Executor)
	for _, c := range combos {
		if isCommand {
			fmt.Fprintf(a.outW, "%s\t%s\n", c.Title, cmdExec.CommandLine(c.Config))
			continue
		}
		fmt.Fprintf(a.outW, "%s\t%s\n", c.Title, c.Config)
	}
	logger.Info("Dry run finished.", "experiments", len(combos))
	return nil
}
