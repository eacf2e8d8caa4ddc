// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package runner drives a batch: it walks the combinations of a grid in
// order, allocates a log file per attempt, hands each combination to an
// executor and retries failures up to a bound. The first experiment that
// exhausts its trials stops the batch.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/hashicorp/go-multierror"
	"github.com/vk/experimentor/internal/ctxlog"
	"github.com/vk/experimentor/internal/executor"
	"github.com/vk/experimentor/internal/grid"
	"github.com/vk/experimentor/internal/logdir"
	"github.com/vk/experimentor/internal/progress"
	"k8s.io/utils/clock"
)

// Controller runs batches of experiments sequentially.
type Controller struct {
	exec         executor.Executor
	dir          *logdir.Directory
	maxTrials    int
	skipIfExists bool
	retryDelay   time.Duration
	observer     progress.Observer
	clock        clock.PassiveClock

	mu    sync.Mutex
	state State
}

// New returns an idle controller delegating to exec.
func New(exec executor.Executor, opts ...Option) *Controller {
	c := &Controller{
		exec:      exec,
		maxTrials: DefaultMaxTrials,
		observer:  progress.Nop{},
		clock:     clock.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle stage.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Run executes every combination of g in odometer order. The returned result
// is never nil and reflects the work done up to the point Run stopped.
//
// Errors are one of: *ConfigurationError (bad settings or duplicated keys),
// *logdir.LogAllocationError, *TrialsExhaustedError, or the context error when
// ctx is cancelled. A cancellation is returned unwrapped.
func (c *Controller) Run(ctx context.Context, g grid.Grid) (*BatchResult, error) {
	c.mu.Lock()
	if c.state == Running {
		c.mu.Unlock()
		return &BatchResult{State: Running}, ErrRunning
	}
	c.state = Running
	c.mu.Unlock()

	logger := ctxlog.FromContext(ctx)
	start := c.clock.Now()
	result := &BatchResult{Total: grid.Count(g), State: Running}

	err := c.validate()
	if err == nil {
		logger.Info("🚀 Starting batch.", "experiments", result.Total, "max_trials", c.maxTrials, "logging", c.dir != nil)
		c.observer.BatchStarted(result.Total)
		err = c.runAll(ctx, g, result)
	}

	result.Elapsed = c.clock.Since(start)
	result.Err = err
	if err != nil {
		result.State = Aborted
	} else {
		result.State = Completed
	}
	c.setState(result.State)
	c.observer.BatchFinished(result.Summary(), err)

	if err != nil {
		logger.Error("Batch aborted.", "summary", result.Summary().String(), "error", err)
	} else {
		logger.Info("🏁 Batch finished.", "summary", result.Summary().String())
	}
	return result, err
}

func (c *Controller) validate() error {
	if c.exec == nil {
		return &ConfigurationError{Err: errors.New("no executor configured")}
	}
	if c.maxTrials < 1 {
		return &ConfigurationError{Err: fmt.Errorf("max trials must be at least 1, got %d", c.maxTrials)}
	}
	if c.retryDelay < 0 {
		return &ConfigurationError{Err: fmt.Errorf("retry delay must not be negative, got %s", c.retryDelay)}
	}
	return nil
}

func (c *Controller) runAll(ctx context.Context, g grid.Grid, result *BatchResult) error {
	it := grid.NewIterator(g)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		combo, ok, err := it.Next()
		if err != nil {
			var dupErr *grid.DuplicateKeyError
			if errors.As(err, &dupErr) {
				result.FailedTitle = dupErr.Title
			}
			return &ConfigurationError{Err: err}
		}
		if !ok {
			return nil
		}

		if err := c.runOne(ctx, combo, result); err != nil {
			if ctx.Err() == nil {
				result.FailedTitle = combo.Title
			}
			return err
		}
	}
}

// runOne drives one combination through its attempts.
func (c *Controller) runOne(ctx context.Context, combo grid.Combination, result *BatchResult) error {
	ctx, logger := ctxlog.With(ctx, "title", combo.Title)

	var (
		attempt  int
		skipped  bool
		failures *multierror.Error
		// Errors that stop the retry loop. retry-go does not preserve them
		// for errors.Is, so they are kept aside.
		fatalErr  error
		cancelErr error
	)

	attemptFn := func() error {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			return retry.Unrecoverable(err)
		}
		attempt++

		// Only the first attempt may be skipped; a retry would otherwise be
		// skipped because of the file the failed attempt left behind.
		logTarget, skip, err := c.allocate(combo.Title, c.skipIfExists && attempt == 1)
		if err != nil {
			fatalErr = err
			return retry.Unrecoverable(err)
		}
		if skip {
			skipped = true
			return nil
		}

		if attempt == 1 {
			result.Attempted++
		}
		result.Trials++
		logger.Debug("Running experiment.", "attempt", attempt, "log", logTarget)

		err = c.exec.RunExperiment(ctx, combo.Title, combo.Config, logTarget)
		if err == nil {
			return nil
		}
		// Only the batch context decides cancellation. An executor error that
		// wraps a deadline of its own, such as a request timeout, is an
		// ordinary failed attempt.
		if ctxErr := ctx.Err(); ctxErr != nil {
			cancelErr = ctxErr
			return retry.Unrecoverable(err)
		}

		failures = multierror.Append(failures, err)
		logger.Warn(fmt.Sprintf("Failed trial %d for config %s", attempt, combo.Config),
			"attempt", attempt, "max_trials", c.maxTrials, "error", err)
		c.observer.AttemptFailed(combo.Title, attempt, c.maxTrials, combo.Config, err)
		return err
	}

	err := retry.Do(attemptFn,
		retry.Context(ctx),
		retry.Attempts(uint(c.maxTrials)),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("Attempt returned an error.", "attempt", n+1, "error", err)
		}),
	)

	switch {
	case cancelErr != nil:
		return cancelErr
	case fatalErr != nil:
		return fatalErr
	case err != nil && ctx.Err() != nil:
		// Cancelled while waiting between attempts.
		return ctx.Err()
	case err != nil:
		return &TrialsExhaustedError{
			Title:    combo.Title,
			Config:   combo.Config,
			Attempts: attempt,
			Err:      failures,
		}
	}

	if skipped {
		result.Skipped++
		logger.Info("Skipping experiment, log already exists.")
		c.observer.Skipped(combo.Title)
	} else {
		result.Succeeded++
		if attempt > 1 {
			result.Retried++
		}
		logger.Debug("Experiment succeeded.", "attempts", attempt)
	}
	c.observer.Advanced(result.Done(), result.Total, combo.Title)
	return nil
}

// allocate returns the log target for one attempt. Without a log directory
// the target is empty and nothing is ever skipped.
func (c *Controller) allocate(title string, skipIfExists bool) (string, bool, error) {
	if c.dir == nil {
		return "", false, nil
	}
	alloc, err := c.dir.Allocate(title, skipIfExists)
	if err != nil {
		return "", false, err
	}
	return alloc.Path, alloc.Skipped, nil
}
