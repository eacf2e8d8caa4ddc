// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package runner

import (
	"time"

	"github.com/vk/experimentor/internal/logdir"
	"github.com/vk/experimentor/internal/progress"
	"k8s.io/utils/clock"
)

// DefaultMaxTrials is the number of attempts per experiment unless configured.
const DefaultMaxTrials = 3

// Option configures a Controller.
type Option func(*Controller)

// WithLogDirectory enables per-attempt log files in dir. Without it the
// executor receives an empty log target.
func WithLogDirectory(dir *logdir.Directory) Option {
	return func(c *Controller) { c.dir = dir }
}

// WithMaxTrials sets the total number of attempts per experiment. Values
// below one make Run fail with a ConfigurationError.
func WithMaxTrials(n int) Option {
	return func(c *Controller) { c.maxTrials = n }
}

// WithSkipIfExists skips experiments that already have a log file. It has no
// effect without a log directory.
func WithSkipIfExists(skip bool) Option {
	return func(c *Controller) { c.skipIfExists = skip }
}

// WithRetryDelay sets a fixed pause between attempts of one experiment.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Controller) { c.retryDelay = d }
}

// WithObserver sets the receiver of progress events.
func WithObserver(o progress.Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithClock sets the clock used to time the batch.
func WithClock(clk clock.PassiveClock) Option {
	return func(c *Controller) { c.clock = clk }
}
