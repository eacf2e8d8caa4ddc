// Package executor defines the contract between the run controller and the
// thing that actually performs one experiment.
package executor

import (
	"context"

	"github.com/vk/experimentor/internal/grid"
)

// Executor runs a single experiment. logTarget is the path of the log file
// allocated for this attempt, or empty when logging is disabled. A nil error
// means the experiment succeeded; anything else counts as a failed attempt.
type Executor interface {
	RunExperiment(ctx context.Context, title string, cfg grid.Params, logTarget string) error
}

// Func adapts an ordinary function to the Executor interface.
type Func func(ctx context.Context, title string, cfg grid.Params, logTarget string) error

// RunExperiment calls f.
func (f Func) RunExperiment(ctx context.Context, title string, cfg grid.Params, logTarget string) error {
	return f(ctx, title, cfg, logTarget)
}
