// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package runner

import (
	"time"

	"github.com/vk/experimentor/internal/progress"
)

// State is the lifecycle stage of a Controller.
type State int

const (
	Idle State = iota
	Running
	Completed
	Aborted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// BatchResult aggregates the outcome of one Run.
type BatchResult struct {
	// Total is the number of combinations in the grid.
	Total int
	// Attempted counts combinations whose executor was invoked at least once.
	Attempted int
	// Succeeded counts combinations that eventually succeeded.
	Succeeded int
	// Retried counts successes that needed more than one attempt.
	Retried int
	// Skipped counts combinations that already had a log file.
	Skipped int
	// Trials counts executor invocations across the batch.
	Trials int

	State State
	// FailedTitle is the combination that aborted the batch, if any.
	FailedTitle string
	// Err is the error Run returned.
	Err     error
	Elapsed time.Duration
}

// Done is the number of combinations accounted for, run or skipped.
func (r *BatchResult) Done() int {
	return r.Succeeded + r.Skipped
}

// Summary converts the result for progress observers.
func (r *BatchResult) Summary() progress.Summary {
	return progress.Summary{
		Total:       r.Total,
		Attempted:   r.Attempted,
		Succeeded:   r.Succeeded,
		Retried:     r.Retried,
		Skipped:     r.Skipped,
		Trials:      r.Trials,
		State:       r.State.String(),
		FailedTitle: r.FailedTitle,
		Elapsed:     r.Elapsed,
	}
}
