// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package progress reports the advance of a batch to interested parties: a
// terminal, a Prometheus registry, a socket.io feed. The run controller only
// ever talks to the Observer interface.
package progress

import (
	"fmt"
	"time"

	"github.com/vk/experimentor/internal/grid"
)

// Observer receives batch events. Calls are made sequentially from the
// goroutine running the batch.
type Observer interface {
	// BatchStarted is called once with the number of combinations.
	BatchStarted(total int)
	// Advanced is called when a combination is done, whether it ran or was
	// skipped. done counts both.
	Advanced(done, total int, title string)
	// Skipped is called before Advanced for combinations that already have a
	// log file.
	Skipped(title string)
	// AttemptFailed is called after every failed attempt, including the last.
	AttemptFailed(title string, attempt, maxTrials int, cfg grid.Params, err error)
	// BatchFinished is called once, with the error Run is about to return.
	BatchFinished(summary Summary, err error)
}

// Summary is the outcome of a batch as seen by observers.
type Summary struct {
	Total       int
	Attempted   int
	Succeeded   int
	Retried     int
	Skipped     int
	Trials      int
	State       string
	FailedTitle string
	Elapsed     time.Duration
}

func (s Summary) String() string {
	out := fmt.Sprintf("%s: %d/%d succeeded (%d after retry), %d skipped, %d trials in %s",
		s.State, s.Succeeded, s.Total, s.Retried, s.Skipped, s.Trials, s.Elapsed.Round(time.Millisecond))
	if s.FailedTitle != "" {
		out += fmt.Sprintf(", stopped at %s", s.FailedTitle)
	}
	return out
}

// Nop ignores every event.
type Nop struct{}

func (Nop) BatchStarted(int) {}
func (Nop) Advanced(int, int, string) {}
func (Nop) Skipped(string) {}
func (Nop) AttemptFailed(string, int, int, grid.Params, error) {}
func (Nop) BatchFinished(Summary, error) {}

// Multi fans every event out to each observer in order.
type Multi []Observer

// Join returns a single observer for the non-nil observers given.
func Join(observers ...Observer) Observer {
	var m Multi
	for _, o := range observers {
		if o != nil {
			m = append(m, o)
		}
	}
	switch len(m) {
	case 0:
		return Nop{}
	case 1:
		return m[0]
	}
	return m
}

func (m Multi) BatchStarted(total int) {
	for _, o := range m {
		o.BatchStarted(total)
	}
}

func (m Multi) Advanced(done, total int, title string) {
	for _, o := range m {
		o.Advanced(done, total, title)
	}
}

func (m Multi) Skipped(title string) {
	for _, o := range m {
		o.Skipped(title)
	}
}

func (m Multi) AttemptFailed(title string, attempt, maxTrials int, cfg grid.Params, err error) {
	for _, o := range m {
		o.AttemptFailed(title, attempt, maxTrials, cfg, err)
	}
}

func (m Multi) BatchFinished(summary Summary, err error) {
	for _, o := range m {
		o.BatchFinished(summary, err)
	}
}
