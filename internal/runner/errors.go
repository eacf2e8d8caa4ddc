// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package runner

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/vk/experimentor/internal/grid"
)

// ErrRunning is returned by Run when the controller is already running a batch.
var ErrRunning = errors.New("controller is already running a batch")

// ConfigurationError reports a problem with the controller settings or the
// grid that was detected before or during traversal. Nothing is retried.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid experiment configuration: %v", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// TrialsExhaustedError is returned when every attempt of one experiment failed.
// Err holds the failure of each attempt, in order.
type TrialsExhaustedError struct {
	Title    string
	Config   grid.Params
	Attempts int
	Err      *multierror.Error
}

func (e *TrialsExhaustedError) Error() string {
	msg := fmt.Sprintf("experiment %s failed all %d trials (config %s)", e.Title, e.Attempts, e.Config)
	if last := e.Last(); last != nil {
		msg += fmt.Sprintf(": %v", last)
	}
	return msg
}

func (e *TrialsExhaustedError) Unwrap() error {
	if e.Err == nil {
		return nil
	}
	return e.Err
}

// Last returns the failure of the final attempt.
func (e *TrialsExhaustedError) Last() error {
	if e.Err == nil || len(e.Err.Errors) == 0 {
		return nil
	}
	return e.Err.Errors[len(e.Err.Errors)-1]
}
