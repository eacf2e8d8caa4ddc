// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package logdir

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBusy matches any DirectoryBusyError.
	ErrBusy = errors.New("log directory is in use by another process")

	// ErrNoArtifact is returned when an experiment has no log file yet.
	ErrNoArtifact = errors.New("no log file for the experiment")
)

// DirectoryBusyError is returned by Open when the lock marker already exists.
type DirectoryBusyError struct {
	Root string
	// Holder is the content of the existing lock marker, if it could be read.
	Holder string
}

func (e *DirectoryBusyError) Error() string {
	msg := fmt.Sprintf("log directory %s is in use by another process", e.Root)
	if holder := strings.TrimSpace(e.Holder); holder != "" {
		msg += " (" + strings.ReplaceAll(holder, "\n", ", ") + ")"
	}
	return msg
}

// Is makes errors.Is(err, ErrBusy) hold for every DirectoryBusyError.
func (e *DirectoryBusyError) Is(target error) bool {
	return target == ErrBusy
}

// LogAllocationError is returned when a log file or its directory cannot be
// created.
type LogAllocationError struct {
	Title string
	Op    string
	Err   error
}

func (e *LogAllocationError) Error() string {
	return fmt.Sprintf("failed to %s for experiment %q: %v", e.Op, e.Title, e.Err)
}

func (e *LogAllocationError) Unwrap() error {
	return e.Err
}
