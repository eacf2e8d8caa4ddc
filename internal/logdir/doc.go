// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package logdir manages the directory that holds experiment log files.
//
// # Layout
//
//	<root>/lock                              advisory lock marker
//	<root>/<title>/<YYYY_MM_DD_HH_MM_SS>.log one file per attempt, UTC
//
// A Directory is opened once per batch. Unless locking is disabled, opening
// creates the lock marker exclusively; a second batch pointed at the same root
// fails with a DirectoryBusyError until the first one calls Close. The lock is
// advisory: it only protects against other cooperating processes.
//
// # Artifacts
//
// Allocate creates an empty, timestamped file for an experiment title and
// returns its path. Timestamps have second resolution, so two allocations for
// the same title within one second share a name and the second truncates the
// first. Because the names are fixed-width UTC timestamps, the lexically last
// file of a title is also the most recent one.
//
// When asked to skip existing experiments, Allocate reports Skipped for any
// title whose directory already holds an entry. It does not inspect whether
// that entry came from a successful run: a crashed run leaves a stub that
// makes a later resume skip the title.
package logdir
