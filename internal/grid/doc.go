// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package grid provides the in-memory representation of an experiment grid and
// the iterator that expands it into individual experiments.
//
// # Core Concepts
//
//   - Params: an insertion-ordered mapping. Order matters because it drives
//     both the generated titles and the order in which options are rendered
//     onto a command line.
//
//   - Grid: an ordered sequence of parameter sets. Each parameter set
//     contributes exactly one of its entries to every generated experiment.
//
//   - Combination: one selection from every parameter set, rendered as a title
//     (the chosen keys joined with "_") and a merged configuration.
//
// # How Iteration Works
//
// The Iterator is an odometer over the per-set cardinalities. The last
// parameter set is the least significant digit, so for the grid
//
//	[{a: 1, b: 2}, {c: 3, d: 4}]
//
// the iterator yields a_c, a_d, b_c and b_d, in that order. A grid that
// contains an empty parameter set has no combinations at all.
//
// Keys must be unique across the parameter sets that make up a combination.
// Because different sets may share only some keys, the check is performed for
// every generated combination, and the first collision stops the iteration
// with a DuplicateKeyError.
package grid
