// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package grid

import (
	"fmt"
	"math"
	"strings"
)

// TitleSeparator joins the keys chosen from each parameter set.
const TitleSeparator = "_"

// Grid is the user's experiment definition: an ordered sequence of parameter
// sets whose cartesian product defines the batch.
type Grid []Params

// Combination is one selection from every parameter set of a Grid.
type Combination struct {
	// Title is the chosen keys joined with TitleSeparator, in set order.
	Title string
	// Config maps each chosen key to its value, in set order. Nested option
	// groups are shared with the Grid and must not be modified.
	Config Params
	// Ordinal is the zero-based position of the combination in iteration order.
	Ordinal int
}

// DuplicateKeyError is returned when two parameter sets contribute the same
// key to one combination.
type DuplicateKeyError struct {
	Key string
	// Set is the index of the parameter set that repeated the key.
	Set int
	// Title is the partial title built up to and including the repeated key.
	Title string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicated key %q in parameter set %d (combination %s)", e.Key, e.Set, e.Title)
}

// maxPrealloc bounds the capacity All reserves up front.
const maxPrealloc = 1 << 16

// Count returns the number of combinations the grid expands to: the product of
// the parameter set sizes, or zero for an empty grid. A product that does not
// fit in an int saturates at math.MaxInt.
func Count(g Grid) int {
	if len(g) == 0 {
		return 0
	}
	for _, set := range g {
		if len(set) == 0 {
			return 0
		}
	}
	n := 1
	for _, set := range g {
		if n > math.MaxInt/len(set) {
			return math.MaxInt
		}
		n *= len(set)
	}
	return n
}

// All drains a fresh iterator over g.
func All(g Grid) ([]Combination, error) {
	out := make([]Combination, 0, min(Count(g), maxPrealloc))
	it := NewIterator(g)
	for {
		c, ok, err := it.Next()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, c)
	}
}

// Titles returns the title of every combination in iteration order.
func Titles(g Grid) ([]string, error) {
	combinations, err := All(g)
	titles := make([]string, 0, len(combinations))
	for _, c := range combinations {
		titles = append(titles, c.Title)
	}
	return titles, err
}

func joinTitle(parts []string) string {
	return strings.Join(parts, TitleSeparator)
}
