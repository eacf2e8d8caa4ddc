// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package grid

// Iterator lazily produces the combinations of a Grid in odometer order. It is
// consumed exactly once; construct a new one to traverse the grid again.
type Iterator struct {
	sets    Grid
	digits  []int
	ordinal int
	done    bool
}

// NewIterator returns an iterator positioned on the first combination of g.
func NewIterator(g Grid) *Iterator {
	return &Iterator{
		sets:   g,
		digits: make([]int, len(g)),
		done:   Count(g) == 0,
	}
}

// Next returns the next combination. ok is false once the grid is exhausted.
// A DuplicateKeyError ends the iteration; later calls report exhaustion.
func (it *Iterator) Next() (c Combination, ok bool, err error) {
	if it.done {
		return Combination{}, false, nil
	}

	parts := make([]string, 0, len(it.sets))
	config := make(Params, 0, len(it.sets))
	for i, set := range it.sets {
		chosen := set[it.digits[i]]
		parts = append(parts, chosen.Key)
		if config.Has(chosen.Key) {
			it.done = true
			return Combination{}, false, &DuplicateKeyError{Key: chosen.Key, Set: i, Title: joinTitle(parts)}
		}
		config = append(config, chosen)
	}

	c = Combination{Title: joinTitle(parts), Config: config, Ordinal: it.ordinal}
	it.ordinal++
	it.advance()
	return c, true, nil
}

// advance increments the odometer, carrying from the last set towards the
// first. A carry out of the first position exhausts the iterator.
func (it *Iterator) advance() {
	for i := len(it.digits) - 1; i >= 0; i-- {
		it.digits[i]++
		if it.digits[i] < len(it.sets[i]) {
			return
		}
		it.digits[i] = 0
	}
	it.done = true
}
