package grid

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoByTwo() Grid {
	return Grid{
		{{Key: "a", Value: int64(1)}, {Key: "b", Value: int64(2)}},
		{{Key: "c", Value: int64(3)}, {Key: "d", Value: int64(4)}},
	}
}

func TestIterator_OdometerOrder(t *testing.T) {
	combinations, err := All(twoByTwo())
	require.NoError(t, err)

	titles := make([]string, 0, len(combinations))
	for _, c := range combinations {
		titles = append(titles, c.Title)
	}
	assert.Equal(t, []string{"a_c", "a_d", "b_c", "b_d"}, titles)

	want := Params{{Key: "b", Value: int64(2)}, {Key: "c", Value: int64(3)}}
	if diff := cmp.Diff(want, combinations[2].Config); diff != "" {
		t.Errorf("unexpected config for b_c (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, combinations[2].Ordinal)
}

func TestCount(t *testing.T) {
	testCases := []struct {
		name string
		grid Grid
		want int
	}{
		{name: "empty grid", grid: Grid{}, want: 0},
		{name: "single set", grid: Grid{{{Key: "a"}, {Key: "b"}, {Key: "c"}}}, want: 3},
		{name: "two by two", grid: twoByTwo(), want: 4},
		{
			name: "mixed radix",
			grid: Grid{
				{{Key: "a"}, {Key: "b"}},
				{{Key: "c"}, {Key: "d"}, {Key: "e"}},
				{{Key: "f"}},
			},
			want: 6,
		},
		{name: "empty set in the middle", grid: Grid{{{Key: "a"}}, {}, {{Key: "b"}}}, want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Count(tc.grid))

			combinations, err := All(tc.grid)
			require.NoError(t, err)
			assert.Len(t, combinations, tc.want, "iterator must yield exactly Count combinations")
		})
	}
}

func TestCount_Saturates(t *testing.T) {
	binary := func(sets int) Grid {
		g := make(Grid, sets)
		for i := range g {
			g[i] = Params{{Key: fmt.Sprintf("lo%d", i)}, {Key: fmt.Sprintf("hi%d", i)}}
		}
		return g
	}

	assert.Equal(t, 1<<30, Count(binary(30)))
	assert.Equal(t, math.MaxInt, Count(binary(64)), "2^64 does not fit in an int")
	assert.Zero(t, Count(append(binary(64), Params{})), "an empty set still yields nothing")

	c, ok, err := NewIterator(binary(64)).Next()
	require.NoError(t, err)
	require.True(t, ok, "a saturated grid is still iterable")
	assert.Equal(t, 0, c.Ordinal)
}

func TestIterator_MixedRadixOrder(t *testing.T) {
	g := Grid{
		{{Key: "x"}, {Key: "y"}},
		{{Key: "1"}, {Key: "2"}, {Key: "3"}},
	}
	titles, err := Titles(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"x_1", "x_2", "x_3", "y_1", "y_2", "y_3"}, titles)
}

func TestIterator_DuplicateKey(t *testing.T) {
	g := Grid{
		{{Key: "a", Value: int64(1)}},
		{{Key: "a", Value: int64(2)}},
	}
	it := NewIterator(g)

	_, ok, err := it.Next()
	require.Error(t, err)
	assert.False(t, ok)

	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "a", dupErr.Key)
	assert.Equal(t, 1, dupErr.Set)
	assert.Equal(t, "a_a", dupErr.Title)

	_, ok, err = it.Next()
	assert.NoError(t, err, "iteration stops after the first duplicate")
	assert.False(t, ok)
}

func TestIterator_DuplicateKeyInLaterRow(t *testing.T) {
	// The collision only exists for the second row of the first set, so the
	// first two combinations are produced before the error surfaces.
	g := Grid{
		{{Key: "a"}, {Key: "c"}},
		{{Key: "b"}, {Key: "c"}},
	}
	combinations, err := All(g)
	require.Error(t, err)

	var dupErr *DuplicateKeyError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "c", dupErr.Key)
	require.Len(t, combinations, 3)
	assert.Equal(t, "c_b", combinations[2].Title)
}

func TestIterator_NotRestartable(t *testing.T) {
	it := NewIterator(Grid{{{Key: "only"}}})

	c, ok, err := it.Next()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "only", c.Title)

	_, ok, err = it.Next()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestParams_StringAndJSON(t *testing.T) {
	p := Params{
		{Key: "model", Value: "resnet"},
		{Key: "opts", Value: Params{{Key: "lr", Value: 0.01}, {Key: "e", Value: int64(3)}}},
		{Key: "debug", Value: true},
	}

	assert.Equal(t, "{model: resnet, opts: {lr: 0.01, e: 3}, debug: true}", p.String())

	b, err := p.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"model":"resnet","opts":{"lr":0.01,"e":3},"debug":true}`, string(b))

	assert.Equal(t, []string{"model", "opts", "debug"}, p.Keys())
	assert.Equal(t, map[string]any{
		"model": "resnet",
		"opts":  map[string]any{"lr": 0.01, "e": int64(3)},
		"debug": true,
	}, p.Map())
}
