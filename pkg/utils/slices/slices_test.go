package slices_test

import (
	"testing"

	"github.com/opst/knitlabel/pkg/utils/cmp"
	"github.com/opst/knitlabel/pkg/utils/slices"
)

func TestChunk(t *testing.T) {
	type When struct {
		items []int
		size  int
	}
	type Then struct {
		chunks [][]int
	}

	theory := func(when When, then Then) func(*testing.T) {
		return func(t *testing.T) {
			actual := slices.Chunk(when.items, when.size)
			if !cmp.SliceEqWith(actual, then.chunks, cmp.SliceEq[int]) {
				t.Errorf("got %v, want %v", actual, then.chunks)
			}
		}
	}

	t.Run("when items are divisible by size, it makes even chunks", theory(
		When{items: []int{1, 2, 3, 4}, size: 2},
		Then{chunks: [][]int{{1, 2}, {3, 4}}},
	))
	t.Run("when items are not divisible by size, the last chunk is shorter", theory(
		When{items: []int{1, 2, 3, 4, 5}, size: 2},
		Then{chunks: [][]int{{1, 2}, {3, 4}, {5}}},
	))
	t.Run("when items are empty, it makes no chunks", theory(
		When{items: []int{}, size: 3},
		Then{chunks: [][]int{}},
	))
	t.Run("when size is not positive, it makes chunks of 1", theory(
		When{items: []int{1, 2}, size: 0},
		Then{chunks: [][]int{{1}, {2}}},
	))
}

func TestSortedKeysOf(t *testing.T) {
	actual := slices.SortedKeysOf(map[string]int{"c": 3, "a": 1, "b": 2})
	if !cmp.SliceEq(actual, []string{"a", "b", "c"}) {
		t.Errorf("got %v, want [a b c]", actual)
	}
}
