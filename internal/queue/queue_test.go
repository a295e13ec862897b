package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueOrdering(t *testing.T) {
	t.Run("min queue pops ascending", func(t *testing.T) {
		q := NewMin(4)
		for _, it := range []Item{{Index: 3, Distance: 2.5}, {Index: 1, Distance: 0.5}, {Index: 2, Distance: 1.5}} {
			q.Push(it)
		}

		first, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, 1, first.Index)

		second, _ := q.Pop()
		assert.Equal(t, 2, second.Index)

		third, _ := q.Pop()
		assert.Equal(t, 3, third.Index)

		_, ok = q.Pop()
		assert.False(t, ok)
	})

	t.Run("max queue keeps worst on top", func(t *testing.T) {
		q := NewMax(4)
		q.Push(Item{Index: 1, Distance: 0.5})
		q.Push(Item{Index: 2, Distance: 2.5})
		q.Push(Item{Index: 3, Distance: 1.5})

		top, ok := q.Top()
		require.True(t, ok)
		assert.Equal(t, 2, top.Index)
	})

	t.Run("distance ties break by index", func(t *testing.T) {
		q := NewMin(4)
		q.Push(Item{Index: 7, Distance: 1})
		q.Push(Item{Index: 2, Distance: 1})
		q.Push(Item{Index: 5, Distance: 1})

		got := q.Sorted()
		assert.Equal(t, []int{2, 5, 7}, []int{got[0].Index, got[1].Index, got[2].Index})
	})
}

func TestPushBounded(t *testing.T) {
	q := NewMax(3)

	assert.True(t, q.PushBounded(Item{Index: 0, Distance: 5}, 3))
	assert.True(t, q.PushBounded(Item{Index: 1, Distance: 3}, 3))
	assert.True(t, q.PushBounded(Item{Index: 2, Distance: 4}, 3))

	// Full queue: better candidates evict the worst, worse ones are dropped.
	assert.True(t, q.PushBounded(Item{Index: 3, Distance: 1}, 3))
	assert.False(t, q.PushBounded(Item{Index: 4, Distance: 6}, 3))
	assert.Equal(t, 3, q.Len())

	got := q.Sorted()
	require.Len(t, got, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{got[0].Index, got[1].Index, got[2].Index})
	assert.Equal(t, []float64{1, 3, 4}, []float64{got[0].Distance, got[1].Distance, got[2].Distance})
}

func TestSortedMax(t *testing.T) {
	q := NewMax(8)
	for _, it := range []Item{
		{Index: 4, Distance: 2},
		{Index: 0, Distance: 9},
		{Index: 8, Distance: 2},
		{Index: 1, Distance: 0},
	} {
		q.Push(it)
	}

	got := q.Sorted()
	require.Len(t, got, 4)
	assert.Equal(t, []int{1, 4, 8, 0}, []int{got[0].Index, got[1].Index, got[2].Index, got[3].Index})
	assert.Equal(t, 0, q.Len())
}
