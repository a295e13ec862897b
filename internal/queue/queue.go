// Package queue provides a value-based binary heap used to track neighbor
// candidates during spatial queries.
package queue

// Item is one neighbor candidate: a reference-point index and its distance to
// the query point.
type Item struct {
	Index    int
	Distance float64
}

// Before reports whether a ranks ahead of b in ascending (distance, index)
// order. Distance ties break toward the smaller index so result order never
// depends on traversal order.
func Before(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Index < b.Index
}

// Queue is a value-based binary heap of candidates. A max-oriented queue
// keeps the worst candidate on top, which makes it the backing store for a
// bounded best-k set.
type Queue struct {
	max   bool
	items []Item
}

// NewMin initializes a queue whose top is the best-ranked candidate.
func NewMin(capacity int) *Queue {
	return &Queue{items: make([]Item, 0, capacity)}
}

// NewMax initializes a queue whose top is the worst-ranked candidate.
func NewMax(capacity int) *Queue {
	return &Queue{max: true, items: make([]Item, 0, capacity)}
}

// Len returns the number of candidates held.
func (q *Queue) Len() int { return len(q.items) }

// Top returns the top candidate without removing it.
func (q *Queue) Top() (Item, bool) {
	if len(q.items) == 0 {
		return Item{}, false
	}
	return q.items[0], true
}

// Push inserts a candidate while maintaining the heap invariant.
func (q *Queue) Push(item Item) {
	q.items = append(q.items, item)
	q.siftUp(len(q.items) - 1)
}

// Pop removes and returns the top candidate.
func (q *Queue) Pop() (Item, bool) {
	n := len(q.items)
	if n == 0 {
		return Item{}, false
	}
	root := q.items[0]
	last := q.items[n-1]
	q.items = q.items[:n-1]
	if n-1 > 0 {
		q.items[0] = last
		q.siftDown(0)
	}
	return root, true
}

// PushBounded inserts into a max-oriented queue holding at most capacity
// candidates, keeping the best capacity seen so far. It reports whether the
// candidate was kept.
func (q *Queue) PushBounded(item Item, capacity int) bool {
	if len(q.items) < capacity {
		q.Push(item)
		return true
	}
	worst, _ := q.Top()
	if !Before(item, worst) {
		return false
	}
	q.Pop()
	q.Push(item)
	return true
}

// Sorted drains the queue and returns all candidates in ascending
// (distance, index) order.
func (q *Queue) Sorted() []Item {
	out := make([]Item, len(q.items))
	if q.max {
		// Popping a max queue yields worst-first; fill back to front.
		for i := len(out) - 1; i >= 0; i-- {
			out[i], _ = q.Pop()
		}
		return out
	}
	for i := range out {
		out[i], _ = q.Pop()
	}
	return out
}

// Reset clears the queue for reuse.
func (q *Queue) Reset() {
	q.items = q.items[:0]
}

func (q *Queue) less(i, j int) bool {
	if q.max {
		return Before(q.items[j], q.items[i])
	}
	return Before(q.items[i], q.items[j])
}

func (q *Queue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !q.less(i, p) {
			return
		}
		q.items[i], q.items[p] = q.items[p], q.items[i]
		i = p
	}
}

func (q *Queue) siftDown(i int) {
	n := len(q.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		if r := l + 1; r < n && q.less(r, l) {
			best = r
		}
		if !q.less(best, i) {
			return
		}
		q.items[i], q.items[best] = q.items[best], q.items[i]
		i = best
	}
}
