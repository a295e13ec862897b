package locality

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/internal/queue"
)

// maxGrowthAttempts bounds the nearest-neighbor radius growth loop so a bad
// guess radius against a sparse system cannot spin forever.
const maxGrowthAttempts = 64

// nearestIterator finds the k reference points closest to the query point by
// running bounded ball passes with a growing radius until k candidates fit,
// then replays them in ascending distance order. Collection is deferred to
// the first Next.
type nearestIterator struct {
	t    *Tree
	p    r3.Vec
	self int
	args QueryArgs

	collected bool
	results   []Candidate
	pos       int
	err       error
}

func newNearestIterator(t *Tree, p r3.Vec, self int, args QueryArgs) *nearestIterator {
	return &nearestIterator{t: t, p: p, self: self, args: args}
}

func (it *nearestIterator) Next() (Candidate, bool) {
	if !it.collected {
		it.collected = true
		it.collect()
	}
	if it.err != nil || it.pos >= len(it.results) {
		return Candidate{}, false
	}
	c := it.results[it.pos]
	it.pos++
	return c, true
}

func (it *nearestIterator) Err() error { return it.err }

func (it *nearestIterator) collect() {
	limit := MaxCutoff(it.t.bx)
	r := it.args.R
	found := 0

	for attempt := 0; attempt < maxGrowthAttempts; attempt++ {
		if attempt > 0 && r >= limit {
			it.err = &ErrInsufficientNeighbors{K: it.args.K, Found: found, Radius: r}
			return
		}
		images, err := it.t.queryImages(r)
		if err != nil {
			it.err = err
			return
		}

		ball := newBallIterator(it.t, it.p, it.self, QueryArgs{
			Mode:        ModeBall,
			R:           r,
			ExcludeSelf: it.args.ExcludeSelf,
			Filter:      it.args.Filter,
		}, images)

		best := queue.NewMax(it.args.K)
		for {
			c, ok := ball.Next()
			if !ok {
				break
			}
			best.PushBounded(queue.Item{Index: c.Index, Distance: c.Distance}, it.args.K)
		}

		if best.Len() >= it.args.K {
			it.results = make([]Candidate, 0, best.Len())
			for _, item := range best.Sorted() {
				it.results = append(it.results, Candidate{Index: item.Index, Distance: item.Distance})
			}
			return
		}

		found = best.Len()
		r *= it.args.Scale
	}

	it.err = &ErrInsufficientNeighbors{K: it.args.K, Found: found, Radius: r}
}
