package locality

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// ballIterator walks every per-type tree under every admissible translation
// and yields the reference points within args.R of the query point. The walk
// is resumable: Next picks up at the stored (arena, image, node, leaf point)
// position, so consumers that stop early never pay for the full traversal.
type ballIterator struct {
	t      *Tree
	p      r3.Vec
	self   int
	args   QueryArgs
	images []r3.Vec

	arena   int
	image   int
	node    int
	leaf    int
	leafEnd int

	tp r3.Vec
	qb AABB
}

func newBallIterator(t *Tree, p r3.Vec, self int, args QueryArgs, images []r3.Vec) *ballIterator {
	it := &ballIterator{
		t:      t,
		p:      p,
		self:   self,
		args:   args,
		images: images,
		leaf:   -1,
	}
	it.enterImage()
	return it
}

// enterImage caches the translated query point and its ball volume and
// restarts the node walk at the root.
func (it *ballIterator) enterImage() {
	it.tp = r3.Add(it.p, it.images[it.image])
	it.qb = SphereAABB(it.tp, it.args.R)
	it.node = 0
}

func (it *ballIterator) Next() (Candidate, bool) {
	for it.arena < len(it.t.arenas) {
		a := &it.t.arenas[it.arena]
		for it.image < len(it.images) {
			if c, ok := it.scan(a); ok {
				return c, true
			}
			it.image++
			if it.image < len(it.images) {
				it.enterImage()
			}
		}
		it.arena++
		it.image = 0
		if it.arena < len(it.t.arenas) {
			it.enterImage()
		}
	}
	return Candidate{}, false
}

func (it *ballIterator) Err() error { return nil }

// scan resumes the pre-order walk of one arena under the current
// translation. Nodes whose bounds miss the ball volume are skipped in one
// step via their subtree span; the root test doubles as the whole-image
// rejection.
func (it *ballIterator) scan(a *arena) (Candidate, bool) {
	for {
		if it.leaf >= 0 {
			for it.leaf < it.leafEnd {
				i := it.leaf
				it.leaf++
				d := r3.Norm(r3.Sub(a.pts[i], it.tp))
				if d > it.args.R {
					continue
				}
				id := int(a.ids[i])
				if !admit(it.args, it.self, id, it.image == 0) {
					continue
				}
				return Candidate{Index: id, Distance: d}, true
			}
			it.leaf = -1
		}

		if it.node >= len(a.nodes) {
			return Candidate{}, false
		}
		n := &a.nodes[it.node]
		if !it.qb.Overlaps(n.bounds) {
			it.node += int(n.skip)
			continue
		}
		it.node++
		if n.isLeaf() {
			it.leaf = int(n.start)
			it.leafEnd = int(n.start + n.count)
		}
	}
}
