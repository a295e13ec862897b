package locality

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

const defaultLeafCapacity = 4

// Options configures tree construction.
type Options struct {
	// LeafCapacity bounds the number of points collected per leaf.
	LeafCapacity int

	// TypeIDs partition the reference points into one independent tree per
	// distinct type. Length must match the point count.
	TypeIDs []uint32

	// ReplicateImages inserts the first shell of periodic images alongside
	// the points at build time. Queries against a replicated tree enumerate
	// only the zero translation.
	ReplicateImages bool
}

// DefaultOptions holds the default tree construction parameters.
var DefaultOptions = Options{
	LeafCapacity: defaultLeafCapacity,
}

// node is one arena record. Children of an internal node follow it in
// pre-order: left at idx+1, right after the left subtree. skip spans the
// whole subtree, so a traversal advances past a rejected node in one step.
type node struct {
	bounds AABB
	left   int32
	right  int32
	skip   int32
	start  int32
	count  int32
}

func (n *node) isLeaf() bool { return n.count > 0 }

// arena is the flat node array of one per-type tree plus the leaf-ordered
// point storage it indexes.
type arena struct {
	typeID uint32
	nodes  []node
	pts    []r3.Vec
	ids    []int32
}

// Tree is an immutable bounding volume hierarchy built over a snapshot of
// reference points in a periodic box. Concurrent queries against a built
// tree are safe; a new snapshot requires a new tree.
type Tree struct {
	bx           box.Box
	arenas       []arena
	n            int
	leafCapacity int
	replicated   bool
}

// NewTree builds a tree over the given reference points.
func NewTree(bx box.Box, points []r3.Vec, optFns ...func(o *Options)) (*Tree, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if opts.LeafCapacity <= 0 {
		opts.LeafCapacity = defaultLeafCapacity
	}
	if opts.TypeIDs != nil && len(opts.TypeIDs) != len(points) {
		return nil, fmt.Errorf("%w: %d ids for %d points", ErrTypeLengthMismatch, len(opts.TypeIDs), len(points))
	}

	t := &Tree{
		bx:           bx,
		n:            len(points),
		leafCapacity: opts.LeafCapacity,
		replicated:   opts.ReplicateImages,
	}

	for _, typeID := range distinctTypes(opts.TypeIDs) {
		pts, ids := gatherType(bx, points, opts.TypeIDs, typeID, opts.ReplicateImages)
		b := builder{pts: pts, ids: ids, leafCap: opts.LeafCapacity}
		b.build(0, len(pts))
		t.arenas = append(t.arenas, arena{
			typeID: typeID,
			nodes:  b.nodes,
			pts:    b.pts,
			ids:    b.ids,
		})
	}

	return t, nil
}

// distinctTypes returns the sorted distinct type ids, or the single implicit
// type when no ids are given.
func distinctTypes(typeIDs []uint32) []uint32 {
	if typeIDs == nil {
		return []uint32{0}
	}
	seen := make(map[uint32]struct{}, 4)
	var out []uint32
	for _, id := range typeIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// gatherType collects the coordinates and original indices of one type,
// appending the first image shell when replication is requested. Replicas
// carry the index of their source point.
func gatherType(bx box.Box, points []r3.Vec, typeIDs []uint32, typeID uint32, replicate bool) ([]r3.Vec, []int32) {
	var pts []r3.Vec
	var ids []int32
	zmax := 1
	if bx.Is2D() {
		zmax = 0
	}

	for i, p := range points {
		if typeIDs != nil && typeIDs[i] != typeID {
			continue
		}
		pts = append(pts, p)
		ids = append(ids, int32(i))
		if !replicate {
			continue
		}
		for iz := -zmax; iz <= zmax; iz++ {
			for iy := -1; iy <= 1; iy++ {
				for ix := -1; ix <= 1; ix++ {
					if ix == 0 && iy == 0 && iz == 0 {
						continue
					}
					pts = append(pts, r3.Add(p, shiftVector(bx, ix, iy, iz)))
					ids = append(ids, int32(i))
				}
			}
		}
	}

	return pts, ids
}

// builder holds the in-progress arena. The point arrays are reordered in
// place so each leaf references a contiguous range.
type builder struct {
	pts     []r3.Vec
	ids     []int32
	leafCap int
	nodes   []node
	saLeft  []float64
	saRight []float64
}

// build creates the subtree over [lo, hi) and returns its arena index.
func (b *builder) build(lo, hi int) int32 {
	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{})

	if hi-lo <= b.leafCap {
		bounds := b.rangeBounds(lo, hi)
		bounds.Tag = int(idx)
		b.nodes[idx] = node{
			bounds: bounds,
			left:   -1,
			right:  -1,
			skip:   1,
			start:  int32(lo),
			count:  int32(hi - lo),
		}
		return idx
	}

	mid := b.partition(lo, hi)
	left := b.build(lo, mid)
	right := b.build(mid, hi)

	bounds := b.nodes[left].bounds.Merge(b.nodes[right].bounds)
	bounds.Tag = int(idx)
	b.nodes[idx] = node{
		bounds: bounds,
		left:   left,
		right:  right,
		skip:   int32(len(b.nodes)) - idx,
	}
	return idx
}

// partition picks the split axis and position minimizing the summed surface
// area of the two child boxes, sweeping every split of the centroid-sorted
// order on each axis. Cost ties break toward the balanced split, so ranges
// of coincident points still halve. The range is left sorted on the chosen
// axis; the returned mid separates the children.
func (b *builder) partition(lo, hi int) int {
	n := hi - lo
	b.saLeft = resize(b.saLeft, n)
	b.saRight = resize(b.saRight, n)

	bestCost := math.Inf(1)
	bestAxis := 0
	bestSplit := n / 2
	bestImbalance := math.MaxInt

	for axis := 0; axis < 3; axis++ {
		b.sortRange(lo, hi, axis)

		acc := PointAABB(b.pts[lo], 0)
		for i := 1; i < n; i++ {
			b.saLeft[i] = acc.SurfaceArea()
			acc = acc.Merge(PointAABB(b.pts[lo+i], 0))
		}
		acc = PointAABB(b.pts[hi-1], 0)
		for i := n - 1; i >= 1; i-- {
			b.saRight[i] = acc.SurfaceArea()
			acc = acc.Merge(PointAABB(b.pts[lo+i-1], 0))
		}

		for i := 1; i < n; i++ {
			cost := b.saLeft[i] + b.saRight[i]
			imbalance := i - n/2
			if imbalance < 0 {
				imbalance = -imbalance
			}
			if cost < bestCost || (cost == bestCost && imbalance < bestImbalance) {
				bestCost = cost
				bestAxis = axis
				bestSplit = i
				bestImbalance = imbalance
			}
		}
	}

	if bestAxis != 2 {
		b.sortRange(lo, hi, bestAxis)
	}
	return lo + bestSplit
}

func (b *builder) rangeBounds(lo, hi int) AABB {
	bounds := PointAABB(b.pts[lo], 0)
	for i := lo + 1; i < hi; i++ {
		bounds = bounds.Merge(PointAABB(b.pts[i], 0))
	}
	return bounds
}

func (b *builder) sortRange(lo, hi, axis int) {
	sort.Stable(&rangeSorter{
		pts:  b.pts[lo:hi],
		ids:  b.ids[lo:hi],
		axis: axis,
	})
}

type rangeSorter struct {
	pts  []r3.Vec
	ids  []int32
	axis int
}

func (s *rangeSorter) Len() int { return len(s.pts) }

func (s *rangeSorter) Less(i, j int) bool {
	return component(s.pts[i], s.axis) < component(s.pts[j], s.axis)
}

func (s *rangeSorter) Swap(i, j int) {
	s.pts[i], s.pts[j] = s.pts[j], s.pts[i]
	s.ids[i], s.ids[j] = s.ids[j], s.ids[i]
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

func resize(s []float64, n int) []float64 {
	if cap(s) < n {
		return make([]float64, n)
	}
	return s[:n]
}

// Len returns the number of reference points the tree was built over,
// excluding replicas.
func (t *Tree) Len() int { return t.n }

// Box returns the periodic box the tree was built in.
func (t *Tree) Box() box.Box { return t.bx }

// Replicated reports whether the first image shell was inserted at build
// time.
func (t *Tree) Replicated() bool { return t.replicated }

// NumTrees returns the number of per-type trees.
func (t *Tree) NumTrees() int { return len(t.arenas) }

// NumNodes returns the total node count across all per-type trees.
func (t *Tree) NumNodes() int {
	total := 0
	for i := range t.arenas {
		total += len(t.arenas[i].nodes)
	}
	return total
}

// RootBounds returns the root volume of the i-th per-type tree.
func (t *Tree) RootBounds(i int) AABB {
	return t.arenas[i].nodes[0].bounds
}

// TypeID returns the particle type of the i-th per-type tree.
func (t *Tree) TypeID(i int) uint32 {
	return t.arenas[i].typeID
}

// Check walks every arena and verifies the structural invariants: leaves
// contain their points, parents contain their children, and skip links span
// exactly their subtree. It is used by tests and costs a full traversal.
func (t *Tree) Check() error {
	for ai := range t.arenas {
		a := &t.arenas[ai]
		for i := range a.nodes {
			n := &a.nodes[i]
			if n.isLeaf() {
				if n.skip != 1 {
					return fmt.Errorf("locality: leaf %d/%d has skip %d", ai, i, n.skip)
				}
				for p := n.start; p < n.start+n.count; p++ {
					if !n.bounds.Contains(a.pts[p]) {
						return fmt.Errorf("locality: leaf %d/%d does not contain point %d", ai, i, p)
					}
				}
				continue
			}
			if n.left != int32(i)+1 {
				return fmt.Errorf("locality: node %d/%d left child %d not in pre-order", ai, i, n.left)
			}
			left, right := &a.nodes[n.left], &a.nodes[n.right]
			if n.right != n.left+left.skip {
				return fmt.Errorf("locality: node %d/%d right child %d misplaced", ai, i, n.right)
			}
			if n.skip != 1+left.skip+right.skip {
				return fmt.Errorf("locality: node %d/%d skip %d does not span subtree", ai, i, n.skip)
			}
			if !n.bounds.ContainsAABB(left.bounds) || !n.bounds.ContainsAABB(right.bounds) {
				return fmt.Errorf("locality: node %d/%d does not contain its children", ai, i)
			}
		}
	}
	return nil
}
