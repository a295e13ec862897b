package locality

import (
	"context"
	"runtime"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/internal/parallel"
)

// NeighborList is the materialized result of running one query per query
// point: a flat bond table grouped by query index, with an offset table for
// constant-time segment lookup.
type NeighborList struct {
	queries []int32
	refs    []int32
	dists   []float64
	offsets []int

	numQuery int
	numRef   int
}

// BuildOptions configures neighbor list construction.
type BuildOptions struct {
	// Workers bounds the number of concurrent query workers. Defaults to
	// GOMAXPROCS.
	Workers int

	// SelfQueries marks the query points as the reference points
	// themselves, so query i can exclude reference i.
	SelfQueries bool
}

// BuildNeighborList runs the query once per query point, in parallel, and
// collects the bonds. Bonds of one query are ordered by ascending distance
// with index ties broken low. Any per-query failure aborts the build.
func BuildNeighborList(ctx context.Context, t *Tree, points []r3.Vec, args QueryArgs, optFns ...func(o *BuildOptions)) (*NeighborList, error) {
	opts := BuildOptions{Workers: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if err := args.Validate(); err != nil {
		return nil, err
	}

	slots := make([][]Candidate, len(points))
	err := parallel.ForN(ctx, len(points), opts.Workers, func(start, end int) error {
		for qi := start; qi < end; qi++ {
			self := NoSelf
			if opts.SelfQueries {
				self = qi
			}
			it, err := t.Query(points[qi], self, args)
			if err != nil {
				return err
			}
			var found []Candidate
			for {
				c, ok := it.Next()
				if !ok {
					break
				}
				found = append(found, c)
			}
			if err := it.Err(); err != nil {
				return err
			}
			sort.Slice(found, func(i, j int) bool {
				if found[i].Distance != found[j].Distance {
					return found[i].Distance < found[j].Distance
				}
				return found[i].Index < found[j].Index
			})
			slots[qi] = found
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return fromSlots(slots, t.Len()), nil
}

func fromSlots(slots [][]Candidate, numRef int) *NeighborList {
	total := 0
	for _, s := range slots {
		total += len(s)
	}
	l := &NeighborList{
		queries:  make([]int32, 0, total),
		refs:     make([]int32, 0, total),
		dists:    make([]float64, 0, total),
		offsets:  make([]int, len(slots)+1),
		numQuery: len(slots),
		numRef:   numRef,
	}
	for qi, s := range slots {
		l.offsets[qi] = len(l.refs)
		for _, c := range s {
			l.queries = append(l.queries, int32(qi))
			l.refs = append(l.refs, int32(c.Index))
			l.dists = append(l.dists, c.Distance)
		}
	}
	l.offsets[len(slots)] = len(l.refs)
	return l
}

// NumBonds returns the total number of bonds.
func (l *NeighborList) NumBonds() int { return len(l.refs) }

// NumQuery returns the number of query points the list was built for.
func (l *NeighborList) NumQuery() int { return l.numQuery }

// NumRef returns the number of reference points the list was built against.
func (l *NeighborList) NumRef() int { return l.numRef }

// QueryIndex returns the query point of bond b.
func (l *NeighborList) QueryIndex(b int) int { return int(l.queries[b]) }

// RefIndex returns the reference point of bond b.
func (l *NeighborList) RefIndex(b int) int { return int(l.refs[b]) }

// Distance returns the separation of bond b.
func (l *NeighborList) Distance(b int) float64 { return l.dists[b] }

// Segment returns the half-open bond range belonging to query point q.
func (l *NeighborList) Segment(q int) (start, end int) {
	return l.offsets[q], l.offsets[q+1]
}

// Count returns the number of bonds of query point q.
func (l *NeighborList) Count(q int) int {
	return l.offsets[q+1] - l.offsets[q]
}

// Filter returns a new list holding only the bonds the predicate keeps. The
// offset table is rebuilt; query and reference counts carry over.
func (l *NeighborList) Filter(keep func(query, ref int, dist float64) bool) *NeighborList {
	out := &NeighborList{
		offsets:  make([]int, l.numQuery+1),
		numQuery: l.numQuery,
		numRef:   l.numRef,
	}
	b := 0
	for qi := 0; qi < l.numQuery; qi++ {
		out.offsets[qi] = len(out.refs)
		_, end := l.Segment(qi)
		for ; b < end; b++ {
			if keep(int(l.queries[b]), int(l.refs[b]), l.dists[b]) {
				out.queries = append(out.queries, l.queries[b])
				out.refs = append(out.refs, l.refs[b])
				out.dists = append(out.dists, l.dists[b])
			}
		}
	}
	out.offsets[l.numQuery] = len(out.refs)
	return out
}
