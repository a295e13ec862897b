package order

import (
	"context"
	"math"
	"math/cmplx"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/internal/parallel"
	"github.com/softsim/trajan/locality"
)

// HexaticOptions configures the bond order computation.
type HexaticOptions struct {
	// K is the symmetry fold. Defaults to 6.
	K int

	// Neighbors is the number of nearest neighbors averaged per particle.
	// Defaults to K.
	Neighbors int

	// Workers bounds the concurrency. Defaults to GOMAXPROCS.
	Workers int
}

// Hexatic computes the k-fold bond orientational order of a planar system:
// the average of exp(i·k·θ) over the bond angles θ to each particle's
// nearest neighbors.
type Hexatic struct {
	k         int
	neighbors int
	workers   int
}

// NewHexatic validates the symmetry fold and neighbor count.
func NewHexatic(optFns ...func(o *HexaticOptions)) (*Hexatic, error) {
	opts := HexaticOptions{K: 6, Workers: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.K <= 0 {
		return nil, &ErrInvalidParameter{Name: "k", Reason: "must be positive"}
	}
	if opts.Neighbors == 0 {
		opts.Neighbors = opts.K
	}
	if opts.Neighbors < 0 {
		return nil, &ErrInvalidParameter{Name: "neighbors", Reason: "must be positive"}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Hexatic{k: opts.K, neighbors: opts.Neighbors, workers: opts.Workers}, nil
}

// Compute returns one ψ_k value per particle. points must be the reference
// points the tree was built over; r and scale seed the nearest-neighbor
// search. The box must be planar.
func (h *Hexatic) Compute(ctx context.Context, tr *locality.Tree, points []r3.Vec, r, scale float64) ([]complex128, error) {
	if !tr.Box().Is2D() {
		return nil, &ErrInvalidParameter{Name: "box", Reason: "bond order requires a planar box"}
	}
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}

	nl, err := locality.BuildNeighborList(ctx, tr, points, locality.QueryArgs{
		Mode:        locality.ModeNearest,
		K:           h.neighbors,
		R:           r,
		Scale:       scale,
		ExcludeSelf: true,
	}, func(o *locality.BuildOptions) {
		o.Workers = h.workers
		o.SelfQueries = true
	})
	if err != nil {
		return nil, err
	}

	bx := tr.Box()
	psi := make([]complex128, len(points))
	err = parallel.ForN(ctx, len(points), h.workers, func(start, end int) error {
		for qi := start; qi < end; qi++ {
			first, last := nl.Segment(qi)
			var acc complex128
			for b := first; b < last; b++ {
				sep := bx.MinImage(r3.Sub(points[nl.RefIndex(b)], points[qi]))
				theta := math.Atan2(sep.Y, sep.X)
				acc += cmplx.Exp(complex(0, float64(h.k)*theta))
			}
			if last > first {
				psi[qi] = acc / complex(float64(last-first), 0)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return psi, nil
}
