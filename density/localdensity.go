package density

import (
	"context"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/internal/parallel"
	"github.com/softsim/trajan/locality"
)

// LocalDensityOptions configures the computation.
type LocalDensityOptions struct {
	// Workers bounds the concurrency. Defaults to GOMAXPROCS.
	Workers int
}

// LocalDensity estimates the number density around each particle by counting
// neighbors within a cutoff, smoothed by the particle diameter: a neighbor
// sphere straddling the cutoff contributes its overlap fraction instead of
// jumping between 0 and 1.
type LocalDensity struct {
	rcut     float64
	volume   float64
	diameter float64
	workers  int
}

// LocalDensityResult holds per-particle densities and weighted neighbor
// counts.
type LocalDensityResult struct {
	// Density is volume times the weighted neighbor count over the cutoff
	// sphere volume.
	Density []float64

	// NumNeighbors is the weighted neighbor count.
	NumNeighbors []float64
}

// NewLocalDensity validates the cutoff, the per-particle volume, and the
// particle diameter.
func NewLocalDensity(rcut, volume, diameter float64, optFns ...func(o *LocalDensityOptions)) (*LocalDensity, error) {
	opts := LocalDensityOptions{Workers: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if !(rcut > 0) || math.IsInf(rcut, 0) {
		return nil, &ErrInvalidParameter{Name: "rcut", Reason: "must be positive and finite"}
	}
	if !(volume > 0) || math.IsInf(volume, 0) {
		return nil, &ErrInvalidParameter{Name: "volume", Reason: "must be positive and finite"}
	}
	if diameter < 0 || math.IsNaN(diameter) || math.IsInf(diameter, 0) {
		return nil, &ErrInvalidParameter{Name: "diameter", Reason: "must not be negative"}
	}

	return &LocalDensity{
		rcut:     rcut,
		volume:   volume,
		diameter: diameter,
		workers:  opts.Workers,
	}, nil
}

// Compute runs one ball query per point against the tree the points were
// built into and reduces the weighted counts.
func (ld *LocalDensity) Compute(ctx context.Context, tr *locality.Tree, points []r3.Vec) (*LocalDensityResult, error) {
	nl, err := locality.BuildNeighborList(ctx, tr, points, locality.QueryArgs{
		Mode:        locality.ModeBall,
		R:           ld.rcut + ld.diameter/2,
		ExcludeSelf: true,
	}, func(o *locality.BuildOptions) {
		o.Workers = ld.workers
		o.SelfQueries = true
	})
	if err != nil {
		return nil, err
	}

	var cutoffVolume float64
	if tr.Box().Is2D() {
		cutoffVolume = math.Pi * ld.rcut * ld.rcut
	} else {
		cutoffVolume = 4.0 / 3.0 * math.Pi * ld.rcut * ld.rcut * ld.rcut
	}

	res := &LocalDensityResult{
		Density:      make([]float64, len(points)),
		NumNeighbors: make([]float64, len(points)),
	}
	err = parallel.ForN(ctx, len(points), ld.workers, func(start, end int) error {
		for qi := start; qi < end; qi++ {
			first, last := nl.Segment(qi)
			sum := 0.0
			for b := first; b < last; b++ {
				sum += ld.weight(nl.Distance(b))
			}
			res.NumNeighbors[qi] = sum
			res.Density[qi] = ld.volume * sum / cutoffVolume
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// weight is the fraction of a neighbor sphere inside the cutoff, clamped to
// [0, 1]. Point particles weigh 1 anywhere inside the cutoff.
func (ld *LocalDensity) weight(dist float64) float64 {
	if ld.diameter == 0 {
		return 1
	}
	w := (ld.rcut + ld.diameter/2 - dist) / ld.diameter
	if w < 0 {
		return 0
	}
	if w > 1 {
		return 1
	}
	return w
}
