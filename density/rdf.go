package density

import (
	"context"
	"math"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
	"github.com/softsim/trajan/locality"
)

// RDFOptions configures radial distribution accumulation.
type RDFOptions struct {
	// RMin sets the inner edge of the first bin. Defaults to 0.
	RMin float64

	// Workers bounds the concurrency of the per-frame queries. Defaults to
	// GOMAXPROCS.
	Workers int
}

// AccumulateOptions configures one accumulation pass.
type AccumulateOptions struct {
	// SelfQueries marks the query points as the reference points the tree
	// was built over, so each point skips itself.
	SelfQueries bool
}

// RDF accumulates the radial distribution function g(r) over one or more
// frames. Distances are binned between RMin and rmax with width dr; Reduce
// normalizes by the ideal gas expectation.
type RDF struct {
	rmin    float64
	rmax    float64
	dr      float64
	workers int

	counts  []uint64
	queries uint64
	frames  int
	lastBox box.Box
	lastRef int
}

// RDFResult is the reduced distribution.
type RDFResult struct {
	// R holds the volume-weighted bin centers.
	R []float64

	// G is the pair distribution, 1 for an ideal gas.
	G []float64

	// N is the running average neighbor count within each bin's outer
	// edge.
	N []float64

	// Frames is the number of accumulated frames.
	Frames int
}

// NewRDF validates the binning. The histogram covers [RMin, rmax) with bin
// width dr.
func NewRDF(rmax, dr float64, optFns ...func(o *RDFOptions)) (*RDF, error) {
	opts := RDFOptions{Workers: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if !(dr > 0) || math.IsInf(dr, 0) {
		return nil, &ErrInvalidParameter{Name: "dr", Reason: "must be positive and finite"}
	}
	if opts.RMin < 0 || math.IsNaN(opts.RMin) {
		return nil, &ErrInvalidParameter{Name: "rmin", Reason: "must not be negative"}
	}
	if !(rmax > opts.RMin) || math.IsInf(rmax, 0) {
		return nil, &ErrInvalidParameter{Name: "rmax", Reason: "must exceed rmin and be finite"}
	}
	nbins := int(math.Floor((rmax - opts.RMin) / dr))
	if nbins < 1 {
		return nil, &ErrInvalidParameter{Name: "rmax", Reason: "must span at least one bin"}
	}

	return &RDF{
		rmin:    opts.RMin,
		rmax:    rmax,
		dr:      dr,
		workers: opts.Workers,
		counts:  make([]uint64, nbins),
	}, nil
}

// NumBins returns the histogram size.
func (r *RDF) NumBins() int { return len(r.counts) }

// BinCenters returns the volume-weighted center of each bin,
// (2/3)·(r2³−r1³)/(r2²−r1²) for edges r1 and r2.
func (r *RDF) BinCenters() []float64 {
	centers := make([]float64, len(r.counts))
	for i := range centers {
		r1 := r.rmin + float64(i)*r.dr
		r2 := r.rmin + float64(i+1)*r.dr
		centers[i] = 2.0 / 3.0 * (r2*r2*r2 - r1*r1*r1) / (r2*r2 - r1*r1)
	}
	return centers
}

// Accumulate bins every (query, reference) pair of one frame. The reduction
// normalizes against the reference density of the last accumulated tree.
func (r *RDF) Accumulate(ctx context.Context, tr *locality.Tree, points []r3.Vec, optFns ...func(o *AccumulateOptions)) error {
	var opts AccumulateOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	nl, err := locality.BuildNeighborList(ctx, tr, points, locality.QueryArgs{
		Mode:        locality.ModeBall,
		R:           r.rmax,
		ExcludeSelf: opts.SelfQueries,
	}, func(o *locality.BuildOptions) {
		o.Workers = r.workers
		o.SelfQueries = opts.SelfQueries
	})
	if err != nil {
		return err
	}

	for b := 0; b < nl.NumBonds(); b++ {
		d := nl.Distance(b)
		if d < r.rmin {
			continue
		}
		bin := int((d - r.rmin) / r.dr)
		if bin < len(r.counts) {
			r.counts[bin]++
		}
	}

	r.queries += uint64(len(points))
	r.frames++
	r.lastBox = tr.Box()
	r.lastRef = tr.Len()
	return nil
}

// Reduce normalizes the accumulated counts into g(r) and the cumulative
// neighbor count n(r).
func (r *RDF) Reduce() (*RDFResult, error) {
	if r.frames == 0 {
		return nil, ErrNoData
	}

	res := &RDFResult{
		R:      r.BinCenters(),
		G:      make([]float64, len(r.counts)),
		N:      make([]float64, len(r.counts)),
		Frames: r.frames,
	}

	rho := float64(r.lastRef) / r.lastBox.Volume()
	cumulative := 0.0
	for i, c := range r.counts {
		avg := float64(c) / float64(r.queries)
		r1 := r.rmin + float64(i)*r.dr
		r2 := r.rmin + float64(i+1)*r.dr

		var shell float64
		if r.lastBox.Is2D() {
			shell = math.Pi * (r2*r2 - r1*r1)
		} else {
			shell = 4.0 / 3.0 * math.Pi * (r2*r2*r2 - r1*r1*r1)
		}

		res.G[i] = avg / (shell * rho)
		cumulative += avg
		res.N[i] = cumulative
	}
	return res, nil
}

// Reset drops all accumulated frames.
func (r *RDF) Reset() {
	for i := range r.counts {
		r.counts[i] = 0
	}
	r.queries = 0
	r.frames = 0
	r.lastRef = 0
}

// Compute is Reset, Accumulate once, then Reduce.
func (r *RDF) Compute(ctx context.Context, tr *locality.Tree, points []r3.Vec, optFns ...func(o *AccumulateOptions)) (*RDFResult, error) {
	r.Reset()
	if err := r.Accumulate(ctx, tr, points, optFns...); err != nil {
		return nil, err
	}
	return r.Reduce()
}
