package density

import (
	"context"
	"math"
	"math/cmplx"
	"runtime"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/locality"
)

// minSeparation drops effectively coincident pairs from correlation bins,
// where the product carries no angular information.
const minSeparation = 1e-3

// CorrelationOptions configures pairwise correlation accumulation.
type CorrelationOptions struct {
	// Workers bounds the concurrency. Defaults to GOMAXPROCS.
	Workers int
}

// CorrelationFunction accumulates the pairwise product correlation
// <conj(a(0))·b(r)> of two per-particle quantities into distance bins. The
// value type is real or complex; real values correlate as plain products.
type CorrelationFunction[T float64 | complex128] struct {
	rmax    float64
	dr      float64
	workers int

	sums   []T
	counts []uint64
	frames int
}

// CorrelationResult is the reduced correlation.
type CorrelationResult[T float64 | complex128] struct {
	// R holds the volume-weighted bin centers.
	R []float64

	// F is the per-bin mean product; bins that collected nothing stay
	// zero.
	F []T

	// Counts is the number of pairs each bin collected.
	Counts []uint64

	// Frames is the number of accumulated frames.
	Frames int
}

// NewCorrelationFunction validates the binning. The histogram covers
// [0, rmax) with bin width dr.
func NewCorrelationFunction[T float64 | complex128](rmax, dr float64, optFns ...func(o *CorrelationOptions)) (*CorrelationFunction[T], error) {
	opts := CorrelationOptions{Workers: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if !(dr > 0) || math.IsInf(dr, 0) {
		return nil, &ErrInvalidParameter{Name: "dr", Reason: "must be positive and finite"}
	}
	if !(rmax > 0) || math.IsInf(rmax, 0) {
		return nil, &ErrInvalidParameter{Name: "rmax", Reason: "must be positive and finite"}
	}
	nbins := int(math.Floor(rmax / dr))
	if nbins < 1 {
		return nil, &ErrInvalidParameter{Name: "rmax", Reason: "must span at least one bin"}
	}

	return &CorrelationFunction[T]{
		rmax:    rmax,
		dr:      dr,
		workers: opts.Workers,
		sums:    make([]T, nbins),
		counts:  make([]uint64, nbins),
	}, nil
}

// NumBins returns the histogram size.
func (c *CorrelationFunction[T]) NumBins() int { return len(c.counts) }

// BinCenters returns the volume-weighted center of each bin.
func (c *CorrelationFunction[T]) BinCenters() []float64 {
	centers := make([]float64, len(c.counts))
	for i := range centers {
		r1 := float64(i) * c.dr
		r2 := float64(i+1) * c.dr
		centers[i] = 2.0 / 3.0 * (r2*r2*r2 - r1*r1*r1) / (r2*r2 - r1*r1)
	}
	return centers
}

// Accumulate correlates one frame: refValues annotate the tree's reference
// points, values annotate the query points. Pairs closer than the cutoff
// contribute conj(refValue)·value to their distance bin.
func (c *CorrelationFunction[T]) Accumulate(ctx context.Context, tr *locality.Tree, refValues []T, points []r3.Vec, values []T, optFns ...func(o *AccumulateOptions)) error {
	var opts AccumulateOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if len(refValues) != tr.Len() {
		return &ErrLengthMismatch{Field: "refValues", Want: tr.Len(), Got: len(refValues)}
	}
	if len(values) != len(points) {
		return &ErrLengthMismatch{Field: "values", Want: len(points), Got: len(values)}
	}

	nl, err := locality.BuildNeighborList(ctx, tr, points, locality.QueryArgs{
		Mode:        locality.ModeBall,
		R:           c.rmax,
		ExcludeSelf: opts.SelfQueries,
	}, func(o *locality.BuildOptions) {
		o.Workers = c.workers
		o.SelfQueries = opts.SelfQueries
	})
	if err != nil {
		return err
	}

	for b := 0; b < nl.NumBonds(); b++ {
		d := nl.Distance(b)
		if d < minSeparation {
			continue
		}
		bin := int(d / c.dr)
		if bin < len(c.counts) {
			c.sums[bin] += conjugate(refValues[nl.RefIndex(b)]) * values[nl.QueryIndex(b)]
			c.counts[bin]++
		}
	}
	c.frames++
	return nil
}

// Reduce averages the accumulated products per bin.
func (c *CorrelationFunction[T]) Reduce() (*CorrelationResult[T], error) {
	if c.frames == 0 {
		return nil, ErrNoData
	}

	res := &CorrelationResult[T]{
		R:      c.BinCenters(),
		F:      make([]T, len(c.sums)),
		Counts: make([]uint64, len(c.counts)),
		Frames: c.frames,
	}
	copy(res.Counts, c.counts)
	for i, n := range c.counts {
		if n > 0 {
			res.F[i] = c.sums[i] / fromCount[T](n)
		}
	}
	return res, nil
}

// Reset drops all accumulated frames.
func (c *CorrelationFunction[T]) Reset() {
	var zero T
	for i := range c.sums {
		c.sums[i] = zero
		c.counts[i] = 0
	}
	c.frames = 0
}

// Compute is Reset, Accumulate once, then Reduce.
func (c *CorrelationFunction[T]) Compute(ctx context.Context, tr *locality.Tree, refValues []T, points []r3.Vec, values []T, optFns ...func(o *AccumulateOptions)) (*CorrelationResult[T], error) {
	c.Reset()
	if err := c.Accumulate(ctx, tr, refValues, points, values, optFns...); err != nil {
		return nil, err
	}
	return c.Reduce()
}

// conjugate returns the complex conjugate for complex values and the value
// itself for real ones.
func conjugate[T float64 | complex128](v T) T {
	switch x := any(v).(type) {
	case complex128:
		return any(cmplx.Conj(x)).(T)
	default:
		return v
	}
}

// fromCount lifts a pair count into the value domain for averaging.
func fromCount[T float64 | complex128](n uint64) T {
	var zero T
	switch any(zero).(type) {
	case complex128:
		return any(complex(float64(n), 0)).(T)
	default:
		return any(float64(n)).(T)
	}
}
