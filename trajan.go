package trajan

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/archive"
	"github.com/softsim/trajan/density"
	"github.com/softsim/trajan/frame"
	"github.com/softsim/trajan/locality"
	"github.com/softsim/trajan/order"
	"github.com/softsim/trajan/resource"
	"github.com/softsim/trajan/snapshot"
	"github.com/softsim/trajan/voronoi"
)

// Trajan analyzes one frame of a particle trajectory. The spatial tree the
// analyses share is built lazily on first use and cached until the frame is
// replaced.
type Trajan struct {
	mu    sync.Mutex // protects frame and tree
	frame *frame.Frame
	tree  *locality.Tree

	opts    options
	metrics MetricsCollector
	logger  *Logger
}

// New creates an analyzer over a validated frame.
func New(f *frame.Frame, optFns ...Option) (*Trajan, error) {
	opts := applyOptions(optFns)
	if f == nil {
		return nil, fmt.Errorf("%w: nil frame", ErrEmptyInput)
	}
	if err := f.Validate(); err != nil {
		return nil, translateError(err)
	}

	return &Trajan{
		frame:   f,
		opts:    opts,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}, nil
}

// Load decodes a snapshot from r and creates an analyzer over its frame.
func Load(r io.Reader, optFns ...Option) (*Trajan, error) {
	f, err := snapshot.Read(r)
	if err != nil {
		return nil, translateError(err)
	}
	return New(f, optFns...)
}

// Frame returns the frame under analysis.
func (t *Trajan) Frame() *frame.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.frame
}

// SetFrame replaces the frame under analysis and invalidates the cached
// tree.
func (t *Trajan) SetFrame(f *frame.Frame) error {
	if f == nil {
		return fmt.Errorf("%w: nil frame", ErrEmptyInput)
	}
	if err := f.Validate(); err != nil {
		return translateError(err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = f
	t.tree = nil
	return nil
}

// Len returns the number of particles in the frame.
func (t *Trajan) Len() int {
	return t.Frame().Len()
}

// Tree returns the spatial tree over the frame's particles, building it on
// first use.
func (t *Trajan) Tree() (*locality.Tree, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.tree != nil {
		return t.tree, nil
	}

	f := t.frame
	tr, err := locality.NewTree(f.Box, f.Positions, func(o *locality.Options) {
		if t.opts.leafCapacity > 0 {
			o.LeafCapacity = t.opts.leafCapacity
		}
		if t.opts.typeTrees && f.HasTypes() {
			o.TypeIDs = f.TypeIDs
		}
		o.ReplicateImages = t.opts.replicateImages
	})
	if err != nil {
		return nil, translateError(err)
	}
	t.tree = tr
	return tr, nil
}

// Neighbors materializes the bonds of one query batch against the frame's
// particles. A nil points slice queries the particles against themselves,
// excluding each particle's own zero-distance bond.
func (t *Trajan) Neighbors(ctx context.Context, points []r3.Vec, args locality.QueryArgs, optFns ...func(o *locality.BuildOptions)) (*locality.NeighborList, error) {
	start := time.Now()
	queries := len(points)
	if points == nil {
		queries = t.Len()
	}
	nl, err := t.neighbors(ctx, points, args, optFns)
	duration := time.Since(start)
	err = translateError(err)
	bonds := 0
	if nl != nil {
		bonds = nl.NumBonds()
	}
	t.metrics.RecordQuery(args.Mode.String(), queries, duration, err)
	t.logger.LogQuery(ctx, args.Mode.String(), queries, bonds, err)
	if err != nil {
		return nil, err
	}
	return nl, nil
}

func (t *Trajan) neighbors(ctx context.Context, points []r3.Vec, args locality.QueryArgs, optFns []func(o *locality.BuildOptions)) (*locality.NeighborList, error) {
	tr, err := t.Tree()
	if err != nil {
		return nil, err
	}

	self := points == nil
	if self {
		points = t.Frame().Positions
	}

	fns := make([]func(o *locality.BuildOptions), 0, len(optFns)+1)
	fns = append(fns, func(o *locality.BuildOptions) {
		o.Workers = t.opts.workers
		o.SelfQueries = self
	})
	fns = append(fns, optFns...)

	return locality.BuildNeighborList(ctx, tr, points, args, fns...)
}

// RDF computes the radial distribution function g(r) of the frame with bin
// width dr out to rmax. For multi-frame averaging use density.RDF directly
// and accumulate one frame at a time.
func (t *Trajan) RDF(ctx context.Context, rmax, dr float64, optFns ...func(o *density.RDFOptions)) (*density.RDFResult, error) {
	start := time.Now()
	res, err := t.rdf(ctx, rmax, dr, optFns)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordCompute("rdf", t.Len(), duration, err)
	t.logger.LogCompute(ctx, "rdf", t.Len(), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Trajan) rdf(ctx context.Context, rmax, dr float64, optFns []func(o *density.RDFOptions)) (*density.RDFResult, error) {
	fns := make([]func(o *density.RDFOptions), 0, len(optFns)+1)
	fns = append(fns, func(o *density.RDFOptions) {
		o.Workers = t.opts.workers
	})
	fns = append(fns, optFns...)

	r, err := density.NewRDF(rmax, dr, fns...)
	if err != nil {
		return nil, err
	}
	tr, err := t.Tree()
	if err != nil {
		return nil, err
	}
	return r.Compute(ctx, tr, t.Frame().Positions, func(o *density.AccumulateOptions) {
		o.SelfQueries = true
	})
}

// LocalDensity estimates the number density around each particle by counting
// neighbors within rcut, smoothed by the particle diameter. volume is the
// volume of one particle.
func (t *Trajan) LocalDensity(ctx context.Context, rcut, volume, diameter float64) (*density.LocalDensityResult, error) {
	start := time.Now()
	res, err := t.localDensity(ctx, rcut, volume, diameter)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordCompute("local density", t.Len(), duration, err)
	t.logger.LogCompute(ctx, "local density", t.Len(), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Trajan) localDensity(ctx context.Context, rcut, volume, diameter float64) (*density.LocalDensityResult, error) {
	ld, err := density.NewLocalDensity(rcut, volume, diameter, func(o *density.LocalDensityOptions) {
		o.Workers = t.opts.workers
	})
	if err != nil {
		return nil, err
	}
	tr, err := t.Tree()
	if err != nil {
		return nil, err
	}
	return ld.Compute(ctx, tr, t.Frame().Positions)
}

// Correlate computes the spatial autocorrelation <conj(a(0))·a(r)> of a
// per-particle quantity over the frame in t, binned by pair distance out to
// rmax. values holds one value per particle.
func Correlate[T float64 | complex128](ctx context.Context, t *Trajan, values []T, rmax, dr float64, optFns ...func(o *density.CorrelationOptions)) (*density.CorrelationResult[T], error) {
	start := time.Now()
	res, err := correlate(ctx, t, values, rmax, dr, optFns)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordCompute("correlation", len(values), duration, err)
	t.logger.LogCompute(ctx, "correlation", len(values), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func correlate[T float64 | complex128](ctx context.Context, t *Trajan, values []T, rmax, dr float64, optFns []func(o *density.CorrelationOptions)) (*density.CorrelationResult[T], error) {
	fns := make([]func(o *density.CorrelationOptions), 0, len(optFns)+1)
	fns = append(fns, func(o *density.CorrelationOptions) {
		o.Workers = t.opts.workers
	})
	fns = append(fns, optFns...)

	c, err := density.NewCorrelationFunction[T](rmax, dr, fns...)
	if err != nil {
		return nil, err
	}
	tr, err := t.Tree()
	if err != nil {
		return nil, err
	}
	return c.Compute(ctx, tr, values, t.Frame().Positions, values, func(o *density.AccumulateOptions) {
		o.SelfQueries = true
	})
}

// Cubatic measures the cubatic order of the frame's orientations. The global
// order parameter is found by simulated annealing from tInitial down to
// tFinal, run as independent replicates seeded from seed.
func (t *Trajan) Cubatic(ctx context.Context, tInitial, tFinal, scale float64, replicates int, seed uint64, optFns ...func(o *order.CubaticOptions)) (*order.CubaticResult, error) {
	start := time.Now()
	res, err := t.cubatic(ctx, tInitial, tFinal, scale, replicates, seed, optFns)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordCompute("cubatic", t.Len(), duration, err)
	t.logger.LogCompute(ctx, "cubatic", t.Len(), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Trajan) cubatic(ctx context.Context, tInitial, tFinal, scale float64, replicates int, seed uint64, optFns []func(o *order.CubaticOptions)) (*order.CubaticResult, error) {
	fns := make([]func(o *order.CubaticOptions), 0, len(optFns)+1)
	fns = append(fns, func(o *order.CubaticOptions) {
		o.Workers = t.opts.workers
	})
	fns = append(fns, optFns...)

	c, err := order.NewCubatic(tInitial, tFinal, scale, replicates, seed, fns...)
	if err != nil {
		return nil, err
	}
	return c.Compute(ctx, t.Frame().Orientations)
}

// Hexatic computes the k-fold bond orientational order of a planar frame.
// r and scale seed the nearest-neighbor search the bond angles come from.
func (t *Trajan) Hexatic(ctx context.Context, r, scale float64, optFns ...func(o *order.HexaticOptions)) ([]complex128, error) {
	start := time.Now()
	res, err := t.hexatic(ctx, r, scale, optFns)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordCompute("hexatic", t.Len(), duration, err)
	t.logger.LogCompute(ctx, "hexatic", t.Len(), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (t *Trajan) hexatic(ctx context.Context, r, scale float64, optFns []func(o *order.HexaticOptions)) ([]complex128, error) {
	fns := make([]func(o *order.HexaticOptions), 0, len(optFns)+1)
	fns = append(fns, func(o *order.HexaticOptions) {
		o.Workers = t.opts.workers
	})
	fns = append(fns, optFns...)

	h, err := order.NewHexatic(fns...)
	if err != nil {
		return nil, err
	}
	tr, err := t.Tree()
	if err != nil {
		return nil, err
	}
	return h.Compute(ctx, tr, t.Frame().Positions, r, scale)
}

// VoronoiBuffer replicates the frame's particles into a periodic buffer
// shell of width buff, the point set a Voronoi or Delaunay construction
// needs to see correct cells at the box boundary.
func (t *Trajan) VoronoiBuffer(ctx context.Context, buff float64) (*voronoi.BufferResult, error) {
	start := time.Now()
	f := t.Frame()
	res, err := voronoi.Buffer(f.Box, f.Positions, buff)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordCompute("voronoi buffer", f.Len(), duration, err)
	t.logger.LogCompute(ctx, "voronoi buffer", f.Len(), err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SelectTypes returns the indices of all particles whose type id is among
// typeIDs, for use as a query filter. A frame without type ids selects
// nothing.
func (t *Trajan) SelectTypes(typeIDs ...uint32) *roaring.Bitmap {
	f := t.Frame()
	sel := roaring.New()
	if !f.HasTypes() {
		return sel
	}

	want := make(map[uint32]struct{}, len(typeIDs))
	for _, id := range typeIDs {
		want[id] = struct{}{}
	}
	for i, id := range f.TypeIDs {
		if _, ok := want[id]; ok {
			sel.Add(uint32(i))
		}
	}
	return sel
}

// SaveSnapshot encodes the frame to w using the configured compression.
func (t *Trajan) SaveSnapshot(ctx context.Context, w io.Writer, optFns ...func(o *snapshot.Options)) error {
	start := time.Now()
	f := t.Frame()
	err := translateError(snapshot.Write(w, f, t.snapshotOptFns(optFns)...))
	t.metrics.RecordSnapshot("save", time.Since(start), err)
	t.logger.LogSnapshot(ctx, "save", f.Len(), err)
	return err
}

// LoadSnapshot decodes a frame from r and installs it, invalidating the
// cached tree.
func (t *Trajan) LoadSnapshot(ctx context.Context, r io.Reader) error {
	start := time.Now()
	f, err := snapshot.Read(r)
	if err == nil {
		err = t.SetFrame(f)
	}
	err = translateError(err)
	particles := 0
	if f != nil {
		particles = f.Len()
	}
	t.metrics.RecordSnapshot("load", time.Since(start), err)
	t.logger.LogSnapshot(ctx, "load", particles, err)
	return err
}

// PushArchive encodes the frame and streams it into the store under name.
// Transfers honor the configured resource controller.
func (t *Trajan) PushArchive(ctx context.Context, store archive.Store, name string, optFns ...func(o *snapshot.Options)) error {
	start := time.Now()
	bytes, err := t.pushArchive(ctx, store, name, optFns)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordArchive("push", bytes, duration, err)
	t.logger.LogArchive(ctx, "push", name, bytes, err)
	return err
}

func (t *Trajan) pushArchive(ctx context.Context, store archive.Store, name string, optFns []func(o *snapshot.Options)) (int64, error) {
	if c := t.opts.controller; c != nil {
		if err := c.AcquireTransfer(ctx); err != nil {
			return 0, err
		}
		defer c.ReleaseTransfer()
	}

	wb, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	var w io.Writer = wb
	if t.opts.controller != nil {
		w = resource.NewRateLimitedWriter(ctx, w, t.opts.controller)
	}
	cw := &countingWriter{w: w}

	werr := snapshot.Write(cw, t.Frame(), t.snapshotOptFns(optFns)...)
	cerr := wb.Close()
	if werr != nil {
		return cw.n, werr
	}
	return cw.n, cerr
}

// PullArchive reads the named snapshot from the store and installs the
// decoded frame, invalidating the cached tree.
func (t *Trajan) PullArchive(ctx context.Context, store archive.Store, name string) error {
	start := time.Now()
	bytes, err := t.pullArchive(ctx, store, name)
	duration := time.Since(start)
	err = translateError(err)
	t.metrics.RecordArchive("pull", bytes, duration, err)
	t.logger.LogArchive(ctx, "pull", name, bytes, err)
	return err
}

func (t *Trajan) pullArchive(ctx context.Context, store archive.Store, name string) (int64, error) {
	if c := t.opts.controller; c != nil {
		if err := c.AcquireTransfer(ctx); err != nil {
			return 0, err
		}
		defer c.ReleaseTransfer()
	}

	b, err := store.Open(ctx, name)
	if err != nil {
		return 0, err
	}
	defer b.Close()

	var r io.Reader = io.NewSectionReader(b, 0, b.Size())
	if t.opts.controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, t.opts.controller)
	}

	f, err := snapshot.Read(r)
	if err != nil {
		return b.Size(), err
	}
	return b.Size(), t.SetFrame(f)
}

func (t *Trajan) snapshotOptFns(optFns []func(o *snapshot.Options)) []func(o *snapshot.Options) {
	fns := make([]func(o *snapshot.Options), 0, len(optFns)+1)
	fns = append(fns, func(o *snapshot.Options) {
		o.Compression = t.opts.compression
	})
	return append(fns, optFns...)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
