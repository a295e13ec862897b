// Package trajan provides spatial analysis for particle simulations.
//
// Trajan post-processes trajectory frames from molecular dynamics and Monte
// Carlo runs: points in a periodic triclinic box, optionally carrying
// orientations and type ids. Analyses share one lazily built spatial tree
// and answer neighbor queries with full periodic boundary handling.
//
// # Quick Start
//
// Analyze a frame in memory:
//
//	ctx := context.Background()
//	bx, _ := box.Cube(20)
//	f, _ := frame.New(bx, positions)
//	tj, _ := trajan.New(f)
//
//	nl, _ := tj.Neighbors(ctx, nil, locality.BallQuery(2.5))
//	g, _ := tj.RDF(ctx, 5.0, 0.05)
//
// Restrict queries to a particle type:
//
//	f, _ := frame.New(bx, positions, func(o *frame.Options) { o.TypeIDs = typeIDs })
//	tj, _ := trajan.New(f)
//	args := locality.BallQuery(2.5)
//	args.Filter = tj.SelectTypes(1)
//	nl, _ := tj.Neighbors(ctx, nil, args)
//
// # Neighbor Queries
//
// Two query modes cover the common cases:
//
//	// Ball: every neighbor within a cutoff.
//	nl, _ := tj.Neighbors(ctx, nil, locality.BallQuery(2.5))
//
//	// Nearest: the k closest neighbors, growing from a radius guess.
//	nl, _ := tj.Neighbors(ctx, nil, locality.NearestQuery(12, 1.5, 1.4))
//
// Passing nil query points runs the frame's particles against themselves
// with self bonds excluded. Pass explicit points to query foreign positions,
// such as grid probes or a second species.
//
// # Analyses
//
//   - RDF: radial distribution function g(r)
//   - LocalDensity: smoothed per-particle number density
//   - Correlate: spatial autocorrelation of a scalar or complex field
//   - Cubatic: global cubatic order via parallel simulated annealing
//   - Hexatic: k-fold bond orientational order of planar systems
//   - VoronoiBuffer: periodic ghost shell for Voronoi constructions
//
// # Snapshots and Archives
//
// Frames serialize to a compact snapshot format with checksummed,
// optionally compressed sections:
//
//	var buf bytes.Buffer
//	_ = tj.SaveSnapshot(ctx, &buf)
//	tj2, _ := trajan.Load(&buf)
//
// Archives move snapshots through pluggable object stores (local disk,
// in-memory, S3, MinIO), optionally bounded by a resource controller:
//
//	store := archive.NewLocalStore("./frames")
//	_ = tj.PushArchive(ctx, store, "frames/000100.snap")
//	_ = tj.PullArchive(ctx, store, "frames/000100.snap")
package trajan
