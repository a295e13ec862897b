// Package testutil provides helpers for particle-system tests.
//
// This package is intended for use in tests and benchmarks only. It
// generates deterministic point sets and orientations, and answers periodic
// neighbor queries by exhaustive search for use as ground truth.
//
// # Deterministic Point Sets
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformPoints(bx, 500)
//	bx, pts, _ := rng.JitteredLattice(8, 1.0, 0.05)
//
// # Ground Truth Neighbors
//
//	want := testutil.BallNeighbors(bx, pts, pts[q], q, cutoff)
//	want := testutil.NearestNeighbors(bx, pts, pts[q], q, k)
package testutil
