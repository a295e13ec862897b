// Package order computes orientational order parameters over particle
// snapshots.
//
// # Cubatic Order
//
// Cubatic scores how closely a set of orientations shares a single cubic
// frame. Per-particle rank-4 tensors are averaged into a global tensor, and
// the frame maximizing the overlap with it is found by simulated annealing,
// repeated over independent replicates. Each replicate draws from its own
// seeded random stream, so results are reproducible at any worker count.
//
// # Bond Order
//
// Hexatic computes the planar k-fold bond orientational order ψ_k from each
// particle's nearest neighbors, locating them through a locality.Tree.
package order
