// Package locality provides periodic-aware neighbor finding over particle
// snapshots.
//
// A Tree is a flat bounding volume hierarchy built once per snapshot, with
// one independent sub-tree per particle type. Queries translate the query
// point through the periodic images of the box instead of duplicating the
// reference points, so a single build serves every cutoff up to the box
// limit.
//
// # Query Modes
//
//   - ModeBall: every reference point within a fixed radius
//   - ModeNearest: the k closest reference points, found by growing a guess
//     radius until k candidates fit
//
// Both modes return a lazy Iterator; neighbors are produced on demand and a
// consumer that stops early never pays for the rest of the traversal.
//
// # Periodic Images
//
// EnumerateImages yields the translations a query must visit, the zero
// translation first. The box must accommodate the cutoff: once 2r reaches
// the nearest plane distance the first image shell stops being sufficient
// and the query fails with ErrCutoffTooLarge.
//
// # Neighbor Lists
//
// BuildNeighborList materializes one query per point into a flat bond table
// grouped by query index, built concurrently across query points.
package locality
