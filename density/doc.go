// Package density provides spatial distribution measurements over particle
// snapshots: the radial distribution function, per-particle local density,
// and generic pairwise correlation functions.
//
// All three run their pair searches through a locality.Tree and share the
// accumulate/reduce shape: Accumulate bins one frame at a time, Reduce
// normalizes whatever has been collected, Reset starts over. Compute wraps
// the three for the single-frame case.
package density
