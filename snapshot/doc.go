// Package snapshot provides a compact binary codec for trajectory frames.
//
// A snapshot is a self-describing stream: a fixed header carrying the box
// and the set of present sections, followed by one checksummed section per
// particle array. Sections are individually compressed, so a reader can
// detect corruption before touching the payload and a writer can trade
// speed for ratio per stream.
//
// # Compression
//
// Three codecs are supported: none, LZ4 for fast hot-path writes and ZSTD
// for archival. Incompressible sections fall back to verbatim storage
// automatically; the choice is recorded in the stream, so readers need no
// configuration.
package snapshot
