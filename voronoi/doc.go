// Package voronoi prepares periodic systems for Voronoi tessellation.
//
// Tessellation libraries generally operate on open space. For a periodic
// cell the standard trick is to surround the cell with enough image
// particles that every cell of interest is bounded by real geometry, run
// the tessellation on the combined set, and keep only the cells of the
// original particles. Buffer produces that image set.
//
// The tessellation itself is out of scope here. Feed the combined point
// set to a geometry library and map cells back through BufferResult.Sources.
package voronoi
