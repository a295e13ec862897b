package locality

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

// MaxCutoff returns the largest query radius the box supports. Beyond it a
// sphere of diameter 2r no longer fits between opposite box faces and the
// first image shell stops being sufficient.
func MaxCutoff(bx box.Box) float64 {
	d := bx.NearestPlaneDistance()
	limit := math.Min(d.X, d.Y)
	if !bx.Is2D() {
		limit = math.Min(limit, d.Z)
	}
	return limit / 2
}

// EnumerateImages returns the periodic translations a query of radius r must
// visit: the zero translation first, then the remaining first shell in a
// fixed order. 2D boxes translate in the plane only, so the shell holds 9
// vectors instead of 27.
func EnumerateImages(bx box.Box, r float64) ([]r3.Vec, error) {
	if r <= 0 || math.IsInf(r, 0) || math.IsNaN(r) {
		return nil, ErrInvalidRadius
	}
	limit := MaxCutoff(bx)
	if r >= limit {
		return nil, &ErrCutoffTooLarge{Radius: r, Limit: limit}
	}

	zmax := 1
	if bx.Is2D() {
		zmax = 0
	}
	images := make([]r3.Vec, 1, (2*zmax+1)*9)
	for iz := -zmax; iz <= zmax; iz++ {
		for iy := -1; iy <= 1; iy++ {
			for ix := -1; ix <= 1; ix++ {
				if ix == 0 && iy == 0 && iz == 0 {
					continue
				}
				images = append(images, shiftVector(bx, ix, iy, iz))
			}
		}
	}
	return images, nil
}

func shiftVector(bx box.Box, ix, iy, iz int) r3.Vec {
	return r3.Add(
		r3.Scale(float64(ix), bx.LatticeVector(0)),
		r3.Add(
			r3.Scale(float64(iy), bx.LatticeVector(1)),
			r3.Scale(float64(iz), bx.LatticeVector(2)),
		),
	)
}

// FilterImages drops translations under which the query volume cannot reach
// the root volume. The relative order of the survivors is preserved.
func FilterImages(images []r3.Vec, query, root AABB) []r3.Vec {
	kept := images[:0:0]
	for _, im := range images {
		if query.Translate(im).Overlaps(root) {
			kept = append(kept, im)
		}
	}
	return kept
}
