package voronoi

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

// BufferResult holds replicated image points and the indices of the source
// points they originate from.
type BufferResult struct {
	// Points are the image positions inside the buffer slab, in source
	// order.
	Points []r3.Vec

	// Sources[i] is the index of the input point Points[i] is an image of.
	Sources []int32
}

// Buffer replicates points into periodic images that fall within a slab of
// width buff around the cell. Tessellating the original points together with
// the returned images yields correct cells near the boundary without any
// periodic awareness in the tessellation itself.
//
// Images are generated shell by shell up to ceil(buff/L) per periodic
// dimension and kept when they lie strictly inside the tilt-adjusted bounds
// [-L/2-buff, L/2+buff]. The untranslated image is never included. A zero
// buff yields an empty result.
func Buffer(bx box.Box, points []r3.Vec, buff float64) (*BufferResult, error) {
	if len(points) == 0 {
		return nil, ErrEmptyInput
	}
	if buff < 0 || math.IsInf(buff, 0) || math.IsNaN(buff) {
		return nil, &ErrInvalidParameter{Name: "buff", Reason: "must be non-negative and finite"}
	}

	ix := int(math.Ceil(buff / bx.Lx()))
	iy := int(math.Ceil(buff / bx.Ly()))
	iz := 0
	if !bx.Is2D() {
		iz = int(math.Ceil(buff / bx.Lz()))
	}

	a1 := bx.LatticeVector(0)
	a2 := bx.LatticeVector(1)
	a3 := bx.LatticeVector(2)

	hx := bx.Lx()/2 + buff
	hy := bx.Ly()/2 + buff
	hz := bx.Lz()/2 + buff

	res := &BufferResult{}
	for idx, p := range points {
		for i := -ix; i <= ix; i++ {
			for j := -iy; j <= iy; j++ {
				for k := -iz; k <= iz; k++ {
					if i == 0 && j == 0 && k == 0 {
						continue
					}

					img := r3.Add(p, r3.Add(
						r3.Scale(float64(i), a1),
						r3.Add(r3.Scale(float64(j), a2), r3.Scale(float64(k), a3)),
					))
					if bx.Is2D() {
						img.Z = 0
					}

					// The x and y slabs follow the box tilt so the buffer
					// hugs the sheared cell.
					xadj := img.Y*bx.TiltXY() + img.Z*bx.TiltXZ()
					yadj := img.Z * bx.TiltYZ()

					keep := img.X > xadj-hx && img.X < xadj+hx &&
						img.Y > yadj-hy && img.Y < yadj+hy
					if !bx.Is2D() {
						keep = keep && img.Z > -hz && img.Z < hz
					}
					if keep {
						res.Points = append(res.Points, img)
						res.Sources = append(res.Sources, int32(idx))
					}
				}
			}
		}
	}
	return res, nil
}
