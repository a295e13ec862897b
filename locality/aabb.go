package locality

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// AABB is an axis-aligned bounding box: a closed interval product across the
// three coordinate axes, tagged with an owner index (a point for leaves, a
// node otherwise). Behavior with NaN or infinite coordinates is undefined.
type AABB struct {
	Lower r3.Vec
	Upper r3.Vec
	Tag   int
}

// NewAABB creates a box from two corners. Corners must already satisfy
// lower <= upper component-wise.
func NewAABB(lower, upper r3.Vec, tag int) AABB {
	return AABB{Lower: lower, Upper: upper, Tag: tag}
}

// PointAABB creates the degenerate box enclosing exactly one point.
func PointAABB(p r3.Vec, tag int) AABB {
	return AABB{Lower: p, Upper: p, Tag: tag}
}

// SphereAABB creates the bounding box of a ball.
func SphereAABB(center r3.Vec, r float64) AABB {
	d := r3.Vec{X: r, Y: r, Z: r}
	return AABB{Lower: r3.Sub(center, d), Upper: r3.Add(center, d)}
}

// Merge returns the smallest box containing both operands. The receiver's
// tag is kept.
func (a AABB) Merge(b AABB) AABB {
	return AABB{
		Lower: r3.Vec{
			X: min(a.Lower.X, b.Lower.X),
			Y: min(a.Lower.Y, b.Lower.Y),
			Z: min(a.Lower.Z, b.Lower.Z),
		},
		Upper: r3.Vec{
			X: max(a.Upper.X, b.Upper.X),
			Y: max(a.Upper.Y, b.Upper.Y),
			Z: max(a.Upper.Z, b.Upper.Z),
		},
		Tag: a.Tag,
	}
}

// Overlaps reports whether the two boxes intersect. Intervals are closed, so
// touching faces count as overlap.
func (a AABB) Overlaps(b AABB) bool {
	return !(b.Upper.X < a.Lower.X || b.Lower.X > a.Upper.X ||
		b.Upper.Y < a.Lower.Y || b.Lower.Y > a.Upper.Y ||
		b.Upper.Z < a.Lower.Z || b.Lower.Z > a.Upper.Z)
}

// Contains reports whether p lies inside the box, boundary included.
func (a AABB) Contains(p r3.Vec) bool {
	return p.X >= a.Lower.X && p.X <= a.Upper.X &&
		p.Y >= a.Lower.Y && p.Y <= a.Upper.Y &&
		p.Z >= a.Lower.Z && p.Z <= a.Upper.Z
}

// ContainsAABB reports whether b lies entirely inside a.
func (a AABB) ContainsAABB(b AABB) bool {
	return b.Lower.X >= a.Lower.X && b.Upper.X <= a.Upper.X &&
		b.Lower.Y >= a.Lower.Y && b.Upper.Y <= a.Upper.Y &&
		b.Lower.Z >= a.Lower.Z && b.Upper.Z <= a.Upper.Z
}

// Translate returns the box shifted by v.
func (a AABB) Translate(v r3.Vec) AABB {
	return AABB{Lower: r3.Add(a.Lower, v), Upper: r3.Add(a.Upper, v), Tag: a.Tag}
}

// Center returns the box midpoint.
func (a AABB) Center() r3.Vec {
	return r3.Scale(0.5, r3.Add(a.Lower, a.Upper))
}

// SurfaceArea returns the total face area, the split cost proxy used by the
// tree builder. Degenerate boxes have zero area on the flat axes.
func (a AABB) SurfaceArea() float64 {
	d := r3.Sub(a.Upper, a.Lower)
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}
