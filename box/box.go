// Package box implements the periodic simulation cell used by all analyses.
//
// A box is a (possibly triclinic) parallelepiped centered on the origin,
// described by three edge lengths and three tilt factors. The cell matrix
// column convention is
//
//	a1 = (Lx,     0,     0)
//	a2 = (xy*Ly,  Ly,    0)
//	a3 = (xz*Lz,  yz*Lz, Lz)
//
// Positions are expected in the centered cell, i.e. fractional coordinates in
// [-1/2, 1/2). Two-dimensional boxes ignore the z axis entirely.
package box

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrNonPositiveLength is returned when a box is constructed with an edge
// length that is not strictly positive.
var ErrNonPositiveLength = errors.New("box: edge lengths must be positive")

// Options configures optional box parameters.
type Options struct {
	// XY, XZ and YZ are the tilt factors of the cell. A value of zero on all
	// three yields an orthorhombic box.
	XY float64
	XZ float64
	YZ float64
}

// DefaultOptions holds the default box parameters (orthorhombic).
var DefaultOptions = Options{}

// Box is an immutable periodic cell. The zero value is not usable; construct
// with New, NewPlanar, Cube or Square.
type Box struct {
	lx, ly, lz float64
	xy, xz, yz float64
	is2D       bool
}

// New creates a three-dimensional periodic box with the given edge lengths.
func New(lx, ly, lz float64, optFns ...func(o *Options)) (Box, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if lx <= 0 || ly <= 0 || lz <= 0 {
		return Box{}, fmt.Errorf("%w: got (%g, %g, %g)", ErrNonPositiveLength, lx, ly, lz)
	}

	return Box{
		lx: lx, ly: ly, lz: lz,
		xy: opts.XY, xz: opts.XZ, yz: opts.YZ,
	}, nil
}

// NewPlanar creates a two-dimensional periodic box in the xy plane. Only the
// XY tilt factor is honored; XZ and YZ are meaningless in two dimensions.
func NewPlanar(lx, ly float64, optFns ...func(o *Options)) (Box, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	if lx <= 0 || ly <= 0 {
		return Box{}, fmt.Errorf("%w: got (%g, %g)", ErrNonPositiveLength, lx, ly)
	}

	return Box{
		lx: lx, ly: ly,
		xy:   opts.XY,
		is2D: true,
	}, nil
}

// Cube creates a cubic box with edge length l.
func Cube(l float64) (Box, error) {
	return New(l, l, l)
}

// Square creates a two-dimensional square box with edge length l.
func Square(l float64) (Box, error) {
	return NewPlanar(l, l)
}

// Lx returns the edge length along x.
func (b Box) Lx() float64 { return b.lx }

// Ly returns the edge length along y.
func (b Box) Ly() float64 { return b.ly }

// Lz returns the edge length along z. It is zero for planar boxes.
func (b Box) Lz() float64 { return b.lz }

// TiltXY returns the xy tilt factor.
func (b Box) TiltXY() float64 { return b.xy }

// TiltXZ returns the xz tilt factor.
func (b Box) TiltXZ() float64 { return b.xz }

// TiltYZ returns the yz tilt factor.
func (b Box) TiltYZ() float64 { return b.yz }

// Is2D reports whether the box is two-dimensional.
func (b Box) Is2D() bool { return b.is2D }

// Volume returns the cell volume, or the cell area for planar boxes. Tilt
// factors shear the cell without changing its volume.
func (b Box) Volume() float64 {
	if b.is2D {
		return b.lx * b.ly
	}
	return b.lx * b.ly * b.lz
}

// LatticeVector returns the i-th cell edge vector, i in {0, 1, 2}. The third
// vector of a planar box is zero.
func (b Box) LatticeVector(i int) r3.Vec {
	switch i {
	case 0:
		return r3.Vec{X: b.lx}
	case 1:
		return r3.Vec{X: b.xy * b.ly, Y: b.ly}
	case 2:
		if b.is2D {
			return r3.Vec{}
		}
		return r3.Vec{X: b.xz * b.lz, Y: b.yz * b.lz, Z: b.lz}
	default:
		panic(fmt.Sprintf("box: lattice vector index out of range: %d", i))
	}
}

// NearestPlaneDistance returns, per lattice direction, the distance between
// the opposing faces of the cell. For tilted cells this is smaller than the
// edge length and bounds the radius for which the minimum image convention
// holds.
func (b Box) NearestPlaneDistance() r3.Vec {
	d := r3.Vec{
		X: b.lx / math.Sqrt(1+b.xy*b.xy+(b.xy*b.yz-b.xz)*(b.xy*b.yz-b.xz)),
		Y: b.ly / math.Sqrt(1+b.yz*b.yz),
	}
	if !b.is2D {
		d.Z = b.lz
	}
	return d
}

// Fractional converts an absolute vector into cell-fractional coordinates.
// For planar boxes the z component passes through unchanged.
func (b Box) Fractional(v r3.Vec) r3.Vec {
	var f r3.Vec
	if b.is2D {
		f.Z = v.Z
	} else {
		f.Z = v.Z / b.lz
	}
	f.Y = (v.Y - b.yz*b.lz*f.Z) / b.ly
	f.X = (v.X - b.xy*b.ly*f.Y - b.xz*b.lz*f.Z) / b.lx
	return f
}

// Absolute converts cell-fractional coordinates back into an absolute vector.
func (b Box) Absolute(f r3.Vec) r3.Vec {
	v := r3.Vec{
		X: f.X*b.lx + f.Y*b.xy*b.ly,
		Y: f.Y * b.ly,
	}
	if !b.is2D {
		v.X += f.Z * b.xz * b.lz
		v.Y += f.Z * b.yz * b.lz
		v.Z = f.Z * b.lz
	} else {
		v.Z = f.Z
	}
	return v
}

// Wrap maps a position into the primary (origin-centered) cell.
func (b Box) Wrap(p r3.Vec) r3.Vec {
	return b.fold(p)
}

// MinImage returns the minimum image of a displacement vector: among all
// periodic translations of v, the shortest one.
func (b Box) MinImage(v r3.Vec) r3.Vec {
	return b.fold(v)
}

func (b Box) fold(v r3.Vec) r3.Vec {
	f := b.Fractional(v)
	f.X -= math.Round(f.X)
	f.Y -= math.Round(f.Y)
	if !b.is2D {
		f.Z -= math.Round(f.Z)
	}
	return b.Absolute(f)
}

// Distance returns the minimum-image distance between two positions.
func (b Box) Distance(p, q r3.Vec) float64 {
	return r3.Norm(b.MinImage(r3.Sub(p, q)))
}

// String implements fmt.Stringer.
func (b Box) String() string {
	if b.is2D {
		return fmt.Sprintf("Box2D(L=(%g, %g), xy=%g)", b.lx, b.ly, b.xy)
	}
	return fmt.Sprintf("Box3D(L=(%g, %g, %g), tilt=(%g, %g, %g))", b.lx, b.ly, b.lz, b.xy, b.xz, b.yz)
}
