package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

func TestRNGDeterminism(t *testing.T) {
	bx, err := box.Cube(10)
	require.NoError(t, err)

	a := NewRNG(4711).UniformPoints(bx, 16)
	b := NewRNG(4711).UniformPoints(bx, 16)
	assert.Equal(t, a, b)

	rng := NewRNG(4711)
	first := rng.UniformPoints(bx, 16)
	rng.Reset()
	assert.Equal(t, first, rng.UniformPoints(bx, 16))
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestUniformPointsStayInCell(t *testing.T) {
	bx, err := box.Cube(8)
	require.NoError(t, err)

	pts := NewRNG(1).UniformPoints(bx, 256)
	require.Len(t, pts, 256)

	for _, p := range pts {
		f := bx.Fractional(p)
		assert.GreaterOrEqual(t, f.X, -0.5)
		assert.Less(t, f.X, 0.5)
		assert.GreaterOrEqual(t, f.Y, -0.5)
		assert.Less(t, f.Y, 0.5)
		assert.GreaterOrEqual(t, f.Z, -0.5)
		assert.Less(t, f.Z, 0.5)
	}
}

func TestUniformPointsPlanar(t *testing.T) {
	bx, err := box.Square(8)
	require.NoError(t, err)

	for _, p := range NewRNG(1).UniformPoints(bx, 64) {
		assert.Zero(t, p.Z)
	}
}

func TestJitteredLattice(t *testing.T) {
	rng := NewRNG(7)

	bx, pts, err := rng.JitteredLattice(4, 1.0, 0)
	require.NoError(t, err)
	require.Len(t, pts, 64)

	// Without jitter the lattice is perfect: six neighbors at exactly 1.
	ns := BallNeighbors(bx, pts, pts[0], 0, 1.1)
	require.Len(t, ns, 6)
	for _, n := range ns {
		assert.InDelta(t, 1.0, n.Distance, 1e-12)
	}
}

func TestRandomOrientationsAreUnit(t *testing.T) {
	qs := NewRNG(42).RandomOrientations(128)
	require.Len(t, qs, 128)

	for _, q := range qs {
		norm := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
		assert.InDelta(t, 1.0, norm, 1e-12)
	}
}

func TestBallNeighborsWrapsImages(t *testing.T) {
	bx, err := box.Cube(10)
	require.NoError(t, err)

	// Neighbors across the periodic boundary.
	pts := []r3.Vec{{X: -4.9}, {X: 4.9}, {X: 0}}

	ns := BallNeighbors(bx, pts, pts[0], 0, 1.0)
	require.Len(t, ns, 1)
	assert.Equal(t, 1, ns[0].Index)
	assert.InDelta(t, 0.2, ns[0].Distance, 1e-12)
}

func TestNearestNeighborsOrdering(t *testing.T) {
	bx, err := box.Cube(10)
	require.NoError(t, err)

	pts := []r3.Vec{{}, {X: 1}, {X: 2}, {Y: 3}}

	ns := NearestNeighbors(bx, pts, pts[0], 0, 2)
	require.Len(t, ns, 2)
	assert.Equal(t, 1, ns[0].Index)
	assert.Equal(t, 2, ns[1].Index)

	// A foreign probe keeps every particle.
	ns = NearestNeighbors(bx, pts, r3.Vec{X: 0.4}, -1, 4)
	require.Len(t, ns, 4)
	assert.Equal(t, 0, ns[0].Index)
	assert.Equal(t, 1, ns[1].Index)
}
