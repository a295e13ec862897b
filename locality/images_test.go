package locality

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

func TestEnumerateImages(t *testing.T) {
	bx, err := box.Cube(10)
	require.NoError(t, err)

	t.Run("FirstShell3D", func(t *testing.T) {
		images, err := EnumerateImages(bx, 1.0)
		require.NoError(t, err)
		require.Len(t, images, 27)

		// The zero translation leads.
		assert.Equal(t, r3.Vec{}, images[0])

		// All 27 translations are distinct.
		seen := make(map[r3.Vec]struct{}, len(images))
		for _, im := range images {
			seen[im] = struct{}{}
		}
		assert.Len(t, seen, 27)
	})

	t.Run("FirstShell2D", func(t *testing.T) {
		planar, err := box.Square(10)
		require.NoError(t, err)

		images, err := EnumerateImages(planar, 1.0)
		require.NoError(t, err)
		require.Len(t, images, 9)

		assert.Equal(t, r3.Vec{}, images[0])
		for _, im := range images {
			assert.Equal(t, 0.0, im.Z)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		a, err := EnumerateImages(bx, 2.0)
		require.NoError(t, err)
		b, err := EnumerateImages(bx, 3.0)
		require.NoError(t, err)

		// The order does not depend on the radius.
		assert.Equal(t, a, b)
	})

	t.Run("InvalidRadius", func(t *testing.T) {
		for _, r := range []float64{0, -1, math.Inf(1), math.NaN()} {
			_, err := EnumerateImages(bx, r)
			assert.ErrorIs(t, err, ErrInvalidRadius)
		}
	})

	t.Run("CutoffTooLarge", func(t *testing.T) {
		_, err := EnumerateImages(bx, 5.0)
		var ctl *ErrCutoffTooLarge
		require.ErrorAs(t, err, &ctl)
		assert.Equal(t, 5.0, ctl.Radius)
		assert.Equal(t, 5.0, ctl.Limit)

		// Just under the limit passes.
		_, err = EnumerateImages(bx, 4.999)
		assert.NoError(t, err)
	})

	t.Run("TriclinicLimit", func(t *testing.T) {
		sheared, err := box.New(10, 10, 10, func(o *box.Options) {
			o.XY = 1.0
		})
		require.NoError(t, err)

		// Tilt shrinks the x plane spacing below Lx.
		limit := MaxCutoff(sheared)
		assert.Less(t, limit, 5.0)

		_, err = EnumerateImages(sheared, limit*1.01)
		var ctl *ErrCutoffTooLarge
		assert.ErrorAs(t, err, &ctl)

		_, err = EnumerateImages(sheared, limit*0.99)
		assert.NoError(t, err)
	})
}

func TestFilterImages(t *testing.T) {
	bx, err := box.Cube(10)
	require.NoError(t, err)

	images, err := EnumerateImages(bx, 1.0)
	require.NoError(t, err)

	root := NewAABB(r3.Vec{X: -5, Y: -5, Z: -5}, r3.Vec{X: 5, Y: 5, Z: 5}, 0)

	t.Run("CornerQueryKeepsOctant", func(t *testing.T) {
		// A small ball in the corner reaches the root volume only under the
		// zero translation and the 7 pulling it back across the corner.
		q := SphereAABB(r3.Vec{X: 4.9, Y: 4.9, Z: 4.9}, 0.5)
		kept := FilterImages(images, q, root)
		assert.Len(t, kept, 8)

		assert.Equal(t, r3.Vec{}, kept[0])
	})

	t.Run("CentralQueryKeepsZeroOnly", func(t *testing.T) {
		q := SphereAABB(r3.Vec{}, 0.5)
		kept := FilterImages(images, q, root)
		require.Len(t, kept, 1)
		assert.Equal(t, r3.Vec{}, kept[0])
	})

	t.Run("PreservesOrder", func(t *testing.T) {
		q := SphereAABB(r3.Vec{X: 4.9, Y: 0, Z: 0}, 0.5)
		kept := FilterImages(images, q, root)

		// Zero translation still leads, having been first in the input.
		require.NotEmpty(t, kept)
		assert.Equal(t, r3.Vec{}, kept[0])
	})
}
