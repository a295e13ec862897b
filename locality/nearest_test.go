package locality

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

// cubicLattice returns an n*n*n unit-spacing grid centered in a cube of
// edge n.
func cubicLattice(n int) (box.Box, []r3.Vec) {
	bx, err := box.Cube(float64(n))
	if err != nil {
		panic(err)
	}
	pts := make([]r3.Vec, 0, n*n*n)
	off := float64(n-1) / 2
	for x := 0; x < n; x++ {
		for y := 0; y < n; y++ {
			for z := 0; z < n; z++ {
				pts = append(pts, r3.Vec{
					X: float64(x) - off,
					Y: float64(y) - off,
					Z: float64(z) - off,
				})
			}
		}
	}
	return bx, pts
}

func TestNearestQuery(t *testing.T) {
	t.Run("SimpleCubicShell", func(t *testing.T) {
		bx, pts := cubicLattice(5)
		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		// Every site of a simple cubic lattice has 6 neighbors at unit
		// distance, found periodically even from the boundary sites.
		for _, qi := range []int{62, 0, 124, 30} {
			it, err := tr.Query(pts[qi], qi, QueryArgs{
				Mode:        ModeNearest,
				K:           6,
				R:           0.8,
				Scale:       1.3,
				ExcludeSelf: true,
			})
			require.NoError(t, err)

			got := drain(t, it)
			require.Len(t, got, 6)
			for _, c := range got {
				assert.InDelta(t, 1.0, c.Distance, 1e-12)
			}
		}
	})

	t.Run("TieBreakByIndex", func(t *testing.T) {
		bx, pts := cubicLattice(5)
		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		// The center site is index 62; its unit shell is fixed, so equal
		// distances resolve by ascending index.
		it, err := tr.Query(pts[62], 62, QueryArgs{
			Mode:        ModeNearest,
			K:           6,
			R:           0.8,
			Scale:       1.3,
			ExcludeSelf: true,
		})
		require.NoError(t, err)

		got := drain(t, it)
		require.Len(t, got, 6)

		indices := make([]int, len(got))
		for i, c := range got {
			indices[i] = c.Index
		}
		assert.Equal(t, []int{37, 57, 61, 63, 67, 87}, indices)
	})

	t.Run("AscendingDistances", func(t *testing.T) {
		bx, err := box.Cube(12)
		require.NoError(t, err)

		rng := rand.New(rand.NewPCG(31, 32))
		pts := randomPoints(rng, bx, 400)

		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		it, err := tr.Query(pts[0], 0, QueryArgs{
			Mode:        ModeNearest,
			K:           10,
			R:           1.0,
			Scale:       1.5,
			ExcludeSelf: true,
		})
		require.NoError(t, err)

		got := drain(t, it)
		require.Len(t, got, 10)
		assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool {
			return got[i].Distance < got[j].Distance
		}))
	})

	t.Run("MatchesBruteForce", func(t *testing.T) {
		bx, err := box.New(9, 11, 10, func(o *box.Options) {
			o.XY = -0.3
			o.YZ = 0.2
		})
		require.NoError(t, err)

		rng := rand.New(rand.NewPCG(33, 34))
		pts := randomPoints(rng, bx, 250)

		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		for qi := 0; qi < 15; qi++ {
			self := rng.IntN(len(pts))
			it, err := tr.Query(pts[self], self, QueryArgs{
				Mode:        ModeNearest,
				K:           8,
				R:           1.0,
				Scale:       1.4,
				ExcludeSelf: true,
			})
			require.NoError(t, err)
			got := drain(t, it)
			require.Len(t, got, 8)

			// The brute-force 8 best under a radius certain to hold them.
			want := bruteBall(bx, pts, pts[self], self, QueryArgs{
				Mode:        ModeBall,
				R:           3.5,
				ExcludeSelf: true,
			})
			sortCandidates(want)
			require.GreaterOrEqual(t, len(want), 8)

			for i := range got {
				assert.Equal(t, want[i].Index, got[i].Index)
				assert.InDelta(t, want[i].Distance, got[i].Distance, 1e-12)
			}
		}
	})

	t.Run("GrowsFromTinyGuess", func(t *testing.T) {
		bx, pts := cubicLattice(5)
		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		it, err := tr.Query(pts[62], 62, QueryArgs{
			Mode:        ModeNearest,
			K:           6,
			R:           0.05,
			Scale:       2.0,
			ExcludeSelf: true,
		})
		require.NoError(t, err)

		got := drain(t, it)
		require.Len(t, got, 6)
		for _, c := range got {
			assert.InDelta(t, 1.0, c.Distance, 1e-12)
		}
	})

	t.Run("InsufficientNeighbors", func(t *testing.T) {
		bx, err := box.Cube(10)
		require.NoError(t, err)

		pts := []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
		}
		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		it, err := tr.Query(pts[0], NoSelf, NearestQuery(5, 0.5, 2.0))
		require.NoError(t, err)

		_, ok := it.Next()
		assert.False(t, ok)

		var ins *ErrInsufficientNeighbors
		require.ErrorAs(t, it.Err(), &ins)
		assert.Equal(t, 5, ins.K)
		assert.Equal(t, 2, ins.Found)
	})

	t.Run("ExactlyKAvailable", func(t *testing.T) {
		bx, err := box.Cube(10)
		require.NoError(t, err)

		pts := []r3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 0.3, Y: 0, Z: 0},
			{X: 0, Y: 0.7, Z: 0},
		}
		tr, err := NewTree(bx, pts)
		require.NoError(t, err)

		it, err := tr.Query(pts[0], 0, QueryArgs{
			Mode:        ModeNearest,
			K:           2,
			R:           0.1,
			Scale:       2.0,
			ExcludeSelf: true,
		})
		require.NoError(t, err)

		got := drain(t, it)
		require.Len(t, got, 2)
		assert.Equal(t, 1, got[0].Index)
		assert.Equal(t, 2, got[1].Index)
	})
}
