package density

import (
	"context"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
	"github.com/softsim/trajan/locality"
)

func constValues[T float64 | complex128](n int, v T) []T {
	out := make([]T, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestNewCorrelationFunction(t *testing.T) {
	tests := []struct {
		name     string
		rmax     float64
		dr       float64
		wantName string
	}{
		{name: "ZeroDr", rmax: 3, dr: 0, wantName: "dr"},
		{name: "NegativeDr", rmax: 3, dr: -1, wantName: "dr"},
		{name: "ZeroRMax", rmax: 0, dr: 0.1, wantName: "rmax"},
		{name: "RMaxBelowDr", rmax: 0.05, dr: 0.1, wantName: "rmax"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCorrelationFunction[float64](tt.rmax, tt.dr)
			var inv *ErrInvalidParameter
			require.ErrorAs(t, err, &inv)
			assert.Equal(t, tt.wantName, inv.Name)
		})
	}

	t.Run("Valid", func(t *testing.T) {
		cf, err := NewCorrelationFunction[complex128](2, 0.5)
		require.NoError(t, err)
		assert.Equal(t, 4, cf.NumBins())
	})
}

func TestCorrelationFunction(t *testing.T) {
	ctx := context.Background()

	t.Run("LengthMismatch", func(t *testing.T) {
		bx, pts := latticePoints(3)
		tr, err := locality.NewTree(bx, pts)
		require.NoError(t, err)

		cf, err := NewCorrelationFunction[float64](1.3, 0.65)
		require.NoError(t, err)

		var lm *ErrLengthMismatch

		err = cf.Accumulate(ctx, tr, constValues(5, 1.0), pts, constValues(len(pts), 1.0))
		require.ErrorAs(t, err, &lm)
		assert.Equal(t, "refValues", lm.Field)

		err = cf.Accumulate(ctx, tr, constValues(len(pts), 1.0), pts, constValues(5, 1.0))
		require.ErrorAs(t, err, &lm)
		assert.Equal(t, "values", lm.Field)
	})

	t.Run("ReduceWithoutData", func(t *testing.T) {
		cf, err := NewCorrelationFunction[float64](1.3, 0.65)
		require.NoError(t, err)

		_, err = cf.Reduce()
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("ConstantField", func(t *testing.T) {
		bx, pts := latticePoints(3)
		tr, err := locality.NewTree(bx, pts)
		require.NoError(t, err)

		cf, err := NewCorrelationFunction[float64](1.3, 0.65)
		require.NoError(t, err)

		res, err := cf.Compute(ctx, tr, constValues(len(pts), 3.0), pts, constValues(len(pts), 2.0), func(o *AccumulateOptions) {
			o.SelfQueries = true
		})
		require.NoError(t, err)
		require.Len(t, res.F, 2)

		// No pairs below 0.65; the unit shell lands in the second bin and
		// every pair contributes 3 * 2.
		assert.Zero(t, res.Counts[0])
		assert.Zero(t, res.F[0])
		assert.EqualValues(t, 27*6, res.Counts[1])
		assert.InDelta(t, 6.0, res.F[1], 1e-12)
	})

	t.Run("ComplexPhaseDifference", func(t *testing.T) {
		bx, pts := latticePoints(3)
		tr, err := locality.NewTree(bx, pts)
		require.NoError(t, err)

		cf, err := NewCorrelationFunction[complex128](1.3, 0.65)
		require.NoError(t, err)

		ref := constValues(len(pts), cmplx.Exp(complex(0, 0.3)))
		val := constValues(len(pts), cmplx.Exp(complex(0, 1.1)))

		res, err := cf.Compute(ctx, tr, ref, pts, val, func(o *AccumulateOptions) {
			o.SelfQueries = true
		})
		require.NoError(t, err)

		// conj(ref) * val rotates by the phase difference.
		want := cmplx.Exp(complex(0, 0.8))
		assert.InDelta(t, real(want), real(res.F[1]), 1e-12)
		assert.InDelta(t, imag(want), imag(res.F[1]), 1e-12)
	})

	t.Run("AlternatingChainAnticorrelates", func(t *testing.T) {
		bx, err := box.Cube(8)
		require.NoError(t, err)

		pts := make([]r3.Vec, 8)
		vals := make([]float64, 8)
		for i := range pts {
			pts[i] = r3.Vec{X: float64(i) - 3.5}
			vals[i] = 1
			if i%2 == 1 {
				vals[i] = -1
			}
		}
		tr, err := locality.NewTree(bx, pts)
		require.NoError(t, err)

		cf, err := NewCorrelationFunction[float64](2.5, 1)
		require.NoError(t, err)

		res, err := cf.Compute(ctx, tr, vals, pts, vals, func(o *AccumulateOptions) {
			o.SelfQueries = true
		})
		require.NoError(t, err)
		require.Len(t, res.F, 2)

		// Unit-distance neighbors along the chain carry the opposite sign.
		assert.EqualValues(t, 16, res.Counts[1])
		assert.InDelta(t, -1.0, res.F[1], 1e-12)
	})

	t.Run("CoincidentPairsSkipped", func(t *testing.T) {
		bx, err := box.Cube(10)
		require.NoError(t, err)

		pts := []r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}}
		tr, err := locality.NewTree(bx, pts)
		require.NoError(t, err)

		cf, err := NewCorrelationFunction[float64](2, 0.5)
		require.NoError(t, err)

		res, err := cf.Compute(ctx, tr, constValues(2, 1.0), pts, constValues(2, 1.0), func(o *AccumulateOptions) {
			o.SelfQueries = true
		})
		require.NoError(t, err)

		for i, n := range res.Counts {
			assert.Zero(t, n)
			assert.Zero(t, res.F[i])
		}
	})

	t.Run("SeparateReferenceSet", func(t *testing.T) {
		bx, err := box.Cube(10)
		require.NoError(t, err)

		refPts := []r3.Vec{{X: 0, Y: 0, Z: 0}}
		tr, err := locality.NewTree(bx, refPts)
		require.NoError(t, err)

		// Two probes at 0.5 and one at 1.5 from the lone reference.
		probes := []r3.Vec{
			{X: 0.5, Y: 0, Z: 0},
			{X: 0, Y: -0.5, Z: 0},
			{X: 0, Y: 0, Z: 1.5},
		}
		cf, err := NewCorrelationFunction[float64](2, 1)
		require.NoError(t, err)

		res, err := cf.Compute(ctx, tr, []float64{2}, probes, []float64{1, 3, 5})
		require.NoError(t, err)
		require.Len(t, res.F, 2)

		assert.EqualValues(t, 2, res.Counts[0])
		assert.InDelta(t, 2*(1.0+3.0)/2, res.F[0], 1e-12)
		assert.EqualValues(t, 1, res.Counts[1])
		assert.InDelta(t, 10.0, res.F[1], 1e-12)
	})

	t.Run("ResetClears", func(t *testing.T) {
		bx, pts := latticePoints(3)
		tr, err := locality.NewTree(bx, pts)
		require.NoError(t, err)

		cf, err := NewCorrelationFunction[float64](1.3, 0.65)
		require.NoError(t, err)

		require.NoError(t, cf.Accumulate(ctx, tr, constValues(len(pts), 1.0), pts, constValues(len(pts), 1.0)))
		cf.Reset()

		_, err = cf.Reduce()
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("BinCentersVolumeWeighted", func(t *testing.T) {
		cf, err := NewCorrelationFunction[float64](2, 1)
		require.NoError(t, err)

		centers := cf.BinCenters()
		require.Len(t, centers, 2)
		assert.InDelta(t, 2.0/3.0, centers[0], 1e-12)
		assert.InDelta(t, 14.0/9.0, centers[1], 1e-12)
	})
}
