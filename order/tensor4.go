package order

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

// Tensor4 is a dense rank-4 tensor over R3, stored flat in ijkl order.
type Tensor4 [81]float64

// outer4 returns the fourth tensor power v⊗v⊗v⊗v.
func outer4(v r3.Vec) Tensor4 {
	c := [3]float64{v.X, v.Y, v.Z}
	var t Tensor4
	cnt := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			vij := c[i] * c[j]
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					t[cnt] = vij * c[k] * c[l]
					cnt++
				}
			}
		}
	}
	return t
}

// isotropic returns the symmetrized identity combination
// (2/5)·(δij·δkl + δik·δjl + δil·δjk), the rotationally invariant part
// subtracted from every cubatic tensor.
func isotropic() Tensor4 {
	delta := func(a, b int) float64 {
		if a == b {
			return 1
		}
		return 0
	}
	var t Tensor4
	cnt := 0
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				for l := 0; l < 3; l++ {
					t[cnt] = 2.0 / 5.0 * (delta(i, j)*delta(k, l) + delta(i, k)*delta(j, l) + delta(i, l)*delta(j, k))
					cnt++
				}
			}
		}
	}
	return t
}

// Add accumulates o into t elementwise.
func (t *Tensor4) Add(o *Tensor4) {
	floats.Add(t[:], o[:])
}

// Sub removes o from t elementwise.
func (t *Tensor4) Sub(o *Tensor4) {
	floats.Sub(t[:], o[:])
}

// Scale multiplies every element of t by c.
func (t *Tensor4) Scale(c float64) {
	floats.Scale(c, t[:])
}

// Dot returns the Frobenius inner product of t and o.
func (t *Tensor4) Dot(o *Tensor4) float64 {
	return floats.Dot(t[:], o[:])
}
