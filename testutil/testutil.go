package testutil

import (
	"math"
	"math/rand"
	"sort"
	"sync"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

// Neighbor is one ground-truth bond.
type Neighbor struct {
	Index    int
	Distance float64
}

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Float64 returns, as a float64, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// UniformPoints draws n points uniformly over the box volume. Points land in
// the centered cell, so they need no wrapping before use.
func (r *RNG) UniformPoints(bx box.Box, n int) []r3.Vec {
	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]r3.Vec, n)
	for i := range pts {
		f := r3.Vec{
			X: r.rand.Float64() - 0.5,
			Y: r.rand.Float64() - 0.5,
		}
		if !bx.Is2D() {
			f.Z = r.rand.Float64() - 0.5
		}
		pts[i] = bx.Absolute(f)
	}
	return pts
}

// JitteredLattice fills a cubic box of side n*spacing with an n^3 simple
// cubic lattice displaced by Gaussian noise of width sigma. With sigma zero
// every particle has exactly six neighbors at spacing.
func (r *RNG) JitteredLattice(n int, spacing, sigma float64) (box.Box, []r3.Vec, error) {
	bx, err := box.Cube(float64(n) * spacing)
	if err != nil {
		return box.Box{}, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pts := make([]r3.Vec, 0, n*n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			for k := 0; k < n; k++ {
				p := r3.Vec{
					X: float64(i)*spacing + r.rand.NormFloat64()*sigma,
					Y: float64(j)*spacing + r.rand.NormFloat64()*sigma,
					Z: float64(k)*spacing + r.rand.NormFloat64()*sigma,
				}
				pts = append(pts, bx.Wrap(p))
			}
		}
	}
	return bx, pts, nil
}

// RandomOrientations draws n unit quaternions uniformly over the rotation
// group, by Shoemake's subgroup algorithm from three uniform deviates.
func (r *RNG) RandomOrientations(n int) []quat.Number {
	r.mu.Lock()
	defer r.mu.Unlock()

	qs := make([]quat.Number, n)
	for i := range qs {
		u1 := r.rand.Float64()
		u2 := 2 * math.Pi * r.rand.Float64()
		u3 := 2 * math.Pi * r.rand.Float64()
		a := math.Sqrt(1 - u1)
		b := math.Sqrt(u1)
		qs[i] = quat.Number{
			Real: a * math.Sin(u2),
			Imag: a * math.Cos(u2),
			Jmag: b * math.Sin(u3),
			Kmag: b * math.Cos(u3),
		}
	}
	return qs
}

// BallNeighbors returns every particle within cutoff of query under the
// minimum image convention, by exhaustive scan. self is excluded; pass a
// negative self for foreign query points. Results are ordered by ascending
// distance with index ties broken low.
func BallNeighbors(bx box.Box, points []r3.Vec, query r3.Vec, self int, cutoff float64) []Neighbor {
	var out []Neighbor
	for j, p := range points {
		if j == self {
			continue
		}
		if d := bx.Distance(query, p); d <= cutoff {
			out = append(out, Neighbor{Index: j, Distance: d})
		}
	}
	sortNeighbors(out)
	return out
}

// NearestNeighbors returns the k closest particles to query under the
// minimum image convention, by exhaustive scan. self is excluded; pass a
// negative self for foreign query points.
func NearestNeighbors(bx box.Box, points []r3.Vec, query r3.Vec, self, k int) []Neighbor {
	out := make([]Neighbor, 0, len(points))
	for j, p := range points {
		if j == self {
			continue
		}
		out = append(out, Neighbor{Index: j, Distance: bx.Distance(query, p)})
	}
	sortNeighbors(out)
	if len(out) > k {
		out = out[:k]
	}
	return out
}

func sortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(a, b int) bool {
		if ns[a].Distance != ns[b].Distance {
			return ns[a].Distance < ns[b].Distance
		}
		return ns[a].Index < ns[b].Index
	})
}
