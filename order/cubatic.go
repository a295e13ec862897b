package order

import (
	"context"
	"math"
	"math/rand/v2"
	"runtime"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/internal/parallel"
)

const (
	// maxProposals caps one annealing run; rejected proposals count toward
	// the cap too.
	maxProposals = 10000

	// streamSalt offsets the per-replicate random streams so two optimizers
	// sharing a seed but differing in replicate index never correlate.
	streamSalt = 0xffaabb
)

// basisVectors are the laboratory axes whose rotated fourth tensor powers
// make up a cubatic tensor.
var basisVectors = [3]r3.Vec{{X: 1}, {Y: 1}, {Z: 1}}

// CubaticOptions configures the optimizer.
type CubaticOptions struct {
	// Workers bounds the concurrency of the per-particle and per-replicate
	// passes. Defaults to GOMAXPROCS.
	Workers int
}

// Cubatic measures how close a set of particle orientations is to a shared
// cubic frame. The global order parameter is found by simulated annealing
// over candidate frames, run as independent replicates with deterministic
// per-replicate random streams.
type Cubatic struct {
	tInitial   float64
	tFinal     float64
	scale      float64
	replicates int
	seed       uint64
	workers    int
	r4         Tensor4
}

// CubaticResult holds the outcome of one Compute call.
type CubaticResult struct {
	// Order is the best global order parameter across replicates. It
	// approaches 1 for a perfectly cubatic system.
	Order float64

	// Orientation is the frame the winning replicate settled on.
	Orientation quat.Number

	// GlobalTensor is the particle-averaged system tensor with the
	// isotropic part removed.
	GlobalTensor Tensor4

	// CubaticTensor is the candidate tensor of the winning orientation.
	CubaticTensor Tensor4

	// ParticleOrder scores each particle's own orientation against the
	// global tensor.
	ParticleOrder []float64

	// ParticleTensor holds each particle's orientation tensor before the
	// isotropic part is removed.
	ParticleTensor []Tensor4
}

// NewCubatic validates the annealing schedule. The temperature starts at
// tInitial and multiplies by scale on every accepted move until it drops to
// tFinal; each of the replicates repeats the search from an independent
// random start.
func NewCubatic(tInitial, tFinal, scale float64, replicates int, seed uint64, optFns ...func(o *CubaticOptions)) (*Cubatic, error) {
	opts := CubaticOptions{Workers: runtime.GOMAXPROCS(0)}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if !(tInitial > tFinal) {
		return nil, &ErrInvalidParameter{Name: "t_initial", Reason: "must exceed t_final"}
	}
	if !(tFinal >= 1e-6) {
		return nil, &ErrInvalidParameter{Name: "t_final", Reason: "must be at least 1e-6"}
	}
	if !(scale > 0 && scale < 1) {
		return nil, &ErrInvalidParameter{Name: "scale", Reason: "must lie in (0, 1)"}
	}
	if replicates <= 0 {
		return nil, &ErrInvalidParameter{Name: "replicates", Reason: "must be positive"}
	}

	return &Cubatic{
		tInitial:   tInitial,
		tFinal:     tFinal,
		scale:      scale,
		replicates: replicates,
		seed:       seed,
		workers:    opts.Workers,
		r4:         isotropic(),
	}, nil
}

// Compute runs the full pipeline over the particle orientations: per-particle
// tensors, the global tensor, the annealed frame search, and the per-particle
// scores. Identical seed and input produce identical output at any worker
// count.
func (c *Cubatic) Compute(ctx context.Context, orientations []quat.Number) (*CubaticResult, error) {
	n := len(orientations)
	if n == 0 {
		return nil, ErrEmptyInput
	}

	res := &CubaticResult{
		ParticleOrder:  make([]float64, n),
		ParticleTensor: make([]Tensor4, n),
	}

	err := parallel.ForN(ctx, n, c.workers, func(start, end int) error {
		for i := start; i < end; i++ {
			res.ParticleTensor[i] = orientationTensor(orientations[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Averaging component-wise over particles keeps the reduction order,
	// and with it the floating point result, independent of the worker
	// count.
	err = parallel.ForN(ctx, len(res.GlobalTensor), c.workers, func(start, end int) error {
		for comp := start; comp < end; comp++ {
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += res.ParticleTensor[i][comp]
			}
			res.GlobalTensor[comp] = sum / float64(n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.GlobalTensor.Sub(&c.r4)

	replicas := make([]annealResult, c.replicates)
	err = parallel.ForN(ctx, c.replicates, c.workers, func(start, end int) error {
		for rep := start; rep < end; rep++ {
			rng := rand.New(rand.NewPCG(c.seed, streamSalt+uint64(rep)))
			replicas[rep] = c.anneal(rng, &res.GlobalTensor)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	best := 0
	for i := 1; i < len(replicas); i++ {
		if replicas[i].order > replicas[best].order {
			best = i
		}
	}
	res.Order = replicas[best].order
	res.Orientation = replicas[best].orientation
	res.CubaticTensor = replicas[best].tensor

	err = parallel.ForN(ctx, n, c.workers, func(start, end int) error {
		for i := start; i < end; i++ {
			t := c.candidateTensor(orientations[i])
			res.ParticleOrder[i] = orderParameter(&res.GlobalTensor, &t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

type annealResult struct {
	tensor      Tensor4
	orientation quat.Number
	order       float64
}

// anneal searches for the frame maximizing the order parameter against the
// global tensor. Proposals perturb the incumbent on the left; an improvement
// always moves, a regression moves with Boltzmann probability, and only
// moves cool the temperature.
func (c *Cubatic) anneal(rng *rand.Rand, global *Tensor4) annealResult {
	best := randomRotation(rng, 1.0)
	bestTensor := c.candidateTensor(best)
	bestOrder := orderParameter(global, &bestTensor)

	t := c.tInitial
	for count := 0; t > c.tFinal && count < maxProposals; count++ {
		trial := quat.Mul(randomRotation(rng, 0.1), best)
		trialTensor := c.candidateTensor(trial)
		trialOrder := orderParameter(global, &trialTensor)

		if trialOrder <= bestOrder {
			boltzmann := math.Exp(-(bestOrder - trialOrder) / t)
			if boltzmann < rng.Float64() {
				continue
			}
		}

		best, bestTensor, bestOrder = trial, trialTensor, trialOrder
		t *= c.scale
	}

	return annealResult{tensor: bestTensor, orientation: best, order: bestOrder}
}

// orientationTensor is the doubled sum of the rotated basis fourth powers,
// the per-particle contribution before isotropic subtraction.
func orientationTensor(q quat.Number) Tensor4 {
	rot := r3.Rotation(q)
	var t Tensor4
	for _, e := range basisVectors {
		o := outer4(rot.Rotate(e))
		t.Add(&o)
	}
	t.Scale(2)
	return t
}

// candidateTensor is the cubatic tensor of a frame orientation.
func (c *Cubatic) candidateTensor(q quat.Number) Tensor4 {
	t := orientationTensor(q)
	t.Sub(&c.r4)
	return t
}

// orderParameter scores a candidate tensor against the global tensor,
// reaching 1 when they coincide.
func orderParameter(global, candidate *Tensor4) float64 {
	diff := *global
	diff.Sub(candidate)
	return 1 - diff.Dot(&diff)/candidate.Dot(candidate)
}

// randomRotation draws a uniform axis by spherical inverse transform
// sampling and a rotation angle of multiplier times a unit draw.
func randomRotation(rng *rand.Rand, multiplier float64) quat.Number {
	theta := 2 * math.Pi * rng.Float64()
	phi := math.Acos(2*rng.Float64() - 1)
	sinPhi := math.Sin(phi)
	axis := r3.Vec{
		X: math.Cos(theta) * sinPhi,
		Y: math.Sin(theta) * sinPhi,
		Z: math.Cos(phi),
	}
	angle := multiplier * rng.Float64()
	return quat.Number(r3.NewRotation(angle, axis))
}
