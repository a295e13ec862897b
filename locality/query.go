package locality

import (
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Mode selects the kind of neighbor query.
type Mode int

const (
	// ModeBall yields every reference point within a fixed radius of the
	// query point.
	ModeBall Mode = iota + 1

	// ModeNearest yields the k reference points closest to the query point.
	ModeNearest
)

func (m Mode) String() string {
	switch m {
	case ModeBall:
		return "ball"
	case ModeNearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// NoSelf marks a query point that does not correspond to any reference
// point, so no candidate is excluded as the point itself.
const NoSelf = -1

// Candidate is one neighbor produced by an iterator.
type Candidate struct {
	// Index is the reference point index. Periodic replicas report the
	// index of their source point.
	Index int

	// Distance separates the query point from the candidate under the
	// translation the candidate was found at.
	Distance float64
}

// Iterator yields neighbor candidates one at a time. Next returns false once
// the sequence is exhausted or a deferred error occurred; Err tells the two
// apart. Iterators are lazy and not safe for concurrent use.
type Iterator interface {
	Next() (Candidate, bool)
	Err() error
}

// QueryArgs carries the arguments of a neighbor query.
type QueryArgs struct {
	// Mode selects ball or nearest semantics.
	Mode Mode

	// R is the ball radius in ModeBall and the initial guess radius in
	// ModeNearest.
	R float64

	// K is the neighbor count in ModeNearest.
	K int

	// Scale grows the guess radius between ModeNearest attempts. Must
	// exceed 1.
	Scale float64

	// ExcludeSelf drops the candidate whose index matches the query's own
	// reference index.
	ExcludeSelf bool

	// Filter, when set, restricts candidates to the contained reference
	// indices.
	Filter *roaring.Bitmap
}

// BallQuery returns arguments for a fixed-radius query.
func BallQuery(r float64) QueryArgs {
	return QueryArgs{Mode: ModeBall, R: r}
}

// NearestQuery returns arguments for a k-nearest query. r seeds the search
// radius and scale grows it whenever fewer than k candidates are found.
func NearestQuery(k int, r, scale float64) QueryArgs {
	return QueryArgs{Mode: ModeNearest, K: k, R: r, Scale: scale}
}

// Validate checks the arguments for internal consistency.
func (a QueryArgs) Validate() error {
	switch a.Mode {
	case ModeBall:
		if !validRadius(a.R) {
			return ErrInvalidRadius
		}
	case ModeNearest:
		if a.K <= 0 {
			return ErrInvalidK
		}
		if a.R == 0 || a.Scale == 0 {
			return ErrUnsupportedQueryMode
		}
		if !validRadius(a.R) {
			return ErrInvalidRadius
		}
		if a.Scale <= 1 || math.IsInf(a.Scale, 0) || math.IsNaN(a.Scale) {
			return ErrInvalidScale
		}
	default:
		return ErrUnsupportedQueryMode
	}
	return nil
}

func validRadius(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// Query starts a neighbor query at point p. self is the reference index of
// the query point itself, or NoSelf when the point is not drawn from the
// reference set. The returned iterator does no work until its first Next.
func (t *Tree) Query(p r3.Vec, self int, args QueryArgs) (Iterator, error) {
	if err := args.Validate(); err != nil {
		return nil, err
	}
	if args.Mode == ModeNearest {
		return newNearestIterator(t, p, self, args), nil
	}

	images, err := t.queryImages(args.R)
	if err != nil {
		return nil, err
	}
	return newBallIterator(t, p, self, args, images), nil
}

// queryImages enumerates the translations a query of radius r visits.
// Replicated trees carry the first shell in the arena already, so only the
// zero translation remains.
func (t *Tree) queryImages(r float64) ([]r3.Vec, error) {
	images, err := EnumerateImages(t.bx, r)
	if err != nil {
		return nil, err
	}
	if t.replicated {
		images = images[:1]
	}
	return images, nil
}

// admit applies the self-exclusion and filter rules to a candidate found in
// the zero or a shifted translation.
func admit(args QueryArgs, self, id int, zeroImage bool) bool {
	if args.ExcludeSelf && zeroImage && id == self {
		return false
	}
	if args.Filter != nil && !args.Filter.Contains(uint32(id)) {
		return false
	}
	return true
}
