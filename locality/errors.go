package locality

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a tree is built over zero points.
	ErrEmptyInput = errors.New("locality: empty point set")

	// ErrInvalidRadius is returned for non-positive cutoff radii.
	ErrInvalidRadius = errors.New("locality: radius must be positive")

	// ErrInvalidK is returned for non-positive neighbor counts.
	ErrInvalidK = errors.New("locality: k must be positive")

	// ErrInvalidScale is returned when the nearest-neighbor growth scale
	// cannot enlarge the search radius.
	ErrInvalidScale = errors.New("locality: growth scale must be greater than 1")

	// ErrUnsupportedQueryMode is returned for unknown query modes and for
	// nearest queries issued without the required radius and scale guesses.
	ErrUnsupportedQueryMode = errors.New("locality: unsupported query mode")

	// ErrTypeLengthMismatch is returned when the type id array does not match
	// the point count.
	ErrTypeLengthMismatch = errors.New("locality: type ids do not match point count")
)

// ErrCutoffTooLarge indicates a query radius beyond what periodic image
// enumeration can support for the box: the minimum image convention requires
// 2r to stay below the nearest plane distance in every periodic dimension.
type ErrCutoffTooLarge struct {
	Radius float64
	Limit  float64
}

func (e *ErrCutoffTooLarge) Error() string {
	return fmt.Sprintf("locality: cutoff %g exceeds the safe radius %g for this box", e.Radius, e.Limit)
}

// ErrInsufficientNeighbors indicates a nearest-neighbor search that exhausted
// its radius growth bound before finding k candidates.
type ErrInsufficientNeighbors struct {
	K      int
	Found  int
	Radius float64
}

func (e *ErrInsufficientNeighbors) Error() string {
	return fmt.Sprintf("locality: found %d of %d neighbors within safe radius (last tried %g)", e.Found, e.K, e.Radius)
}
