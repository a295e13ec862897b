package trajan

import (
	"errors"
	"fmt"

	"github.com/softsim/trajan/archive"
	"github.com/softsim/trajan/density"
	"github.com/softsim/trajan/frame"
	"github.com/softsim/trajan/locality"
	"github.com/softsim/trajan/order"
	"github.com/softsim/trajan/voronoi"
)

var (
	// ErrEmptyInput is returned when an operation is asked to analyze zero
	// particles.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidParameter is returned for out-of-range analysis parameters.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedQueryMode is returned for malformed neighbor queries.
	ErrUnsupportedQueryMode = errors.New("unsupported query mode")

	// ErrNotFound is returned when an archived snapshot does not exist.
	ErrNotFound = archive.ErrNotFound
)

// ErrCutoffTooLarge indicates a query cutoff the periodic box cannot answer
// without double counting.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrCutoffTooLarge struct {
	Radius float64
	Limit  float64
	cause  error
}

func (e *ErrCutoffTooLarge) Error() string {
	return fmt.Sprintf("cutoff %g exceeds the safe radius %g", e.Radius, e.Limit)
}

func (e *ErrCutoffTooLarge) Unwrap() error { return e.cause }

// ErrInsufficientNeighbors indicates a nearest-neighbor search that could not
// find k candidates within the largest radius the box supports.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrInsufficientNeighbors struct {
	K     int
	Found int
	cause error
}

func (e *ErrInsufficientNeighbors) Error() string {
	return fmt.Sprintf("insufficient neighbors: found %d of %d", e.Found, e.K)
}

func (e *ErrInsufficientNeighbors) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Empty input unification.
	switch {
	case errors.Is(err, locality.ErrEmptyInput),
		errors.Is(err, order.ErrEmptyInput),
		errors.Is(err, voronoi.ErrEmptyInput),
		errors.Is(err, frame.ErrNoPositions),
		errors.Is(err, density.ErrNoData):
		return fmt.Errorf("%w: %w", ErrEmptyInput, err)
	}

	// Query guarantees keep their detail.
	var ctl *locality.ErrCutoffTooLarge
	if errors.As(err, &ctl) {
		return &ErrCutoffTooLarge{Radius: ctl.Radius, Limit: ctl.Limit, cause: err}
	}
	var in *locality.ErrInsufficientNeighbors
	if errors.As(err, &in) {
		return &ErrInsufficientNeighbors{K: in.K, Found: in.Found, cause: err}
	}
	if errors.Is(err, locality.ErrUnsupportedQueryMode) {
		return fmt.Errorf("%w: %w", ErrUnsupportedQueryMode, err)
	}

	// Parameter normalization.
	switch {
	case errors.Is(err, locality.ErrInvalidRadius),
		errors.Is(err, locality.ErrInvalidK),
		errors.Is(err, locality.ErrInvalidScale),
		errors.Is(err, locality.ErrTypeLengthMismatch):
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	var dp *density.ErrInvalidParameter
	if errors.As(err, &dp) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	var dl *density.ErrLengthMismatch
	if errors.As(err, &dl) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	var op *order.ErrInvalidParameter
	if errors.As(err, &op) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	var vp *voronoi.ErrInvalidParameter
	if errors.As(err, &vp) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}
	var fl *frame.ErrLengthMismatch
	if errors.As(err, &fl) {
		return fmt.Errorf("%w: %w", ErrInvalidParameter, err)
	}

	return err
}
