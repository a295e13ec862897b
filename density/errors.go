package density

import (
	"errors"
	"fmt"
)

// ErrNoData is returned by Reduce before anything was accumulated.
var ErrNoData = errors.New("density: nothing accumulated")

// ErrInvalidParameter reports a binning or weighting parameter outside its
// allowed range.
type ErrInvalidParameter struct {
	Name   string
	Reason string
}

func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("density: invalid %s: %s", e.Name, e.Reason)
}

// ErrLengthMismatch reports per-particle value arrays whose length does not
// match the particle count they annotate.
type ErrLengthMismatch struct {
	Field string
	Want  int
	Got   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("density: %s length %d does not match %d particles", e.Field, e.Got, e.Want)
}
