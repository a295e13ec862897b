package voronoi

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when no points are supplied.
var ErrEmptyInput = errors.New("voronoi: empty point set")

// ErrInvalidParameter is returned for out-of-range construction parameters.
type ErrInvalidParameter struct {
	Name   string
	Reason string
}

func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("voronoi: invalid parameter %q: %s", e.Name, e.Reason)
}
