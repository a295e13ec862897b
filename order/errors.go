package order

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a compute is asked to run over zero
// particles.
var ErrEmptyInput = errors.New("order: empty orientation set")

// ErrInvalidParameter reports a constructor or compute parameter outside its
// allowed range.
type ErrInvalidParameter struct {
	Name   string
	Reason string
}

func (e *ErrInvalidParameter) Error() string {
	return fmt.Sprintf("order: invalid %s: %s", e.Name, e.Reason)
}
