// Package frame holds one trajectory sample: the periodic box plus the
// per-particle arrays consumed by the analyses.
package frame

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/softsim/trajan/box"
)

// ErrNoPositions is returned when a frame is constructed without particles.
var ErrNoPositions = errors.New("frame: no positions")

// ErrLengthMismatch indicates a per-particle array whose length does not match
// the position array.
type ErrLengthMismatch struct {
	Field string
	Want  int
	Got   int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("frame: %s length %d does not match %d positions", e.Field, e.Got, e.Want)
}

// Options configures optional per-particle arrays.
type Options struct {
	// Orientations are per-particle unit quaternions. Required by the
	// orientational order parameters, ignored elsewhere.
	Orientations []quat.Number

	// TypeIDs partition particles into types. When present, spatial queries
	// build one tree per type.
	TypeIDs []uint32
}

// DefaultOptions holds the default frame options.
var DefaultOptions = Options{}

// Frame is one sample of a trajectory. Fields are exported for codec access;
// treat a frame as immutable once it is handed to an analysis.
type Frame struct {
	Box          box.Box
	Positions    []r3.Vec
	Orientations []quat.Number
	TypeIDs      []uint32
}

// New creates a validated frame.
func New(bx box.Box, positions []r3.Vec, optFns ...func(o *Options)) (*Frame, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	f := &Frame{
		Box:          bx,
		Positions:    positions,
		Orientations: opts.Orientations,
		TypeIDs:      opts.TypeIDs,
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	return f, nil
}

// Validate checks the frame invariants. It is called by New and again by the
// snapshot decoder, which constructs frames directly.
func (f *Frame) Validate() error {
	if len(f.Positions) == 0 {
		return ErrNoPositions
	}
	if f.Orientations != nil && len(f.Orientations) != len(f.Positions) {
		return &ErrLengthMismatch{Field: "orientations", Want: len(f.Positions), Got: len(f.Orientations)}
	}
	if f.TypeIDs != nil && len(f.TypeIDs) != len(f.Positions) {
		return &ErrLengthMismatch{Field: "type ids", Want: len(f.Positions), Got: len(f.TypeIDs)}
	}

	return nil
}

// Len returns the particle count.
func (f *Frame) Len() int { return len(f.Positions) }

// HasOrientations reports whether per-particle orientations are present.
func (f *Frame) HasOrientations() bool { return len(f.Orientations) > 0 }

// HasTypes reports whether per-particle type ids are present.
func (f *Frame) HasTypes() bool { return len(f.TypeIDs) > 0 }
