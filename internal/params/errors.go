package params

import (
	"errors"
	"fmt"
)

// ErrValidation marks every parameter-validation failure. Handlers match it
// with errors.Is to translate failures into HTTP 400 responses.
var ErrValidation = errors.New("invalid parameter")

// MissingParameterError reports a required field that is absent or empty.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("%s is required", e.Name)
}

func (e *MissingParameterError) Unwrap() error { return ErrValidation }

// DimensionError reports a value that is not a multiple of the required
// granularity. Nearest is the largest valid multiple not exceeding the value.
type DimensionError struct {
	Name    string
	Value   int
	Divisor int
	Nearest int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s must be divisible by %d, closest valid values below = %d",
		e.Name, e.Divisor, e.Nearest)
}

func (e *DimensionError) Unwrap() error { return ErrValidation }

// FrameCountError reports a frame count where count-1 is not a multiple of
// the divisor. Nearest is the closest valid count below the given value.
type FrameCountError struct {
	Name    string
	Value   int
	Divisor int
	Nearest int
}

func (e *FrameCountError) Error() string {
	return fmt.Sprintf("%s - 1 must be divisible by %d, closest valid values below = %d",
		e.Name, e.Divisor, e.Nearest)
}

func (e *FrameCountError) Unwrap() error { return ErrValidation }

// RangeError reports a value outside its inclusive bounds.
type RangeError struct {
	Name  string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d inclusive", e.Name, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrValidation }

// LoraError reports a malformed adapter entry at a given list index.
type LoraError struct {
	Index  int
	Reason string
}

func (e *LoraError) Error() string {
	return fmt.Sprintf("loras[%d]: %s", e.Index, e.Reason)
}

func (e *LoraError) Unwrap() error { return ErrValidation }
