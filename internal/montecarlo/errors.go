package montecarlo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is matched by every *ParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNumericOverflow is matched by every *NumericError.
	ErrNumericOverflow = errors.New("numeric overflow")
)

// ParameterError reports a violated Params constraint. It is returned
// before any simulation work begins.
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s=%v %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// NumericError reports a non-finite or non-positive intermediate value.
// Path and Step are -1 when the failure is not tied to a simulated price.
type NumericError struct {
	Stage string
	Value float64
	Path  int
	Step  int
}

func (e *NumericError) Error() string {
	if e.Path < 0 {
		return fmt.Sprintf("%s: %s=%v", ErrNumericOverflow, e.Stage, e.Value)
	}
	return fmt.Sprintf("%s: %s=%v at path %d step %d", ErrNumericOverflow, e.Stage, e.Value, e.Path, e.Step)
}

func (e *NumericError) Is(target error) bool { return target == ErrNumericOverflow }
