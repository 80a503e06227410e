package dynamo

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidInput indicates a rejected argument: non-positive dt,
	// NaN/Inf gains, setpoints or measurements. State is left untouched.
	ErrInvalidInput = errors.New("dynamo: invalid input")

	// ErrNumericInstability indicates a state that became NaN or Inf
	// despite valid inputs.
	ErrNumericInstability = errors.New("dynamo: numeric instability (NaN or Inf detected)")

	// ErrUnknownParam indicates a live-tuning parameter name that is not recognised.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// Invalidf returns an error wrapping ErrInvalidInput.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// RequireFinite rejects NaN and ±Inf values.
func RequireFinite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Invalidf("%s must be finite, got %v", name, v)
	}
	return nil
}

// RequirePositive rejects values that are not finite and strictly positive.
func RequirePositive(name string, v float64) error {
	if err := RequireFinite(name, v); err != nil {
		return err
	}
	if v <= 0 {
		return Invalidf("%s must be positive, got %v", name, v)
	}
	return nil
}

// RequireNonNegative rejects values that are not finite or are below zero.
func RequireNonNegative(name string, v float64) error {
	if err := RequireFinite(name, v); err != nil {
		return err
	}
	if v < 0 {
		return Invalidf("%s must not be negative, got %v", name, v)
	}
	return nil
}
