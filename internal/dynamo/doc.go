// Package dynamo provides the primitives shared by the levitation core.
//
// The package defines the small vocabulary every other package speaks:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepping scheme over a [System]
//   - [Sample]: one recorded step of the control loop
//   - [Metric] and [Observer]: consumers of recorded samples
//   - [ErrInvalidInput] and [ErrNumericInstability]: the error taxonomy
//
// # Errors
//
// Rejected inputs wrap [ErrInvalidInput] and never mutate state. A state
// that turns NaN or Inf despite valid inputs wraps [ErrNumericInstability],
// usually inside a [SimulationError] carrying the step number:
//
//	if _, err := s.Step(dt); errors.Is(err, dynamo.ErrNumericInstability) {
//	    // reset or halt, host's choice
//	}
package dynamo
