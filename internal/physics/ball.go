package physics

import (
	"math"

	"github.com/san-kum/maglev/internal/dynamo"
)

// BallState is the true kinematic state of the ball.
type BallState struct {
	Position float64 `json:"position" yaml:"position"`
	Velocity float64 `json:"velocity" yaml:"velocity"`
}

func (b BallState) IsFinite() bool {
	return dynamo.State{b.Position, b.Velocity}.IsValid()
}

func (b BallState) vector() dynamo.State {
	return dynamo.State{b.Position, b.Velocity}
}

func fromVector(x dynamo.State) BallState {
	return BallState{Position: x[0], Velocity: x[1]}
}

// Ball is a point mass under gravity and linear drag, driven by an
// external force u[0].
type Ball struct {
	Mass    float64
	Gravity float64
	Drag    float64
}

func (b *Ball) StateDim() int   { return 2 }
func (b *Ball) ControlDim() int { return 1 }

func (b *Ball) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	force := 0.0
	if len(u) > 0 {
		force = u[0]
	}
	v := x[1]
	return dynamo.State{v, (force-b.Drag*v)/b.Mass - b.Gravity}
}

// Energy is kinetic plus gravitational potential energy, zero at position 0.
func (b *Ball) Energy(x dynamo.State) float64 {
	v := x[1]
	return 0.5*b.Mass*v*v + b.Mass*b.Gravity*x[0]
}

// FreeFall returns the closed-form state after t seconds with no drag and
// no actuator force.
func FreeFall(initial BallState, gravity, t float64) BallState {
	return BallState{
		Position: initial.Position + initial.Velocity*t - 0.5*gravity*t*t,
		Velocity: initial.Velocity - gravity*t,
	}
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
