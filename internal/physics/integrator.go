package physics

import (
	"math"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/integrators"
)

// Integrator advances the ball state. It is not safe for concurrent use;
// the underlying scheme may keep scratch buffers.
type Integrator struct {
	stepper     dynamo.Integrator
	scheme      string
	gravity     float64
	drag        float64
	maxStep     float64
	maxSubsteps int
}

func NewIntegrator(cfg Config) (*Integrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	stepper, err := integrators.New(cfg.scheme())
	if err != nil {
		return nil, err
	}
	return &Integrator{
		stepper:     stepper,
		scheme:      cfg.scheme(),
		gravity:     cfg.Gravity,
		drag:        cfg.Drag,
		maxStep:     cfg.MaxStep,
		maxSubsteps: cfg.MaxSubsteps,
	}, nil
}

func (in *Integrator) Scheme() string { return in.scheme }

// Substeps returns how many equal substeps a frame of length dt is split into.
func (in *Integrator) Substeps(dt float64) int {
	if dt <= in.maxStep {
		return 1
	}
	n := math.Ceil(dt / in.maxStep)
	if n > float64(in.maxSubsteps) {
		return in.maxSubsteps
	}
	return int(n)
}

// Advance integrates the ball over dt with netForce held constant.
func (in *Integrator) Advance(state BallState, netForce, mass, dt float64) (BallState, error) {
	if err := dynamo.RequirePositive("dt", dt); err != nil {
		return state, err
	}
	if err := dynamo.RequirePositive("mass", mass); err != nil {
		return state, err
	}
	if err := dynamo.RequireFinite("net force", netForce); err != nil {
		return state, err
	}
	if !state.IsFinite() {
		return state, dynamo.Invalidf("ball state must be finite, got %+v", state)
	}

	ball := &Ball{Mass: mass, Gravity: in.gravity, Drag: in.drag}
	u := dynamo.Control{netForce}
	n := in.Substeps(dt)
	h := dt / float64(n)

	x := state.vector()
	for i := 0; i < n; i++ {
		x = in.stepper.Step(ball, x, u, float64(i)*h, h)
	}

	if !x.IsValid() {
		return state, &dynamo.SimulationError{Step: n, Time: dt, State: x, Wrapped: dynamo.ErrNumericInstability}
	}
	return fromVector(x), nil
}
