package sim

import (
	"github.com/san-kum/maglev/internal/control"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/physics"
	"github.com/san-kum/maglev/internal/sensor"
)

const (
	DefaultSetpoint        = 0.5
	DefaultInitialPosition = 0.25
)

// Params is everything a host can configure on a Simulation.
type Params struct {
	PID      control.Params
	Sensor   sensor.Config
	Physics  physics.Config
	Setpoint float64
	// Initial is the state Restart returns to.
	Initial physics.BallState
}

func DefaultParams() Params {
	return Params{
		PID:      control.DefaultParams(),
		Sensor:   sensor.DefaultConfig(),
		Physics:  physics.DefaultConfig(),
		Setpoint: DefaultSetpoint,
		Initial:  physics.BallState{Position: DefaultInitialPosition},
	}
}

func (p Params) Validate() error {
	if err := p.PID.Validate(); err != nil {
		return err
	}
	if err := p.Sensor.Validate(); err != nil {
		return err
	}
	if err := p.Physics.Validate(); err != nil {
		return err
	}
	if err := dynamo.RequireFinite("setpoint", p.Setpoint); err != nil {
		return err
	}
	if !p.Initial.IsFinite() {
		return dynamo.Invalidf("initial state must be finite, got %+v", p.Initial)
	}
	return nil
}
