package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/maglev/internal/control"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/integrators"
	"github.com/san-kum/maglev/internal/physics"
	"github.com/san-kum/maglev/internal/sensor"
	"github.com/san-kum/maglev/internal/sim"
)

const (
	DefaultDt         = 0.01
	DefaultDuration   = 10.0
	DefaultSampleRate = 100.0

	DerivativeOnMeasurement = "measurement"
	DerivativeOnError       = "error"
)

type Config struct {
	Dt           float64       `yaml:"dt" validate:"gt=0"`
	Duration     float64       `yaml:"duration" validate:"gt=0"`
	SampleRate   float64       `yaml:"sample_rate" validate:"gt=0"`
	Seed         uint64        `yaml:"seed"`
	HistoryLimit int           `yaml:"history_limit" validate:"gte=0"`
	Setpoint     float64       `yaml:"setpoint"`
	Initial      InitialConfig `yaml:"initial"`
	PID          PIDConfig     `yaml:"pid"`
	Sensor       SensorConfig  `yaml:"sensor"`
	Physics      PhysicsConfig `yaml:"physics"`
	Schedule     []sim.Event   `yaml:"schedule,omitempty"`
}

type InitialConfig struct {
	Position float64 `yaml:"position"`
	Velocity float64 `yaml:"velocity"`
}

type PIDConfig struct {
	Kp            float64 `yaml:"kp"`
	Ki            float64 `yaml:"ki"`
	Kd            float64 `yaml:"kd"`
	IntegralLimit float64 `yaml:"integral_limit" validate:"gte=0"`
	OutputLimit   float64 `yaml:"output_limit" validate:"gte=0"`
	Derivative    string  `yaml:"derivative" validate:"oneof=measurement error"`
}

type SensorConfig struct {
	Noise float64 `yaml:"noise" validate:"gte=0"`
}

type PhysicsConfig struct {
	Gravity      float64         `yaml:"gravity"`
	Mass         float64         `yaml:"mass" validate:"gt=0"`
	Drag         float64         `yaml:"drag" validate:"gte=0"`
	Attractor    AttractorConfig `yaml:"attractor"`
	MaxForce     float64         `yaml:"max_force" validate:"gte=0"`
	MaxForceRate float64         `yaml:"max_force_rate" validate:"gte=0"`
	MaxStep      float64         `yaml:"max_step" validate:"gt=0"`
	MaxSubsteps  int             `yaml:"max_substeps" validate:"min=1"`
	Integrator   string          `yaml:"integrator" validate:"oneof=symplectic leapfrog rk4 euler"`
	Hold         bool            `yaml:"hold"`
}

type AttractorConfig struct {
	Position  float64 `yaml:"position"`
	Gain      float64 `yaml:"gain"`
	Softening float64 `yaml:"softening" validate:"gt=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func DefaultConfig() *Config {
	p := sim.DefaultParams()
	return &Config{
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		SampleRate: DefaultSampleRate,
		Setpoint:   p.Setpoint,
		Initial:    InitialConfig{Position: p.Initial.Position, Velocity: p.Initial.Velocity},
		PID: PIDConfig{
			Kp:            p.PID.Kp,
			Ki:            p.PID.Ki,
			Kd:            p.PID.Kd,
			IntegralLimit: p.PID.IntegralLimit,
			OutputLimit:   p.PID.OutputLimit,
			Derivative:    DerivativeOnMeasurement,
		},
		Sensor: SensorConfig{Noise: p.Sensor.Noise},
		Physics: PhysicsConfig{
			Gravity: p.Physics.Gravity,
			Mass:    p.Physics.Mass,
			Drag:    p.Physics.Drag,
			Attractor: AttractorConfig{
				Position:  p.Physics.Attractor.Position,
				Gain:      p.Physics.Attractor.Gain,
				Softening: p.Physics.Attractor.Softening,
			},
			MaxForce:     p.Physics.MaxForce,
			MaxForceRate: p.Physics.MaxForceRate,
			MaxStep:      p.Physics.MaxStep,
			MaxSubsteps:  p.Physics.MaxSubsteps,
			Integrator:   integrators.SchemeSymplectic,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks struct constraints first and then the finiteness rules
// of the simulation itself. Every failure wraps dynamo.ErrInvalidInput.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidInput, err)
	}
	for _, f := range []struct {
		name string
		v    float64
	}{{"dt", c.Dt}, {"duration", c.Duration}, {"sample rate", c.SampleRate}} {
		if err := dynamo.RequireFinite(f.name, f.v); err != nil {
			return err
		}
	}
	if err := c.Params().Validate(); err != nil {
		return err
	}
	return c.RunConfig().Validate()
}

// Params converts the file layout into simulation parameters.
func (c *Config) Params() sim.Params {
	return sim.Params{
		PID: control.Params{
			Kp:                      c.PID.Kp,
			Ki:                      c.PID.Ki,
			Kd:                      c.PID.Kd,
			IntegralLimit:           c.PID.IntegralLimit,
			OutputLimit:             c.PID.OutputLimit,
			DerivativeOnMeasurement: c.PID.Derivative != DerivativeOnError,
		},
		Sensor: sensor.Config{Noise: c.Sensor.Noise},
		Physics: physics.Config{
			Gravity: c.Physics.Gravity,
			Mass:    c.Physics.Mass,
			Drag:    c.Physics.Drag,
			Attractor: physics.Attractor{
				Position:  c.Physics.Attractor.Position,
				Gain:      c.Physics.Attractor.Gain,
				Softening: c.Physics.Attractor.Softening,
			},
			MaxForce:     c.Physics.MaxForce,
			MaxForceRate: c.Physics.MaxForceRate,
			MaxStep:      c.Physics.MaxStep,
			MaxSubsteps:  c.Physics.MaxSubsteps,
			Scheme:       c.Physics.Integrator,
			Hold:         c.Physics.Hold,
		},
		Setpoint: c.Setpoint,
		Initial:  physics.BallState{Position: c.Initial.Position, Velocity: c.Initial.Velocity},
	}
}

func (c *Config) RunConfig() sim.RunConfig {
	return sim.RunConfig{Dt: c.Dt, Duration: c.Duration, Schedule: c.Schedule}
}

// NewSimulation builds a simulation from the config, seeded from Seed when
// it is non-zero.
func (c *Config) NewSimulation() (*sim.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s, err := sim.New(c.Params(), c.NoiseSource())
	if err != nil {
		return nil, err
	}
	s.SetHistoryLimit(c.HistoryLimit)
	return s, nil
}
