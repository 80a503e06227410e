package physics

import (
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/integrators"
)

const (
	DefaultGravity           = 9.81
	DefaultMass              = 1.0
	DefaultAttractorPosition = 1.0
	DefaultAttractorGain     = 1.0
	DefaultSoftening         = 1.0
	DefaultMaxForce          = 40.0
	DefaultMaxStep           = 0.02
	DefaultMaxSubsteps       = 10000
)

// Config holds the physical parameters. Gravity is the magnitude of the
// downward acceleration (9.81 on earth).
type Config struct {
	Gravity      float64
	Mass         float64
	Drag         float64
	Attractor    Attractor
	MaxForce     float64
	MaxForceRate float64
	MaxStep      float64
	MaxSubsteps  int
	Scheme       string
	Hold         bool
}

func DefaultConfig() Config {
	return Config{
		Gravity: DefaultGravity,
		Mass:    DefaultMass,
		Attractor: Attractor{
			Position:  DefaultAttractorPosition,
			Gain:      DefaultAttractorGain,
			Softening: DefaultSoftening,
		},
		MaxForce:    DefaultMaxForce,
		MaxStep:     DefaultMaxStep,
		MaxSubsteps: DefaultMaxSubsteps,
		Scheme:      integrators.SchemeSymplectic,
	}
}

func (c Config) Validate() error {
	if err := dynamo.RequireFinite("gravity", c.Gravity); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("mass", c.Mass); err != nil {
		return err
	}
	if err := dynamo.RequireNonNegative("drag", c.Drag); err != nil {
		return err
	}
	if err := dynamo.RequireFinite("attractor position", c.Attractor.Position); err != nil {
		return err
	}
	if err := dynamo.RequireFinite("attractor gain", c.Attractor.Gain); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("softening", c.Attractor.Softening); err != nil {
		return err
	}
	if err := dynamo.RequireNonNegative("max force", c.MaxForce); err != nil {
		return err
	}
	if err := dynamo.RequireNonNegative("max force rate", c.MaxForceRate); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("max step", c.MaxStep); err != nil {
		return err
	}
	if c.MaxSubsteps < 1 {
		return dynamo.Invalidf("max substeps must be at least 1, got %d", c.MaxSubsteps)
	}
	if _, err := integrators.New(c.scheme()); err != nil {
		return err
	}
	return nil
}

func (c Config) scheme() string {
	if c.Scheme == "" {
		return integrators.SchemeSymplectic
	}
	return c.Scheme
}
