package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/sim"
)

type preset struct {
	Description string
	apply       func(c *Config)
}

func ptr[T any](v T) *T { return &v }

var presets = map[string]preset{
	"default": {
		Description: "PID levitation from below the setpoint",
		apply:       func(c *Config) {},
	},
	"hover": {
		Description: "ball released at the setpoint",
		apply: func(c *Config) {
			c.Initial = InitialConfig{Position: c.Setpoint}
		},
	},
	"freefall": {
		Description: "controller off, ball drops under gravity",
		apply: func(c *Config) {
			c.PID.Kp, c.PID.Ki, c.PID.Kd = 0, 0, 0
			c.Sensor.Noise = 0
			c.Initial = InitialConfig{Position: 2}
			c.Duration = 1
		},
	},
	"noisy": {
		Description: "sensor noise of 1 cm",
		apply: func(c *Config) {
			c.Sensor.Noise = 0.01
		},
	},
	"windup": {
		Description: "ball held for 2 s with an unbounded integral, then released",
		apply: func(c *Config) {
			c.PID.IntegralLimit = 0
			c.Physics.Hold = true
			c.Schedule = []sim.Event{{At: 2, Hold: ptr(false)}}
		},
	},
	"kick": {
		Description: "setpoint step at 3 s with the derivative taken on error",
		apply: func(c *Config) {
			c.PID.Derivative = DerivativeOnError
			c.Schedule = []sim.Event{{At: 3, Setpoint: ptr(0.7)}}
		},
	},
	"stall": {
		Description: "slow 20 Hz frames split into physics substeps",
		apply: func(c *Config) {
			c.Dt = 0.05
			c.SampleRate = 20
		},
	},
}

// Preset returns a fresh copy of the named preset.
func Preset(name string) (*Config, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown preset %q", dynamo.ErrInvalidInput, name)
	}
	cfg := DefaultConfig()
	p.apply(cfg)
	return cfg, nil
}

// PresetNames returns the preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func PresetDescription(name string) string {
	return presets[name].Description
}
