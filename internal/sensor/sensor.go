// Package sensor models the noisy position sensor.
package sensor

import (
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/noise"
)

const DefaultNoise = 0.001

type Config struct {
	Noise float64 // standard deviation in meters
}

func DefaultConfig() Config {
	return Config{Noise: DefaultNoise}
}

func (c Config) Validate() error {
	return dynamo.RequireNonNegative("noise", c.Noise)
}

// Sensor reports the true position plus scaled noise. The source is
// expected to have unit variance; Noise scales it.
type Sensor struct {
	source noise.Source
	sigma  float64
}

func New(source noise.Source, cfg Config) (*Sensor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Sensor{source: source, sigma: cfg.Noise}, nil
}

// Measure returns the measured position. With zero noise it returns
// truePosition exactly and does not consume a draw.
func (s *Sensor) Measure(truePosition float64) float64 {
	if s.sigma == 0 {
		return truePosition
	}
	return truePosition + s.source.Sample()*s.sigma
}

func (s *Sensor) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.sigma = cfg.Noise
	return nil
}

// SetNoise changes the standard deviation between steps.
func (s *Sensor) SetNoise(sigma float64) error {
	return s.Configure(Config{Noise: sigma})
}

func (s *Sensor) Noise() float64 { return s.sigma }

func (s *Sensor) Config() Config { return Config{Noise: s.sigma} }

func (s *Sensor) Source() noise.Source { return s.source }
