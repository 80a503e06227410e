package config

import "github.com/san-kum/maglev/internal/noise"

// NoiseSource returns a unit Gaussian seeded from Seed, or from the
// process-wide generator when Seed is 0.
func (c *Config) NoiseSource() *noise.Gaussian {
	if c.Seed == 0 {
		return noise.NewRandomGaussian(1)
	}
	return noise.NewGaussian(1, c.Seed)
}
