// Package noise provides random sources for sensor noise.
package noise

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Source produces one noise draw per call.
type Source interface {
	Sample() float64
}

// Gaussian draws from a normal distribution with mean 0. It owns its
// generator; two Gaussians with the same seed produce the same sequence.
type Gaussian struct {
	seed uint64
	dist distuv.Normal
}

// streamSalt decorrelates the second PCG word from the seed.
const streamSalt = 0x9e3779b97f4a7c15

func NewGaussian(sigma float64, seed uint64) *Gaussian {
	g := &Gaussian{dist: distuv.Normal{Mu: 0, Sigma: sigma}}
	g.Reseed(seed)
	return g
}

// NewRandomGaussian seeds from the process-wide generator.
func NewRandomGaussian(sigma float64) *Gaussian {
	return NewGaussian(sigma, rand.Uint64())
}

func (g *Gaussian) Sample() float64 {
	return g.dist.Rand()
}

func (g *Gaussian) Sigma() float64 { return g.dist.Sigma }

func (g *Gaussian) Seed() uint64 { return g.seed }

// Reseed replaces the seed and restarts the sequence.
func (g *Gaussian) Reseed(seed uint64) {
	g.seed = seed
	g.dist.Src = rand.NewPCG(seed, seed^streamSalt)
}

// Reset rewinds the sequence to the start of the current seed.
func (g *Gaussian) Reset() {
	g.Reseed(g.seed)
}
