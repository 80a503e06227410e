package integrators

import (
	"testing"

	"github.com/san-kum/maglev/internal/dynamo"
)

func benchmarkScheme(b *testing.B, integ dynamo.Integrator) {
	dyn := &harmonicOscillator{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 0.01)
	}
}

func BenchmarkEuler(b *testing.B)           { benchmarkScheme(b, NewEuler()) }
func BenchmarkSymplecticEuler(b *testing.B) { benchmarkScheme(b, NewSymplecticEuler()) }
func BenchmarkLeapfrog(b *testing.B)        { benchmarkScheme(b, NewLeapfrog()) }
func BenchmarkRK4(b *testing.B)             { benchmarkScheme(b, NewRK4()) }
