package noise

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"
)

func draw(src Source, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = src.Sample()
	}
	return out
}

func TestGaussianDeterministic(t *testing.T) {
	a := draw(NewGaussian(1, 42), 100)
	b := draw(NewGaussian(1, 42), 100)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("draw %d differs: %f vs %f", i, a[i], b[i])
		}
	}

	c := draw(NewGaussian(1, 43), 100)
	same := 0
	for i := range a {
		if a[i] == c[i] {
			same++
		}
	}
	if same == len(a) {
		t.Error("different seeds produced identical sequences")
	}
}

func TestGaussianReset(t *testing.T) {
	g := NewGaussian(1, 7)
	first := draw(g, 10)
	g.Reset()
	again := draw(g, 10)
	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("draw %d differs after reset: %f vs %f", i, first[i], again[i])
		}
	}
	if g.Seed() != 7 {
		t.Errorf("expected seed 7, got %d", g.Seed())
	}
}

func TestGaussianMoments(t *testing.T) {
	sigma := 0.25
	samples := draw(NewGaussian(sigma, 1), 20000)
	mean, std := stat.MeanStdDev(samples, nil)

	if math.Abs(mean) > 0.01 {
		t.Errorf("expected mean ~0, got %f", mean)
	}
	if math.Abs(std-sigma) > 0.01 {
		t.Errorf("expected std ~%f, got %f", sigma, std)
	}
}

func TestRandomGaussianSeeds(t *testing.T) {
	a := NewRandomGaussian(1)
	b := NewRandomGaussian(1)
	if a.Seed() == b.Seed() {
		t.Error("expected process-wide seeding to differ between sources")
	}
}
