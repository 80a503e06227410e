package sensor

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/noise"
	"gonum.org/v1/gonum/stat"
)

type countingSource struct {
	calls int
	value float64
}

func (c *countingSource) Sample() float64 {
	c.calls++
	return c.value
}

func TestMeasureZeroNoise(t *testing.T) {
	src := &countingSource{value: 1.0}
	s, err := New(src, Config{Noise: 0})
	if err != nil {
		t.Fatal(err)
	}

	for _, pos := range []float64{0, 0.5, -3.25, 1e-12, 5} {
		if got := s.Measure(pos); got != pos {
			t.Errorf("expected %v, got %v", pos, got)
		}
	}
	if src.calls != 0 {
		t.Errorf("expected no draws with zero noise, got %d", src.calls)
	}
}

func TestMeasureScalesSource(t *testing.T) {
	src := &countingSource{value: 2.0}
	s, _ := New(src, Config{Noise: 0.01})

	if got := s.Measure(0.5); math.Abs(got-0.52) > 1e-12 {
		t.Errorf("expected 0.52, got %f", got)
	}
}

func TestMeasureNoiseStatistics(t *testing.T) {
	s, _ := New(noise.NewGaussian(1, 3), Config{Noise: 0.05})

	residuals := make([]float64, 10000)
	for i := range residuals {
		residuals[i] = s.Measure(0.5) - 0.5
	}
	std := stat.StdDev(residuals, nil)
	if math.Abs(std-0.05) > 0.003 {
		t.Errorf("expected residual std ~0.05, got %f", std)
	}
}

func TestConfigureRejectsBadNoise(t *testing.T) {
	s, _ := New(&countingSource{}, DefaultConfig())

	for _, sigma := range []float64{-0.1, math.NaN(), math.Inf(1)} {
		if err := s.Configure(Config{Noise: sigma}); !errors.Is(err, dynamo.ErrInvalidInput) {
			t.Errorf("noise %v: expected ErrInvalidInput, got %v", sigma, err)
		}
	}
	if s.Config().Noise != DefaultNoise {
		t.Errorf("expected noise unchanged, got %f", s.Config().Noise)
	}
}
