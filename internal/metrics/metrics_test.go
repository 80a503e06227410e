package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/physics"
)

func samples(errs ...float64) []dynamo.Sample {
	out := make([]dynamo.Sample, len(errs))
	for i, e := range errs {
		out[i] = dynamo.Sample{Time: float64(i) * 0.5, Setpoint: 1, Position: 1 - e, Measured: 1 - e}
	}
	return out
}

func feed(m dynamo.Metric, ss []dynamo.Sample) float64 {
	for _, s := range ss {
		m.Observe(s)
	}
	return m.Value()
}

func TestIAE(t *testing.T) {
	m := NewIAE()
	got := feed(m, samples(1, -2, 0.5))
	// |1|*0.5 + |-2|*0.5
	if math.Abs(got-1.5) > 1e-12 {
		t.Errorf("expected 1.5, got %f", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestSteadyStateErrorWindow(t *testing.T) {
	m := NewSteadyStateError(2)
	if got := feed(m, samples(10)); math.Abs(got-10) > 1e-12 {
		t.Errorf("expected 10 for a partial window, got %f", got)
	}
	if got := feed(m, samples(-1, 3)); math.Abs(got-2) > 1e-12 {
		t.Errorf("expected mean of newest two (2), got %f", got)
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestPeakError(t *testing.T) {
	if got := feed(NewPeakError(), samples(0.1, -0.7, 0.3)); math.Abs(got-0.7) > 1e-12 {
		t.Errorf("expected 0.7, got %f", got)
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(dynamo.Sample{Output: -2})
	m.Observe(dynamo.Sample{Output: 4})
	if m.Value() != 3 {
		t.Errorf("expected 3, got %f", m.Value())
	}
}

func TestSensorNoise(t *testing.T) {
	m := NewSensorNoise()
	for _, r := range []float64{-1, 1, -1, 1} {
		m.Observe(dynamo.Sample{Position: 2, Measured: 2 + r})
	}
	// sample standard deviation of ±1
	want := math.Sqrt(4.0 / 3.0)
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}

func TestStability(t *testing.T) {
	m := NewStability(0.5)
	if m.Value() != 1 {
		t.Errorf("expected 1 with no samples, got %f", m.Value())
	}
	if got := feed(m, samples(0.1, 0.6, -0.2, -0.9)); got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
}

func TestEnergyDrift(t *testing.T) {
	ball := &physics.Ball{Mass: 1, Gravity: 10}
	m := NewEnergyDrift(ball)

	// E = v²/2 + 10x: 10, then 10, then 12
	m.Observe(dynamo.Sample{Position: 1})
	m.Observe(dynamo.Sample{Position: 0.8, Velocity: 2})
	m.Observe(dynamo.Sample{Position: 1, Velocity: 2})

	if math.Abs(m.Value()-0.2) > 1e-12 {
		t.Errorf("expected drift 0.2, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %f", m.Value())
	}
}

func TestDefaultSetNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range DefaultSet() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("expected 6 metrics, got %d", len(seen))
	}
}
