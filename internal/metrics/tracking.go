package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/maglev/internal/dynamo"
)

// IAE is the integral of absolute tracking error over simulated time.
type IAE struct {
	sum      float64
	prevTime float64
	prevErr  float64
	started  bool
}

func NewIAE() *IAE { return &IAE{} }

func (m *IAE) Name() string { return "iae" }

// Observe integrates with the rectangle rule on the previous sample's error.
func (m *IAE) Observe(s dynamo.Sample) {
	if m.started {
		m.sum += math.Abs(m.prevErr) * (s.Time - m.prevTime)
	}
	m.prevTime = s.Time
	m.prevErr = s.Error()
	m.started = true
}

func (m *IAE) Value() float64 { return m.sum }

func (m *IAE) Reset() { *m = IAE{} }

// SteadyStateError is the mean absolute tracking error over the newest
// window samples.
type SteadyStateError struct {
	window []float64
	next   int
	full   bool
}

func NewSteadyStateError(window int) *SteadyStateError {
	if window < 1 {
		window = 1
	}
	return &SteadyStateError{window: make([]float64, window)}
}

func (m *SteadyStateError) Name() string { return "steady_state_error" }

func (m *SteadyStateError) Observe(s dynamo.Sample) {
	m.window[m.next] = math.Abs(s.Error())
	m.next++
	if m.next == len(m.window) {
		m.next = 0
		m.full = true
	}
}

func (m *SteadyStateError) Value() float64 {
	n := m.next
	if m.full {
		n = len(m.window)
	}
	if n == 0 {
		return 0
	}
	return stat.Mean(m.window[:n], nil)
}

func (m *SteadyStateError) Reset() {
	m.next = 0
	m.full = false
}

// SensorNoise is the standard deviation of measured minus true position.
type SensorNoise struct {
	residuals []float64
}

func NewSensorNoise() *SensorNoise { return &SensorNoise{} }

func (m *SensorNoise) Name() string { return "sensor_noise" }

func (m *SensorNoise) Observe(s dynamo.Sample) {
	m.residuals = append(m.residuals, s.Measured-s.Position)
}

func (m *SensorNoise) Value() float64 {
	if len(m.residuals) < 2 {
		return 0
	}
	return stat.StdDev(m.residuals, nil)
}

func (m *SensorNoise) Reset() { m.residuals = m.residuals[:0] }

// PeakError is the largest absolute tracking error seen.
type PeakError struct {
	errs []float64
}

func NewPeakError() *PeakError { return &PeakError{} }

func (m *PeakError) Name() string { return "peak_error" }

func (m *PeakError) Observe(s dynamo.Sample) {
	m.errs = append(m.errs, math.Abs(s.Error()))
}

func (m *PeakError) Value() float64 {
	if len(m.errs) == 0 {
		return 0
	}
	return floats.Max(m.errs)
}

func (m *PeakError) Reset() { m.errs = m.errs[:0] }
