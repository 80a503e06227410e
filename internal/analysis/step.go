package analysis

import (
	"math"

	"github.com/san-kum/maglev/internal/dynamo"
)

// DefaultSettleBand is the settling tolerance as a fraction of the step size.
const DefaultSettleBand = 0.02

type Response struct {
	Initial  float64
	Setpoint float64

	// RiseTime is the time from 10% to 90% of the step. NaN if the ball
	// never reached 90%.
	RiseTime float64
	// Overshoot is the largest excursion past the setpoint as a fraction
	// of the step size.
	Overshoot float64
	// SettlingTime is when the ball last entered the band and stayed. NaN
	// when Settled is false.
	SettlingTime float64
	Settled      bool
}

// StepResponse measures the response to the setpoint of the first sample.
// It fails when the run starts at its setpoint or when the setpoint moves
// during the run.
func StepResponse(samples []dynamo.Sample, band float64) (Response, error) {
	if len(samples) < 2 {
		return Response{}, dynamo.Invalidf("need at least 2 samples, got %d", len(samples))
	}
	if err := dynamo.RequirePositive("settle band", band); err != nil {
		return Response{}, err
	}

	first := samples[0]
	r := Response{Initial: first.Position, Setpoint: first.Setpoint}
	step := r.Setpoint - r.Initial
	if step == 0 {
		return Response{}, dynamo.Invalidf("run starts at its setpoint")
	}
	for _, s := range samples {
		if s.Setpoint != r.Setpoint {
			return Response{}, dynamo.Invalidf("setpoint changes at t=%.4f", s.Time)
		}
	}

	// progress is the fraction of the step covered, positive toward the setpoint.
	progress := func(s dynamo.Sample) float64 { return (s.Position - r.Initial) / step }

	t10, t90 := math.NaN(), math.NaN()
	for _, s := range samples {
		p := progress(s)
		if math.IsNaN(t10) && p >= 0.1 {
			t10 = s.Time
		}
		if p >= 0.9 {
			t90 = s.Time
			break
		}
	}
	r.RiseTime = t90 - t10

	settleIdx := 0
	for i, s := range samples {
		p := progress(s)
		r.Overshoot = math.Max(r.Overshoot, p-1)
		if math.Abs(p-1) > band {
			settleIdx = i + 1
		}
	}
	if settleIdx < len(samples) {
		r.Settled = true
		r.SettlingTime = samples[settleIdx].Time - first.Time
	} else {
		r.SettlingTime = math.NaN()
	}
	return r, nil
}
