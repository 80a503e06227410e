package control

import (
	"math"

	"github.com/san-kum/maglev/internal/dynamo"
)

// DerivativeEpsilon is the smallest dt the derivative divides by. Shorter
// steps reuse the previous derivative.
const DerivativeEpsilon = 1e-9

const DefaultIntegralLimit = 10.0

type Params struct {
	Kp float64 `json:"kp" yaml:"kp"`
	Ki float64 `json:"ki" yaml:"ki"`
	Kd float64 `json:"kd" yaml:"kd"`

	// IntegralLimit bounds the accumulator to ±IntegralLimit. 0 disables it.
	IntegralLimit float64 `json:"integral_limit" yaml:"integral_limit"`
	// OutputLimit bounds the output to ±OutputLimit. 0 leaves it unclamped.
	OutputLimit float64 `json:"output_limit" yaml:"output_limit"`

	DerivativeOnMeasurement bool `json:"derivative_on_measurement" yaml:"derivative_on_measurement"`
}

func DefaultParams() Params {
	return Params{
		Kp:                      60,
		Ki:                      80,
		Kd:                      15,
		IntegralLimit:           DefaultIntegralLimit,
		DerivativeOnMeasurement: true,
	}
}

func (p Params) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{{"kp", p.Kp}, {"ki", p.Ki}, {"kd", p.Kd}} {
		if err := dynamo.RequireFinite(f.name, f.v); err != nil {
			return err
		}
	}
	if err := dynamo.RequireNonNegative("integral limit", p.IntegralLimit); err != nil {
		return err
	}
	return dynamo.RequireNonNegative("output limit", p.OutputLimit)
}

type PID struct {
	params Params

	integral        float64
	prevErr         float64
	prevMeasurement float64
	prevDerivative  float64
	first           bool
}

func NewPID(params Params) (*PID, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &PID{params: params, first: true}, nil
}

// Update advances the controller by dt and returns the control output.
// Rejected inputs leave the controller untouched.
func (p *PID) Update(measurement, setpoint, dt float64) (float64, error) {
	if err := dynamo.RequirePositive("dt", dt); err != nil {
		return 0, err
	}
	if err := dynamo.RequireFinite("measurement", measurement); err != nil {
		return 0, err
	}
	if err := dynamo.RequireFinite("setpoint", setpoint); err != nil {
		return 0, err
	}

	err := setpoint - measurement

	integral := p.integral + err*dt
	if lim := p.params.IntegralLimit; lim > 0 {
		integral = clamp(integral, lim)
	}

	var derivative float64
	switch {
	case p.first:
		derivative = 0
	case dt < DerivativeEpsilon:
		derivative = p.prevDerivative
	case p.params.DerivativeOnMeasurement:
		derivative = -(measurement - p.prevMeasurement) / dt
	default:
		derivative = (err - p.prevErr) / dt
	}

	out := p.params.Kp*err + p.params.Ki*integral + p.params.Kd*derivative
	if lim := p.params.OutputLimit; lim > 0 {
		out = clamp(out, lim)
	}
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, dynamo.ErrNumericInstability
	}

	p.integral = integral
	p.prevErr = err
	p.prevMeasurement = measurement
	p.prevDerivative = derivative
	p.first = false
	return out, nil
}

// Reset clears integral and derivative state. Gains are kept.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevMeasurement = 0
	p.prevDerivative = 0
	p.first = true
}

// Configure replaces the parameters without touching controller memory.
func (p *PID) Configure(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	p.params = params
	if lim := params.IntegralLimit; lim > 0 {
		p.integral = clamp(p.integral, lim)
	}
	return nil
}

func (p *PID) Params() Params { return p.params }

func (p *PID) Integral() float64 { return p.integral }

// GetParams returns tunable parameters for live adjustment
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"Kp":            p.params.Kp,
		"Ki":            p.params.Ki,
		"Kd":            p.params.Kd,
		"IntegralLimit": p.params.IntegralLimit,
		"OutputLimit":   p.params.OutputLimit,
	}
}

// SetParam adjusts a PID parameter
func (p *PID) SetParam(name string, value float64) error {
	next := p.params
	switch name {
	case "Kp":
		next.Kp = value
	case "Ki":
		next.Ki = value
	case "Kd":
		next.Kd = value
	case "IntegralLimit":
		next.IntegralLimit = value
	case "OutputLimit":
		next.OutputLimit = value
	default:
		return dynamo.ErrUnknownParam
	}
	return p.Configure(next)
}

func clamp(v, limit float64) float64 {
	return math.Max(-limit, math.Min(limit, v))
}
