package sim

import "github.com/san-kum/maglev/internal/dynamo"

// GetParams returns the live-tunable parameters by name.
func (s *Simulation) GetParams() map[string]float64 {
	p := s.params
	return map[string]float64{
		"Kp":           p.PID.Kp,
		"Ki":           p.PID.Ki,
		"Kd":           p.PID.Kd,
		"Setpoint":     p.Setpoint,
		"Noise":        p.Sensor.Noise,
		"MaxForce":     p.Physics.MaxForce,
		"MaxForceRate": p.Physics.MaxForceRate,
	}
}

// SetParam changes one live-tunable parameter between steps.
func (s *Simulation) SetParam(name string, value float64) error {
	next := s.params
	switch name {
	case "Kp":
		next.PID.Kp = value
	case "Ki":
		next.PID.Ki = value
	case "Kd":
		next.PID.Kd = value
	case "Setpoint":
		next.Setpoint = value
	case "Noise":
		next.Sensor.Noise = value
	case "MaxForce":
		next.Physics.MaxForce = value
	case "MaxForceRate":
		next.Physics.MaxForceRate = value
	default:
		return dynamo.ErrUnknownParam
	}
	return s.Apply(next)
}

// SetHold pins or releases the ball.
func (s *Simulation) SetHold(hold bool) error {
	next := s.params
	next.Physics.Hold = hold
	return s.Apply(next)
}
