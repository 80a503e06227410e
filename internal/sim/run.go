package sim

import (
	"context"
	"math"
	"sort"

	"github.com/san-kum/maglev/internal/dynamo"
)

// Event reconfigures a run at a given simulated time. Nil fields are left
// as they are.
type Event struct {
	At       float64  `json:"at" yaml:"at"`
	Setpoint *float64 `json:"setpoint,omitempty" yaml:"setpoint,omitempty"`
	Kp       *float64 `json:"kp,omitempty" yaml:"kp,omitempty"`
	Ki       *float64 `json:"ki,omitempty" yaml:"ki,omitempty"`
	Kd       *float64 `json:"kd,omitempty" yaml:"kd,omitempty"`
	Noise    *float64 `json:"noise,omitempty" yaml:"noise,omitempty"`
	Hold     *bool    `json:"hold,omitempty" yaml:"hold,omitempty"`
}

func (e Event) apply(p Params) Params {
	if e.Setpoint != nil {
		p.Setpoint = *e.Setpoint
	}
	if e.Kp != nil {
		p.PID.Kp = *e.Kp
	}
	if e.Ki != nil {
		p.PID.Ki = *e.Ki
	}
	if e.Kd != nil {
		p.PID.Kd = *e.Kd
	}
	if e.Noise != nil {
		p.Sensor.Noise = *e.Noise
	}
	if e.Hold != nil {
		p.Physics.Hold = *e.Hold
	}
	return p
}

type RunConfig struct {
	Dt       float64
	Duration float64
	Schedule []Event
}

func (c RunConfig) Validate() error {
	if err := dynamo.RequirePositive("dt", c.Dt); err != nil {
		return err
	}
	if err := dynamo.RequirePositive("duration", c.Duration); err != nil {
		return err
	}
	for _, e := range c.Schedule {
		if err := dynamo.RequireNonNegative("event time", e.At); err != nil {
			return err
		}
	}
	return nil
}

// Steps is the number of fixed steps covering Duration.
func (c RunConfig) Steps() int {
	return int(math.Round(c.Duration / c.Dt))
}

type Result struct {
	Samples    []dynamo.Sample
	Metrics    map[string]float64
	StepsTaken int
	Final      Snapshot
}

// eventSlack absorbs the rounding of accumulated step times.
const eventSlack = 1e-9

// Run steps s with a fixed dt for the configured duration, applying
// scheduled events once simulated time reaches them. It checks ctx between
// steps. On error the partial result is returned alongside it.
func Run(ctx context.Context, s *Simulation, cfg RunConfig) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	schedule := make([]Event, len(cfg.Schedule))
	copy(schedule, cfg.Schedule)
	sort.SliceStable(schedule, func(i, j int) bool { return schedule[i].At < schedule[j].At })

	steps := cfg.Steps()
	result := &Result{
		Samples: make([]dynamo.Sample, 0, steps),
		Metrics: make(map[string]float64),
	}
	finish := func() *Result {
		for _, m := range s.metrics {
			result.Metrics[m.Name()] = m.Value()
		}
		result.Final = s.Snapshot()
		return result
	}

	next := 0
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return finish(), ctx.Err()
		default:
		}

		for next < len(schedule) && schedule[next].At <= s.Time()+eventSlack {
			if err := s.Apply(schedule[next].apply(s.Params())); err != nil {
				return finish(), err
			}
			s.log.Debug("applied scheduled event", "at", schedule[next].At, "time", s.Time())
			next++
		}

		sample, err := s.Step(cfg.Dt)
		if err != nil {
			return finish(), err
		}
		result.Samples = append(result.Samples, sample)
		result.StepsTaken++
	}

	return finish(), nil
}
