package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/maglev/internal/control"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/noise"
	"github.com/san-kum/maglev/internal/physics"
	"github.com/san-kum/maglev/internal/sensor"
)

// Simulation owns the ball, the controller and the recorded history of one
// levitation session. It is not safe for concurrent use; other goroutines
// should only read the copies returned by History and Snapshot.
type Simulation struct {
	params Params

	source   noise.Source
	sensor   *sensor.Sensor
	pid      *control.PID
	actuator *physics.Actuator
	integ    *physics.Integrator

	state   physics.BallState
	time    float64
	steps   int
	last    dynamo.Sample
	sampled bool

	history      []dynamo.Sample
	historyLimit int

	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *slog.Logger
}

// Snapshot is a copy of the simulation state taken between steps.
type Snapshot struct {
	Time     float64
	Steps    int
	Ball     physics.BallState
	Setpoint float64
	Drive    float64
	Integral float64
	// Last is the most recent sample; zero before the first step.
	Last       dynamo.Sample
	HasSamples bool
}

// New builds a simulation at p.Initial. A nil source draws from a randomly
// seeded unit Gaussian.
func New(p Params, source noise.Source) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		source = noise.NewRandomGaussian(1)
	}

	sens, err := sensor.New(source, p.Sensor)
	if err != nil {
		return nil, err
	}
	pid, err := control.NewPID(p.PID)
	if err != nil {
		return nil, err
	}
	integ, err := physics.NewIntegrator(p.Physics)
	if err != nil {
		return nil, err
	}

	return &Simulation{
		params:   p,
		source:   source,
		sensor:   sens,
		pid:      pid,
		actuator: physics.NewActuator(p.Physics.MaxForce, p.Physics.MaxForceRate),
		integ:    integ,
		state:    p.Initial,
		log:      slog.New(slog.DiscardHandler),
	}, nil
}

func (s *Simulation) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	s.log = l
}

func (s *Simulation) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulation) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulation) Metrics() []dynamo.Metric { return s.metrics }

// SetHistoryLimit keeps only the newest n samples. 0 keeps everything.
func (s *Simulation) SetHistoryLimit(n int) {
	if n < 0 {
		n = 0
	}
	s.historyLimit = n
	s.trimHistory()
}

// Configure validates every argument and then applies them together.
// Controller memory, the ball state and the history are kept.
func (s *Simulation) Configure(pid control.Params, sens sensor.Config, phys physics.Config, setpoint float64) error {
	next := s.params
	next.PID, next.Sensor, next.Physics, next.Setpoint = pid, sens, phys, setpoint
	return s.Apply(next)
}

// Apply is Configure taking a whole Params. The new Initial only takes
// effect on Restart.
func (s *Simulation) Apply(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	integ, err := physics.NewIntegrator(p.Physics)
	if err != nil {
		return err
	}
	if err := s.pid.Configure(p.PID); err != nil {
		return err
	}
	if err := s.sensor.Configure(p.Sensor); err != nil {
		return err
	}

	s.integ = integ
	s.actuator.MaxForce = p.Physics.MaxForce
	s.actuator.MaxForceRate = p.Physics.MaxForceRate
	s.params = p

	s.log.Debug("simulation reconfigured",
		"kp", p.PID.Kp, "ki", p.PID.Ki, "kd", p.PID.Kd,
		"setpoint", p.Setpoint, "noise", p.Sensor.Noise,
		"scheme", integ.Scheme(), "hold", p.Physics.Hold)
	return nil
}

func (s *Simulation) Params() Params { return s.params }

// Reset re-initializes the ball, controller, actuator, clock and history,
// and rewinds the noise source when it supports it. Parameters are kept.
func (s *Simulation) Reset(position, velocity float64) error {
	initial := physics.BallState{Position: position, Velocity: velocity}
	if !initial.IsFinite() {
		return dynamo.Invalidf("reset state must be finite, got %+v", initial)
	}

	s.state = initial
	s.pid.Reset()
	s.actuator.Reset()
	s.time = 0
	s.steps = 0
	s.last = dynamo.Sample{}
	s.sampled = false
	s.history = nil
	for _, m := range s.metrics {
		m.Reset()
	}
	if r, ok := s.source.(interface{ Reset() }); ok {
		r.Reset()
	}

	s.log.Info("simulation reset", "position", position, "velocity", velocity)
	return nil
}

// Restart applies p and resets to p.Initial.
func (s *Simulation) Restart(p Params) error {
	if err := s.Apply(p); err != nil {
		return err
	}
	return s.Reset(p.Initial.Position, p.Initial.Velocity)
}

// Step runs one control period of length dt and returns the recorded sample.
//
// A rejected dt leaves every piece of state untouched. If integration
// produces NaN or Inf the error wraps dynamo.ErrNumericInstability inside a
// *dynamo.SimulationError and neither the ball nor the controller advance.
func (s *Simulation) Step(dt float64) (dynamo.Sample, error) {
	if err := dynamo.RequirePositive("dt", dt); err != nil {
		return dynamo.Sample{}, err
	}

	pidBefore, actBefore := *s.pid, *s.actuator

	measured := s.sensor.Measure(s.state.Position)
	output, err := s.pid.Update(measured, s.params.Setpoint, dt)
	if err != nil {
		return dynamo.Sample{}, s.fail(err, pidBefore, actBefore)
	}
	drive := s.actuator.Command(output, dt)
	force := s.params.Physics.Attractor.Force(s.state.Position, drive)
	if math.IsNaN(force) || math.IsInf(force, 0) {
		err := fmt.Errorf("%w: attractor force %v", dynamo.ErrNumericInstability, force)
		return dynamo.Sample{}, s.fail(err, pidBefore, actBefore)
	}

	next := physics.BallState{Position: s.state.Position}
	if !s.params.Physics.Hold {
		if n := s.integ.Substeps(dt); n > 1 {
			s.log.Debug("substepping stalled frame", "dt", dt, "substeps", n)
		}
		next, err = s.integ.Advance(s.state, force, s.params.Physics.Mass, dt)
		if err != nil {
			return dynamo.Sample{}, s.fail(err, pidBefore, actBefore)
		}
	}

	sample := dynamo.Sample{
		Time:     s.time,
		Position: s.state.Position,
		Velocity: s.state.Velocity,
		Measured: measured,
		Setpoint: s.params.Setpoint,
		Output:   output,
		Drive:    drive,
		Force:    force,
	}

	s.state = next
	s.time += dt
	s.steps++
	s.last = sample
	s.sampled = true
	s.history = append(s.history, sample)
	s.trimHistory()

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, o := range s.observers {
		o.OnSample(sample)
	}
	return sample, nil
}

// fail restores controller state and reports err with step context.
func (s *Simulation) fail(err error, pid control.PID, act physics.Actuator) error {
	*s.pid = pid
	*s.actuator = act

	if errors.Is(err, dynamo.ErrNumericInstability) {
		cause := err
		var inner *dynamo.SimulationError
		if errors.As(err, &inner) {
			cause = inner.Wrapped
		}
		err = &dynamo.SimulationError{
			Step:    s.steps,
			Time:    s.time,
			State:   dynamo.State{s.state.Position, s.state.Velocity},
			Wrapped: cause,
		}
		s.log.Warn("numeric instability", "step", s.steps, "time", s.time, "error", err)
	}
	for _, o := range s.observers {
		if eo, ok := o.(dynamo.ErrorObserver); ok {
			eo.OnError(err)
		}
	}
	return err
}

func (s *Simulation) trimHistory() {
	if s.historyLimit == 0 || len(s.history) <= s.historyLimit {
		return
	}
	drop := len(s.history) - s.historyLimit
	s.history = append(s.history[:0], s.history[drop:]...)
}

// History returns a copy of the recorded samples, oldest first.
func (s *Simulation) History() []dynamo.Sample {
	out := make([]dynamo.Sample, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Time:       s.time,
		Steps:      s.steps,
		Ball:       s.state,
		Setpoint:   s.params.Setpoint,
		Drive:      s.actuator.Drive(),
		Integral:   s.pid.Integral(),
		Last:       s.last,
		HasSamples: s.sampled,
	}
}

func (s *Simulation) Time() float64 { return s.time }
