package dynamo

import "math"

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

type Control []float64

// System is a second-order system whose state is laid out as
// [positions..., velocities...].
type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Sample is one step of the control loop, taken at the instant the
// sensor was read: Position and Velocity are the true state the
// controller acted on, Measured is what the sensor reported.
type Sample struct {
	Time     float64 `json:"time"`
	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
	Measured float64 `json:"measured"`
	Setpoint float64 `json:"setpoint"`
	Output   float64 `json:"output"`
	Drive    float64 `json:"drive"`
	Force    float64 `json:"force"`
}

// Error is the control error setpoint - position.
func (s Sample) Error() float64 { return s.Setpoint - s.Position }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(s Sample)
}

// ErrorObserver is implemented by observers that also want failed steps.
type ErrorObserver interface {
	OnError(err error)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
