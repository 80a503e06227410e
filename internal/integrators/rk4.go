package integrators

import "github.com/san-kum/maglev/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta scheme. Accurate per step
// but not symplectic; energy decays slowly on undamped oscillators.
type RK4 struct {
	probe dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

// offset writes x + h*k into r.probe and returns it.
func (r *RK4) offset(x, k dynamo.State, h float64) dynamo.State {
	for i := range x {
		r.probe[i] = x[i] + h*k[i]
	}
	return r.probe
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	if len(r.probe) != n {
		r.probe = make(dynamo.State, n)
	}

	k1 := dyn.Derive(x, u, t).Clone()
	k2 := dyn.Derive(r.offset(x, k1, dt/2), u, t+dt/2).Clone()
	k3 := dyn.Derive(r.offset(x, k2, dt/2), u, t+dt/2).Clone()
	k4 := dyn.Derive(r.offset(x, k3, dt), u, t+dt)

	result := make(dynamo.State, n)
	for i := range x {
		result[i] = x[i] + dt/6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}
	return result
}
