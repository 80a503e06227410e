package integrators

import "github.com/san-kum/maglev/internal/dynamo"

// Leapfrog is the kick-drift-kick (velocity Verlet) scheme: half a velocity
// kick, a full position drift, then the second half kick evaluated at the
// new position. Exact for constant acceleration.
type Leapfrog struct {
	mid dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(l.mid) != n {
		l.mid = make(dynamo.State, n)
	}

	halfDt := 0.5 * dt
	dx := dyn.Derive(x, u, t)
	for i := 0; i < half; i++ {
		l.mid[half+i] = x[half+i] + dx[half+i]*halfDt
		l.mid[i] = x[i] + l.mid[half+i]*dt
	}

	dxMid := dyn.Derive(l.mid, u, t+dt)
	result := make(dynamo.State, n)
	for i := 0; i < half; i++ {
		result[i] = l.mid[i]
		result[half+i] = l.mid[half+i] + dxMid[half+i]*halfDt
	}
	return result
}
