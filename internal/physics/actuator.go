package physics

// Actuator turns the controller output into the drive applied to the
// attractor. The drive slews at most MaxForceRate per second and never
// exceeds ±MaxForce. A zero limit disables it.
type Actuator struct {
	MaxForce     float64
	MaxForceRate float64
	drive        float64
}

func NewActuator(maxForce, maxForceRate float64) *Actuator {
	return &Actuator{MaxForce: maxForce, MaxForceRate: maxForceRate}
}

// Command moves the drive towards target over dt and returns the new drive.
func (a *Actuator) Command(target, dt float64) float64 {
	delta := target - a.drive
	if a.MaxForceRate > 0 {
		delta = clamp(delta, a.MaxForceRate*dt)
	}
	drive := a.drive + delta
	if a.MaxForce > 0 {
		drive = clamp(drive, a.MaxForce)
	}
	a.drive = drive
	return drive
}

func (a *Actuator) Drive() float64 { return a.drive }

func (a *Actuator) Reset() { a.drive = 0 }
