package physics

// Attractor is an idealized point source of force with no physical extent.
type Attractor struct {
	Position  float64 `json:"position" yaml:"position"`
	Gain      float64 `json:"gain" yaml:"gain"`
	Softening float64 `json:"softening" yaml:"softening"`
}

// Force returns the force on a ball at position for the given actuator
// drive. Positive drive attracts, negative drive repels.
func (a Attractor) Force(position, drive float64) float64 {
	d := a.Position - position
	dir := 1.0
	if d < 0 {
		dir = -1.0
	}
	r := d / a.Softening
	return dir * a.Gain * drive / (1 + r*r)
}

// DriveFor returns the drive that holds a ball of the given weight at
// position; used to seed the hover presets.
func (a Attractor) DriveFor(position, weight float64) float64 {
	unit := a.Force(position, 1)
	if unit == 0 {
		return 0
	}
	return weight / unit
}
