package physics

import (
	"math"
	"testing"

	"github.com/san-kum/maglev/internal/dynamo"
)

func TestBallDerive(t *testing.T) {
	b := &Ball{Mass: 2.0, Gravity: 9.81, Drag: 0.5}
	dx := b.Derive(dynamo.State{1.0, 2.0}, dynamo.Control{10.0}, 0)

	if dx[0] != 2.0 {
		t.Errorf("expected velocity 2.0, got %f", dx[0])
	}
	want := (10.0-0.5*2.0)/2.0 - 9.81
	if math.Abs(dx[1]-want) > 1e-12 {
		t.Errorf("expected acceleration %f, got %f", want, dx[1])
	}
}

func TestBallHoverEquilibrium(t *testing.T) {
	b := &Ball{Mass: 1.0, Gravity: 9.81}
	dx := b.Derive(dynamo.State{0.5, 0.0}, dynamo.Control{9.81}, 0)
	if dx[0] != 0 || math.Abs(dx[1]) > 1e-12 {
		t.Errorf("expected equilibrium, got %v", dx)
	}
}

func TestBallEnergy(t *testing.T) {
	b := &Ball{Mass: 1.0, Gravity: 10}
	top := b.Energy(dynamo.State{5.0, 0.0})
	bottom := b.Energy(dynamo.State{0.0, -10.0})
	if math.Abs(top-bottom) > 1e-12 {
		t.Errorf("expected equal energies, got %f and %f", top, bottom)
	}
}
