package control

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/maglev/internal/dynamo"
)

func mustPID(t *testing.T, p Params) *PID {
	t.Helper()
	pid, err := NewPID(p)
	if err != nil {
		t.Fatalf("NewPID: %v", err)
	}
	return pid
}

func TestPID_Proportional(t *testing.T) {
	pid := mustPID(t, Params{Kp: 2})

	out, err := pid.Update(0.4, 0.5, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out-0.2) > 1e-12 {
		t.Errorf("expected 0.2, got %f", out)
	}
}

func TestPID_ZeroErrorSettles(t *testing.T) {
	for _, onMeasurement := range []bool{true, false} {
		pid := mustPID(t, Params{Kp: 3, Kd: 5, DerivativeOnMeasurement: onMeasurement})
		for i := 0; i < 50; i++ {
			out, err := pid.Update(1.5, 1.5, 0.01)
			if err != nil {
				t.Fatal(err)
			}
			if out != 0 {
				t.Fatalf("step %d: expected 0, got %f", i, out)
			}
		}
	}
}

func TestPID_FirstDerivativeIsZero(t *testing.T) {
	pid := mustPID(t, Params{Kd: 1, DerivativeOnMeasurement: false})

	out, _ := pid.Update(0, 1, 0.01)
	if out != 0 {
		t.Errorf("expected no derivative on first update, got %f", out)
	}

	out, _ = pid.Update(0.5, 1, 0.01)
	if math.Abs(out-(-50)) > 1e-9 {
		t.Errorf("expected derivative -50, got %f", out)
	}

	pid.Reset()
	out, _ = pid.Update(0.9, 1, 0.01)
	if out != 0 {
		t.Errorf("expected no derivative after reset, got %f", out)
	}
}

func TestPID_DerivativeKick(t *testing.T) {
	onError := mustPID(t, Params{Kd: 1, DerivativeOnMeasurement: false})
	onMeas := mustPID(t, Params{Kd: 1, DerivativeOnMeasurement: true})

	for _, p := range []*PID{onError, onMeas} {
		p.Update(0.5, 0.5, 0.01)
	}

	// setpoint jumps while the ball is still
	kick, _ := onError.Update(0.5, 1.5, 0.01)
	calm, _ := onMeas.Update(0.5, 1.5, 0.01)

	if math.Abs(kick-100) > 1e-9 {
		t.Errorf("expected derivative kick of 100, got %f", kick)
	}
	if calm != 0 {
		t.Errorf("expected no kick on measurement, got %f", calm)
	}
}

func TestPID_TinyDtReusesDerivative(t *testing.T) {
	pid := mustPID(t, Params{Kd: 1, DerivativeOnMeasurement: true})
	pid.Update(0, 0, 0.01)
	first, _ := pid.Update(-0.01, 0, 0.01) // derivative 1

	out, err := pid.Update(5, 0, 1e-12)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out-first) > 1e-9 {
		t.Errorf("expected reused derivative %f, got %f", first, out)
	}
}

func TestPID_IntegralClamp(t *testing.T) {
	pid := mustPID(t, Params{Ki: 1, IntegralLimit: 0.5})

	var out float64
	for i := 0; i < 1000; i++ {
		out, _ = pid.Update(0, 1, 0.01)
	}
	if pid.Integral() != 0.5 {
		t.Errorf("expected integral clamped at 0.5, got %f", pid.Integral())
	}
	if out != 0.5 {
		t.Errorf("expected output 0.5, got %f", out)
	}

	// clamped integral unwinds immediately once the error reverses
	pid.Update(2, 1, 0.01)
	if math.Abs(pid.Integral()-0.49) > 1e-12 {
		t.Errorf("expected 0.49, got %f", pid.Integral())
	}
}

func TestPID_IntegralUnclamped(t *testing.T) {
	pid := mustPID(t, Params{Ki: 1})
	for i := 0; i < 2000; i++ {
		pid.Update(0, 1, 0.01)
	}
	if math.Abs(pid.Integral()-20) > 1e-9 {
		t.Errorf("expected 20, got %f", pid.Integral())
	}
}

func TestPID_OutputLimit(t *testing.T) {
	pid := mustPID(t, Params{Kp: 100, OutputLimit: 3})

	out, _ := pid.Update(0, 1, 0.01)
	if out != 3 {
		t.Errorf("expected 3, got %f", out)
	}
	out, _ = pid.Update(2, 1, 0.01)
	if out != -3 {
		t.Errorf("expected -3, got %f", out)
	}
}

func TestPID_InvalidInputLeavesState(t *testing.T) {
	pid := mustPID(t, Params{Kp: 1, Ki: 1, Kd: 1})
	pid.Update(0.2, 1, 0.01)
	before := *pid

	tests := []struct {
		name                string
		meas, setpoint, dt float64
	}{
		{"zero dt", 0, 1, 0},
		{"negative dt", 0, 1, -0.01},
		{"nan dt", 0, 1, math.NaN()},
		{"nan measurement", math.NaN(), 1, 0.01},
		{"inf setpoint", 0, math.Inf(1), 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := pid.Update(tt.meas, tt.setpoint, tt.dt); !errors.Is(err, dynamo.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if *pid != before {
				t.Errorf("state changed: %+v vs %+v", *pid, before)
			}
		})
	}
}

func TestPID_ResetKeepsGains(t *testing.T) {
	pid := mustPID(t, Params{Kp: 1, Ki: 2, Kd: 3})
	pid.Update(0, 1, 0.1)
	pid.Reset()

	if pid.Integral() != 0 {
		t.Errorf("expected integral 0, got %f", pid.Integral())
	}
	if p := pid.Params(); p.Kp != 1 || p.Ki != 2 || p.Kd != 3 {
		t.Errorf("gains changed: %+v", p)
	}
}

func TestPID_Configurable(t *testing.T) {
	var c dynamo.Configurable = mustPID(t, DefaultParams())

	if err := c.SetParam("Kp", 12); err != nil {
		t.Fatal(err)
	}
	if c.GetParams()["Kp"] != 12 {
		t.Errorf("expected Kp 12, got %f", c.GetParams()["Kp"])
	}
	if err := c.SetParam("Gain", 1); !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Errorf("expected ErrUnknownParam, got %v", err)
	}
	if err := c.SetParam("Ki", math.NaN()); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if err := c.SetParam("IntegralLimit", -1); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewPID_RejectsBadParams(t *testing.T) {
	if _, err := NewPID(Params{Kp: math.Inf(1)}); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
