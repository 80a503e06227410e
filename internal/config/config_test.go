package config

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if diff := cmp.Diff(sim.DefaultParams(), cfg.Params()); diff != "" {
		t.Errorf("default config does not match default params (-want +got):\n%s", diff)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"negative noise", func(c *Config) { c.Sensor.Noise = -0.1 }},
		{"zero mass", func(c *Config) { c.Physics.Mass = 0 }},
		{"infinite mass", func(c *Config) { c.Physics.Mass = math.Inf(1) }},
		{"nan gain", func(c *Config) { c.PID.Kp = math.NaN() }},
		{"bad derivative", func(c *Config) { c.PID.Derivative = "both" }},
		{"bad integrator", func(c *Config) { c.Physics.Integrator = "rk45" }},
		{"zero softening", func(c *Config) { c.Physics.Attractor.Softening = 0 }},
		{"zero substeps", func(c *Config) { c.Physics.MaxSubsteps = 0 }},
		{"negative history", func(c *Config) { c.HistoryLimit = -1 }},
		{"nan setpoint", func(c *Config) { c.Setpoint = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestDerivativeFlag(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Params().PID.DerivativeOnMeasurement {
		t.Error("expected derivative on measurement by default")
	}
	cfg.PID.Derivative = DerivativeOnError
	if cfg.Params().PID.DerivativeOnMeasurement {
		t.Error("expected derivative on error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maglev.yaml")

	cfg, err := Preset("kick")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Seed = 99
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := "setpoint: 0.6\npid:\n  kp: 42\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Setpoint != 0.6 || cfg.PID.Kp != 42 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.PID.Kd != DefaultConfig().PID.Kd || cfg.Physics.Gravity != DefaultConfig().Physics.Gravity {
		t.Error("expected defaults for unset fields")
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("dt: [oops"), 0644)
	if _, err := Load(bad); err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("expected parse error, got %v", err)
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	os.WriteFile(invalid, []byte("dt: -1\n"), 0644)
	if _, err := Load(invalid); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPresets(t *testing.T) {
	names := PresetNames()
	want := []string{"default", "freefall", "hover", "kick", "noisy", "stall", "windup"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("preset names (-want +got):\n%s", diff)
	}

	for _, name := range names {
		cfg, err := Preset(name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: invalid preset: %v", name, err)
		}
		if PresetDescription(name) == "" {
			t.Errorf("%s: missing description", name)
		}
	}

	if _, err := Preset("nonexistent"); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPresetsAreIndependent(t *testing.T) {
	a, _ := Preset("windup")
	a.Schedule[0].At = 50
	b, _ := Preset("windup")
	if b.Schedule[0].At != 2 {
		t.Errorf("preset shared state between calls: %f", b.Schedule[0].At)
	}
}

func TestPresetsRun(t *testing.T) {
	for _, name := range PresetNames() {
		t.Run(name, func(t *testing.T) {
			cfg, _ := Preset(name)
			cfg.Seed = 1
			cfg.Duration = math.Min(cfg.Duration, 5)

			s, err := cfg.NewSimulation()
			if err != nil {
				t.Fatal(err)
			}
			res, err := sim.Run(context.Background(), s, cfg.RunConfig())
			if err != nil {
				t.Fatalf("run failed: %v", err)
			}
			if res.StepsTaken != cfg.RunConfig().Steps() {
				t.Errorf("expected %d steps, got %d", cfg.RunConfig().Steps(), res.StepsTaken)
			}
		})
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 64)
	errs := make(chan error, 64)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path,
			func(c *Config) {
				select {
				case changes <- c:
				default:
				}
			},
			func(err error) {
				select {
				case errs <- err:
				default:
				}
			})
	}()

	// the watcher registers asynchronously; keep rewriting until it sees one
	cfg := DefaultConfig()
	cfg.PID.Kp = 77
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()

	var got *Config
	for got == nil {
		select {
		case c := <-changes:
			if c.PID.Kp == 77 {
				got = c
			}
		case <-tick.C:
			if err := Save(path, cfg); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}

	// partial writes above may have produced parse errors
	for len(errs) > 0 {
		<-errs
	}

	os.WriteFile(path, []byte("dt: -5\n"), 0644)
	deadline = time.After(5 * time.Second)
	for rejected := false; !rejected; {
		select {
		case err := <-errs:
			rejected = errors.Is(err, dynamo.ErrInvalidInput)
		case <-deadline:
			t.Fatal("timed out waiting for reload error")
		}
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned %v", err)
	}
}
