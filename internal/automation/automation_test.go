package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/maglev/internal/dynamo"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: gains
description: soft then stiff
steps:
  - name: soft
    duration: 1
    seed: 7
    params:
      Kp: 40
  - name: hover
    preset: hover
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Name != "gains" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if sc.Steps[0].Params["Kp"] != 40 || sc.Steps[0].Seed != 7 {
		t.Errorf("unexpected first step %+v", sc.Steps[0])
	}
}

func TestLoadScenario_Errors(t *testing.T) {
	if _, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty scenario, got %v", err)
	}
}

func TestRunScenario(t *testing.T) {
	sc := &Scenario{
		Name: "two",
		Steps: []ScenarioStep{
			{Name: "soft", Duration: 0.5, Seed: 3, Params: map[string]float64{"Kp": 40, "Noise": 0}},
			{Name: "freefall", Preset: "freefall", Duration: 0.2},
		},
	}
	results, err := RunScenario(context.Background(), sc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	first := results[0]
	if first.Seed != 3 {
		t.Errorf("expected seed 3, got %d", first.Seed)
	}
	if first.Result.StepsTaken != 50 {
		t.Errorf("expected 50 steps, got %d", first.Result.StepsTaken)
	}
	if _, ok := first.Result.Metrics["iae"]; !ok {
		t.Error("expected default metrics")
	}
	if got := first.Result.Samples[len(first.Result.Samples)-1].Measured; got != first.Result.Samples[len(first.Result.Samples)-1].Position {
		t.Errorf("expected noiseless measurement, got %f", got)
	}

	if results[1].Result.Final.Ball.Position >= results[1].Config.Initial.Position {
		t.Error("expected the ball to fall")
	}
}

func TestRunScenario_StopsAtFailure(t *testing.T) {
	sc := &Scenario{
		Steps: []ScenarioStep{
			{Name: "ok", Duration: 0.1},
			{Name: "bad", Params: map[string]float64{"Bogus": 1}},
			{Name: "never", Duration: 0.1},
		},
	}
	results, err := RunScenario(context.Background(), sc, nil)
	if !errors.Is(err, dynamo.ErrUnknownParam) {
		t.Fatalf("expected ErrUnknownParam, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 completed step, got %d", len(results))
	}

	sc.Steps = []ScenarioStep{{Preset: "nope"}}
	if _, err := RunScenario(context.Background(), sc, nil); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for unknown preset, got %v", err)
	}
}
