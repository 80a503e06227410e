// Package automation runs scripted sequences of levitation runs described
// in YAML.
package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/maglev/internal/config"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/metrics"
	"github.com/san-kum/maglev/internal/sim"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run. Zero Dt, Duration and Seed keep the preset's
// values. Params are applied with Simulation.SetParam.
type ScenarioStep struct {
	Name     string             `yaml:"name"`
	Preset   string             `yaml:"preset"`
	Dt       float64            `yaml:"dt"`
	Duration float64            `yaml:"duration"`
	Seed     uint64             `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Step   ScenarioStep
	Config *config.Config
	Seed   uint64
	Result *sim.Result
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, dynamo.Invalidf("scenario %q has no steps", scenario.Name)
	}
	return &scenario, nil
}

// stepConfig resolves the preset and overrides of one step.
func stepConfig(step ScenarioStep) (*config.Config, error) {
	name := step.Preset
	if name == "" {
		name = "default"
	}
	cfg, err := config.Preset(name)
	if err != nil {
		return nil, err
	}
	if step.Dt != 0 {
		cfg.Dt = step.Dt
	}
	if step.Duration != 0 {
		cfg.Duration = step.Duration
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	return cfg, cfg.Validate()
}

// RunScenario executes the steps in order and stops at the first failure,
// returning the results so far. A nil log discards progress.
func RunScenario(ctx context.Context, scenario *Scenario, log *slog.Logger) ([]StepResult, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		log.Info("running scenario step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := stepConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		src := cfg.NoiseSource()
		s, err := sim.New(cfg.Params(), src)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		s.SetLogger(log)

		// sorted so a bad name fails the same way every time
		names := make([]string, 0, len(step.Params))
		for name := range step.Params {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := s.SetParam(name, step.Params[name]); err != nil {
				return results, fmt.Errorf("step %d: %s: %w", i+1, name, err)
			}
		}
		for _, m := range metrics.DefaultSet() {
			s.AddMetric(m)
		}

		result, err := sim.Run(ctx, s, cfg.RunConfig())
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Config: cfg, Seed: src.Seed(), Result: result})
	}

	return results, nil
}
