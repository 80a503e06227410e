package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/maglev/internal/automation"
	"github.com/san-kum/maglev/internal/config"
	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/metrics"
	"github.com/san-kum/maglev/internal/sim"
	"github.com/san-kum/maglev/internal/storage"
	"github.com/san-kum/maglev/internal/telemetry"
	"github.com/san-kum/maglev/internal/tui"
)

// newSimulation builds the simulation for cfg and reports the seed actually
// used so the run can be reproduced.
func newSimulation(cfg *config.Config) (*sim.Simulation, uint64, error) {
	src := cfg.NoiseSource()
	s, err := sim.New(cfg.Params(), src)
	if err != nil {
		return nil, 0, err
	}
	s.SetHistoryLimit(cfg.HistoryLimit)
	s.SetLogger(logger)
	return s, src.Seed(), nil
}

// serveMetrics attaches a collector to s and serves it until ctx is done.
func serveMetrics(ctx context.Context, s *sim.Simulation) {
	if metricsAddr == "" {
		return
	}
	c := telemetry.NewCollector()
	s.AddObserver(c)
	go func() {
		if err := c.Serve(ctx, metricsAddr); err != nil {
			logger.Error("metrics server stopped", "addr", metricsAddr, "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", metricsAddr)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s, usedSeed, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.DefaultSet() {
		s.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	serveMetrics(ctx, s)

	fmt.Printf("running levitation simulation (seed %d)...\n", usedSeed)
	start := time.Now()

	result, err := sim.Run(ctx, s, cfg.RunConfig())
	if err != nil {
		if result == nil || len(result.Samples) == 0 {
			return err
		}
		if errors.Is(err, dynamo.ErrNumericInstability) {
			fmt.Printf("simulation became unstable: %v\n", err)
		} else {
			fmt.Printf("simulation stopped early: %v\n", err)
		}
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Preset:     preset,
		Seed:       usedSeed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Physics.Integrator,
		Setpoint:   cfg.Setpoint,
		Noise:      cfg.Sensor.Noise,
		PID:        cfg.Params().PID,
		Metrics:    result.Metrics,
	}, result.Samples)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("final position: %.4f m (setpoint %.4f m)\n", result.Final.Ball.Position, result.Final.Setpoint)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(values map[string]float64) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, values[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	s, _, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	// The alt screen owns the terminal.
	s.SetLogger(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	serveMetrics(ctx, s)

	return tui.Run(ctx, s, tui.Options{
		Defaults:   cfg.Params(),
		SampleRate: cfg.SampleRate,
		ConfigPath: configFile,
	})
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	results, runErr := automation.RunScenario(ctx, sc, logger)

	for i, r := range results {
		runID, err := st.Save(storage.RunMetadata{
			Preset:     r.Step.Preset,
			Seed:       r.Seed,
			Dt:         r.Config.Dt,
			Duration:   r.Config.Duration,
			Integrator: r.Config.Physics.Integrator,
			Setpoint:   r.Result.Final.Setpoint,
			Noise:      r.Config.Sensor.Noise,
			PID:        r.Config.Params().PID,
			Metrics:    r.Result.Metrics,
		}, r.Result.Samples)
		if err != nil {
			return err
		}
		fmt.Printf("  %d. %-12s run %s  iae %.5f\n", i+1, r.Step.Name, runID, r.Result.Metrics["iae"])
	}
	return runErr
}
