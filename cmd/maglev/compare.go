package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/maglev/internal/config"
	"github.com/san-kum/maglev/internal/integrators"
	"github.com/san-kum/maglev/internal/metrics"
	"github.com/san-kum/maglev/internal/optim"
	"github.com/san-kum/maglev/internal/physics"
	"github.com/san-kum/maglev/internal/sim"
)

var (
	unforced bool

	kpRange    []float64
	kiRange    []float64
	kdRange    []float64
	points     int
	tuneMetric string
	top        int
)

// fixedSeed returns cfg.Seed, or a random seed when it is unset, so every
// parallel job sees the same noise.
func fixedSeed(cfg *config.Config) uint64 {
	if cfg.Seed != 0 {
		return cfg.Seed
	}
	return cfg.NoiseSource().Seed()
}

func compareSchemes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	schemes := args
	if len(schemes) == 0 {
		schemes = integrators.Names()
	}
	for _, name := range schemes {
		if _, err := integrators.New(name); err != nil {
			return err
		}
	}

	base := cfg.Params()
	if unforced {
		base.PID.Kp, base.PID.Ki, base.PID.Kd = 0, 0, 0
	}
	ball := &physics.Ball{Mass: base.Physics.Mass, Gravity: base.Physics.Gravity, Drag: base.Physics.Drag}
	s := fixedSeed(cfg)

	jobs := make([]sim.Job, len(schemes))
	for i, name := range schemes {
		p := base
		p.Physics.Scheme = name
		jobs[i] = sim.Job{
			Name:   name,
			Params: p,
			Seed:   s,
			Config: cfg.RunConfig(),
			Setup: func(sm *sim.Simulation) {
				for _, m := range metrics.DefaultSet() {
					sm.AddMetric(m)
				}
				sm.AddMetric(metrics.NewEnergyDrift(ball))
			},
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("comparing %d schemes over %.1fs at dt=%g (seed %d)\n\n", len(schemes), cfg.Duration, cfg.Dt, s)
	start := time.Now()
	results, err := sim.RunMany(ctx, jobs, 0)
	if err != nil {
		return err
	}
	logger.Info("comparison finished", "schemes", len(schemes), "elapsed", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCHEME\tIAE\tSS ERROR\tPEAK ERROR\tENERGY DRIFT\tFINAL POS")
	for i, r := range results {
		fmt.Fprintf(w, "%s\t%.5f\t%.6f\t%.5f\t%.3e\t%.5f\n",
			schemes[i],
			r.Metrics["iae"],
			r.Metrics["steady_state_error"],
			r.Metrics["peak_error"],
			r.Metrics["energy_drift"],
			r.Final.Ball.Position,
		)
	}
	return w.Flush()
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var names []string
	var ranges [][]float64
	for _, r := range []struct {
		name  string
		flag  string
		value []float64
	}{
		{"Kp", "kp-range", kpRange},
		{"Ki", "ki-range", kiRange},
		{"Kd", "kd-range", kdRange},
	} {
		if len(r.value) == 0 {
			continue
		}
		if len(r.value) != 2 {
			return fmt.Errorf("--%s takes lo,hi", r.flag)
		}
		names = append(names, r.name)
		ranges = append(ranges, optim.Span(r.value[0], r.value[1], points))
	}
	if len(names) == 0 {
		names = []string{"Kp", "Kd"}
		ranges = [][]float64{
			optim.Span(cfg.PID.Kp/2, cfg.PID.Kp*2, points),
			optim.Span(cfg.PID.Kd/2, cfg.PID.Kd*2, points),
		}
	}

	gs, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	gs.Seed = fixedSeed(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	total := 1
	for _, r := range ranges {
		total *= len(r)
	}
	fmt.Printf("searching %d candidates by %s...\n\n", total, tuneMetric)

	trials, err := gs.Search(ctx, cfg.Params(), cfg.RunConfig(), tuneMetric)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := "RANK"
	for _, n := range names {
		header += "\t" + n
	}
	fmt.Fprintln(w, header+"\t"+tuneMetric)
	for i, t := range trials {
		if i >= top {
			break
		}
		row := fmt.Sprintf("%d", i+1)
		for _, n := range names {
			row += fmt.Sprintf("\t%.3f", t.Params[n])
		}
		if math.IsInf(t.Score, 1) {
			row += "\tunstable"
		} else {
			row += fmt.Sprintf("\t%.6f", t.Score)
		}
		fmt.Fprintln(w, row)
	}
	return w.Flush()
}
