package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/maglev/internal/noise"
)

// Job is one independent run executed by RunMany.
type Job struct {
	Name   string
	Params Params
	Seed   uint64
	Config RunConfig
	// Setup is called on the fresh simulation before it runs, typically to
	// attach metrics.
	Setup func(*Simulation)
}

// RunMany executes jobs concurrently, each with its own simulation and noise
// source, and returns results in job order. limit <= 0 uses GOMAXPROCS.
func RunMany(ctx context.Context, jobs []Job, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, job := range jobs {
		g.Go(func() error {
			s, err := New(job.Params, noise.NewGaussian(1, job.Seed))
			if err != nil {
				return err
			}
			if job.Setup != nil {
				job.Setup(s)
			}
			res, err := Run(ctx, s, job.Config)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}
