// Package optim searches controller gains by simulating every candidate.
package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/maglev/internal/dynamo"
	"github.com/san-kum/maglev/internal/metrics"
	"github.com/san-kum/maglev/internal/noise"
	"github.com/san-kum/maglev/internal/sim"
)

// Trial is one evaluated point of the grid. Unstable or rejected candidates
// carry Err and score +Inf.
type Trial struct {
	Params map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64

	// Seed feeds every trial the same noise sequence.
	Seed uint64
	// Workers bounds concurrent trials. 0 uses GOMAXPROCS.
	Workers int
}

// NewGridSearch takes parameter names understood by Simulation.SetParam
// and the values to try for each.
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, dynamo.Invalidf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.Invalidf("empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Span returns n evenly spaced values from lo to hi inclusive.
func Span(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Search runs every grid point from base and ranks them by the named
// metric, lowest first.
func (g *GridSearch) Search(ctx context.Context, base sim.Params, cfg sim.RunConfig, metricName string) ([]Trial, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !hasMetric(metricName) {
		return nil, dynamo.Invalidf("unknown metric %q", metricName)
	}

	var points []map[string]float64
	g.enumerate(0, map[string]float64{}, &points)

	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trials := make([]Trial, len(points))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, point := range points {
		eg.Go(func() error {
			score, err := g.evaluate(ctx, base, cfg, point, metricName)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			trials[i] = Trial{Params: point, Score: score, Err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(trials, func(i, j int) bool { return trials[i].Score < trials[j].Score })
	return trials, nil
}

func (g *GridSearch) evaluate(ctx context.Context, base sim.Params, cfg sim.RunConfig, point map[string]float64, metricName string) (float64, error) {
	s, err := sim.New(base, noise.NewGaussian(1, g.Seed))
	if err != nil {
		return math.Inf(1), err
	}
	for _, name := range g.paramNames {
		if err := s.SetParam(name, point[name]); err != nil {
			return math.Inf(1), fmt.Errorf("%s=%v: %w", name, point[name], err)
		}
	}
	for _, m := range metrics.DefaultSet() {
		s.AddMetric(m)
	}

	res, err := sim.Run(ctx, s, cfg)
	if err != nil {
		return math.Inf(1), err
	}
	score := res.Metrics[metricName]
	if math.IsNaN(score) {
		return math.Inf(1), nil
	}
	return score, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.paramNames) {
		*out = append(*out, current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.enumerate(depth+1, newParams, out)
	}
}

func hasMetric(name string) bool {
	for _, m := range metrics.DefaultSet() {
		if m.Name() == name {
			return true
		}
	}
	return false
}
