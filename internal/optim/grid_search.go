// Package optim searches parameter grids for the configuration that best
// meets an objective computed from a headless run.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/experiment"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/physics"
	"github.com/san-kum/freefall/internal/sim"
)

// Objective scores a finished run; lower is better.
type Objective func(r *sim.Result) float64

// MetricTarget scores a run by how far the named metric lands from target.
// Runs missing the metric score +Inf.
func MetricTarget(metric string, target float64) Objective {
	return func(r *sim.Result) float64 {
		if r == nil {
			return math.Inf(1)
		}
		v, ok := r.Metrics[metric]
		if !ok {
			return math.Inf(1)
		}
		return math.Abs(v - target)
	}
}

// Builder turns one grid point (snake_case parameter name to value) into a
// ready experiment.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d params but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("%w: empty range for %s", dynamo.ErrInvalidParameter, params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 2 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// Search runs every grid point and returns the best one. Grid points whose
// experiment cannot be built (invalid parameters) are skipped; a run
// failure or cancellation aborts the search.
func (g *GridSearch) Search(ctx context.Context, build Builder, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), build, objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("%w: no grid point could be run", dynamo.ErrInvalidParameter)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	build Builder,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if depth == len(g.paramNames) {
		exp, err := build(current)
		if err != nil {
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val := objective(result)
		if val < *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, build, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}

// ConfigBuilder resolves base, overrides the grid values by name and
// attaches every registered metric.
func ConfigBuilder(base *config.Config, opts ...sim.Option) Builder {
	return func(values map[string]float64) (*experiment.Experiment, error) {
		p, err := base.Resolve()
		if err != nil {
			return nil, err
		}
		body := physics.NewFallingBody(p)
		for name, v := range values {
			if err := body.SetParam(name, v); err != nil {
				return nil, fmt.Errorf("%w: %v", dynamo.ErrInvalidParameter, err)
			}
		}

		cfg := *base
		cfg.Params = params.PatchFrom(body.Params)
		exp, err := experiment.New(&cfg, opts...)
		if err != nil {
			return nil, err
		}
		exp.Setup(experiment.NewRegistry().DefaultMetrics())
		return exp, nil
	}
}
