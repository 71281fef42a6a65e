package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/experiment"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/physics"
)

var errNoTrials = errors.New("monte carlo needs at least one trial")

// MonteCarloConfig perturbs named parameters (snake_case) by a uniform
// relative spread: 0.1 draws each value within ±10% of the base.
type MonteCarloConfig struct {
	Spread    map[string]float64
	NumTrials int
	Seed      int64
}

// MonteCarloResult is the outcome of one trial.
type MonteCarloResult struct {
	TrialID        int
	Params         dynamo.Params
	ImpactTime     float64
	ImpactVelocity float64
	Landed         bool
	// Invalid marks a draw outside the parameter domain; it was not run.
	Invalid bool
}

// RunMonteCarlo executes NumTrials runs of base with perturbed parameters.
// A zero seed uses the clock.
func RunMonteCarlo(ctx context.Context, base *config.Config, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.NumTrials <= 0 {
		return nil, errNoTrials
	}
	p, err := base.Resolve()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(cfg.Spread))
	for name := range cfg.Spread {
		names = append(names, name)
	}
	// fixed draw order keeps a seed reproducible
	sort.Strings(names)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	for trial := 0; trial < cfg.NumTrials; trial++ {
		body := physics.NewFallingBody(p)
		orig := body.GetParams()
		for _, name := range names {
			v, ok := orig[name]
			if !ok {
				return nil, fmt.Errorf("%w: cannot perturb %q", dynamo.ErrInvalidParameter, name)
			}
			body.SetParam(name, v*(1+(rng.Float64()-0.5)*2*cfg.Spread[name]))
		}

		trialCfg := *base
		trialCfg.Params = params.PatchFrom(body.Params)
		res := MonteCarloResult{TrialID: trial, Params: body.Params}

		exp, err := experiment.New(&trialCfg)
		if errors.Is(err, dynamo.ErrInvalidParameter) {
			res.Invalid = true
			results = append(results, res)
			continue
		}
		if err != nil {
			return results, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, err
		}
		res.ImpactTime = result.Final.Time
		res.ImpactVelocity = result.Final.Velocity
		res.Landed = result.Terminated
		results = append(results, res)
	}

	return results, nil
}

// Stats summarises the impact speed of the landed trials.
type Stats struct {
	Landed   int
	Invalid  int
	Mean     float64
	StdDev   float64
	Min, Max float64
}

func Summarize(results []MonteCarloResult) Stats {
	var s Stats
	var sum, sumSq float64
	for _, r := range results {
		if r.Invalid {
			s.Invalid++
			continue
		}
		if !r.Landed {
			continue
		}
		v := r.ImpactVelocity
		if s.Landed == 0 || v < s.Min {
			s.Min = v
		}
		if s.Landed == 0 || v > s.Max {
			s.Max = v
		}
		s.Landed++
		sum += v
		sumSq += v * v
	}
	if s.Landed > 0 {
		n := float64(s.Landed)
		s.Mean = sum / n
		s.StdDev = math.Sqrt(math.Max(sumSq/n-s.Mean*s.Mean, 0))
	}
	return s
}
