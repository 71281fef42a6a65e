package analysis

import (
	"fmt"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/physics"
	"github.com/san-kum/freefall/internal/sim"
)

// SweepPoint is the outcome of one run in a parameter sweep.
type SweepPoint struct {
	Param          float64
	ImpactTime     float64
	ImpactVelocity float64
	Landed         bool
}

// SweepConfig describes a sweep of one named parameter (snake_case, as in
// the config file) between Min and Max inclusive.
type SweepConfig struct {
	Param       string
	Min, Max    float64
	Steps       int
	Dt          float64
	MaxDuration float64
}

// ImpactSweep runs base once per parameter value and records where and how
// fast the body lands. Values outside the parameter's domain are an error.
func ImpactSweep(base dynamo.Params, integ dynamo.Integrator, cfg SweepConfig) ([]SweepPoint, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("%w: got %v", dynamo.ErrInvalidStep, cfg.Dt)
	}
	steps := cfg.Steps
	if steps <= 1 {
		steps = 2
	}
	maxDuration := cfg.MaxDuration
	if maxDuration <= 0 {
		maxDuration = sim.DefaultMaxDuration
	}
	paramStep := (cfg.Max - cfg.Min) / float64(steps-1)

	body := physics.NewFallingBody(base)
	if _, ok := body.GetParams()[cfg.Param]; !ok {
		return nil, fmt.Errorf("%w: cannot sweep %q", dynamo.ErrInvalidParameter, cfg.Param)
	}

	stepper := sim.NewStepper(integ)
	results := make([]SweepPoint, 0, steps)

	for i := 0; i < steps; i++ {
		value := cfg.Min + float64(i)*paramStep
		if err := body.SetParam(cfg.Param, value); err != nil {
			return nil, err
		}
		p := body.Params
		if err := params.Validate(p); err != nil {
			return nil, fmt.Errorf("sweep %s=%g: %w", cfg.Param, value, err)
		}

		k := physics.Initial(p)
		landed := false
		for k.Time < maxDuration {
			var terminal bool
			k, terminal = stepper.Step(k, p, cfg.Dt)
			if terminal {
				landed = true
				break
			}
		}

		results = append(results, SweepPoint{
			Param:          value,
			ImpactTime:     k.Time,
			ImpactVelocity: k.Velocity,
			Landed:         landed,
		})
	}

	return results, nil
}
