package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/sim"
)

// Experiment is one configured simulation: a controller built from a
// config plus the runner that drives it headless.
type Experiment struct {
	cfg    *config.Config
	params dynamo.Params
	ctrl   *sim.Controller
	runner *sim.Runner
}

// New resolves cfg into parameters, picks the integrator and builds the
// controller. Extra options are passed to the controller.
func New(cfg *config.Config, opts ...sim.Option) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}

	reg := NewRegistry()
	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	all := append([]sim.Option{
		sim.WithIntegrator(integ),
		sim.WithMaxFrame(time.Duration(cfg.MaxFrame * float64(time.Second))),
	}, opts...)
	ctrl, err := sim.NewController(p, cfg.Dt, all...)
	if err != nil {
		return nil, err
	}

	return &Experiment{
		cfg:    cfg,
		params: p,
		ctrl:   ctrl,
		runner: sim.NewRunner(),
	}, nil
}

// Setup attaches metrics and observers to the headless runner.
func (e *Experiment) Setup(metrics []dynamo.Metric, observers ...dynamo.Observer) {
	for _, m := range metrics {
		e.runner.AddMetric(m)
	}
	for _, o := range observers {
		e.runner.AddObserver(o)
	}
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.ctrl == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.runner.Run(ctx, e.ctrl, sim.RunConfig{MaxDuration: e.cfg.MaxDuration})
}

// Controller returns the underlying controller for interactive use.
func (e *Experiment) Controller() *sim.Controller {
	return e.ctrl
}

func (e *Experiment) Params() dynamo.Params { return e.params }

func (e *Experiment) Config() *config.Config { return e.cfg }
