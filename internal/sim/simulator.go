package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// DefaultMaxDuration bounds a headless run when RunConfig leaves it unset.
// A body lighter than the air it displaces never lands.
const DefaultMaxDuration = 600.0

type RunConfig struct {
	// MaxDuration is the simulated time after which the run stops even if
	// the body is still airborne. Zero selects DefaultMaxDuration.
	MaxDuration float64 `yaml:"max_duration" json:"max_duration"`
}

type Result struct {
	History    []dynamo.HistoryPoint
	Final      dynamo.Kinematics
	Terminated bool
	StepsTaken int
	Metrics    map[string]float64
}

// Runner drives a controller without a wall clock, feeding it exact dt
// ticks until impact.
type Runner struct {
	metrics   []dynamo.Metric
	observers []dynamo.Observer
}

func NewRunner() *Runner {
	return &Runner{
		metrics:   make([]dynamo.Metric, 0),
		observers: make([]dynamo.Observer, 0),
	}
}

func (r *Runner) AddMetric(m dynamo.Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o dynamo.Observer) { r.observers = append(r.observers, o) }

// Run resets c, starts it and ticks it one step at a time until the body
// lands, MaxDuration elapses or ctx is cancelled. The controller is left
// paused when the run stops before impact. On cancellation the partial
// result is returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, c *Controller, cfg RunConfig) (*Result, error) {
	if err := validateRunConfig(cfg); err != nil {
		return nil, err
	}
	maxDuration := cfg.MaxDuration
	if maxDuration == 0 {
		maxDuration = DefaultMaxDuration
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	c.Reset()
	c.Toggle()

	dt := c.Dt()
	seen := 0
	var runErr error

	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		c.TickSeconds(dt)
		snap := c.Snapshot()

		for _, p := range snap.History[seen:] {
			for _, m := range r.metrics {
				m.Observe(p)
			}
			for _, obs := range r.observers {
				obs.OnStep(p)
			}
		}
		seen = len(snap.History)

		if snap.Phase != Running || snap.Time >= maxDuration {
			break
		}
	}

	if c.Phase() == Running {
		c.Toggle()
	}

	snap := c.Snapshot()
	result := &Result{
		History:    c.Baseline(),
		Final:      snap.Kinematics,
		Terminated: snap.Phase == Terminated,
		StepsTaken: len(snap.History),
		Metrics:    make(map[string]float64, len(r.metrics)),
	}
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, runErr
}

func validateRunConfig(cfg RunConfig) error {
	if cfg.MaxDuration < 0 || math.IsNaN(cfg.MaxDuration) || math.IsInf(cfg.MaxDuration, 0) {
		return fmt.Errorf("max duration must be non-negative and finite, got %f", cfg.MaxDuration)
	}
	return nil
}
