package sim

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/integrators"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/physics"
)

// Phase is the controller's lifecycle state.
type Phase int

const (
	Idle Phase = iota
	Running
	Paused
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// State is an immutable view of the simulation published after every
// command and tick. History shares storage with the live log and must be
// treated as read-only; use Controller.Baseline for an owned copy.
type State struct {
	Params    dynamo.Params
	Phase     Phase
	IsRunning bool
	dynamo.Kinematics
	History []dynamo.HistoryPoint
}

// Controller owns one simulation: parameters, current state, history and
// the fixed-step scheduler. Commands and ticks are serialized internally;
// Snapshot never blocks.
type Controller struct {
	mu      sync.Mutex
	store   *params.Store
	stepper *Stepper
	sched   *Scheduler
	history *History
	current dynamo.Kinematics
	phase   Phase
	snap    atomic.Pointer[State]
	logger  *log.Logger
}

type Option func(*Controller)

// WithLogger routes controller events to l.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithIntegrator replaces the default semi-implicit Euler scheme.
func WithIntegrator(integ dynamo.Integrator) Option {
	return func(c *Controller) {
		if integ != nil {
			c.stepper = NewStepper(integ)
		}
	}
}

// WithMaxFrame sets the per-tick wall time cap of the scheduler.
func WithMaxFrame(d time.Duration) Option {
	return func(c *Controller) {
		c.sched.SetMaxFrame(d)
	}
}

// NewController validates p and returns a controller in the Idle phase.
func NewController(p dynamo.Params, dt float64, opts ...Option) (*Controller, error) {
	store, err := params.New(p)
	if err != nil {
		return nil, err
	}
	sched, err := NewScheduler(dt)
	if err != nil {
		return nil, err
	}

	c := &Controller{
		store:   store,
		stepper: NewStepper(integrators.NewSemiImplicitEuler()),
		sched:   sched,
		history: NewHistory(),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.resetLocked()
	return c, nil
}

// Toggle starts or resumes from Idle/Paused and pauses from Running.
// It does nothing once Terminated.
func (c *Controller) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case Idle, Paused:
		c.sched.Start()
		c.setPhase(Running)
	case Running:
		c.sched.Stop()
		c.setPhase(Paused)
	case Terminated:
		return
	}
	c.publish()
}

// Reset returns to Idle from any phase, rebuilding the initial state from
// the current parameters and clearing the history.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

func (c *Controller) resetLocked() {
	c.sched.Stop()
	c.history.Clear()
	c.current = physics.Initial(c.store.Params())
	c.setPhase(Idle)
	c.publish()
}

// SetParams validates and merges patch. Invalid fields keep their previous
// values and are reported in the returned error; valid fields always apply.
// The current trajectory is not moved: force parameters act from the next
// tick, height and initial velocity from the next Reset.
func (c *Controller) SetParams(patch params.Patch) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.store.Apply(patch)
	if err != nil {
		c.logger.Warn("rejected parameters", "err", err)
	}
	c.publish()
	return err
}

// Tick feeds elapsed wall time from the external tick source and returns
// the number of fixed steps performed.
func (c *Controller) Tick(elapsed time.Duration) int {
	return c.TickSeconds(elapsed.Seconds())
}

// TickSeconds is Tick with the elapsed time in seconds.
func (c *Controller) TickSeconds(elapsed float64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := c.sched.AdvanceSeconds(elapsed, c.step)
	if n > 0 {
		c.publish()
	}
	return n
}

func (c *Controller) step() bool {
	next, terminal := c.stepper.Step(c.current, c.store.Params(), c.sched.Dt())
	if err := c.history.Append(next.Point()); err != nil {
		panic(&dynamo.SimError{Step: c.history.Len(), Time: next.Time, Wrapped: err})
	}
	c.current = next

	if terminal {
		c.setPhase(Terminated)
		c.logger.Info("impact", "t", next.Time, "v", next.Velocity, "steps", c.history.Len())
		return false
	}
	return true
}

func (c *Controller) setPhase(p Phase) {
	if c.phase != p {
		c.logger.Debug("phase", "from", c.phase, "to", p)
	}
	c.phase = p
}

func (c *Controller) publish() {
	c.snap.Store(&State{
		Params:     c.store.Params(),
		Phase:      c.phase,
		IsRunning:  c.phase == Running,
		Kinematics: c.current,
		History:    c.history.Points(),
	})
}

// Snapshot returns the most recently published state.
func (c *Controller) Snapshot() State {
	return *c.snap.Load()
}

// Baseline returns a copy of the history that later ticks never touch,
// suitable as a comparison overlay.
func (c *Controller) Baseline() []dynamo.HistoryPoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Copy()
}

func (c *Controller) Dt() float64 { return c.sched.Dt() }

func (c *Controller) Phase() Phase { return c.Snapshot().Phase }

func (c *Controller) Params() dynamo.Params { return c.Snapshot().Params }
