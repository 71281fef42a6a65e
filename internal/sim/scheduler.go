package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/san-kum/freefall/internal/dynamo"
)

// DefaultMaxFrame caps the wall time a single tick may contribute.
const DefaultMaxFrame = 250 * time.Millisecond

// Scheduler converts variable tick intervals into whole fixed-size steps
// using an accumulator. It performs no I/O and owns no goroutine; the tick
// source calls Advance.
type Scheduler struct {
	dt       float64
	maxFrame float64
	acc      float64
	running  bool
}

func NewScheduler(dt float64) (*Scheduler, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: got %v", dynamo.ErrInvalidStep, dt)
	}
	return &Scheduler{dt: dt, maxFrame: DefaultMaxFrame.Seconds()}, nil
}

func (s *Scheduler) Dt() float64   { return s.dt }
func (s *Scheduler) Running() bool { return s.running }

// SetMaxFrame changes the per-tick cap. Zero or negative disables it.
func (s *Scheduler) SetMaxFrame(d time.Duration) {
	s.maxFrame = d.Seconds()
}

func (s *Scheduler) Start() {
	if s.running {
		return
	}
	s.running = true
	s.acc = 0
}

// Stop halts stepping and discards the fractional remainder.
func (s *Scheduler) Stop() {
	s.running = false
	s.acc = 0
}

// Advance feeds elapsed wall time and calls step once per whole dt.
func (s *Scheduler) Advance(elapsed time.Duration, step func() bool) int {
	return s.AdvanceSeconds(elapsed.Seconds(), step)
}

// AdvanceSeconds is Advance with the elapsed time in seconds. A step
// returning false stops the scheduler before the next increment. It returns
// the number of steps taken.
func (s *Scheduler) AdvanceSeconds(elapsed float64, step func() bool) int {
	if !s.running || !(elapsed > 0) {
		return 0
	}
	// the cap never drops below one whole step
	if limit := math.Max(s.maxFrame, s.dt); s.maxFrame > 0 && elapsed > limit {
		elapsed = limit
	}
	s.acc += elapsed

	n := 0
	for s.running && s.acc >= s.dt {
		s.acc -= s.dt
		n++
		if !step() {
			s.Stop()
		}
	}
	return n
}
