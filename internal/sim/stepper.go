package sim

import (
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/physics"
)

// Stepper advances a Kinematics value by one fixed step and applies the
// ground clamp.
type Stepper struct {
	integ dynamo.Integrator
	body  physics.FallingBody
	x     dynamo.State
}

func NewStepper(integ dynamo.Integrator) *Stepper {
	return &Stepper{integ: integ, x: make(dynamo.State, 2)}
}

// Step integrates k over dt with params p. The returned state carries the
// force breakdown that drove the step. When the new position reaches the
// ground it is clamped to zero, the velocity keeps its computed value, and
// terminal is true.
func (s *Stepper) Step(k dynamo.Kinematics, p dynamo.Params, dt float64) (next dynamo.Kinematics, terminal bool) {
	f := physics.ComputeForces(k.Velocity, p)

	s.body.Params = p
	s.x[0], s.x[1] = k.Position, k.Velocity
	x := s.integ.Step(&s.body, s.x, k.Time, dt)

	pos, vel := x[0], x[1]
	if pos <= 0 {
		pos = 0
		terminal = true
	}

	return physics.Observe(k.Time+dt, pos, vel, f, p), terminal
}
