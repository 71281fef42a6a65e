package integrators

import "github.com/san-kum/freefall/internal/dynamo"

// Euler is the explicit forward Euler scheme.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := dyn.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// SemiImplicitEuler updates velocities first and then moves positions with
// the updated velocities (symplectic Euler). It is the engine default.
type SemiImplicitEuler struct {
	scratch dynamo.State
}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (s *SemiImplicitEuler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	n := len(x)
	half := n / 2
	if len(s.scratch) != n {
		s.scratch = make(dynamo.State, n)
	}

	result := make(dynamo.State, n)
	dx := dyn.Derive(x, t)
	for i := 0; i < half; i++ {
		result[half+i] = x[half+i] + dx[half+i]*dt
		s.scratch[i] = x[i]
		s.scratch[half+i] = result[half+i]
	}

	// position derivative evaluated with the new velocities
	dxNew := dyn.Derive(s.scratch, t+dt)
	for i := 0; i < half; i++ {
		result[i] = x[i] + dxNew[i]*dt
	}

	return result
}
