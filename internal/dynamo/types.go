package dynamo

import (
	"math"
)

type State []float64

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// System is an ODE right-hand side: dX/dt = f(X, t).
// State layout is [positions..., velocities...].
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// Metric observes recorded history points during a run.
type Metric interface {
	Name() string
	Observe(p HistoryPoint)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(p HistoryPoint)
}
