package analysis

import (
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// ApparentWeight is gravity minus Archimedes thrust.
func ApparentWeight(p dynamo.Params) float64 {
	return p.Mass*p.Gravity - p.AirDensity*p.Volume*p.Gravity
}

// TerminalVelocity returns the downward speed at which drag cancels the
// apparent weight. ok is false without drag or when the body is buoyant.
func TerminalVelocity(p dynamo.Params) (v float64, ok bool) {
	w := ApparentWeight(p)
	if p.FrictionCoefficient <= 0 || w <= 0 {
		return 0, false
	}
	if p.FrictionModel == dynamo.Linear {
		return w / p.FrictionCoefficient, true
	}
	return math.Sqrt(w / p.FrictionCoefficient), true
}

// DragFreeImpact solves h = v0·t + a·t²/2 for the constant acceleration
// a = (apparent weight)/m, ignoring drag. ok is false if the body never
// reaches the ground.
func DragFreeImpact(p dynamo.Params) (t, v float64, ok bool) {
	a := ApparentWeight(p) / p.Mass
	h, v0 := p.SimulationHeight, p.InitialVelocity

	if a == 0 {
		if v0 <= 0 {
			return 0, 0, false
		}
		return h / v0, v0, true
	}

	disc := v0*v0 + 2*a*h
	if disc < 0 {
		return 0, 0, false
	}
	// for a < 0 this is the earlier of the two crossings
	t = (-v0 + math.Sqrt(disc)) / a
	if t < 0 {
		return 0, 0, false
	}
	return t, v0 + a*t, true
}

// LinearDragVelocity is the exact velocity at time t under linear drag:
// v(t) = vT + (v0 - vT)·exp(-k·t/m).
func LinearDragVelocity(p dynamo.Params, t float64) float64 {
	if p.FrictionCoefficient == 0 {
		return p.InitialVelocity + ApparentWeight(p)/p.Mass*t
	}
	vt := ApparentWeight(p) / p.FrictionCoefficient
	return vt + (p.InitialVelocity-vt)*math.Exp(-p.FrictionCoefficient*t/p.Mass)
}
