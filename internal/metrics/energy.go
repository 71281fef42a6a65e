package metrics

import (
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// EnergyDissipated is the mechanical energy lost between the first and the
// latest observed point, i.e. the work done against drag and buoyancy.
type EnergyDissipated struct {
	name    string
	initial float64
	current float64
	samples int
}

func NewEnergyDissipated() *EnergyDissipated {
	return &EnergyDissipated{name: "energy_dissipated"}
}

func (e *EnergyDissipated) Name() string { return e.name }

func (e *EnergyDissipated) Observe(p dynamo.HistoryPoint) {
	if e.samples == 0 {
		e.initial = p.TotalEnergy
	}
	e.current = p.TotalEnergy
	e.samples++
}

func (e *EnergyDissipated) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.initial - e.current
}

func (e *EnergyDissipated) Reset() {
	e.initial = 0
	e.current = 0
	e.samples = 0
}

// EnergyDrift is the largest relative change of total energy seen so far.
// Without drag or buoyancy it measures integrator error.
type EnergyDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift() *EnergyDrift {
	return &EnergyDrift{name: "energy_drift"}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(p dynamo.HistoryPoint) {
	if e.samples == 0 {
		e.initial = p.TotalEnergy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(p.TotalEnergy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 {
	return e.maxDrift
}

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
