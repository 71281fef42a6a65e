package metrics

import (
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// ImpactVelocity reports the velocity at the first grounded point, or zero
// while the body is airborne.
type ImpactVelocity struct {
	name   string
	landed bool
	value  float64
}

func NewImpactVelocity() *ImpactVelocity {
	return &ImpactVelocity{name: "impact_velocity"}
}

func (m *ImpactVelocity) Name() string { return m.name }

func (m *ImpactVelocity) Observe(p dynamo.HistoryPoint) {
	if m.landed || !p.Kinematics().Grounded() {
		return
	}
	m.landed = true
	m.value = p.Velocity
}

func (m *ImpactVelocity) Value() float64 { return m.value }

func (m *ImpactVelocity) Reset() {
	m.landed = false
	m.value = 0
}

type PeakSpeed struct {
	name string
	peak float64
}

func NewPeakSpeed() *PeakSpeed {
	return &PeakSpeed{name: "peak_speed"}
}

func (m *PeakSpeed) Name() string { return m.name }

func (m *PeakSpeed) Observe(p dynamo.HistoryPoint) {
	m.peak = math.Max(m.peak, math.Abs(p.Velocity))
}

func (m *PeakSpeed) Value() float64 { return m.peak }

func (m *PeakSpeed) Reset() { m.peak = 0 }
