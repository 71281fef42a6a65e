package metrics

import (
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// MeanDrag is the average magnitude of the friction force over the run.
type MeanDrag struct {
	name    string
	sum     float64
	samples int
}

func NewMeanDrag() *MeanDrag {
	return &MeanDrag{
		name: "mean_drag",
	}
}

func (m *MeanDrag) Name() string {
	return m.name
}

func (m *MeanDrag) Observe(p dynamo.HistoryPoint) {
	m.sum += math.Abs(p.FrictionForce)
	m.samples++
}

func (m *MeanDrag) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanDrag) Reset() {
	m.sum = 0
	m.samples = 0
}
