package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/freefall/internal/dynamo"
)

// Comparison summarises a run against a saved baseline.
type Comparison struct {
	ImpactTime     [2]float64
	ImpactVelocity [2]float64
	Landed         [2]bool
	PeakSpeed      [2]float64
	// MaxPositionGap is the largest height difference over the common
	// time span, with the baseline interpolated at the run's times.
	MaxPositionGap float64
	MaxVelocityGap float64
}

func summarize(h []dynamo.HistoryPoint) (impactT, impactV, peak float64, landed bool) {
	for _, p := range h {
		peak = math.Max(peak, math.Abs(p.Velocity))
		if !landed && p.Position <= 0 {
			landed = true
			impactT, impactV = p.Time, p.Velocity
		}
	}
	if !landed && len(h) > 0 {
		last := h[len(h)-1]
		impactT, impactV = last.Time, last.Velocity
	}
	return impactT, impactV, peak, landed
}

// Compare measures run against baseline. Either may be empty.
func Compare(run, baseline []dynamo.HistoryPoint) Comparison {
	var c Comparison
	c.ImpactTime[0], c.ImpactVelocity[0], c.PeakSpeed[0], c.Landed[0] = summarize(run)
	c.ImpactTime[1], c.ImpactVelocity[1], c.PeakSpeed[1], c.Landed[1] = summarize(baseline)

	if len(baseline) == 0 {
		return c
	}
	for _, p := range run {
		b, ok := Interpolate(baseline, p.Time)
		if !ok {
			break
		}
		c.MaxPositionGap = math.Max(c.MaxPositionGap, math.Abs(p.Position-b.Position))
		c.MaxVelocityGap = math.Max(c.MaxVelocityGap, math.Abs(p.Velocity-b.Velocity))
	}
	return c
}

// Interpolate returns the state at time t by linear interpolation between
// the neighbouring points. ok is false outside the recorded span.
func Interpolate(h []dynamo.HistoryPoint, t float64) (dynamo.HistoryPoint, bool) {
	n := len(h)
	if n == 0 || t < h[0].Time || t > h[n-1].Time {
		return dynamo.HistoryPoint{}, false
	}

	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if h[mid].Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	a, b := h[lo], h[hi]
	if b.Time == a.Time || t == a.Time {
		return a, true
	}

	f := (t - a.Time) / (b.Time - a.Time)
	lerp := func(x, y float64) float64 { return x + (y-x)*f }
	return dynamo.HistoryPoint{
		Time:             t,
		Position:         lerp(a.Position, b.Position),
		Velocity:         lerp(a.Velocity, b.Velocity),
		Acceleration:     lerp(a.Acceleration, b.Acceleration),
		NetForce:         lerp(a.NetForce, b.NetForce),
		GravityForce:     lerp(a.GravityForce, b.GravityForce),
		FrictionForce:    lerp(a.FrictionForce, b.FrictionForce),
		ArchimedesThrust: lerp(a.ArchimedesThrust, b.ArchimedesThrust),
		KineticEnergy:    lerp(a.KineticEnergy, b.KineticEnergy),
		PotentialEnergy:  lerp(a.PotentialEnergy, b.PotentialEnergy),
		TotalEnergy:      lerp(a.TotalEnergy, b.TotalEnergy),
	}, true
}

func (c Comparison) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-18s %12s %12s %12s\n", "", "run", "baseline", "delta")
	row := func(label string, a, b float64) {
		fmt.Fprintf(&sb, "%-18s %12.4f %12.4f %12.4f\n", label, a, b, a-b)
	}
	row("impact time (s)", c.ImpactTime[0], c.ImpactTime[1])
	row("impact speed", c.ImpactVelocity[0], c.ImpactVelocity[1])
	row("peak speed", c.PeakSpeed[0], c.PeakSpeed[1])
	fmt.Fprintf(&sb, "%-18s %12.4f\n", "max height gap", c.MaxPositionGap)
	fmt.Fprintf(&sb, "%-18s %12.4f\n", "max speed gap", c.MaxVelocityGap)
	if !c.Landed[0] || !c.Landed[1] {
		fmt.Fprintf(&sb, "landed: run=%v baseline=%v\n", c.Landed[0], c.Landed[1])
	}
	return sb.String()
}
