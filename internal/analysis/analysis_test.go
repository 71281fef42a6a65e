package analysis

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/integrators"
)

func vacuum() dynamo.Params {
	return dynamo.Params{
		Mass:             1,
		SimulationHeight: 100,
		FrictionModel:    dynamo.Quadratic,
		Gravity:          9.8,
	}
}

func TestTerminalVelocity(t *testing.T) {
	tests := []struct {
		name  string
		model dynamo.FrictionModel
		k     float64
		want  float64
		ok    bool
	}{
		{"linear", dynamo.Linear, 0.5, 19.6, true},
		{"quadratic", dynamo.Quadratic, 0.2, 7, true},
		{"no drag", dynamo.Quadratic, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := vacuum()
			p.FrictionModel = tt.model
			p.FrictionCoefficient = tt.k
			v, ok := TerminalVelocity(p)
			if ok != tt.ok || math.Abs(v-tt.want) > 1e-9 {
				t.Errorf("expected (%f, %v), got (%f, %v)", tt.want, tt.ok, v, ok)
			}
		})
	}
}

func TestTerminalVelocityBuoyant(t *testing.T) {
	p := vacuum()
	p.FrictionCoefficient = 0.1
	p.AirDensity = 1.225
	p.Volume = 1
	if _, ok := TerminalVelocity(p); ok {
		t.Error("buoyant body has no downward terminal velocity")
	}
}

func TestDragFreeImpact(t *testing.T) {
	tImpact, vImpact, ok := DragFreeImpact(vacuum())
	if !ok {
		t.Fatal("expected impact")
	}
	if math.Abs(tImpact-4.5175) > 1e-4 {
		t.Errorf("expected t~4.5175, got %f", tImpact)
	}
	if math.Abs(vImpact-44.2719) > 1e-3 {
		t.Errorf("expected v~44.2719, got %f", vImpact)
	}

	up := vacuum()
	up.InitialVelocity = -10
	tUp, _, _ := DragFreeImpact(up)
	if tUp <= tImpact {
		t.Errorf("throwing upward should land later: %f <= %f", tUp, tImpact)
	}

	floating := vacuum()
	floating.AirDensity = 1.225
	floating.Volume = 1
	if _, _, ok := DragFreeImpact(floating); ok {
		t.Error("buoyant body at rest should never land")
	}
}

func TestLinearDragVelocity(t *testing.T) {
	p := vacuum()
	p.FrictionModel = dynamo.Linear
	p.FrictionCoefficient = 0.5

	if v := LinearDragVelocity(p, 0); v != 0 {
		t.Errorf("expected v(0)=0, got %f", v)
	}
	vt, _ := TerminalVelocity(p)
	if v := LinearDragVelocity(p, 1000); math.Abs(v-vt) > 1e-6 {
		t.Errorf("expected convergence to %f, got %f", vt, v)
	}
}

func history(times, positions, velocities []float64) []dynamo.HistoryPoint {
	h := make([]dynamo.HistoryPoint, len(times))
	for i := range times {
		h[i] = dynamo.HistoryPoint{Time: times[i], Position: positions[i], Velocity: velocities[i]}
	}
	return h
}

func TestInterpolate(t *testing.T) {
	h := history([]float64{0, 1, 2}, []float64{10, 8, 4}, []float64{0, 2, 4})

	p, ok := Interpolate(h, 1.5)
	if !ok {
		t.Fatal("expected point inside span")
	}
	if p.Position != 6 || p.Velocity != 3 {
		t.Errorf("expected (6, 3), got (%f, %f)", p.Position, p.Velocity)
	}

	if p, _ := Interpolate(h, 2); p.Position != 4 {
		t.Errorf("expected exact endpoint, got %f", p.Position)
	}
	if _, ok := Interpolate(h, 2.5); ok {
		t.Error("expected out of span")
	}
}

func TestCompare(t *testing.T) {
	run := history([]float64{1, 2, 3}, []float64{9, 5, 0}, []float64{2, 4, 6})
	base := history([]float64{1, 2, 3, 4}, []float64{9.5, 7, 3, 0}, []float64{1, 2, 3, 4})

	c := Compare(run, base)
	if c.ImpactTime != [2]float64{3, 4} {
		t.Errorf("unexpected impact times %v", c.ImpactTime)
	}
	if c.ImpactVelocity != [2]float64{6, 4} {
		t.Errorf("unexpected impact velocities %v", c.ImpactVelocity)
	}
	if c.MaxPositionGap != 3 {
		t.Errorf("expected max height gap 3, got %f", c.MaxPositionGap)
	}
	if c.MaxVelocityGap != 3 {
		t.Errorf("expected max speed gap 3, got %f", c.MaxVelocityGap)
	}
	if !strings.Contains(c.String(), "impact time") {
		t.Error("summary missing impact time row")
	}
}

func TestCompareEmptyBaseline(t *testing.T) {
	run := history([]float64{1}, []float64{0}, []float64{5})
	c := Compare(run, nil)
	if c.Landed[1] || c.MaxPositionGap != 0 {
		t.Errorf("unexpected comparison against nothing: %+v", c)
	}
}

func TestPhasePortrait(t *testing.T) {
	h := history([]float64{1, 2, 3}, []float64{9, 5, 0}, []float64{2, 4, 6})
	portrait := PhasePortraitFromHistory(h)
	if len(portrait.Points) != 3 || portrait.Points[2].X != 6 || portrait.Points[2].Y != 0 {
		t.Errorf("unexpected portrait %+v", portrait.Points)
	}

	ascii := PhasePortraitToASCII(portrait, 20, 10)
	lines := strings.Split(strings.TrimRight(ascii, "\n"), "\n")
	if len(lines) != 10 {
		t.Errorf("expected 10 rows, got %d", len(lines))
	}
	if !strings.ContainsRune(ascii, '•') {
		t.Error("expected plotted points")
	}

	if PhasePortraitToASCII(nil, 10, 10) != "" {
		t.Error("expected empty output for nil portrait")
	}
	if merged := portrait.Overlay(portrait); len(merged.Points) != 6 {
		t.Errorf("expected 6 overlay points, got %d", len(merged.Points))
	}
}

func TestImpactSweep(t *testing.T) {
	p := vacuum()
	p.FrictionCoefficient = 0.05
	points, err := ImpactSweep(p, integrators.NewSemiImplicitEuler(), SweepConfig{
		Param: "mass",
		Min:   0.5,
		Max:   5,
		Steps: 4,
		Dt:    0.01,
	})
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("expected 4 points, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if !points[i].Landed {
			t.Errorf("run %d did not land", i)
		}
		// heavier bodies are slowed less by the same drag
		if points[i].ImpactVelocity <= points[i-1].ImpactVelocity {
			t.Errorf("impact speed should grow with mass: %v", points)
		}
	}
}

func TestImpactSweepErrors(t *testing.T) {
	integ := integrators.NewSemiImplicitEuler()

	_, err := ImpactSweep(vacuum(), integ, SweepConfig{Param: "length", Min: 1, Max: 2, Dt: 0.01})
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for unknown param, got %v", err)
	}

	_, err = ImpactSweep(vacuum(), integ, SweepConfig{Param: "mass", Min: -1, Max: 1, Dt: 0.01})
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter for negative mass, got %v", err)
	}

	_, err = ImpactSweep(vacuum(), integ, SweepConfig{Param: "mass", Min: 1, Max: 2})
	if !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
}
