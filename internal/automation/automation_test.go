package automation

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
	"github.com/san-kum/freefall/internal/storage"
)

const scenarioYAML = `
name: drag laws
description: same body under both drag laws
steps:
  - name: quadratic
    params:
      friction_model: kv2
  - name: linear
    params:
      friction_model: kv
    save_as: linear
  - preset: vacuum
    dt: 0.0078125
`

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func testBase() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Dt = 1.0 / 64
	cfg.Params = params.Patch{SimulationHeight: params.F(20)}
	return cfg
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if sc.Name != "drag laws" || len(sc.Steps) != 3 {
		t.Fatalf("unexpected scenario %+v", sc)
	}
	if m := sc.Steps[1].Params.FrictionModel; m == nil || *m != dynamo.Linear {
		t.Errorf("expected kv alias to parse as linear, got %v", m)
	}

	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
	if _, err := LoadScenario(writeScenario(t, "steps: [")); err == nil {
		t.Error("expected parse error")
	}
}

func TestStepConfig(t *testing.T) {
	base := testBase()
	step := ScenarioStep{Preset: "skydiver", Dt: 0.01, Params: params.Patch{Mass: params.F(70)}}
	cfg := step.Config(base)

	if cfg.Preset != "skydiver" || cfg.Dt != 0.01 {
		t.Errorf("expected step overrides, got preset=%s dt=%f", cfg.Preset, cfg.Dt)
	}
	if cfg.Integrator != base.Integrator {
		t.Errorf("expected inherited integrator, got %s", cfg.Integrator)
	}
	if cfg.Params.SimulationHeight == nil || *cfg.Params.SimulationHeight != 20 {
		t.Error("expected base override to carry over")
	}
	if base.Preset != "" || base.Params.Mass != nil {
		t.Error("base config must not be modified")
	}
}

func TestRunScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, scenarioYAML))
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	results, err := RunScenario(context.Background(), sc, testBase(), store, nil)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Result.Terminated {
			t.Errorf("%s: expected the body to land", r.Name)
		}
	}
	if results[2].Name != "step3" {
		t.Errorf("expected generated name step3, got %s", results[2].Name)
	}
	if results[0].Result.Final.Velocity >= results[2].Result.Final.Velocity {
		t.Error("drag must slow the body relative to vacuum")
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != results[1].RunID {
		t.Errorf("expected only the linear step archived, got %d runs", len(runs))
	}
}

func TestRunScenarioStopsOnError(t *testing.T) {
	sc := &Scenario{Steps: []ScenarioStep{
		{Name: "ok"},
		{Name: "bad", Preset: "nope"},
		{Name: "never"},
	}}
	results, err := RunScenario(context.Background(), sc, testBase(), nil, nil)
	if !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected the first step only, got %d", len(results))
	}
}

func TestRunMonteCarloReproducible(t *testing.T) {
	cfg := MonteCarloConfig{
		Spread:    map[string]float64{"mass": 0.2, "friction_coefficient": 0.5},
		NumTrials: 5,
		Seed:      42,
	}
	a, err := RunMonteCarlo(context.Background(), testBase(), cfg)
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	b, err := RunMonteCarlo(context.Background(), testBase(), cfg)
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	if len(a) != 5 {
		t.Fatalf("expected 5 trials, got %d", len(a))
	}
	for i := range a {
		if a[i].Params != b[i].Params || a[i].ImpactVelocity != b[i].ImpactVelocity {
			t.Errorf("trial %d differs between runs with the same seed", i)
		}
		if m := a[i].Params.Mass; m < 0.8 || m > 1.2 {
			t.Errorf("trial %d: mass %f outside ±20%%", i, m)
		}
	}
}

func TestRunMonteCarloErrors(t *testing.T) {
	if _, err := RunMonteCarlo(context.Background(), testBase(), MonteCarloConfig{}); err == nil {
		t.Error("expected error for zero trials")
	}
	_, err := RunMonteCarlo(context.Background(), testBase(), MonteCarloConfig{
		Spread:    map[string]float64{"length": 0.1},
		NumTrials: 1,
	})
	if !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	base := testBase()
	base.Integrator = "leapfrog"
	results, err := RunMonteCarlo(context.Background(), base, MonteCarloConfig{
		Spread:    map[string]float64{"mass": 0.1},
		NumTrials: 3,
		Seed:      1,
	})
	if !errors.Is(err, dynamo.ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no trials recorded, got %d", len(results))
	}
}

func TestRunMonteCarloMarksInvalidDraws(t *testing.T) {
	base := testBase()
	base.Params.Mass = params.F(0.01)
	// a spread above 100% can draw a negative mass
	results, err := RunMonteCarlo(context.Background(), base, MonteCarloConfig{
		Spread:    map[string]float64{"mass": 5},
		NumTrials: 40,
		Seed:      7,
	})
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	if len(results) != 40 {
		t.Fatalf("expected 40 trials, got %d", len(results))
	}
	if s := Summarize(results); s.Invalid == 0 {
		t.Error("expected some trials with a non-positive mass to be invalid")
	}
	for _, r := range results {
		if r.Invalid != (r.Params.Mass <= 0) {
			t.Errorf("trial %d: mass %f marked invalid=%v", r.TrialID, r.Params.Mass, r.Invalid)
		}
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]MonteCarloResult{
		{ImpactVelocity: 10, Landed: true},
		{ImpactVelocity: 20, Landed: true},
		{ImpactVelocity: 99, Landed: false},
		{Invalid: true},
	})
	if s.Landed != 2 || s.Invalid != 1 {
		t.Errorf("expected 2 landed and 1 invalid, got %d and %d", s.Landed, s.Invalid)
	}
	if s.Mean != 15 || s.Min != 10 || s.Max != 20 {
		t.Errorf("unexpected stats %+v", s)
	}
	if math.Abs(s.StdDev-5) > 1e-12 {
		t.Errorf("expected stddev 5, got %f", s.StdDev)
	}
}
