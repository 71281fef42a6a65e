package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "semi-implicit" {
		t.Errorf("expected semi-implicit integrator, got %s", cfg.Integrator)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	p, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p != dynamo.DefaultParams() {
		t.Errorf("expected default params, got %+v", p)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Dt = 0
	cfg.FrameRate = -1

	err := cfg.Validate()
	if !errors.Is(err, dynamo.ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freefall.yaml")

	cfg := Template()
	cfg.Preset = "skydiver"
	cfg.Params.FrictionModel = params.Model(dynamo.Linear)
	cfg.Dt = 0.005

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Preset != "skydiver" || loaded.Dt != 0.005 {
		t.Errorf("settings lost: %+v", loaded)
	}
	if loaded.Params.FrictionModel == nil || *loaded.Params.FrictionModel != dynamo.Linear {
		t.Errorf("friction model lost: %v", loaded.Params.FrictionModel)
	}
	if *loaded.Params.Mass != dynamo.DefaultMass {
		t.Errorf("expected mass %f, got %f", dynamo.DefaultMass, *loaded.Params.Mass)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("frame_rate: 60\nparams:\n  mass: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Dt != DefaultDt || loaded.FrameRate != 60 {
		t.Errorf("unexpected settings %+v", loaded)
	}
	p, err := loaded.Resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Mass != 3 || p.SimulationHeight != dynamo.DefaultSimulationHeight {
		t.Errorf("unexpected params %+v", p)
	}
}

func TestLoadModelAlias(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alias.yaml")
	if err := os.WriteFile(path, []byte("params:\n  friction_model: kv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	p, _ := loaded.Resolve()
	if p.FrictionModel != dynamo.Linear {
		t.Errorf("expected linear model, got %s", p.FrictionModel)
	}
}

func TestResolvePrecedence(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Preset = "skydiver"
	cfg.Params.SimulationHeight = params.F(1500)

	p, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if p.Mass != 80 {
		t.Errorf("expected preset mass 80, got %f", p.Mass)
	}
	if p.SimulationHeight != 1500 {
		t.Errorf("expected override height 1500, got %f", p.SimulationHeight)
	}
	if p.Gravity != dynamo.DefaultGravity {
		t.Errorf("expected default gravity, got %f", p.Gravity)
	}
}

func TestResolveInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.Mass = params.F(-2)
	if _, err := cfg.Resolve(); !errors.Is(err, dynamo.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Preset = "anvil"
	if _, err := cfg.Resolve(); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestPresetsResolveAndRoundTrip(t *testing.T) {
	for _, name := range ListPresets() {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Preset = name
			want, err := cfg.Resolve()
			if err != nil {
				t.Fatalf("preset invalid: %v", err)
			}

			data, err := yaml.Marshal(Presets[name])
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var decoded Preset
			if err := yaml.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}

			store := params.NewDefault()
			if err := store.Apply(decoded.Params); err != nil {
				t.Fatalf("apply failed: %v", err)
			}
			if store.Params() != want {
				t.Errorf("round trip changed params: %+v != %+v", store.Params(), want)
			}
		})
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if _, err := GetPreset("nonexistent"); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Error("presets not sorted")
		}
	}
}
