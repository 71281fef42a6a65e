package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/freefall/internal/config"
	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
)

func parse(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	configFile, presetName = "", ""
	cmd, rest, err := newRootCmd().Find(args)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if err := cmd.ParseFlags(rest); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return cmd
}

func TestBuildConfigDefaults(t *testing.T) {
	cfg, err := buildConfig(parse(t, "run"))
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	p, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if p != dynamo.DefaultParams() {
		t.Errorf("expected default params, got %+v", p)
	}
}

func TestBuildConfigPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freefall.yaml")
	file := config.DefaultConfig()
	file.Preset = "skydiver"
	file.Params = params.Patch{Mass: params.F(90), Volume: params.F(0.08)}
	if err := config.Save(path, file); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg, err := buildConfig(parse(t, "run", "--config", path, "--mass", "70", "--model", "kv", "--dt", "0.01"))
	if err != nil {
		t.Fatalf("buildConfig failed: %v", err)
	}
	p, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if p.Mass != 70 {
		t.Errorf("flag must win over file, got mass %f", p.Mass)
	}
	if p.Volume != 0.08 {
		t.Errorf("file must win over preset, got volume %f", p.Volume)
	}
	if p.SimulationHeight != 4000 {
		t.Errorf("preset must win over defaults, got height %f", p.SimulationHeight)
	}
	if p.FrictionModel != dynamo.Linear {
		t.Errorf("expected linear model, got %s", p.FrictionModel)
	}
	if cfg.Dt != 0.01 {
		t.Errorf("expected dt 0.01, got %f", cfg.Dt)
	}
}

func TestBuildConfigErrors(t *testing.T) {
	if _, err := buildConfig(parse(t, "run", "--model", "cubic")); err == nil {
		t.Error("expected error for unknown drag law")
	}
	if _, err := buildConfig(parse(t, "run", "--dt", "0")); err == nil {
		t.Error("expected error for zero dt")
	}
	if _, err := buildConfig(parse(t, "run", "--config", filepath.Join(t.TempDir(), "missing.yaml"))); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "freefall.yaml")
	root := newRootCmd()
	root.SetArgs([]string{"config", "init", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init failed: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Params.Mass == nil || *cfg.Params.Mass != dynamo.DefaultMass {
		t.Error("expected template to spell out the mass")
	}

	root = newRootCmd()
	root.SetArgs([]string{"config", "init", path})
	if err := root.Execute(); err == nil {
		t.Error("expected error when the file exists")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("existing file must be kept: %v", err)
	}
}

func TestParseGrid(t *testing.T) {
	names, ranges, err := parseGrid(map[string]string{
		"mass":                 "1:3:3",
		"friction_coefficient": "0:1:2",
	})
	if err != nil {
		t.Fatalf("parseGrid failed: %v", err)
	}
	if len(names) != 2 || names[0] != "friction_coefficient" || names[1] != "mass" {
		t.Fatalf("expected sorted names, got %v", names)
	}
	if len(ranges[1]) != 3 || ranges[1][1] != 2 {
		t.Errorf("unexpected mass range %v", ranges[1])
	}

	for _, bad := range []string{"1:2", "a:2:3", "1:b:3", "1:2:c"} {
		if _, _, err := parseGrid(map[string]string{"mass": bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWidthFlagsAreIndependent(t *testing.T) {
	parse(t, "run")
	if plotWidth != 80 {
		t.Errorf("expected run width 80, got %d", plotWidth)
	}
	if phaseWidth != 60 {
		t.Errorf("expected phase width 60, got %d", phaseWidth)
	}

	parse(t, "phase", "--width", "40")
	if phaseWidth != 40 || plotWidth != 80 {
		t.Errorf("expected widths 80/40, got %d/%d", plotWidth, phaseWidth)
	}
}
