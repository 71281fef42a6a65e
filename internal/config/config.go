package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
)

const (
	DefaultDt          = 0.001
	DefaultFrameRate   = 30
	DefaultMaxDuration = 600.0
	DefaultMaxFrame    = 0.25
	DefaultIntegrator  = "semi-implicit"
	DefaultLogLevel    = "info"
	DefaultSSHAddress  = "localhost:23234"
	DefaultHostKeyPath = ".ssh/freefall_ed25519"
)

// Config is the on-disk configuration. Params holds overrides applied on
// top of the preset (or the defaults when no preset is named).
type Config struct {
	Preset      string       `yaml:"preset,omitempty"`
	Params      params.Patch `yaml:"params"`
	Integrator  string       `yaml:"integrator"`
	Dt          float64      `yaml:"dt"`
	FrameRate   int          `yaml:"frame_rate"`
	MaxFrame    float64      `yaml:"max_frame"`
	MaxDuration float64      `yaml:"max_duration"`
	LogLevel    string       `yaml:"log_level"`
	SSH         SSHConfig    `yaml:"ssh"`
}

type SSHConfig struct {
	Address     string  `yaml:"address"`
	HostKeyPath string  `yaml:"host_key_path"`
	IdleTimeout float64 `yaml:"idle_timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		Integrator:  DefaultIntegrator,
		Dt:          DefaultDt,
		FrameRate:   DefaultFrameRate,
		MaxFrame:    DefaultMaxFrame,
		MaxDuration: DefaultMaxDuration,
		LogLevel:    DefaultLogLevel,
		SSH: SSHConfig{
			Address:     DefaultSSHAddress,
			HostKeyPath: DefaultHostKeyPath,
			IdleTimeout: 600,
		},
	}
}

// Template is DefaultConfig with every physical parameter spelled out, for
// writing a starter file.
func Template() *Config {
	cfg := DefaultConfig()
	cfg.Params = params.PatchFrom(dynamo.DefaultParams())
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the run settings. Physical parameters are checked by
// Resolve.
func (c *Config) Validate() error {
	var errs []error
	if !(c.Dt > 0) {
		errs = append(errs, fmt.Errorf("%w: dt=%v", dynamo.ErrInvalidStep, c.Dt))
	}
	if c.FrameRate <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate must be positive, got %d", c.FrameRate))
	}
	if c.MaxDuration < 0 {
		errs = append(errs, fmt.Errorf("max_duration must not be negative, got %v", c.MaxDuration))
	}
	if c.MaxFrame < 0 {
		errs = append(errs, fmt.Errorf("max_frame must not be negative, got %v", c.MaxFrame))
	}
	return errors.Join(errs...)
}

// Resolve builds the physical parameters: defaults, then the named preset,
// then the config's own overrides.
func (c *Config) Resolve() (dynamo.Params, error) {
	store := params.NewDefault()

	if c.Preset != "" {
		preset, err := GetPreset(c.Preset)
		if err != nil {
			return dynamo.Params{}, err
		}
		if err := store.Apply(preset.Params); err != nil {
			return dynamo.Params{}, fmt.Errorf("preset %s: %w", c.Preset, err)
		}
	}

	if err := store.Apply(c.Params); err != nil {
		return dynamo.Params{}, err
	}
	return store.Params(), nil
}
