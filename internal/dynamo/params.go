package dynamo

import (
	"fmt"
	"strings"
)

// FrictionModel selects the air drag force law.
type FrictionModel string

const (
	// Linear drag: F = -k·v.
	Linear FrictionModel = "linear"
	// Quadratic drag: F = -k·v·|v|.
	Quadratic FrictionModel = "quadratic"
)

// ParseFrictionModel accepts the canonical names and the short kv/kv2 forms.
func ParseFrictionModel(s string) (FrictionModel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "kv":
		return Linear, nil
	case "quadratic", "kv2":
		return Quadratic, nil
	}
	return "", fmt.Errorf("%w: unknown friction model %q", ErrInvalidParameter, s)
}

func (m FrictionModel) Valid() bool {
	return m == Linear || m == Quadratic
}

func (m FrictionModel) String() string { return string(m) }

func (m FrictionModel) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

func (m *FrictionModel) UnmarshalText(b []byte) error {
	parsed, err := ParseFrictionModel(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Params is the physical configuration of a fall. Values are replaced
// wholesale, never mutated in place by the engine.
type Params struct {
	Mass                float64       `yaml:"mass" json:"mass"`
	FrictionCoefficient float64       `yaml:"friction_coefficient" json:"friction_coefficient"`
	Volume              float64       `yaml:"volume" json:"volume"`
	AirDensity          float64       `yaml:"air_density" json:"air_density"`
	SimulationHeight    float64       `yaml:"simulation_height" json:"simulation_height"`
	FrictionModel       FrictionModel `yaml:"friction_model" json:"friction_model"`
	Gravity             float64       `yaml:"gravity" json:"gravity"`
	InitialVelocity     float64       `yaml:"initial_velocity" json:"initial_velocity"`
}

const (
	DefaultMass                = 1.0
	DefaultFrictionCoefficient = 0.1
	DefaultVolume              = 0.001
	DefaultAirDensity          = 1.225
	DefaultSimulationHeight    = 100.0
	DefaultGravity             = 9.81
)

func DefaultParams() Params {
	return Params{
		Mass:                DefaultMass,
		FrictionCoefficient: DefaultFrictionCoefficient,
		Volume:              DefaultVolume,
		AirDensity:          DefaultAirDensity,
		SimulationHeight:    DefaultSimulationHeight,
		FrictionModel:       Quadratic,
		Gravity:             DefaultGravity,
	}
}
