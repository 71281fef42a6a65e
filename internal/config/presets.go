package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/freefall/internal/dynamo"
	"github.com/san-kum/freefall/internal/params"
)

type Preset struct {
	Description string       `yaml:"description"`
	Params      params.Patch `yaml:"params"`
}

var Presets = map[string]Preset{
	"default": {
		Description: "1 kg ball, quadratic drag, 100 m",
		Params:      params.PatchFrom(dynamo.DefaultParams()),
	},
	"vacuum": {
		Description: "no air: gravity only",
		Params: params.Patch{
			FrictionCoefficient: params.F(0),
			AirDensity:          params.F(0),
		},
	},
	"feather": {
		Description: "light body dominated by drag",
		Params: params.Patch{
			Mass:                params.F(0.005),
			FrictionCoefficient: params.F(0.01),
			Volume:              params.F(0.0001),
			SimulationHeight:    params.F(10),
		},
	},
	"bowling_ball": {
		Description: "heavy sphere, drag barely matters",
		Params: params.Patch{
			Mass:                params.F(7),
			FrictionCoefficient: params.F(0.02),
			Volume:              params.F(0.0055),
		},
	},
	"skydiver": {
		Description: "80 kg free fall from 4000 m",
		Params: params.Patch{
			Mass:                params.F(80),
			FrictionCoefficient: params.F(0.25),
			Volume:              params.F(0.07),
			SimulationHeight:    params.F(4000),
		},
	},
	"parachute": {
		Description: "open canopy: low terminal velocity",
		Params: params.Patch{
			Mass:                params.F(80),
			FrictionCoefficient: params.F(15),
			Volume:              params.F(0.07),
			SimulationHeight:    params.F(1000),
		},
	},
	"linear_drag": {
		Description: "slow body in a viscous regime",
		Params: params.Patch{
			FrictionModel:       params.Model(dynamo.Linear),
			FrictionCoefficient: params.F(0.5),
		},
	},
	"balloon": {
		Description: "lighter than the air it displaces: never lands",
		Params: params.Patch{
			Mass:                params.F(0.01),
			FrictionCoefficient: params.F(0.05),
			Volume:              params.F(0.014),
			SimulationHeight:    params.F(2),
		},
	},
}

func GetPreset(name string) (Preset, error) {
	preset, ok := Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", dynamo.ErrUnknownPreset, name)
	}
	return preset, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
