// Package params validates and merges physical configuration updates.
//
// A [Store] always holds a valid [dynamo.Params]. Updates arrive as a
// [Patch] of optional fields; every field is checked on its own, valid
// fields are applied and invalid ones are rejected while the previous value
// is kept.
package params

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// Patch is a partial update. Nil fields are left untouched.
type Patch struct {
	Mass                *float64              `yaml:"mass,omitempty" json:"mass,omitempty"`
	FrictionCoefficient *float64              `yaml:"friction_coefficient,omitempty" json:"friction_coefficient,omitempty"`
	Volume              *float64              `yaml:"volume,omitempty" json:"volume,omitempty"`
	AirDensity          *float64              `yaml:"air_density,omitempty" json:"air_density,omitempty"`
	SimulationHeight    *float64              `yaml:"simulation_height,omitempty" json:"simulation_height,omitempty"`
	FrictionModel       *dynamo.FrictionModel `yaml:"friction_model,omitempty" json:"friction_model,omitempty"`
	Gravity             *float64              `yaml:"gravity,omitempty" json:"gravity,omitempty"`
	InitialVelocity     *float64              `yaml:"initial_velocity,omitempty" json:"initial_velocity,omitempty"`
}

// F returns a pointer to v, for building patches inline.
func F(v float64) *float64 { return &v }

// Model returns a pointer to m, for building patches inline.
func Model(m dynamo.FrictionModel) *dynamo.FrictionModel { return &m }

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p.Mass == nil && p.FrictionCoefficient == nil && p.Volume == nil &&
		p.AirDensity == nil && p.SimulationHeight == nil && p.FrictionModel == nil &&
		p.Gravity == nil && p.InitialVelocity == nil
}

// Merge overlays other on p; fields set in other win.
func (p Patch) Merge(other Patch) Patch {
	if other.Mass != nil {
		p.Mass = other.Mass
	}
	if other.FrictionCoefficient != nil {
		p.FrictionCoefficient = other.FrictionCoefficient
	}
	if other.Volume != nil {
		p.Volume = other.Volume
	}
	if other.AirDensity != nil {
		p.AirDensity = other.AirDensity
	}
	if other.SimulationHeight != nil {
		p.SimulationHeight = other.SimulationHeight
	}
	if other.FrictionModel != nil {
		p.FrictionModel = other.FrictionModel
	}
	if other.Gravity != nil {
		p.Gravity = other.Gravity
	}
	if other.InitialVelocity != nil {
		p.InitialVelocity = other.InitialVelocity
	}
	return p
}

// FieldError describes one rejected field.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *FieldError) Unwrap() error { return dynamo.ErrInvalidParameter }

type domain int

const (
	positive domain = iota
	nonNegative
	finite
)

func check(field string, v float64, d domain) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &FieldError{Field: field, Value: v, Reason: "must be finite"}
	}
	switch d {
	case positive:
		if v <= 0 {
			return &FieldError{Field: field, Value: v, Reason: "must be positive"}
		}
	case nonNegative:
		if v < 0 {
			return &FieldError{Field: field, Value: v, Reason: "must not be negative"}
		}
	}
	return nil
}

// Validate checks a complete parameter set and reports every violation.
func Validate(p dynamo.Params) error {
	errs := []error{
		check("mass", p.Mass, positive),
		check("friction_coefficient", p.FrictionCoefficient, nonNegative),
		check("volume", p.Volume, nonNegative),
		check("air_density", p.AirDensity, nonNegative),
		check("simulation_height", p.SimulationHeight, positive),
		check("gravity", p.Gravity, positive),
		check("initial_velocity", p.InitialVelocity, finite),
	}
	if !p.FrictionModel.Valid() {
		errs = append(errs, &FieldError{Field: "friction_model", Value: p.FrictionModel, Reason: "must be linear or quadratic"})
	}
	return errors.Join(errs...)
}

// Store holds the current valid parameter set.
type Store struct {
	current dynamo.Params
}

// New returns a store seeded with initial, or an error if initial is invalid.
func New(initial dynamo.Params) (*Store, error) {
	if err := Validate(initial); err != nil {
		return nil, err
	}
	return &Store{current: initial}, nil
}

// NewDefault returns a store holding dynamo.DefaultParams.
func NewDefault() *Store {
	return &Store{current: dynamo.DefaultParams()}
}

func (s *Store) Params() dynamo.Params { return s.current }

// Apply merges patch into the current parameters. Each invalid field is
// rejected and reported; the rest are applied. The stored value is
// replaced, not mutated, so previously returned copies are unaffected.
func (s *Store) Apply(patch Patch) error {
	next := s.current
	var errs []error

	set := func(field string, src *float64, dst *float64, d domain) {
		if src == nil {
			return
		}
		if err := check(field, *src, d); err != nil {
			errs = append(errs, err)
			return
		}
		*dst = *src
	}

	set("mass", patch.Mass, &next.Mass, positive)
	set("friction_coefficient", patch.FrictionCoefficient, &next.FrictionCoefficient, nonNegative)
	set("volume", patch.Volume, &next.Volume, nonNegative)
	set("air_density", patch.AirDensity, &next.AirDensity, nonNegative)
	set("simulation_height", patch.SimulationHeight, &next.SimulationHeight, positive)
	set("gravity", patch.Gravity, &next.Gravity, positive)
	set("initial_velocity", patch.InitialVelocity, &next.InitialVelocity, finite)

	if patch.FrictionModel != nil {
		if patch.FrictionModel.Valid() {
			next.FrictionModel = *patch.FrictionModel
		} else {
			errs = append(errs, &FieldError{Field: "friction_model", Value: *patch.FrictionModel, Reason: "must be linear or quadratic"})
		}
	}

	s.current = next
	return errors.Join(errs...)
}

// PatchFrom builds a patch that sets every field of p.
func PatchFrom(p dynamo.Params) Patch {
	return Patch{
		Mass:                F(p.Mass),
		FrictionCoefficient: F(p.FrictionCoefficient),
		Volume:              F(p.Volume),
		AirDensity:          F(p.AirDensity),
		SimulationHeight:    F(p.SimulationHeight),
		FrictionModel:       Model(p.FrictionModel),
		Gravity:             F(p.Gravity),
		InitialVelocity:     F(p.InitialVelocity),
	}
}
