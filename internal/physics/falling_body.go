package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/freefall/internal/dynamo"
)

// Forces is the force breakdown acting on the body at one velocity.
type Forces struct {
	Gravity      float64
	Friction     float64
	Archimedes   float64
	Net          float64
	Acceleration float64
}

// ComputeForces evaluates gravity, buoyancy and drag for a body moving at
// velocity v (positive downward). Params must already be validated.
func ComputeForces(v float64, p dynamo.Params) Forces {
	gravity := p.Mass * p.Gravity
	thrust := p.AirDensity * p.Volume * p.Gravity

	var friction float64
	switch p.FrictionModel {
	case dynamo.Linear:
		friction = -p.FrictionCoefficient * v
	default:
		friction = -p.FrictionCoefficient * v * math.Abs(v)
	}

	net := gravity - thrust + friction
	return Forces{
		Gravity:      gravity,
		Friction:     friction,
		Archimedes:   thrust,
		Net:          net,
		Acceleration: net / p.Mass,
	}
}

// Energies returns kinetic, potential and total mechanical energy.
func Energies(position, velocity float64, p dynamo.Params) (kinetic, potential, total float64) {
	kinetic = 0.5 * p.Mass * velocity * velocity
	potential = p.Mass * p.Gravity * position
	return kinetic, potential, kinetic + potential
}

// Observe builds the full kinematic state from time, position, velocity and
// the forces that act on it.
func Observe(t, position, velocity float64, f Forces, p dynamo.Params) dynamo.Kinematics {
	ke, pe, total := Energies(position, velocity, p)
	return dynamo.Kinematics{
		Time:             t,
		Position:         position,
		Velocity:         velocity,
		Acceleration:     f.Acceleration,
		NetForce:         f.Net,
		GravityForce:     f.Gravity,
		FrictionForce:    f.Friction,
		ArchimedesThrust: f.Archimedes,
		KineticEnergy:    ke,
		PotentialEnergy:  pe,
		TotalEnergy:      total,
	}
}

// Initial returns the state at t=0: released from SimulationHeight with
// InitialVelocity.
func Initial(p dynamo.Params) dynamo.Kinematics {
	f := ComputeForces(p.InitialVelocity, p)
	return Observe(0, p.SimulationHeight, p.InitialVelocity, f, p)
}

// FallingBody exposes the force law as a dynamo.System with state
// [position, velocity].
type FallingBody struct {
	Params dynamo.Params
}

var (
	_ dynamo.System       = (*FallingBody)(nil)
	_ dynamo.Hamiltonian  = (*FallingBody)(nil)
	_ dynamo.Configurable = (*FallingBody)(nil)
)

func NewFallingBody(p dynamo.Params) *FallingBody {
	return &FallingBody{Params: p}
}

func (b *FallingBody) StateDim() int {
	return 2
}

func (b *FallingBody) Derive(x dynamo.State, t float64) dynamo.State {
	v := x[1]
	f := ComputeForces(v, b.Params)
	// height shrinks while velocity is positive (downward)
	return dynamo.State{-v, f.Acceleration}
}

func (b *FallingBody) Energy(x dynamo.State) float64 {
	_, _, total := Energies(x[0], x[1], b.Params)
	return total
}

func (b *FallingBody) GetParams() map[string]float64 {
	return map[string]float64{
		"mass":                 b.Params.Mass,
		"friction_coefficient": b.Params.FrictionCoefficient,
		"volume":               b.Params.Volume,
		"air_density":          b.Params.AirDensity,
		"simulation_height":    b.Params.SimulationHeight,
		"gravity":              b.Params.Gravity,
		"initial_velocity":     b.Params.InitialVelocity,
	}
}

func (b *FallingBody) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		b.Params.Mass = value
	case "friction_coefficient":
		b.Params.FrictionCoefficient = value
	case "volume":
		b.Params.Volume = value
	case "air_density":
		b.Params.AirDensity = value
	case "simulation_height":
		b.Params.SimulationHeight = value
	case "gravity":
		b.Params.Gravity = value
	case "initial_velocity":
		b.Params.InitialVelocity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
