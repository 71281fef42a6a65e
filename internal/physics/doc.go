// Package physics provides the force model of a body falling through air.
//
// Three forces act along the vertical axis:
//
//   - gravity m·g, pulling down
//   - Archimedes thrust ρ·V·g, pushing up
//   - air drag opposing motion, -k·v (linear) or -k·v·|v| (quadratic)
//
// [ComputeForces] and [Energies] are pure functions of the velocity,
// position and [dynamo.Params]. [FallingBody] wraps the same law as a
// [dynamo.System] so any [dynamo.Integrator] can advance it, and implements
// [dynamo.Hamiltonian] and [dynamo.Configurable].
//
//	f := physics.ComputeForces(v, params)
//	a := f.Acceleration
package physics
