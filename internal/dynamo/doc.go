// Package dynamo provides the shared vocabulary of the falling-body engine.
//
// The package defines the physical configuration and state types and the
// generic numerical interfaces the engine is built from:
//
//   - [Params]: physical configuration (mass, drag, buoyancy, gravity, ...)
//   - [Kinematics]: full state of the body at one instant
//   - [HistoryPoint]: immutable recorded state
//   - [System]: ODE right-hand side over a [State] vector
//   - [Integrator]: fixed-step numerical scheme
//   - [Metric], [Observer]: hooks notified of each recorded point
//
// # Conventions
//
// Position is the height above ground in metres. Velocity and acceleration
// are positive downward, so a falling body has positive velocity and a
// decreasing position.
//
//	p := dynamo.DefaultParams()
//	p.FrictionModel = dynamo.Linear
package dynamo
