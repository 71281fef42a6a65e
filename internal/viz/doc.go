// Package viz is the terminal front end of the fall simulation.
//
//   - [Model]: Bubble Tea view of one [sim.Controller]; ticks feed wall time
//     into the controller and every frame renders its latest snapshot
//   - [Picker]: preset menu that opens a [Model] per selection
//   - [Canvas]: Braille pixel canvas used to draw the body and its forces
//   - [Theme] and [Styles]: color schemes, rebuilt per lipgloss renderer so
//     SSH sessions render with their own color profile
//
// # Key Bindings
//
//	Space     - start, pause or resume the fall
//	R         - reset to the initial height and velocity
//	S / C     - save or clear the comparison baseline
//	Tab       - cycle charts (height, velocity, accel, force, energy)
//	↑↓ / ←→   - select and tune a parameter
//	M         - switch linear/quadratic drag
//	G         - toggle chart grid lines
//	T         - cycle color themes
//	?         - toggle full help
//	Esc / B   - back to the preset menu
package viz
