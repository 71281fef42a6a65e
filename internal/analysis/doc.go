// Package analysis provides reference solutions and trajectory analysis
// for the falling body.
//
//   - [TerminalVelocity]: steady-state speed where drag balances the
//     apparent weight
//   - [DragFreeImpact]: closed-form impact time and speed without drag
//   - [LinearDragVelocity]: closed-form velocity under linear drag
//   - [Compare]: difference between a run and a saved baseline
//   - [ImpactSweep]: impact time and speed across a parameter range
//   - [PhasePortraitFromHistory]: velocity against height
//
// # Validation
//
// Numerical runs converge to the closed forms as dt shrinks:
//
//	tImpact, vImpact, ok := analysis.DragFreeImpact(p)
//	if ok && math.Abs(result.Final.Velocity-vImpact) > 0.05 {
//	    // step too coarse
//	}
package analysis
