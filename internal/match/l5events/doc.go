// Package l5events owns Layer 5 (Events) of the match data model.
//
// Responsibilities: folding the debounced possession stream into pass
// tallies, evaluating the offside rule per frame with running per-player
// totals, and counting each team's players on each half.
// Key types: PassTally, PassCounter, OffsideEvaluator, HalfOccupancy.
//
// Dependency rule: L5 may depend on L1-L4, but never on L6.
// No SQL/database code is allowed in this package.
package l5events
