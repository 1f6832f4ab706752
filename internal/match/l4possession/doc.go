// Package l4possession owns Layer 4 (Possession) of the match data model.
//
// Responsibilities: debouncing flicker-prone per-frame candidates with a
// minimum-run streak filter, choosing the ball possessor of each frame,
// and folding the possession stream into per-team shares.
// Key types: StreakFilter, Tracker, PossessionShare.
//
// Dependency rule: L4 may depend on L1-L3, but never on L5+.
// No SQL/database code is allowed in this package.
package l4possession
