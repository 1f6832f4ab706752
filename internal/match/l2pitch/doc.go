// Package l2pitch owns Layer 2 (Pitch) of the match data model.
//
// Responsibilities: the canonical pitch layout, planar homography
// estimation from detected keypoints, and the per-frame mapping between
// image pixels and pitch metres.
// Key types: PitchLayout, Homography, Mapper.
//
// Dependency rule: L2 may depend on L1 and the match root package, never
// on L3+. No SQL/database code is allowed in this package.
package l2pitch
