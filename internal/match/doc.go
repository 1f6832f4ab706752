// Package match holds the shared data model of the match analytics pipeline.
//
// Responsibilities: tracked objects and their bounding boxes, team and
// field-side identifiers, pitch and image coordinates, the per-frame
// possession and offside records, and the frame-local sentinel errors.
// Key types: TrackedObject, PitchPoint, PossessionRecord, Frame.
//
// The layered packages build on it in order:
//
//	l1frames      frame input (JSON lines)
//	l2pitch       pitch layout and image<->pitch homography
//	l3camera      camera motion compensation
//	l4possession  streak debouncing and ball possession
//	l5events      passes, offsides and half occupancy
//	l6kinematics  per-player speed and distance
//
// Dependency rule: a layer may depend on lower layers and on this package,
// never on a higher layer. No SQL/database code is allowed here; results are
// persisted by internal/db.
package match
