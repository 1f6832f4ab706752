// Package l3camera owns Layer 3 (Camera) of the match data model.
//
// Responsibilities: per-frame camera translation estimated from sparse
// features tracked in the left and right border bands of the image, and
// the removal of that translation from object positions.
// Key types: Compensator, FlowSource, BorderMask.
//
// The optical-flow backend is pluggable; subpackage cvflow provides the
// OpenCV implementation behind the gocv build tag.
//
// Dependency rule: L3 may depend on L1-L2, but never on L4+.
// No SQL/database code is allowed in this package.
package l3camera
