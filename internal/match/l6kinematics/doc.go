// Package l6kinematics owns Layer 6 (Kinematics) of the match data model.
//
// Responsibilities: per-track speed and cumulative distance from pitch
// positions over time, with physical clamping and trailing-window
// smoothing.
// Key types: KinematicsConfig, Estimator.
//
// Dependency rule: L6 may depend on L1-L5.
// No SQL/database code is allowed in this package.
package l6kinematics
