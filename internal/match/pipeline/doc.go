// Package pipeline provides orchestration for the match analysis pipeline.
//
// It wires together the layer packages (L1-L6) and the team resolvers into
// a two-pass scan over a frame sequence. The first pass maps every frame
// onto the pitch and collects the evidence for team assignment, field
// sides and goalkeeper teams. The second pass derives possession, passes,
// offsides and kinematics once, with final team mappings. The pipeline
// does not own domain logic; it delegates to layer packages.
package pipeline
