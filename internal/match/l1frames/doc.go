// Package l1frames owns Layer 1 (Frames) of the match data model.
//
// Responsibilities: decoding the per-frame detection stream produced by
// the external detector/tracker (JSON lines: one header object followed
// by one object per frame) and enforcing strict frame order.
// Key types: Header, Reader.
//
// Dependency rule: L1 depends only on the match root package.
// No SQL/database code is allowed in this package.
package l1frames
