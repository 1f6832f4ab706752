package match

import (
	"maps"
	"math"
	"slices"
)

//
// 0) Identities
//

// ObjectClass is the detector class of a tracked object.
type ObjectClass string

const (
	ClassPlayer  ObjectClass = "player"
	ClassReferee ObjectClass = "referee"
	ClassBall    ObjectClass = "ball"
)

// BallTrackID is the fixed track id of the ball within the ball class.
const BallTrackID = 1

// TeamID identifies a team. Only Team1 and Team2 take part in team logic.
type TeamID int

const (
	TeamNone TeamID = 0
	Team1    TeamID = 1
	Team2    TeamID = 2
)

// Valid reports whether t is one of the two playing teams.
func (t TeamID) Valid() bool { return t == Team1 || t == Team2 }

// Opponent returns the other playing team, or TeamNone for an invalid team.
func (t TeamID) Opponent() TeamID {
	switch t {
	case Team1:
		return Team2
	case Team2:
		return Team1
	default:
		return TeamNone
	}
}

// FieldSide is the half of the pitch a team defends.
type FieldSide int

const (
	SideUnknown FieldSide = iota
	SideLeft
	SideRight
)

func (s FieldSide) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "unknown"
	}
}

// FieldSides records which half each team defends. A team on the left
// attacks towards increasing x.
type FieldSides struct {
	Team1 FieldSide
	Team2 FieldSide
}

// Of returns the side defended by team.
func (f FieldSides) Of(team TeamID) FieldSide {
	switch team {
	case Team1:
		return f.Team1
	case Team2:
		return f.Team2
	default:
		return SideUnknown
	}
}

// Known reports whether both teams have a side.
func (f FieldSides) Known() bool {
	return f.Team1 != SideUnknown && f.Team2 != SideUnknown
}

//
// 1) Geometry
//

// Point is an image position in pixels.
type Point struct {
	X, Y float64
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// PitchPoint is a position on the pitch in metres, origin at the top-left
// corner flag with y growing towards the bottom touchline.
type PitchPoint struct {
	X, Y float64
}

// Distance is the Euclidean distance between two pitch points in metres.
func (p PitchPoint) Distance(q PitchPoint) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Clamp restricts p to [0,length] x [0,width].
func (p PitchPoint) Clamp(length, width float64) PitchPoint {
	return PitchPoint{
		X: math.Min(math.Max(p.X, 0), length),
		Y: math.Min(math.Max(p.Y, 0), width),
	}
}

// Displacement is the camera translation of a frame relative to the
// previous one, in pixels. The zero value means no motion.
type Displacement struct {
	DX, DY float64
}

// Magnitude returns the length of the displacement vector.
func (d Displacement) Magnitude() float64 { return math.Hypot(d.DX, d.DY) }

// BBox is an axis-aligned image box, (X1,Y1) top-left and (X2,Y2) bottom-right.
type BBox struct {
	X1, Y1, X2, Y2 float64
}

// Center returns the centre of the box.
func (b BBox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// Height returns the box height in pixels.
func (b BBox) Height() float64 { return b.Y2 - b.Y1 }

// Feet returns the bottom-left and bottom-right corners of the box, the
// image points where a standing player touches the ground.
func (b BBox) Feet() (left, right Point) {
	return Point{X: b.X1, Y: b.Y2}, Point{X: b.X2, Y: b.Y2}
}

// Shift moves the box by -d, removing a camera displacement.
func (b BBox) Shift(d Displacement) BBox {
	return BBox{X1: b.X1 - d.DX, Y1: b.Y1 - d.DY, X2: b.X2 - d.DX, Y2: b.Y2 - d.DY}
}

// RGB is a mean appearance colour sample, channels in [0,255].
type RGB [3]float64

//
// 2) Per-frame input
//

// TrackedObject is one detection of the external tracker.
type TrackedObject struct {
	TrackID    int
	Class      ObjectClass
	BBox       BBox
	Goalkeeper bool
	Appearance *RGB // nil when the tracker supplied no colour sample
}

// Keypoint is a detected pitch landmark. Keypoints are paired index-wise
// with the canonical pitch layout vertices.
type Keypoint struct {
	Image      Point
	Confidence float64
}

// Frame is the input for one video frame.
type Frame struct {
	Index     int
	Objects   []TrackedObject
	Keypoints []Keypoint
	Camera    Displacement
}

// Ball returns the ball detection of the frame, if any.
func (f *Frame) Ball() (TrackedObject, bool) {
	for _, o := range f.Objects {
		if o.Class == ClassBall && o.TrackID == BallTrackID {
			return o, true
		}
	}
	return TrackedObject{}, false
}

//
// 3) Derived records
//

// PossessionRecord is the possessor of a frame. PlayerID is nil when no
// player has the ball, in which case Team is TeamNone.
type PossessionRecord struct {
	Frame    int
	PlayerID *int
	Team     TeamID
}

// Possessed reports whether a player holds the ball in this record.
func (r PossessionRecord) Possessed() bool { return r.PlayerID != nil }

// Player returns the possessor id, or 0 and false.
func (r PossessionRecord) Player() (int, bool) {
	if r.PlayerID == nil {
		return 0, false
	}
	return *r.PlayerID, true
}

// PositionedPlayer is a player with a resolved team and a pitch position
// for one frame.
type PositionedPlayer struct {
	TrackID    int
	Team       TeamID
	Position   PitchPoint
	Goalkeeper bool
}

// OffsideRecord lists the players in an offside position for a frame.
type OffsideRecord struct {
	Frame         int
	Players       []int
	AttackingTeam TeamID
}

//
// 4) Arena helpers
//

// SortedIDs returns the keys of a track-keyed map in ascending order.
// Every output that walks per-track state goes through it.
func SortedIDs[V any](m map[int]V) []int {
	return slices.Sorted(maps.Keys(m))
}

// IntPtr returns a pointer to a copy of v.
func IntPtr(v int) *int { return &v }
