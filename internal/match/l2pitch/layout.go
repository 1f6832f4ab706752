package l2pitch

import "github.com/banshee-data/match.report/internal/match"

// LayoutVertexCount is the number of canonical pitch vertices. Keypoint
// detectors emit one keypoint per vertex, in this order.
const LayoutVertexCount = 32

// PitchLayout holds the pitch markings in centimetres. The layout origin is
// the bottom-left corner flag with y growing towards the top touchline, the
// opposite of PitchPoint.
type PitchLayout struct {
	WidthCM              float64
	LengthCM             float64
	PenaltyBoxWidthCM    float64
	PenaltyBoxLengthCM   float64
	GoalBoxWidthCM       float64
	GoalBoxLengthCM      float64
	CentreCircleRadiusCM float64
	PenaltySpotCM        float64
}

// DefaultPitchLayout returns a 105 x 68 m pitch with standard markings.
func DefaultPitchLayout() PitchLayout {
	return NewPitchLayout(105, 68)
}

// NewPitchLayout returns a layout of the given size in metres with
// standard penalty area, goal area and centre circle dimensions.
func NewPitchLayout(lengthM, widthM float64) PitchLayout {
	return PitchLayout{
		WidthCM:              widthM * 100,
		LengthCM:             lengthM * 100,
		PenaltyBoxWidthCM:    4032,
		PenaltyBoxLengthCM:   1650,
		GoalBoxWidthCM:       1832,
		GoalBoxLengthCM:      550,
		CentreCircleRadiusCM: 915,
		PenaltySpotCM:        1100,
	}
}

// LengthM returns the pitch length in metres.
func (l PitchLayout) LengthM() float64 { return l.LengthCM / 100 }

// WidthM returns the pitch width in metres.
func (l PitchLayout) WidthM() float64 { return l.WidthCM / 100 }

// Vertices returns the 32 canonical vertices in layout centimetres:
// left touchline (1-6), left goal and penalty areas (7-13), halfway line
// (14-17), right penalty and goal areas (18-24), right touchline (25-30)
// and the centre circle's left and right edges (31-32).
func (l PitchLayout) Vertices() []match.Point {
	w, L := l.WidthCM, l.LengthCM
	pbw, pbl := l.PenaltyBoxWidthCM, l.PenaltyBoxLengthCM
	gbw, gbl := l.GoalBoxWidthCM, l.GoalBoxLengthCM
	r, spot := l.CentreCircleRadiusCM, l.PenaltySpotCM

	return []match.Point{
		{X: 0, Y: 0},
		{X: 0, Y: (w - pbw) / 2},
		{X: 0, Y: (w - gbw) / 2},
		{X: 0, Y: (w + gbw) / 2},
		{X: 0, Y: (w + pbw) / 2},
		{X: 0, Y: w},
		{X: gbl, Y: (w - gbw) / 2},
		{X: gbl, Y: (w + gbw) / 2},
		{X: spot, Y: w / 2},
		{X: pbl, Y: (w - pbw) / 2},
		{X: pbl, Y: (w - gbw) / 2},
		{X: pbl, Y: (w + gbw) / 2},
		{X: pbl, Y: (w + pbw) / 2},
		{X: L / 2, Y: 0},
		{X: L / 2, Y: w/2 - r},
		{X: L / 2, Y: w/2 + r},
		{X: L / 2, Y: w},
		{X: L - pbl, Y: (w - pbw) / 2},
		{X: L - pbl, Y: (w - gbw) / 2},
		{X: L - pbl, Y: (w + gbw) / 2},
		{X: L - pbl, Y: (w + pbw) / 2},
		{X: L - spot, Y: w / 2},
		{X: L - gbl, Y: (w - gbw) / 2},
		{X: L - gbl, Y: (w + gbw) / 2},
		{X: L, Y: 0},
		{X: L, Y: (w - pbw) / 2},
		{X: L, Y: (w - gbw) / 2},
		{X: L, Y: (w + gbw) / 2},
		{X: L, Y: (w + pbw) / 2},
		{X: L, Y: w},
		{X: L/2 - r, Y: w / 2},
		{X: L/2 + r, Y: w / 2},
	}
}

// ToLayout converts a pitch point in metres to layout centimetres.
func (l PitchLayout) ToLayout(p match.PitchPoint) match.Point {
	return match.Point{X: p.X * 100, Y: l.WidthCM - p.Y*100}
}

// FromLayout converts layout centimetres to a pitch point in metres,
// undoing the y flip. The result is not clamped.
func (l PitchLayout) FromLayout(p match.Point) match.PitchPoint {
	return match.PitchPoint{X: p.X / 100, Y: l.WidthM() - p.Y/100}
}
