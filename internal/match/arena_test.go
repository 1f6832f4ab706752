package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTeamID(t *testing.T) {
	assert.True(t, Team1.Valid())
	assert.True(t, Team2.Valid())
	assert.False(t, TeamNone.Valid())
	assert.False(t, TeamID(3).Valid())

	assert.Equal(t, Team2, Team1.Opponent())
	assert.Equal(t, Team1, Team2.Opponent())
	assert.Equal(t, TeamNone, TeamNone.Opponent())
}

func TestFieldSides(t *testing.T) {
	sides := FieldSides{Team1: SideLeft, Team2: SideRight}
	assert.Equal(t, SideLeft, sides.Of(Team1))
	assert.Equal(t, SideRight, sides.Of(Team2))
	assert.Equal(t, SideUnknown, sides.Of(TeamNone))
	assert.True(t, sides.Known())
	assert.False(t, FieldSides{Team1: SideLeft}.Known())
	assert.Equal(t, "left", SideLeft.String())
}

func TestPitchPointClamp(t *testing.T) {
	tests := []struct {
		in, want PitchPoint
	}{
		{PitchPoint{50, 34}, PitchPoint{50, 34}},
		{PitchPoint{-1, 34}, PitchPoint{0, 34}},
		{PitchPoint{106, 70}, PitchPoint{105, 68}},
		{PitchPoint{10, -0.5}, PitchPoint{10, 0}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Clamp(105, 68))
	}
	assert.InDelta(t, 5.0, PitchPoint{0, 0}.Distance(PitchPoint{3, 4}), 1e-12)
}

func TestBBox(t *testing.T) {
	b := BBox{X1: 100, Y1: 200, X2: 140, Y2: 300}
	assert.Equal(t, Point{X: 120, Y: 250}, b.Center())
	assert.Equal(t, 100.0, b.Height())

	left, right := b.Feet()
	assert.Equal(t, Point{X: 100, Y: 300}, left)
	assert.Equal(t, Point{X: 140, Y: 300}, right)

	shifted := b.Shift(Displacement{DX: 10, DY: -5})
	assert.Equal(t, BBox{X1: 90, Y1: 205, X2: 130, Y2: 305}, shifted)
}

func TestFrameBall(t *testing.T) {
	f := Frame{Objects: []TrackedObject{
		{TrackID: 7, Class: ClassPlayer},
		{TrackID: 2, Class: ClassBall},
		{TrackID: BallTrackID, Class: ClassBall, BBox: BBox{X1: 1, Y1: 1, X2: 3, Y2: 3}},
	}}
	ball, ok := f.Ball()
	assert.True(t, ok)
	assert.Equal(t, Point{X: 2, Y: 2}, ball.BBox.Center())

	_, ok = (&Frame{}).Ball()
	assert.False(t, ok)
}

func TestPossessionRecord(t *testing.T) {
	empty := PossessionRecord{Frame: 3}
	assert.False(t, empty.Possessed())
	_, ok := empty.Player()
	assert.False(t, ok)

	held := PossessionRecord{Frame: 4, PlayerID: IntPtr(9), Team: Team2}
	id, ok := held.Player()
	assert.True(t, ok)
	assert.Equal(t, 9, id)
}

func TestSortedIDs(t *testing.T) {
	m := map[int]string{42: "a", 3: "b", 17: "c"}
	assert.Equal(t, []int{3, 17, 42}, SortedIDs(m))
	assert.Empty(t, SortedIDs(map[int]bool{}))
}
