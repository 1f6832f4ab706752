package l3camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/match.report/internal/match"
)

// scene is a synthetic frame: static world corners seen through a camera
// panned by offset pixels.
type scene struct {
	offset match.Point
	lost   bool
}

type fakeFlow struct {
	world   []match.Point
	detects int
}

func (f *fakeFlow) DetectFeatures(s scene, mask BorderMask) []match.Point {
	f.detects++
	var out []match.Point
	for _, w := range f.world {
		p := match.Point{X: w.X + s.offset.X, Y: w.Y + s.offset.Y}
		if mask.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

func (f *fakeFlow) Propagate(prev, cur scene, pts []match.Point) ([]match.Point, []bool) {
	next := make([]match.Point, len(pts))
	found := make([]bool, len(pts))
	for i, p := range pts {
		next[i] = match.Point{X: p.X - prev.offset.X + cur.offset.X, Y: p.Y - prev.offset.Y + cur.offset.Y}
		found[i] = !cur.lost
	}
	return next, found
}

func newFakeFlow() *fakeFlow {
	return &fakeFlow{world: []match.Point{
		{X: 5, Y: 100}, {X: 12, Y: 400}, {X: 930, Y: 80}, {X: 1000, Y: 600}, {X: 500, Y: 300},
	}}
}

func testConfig() CompensatorConfig {
	return CompensatorConfig{
		MinDistancePx: 5,
		Mask:          BorderMask{LeftEnd: 20, RightStart: 900, RightEnd: 1050},
	}
}

func TestBorderMask(t *testing.T) {
	m := BorderMask{LeftEnd: 20, RightStart: 900, RightEnd: 1050}
	assert.True(t, m.Contains(match.Point{X: 0, Y: 10}))
	assert.True(t, m.Contains(match.Point{X: 19.9, Y: 10}))
	assert.False(t, m.Contains(match.Point{X: 20, Y: 10}))
	assert.False(t, m.Contains(match.Point{X: 500, Y: 10}))
	assert.True(t, m.Contains(match.Point{X: 900, Y: 10}))
	assert.False(t, m.Contains(match.Point{X: 1050, Y: 10}))
	assert.False(t, m.Contains(match.Point{X: -1, Y: 10}))
}

func TestCompensator_FirstFrameIsZero(t *testing.T) {
	flow := newFakeFlow()
	c := NewCompensator[scene](testConfig(), flow)

	assert.Equal(t, match.Displacement{}, c.Step(scene{}))
	assert.Equal(t, 1, flow.detects)
	// the mid-pitch corner is outside both bands
	assert.Len(t, c.Features(), 4)
}

func TestCompensator_IdenticalFramesKeepFeatures(t *testing.T) {
	flow := newFakeFlow()
	c := NewCompensator[scene](testConfig(), flow)

	c.Step(scene{})
	seeded := append([]match.Point(nil), c.Features()...)
	for i := 0; i < 3; i++ {
		assert.Equal(t, match.Displacement{}, c.Step(scene{}))
	}
	assert.Equal(t, 1, flow.detects, "no re-seed without motion")
	assert.Equal(t, 0, c.Reseeds())
	assert.Equal(t, seeded, c.Features())
}

func TestCompensator_AcceptsLargeMotion(t *testing.T) {
	flow := newFakeFlow()
	c := NewCompensator[scene](testConfig(), flow)

	c.Step(scene{})
	// camera pans so the scene moves 12px right and 3px up in the image
	d := c.Step(scene{offset: match.Point{X: 12, Y: -3}})
	assert.InDelta(t, -12.0, d.DX, 1e-9)
	assert.InDelta(t, 3.0, d.DY, 1e-9)
	assert.Equal(t, 1, c.Reseeds())
	assert.Equal(t, 2, flow.detects)
}

func TestCompensator_SmallMotionIgnored(t *testing.T) {
	flow := newFakeFlow()
	c := NewCompensator[scene](testConfig(), flow)

	c.Step(scene{})
	seeded := append([]match.Point(nil), c.Features()...)
	d := c.Step(scene{offset: match.Point{X: 3, Y: 4}}) // magnitude exactly 5
	assert.Equal(t, match.Displacement{}, d)
	assert.Equal(t, seeded, c.Features())
	assert.Equal(t, 0, c.Reseeds())
}

func TestCompensator_LostFeatures(t *testing.T) {
	flow := newFakeFlow()
	c := NewCompensator[scene](testConfig(), flow)

	c.Step(scene{})
	d := c.Step(scene{offset: match.Point{X: 40}, lost: true})
	assert.Equal(t, match.Displacement{}, d)
}

func TestCompensator_NoFeaturesReseeds(t *testing.T) {
	flow := &fakeFlow{world: []match.Point{{X: 500, Y: 500}}}
	c := NewCompensator[scene](testConfig(), flow)

	assert.Equal(t, match.Displacement{}, c.Step(scene{}))
	assert.Empty(t, c.Features())
	assert.Equal(t, match.Displacement{}, c.Step(scene{offset: match.Point{X: 450}}))
	assert.Equal(t, 2, flow.detects)
	assert.Len(t, c.Features(), 1, "corner panned into the right band")
}

func TestEstimate(t *testing.T) {
	frames := []scene{
		{},
		{},
		{offset: match.Point{X: 8}},
		{offset: match.Point{X: 8}},
	}
	got := Estimate[scene](testConfig(), newFakeFlow(), frames)
	require.Len(t, got, 4)
	assert.Equal(t, match.Displacement{}, got[0])
	assert.Equal(t, match.Displacement{}, got[1])
	assert.InDelta(t, -8.0, got[2].DX, 1e-9)
	assert.Equal(t, match.Displacement{}, got[3])
}

func TestAdjust(t *testing.T) {
	assert.Equal(t, match.Point{X: 95, Y: 52}, Adjust(match.Point{X: 100, Y: 50}, match.Displacement{DX: 5, DY: -2}))
	assert.Equal(t, match.Point{X: 1, Y: 1}, Adjust(match.Point{X: 1, Y: 1}, match.Displacement{}))
}

func TestAdjustFrame(t *testing.T) {
	f := match.Frame{
		Index:     7,
		Objects:   []match.TrackedObject{{TrackID: 3, BBox: match.BBox{X1: 10, Y1: 10, X2: 20, Y2: 30}}},
		Keypoints: []match.Keypoint{{Image: match.Point{X: 50, Y: 60}, Confidence: 0.7}},
		Camera:    match.Displacement{DX: 4, DY: 2},
	}
	got := AdjustFrame(f)

	assert.Equal(t, match.BBox{X1: 6, Y1: 8, X2: 16, Y2: 28}, got.Objects[0].BBox)
	assert.Equal(t, f.Keypoints, got.Keypoints, "keypoints stay in frame coordinates")
	assert.Equal(t, match.BBox{X1: 10, Y1: 10, X2: 20, Y2: 30}, f.Objects[0].BBox, "input untouched")
}

func TestCompensatorConfigFromTuning(t *testing.T) {
	cfg := DefaultCompensatorConfig()
	assert.Equal(t, 5.0, cfg.MinDistancePx)
	assert.Equal(t, BorderMask{LeftEnd: 20, RightStart: 900, RightEnd: 1050}, cfg.Mask)
}
