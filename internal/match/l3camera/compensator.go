package l3camera

import (
	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/match"
)

// BorderMask selects the image columns where features are seeded:
// x in [0, LeftEnd) or [RightStart, RightEnd). The bands cover stands and
// advertising boards, which move only with the camera.
type BorderMask struct {
	LeftEnd    int
	RightStart int
	RightEnd   int
}

// Contains reports whether p lies inside one of the bands.
func (m BorderMask) Contains(p match.Point) bool {
	x := p.X
	return (x >= 0 && x < float64(m.LeftEnd)) ||
		(x >= float64(m.RightStart) && x < float64(m.RightEnd))
}

// FlowSource detects and tracks sparse features between frames of type F.
type FlowSource[F any] interface {
	// DetectFeatures returns trackable corners of frame inside mask.
	DetectFeatures(frame F, mask BorderMask) []match.Point
	// Propagate tracks pts from prev into cur. next[i] is valid only when
	// found[i] is true.
	Propagate(prev, cur F, pts []match.Point) (next []match.Point, found []bool)
}

// CompensatorConfig holds camera motion parameters.
type CompensatorConfig struct {
	MinDistancePx float64 // Displacements at or below this are treated as no motion
	Mask          BorderMask
}

// DefaultCompensatorConfig returns configuration loaded from the canonical
// tuning defaults file. Panics if the file cannot be found, intended for tests.
func DefaultCompensatorConfig() CompensatorConfig {
	return CompensatorConfigFromTuning(config.MustLoadDefaultConfig())
}

// CompensatorConfigFromTuning builds a CompensatorConfig from a loaded TuningConfig.
func CompensatorConfigFromTuning(cfg *config.TuningConfig) CompensatorConfig {
	return CompensatorConfig{
		MinDistancePx: cfg.GetCameraMinDistancePx(),
		Mask: BorderMask{
			LeftEnd:    cfg.GetCameraLeftBandPx(),
			RightStart: cfg.GetCameraRightBandStartPx(),
			RightEnd:   cfg.GetCameraRightBandEndPx(),
		},
	}
}

// Compensator estimates the camera translation of each frame relative to
// the previous one. Frames must be fed in order. Not safe for concurrent use.
type Compensator[F any] struct {
	cfg      CompensatorConfig
	flow     FlowSource[F]
	prev     F
	hasPrev  bool
	features []match.Point
	reseeds  int
}

// NewCompensator returns a compensator reading features through flow.
func NewCompensator[F any](cfg CompensatorConfig, flow FlowSource[F]) *Compensator[F] {
	return &Compensator[F]{cfg: cfg, flow: flow}
}

// Step returns the displacement of frame relative to the previous frame,
// as old minus new position of the fastest tracked feature. The first
// frame, a frame without tracked features and a frame whose largest motion
// does not exceed MinDistancePx all yield (0,0). Only an accepted motion
// re-seeds the feature set from the current frame.
func (c *Compensator[F]) Step(frame F) match.Displacement {
	if !c.hasPrev {
		c.prev, c.hasPrev = frame, true
		c.features = c.flow.DetectFeatures(frame, c.cfg.Mask)
		return match.Displacement{}
	}

	prev := c.prev
	c.prev = frame
	if len(c.features) == 0 {
		c.features = c.flow.DetectFeatures(frame, c.cfg.Mask)
		return match.Displacement{}
	}

	next, found := c.flow.Propagate(prev, frame, c.features)
	var best match.Displacement
	maxDist := 0.0
	for i := range c.features {
		if i >= len(next) || i >= len(found) || !found[i] {
			continue
		}
		d := match.Displacement{DX: c.features[i].X - next[i].X, DY: c.features[i].Y - next[i].Y}
		if m := d.Magnitude(); m > maxDist {
			maxDist, best = m, d
		}
	}

	if maxDist <= c.cfg.MinDistancePx {
		return match.Displacement{}
	}
	c.features = c.flow.DetectFeatures(frame, c.cfg.Mask)
	c.reseeds++
	return best
}

// Features returns the current feature set.
func (c *Compensator[F]) Features() []match.Point { return c.features }

// Reseeds returns how many times the feature set was re-detected after an
// accepted motion.
func (c *Compensator[F]) Reseeds() int { return c.reseeds }

// Estimate runs a fresh compensator over frames and returns one
// displacement per frame.
func Estimate[F any](cfg CompensatorConfig, flow FlowSource[F], frames []F) []match.Displacement {
	c := NewCompensator(cfg, flow)
	out := make([]match.Displacement, len(frames))
	for i, f := range frames {
		out[i] = c.Step(f)
	}
	return out
}

// Adjust removes a camera displacement from an image position.
func Adjust(p match.Point, d match.Displacement) match.Point {
	return match.Point{X: p.X - d.DX, Y: p.Y - d.DY}
}

// AdjustFrame returns a copy of f with every object box moved by
// -f.Camera. Keypoints are detected in the frame's own image and stay as
// they are. The input frame is not modified.
func AdjustFrame(f match.Frame) match.Frame {
	out := f
	out.Objects = make([]match.TrackedObject, len(f.Objects))
	for i, o := range f.Objects {
		o.BBox = o.BBox.Shift(f.Camera)
		out.Objects[i] = o
	}
	return out
}
