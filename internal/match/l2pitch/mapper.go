package l2pitch

import (
	"fmt"

	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/match"
)

// MapperConfig holds the keypoint filtering parameters of a Mapper.
type MapperConfig struct {
	ConfidenceThreshold float64 // Minimum keypoint confidence to use a correspondence
	MinCorrespondences  int     // Confident keypoints required for a homography (>= 4)
	Layout              PitchLayout
}

// DefaultMapperConfig returns mapper configuration loaded from the
// canonical tuning defaults file (config/tuning.defaults.json).
// Panics if the file cannot be found, intended for tests.
func DefaultMapperConfig() MapperConfig {
	return MapperConfigFromTuning(config.MustLoadDefaultConfig())
}

// MapperConfigFromTuning builds a MapperConfig from a loaded TuningConfig.
func MapperConfigFromTuning(cfg *config.TuningConfig) MapperConfig {
	return MapperConfig{
		ConfidenceThreshold: cfg.GetKeypointConfidence(),
		MinCorrespondences:  cfg.GetMinKeypoints(),
		Layout:              NewPitchLayout(cfg.GetPitchLengthM(), cfg.GetPitchWidthM()),
	}
}

// CoordinateSource maps image positions of a single frame onto the pitch.
type CoordinateSource interface {
	// Inverse maps an image point to pitch metres, clamped to the pitch.
	Inverse(p match.Point) (match.PitchPoint, bool)
}

// Mapper is the image<->pitch mapping of one frame, built from the frame's
// confident keypoints. It is immutable once constructed.
type Mapper struct {
	layout  PitchLayout
	forward Homography // layout cm -> image px
	inverse Homography // image px -> layout cm
	used    int
}

// NewMapper builds the mapping for a frame. Keypoints are paired
// index-wise with the layout vertices; keypoints beyond the layout are
// ignored. Too few confident keypoints yields ErrInsufficientCorrespondence
// and a degenerate point set yields ErrDegenerateHomography.
func NewMapper(cfg MapperConfig, keypoints []match.Keypoint) (*Mapper, error) {
	vertices := cfg.Layout.Vertices()
	var pitchPts, imagePts []match.Point
	for i, kp := range keypoints {
		if i >= len(vertices) {
			break
		}
		if kp.Confidence < cfg.ConfidenceThreshold {
			continue
		}
		pitchPts = append(pitchPts, vertices[i])
		imagePts = append(imagePts, kp.Image)
	}

	minPairs := cfg.MinCorrespondences
	if minPairs < 4 {
		minPairs = 4
	}
	if len(pitchPts) < minPairs {
		return nil, fmt.Errorf("%d of %d keypoints confident: %w",
			len(pitchPts), len(keypoints), match.ErrInsufficientCorrespondence)
	}

	fwd, err := EstimateHomography(pitchPts, imagePts)
	if err != nil {
		return nil, fmt.Errorf("pitch to image: %w", err)
	}
	inv, err := EstimateHomography(imagePts, pitchPts)
	if err != nil {
		return nil, fmt.Errorf("image to pitch: %w", err)
	}

	return &Mapper{layout: cfg.Layout, forward: fwd, inverse: inv, used: len(pitchPts)}, nil
}

// Correspondences returns the number of keypoints the mapping was built from.
func (m *Mapper) Correspondences() int { return m.used }

// Forward projects a pitch point into the image.
func (m *Mapper) Forward(p match.PitchPoint) (match.Point, bool) {
	return m.forward.Apply(m.layout.ToLayout(p))
}

// Inverse maps an image point onto the pitch, clamped to its bounds.
func (m *Mapper) Inverse(p match.Point) (match.PitchPoint, bool) {
	q, ok := m.inverse.Apply(p)
	if !ok {
		return match.PitchPoint{}, false
	}
	return m.layout.FromLayout(q).Clamp(m.layout.LengthM(), m.layout.WidthM()), true
}

// ProjectLayout projects every canonical vertex into the image, giving a
// corrected keypoint set for the frame. Vertices that project to infinity
// are reported as ok=false in the parallel slice.
func (m *Mapper) ProjectLayout() ([]match.Point, []bool) {
	vertices := m.layout.Vertices()
	out := make([]match.Point, len(vertices))
	ok := make([]bool, len(vertices))
	for i, v := range vertices {
		out[i], ok[i] = m.forward.Apply(v)
	}
	return out, ok
}
