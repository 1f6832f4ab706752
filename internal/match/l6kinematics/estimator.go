package l6kinematics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/match"
	"github.com/banshee-data/match.report/internal/units"
)

// KinematicsConfig holds the speed estimation parameters.
type KinematicsConfig struct {
	MaxSpeedMps float64 // Physical cap on instantaneous speed
	Window      int     // Trailing samples averaged into the smoothed speed
}

// DefaultKinematicsConfig returns configuration loaded from the canonical
// tuning defaults file. Panics if the file cannot be found, intended for tests.
func DefaultKinematicsConfig() KinematicsConfig {
	return KinematicsConfigFromTuning(config.MustLoadDefaultConfig())
}

// KinematicsConfigFromTuning builds a KinematicsConfig from a loaded TuningConfig.
func KinematicsConfigFromTuning(cfg *config.TuningConfig) KinematicsConfig {
	return KinematicsConfig{
		MaxSpeedMps: units.KmhToMps(cfg.GetMaxSpeedKmh()),
		Window:      cfg.GetSpeedWindow(),
	}
}

type track struct {
	last     match.PitchPoint
	lastT    float64
	speed    float64   // last instantaneous speed, m/s
	smoothed []float64 // smoothed speed after every sample, m/s
	raw      []float64 // last Window instantaneous speeds, m/s
	distance float64
}

// Estimator accumulates per-track speed and distance. Samples of a track
// must arrive in frame order. Not safe for concurrent use.
type Estimator struct {
	cfg    KinematicsConfig
	fps    float64
	tracks map[int]*track
}

// NewEstimator returns an estimator for a stream at fps frames per second.
func NewEstimator(cfg KinematicsConfig, fps float64) (*Estimator, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("kinematics: fps must be positive, got %v", fps)
	}
	if cfg.Window < 1 {
		cfg.Window = 1
	}
	return &Estimator{cfg: cfg, fps: fps, tracks: make(map[int]*track)}, nil
}

// Add records the position of trackID at frame and returns the smoothed
// speed in m/s. The first sample of a track has speed 0. A sample whose
// time does not advance reuses the previous speed, adds no distance and
// reports ErrDegenerateTimeDelta; the sample is still recorded.
func (e *Estimator) Add(trackID int, pos match.PitchPoint, frame int) (float64, error) {
	t := float64(frame) / e.fps
	tr, ok := e.tracks[trackID]
	var err error
	if !ok {
		tr = &track{}
		e.tracks[trackID] = tr
	} else {
		d := pos.Distance(tr.last)
		dt := t - tr.lastT
		if dt > 0 {
			tr.speed = min(max(d/dt, 0), e.cfg.MaxSpeedMps)
			tr.distance += d
		} else {
			err = fmt.Errorf("track %d frame %d: %w", trackID, frame, match.ErrDegenerateTimeDelta)
		}
	}
	tr.last, tr.lastT = pos, t
	tr.raw = append(tr.raw, tr.speed)
	if n := len(tr.raw); n > e.cfg.Window {
		tr.raw = append(tr.raw[:0], tr.raw[n-e.cfg.Window:]...)
	}

	s := stat.Mean(tr.raw, nil)
	tr.smoothed = append(tr.smoothed, s)
	return s, err
}

// Tracks returns the ids of every track with at least one sample.
func (e *Estimator) Tracks() []int { return match.SortedIDs(e.tracks) }

// SpeedKmh returns the latest smoothed speed of a track.
func (e *Estimator) SpeedKmh(trackID int) (float64, bool) {
	tr, ok := e.tracks[trackID]
	if !ok {
		return 0, false
	}
	return units.ConvertSpeed(tr.smoothed[len(tr.smoothed)-1], units.KPH), true
}

// DistanceMeters returns the cumulative unclamped distance of a track.
func (e *Estimator) DistanceMeters(trackID int) float64 {
	if tr, ok := e.tracks[trackID]; ok {
		return tr.distance
	}
	return 0
}

// AverageSpeedKmh returns the mean of the smoothed speeds of a track.
func (e *Estimator) AverageSpeedKmh(trackID int) float64 {
	tr, ok := e.tracks[trackID]
	if !ok {
		return 0
	}
	return units.ConvertSpeed(stat.Mean(tr.smoothed, nil), units.KPH)
}

// MaxSpeedKmh returns the highest smoothed speed of a track.
func (e *Estimator) MaxSpeedKmh(trackID int) float64 {
	tr, ok := e.tracks[trackID]
	if !ok {
		return 0
	}
	return units.ConvertSpeed(floats.Max(tr.smoothed), units.KPH)
}

// SmoothedSpeeds returns a copy of the per-sample smoothed speeds in m/s.
func (e *Estimator) SmoothedSpeeds(trackID int) []float64 {
	tr, ok := e.tracks[trackID]
	if !ok {
		return nil
	}
	return append([]float64(nil), tr.smoothed...)
}
