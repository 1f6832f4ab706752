package cvflow

import (
	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/match/l3camera"
)

// FeatureConfig holds corner detection and optical flow parameters.
type FeatureConfig struct {
	MaxCorners    int     // Corners per band
	QualityLevel  float64 // Minimum accepted corner quality relative to the best corner
	MinDistancePx float64 // Minimum distance between corners

	WindowSize   int     // Lucas-Kanade search window (square)
	PyramidLevel int     // Maximum pyramid level, 0 means a single level
	MaxIter      int     // Termination: iterations
	Epsilon      float64 // Termination: minimum update
}

// Config combines the compensator and the OpenCV parameters.
type Config struct {
	Compensator l3camera.CompensatorConfig
	Features    FeatureConfig
}

// ConfigFromTuning builds a Config from a loaded TuningConfig. The
// Lucas-Kanade parameters are fixed.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Compensator: l3camera.CompensatorConfigFromTuning(cfg),
		Features: FeatureConfig{
			MaxCorners:    cfg.GetCameraMaxFeatures(),
			QualityLevel:  cfg.GetCameraFeatureQuality(),
			MinDistancePx: cfg.GetCameraFeatureMinDistPx(),
			WindowSize:    15,
			PyramidLevel:  2,
			MaxIter:       10,
			Epsilon:       0.03,
		},
	}
}
