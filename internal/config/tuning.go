package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig is the root configuration for the match pipeline. Every field
// is optional; the Get* accessors supply the defaults for omitted fields so a
// partial JSON file is always safe to load.
type TuningConfig struct {
	// Coordinate mapping
	KeypointConfidence *float64 `json:"keypoint_confidence,omitempty"`
	MinKeypoints       *int     `json:"min_keypoints,omitempty"`
	PitchLengthM       *float64 `json:"pitch_length_m,omitempty"`
	PitchWidthM        *float64 `json:"pitch_width_m,omitempty"`

	// Camera motion
	CameraMinDistancePx    *float64 `json:"camera_min_distance_px,omitempty"`
	CameraLeftBandPx       *int     `json:"camera_left_band_px,omitempty"`
	CameraRightBandStartPx *int     `json:"camera_right_band_start_px,omitempty"`
	CameraRightBandEndPx   *int     `json:"camera_right_band_end_px,omitempty"`
	CameraMaxFeatures      *int     `json:"camera_max_features,omitempty"`
	CameraFeatureQuality   *float64 `json:"camera_feature_quality,omitempty"`
	CameraFeatureMinDistPx *float64 `json:"camera_feature_min_dist_px,omitempty"`

	// Possession
	PossessionDistanceM    *float64 `json:"possession_distance_m,omitempty"`
	PossessionStreakFrames *int     `json:"possession_streak_frames,omitempty"`
	PossessionFilterFrames *int     `json:"possession_filter_frames,omitempty"`
	AirborneMarginM        *float64 `json:"airborne_margin_m,omitempty"`
	PlayerHeightM          *float64 `json:"player_height_m,omitempty"`

	// Kinematics
	MaxSpeedKmh *float64 `json:"max_speed_kmh,omitempty"`
	SpeedWindow *int     `json:"speed_window,omitempty"`

	// Reporting
	OffsideTopN      *int     `json:"offside_top_n,omitempty"`
	MinPresenceRatio *float64 `json:"min_presence_ratio,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated from
// the Get* defaults. It mirrors config/tuning.defaults.json.
func DefaultTuningConfig() *TuningConfig {
	empty := EmptyTuningConfig()
	return &TuningConfig{
		KeypointConfidence:     ptrFloat64(empty.GetKeypointConfidence()),
		MinKeypoints:           ptrInt(empty.GetMinKeypoints()),
		PitchLengthM:           ptrFloat64(empty.GetPitchLengthM()),
		PitchWidthM:            ptrFloat64(empty.GetPitchWidthM()),
		CameraMinDistancePx:    ptrFloat64(empty.GetCameraMinDistancePx()),
		CameraLeftBandPx:       ptrInt(empty.GetCameraLeftBandPx()),
		CameraRightBandStartPx: ptrInt(empty.GetCameraRightBandStartPx()),
		CameraRightBandEndPx:   ptrInt(empty.GetCameraRightBandEndPx()),
		CameraMaxFeatures:      ptrInt(empty.GetCameraMaxFeatures()),
		CameraFeatureQuality:   ptrFloat64(empty.GetCameraFeatureQuality()),
		CameraFeatureMinDistPx: ptrFloat64(empty.GetCameraFeatureMinDistPx()),
		PossessionDistanceM:    ptrFloat64(empty.GetPossessionDistanceM()),
		PossessionStreakFrames: ptrInt(empty.GetPossessionStreakFrames()),
		PossessionFilterFrames: ptrInt(empty.GetPossessionFilterFrames()),
		AirborneMarginM:        ptrFloat64(empty.GetAirborneMarginM()),
		PlayerHeightM:          ptrFloat64(empty.GetPlayerHeightM()),
		MaxSpeedKmh:            ptrFloat64(empty.GetMaxSpeedKmh()),
		SpeedWindow:            ptrInt(empty.GetSpeedWindow()),
		OffsideTopN:            ptrInt(empty.GetOffsideTopN()),
		MinPresenceRatio:       ptrFloat64(empty.GetMinPresenceRatio()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/match/pipeline/
		"../../../../" + DefaultConfigPath, // deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.KeypointConfidence != nil {
		if *c.KeypointConfidence < 0 || *c.KeypointConfidence > 1 {
			return fmt.Errorf("keypoint_confidence must be between 0 and 1, got %f", *c.KeypointConfidence)
		}
	}
	if c.MinKeypoints != nil && *c.MinKeypoints < 4 {
		return fmt.Errorf("min_keypoints must be at least 4, got %d", *c.MinKeypoints)
	}
	if c.PitchLengthM != nil && *c.PitchLengthM <= 0 {
		return fmt.Errorf("pitch_length_m must be positive, got %f", *c.PitchLengthM)
	}
	if c.PitchWidthM != nil && *c.PitchWidthM <= 0 {
		return fmt.Errorf("pitch_width_m must be positive, got %f", *c.PitchWidthM)
	}
	if c.CameraMinDistancePx != nil && *c.CameraMinDistancePx < 0 {
		return fmt.Errorf("camera_min_distance_px must be non-negative, got %f", *c.CameraMinDistancePx)
	}
	if c.CameraLeftBandPx != nil && *c.CameraLeftBandPx < 0 {
		return fmt.Errorf("camera_left_band_px must be non-negative, got %d", *c.CameraLeftBandPx)
	}
	if c.GetCameraRightBandEndPx() < c.GetCameraRightBandStartPx() {
		return fmt.Errorf("camera_right_band_end_px (%d) must not be before camera_right_band_start_px (%d)",
			c.GetCameraRightBandEndPx(), c.GetCameraRightBandStartPx())
	}
	if c.CameraMaxFeatures != nil && *c.CameraMaxFeatures < 1 {
		return fmt.Errorf("camera_max_features must be at least 1, got %d", *c.CameraMaxFeatures)
	}
	if c.CameraFeatureQuality != nil {
		if *c.CameraFeatureQuality <= 0 || *c.CameraFeatureQuality > 1 {
			return fmt.Errorf("camera_feature_quality must be in (0, 1], got %f", *c.CameraFeatureQuality)
		}
	}
	if c.PossessionDistanceM != nil && *c.PossessionDistanceM <= 0 {
		return fmt.Errorf("possession_distance_m must be positive, got %f", *c.PossessionDistanceM)
	}
	if c.PossessionStreakFrames != nil && *c.PossessionStreakFrames < 1 {
		return fmt.Errorf("possession_streak_frames must be at least 1, got %d", *c.PossessionStreakFrames)
	}
	if c.PossessionFilterFrames != nil && *c.PossessionFilterFrames < 1 {
		return fmt.Errorf("possession_filter_frames must be at least 1, got %d", *c.PossessionFilterFrames)
	}
	if c.AirborneMarginM != nil && *c.AirborneMarginM < 0 {
		return fmt.Errorf("airborne_margin_m must be non-negative (0 disables), got %f", *c.AirborneMarginM)
	}
	if c.PlayerHeightM != nil && *c.PlayerHeightM <= 0 {
		return fmt.Errorf("player_height_m must be positive, got %f", *c.PlayerHeightM)
	}
	if c.MaxSpeedKmh != nil && *c.MaxSpeedKmh <= 0 {
		return fmt.Errorf("max_speed_kmh must be positive, got %f", *c.MaxSpeedKmh)
	}
	if c.SpeedWindow != nil && *c.SpeedWindow < 1 {
		return fmt.Errorf("speed_window must be at least 1, got %d", *c.SpeedWindow)
	}
	if c.OffsideTopN != nil && *c.OffsideTopN < 1 {
		return fmt.Errorf("offside_top_n must be at least 1, got %d", *c.OffsideTopN)
	}
	if c.MinPresenceRatio != nil {
		if *c.MinPresenceRatio < 0 || *c.MinPresenceRatio > 1 {
			return fmt.Errorf("min_presence_ratio must be between 0 and 1, got %f", *c.MinPresenceRatio)
		}
	}

	return nil
}

// GetKeypointConfidence returns the minimum keypoint confidence used for homography estimation.
func (c *TuningConfig) GetKeypointConfidence() float64 {
	if c.KeypointConfidence == nil {
		return 0.5
	}
	return *c.KeypointConfidence
}

// GetMinKeypoints returns the minimum number of confident keypoints per frame.
func (c *TuningConfig) GetMinKeypoints() int {
	if c.MinKeypoints == nil {
		return 4
	}
	return *c.MinKeypoints
}

// GetPitchLengthM returns the pitch length in metres.
func (c *TuningConfig) GetPitchLengthM() float64 {
	if c.PitchLengthM == nil {
		return 105.0
	}
	return *c.PitchLengthM
}

// GetPitchWidthM returns the pitch width in metres.
func (c *TuningConfig) GetPitchWidthM() float64 {
	if c.PitchWidthM == nil {
		return 68.0
	}
	return *c.PitchWidthM
}

// GetCameraMinDistancePx returns the minimum feature displacement that counts as camera motion.
func (c *TuningConfig) GetCameraMinDistancePx() float64 {
	if c.CameraMinDistancePx == nil {
		return 5.0
	}
	return *c.CameraMinDistancePx
}

// GetCameraLeftBandPx returns the width of the left feature band.
func (c *TuningConfig) GetCameraLeftBandPx() int {
	if c.CameraLeftBandPx == nil {
		return 20
	}
	return *c.CameraLeftBandPx
}

// GetCameraRightBandStartPx returns the first column of the right feature band.
func (c *TuningConfig) GetCameraRightBandStartPx() int {
	if c.CameraRightBandStartPx == nil {
		return 900
	}
	return *c.CameraRightBandStartPx
}

// GetCameraRightBandEndPx returns the column after the right feature band.
func (c *TuningConfig) GetCameraRightBandEndPx() int {
	if c.CameraRightBandEndPx == nil {
		return 1050
	}
	return *c.CameraRightBandEndPx
}

// GetCameraMaxFeatures returns the maximum number of tracked background features.
func (c *TuningConfig) GetCameraMaxFeatures() int {
	if c.CameraMaxFeatures == nil {
		return 100
	}
	return *c.CameraMaxFeatures
}

// GetCameraFeatureQuality returns the corner quality level for feature detection.
func (c *TuningConfig) GetCameraFeatureQuality() float64 {
	if c.CameraFeatureQuality == nil {
		return 0.3
	}
	return *c.CameraFeatureQuality
}

// GetCameraFeatureMinDistPx returns the minimum distance between detected features.
func (c *TuningConfig) GetCameraFeatureMinDistPx() float64 {
	if c.CameraFeatureMinDistPx == nil {
		return 3.0
	}
	return *c.CameraFeatureMinDistPx
}

// GetPossessionDistanceM returns the maximum foot-to-ball distance for a possession candidate.
func (c *TuningConfig) GetPossessionDistanceM() float64 {
	if c.PossessionDistanceM == nil {
		return 1.8
	}
	return *c.PossessionDistanceM
}

// GetPossessionStreakFrames returns the run length the online possession filter requires.
func (c *TuningConfig) GetPossessionStreakFrames() int {
	if c.PossessionStreakFrames == nil {
		return 2
	}
	return *c.PossessionStreakFrames
}

// GetPossessionFilterFrames returns the run length the second possession filter requires.
func (c *TuningConfig) GetPossessionFilterFrames() int {
	if c.PossessionFilterFrames == nil {
		return 2
	}
	return *c.PossessionFilterFrames
}

// GetAirborneMarginM returns the estimated ball elevation above which a candidate is vetoed.
func (c *TuningConfig) GetAirborneMarginM() float64 {
	if c.AirborneMarginM == nil {
		return 0.9
	}
	return *c.AirborneMarginM
}

// GetPlayerHeightM returns the nominal player height used to scale pixels to metres.
func (c *TuningConfig) GetPlayerHeightM() float64 {
	if c.PlayerHeightM == nil {
		return 1.8
	}
	return *c.PlayerHeightM
}

// GetMaxSpeedKmh returns the maximum realistic player speed.
func (c *TuningConfig) GetMaxSpeedKmh() float64 {
	if c.MaxSpeedKmh == nil {
		return 36.0
	}
	return *c.MaxSpeedKmh
}

// GetSpeedWindow returns the size of the speed smoothing window.
func (c *TuningConfig) GetSpeedWindow() int {
	if c.SpeedWindow == nil {
		return 8
	}
	return *c.SpeedWindow
}

// GetOffsideTopN returns the length of the offside ranking.
func (c *TuningConfig) GetOffsideTopN() int {
	if c.OffsideTopN == nil {
		return 5
	}
	return *c.OffsideTopN
}

// GetMinPresenceRatio returns the share of frames a player must appear in to be summarised.
func (c *TuningConfig) GetMinPresenceRatio() float64 {
	if c.MinPresenceRatio == nil {
		return 0.5
	}
	return *c.MinPresenceRatio
}
