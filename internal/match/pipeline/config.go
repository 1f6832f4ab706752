package pipeline

import (
	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/match/l2pitch"
	"github.com/banshee-data/match.report/internal/match/l4possession"
	"github.com/banshee-data/match.report/internal/match/l6kinematics"
)

// Config holds the parameters of every stage of an analysis run.
type Config struct {
	Mapper           l2pitch.MapperConfig
	Tracker          l4possession.TrackerConfig
	Kinematics       l6kinematics.KinematicsConfig
	OffsideTopN      int     // Length of the offside ranking in the result
	MinPresenceRatio float64 // Share of frames a player needs to be summarised
}

// DefaultConfig returns configuration loaded from the canonical tuning
// defaults file. Panics if the file cannot be found, intended for tests.
func DefaultConfig() Config {
	return ConfigFromTuning(config.MustLoadDefaultConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		Mapper:           l2pitch.MapperConfigFromTuning(cfg),
		Tracker:          l4possession.TrackerConfigFromTuning(cfg),
		Kinematics:       l6kinematics.KinematicsConfigFromTuning(cfg),
		OffsideTopN:      cfg.GetOffsideTopN(),
		MinPresenceRatio: cfg.GetMinPresenceRatio(),
	}
}
