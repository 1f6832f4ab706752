package pipeline

import (
	"errors"

	"github.com/banshee-data/match.report/internal/match"
	"github.com/banshee-data/match.report/internal/match/l4possession"
	"github.com/banshee-data/match.report/internal/match/l5events"
)

// FrameResult is everything derived for one frame.
type FrameResult struct {
	Index      int
	Camera     match.Displacement
	Mapped     bool                     // a pitch mapping existed for the frame
	Positions  map[int]match.PitchPoint // player pitch positions by track id
	Adjusted   map[int]match.Point      // camera-compensated image reference point by track id
	Ball       *match.PitchPoint
	Raw        match.PossessionRecord // tracker output before run-end debouncing
	Possession match.PossessionRecord
	Share      l4possession.PossessionShare
	Passes     l5events.PassTally
	Offside    match.OffsideRecord
	Halves     l5events.HalfOccupancy
	SpeedsKmh  map[int]float64 // smoothed speed by track id
	Layout     []match.Point   // canonical vertices projected into the image; nil when unmapped
	LayoutOK   []bool          // parallel to Layout; false where a vertex projects to infinity
}

// PlayerSummary aggregates one player over the run.
type PlayerSummary struct {
	TrackID          int
	Team             match.TeamID
	Goalkeeper       bool
	PresenceRatio    float64
	DistanceM        float64
	AvgSpeedKmh      float64
	MaxSpeedKmh      float64
	PossessionFrames int
	AccuratePasses   int
	LostPasses       int
	OffsideFrames    int
	OffsideSeconds   float64
}

// Diagnostics counts the frame-local failures of a run.
type Diagnostics struct {
	InsufficientCorrespondence int
	DegenerateHomography       int
	DegenerateTimeDelta        int
	MissingTrack               int
	NoOpponentPresent          int
	AirborneVetoes             int
	Other                      int
}

// record counts err under its sentinel kind.
func (d *Diagnostics) record(err error) {
	switch {
	case errors.Is(err, match.ErrInsufficientCorrespondence):
		d.InsufficientCorrespondence++
	case errors.Is(err, match.ErrDegenerateHomography):
		d.DegenerateHomography++
	case errors.Is(err, match.ErrDegenerateTimeDelta):
		d.DegenerateTimeDelta++
	case errors.Is(err, match.ErrMissingTrack):
		d.MissingTrack++
	case errors.Is(err, match.ErrNoOpponentPresent):
		d.NoOpponentPresent++
	default:
		d.Other++
	}
}

// Total returns the number of recorded failures, airborne vetoes excluded.
func (d Diagnostics) Total() int {
	return d.InsufficientCorrespondence + d.DegenerateHomography + d.DegenerateTimeDelta +
		d.MissingTrack + d.NoOpponentPresent + d.Other
}

// Result is the output of an analysis run. When a run is cancelled it
// covers the frames processed before cancellation.
type Result struct {
	FPS         float64
	Frames      []FrameResult
	Sides       match.FieldSides
	Teams       map[int]match.TeamID
	Goalkeepers map[int]match.TeamID
	Share       l4possession.PossessionShare
	Passes      l5events.PassTally
	PassLog     []l5events.Pass
	Offsides    []l5events.OffsideRanking
	OffsideLog  []match.OffsideRecord
	Players     []PlayerSummary // players meeting the presence ratio, by track id
	Diagnostics Diagnostics
}
