package l4possession

import (
	"math"

	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/match"
)

// TrackerConfig holds the possession rule parameters.
type TrackerConfig struct {
	DistanceM    float64 // Maximum ball to nearest foot distance (pitch metres)
	StreakFrames int     // Consecutive frames before a candidate is reported
	// FilterFrames is the run length of the second, run-end debouncing
	// stage. The first stage nulls the first StreakFrames-1 frames of every
	// hold, so a raw hold must last StreakFrames+FilterFrames-1 frames to
	// survive both.
	FilterFrames    int
	AirborneMarginM float64 // Estimated ball height above which possession is vetoed; 0 disables
	PlayerHeightM   float64 // Assumed player height used to scale the bbox to metres
}

// DefaultTrackerConfig returns configuration loaded from the canonical
// tuning defaults file. Panics if the file cannot be found, intended for tests.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfigFromTuning(config.MustLoadDefaultConfig())
}

// TrackerConfigFromTuning builds a TrackerConfig from a loaded TuningConfig.
func TrackerConfigFromTuning(cfg *config.TuningConfig) TrackerConfig {
	return TrackerConfig{
		DistanceM:       cfg.GetPossessionDistanceM(),
		StreakFrames:    cfg.GetPossessionStreakFrames(),
		FilterFrames:    cfg.GetPossessionFilterFrames(),
		AirborneMarginM: cfg.GetAirborneMarginM(),
		PlayerHeightM:   cfg.GetPlayerHeightM(),
	}
}

// BallObservation is the ball of one frame. OnPitch is false when the frame
// has no pitch mapping.
type BallObservation struct {
	BBox    match.BBox
	Pitch   match.PitchPoint
	OnPitch bool
}

// PlayerObservation is one player of a frame with both foot points mapped
// to the pitch.
type PlayerObservation struct {
	TrackID int
	Team    match.TeamID
	BBox    match.BBox
	Feet    [2]match.PitchPoint
	OnPitch bool
}

// Observation is the possession input for one frame.
type Observation struct {
	Frame   int
	Ball    *BallObservation
	Players []PlayerObservation
}

// Candidate is the raw per-frame possession decision.
type Candidate struct {
	PlayerID  int
	Team      match.TeamID
	DistanceM float64
	Airborne  bool // nearest player was within range but the ball was in the air
}

// Nearest returns the player whose nearer foot is closest to the ball, if
// that distance is within cfg.DistanceM and the ball is not airborne. Ties
// go to the lower track id.
func Nearest(cfg TrackerConfig, obs Observation) (Candidate, bool) {
	if obs.Ball == nil || !obs.Ball.OnPitch {
		return Candidate{}, false
	}
	ball := obs.Ball.Pitch

	best := Candidate{DistanceM: math.Inf(1)}
	var bestBox match.BBox
	found := false
	for _, p := range obs.Players {
		if !p.OnPitch {
			continue
		}
		d := math.Min(ball.Distance(p.Feet[0]), ball.Distance(p.Feet[1]))
		if d < best.DistanceM || (d == best.DistanceM && found && p.TrackID < best.PlayerID) {
			best = Candidate{PlayerID: p.TrackID, Team: p.Team, DistanceM: d}
			bestBox = p.BBox
			found = true
		}
	}
	if !found || best.DistanceM > cfg.DistanceM {
		return Candidate{}, false
	}
	if elevation, ok := BallElevation(cfg, bestBox, obs.Ball.BBox); ok &&
		cfg.AirborneMarginM > 0 && elevation > cfg.AirborneMarginM {
		best.Airborne = true
		return best, false
	}
	return best, true
}

// BallElevation estimates the height of the ball above the ground in
// metres, using the player's bbox height as the image scale at the
// player's depth. ok is false for an empty bbox.
func BallElevation(cfg TrackerConfig, player, ball match.BBox) (float64, bool) {
	h := player.Height()
	if h <= 0 {
		return 0, false
	}
	return (player.Y2 - ball.Center().Y) * cfg.PlayerHeightM / h, true
}

// Tracker produces the online possession stream: a candidate is reported
// only once it has been the nearest player for StreakFrames consecutive
// frames. Not safe for concurrent use.
type Tracker struct {
	cfg      TrackerConfig
	streak   *StreakFilter[int, match.TeamID]
	airborne int
}

// NewTracker returns a possession tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	return &Tracker{
		cfg:    cfg,
		streak: NewStreakFilter[int, match.TeamID](cfg.StreakFrames, EmitOnConfirm),
	}
}

// Step consumes the next frame and returns its possession record.
func (t *Tracker) Step(obs Observation) match.PossessionRecord {
	e := Null[int, match.TeamID](obs.Frame)
	c, ok := Nearest(t.cfg, obs)
	if ok {
		e = Entry[int, match.TeamID]{Frame: obs.Frame, Key: c.PlayerID, Valid: true, Payload: c.Team}
	} else if c.Airborne {
		t.airborne++
	}
	return toRecord(t.streak.Push(e)[0])
}

// AirborneVetoes returns how many frames had a candidate vetoed because
// the ball was in the air.
func (t *Tracker) AirborneVetoes() int { return t.airborne }

// DebounceRecords applies the run-end stage to a possession stream: runs
// of one possessor shorter than threshold frames become null.
func DebounceRecords(records []match.PossessionRecord, threshold int) []match.PossessionRecord {
	entries := make([]Entry[int, match.TeamID], len(records))
	for i, r := range records {
		if id, ok := r.Player(); ok {
			entries[i] = Entry[int, match.TeamID]{Frame: r.Frame, Key: id, Valid: true, Payload: r.Team}
		} else {
			entries[i] = Null[int, match.TeamID](r.Frame)
		}
	}
	out := Debounce(entries, threshold, EmitOnRunEnd)
	records = make([]match.PossessionRecord, len(out))
	for i, e := range out {
		records[i] = toRecord(e)
	}
	return records
}

func toRecord(e Entry[int, match.TeamID]) match.PossessionRecord {
	if !e.Valid {
		return match.PossessionRecord{Frame: e.Frame}
	}
	return match.PossessionRecord{Frame: e.Frame, PlayerID: match.IntPtr(e.Key), Team: e.Payload}
}
