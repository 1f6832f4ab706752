package l4possession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/match.report/internal/match"
)

func testTrackerConfig() TrackerConfig {
	return TrackerConfig{
		DistanceM:       1.8,
		StreakFrames:    2,
		FilterFrames:    2,
		AirborneMarginM: 0.9,
		PlayerHeightM:   1.8,
	}
}

var standingBox = match.BBox{X1: 100, Y1: 100, X2: 120, Y2: 160}

func player(id int, team match.TeamID, at match.PitchPoint) PlayerObservation {
	return PlayerObservation{TrackID: id, Team: team, BBox: standingBox, Feet: [2]match.PitchPoint{at, at}, OnPitch: true}
}

func groundBall(at match.PitchPoint) *BallObservation {
	return &BallObservation{BBox: match.BBox{X1: 116, Y1: 152, X2: 124, Y2: 160}, Pitch: at, OnPitch: true}
}

func TestTracker_ConfirmsAfterStreak(t *testing.T) {
	tr := NewTracker(testTrackerConfig())
	a := player(11, match.Team1, match.PitchPoint{X: 51, Y: 34})

	var records []match.PossessionRecord
	for f := 0; f < 3; f++ {
		records = append(records, tr.Step(Observation{
			Frame:   f,
			Ball:    groundBall(match.PitchPoint{X: 50, Y: 34}),
			Players: []PlayerObservation{a},
		}))
	}

	require.Len(t, records, 3)
	assert.False(t, records[0].Possessed())
	assert.Equal(t, match.TeamNone, records[0].Team)
	for _, r := range records[1:] {
		id, ok := r.Player()
		require.True(t, ok)
		assert.Equal(t, 11, id)
		assert.Equal(t, match.Team1, r.Team)
	}
	assert.Equal(t, []int{0, 1, 2}, []int{records[0].Frame, records[1].Frame, records[2].Frame})
}

func TestNearest(t *testing.T) {
	cfg := testTrackerConfig()
	ball := match.PitchPoint{X: 30, Y: 30}

	tests := []struct {
		name     string
		obs      Observation
		wantID   int
		wantOK   bool
		airborne bool
	}{
		{
			name:   "no ball",
			obs:    Observation{Players: []PlayerObservation{player(1, match.Team1, ball)}},
			wantOK: false,
		},
		{
			name:   "ball without pitch mapping",
			obs:    Observation{Ball: &BallObservation{}, Players: []PlayerObservation{player(1, match.Team1, ball)}},
			wantOK: false,
		},
		{
			name: "nearest within range",
			obs: Observation{Ball: groundBall(ball), Players: []PlayerObservation{
				player(1, match.Team1, match.PitchPoint{X: 31.5, Y: 30}),
				player(2, match.Team2, match.PitchPoint{X: 30.5, Y: 30}),
			}},
			wantID: 2, wantOK: true,
		},
		{
			name: "nearest out of range",
			obs: Observation{Ball: groundBall(ball), Players: []PlayerObservation{
				player(1, match.Team1, match.PitchPoint{X: 32, Y: 30}),
			}},
			wantOK: false,
		},
		{
			name: "tie goes to lower id",
			obs: Observation{Ball: groundBall(ball), Players: []PlayerObservation{
				player(9, match.Team1, match.PitchPoint{X: 31, Y: 30}),
				player(4, match.Team2, match.PitchPoint{X: 29, Y: 30}),
			}},
			wantID: 4, wantOK: true,
		},
		{
			name: "unmapped player ignored",
			obs: Observation{Ball: groundBall(ball), Players: []PlayerObservation{
				{TrackID: 3, Team: match.Team1, BBox: standingBox},
				player(5, match.Team2, match.PitchPoint{X: 31, Y: 30}),
			}},
			wantID: 5, wantOK: true,
		},
		{
			name: "airborne ball vetoed",
			obs: Observation{
				Ball:    &BallObservation{BBox: match.BBox{X1: 116, Y1: 96, X2: 124, Y2: 104}, Pitch: ball, OnPitch: true},
				Players: []PlayerObservation{player(6, match.Team1, ball)},
			},
			wantOK: false, airborne: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Nearest(cfg, tt.obs)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.airborne, c.Airborne)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, c.PlayerID)
			}
		})
	}
}

func TestNearest_NearerFootCounts(t *testing.T) {
	cfg := testTrackerConfig()
	p := PlayerObservation{
		TrackID: 8, Team: match.Team2, BBox: standingBox, OnPitch: true,
		Feet: [2]match.PitchPoint{{X: 40, Y: 30}, {X: 41.5, Y: 30}},
	}
	c, ok := Nearest(cfg, Observation{Ball: groundBall(match.PitchPoint{X: 43, Y: 30}), Players: []PlayerObservation{p}})
	require.True(t, ok)
	assert.InDelta(t, 1.5, c.DistanceM, 1e-12)
}

func TestBallElevation(t *testing.T) {
	cfg := testTrackerConfig()

	// ball centre level with the player's waist: half of 1.8 m
	h, ok := BallElevation(cfg, standingBox, match.BBox{X1: 110, Y1: 126, X2: 118, Y2: 134})
	require.True(t, ok)
	assert.InDelta(t, 0.9, h, 1e-12)

	_, ok = BallElevation(cfg, match.BBox{X1: 1, Y1: 5, X2: 2, Y2: 5}, standingBox)
	assert.False(t, ok)
}

func TestTracker_AirborneDisabled(t *testing.T) {
	cfg := testTrackerConfig()
	cfg.AirborneMarginM = 0
	high := &BallObservation{BBox: match.BBox{X1: 116, Y1: 0, X2: 124, Y2: 8}, Pitch: match.PitchPoint{X: 10, Y: 10}, OnPitch: true}

	_, ok := Nearest(cfg, Observation{Ball: high, Players: []PlayerObservation{player(2, match.Team1, match.PitchPoint{X: 10, Y: 10})}})
	assert.True(t, ok)

	tr := NewTracker(testTrackerConfig())
	tr.Step(Observation{Ball: high, Players: []PlayerObservation{player(2, match.Team1, match.PitchPoint{X: 10, Y: 10})}})
	assert.Equal(t, 1, tr.AirborneVetoes())
}

func TestDebounceRecords(t *testing.T) {
	rec := func(frame, id int, team match.TeamID) match.PossessionRecord {
		if id == 0 {
			return match.PossessionRecord{Frame: frame}
		}
		return match.PossessionRecord{Frame: frame, PlayerID: match.IntPtr(id), Team: team}
	}
	in := []match.PossessionRecord{
		rec(0, 0, 0),
		rec(1, 5, match.Team1), rec(2, 5, match.Team1), rec(3, 5, match.Team1),
		rec(4, 6, match.Team2), rec(5, 6, match.Team2),
		rec(6, 7, match.Team2), rec(7, 7, match.Team2), rec(8, 7, match.Team2),
	}
	out := DebounceRecords(in, 3)
	require.Len(t, out, len(in))

	for i, r := range out {
		assert.Equal(t, i, r.Frame)
	}
	assert.False(t, out[0].Possessed())
	assert.Equal(t, 5, *out[2].PlayerID)
	assert.False(t, out[4].Possessed(), "two-frame run removed")
	assert.False(t, out[5].Possessed())
	assert.Equal(t, 7, *out[8].PlayerID)
	assert.Equal(t, match.Team2, out[8].Team)
}

func TestTrackerConfigFromTuning(t *testing.T) {
	cfg := DefaultTrackerConfig()
	assert.Equal(t, testTrackerConfig(), cfg)
}

func TestTracker_ShortHoldSurvivesDebounce(t *testing.T) {
	cfg := DefaultTrackerConfig()
	tr := NewTracker(cfg)
	a := player(1, match.Team1, match.PitchPoint{X: 10, Y: 10})
	b := player(2, match.Team1, match.PitchPoint{X: 40, Y: 40})
	holders := []int{1, 1, 1, 1, 1, 2, 2, 2, 1, 1, 1, 1, 1}

	raw := make([]match.PossessionRecord, len(holders))
	for f, h := range holders {
		at := a.Feet[0]
		if h == 2 {
			at = b.Feet[0]
		}
		raw[f] = tr.Step(Observation{Frame: f, Ball: groundBall(at), Players: []PlayerObservation{a, b}})
	}

	got := make([]int, len(raw))
	for i, r := range DebounceRecords(raw, cfg.FilterFrames) {
		if id, ok := r.Player(); ok {
			got[i] = id
		}
	}
	assert.Equal(t, []int{0, 1, 1, 1, 1, 0, 2, 2, 0, 1, 1, 1, 1}, got,
		"a hold of StreakFrames+FilterFrames-1 frames is kept")
}
