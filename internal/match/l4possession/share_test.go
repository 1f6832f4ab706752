package l4possession

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/match.report/internal/match"
)

func TestPossessionShare(t *testing.T) {
	records := []match.PossessionRecord{
		{Frame: 0},
		{Frame: 1, PlayerID: match.IntPtr(4), Team: match.Team1},
		{Frame: 2, PlayerID: match.IntPtr(4), Team: match.Team1},
		{Frame: 3, PlayerID: match.IntPtr(9), Team: match.Team2},
		{Frame: 4, PlayerID: match.IntPtr(30), Team: match.TeamNone},
	}

	shares := Shares(records)
	assert.Len(t, shares, len(records))
	assert.Equal(t, PossessionShare{}, shares[0])
	assert.Equal(t, PossessionShare{Team1Frames: 1}, shares[1])

	final := shares[len(shares)-1]
	assert.Equal(t, PossessionShare{Team1Frames: 2, Team2Frames: 1}, final)
	assert.Equal(t, 3, final.Total())
	assert.InDelta(t, 66.667, final.Percent(match.Team1), 1e-3)
	assert.InDelta(t, 33.333, final.Percent(match.Team2), 1e-3)
	assert.Equal(t, 0.0, final.Percent(match.TeamNone))
	assert.Equal(t, 0.0, PossessionShare{}.Percent(match.Team1))

	assert.Equal(t, map[int]int{4: 2, 9: 1, 30: 1}, PlayerFrames(records))
}
