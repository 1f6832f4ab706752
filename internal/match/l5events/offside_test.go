package l5events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/match.report/internal/match"
)

var team1Left = match.FieldSides{Team1: match.SideLeft, Team2: match.SideRight}

func at(id int, team match.TeamID, x float64) match.PositionedPlayer {
	return match.PositionedPlayer{TrackID: id, Team: team, Position: match.PitchPoint{X: x, Y: 30}}
}

func newEvaluator(t *testing.T, sides match.FieldSides) *OffsideEvaluator {
	t.Helper()
	e, err := NewOffsideEvaluator(sides, 25)
	require.NoError(t, err)
	return e
}

func TestOffsideEvaluator_AttackerBeyondLineAndBall(t *testing.T) {
	e := newEvaluator(t, team1Left)
	ball := match.PitchPoint{X: 55, Y: 30}

	rec, err := e.Evaluate(OffsideFrame{
		Frame:      7,
		Possession: possession(7, 2, match.Team1),
		Players: []match.PositionedPlayer{
			at(2, match.Team1, 55),
			at(9, match.Team1, 80),
			at(10, match.Team1, 50),
			at(20, match.Team2, 60),
			at(21, match.Team2, 40),
		},
		Ball: &ball,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{9}, rec.Players)
	assert.Equal(t, match.Team1, rec.AttackingTeam)
	assert.Equal(t, 1, e.Frames(9))
	assert.Equal(t, 0, e.Frames(10))
}

func TestOffsideEvaluator_RightwardTeamMirrors(t *testing.T) {
	e := newEvaluator(t, team1Left)
	ball := match.PitchPoint{X: 50, Y: 30}

	rec, err := e.Evaluate(OffsideFrame{
		Possession: possession(0, 30, match.Team2),
		Players: []match.PositionedPlayer{
			at(30, match.Team2, 50),
			at(31, match.Team2, 20),
			at(32, match.Team2, 40),
			at(5, match.Team1, 35),
			at(6, match.Team1, 70),
		},
		Ball: &ball,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{31}, rec.Players)
}

func TestOffsideEvaluator_BallBeyondAttacker(t *testing.T) {
	e := newEvaluator(t, team1Left)
	ball := match.PitchPoint{X: 85, Y: 30}

	rec, err := e.Evaluate(OffsideFrame{
		Possession: possession(0, 2, match.Team1),
		Players:    []match.PositionedPlayer{at(2, match.Team1, 85), at(9, match.Team1, 80), at(20, match.Team2, 60)},
		Ball:       &ball,
	})
	require.NoError(t, err)
	assert.Empty(t, rec.Players)
}

func TestOffsideEvaluator_NoBallUsesLineOnly(t *testing.T) {
	e := newEvaluator(t, team1Left)

	rec, err := e.Evaluate(OffsideFrame{
		Possession: possession(0, 2, match.Team1),
		Players:    []match.PositionedPlayer{at(2, match.Team1, 30), at(9, match.Team1, 61), at(20, match.Team2, 60)},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{9}, rec.Players)
}

func TestOffsideEvaluator_GoalkeepersIgnored(t *testing.T) {
	e := newEvaluator(t, team1Left)
	keeper := at(1, match.Team2, 100)
	keeper.Goalkeeper = true

	rec, err := e.Evaluate(OffsideFrame{
		Possession: possession(0, 2, match.Team1),
		Players:    []match.PositionedPlayer{at(2, match.Team1, 30), at(9, match.Team1, 70), at(20, match.Team2, 60), keeper},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{9}, rec.Players)
}

func TestOffsideEvaluator_Skips(t *testing.T) {
	players := []match.PositionedPlayer{at(2, match.Team1, 30), at(9, match.Team1, 80), at(20, match.Team2, 60)}

	tests := []struct {
		name  string
		sides match.FieldSides
		rec   match.PossessionRecord
	}{
		{"no possessor", team1Left, possession(0, 0, 0)},
		{"unassigned team", team1Left, match.PossessionRecord{PlayerID: match.IntPtr(2)}},
		{"unknown sides", match.FieldSides{}, possession(0, 2, match.Team1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEvaluator(t, tt.sides)
			rec, err := e.Evaluate(OffsideFrame{Possession: tt.rec, Players: players})
			require.NoError(t, err)
			assert.Empty(t, rec.Players)
			assert.Empty(t, e.Log())
		})
	}
}

func TestOffsideEvaluator_NoOpponent(t *testing.T) {
	e := newEvaluator(t, team1Left)
	_, err := e.Evaluate(OffsideFrame{
		Possession: possession(0, 2, match.Team1),
		Players:    []match.PositionedPlayer{at(2, match.Team1, 30), at(9, match.Team1, 80)},
	})
	assert.ErrorIs(t, err, match.ErrNoOpponentPresent)
}

func TestOffsideEvaluator_TopN(t *testing.T) {
	e := newEvaluator(t, team1Left)
	frame := func(n int, attackers ...match.PositionedPlayer) {
		players := append([]match.PositionedPlayer{at(2, match.Team1, 30), at(20, match.Team2, 60)}, attackers...)
		_, err := e.Evaluate(OffsideFrame{Frame: n, Possession: possession(n, 2, match.Team1), Players: players})
		require.NoError(t, err)
	}
	frame(0, at(9, match.Team1, 70), at(8, match.Team1, 70))
	frame(1, at(9, match.Team1, 70))
	frame(2, at(9, match.Team1, 70), at(7, match.Team1, 70))
	frame(3)

	want := []OffsideRanking{
		{TrackID: 9, Team: match.Team1, Frames: 3, Seconds: 0.12},
		{TrackID: 7, Team: match.Team1, Frames: 1, Seconds: 0.04},
	}
	if diff := cmp.Diff(want, e.TopN(2)); diff != "" {
		t.Errorf("TopN mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, e.TopN(0), 3)
	assert.Len(t, e.Log(), 3)
	assert.Equal(t, map[int]int{7: 1, 8: 1, 9: 3}, e.Totals())
}

func TestNewOffsideEvaluator_InvalidFPS(t *testing.T) {
	_, err := NewOffsideEvaluator(team1Left, 0)
	assert.Error(t, err)
}
