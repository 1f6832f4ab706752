package l4possession

import "github.com/banshee-data/match.report/internal/match"

// PossessionShare counts the frames each team held the ball.
type PossessionShare struct {
	Team1Frames int
	Team2Frames int
}

// Step folds one possession record into the share. Frames without a
// possessor or with an unassigned team do not count.
func (s PossessionShare) Step(r match.PossessionRecord) PossessionShare {
	if !r.Possessed() {
		return s
	}
	switch r.Team {
	case match.Team1:
		s.Team1Frames++
	case match.Team2:
		s.Team2Frames++
	}
	return s
}

// Total returns the number of counted frames.
func (s PossessionShare) Total() int { return s.Team1Frames + s.Team2Frames }

// Percent returns the share of team in [0,100]; 0 when nothing was counted.
func (s PossessionShare) Percent(team match.TeamID) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	switch team {
	case match.Team1:
		return 100 * float64(s.Team1Frames) / float64(total)
	case match.Team2:
		return 100 * float64(s.Team2Frames) / float64(total)
	default:
		return 0
	}
}

// Shares folds records and returns the cumulative share after each frame.
func Shares(records []match.PossessionRecord) []PossessionShare {
	out := make([]PossessionShare, len(records))
	var s PossessionShare
	for i, r := range records {
		s = s.Step(r)
		out[i] = s
	}
	return out
}

// PlayerFrames counts possession frames per player.
func PlayerFrames(records []match.PossessionRecord) map[int]int {
	out := make(map[int]int)
	for _, r := range records {
		if id, ok := r.Player(); ok {
			out[id]++
		}
	}
	return out
}
