package l5events

import "github.com/banshee-data/match.report/internal/match"

// HalfOccupancy counts each team's players on each half of one frame.
// Team1Half is the half defended by Team1.
type HalfOccupancy struct {
	Frame          int
	Team1HalfTeam1 int
	Team1HalfTeam2 int
	Team2HalfTeam1 int
	Team2HalfTeam2 int
}

// CountHalves builds the occupancy of a frame. Players without a valid
// team are ignored; with unknown field sides every count is zero.
func CountHalves(frame int, players []match.PositionedPlayer, sides match.FieldSides, lengthM float64) HalfOccupancy {
	h := HalfOccupancy{Frame: frame}
	if !sides.Known() {
		return h
	}
	halfway := lengthM / 2
	team1Left := sides.Team1 == match.SideLeft

	for _, p := range players {
		if !p.Team.Valid() {
			continue
		}
		onTeam1Half := p.Position.X > halfway
		if team1Left {
			onTeam1Half = p.Position.X < halfway
		}
		switch {
		case onTeam1Half && p.Team == match.Team1:
			h.Team1HalfTeam1++
		case onTeam1Half:
			h.Team1HalfTeam2++
		case p.Team == match.Team1:
			h.Team2HalfTeam1++
		default:
			h.Team2HalfTeam2++
		}
	}
	return h
}
