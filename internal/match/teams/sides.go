package teams

import (
	"github.com/banshee-data/match.report/internal/match"
)

// FieldSideResolver decides which side each team defends from the
// positions observed over a match.
type FieldSideResolver interface {
	Observe(players []match.PositionedPlayer)
	Resolve() match.FieldSides
}

// MajorityVoteResolver votes once per frame in which both teams have an
// outfield player: the team with the smaller mean x is on the left. The
// most common vote wins; a tied vote keeps the earliest one.
type MajorityVoteResolver struct {
	team1Left  int
	team1Right int
	first      match.FieldSide
}

// NewMajorityVoteResolver returns a resolver with no votes.
func NewMajorityVoteResolver() *MajorityVoteResolver {
	return &MajorityVoteResolver{}
}

// Observe implements FieldSideResolver.
func (r *MajorityVoteResolver) Observe(players []match.PositionedPlayer) {
	var sum [3]float64
	var n [3]int
	for _, p := range players {
		if !p.Team.Valid() || p.Goalkeeper {
			continue
		}
		sum[p.Team] += p.Position.X
		n[p.Team]++
	}
	if n[match.Team1] == 0 || n[match.Team2] == 0 {
		return
	}

	vote := match.SideRight
	if sum[match.Team1]/float64(n[match.Team1]) < sum[match.Team2]/float64(n[match.Team2]) {
		vote = match.SideLeft
	}
	if vote == match.SideLeft {
		r.team1Left++
	} else {
		r.team1Right++
	}
	if r.first == match.SideUnknown {
		r.first = vote
	}
}

// Votes returns the number of frames that voted Team1 left and right.
func (r *MajorityVoteResolver) Votes() (left, right int) {
	return r.team1Left, r.team1Right
}

// Resolve implements FieldSideResolver. Without votes both sides are unknown.
func (r *MajorityVoteResolver) Resolve() match.FieldSides {
	team1 := r.first
	switch {
	case r.team1Left > r.team1Right:
		team1 = match.SideLeft
	case r.team1Right > r.team1Left:
		team1 = match.SideRight
	}
	switch team1 {
	case match.SideLeft:
		return match.FieldSides{Team1: match.SideLeft, Team2: match.SideRight}
	case match.SideRight:
		return match.FieldSides{Team1: match.SideRight, Team2: match.SideLeft}
	}
	return match.FieldSides{}
}

// GoalkeeperResolver assigns goalkeepers to the team defending the half
// they stand in. A position exactly on the halfway line counts as the
// right half.
type GoalkeeperResolver struct {
	halfway float64
	left    map[int]int
	right   map[int]int
}

// NewGoalkeeperResolver returns a resolver for a pitch of lengthM metres.
func NewGoalkeeperResolver(lengthM float64) *GoalkeeperResolver {
	return &GoalkeeperResolver{
		halfway: lengthM / 2,
		left:    make(map[int]int),
		right:   make(map[int]int),
	}
}

// Observe records one mapped position of a goalkeeper.
func (r *GoalkeeperResolver) Observe(trackID int, pos match.PitchPoint) {
	if pos.X < r.halfway {
		r.left[trackID]++
	} else {
		r.right[trackID]++
	}
}

// Resolve returns the team of every observed goalkeeper given the field
// sides. Goalkeepers seen equally often on both halves, and every
// goalkeeper when the sides are unknown, map to TeamNone.
func (r *GoalkeeperResolver) Resolve(sides match.FieldSides) map[int]match.TeamID {
	leftTeam, rightTeam := match.TeamNone, match.TeamNone
	if sides.Known() {
		leftTeam, rightTeam = match.Team1, match.Team2
		if sides.Team1 == match.SideRight {
			leftTeam, rightTeam = match.Team2, match.Team1
		}
	}

	out := make(map[int]match.TeamID)
	for _, id := range r.ids() {
		l, rt := r.left[id], r.right[id]
		switch {
		case l > rt:
			out[id] = leftTeam
		case rt > l:
			out[id] = rightTeam
		default:
			out[id] = match.TeamNone
		}
	}
	return out
}

func (r *GoalkeeperResolver) ids() []int {
	seen := make(map[int]struct{}, len(r.left)+len(r.right))
	for id := range r.left {
		seen[id] = struct{}{}
	}
	for id := range r.right {
		seen[id] = struct{}{}
	}
	return match.SortedIDs(seen)
}
