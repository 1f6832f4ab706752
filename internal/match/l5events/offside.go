package l5events

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/banshee-data/match.report/internal/match"
)

// OffsideFrame is the offside input of one frame.
type OffsideFrame struct {
	Frame      int
	Possession match.PossessionRecord
	Players    []match.PositionedPlayer
	Ball       *match.PitchPoint // nil when the ball has no pitch position
}

// OffsideRanking is one row of the time-in-offside ranking.
type OffsideRanking struct {
	TrackID int
	Team    match.TeamID
	Frames  int
	Seconds float64
}

// OffsideEvaluator applies the offside rule frame by frame and keeps
// running per-player totals. Goalkeepers take no part in the rule, as
// attackers or as defenders. Not safe for concurrent use.
type OffsideEvaluator struct {
	sides  match.FieldSides
	fps    float64
	totals map[int]int
	teams  map[int]match.TeamID
	log    []match.OffsideRecord
}

// NewOffsideEvaluator returns an evaluator for the given field sides.
func NewOffsideEvaluator(sides match.FieldSides, fps float64) (*OffsideEvaluator, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("offside evaluator: fps must be positive, got %v", fps)
	}
	return &OffsideEvaluator{
		sides:  sides,
		fps:    fps,
		totals: make(map[int]int),
		teams:  make(map[int]match.TeamID),
	}, nil
}

// Evaluate returns the players in an offside position in f. The attacking
// team is the possessor's team. An attacker other than the possessor is
// offside when it is beyond both the last defender and the ball in the
// attacking direction; without a ball position only the defender line
// applies. Frames with no possessor, an unassigned possessor team or
// unknown field sides yield an empty record. ErrNoOpponentPresent is
// returned when no defending outfield player is visible.
func (e *OffsideEvaluator) Evaluate(f OffsideFrame) (match.OffsideRecord, error) {
	rec := match.OffsideRecord{Frame: f.Frame}
	owner, ok := f.Possession.Player()
	attacking := f.Possession.Team
	if !ok || !attacking.Valid() || !e.sides.Known() {
		return rec, nil
	}
	rec.AttackingTeam = attacking
	defending := attacking.Opponent()
	towardsRight := e.sides.Of(attacking) == match.SideLeft

	lastDefender := math.NaN()
	for _, p := range f.Players {
		if p.Team != defending || p.Goalkeeper {
			continue
		}
		x := p.Position.X
		switch {
		case math.IsNaN(lastDefender):
			lastDefender = x
		case towardsRight && x > lastDefender:
			lastDefender = x
		case !towardsRight && x < lastDefender:
			lastDefender = x
		}
	}
	if math.IsNaN(lastDefender) {
		return rec, fmt.Errorf("frame %d: team %d: %w", f.Frame, defending, match.ErrNoOpponentPresent)
	}

	beyond := func(x, line float64) bool {
		if towardsRight {
			return x > line
		}
		return x < line
	}
	for _, p := range f.Players {
		if p.Team != attacking || p.Goalkeeper || p.TrackID == owner {
			continue
		}
		x := p.Position.X
		if beyond(x, lastDefender) && (f.Ball == nil || beyond(x, f.Ball.X)) {
			rec.Players = append(rec.Players, p.TrackID)
		}
	}
	if len(rec.Players) == 0 {
		return rec, nil
	}

	slices.Sort(rec.Players)
	for _, id := range rec.Players {
		e.totals[id]++
		e.teams[id] = attacking
	}
	e.log = append(e.log, rec)
	return rec, nil
}

// Frames returns the running number of offside frames of a track.
func (e *OffsideEvaluator) Frames(trackID int) int { return e.totals[trackID] }

// Totals returns a copy of the per-player offside frame counts.
func (e *OffsideEvaluator) Totals() map[int]int {
	out := make(map[int]int, len(e.totals))
	for id, n := range e.totals {
		out[id] = n
	}
	return out
}

// Log returns the frames that had at least one offside player.
func (e *OffsideEvaluator) Log() []match.OffsideRecord { return e.log }

// TopN ranks players by offside frames, most first, ties by track id.
// n <= 0 returns every player.
func (e *OffsideEvaluator) TopN(n int) []OffsideRanking {
	out := make([]OffsideRanking, 0, len(e.totals))
	for _, id := range match.SortedIDs(e.totals) {
		frames := e.totals[id]
		out = append(out, OffsideRanking{
			TrackID: id,
			Team:    e.teams[id],
			Frames:  frames,
			Seconds: float64(frames) / e.fps,
		})
	}
	slices.SortStableFunc(out, func(a, b OffsideRanking) int {
		return cmp.Compare(b.Frames, a.Frames)
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
