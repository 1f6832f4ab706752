package l5events

import "github.com/banshee-data/match.report/internal/match"

// PassTally is the cumulative pass count of both teams together with the
// last known possessor. Counters never decrease.
type PassTally struct {
	Team1Accurate   int
	Team1Inaccurate int
	Team2Accurate   int
	Team2Inaccurate int

	last     int
	lastTeam match.TeamID
	hasLast  bool
}

// Step folds one frame of the possession stream. When a new possessor
// with a known team follows a different previous possessor, a pass is
// counted: accurate for the shared team, or inaccurate for the previous
// possessor's team. Frames without a possessor, or whose possessor has no
// team, change nothing.
func (t PassTally) Step(player *int, team match.TeamID) PassTally {
	if player == nil || !team.Valid() {
		return t
	}
	if t.hasLast && t.last != *player {
		if t.lastTeam == team {
			t.add(team, true)
		} else {
			t.add(t.lastTeam, false)
		}
	}
	t.last, t.lastTeam, t.hasLast = *player, team, true
	return t
}

func (t *PassTally) add(team match.TeamID, accurate bool) {
	switch {
	case team == match.Team1 && accurate:
		t.Team1Accurate++
	case team == match.Team1:
		t.Team1Inaccurate++
	case team == match.Team2 && accurate:
		t.Team2Accurate++
	case team == match.Team2:
		t.Team2Inaccurate++
	}
}

// Total returns the number of passes counted.
func (t PassTally) Total() int {
	return t.Team1Accurate + t.Team1Inaccurate + t.Team2Accurate + t.Team2Inaccurate
}

// Accurate returns the accurate passes of team.
func (t PassTally) Accurate(team match.TeamID) int {
	switch team {
	case match.Team1:
		return t.Team1Accurate
	case match.Team2:
		return t.Team2Accurate
	}
	return 0
}

// Inaccurate returns the intercepted passes of team.
func (t PassTally) Inaccurate(team match.TeamID) int {
	switch team {
	case match.Team1:
		return t.Team1Inaccurate
	case match.Team2:
		return t.Team2Inaccurate
	}
	return 0
}

// Pass is a single change of possessor.
type Pass struct {
	Frame    int
	From     int
	To       int
	Team     match.TeamID // team of the passer
	Accurate bool
}

// PlayerPasses is the individual pass count of a player.
type PlayerPasses struct {
	Accurate int // passes that reached a team mate
	Lost     int // passes that reached an opponent
}

// PassCounter applies PassTally to a possession stream and keeps one
// snapshot per frame plus individual counts. Not safe for concurrent use.
type PassCounter struct {
	tally     PassTally
	snapshots []PassTally
	passes    []Pass
	players   map[int]PlayerPasses
}

// NewPassCounter returns an empty counter.
func NewPassCounter() *PassCounter {
	return &PassCounter{players: make(map[int]PlayerPasses)}
}

// Push folds the next record and returns the tally after it.
func (c *PassCounter) Push(r match.PossessionRecord) PassTally {
	before := c.tally
	c.tally = before.Step(r.PlayerID, r.Team)

	if c.tally.Total() > before.Total() {
		p := Pass{
			Frame:    r.Frame,
			From:     before.last,
			To:       *r.PlayerID,
			Team:     before.lastTeam,
			Accurate: before.lastTeam == r.Team,
		}
		c.passes = append(c.passes, p)
		pp := c.players[p.From]
		if p.Accurate {
			pp.Accurate++
		} else {
			pp.Lost++
		}
		c.players[p.From] = pp
	}

	c.snapshots = append(c.snapshots, c.tally)
	return c.tally
}

// Tally returns the current tally.
func (c *PassCounter) Tally() PassTally { return c.tally }

// Snapshots returns the tally after every pushed frame.
func (c *PassCounter) Snapshots() []PassTally { return c.snapshots }

// Passes returns every counted pass in frame order.
func (c *PassCounter) Passes() []Pass { return c.passes }

// Player returns the individual counts of a track.
func (c *PassCounter) Player(trackID int) PlayerPasses { return c.players[trackID] }

// Players returns the individual counts of every passer.
func (c *PassCounter) Players() map[int]PlayerPasses {
	out := make(map[int]PlayerPasses, len(c.players))
	for id, p := range c.players {
		out[id] = p
	}
	return out
}
