// Package teams assigns players to teams and resolves which side of the
// pitch each team defends.
package teams

import (
	"fmt"

	"github.com/banshee-data/match.report/internal/match"
)

// TeamClassifier assigns a team to a track from an appearance sample.
type TeamClassifier interface {
	Classify(trackID int, sample match.RGB) match.TeamID
}

// NearestColorClassifier picks the team whose reference jersey colour is
// closest to the sample in RGB space. Ties go to Team1.
type NearestColorClassifier struct {
	team1 match.RGB
	team2 match.RGB
}

// NewNearestColorClassifier requires a reference colour for both teams.
func NewNearestColorClassifier(colors map[match.TeamID]match.RGB) (*NearestColorClassifier, error) {
	c1, ok1 := colors[match.Team1]
	c2, ok2 := colors[match.Team2]
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("team colours: need both teams, got %d", len(colors))
	}
	if c1 == c2 {
		return nil, fmt.Errorf("team colours: both teams share %v", c1)
	}
	return &NearestColorClassifier{team1: c1, team2: c2}, nil
}

// Classify implements TeamClassifier.
func (c *NearestColorClassifier) Classify(_ int, sample match.RGB) match.TeamID {
	if sqDist(sample, c.team2) < sqDist(sample, c.team1) {
		return match.Team2
	}
	return match.Team1
}

func sqDist(a, b match.RGB) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

// TeamCache memoises the first classification of every track. Tracks
// without an appearance sample stay unassigned until one arrives.
type TeamCache struct {
	classifier TeamClassifier
	teams      map[int]match.TeamID
}

// NewTeamCache wraps a classifier.
func NewTeamCache(c TeamClassifier) *TeamCache {
	return &TeamCache{classifier: c, teams: make(map[int]match.TeamID)}
}

// Assign returns the team of obj, classifying it on first sight.
func (c *TeamCache) Assign(obj match.TrackedObject) match.TeamID {
	if team, ok := c.teams[obj.TrackID]; ok {
		return team
	}
	if obj.Appearance == nil {
		return match.TeamNone
	}
	team := c.classifier.Classify(obj.TrackID, *obj.Appearance)
	c.teams[obj.TrackID] = team
	return team
}

// Set pins the team of a track, replacing any cached value.
func (c *TeamCache) Set(trackID int, team match.TeamID) {
	c.teams[trackID] = team
}

// Team returns the cached team of a track.
func (c *TeamCache) Team(trackID int) (match.TeamID, bool) {
	team, ok := c.teams[trackID]
	return team, ok
}

// Assignments returns a copy of every cached assignment.
func (c *TeamCache) Assignments() map[int]match.TeamID {
	out := make(map[int]match.TeamID, len(c.teams))
	for id, team := range c.teams {
		out[id] = team
	}
	return out
}
