package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"

	"github.com/banshee-data/match.report/internal/db"
	"github.com/banshee-data/match.report/internal/match"
	"github.com/banshee-data/match.report/internal/match/pipeline"
	"github.com/banshee-data/match.report/internal/units"
)

type summary struct {
	Source      string               `json:"source"`
	RunID       string               `json:"run_id,omitempty"`
	FPS         float64              `json:"fps"`
	Frames      int                  `json:"frames"`
	Team1Side   string               `json:"team1_side"`
	Team2Side   string               `json:"team2_side"`
	Possession  possessionSummary    `json:"possession"`
	Passes      passSummary          `json:"passes"`
	Offsides    []offsideEntry       `json:"offsides"`
	Players     []db.PlayerRow       `json:"players"`
	Diagnostics pipeline.Diagnostics `json:"diagnostics"`
}

type possessionSummary struct {
	Team1Frames  int     `json:"team1_frames"`
	Team2Frames  int     `json:"team2_frames"`
	Team1Percent float64 `json:"team1_percent"`
	Team2Percent float64 `json:"team2_percent"`
}

type passSummary struct {
	Team1Accurate   int `json:"team1_accurate"`
	Team1Inaccurate int `json:"team1_inaccurate"`
	Team2Accurate   int `json:"team2_accurate"`
	Team2Inaccurate int `json:"team2_inaccurate"`
}

type offsideEntry struct {
	TrackID int          `json:"track_id"`
	Team    match.TeamID `json:"team"`
	Frames  int          `json:"frames"`
	Seconds float64      `json:"seconds"`
	Clock   string       `json:"clock"`
}

func newSummary(source, runID string, res *pipeline.Result) summary {
	s := summary{
		Source:    source,
		RunID:     runID,
		FPS:       res.FPS,
		Frames:    len(res.Frames),
		Team1Side: res.Sides.Team1.String(),
		Team2Side: res.Sides.Team2.String(),
		Possession: possessionSummary{
			Team1Frames:  res.Share.Team1Frames,
			Team2Frames:  res.Share.Team2Frames,
			Team1Percent: res.Share.Percent(match.Team1),
			Team2Percent: res.Share.Percent(match.Team2),
		},
		Passes: passSummary{
			Team1Accurate:   res.Passes.Team1Accurate,
			Team1Inaccurate: res.Passes.Team1Inaccurate,
			Team2Accurate:   res.Passes.Team2Accurate,
			Team2Inaccurate: res.Passes.Team2Inaccurate,
		},
		Offsides:    make([]offsideEntry, 0, len(res.Offsides)),
		Players:     db.PlayerRows(res),
		Diagnostics: res.Diagnostics,
	}
	for _, o := range res.Offsides {
		s.Offsides = append(s.Offsides, offsideEntry{
			TrackID: o.TrackID,
			Team:    o.Team,
			Frames:  o.Frames,
			Seconds: o.Seconds,
			Clock:   units.FormatClock(o.Seconds),
		})
	}
	return s
}

func writeSummary(path string, s summary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

// printReport writes the human readable run report. Speeds are shown in
// speedUnits.
func printReport(w io.Writer, res *pipeline.Result, speedUnits string) {
	fmt.Fprintf(w, "Frames analysed: %d at %.2f fps\n", len(res.Frames), res.FPS)
	fmt.Fprintf(w, "Sides: team 1 %s, team 2 %s\n", res.Sides.Team1, res.Sides.Team2)

	fmt.Fprintln(w, "\nPossession")
	fmt.Fprintf(w, "  team 1  %5.1f%%  (%d frames, %s)\n", res.Share.Percent(match.Team1),
		res.Share.Team1Frames, units.FormatClock(float64(res.Share.Team1Frames)/res.FPS))
	fmt.Fprintf(w, "  team 2  %5.1f%%  (%d frames, %s)\n", res.Share.Percent(match.Team2),
		res.Share.Team2Frames, units.FormatClock(float64(res.Share.Team2Frames)/res.FPS))

	fmt.Fprintln(w, "\nPasses (accurate / inaccurate)")
	fmt.Fprintf(w, "  team 1  %d / %d\n", res.Passes.Team1Accurate, res.Passes.Team1Inaccurate)
	fmt.Fprintf(w, "  team 2  %d / %d\n", res.Passes.Team2Accurate, res.Passes.Team2Inaccurate)

	fmt.Fprintln(w, "\nOffside ranking")
	if len(res.Offsides) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for i, o := range res.Offsides {
		fmt.Fprintf(w, "  %d. player %d (team %d)  %s  %d frames\n",
			i+1, o.TrackID, o.Team, units.FormatClock(o.Seconds), o.Frames)
	}

	fmt.Fprintf(w, "\nTop speeds (%s)\n", units.Label(speedUnits))
	fast := slices.Clone(res.Players)
	sort.SliceStable(fast, func(i, j int) bool { return fast[i].MaxSpeedKmh > fast[j].MaxSpeedKmh })
	for i, p := range fast {
		if i == 3 {
			break
		}
		top := units.ConvertSpeed(units.KmhToMps(p.MaxSpeedKmh), speedUnits)
		avg := units.ConvertSpeed(units.KmhToMps(p.AvgSpeedKmh), speedUnits)
		fmt.Fprintf(w, "  player %d (team %d)  max %.1f  avg %.1f  %.0f m\n", p.TrackID, p.Team, top, avg, p.DistanceM)
	}

	if n := res.Diagnostics.Total(); n > 0 {
		fmt.Fprintf(w, "\n%d frame-local diagnostics, see log\n", n)
	}
}
