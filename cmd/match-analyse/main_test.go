package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/match.report/internal/db"
	"github.com/banshee-data/match.report/internal/match/l2pitch"
	"github.com/banshee-data/match.report/internal/monitoring"
)

// streamObject places a player with its feet at pitch (x, y) under a
// camera that images 1 layout centimetre as 0.1 px.
func streamObject(id int, class string, x, y float64, colour []float64) map[string]interface{} {
	px, py := x*10, (68-y)*10
	o := map[string]interface{}{
		"id":    id,
		"class": class,
		"bbox":  []float64{px - 10, py - 60, px + 10, py},
	}
	if colour != nil {
		o["appearance"] = colour
	}
	return o
}

func writeStream(t *testing.T, dir string, frames int) string {
	t.Helper()
	red, blue := []float64{220, 20, 20}, []float64{20, 20, 220}

	var keypoints []map[string]float64
	for _, v := range l2pitch.DefaultPitchLayout().Vertices() {
		keypoints = append(keypoints, map[string]float64{"x": v.X / 10, "y": v.Y / 10, "conf": 1})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	require.NoError(t, enc.Encode(map[string]interface{}{
		"fps":         25,
		"team_colors": map[string][]float64{"1": red, "2": blue},
	}))
	for i := 0; i < frames; i++ {
		objects := []map[string]interface{}{
			streamObject(2, "player", 50, 34, red),
			streamObject(3, "player", 20, 20, red),
			streamObject(4, "player", 90, 40, red),
			streamObject(20, "player", 60, 30, blue),
			streamObject(21, "player", 70, 50, blue),
			{"id": 1, "class": "ball", "bbox": []float64{497, 331, 503, 337}},
		}
		require.NoError(t, enc.Encode(map[string]interface{}{
			"frame":     i,
			"objects":   objects,
			"keypoints": keypoints,
		}))
	}

	path := filepath.Join(dir, "clip.jsonl")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestRun(t *testing.T) {
	monitoring.SetLogger(nil)
	dir := t.TempDir()
	input := writeStream(t, dir, 12)
	outDir := filepath.Join(dir, "out")
	dbFile := filepath.Join(dir, "match.db")

	var out bytes.Buffer
	err := run(context.Background(), options{Input: input, DB: dbFile, OutDir: outDir, Top: 3}, &out)
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Frames analysed: 12")
	assert.Contains(t, report, "Sides: team 1 left, team 2 right")
	assert.Contains(t, report, "1. player 4 (team 1)")
	assert.Contains(t, report, "Top speeds (km/h)")

	data, err := os.ReadFile(filepath.Join(outDir, "clip.summary.json"))
	require.NoError(t, err)
	var s summary
	require.NoError(t, json.Unmarshal(data, &s))
	assert.Equal(t, 12, s.Frames)
	assert.Equal(t, "left", s.Team1Side)
	require.NotEmpty(t, s.Offsides)
	assert.Equal(t, 4, s.Offsides[0].TrackID)
	assert.Len(t, s.Players, 5)
	assert.NotEmpty(t, s.RunID)

	database, err := db.NewDB(dbFile)
	require.NoError(t, err)
	defer database.Close()
	stored, err := db.NewMatchStore(database, nil).GetRun(context.Background(), s.RunID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.FrameCount)
	assert.Equal(t, input, stored.Source)
}

func TestRun_SkipDatabase(t *testing.T) {
	monitoring.SetLogger(nil)
	dir := t.TempDir()
	input := writeStream(t, dir, 4)

	var out bytes.Buffer
	err := run(context.Background(), options{Input: input, OutDir: dir, Summary: "first half.json"}, &out)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "first_half.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "match.db"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_TraceLog(t *testing.T) {
	monitoring.SetLogger(nil)
	dir := t.TempDir()
	input := writeStream(t, dir, 3)
	trace := filepath.Join(dir, "trace.log")

	err := run(context.Background(), options{Input: input, OutDir: dir, Trace: trace}, &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(trace)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[pipeline] ")
	assert.Contains(t, string(data), "frame 0: mapped=true")
	assert.Contains(t, string(data), "frame 2: ")

	err = run(context.Background(), options{Input: input, OutDir: dir, Trace: filepath.Join(dir, "missing", "trace.log")}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "open trace log")
}

func TestRun_Errors(t *testing.T) {
	monitoring.SetLogger(nil)
	dir := t.TempDir()

	err := run(context.Background(), options{Input: filepath.Join(dir, "missing.jsonl"), OutDir: dir}, &bytes.Buffer{})
	assert.Error(t, err)

	input := writeStream(t, dir, 2)
	err = run(context.Background(), options{Input: input, Config: filepath.Join(dir, "tuning.yaml"), OutDir: dir}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), ".json extension"))

	err = run(context.Background(), options{Input: input, OutDir: dir, Units: "knots"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "invalid speed units")

	noColours := filepath.Join(dir, "plain.jsonl")
	require.NoError(t, os.WriteFile(noColours, []byte(`{"fps":25}`+"\n"), 0o644))
	err = run(context.Background(), options{Input: noColours, OutDir: dir}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "team colours")
}

func TestSummaryPath(t *testing.T) {
	dir := t.TempDir()

	path, err := summaryPath(options{Input: "/data/games/derby.jsonl", OutDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "derby.summary.json"), path)

	path, err = summaryPath(options{Input: "x", OutDir: dir, Summary: "../escape.json"})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))
}
