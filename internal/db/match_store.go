package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/banshee-data/match.report/internal/match"
	"github.com/banshee-data/match.report/internal/match/pipeline"
	"github.com/banshee-data/match.report/internal/timeutil"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted analysis run.
type Run struct {
	RunID                 string          `json:"run_id"`
	Source                string          `json:"source"`
	FPS                   float64         `json:"fps"`
	FrameCount            int             `json:"frame_count"`
	Team1Side             string          `json:"team1_side"`
	Team2Side             string          `json:"team2_side"`
	Team1Accurate         int             `json:"team1_accurate"`
	Team1Inaccurate       int             `json:"team1_inaccurate"`
	Team2Accurate         int             `json:"team2_accurate"`
	Team2Inaccurate       int             `json:"team2_inaccurate"`
	Team1PossessionFrames int             `json:"team1_possession_frames"`
	Team2PossessionFrames int             `json:"team2_possession_frames"`
	ParamsJSON            json.RawMessage `json:"params_json,omitempty"`
	CreatedAt             int64           `json:"created_at"`
}

// FrameRow is the stored summary of one frame.
type FrameRow struct {
	FrameIndex      int
	Mapped          bool
	CameraDX        float64
	CameraDY        float64
	BallX           *float64
	BallY           *float64
	PossessorID     *int
	PossessorTeam   match.TeamID
	Team1Accurate   int
	Team1Inaccurate int
	Team2Accurate   int
	Team2Inaccurate int
	OffsidePlayers  []int
	Team1HalfTeam1  int
	Team1HalfTeam2  int
	Team2HalfTeam1  int
	Team2HalfTeam2  int
	Positions       []PositionRow
}

// PositionRow is the pitch position of one track in one frame. AdjX and
// AdjY hold the camera-compensated image reference point.
type PositionRow struct {
	TrackID  int
	X        float64
	Y        float64
	AdjX     *float64
	AdjY     *float64
	SpeedKmh *float64
}

// PlayerRow is the stored summary of one player.
type PlayerRow struct {
	TrackID          int          `json:"track_id"`
	Team             match.TeamID `json:"team"`
	Goalkeeper       bool         `json:"goalkeeper"`
	PresenceRatio    float64      `json:"presence_ratio"`
	DistanceM        float64      `json:"distance_m"`
	AvgSpeedKmh      float64      `json:"avg_speed_kmh"`
	MaxSpeedKmh      float64      `json:"max_speed_kmh"`
	PossessionFrames int          `json:"possession_frames"`
	AccuratePasses   int          `json:"accurate_passes"`
	LostPasses       int          `json:"lost_passes"`
	OffsideFrames    int          `json:"offside_frames"`
	OffsideSeconds   float64      `json:"offside_seconds"`
}

// MatchStore provides persistence for analysis runs.
type MatchStore struct {
	db    *DB
	clock timeutil.Clock
}

// execer is satisfied by both *DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// NewMatchStore creates a store stamping runs with clock.
func NewMatchStore(db *DB, clock timeutil.Clock) *MatchStore {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &MatchStore{db: db, clock: clock}
}

// InsertRun persists a new run. If RunID is empty, a UUID is generated;
// if CreatedAt is zero, the store clock is used.
func (s *MatchStore) InsertRun(ctx context.Context, run *Run) error {
	return s.insertRun(ctx, s.db, run)
}

func (s *MatchStore) insertRun(ctx context.Context, ex execer, run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}

	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}

	_, err := ex.ExecContext(ctx, `
		INSERT INTO match_runs (
			run_id, source, fps, frame_count, team1_side, team2_side,
			team1_accurate, team1_inaccurate, team2_accurate, team2_inaccurate,
			team1_possession_frames, team2_possession_frames, params_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, run.FPS, run.FrameCount, run.Team1Side, run.Team2Side,
		run.Team1Accurate, run.Team1Inaccurate, run.Team2Accurate, run.Team2Inaccurate,
		run.Team1PossessionFrames, run.Team2PossessionFrames, params, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun returns a run by id.
func (s *MatchStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_id, source, fps, frame_count, team1_side, team2_side,
		       team1_accurate, team1_inaccurate, team2_accurate, team2_inaccurate,
		       team1_possession_frames, team2_possession_frames, params_json, created_at
		FROM match_runs
		WHERE run_id = ?`, runID)

	var r Run
	var params sql.NullString
	err := row.Scan(
		&r.RunID, &r.Source, &r.FPS, &r.FrameCount, &r.Team1Side, &r.Team2Side,
		&r.Team1Accurate, &r.Team1Inaccurate, &r.Team2Accurate, &r.Team2Inaccurate,
		&r.Team1PossessionFrames, &r.Team2PossessionFrames, &params, &r.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("run %s: %w", runID, ErrRunNotFound)
		}
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	return &r, nil
}

// withTx runs fn in a transaction, rolling back when it fails.
func (s *MatchStore) withTx(ctx context.Context, what string, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", what, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", what, err)
	}
	return nil
}

// RecordFrames writes frames and their positions in a single transaction.
func (s *MatchStore) RecordFrames(ctx context.Context, runID string, frames []FrameRow) error {
	return s.withTx(ctx, "frames", func(tx *sql.Tx) error {
		return recordFrames(ctx, tx, runID, frames)
	})
}

func recordFrames(ctx context.Context, ex execer, runID string, frames []FrameRow) error {
	frameStmt, err := ex.PrepareContext(ctx, `
		INSERT INTO match_frames (
			run_id, frame_index, mapped, camera_dx, camera_dy, ball_x, ball_y,
			possessor_id, possessor_team, team1_accurate, team1_inaccurate,
			team2_accurate, team2_inaccurate, offside_players,
			team1_half_team1, team1_half_team2, team2_half_team1, team2_half_team2
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare frame insert: %w", err)
	}
	defer frameStmt.Close()

	posStmt, err := ex.PrepareContext(ctx, `
		INSERT INTO match_positions (run_id, frame_index, track_id, x, y, adj_x, adj_y, speed_kmh)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare position insert: %w", err)
	}
	defer posStmt.Close()

	for _, f := range frames {
		offside := f.OffsidePlayers
		if offside == nil {
			offside = []int{}
		}
		offsideJSON, err := json.Marshal(offside)
		if err != nil {
			return fmt.Errorf("frame %d: encode offside players: %w", f.FrameIndex, err)
		}
		if _, err := frameStmt.ExecContext(ctx,
			runID, f.FrameIndex, f.Mapped, f.CameraDX, f.CameraDY, f.BallX, f.BallY,
			f.PossessorID, int(f.PossessorTeam), f.Team1Accurate, f.Team1Inaccurate,
			f.Team2Accurate, f.Team2Inaccurate, string(offsideJSON),
			f.Team1HalfTeam1, f.Team1HalfTeam2, f.Team2HalfTeam1, f.Team2HalfTeam2,
		); err != nil {
			return fmt.Errorf("insert frame %d: %w", f.FrameIndex, err)
		}
		for _, p := range f.Positions {
			if _, err := posStmt.ExecContext(ctx,
				runID, f.FrameIndex, p.TrackID, p.X, p.Y, p.AdjX, p.AdjY, p.SpeedKmh,
			); err != nil {
				return fmt.Errorf("insert position frame %d track %d: %w", f.FrameIndex, p.TrackID, err)
			}
		}
	}
	return nil
}

// ListFrames returns the frames of a run in frame order, without positions.
func (s *MatchStore) ListFrames(ctx context.Context, runID string) ([]FrameRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT frame_index, mapped, camera_dx, camera_dy, ball_x, ball_y,
		       possessor_id, possessor_team, team1_accurate, team1_inaccurate,
		       team2_accurate, team2_inaccurate, offside_players,
		       team1_half_team1, team1_half_team2, team2_half_team1, team2_half_team2
		FROM match_frames
		WHERE run_id = ?
		ORDER BY frame_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var frames []FrameRow
	for rows.Next() {
		var f FrameRow
		var ballX, ballY sql.NullFloat64
		var possessor sql.NullInt64
		var team int
		var offside string
		if err := rows.Scan(
			&f.FrameIndex, &f.Mapped, &f.CameraDX, &f.CameraDY, &ballX, &ballY,
			&possessor, &team, &f.Team1Accurate, &f.Team1Inaccurate,
			&f.Team2Accurate, &f.Team2Inaccurate, &offside,
			&f.Team1HalfTeam1, &f.Team1HalfTeam2, &f.Team2HalfTeam1, &f.Team2HalfTeam2,
		); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		if ballX.Valid && ballY.Valid {
			f.BallX, f.BallY = &ballX.Float64, &ballY.Float64
		}
		if possessor.Valid {
			f.PossessorID = match.IntPtr(int(possessor.Int64))
		}
		f.PossessorTeam = match.TeamID(team)
		if err := json.Unmarshal([]byte(offside), &f.OffsidePlayers); err != nil {
			return nil, fmt.Errorf("frame %d: decode offside players: %w", f.FrameIndex, err)
		}
		frames = append(frames, f)
	}
	return frames, rows.Err()
}

// TrackPath returns the stored positions of a track in frame order.
func (s *MatchStore) TrackPath(ctx context.Context, runID string, trackID int) ([]PositionRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT track_id, x, y, adj_x, adj_y, speed_kmh
		FROM match_positions
		WHERE run_id = ? AND track_id = ?
		ORDER BY frame_index`, runID, trackID)
	if err != nil {
		return nil, fmt.Errorf("query positions: %w", err)
	}
	defer rows.Close()

	var out []PositionRow
	for rows.Next() {
		var p PositionRow
		var adjX, adjY, speed sql.NullFloat64
		if err := rows.Scan(&p.TrackID, &p.X, &p.Y, &adjX, &adjY, &speed); err != nil {
			return nil, fmt.Errorf("scan position: %w", err)
		}
		if adjX.Valid && adjY.Valid {
			p.AdjX, p.AdjY = &adjX.Float64, &adjY.Float64
		}
		if speed.Valid {
			p.SpeedKmh = &speed.Float64
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordPlayers writes the player summaries of a run.
func (s *MatchStore) RecordPlayers(ctx context.Context, runID string, players []PlayerRow) error {
	return s.withTx(ctx, "players", func(tx *sql.Tx) error {
		return recordPlayers(ctx, tx, runID, players)
	})
}

func recordPlayers(ctx context.Context, ex execer, runID string, players []PlayerRow) error {
	stmt, err := ex.PrepareContext(ctx, `
		INSERT INTO match_players (
			run_id, track_id, team, goalkeeper, presence_ratio, distance_m,
			avg_speed_kmh, max_speed_kmh, possession_frames, accurate_passes,
			lost_passes, offside_frames, offside_seconds
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare player insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.ExecContext(ctx,
			runID, p.TrackID, int(p.Team), p.Goalkeeper, p.PresenceRatio, p.DistanceM,
			p.AvgSpeedKmh, p.MaxSpeedKmh, p.PossessionFrames, p.AccuratePasses,
			p.LostPasses, p.OffsideFrames, p.OffsideSeconds,
		); err != nil {
			return fmt.Errorf("insert player %d: %w", p.TrackID, err)
		}
	}
	return nil
}

// ListPlayers returns the player summaries of a run by track id.
func (s *MatchStore) ListPlayers(ctx context.Context, runID string) ([]PlayerRow, error) {
	return s.queryPlayers(ctx, `
		SELECT track_id, team, goalkeeper, presence_ratio, distance_m,
		       avg_speed_kmh, max_speed_kmh, possession_frames, accurate_passes,
		       lost_passes, offside_frames, offside_seconds
		FROM match_players
		WHERE run_id = ?
		ORDER BY track_id`, runID)
}

// OffsideRanking returns up to limit players with offside time, most
// frames first, ties by track id. limit <= 0 returns every player.
func (s *MatchStore) OffsideRanking(ctx context.Context, runID string, limit int) ([]PlayerRow, error) {
	if limit <= 0 {
		limit = -1
	}
	return s.queryPlayers(ctx, `
		SELECT track_id, team, goalkeeper, presence_ratio, distance_m,
		       avg_speed_kmh, max_speed_kmh, possession_frames, accurate_passes,
		       lost_passes, offside_frames, offside_seconds
		FROM match_players
		WHERE run_id = ? AND offside_frames > 0
		ORDER BY offside_frames DESC, track_id
		LIMIT ?`, runID, limit)
}

func (s *MatchStore) queryPlayers(ctx context.Context, query string, args ...interface{}) ([]PlayerRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var out []PlayerRow
	for rows.Next() {
		var p PlayerRow
		var team int
		if err := rows.Scan(
			&p.TrackID, &team, &p.Goalkeeper, &p.PresenceRatio, &p.DistanceM,
			&p.AvgSpeedKmh, &p.MaxSpeedKmh, &p.PossessionFrames, &p.AccuratePasses,
			&p.LostPasses, &p.OffsideFrames, &p.OffsideSeconds,
		); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		p.Team = match.TeamID(team)
		out = append(out, p)
	}
	return out, rows.Err()
}

// RecordResult persists a complete pipeline result as a new run and
// returns the stored run. The run, its frames and its players are written
// in one transaction.
func (s *MatchStore) RecordResult(ctx context.Context, source string, params json.RawMessage, res *pipeline.Result) (*Run, error) {
	run := &Run{
		Source:                source,
		FPS:                   res.FPS,
		FrameCount:            len(res.Frames),
		Team1Side:             res.Sides.Team1.String(),
		Team2Side:             res.Sides.Team2.String(),
		Team1Accurate:         res.Passes.Team1Accurate,
		Team1Inaccurate:       res.Passes.Team1Inaccurate,
		Team2Accurate:         res.Passes.Team2Accurate,
		Team2Inaccurate:       res.Passes.Team2Inaccurate,
		Team1PossessionFrames: res.Share.Team1Frames,
		Team2PossessionFrames: res.Share.Team2Frames,
		ParamsJSON:            params,
	}
	err := s.withTx(ctx, "run", func(tx *sql.Tx) error {
		if err := s.insertRun(ctx, tx, run); err != nil {
			return err
		}
		if err := recordFrames(ctx, tx, run.RunID, FrameRows(res)); err != nil {
			return err
		}
		return recordPlayers(ctx, tx, run.RunID, PlayerRows(res))
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FrameRows converts the per-frame results for storage.
func FrameRows(res *pipeline.Result) []FrameRow {
	out := make([]FrameRow, len(res.Frames))
	for i, fr := range res.Frames {
		row := FrameRow{
			FrameIndex:      fr.Index,
			Mapped:          fr.Mapped,
			CameraDX:        fr.Camera.DX,
			CameraDY:        fr.Camera.DY,
			PossessorID:     fr.Possession.PlayerID,
			PossessorTeam:   fr.Possession.Team,
			Team1Accurate:   fr.Passes.Team1Accurate,
			Team1Inaccurate: fr.Passes.Team1Inaccurate,
			Team2Accurate:   fr.Passes.Team2Accurate,
			Team2Inaccurate: fr.Passes.Team2Inaccurate,
			OffsidePlayers:  fr.Offside.Players,
			Team1HalfTeam1:  fr.Halves.Team1HalfTeam1,
			Team1HalfTeam2:  fr.Halves.Team1HalfTeam2,
			Team2HalfTeam1:  fr.Halves.Team2HalfTeam1,
			Team2HalfTeam2:  fr.Halves.Team2HalfTeam2,
		}
		if fr.Ball != nil {
			x, y := fr.Ball.X, fr.Ball.Y
			row.BallX, row.BallY = &x, &y
		}
		for _, id := range match.SortedIDs(fr.Positions) {
			p := fr.Positions[id]
			pos := PositionRow{TrackID: id, X: p.X, Y: p.Y}
			if a, ok := fr.Adjusted[id]; ok {
				pos.AdjX, pos.AdjY = &a.X, &a.Y
			}
			if v, ok := fr.SpeedsKmh[id]; ok {
				pos.SpeedKmh = &v
			}
			row.Positions = append(row.Positions, pos)
		}
		out[i] = row
	}
	return out
}

// PlayerRows converts the player summaries for storage.
func PlayerRows(res *pipeline.Result) []PlayerRow {
	out := make([]PlayerRow, len(res.Players))
	for i, p := range res.Players {
		out[i] = PlayerRow{
			TrackID:          p.TrackID,
			Team:             p.Team,
			Goalkeeper:       p.Goalkeeper,
			PresenceRatio:    p.PresenceRatio,
			DistanceM:        p.DistanceM,
			AvgSpeedKmh:      p.AvgSpeedKmh,
			MaxSpeedKmh:      p.MaxSpeedKmh,
			PossessionFrames: p.PossessionFrames,
			AccuratePasses:   p.AccuratePasses,
			LostPasses:       p.LostPasses,
			OffsideFrames:    p.OffsideFrames,
			OffsideSeconds:   p.OffsideSeconds,
		}
	}
	return out
}
