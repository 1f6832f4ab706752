package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/match.report/internal/match"
	"github.com/banshee-data/match.report/internal/match/l2pitch"
	"github.com/banshee-data/match.report/internal/match/l3camera"
	"github.com/banshee-data/match.report/internal/match/l4possession"
	"github.com/banshee-data/match.report/internal/match/l5events"
	"github.com/banshee-data/match.report/internal/match/l6kinematics"
	"github.com/banshee-data/match.report/internal/match/teams"
	"github.com/banshee-data/match.report/internal/units"
)

// MapperFactory builds the pitch mapping of one frame from the keypoints
// detected in it.
type MapperFactory func(keypoints []match.Keypoint) (l2pitch.CoordinateSource, error)

// layoutProjector is implemented by mappings that can project the
// canonical pitch vertices back into the image (*l2pitch.Mapper).
type layoutProjector interface {
	ProjectLayout() ([]match.Point, []bool)
}

// Analyzer runs the match analysis over a frame sequence. An Analyzer
// holds no per-run state and may be reused; a single Run is sequential.
type Analyzer struct {
	cfg        Config
	fps        float64
	classifier teams.TeamClassifier
	newMapper  MapperFactory
	newSides   func() teams.FieldSideResolver
}

// Option customises an Analyzer.
type Option func(*Analyzer)

// WithMapperFactory replaces the keypoint homography mapping.
func WithMapperFactory(f MapperFactory) Option {
	return func(a *Analyzer) { a.newMapper = f }
}

// WithFieldSideResolver replaces the majority vote field side resolver.
// The factory is called once per run.
func WithFieldSideResolver(f func() teams.FieldSideResolver) Option {
	return func(a *Analyzer) { a.newSides = f }
}

// NewAnalyzer validates the run parameters. fps <= 0 and a nil classifier
// are configuration errors.
func NewAnalyzer(cfg Config, fps float64, classifier teams.TeamClassifier, opts ...Option) (*Analyzer, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("analyzer: fps must be positive, got %v", fps)
	}
	if classifier == nil {
		return nil, errors.New("analyzer: team classifier is required")
	}
	a := &Analyzer{
		cfg:        cfg,
		fps:        fps,
		classifier: classifier,
		newSides:   func() teams.FieldSideResolver { return teams.NewMajorityVoteResolver() },
	}
	a.newMapper = func(kps []match.Keypoint) (l2pitch.CoordinateSource, error) {
		m, err := l2pitch.NewMapper(a.cfg.Mapper, kps)
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

type mappedPlayer struct {
	obj     match.TrackedObject // camera-compensated
	pixel   match.Point         // bottom-centre of obj.BBox
	pos     match.PitchPoint
	feet    [2]match.PitchPoint
	onPitch bool
}

type mappedFrame struct {
	index   int
	camera  match.Displacement
	mapper  l2pitch.CoordinateSource // nil when the frame has no mapping
	players []mappedPlayer
	ball    *l4possession.BallObservation
}

type run struct {
	a       *Analyzer
	cache   *teams.TeamCache
	sides   teams.FieldSideResolver
	keepers *teams.GoalkeeperResolver

	frames     []mappedFrame
	errs       [][]error
	positioned [][]match.PositionedPlayer
	presence   map[int]int
	isKeeper   map[int]bool

	tracker *l4possession.Tracker
	kin     *l6kinematics.Estimator
	passes  *l5events.PassCounter
	res     *Result
}

// Run analyses frames in order. On context cancellation it returns the
// result for the frames processed so far together with the context error.
func (a *Analyzer) Run(ctx context.Context, frames []match.Frame) (*Result, error) {
	kin, err := l6kinematics.NewEstimator(a.cfg.Kinematics, a.fps)
	if err != nil {
		return nil, err
	}
	r := &run{
		a:        a,
		cache:    teams.NewTeamCache(a.classifier),
		sides:    a.newSides(),
		keepers:  teams.NewGoalkeeperResolver(a.cfg.Mapper.Layout.LengthM()),
		presence: make(map[int]int),
		isKeeper: make(map[int]bool),
		tracker:  l4possession.NewTracker(a.cfg.Tracker),
		kin:      kin,
		passes:   l5events.NewPassCounter(),
		res:      &Result{FPS: a.fps},
	}

	n, runErr := r.mapPass(ctx, frames)
	r.resolveTeams()
	if m, err := r.derivePass(ctx, n); err != nil {
		n, runErr = m, err
	}
	if err := r.events(n); err != nil {
		return nil, err
	}

	if runErr != nil {
		diagf("run stopped after %d of %d frames: %v", n, len(frames), runErr)
	} else {
		diagf("analysed %d frames: %d diagnostics", n, r.res.Diagnostics.Total())
	}
	return r.res, runErr
}

// mapPass maps every frame onto the pitch and collects team evidence.
// It returns the number of frames processed.
func (r *run) mapPass(ctx context.Context, frames []match.Frame) (int, error) {
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		mf, errs := r.mapFrame(f)
		r.frames = append(r.frames, mf)
		r.errs = append(r.errs, errs)

		var placed []match.PositionedPlayer
		for _, p := range mf.players {
			if p.obj.Goalkeeper {
				if p.onPitch {
					r.keepers.Observe(p.obj.TrackID, p.pos)
				}
				continue
			}
			team := r.cache.Assign(p.obj)
			if p.onPitch && team.Valid() {
				placed = append(placed, match.PositionedPlayer{TrackID: p.obj.TrackID, Team: team, Position: p.pos})
			}
		}
		r.sides.Observe(placed)
	}
	return len(frames), nil
}

func (r *run) mapFrame(f match.Frame) (mappedFrame, []error) {
	adj := l3camera.AdjustFrame(f)
	mf := mappedFrame{index: f.Index, camera: f.Camera}

	var errs []error
	src, err := r.a.newMapper(f.Keypoints)
	if err != nil {
		errs = append(errs, err)
	} else {
		mf.mapper = src
	}

	if ball, ok := adj.Ball(); ok {
		obs := &l4possession.BallObservation{BBox: ball.BBox}
		if mf.mapper != nil {
			obs.Pitch, obs.OnPitch = mf.mapper.Inverse(ball.BBox.Center())
		}
		mf.ball = obs
	}

	for _, o := range adj.Objects {
		if o.Class != match.ClassPlayer {
			continue
		}
		p := mappedPlayer{obj: o, pixel: match.Point{X: (o.BBox.X1 + o.BBox.X2) / 2, Y: o.BBox.Y2}}
		if mf.mapper != nil {
			left, right := o.BBox.Feet()
			var okL, okR, okP bool
			p.feet[0], okL = mf.mapper.Inverse(left)
			p.feet[1], okR = mf.mapper.Inverse(right)
			p.pos, okP = mf.mapper.Inverse(p.pixel)
			p.onPitch = okL && okR && okP
		}
		mf.players = append(mf.players, p)
	}
	return mf, errs
}

// resolveTeams fixes the field sides and the goalkeeper teams before any
// event is derived.
func (r *run) resolveTeams() {
	sides := r.sides.Resolve()
	keepers := r.keepers.Resolve(sides)
	for _, id := range match.SortedIDs(keepers) {
		if team := keepers[id]; team.Valid() {
			r.cache.Set(id, team)
		}
	}
	r.res.Sides = sides
	r.res.Goalkeepers = keepers
	r.res.Teams = r.cache.Assignments()
	diagf("field sides: team 1 %s, team 2 %s; %d goalkeepers", sides.Team1, sides.Team2, len(keepers))
}

// derivePass runs possession and kinematics over the first n mapped
// frames. It returns the number of frames processed.
func (r *run) derivePass(ctx context.Context, n int) (int, error) {
	length := r.a.cfg.Mapper.Layout.LengthM()
	r.positioned = make([][]match.PositionedPlayer, 0, n)

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		mf := r.frames[i]
		fr := FrameResult{
			Index:     mf.index,
			Camera:    mf.camera,
			Mapped:    mf.mapper != nil,
			Positions: make(map[int]match.PitchPoint),
			Adjusted:  make(map[int]match.Point),
			SpeedsKmh: make(map[int]float64),
		}
		obs := l4possession.Observation{Frame: mf.index, Ball: mf.ball}
		var placed []match.PositionedPlayer
		missing := 0

		for _, p := range mf.players {
			id := p.obj.TrackID
			r.presence[id]++
			if p.obj.Goalkeeper {
				r.isKeeper[id] = true
			}
			team, ok := r.cache.Team(id)
			if !ok || !team.Valid() {
				missing++
			}
			obs.Players = append(obs.Players, l4possession.PlayerObservation{
				TrackID: id, Team: team, BBox: p.obj.BBox, Feet: p.feet, OnPitch: p.onPitch,
			})
			fr.Adjusted[id] = p.pixel
			if !p.onPitch {
				continue
			}
			fr.Positions[id] = p.pos
			placed = append(placed, match.PositionedPlayer{TrackID: id, Team: team, Position: p.pos, Goalkeeper: p.obj.Goalkeeper})

			speed, err := r.kin.Add(id, p.pos, mf.index)
			if err != nil {
				r.errs[i] = append(r.errs[i], err)
			}
			fr.SpeedsKmh[id] = units.ConvertSpeed(speed, units.KPH)
		}
		if missing > 0 {
			r.errs[i] = append(r.errs[i], fmt.Errorf("%d players without a team: %w", missing, match.ErrMissingTrack))
		}

		if mf.ball != nil && mf.ball.OnPitch {
			b := mf.ball.Pitch
			fr.Ball = &b
		}
		fr.Raw = r.tracker.Step(obs)
		fr.Halves = l5events.CountHalves(mf.index, placed, r.res.Sides, length)
		if lp, ok := mf.mapper.(layoutProjector); ok {
			fr.Layout, fr.LayoutOK = lp.ProjectLayout()
		}

		tracef("frame %d: mapped=%t players=%d raw possession=%v", fr.Index, fr.Mapped, len(placed), fr.Raw.PlayerID != nil)
		r.res.Frames = append(r.res.Frames, fr)
		r.positioned = append(r.positioned, placed)
	}
	return n, nil
}

// events debounces the possession stream and derives passes and offsides
// for the first n frames, then reports the per-frame diagnostics.
func (r *run) events(n int) error {
	raw := make([]match.PossessionRecord, n)
	for i := range raw {
		raw[i] = r.res.Frames[i].Raw
	}
	debounced := l4possession.DebounceRecords(raw, r.a.cfg.Tracker.FilterFrames)
	shares := l4possession.Shares(debounced)

	passes := r.passes
	offside, err := l5events.NewOffsideEvaluator(r.res.Sides, r.a.fps)
	if err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		fr := &r.res.Frames[i]
		fr.Possession = debounced[i]
		fr.Share = shares[i]
		fr.Passes = passes.Push(debounced[i])

		rec, err := offside.Evaluate(l5events.OffsideFrame{
			Frame:      fr.Index,
			Possession: fr.Possession,
			Players:    r.positioned[i],
			Ball:       fr.Ball,
		})
		if err != nil {
			r.errs[i] = append(r.errs[i], err)
		}
		fr.Offside = rec
	}

	for i := 0; i < n; i++ {
		if len(r.errs[i]) == 0 {
			continue
		}
		for _, err := range r.errs[i] {
			r.res.Diagnostics.record(err)
		}
		diagf("frame %d: %v", r.frames[i].index, errors.Join(r.errs[i]...))
	}

	if n > 0 {
		r.res.Share = shares[n-1]
	}
	r.res.Passes = passes.Tally()
	r.res.PassLog = passes.Passes()
	r.res.Offsides = offside.TopN(r.a.cfg.OffsideTopN)
	r.res.OffsideLog = offside.Log()
	r.res.Diagnostics.AirborneVetoes = r.tracker.AirborneVetoes()

	r.summarisePlayers(n, debounced, passes, offside)
	return nil
}

func (r *run) summarisePlayers(n int, debounced []match.PossessionRecord, passes *l5events.PassCounter, offside *l5events.OffsideEvaluator) {
	held := l4possession.PlayerFrames(debounced)
	for _, id := range match.SortedIDs(r.presence) {
		count := r.presence[id]
		if n == 0 || float64(count) < float64(n)*r.a.cfg.MinPresenceRatio {
			continue
		}
		team, _ := r.cache.Team(id)
		pp := passes.Player(id)
		frames := offside.Frames(id)
		r.res.Players = append(r.res.Players, PlayerSummary{
			TrackID:          id,
			Team:             team,
			Goalkeeper:       r.isKeeper[id],
			PresenceRatio:    float64(count) / float64(n),
			DistanceM:        r.kin.DistanceMeters(id),
			AvgSpeedKmh:      r.kin.AverageSpeedKmh(id),
			MaxSpeedKmh:      r.kin.MaxSpeedKmh(id),
			PossessionFrames: held[id],
			AccuratePasses:   pp.Accurate,
			LostPasses:       pp.Lost,
			OffsideFrames:    frames,
			OffsideSeconds:   float64(frames) / r.a.fps,
		})
	}
}
