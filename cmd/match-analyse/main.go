package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/banshee-data/match.report/internal/config"
	"github.com/banshee-data/match.report/internal/db"
	"github.com/banshee-data/match.report/internal/match/l1frames"
	"github.com/banshee-data/match.report/internal/match/l3camera/cvflow"
	"github.com/banshee-data/match.report/internal/match/pipeline"
	"github.com/banshee-data/match.report/internal/match/teams"
	"github.com/banshee-data/match.report/internal/monitoring"
	"github.com/banshee-data/match.report/internal/security"
	"github.com/banshee-data/match.report/internal/timeutil"
	"github.com/banshee-data/match.report/internal/units"
	"github.com/banshee-data/match.report/internal/version"
)

var (
	inputPath   = flag.String("input", "", "Tracked frame stream (JSON lines)")
	configPath  = flag.String("config", "", "Tuning config JSON (defaults to built-in values)")
	dbPath      = flag.String("db", "match.db", "SQLite database for the run (empty to skip)")
	outDir      = flag.String("out-dir", ".", "Directory for the JSON summary")
	summaryName = flag.String("summary", "", "Summary file name (defaults to <input>.summary.json)")
	videoPath   = flag.String("video", "", "Source video; camera motion is estimated from it (gocv builds only)")
	topN        = flag.Int("top", 0, "Offside ranking length (0 uses offside_top_n from the config)")
	speedUnits  = flag.String("speed-units", units.KPH, "Speed units for the report ("+units.ValidUnitsString()+")")
	traceLog    = flag.String("trace-log", "", "Write per-frame pipeline telemetry to this file (empty disables)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

type options struct {
	Input   string
	Config  string
	DB      string
	OutDir  string
	Summary string
	Video   string
	Top     int
	Units   string
	Trace   string
}

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String("match-analyse"))
		return
	}
	if *inputPath == "" {
		log.Fatal("-input is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := options{
		Input:   *inputPath,
		Config:  *configPath,
		DB:      *dbPath,
		OutDir:  *outDir,
		Summary: *summaryName,
		Video:   *videoPath,
		Top:     *topN,
		Units:   *speedUnits,
		Trace:   *traceLog,
	}
	if err := run(ctx, opts, os.Stdout); err != nil {
		log.Fatalf("match-analyse: %v", err)
	}
}

func run(ctx context.Context, opts options, w io.Writer) error {
	if opts.Units == "" {
		opts.Units = units.KPH
	}
	if !units.IsValid(opts.Units) {
		return fmt.Errorf("invalid speed units %q, want one of %s", opts.Units, units.ValidUnitsString())
	}

	tuning := config.DefaultTuningConfig()
	if opts.Config != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(opts.Config); err != nil {
			return err
		}
	}
	cfg := pipeline.ConfigFromTuning(tuning)
	if opts.Top > 0 {
		cfg.OffsideTopN = opts.Top
	}

	header, frames, err := l1frames.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("read frames: %w", err)
	}
	monitoring.Logf("read %d frames at %.2f fps from %s", len(frames), header.FPS, opts.Input)

	if opts.Video != "" {
		motion, err := cvflow.EstimateVideo(ctx, opts.Video, cvflow.ConfigFromTuning(tuning))
		if err != nil {
			return fmt.Errorf("camera motion: %w", err)
		}
		if len(motion) != len(frames) {
			monitoring.Logf("video has %d frames, stream has %d; using the shorter", len(motion), len(frames))
		}
		for i := range frames {
			if i < len(motion) {
				frames[i].Camera = motion[i]
			}
		}
	}

	classifier, err := teams.NewNearestColorClassifier(header.Colors())
	if err != nil {
		return fmt.Errorf("team colours: %w", err)
	}
	analyzer, err := pipeline.NewAnalyzer(cfg, header.FPS, classifier)
	if err != nil {
		return err
	}

	if opts.Trace != "" {
		f, err := os.Create(opts.Trace)
		if err != nil {
			return fmt.Errorf("open trace log: %w", err)
		}
		pipeline.SetTraceWriter(f)
		defer func() {
			pipeline.SetTraceWriter(nil)
			f.Close()
		}()
	}

	res, runErr := analyzer.Run(ctx, frames)
	if res == nil {
		return runErr
	}
	if runErr != nil {
		if !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, context.DeadlineExceeded) {
			return runErr
		}
		monitoring.Logf("run interrupted, keeping %d analysed frames", len(res.Frames))
	}

	params, err := json.Marshal(tuning)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}

	var runID string
	if opts.DB != "" {
		database, err := db.NewDB(opts.DB)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer database.Close()

		store := db.NewMatchStore(database, timeutil.RealClock{})
		stored, err := store.RecordResult(context.WithoutCancel(ctx), opts.Input, params, res)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}
		runID = stored.RunID
		monitoring.Logf("stored run %s in %s", runID, opts.DB)
	}

	path, err := summaryPath(opts)
	if err != nil {
		return err
	}
	if err := writeSummary(path, newSummary(opts.Input, runID, res)); err != nil {
		return err
	}
	monitoring.Logf("wrote summary %s", path)

	printReport(w, res, opts.Units)
	return nil
}

// summaryPath resolves the summary file inside the output directory.
func summaryPath(opts options) (string, error) {
	name := opts.Summary
	if name == "" {
		base := filepath.Base(opts.Input)
		name = strings.TrimSuffix(base, filepath.Ext(base)) + ".summary.json"
	}
	name = security.SanitizeFilename(name)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(opts.OutDir, name)
	if err := security.ValidatePathWithinDirectory(path, opts.OutDir); err != nil {
		return "", err
	}
	return path, nil
}
