//go:build gocv
// +build gocv

package cvflow

import (
	"context"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/banshee-data/match.report/internal/match"
	"github.com/banshee-data/match.report/internal/match/l3camera"
	"github.com/banshee-data/match.report/internal/monitoring"
)

// Flow tracks features on single-channel (grayscale) frames.
type Flow struct {
	cfg FeatureConfig
}

// NewFlow returns an OpenCV flow source.
func NewFlow(cfg FeatureConfig) *Flow {
	return &Flow{cfg: cfg}
}

// DetectFeatures runs GoodFeaturesToTrack on each border band separately
// and returns the corners in full-frame coordinates.
func (f *Flow) DetectFeatures(gray gocv.Mat, mask l3camera.BorderMask) []match.Point {
	width, height := gray.Cols(), gray.Rows()
	bands := []image.Rectangle{
		image.Rect(0, 0, min(mask.LeftEnd, width), height),
		image.Rect(max(mask.RightStart, 0), 0, min(mask.RightEnd, width), height),
	}

	var out []match.Point
	for _, band := range bands {
		if band.Dx() <= 0 || band.Dy() <= 0 {
			continue
		}
		roi := gray.Region(band)
		corners := gocv.NewMat()
		gocv.GoodFeaturesToTrack(roi, &corners, f.cfg.MaxCorners, f.cfg.QualityLevel, f.cfg.MinDistancePx)
		for i := 0; i < corners.Rows(); i++ {
			v := corners.GetVecfAt(i, 0)
			out = append(out, match.Point{X: float64(v[0]) + float64(band.Min.X), Y: float64(v[1]) + float64(band.Min.Y)})
		}
		corners.Close()
		roi.Close()
	}
	return out
}

// Propagate tracks pts from prev to cur with pyramidal Lucas-Kanade.
func (f *Flow) Propagate(prev, cur gocv.Mat, pts []match.Point) ([]match.Point, []bool) {
	if len(pts) == 0 {
		return nil, nil
	}
	prevPts := gocv.NewMatWithSize(len(pts), 1, gocv.MatTypeCV32FC2)
	defer prevPts.Close()
	for i, p := range pts {
		prevPts.SetFloatAt(i, 0, float32(p.X))
		prevPts.SetFloatAt(i, 1, float32(p.Y))
	}

	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	errMat := gocv.NewMat()
	defer errMat.Close()

	criteria := gocv.NewTermCriteria(gocv.Count|gocv.EPS, f.cfg.MaxIter, f.cfg.Epsilon)
	gocv.CalcOpticalFlowPyrLKWithParams(prev, cur, prevPts, nextPts, &status, &errMat,
		image.Pt(f.cfg.WindowSize, f.cfg.WindowSize), f.cfg.PyramidLevel, criteria, 0, 1e-4)

	next := make([]match.Point, len(pts))
	found := make([]bool, len(pts))
	if nextPts.Rows() != len(pts) || status.Rows() != len(pts) {
		return next, found
	}
	for i := range pts {
		next[i] = match.Point{X: float64(nextPts.GetFloatAt(i, 0)), Y: float64(nextPts.GetFloatAt(i, 1))}
		found[i] = status.GetUCharAt(i, 0) == 1
	}
	return next, found
}

// EstimateVideo decodes a video file and returns the camera displacement
// of every frame. Cancelling ctx stops decoding and returns the
// displacements computed so far with the context error.
func EstimateVideo(ctx context.Context, path string, cfg Config) ([]match.Displacement, error) {
	video, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open video %s: %w", path, err)
	}
	defer video.Close()

	comp := l3camera.NewCompensator[gocv.Mat](cfg.Compensator, NewFlow(cfg.Features))
	img := gocv.NewMat()
	defer img.Close()

	var out []match.Displacement
	var prevGray gocv.Mat
	havePrev := false
	defer func() {
		if havePrev {
			prevGray.Close()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		if ok := video.Read(&img); !ok || img.Empty() {
			break
		}
		gray := gocv.NewMat()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
		out = append(out, comp.Step(gray))

		// the compensator now holds gray as its previous frame
		if havePrev {
			prevGray.Close()
		}
		prevGray, havePrev = gray, true
	}

	monitoring.Logf("camera motion: %d frames, %d re-seeds", len(out), comp.Reseeds())
	return out, nil
}
