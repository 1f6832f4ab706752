//go:build !gocv
// +build !gocv

package cvflow

import (
	"context"
	"fmt"

	"github.com/banshee-data/match.report/internal/match"
)

// EstimateVideo is a stub implementation when OpenCV support is disabled.
// Build with -tags=gocv to enable video-based camera motion estimation.
func EstimateVideo(ctx context.Context, path string, cfg Config) ([]match.Displacement, error) {
	return nil, fmt.Errorf("OpenCV support not enabled: rebuild with -tags=gocv to estimate camera motion from %s", path)
}
