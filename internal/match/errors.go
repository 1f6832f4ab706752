package match

import "errors"

// Frame-local failures. None of them abort a run: the pipeline counts them,
// logs them and moves on to the next frame.
var (
	// ErrInsufficientCorrespondence means fewer than the minimum number of
	// confident keypoints were available, so no pitch mapping exists for the frame.
	ErrInsufficientCorrespondence = errors.New("insufficient keypoint correspondences")

	// ErrDegenerateHomography means the correspondences were collinear or
	// otherwise produced a singular transform.
	ErrDegenerateHomography = errors.New("degenerate homography")

	// ErrDegenerateTimeDelta means two consecutive samples of a track share
	// a timestamp (or go backwards).
	ErrDegenerateTimeDelta = errors.New("non-positive time delta between samples")

	// ErrMissingTrack means a referenced track id has no state for the frame.
	ErrMissingTrack = errors.New("track missing from frame")

	// ErrNoOpponentPresent means the defending team has no visible outfield
	// player, so the offside line is undefined.
	ErrNoOpponentPresent = errors.New("no defending player visible")
)
