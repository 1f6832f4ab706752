package l1frames

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/banshee-data/match.report/internal/match"
)

// maxLineBytes bounds a single JSON line; a frame with a few dozen objects
// and 32 keypoints is a few kilobytes.
const maxLineBytes = 4 * 1024 * 1024

// ErrOutOfOrder is returned when a frame index repeats or goes backwards.
var ErrOutOfOrder = errors.New("frame out of order")

// Header is the first line of a frame stream.
type Header struct {
	FPS        float64               `json:"fps"`
	TeamColors map[string][3]float64 `json:"team_colors,omitempty"`
}

// Colors returns the reference jersey colours keyed by team. Keys other
// than "1" and "2" are ignored.
func (h Header) Colors() map[match.TeamID]match.RGB {
	out := make(map[match.TeamID]match.RGB, 2)
	for key, c := range h.TeamColors {
		switch key {
		case "1":
			out[match.Team1] = match.RGB(c)
		case "2":
			out[match.Team2] = match.RGB(c)
		}
	}
	return out
}

type frameRecord struct {
	Frame     int              `json:"frame"`
	Objects   []objectRecord   `json:"objects"`
	Keypoints []keypointRecord `json:"keypoints"`
	Camera    *cameraRecord    `json:"camera,omitempty"`
}

type objectRecord struct {
	ID         int         `json:"id"`
	Class      string      `json:"class"`
	BBox       [4]float64  `json:"bbox"`
	Goalkeeper bool        `json:"goalkeeper,omitempty"`
	Appearance *[3]float64 `json:"appearance,omitempty"`
}

type keypointRecord struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Conf float64 `json:"conf"`
}

type cameraRecord struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// Reader decodes a frame stream. Frames are returned strictly in index
// order starting at 0; indices missing from the stream are returned as
// empty frames so downstream state machines see every frame.
type Reader struct {
	sc      *bufio.Scanner
	header  Header
	line    int
	next    int
	pending *match.Frame
}

// NewReader reads and validates the header line.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	rd := &Reader{sc: sc}

	raw, err := rd.nextLine()
	if err == io.EOF {
		return nil, fmt.Errorf("frame stream: missing header")
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &rd.header); err != nil {
		return nil, fmt.Errorf("frame stream line %d: header: %w", rd.line, err)
	}
	if rd.header.FPS <= 0 {
		return nil, fmt.Errorf("frame stream: fps must be positive, got %v", rd.header.FPS)
	}
	return rd, nil
}

// Header returns the stream header.
func (r *Reader) Header() Header { return r.header }

// Next returns the next frame, or io.EOF once the stream is exhausted.
func (r *Reader) Next() (*match.Frame, error) {
	if r.pending == nil {
		raw, err := r.nextLine()
		if err != nil {
			return nil, err
		}
		f, err := decodeFrame(raw)
		if err != nil {
			return nil, fmt.Errorf("frame stream line %d: %w", r.line, err)
		}
		if f.Index < r.next {
			return nil, fmt.Errorf("frame stream line %d: frame %d after frame %d: %w",
				r.line, f.Index, r.next-1, ErrOutOfOrder)
		}
		r.pending = f
	}

	if r.pending.Index > r.next {
		gap := &match.Frame{Index: r.next}
		r.next++
		return gap, nil
	}
	f := r.pending
	r.pending = nil
	r.next++
	return f, nil
}

// ReadAll drains r into memory.
func ReadAll(r io.Reader) (Header, []match.Frame, error) {
	rd, err := NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	var frames []match.Frame
	for {
		f, err := rd.Next()
		if err == io.EOF {
			return rd.Header(), frames, nil
		}
		if err != nil {
			return rd.Header(), frames, err
		}
		frames = append(frames, *f)
	}
}

// ReadFile opens and drains a frame stream file.
func ReadFile(path string) (Header, []match.Frame, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open frame stream: %w", err)
	}
	defer f.Close()
	return ReadAll(f)
}

// nextLine returns the next non-blank line.
func (r *Reader) nextLine() ([]byte, error) {
	for r.sc.Scan() {
		r.line++
		raw := bytes.TrimSpace(r.sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		return raw, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, fmt.Errorf("frame stream line %d: %w", r.line+1, err)
	}
	return nil, io.EOF
}

func decodeFrame(raw []byte) (*match.Frame, error) {
	var rec frameRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, err
	}
	if rec.Frame < 0 {
		return nil, fmt.Errorf("negative frame index %d", rec.Frame)
	}

	f := &match.Frame{Index: rec.Frame}
	if rec.Camera != nil {
		f.Camera = match.Displacement{DX: rec.Camera.DX, DY: rec.Camera.DY}
	}

	for _, o := range rec.Objects {
		obj := match.TrackedObject{
			TrackID:    o.ID,
			BBox:       match.BBox{X1: o.BBox[0], Y1: o.BBox[1], X2: o.BBox[2], Y2: o.BBox[3]},
			Goalkeeper: o.Goalkeeper,
		}
		switch o.Class {
		case "player":
			obj.Class = match.ClassPlayer
		case "goalkeeper":
			obj.Class = match.ClassPlayer
			obj.Goalkeeper = true
		case "referee":
			obj.Class = match.ClassReferee
		case "ball":
			obj.Class = match.ClassBall
		default:
			return nil, fmt.Errorf("frame %d: object %d: unknown class %q", rec.Frame, o.ID, o.Class)
		}
		if obj.BBox.X2 < obj.BBox.X1 || obj.BBox.Y2 < obj.BBox.Y1 {
			return nil, fmt.Errorf("frame %d: object %d: inverted bbox %v", rec.Frame, o.ID, o.BBox)
		}
		if o.Appearance != nil {
			c := match.RGB(*o.Appearance)
			obj.Appearance = &c
		}
		f.Objects = append(f.Objects, obj)
	}

	for _, kp := range rec.Keypoints {
		f.Keypoints = append(f.Keypoints, match.Keypoint{
			Image:      match.Point{X: kp.X, Y: kp.Y},
			Confidence: kp.Conf,
		})
	}
	return f, nil
}
