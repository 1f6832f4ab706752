package l4possession

// EmitMode selects when a StreakFilter releases frames.
type EmitMode int

const (
	// EmitOnRunEnd buffers a run until it ends and then releases all of its
	// frames, keyed if the run reached the threshold and null otherwise.
	EmitOnRunEnd EmitMode = iota
	// EmitOnConfirm releases every frame immediately; a frame is keyed once
	// the run it belongs to has reached the threshold.
	EmitOnConfirm
)

func (m EmitMode) String() string {
	switch m {
	case EmitOnRunEnd:
		return "run-end"
	case EmitOnConfirm:
		return "confirm"
	default:
		return "unknown"
	}
}

// Entry is one frame of a keyed stream. Valid=false is the null key; a
// null entry carries a zero payload.
type Entry[K comparable, P any] struct {
	Frame   int
	Key     K
	Valid   bool
	Payload P
}

// Null returns the null entry for frame.
func Null[K comparable, P any](frame int) Entry[K, P] {
	return Entry[K, P]{Frame: frame}
}

// StreakFilter suppresses keys that do not persist for a minimum number of
// consecutive frames. Exactly one entry is released per pushed entry, in
// push order. Not safe for concurrent use.
type StreakFilter[K comparable, P any] struct {
	threshold int
	mode      EmitMode

	run    []Entry[K, P] // EmitOnRunEnd: buffered current run
	runKey K
	runOn  bool // current run is keyed (not a null run)
	runLen int
}

// NewStreakFilter returns a filter with minimum run length threshold
// (values below 1 are treated as 1).
func NewStreakFilter[K comparable, P any](threshold int, mode EmitMode) *StreakFilter[K, P] {
	if threshold < 1 {
		threshold = 1
	}
	return &StreakFilter[K, P]{threshold: threshold, mode: mode}
}

// Threshold returns the minimum run length.
func (s *StreakFilter[K, P]) Threshold() int { return s.threshold }

// Push feeds the next frame and returns the entries released by it.
// EmitOnConfirm always returns exactly one entry; EmitOnRunEnd returns the
// previous run when e starts a new one, and nothing otherwise.
func (s *StreakFilter[K, P]) Push(e Entry[K, P]) []Entry[K, P] {
	continues := s.runLen > 0 && e.Valid == s.runOn && (!e.Valid || e.Key == s.runKey)

	if s.mode == EmitOnConfirm {
		if continues {
			s.runLen++
		} else {
			s.runKey, s.runOn, s.runLen = e.Key, e.Valid, 1
		}
		if e.Valid && s.runLen >= s.threshold {
			return []Entry[K, P]{e}
		}
		return []Entry[K, P]{Null[K, P](e.Frame)}
	}

	var out []Entry[K, P]
	if !continues {
		out = s.release()
		s.runKey, s.runOn = e.Key, e.Valid
	}
	s.run = append(s.run, e)
	s.runLen = len(s.run)
	return out
}

// Flush releases any buffered run and resets the filter.
func (s *StreakFilter[K, P]) Flush() []Entry[K, P] {
	out := s.release()
	var zero K
	s.runKey, s.runOn, s.runLen = zero, false, 0
	return out
}

func (s *StreakFilter[K, P]) release() []Entry[K, P] {
	if len(s.run) == 0 {
		return nil
	}
	out := make([]Entry[K, P], len(s.run))
	keep := s.runOn && len(s.run) >= s.threshold
	for i, e := range s.run {
		if keep {
			out[i] = e
		} else {
			out[i] = Null[K, P](e.Frame)
		}
	}
	s.run = s.run[:0]
	return out
}

// Debounce runs a fresh filter over entries and returns one output per input.
func Debounce[K comparable, P any](entries []Entry[K, P], threshold int, mode EmitMode) []Entry[K, P] {
	f := NewStreakFilter[K, P](threshold, mode)
	out := make([]Entry[K, P], 0, len(entries))
	for _, e := range entries {
		out = append(out, f.Push(e)...)
	}
	return append(out, f.Flush()...)
}
