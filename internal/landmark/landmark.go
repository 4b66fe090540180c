package landmark

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// #region input-error
// InputError reports an empty or structurally malformed sequence. It is fatal
// for the unit of work and distinct from a data-poor but valid sequence.
type InputError struct {
	Frame  int // frame index, -1 when the problem is sequence-wide
	Reason string
}

func (e *InputError) Error() string {
	if e.Frame < 0 {
		return fmt.Sprintf("input error: %s", e.Reason)
	}
	return fmt.Sprintf("input error: frame %d: %s", e.Frame, e.Reason)
}

// #endregion input-error

// #region validate
// MaxFrames bounds the frame count a video may declare.
const MaxFrames = 1 << 30

// Validate checks the structural invariants of the sequence. Missing poses and
// low confidence are not structural problems and pass validation.
func (s *Sequence) Validate() error {
	if s == nil || len(s.Frames) == 0 {
		return &InputError{Frame: -1, Reason: "sequence has no frames"}
	}
	v := s.Video
	if badFloat(v.FPS) || badFloat(v.Duration) {
		return &InputError{Frame: -1, Reason: "video info must be finite"}
	}
	if v.FPS < 0 || v.TotalFrames < 0 || v.Duration < 0 {
		return &InputError{Frame: -1, Reason: "video info must not be negative"}
	}
	if v.TotalFrames > MaxFrames || v.FPS*v.Duration > MaxFrames {
		return &InputError{Frame: -1, Reason: fmt.Sprintf("video info declares more than %d frames", MaxFrames)}
	}

	prev := -1
	for i, f := range s.Frames {
		if f.Index < 0 {
			return &InputError{Frame: f.Index, Reason: "negative frame index"}
		}
		if i > 0 && f.Index <= prev {
			return &InputError{Frame: f.Index, Reason: fmt.Sprintf("frame index not increasing (previous %d)", prev)}
		}
		prev = f.Index

		if len(f.Keypoints) > KeypointCount {
			return &InputError{Frame: f.Index, Reason: fmt.Sprintf("keypoint index %d outside %d-point scheme", len(f.Keypoints)-1, KeypointCount)}
		}
		for k, kp := range f.Keypoints {
			if kp == nil {
				continue
			}
			if badFloat(kp.X) || badFloat(kp.Y) || (kp.Z != nil && badFloat(*kp.Z)) {
				return &InputError{Frame: f.Index, Reason: fmt.Sprintf("keypoint %s has non-finite coordinates", Scheme[k])}
			}
			if badFloat(kp.Confidence) || kp.Confidence < 0 || kp.Confidence > 1 {
				return &InputError{Frame: f.Index, Reason: fmt.Sprintf("keypoint %s confidence %.3f outside [0,1]", Scheme[k], kp.Confidence)}
			}
		}
	}
	return nil
}

func badFloat(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// #endregion validate

// #region lookup
// Lookup returns the keypoint n of f when it is present and its confidence is
// at or above floor.
func Lookup(f Frame, n Name, floor float64) (Keypoint, bool) {
	i, ok := Index(n)
	if !ok || i >= len(f.Keypoints) {
		return Keypoint{}, false
	}
	kp := f.Keypoints[i]
	if kp == nil || kp.Confidence < floor {
		return Keypoint{}, false
	}
	return *kp, true
}

// LookupAll resolves every name in ns, failing if any one is unusable.
func LookupAll(f Frame, ns []Name, floor float64) ([]Keypoint, bool) {
	out := make([]Keypoint, len(ns))
	for i, n := range ns {
		kp, ok := Lookup(f, n, floor)
		if !ok {
			return nil, false
		}
		out[i] = kp
	}
	return out, true
}

// #endregion lookup

// #region load
// LoadSequence reads a JSON landmark sequence from disk.
func LoadSequence(path string) (*Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequence: %w", err)
	}
	var s Sequence
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &InputError{Frame: -1, Reason: fmt.Sprintf("parse sequence: %v", err)}
	}
	return &s, nil
}

// #endregion load
