package landmark

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func fullFrame(idx int, conf float64) Frame {
	kps := make([]*Keypoint, KeypointCount)
	for i := range kps {
		kps[i] = &Keypoint{X: 0.5, Y: 0.5, Confidence: conf}
	}
	return Frame{Index: idx, Keypoints: kps}
}

func TestSchemeIndices(t *testing.T) {
	cases := map[Name]int{
		LeftShoulder: 11, RightShoulder: 12,
		LeftHip: 23, RightHip: 24,
		LeftKnee: 25, RightKnee: 26,
		LeftAnkle: 27, RightAnkle: 28,
	}
	for n, want := range cases {
		got, ok := Index(n)
		if !ok || got != want {
			t.Errorf("%s: expected %d, got %d (ok=%v)", n, want, got, ok)
		}
	}
	if _, ok := Index("tail"); ok {
		t.Error("unknown name should not resolve")
	}
}

func TestValidateEmptySequence(t *testing.T) {
	var s Sequence
	err := s.Validate()
	var inErr *InputError
	if !errors.As(err, &inErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
}

func TestValidateNonIncreasingIndex(t *testing.T) {
	s := Sequence{Frames: []Frame{fullFrame(3, 1), fullFrame(3, 1)}}
	var inErr *InputError
	if !errors.As(s.Validate(), &inErr) {
		t.Fatal("expected InputError for repeated index")
	}
	if inErr.Frame != 3 {
		t.Errorf("expected frame 3 in error, got %d", inErr.Frame)
	}
}

func TestValidateVideoInfoBounds(t *testing.T) {
	cases := map[string]VideoInfo{
		"huge fps*duration": {FPS: 1e300, Duration: 1e300},
		"huge frame count":  {TotalFrames: MaxFrames + 1},
		"infinite fps":      {FPS: math.Inf(1)},
		"negative duration": {Duration: -1},
	}
	for name, v := range cases {
		s := Sequence{Video: v, Frames: []Frame{fullFrame(0, 1)}}
		var inErr *InputError
		if !errors.As(s.Validate(), &inErr) {
			t.Errorf("%s: expected InputError", name)
		}
	}

	ok := Sequence{Video: VideoInfo{FPS: 30, Duration: 10, TotalFrames: 300}, Frames: []Frame{fullFrame(0, 1)}}
	if err := ok.Validate(); err != nil {
		t.Errorf("plausible video info rejected: %v", err)
	}
}

func TestValidateTooManyKeypoints(t *testing.T) {
	f := fullFrame(0, 1)
	f.Keypoints = append(f.Keypoints, &Keypoint{})
	s := Sequence{Frames: []Frame{f}}
	var inErr *InputError
	if !errors.As(s.Validate(), &inErr) {
		t.Fatal("expected InputError for keypoint outside scheme")
	}
}

func TestValidateBadConfidenceAndCoordinates(t *testing.T) {
	f := fullFrame(0, 1)
	f.Keypoints[5].Confidence = 1.5
	s := Sequence{Frames: []Frame{f}}
	if s.Validate() == nil {
		t.Error("expected error for confidence > 1")
	}

	g := fullFrame(0, 1)
	g.Keypoints[5].X = math.NaN()
	s = Sequence{Frames: []Frame{g}}
	if s.Validate() == nil {
		t.Error("expected error for NaN coordinate")
	}
}

func TestValidateAcceptsSparseAndUndetected(t *testing.T) {
	s := Sequence{Frames: []Frame{
		fullFrame(0, 0.1),
		{Index: 4},
		fullFrame(9, 1),
	}}
	if err := s.Validate(); err != nil {
		t.Fatalf("sparse sequence should validate: %v", err)
	}
	if s.Frames[1].Detected() {
		t.Error("empty frame should not count as detected")
	}
}

func TestLookupAppliesFloor(t *testing.T) {
	f := fullFrame(0, 0.6)
	if _, ok := Lookup(f, LeftHip, 0.7); ok {
		t.Error("keypoint below floor should be unusable")
	}
	if _, ok := Lookup(f, LeftHip, 0.6); !ok {
		t.Error("keypoint at floor should be usable")
	}

	f.Keypoints[23] = nil
	if _, ok := Lookup(f, LeftHip, 0); ok {
		t.Error("nil keypoint should be unusable")
	}

	short := Frame{Keypoints: []*Keypoint{{Confidence: 1}}}
	if _, ok := Lookup(short, RightAnkle, 0); ok {
		t.Error("index beyond frame width should be unusable")
	}
}

func TestLookupAll(t *testing.T) {
	f := fullFrame(0, 1)
	f.Keypoints[25] = nil
	if _, ok := LookupAll(f, []Name{LeftHip, LeftKnee}, 0.5); ok {
		t.Error("expected failure when one keypoint missing")
	}
	kps, ok := LookupAll(f, []Name{LeftHip, RightHip}, 0.5)
	if !ok || len(kps) != 2 {
		t.Fatal("expected both keypoints")
	}
}

func TestLoadSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seq.json")
	doc := `{"video":{"fps":30,"frame_count":2,"duration":0.066},
		"frames":[{"frame":0,"timestamp":0,"landmarks":[{"x":0.1,"y":0.2,"confidence":0.9},null]},
		          {"frame":1,"timestamp":0.033,"landmarks":[]}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadSequence(path)
	if err != nil {
		t.Fatalf("LoadSequence: %v", err)
	}
	if len(s.Frames) != 2 || s.Video.TotalFrames != 2 {
		t.Fatalf("unexpected sequence %+v", s)
	}
	if s.Frames[0].Keypoints[1] != nil {
		t.Error("null landmark should decode as absent")
	}
	if s.Frames[1].Detected() {
		t.Error("frame without landmarks should be undetected")
	}
}

func TestLoadSequenceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	_, err := LoadSequence(path)
	var inErr *InputError
	if !errors.As(err, &inErr) {
		t.Fatalf("expected InputError, got %v", err)
	}
}
