package quality

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

func makeFrame(idx int, conf float64) landmark.Frame {
	kps := make([]*landmark.Keypoint, landmark.KeypointCount)
	for i := range kps {
		kps[i] = &landmark.Keypoint{X: 0.5, Y: 0.5, Confidence: conf}
	}
	return landmark.Frame{Index: idx, Keypoints: kps}
}

func makeSequence(total int, detected ...int) *landmark.Sequence {
	on := map[int]bool{}
	for _, d := range detected {
		on[d] = true
	}
	seq := &landmark.Sequence{Video: landmark.VideoInfo{FPS: 30, TotalFrames: total}}
	for i := 0; i < total; i++ {
		if on[i] {
			seq.Frames = append(seq.Frames, makeFrame(i, 0.95))
		} else {
			seq.Frames = append(seq.Frames, landmark.Frame{Index: i})
		}
	}
	return seq
}

func hasCode(ws []Warning, code string) bool {
	for _, w := range ws {
		if w.Code == code {
			return true
		}
	}
	return false
}

func TestGateExcellent(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(10, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)

	a, ws := g.Assess(seq, "abc", nil, NewSessionRand(42))

	if a.Band != BandExcellent {
		t.Fatalf("expected excellent, got %s", a.Band)
	}
	if a.DetectionRate != 1 {
		t.Fatalf("expected detection rate 1, got %f", a.DetectionRate)
	}
	if len(ws) != 0 {
		t.Fatalf("expected no warnings, got %+v", ws)
	}
	if a.ReferenceFrame == nil {
		t.Fatal("expected a reference frame")
	}
}

func TestGateHalfDetectedIsPoor(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(10, 0, 1, 2, 3, 4)

	a, ws := g.Assess(seq, "abc", nil, NewSessionRand(42))

	if a.DetectionRate != 0.5 {
		t.Fatalf("expected detection rate 0.5, got %f", a.DetectionRate)
	}
	if a.Band != BandPoor {
		t.Fatalf("expected poor, got %s", a.Band)
	}
	if !hasCode(ws, CodeLowDetection) {
		t.Error("expected low detection warning")
	}
	if !hasCode(ws, CodeFrameGap) {
		t.Error("expected frame gap warning for frames 5-9")
	}
	if len(a.Gaps) != 1 || a.Gaps[0] != (Gap{Start: 5, Length: 5}) {
		t.Errorf("unexpected gaps %+v", a.Gaps)
	}
}

func TestGateNoPoseIsInsufficient(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(5)

	a, ws := g.Assess(seq, "abc", nil, NewSessionRand(1))

	if a.Band != BandInsufficient {
		t.Fatalf("expected insufficient_data, got %s", a.Band)
	}
	if a.ReferenceFrame != nil {
		t.Error("no reference frame without detections")
	}
	if !hasCode(ws, CodeInsufficientData) {
		t.Error("expected insufficient_data warning")
	}
}

func TestGateGapWithinTolerance(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	// frames 3,4,5 missing: a run of 3 equals the tolerance
	seq := makeSequence(10, 0, 1, 2, 6, 7, 8, 9)

	a, ws := g.Assess(seq, "abc", nil, NewSessionRand(1))
	if len(a.Gaps) != 0 || hasCode(ws, CodeFrameGap) {
		t.Fatalf("run equal to tolerance should not warn: %+v", a.Gaps)
	}
}

func TestGateIndexJumpCountsAsGap(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := &landmark.Sequence{Frames: []landmark.Frame{makeFrame(0, 1), makeFrame(10, 1)}}

	a, _ := g.Assess(seq, "abc", nil, NewSessionRand(1))
	if a.ExpectedFrames != 11 {
		t.Fatalf("expected 11 frames from span, got %d", a.ExpectedFrames)
	}
	if len(a.Gaps) != 1 || a.Gaps[0].Start != 1 || a.Gaps[0].Length != 9 {
		t.Errorf("unexpected gaps %+v", a.Gaps)
	}
}

func TestGateLargeFrameIndexIsCheap(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := &landmark.Sequence{Frames: []landmark.Frame{makeFrame(0, 1), makeFrame(400_000_000, 1)}}
	if err := seq.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	start := time.Now()
	a, _ := g.Assess(seq, "abc", nil, NewSessionRand(1))
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("assess took %v for two frames", elapsed)
	}
	if a.ExpectedFrames != 400_000_001 {
		t.Errorf("expected span of 400000001 frames, got %d", a.ExpectedFrames)
	}
	if len(a.Gaps) != 1 || a.Gaps[0] != (Gap{Start: 1, Length: 399_999_999}) {
		t.Errorf("unexpected gaps %+v", a.Gaps)
	}
	if a.Band != BandInsufficient {
		t.Errorf("expected insufficient_data, got %s", a.Band)
	}
}

func TestGateTrailingGapUpToDeclaredTotal(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := &landmark.Sequence{
		Video:  landmark.VideoInfo{TotalFrames: 20},
		Frames: []landmark.Frame{makeFrame(0, 1), makeFrame(1, 1), {Index: 2}},
	}

	a, _ := g.Assess(seq, "abc", nil, NewSessionRand(1))
	if len(a.Gaps) != 1 || a.Gaps[0] != (Gap{Start: 2, Length: 18}) {
		t.Errorf("unexpected gaps %+v", a.Gaps)
	}
}

func TestGateDeclaredTotalBelowSpan(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(10, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	seq.Video.TotalFrames = 2

	a, _ := g.Assess(seq, "abc", nil, NewSessionRand(1))
	if a.ExpectedFrames != 10 {
		t.Fatalf("expected frames clamped to span 10, got %d", a.ExpectedFrames)
	}
	if a.DetectionRate != 1 {
		t.Errorf("detection rate must not exceed 1, got %f", a.DetectionRate)
	}
}

func TestGateLowConfidenceKeypoint(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(4, 0, 1, 2, 3)
	knee, _ := landmark.Index(landmark.LeftKnee)
	for i := range seq.Frames {
		seq.Frames[i].Keypoints[knee].Confidence = 0.3
	}

	a, ws := g.Assess(seq, "abc", []landmark.Name{landmark.LeftHip, landmark.LeftKnee}, NewSessionRand(1))

	if len(a.LowConfidence) != 1 || a.LowConfidence[0].Keypoint != landmark.LeftKnee {
		t.Fatalf("expected left_knee flagged, got %+v", a.LowConfidence)
	}
	found := false
	for _, w := range ws {
		if w.Code == CodeLowConfidence && w.Keypoint == landmark.LeftKnee {
			found = true
		}
	}
	if !found {
		t.Error("expected keypoint warning for left_knee")
	}
	// one of two keypoints low is over the 30% share
	if a.LowConfidenceFrames != 4 {
		t.Errorf("expected 4 low-visibility frames, got %d", a.LowConfidenceFrames)
	}
	if math.Abs(a.MeanConfidence-0.625) > 1e-9 {
		t.Errorf("expected mean confidence 0.625, got %f", a.MeanConfidence)
	}
}

func TestGateRestrictsToRequiredKeypoints(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(2, 0, 1)
	nose, _ := landmark.Index(landmark.Nose)
	for i := range seq.Frames {
		seq.Frames[i].Keypoints[nose] = nil
	}

	a, _ := g.Assess(seq, "abc", []landmark.Name{landmark.LeftHip, landmark.RightHip}, NewSessionRand(1))
	if len(a.LowConfidence) != 0 {
		t.Fatalf("nose is not required, got %+v", a.LowConfidence)
	}
}

func TestGateWarningsAreAnonymized(t *testing.T) {
	ref := "/home/athlete/videos/single_leg_squat/jane_doe.mp4"
	id := AnonymizeRef(ref)
	g := NewGate(DefaultGateConfig())
	_, ws := g.Assess(makeSequence(10, 0, 1), id, nil, NewSessionRand(1))
	if len(ws) == 0 {
		t.Fatal("expected warnings")
	}
	for _, w := range ws {
		if w.Video != id {
			t.Errorf("expected video id %s, got %s", id, w.Video)
		}
		if strings.Contains(w.Message, "jane") || strings.Contains(w.Message, "/") {
			t.Errorf("warning leaks reference: %s", w.Message)
		}
	}
}

func TestReferenceFrameSeeded(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(20, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19)

	a1, _ := g.Assess(seq, "abc", nil, NewSessionRand(7))
	a2, _ := g.Assess(seq, "abc", nil, NewSessionRand(7))
	if *a1.ReferenceFrame != *a2.ReferenceFrame {
		t.Fatalf("same seed chose %d and %d", *a1.ReferenceFrame, *a2.ReferenceFrame)
	}
}

func TestReferenceFrameHighestConfidence(t *testing.T) {
	g := NewGate(DefaultGateConfig())
	seq := makeSequence(3, 0, 1, 2)
	seq.Frames[1] = makeFrame(1, 0.99)

	a, _ := g.Assess(seq, "abc", nil, NewSessionRand(7))
	if *a.ReferenceFrame != 1 {
		t.Fatalf("expected frame 1, got %d", *a.ReferenceFrame)
	}
}

func TestExpectedFrames(t *testing.T) {
	seq := &landmark.Sequence{Video: landmark.VideoInfo{FPS: 30, Duration: 2}, Frames: []landmark.Frame{{Index: 0}}}
	if got := ExpectedFrames(seq); got != 60 {
		t.Errorf("expected 60 from fps*duration, got %d", got)
	}
	seq.Video = landmark.VideoInfo{}
	seq.Frames = []landmark.Frame{{Index: 0}, {Index: 7}}
	if got := ExpectedFrames(seq); got != 8 {
		t.Errorf("expected 8 from span, got %d", got)
	}
}

func TestExpectedFramesBounded(t *testing.T) {
	seq := &landmark.Sequence{Video: landmark.VideoInfo{FPS: 1e300, Duration: 1e300}, Frames: []landmark.Frame{{Index: 0}}}
	if got := ExpectedFrames(seq); got != landmark.MaxFrames {
		t.Errorf("expected %d, got %d", landmark.MaxFrames, got)
	}
}

func TestAnonymizeRef(t *testing.T) {
	a := AnonymizeRef("videos/cross_step/x.mp4")
	if len(a) != 12 {
		t.Fatalf("expected 12 hex chars, got %q", a)
	}
	if a != AnonymizeRef("videos/cross_step/x.mp4") {
		t.Error("short id must be stable")
	}
	if a == AnonymizeRef("videos/cross_step/y.mp4") {
		t.Error("different refs should differ")
	}
	if AnonymizeRef("") != "unknown" {
		t.Error("empty ref should be unknown")
	}
}

func TestGateConfigFrom(t *testing.T) {
	cfg := config.Default()
	cfg.ConfidenceMin = 0.5
	cfg.FrameSkipTolerance = 10
	gc := GateConfigFrom(cfg)
	if gc.ConfidenceMin != 0.5 || gc.FrameSkipTolerance != 10 {
		t.Fatalf("thresholds not taken from config: %+v", gc)
	}
	if gc.LowVisibilityShare != 0.3 || gc.LowVisibilityFrames != 0.2 {
		t.Errorf("expected shipped low visibility thresholds, got %+v", gc)
	}

	cfg.LowVisibilityShare = optional.Some(0.5)
	cfg.LowVisibilityFrames = optional.None()
	gc = GateConfigFrom(cfg)
	if gc.LowVisibilityShare != 0.5 {
		t.Errorf("expected low visibility share from config, got %f", gc.LowVisibilityShare)
	}
	if gc.LowVisibilityFrames != DefaultGateConfig().LowVisibilityFrames {
		t.Errorf("absent key should keep the default, got %f", gc.LowVisibilityFrames)
	}
}

func TestSummarize(t *testing.T) {
	ws := []Warning{
		{Level: LevelWarning, Code: CodeFrameGap},
		{Level: LevelWarning, Code: CodeFrameGap},
		{Level: LevelError, Code: CodeInsufficientData},
	}
	s := Summarize(ws)
	if s.Total != 3 || s.ByLevel[LevelWarning] != 2 || s.ByLevel[LevelError] != 1 || s.ByLevel[LevelInfo] != 0 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if s.ByCode[CodeFrameGap] != 2 {
		t.Errorf("expected 2 frame gaps, got %d", s.ByCode[CodeFrameGap])
	}
}
