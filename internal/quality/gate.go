package quality

import (
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"math/rand/v2"

	"golang.org/x/crypto/blake2b"

	"github.com/danielpatrickdp/motion-scan/internal/landmark"
)

// #region gate
// Gate assesses whether a landmark sequence is fit for evaluation. It never
// fails on poor data; problems come back as warnings.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Assess classifies seq. video is the short id stamped on warnings, keypoints
// restricts the confidence checks (all 33 when empty), and rng breaks ties
// when choosing the reference frame.
func (g *Gate) Assess(seq *landmark.Sequence, video string, keypoints []landmark.Name, rng *rand.Rand) (Assessment, []Warning) {
	if len(keypoints) == 0 {
		keypoints = landmark.Scheme[:]
	}
	idx := make([]int, 0, len(keypoints))
	for _, n := range keypoints {
		if i, ok := landmark.Index(n); ok {
			idx = append(idx, i)
		}
	}

	var a Assessment
	var warnings []Warning
	warn := func(level Level, code string, keypoint landmark.Name, msg string, details map[string]float64) {
		warnings = append(warnings, Warning{
			Level: level, Code: code, Message: msg, Video: video,
			Keypoint: keypoint, Details: details,
		})
	}

	a.ExpectedFrames = ExpectedFrames(seq)

	// --- Per-frame pass ---
	sums := make([]float64, len(idx))
	bestConf := math.Inf(-1)
	var ties []int
	for _, f := range seq.Frames {
		if !f.Detected() {
			continue
		}
		a.DetectedFrames++

		var frameSum float64
		low := 0
		for j, i := range idx {
			c := confidenceAt(f, i)
			sums[j] += c
			frameSum += c
			if c < g.config.ConfidenceMin {
				low++
			}
		}
		if len(idx) > 0 && float64(low)/float64(len(idx)) > g.config.LowVisibilityShare {
			a.LowConfidenceFrames++
		}

		frameMean := frameSum / float64(max(len(idx), 1))
		switch {
		case frameMean > bestConf:
			bestConf = frameMean
			ties = append(ties[:0], f.Index)
		case frameMean == bestConf:
			ties = append(ties, f.Index)
		}
	}

	if a.ExpectedFrames > 0 {
		a.DetectionRate = float64(a.DetectedFrames) / float64(a.ExpectedFrames)
	}

	// --- Keypoint confidence ---
	if a.DetectedFrames > 0 {
		var total float64
		for j, i := range idx {
			mean := sums[j] / float64(a.DetectedFrames)
			total += mean
			if mean < g.config.ConfidenceMin {
				kc := KeypointConfidence{Keypoint: landmark.Scheme[i], Mean: mean}
				a.LowConfidence = append(a.LowConfidence, kc)
				warn(LevelWarning, CodeLowConfidence, kc.Keypoint,
					fmt.Sprintf("mean confidence %.3f below %.2f", mean, g.config.ConfidenceMin),
					map[string]float64{"mean_confidence": mean, "confidence_min": g.config.ConfidenceMin})
			}
		}
		if len(idx) > 0 {
			a.MeanConfidence = total / float64(len(idx))
		}
		pick := ties[0]
		if len(ties) > 1 && rng != nil {
			pick = ties[rng.IntN(len(ties))]
		}
		a.ReferenceFrame = &pick
	}

	// --- Frame gaps ---
	a.Gaps = findGaps(seq, a.ExpectedFrames, g.config.FrameSkipTolerance)
	for _, gap := range a.Gaps {
		warn(LevelWarning, CodeFrameGap, "",
			fmt.Sprintf("%d consecutive frames without pose from frame %d", gap.Length, gap.Start),
			map[string]float64{"start": float64(gap.Start), "length": float64(gap.Length),
				"tolerance": float64(g.config.FrameSkipTolerance)})
	}

	if a.DetectedFrames > 0 {
		share := float64(a.LowConfidenceFrames) / float64(a.DetectedFrames)
		if share >= g.config.LowVisibilityFrames {
			warn(LevelWarning, CodeLowVisibilityFrames, "",
				fmt.Sprintf("%d of %d detected frames have mostly low-confidence keypoints", a.LowConfidenceFrames, a.DetectedFrames),
				map[string]float64{"low_visibility_frames_ratio": share})
		}
	}

	// --- Band ---
	a.Band = g.band(a)
	details := map[string]float64{
		"detection_rate":  a.DetectionRate,
		"mean_confidence": a.MeanConfidence,
		"detected_frames": float64(a.DetectedFrames),
		"expected_frames": float64(a.ExpectedFrames),
	}
	switch a.Band {
	case BandInsufficient:
		warn(LevelError, CodeInsufficientData, "",
			"too few frames with a detected pose to evaluate reliably", details)
	case BandPoor:
		warn(LevelWarning, CodeLowDetection,
			"", fmt.Sprintf("poor landmark quality: detection rate %.2f, mean confidence %.2f", a.DetectionRate, a.MeanConfidence),
			details)
	}

	log.Printf("[GATE] video=%s band=%s detected=%d/%d rate=%.3f conf=%.3f warnings=%d",
		video, a.Band, a.DetectedFrames, a.ExpectedFrames, a.DetectionRate, a.MeanConfidence, len(warnings))

	return a, warnings
}

func (g *Gate) band(a Assessment) Band {
	b := g.config.Bands
	switch {
	case a.DetectedFrames == 0 || a.DetectionRate < b.InsufficientBelow:
		return BandInsufficient
	case a.DetectionRate >= b.Excellent.DetectionRate && a.MeanConfidence >= b.Excellent.MeanConfidence:
		return BandExcellent
	case a.DetectionRate >= b.Good.DetectionRate && a.MeanConfidence >= b.Good.MeanConfidence:
		return BandGood
	default:
		return BandPoor
	}
}

// #endregion gate

// #region helpers
// ExpectedFrames is the frame count the video should have produced: the
// declared total, else fps*duration, else what the sequence itself spans.
// It is never less than the span, so the detection rate stays within [0,1].
func ExpectedFrames(seq *landmark.Sequence) int {
	span := 0
	if n := len(seq.Frames); n > 0 {
		span = seq.Frames[n-1].Index + 1
	}

	v := seq.Video
	declared := 0
	switch {
	case v.TotalFrames > 0:
		declared = min(v.TotalFrames, landmark.MaxFrames)
	case v.FPS > 0 && v.Duration > 0:
		declared = int(math.Round(math.Min(v.FPS*v.Duration, landmark.MaxFrames)))
	}
	return max(declared, span)
}

// findGaps returns runs of missing frames longer than tolerance. A frame is
// missing when its index is absent from seq or it has no detected pose. Runs
// are measured between consecutive detected frames, so the cost follows the
// number of frames rather than their indices.
func findGaps(seq *landmark.Sequence, expected, tolerance int) []Gap {
	var gaps []Gap
	add := func(start, end int) {
		if run := end - start; run > tolerance {
			gaps = append(gaps, Gap{Start: start, Length: run})
		}
	}

	next := 0 // first index after the last detected frame
	for _, f := range seq.Frames {
		if !f.Detected() {
			continue
		}
		add(next, f.Index)
		next = f.Index + 1
	}
	add(next, expected)
	return gaps
}

func confidenceAt(f landmark.Frame, i int) float64 {
	if i >= len(f.Keypoints) || f.Keypoints[i] == nil {
		return 0
	}
	return f.Keypoints[i].Confidence
}

// AnonymizeRef derives the short video id used in warnings and logs. The
// caller's reference (often a path) never leaves this function.
func AnonymizeRef(ref string) string {
	if ref == "" {
		return "unknown"
	}
	sum := blake2b.Sum256([]byte(ref))
	return hex.EncodeToString(sum[:])[:12]
}

// NewSessionRand returns the per-call source for tie-breaking. Each unit of
// work builds its own so concurrent units never share random state.
func NewSessionRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// Summarize counts warnings by level and code.
func Summarize(warnings []Warning) Summary {
	s := Summary{
		Total:   len(warnings),
		ByLevel: map[Level]int{LevelInfo: 0, LevelWarning: 0, LevelError: 0},
		ByCode:  map[string]int{},
	}
	for _, w := range warnings {
		s.ByLevel[w.Level]++
		s.ByCode[w.Code]++
	}
	return s
}

// #endregion helpers
