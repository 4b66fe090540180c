package quality

import (
	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
)

// #region band
// Band classifies how usable a sequence is, best first.
type Band string

const (
	BandExcellent    Band = "excellent"
	BandGood         Band = "good"
	BandPoor         Band = "poor"
	BandInsufficient Band = "insufficient_data"
)

// #endregion band

// #region warning
// Level is the severity of a warning.
type Level string

const (
	LevelInfo    Level = "INFO"
	LevelWarning Level = "WARNING"
	LevelError   Level = "ERROR"
)

// Warning codes.
const (
	CodeLowDetection        = "low_detection_rate"
	CodeInsufficientData    = "insufficient_data"
	CodeLowConfidence       = "low_keypoint_confidence"
	CodeLowVisibilityFrames = "low_visibility_frames"
	CodeFrameGap            = "frame_gap"
)

// Warning is a non-fatal, anonymized data-quality diagnostic. Video is the
// short id from AnonymizeRef, never a path.
type Warning struct {
	Level    Level              `json:"level"`
	Code     string             `json:"code"`
	Message  string             `json:"message"`
	Video    string             `json:"video"`
	Keypoint landmark.Name      `json:"keypoint,omitempty"`
	Details  map[string]float64 `json:"details,omitempty"`
}

// #endregion warning

// #region gate-config
// GateConfig holds the thresholds for quality assessment.
type GateConfig struct {
	ConfidenceMin       float64 // per-keypoint mean confidence floor
	FrameSkipTolerance  int     // longest tolerated run of missing frames
	LowVisibilityShare  float64 // share of low keypoints that makes a frame low-visibility
	LowVisibilityFrames float64 // share of low-visibility frames that triggers a warning
	Bands               config.QualityBands
}

// DefaultGateConfig returns the shipped thresholds.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		ConfidenceMin:       0.7,
		FrameSkipTolerance:  3,
		LowVisibilityShare:  0.3,
		LowVisibilityFrames: 0.2,
		Bands:               config.DefaultQualityBands(),
	}
}

// GateConfigFrom takes the thresholds from a scoring document.
func GateConfigFrom(cfg *config.Config) GateConfig {
	gc := DefaultGateConfig()
	gc.ConfidenceMin = cfg.ConfidenceMin
	gc.FrameSkipTolerance = cfg.FrameSkipTolerance
	gc.Bands = cfg.QualityBands
	if v, ok := cfg.LowVisibilityShare.Get(); ok {
		gc.LowVisibilityShare = v
	}
	if v, ok := cfg.LowVisibilityFrames.Get(); ok {
		gc.LowVisibilityFrames = v
	}
	return gc
}

// #endregion gate-config

// #region assessment
// KeypointConfidence is the mean confidence of one keypoint across detected
// frames, counting absent entries as 0.
type KeypointConfidence struct {
	Keypoint landmark.Name `json:"keypoint"`
	Mean     float64       `json:"mean"`
}

// Gap is a run of consecutive frames without a detected pose.
type Gap struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Assessment is the gate's classification of a sequence.
type Assessment struct {
	Band                Band                 `json:"band"`
	ExpectedFrames      int                  `json:"expected_frames"`
	DetectedFrames      int                  `json:"detected_frames"`
	DetectionRate       float64              `json:"detection_rate"`
	MeanConfidence      float64              `json:"mean_confidence"`
	LowConfidence       []KeypointConfidence `json:"low_confidence,omitempty"`
	LowConfidenceFrames int                  `json:"low_confidence_frames"`
	Gaps                []Gap                `json:"gaps,omitempty"`
	ReferenceFrame      *int                 `json:"reference_frame,omitempty"`
}

// #endregion assessment

// #region summary
// Summary counts warnings by level and by code.
type Summary struct {
	Total   int            `json:"total"`
	ByLevel map[Level]int  `json:"by_level"`
	ByCode  map[string]int `json:"by_code"`
}

// #endregion summary
