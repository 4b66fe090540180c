package config

import (
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region enums
// MeasureKind selects how a metric's per-frame raw value is computed.
type MeasureKind string

const (
	MeasureAngle    MeasureKind = "angle"    // angle at the middle keypoint, degrees
	MeasureDistance MeasureKind = "distance" // distance between two keypoints
	MeasurePosition MeasureKind = "position" // coordinate of the keypoints' midpoint
)

// Axis restricts a distance or position to one image axis.
type Axis string

const (
	AxisXY Axis = "xy"
	AxisX  Axis = "x"
	AxisY  Axis = "y"
)

// Combine merges the left and right side values of a bilateral measure.
type Combine string

const (
	CombineMin     Combine = "min"
	CombineMax     Combine = "max"
	CombineMean    Combine = "mean"
	CombineAbsDiff Combine = "absdiff"
)

// Policy reduces per-frame values to one representative value.
type Policy string

const (
	PolicyMin      Policy = "min"
	PolicyMax      Policy = "max"
	PolicyMean     Policy = "mean"
	PolicyRange    Policy = "range"
	PolicyKeyFrame Policy = "key_frame"
)

// Reference names a body-scale distance used to normalize a metric.
type Reference string

const (
	RefNone          Reference = ""
	RefShoulderWidth Reference = "shoulder_width"
	RefPelvisWidth   Reference = "pelvis_width"
	RefLegLength     Reference = "leg_length"
	RefBaseWidth     Reference = "base_width"
)

// Direction tells the scorer which side of a cutpoint is better.
type Direction string

const (
	HigherIsBetter Direction = "higher_is_better"
	LowerIsBetter  Direction = "lower_is_better"
)

// #endregion enums

// #region metric-config
// MeasureConfig describes the keypoints a metric reads. Left is required;
// Right, when set, makes the measure bilateral and Combine merges the sides.
type MeasureConfig struct {
	Kind    MeasureKind     `json:"kind"`
	Axis    Axis            `json:"axis,omitempty"`
	Left    []landmark.Name `json:"left"`
	Right   []landmark.Name `json:"right,omitempty"`
	Combine Combine         `json:"combine,omitempty"`
}

// KeyFrameConfig designates the key frame as the extremum of a position signal.
type KeyFrameConfig struct {
	Keypoints []landmark.Name `json:"keypoints"`
	Axis      Axis            `json:"axis"`
	Extremum  string          `json:"extremum"` // "min" | "max"
}

// SelectionConfig is the frame-selection policy of a metric.
type SelectionConfig struct {
	Policy   Policy          `json:"policy"`
	KeyFrame *KeyFrameConfig `json:"key_frame,omitempty"`
}

// MetricConfig fully describes one scored metric.
// Cutpoints are ordered [score 3, score 2, score 1] and already include the
// measurement noise margin.
type MetricConfig struct {
	Name      string          `json:"name"`
	Measure   MeasureConfig   `json:"measure"`
	Selection SelectionConfig `json:"selection"`
	Reference Reference       `json:"reference,omitempty"`
	Direction Direction       `json:"direction"`
	Cutpoints []float64       `json:"cutpoints"`
	Unit      string          `json:"unit,omitempty"`
}

// TestConfig is the per-test-type evaluator configuration.
type TestConfig struct {
	Description string         `json:"description,omitempty"`
	Metrics     []MetricConfig `json:"metrics"`
}

// #endregion metric-config

// #region quality-config
// BandCutoff is the minimum detection rate and mean confidence for a band.
type BandCutoff struct {
	DetectionRate  float64 `json:"detection_rate"`
	MeanConfidence float64 `json:"mean_confidence"`
}

// QualityBands holds the quality band cutoffs. Sequences that meet neither
// Excellent nor Good are poor, and below InsufficientBelow they are
// insufficient_data.
type QualityBands struct {
	Excellent         BandCutoff `json:"excellent"`
	Good              BandCutoff `json:"good"`
	InsufficientBelow float64    `json:"insufficient_below"`
}

// #endregion quality-config

// #region config
// Config is the scoring document. It is built once and shared read-only.
type Config struct {
	ConfidenceMin      float64               `json:"confidence_min"`
	FrameSkipTolerance int                   `json:"frame_skip_tolerance"`
	RandomSeed         int64                 `json:"random_seed"`
	QualityBands       QualityBands          `json:"quality_bands"`
	Tests              map[string]TestConfig `json:"tests"`

	// Optional; the gate falls back to its defaults when absent.
	LowVisibilityShare  optional.Float `json:"low_visibility_share"`  // low keypoints that make a frame low-visibility
	LowVisibilityFrames optional.Float `json:"low_visibility_frames"` // low-visibility frames that trigger a warning
}

// #endregion config
