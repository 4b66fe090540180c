package config

import (
	lm "github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region default
// Default returns the shipped scoring document: seven motion tests with
// cutpoints that already include a margin for detector noise.
func Default() *Config {
	return &Config{
		ConfidenceMin:       0.7,
		FrameSkipTolerance:  3,
		RandomSeed:          42,
		QualityBands:        DefaultQualityBands(),
		LowVisibilityShare:  optional.Some(0.3),
		LowVisibilityFrames: optional.Some(0.2),
		Tests: map[string]TestConfig{
			"single_leg_squat": singleLegSquat(),
			"upper_body_swing": upperBodySwing(),
			"skater_lunge":     skaterLunge(),
			"cross_step":       crossStep(),
			"stride_mimic":     strideMimic(),
			"push_pull":        pushPull(),
			"jump_landing":     jumpLanding(),
		},
	}
}

// DefaultQualityBands returns the band cutoffs used when none are configured.
func DefaultQualityBands() QualityBands {
	return QualityBands{
		Excellent:         BandCutoff{DetectionRate: 0.9, MeanConfidence: 0.8},
		Good:              BandCutoff{DetectionRate: 0.7, MeanConfidence: 0.6},
		InsufficientBelow: 0.2,
	}
}

// #endregion default

// #region tests
var (
	leftKnee  = []lm.Name{lm.LeftHip, lm.LeftKnee, lm.LeftAnkle}
	rightKnee = []lm.Name{lm.RightHip, lm.RightKnee, lm.RightAnkle}
	hips      = []lm.Name{lm.LeftHip, lm.RightHip}
	ankles    = []lm.Name{lm.LeftAnkle, lm.RightAnkle}
)

func singleLegSquat() TestConfig {
	return TestConfig{
		Description: "single-leg squat: pelvic stability and knee flexion depth",
		Metrics: []MetricConfig{
			{
				Name:      "pelvic_stability",
				Measure:   MeasureConfig{Kind: MeasureDistance, Axis: AxisY, Left: hips},
				Selection: SelectionConfig{Policy: PolicyMean},
				Direction: LowerIsBetter,
				Cutpoints: []float64{0.02, 0.05, 0.10},
			},
			{
				Name:      "knee_flexion",
				Measure:   MeasureConfig{Kind: MeasureAngle, Left: leftKnee, Right: rightKnee, Combine: CombineMin},
				Selection: SelectionConfig{Policy: PolicyMin},
				Direction: LowerIsBetter,
				Cutpoints: []float64{87, 97, 107},
				Unit:      "°",
			},
			{
				Name:      "knee_angle_diff",
				Measure:   MeasureConfig{Kind: MeasureAngle, Left: leftKnee, Right: rightKnee, Combine: CombineAbsDiff},
				Selection: SelectionConfig{Policy: PolicyMean},
				Direction: HigherIsBetter,
				Cutpoints: []float64{20, 15, 10},
				Unit:      "°",
			},
		},
	}
}

func upperBodySwing() TestConfig {
	left := []lm.Name{lm.LeftShoulder, lm.LeftWrist}
	right := []lm.Name{lm.RightShoulder, lm.RightWrist}
	return TestConfig{
		Description: "upper-body swing: arm amplitude and left/right symmetry",
		Metrics: []MetricConfig{
			{
				Name:      "arm_amplitude",
				Measure:   MeasureConfig{Kind: MeasureDistance, Axis: AxisY, Left: left, Right: right, Combine: CombineMax},
				Selection: SelectionConfig{Policy: PolicyMean},
				Reference: RefShoulderWidth,
				Direction: HigherIsBetter,
				Cutpoints: []float64{0.8, 0.6, 0.4},
			},
			{
				Name:      "symmetry",
				Measure:   MeasureConfig{Kind: MeasureDistance, Axis: AxisY, Left: left, Right: right, Combine: CombineAbsDiff},
				Selection: SelectionConfig{Policy: PolicyMean},
				Direction: LowerIsBetter,
				Cutpoints: []float64{0.05, 0.10, 0.15},
			},
		},
	}
}

func crossStep() TestConfig {
	return TestConfig{
		Description: "cross step: lateral step width and knee flexion",
		Metrics: []MetricConfig{
			{
				Name:      "step_width",
				Measure:   MeasureConfig{Kind: MeasureDistance, Axis: AxisX, Left: ankles},
				Selection: SelectionConfig{Policy: PolicyMax},
				Reference: RefBaseWidth,
				Direction: HigherIsBetter,
				Cutpoints: []float64{1.2, 0.96, 0.72},
			},
			{
				Name:      "knee_flexion",
				Measure:   MeasureConfig{Kind: MeasureAngle, Left: leftKnee, Right: rightKnee, Combine: CombineMin},
				Selection: SelectionConfig{Policy: PolicyMin},
				Direction: LowerIsBetter,
				Cutpoints: []float64{100, 110, 120},
				Unit:      "°",
			},
		},
	}
}

func strideMimic() TestConfig {
	return TestConfig{
		Description: "stride mimic: hip extension and foot clearance",
		Metrics: []MetricConfig{
			{
				Name: "hip_extension",
				Measure: MeasureConfig{
					Kind:    MeasureAngle,
					Left:    []lm.Name{lm.LeftShoulder, lm.LeftHip, lm.LeftKnee},
					Right:   []lm.Name{lm.RightShoulder, lm.RightHip, lm.RightKnee},
					Combine: CombineMax,
				},
				Selection: SelectionConfig{Policy: PolicyMax},
				Direction: HigherIsBetter,
				Cutpoints: []float64{165, 157, 150},
				Unit:      "°",
			},
			{
				Name:      "foot_clearance",
				Measure:   MeasureConfig{Kind: MeasureDistance, Axis: AxisY, Left: ankles},
				Selection: SelectionConfig{Policy: PolicyMax},
				Reference: RefLegLength,
				Direction: HigherIsBetter,
				Cutpoints: []float64{0.2, 0.15, 0.1},
			},
		},
	}
}

func pushPull() TestConfig {
	return TestConfig{
		Description: "push-pull: pull distance and push elbow extension",
		Metrics: []MetricConfig{
			{
				Name: "pull_distance",
				Measure: MeasureConfig{
					Kind:    MeasureDistance,
					Axis:    AxisX,
					Left:    []lm.Name{lm.LeftShoulder, lm.LeftWrist},
					Right:   []lm.Name{lm.RightShoulder, lm.RightWrist},
					Combine: CombineMax,
				},
				Selection: SelectionConfig{Policy: PolicyMax},
				Reference: RefShoulderWidth,
				Direction: HigherIsBetter,
				Cutpoints: []float64{1.0, 0.8, 0.6},
			},
			{
				Name: "push_angle",
				Measure: MeasureConfig{
					Kind:    MeasureAngle,
					Left:    []lm.Name{lm.LeftShoulder, lm.LeftElbow, lm.LeftWrist},
					Right:   []lm.Name{lm.RightShoulder, lm.RightElbow, lm.RightWrist},
					Combine: CombineMax,
				},
				Selection: SelectionConfig{Policy: PolicyMax},
				Direction: HigherIsBetter,
				Cutpoints: []float64{160, 152, 145},
				Unit:      "°",
			},
		},
	}
}

func jumpLanding() TestConfig {
	return TestConfig{
		Description: "jump landing: jump height and knee flexion at landing",
		Metrics: []MetricConfig{
			{
				Name:      "jump_height",
				Measure:   MeasureConfig{Kind: MeasurePosition, Axis: AxisY, Left: hips},
				Selection: SelectionConfig{Policy: PolicyRange},
				Reference: RefLegLength,
				Direction: HigherIsBetter,
				Cutpoints: []float64{0.15, 0.1125, 0.075},
			},
			{
				Name:    "landing_knee_flexion",
				Measure: MeasureConfig{Kind: MeasureAngle, Left: leftKnee, Right: rightKnee, Combine: CombineMin},
				Selection: SelectionConfig{
					Policy:   PolicyKeyFrame,
					KeyFrame: &KeyFrameConfig{Keypoints: hips, Axis: AxisY, Extremum: "max"},
				},
				Direction: LowerIsBetter,
				Cutpoints: []float64{120, 130, 140},
				Unit:      "°",
			},
		},
	}
}

func skaterLunge() TestConfig {
	return TestConfig{
		Description: "skater lunge: lateral step and knee flexion at deepest point",
		Metrics: []MetricConfig{
			{
				Name:      "lateral_step",
				Measure:   MeasureConfig{Kind: MeasureDistance, Axis: AxisX, Left: ankles},
				Selection: SelectionConfig{Policy: PolicyMax},
				Reference: RefBaseWidth,
				Direction: HigherIsBetter,
				Cutpoints: []float64{1.5, 1.2, 0.9},
			},
			{
				Name:    "knee_flexion",
				Measure: MeasureConfig{Kind: MeasureAngle, Left: leftKnee, Right: rightKnee, Combine: CombineMin},
				Selection: SelectionConfig{
					Policy:   PolicyKeyFrame,
					KeyFrame: &KeyFrameConfig{Keypoints: hips, Axis: AxisY, Extremum: "max"},
				},
				Direction: LowerIsBetter,
				Cutpoints: []float64{100, 110, 120},
				Unit:      "°",
			},
		},
	}
}

// #endregion tests
