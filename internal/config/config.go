package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region configuration-error
// ConfigurationError reports an unknown test type or a missing or invalid
// threshold. Supported is set when the test type was not recognized.
type ConfigurationError struct {
	TestType  string
	Supported []string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	if e.Supported != nil {
		return fmt.Sprintf("configuration error: unknown test type %q (supported: %s)",
			e.TestType, strings.Join(e.Supported, ", "))
	}
	if e.TestType != "" {
		return fmt.Sprintf("configuration error: test %q: %s", e.TestType, e.Reason)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// #endregion configuration-error

// #region load
var requiredKeys = []string{"confidence_min", "frame_skip_tolerance", "random_seed", "quality_bands", "tests"}

// Load reads and validates a JSON scoring document.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a JSON scoring document.
func Parse(data []byte) (*Config, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("parse config: %v", err)}
	}
	for _, k := range requiredKeys {
		if _, ok := raw[k]; !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("missing required key %s", k)}
		}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("parse config: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// #endregion load

// #region lookup
// TestTypes returns the configured test types in sorted order.
func (c *Config) TestTypes() []string {
	out := make([]string, 0, len(c.Tests))
	for k := range c.Tests {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// #endregion lookup

// #region validate
// Validate checks ranges, keypoint names and cutpoint ordering for every test.
func (c *Config) Validate() error {
	if c.ConfidenceMin < 0 || c.ConfidenceMin > 1 || math.IsNaN(c.ConfidenceMin) {
		return &ConfigurationError{Reason: fmt.Sprintf("confidence_min %v must be within [0,1]", c.ConfidenceMin)}
	}
	if c.FrameSkipTolerance < 0 {
		return &ConfigurationError{Reason: "frame_skip_tolerance must not be negative"}
	}
	for key, share := range map[string]optional.Float{
		"low_visibility_share":  c.LowVisibilityShare,
		"low_visibility_frames": c.LowVisibilityFrames,
	} {
		if v, ok := share.Get(); ok && (v < 0 || v > 1) {
			return &ConfigurationError{Reason: fmt.Sprintf("%s %v must be within [0,1]", key, v)}
		}
	}
	if err := c.QualityBands.validate(); err != nil {
		return err
	}
	if len(c.Tests) == 0 {
		return &ConfigurationError{Reason: "no test types configured"}
	}
	for _, name := range c.TestTypes() {
		if err := c.Tests[name].validate(); err != nil {
			return &ConfigurationError{TestType: name, Reason: err.Error()}
		}
	}
	return nil
}

func (b QualityBands) validate() error {
	for _, v := range []float64{b.Excellent.DetectionRate, b.Excellent.MeanConfidence,
		b.Good.DetectionRate, b.Good.MeanConfidence, b.InsufficientBelow} {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return &ConfigurationError{Reason: fmt.Sprintf("quality band cutoff %v must be within [0,1]", v)}
		}
	}
	if b.Excellent.DetectionRate < b.Good.DetectionRate || b.Excellent.MeanConfidence < b.Good.MeanConfidence {
		return &ConfigurationError{Reason: "excellent band cutoffs must not be below good"}
	}
	if b.InsufficientBelow > b.Good.DetectionRate {
		return &ConfigurationError{Reason: "insufficient_below must not exceed the good detection rate"}
	}
	return nil
}

func (t TestConfig) validate() error {
	if len(t.Metrics) == 0 {
		return fmt.Errorf("no metrics configured")
	}
	seen := make(map[string]bool, len(t.Metrics))
	for _, m := range t.Metrics {
		if m.Name == "" {
			return fmt.Errorf("metric without name")
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate metric %s", m.Name)
		}
		seen[m.Name] = true
		if err := m.validate(); err != nil {
			return fmt.Errorf("metric %s: %w", m.Name, err)
		}
	}
	return nil
}

func (m MetricConfig) validate() error {
	if err := m.Measure.validate(); err != nil {
		return err
	}
	if err := m.Selection.validate(); err != nil {
		return err
	}
	switch m.Reference {
	case RefNone, RefShoulderWidth, RefPelvisWidth, RefLegLength, RefBaseWidth:
	default:
		return fmt.Errorf("unknown reference %q", m.Reference)
	}
	if len(m.Cutpoints) != 3 {
		return fmt.Errorf("expected 3 cutpoints, got %d", len(m.Cutpoints))
	}
	for _, c := range m.Cutpoints {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("cutpoint %v is not finite", c)
		}
	}
	c3, c2, c1 := m.Cutpoints[0], m.Cutpoints[1], m.Cutpoints[2]
	switch m.Direction {
	case HigherIsBetter:
		if c3 < c2 || c2 < c1 {
			return fmt.Errorf("cutpoints %v must be non-increasing for %s", m.Cutpoints, m.Direction)
		}
	case LowerIsBetter:
		if c3 > c2 || c2 > c1 {
			return fmt.Errorf("cutpoints %v must be non-decreasing for %s", m.Cutpoints, m.Direction)
		}
	default:
		return fmt.Errorf("unknown direction %q", m.Direction)
	}
	return nil
}

func (mc MeasureConfig) validate() error {
	var width int
	switch mc.Kind {
	case MeasureAngle:
		width = 3
		if mc.Axis != "" && mc.Axis != AxisXY {
			return fmt.Errorf("angle measure only supports axis xy")
		}
	case MeasureDistance:
		width = 2
		if mc.Axis != "" && mc.Axis != AxisXY && mc.Axis != AxisX && mc.Axis != AxisY {
			return fmt.Errorf("unknown axis %q", mc.Axis)
		}
	case MeasurePosition:
		if mc.Axis != AxisX && mc.Axis != AxisY {
			return fmt.Errorf("position measure needs axis x or y")
		}
		if len(mc.Left) == 0 {
			return fmt.Errorf("position measure needs keypoints")
		}
		if len(mc.Right) > 0 {
			return fmt.Errorf("position measure cannot be bilateral")
		}
		return validNames(mc.Left)
	default:
		return fmt.Errorf("unknown measure kind %q", mc.Kind)
	}

	if len(mc.Left) != width {
		return fmt.Errorf("%s measure needs %d keypoints, got %d", mc.Kind, width, len(mc.Left))
	}
	if err := validNames(mc.Left); err != nil {
		return err
	}
	if len(mc.Right) == 0 {
		return nil
	}
	if len(mc.Right) != width {
		return fmt.Errorf("%s measure needs %d right keypoints, got %d", mc.Kind, width, len(mc.Right))
	}
	if err := validNames(mc.Right); err != nil {
		return err
	}
	switch mc.Combine {
	case CombineMin, CombineMax, CombineMean, CombineAbsDiff:
		return nil
	default:
		return fmt.Errorf("bilateral measure needs a combine rule, got %q", mc.Combine)
	}
}

func (s SelectionConfig) validate() error {
	switch s.Policy {
	case PolicyMin, PolicyMax, PolicyMean, PolicyRange:
		return nil
	case PolicyKeyFrame:
		if s.KeyFrame == nil {
			return fmt.Errorf("key_frame policy needs a key_frame signal")
		}
		if len(s.KeyFrame.Keypoints) == 0 {
			return fmt.Errorf("key_frame signal needs keypoints")
		}
		if s.KeyFrame.Axis != AxisX && s.KeyFrame.Axis != AxisY {
			return fmt.Errorf("key_frame signal needs axis x or y")
		}
		if s.KeyFrame.Extremum != "min" && s.KeyFrame.Extremum != "max" {
			return fmt.Errorf("key_frame extremum must be min or max")
		}
		return validNames(s.KeyFrame.Keypoints)
	default:
		return fmt.Errorf("unknown selection policy %q", s.Policy)
	}
}

func validNames(ns []landmark.Name) error {
	for _, n := range ns {
		if _, ok := landmark.Index(n); !ok {
			return fmt.Errorf("unknown keypoint %q", n)
		}
	}
	return nil
}

// #endregion validate

// #region keypoints
// Keypoints returns the distinct keypoints a test reads, in first-use order.
func (t TestConfig) Keypoints() []landmark.Name {
	var out []landmark.Name
	seen := map[landmark.Name]bool{}
	add := func(ns []landmark.Name) {
		for _, n := range ns {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	for _, m := range t.Metrics {
		add(m.Measure.Left)
		add(m.Measure.Right)
		if m.Selection.KeyFrame != nil {
			add(m.Selection.KeyFrame.Keypoints)
		}
	}
	return out
}

// #endregion keypoints
