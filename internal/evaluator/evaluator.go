package evaluator

import (
	"fmt"
	"math/rand/v2"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/normalize"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region evaluator
// Evaluator scores one motion test. The algorithm is shared by every test
// type; only the TestConfig differs.
type Evaluator struct {
	testType string
	config   config.TestConfig
	floor    float64
}

// NewEvaluator creates an evaluator for testType. Keypoints below floor are
// treated as absent.
func NewEvaluator(testType string, tc config.TestConfig, floor float64) *Evaluator {
	return &Evaluator{testType: testType, config: tc, floor: floor}
}

// TestType returns the test identifier this evaluator scores.
func (e *Evaluator) TestType() string {
	return e.testType
}

// RequiredKeypoints lists the keypoints the test reads.
func (e *Evaluator) RequiredKeypoints() []landmark.Name {
	return e.config.Keypoints()
}

// Evaluate computes, scores and aggregates every metric of the test.
// Only structurally malformed frames return an error; missing data resolves
// to absent values and score 0.
func (e *Evaluator) Evaluate(seq *landmark.Sequence, refs normalize.Distances, rng *rand.Rand) (Evaluation, error) {
	ev := Evaluation{TestType: e.testType, Phases: []Phase{PhaseReceived}}

	for _, f := range seq.Frames {
		if len(f.Keypoints) > landmark.KeypointCount {
			return ev, &landmark.InputError{Frame: f.Index,
				Reason: fmt.Sprintf("%d keypoints exceed the %d-point scheme", len(f.Keypoints), landmark.KeypointCount)}
		}
	}

	// 1. Raw values, frame selection, normalization
	ev.Metrics = make([]Metric, len(e.config.Metrics))
	for i, mc := range e.config.Metrics {
		ev.Metrics[i] = e.computeMetric(mc, seq.Frames, refs, rng)
	}
	ev.Phases = append(ev.Phases, PhaseMetricsComputed)

	// 2. Scores
	absent := 0
	for i, mc := range e.config.Metrics {
		m := &ev.Metrics[i]
		v := m.Scored()
		m.Score = Score(v, mc.Direction, mc.Cutpoints)
		m.Detail = Detail(m.Name, v, mc.Unit, m.Score)
		if !v.Defined() {
			absent++
		}
	}
	ev.Phases = append(ev.Phases, PhaseScored)

	// 3. Aggregate: the weakest metric dominates
	ev.Score = Aggregate(ev.Metrics)
	switch {
	case absent == len(ev.Metrics):
		ev.Status = StatusInsufficient
	case absent > 0:
		ev.Status = StatusPartial
	default:
		ev.Status = StatusComplete
	}
	ev.Phases = append(ev.Phases, PhaseDone)
	return ev, nil
}

func (e *Evaluator) computeMetric(mc config.MetricConfig, frames []landmark.Frame, refs normalize.Distances, rng *rand.Rand) Metric {
	m := Metric{Name: mc.Name, Reference: mc.Reference, Values: make([]optional.Float, len(frames))}
	for i, f := range frames {
		m.Values[i] = extract(mc.Measure, f, e.floor)
	}
	m.FramesDefined = optional.CountDefined(m.Values)
	m.FramesAbsent = len(frames) - m.FramesDefined

	m.Representative, m.KeyFrame = selectValue(mc.Selection, m.Values, frames, e.floor, rng)
	if mc.Reference != config.RefNone {
		m.Ratio = normalize.NormalizeValue(m.Representative, refs.Get(mc.Reference))
	}
	return m
}

// Aggregate returns the minimum metric score, 0 when there are no metrics.
func Aggregate(metrics []Metric) int {
	if len(metrics) == 0 {
		return 0
	}
	lowest := metrics[0].Score
	for _, m := range metrics[1:] {
		lowest = min(lowest, m.Score)
	}
	return lowest
}

// #endregion evaluator

// #region registry
// Registry maps test types to their evaluators. It is built once from a
// validated configuration and shared read-only.
type Registry struct {
	evaluators map[string]*Evaluator
	supported  []string
}

// NewRegistry validates cfg and builds an evaluator per configured test.
func NewRegistry(cfg *config.Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{evaluators: make(map[string]*Evaluator, len(cfg.Tests)), supported: cfg.TestTypes()}
	for _, name := range r.supported {
		r.evaluators[name] = NewEvaluator(name, cfg.Tests[name], cfg.ConfidenceMin)
	}
	return r, nil
}

// Lookup returns the evaluator for testType or a ConfigurationError listing
// the supported types.
func (r *Registry) Lookup(testType string) (*Evaluator, error) {
	e, ok := r.evaluators[testType]
	if !ok {
		return nil, &config.ConfigurationError{TestType: testType, Supported: r.TestTypes()}
	}
	return e, nil
}

// TestTypes returns the supported test types in sorted order.
func (r *Registry) TestTypes() []string {
	return append([]string(nil), r.supported...)
}

// #endregion registry
