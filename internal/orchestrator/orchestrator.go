package orchestrator

// #region imports
import (
	"fmt"
	"log"
	"strings"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/evaluator"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/normalize"
	"github.com/danielpatrickdp/motion-scan/internal/quality"
)

// #endregion

// #region worker-struct

// Worker runs quality gate, normalizer and evaluator for one unit of work.
// It is immutable after construction and safe for concurrent use; all
// per-call state (random source, warnings) lives inside Process.
type Worker struct {
	cfg        *config.Config
	gate       *quality.Gate
	normalizer *normalize.BodyNormalizer
	registry   *evaluator.Registry
}

// #endregion

// #region constructor

// NewWorker validates cfg once and wires the pipeline components.
func NewWorker(cfg *config.Config) (*Worker, error) {
	registry, err := evaluator.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return &Worker{
		cfg:        cfg,
		gate:       quality.NewGate(quality.GateConfigFrom(cfg)),
		normalizer: normalize.NewBodyNormalizer(cfg.ConfidenceMin),
		registry:   registry,
	}, nil
}

// Config returns the scoring document the worker was built from.
func (w *Worker) Config() *config.Config {
	return w.cfg
}

// TestTypes returns the supported test types.
func (w *Worker) TestTypes() []string {
	return w.registry.TestTypes()
}

// #endregion

// #region process

// Process evaluates one sequence for one test type. Poor data never fails the
// call; it is reported through warnings and the result status. Only an
// unknown test type or a malformed sequence ends in FAILED.
func (w *Worker) Process(req Request) (Result, error) {
	video := quality.AnonymizeRef(req.VideoRef)
	res := Result{Video: video, TestType: req.TestType, Stages: []Stage{StageInit}}

	fail := func(err error) (Result, error) {
		res.Stages = append(res.Stages, StageFailed)
		log.Printf("[WORKER] video=%s test=%s FAILED: %v", video, req.TestType, err)
		return res, fmt.Errorf("video %s test %s: %w", video, req.TestType, err)
	}

	// 1. Validate
	ev, err := w.registry.Lookup(req.TestType)
	if err != nil {
		return fail(err)
	}
	seq := req.Sequence
	if seq == nil {
		return fail(&landmark.InputError{Frame: -1, Reason: "sequence is missing"})
	}
	if err := seq.Validate(); err != nil {
		return fail(err)
	}

	// 2. Quality gate: advisory only
	rng := quality.NewSessionRand(w.cfg.RandomSeed)
	assessment, warnings := w.gate.Assess(seq, video, ev.RequiredKeypoints(), rng)
	res.Quality = assessment
	res.Stages = append(res.Stages, StageQualityChecked)

	// 3. Reference distances
	reduction := w.normalizer.Sequence(seq)
	res.References = reduction.Representative
	res.Stages = append(res.Stages, StageNormalized)

	// 4. Metrics
	evaluation, err := ev.Evaluate(seq, reduction.Representative, rng)
	if err != nil {
		return fail(err)
	}
	res.Stages = append(res.Stages, StageEvaluated)

	// 5. Assemble
	res.Score = evaluation.Score
	res.Status = evaluation.Status
	res.Metrics = evaluation.Metrics
	res.Phases = evaluation.Phases
	res.Warnings = warnings
	if res.Warnings == nil {
		res.Warnings = []quality.Warning{}
	}
	res.Stages = append(res.Stages, StageDone)

	log.Printf("[WORKER] video=%s test=%s score=%d status=%s band=%s warnings=%d",
		video, req.TestType, res.Score, res.Status, assessment.Band, len(res.Warnings))

	return res, nil
}

// #endregion

// #region helpers

// TestTypeFromKey extracts the test type from a storage key laid out as
// "<prefix>/<test_type>/<file>".
func TestTypeFromKey(key string) (string, bool) {
	parts := strings.Split(key, "/")
	if len(parts) < 3 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Summary renders a short human-readable report of r.
func Summary(r Result) string {
	var b strings.Builder
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Test:    %s\n", r.TestType)
	fmt.Fprintf(&b, "Video:   %s\n", r.Video)
	fmt.Fprintf(&b, "Score:   %d/3 (%s)\n", r.Score, r.Status)
	fmt.Fprintf(&b, "Quality: %s, detection %.1f%%, confidence %.2f\n",
		r.Quality.Band, r.Quality.DetectionRate*100, r.Quality.MeanConfidence)
	fmt.Fprintln(&b)
	for _, m := range r.Metrics {
		fmt.Fprintf(&b, "  %-22s %d/3  %s\n", m.Name, m.Score, m.Detail)
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(&b, "\nWarnings (%d):\n", len(r.Warnings))
		for _, w := range r.Warnings {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", w.Level, w.Code, w.Message)
		}
	}
	fmt.Fprintln(&b, rule)
	return b.String()
}

// #endregion
