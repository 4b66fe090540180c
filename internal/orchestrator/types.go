package orchestrator

// #region imports
import (
	"github.com/danielpatrickdp/motion-scan/internal/evaluator"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/normalize"
	"github.com/danielpatrickdp/motion-scan/internal/quality"
)

// #endregion

// #region stage

// Stage is a step of one (video, test type) unit of work.
type Stage string

const (
	StageInit           Stage = "INIT"
	StageQualityChecked Stage = "QUALITY_CHECKED"
	StageNormalized     Stage = "NORMALIZED"
	StageEvaluated      Stage = "EVALUATED"
	StageDone           Stage = "DONE"
	StageFailed         Stage = "FAILED"
)

// #endregion

// #region request

// Request is one unit of work. VideoRef is the caller's reference to the
// source video; only its anonymized short id appears in results and logs.
type Request struct {
	VideoRef string
	TestType string
	Sequence *landmark.Sequence
}

// #endregion

// #region result

// Result is the evaluation result for one unit of work. It holds no clock
// readings or random ids, so identical inputs serialize identically.
type Result struct {
	Video      string              `json:"video"`
	TestType   string              `json:"test_type"`
	Score      int                 `json:"score"`
	Status     evaluator.Status    `json:"status"`
	Metrics    []evaluator.Metric  `json:"metrics"`
	Quality    quality.Assessment  `json:"quality"`
	References normalize.Distances `json:"references"`
	Stages     []Stage             `json:"stages"`
	Phases     []evaluator.Phase   `json:"phases"`
	Warnings   []quality.Warning   `json:"warnings"`
}

// Failed reports whether the unit ended in FAILED.
func (r Result) Failed() bool {
	return len(r.Stages) > 0 && r.Stages[len(r.Stages)-1] == StageFailed
}

// #endregion
