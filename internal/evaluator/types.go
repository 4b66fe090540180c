package evaluator

import (
	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// NoData is the detail of a metric whose scored value could not be computed.
// It means the data was insufficient, not that the movement failed.
const NoData = "no data: insufficient landmarks"

// #region phase
// Phase is a step of a single evaluation call.
type Phase string

const (
	PhaseReceived        Phase = "RECEIVED"
	PhaseMetricsComputed Phase = "METRICS_COMPUTED"
	PhaseScored          Phase = "SCORED"
	PhaseDone            Phase = "DONE"
)

// #endregion phase

// #region status
// Status qualifies an aggregate score by how much of it was measurable.
type Status string

const (
	StatusComplete     Status = "complete"
	StatusPartial      Status = "partial_data"
	StatusInsufficient Status = "insufficient_data"
)

// #endregion status

// #region metric
// Metric is one scored measurement. Values holds the per-frame raw values in
// sequence order; Ratio is set only for metrics with a reference distance.
type Metric struct {
	Name           string           `json:"name"`
	Values         []optional.Float `json:"values"`
	Representative optional.Float   `json:"representative"`
	Reference      config.Reference `json:"reference,omitempty"`
	Ratio          optional.Float   `json:"ratio"`
	Score          int              `json:"score"`
	Detail         string           `json:"detail"`
	FramesDefined  int              `json:"frames_defined"`
	FramesAbsent   int              `json:"frames_absent"`
	KeyFrame       *int             `json:"key_frame,omitempty"`
}

// Scored returns the value the score was computed from: the ratio when the
// metric is normalized, the representative value otherwise.
func (m Metric) Scored() optional.Float {
	if m.Reference != config.RefNone {
		return m.Ratio
	}
	return m.Representative
}

// #endregion metric

// #region evaluation
// Evaluation is the output of one evaluator call.
type Evaluation struct {
	TestType string   `json:"test_type"`
	Metrics  []Metric `json:"metrics"`
	Score    int      `json:"score"`
	Status   Status   `json:"status"`
	Phases   []Phase  `json:"phases"`
}

// #endregion evaluation
