package normalize

import (
	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region distances
// Distances are the body-scale reference distances for one frame, or their
// representative values over a sequence. Each is independently absent.
type Distances struct {
	ShoulderWidth optional.Float `json:"shoulder_width"`
	PelvisWidth   optional.Float `json:"pelvis_width"`
	LegLength     optional.Float `json:"leg_length"`
	BaseWidth     optional.Float `json:"base_width"`
}

// Get returns the distance named by ref. RefNone and unknown names are absent.
func (d Distances) Get(ref config.Reference) optional.Float {
	switch ref {
	case config.RefShoulderWidth:
		return d.ShoulderWidth
	case config.RefPelvisWidth:
		return d.PelvisWidth
	case config.RefLegLength:
		return d.LegLength
	case config.RefBaseWidth:
		return d.BaseWidth
	default:
		return optional.None()
	}
}

// #endregion distances

// #region reduction
// Reduction is the output of a sequence pass: the median of every distance
// plus the per-frame values it was reduced from, in frame order.
type Reduction struct {
	Representative Distances
	PerFrame       []Distances
}

// #endregion reduction
