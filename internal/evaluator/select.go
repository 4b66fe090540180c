package evaluator

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region select
// selectValue reduces per-frame values to a representative value using only
// defined frames. For key_frame it also returns the chosen frame index.
func selectValue(sc config.SelectionConfig, values []optional.Float, frames []landmark.Frame, floor float64, rng *rand.Rand) (optional.Float, *int) {
	if sc.Policy == config.PolicyKeyFrame {
		return keyFrameValue(sc.KeyFrame, values, frames, floor, rng)
	}

	xs := optional.Values(values)
	if len(xs) == 0 {
		return optional.None(), nil
	}
	switch sc.Policy {
	case config.PolicyMin:
		return optional.Some(floats.Min(xs)), nil
	case config.PolicyMax:
		return optional.Some(floats.Max(xs)), nil
	case config.PolicyMean:
		return optional.Some(stat.Mean(xs, nil)), nil
	case config.PolicyRange:
		return optional.Some(floats.Max(xs) - floats.Min(xs)), nil
	default:
		return optional.None(), nil
	}
}

// keyFrameValue returns the value at the frame where the key signal reaches
// its extremum, among frames where both the signal and the value are defined.
// Equal extrema are resolved with rng.
func keyFrameValue(kf *config.KeyFrameConfig, values []optional.Float, frames []landmark.Frame, floor float64, rng *rand.Rand) (optional.Float, *int) {
	if kf == nil {
		return optional.None(), nil
	}
	signal := config.MeasureConfig{Kind: config.MeasurePosition, Axis: kf.Axis, Left: kf.Keypoints}

	var best float64
	var ties []int // positions into frames
	for i, f := range frames {
		if !values[i].Defined() {
			continue
		}
		s, ok := extract(signal, f, floor).Get()
		if !ok {
			continue
		}
		better := len(ties) == 0 ||
			(kf.Extremum == "max" && s > best) ||
			(kf.Extremum == "min" && s < best)
		switch {
		case better:
			best = s
			ties = append(ties[:0], i)
		case s == best:
			ties = append(ties, i)
		}
	}
	if len(ties) == 0 {
		return optional.None(), nil
	}

	pick := ties[0]
	if len(ties) > 1 && rng != nil {
		pick = ties[rng.IntN(len(ties))]
	}
	idx := frames[pick].Index
	return values[pick], &idx
}

// #endregion select
