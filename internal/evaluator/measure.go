package evaluator

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region extract
// extract computes a metric's raw value for one frame. Any listed keypoint
// that is missing or below floor makes the value absent.
func extract(mc config.MeasureConfig, f landmark.Frame, floor float64) optional.Float {
	left := measureSide(mc, mc.Left, f, floor)
	if len(mc.Right) == 0 {
		return left
	}
	right := measureSide(mc, mc.Right, f, floor)
	return combine(mc.Combine, left, right)
}

func measureSide(mc config.MeasureConfig, names []landmark.Name, f landmark.Frame, floor float64) optional.Float {
	kps, ok := landmark.LookupAll(f, names, floor)
	if !ok {
		return optional.None()
	}
	switch mc.Kind {
	case config.MeasureAngle:
		return angle(kps[0], kps[1], kps[2])
	case config.MeasureDistance:
		return optional.Some(planarDistance(kps[0], kps[1], mc.Axis))
	case config.MeasurePosition:
		return optional.Some(position(kps, mc.Axis))
	default:
		return optional.None()
	}
}

func combine(mode config.Combine, l, r optional.Float) optional.Float {
	lv, lok := l.Get()
	rv, rok := r.Get()
	if !lok || !rok {
		return optional.None()
	}
	switch mode {
	case config.CombineMin:
		return optional.Some(math.Min(lv, rv))
	case config.CombineMax:
		return optional.Some(math.Max(lv, rv))
	case config.CombineMean:
		return optional.Some((lv + rv) / 2)
	case config.CombineAbsDiff:
		return optional.Some(math.Abs(lv - rv))
	default:
		return optional.None()
	}
}

// #endregion extract

// #region geometry
// angle returns the planar angle at vertex b formed by a and c, in degrees.
// A zero-length arm has no angle.
func angle(a, b, c landmark.Keypoint) optional.Float {
	u := r3.Sub(r3.Vec{X: a.X, Y: a.Y}, r3.Vec{X: b.X, Y: b.Y})
	v := r3.Sub(r3.Vec{X: c.X, Y: c.Y}, r3.Vec{X: b.X, Y: b.Y})
	if r3.Norm(u) == 0 || r3.Norm(v) == 0 {
		return optional.None()
	}
	cos := math.Max(-1, math.Min(1, r3.Cos(u, v)))
	return optional.Some(math.Acos(cos) * 180 / math.Pi)
}

func planarDistance(a, b landmark.Keypoint, axis config.Axis) float64 {
	switch axis {
	case config.AxisX:
		return math.Abs(a.X - b.X)
	case config.AxisY:
		return math.Abs(a.Y - b.Y)
	default:
		return math.Hypot(a.X-b.X, a.Y-b.Y)
	}
}

// position is the coordinate of the keypoints' midpoint along axis.
func position(kps []landmark.Keypoint, axis config.Axis) float64 {
	var sum float64
	for _, kp := range kps {
		if axis == config.AxisX {
			sum += kp.X
		} else {
			sum += kp.Y
		}
	}
	return sum / float64(len(kps))
}

// #endregion geometry
