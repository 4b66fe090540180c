package normalize

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/motion-scan/internal/landmark"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region normalizer
// BodyNormalizer derives reference distances from keypoints at or above a
// confidence floor.
type BodyNormalizer struct {
	floor float64
}

// NewBodyNormalizer creates a normalizer that ignores keypoints below floor.
func NewBodyNormalizer(floor float64) *BodyNormalizer {
	return &BodyNormalizer{floor: floor}
}

// Frame computes the four reference distances for a single frame.
func (n *BodyNormalizer) Frame(f landmark.Frame) Distances {
	var d Distances
	d.ShoulderWidth = n.pair(f, landmark.LeftShoulder, landmark.RightShoulder)
	d.PelvisWidth = n.pair(f, landmark.LeftHip, landmark.RightHip)

	// Leg length: mean of the sides that resolve.
	var sides []float64
	if v, ok := n.pair(f, landmark.LeftHip, landmark.LeftAnkle).Get(); ok {
		sides = append(sides, v)
	}
	if v, ok := n.pair(f, landmark.RightHip, landmark.RightAnkle).Get(); ok {
		sides = append(sides, v)
	}
	if len(sides) > 0 {
		d.LegLength = optional.Some(stat.Mean(sides, nil))
	}

	d.BaseWidth = maxDefined(d.ShoulderWidth, d.PelvisWidth)
	return d
}

// Sequence computes per-frame distances and reduces each to its median over
// the frames where it is defined.
func (n *BodyNormalizer) Sequence(seq *landmark.Sequence) Reduction {
	per := make([]Distances, len(seq.Frames))
	for i, f := range seq.Frames {
		per[i] = n.Frame(f)
	}

	col := func(get func(Distances) optional.Float) optional.Float {
		vals := make([]optional.Float, len(per))
		for i, d := range per {
			vals[i] = get(d)
		}
		return Median(vals)
	}

	return Reduction{
		Representative: Distances{
			ShoulderWidth: col(func(d Distances) optional.Float { return d.ShoulderWidth }),
			PelvisWidth:   col(func(d Distances) optional.Float { return d.PelvisWidth }),
			LegLength:     col(func(d Distances) optional.Float { return d.LegLength }),
			BaseWidth:     col(func(d Distances) optional.Float { return d.BaseWidth }),
		},
		PerFrame: per,
	}
}

func (n *BodyNormalizer) pair(f landmark.Frame, a, b landmark.Name) optional.Float {
	kps, ok := landmark.LookupAll(f, []landmark.Name{a, b}, n.floor)
	if !ok {
		return optional.None()
	}
	return optional.Some(Distance(kps[0], kps[1]))
}

// #endregion normalizer

// #region geometry
// Distance is the Euclidean distance between two keypoints: 3-D when both
// carry depth, planar otherwise.
func Distance(a, b landmark.Keypoint) float64 {
	pa := r3.Vec{X: a.X, Y: a.Y}
	pb := r3.Vec{X: b.X, Y: b.Y}
	if a.Z != nil && b.Z != nil {
		pa.Z, pb.Z = *a.Z, *b.Z
	}
	return r3.Norm(r3.Sub(pa, pb))
}

// #endregion geometry

// #region reduce
// Median returns the median of the defined entries of vals, averaging the two
// middle values for an even count. It is absent when nothing is defined.
func Median(vals []optional.Float) optional.Float {
	xs := optional.Values(vals)
	if len(xs) == 0 {
		return optional.None()
	}
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 1 {
		return optional.Some(xs[mid])
	}
	return optional.Some((xs[mid-1] + xs[mid]) / 2)
}

// NormalizeValue divides measured by reference. It is absent when either is
// absent or the reference is zero.
func NormalizeValue(measured, reference optional.Float) optional.Float {
	m, ok := measured.Get()
	if !ok {
		return optional.None()
	}
	r, ok := reference.Get()
	if !ok || r == 0 {
		return optional.None()
	}
	return optional.Some(m / r)
}

func maxDefined(a, b optional.Float) optional.Float {
	av, aok := a.Get()
	bv, bok := b.Get()
	switch {
	case aok && bok:
		return optional.Some(math.Max(av, bv))
	case aok:
		return a
	default:
		return b
	}
}

// #endregion reduce
