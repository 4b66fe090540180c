package evaluator

import (
	"fmt"

	"github.com/danielpatrickdp/motion-scan/internal/config"
	"github.com/danielpatrickdp/motion-scan/internal/optional"
)

// #region score
// tieEpsilon absorbs floating-point noise from trigonometry so that a value
// meant to sit on a cutpoint still earns the higher band.
const tieEpsilon = 1e-9

// Score grades v against cutpoints ordered [score 3, score 2, score 1]. A
// value equal to a cutpoint earns that cutpoint's band. Absent scores 0.
func Score(v optional.Float, dir config.Direction, cutpoints []float64) int {
	x, ok := v.Get()
	if !ok || len(cutpoints) != 3 {
		return 0
	}
	for i, c := range cutpoints {
		var pass bool
		if dir == config.LowerIsBetter {
			pass = x <= c+tieEpsilon
		} else {
			pass = x >= c-tieEpsilon
		}
		if pass {
			return 3 - i
		}
	}
	return 0
}

// Detail summarizes the scored value. Absent values get NoData.
func Detail(name string, v optional.Float, unit string, score int) string {
	x, ok := v.Get()
	if !ok {
		return NoData
	}
	if unit == "°" {
		return fmt.Sprintf("%s: %.1f%s -> %d/3", name, x, unit, score)
	}
	return fmt.Sprintf("%s: %.3f%s -> %d/3", name, x, unit, score)
}

// #endregion score
