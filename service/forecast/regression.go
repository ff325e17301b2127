package forecast

import (
	"math"
	"sort"
)

// huberFit fits y = intercept + slope*x by iteratively reweighted least
// squares with a Huber weight function, so isolated billing spikes do
// not drag the trend line
func huberFit(xs, ys []float64) (slope, intercept float64) {
	weights := make([]float64, len(xs))
	for i := range weights {
		weights[i] = 1
	}

	const tuning = 1.345
	for iter := 0; iter < 3; iter++ {
		slope, intercept = weightedLeastSquares(xs, ys, weights)

		residuals := make([]float64, len(xs))
		for i := range xs {
			residuals[i] = ys[i] - (intercept + slope*xs[i])
		}
		scale := 1.4826 * mad(residuals)
		if scale == 0 {
			return slope, intercept
		}

		for i, r := range residuals {
			abs := math.Abs(r)
			if abs <= tuning*scale {
				weights[i] = 1
			} else {
				weights[i] = tuning * scale / abs
			}
		}
	}

	return weightedLeastSquares(xs, ys, weights)
}

func weightedLeastSquares(xs, ys, weights []float64) (slope, intercept float64) {
	var sw, swx, swy, swxx, swxy float64
	for i := range xs {
		w := weights[i]
		sw += w
		swx += w * xs[i]
		swy += w * ys[i]
		swxx += w * xs[i] * xs[i]
		swxy += w * xs[i] * ys[i]
	}
	if sw == 0 {
		return 0, 0
	}

	denom := sw*swxx - swx*swx
	if denom == 0 {
		return 0, swy / sw
	}
	slope = (sw*swxy - swx*swy) / denom
	intercept = (swy - slope*swx) / sw
	return slope, intercept
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mad is the median absolute deviation, a robust spread estimate
func mad(values []float64) float64 {
	m := median(values)
	deviations := make([]float64, len(values))
	for i, v := range values {
		deviations[i] = math.Abs(v - m)
	}
	return median(deviations)
}
