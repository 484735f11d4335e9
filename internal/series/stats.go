package series

import "math"

// Mean returns the arithmetic mean, 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	var sum float64
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// StdDev returns the sample standard deviation (n-1 denominator).
// Fewer than two points have no dispersion and yield 0.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}

	mean := Mean(data)
	var variance float64
	for _, v := range data {
		diff := v - mean
		variance += diff * diff
	}
	return math.Sqrt(variance / float64(len(data)-1))
}
