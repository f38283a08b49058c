// Package calibration derives a keystroke template and its acceptance
// threshold from enrollment samples. Everything here is pure and safe to call
// from any goroutine.
package calibration

import (
	"errors"
	"math"
)

var (
	ErrEmptyInput        = errors.New("calibration: no samples")
	ErrDimensionMismatch = errors.New("calibration: vectors differ in length")
)

const (
	// DefaultBaseTau is the threshold floor used when none is configured.
	DefaultBaseTau = 400

	// DefaultMultiplier scales the distance stddev when widening tau.
	DefaultMultiplier = 2.0

	// DefaultConsistencyScale is the stddev, in feature units (milliseconds),
	// at which the consistency score reaches zero.
	DefaultConsistencyScale = 200.0
)

// L1Distance returns the sum of absolute per-dimension differences.
func L1Distance(a, b []int) (int, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var d int
	for i := range a {
		diff := a[i] - b[i]
		if diff < 0 {
			diff = -diff
		}
		d += diff
	}
	return d, nil
}

// AverageTemplate returns the per-dimension mean of samples, rounded half
// away from zero.
func AverageTemplate(samples [][]int) ([]int, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyInput
	}

	dim := len(samples[0])
	sums := make([]int, dim)
	for _, s := range samples {
		if len(s) != dim {
			return nil, ErrDimensionMismatch
		}
		for i, v := range s {
			sums[i] += v
		}
	}

	n := float64(len(samples))
	out := make([]int, dim)
	for i, sum := range sums {
		out[i] = int(math.Round(float64(sum) / n))
	}
	return out, nil
}

// AdaptiveTau widens baseTau to absorb the spread of samples around
// template. With a single sample the threshold is 1.5 times its distance;
// with more it is mean + multiplier*stddev. The result never drops below
// baseTau.
func AdaptiveTau(template []int, samples [][]int, baseTau int, multiplier float64) (int, error) {
	if len(samples) == 0 {
		return baseTau, nil
	}

	dists, err := distances(template, samples)
	if err != nil {
		return 0, err
	}

	if len(dists) == 1 {
		return max(baseTau, int(math.Round(1.5*dists[0]))), nil
	}

	mean, stddev := meanStddev(dists)
	return max(baseTau, int(math.Round(mean+multiplier*stddev))), nil
}

// Quality summarises how tightly samples cluster around a template.
type Quality struct {
	MeanDistance     float64 `json:"mean_distance"`
	StddevDistance   float64 `json:"stddev_distance"`
	ConsistencyScore float64 `json:"consistency_score"`
}

// TemplateQuality scores samples against template. k is the stddev at which
// consistency bottoms out; k <= 0 selects DefaultConsistencyScale. No
// samples yields the zero Quality.
func TemplateQuality(template []int, samples [][]int, k float64) (Quality, error) {
	if len(samples) == 0 {
		return Quality{}, nil
	}
	if k <= 0 {
		k = DefaultConsistencyScale
	}

	dists, err := distances(template, samples)
	if err != nil {
		return Quality{}, err
	}

	mean, stddev := meanStddev(dists)
	consistency := math.Max(0, math.Min(1, 1-stddev/k))

	return Quality{
		MeanDistance:     roundTo(mean, 2),
		StddevDistance:   roundTo(stddev, 2),
		ConsistencyScore: roundTo(consistency, 3),
	}, nil
}

func distances(template []int, samples [][]int) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		d, err := L1Distance(template, s)
		if err != nil {
			return nil, err
		}
		out[i] = float64(d)
	}
	return out, nil
}

// meanStddev returns the mean and population standard deviation.
func meanStddev(xs []float64) (float64, float64) {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(sq / float64(len(xs)))
}

func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}
