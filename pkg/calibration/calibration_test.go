package calibration_test

import (
	"testing"

	"github.com/aussiebroadwan/huproof/pkg/calibration"
	"github.com/stretchr/testify/require"
)

func TestL1Distance(t *testing.T) {
	t.Parallel()

	d, err := calibration.L1Distance([]int{10, 20, 30}, []int{12, 18, 32})
	require.NoError(t, err)
	require.Equal(t, 6, d)

	t.Run("symmetric", func(t *testing.T) {
		a := []int{5, -3, 100}
		b := []int{-7, 4, 90}
		ab, err := calibration.L1Distance(a, b)
		require.NoError(t, err)
		ba, err := calibration.L1Distance(b, a)
		require.NoError(t, err)
		require.Equal(t, ab, ba)
	})

	t.Run("zero for equal vectors", func(t *testing.T) {
		d, err := calibration.L1Distance([]int{1, 2, 3}, []int{1, 2, 3})
		require.NoError(t, err)
		require.Zero(t, d)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := calibration.L1Distance([]int{1, 2}, []int{1, 2, 3})
		require.ErrorIs(t, err, calibration.ErrDimensionMismatch)
	})
}

func TestAverageTemplate(t *testing.T) {
	t.Parallel()

	avg, err := calibration.AverageTemplate([][]int{
		{10, 20, 30},
		{12, 18, 32},
		{11, 19, 31},
	})
	require.NoError(t, err)
	require.Equal(t, []int{11, 19, 31}, avg)

	t.Run("single sample is identity", func(t *testing.T) {
		avg, err := calibration.AverageTemplate([][]int{{7, 8, 9}})
		require.NoError(t, err)
		require.Equal(t, []int{7, 8, 9}, avg)
	})

	t.Run("rounds half away from zero", func(t *testing.T) {
		avg, err := calibration.AverageTemplate([][]int{{1, -1}, {2, -2}})
		require.NoError(t, err)
		require.Equal(t, []int{2, -2}, avg)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := calibration.AverageTemplate(nil)
		require.ErrorIs(t, err, calibration.ErrEmptyInput)
	})

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := calibration.AverageTemplate([][]int{{1, 2}, {1}})
		require.ErrorIs(t, err, calibration.ErrDimensionMismatch)
	})
}

func TestAdaptiveTau(t *testing.T) {
	t.Parallel()

	template := []int{0}
	spread := [][]int{{10}, {20}, {30}} // mean 20, stddev 8.165

	tests := []struct {
		name       string
		samples    [][]int
		baseTau    int
		multiplier float64
		want       int
	}{
		{"no samples returns base", nil, 400, 2, 400},
		{"single sample below floor", [][]int{{6}}, 400, 2, 400},
		{"single sample scaled", [][]int{{6}}, 1, 2, 9},
		{"spread below floor", spread, 400, 2, 400},
		{"spread above floor", spread, 1, 2, 36},
		{"multiplier widens", spread, 1, 3, 44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := calibration.AdaptiveTau(template, tt.samples, tt.baseTau, tt.multiplier)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.GreaterOrEqual(t, got, tt.baseTau)
		})
	}

	t.Run("dimension mismatch", func(t *testing.T) {
		_, err := calibration.AdaptiveTau([]int{1, 2}, [][]int{{1}}, 400, 2)
		require.ErrorIs(t, err, calibration.ErrDimensionMismatch)
	})
}

func TestTemplateQuality(t *testing.T) {
	t.Parallel()

	q, err := calibration.TemplateQuality([]int{0}, [][]int{{10}, {20}, {30}}, 0)
	require.NoError(t, err)
	require.Equal(t, calibration.Quality{
		MeanDistance:     20,
		StddevDistance:   8.16,
		ConsistencyScore: 0.959,
	}, q)

	t.Run("no samples", func(t *testing.T) {
		q, err := calibration.TemplateQuality([]int{0}, nil, 200)
		require.NoError(t, err)
		require.Equal(t, calibration.Quality{}, q)
	})

	t.Run("clamped at zero", func(t *testing.T) {
		q, err := calibration.TemplateQuality([]int{0}, [][]int{{0}, {1000}}, 100)
		require.NoError(t, err)
		require.Zero(t, q.ConsistencyScore)
	})

	t.Run("identical samples are fully consistent", func(t *testing.T) {
		q, err := calibration.TemplateQuality([]int{5, 5}, [][]int{{5, 5}, {5, 5}}, 200)
		require.NoError(t, err)
		require.Equal(t, 1.0, q.ConsistencyScore)
	})
}

func TestCalibrate(t *testing.T) {
	res, err := calibration.Calibrate([][]int{
		{100, 200, 300},
		{110, 190, 310},
		{90, 210, 290},
	}, calibration.Config{})
	require.NoError(t, err)
	require.Equal(t, []int{100, 200, 300}, res.Template)
	require.Equal(t, calibration.DefaultBaseTau, res.Tau)
	require.InDelta(t, 20, res.Quality.MeanDistance, 0.001)

	_, err = calibration.Calibrate(nil, calibration.Config{})
	require.ErrorIs(t, err, calibration.ErrEmptyInput)
}
