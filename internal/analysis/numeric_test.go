package analysis

import (
	"math"
	"testing"

	"csvdash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantile(t *testing.T) {
	values := []float64{7, 1, 3, 5}
	tests := []struct {
		p        float64
		expected float64
	}{
		{0, 1},
		{0.25, 2.5},
		{0.5, 4},
		{0.75, 5.5},
		{1, 7},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.expected, Quantile(values, tt.p), 1e-9, "p=%v", tt.p)
	}
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
	assert.Equal(t, []float64{7, 1, 3, 5}, values, "input must not be reordered")
}

func TestHistogram(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 10}
	h, err := Histogram(values)
	require.NoError(t, err)

	require.Len(t, h.Edges, len(h.Counts)+1)
	assert.Equal(t, 1.0, h.Edges[0])
	assert.InDelta(t, 10.0, h.Edges[len(h.Edges)-1], 1e-9)

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, len(values), total)
	// FD width 2*1.75*10^(-1/3) ~ 1.62 beats Sturges 9/4.32 ~ 2.08
	assert.Len(t, h.Counts, 6)
}

func TestHistogram_SturgesWhenIQRIsZero(t *testing.T) {
	h, err := Histogram([]float64{5, 5, 5, 5, 5, 5, 5, 9})
	require.NoError(t, err)
	// Sturges: 4 / (log2(8)+1) = 1 -> 4 bins
	assert.Len(t, h.Counts, 4)
	assert.Equal(t, []int{7, 0, 0, 1}, h.Counts)
}

func TestHistogram_ZeroRange(t *testing.T) {
	h, err := Histogram([]float64{3, 3, 3})
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 3.5}, h.Edges)
	assert.Equal(t, []int{3}, h.Counts)
	assert.Equal(t, 1.0, h.BinWidth())

	_, err = Histogram(nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestKDE(t *testing.T) {
	values := []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}
	d, err := KDE(values, 50)
	require.NoError(t, err)

	require.Len(t, d.X, 50)
	require.Len(t, d.Y, 50)
	assert.Equal(t, 1.0, d.X[0])
	assert.InDelta(t, 5.0, d.X[49], 1e-9)
	assert.Greater(t, d.Bandwidth, 0.0)

	// symmetric sample: density peaks in the middle
	peak := 0
	for i, y := range d.Y {
		if y > d.Y[peak] {
			peak = i
		}
	}
	assert.InDelta(t, 3.0, d.X[peak], 0.1)

	scaled := d.Scaled(9)
	assert.InDelta(t, d.Y[peak]*9, scaled[peak], 1e-12)
}

func TestKDE_Skipped(t *testing.T) {
	_, err := KDE([]float64{4}, 10)
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = KDE([]float64{4, 4, 4}, 10)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestBoxStats(t *testing.T) {
	box, err := BoxStats([]float64{1, 2, 3, 4, 5, 6, 7, 8, 100})
	require.NoError(t, err)

	assert.Equal(t, 9, box.Count)
	assert.Equal(t, 3.0, box.Q1)
	assert.Equal(t, 5.0, box.Median)
	assert.Equal(t, 7.0, box.Q3)
	assert.Equal(t, 1.0, box.LowerWhisker)
	assert.Equal(t, 8.0, box.UpperWhisker)
	assert.Equal(t, []float64{100}, box.Outliers)
	assert.Equal(t, 100.0, box.Max)
}

func TestBoxStats_NoOutliers(t *testing.T) {
	box, err := BoxStats([]float64{2, 4})
	require.NoError(t, err)
	assert.Empty(t, box.Outliers)
	assert.Equal(t, 2.0, box.LowerWhisker)
	assert.Equal(t, 4.0, box.UpperWhisker)

	_, err = BoxStats(nil)
	assert.ErrorIs(t, err, core.ErrInsufficientData)
}

func TestNumericAnalyses_NonFiniteAndExtremeValues(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantErr error
	}{
		{name: "positive infinity", values: []float64{1, math.Inf(1)}, wantErr: core.ErrRangeOverflow},
		{name: "negative infinity", values: []float64{math.Inf(-1), 1, 2}, wantErr: core.ErrRangeOverflow},
		{name: "range overflows", values: []float64{-1e308, 1e308}, wantErr: core.ErrRangeOverflow},
		{name: "large and close together", values: []float64{100000000000000000, 100000000000000016}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotPanics(t, func() {
				bins, err := Histogram(tt.values)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					require.NoError(t, err)
					total := 0
					for _, c := range bins.Counts {
						total += c
					}
					assert.Equal(t, len(tt.values), total)
				}

				_, err = BoxStats(tt.values)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NoError(t, err)
				}

				_, err = KDE(tt.values, 20)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				} else {
					assert.NoError(t, err)
				}
			})
		})
	}
}

func TestHistogram_BinCountIsCapped(t *testing.T) {
	values := []float64{1, 1 + 1e-15, 1 + 2e-15, 1 + 3e-15, 1e12}
	bins, err := Histogram(values)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(bins.Counts), MaxHistogramBins)
	assert.Len(t, bins.Edges, len(bins.Counts)+1)
}
