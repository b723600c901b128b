package analysis

import (
	"math"
	"sort"

	"csvdash/domain/core"
	"csvdash/domain/dataset"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultKDEPoints is the number of grid points a density curve is evaluated on
const DefaultKDEPoints = 200

// MaxHistogramBins caps the automatic bin count when a tiny IQR meets a wide range
const MaxHistogramBins = 500

// NumericSeries returns the finite non-missing values of a numerical column in
// row order. Infinite cells such as "inf" or "1e400" cannot be plotted and are
// left out.
func NumericSeries(t *dataset.Table, column string) ([]float64, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if !col.Kind.IsNumeric() {
		return nil, core.NewKindError(column, core.ErrNotNumerical)
	}
	return finite(col.Present()), nil
}

func finite(values []float64) []float64 {
	out := values[:0:0]
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// checkRange rejects samples whose spread does not fit in a float64
func checkRange(lo, hi float64) error {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return core.ErrRangeOverflow
	}
	if math.IsInf(hi-lo, 0) {
		return core.ErrRangeOverflow
	}
	return nil
}

// Quantile returns the p-quantile (0..1) of values using linear interpolation
// between closest ranks. NaN for an empty sample.
func Quantile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := sortedCopy(values)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	h := float64(n-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// HistogramBins holds bin edges and counts; len(Edges) == len(Counts)+1
type HistogramBins struct {
	Edges  []float64 `json:"edges"`
	Counts []int     `json:"counts"`
}

// BinWidth returns the width shared by every bin
func (h HistogramBins) BinWidth() float64 {
	if len(h.Edges) < 2 {
		return 0
	}
	return h.Edges[1] - h.Edges[0]
}

// MaxCount returns the tallest bin
func (h HistogramBins) MaxCount() int {
	m := 0
	for _, c := range h.Counts {
		if c > m {
			m = c
		}
	}
	return m
}

// Histogram bins values with an automatic bin count: the narrower of the
// Freedman-Diaconis and Sturges widths, Sturges alone when the IQR is zero.
// A sample with zero range gets a single bin of width 1 centred on its value.
// Returns core.ErrRangeOverflow when values holds infinities or spans more than
// a float64 can represent.
func Histogram(values []float64) (HistogramBins, error) {
	if len(values) == 0 {
		return HistogramBins{}, core.ErrInsufficientData
	}

	sorted := sortedCopy(values)
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if err := checkRange(lo, hi); err != nil {
		return HistogramBins{}, err
	}
	if lo == hi {
		return HistogramBins{
			Edges:  []float64{lo - 0.5, lo + 0.5},
			Counts: []int{len(sorted)},
		}, nil
	}

	n := float64(len(sorted))
	span := hi - lo
	width := span / (math.Log2(n) + 1)
	iqr := quantileSorted(sorted, 0.75) - quantileSorted(sorted, 0.25)
	if fd := 2 * iqr * math.Pow(n, -1.0/3.0); fd > 0 && fd < width {
		width = fd
	}

	bins := MaxHistogramBins
	if b := math.Ceil(span / width); b < MaxHistogramBins {
		bins = int(b)
	}
	if bins < 1 {
		bins = 1
	}

	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	counts := make([]int, bins)
	step := span / float64(bins)
	for _, v := range sorted {
		i := int((v - lo) / step)
		switch {
		case i >= bins:
			i = bins - 1
		case i < 0:
			i = 0
		}
		counts[i]++
	}

	return HistogramBins{Edges: edges, Counts: counts}, nil
}

// Density is a kernel density estimate evaluated on a regular grid
type Density struct {
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Bandwidth float64   `json:"bandwidth"`
}

// Scaled returns Y multiplied by factor, used to overlay the curve on counts
func (d Density) Scaled(factor float64) []float64 {
	out := make([]float64, len(d.Y))
	floats.ScaleTo(out, factor, d.Y)
	return out
}

// KDE estimates the density of values with a Gaussian kernel and Scott's
// bandwidth, evaluated at points evenly spaced over the data range.
// Returns core.ErrInsufficientData for fewer than two values or zero variance,
// core.ErrRangeOverflow when the spread does not fit in a float64.
func KDE(values []float64, points int) (Density, error) {
	if len(values) < 2 {
		return Density{}, core.ErrInsufficientData
	}
	if err := checkRange(floats.Min(values), floats.Max(values)); err != nil {
		return Density{}, err
	}
	std, err := stats.StandardDeviationSample(values)
	if err != nil || math.IsInf(std, 0) {
		return Density{}, core.ErrRangeOverflow
	}
	if std == 0 || math.IsNaN(std) {
		return Density{}, core.ErrInsufficientData
	}
	if points < 2 {
		points = DefaultKDEPoints
	}

	n := float64(len(values))
	bw := std * math.Pow(n, -1.0/5.0)

	xs := make([]float64, points)
	floats.Span(xs, floats.Min(values), floats.Max(values))
	ys := make([]float64, points)
	for _, v := range values {
		kernel := distuv.Normal{Mu: v, Sigma: bw}
		for i, x := range xs {
			ys[i] += kernel.Prob(x)
		}
	}
	floats.Scale(1/n, ys)

	return Density{X: xs, Y: ys, Bandwidth: bw}, nil
}

// BoxSummary is the five-number summary plus Tukey whiskers
type BoxSummary struct {
	Count        int       `json:"count"`
	Min          float64   `json:"min"`
	Q1           float64   `json:"q1"`
	Median       float64   `json:"median"`
	Q3           float64   `json:"q3"`
	Max          float64   `json:"max"`
	LowerWhisker float64   `json:"lower_whisker"`
	UpperWhisker float64   `json:"upper_whisker"`
	Outliers     []float64 `json:"outliers"`
}

// IQR returns Q3 - Q1
func (b BoxSummary) IQR() float64 {
	return b.Q3 - b.Q1
}

// BoxStats computes the boxplot summary. Whiskers reach the furthest values
// within 1.5 IQR of the box; anything beyond is an outlier.
func BoxStats(values []float64) (BoxSummary, error) {
	if len(values) == 0 {
		return BoxSummary{}, core.ErrInsufficientData
	}

	sorted := sortedCopy(values)
	if err := checkRange(sorted[0], sorted[len(sorted)-1]); err != nil {
		return BoxSummary{}, err
	}
	box := BoxSummary{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q3:     quantileSorted(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}

	lowFence := box.Q1 - 1.5*box.IQR()
	highFence := box.Q3 + 1.5*box.IQR()
	box.LowerWhisker, box.UpperWhisker = box.Q1, box.Q3
	box.Outliers = []float64{}
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		if v < box.LowerWhisker {
			box.LowerWhisker = v
		}
		if v > box.UpperWhisker {
			box.UpperWhisker = v
		}
	}

	return box, nil
}
