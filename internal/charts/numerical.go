package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/internal/analysis"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// NumericalCharts holds the two figures of the numerical section
type NumericalCharts struct {
	Histogram []byte
	Boxplot   []byte
	// HasDensity is false when the density curve was skipped
	HasDensity bool
}

// Numerical draws the histogram with its density curve and the boxplot of
// values. Returns core.ErrInsufficientData when values is empty.
func (r *Renderer) Numerical(column string, values []float64) (NumericalCharts, error) {
	if len(values) == 0 {
		return NumericalCharts{}, core.ErrInsufficientData
	}

	bins, err := analysis.Histogram(values)
	if err != nil {
		return NumericalCharts{}, err
	}
	density, err := analysis.KDE(values, analysis.DefaultKDEPoints)
	hasDensity := err == nil
	if err != nil && !errors.Is(err, core.ErrInsufficientData) {
		return NumericalCharts{}, err
	}

	var densityPtr *analysis.Density
	if hasDensity {
		densityPtr = &density
	}
	hist, err := r.HistogramChart(column, bins, densityPtr, len(values))
	if err != nil {
		return NumericalCharts{}, err
	}

	box, err := analysis.BoxStats(values)
	if err != nil {
		return NumericalCharts{}, err
	}
	boxplot, err := r.BoxplotChart(column, box)
	if err != nil {
		return NumericalCharts{}, err
	}

	return NumericalCharts{Histogram: hist, Boxplot: boxplot, HasDensity: hasDensity}, nil
}

// HistogramChart draws the bins as bars and, when density is not nil, overlays
// the density curve scaled to counts by n times the bin width
func (r *Renderer) HistogramChart(column string, bins analysis.HistogramBins, density *analysis.Density, n int) ([]byte, error) {
	if len(bins.Counts) == 0 {
		return nil, core.ErrInsufficientData
	}

	mids := make([]float64, len(bins.Counts))
	counts := make([]float64, len(bins.Counts))
	for i, count := range bins.Counts {
		mids[i] = (bins.Edges[i] + bins.Edges[i+1]) / 2
		counts[i] = float64(count)
	}

	yMax := float64(bins.MaxCount())
	series := []chart.Series{
		chart.HistogramSeries{
			Name: "Count",
			Style: chart.Style{
				StrokeColor: colorWhite,
				StrokeWidth: 1,
				FillColor:   colorFill.WithAlpha(160),
			},
			InnerSeries: chart.ContinuousSeries{XValues: mids, YValues: counts},
		},
	}
	if density != nil {
		scaled := density.Scaled(float64(n) * bins.BinWidth())
		for _, v := range scaled {
			yMax = math.Max(yMax, v)
		}
		series = append(series, chart.ContinuousSeries{
			Name: "Density",
			Style: chart.Style{
				StrokeColor: colorLine,
				StrokeWidth: 2,
			},
			XValues: density.X,
			YValues: scaled,
		})
	}

	graph := chart.Chart{
		Title:  "Histogram",
		Width:  r.cfg.Width,
		Height: r.cfg.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  dataset.DisplayName(column),
			Range: &chart.ContinuousRange{Min: bins.Edges[0], Max: bins.Edges[len(bins.Edges)-1]},
		},
		YAxis: chart.YAxis{
			Name:  "Count",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax * 1.05},
		},
		Series: series,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render histogram: %w", err)
	}
	return buf.Bytes(), nil
}

// BoxplotChart draws a horizontal box from Q1 to Q3 with the median, whiskers
// and outlier markers
func (r *Renderer) BoxplotChart(column string, box analysis.BoxSummary) ([]byte, error) {
	c, err := newCanvas(r.cfg.Width, r.cfg.Height)
	if err != nil {
		return nil, err
	}
	c.title("Boxplot")

	const left, right, top, bottom = 40, 30, 40, 50
	plotLeft, plotRight := left, c.width-right
	plotTop, plotBottom := top, c.height-bottom

	lo, hi := box.Min, box.Max
	if hi == lo {
		lo, hi = lo-0.5, hi+0.5
	}
	pad := (hi - lo) * 0.05
	x := scale{d0: lo - pad, d1: hi + pad, p0: plotLeft, p1: plotRight}

	for _, tick := range niceTicks(lo-pad, hi+pad, 6) {
		px := x.at(tick)
		c.line(px, plotTop, px, plotBottom, colorGrid, 1)
		c.text(formatTick(tick), px, plotBottom+14, labelFontSize, colorText, alignCenter)
	}
	c.line(plotLeft, plotBottom, plotRight, plotBottom, colorAxis, 1)

	midY := (plotTop + plotBottom) / 2
	half := (plotBottom - plotTop) / 5
	capHalf := half / 2

	c.line(x.at(box.LowerWhisker), midY, x.at(box.Q1), midY, colorAxis, 1.5)
	c.line(x.at(box.Q3), midY, x.at(box.UpperWhisker), midY, colorAxis, 1.5)
	c.line(x.at(box.LowerWhisker), midY-capHalf, x.at(box.LowerWhisker), midY+capHalf, colorAxis, 1.5)
	c.line(x.at(box.UpperWhisker), midY-capHalf, x.at(box.UpperWhisker), midY+capHalf, colorAxis, 1.5)

	c.rect(x.at(box.Q1), midY-half, x.at(box.Q3), midY+half, colorFill, colorAxis)
	c.line(x.at(box.Median), midY-half, x.at(box.Median), midY+half, colorWhite, 2)

	for _, v := range box.Outliers {
		c.ResetStyle()
		c.SetFillColor(drawing.ColorTransparent)
		c.SetStrokeColor(colorAxis)
		c.SetStrokeWidth(1)
		c.Circle(3, x.at(v), midY)
	}

	c.text(dataset.DisplayName(column), (plotLeft+plotRight)/2, c.height-12, labelFontSize+1, colorText, alignCenter)
	return c.svg()
}
