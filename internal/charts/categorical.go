package charts

import (
	"fmt"
	"math"
	"strconv"

	"csvdash/domain/core"
	"csvdash/domain/dataset"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// CategoricalCharts holds the two figures of the categorical section
type CategoricalCharts struct {
	Bar []byte
	Pie []byte
}

// Categorical draws the bar and pie charts of a frequency table
func (r *Renderer) Categorical(freq dataset.FrequencyTable) (CategoricalCharts, error) {
	if len(freq.Entries) == 0 {
		return CategoricalCharts{}, core.ErrInsufficientData
	}

	bar, err := r.BarChart(freq)
	if err != nil {
		return CategoricalCharts{}, err
	}
	pie, err := r.PieChart(freq)
	if err != nil {
		return CategoricalCharts{}, err
	}
	return CategoricalCharts{Bar: bar, Pie: pie}, nil
}

// BarChart draws one bar per value in frequency order, each labelled with its
// exact count, coloured from Palette
func (r *Renderer) BarChart(freq dataset.FrequencyTable) ([]byte, error) {
	c, err := newCanvas(r.cfg.Width, r.cfg.Height)
	if err != nil {
		return nil, err
	}

	const left, right, top, bottom = 50, 20, 40, 50
	plotLeft, plotRight := left, c.width-right
	plotTop, plotBottom := top, c.height-bottom

	maxCount := 0
	for _, e := range freq.Entries {
		if e.Count > maxCount {
			maxCount = e.Count
		}
	}
	// headroom for the count labels
	yMax := float64(maxCount) * 1.1
	if yMax < 1 {
		yMax = 1
	}
	y := scale{d0: 0, d1: yMax, p0: plotBottom, p1: plotTop}

	c.title("Bar Chart")
	for _, tick := range niceTicks(0, yMax, 5) {
		py := y.at(tick)
		c.line(plotLeft, py, plotRight, py, colorGrid, 1)
		c.text(formatTick(tick), plotLeft-6, py+3, labelFontSize, colorText, alignRight)
	}

	slot := float64(plotRight-plotLeft) / float64(len(freq.Entries))
	barWidth := int(math.Max(1, slot*0.8))
	for i, e := range freq.Entries {
		center := plotLeft + int(slot*(float64(i)+0.5))
		barTop := y.at(float64(e.Count))
		c.rect(center-barWidth/2, barTop, center+barWidth/2, plotBottom, PaletteColor(i), PaletteColor(i))
		c.text(strconv.Itoa(e.Count), center, barTop-4, valueFontSize, colorText, alignCenter)
		c.text(c.fit(e.Value, labelFontSize, int(slot)-2), center, plotBottom+14, labelFontSize, colorText, alignCenter)
	}

	c.line(plotLeft, plotBottom, plotRight, plotBottom, colorAxis, 1)
	c.line(plotLeft, plotTop, plotLeft, plotBottom, colorAxis, 1)
	c.text(dataset.DisplayName(freq.Column), (plotLeft+plotRight)/2, c.height-12, labelFontSize+1, colorText, alignCenter)
	c.text("Count", 4, plotTop-8, labelFontSize+1, colorText, alignLeft)

	return c.svg()
}

// PieChart draws one slice per value, clockwise from twelve o'clock, each
// labelled with its value and its share to two decimals, over a drop shadow
func (r *Renderer) PieChart(freq dataset.FrequencyTable) ([]byte, error) {
	c, err := newCanvas(r.cfg.Width, r.cfg.Height)
	if err != nil {
		return nil, err
	}
	c.title("Pie Chart")

	cx, cy := c.width/2, c.height/2+10
	radius := float64(min(c.width, c.height))/2 - 50
	if radius < 10 {
		radius = 10
	}

	c.ResetStyle()
	c.SetFillColor(drawing.Color{R: 0, G: 0, B: 0, A: 64})
	c.SetStrokeColor(drawing.ColorTransparent)
	c.Circle(radius, cx+4, cy+4)

	if len(freq.Entries) == 1 {
		c.ResetStyle()
		c.SetFillColor(PaletteColor(0))
		c.SetStrokeColor(colorWhite)
		c.Circle(radius, cx, cy)
	}

	total := float64(freq.Total)
	angle := 0.0
	for i, e := range freq.Entries {
		delta := 2 * math.Pi * float64(e.Count) / total
		if len(freq.Entries) > 1 && delta > 0 {
			c.ResetStyle()
			c.SetFillColor(PaletteColor(i))
			c.SetStrokeColor(colorWhite)
			c.SetStrokeWidth(1)
			c.MoveTo(cx, cy)
			c.ArcTo(cx, cy, radius, radius, angle, delta)
			c.LineTo(cx, cy)
			c.Close()
			c.FillStroke()
		}

		mid := angle + delta/2
		lx, ly := polar(cx, cy, radius*1.15, mid)
		align := alignLeft
		if math.Sin(mid) < 0 {
			align = alignRight
		}
		c.text(c.fit(e.Value, labelFontSize, 120), lx, ly, labelFontSize, colorText, align)

		px, py := polar(cx, cy, radius*0.6, mid)
		c.text(fmt.Sprintf("%.2f%%", freq.Percent(i)), px, py+3, valueFontSize, colorText, alignCenter)

		angle += delta
	}

	return c.svg()
}

// polar returns the point at distance d from (cx, cy), with angle measured
// clockwise from twelve o'clock
func polar(cx, cy int, d, angle float64) (int, int) {
	return cx + int(d*math.Sin(angle)), cy - int(d*math.Cos(angle))
}
