package charts

import (
	"fmt"
	"math"

	"csvdash/domain/core"
	"csvdash/domain/dataset"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// coolwarm anchors: blue at -1, light grey at 0, red at +1
var (
	coolLow  = drawing.Color{R: 59, G: 76, B: 192, A: 255}
	coolMid  = drawing.Color{R: 221, G: 221, B: 221, A: 255}
	coolHigh = drawing.Color{R: 180, G: 4, B: 38, A: 255}
	colorNaN = drawing.ColorFromHex("f5f5f5")
)

// DivergingColor maps a coefficient in [-1, 1] onto the cool-warm scale.
// Values outside the range are clamped; NaN maps to a neutral background.
func DivergingColor(v float64) drawing.Color {
	if math.IsNaN(v) {
		return colorNaN
	}
	v = math.Max(-1, math.Min(1, v))
	if v < 0 {
		return lerpColor(coolMid, coolLow, -v)
	}
	return lerpColor(coolMid, coolHigh, v)
}

func lerpColor(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// FormatCoefficient renders a heatmap annotation
func FormatCoefficient(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%.2f", v)
}

// Heatmap draws the correlation matrix as annotated cells with a colour bar
func (r *Renderer) Heatmap(m dataset.CorrelationMatrix) ([]byte, error) {
	n := m.Size()
	if n == 0 {
		return nil, core.ErrDegenerateCorrelation
	}

	c, err := newCanvas(r.cfg.Width, r.cfg.Height)
	if err != nil {
		return nil, err
	}
	c.title("Correlation Heatmap")

	labelWidth := 0
	for _, name := range m.Columns {
		labelWidth = max(labelWidth, c.textWidth(name, labelFontSize))
	}
	left := min(labelWidth+12, c.width/4)
	const top, bottom, barWidth, barGap, barLabels = 34, 30, 14, 16, 34
	right := barWidth + barGap + barLabels

	cell := min((c.width-left-right)/n, (c.height-top-bottom)/n)
	if cell < 1 {
		cell = 1
	}
	gridRight := left + cell*n
	gridBottom := top + cell*n

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			x0, y0 := left+j*cell, top+i*cell
			c.rect(x0, y0, x0+cell, y0+cell, DivergingColor(v), colorWhite)

			fg := colorText
			if !math.IsNaN(v) && math.Abs(v) > 0.6 {
				fg = colorWhite
			}
			c.text(FormatCoefficient(v), x0+cell/2, y0+cell/2+3, valueFontSize, fg, alignCenter)
		}
	}

	for i, name := range m.Columns {
		label := c.fit(name, labelFontSize, left-8)
		c.text(label, left-6, top+i*cell+cell/2+3, labelFontSize, colorText, alignRight)
		c.text(c.fit(name, labelFontSize, cell-2), left+i*cell+cell/2, gridBottom+14, labelFontSize, colorText, alignCenter)
	}

	// colour bar, +1 at the top
	barLeft := gridRight + barGap
	const steps = 40
	barHeight := gridBottom - top
	for s := 0; s < steps; s++ {
		y0 := top + s*barHeight/steps
		y1 := top + (s+1)*barHeight/steps
		v := 1 - 2*(float64(s)+0.5)/steps
		c.rect(barLeft, y0, barLeft+barWidth, y1, DivergingColor(v), DivergingColor(v))
	}
	for _, tick := range []float64{1, 0.5, 0, -0.5, -1} {
		y := top + int(math.Round((1-tick)/2*float64(barHeight)))
		c.line(barLeft+barWidth, y, barLeft+barWidth+3, y, colorAxis, 1)
		c.text(formatTick(tick), barLeft+barWidth+5, y+3, valueFontSize, colorText, alignLeft)
	}

	return c.svg()
}
