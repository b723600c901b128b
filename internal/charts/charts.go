// Package charts draws the dashboard's figures as SVG documents.
//
// The histogram goes through go-chart's Chart type. The bar, pie, boxplot and
// heatmap figures are drawn directly on a go-chart SVG renderer because they
// need annotations the stock chart types do not offer.
package charts

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Config sets the pixel size of every figure
type Config struct {
	Width  int
	Height int
}

// DefaultConfig returns the standard figure size
func DefaultConfig() Config {
	return Config{Width: 640, Height: 360}
}

// Palette is the bar colour cycle
var Palette = []drawing.Color{
	drawing.ColorFromHex("ff0000"), // red
	drawing.ColorFromHex("0000ff"), // blue
	drawing.ColorFromHex("008000"), // green
	drawing.ColorFromHex("87ceeb"), // skyblue
	drawing.ColorFromHex("ffff00"), // yellow
	drawing.ColorFromHex("a52a2a"), // brown
	drawing.ColorFromHex("ffa500"), // orange
}

// PaletteColor returns the colour of the i-th bar
func PaletteColor(i int) drawing.Color {
	return Palette[i%len(Palette)]
}

var (
	colorAxis  = drawing.ColorFromHex("333333")
	colorGrid  = drawing.ColorFromHex("dddddd")
	colorText  = drawing.ColorFromHex("222222")
	colorWhite = drawing.ColorWhite
	colorFill  = drawing.ColorFromHex("4c72b0")
	colorLine  = drawing.ColorFromHex("1f3d7a")
)

const (
	titleFontSize = 12.0
	labelFontSize = 9.0
	valueFontSize = 8.0
)

// Renderer draws every figure at one configured size
type Renderer struct {
	cfg Config
}

// NewRenderer creates a renderer; non-positive sizes fall back to the defaults
func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	return &Renderer{cfg: cfg}
}

// Config returns the figure size in use
func (r *Renderer) Config() Config {
	return r.cfg
}

// canvas wraps a go-chart SVG renderer with the text helpers the custom
// figures share
type canvas struct {
	chart.Renderer
	width, height int
}

func newCanvas(width, height int) (*canvas, error) {
	rr, err := chart.SVG(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to create SVG renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("failed to load chart font: %w", err)
	}
	rr.SetFont(font)

	c := &canvas{Renderer: rr, width: width, height: height}
	c.rect(0, 0, width, height, colorWhite, colorWhite)
	return c, nil
}

// svg serializes the drawing
func (c *canvas) svg() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Save(&buf); err != nil {
		return nil, fmt.Errorf("failed to write SVG: %w", err)
	}
	return buf.Bytes(), nil
}

func (c *canvas) rect(left, top, right, bottom int, fill, stroke drawing.Color) {
	c.ResetStyle()
	c.SetFillColor(fill)
	c.SetStrokeColor(stroke)
	c.SetStrokeWidth(1)
	c.MoveTo(left, top)
	c.LineTo(right, top)
	c.LineTo(right, bottom)
	c.LineTo(left, bottom)
	c.LineTo(left, top)
	c.Close()
	c.FillStroke()
}

func (c *canvas) line(x1, y1, x2, y2 int, color drawing.Color, width float64) {
	c.ResetStyle()
	c.SetStrokeColor(color)
	c.SetStrokeWidth(width)
	c.MoveTo(x1, y1)
	c.LineTo(x2, y2)
	c.Stroke()
}

type textAlign int

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// text draws body with its baseline at y, positioned horizontally by align
func (c *canvas) text(body string, x, y int, size float64, color drawing.Color, align textAlign) {
	c.ResetStyle()
	c.SetFontSize(size)
	c.SetFontColor(color)
	switch align {
	case alignCenter:
		x -= c.MeasureText(body).Width() / 2
	case alignRight:
		x -= c.MeasureText(body).Width()
	}
	c.Text(body, x, y)
}

func (c *canvas) textWidth(body string, size float64) int {
	c.ResetStyle()
	c.SetFontSize(size)
	return c.MeasureText(body).Width()
}

// title draws a centred figure title in the top margin
func (c *canvas) title(body string) {
	c.text(body, c.width/2, 20, titleFontSize, colorText, alignCenter)
}

// fit shortens label until it is at most maxWidth pixels wide
func (c *canvas) fit(label string, size float64, maxWidth int) string {
	if maxWidth <= 0 || c.textWidth(label, size) <= maxWidth {
		return label
	}
	runes := []rune(label)
	for len(runes) > 1 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + "..."
		if c.textWidth(candidate, size) <= maxWidth {
			return candidate
		}
	}
	return string(runes)
}

// niceTicks returns round tick values covering [lo, hi] with about n steps.
// When the step is below the float spacing at lo only the ends are returned.
func niceTicks(lo, hi float64, n int) []float64 {
	if hi <= lo || n < 1 {
		return []float64{lo}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	step := niceNumber((hi - lo) / float64(n))
	start := math.Floor(lo/step) * step
	if math.IsInf(step, 0) || step == 0 || start+step == start {
		return []float64{lo, hi}
	}

	var ticks []float64
	// n steps cover the range; the extra slots absorb the floor of start
	for k := 0; k <= n+2; k++ {
		v := start + float64(k)*step
		if v > hi+step*1e-9 {
			break
		}
		if v >= lo-step*1e-9 {
			ticks = append(ticks, v)
		}
	}
	return ticks
}

func niceNumber(x float64) float64 {
	exp := math.Floor(math.Log10(x))
	f := x / math.Pow(10, exp)
	var nice float64
	switch {
	case f <= 1:
		nice = 1
	case f <= 2:
		nice = 2
	case f <= 5:
		nice = 5
	default:
		nice = 10
	}
	return nice * math.Pow(10, exp)
}

// formatTick renders a tick value without trailing zeros
func formatTick(v float64) string {
	if math.Abs(v) < 1e-12 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// scale maps a data interval onto a pixel interval
type scale struct {
	d0, d1 float64
	p0, p1 int
}

func (s scale) at(v float64) int {
	if s.d1 == s.d0 {
		return (s.p0 + s.p1) / 2
	}
	return s.p0 + int(math.Round((v-s.d0)/(s.d1-s.d0)*float64(s.p1-s.p0)))
}
