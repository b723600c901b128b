package ui

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// renderTemplate executes a template into a buffer first so a failing
// template never leaves a half-written page
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		s.logger.Warn("Error writing template response: %v", err)
	}
}

// svgDataURI embeds an SVG document as an image source. Charts are shown
// through <img> so text drawn from cell values is never parsed as page markup.
func svgDataURI(svg []byte) template.URL {
	return template.URL("data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg))
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`,
	"[", `\[`, "]", `\]`, "#", `\#`, "<", `\<`, ">", `\>`,
	"|", `\|`, "!", `\!`, "~", `\~`, "&", `\&`,
)

// renderMarkdown converts trusted markdown to HTML; raw HTML is dropped
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.SkipHTML})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

// headingHTML renders text as a markdown heading of the given level with all
// markdown syntax in text escaped
func headingHTML(level int, text string) template.HTML {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return renderMarkdown(strings.Repeat("#", level) + " " + markdownEscaper.Replace(text))
}

const footerMarkdown = `---

Developed using Go and gin. Upload a CSV or XLSX file to explore it.
`

// footerHTML is rendered once; the footer never changes
var footerHTML = renderMarkdown(footerMarkdown)

// formatNumber prints statistics the way the reports do: NaN for missing,
// integers without decimals, everything else with up to six significant digits
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case v == math.Trunc(v) && math.Abs(v) < 1e15:
		return strconv.FormatFloat(v, 'f', 0, 64)
	default:
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
}
