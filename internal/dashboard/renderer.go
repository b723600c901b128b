// Package dashboard runs the full render pass: from one session state to
// everything the page shows.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/domain/session"
	"csvdash/internal"
	"csvdash/internal/analysis"
	"csvdash/internal/charts"

	"golang.org/x/sync/errgroup"
)

var errSectionPanic = errors.New("section rendering panicked")

// Section names a part of the page
type Section string

const (
	SectionInfo        Section = "info"
	SectionShape       Section = "shape"
	SectionNulls       Section = "nulls"
	SectionCategorical Section = "categorical"
	SectionNumerical   Section = "numerical"
	SectionCorrelation Section = "correlation"
)

// Skip records a section left out because it has nothing to show
type Skip struct {
	Section Section
	Reason  error
}

// SectionError records a section that failed; the rest of the page still renders
type SectionError struct {
	Section Section
	Err     error
}

// CategoricalView is the rendered categorical section
type CategoricalView struct {
	Column      string
	Heading     string
	Frequencies dataset.FrequencyTable
	Charts      charts.CategoricalCharts
}

// NumericalView is the rendered numerical section. When the column has no
// values Charts is empty and Notice says so.
type NumericalView struct {
	Column  string
	Heading string
	Count   int
	Charts  charts.NumericalCharts
	Notice  string
}

// CorrelationView is the rendered heatmap section
type CorrelationView struct {
	Heading string
	Matrix  dataset.CorrelationMatrix
	Heatmap []byte
}

// View is the result of one render pass
type View struct {
	Phase     session.Phase
	Notice    session.Notice
	FileName  string
	Toggles   session.Toggles
	Group     dataset.ColumnGroup
	Selection session.Selection

	Preview  *analysis.DataPreview
	Info     *analysis.InfoReport
	Describe []analysis.ColumnStats
	Shape    *analysis.ShapeReport
	Nulls    *analysis.NullReport

	Categorical *CategoricalView
	Numerical   *NumericalView
	Correlation *CorrelationView

	Skipped []Skip
	Errors  []SectionError
}

// IsSkipped reports whether section was left out as a skip condition
func (v *View) IsSkipped(section Section) bool {
	for _, s := range v.Skipped {
		if s.Section == section {
			return true
		}
	}
	return false
}

// ErrorFor returns the failure of section, or nil
func (v *View) ErrorFor(section Section) error {
	for _, e := range v.Errors {
		if e.Section == section {
			return e.Err
		}
	}
	return nil
}

// Renderer turns session states into views
type Renderer struct {
	charts      *charts.Renderer
	previewRows int
	logger      *internal.Logger
}

// NewRenderer creates a renderer drawing figures with cr
func NewRenderer(cr *charts.Renderer, previewRows int, logger *internal.Logger) *Renderer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if previewRows < 0 {
		previewRows = 0
	}
	return &Renderer{charts: cr, previewRows: previewRows, logger: logger.With("Render")}
}

// ResolveSelection replaces unset or unknown selections with the first column
// of the matching group
func ResolveSelection(group dataset.ColumnGroup, sel session.Selection) session.Selection {
	if !group.HasCategorical(sel.Categorical) {
		sel.Categorical = ""
		if len(group.Categorical) > 0 {
			sel.Categorical = group.Categorical[0]
		}
	}
	if !group.HasNumerical(sel.Numerical) {
		sel.Numerical = ""
		if len(group.Numerical) > 0 {
			sel.Numerical = group.Numerical[0]
		}
	}
	return sel
}

// Render recomputes every section of the page from state. Section failures
// are collected in View.Errors; only a cancelled context fails the pass.
func (r *Renderer) Render(ctx context.Context, state session.State) (*View, error) {
	view := &View{
		Phase:    state.Phase(),
		Notice:   state.Notice,
		FileName: state.FileName,
		Toggles:  state.Toggles,
	}
	if state.Table == nil {
		return view, nil
	}

	start := time.Now()
	t := state.Table
	view.Group = analysis.Classify(t)
	view.Selection = ResolveSelection(view.Group, state.Selection)

	preview := analysis.Preview(t, r.previewRows)
	view.Preview = &preview

	if state.Toggles.Info {
		info := analysis.NewInfoReport(t)
		view.Info = &info
		view.Describe = analysis.Describe(t)
	}
	if state.Toggles.Shape {
		shape := analysis.NewShapeReport(t)
		view.Shape = &shape
	}
	if state.Toggles.Nulls {
		nulls := analysis.NewNullReport(t)
		view.Nulls = &nulls
	}

	// each goroutine writes only its own result slot
	var (
		catView  *CategoricalView
		numView  *NumericalView
		corrView *CorrelationView
		results  [3]error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer r.recoverSection(SectionCategorical, &results[0])
		catView, results[0] = r.renderCategorical(gctx, t, view.Selection.Categorical)
		return gctx.Err()
	})
	g.Go(func() error {
		defer r.recoverSection(SectionNumerical, &results[1])
		numView, results[1] = r.renderNumerical(gctx, t, view.Selection.Numerical)
		return gctx.Err()
	})
	g.Go(func() error {
		defer r.recoverSection(SectionCorrelation, &results[2])
		corrView, results[2] = r.renderCorrelation(gctx, t)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view.Categorical, view.Numerical, view.Correlation = catView, numView, corrView
	for i, section := range []Section{SectionCategorical, SectionNumerical, SectionCorrelation} {
		r.record(view, section, results[i])
	}

	r.logger.Debug("Rendered %s in %s (%d skipped, %d failed)", t.Name, time.Since(start), len(view.Skipped), len(view.Errors))
	return view, nil
}

// recoverSection turns a panic in a section goroutine into that section's
// error; gin.Recovery never sees panics raised off the request goroutine.
func (r *Renderer) recoverSection(section Section, result *error) {
	if p := recover(); p != nil {
		r.logger.Error("Panic while rendering %s: %v\n%s", section, p, debug.Stack())
		*result = fmt.Errorf("%w: %v", errSectionPanic, p)
	}
}

func (r *Renderer) record(view *View, section Section, err error) {
	switch {
	case err == nil:
	case core.IsSkipCondition(err):
		view.Skipped = append(view.Skipped, Skip{Section: section, Reason: err})
	default:
		r.logger.Warn("Section %s failed: %v", section, err)
		view.Errors = append(view.Errors, SectionError{Section: section, Err: err})
	}
}

func (r *Renderer) renderCategorical(ctx context.Context, t *dataset.Table, column string) (*CategoricalView, error) {
	if column == "" {
		return nil, core.ErrEmptyGroup
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	freq, err := analysis.Frequencies(t, column)
	if err != nil {
		return nil, err
	}
	figs, err := r.charts.Categorical(freq)
	if err != nil {
		return nil, fmt.Errorf("categorical charts for %q: %w", column, err)
	}
	return &CategoricalView{
		Column:      column,
		Heading:     "Categorical Analysis: " + dataset.DisplayName(column),
		Frequencies: freq,
		Charts:      figs,
	}, nil
}

func (r *Renderer) renderNumerical(ctx context.Context, t *dataset.Table, column string) (*NumericalView, error) {
	if column == "" {
		return nil, core.ErrEmptyGroup
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values, err := analysis.NumericSeries(t, column)
	if err != nil {
		return nil, err
	}

	nv := &NumericalView{
		Column:  column,
		Heading: "Numerical Analysis: " + dataset.DisplayName(column),
		Count:   len(values),
	}
	figs, err := r.charts.Numerical(column, values)
	switch {
	case errors.Is(err, core.ErrInsufficientData):
		nv.Notice = fmt.Sprintf("Column %q has no values to plot.", column)
		return nv, nil
	case errors.Is(err, core.ErrRangeOverflow):
		nv.Notice = fmt.Sprintf("Column %q spans a range too wide to plot.", column)
		return nv, nil
	}
	if err != nil {
		return nil, fmt.Errorf("numerical charts for %q: %w", column, err)
	}
	nv.Charts = figs
	return nv, nil
}

func (r *Renderer) renderCorrelation(ctx context.Context, t *dataset.Table) (*CorrelationView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m, err := analysis.Correlation(t)
	if err != nil {
		return nil, err
	}
	svg, err := r.charts.Heatmap(m)
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	return &CorrelationView{Heading: "Correlation Heatmap", Matrix: m, Heatmap: svg}, nil
}
