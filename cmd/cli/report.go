package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/domain/session"
	"csvdash/internal/analysis"
	"csvdash/internal/charts"
	"csvdash/internal/container"
	"csvdash/internal/dashboard"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

type reportOptions struct {
	info, shape, nulls, describe, correlation bool
	categorical, numerical                    string
	categoricalSet, numericalSet              bool
}

// all reports whether no section was picked, which prints everything
func (o reportOptions) all() bool {
	return !o.info && !o.shape && !o.nulls && !o.describe && !o.correlation && !o.categoricalSet && !o.numericalSet
}

func runReport(w io.Writer, t *dataset.Table, opts reportOptions) error {
	all := opts.all()
	group := analysis.Classify(t)
	sel := dashboard.ResolveSelection(group, session.Selection{
		Categorical: opts.categorical,
		Numerical:   opts.numerical,
	})
	if opts.categorical != "" && sel.Categorical != opts.categorical {
		return fmt.Errorf("%q is not a categorical column", opts.categorical)
	}
	if opts.numerical != "" && sel.Numerical != opts.numerical {
		return fmt.Errorf("%q is not a numerical column", opts.numerical)
	}

	if all || opts.shape {
		section(w, "Shape")
		fmt.Fprintln(w, analysis.NewShapeReport(t).Sentence())
	}
	if all || opts.info {
		section(w, "Data Info")
		fmt.Fprint(w, analysis.NewInfoReport(t).Text())
	}
	if all || opts.describe {
		section(w, "Statistics")
		printDescribe(w, analysis.Describe(t))
	}
	if all || opts.nulls {
		section(w, "Missing Value Count")
		printNulls(w, analysis.NewNullReport(t))
	}
	if all || opts.categoricalSet {
		if err := printCategorical(w, t, sel.Categorical); err != nil {
			return err
		}
	}
	if all || opts.numericalSet {
		if err := printNumerical(w, t, sel.Numerical); err != nil {
			return err
		}
	}
	if all || opts.correlation {
		if err := printCorrelation(w, t); err != nil {
			return err
		}
	}
	return nil
}

func section(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, color.YellowString("%s", title))
}

func skipped(w io.Writer, what string, err error) {
	fmt.Fprintln(w, color.CyanString("Skipping %s: %v", what, err))
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	return table
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func printDescribe(w io.Writer, stats []analysis.ColumnStats) {
	if len(stats) == 0 {
		fmt.Fprintln(w, "No numerical columns")
		return
	}
	table := newTable(w, "Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max")
	for _, cs := range stats {
		table.Append([]string{
			cs.Column, strconv.Itoa(cs.Count),
			number(cs.Mean), number(cs.Std), number(cs.Min),
			number(cs.Q1), number(cs.Median), number(cs.Q3), number(cs.Max),
		})
	}
	table.Render()
}

func printNulls(w io.Writer, report analysis.NullReport) {
	table := newTable(w, "Column", "Missing")
	for _, e := range report.Entries {
		table.Append([]string{e.Column, strconv.Itoa(e.Missing)})
	}
	table.SetFooter([]string{"Total", strconv.Itoa(report.Total())})
	table.Render()
}

func printCategorical(w io.Writer, t *dataset.Table, column string) error {
	if column == "" {
		skipped(w, "categorical analysis", core.ErrEmptyGroup)
		return nil
	}
	freq, err := analysis.Frequencies(t, column)
	if err != nil {
		return err
	}

	section(w, "Categorical Analysis: "+dataset.DisplayName(column))
	table := newTable(w, column, "count", "%")
	for i, e := range freq.Entries {
		table.Append([]string{e.Value, strconv.Itoa(e.Count), fmt.Sprintf("%.2f%%", freq.Percent(i))})
	}
	table.Render()
	return nil
}

func printNumerical(w io.Writer, t *dataset.Table, column string) error {
	if column == "" {
		skipped(w, "numerical analysis", core.ErrEmptyGroup)
		return nil
	}
	values, err := analysis.NumericSeries(t, column)
	if err != nil {
		return err
	}

	section(w, "Numerical Analysis: "+dataset.DisplayName(column))
	box, err := analysis.BoxStats(values)
	if err != nil {
		if core.IsSkipCondition(err) {
			skipped(w, column, err)
			return nil
		}
		return err
	}

	table := newTable(w, "count", "lower whisker", "Q1", "median", "Q3", "upper whisker", "outliers")
	table.Append([]string{
		strconv.Itoa(box.Count), number(box.LowerWhisker), number(box.Q1),
		number(box.Median), number(box.Q3), number(box.UpperWhisker), strconv.Itoa(len(box.Outliers)),
	})
	table.Render()

	bins, err := analysis.Histogram(values)
	if err != nil {
		return err
	}
	hist := newTable(w, "bin", "count")
	for i, count := range bins.Counts {
		hist.Append([]string{
			fmt.Sprintf("[%s, %s)", number(bins.Edges[i]), number(bins.Edges[i+1])),
			strconv.Itoa(count),
		})
	}
	hist.Render()
	return nil
}

func printCorrelation(w io.Writer, t *dataset.Table) error {
	m, err := analysis.Correlation(t)
	if err != nil {
		if core.IsSkipCondition(err) {
			skipped(w, "correlation heatmap", err)
			return nil
		}
		return err
	}

	section(w, "Correlation Heatmap")
	table := newTable(w, append([]string{""}, m.Columns...)...)
	for i, name := range m.Columns {
		row := []string{name}
		for j := range m.Columns {
			row = append(row, charts.FormatCoefficient(m.At(i, j)))
		}
		table.Append(row)
	}
	table.Render()
	return nil
}

type chartOptions struct {
	outDir                 string
	categorical, numerical string
}

// runCharts renders every figure of the dashboard for t into opts.outDir
func runCharts(ctx context.Context, w io.Writer, app *container.Container, t *dataset.Table, opts chartOptions) error {
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.outDir, err)
	}

	state := session.New(core.NewSessionID(), t.LoadedAt).
		WithTable(t, t.Name, t.LoadedAt).
		WithControls(session.Toggles{}, session.Selection{Categorical: opts.categorical, Numerical: opts.numerical}, t.LoadedAt)

	view, err := app.Renderer.Render(ctx, state)
	if err != nil {
		return err
	}
	for _, s := range view.Skipped {
		skipped(w, string(s.Section), s.Reason)
	}
	for _, e := range view.Errors {
		fmt.Fprintln(w, color.RedString("%s failed: %v", e.Section, e.Err))
	}

	type figure struct {
		name string
		svg  []byte
	}
	var figures []figure
	if c := view.Categorical; c != nil {
		figures = append(figures, figure{c.Column + "_bar.svg", c.Charts.Bar}, figure{c.Column + "_pie.svg", c.Charts.Pie})
	}
	if n := view.Numerical; n != nil && n.Notice == "" {
		figures = append(figures, figure{n.Column + "_histogram.svg", n.Charts.Histogram}, figure{n.Column + "_boxplot.svg", n.Charts.Boxplot})
	}
	if view.Correlation != nil {
		figures = append(figures, figure{"correlation_heatmap.svg", view.Correlation.Heatmap})
	}

	for _, f := range figures {
		path := filepath.Join(opts.outDir, safeFileName(f.name))
		if err := os.WriteFile(path, f.svg, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintln(w, color.GreenString("Wrote %s", path))
	}
	return nil
}

// safeFileName keeps column names from escaping the output directory
func safeFileName(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			out[i] = '_'
		}
	}
	return string(out)
}
