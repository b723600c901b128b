package analysis

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"csvdash/domain/dataset"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
)

// InfoColumn is one row of the info report
type InfoColumn struct {
	Index   int                `json:"index"`
	Name    string             `json:"name"`
	NonNull int                `json:"non_null"`
	Kind    dataset.ColumnKind `json:"kind"`
}

// InfoReport is the per-column overview of a table: name, non-null count and type
type InfoReport struct {
	Name    string       `json:"name"`
	Rows    int          `json:"rows"`
	Columns []InfoColumn `json:"columns"`
}

// NewInfoReport builds the info report for t
func NewInfoReport(t *dataset.Table) InfoReport {
	report := InfoReport{Name: t.Name, Rows: t.Rows, Columns: make([]InfoColumn, len(t.Columns))}
	for i := range t.Columns {
		col := &t.Columns[i]
		report.Columns[i] = InfoColumn{
			Index:   i,
			Name:    col.Name,
			NonNull: col.NonNullCount(),
			Kind:    col.Kind,
		}
	}
	return report
}

// DTypeCounts tallies columns per dtype, e.g. "float64(1), int64(2), object(1)"
func (r InfoReport) DTypeCounts() string {
	counts := make(map[string]int)
	for _, c := range r.Columns {
		counts[c.Kind.DType()]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s(%d)", k, counts[k])
	}
	return strings.Join(parts, ", ")
}

// Text renders the report as preformatted text
func (r InfoReport) Text() string {
	var buf bytes.Buffer
	if r.Rows == 0 {
		fmt.Fprintf(&buf, "RangeIndex: 0 entries\n")
	} else {
		fmt.Fprintf(&buf, "RangeIndex: %d entries, 0 to %d\n", r.Rows, r.Rows-1)
	}
	fmt.Fprintf(&buf, "Data columns (total %d columns):\n", len(r.Columns))

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"#", "Column", "Non-Null Count", "Dtype"})
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, c := range r.Columns {
		table.Append([]string{
			strconv.Itoa(c.Index),
			c.Name,
			fmt.Sprintf("%d non-null", c.NonNull),
			c.Kind.DType(),
		})
	}
	table.Render()

	fmt.Fprintf(&buf, "dtypes: %s\n", r.DTypeCounts())
	return buf.String()
}

// ShapeReport holds the table dimensions
type ShapeReport struct {
	Rows    int `json:"rows"`
	Columns int `json:"columns"`
}

// NewShapeReport builds the shape report for t
func NewShapeReport(t *dataset.Table) ShapeReport {
	rows, cols := t.Shape()
	return ShapeReport{Rows: rows, Columns: cols}
}

// Sentence renders the shape the way the dashboard prints it
func (s ShapeReport) Sentence() string {
	return fmt.Sprintf("Dataset contains %d rows and %d columns", s.Rows, s.Columns)
}

// NullCount is the missing-cell count of one column
type NullCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// NullReport lists every column once, in table order, with its missing count
type NullReport struct {
	Entries []NullCount `json:"entries"`
}

// NewNullReport builds the missing-value report for t
func NewNullReport(t *dataset.Table) NullReport {
	report := NullReport{Entries: make([]NullCount, len(t.Columns))}
	for i := range t.Columns {
		report.Entries[i] = NullCount{Column: t.Columns[i].Name, Missing: t.Columns[i].MissingCount()}
	}
	return report
}

// Total returns the number of missing cells in the table
func (r NullReport) Total() int {
	total := 0
	for _, e := range r.Entries {
		total += e.Missing
	}
	return total
}

// ColumnStats are the descriptive statistics of one numerical column
type ColumnStats struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Describe computes count, mean, sample standard deviation, min, quartiles and
// max for every numerical column. A column without values reports count 0 and
// NaN statistics; std is NaN below two values.
func Describe(t *dataset.Table) []ColumnStats {
	names := Classify(t).Numerical
	out := make([]ColumnStats, 0, len(names))
	for _, name := range names {
		col, err := t.Column(name)
		if err != nil {
			continue
		}
		out = append(out, describeValues(name, col.Present()))
	}
	return out
}

func describeValues(name string, values []float64) ColumnStats {
	nan := math.NaN()
	cs := ColumnStats{Column: name, Count: len(values), Mean: nan, Std: nan, Min: nan, Q1: nan, Median: nan, Q3: nan, Max: nan}
	if len(values) == 0 {
		return cs
	}

	cs.Mean, _ = stats.Mean(values)
	cs.Min, _ = stats.Min(values)
	cs.Max, _ = stats.Max(values)
	if len(values) > 1 {
		cs.Std, _ = stats.StandardDeviationSample(values)
	}

	sorted := sortedCopy(values)
	cs.Q1 = quantileSorted(sorted, 0.25)
	cs.Median = quantileSorted(sorted, 0.5)
	cs.Q3 = quantileSorted(sorted, 0.75)
	return cs
}

// DataPreview is the first rows of a table rendered as text
type DataPreview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Preview returns the first n rows, missing cells shown as dataset.MissingLabel
func Preview(t *dataset.Table, n int) DataPreview {
	if n > t.Rows {
		n = t.Rows
	}
	if n < 0 {
		n = 0
	}
	preview := DataPreview{Columns: t.ColumnNames(), Rows: make([][]string, n)}
	for i := 0; i < n; i++ {
		row := make([]string, len(t.Columns))
		for j := range t.Columns {
			row[j] = t.Columns[j].Cell(i)
		}
		preview.Rows[i] = row
	}
	return preview
}
