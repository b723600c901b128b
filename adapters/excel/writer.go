package excel

import (
	"fmt"
	"io"
	"math"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/internal"
	"csvdash/internal/analysis"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the exported report
const (
	SheetSummary     = "Summary"
	SheetMissing     = "Missing Values"
	SheetStatistics  = "Statistics"
	SheetFrequencies = "Frequencies"
	SheetCorrelation = "Correlation"
)

const (
	defaultSheetName  = "Sheet1"
	summaryColumnWide = 28
)

// ReportWriter exports the dashboard's reports for a table as an .xlsx workbook
type ReportWriter struct {
	logger *internal.Logger
}

// NewReportWriter creates a new report writer
func NewReportWriter(logger *internal.Logger) *ReportWriter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ReportWriter{logger: logger.With("ReportWriter")}
}

// Write renders the summary, missing-value, statistics, frequency and
// correlation reports of t into a workbook written to w
func (rw *ReportWriter) Write(w io.Writer, t *dataset.Table) error {
	if t == nil {
		return core.ErrNoTable
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{f: f, bold: bold}

	if err := f.SetSheetName(defaultSheetName, SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetMissing, SheetStatistics, SheetFrequencies, SheetCorrelation} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}

	writers := []func(*sheetWriter, *dataset.Table) error{
		writeSummary,
		writeMissing,
		writeStatistics,
		writeFrequencies,
		writeCorrelation,
	}
	for _, write := range writers {
		if err := write(sw, t); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	rw.logger.Info("Exported report for %s (%s)", t.Name, t.Fingerprint.Short())
	return nil
}

// sheetWriter appends rows to sheets and tracks the next free row of each
type sheetWriter struct {
	f    *excelize.File
	bold int
	next map[string]int
}

func (s *sheetWriter) row(sheet string, values ...interface{}) error {
	if s.next == nil {
		s.next = make(map[string]int)
	}
	s.next[sheet]++
	cell, err := excelize.CoordinatesToCellName(1, s.next[sheet])
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s!%s: %w", sheet, cell, err)
	}
	return nil
}

func (s *sheetWriter) header(sheet string, values ...interface{}) error {
	if err := s.row(sheet, values...); err != nil {
		return err
	}
	r := s.next[sheet]
	first, _ := excelize.CoordinatesToCellName(1, r)
	last, _ := excelize.CoordinatesToCellName(max(len(values), 1), r)
	return s.f.SetCellStyle(sheet, first, last, s.bold)
}

func (s *sheetWriter) blank(sheet string) {
	if s.next == nil {
		s.next = make(map[string]int)
	}
	s.next[sheet]++
}

// number converts NaN to an empty cell, which excelize cannot store as a float
func number(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func writeSummary(s *sheetWriter, t *dataset.Table) error {
	info := analysis.NewInfoReport(t)
	if err := s.row(SheetSummary, "File", t.Name); err != nil {
		return err
	}
	if err := s.row(SheetSummary, "Shape", analysis.NewShapeReport(t).Sentence()); err != nil {
		return err
	}
	if err := s.row(SheetSummary, "Dtypes", info.DTypeCounts()); err != nil {
		return err
	}
	s.blank(SheetSummary)

	if err := s.header(SheetSummary, "#", "Column", "Non-Null Count", "Dtype"); err != nil {
		return err
	}
	for _, c := range info.Columns {
		if err := s.row(SheetSummary, c.Index, c.Name, c.NonNull, c.Kind.DType()); err != nil {
			return err
		}
	}
	return s.f.SetColWidth(SheetSummary, "B", "B", summaryColumnWide)
}

func writeMissing(s *sheetWriter, t *dataset.Table) error {
	if err := s.header(SheetMissing, "Column", "Missing"); err != nil {
		return err
	}
	for _, e := range analysis.NewNullReport(t).Entries {
		if err := s.row(SheetMissing, e.Column, e.Missing); err != nil {
			return err
		}
	}
	return nil
}

func writeStatistics(s *sheetWriter, t *dataset.Table) error {
	if err := s.header(SheetStatistics, "Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"); err != nil {
		return err
	}
	for _, cs := range analysis.Describe(t) {
		err := s.row(SheetStatistics, cs.Column, cs.Count,
			number(cs.Mean), number(cs.Std), number(cs.Min),
			number(cs.Q1), number(cs.Median), number(cs.Q3), number(cs.Max))
		if err != nil {
			return err
		}
	}
	return nil
}

func writeFrequencies(s *sheetWriter, t *dataset.Table) error {
	for i, column := range analysis.Classify(t).Categorical {
		freq, err := analysis.Frequencies(t, column)
		if err != nil {
			return err
		}
		if i > 0 {
			s.blank(SheetFrequencies)
		}
		if err := s.header(SheetFrequencies, column, "Count", "Percent"); err != nil {
			return err
		}
		for j, e := range freq.Entries {
			if err := s.row(SheetFrequencies, e.Value, e.Count, math.Round(freq.Percent(j)*100)/100); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeCorrelation(s *sheetWriter, t *dataset.Table) error {
	m, err := analysis.Correlation(t)
	if err != nil {
		if core.IsSkipCondition(err) {
			return s.row(SheetCorrelation, "No numerical columns")
		}
		return err
	}

	head := make([]interface{}, 0, m.Size()+1)
	head = append(head, "")
	for _, c := range m.Columns {
		head = append(head, c)
	}
	if err := s.header(SheetCorrelation, head...); err != nil {
		return err
	}
	for i, name := range m.Columns {
		cells := make([]interface{}, 0, m.Size()+1)
		cells = append(cells, name)
		for j := range m.Columns {
			cells = append(cells, number(m.At(i, j)))
		}
		if err := s.row(SheetCorrelation, cells...); err != nil {
			return err
		}
	}
	return nil
}
