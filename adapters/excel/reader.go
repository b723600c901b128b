package excel

import (
	"io"
	"strings"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/internal"
	datasetproc "csvdash/internal/dataset"

	"github.com/xuri/excelize/v2"
)

// WorkbookDecoder reads the first sheet of an .xlsx workbook as a table
type WorkbookDecoder struct {
	logger *internal.Logger
}

// NewWorkbookDecoder creates a new workbook decoder
func NewWorkbookDecoder(logger *internal.Logger) *WorkbookDecoder {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &WorkbookDecoder{logger: logger.With("WorkbookDecoder")}
}

// Extensions implements ports.TableDecoder
func (d *WorkbookDecoder) Extensions() []string {
	return []string{".xlsx"}
}

// Decode implements ports.TableDecoder
func (d *WorkbookDecoder) Decode(name string, r io.Reader) (*dataset.Table, error) {
	startTime := time.Now()
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, core.NewParseError("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, core.NewParseError("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, core.NewParseError("failed to read sheet %q: %v", sheets[0], err)
	}
	d.logger.Debug("Sheet %q read in %.2fms (%d rows)", sheets[0], float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	rows = dropBlankRows(rows)
	if len(rows) == 0 {
		return nil, core.NewParseError("no columns to parse from file")
	}

	return datasetproc.BuildTable(name, trimTrailingBlank(rows[0]), rows[1:])
}

// dropBlankRows removes rows without any non-blank cell, matching how the CSV
// reader skips empty lines
func dropBlankRows(rows [][]string) [][]string {
	out := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

func trimTrailingBlank(header []string) []string {
	end := len(header)
	for end > 0 && strings.TrimSpace(header[end-1]) == "" {
		end--
	}
	return header[:end]
}
