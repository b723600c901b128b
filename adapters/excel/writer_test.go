package excel

import (
	"bytes"
	"strings"
	"testing"

	"csvdash/domain/core"
	datasetproc "csvdash/internal/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReportWriter_Write(t *testing.T) {
	table, err := datasetproc.NewCSVDecoder().Decode("sales.csv",
		strings.NewReader("region,sales,cost\nNorth,10,4\nSouth,12,\nNorth,7,3\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewReportWriter(quietLogger()).Write(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetMissing, SheetStatistics, SheetFrequencies, SheetCorrelation}, f.GetSheetList())

	shape, err := f.GetCellValue(SheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Dataset contains 3 rows and 3 columns", shape)

	missing, err := f.GetRows(SheetMissing)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Column", "Missing"}, {"region", "0"}, {"sales", "0"}, {"cost", "1"}}, missing)

	freq, err := f.GetRows(SheetFrequencies)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(freq), 3)
	assert.Equal(t, "North", freq[1][0])
	assert.Equal(t, "2", freq[1][1])

	corr, err := f.GetRows(SheetCorrelation)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "sales", "cost"}, corr[0])
	assert.Equal(t, "1", corr[1][1])
}

func TestReportWriter_NoNumericalColumns(t *testing.T) {
	table, err := datasetproc.NewCSVDecoder().Decode("t.csv", strings.NewReader("a\nx\ny\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewReportWriter(quietLogger()).Write(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SheetCorrelation, "A1")
	require.NoError(t, err)
	assert.Equal(t, "No numerical columns", v)
}

func TestReportWriter_NoTable(t *testing.T) {
	err := NewReportWriter(quietLogger()).Write(&bytes.Buffer{}, nil)
	assert.ErrorIs(t, err, core.ErrNoTable)
}
