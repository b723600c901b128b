package dataset

import (
	"math"
	"testing"

	"csvdash/domain/core"
	"csvdash/domain/dataset"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTable_KindInference(t *testing.T) {
	tests := []struct {
		name     string
		values   []string
		expected dataset.ColumnKind
	}{
		{"integers", []string{"1", "2", "-3"}, dataset.KindInteger},
		{"integers with a gap become float", []string{"1", "", "3"}, dataset.KindFloat},
		{"floats", []string{"1.5", "2", "3e2"}, dataset.KindFloat},
		{"text", []string{"North", "South", "1"}, dataset.KindText},
		{"booleans stay text", []string{"true", "false", "true"}, dataset.KindText},
		{"all missing is float", []string{"", "NA", "null"}, dataset.KindFloat},
		{"hex is text", []string{"0x1p3", "2"}, dataset.KindText},
		{"digit separators are text", []string{"1_000", "2"}, dataset.KindText},
		{"padded integers", []string{" 4", "5 "}, dataset.KindInteger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([][]string, len(tt.values))
			for i, v := range tt.values {
				records[i] = []string{v}
			}
			table, err := BuildTable("t.csv", []string{"col"}, records)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, table.Columns[0].Kind)
		})
	}
}

func TestBuildTable_MissingTokens(t *testing.T) {
	table, err := BuildTable("t.csv", []string{"x"}, [][]string{{"1.5"}, {"NaN"}, {"N/A"}, {"NAN"}, {"2"}})
	require.NoError(t, err)

	col := table.Columns[0]
	assert.Equal(t, dataset.KindFloat, col.Kind)
	assert.Equal(t, []bool{false, true, true, true, false}, col.Missing)
	assert.Equal(t, 3, col.MissingCount())
	assert.True(t, math.IsNaN(col.Numbers[1]))
	assert.Equal(t, []float64{1.5, 2}, col.Present())
}

func TestBuildTable_NaNSpellingStaysTextInTextColumn(t *testing.T) {
	table, err := BuildTable("t.csv", []string{"x"}, [][]string{{"NAN"}, {"abc"}})
	require.NoError(t, err)
	assert.Equal(t, dataset.KindText, table.Columns[0].Kind)
	assert.Equal(t, 0, table.Columns[0].MissingCount())
}

func TestBuildTable_PadsShortRowsRejectsLongRows(t *testing.T) {
	table, err := BuildTable("t.csv", []string{"a", "b"}, [][]string{{"1"}, {"2", "x"}})
	require.NoError(t, err)
	assert.True(t, table.Columns[1].Missing[0])
	assert.Equal(t, 2, table.Rows)

	_, err = BuildTable("t.csv", []string{"a", "b"}, [][]string{{"1", "x", "extra"}})
	require.Error(t, err)
	assert.True(t, core.IsDataParseError(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestNormalizeHeader(t *testing.T) {
	names := normalizeHeader([]string{"a", "", "a", "a", "a.1", " "})
	assert.Equal(t, []string{"a", "Unnamed: 1", "a.1", "a.2", "a.1.1", "Unnamed: 5"}, names)
}

func TestBuildTable_EmptyHeader(t *testing.T) {
	_, err := BuildTable("t.csv", nil, nil)
	assert.True(t, core.IsDataParseError(err))
}
