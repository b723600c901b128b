package dataset

import (
	"math"
	"strings"
	"time"
	"unicode"

	"csvdash/domain/core"
)

// ColumnKind is the value type inferred for a column at ingestion
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindFloat
)

// String returns the label shown in the info report
func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	default:
		return "text"
	}
}

// DType returns the dataframe-style dtype name used by the info report
func (k ColumnKind) DType() string {
	switch k {
	case KindInteger:
		return "int64"
	case KindFloat:
		return "float64"
	default:
		return "object"
	}
}

// IsNumeric reports whether the kind belongs to the numerical group
func (k ColumnKind) IsNumeric() bool {
	return k == KindInteger || k == KindFloat
}

// MissingLabel is how a missing cell is displayed and counted
const MissingLabel = "NaN"

// Column is one named, typed column of a Table.
//
// Values holds the raw cell text for every row. Numbers is only populated for
// numeric kinds and carries NaN where Missing is true.
type Column struct {
	Name    string     `json:"name"`
	Kind    ColumnKind `json:"kind"`
	Values  []string   `json:"values"`
	Numbers []float64  `json:"numbers,omitempty"`
	Missing []bool     `json:"missing"`
}

// Len returns the number of cells in the column
func (c *Column) Len() int {
	return len(c.Missing)
}

// MissingCount returns how many cells are missing
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.Missing {
		if m {
			n++
		}
	}
	return n
}

// NonNullCount returns how many cells hold a value
func (c *Column) NonNullCount() int {
	return c.Len() - c.MissingCount()
}

// Cell returns the display text of row i
func (c *Column) Cell(i int) string {
	if c.Missing[i] {
		return MissingLabel
	}
	return c.Values[i]
}

// Present returns the non-missing numbers of a numeric column, in row order
func (c *Column) Present() []float64 {
	out := make([]float64, 0, len(c.Numbers))
	for i, v := range c.Numbers {
		if c.Missing[i] || math.IsNaN(v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DisplayName upper-cases the first letter of a column name and lower-cases
// the rest, the form used in section headings and axis labels
func DisplayName(column string) string {
	runes := []rune(strings.ToLower(column))
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
	}
	return string(runes)
}

// Table is the dataset loaded from one uploaded file
type Table struct {
	Name        string    `json:"name"`
	Columns     []Column  `json:"columns"`
	Rows        int       `json:"rows"`
	Fingerprint core.Hash `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// Shape returns (rows, columns)
func (t *Table) Shape() (int, int) {
	return t.Rows, len(t.Columns)
}

// Column looks a column up by name
func (t *Table) Column(name string) (*Column, error) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], nil
		}
	}
	return nil, core.NewColumnNotFoundError(name)
}

// ColumnNames returns the column names in file order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnGroup partitions a table's columns by value type
type ColumnGroup struct {
	Categorical []string `json:"categorical"`
	Numerical   []string `json:"numerical"`
}

// contains reports whether name is in names
func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// HasCategorical reports whether name is in the categorical group
func (g ColumnGroup) HasCategorical(name string) bool { return contains(g.Categorical, name) }

// HasNumerical reports whether name is in the numerical group
func (g ColumnGroup) HasNumerical(name string) bool { return contains(g.Numerical, name) }

// Frequency is one row of a FrequencyTable
type Frequency struct {
	Value   string `json:"value"`
	Count   int    `json:"count"`
	Missing bool   `json:"missing,omitempty"`
}

// FrequencyTable maps the distinct values of a categorical column to their counts,
// ordered by descending count
type FrequencyTable struct {
	Column  string      `json:"column"`
	Entries []Frequency `json:"entries"`
	Total   int         `json:"total"`
}

// Counts returns the entries as a value -> count map
func (f FrequencyTable) Counts() map[string]int {
	out := make(map[string]int, len(f.Entries))
	for _, e := range f.Entries {
		out[e.Value] = e.Count
	}
	return out
}

// Percent returns the share of entry i in percent
func (f FrequencyTable) Percent(i int) float64 {
	if f.Total == 0 {
		return 0
	}
	return float64(f.Entries[i].Count) / float64(f.Total) * 100
}

// CorrelationMatrix holds pairwise Pearson coefficients over the numerical columns
type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"` // row-major, Values[i][j]
}

// At returns the coefficient between columns i and j
func (m CorrelationMatrix) At(i, j int) float64 {
	return m.Values[i][j]
}

// Size returns the number of columns on each side
func (m CorrelationMatrix) Size() int {
	return len(m.Columns)
}
