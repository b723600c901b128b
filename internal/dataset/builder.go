package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
)

// missingTokens are the cell values read as missing, the same set the common
// dataframe readers use by default
var missingTokens = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// IsMissingToken reports whether a raw cell counts as missing
func IsMissingToken(value string) bool {
	return missingTokens[value]
}

// BuildTable turns a header and raw records into a typed Table.
//
// Records shorter than the header are padded with missing cells; longer
// records are rejected. Line numbers in errors assume one record per line
// after the header.
func BuildTable(name string, header []string, records [][]string) (*dataset.Table, error) {
	if len(header) == 0 {
		return nil, core.NewParseError("no columns to parse from file")
	}

	names := normalizeHeader(header)
	columns := make([]dataset.Column, len(names))
	for j, n := range names {
		columns[j] = dataset.Column{
			Name:    n,
			Values:  make([]string, len(records)),
			Missing: make([]bool, len(records)),
		}
	}

	for i, rec := range records {
		if len(rec) > len(names) {
			return nil, core.NewParseError("expected %d fields in line %d, saw %d", len(names), i+2, len(rec))
		}
		for j := range columns {
			if j >= len(rec) {
				columns[j].Missing[i] = true
				continue
			}
			columns[j].Values[i] = rec[j]
			columns[j].Missing[i] = IsMissingToken(rec[j])
		}
	}

	for j := range columns {
		inferColumn(&columns[j])
	}

	return &dataset.Table{
		Name:    name,
		Columns: columns,
		Rows:    len(records),
	}, nil
}

// normalizeHeader names blank headers "Unnamed: i" and de-duplicates repeats
// as name.1, name.2, ...
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int, len(header))

	for i, raw := range header {
		n := raw
		if strings.TrimSpace(n) == "" {
			n = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[n] {
			base := n
			for used[n] {
				counts[base]++
				n = fmt.Sprintf("%s.%d", base, counts[base])
			}
		}
		used[n] = true
		names[i] = n
	}
	return names
}

// inferColumn sets Kind and Numbers from the raw cells
func inferColumn(col *dataset.Column) {
	allInt, allNum := true, true
	anyMissing, anyValue := false, false
	parsed := make([]float64, len(col.Values))
	var nanCells []int

	for i, raw := range col.Values {
		if col.Missing[i] {
			anyMissing = true
			parsed[i] = math.NaN()
			continue
		}

		s := strings.TrimSpace(raw)
		if allInt {
			if v, err := strconv.ParseInt(s, 10, 64); err == nil {
				anyValue = true
				parsed[i] = float64(v)
				continue
			}
			allInt = false
		}
		if !allNum {
			anyValue = true
			continue
		}
		v, ok := parseFloat(s)
		if !ok {
			allNum = false
			anyValue = true
			continue
		}
		if math.IsNaN(v) {
			nanCells = append(nanCells, i)
			parsed[i] = v
			continue
		}
		anyValue = true
		parsed[i] = v
	}

	if allNum && len(nanCells) > 0 {
		// NAN / nAn spellings outside the token list still mean missing in a numeric column
		for _, i := range nanCells {
			col.Missing[i] = true
		}
		anyMissing = true
	}

	switch {
	case !anyValue:
		col.Kind = dataset.KindFloat
	case allInt && !anyMissing:
		col.Kind = dataset.KindInteger
	case allNum:
		col.Kind = dataset.KindFloat
	default:
		col.Kind = dataset.KindText
		return
	}
	col.Numbers = parsed
}

// parseFloat accepts plain decimal notation; Go-only spellings such as hex
// floats or digit separators stay text
func parseFloat(s string) (float64, bool) {
	if s == "" || strings.ContainsAny(s, "_xXpP") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return v, true
		}
		return 0, false
	}
	return v, true
}
