package analysis

import (
	"sort"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
)

// Frequencies counts the distinct values of a categorical column.
//
// Missing cells are counted under dataset.MissingLabel, so the counts always
// sum to the row count. Entries are ordered by descending count; equal counts
// keep the order in which the values first appear.
func Frequencies(t *dataset.Table, column string) (dataset.FrequencyTable, error) {
	col, err := t.Column(column)
	if err != nil {
		return dataset.FrequencyTable{}, err
	}
	if col.Kind.IsNumeric() {
		return dataset.FrequencyTable{}, core.NewKindError(column, core.ErrNotCategorical)
	}

	index := make(map[string]int)
	var entries []dataset.Frequency
	for i := 0; i < col.Len(); i++ {
		key := col.Values[i]
		if col.Missing[i] {
			key = dataset.MissingLabel
		}
		if pos, ok := index[key]; ok {
			entries[pos].Count++
			continue
		}
		index[key] = len(entries)
		entries = append(entries, dataset.Frequency{Value: key, Count: 1, Missing: col.Missing[i]})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Count > entries[b].Count
	})

	return dataset.FrequencyTable{
		Column:  column,
		Entries: entries,
		Total:   col.Len(),
	}, nil
}
