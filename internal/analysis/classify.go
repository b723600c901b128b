// Package analysis computes the dashboard's reports and statistics from a
// loaded Table. Every function is pure: the Table is only read.
package analysis

import "csvdash/domain/dataset"

// Classify partitions the table's columns by kind, preserving file order.
// Text columns are categorical, integer and float columns are numerical.
func Classify(t *dataset.Table) dataset.ColumnGroup {
	group := dataset.ColumnGroup{
		Categorical: []string{},
		Numerical:   []string{},
	}
	if t == nil {
		return group
	}
	for _, col := range t.Columns {
		if col.Kind.IsNumeric() {
			group.Numerical = append(group.Numerical, col.Name)
		} else {
			group.Categorical = append(group.Categorical, col.Name)
		}
	}
	return group
}
