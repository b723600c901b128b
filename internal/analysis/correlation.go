package analysis

import (
	"math"

	"csvdash/domain/core"
	"csvdash/domain/dataset"

	"gonum.org/v1/gonum/stat"
)

// Correlation computes the Pearson coefficient of every pair of numerical
// columns, each pair over the rows where both cells are present.
//
// The matrix is symmetric. A pair with fewer than two shared rows, or where
// either side has zero variance, is NaN; that includes the diagonal of a
// constant column. A table without numerical columns returns
// core.ErrDegenerateCorrelation.
func Correlation(t *dataset.Table) (dataset.CorrelationMatrix, error) {
	names := Classify(t).Numerical
	if len(names) == 0 {
		return dataset.CorrelationMatrix{}, core.ErrDegenerateCorrelation
	}

	cols := make([]*dataset.Column, len(names))
	for i, name := range names {
		col, err := t.Column(name)
		if err != nil {
			return dataset.CorrelationMatrix{}, err
		}
		cols[i] = col
	}

	values := make([][]float64, len(names))
	for i := range values {
		values[i] = make([]float64, len(names))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwisePearson(cols[i], cols[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			values[i][j] = r
			values[j][i] = r
		}
	}

	return dataset.CorrelationMatrix{Columns: names, Values: values}, nil
}

func pairwisePearson(a, b *dataset.Column) float64 {
	xs := make([]float64, 0, a.Len())
	ys := make([]float64, 0, b.Len())
	for i := 0; i < a.Len() && i < b.Len(); i++ {
		if a.Missing[i] || b.Missing[i] {
			continue
		}
		xs = append(xs, a.Numbers[i])
		ys = append(ys, b.Numbers[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	if stat.Variance(xs, nil) == 0 || stat.Variance(ys, nil) == 0 {
		return math.NaN()
	}

	r := stat.Correlation(xs, ys, nil)
	// rounding can push |r| a hair past 1
	return math.Max(-1, math.Min(1, r))
}
