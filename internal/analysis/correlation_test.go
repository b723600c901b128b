package analysis

import (
	"math"
	"testing"

	"csvdash/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrelation_SymmetricWithUnitDiagonal(t *testing.T) {
	table := loadCSV(t, "x,y,z,label\n1,2,9,a\n2,4,7,b\n3,5,8,c\n4,8,1,d\n5,9,2,e\n")

	m, err := Correlation(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y", "z"}, m.Columns)

	for i := 0; i < m.Size(); i++ {
		assert.Equal(t, 1.0, m.At(i, i))
		for j := 0; j < m.Size(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i))
			assert.LessOrEqual(t, math.Abs(m.At(i, j)), 1.0)
		}
	}
	assert.Greater(t, m.At(0, 1), 0.9)
	assert.Less(t, m.At(0, 2), -0.7)
}

func TestCorrelation_PairwiseComplete(t *testing.T) {
	// the row with a missing y is ignored for (x, y) only
	table := loadCSV(t, "x,y\n1,1\n2,2\n3,\n4,4\n")
	m, err := Correlation(table)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, m.At(0, 1), 1e-12)
}

func TestCorrelation_ZeroVariance(t *testing.T) {
	table := loadCSV(t, "x,c\n1,5\n2,5\n3,5\n")
	m, err := Correlation(table)
	require.NoError(t, err)

	assert.Equal(t, 1.0, m.At(0, 0))
	assert.True(t, math.IsNaN(m.At(1, 1)))
	assert.True(t, math.IsNaN(m.At(0, 1)))
	assert.True(t, math.IsNaN(m.At(1, 0)))
}

func TestCorrelation_NoNumericalColumns(t *testing.T) {
	_, err := Correlation(loadCSV(t, "a,b\nx,y\n"))
	assert.ErrorIs(t, err, core.ErrDegenerateCorrelation)
	assert.True(t, core.IsSkipCondition(err))
}
