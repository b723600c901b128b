package dashboard

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/domain/session"
	"csvdash/internal"
	"csvdash/internal/charts"
	datasetproc "csvdash/internal/dataset"
	"csvdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer() *Renderer {
	logger := internal.NewLoggerTo(io.Discard, internal.LogLevelError)
	return NewRenderer(charts.NewRenderer(charts.Config{Width: 320, Height: 200}), 5, logger)
}

func loadedState(t *testing.T, body string) session.State {
	t.Helper()
	table, err := datasetproc.NewCSVDecoder().Decode("data.csv", strings.NewReader(body))
	require.NoError(t, err)
	now := time.Now()
	return session.New(core.NewSessionID(), now).WithTable(table, "data.csv", now)
}

func TestRender_NoFile(t *testing.T) {
	view, err := newTestRenderer().Render(context.Background(), session.New(core.NewSessionID(), time.Now()))
	require.NoError(t, err)

	assert.Equal(t, session.PhaseNoFile, view.Phase)
	assert.Equal(t, session.PromptMessage, view.Notice.Text)
	assert.Nil(t, view.Preview)
	assert.Nil(t, view.Categorical)
	assert.Nil(t, view.Numerical)
	assert.Nil(t, view.Correlation)
}

func TestRender_ExampleFile(t *testing.T) {
	state := loadedState(t, "a,b\n1,x\n2,y\n2,y\n")
	state = state.WithControls(session.Toggles{Info: true, Shape: true, Nulls: true}, session.Selection{}, time.Now())

	view, err := newTestRenderer().Render(context.Background(), state)
	require.NoError(t, err)

	assert.Equal(t, session.PhaseFileLoaded, view.Phase)
	assert.Equal(t, session.LoadedMessage, view.Notice.Text)
	assert.Equal(t, "Dataset contains 3 rows and 2 columns", view.Shape.Sentence())
	assert.Equal(t, session.Selection{Categorical: "b", Numerical: "a"}, view.Selection)
	assert.Len(t, view.Preview.Rows, 3)
	require.NotNil(t, view.Info)
	require.NotNil(t, view.Nulls)

	require.NotNil(t, view.Categorical)
	assert.Equal(t, "Categorical Analysis: B", view.Categorical.Heading)
	assert.Equal(t, map[string]int{"y": 2, "x": 1}, view.Categorical.Frequencies.Counts())
	assert.NotEmpty(t, view.Categorical.Charts.Bar)

	require.NotNil(t, view.Numerical)
	assert.Equal(t, "Numerical Analysis: A", view.Numerical.Heading)
	assert.NotEmpty(t, view.Numerical.Charts.Histogram)

	require.NotNil(t, view.Correlation)
	assert.Equal(t, 1.0, view.Correlation.Matrix.At(0, 0))
	assert.Empty(t, view.Skipped)
	assert.Empty(t, view.Errors)
}

func TestRender_TogglesOff(t *testing.T) {
	view, err := newTestRenderer().Render(context.Background(), loadedState(t, "a,b\n1,x\n"))
	require.NoError(t, err)
	assert.Nil(t, view.Info)
	assert.Nil(t, view.Shape)
	assert.Nil(t, view.Nulls)
	assert.NotNil(t, view.Preview)
}

func TestRender_NoNumericalColumnsSkipsSections(t *testing.T) {
	view, err := newTestRenderer().Render(context.Background(), loadedState(t, "city,colour\nParis,red\nOslo,blue\n"))
	require.NoError(t, err)

	assert.NotNil(t, view.Categorical)
	assert.Nil(t, view.Numerical)
	assert.Nil(t, view.Correlation)
	assert.True(t, view.IsSkipped(SectionNumerical))
	assert.True(t, view.IsSkipped(SectionCorrelation))
	assert.False(t, view.IsSkipped(SectionCategorical))
	assert.Empty(t, view.Errors)

	for _, s := range view.Skipped {
		switch s.Section {
		case SectionNumerical:
			assert.ErrorIs(t, s.Reason, core.ErrEmptyGroup)
		case SectionCorrelation:
			assert.ErrorIs(t, s.Reason, core.ErrDegenerateCorrelation)
		}
	}
}

func TestRender_NoCategoricalColumns(t *testing.T) {
	view, err := newTestRenderer().Render(context.Background(), loadedState(t, "x,y\n1,2\n3,5\n4,4\n"))
	require.NoError(t, err)
	assert.Nil(t, view.Categorical)
	assert.True(t, view.IsSkipped(SectionCategorical))
	assert.NotNil(t, view.Numerical)
	assert.NotNil(t, view.Correlation)
}

func TestRender_AllMissingNumericalColumn(t *testing.T) {
	state := loadedState(t, "x,y\n1,\n2,\n")
	state = state.WithControls(session.Toggles{}, session.Selection{Numerical: "y"}, time.Now())

	view, err := newTestRenderer().Render(context.Background(), state)
	require.NoError(t, err)
	require.NotNil(t, view.Numerical)
	assert.Equal(t, "y", view.Numerical.Column)
	assert.Contains(t, view.Numerical.Notice, "no values")
	assert.Empty(t, view.Numerical.Charts.Histogram)
	assert.Empty(t, view.Errors)
}

func TestRender_NonFiniteAndExtremeNumericalColumns(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantNotice string
	}{
		{name: "infinity", body: "x\n1\ninf\n"},
		{name: "negative infinity", body: "x\n-inf\n1\n2\n"},
		{name: "out of range literal", body: "x\n1e400\n3\n4\n"},
		{name: "range overflows", body: "x\n-1e308\n1e308\n", wantNotice: "too wide to plot"},
		{name: "large and close together", body: "x\n100000000000000000\n100000000000000016\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			view, err := newTestRenderer().Render(ctx, loadedState(t, tt.body))
			require.NoError(t, err)
			assert.Empty(t, view.Errors)
			require.NotNil(t, view.Numerical)
			if tt.wantNotice != "" {
				assert.Contains(t, view.Numerical.Notice, tt.wantNotice)
				return
			}
			assert.Empty(t, view.Numerical.Notice)
			assert.NotEmpty(t, view.Numerical.Charts.Histogram)
			assert.NotEmpty(t, view.Numerical.Charts.Boxplot)
		})
	}
}

func TestRender_SectionPanicBecomesSectionError(t *testing.T) {
	r := newTestRenderer()
	var err error
	func() {
		defer r.recoverSection(SectionNumerical, &err)
		panic("index out of range")
	}()
	assert.ErrorIs(t, err, errSectionPanic)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestRender_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestRenderer().Render(ctx, loadedState(t, "a,b\n1,x\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestResolveSelection(t *testing.T) {
	group := dataset.ColumnGroup{Categorical: []string{"c1", "c2"}, Numerical: []string{"n1"}}

	assert.Equal(t, session.Selection{Categorical: "c1", Numerical: "n1"}, ResolveSelection(group, session.Selection{}))
	assert.Equal(t, session.Selection{Categorical: "c2", Numerical: "n1"},
		ResolveSelection(group, session.Selection{Categorical: "c2", Numerical: "c2"}))
	assert.Equal(t, session.Selection{}, ResolveSelection(dataset.ColumnGroup{}, session.Selection{Categorical: "gone"}))
}

func TestRender_GeneratedOrders(t *testing.T) {
	config := testkit.DefaultShoppingConfig()
	config.OrderCount = 300
	data, err := testkit.NewShoppingDataGenerator(config).GenerateCSV()
	require.NoError(t, err)

	state := loadedState(t, string(data))
	state = state.WithControls(session.Toggles{Info: true, Shape: true, Nulls: true},
		session.Selection{Categorical: "channel", Numerical: "revenue"}, time.Now())

	view, err := newTestRenderer().Render(context.Background(), state)
	require.NoError(t, err)

	assert.Empty(t, view.Errors)
	assert.Empty(t, view.Skipped)
	assert.Equal(t, testkit.ShoppingNumericColumns, view.Group.Numerical)
	assert.Equal(t, "Dataset contains 300 rows and 11 columns", view.Shape.Sentence())
	assert.Positive(t, view.Nulls.Total())

	require.NotNil(t, view.Categorical)
	assert.Equal(t, "Categorical Analysis: Channel", view.Categorical.Heading)
	assert.Len(t, view.Categorical.Frequencies.Entries, 3)
	assert.Equal(t, "web", view.Categorical.Frequencies.Entries[0].Value)

	require.NotNil(t, view.Numerical)
	assert.True(t, view.Numerical.Charts.HasDensity)

	require.NotNil(t, view.Correlation)
	assert.Equal(t, len(testkit.ShoppingNumericColumns), view.Correlation.Matrix.Size())
	assert.Greater(t, view.Correlation.Matrix.At(1, 3), 0.0, "unit_price and revenue move together")
}
