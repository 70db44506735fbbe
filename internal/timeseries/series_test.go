package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthly(start time.Time, n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = start.AddDate(0, i, 0)
	}
	return dates
}

func TestNewValidatesInput(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := New("x", monthly(start, 3), []float64{1, 2})
	assert.Error(t, err, "length mismatch")

	dates := monthly(start, 3)
	dates[2] = dates[1]
	_, err = New("x", dates, []float64{1, 2, 3})
	assert.Error(t, err, "dates must strictly increase")

	s, err := New("x", monthly(start, 3), []float64{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
}

func TestDiff(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	s, err := New("x", monthly(start, 4), []float64{1, 3, 6, 10})
	require.NoError(t, err)

	d := s.Diff()
	assert.Equal(t, "d_x", d.Name)
	assert.Equal(t, []float64{2, 3, 4}, d.Values)
	// the first observation is consumed, so dates start one step later
	assert.Equal(t, s.Dates[1], d.Dates[0])
}

func TestAlignIntersects(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := New("a", monthly(start, 6), []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)
	b, err := New("b", monthly(start.AddDate(0, 2, 0), 6), []float64{2, 3, 4, 5, 6, 7})
	require.NoError(t, err)

	ds, err := Align(a, b)
	require.NoError(t, err)
	assert.Equal(t, 4, ds.Len())
	assert.Equal(t, []string{"a", "b"}, ds.Names)
	assert.Equal(t, []float64{2, 3, 4, 5}, ds.Series("a").Values)
	assert.Equal(t, []float64{2, 3, 4, 5}, ds.Series("b").Values)

	m := ds.Matrix()
	r, c := m.Dims()
	assert.Equal(t, 4, r)
	assert.Equal(t, 2, c)
	assert.Equal(t, 2.0, m.At(0, 0))
}

func TestAlignRejectsGaps(t *testing.T) {
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	a, err := New("a", monthly(start, 6), []float64{0, 1, 2, 3, 4, 5})
	require.NoError(t, err)

	gapped := monthly(start, 6)
	copy(gapped[3:], monthly(start.AddDate(0, 4, 0), 3)) // skip one month
	b, err := New("b", gapped, []float64{0, 1, 2, 4, 5, 6})
	require.NoError(t, err)

	_, err = Align(a, b)
	assert.Error(t, err)
}

func TestHPFilterLinearTrend(t *testing.T) {
	n := 120
	values := make([]float64, n)
	for i := range values {
		values[i] = 2.5 + 0.3*float64(i)
	}

	trend, cycle, err := HPFilter(values, MonthlyLambda)
	require.NoError(t, err)
	require.Len(t, trend, n)
	require.Len(t, cycle, n)

	// a linear series has zero second differences, so the filter keeps it
	for i := range values {
		assert.InDelta(t, values[i], trend[i], 1e-6)
		assert.InDelta(t, 0, cycle[i], 1e-6)
	}
}

func TestHPFilterDecomposition(t *testing.T) {
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9, 3, 2, 3, 8, 4}
	trend, cycle, err := HPFilter(values, 1600)
	require.NoError(t, err)
	for i := range values {
		assert.InDelta(t, values[i], trend[i]+cycle[i], 1e-9)
	}
}
