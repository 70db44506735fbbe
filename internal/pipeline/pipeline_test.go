package pipeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tkusuma/macrovar/internal/timeseries"
)

var nopLog = zerolog.Nop()

func makeSeries(t *testing.T, name string, values []float64) *timeseries.Series {
	t.Helper()
	start := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := make([]time.Time, len(values))
	for i := range dates {
		dates[i] = start.AddDate(0, i, 0)
	}
	s, err := timeseries.New(name, dates, values)
	require.NoError(t, err)
	return s
}

func makeDataset(t *testing.T, series ...*timeseries.Series) *timeseries.Dataset {
	t.Helper()
	ds, err := timeseries.Align(series...)
	require.NoError(t, err)
	return ds
}

// ar1 simulates a stationary y_t = c + phi*y_{t-1} + e_t.
func ar1(rng *rand.Rand, n int, c, phi float64) []float64 {
	y := make([]float64, n)
	y[0] = c / (1 - phi)
	for t := 1; t < n; t++ {
		y[t] = c + phi*y[t-1] + rng.NormFloat64()
	}
	return y
}

// driftWalk simulates the I(1) process y_t = y_{t-1} + drift + e_t.
func driftWalk(rng *rand.Rand, n int, drift float64) []float64 {
	y := make([]float64, n)
	for t := 1; t < n; t++ {
		y[t] = y[t-1] + drift + rng.NormFloat64()
	}
	return y
}

// cumsum integrates once more, producing an I(2) process from an I(1) input.
func cumsum(x []float64) []float64 {
	out := make([]float64, len(x))
	s := 0.0
	for i, v := range x {
		s += v
		out[i] = s
	}
	return out
}

func verdict(name string, order IntegrationOrder) *IntegrationVerdict {
	return &IntegrationVerdict{Variable: name, Order: order}
}
