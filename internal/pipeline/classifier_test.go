package pipeline

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkusuma/macrovar/internal/stattest"
)

func TestClassifyStationarySeries(t *testing.T) {
	rng := rand.New(rand.NewSource(101))
	s := makeSeries(t, "infl", ar1(rng, 300, 1.0, 0.3))

	c := Classifier{Alpha: 0.05, Log: nopLog}
	v, err := c.Classify(s, stattest.TrendConst)
	require.NoError(t, err)

	assert.Equal(t, OrderI0, v.Order)
	assert.Equal(t, "infl", v.Variable)
	assert.Nil(t, v.Difference, "no differencing pass for a level-stationary series")
	require.NotNil(t, v.Level.ADF)
	require.NotNil(t, v.Level.PP)
	require.NotNil(t, v.Level.KPSS)
}

func TestClassifyIntegratedSeries(t *testing.T) {
	rng := rand.New(rand.NewSource(102))
	s := makeSeries(t, "fx", driftWalk(rng, 300, 0.5))

	c := Classifier{Alpha: 0.05, Log: nopLog}
	v, err := c.Classify(s, stattest.TrendConst)
	require.NoError(t, err)

	assert.Equal(t, OrderI1, v.Order)
	require.NotNil(t, v.Difference, "I(1) must be confirmed on the difference")
	assert.Less(t, v.Difference.PP.PValue, 0.05)
}

func TestClassifyDoubleIntegratedSeriesFails(t *testing.T) {
	rng := rand.New(rand.NewSource(103))
	s := makeSeries(t, "lvl2", cumsum(driftWalk(rng, 300, 0.5)))

	c := Classifier{Alpha: 0.05, Log: nopLog}
	_, err := c.Classify(s, stattest.TrendConst)
	require.Error(t, err)

	var unsupported *UnsupportedIntegrationError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "lvl2", unsupported.Variable)
}

func TestClassifyShortSeriesFails(t *testing.T) {
	s := makeSeries(t, "tiny", []float64{1, 2, 1, 2, 1, 2, 1, 2})

	c := Classifier{Alpha: 0.05, Log: nopLog}
	_, err := c.Classify(s, stattest.TrendConst)
	require.Error(t, err)

	var tf *TestFailureError
	require.True(t, errors.As(err, &tf))
	assert.Equal(t, StageClassification, tf.Stage)
}
