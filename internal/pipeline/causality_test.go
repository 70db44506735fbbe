package pipeline

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkusuma/macrovar/internal/ols"
)

// simulateCausalPair draws (x, y) where lagged x drives y and nothing feeds
// back into x.
func simulateCausalPair(rng *rand.Rand, n int) (x, y []float64) {
	x = make([]float64, n)
	y = make([]float64, n)
	for t := 1; t < n; t++ {
		x[t] = 0.5*x[t-1] + rng.NormFloat64()
		y[t] = 0.3*y[t-1] + 0.8*x[t-1] + rng.NormFloat64()
	}
	return x, y
}

func TestCausalityDetectsDirection(t *testing.T) {
	rng := rand.New(rand.NewSource(140))
	x, y := simulateCausalPair(rng, 500)
	model := fitCandidate(t, map[string][]float64{"x": x, "y": y}, 2)

	forward, err := TestCausality(model, PolicyOrdinary, "x", "y", nopLog)
	require.NoError(t, err)
	assert.Equal(t, "x", forward.Cause)
	assert.Equal(t, "y", forward.Effect)
	assert.Equal(t, Causal, forward.Decision)
	assert.Less(t, forward.PValue, 0.01)
	assert.Equal(t, 2, forward.Lags)
	assert.Equal(t, ols.CovOrdinary, forward.Cov)

	reverse, err := TestCausality(model, PolicyOrdinary, "y", "x", nopLog)
	require.NoError(t, err)
	assert.Greater(t, reverse.PValue, 0.001, "no feedback channel exists")
}

func TestCausalityRobustPolicy(t *testing.T) {
	rng := rand.New(rand.NewSource(141))
	x, y := simulateCausalPair(rng, 500)
	model := fitCandidate(t, map[string][]float64{"x": x, "y": y}, 1)

	v, err := TestCausality(model, PolicyRobustHC, "x", "y", nopLog)
	require.NoError(t, err)
	assert.Equal(t, ols.CovHC1, v.Cov)
	assert.Equal(t, Causal, v.Decision)
}

func TestCausalityUnknownVariables(t *testing.T) {
	rng := rand.New(rand.NewSource(142))
	x, y := simulateCausalPair(rng, 200)
	model := fitCandidate(t, map[string][]float64{"x": x, "y": y}, 1)

	_, err := TestCausality(model, PolicyOrdinary, "ghost", "y", nopLog)
	assert.Error(t, err)
	_, err = TestCausality(model, PolicyOrdinary, "x", "ghost", nopLog)
	assert.Error(t, err)
	_, err = TestCausality(nil, PolicyOrdinary, "x", "y", nopLog)
	assert.Error(t, err)
}
