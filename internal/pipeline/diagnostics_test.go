package pipeline

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkusuma/macrovar/internal/timeseries"
	"github.com/tkusuma/macrovar/internal/varm"
)

// fitCandidate builds a CandidateModel over the given columns.
func fitCandidate(t *testing.T, cols map[string][]float64, order int) *CandidateModel {
	t.Helper()
	var series []*timeseries.Series
	for _, name := range sortedKeys(cols) {
		series = append(series, makeSeries(t, name, cols[name]))
	}
	ds := makeDataset(t, series...)
	m, err := varm.Fit(ds.Matrix(), ds.Names, order)
	require.NoError(t, err)
	return &CandidateModel{Model: m, Data: ds}
}

func sortedKeys(m map[string][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}

func TestDiagnoseWellBehavedModel(t *testing.T) {
	rng := rand.New(rand.NewSource(130))
	n := 300
	model := fitCandidate(t, map[string][]float64{
		"a": ar1(rng, n, 0.5, 0.4),
		"b": ar1(rng, n, -0.2, 0.2),
	}, 1)

	report, err := Diagnose(model, 0.05, 0, nopLog)
	require.NoError(t, err)

	require.NotNil(t, report.SerialCorrelation)
	require.NotNil(t, report.Heteroskedasticity)
	require.NotNil(t, report.Normality)
	assert.Greater(t, report.Lags, model.Model.Lags)
	assert.Equal(t, 0.05, report.Alpha)

	// the policy is tied to the heteroskedasticity result and nothing else
	if report.Heteroskedasticity.PValue < report.Alpha {
		assert.Equal(t, PolicyRobustHC, report.Policy)
	} else {
		assert.Equal(t, PolicyOrdinary, report.Policy)
	}

	// stability paths are advisory but should exist for both equations here
	assert.Len(t, report.Stability, 2)
	for name, cs := range report.Stability {
		require.NotEmpty(t, cs.W, name)
		for _, w := range cs.W {
			assert.False(t, math.IsNaN(w))
		}
	}
}

func TestDiagnoseFlagsARCHResiduals(t *testing.T) {
	rng := rand.New(rand.NewSource(131))
	n := 500

	// AR(1) signal with strongly clustered volatility in the innovations
	arch := make([]float64, n)
	prev := 0.0
	for i := 0; i < n; i++ {
		e := rng.NormFloat64() * math.Sqrt(0.2+0.75*prev*prev)
		arch[i] = 0.3*atIdx(arch, i-1) + e
		prev = e
	}
	model := fitCandidate(t, map[string][]float64{
		"a": arch,
		"b": ar1(rng, n, 0, 0.2),
	}, 1)

	report, err := Diagnose(model, 0.05, 4, nopLog)
	require.NoError(t, err)
	assert.Less(t, report.Heteroskedasticity.PValue, 0.05)
	assert.Equal(t, PolicyRobustHC, report.Policy)
	assert.Equal(t, 4, report.Lags)
}

func TestDiagnoseSerialCorrelationKeepsOrdinaryPolicy(t *testing.T) {
	rng := rand.New(rand.NewSource(132))
	n := 500

	// pure lag-2 autoregression with homoskedastic innovations: a VAR(1)
	// misses the dynamics, so the residuals carry serial correlation while
	// their variance stays flat
	lag2 := make([]float64, n)
	for i := 0; i < n; i++ {
		lag2[i] = 0.65*atIdx(lag2, i-2) + rng.NormFloat64()
	}
	model := fitCandidate(t, map[string][]float64{
		"a": lag2,
		"b": ar1(rng, n, 0, 0.2),
	}, 1)

	report, err := Diagnose(model, 0.01, 4, nopLog)
	require.NoError(t, err)
	assert.Less(t, report.SerialCorrelation.PValue, 0.01)

	// the covariance policy follows the heteroskedasticity test alone, so a
	// serial-correlation failure leaves it ordinary
	assert.GreaterOrEqual(t, report.Heteroskedasticity.PValue, 0.01)
	assert.Equal(t, PolicyOrdinary, report.Policy)
}

func atIdx(x []float64, i int) float64 {
	if i < 0 {
		return 0
	}
	return x[i]
}

func TestDiagnoseNilModel(t *testing.T) {
	_, err := Diagnose(nil, 0.05, 0, nopLog)
	assert.Error(t, err)
}
