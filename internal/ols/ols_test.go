package ols

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// design builds [1, x1, x2] with deterministic regressors.
func design(n int) *mat.Dense {
	X := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, 1)
		X.Set(i, 1, float64(i)/float64(n))
		X.Set(i, 2, float64(i%7))
	}
	return X
}

func TestRegressRecoversCoefficients(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	n := 400
	X := design(n)

	beta := []float64{1.5, -2.0, 0.25}
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = beta[0]*X.At(i, 0) + beta[1]*X.At(i, 1) + beta[2]*X.At(i, 2) + 0.1*rng.NormFloat64()
	}

	fit, err := Regress(X, y)
	require.NoError(t, err)
	require.Equal(t, n, fit.NObs)
	require.Equal(t, 3, fit.NParams)

	for i, b := range beta {
		assert.InDelta(t, b, fit.Coef[i], 0.1, "coefficient %d", i)
	}
	for i := 0; i < n; i++ {
		assert.InDelta(t, y[i], fit.Fitted[i]+fit.Residuals[i], 1e-9)
	}
	assert.Greater(t, fit.Sigma2, 0.0)
}

func TestRegressExactFit(t *testing.T) {
	n := 50
	X := design(n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = 2*X.At(i, 0) + 3*X.At(i, 1) - X.At(i, 2)
	}
	fit, err := Regress(X, y)
	require.NoError(t, err)
	assert.InDelta(t, 0, fit.RSS, 1e-8)
}

func TestRegressRejectsBadShapes(t *testing.T) {
	X := design(5)
	_, err := Regress(X, []float64{1, 2, 3})
	assert.Error(t, err, "row mismatch")

	_, err = Regress(design(3), []float64{1, 2, 3})
	assert.Error(t, err, "more parameters than observations")
}

func TestCovKinds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	n := 300
	X := design(n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = 1 + 0.5*X.At(i, 1) + rng.NormFloat64()
	}
	fit, err := Regress(X, y)
	require.NoError(t, err)

	for _, kind := range []CovKind{CovOrdinary, CovHC1} {
		cov, err := fit.Cov(kind)
		require.NoError(t, err)
		r, c := cov.Dims()
		require.Equal(t, 3, r)
		require.Equal(t, 3, c)
		for i := 0; i < 3; i++ {
			assert.Greater(t, cov.At(i, i), 0.0, "%s diagonal %d", kind, i)
			se, err := fit.StdErr(i, kind)
			require.NoError(t, err)
			assert.InDelta(t, se*se, cov.At(i, i), 1e-12)
		}
	}
}

func TestWaldExclusion(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	n := 500
	X := design(n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		// column 2 does not enter
		y[i] = 1 + 4*X.At(i, 1) + 0.2*rng.NormFloat64()
	}
	fit, err := Regress(X, y)
	require.NoError(t, err)

	relevant, err := fit.WaldExclusion([]int{1}, CovOrdinary)
	require.NoError(t, err)
	assert.Less(t, relevant.PValue, 0.01)
	assert.Equal(t, 1, relevant.DFNum)

	irrelevant, err := fit.WaldExclusion([]int{2}, CovOrdinary)
	require.NoError(t, err)
	assert.Greater(t, irrelevant.PValue, 0.001)

	robust, err := fit.WaldExclusion([]int{1}, CovHC1)
	require.NoError(t, err)
	assert.Less(t, robust.PValue, 0.01)

	_, err = fit.WaldExclusion(nil, CovOrdinary)
	assert.Error(t, err)
	_, err = fit.WaldExclusion([]int{9}, CovOrdinary)
	assert.Error(t, err)
}

func TestInformationCriteriaOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	n := 200
	X := design(n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		y[i] = 1 + 2*X.At(i, 1) + 0.5*rng.NormFloat64()
	}
	fit, err := Regress(X, y)
	require.NoError(t, err)

	// BIC penalizes harder than AIC for n > e^2
	assert.Greater(t, fit.BIC(), fit.AIC())
	assert.Greater(t, fit.HQ(), fit.AIC())
}
