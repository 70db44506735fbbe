package stattest

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
)

func whiteNoise(rng *rand.Rand, T, K int) *mat.Dense {
	U := mat.NewDense(T, K, nil)
	for i := 0; i < T; i++ {
		for j := 0; j < K; j++ {
			U.Set(i, j, rng.NormFloat64())
		}
	}
	return U
}

func TestPortmanteauWhiteNoise(t *testing.T) {
	rng := rand.New(rand.NewSource(50))
	U := whiteNoise(rng, 300, 3)

	res, err := Portmanteau(U, 8, 1)
	require.NoError(t, err)
	assert.Equal(t, "Portmanteau", res.Test)
	assert.Greater(t, res.Stat, 0.0)
	assert.Greater(t, res.PValue, 0.01, "white noise keeps the no-autocorrelation null")
}

func TestPortmanteauAutocorrelatedResiduals(t *testing.T) {
	rng := rand.New(rand.NewSource(51))
	T, K := 300, 2
	U := mat.NewDense(T, K, nil)
	for j := 0; j < K; j++ {
		prev := 0.0
		for i := 0; i < T; i++ {
			v := 0.8*prev + rng.NormFloat64()
			U.Set(i, j, v)
			prev = v
		}
	}

	res, err := Portmanteau(U, 8, 1)
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.01, "strong AR(1) residuals must be flagged")
}

func TestPortmanteauRequiresHorizonBeyondModelLags(t *testing.T) {
	rng := rand.New(rand.NewSource(52))
	U := whiteNoise(rng, 100, 2)
	_, err := Portmanteau(U, 2, 2)
	assert.Error(t, err)
}

func TestARCHLM(t *testing.T) {
	rng := rand.New(rand.NewSource(53))

	homo := whiteNoise(rng, 400, 2)
	res, err := ARCHLM(homo, 4)
	require.NoError(t, err)
	assert.Equal(t, "ARCH-LM", res.Test)
	assert.Greater(t, res.PValue, 0.01, "homoskedastic residuals keep the null")

	// ARCH(1): volatility clusters strongly
	T := 400
	arch := mat.NewDense(T, 2, nil)
	for j := 0; j < 2; j++ {
		prev := 0.0
		for i := 0; i < T; i++ {
			v := rng.NormFloat64() * math.Sqrt(0.2+0.75*prev*prev)
			arch.Set(i, j, v)
			prev = v
		}
	}
	res, err = ARCHLM(arch, 4)
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.01, "ARCH effects must be flagged")
}

func TestJarqueBera(t *testing.T) {
	rng := rand.New(rand.NewSource(54))

	normal := whiteNoise(rng, 500, 2)
	res, err := JarqueBera(normal)
	require.NoError(t, err)
	assert.Equal(t, "Jarque-Bera", res.Test)
	assert.Greater(t, res.PValue, 0.01, "Gaussian residuals keep normality")

	// chi-square innovations are heavily right-skewed
	T := 500
	skewed := mat.NewDense(T, 2, nil)
	for i := 0; i < T; i++ {
		for j := 0; j < 2; j++ {
			z := rng.NormFloat64()
			skewed.Set(i, j, z*z-1)
		}
	}
	res, err = JarqueBera(skewed)
	require.NoError(t, err)
	assert.Less(t, res.PValue, 0.01, "skewed residuals reject normality")
}

func TestCUSUMShapes(t *testing.T) {
	rng := rand.New(rand.NewSource(55))
	n := 200
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := rng.NormFloat64()
		X.Set(i, 0, 1)
		X.Set(i, 1, x)
		y[i] = 1 + 2*x + 0.5*rng.NormFloat64()
	}
	fit, err := ols.Regress(X, y)
	require.NoError(t, err)

	cs, err := CUSUM(fit)
	require.NoError(t, err)
	require.Equal(t, n-2, len(cs.W))
	require.Equal(t, len(cs.W), len(cs.Upper))
	require.Equal(t, len(cs.W), len(cs.Lower))
	for i := range cs.W {
		assert.False(t, math.IsNaN(cs.W[i]))
		assert.InDelta(t, cs.Upper[i], -cs.Lower[i], 1e-12, "bands are symmetric")
		if i > 0 {
			assert.Greater(t, cs.Upper[i], cs.Upper[i-1], "bands widen with the sample")
		}
	}
}

func TestCUSUMDetectsBreak(t *testing.T) {
	rng := rand.New(rand.NewSource(56))
	n := 200
	X := mat.NewDense(n, 2, nil)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x := 1 + rng.NormFloat64()
		X.Set(i, 0, 1)
		X.Set(i, 1, x)
		slope := 2.0
		if i >= n/2 {
			slope = -2.0 // hard structural break
		}
		y[i] = slope*x + 0.05*rng.NormFloat64()
	}
	fit, err := ols.Regress(X, y)
	require.NoError(t, err)

	cs, err := CUSUM(fit)
	require.NoError(t, err)
	assert.False(t, cs.Stable())
}

func TestBoundsTables(t *testing.T) {
	b, err := FBounds(2, "5%")
	require.NoError(t, err)
	assert.Greater(t, b.Upper, b.Lower)
	assert.InDelta(t, 3.79, b.Lower, 0.5)

	tb, err := TBounds(2, "5%")
	require.NoError(t, err)
	assert.Less(t, tb.Upper, tb.Lower, "t bounds are negative, upper is more negative")

	_, err = FBounds(9, "5%")
	assert.Error(t, err)
	_, err = FBounds(2, "7%")
	assert.Error(t, err)

	// tighter bounds at stricter levels
	b10, err := FBounds(2, "10%")
	require.NoError(t, err)
	b1, err := FBounds(2, "1%")
	require.NoError(t, err)
	assert.Less(t, b10.Upper, b.Upper)
	assert.Less(t, b.Upper, b1.Upper)
}

func TestFBoundsPValueMonotone(t *testing.T) {
	prev := 1.0
	for _, stat := range []float64{0.5, 2, 4, 6, 10} {
		p := FBoundsPValue(stat, 2)
		assert.LessOrEqual(t, p, prev, "stat %f", stat)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
		prev = p
	}
}
