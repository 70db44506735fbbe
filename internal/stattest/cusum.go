package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
)

// CUSUMResult holds the recursive-residual CUSUM path and its 5% significance
// boundaries. Advisory output: it feeds a stability plot and nothing else.
type CUSUMResult struct {
	W     []float64 // cumulative standardized recursive residuals
	Upper []float64
	Lower []float64
}

// Stable reports whether the CUSUM path stays inside its boundaries.
func (c *CUSUMResult) Stable() bool {
	for i := range c.W {
		if c.W[i] > c.Upper[i] || c.W[i] < c.Lower[i] {
			return false
		}
	}
	return true
}

// CUSUM computes Brown-Durbin-Evans recursive residuals for a fitted
// single-equation regression and the cumulative-sum path with 5% crossing
// lines (coefficient 0.948).
func CUSUM(fit *ols.Fit) (*CUSUMResult, error) {
	n, k := fit.NObs, fit.NParams
	if n <= k+2 {
		return nil, fmt.Errorf("cusum: sample %d too small for %d parameters", n, k)
	}

	recursive := make([]float64, 0, n-k)
	for t := k + 1; t <= n; t++ {
		// Fit on the first t-1 rows, predict row t-1 (0-based).
		sub := mat.DenseCopyOf(fit.X.Slice(0, t-1, 0, k))
		subFit, err := ols.Regress(sub, fit.Y[:t-1])
		if err != nil {
			// Early sub-samples can be singular; skip them rather than fail
			// an advisory diagnostic.
			continue
		}
		x := mat.NewVecDense(k, nil)
		for j := 0; j < k; j++ {
			x.SetVec(j, fit.X.At(t-1, j))
		}
		var xtx mat.Dense
		xtx.Mul(sub.T(), sub)
		var xtxInv mat.Dense
		if err := xtxInv.Inverse(&xtx); err != nil {
			continue
		}
		var tmp mat.VecDense
		tmp.MulVec(&xtxInv, x)
		denom := 1 + mat.Dot(x, &tmp)
		pred := 0.0
		for j := 0; j < k; j++ {
			pred += subFit.Coef[j] * x.AtVec(j)
		}
		recursive = append(recursive, (fit.Y[t-1]-pred)/math.Sqrt(denom))
	}
	m := len(recursive)
	if m < 3 {
		return nil, fmt.Errorf("cusum: too few recursive residuals (%d)", m)
	}

	// Standard deviation of the recursive residuals.
	mu := mean(recursive)
	sd := 0.0
	for _, w := range recursive {
		sd += (w - mu) * (w - mu)
	}
	sd = math.Sqrt(sd / float64(m-1))
	if sd == 0 {
		return nil, fmt.Errorf("cusum: zero recursive residual variance")
	}

	res := &CUSUMResult{
		W:     make([]float64, m),
		Upper: make([]float64, m),
		Lower: make([]float64, m),
	}
	cum := 0.0
	root := math.Sqrt(float64(m))
	for i, w := range recursive {
		cum += w / sd
		res.W[i] = cum
		bound := 0.948 * (root + 2*float64(i+1)/root)
		res.Upper[i] = bound
		res.Lower[i] = -bound
	}
	return res, nil
}
