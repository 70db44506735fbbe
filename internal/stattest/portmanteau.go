package stattest

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Portmanteau runs the adjusted multivariate Ljung-Box test on a T x K
// residual matrix: the null is no residual autocorrelation up to lag h.
// modelLags is the lag order of the fitted model, consumed by the chi-squared
// degrees of freedom K^2*(h - p).
func Portmanteau(U *mat.Dense, h, modelLags int) (*Result, error) {
	T, K := U.Dims()
	if h <= modelLags {
		return nil, fmt.Errorf("portmanteau: lag count %d must exceed model order %d", h, modelLags)
	}
	if T <= h {
		return nil, fmt.Errorf("portmanteau: sample %d too small for %d lags", T, h)
	}

	means := make([]float64, K)
	for j := 0; j < K; j++ {
		col := 0.0
		for i := 0; i < T; i++ {
			col += U.At(i, j)
		}
		means[j] = col / float64(T)
	}

	// Autocovariance matrices C_0 .. C_h.
	cov := func(lag int) *mat.Dense {
		C := mat.NewDense(K, K, nil)
		for t := lag; t < T; t++ {
			for a := 0; a < K; a++ {
				for b := 0; b < K; b++ {
					C.Set(a, b, C.At(a, b)+(U.At(t, a)-means[a])*(U.At(t-lag, b)-means[b]))
				}
			}
		}
		C.Scale(1/float64(T), C)
		return C
	}

	C0 := cov(0)
	var c0Inv mat.Dense
	if err := c0Inv.Inverse(C0); err != nil {
		return nil, fmt.Errorf("portmanteau: residual covariance singular: %w", err)
	}

	// Q = T^2 sum_{j=1}^{h} tr(C_j' C0^-1 C_j C0^-1) / (T-j)
	q := 0.0
	for j := 1; j <= h; j++ {
		Cj := cov(j)
		var a, b, c mat.Dense
		a.Mul(Cj.T(), &c0Inv)
		b.Mul(&a, Cj)
		c.Mul(&b, &c0Inv)
		q += mat.Trace(&c) / float64(T-j)
	}
	q *= float64(T) * float64(T)

	df := K * K * (h - modelLags)
	dist := distuv.ChiSquared{K: float64(df)}
	p := 1 - dist.CDF(q)
	if p < 0 {
		p = 0
	}

	return &Result{Test: "Portmanteau", Stat: q, PValue: p, Lags: h, NObs: T}, nil
}
