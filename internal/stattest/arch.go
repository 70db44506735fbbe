package stattest

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tkusuma/macrovar/internal/ols"
)

// ARCHLM runs a multivariate ARCH-LM test on a T x K residual matrix. The
// squared Mahalanobis distances s_t = u_t' S^-1 u_t are regressed on their
// own h lags; under the no-ARCH null T*R^2 is chi-squared with h degrees of
// freedom. A rejection means conditional heteroskedasticity.
func ARCHLM(U *mat.Dense, h int) (*Result, error) {
	T, K := U.Dims()
	if h <= 0 {
		return nil, fmt.Errorf("archlm: lag count must be positive")
	}
	if T <= h+K+1 {
		return nil, fmt.Errorf("archlm: sample %d too small for %d lags", T, h)
	}

	// Sample covariance of the residual vectors.
	means := make([]float64, K)
	for j := 0; j < K; j++ {
		for i := 0; i < T; i++ {
			means[j] += U.At(i, j)
		}
		means[j] /= float64(T)
	}
	S := mat.NewDense(K, K, nil)
	for t := 0; t < T; t++ {
		for a := 0; a < K; a++ {
			for b := 0; b < K; b++ {
				S.Set(a, b, S.At(a, b)+(U.At(t, a)-means[a])*(U.At(t, b)-means[b]))
			}
		}
	}
	S.Scale(1/float64(T-1), S)
	var sInv mat.Dense
	if err := sInv.Inverse(S); err != nil {
		return nil, fmt.Errorf("archlm: residual covariance singular: %w", err)
	}

	// s_t = u_t' S^-1 u_t
	s := make([]float64, T)
	u := mat.NewVecDense(K, nil)
	var tmp mat.VecDense
	for t := 0; t < T; t++ {
		for j := 0; j < K; j++ {
			u.SetVec(j, U.At(t, j)-means[j])
		}
		tmp.MulVec(&sInv, u)
		s[t] = mat.Dot(u, &tmp)
	}

	// Auxiliary regression of s_t on an intercept and h own lags.
	nObs := T - h
	X := mat.NewDense(nObs, h+1, nil)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + h
		y[i] = s[t]
		X.Set(i, 0, 1)
		for j := 1; j <= h; j++ {
			X.Set(i, j, s[t-j])
		}
	}
	fit, err := ols.Regress(X, y)
	if err != nil {
		return nil, fmt.Errorf("archlm: auxiliary regression failed: %w", err)
	}

	// R^2 of the auxiliary regression.
	my := mean(y)
	tss := 0.0
	for _, v := range y {
		tss += (v - my) * (v - my)
	}
	if tss <= 0 {
		return nil, fmt.Errorf("archlm: degenerate auxiliary response")
	}
	r2 := 1 - fit.RSS/tss
	stat := float64(nObs) * r2

	dist := distuv.ChiSquared{K: float64(h)}
	p := 1 - dist.CDF(stat)
	if p < 0 {
		p = 0
	}

	return &Result{Test: "ARCH-LM", Stat: stat, PValue: p, Lags: h, NObs: nObs}, nil
}
