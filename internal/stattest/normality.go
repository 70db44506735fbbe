package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// JarqueBera runs the multivariate Jarque-Bera normality test (Lutkepohl's
// form): residual vectors are orthogonalized with the Cholesky factor of
// their covariance, and skewness and excess kurtosis of the standardized
// components are tested jointly. The statistic is chi-squared with 2K
// degrees of freedom under the normality null.
func JarqueBera(U *mat.Dense) (*Result, error) {
	T, K := U.Dims()
	if T < 10 {
		return nil, fmt.Errorf("jarque-bera: sample %d too small", T)
	}

	means := make([]float64, K)
	for j := 0; j < K; j++ {
		for i := 0; i < T; i++ {
			means[j] += U.At(i, j)
		}
		means[j] /= float64(T)
	}

	sData := make([]float64, K*K)
	for a := 0; a < K; a++ {
		for b := a; b < K; b++ {
			v := 0.0
			for t := 0; t < T; t++ {
				v += (U.At(t, a) - means[a]) * (U.At(t, b) - means[b])
			}
			v /= float64(T)
			sData[a*K+b] = v
			sData[b*K+a] = v
		}
	}
	S := mat.NewSymDense(K, sData)

	var chol mat.Cholesky
	if !chol.Factorize(S) {
		return nil, fmt.Errorf("jarque-bera: residual covariance not positive definite")
	}
	L := mat.NewTriDense(K, mat.Lower, nil)
	chol.LTo(L)

	// Standardize: w_t = L^-1 (u_t - mean).
	W := mat.NewDense(T, K, nil)
	u := mat.NewVecDense(K, nil)
	var w mat.VecDense
	for t := 0; t < T; t++ {
		for j := 0; j < K; j++ {
			u.SetVec(j, U.At(t, j)-means[j])
		}
		if err := w.SolveVec(L, u); err != nil {
			return nil, fmt.Errorf("jarque-bera: standardization failed: %w", err)
		}
		for j := 0; j < K; j++ {
			W.Set(t, j, w.AtVec(j))
		}
	}

	// Component skewness and kurtosis.
	skewSum := 0.0
	kurtSum := 0.0
	for j := 0; j < K; j++ {
		m3 := 0.0
		m4 := 0.0
		for t := 0; t < T; t++ {
			v := W.At(t, j)
			m3 += v * v * v
			m4 += v * v * v * v
		}
		m3 /= float64(T)
		m4 /= float64(T)
		skewSum += m3 * m3
		kurtSum += (m4 - 3) * (m4 - 3)
	}
	stat := float64(T)*skewSum/6 + float64(T)*kurtSum/24
	if math.IsNaN(stat) || math.IsInf(stat, 0) {
		return nil, fmt.Errorf("jarque-bera: degenerate statistic")
	}

	dist := distuv.ChiSquared{K: float64(2 * K)}
	p := 1 - dist.CDF(stat)
	if p < 0 {
		p = 0
	}

	return &Result{Test: "Jarque-Bera", Stat: stat, PValue: p, NObs: T}, nil
}
