package varm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// IRF computes orthogonalized impulse responses to a one-time shock in the
// variable at shockIndex. The shock vector is the corresponding column of
// the Cholesky factor of SigmaU; a unit shock is used when the covariance is
// not positive definite. Returns a horizon x K matrix where row h is the
// response of all variables h periods after the shock.
func (m *Model) IRF(horizon, shockIndex int) (*mat.Dense, error) {
	if m == nil || len(m.A) == 0 {
		return nil, fmt.Errorf("varm: model not estimated")
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("varm: horizon must be > 0")
	}
	K := m.K()
	if shockIndex < 0 || shockIndex >= K {
		return nil, fmt.Errorf("varm: shock index %d out of range [0,%d)", shockIndex, K)
	}
	p := m.Lags

	shock := make([]float64, K)
	if m.SigmaU != nil {
		var chol mat.Cholesky
		if chol.Factorize(m.SigmaU) {
			L := mat.NewTriDense(K, mat.Lower, nil)
			chol.LTo(L)
			for i := 0; i < K; i++ {
				shock[i] = L.At(i, shockIndex)
			}
		} else {
			shock[shockIndex] = 1
		}
	} else {
		shock[shockIndex] = 1
	}

	// Moving-average matrices Psi_h, Psi_0 = I.
	psi := make([]*mat.Dense, horizon)
	ident := mat.NewDense(K, K, nil)
	for i := 0; i < K; i++ {
		ident.Set(i, i, 1)
	}
	psi[0] = ident
	for h := 1; h < horizon; h++ {
		M := mat.NewDense(K, K, nil)
		maxLag := p
		if h < p {
			maxLag = h
		}
		for j := 1; j <= maxLag; j++ {
			var tmp mat.Dense
			tmp.Mul(m.A[j-1], psi[h-j])
			M.Add(M, &tmp)
		}
		psi[h] = M
	}

	irf := mat.NewDense(horizon, K, nil)
	shockVec := mat.NewVecDense(K, shock)
	var resp mat.VecDense
	for h := 0; h < horizon; h++ {
		resp.MulVec(psi[h], shockVec)
		for i := 0; i < K; i++ {
			irf.Set(h, i, resp.AtVec(i))
		}
	}
	return irf, nil
}
