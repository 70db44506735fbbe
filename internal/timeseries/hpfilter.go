package timeseries

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// MonthlyLambda is the conventional Hodrick-Prescott smoothing parameter for
// monthly data.
const MonthlyLambda = 14400

// HPFilter decomposes a series into trend and cycle components by solving
// (I + lambda*D'D) tau = y, where D is the (n-2) x n second-difference
// operator. The cycle is y - tau.
func HPFilter(values []float64, lambda float64) (trend, cycle []float64, err error) {
	n := len(values)
	if n < 4 {
		return nil, nil, fmt.Errorf("hp filter: need at least 4 observations, got %d", n)
	}
	if lambda <= 0 {
		return nil, nil, fmt.Errorf("hp filter: lambda must be > 0, got %g", lambda)
	}

	// D is (n-2) x n with rows [1, -2, 1] at increasing offsets.
	D := mat.NewDense(n-2, n, nil)
	for i := 0; i < n-2; i++ {
		D.Set(i, i, 1)
		D.Set(i, i+1, -2)
		D.Set(i, i+2, 1)
	}

	var dtd mat.Dense
	dtd.Mul(D.T(), D)
	dtd.Scale(lambda, &dtd)

	// A = I + lambda*D'D, symmetric positive definite.
	aData := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := dtd.At(i, j)
			if i == j {
				v += 1
			}
			aData[i*n+j] = v
		}
	}
	A := mat.NewSymDense(n, aData)

	var chol mat.Cholesky
	if !chol.Factorize(A) {
		return nil, nil, fmt.Errorf("hp filter: system matrix not positive definite")
	}

	y := mat.NewVecDense(n, nil)
	for i, v := range values {
		y.SetVec(i, v)
	}
	var tau mat.VecDense
	if err := chol.SolveVecTo(&tau, y); err != nil {
		return nil, nil, fmt.Errorf("hp filter: solve failed: %w", err)
	}

	trend = make([]float64, n)
	cycle = make([]float64, n)
	for i := 0; i < n; i++ {
		trend[i] = tau.AtVec(i)
		cycle[i] = values[i] - trend[i]
	}
	return trend, cycle, nil
}
