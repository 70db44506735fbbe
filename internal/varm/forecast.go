package varm

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Forecast produces multi-step-ahead forecasts. hist is a T x K history
// matrix of which only the last p rows seed the recursion; the result is a
// steps x K matrix.
func (m *Model) Forecast(hist *mat.Dense, steps int) (*mat.Dense, error) {
	if m == nil || len(m.A) == 0 {
		return nil, fmt.Errorf("varm: model not estimated")
	}
	if steps <= 0 {
		return nil, fmt.Errorf("varm: steps must be > 0")
	}
	p := m.Lags
	T, K := hist.Dims()
	if K != m.K() {
		return nil, fmt.Errorf("varm: history has %d variables, model has %d", K, m.K())
	}
	if T < p {
		return nil, fmt.Errorf("varm: need at least %d history rows, got %d", p, T)
	}

	total := p + steps
	buf := mat.NewDense(total, K, nil)
	for i := 0; i < p; i++ {
		for k := 0; k < K; k++ {
			buf.Set(i, k, hist.At(T-p+i, k))
		}
	}

	for step := 0; step < steps; step++ {
		row := p + step
		for eq := 0; eq < K; eq++ {
			val := m.C.AtVec(eq)
			for lag := 1; lag <= p; lag++ {
				A := m.A[lag-1]
				for j := 0; j < K; j++ {
					val += A.At(eq, j) * buf.At(row-lag, j)
				}
			}
			buf.Set(row, eq, val)
		}
	}
	return mat.DenseCopyOf(buf.Slice(p, total, 0, K)), nil
}
