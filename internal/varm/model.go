// Package varm implements the reduced-form vector autoregression fitted over
// the stationary working dataset: estimation, lag-order criteria, forecasts,
// impulse responses and bootstrap confidence bands. Each equation's exact
// design matrix and response are retained on the model so single-equation
// inference downstream never re-derives them.
package varm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
)

// Model is a fitted VAR(p) with an intercept in every equation.
type Model struct {
	Lags     int
	VarNames []string

	// A[j] is the K x K coefficient matrix of lag j+1.
	A []*mat.Dense
	// C holds the K intercepts.
	C *mat.VecDense
	// SigmaU is the residual covariance (df-adjusted).
	SigmaU *mat.SymDense
	// Residuals is the (T-p) x K residual matrix.
	Residuals *mat.Dense

	// Equations[i] is the exact single-equation regression of variable i:
	// same design matrix, same sample as the system estimation.
	Equations []*ols.Fit
	// LagCols maps a variable name to the design-matrix columns holding its
	// lags (shared by all equations).
	LagCols map[string][]int

	// NObs is the effective sample T-p.
	NObs int
}

// Fit estimates a VAR(p) on the T x K data matrix by equationwise OLS over a
// common stacked design: [1, y_{t-1,1..K}, ..., y_{t-p,1..K}].
func Fit(data *mat.Dense, names []string, p int) (*Model, error) {
	if data == nil {
		return nil, fmt.Errorf("varm: no data")
	}
	T, K := data.Dims()
	if len(names) != K {
		return nil, fmt.Errorf("varm: %d names for %d columns", len(names), K)
	}
	if p <= 0 {
		return nil, fmt.Errorf("varm: lag order must be positive, got %d", p)
	}
	nParams := 1 + p*K
	Treg := T - p
	if Treg <= nParams {
		return nil, fmt.Errorf("varm: %d observations cannot support VAR(%d) with %d variables (%d parameters per equation)",
			T, p, K, nParams)
	}

	X := mat.NewDense(Treg, nParams, nil)
	lagCols := make(map[string][]int, K)
	for t := 0; t < Treg; t++ {
		X.Set(t, 0, 1)
		col := 1
		for j := 1; j <= p; j++ {
			srcRow := t + p - j
			for k := 0; k < K; k++ {
				X.Set(t, col, data.At(srcRow, k))
				col++
			}
		}
	}
	for j := 1; j <= p; j++ {
		for k := 0; k < K; k++ {
			lagCols[names[k]] = append(lagCols[names[k]], 1+(j-1)*K+k)
		}
	}

	m := &Model{
		Lags:      p,
		VarNames:  append([]string(nil), names...),
		A:         make([]*mat.Dense, p),
		C:         mat.NewVecDense(K, nil),
		Residuals: mat.NewDense(Treg, K, nil),
		Equations: make([]*ols.Fit, K),
		LagCols:   lagCols,
		NObs:      Treg,
	}
	for j := 0; j < p; j++ {
		m.A[j] = mat.NewDense(K, K, nil)
	}

	for eq := 0; eq < K; eq++ {
		y := make([]float64, Treg)
		for t := 0; t < Treg; t++ {
			y[t] = data.At(t+p, eq)
		}
		fit, err := ols.Regress(X, y)
		if err != nil {
			return nil, fmt.Errorf("varm: equation %s: %w", names[eq], err)
		}
		m.Equations[eq] = fit
		m.C.SetVec(eq, fit.Coef[0])
		for j := 0; j < p; j++ {
			for k := 0; k < K; k++ {
				m.A[j].Set(eq, k, fit.Coef[1+j*K+k])
			}
		}
		for t := 0; t < Treg; t++ {
			m.Residuals.Set(t, eq, fit.Residuals[t])
		}
	}

	// Degrees-of-freedom adjusted residual covariance, U'U / (T - m).
	df := float64(Treg - nParams)
	if df <= 0 {
		df = float64(Treg)
	}
	sData := make([]float64, K*K)
	for a := 0; a < K; a++ {
		for b := a; b < K; b++ {
			v := 0.0
			for t := 0; t < Treg; t++ {
				v += m.Residuals.At(t, a) * m.Residuals.At(t, b)
			}
			v /= df
			sData[a*K+b] = v
			sData[b*K+a] = v
		}
	}
	m.SigmaU = mat.NewSymDense(K, sData)

	return m, nil
}

// K returns the number of variables.
func (m *Model) K() int { return len(m.VarNames) }

// Equation returns the stored single-equation view for the named variable.
func (m *Model) Equation(name string) (*ols.Fit, error) {
	for i, n := range m.VarNames {
		if n == name {
			return m.Equations[i], nil
		}
	}
	return nil, fmt.Errorf("varm: no equation for variable %q", name)
}

// Criteria holds the multivariate information criteria of a fitted order.
type Criteria struct {
	AIC float64
	HQ  float64
	SC  float64
	FPE float64
}

// InfoCriteria computes the lag-order selection criteria from the MLE
// residual covariance det(U'U/T).
func (m *Model) InfoCriteria() (Criteria, error) {
	Treg := m.NObs
	K := m.K()
	s := mat.NewSymDense(K, nil)
	for a := 0; a < K; a++ {
		for b := a; b < K; b++ {
			v := 0.0
			for t := 0; t < Treg; t++ {
				v += m.Residuals.At(t, a) * m.Residuals.At(t, b)
			}
			v /= float64(Treg)
			s.SetSym(a, b, v)
		}
	}
	logDet, sign := mat.LogDet(s)
	if sign <= 0 || math.IsInf(logDet, 0) || math.IsNaN(logDet) {
		return Criteria{}, fmt.Errorf("varm: degenerate residual covariance at lag %d", m.Lags)
	}

	T := float64(Treg)
	np := float64(m.Lags*K*K + K) // free parameters across the system
	perEq := float64(1 + m.Lags*K)
	return Criteria{
		AIC: logDet + 2*np/T,
		HQ:  logDet + 2*math.Log(math.Log(T))*np/T,
		SC:  logDet + math.Log(T)*np/T,
		FPE: math.Pow((T+perEq)/(T-perEq), float64(K)) * math.Exp(logDet),
	}, nil
}
