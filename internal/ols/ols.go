// Package ols implements the ordinary least squares core used by every
// estimation step: coefficient estimation with an SVD fallback for
// ill-conditioned designs, ordinary and heteroskedasticity-consistent
// covariance matrices, information criteria and Wald exclusion tests.
package ols

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// CovKind selects the coefficient covariance estimator.
type CovKind int

const (
	// CovOrdinary is the textbook sigma^2 (X'X)^-1 estimator.
	CovOrdinary CovKind = iota
	// CovHC1 is the degrees-of-freedom adjusted White estimator.
	CovHC1
)

func (c CovKind) String() string {
	if c == CovHC1 {
		return "HC1"
	}
	return "ordinary"
}

// Fit holds a fitted regression together with the exact design matrix and
// response used in estimation, so downstream tests never re-derive them.
type Fit struct {
	X         *mat.Dense
	Y         []float64
	Coef      []float64
	Fitted    []float64
	Residuals []float64
	NObs      int
	NParams   int
	RSS       float64
	Sigma2    float64 // RSS / (n - k)
}

// Regress fits y on X by least squares. Normal equations are tried first;
// a singular or badly conditioned X'X falls back to a rank-revealing SVD
// solve (minimum-norm solution).
func Regress(X *mat.Dense, y []float64) (*Fit, error) {
	n, k := X.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("ols: design has %d rows but response has %d", n, len(y))
	}
	if n <= k {
		return nil, fmt.Errorf("ols: %d observations for %d parameters", n, k)
	}

	yVec := mat.NewVecDense(n, nil)
	for i, v := range y {
		yVec.SetVec(i, v)
	}

	beta := mat.NewVecDense(k, nil)

	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	var xtxInv mat.Dense
	if invErr := xtxInv.Inverse(&xtx); invErr == nil {
		var xty mat.VecDense
		xty.MulVec(X.T(), yVec)
		beta.MulVec(&xtxInv, &xty)
	} else {
		var svd mat.SVD
		if !svd.Factorize(X, mat.SVDThin) {
			return nil, fmt.Errorf("ols: X'X singular and SVD factorization failed: %v", invErr)
		}
		rank := svd.Rank(1e-12)
		if rank == 0 {
			// Numerically all-zero design: the minimum-norm solution is zero.
		} else {
			yMat := mat.NewDense(n, 1, nil)
			for i, v := range y {
				yMat.Set(i, 0, v)
			}
			var b mat.Dense
			svd.SolveTo(&b, yMat, rank)
			for i := 0; i < k; i++ {
				beta.SetVec(i, b.At(i, 0))
			}
		}
	}

	fit := &Fit{
		X:         X,
		Y:         append([]float64(nil), y...),
		Coef:      make([]float64, k),
		Fitted:    make([]float64, n),
		Residuals: make([]float64, n),
		NObs:      n,
		NParams:   k,
	}
	for i := 0; i < k; i++ {
		fit.Coef[i] = beta.AtVec(i)
	}

	var yhat mat.VecDense
	yhat.MulVec(X, beta)
	for i := 0; i < n; i++ {
		fit.Fitted[i] = yhat.AtVec(i)
		fit.Residuals[i] = y[i] - fit.Fitted[i]
		fit.RSS += fit.Residuals[i] * fit.Residuals[i]
	}
	fit.Sigma2 = fit.RSS / float64(n-k)
	return fit, nil
}

// LogLik returns the Gaussian log-likelihood at the MLE variance RSS/n.
func (f *Fit) LogLik() float64 {
	n := float64(f.NObs)
	s2 := f.RSS / n
	if s2 <= 0 {
		s2 = math.SmallestNonzeroFloat64
	}
	return -0.5 * n * (math.Log(2*math.Pi) + math.Log(s2) + 1)
}

// AIC returns the Akaike information criterion.
func (f *Fit) AIC() float64 { return -2*f.LogLik() + 2*float64(f.NParams) }

// BIC returns the Schwarz criterion.
func (f *Fit) BIC() float64 {
	return -2*f.LogLik() + math.Log(float64(f.NObs))*float64(f.NParams)
}

// HQ returns the Hannan-Quinn criterion.
func (f *Fit) HQ() float64 {
	return -2*f.LogLik() + 2*math.Log(math.Log(float64(f.NObs)))*float64(f.NParams)
}

// Cov returns the coefficient covariance matrix under the given estimator.
func (f *Fit) Cov(kind CovKind) (*mat.Dense, error) {
	n, k := f.NObs, f.NParams

	var xtx mat.Dense
	xtx.Mul(f.X.T(), f.X)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		return nil, fmt.Errorf("ols: X'X singular in covariance: %w", err)
	}

	switch kind {
	case CovOrdinary:
		var cov mat.Dense
		cov.Scale(f.Sigma2, &xtxInv)
		return &cov, nil
	case CovHC1:
		// (X'X)^-1 X' diag(e_i^2) X (X'X)^-1 scaled by n/(n-k).
		meat := mat.NewDense(k, k, nil)
		for i := 0; i < n; i++ {
			e2 := f.Residuals[i] * f.Residuals[i]
			for a := 0; a < k; a++ {
				xa := f.X.At(i, a)
				for b := 0; b < k; b++ {
					meat.Set(a, b, meat.At(a, b)+e2*xa*f.X.At(i, b))
				}
			}
		}
		var tmp, cov mat.Dense
		tmp.Mul(&xtxInv, meat)
		cov.Mul(&tmp, &xtxInv)
		cov.Scale(float64(n)/float64(n-k), &cov)
		return &cov, nil
	default:
		return nil, fmt.Errorf("ols: unknown covariance kind %d", kind)
	}
}

// StdErr returns the standard error of coefficient i under the estimator.
func (f *Fit) StdErr(i int, kind CovKind) (float64, error) {
	cov, err := f.Cov(kind)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(cov.At(i, i)), nil
}

// TStat returns the t statistic of coefficient i under the estimator.
func (f *Fit) TStat(i int, kind CovKind) (float64, error) {
	se, err := f.StdErr(i, kind)
	if err != nil {
		return 0, err
	}
	if se == 0 {
		return 0, fmt.Errorf("ols: zero standard error for coefficient %d", i)
	}
	return f.Coef[i] / se, nil
}

// WaldResult is the outcome of a joint exclusion test.
type WaldResult struct {
	FStat  float64
	PValue float64
	DFNum  int
	DFDen  int
	Cov    CovKind
}

// WaldExclusion tests the joint null that the coefficients at the given
// column indices are all zero, in F form, under the selected covariance
// estimator.
func (f *Fit) WaldExclusion(cols []int, kind CovKind) (*WaldResult, error) {
	q := len(cols)
	if q == 0 {
		return nil, fmt.Errorf("ols: wald test with no restrictions")
	}
	for _, c := range cols {
		if c < 0 || c >= f.NParams {
			return nil, fmt.Errorf("ols: restriction column %d out of range", c)
		}
	}

	cov, err := f.Cov(kind)
	if err != nil {
		return nil, err
	}

	// Rb and R V R' for the selection restriction matrix.
	rb := mat.NewVecDense(q, nil)
	rvr := mat.NewDense(q, q, nil)
	for a, ca := range cols {
		rb.SetVec(a, f.Coef[ca])
		for b, cb := range cols {
			rvr.Set(a, b, cov.At(ca, cb))
		}
	}

	var rvrInv mat.Dense
	if err := rvrInv.Inverse(rvr); err != nil {
		return nil, fmt.Errorf("ols: restricted covariance singular: %w", err)
	}
	var tmp mat.VecDense
	tmp.MulVec(&rvrInv, rb)
	wald := mat.Dot(rb, &tmp)

	dfDen := f.NObs - f.NParams
	if dfDen <= 0 {
		return nil, fmt.Errorf("ols: insufficient degrees of freedom (%d)", dfDen)
	}

	fStat := wald / float64(q)
	var p float64
	if fStat <= 0 || math.IsNaN(fStat) || math.IsInf(fStat, 0) {
		fStat = 0
		p = 1
	} else {
		dist := distuv.F{D1: float64(q), D2: float64(dfDen)}
		p = 1 - dist.CDF(fStat)
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return &WaldResult{FStat: fStat, PValue: p, DFNum: q, DFDen: dfDen, Cov: kind}, nil
}
