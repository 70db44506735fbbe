// Package stattest supplies the statistical test battery the pipeline
// orchestrates: unit-root and stationarity tests on single series (ADF,
// Phillips-Perron, KPSS), residual diagnostics for multivariate models
// (portmanteau, ARCH-LM, Jarque-Bera) and the Pesaran-Shin-Smith bounds
// critical values.
package stattest

import "fmt"

// Trend selects the deterministic component of a test's null model.
type Trend int

const (
	// TrendConst includes an intercept only.
	TrendConst Trend = iota
	// TrendConstTrend includes an intercept and a linear trend, for series
	// with a secular drift.
	TrendConstTrend
)

func (t Trend) String() string {
	if t == TrendConstTrend {
		return "ct"
	}
	return "c"
}

// Result is the common shape of a single-series test outcome.
type Result struct {
	Test      string
	Stat      float64
	PValue    float64
	Lags      int
	NObs      int
	Criticals map[string]float64
}

func (r Result) String() string {
	return fmt.Sprintf("%s: stat=%.4f p=%.4f lags=%d n=%d", r.Test, r.Stat, r.PValue, r.Lags, r.NObs)
}

func diff(x []float64) []float64 {
	d := make([]float64, len(x)-1)
	for i := 1; i < len(x); i++ {
		d[i-1] = x[i] - x[i-1]
	}
	return d
}

func mean(x []float64) float64 {
	s := 0.0
	for _, v := range x {
		s += v
	}
	return s / float64(len(x))
}

// bartlettLongRunVariance is the Newey-West long-run variance estimate of a
// zero-mean-adjusted residual series with Bartlett kernel weights.
func bartlettLongRunVariance(resid []float64, nlags int) float64 {
	n := len(resid)
	s2 := 0.0
	for _, r := range resid {
		s2 += r * r
	}
	s2 /= float64(n)
	for l := 1; l <= nlags; l++ {
		cov := 0.0
		for i := l; i < n; i++ {
			cov += resid[i] * resid[i-l]
		}
		cov /= float64(n)
		weight := 1.0 - float64(l)/float64(nlags+1)
		s2 += 2 * weight * cov
	}
	if s2 <= 0 {
		s2 = 1e-10
	}
	return s2
}
