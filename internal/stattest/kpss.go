package stattest

import (
	"fmt"
	"math"
)

// KPSS runs the Kwiatkowski-Phillips-Schmidt-Shin test. The null hypothesis
// is stationarity (level stationarity under TrendConst, trend stationarity
// under TrendConstTrend). nlags <= 0 selects the 12*(n/100)^0.25 bandwidth
// default.
func KPSS(values []float64, trend Trend, nlags int) (*Result, error) {
	n := len(values)
	if n < 15 {
		return nil, fmt.Errorf("kpss: need at least 15 observations, got %d", n)
	}
	if nlags <= 0 {
		nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
	}
	if nlags >= n {
		nlags = n - 1
	}

	// Residuals from the deterministic null model.
	resid := make([]float64, n)
	if trend == TrendConstTrend {
		// Linear detrend y = a + b*t.
		var sumT, sumY, sumTY, sumT2 float64
		for i, v := range values {
			t := float64(i)
			sumT += t
			sumY += v
			sumTY += t * v
			sumT2 += t * t
		}
		nf := float64(n)
		b := (nf*sumTY - sumT*sumY) / (nf*sumT2 - sumT*sumT)
		a := (sumY - b*sumT) / nf
		for i, v := range values {
			resid[i] = v - a - b*float64(i)
		}
	} else {
		m := mean(values)
		for i, v := range values {
			resid[i] = v - m
		}
	}

	// Partial sums and long-run variance.
	cum := 0.0
	etaSq := 0.0
	for _, r := range resid {
		cum += r
		etaSq += cum * cum
	}
	s2 := bartlettLongRunVariance(resid, nlags)

	stat := etaSq / (float64(n) * float64(n) * s2)

	return &Result{
		Test:      "KPSS",
		Stat:      stat,
		PValue:    kpssPValue(stat, trend),
		Lags:      nlags,
		NObs:      n,
		Criticals: kpssCriticals(trend),
	}, nil
}
