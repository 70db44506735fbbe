package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
)

// ADF runs the augmented Dickey-Fuller test. The null hypothesis is that the
// series has a unit root. The augmentation lag is chosen by minimizing AIC
// over 0..maxLag on a common sample; maxLag <= 0 selects the (n-1)^(1/3)
// default.
func ADF(values []float64, trend Trend, maxLag int) (*Result, error) {
	n := len(values)
	if n < 15 {
		return nil, fmt.Errorf("adf: need at least 15 observations, got %d", n)
	}
	if maxLag <= 0 {
		maxLag = int(math.Floor(math.Pow(float64(n-1), 1.0/3.0)))
	}
	if maxLag >= n-10 {
		maxLag = n - 10
	}
	if maxLag < 0 {
		maxLag = 0
	}

	dy := diff(values)           // len n-1
	ylag := values[:len(values)-1] // len n-1

	// Common estimation sample across candidate lags, so AIC values compare.
	nObs := len(dy) - maxLag
	if nObs < 10 {
		return nil, fmt.Errorf("adf: only %d usable observations after max lag %d", nObs, maxLag)
	}

	bestAIC := math.Inf(1)
	var best *Result
	for lag := 0; lag <= maxLag; lag++ {
		nCol := 2 + lag // y_{t-1}, const, lagged differences
		if trend == TrendConstTrend {
			nCol++
		}
		if nObs <= nCol+1 {
			continue
		}

		X := mat.NewDense(nObs, nCol, nil)
		y := make([]float64, nObs)
		for i := 0; i < nObs; i++ {
			t := i + maxLag
			y[i] = dy[t]
			col := 0
			X.Set(i, col, ylag[t])
			col++
			X.Set(i, col, 1)
			col++
			if trend == TrendConstTrend {
				X.Set(i, col, float64(i+1))
				col++
			}
			for j := 1; j <= lag; j++ {
				X.Set(i, col, dy[t-j])
				col++
			}
		}

		fit, err := ols.Regress(X, y)
		if err != nil {
			continue
		}
		tStat, err := fit.TStat(0, ols.CovOrdinary)
		if err != nil {
			continue
		}
		if aic := fit.AIC(); aic < bestAIC {
			bestAIC = aic
			best = &Result{
				Test:      "ADF",
				Stat:      tStat,
				PValue:    dickeyFullerPValue(tStat, trend),
				Lags:      lag,
				NObs:      nObs,
				Criticals: dfCriticals(trend),
			}
		}
	}
	if best == nil {
		return nil, fmt.Errorf("adf: no feasible lag specification up to %d", maxLag)
	}
	return best, nil
}
