package stattest

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
)

// PhillipsPerron runs the Phillips-Perron Z-tau unit-root test. The null is
// a unit root, as in ADF, but serial correlation is handled through a
// nonparametric long-run variance correction instead of lag augmentation.
// nlags <= 0 selects the 4*(n/100)^0.25 Newey-West bandwidth default.
func PhillipsPerron(values []float64, trend Trend, nlags int) (*Result, error) {
	n := len(values)
	if n < 15 {
		return nil, fmt.Errorf("pp: need at least 15 observations, got %d", n)
	}
	if nlags <= 0 {
		nlags = int(math.Floor(4 * math.Pow(float64(n)/100, 0.25)))
	}

	// Dickey-Fuller regression without augmentation:
	// dy_t = alpha + [delta*t] + rho*y_{t-1} + u_t
	nObs := n - 1
	nCol := 2
	if trend == TrendConstTrend {
		nCol = 3
	}
	X := mat.NewDense(nObs, nCol, nil)
	y := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		y[i] = values[i+1] - values[i]
		X.Set(i, 0, values[i])
		X.Set(i, 1, 1)
		if trend == TrendConstTrend {
			X.Set(i, 2, float64(i+1))
		}
	}

	fit, err := ols.Regress(X, y)
	if err != nil {
		return nil, fmt.Errorf("pp: regression failed: %w", err)
	}
	tStat, err := fit.TStat(0, ols.CovOrdinary)
	if err != nil {
		return nil, fmt.Errorf("pp: %w", err)
	}
	se, err := fit.StdErr(0, ols.CovOrdinary)
	if err != nil {
		return nil, fmt.Errorf("pp: %w", err)
	}

	// Short-run and long-run residual variances.
	gamma0 := 0.0
	for _, r := range fit.Residuals {
		gamma0 += r * r
	}
	gamma0 /= float64(nObs)
	lambda2 := bartlettLongRunVariance(fit.Residuals, nlags)

	// Z-tau correction (Phillips & Perron 1988).
	s := math.Sqrt(fit.Sigma2)
	zTau := math.Sqrt(gamma0/lambda2)*tStat -
		(lambda2-gamma0)*float64(nObs)*se/(2*math.Sqrt(lambda2)*s)

	if math.IsNaN(zTau) || math.IsInf(zTau, 0) {
		return nil, fmt.Errorf("pp: degenerate statistic")
	}

	return &Result{
		Test:      "PP",
		Stat:      zTau,
		PValue:    dickeyFullerPValue(zTau, trend),
		Lags:      nlags,
		NObs:      nObs,
		Criticals: dfCriticals(trend),
	}, nil
}
