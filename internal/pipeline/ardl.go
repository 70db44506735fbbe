package pipeline

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
	"github.com/tkusuma/macrovar/internal/stattest"
	"github.com/tkusuma/macrovar/internal/timeseries"
)

// ARDLModel is the winning distributed-lag specification over levels,
// re-parametrized into its conditional error-correction form for bounds
// testing. Fit holds the exact ECM design matrix and response.
type ARDLModel struct {
	Dep        string
	Regressors []string
	P          int   // own lag order of the dependent variable
	Q          []int // lag order per regressor
	Criterion  string
	CritValue  float64
	Fit        *ols.Fit
	// levelCols are the ECM design columns holding y_{t-1} and x_{j,t-1};
	// levelCols[0] is the dependent's own lagged level.
	levelCols []int
}

// BoundsTestResult carries both bounds tests and the joint verdict.
type BoundsTestResult struct {
	FStat    float64
	FBounds  stattest.Bounds
	FVerdict CointVerdict
	FPValue  float64

	TStat    float64
	TBounds  stattest.Bounds
	TVerdict CointVerdict

	Level   string // significance level of the bounds, e.g. "5%"
	Verdict CointVerdict
}

// ARDLBoundsTester searches lag-order space for the best distributed-lag
// model over levels and runs the Pesaran-Shin-Smith bounds tests (case III:
// unrestricted intercept, no trend).
type ARDLBoundsTester struct {
	MaxLag    int
	Criterion string // "aic" (default), "bic" or "hq"
	Level     string // bounds significance level, default "5%"
	Log       zerolog.Logger
}

// TestCointegration grid-searches ARDL(p, q_1..q_k) with p in 1..MaxLag and
// each q_j in 0..MaxLag on a common sample, picks the specification
// minimizing the information criterion (ties prefer fewer parameters),
// refits its error-correction form and runs the F- and t-bounds tests.
func (a ARDLBoundsTester) TestCointegration(dep string, regressors []string, data *timeseries.Dataset) (*ARDLModel, *BoundsTestResult, error) {
	if a.MaxLag <= 0 {
		return nil, nil, &InfeasibleSpecError{Stage: StageCointegration, Detail: "max lag order must be positive"}
	}
	level := a.Level
	if level == "" {
		level = "5%"
	}
	y := data.Series(dep)
	if y == nil {
		return nil, nil, &DataError{Stage: StageCointegration, Variable: dep, Msg: "dependent series not in dataset"}
	}
	xs := make([]*timeseries.Series, len(regressors))
	for i, name := range regressors {
		xs[i] = data.Series(name)
		if xs[i] == nil {
			return nil, nil, &DataError{Stage: StageCointegration, Variable: name, Msg: "regressor series not in dataset"}
		}
	}

	T := data.Len()
	nObs := T - a.MaxLag
	if nObs < 10 {
		return nil, nil, &InfeasibleSpecError{
			Stage:  StageCointegration,
			Detail: fmt.Sprintf("only %d usable observations after max lag %d", nObs, a.MaxLag),
		}
	}

	type spec struct {
		p      int
		q      []int
		crit   float64
		params int
	}
	best := spec{crit: math.Inf(1)}
	feasible := 0

	qCombo := make([]int, len(regressors))
	var search func(j int)
	search = func(j int) {
		if j == len(regressors) {
			for p := 1; p <= a.MaxLag; p++ {
				params := 1 + p
				for _, q := range qCombo {
					params += q + 1
				}
				if nObs <= params+1 {
					continue // skip infeasible cell, not fatal
				}
				fit, err := a.fitLevels(y, xs, p, qCombo, a.MaxLag)
				if err != nil {
					continue
				}
				feasible++
				crit := a.criterion(fit)
				q := append([]int(nil), qCombo...)
				if crit < best.crit-1e-12 ||
					(math.Abs(crit-best.crit) <= 1e-12 && params < best.params) {
					best = spec{p: p, q: q, crit: crit, params: params}
				}
			}
			return
		}
		for q := 0; q <= a.MaxLag; q++ {
			qCombo[j] = q
			search(j + 1)
		}
	}
	search(0)

	if feasible == 0 {
		return nil, nil, &InfeasibleSpecError{
			Stage:  StageCointegration,
			Detail: fmt.Sprintf("no lag combination up to %d is estimable on %d observations", a.MaxLag, nObs),
		}
	}

	a.Log.Info().Str("stage", string(StageCointegration)).
		Int("p", best.p).Ints("q", best.q).Float64("criterion", best.crit).
		Msg("selected ARDL order")

	model, err := a.fitECM(dep, regressors, y, xs, best.p, best.q, a.MaxLag)
	if err != nil {
		return nil, nil, err
	}
	model.Criterion = a.criterionName()
	model.CritValue = best.crit

	result, err := a.boundsTests(model, len(regressors), level)
	if err != nil {
		return nil, nil, err
	}
	a.Log.Info().Str("stage", string(StageCointegration)).
		Float64("f_stat", result.FStat).Str("f_verdict", result.FVerdict.String()).
		Float64("t_stat", result.TStat).Str("t_verdict", result.TVerdict.String()).
		Str("verdict", result.Verdict.String()).
		Msg("bounds test complete")
	return model, result, nil
}

// fitLevels estimates the levels ARDL on the common sample [offset, T).
func (a ARDLBoundsTester) fitLevels(y *timeseries.Series, xs []*timeseries.Series, p int, q []int, offset int) (*ols.Fit, error) {
	T := y.Len()
	nObs := T - offset
	nCol := 1 + p
	for _, qj := range q {
		nCol += qj + 1
	}
	X := mat.NewDense(nObs, nCol, nil)
	resp := make([]float64, nObs)
	for i := 0; i < nObs; i++ {
		t := i + offset
		resp[i] = y.Values[t]
		col := 0
		X.Set(i, col, 1)
		col++
		for lag := 1; lag <= p; lag++ {
			X.Set(i, col, y.Values[t-lag])
			col++
		}
		for j, x := range xs {
			for lag := 0; lag <= q[j]; lag++ {
				X.Set(i, col, x.Values[t-lag])
				col++
			}
		}
	}
	return ols.Regress(X, resp)
}

// fitECM fits the conditional error-correction representation of
// ARDL(p, q): dy_t on [const, y_{t-1}, x_{j,t-1}, dy_{t-i} (i<p),
// dx_{j,t}, dx_{j,t-i} (i<q_j)]. For q_j = 0 the regressor contributes its
// lagged level only.
func (a ARDLBoundsTester) fitECM(dep string, regressors []string, y *timeseries.Series, xs []*timeseries.Series, p int, q []int, offset int) (*ARDLModel, error) {
	T := y.Len()
	nObs := T - offset
	nCol := 2 + len(xs) // const, y_{t-1}, x_{j,t-1}
	nCol += p - 1       // lagged dy
	for _, qj := range q {
		if qj > 0 {
			nCol += qj // dx_t .. dx_{t-qj+1}
		}
	}
	if nObs <= nCol+1 {
		return nil, &InfeasibleSpecError{
			Stage:  StageCointegration,
			Detail: fmt.Sprintf("ECM form of ARDL(%d,%v) needs %d parameters on %d observations", p, q, nCol, nObs),
		}
	}

	X := mat.NewDense(nObs, nCol, nil)
	resp := make([]float64, nObs)
	levelCols := make([]int, 0, 1+len(xs))
	for i := 0; i < nObs; i++ {
		t := i + offset
		resp[i] = y.Values[t] - y.Values[t-1]
		col := 0
		X.Set(i, col, 1)
		col++
		if i == 0 {
			levelCols = append(levelCols, col)
		}
		X.Set(i, col, y.Values[t-1])
		col++
		for _, x := range xs {
			if i == 0 {
				levelCols = append(levelCols, col)
			}
			X.Set(i, col, x.Values[t-1])
			col++
		}
		for lag := 1; lag < p; lag++ {
			X.Set(i, col, y.Values[t-lag]-y.Values[t-lag-1])
			col++
		}
		for j, x := range xs {
			for lag := 0; lag < q[j]; lag++ {
				X.Set(i, col, x.Values[t-lag]-x.Values[t-lag-1])
				col++
			}
		}
	}

	fit, err := ols.Regress(X, resp)
	if err != nil {
		return nil, &TestFailureError{Stage: StageCointegration, Variable: dep, Err: err}
	}
	return &ARDLModel{
		Dep:        dep,
		Regressors: append([]string(nil), regressors...),
		P:          p,
		Q:          append([]int(nil), q...),
		Fit:        fit,
		levelCols:  levelCols,
	}, nil
}

func (a ARDLBoundsTester) boundsTests(model *ARDLModel, k int, level string) (*BoundsTestResult, error) {
	fBounds, err := stattest.FBounds(k, level)
	if err != nil {
		return nil, &TestFailureError{Stage: StageCointegration, Err: err}
	}
	tBounds, err := stattest.TBounds(k, level)
	if err != nil {
		return nil, &TestFailureError{Stage: StageCointegration, Err: err}
	}

	wald, err := model.Fit.WaldExclusion(model.levelCols, ols.CovOrdinary)
	if err != nil {
		return nil, &TestFailureError{Stage: StageCointegration, Variable: model.Dep, Err: err}
	}
	tStat, err := model.Fit.TStat(model.levelCols[0], ols.CovOrdinary)
	if err != nil {
		return nil, &TestFailureError{Stage: StageCointegration, Variable: model.Dep, Err: err}
	}

	res := &BoundsTestResult{
		FStat:    wald.FStat,
		FBounds:  fBounds,
		FVerdict: boundsVerdict(wald.FStat, fBounds, false),
		FPValue:  stattest.FBoundsPValue(wald.FStat, k),
		TStat:    tStat,
		TBounds:  tBounds,
		TVerdict: boundsVerdict(tStat, tBounds, true),
		Level:    level,
	}
	res.Verdict = combineBoundsVerdicts(res.FVerdict, res.TVerdict)
	return res, nil
}

// boundsVerdict is the pure threshold rule: beyond the upper (all-I(1))
// bound rejects "no long-run relationship", short of the lower (all-I(0))
// bound fails to reject, and between the bounds is inconclusive. leftTail
// flips the comparisons for the t test, whose rejection region is negative.
func boundsVerdict(stat float64, b stattest.Bounds, leftTail bool) CointVerdict {
	if leftTail {
		switch {
		case stat < b.Upper:
			return Cointegrated
		case stat > b.Lower:
			return NoCointegration
		default:
			return Inconclusive
		}
	}
	switch {
	case stat > b.Upper:
		return Cointegrated
	case stat < b.Lower:
		return NoCointegration
	default:
		return Inconclusive
	}
}

// combineBoundsVerdicts requires both tests to agree for an overall
// Cointegrated verdict; a single NoCointegration abandons the long-run path.
func combineBoundsVerdicts(f, t CointVerdict) CointVerdict {
	switch {
	case f == Cointegrated && t == Cointegrated:
		return Cointegrated
	case f == NoCointegration || t == NoCointegration:
		return NoCointegration
	default:
		return Inconclusive
	}
}

func (a ARDLBoundsTester) criterion(fit *ols.Fit) float64 {
	switch a.Criterion {
	case "bic":
		return fit.BIC()
	case "hq":
		return fit.HQ()
	default:
		return fit.AIC()
	}
}

func (a ARDLBoundsTester) criterionName() string {
	switch a.Criterion {
	case "bic", "hq":
		return a.Criterion
	default:
		return "aic"
	}
}
