package pipeline

import (
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/stattest"
	"github.com/tkusuma/macrovar/internal/timeseries"
	"github.com/tkusuma/macrovar/internal/varm"
)

// Runner chains the components over one dataset:
// classify -> select path -> bounds test (if attempted) -> short-run VAR ->
// diagnostics -> causality, plus forecast and bootstrap IRF artifacts.
// Every stage is a pure computation over its inputs; a Runner holds only
// configuration.
type Runner struct {
	Alpha         float64
	ClassifierLag int
	ARDLMaxLag    int
	BoundsLevel   string
	VARMaxLag     int
	Criterion     string
	DiagLags      int

	ForecastSteps int
	IRFHorizon    int
	BootstrapReps int
	BootstrapSeed int64

	Log zerolog.Logger
}

// Pair is one ordered causality direction the caller wants tested.
type Pair struct {
	Cause  string
	Effect string
}

// Result aggregates one full run. Fields past the point of failure are nil.
type Result struct {
	Verdicts []*IntegrationVerdict
	Path     PathDecision

	ARDL   *ARDLModel
	Bounds *BoundsTestResult

	LagChoice   *LagChoice
	Model       *CandidateModel
	Diagnostics *DiagnosticReport
	Causality   []*CausalityVerdict

	Forecast *mat.Dense
	IRFBands map[int]*varm.IRFBands
}

// Run executes the pipeline. trends selects each variable's deterministic
// assumption for the classifier battery; dep and regressors define the
// long-run candidate; pairs are the directional causality questions. The
// choice of pairs is the caller's economics, not inferred here.
func (r *Runner) Run(data *timeseries.Dataset, trends map[string]stattest.Trend, dep string, regressors []string, pairs []Pair) (*Result, error) {
	res := &Result{}

	classifier := Classifier{Alpha: r.Alpha, MaxLag: r.ClassifierLag, Log: r.Log}
	for _, name := range data.Names {
		trend, ok := trends[name]
		if !ok {
			trend = stattest.TrendConst
		}
		v, err := classifier.Classify(data.Series(name), trend)
		if err != nil {
			return res, err
		}
		res.Verdicts = append(res.Verdicts, v)
	}

	path, err := SelectPath(res.Verdicts)
	if err != nil {
		return res, err
	}
	res.Path = path

	if path == AttemptCointegration {
		tester := ARDLBoundsTester{MaxLag: r.ARDLMaxLag, Criterion: r.Criterion, Level: r.BoundsLevel, Log: r.Log}
		model, bounds, err := tester.TestCointegration(dep, regressors, data)
		if err != nil {
			return res, err
		}
		res.ARDL = model
		res.Bounds = bounds
		if bounds.Verdict == Cointegrated {
			// Long-run relationship established; the levels model is the
			// final artifact and the short-run fallback is not fitted.
			r.Log.Info().Str("stage", string(StageCointegration)).
				Msg("long-run relationship accepted; skipping short-run path")
			return res, nil
		}
	}

	builder := ShortRunBuilder{MaxLag: r.VARMaxLag, Criterion: r.Criterion, Log: r.Log}
	model, choice, err := builder.Build(res.Verdicts, data)
	if err != nil {
		return res, err
	}
	res.Model = model
	res.LagChoice = choice

	diag, err := Diagnose(model, r.Alpha, r.DiagLags, r.Log)
	if err != nil {
		return res, err
	}
	res.Diagnostics = diag

	for _, p := range pairs {
		v, err := TestCausality(model, diag.Policy, p.Cause, p.Effect, r.Log)
		if err != nil {
			return res, err
		}
		res.Causality = append(res.Causality, v)
	}

	if r.ForecastSteps > 0 {
		fc, err := model.Model.Forecast(model.Data.Matrix(), r.ForecastSteps)
		if err != nil {
			return res, &TestFailureError{Stage: StageModelBuild, Err: err}
		}
		res.Forecast = fc
	}
	if r.IRFHorizon > 0 {
		bands, err := model.Model.BootstrapIRF(model.Data.Matrix(), varm.BootstrapOptions{
			Replications: r.BootstrapReps,
			Horizon:      r.IRFHorizon,
			Seed:         r.BootstrapSeed,
		})
		if err != nil {
			return res, &TestFailureError{Stage: StageModelBuild, Err: err}
		}
		res.IRFBands = bands
	}

	return res, nil
}
