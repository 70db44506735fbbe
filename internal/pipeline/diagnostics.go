package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/tkusuma/macrovar/internal/stattest"
)

// CovariancePolicy selects the covariance estimator downstream inference
// must use.
type CovariancePolicy int

const (
	PolicyOrdinary CovariancePolicy = iota
	PolicyRobustHC
)

func (p CovariancePolicy) String() string {
	if p == PolicyRobustHC {
		return "robust-hc"
	}
	return "ordinary"
}

// DiagnosticReport carries the residual test battery and the one actionable
// decision: which covariance estimator causality tests may trust.
type DiagnosticReport struct {
	SerialCorrelation  *stattest.Result
	Heteroskedasticity *stattest.Result
	Normality          *stattest.Result
	Lags               int
	Alpha              float64
	Policy             CovariancePolicy

	// Stability holds the per-equation recursive CUSUM paths. Advisory:
	// plotted, never consumed by downstream inference.
	Stability map[string]*stattest.CUSUMResult
}

// Diagnose runs the fixed-order residual battery (serial correlation,
// heteroskedasticity, normality) on the fitted model. The covariance policy
// is RobustHC exactly when the heteroskedasticity test rejects at alpha; the
// other two results are reported for transparency but do not change the
// policy. lags <= 0 selects min(5, T/5), floored at one above the model
// order so the portmanteau test keeps positive degrees of freedom.
func Diagnose(model *CandidateModel, alpha float64, lags int, log zerolog.Logger) (*DiagnosticReport, error) {
	if model == nil || model.Model == nil {
		return nil, &TestFailureError{Stage: StageDiagnostics, Err: errNoModel}
	}
	if alpha <= 0 {
		alpha = 0.05
	}
	U := model.Model.Residuals
	T, _ := U.Dims()
	if lags <= 0 {
		lags = 5
		if T/5 < lags {
			lags = T / 5
		}
	}
	if lags <= model.Model.Lags {
		lags = model.Model.Lags + 1
	}

	serial, err := stattest.Portmanteau(U, lags, model.Model.Lags)
	if err != nil {
		return nil, &TestFailureError{Stage: StageDiagnostics, Err: err}
	}
	arch, err := stattest.ARCHLM(U, lags)
	if err != nil {
		return nil, &TestFailureError{Stage: StageDiagnostics, Err: err}
	}
	norm, err := stattest.JarqueBera(U)
	if err != nil {
		return nil, &TestFailureError{Stage: StageDiagnostics, Err: err}
	}

	report := &DiagnosticReport{
		SerialCorrelation:  serial,
		Heteroskedasticity: arch,
		Normality:          norm,
		Lags:               lags,
		Alpha:              alpha,
		Policy:             PolicyOrdinary,
		Stability:          make(map[string]*stattest.CUSUMResult),
	}
	if arch.PValue < alpha {
		report.Policy = PolicyRobustHC
	}

	// Advisory stability paths; a failure here degrades the plot, not the run.
	for i, name := range model.Model.VarNames {
		if cusum, err := stattest.CUSUM(model.Model.Equations[i]); err == nil {
			report.Stability[name] = cusum
		}
	}

	log.Info().Str("stage", string(StageDiagnostics)).
		Float64("serial_p", serial.PValue).
		Float64("arch_p", arch.PValue).
		Float64("normality_p", norm.PValue).
		Str("covariance_policy", report.Policy.String()).
		Msg("residual diagnostics complete")
	return report, nil
}
