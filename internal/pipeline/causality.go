package pipeline

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/tkusuma/macrovar/internal/ols"
)

var errNoModel = errors.New("no fitted model")

// Decision is the causality call at the 5% level, with a distinct weak band
// up to 10%.
type Decision int

const (
	NotCausal Decision = iota
	WeakCausal
	Causal
)

func (d Decision) String() string {
	switch d {
	case Causal:
		return "causal"
	case WeakCausal:
		return "weak"
	default:
		return "not-causal"
	}
}

// CausalityVerdict is the outcome of one directional Granger test.
type CausalityVerdict struct {
	Cause    string
	Effect   string
	FStat    float64
	PValue   float64
	Lags     int
	Cov      ols.CovKind
	Decision Decision
}

// TestCausality runs a Wald exclusion test of all lags of cause in the
// effect variable's equation, on the literal design matrix and sample the
// system estimation used (the model stores each equation's regression view,
// so nothing is re-derived). The covariance estimator follows the
// diagnostic gate's policy: HC1 under RobustHC, ordinary otherwise.
func TestCausality(model *CandidateModel, policy CovariancePolicy, cause, effect string, log zerolog.Logger) (*CausalityVerdict, error) {
	if model == nil || model.Model == nil {
		return nil, &TestFailureError{Stage: StageCausality, Err: errNoModel}
	}
	if cause == effect {
		return nil, &DataError{Stage: StageCausality, Variable: cause, Msg: "cause and effect must differ"}
	}

	eq, err := model.Model.Equation(effect)
	if err != nil {
		return nil, &DataError{Stage: StageCausality, Variable: effect, Msg: err.Error(), Err: err}
	}
	cols, ok := model.Model.LagCols[cause]
	if !ok {
		return nil, &DataError{Stage: StageCausality, Variable: cause, Msg: "variable not in model"}
	}

	kind := ols.CovOrdinary
	if policy == PolicyRobustHC {
		kind = ols.CovHC1
	}
	wald, err := eq.WaldExclusion(cols, kind)
	if err != nil {
		return nil, &TestFailureError{Stage: StageCausality, Variable: effect, Err: err}
	}

	verdict := &CausalityVerdict{
		Cause:  cause,
		Effect: effect,
		FStat:  wald.FStat,
		PValue: wald.PValue,
		Lags:   model.Model.Lags,
		Cov:    kind,
	}
	switch {
	case wald.PValue < 0.05:
		verdict.Decision = Causal
	case wald.PValue < 0.10:
		verdict.Decision = WeakCausal
	default:
		verdict.Decision = NotCausal
	}

	log.Info().Str("stage", string(StageCausality)).
		Str("cause", cause).Str("effect", effect).
		Float64("f_stat", wald.FStat).Float64("p", wald.PValue).
		Str("covariance", kind.String()).
		Str("decision", verdict.Decision.String()).
		Msg("granger test complete")
	return verdict, nil
}
