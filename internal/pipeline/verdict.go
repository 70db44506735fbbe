// Package pipeline implements the decision core of the analysis: series
// classification by order of integration, model path selection, the ARDL
// bounds test for a long-run relationship, the short-run VAR fallback,
// residual diagnostics that gate the covariance estimator, and robust
// Granger causality testing.
package pipeline

import (
	"github.com/tkusuma/macrovar/internal/stattest"
)

// IntegrationOrder tags a series' order of integration.
type IntegrationOrder int

const (
	OrderI0 IntegrationOrder = iota
	OrderI1
	OrderAmbiguous
)

func (o IntegrationOrder) String() string {
	switch o {
	case OrderI0:
		return "I(0)"
	case OrderI1:
		return "I(1)"
	default:
		return "ambiguous"
	}
}

// TestTriple bundles the three-test battery outcomes for one representation
// of a series.
type TestTriple struct {
	ADF  *stattest.Result
	PP   *stattest.Result
	KPSS *stattest.Result
}

// IntegrationVerdict is the immutable classification of one series, with the
// raw evidence that produced it. Difference is non-nil only when a
// differencing pass was needed.
type IntegrationVerdict struct {
	Variable   string
	Order      IntegrationOrder
	Trend      stattest.Trend
	Level      TestTriple
	Difference *TestTriple
}

// PathDecision selects between the long-run and short-run model paths.
type PathDecision int

const (
	// AttemptCointegration runs the ARDL bounds test over levels first.
	AttemptCointegration PathDecision = iota
	// DirectShortRun fits the differenced VAR without a levels model.
	DirectShortRun
)

func (p PathDecision) String() string {
	if p == AttemptCointegration {
		return "attempt-cointegration"
	}
	return "direct-short-run"
}

// CointVerdict is the outcome of one bounds comparison or of the joint test.
type CointVerdict int

const (
	NoCointegration CointVerdict = iota
	Cointegrated
	Inconclusive
)

func (v CointVerdict) String() string {
	switch v {
	case Cointegrated:
		return "cointegrated"
	case NoCointegration:
		return "no-cointegration"
	default:
		return "inconclusive"
	}
}
