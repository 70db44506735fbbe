package pipeline

import "fmt"

// Stage identifies where in the pipeline a failure occurred.
type Stage string

const (
	StageData           Stage = "data"
	StageClassification Stage = "classification"
	StagePathSelection  Stage = "path-selection"
	StageCointegration  Stage = "cointegration"
	StageModelBuild     Stage = "model-build"
	StageDiagnostics    Stage = "diagnostics"
	StageCausality      Stage = "causality"
)

// DataError reports unusable input: missing or unsortable dates, too few
// observations, or gaps after alignment.
type DataError struct {
	Stage    Stage
	Variable string
	Msg      string
	Err      error
}

func (e *DataError) Error() string {
	return fmt.Sprintf("%s: data error for %s: %s", e.Stage, e.Variable, e.Msg)
}
func (e *DataError) Unwrap() error { return e.Err }

// AmbiguousClassificationError reports irreconcilable stationarity test
// signals for a series. It is always surfaced, never resolved by a default.
type AmbiguousClassificationError struct {
	Variable string
	Detail   string
}

func (e *AmbiguousClassificationError) Error() string {
	return fmt.Sprintf("classification: series %s is ambiguous: %s", e.Variable, e.Detail)
}

// UnsupportedIntegrationError reports an integration structure outside this
// pipeline's scope: a series needing more than one differencing pass, or an
// all-I(1) variable set requiring an error-correction (VECM) path.
type UnsupportedIntegrationError struct {
	Stage    Stage
	Variable string
	Detail   string
}

func (e *UnsupportedIntegrationError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: unsupported order of integration for %s: %s", e.Stage, e.Variable, e.Detail)
	}
	return fmt.Sprintf("%s: unsupported integration structure: %s", e.Stage, e.Detail)
}

// InfeasibleSpecError reports a lag specification (or an entire search space)
// with too few degrees of freedom.
type InfeasibleSpecError struct {
	Stage  Stage
	Detail string
}

func (e *InfeasibleSpecError) Error() string {
	return fmt.Sprintf("%s: infeasible specification: %s", e.Stage, e.Detail)
}

// TestFailureError wraps a numeric failure inside a statistical routine.
// Deterministic over fixed data, so never retried.
type TestFailureError struct {
	Stage    Stage
	Variable string
	Err      error
}

func (e *TestFailureError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: test failure for %s: %v", e.Stage, e.Variable, e.Err)
	}
	return fmt.Sprintf("%s: test failure: %v", e.Stage, e.Err)
}
func (e *TestFailureError) Unwrap() error { return e.Err }
