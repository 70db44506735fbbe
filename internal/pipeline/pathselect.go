package pipeline

import "fmt"

// SelectPath applies the model-path decision rule to a set of integration
// verdicts. A strict mix of I(0) and I(1) with no ambiguous entries selects
// the bounds-test (cointegration) path, which is valid exactly under mixed
// integration orders. All-I(1) sets need an error-correction (VECM) path
// this pipeline does not implement; any ambiguous verdict fails fast.
func SelectPath(verdicts []*IntegrationVerdict) (PathDecision, error) {
	if len(verdicts) == 0 {
		return DirectShortRun, &DataError{Stage: StagePathSelection, Variable: "-", Msg: "no verdicts"}
	}

	nI0, nI1 := 0, 0
	for _, v := range verdicts {
		switch v.Order {
		case OrderI0:
			nI0++
		case OrderI1:
			nI1++
		case OrderAmbiguous:
			return DirectShortRun, &AmbiguousClassificationError{
				Variable: v.Variable,
				Detail:   "cannot select a model path over an ambiguous verdict",
			}
		}
	}

	switch {
	case nI0 > 0 && nI1 > 0:
		return AttemptCointegration, nil
	case nI1 == len(verdicts):
		return DirectShortRun, &UnsupportedIntegrationError{
			Stage:  StagePathSelection,
			Detail: fmt.Sprintf("all %d variables are I(1); requires VECM path, unimplemented", nI1),
		}
	default:
		// All I(0): levels are already stationary, no long-run question.
		return DirectShortRun, nil
	}
}
