package pipeline

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tkusuma/macrovar/internal/stattest"
	"github.com/tkusuma/macrovar/internal/timeseries"
)

// Classifier runs the three-test stationarity battery on a series and
// produces its integration verdict.
type Classifier struct {
	// Alpha is the significance threshold shared by all three tests.
	Alpha float64
	// MaxLag bounds the ADF augmentation search; <= 0 uses the test default.
	MaxLag int
	Log    zerolog.Logger
}

// Classify runs ADF and PP (unit-root null) and KPSS (stationarity null) on
// the level series and, when the level looks nonstationary, confirms I(1) on
// the first difference. PP and KPSS are the deciding pair; ADF is retained
// for reporting. A series that still looks nonstationary after one
// differencing pass is outside scope and returns an
// UnsupportedIntegrationError.
func (c Classifier) Classify(s *timeseries.Series, trend stattest.Trend) (*IntegrationVerdict, error) {
	alpha := c.Alpha
	if alpha <= 0 {
		alpha = 0.05
	}

	level, err := c.battery(s.Name, s.Values, trend)
	if err != nil {
		return nil, err
	}
	v := &IntegrationVerdict{Variable: s.Name, Trend: trend, Level: *level}

	ppRejects := level.PP.PValue < alpha     // unit root rejected
	kpssRejects := level.KPSS.PValue < alpha // stationarity rejected

	switch {
	case ppRejects && !kpssRejects:
		v.Order = OrderI0
		c.Log.Info().Str("stage", string(StageClassification)).Str("variable", s.Name).
			Str("order", v.Order.String()).
			Float64("pp_p", level.PP.PValue).Float64("kpss_p", level.KPSS.PValue).
			Msg("classified at level")
		return v, nil

	case !ppRejects && kpssRejects:
		// Provisional I(1): confirm that one differencing pass suffices.
		d := s.Diff()
		diffTriple, err := c.battery(d.Name, d.Values, stattest.TrendConst)
		if err != nil {
			return nil, err
		}
		v.Difference = diffTriple
		diffPPRejects := diffTriple.PP.PValue < alpha
		diffKPSSRejects := diffTriple.KPSS.PValue < alpha
		switch {
		case diffPPRejects && !diffKPSSRejects:
			v.Order = OrderI1
			c.Log.Info().Str("stage", string(StageClassification)).Str("variable", s.Name).
				Str("order", v.Order.String()).
				Float64("diff_pp_p", diffTriple.PP.PValue).Float64("diff_kpss_p", diffTriple.KPSS.PValue).
				Msg("confirmed I(1) on first difference")
			return v, nil
		case !diffPPRejects && diffKPSSRejects:
			// The difference itself looks integrated: would need a second
			// differencing pass.
			return nil, &UnsupportedIntegrationError{
				Stage:    StageClassification,
				Variable: s.Name,
				Detail: fmt.Sprintf("first difference still nonstationary (PP p=%.3f, KPSS p=%.3f); second differencing is out of scope",
					diffTriple.PP.PValue, diffTriple.KPSS.PValue),
			}
		default:
			v.Order = OrderAmbiguous
			return v, nil
		}

	default:
		// PP and KPSS agree on rejection or on non-rejection: no coherent
		// verdict either way.
		v.Order = OrderAmbiguous
		c.Log.Warn().Str("stage", string(StageClassification)).Str("variable", s.Name).
			Float64("pp_p", level.PP.PValue).Float64("kpss_p", level.KPSS.PValue).
			Msg("conflicting stationarity signals")
		return v, nil
	}
}

func (c Classifier) battery(name string, values []float64, trend stattest.Trend) (*TestTriple, error) {
	adf, err := stattest.ADF(values, trend, c.MaxLag)
	if err != nil {
		return nil, &TestFailureError{Stage: StageClassification, Variable: name, Err: err}
	}
	pp, err := stattest.PhillipsPerron(values, trend, 0)
	if err != nil {
		return nil, &TestFailureError{Stage: StageClassification, Variable: name, Err: err}
	}
	kpss, err := stattest.KPSS(values, trend, 0)
	if err != nil {
		return nil, &TestFailureError{Stage: StageClassification, Variable: name, Err: err}
	}
	return &TestTriple{ADF: adf, PP: pp, KPSS: kpss}, nil
}
