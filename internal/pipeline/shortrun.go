package pipeline

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/timeseries"
	"github.com/tkusuma/macrovar/internal/varm"
)

// CandidateModel is a fitted short-run VAR together with the exact working
// dataset used to fit it. Immutable once built.
type CandidateModel struct {
	Model *varm.Model
	Data  *timeseries.Dataset
}

// LagRow is one row of the lag-order selection table.
type LagRow struct {
	Order    int
	AIC      float64
	HQ       float64
	SC       float64
	FPE      float64
	Feasible bool
}

// LagChoice reports the full per-criterion table alongside the selected
// order. The primary criterion is a configuration policy, not a law:
// criteria may disagree and the table shows how.
type LagChoice struct {
	Order     int
	Criterion string
	Table     []LagRow
}

// ShortRunBuilder constructs the stationary working dataset and fits the
// differenced VAR.
type ShortRunBuilder struct {
	MaxLag    int
	Criterion string // "aic" (default), "hq", "sc" or "fpe"
	Log       zerolog.Logger
}

// Build differences every I(1) variable, keeps I(0) variables in levels,
// aligns everything on the differenced window, selects the lag order over a
// fixed common sample and fits the final VAR on the full working sample.
// An order whose parameter count reaches the sample size is a hard error.
func (b ShortRunBuilder) Build(verdicts []*IntegrationVerdict, raw *timeseries.Dataset) (*CandidateModel, *LagChoice, error) {
	if b.MaxLag <= 0 {
		return nil, nil, &InfeasibleSpecError{Stage: StageModelBuild, Detail: "max lag order must be positive"}
	}

	working := make([]*timeseries.Series, 0, len(verdicts))
	for _, v := range verdicts {
		s := raw.Series(v.Variable)
		if s == nil {
			return nil, nil, &DataError{Stage: StageModelBuild, Variable: v.Variable, Msg: "series not in dataset"}
		}
		switch v.Order {
		case OrderI1:
			// The differenced series keeps the caller's variable name so
			// causality pairs and reports address it as loaded; the verdict
			// records the representation.
			d := s.Diff()
			d.Name = v.Variable
			working = append(working, d)
		case OrderI0:
			working = append(working, s.Clone())
		default:
			return nil, nil, &AmbiguousClassificationError{
				Variable: v.Variable,
				Detail:   "cannot build a working dataset over an ambiguous verdict",
			}
		}
	}

	ds, err := timeseries.Align(working...)
	if err != nil {
		return nil, nil, &DataError{Stage: StageModelBuild, Variable: "-", Msg: err.Error(), Err: err}
	}

	data := ds.Matrix()
	T, K := data.Dims()

	// Lag selection on a fixed sample: every candidate order is fitted on
	// the rows a VAR(MaxLag) would use, so criteria compare like for like.
	choice := &LagChoice{Criterion: b.criterionName()}
	bestCrit := math.Inf(1)
	feasible := false
	for p := 1; p <= b.MaxLag; p++ {
		row := LagRow{Order: p}
		sub := mat.DenseCopyOf(data.Slice(b.MaxLag-p, T, 0, K))
		m, err := varm.Fit(sub, ds.Names, p)
		if err == nil {
			if crit, cErr := m.InfoCriteria(); cErr == nil {
				row.AIC, row.HQ, row.SC, row.FPE = crit.AIC, crit.HQ, crit.SC, crit.FPE
				row.Feasible = true
				feasible = true
				if val := b.criterionValue(crit); val < bestCrit {
					bestCrit = val
					choice.Order = p
				}
			}
		}
		choice.Table = append(choice.Table, row)
	}
	if !feasible {
		return nil, nil, &InfeasibleSpecError{
			Stage:  StageModelBuild,
			Detail: fmt.Sprintf("no lag order in 1..%d is estimable on %d observations", b.MaxLag, T),
		}
	}

	b.Log.Info().Str("stage", string(StageModelBuild)).
		Int("order", choice.Order).Str("criterion", choice.Criterion).
		Int("observations", T).Msg("selected VAR order")

	model, err := varm.Fit(data, ds.Names, choice.Order)
	if err != nil {
		return nil, nil, &InfeasibleSpecError{
			Stage:  StageModelBuild,
			Detail: fmt.Sprintf("final VAR(%d) fit: %v", choice.Order, err),
		}
	}
	return &CandidateModel{Model: model, Data: ds}, choice, nil
}

func (b ShortRunBuilder) criterionValue(c varm.Criteria) float64 {
	switch b.Criterion {
	case "hq":
		return c.HQ
	case "sc", "bic":
		return c.SC
	case "fpe":
		return c.FPE
	default:
		return c.AIC
	}
}

func (b ShortRunBuilder) criterionName() string {
	switch b.Criterion {
	case "hq", "sc", "bic", "fpe":
		return b.Criterion
	default:
		return "aic"
	}
}
