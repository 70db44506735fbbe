// Package report writes run artifacts: CSV tables, a plain-text summary and
// an optional SQLite archive of past runs.
package report

import (
	"encoding/csv"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/pipeline"
	"github.com/tkusuma/macrovar/internal/stattest"
	"github.com/tkusuma/macrovar/internal/varm"
)

func writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return err
	}
	for _, rec := range rows {
		if err := writer.Write(rec); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteVerdictsCSV writes one row per unit-root test run, long format.
// Columns: Variable, Sample, Test, Statistic, PValue, Lags, Order
func WriteVerdictsCSV(path string, verdicts []*pipeline.IntegrationVerdict) error {
	header := []string{"Variable", "Sample", "Test", "Statistic", "PValue", "Lags", "Order"}
	var rows [][]string
	add := func(v *pipeline.IntegrationVerdict, sample string, t pipeline.TestTriple) {
		for _, res := range []*stattest.Result{t.ADF, t.PP, t.KPSS} {
			if res == nil {
				continue
			}
			rows = append(rows, []string{
				v.Variable,
				sample,
				res.Test,
				fmt.Sprintf("%f", res.Stat),
				fmt.Sprintf("%f", res.PValue),
				fmt.Sprintf("%d", res.Lags),
				v.Order.String(),
			})
		}
	}
	for _, v := range verdicts {
		add(v, "level", v.Level)
		if v.Difference != nil {
			add(v, "difference", *v.Difference)
		}
	}
	return writeCSV(path, header, rows)
}

// WriteBoundsCSV writes the ARDL specification and both bounds tests.
func WriteBoundsCSV(path string, model *pipeline.ARDLModel, bounds *pipeline.BoundsTestResult) error {
	header := []string{
		"Dependent", "Spec", "Criterion", "Level",
		"FStat", "FLower", "FUpper", "FVerdict", "FPValue",
		"TStat", "TLower", "TUpper", "TVerdict",
		"Verdict",
	}
	spec := fmt.Sprintf("ARDL(%d", model.P)
	for _, q := range model.Q {
		spec += fmt.Sprintf(",%d", q)
	}
	spec += ")"
	rows := [][]string{{
		model.Dep, spec, model.Criterion, bounds.Level,
		fmt.Sprintf("%f", bounds.FStat),
		fmt.Sprintf("%f", bounds.FBounds.Lower),
		fmt.Sprintf("%f", bounds.FBounds.Upper),
		bounds.FVerdict.String(),
		fmt.Sprintf("%f", bounds.FPValue),
		fmt.Sprintf("%f", bounds.TStat),
		fmt.Sprintf("%f", bounds.TBounds.Lower),
		fmt.Sprintf("%f", bounds.TBounds.Upper),
		bounds.TVerdict.String(),
		bounds.Verdict.String(),
	}}
	return writeCSV(path, header, rows)
}

// WriteLagTableCSV writes the VAR order search table.
func WriteLagTableCSV(path string, choice *pipeline.LagChoice) error {
	header := []string{"Order", "AIC", "HQ", "SC", "FPE", "Feasible", "Selected"}
	var rows [][]string
	for _, r := range choice.Table {
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.Order),
			fmt.Sprintf("%f", r.AIC),
			fmt.Sprintf("%f", r.HQ),
			fmt.Sprintf("%f", r.SC),
			fmt.Sprintf("%f", r.FPE),
			fmt.Sprintf("%t", r.Feasible),
			fmt.Sprintf("%t", r.Order == choice.Order),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteDiagnosticsCSV writes the residual test battery and the covariance
// policy it produced.
func WriteDiagnosticsCSV(path string, report *pipeline.DiagnosticReport) error {
	header := []string{"Test", "Statistic", "PValue", "Lags", "Policy"}
	policy := report.Policy.String()
	var rows [][]string
	for _, t := range []struct {
		name string
		res  *stattest.Result
	}{
		{"portmanteau", report.SerialCorrelation},
		{"arch_lm", report.Heteroskedasticity},
		{"jarque_bera", report.Normality},
	} {
		if t.res == nil {
			continue
		}
		rows = append(rows, []string{
			t.name,
			fmt.Sprintf("%f", t.res.Stat),
			fmt.Sprintf("%f", t.res.PValue),
			fmt.Sprintf("%d", t.res.Lags),
			policy,
		})
	}
	return writeCSV(path, header, rows)
}

// WriteCUSUMCSV writes the per-equation recursive CUSUM paths in long format.
// Columns: Equation, Index, W, Lower, Upper, Stable
func WriteCUSUMCSV(path string, report *pipeline.DiagnosticReport) error {
	header := []string{"Equation", "Index", "W", "Lower", "Upper", "Stable"}
	var rows [][]string
	for name, cs := range report.Stability {
		stable := fmt.Sprintf("%t", cs.Stable())
		for i := range cs.W {
			rows = append(rows, []string{
				name,
				fmt.Sprintf("%d", i),
				fmt.Sprintf("%f", cs.W[i]),
				fmt.Sprintf("%f", cs.Lower[i]),
				fmt.Sprintf("%f", cs.Upper[i]),
				stable,
			})
		}
	}
	return writeCSV(path, header, rows)
}

// WriteCausalityCSV writes the directional causality verdicts.
func WriteCausalityCSV(path string, verdicts []*pipeline.CausalityVerdict) error {
	header := []string{"Cause", "Effect", "FStatistic", "PValue", "Lags", "Covariance", "Decision"}
	var rows [][]string
	for _, v := range verdicts {
		rows = append(rows, []string{
			v.Cause,
			v.Effect,
			fmt.Sprintf("%f", v.FStat),
			fmt.Sprintf("%f", v.PValue),
			fmt.Sprintf("%d", v.Lags),
			v.Cov.String(),
			v.Decision.String(),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteForecastCSV writes the forecast matrix, one step per row.
func WriteForecastCSV(path string, fc *mat.Dense, varNames []string) error {
	rows, cols := fc.Dims()
	header := make([]string, cols+1)
	header[0] = "Step"
	for j := 0; j < cols; j++ {
		if len(varNames) == cols {
			header[j+1] = varNames[j]
		} else {
			header[j+1] = fmt.Sprintf("Var%d", j+1)
		}
	}
	var recs [][]string
	for i := 0; i < rows; i++ {
		record := make([]string, cols+1)
		record[0] = fmt.Sprintf("%d", i+1)
		for j := 0; j < cols; j++ {
			record[j+1] = fmt.Sprintf("%f", fc.At(i, j))
		}
		recs = append(recs, record)
	}
	return writeCSV(path, header, recs)
}

// WriteIRFBandsCSV writes bootstrap IRF results in long format.
// Columns: ShockVar, ResponseVar, Horizon, Point, Lower, Upper
func WriteIRFBandsCSV(path string, bands map[int]*varm.IRFBands, varNames []string) error {
	header := []string{"ShockVar", "ResponseVar", "Horizon", "Point", "Lower", "Upper"}
	var rows [][]string
	for shockIdx, res := range bands {
		shockName := varNames[shockIdx]
		H, K := res.Point.Dims()
		for j := 0; j < K; j++ {
			respName := varNames[j]
			for h := 0; h < H; h++ {
				rows = append(rows, []string{
					shockName,
					respName,
					fmt.Sprintf("%d", h),
					fmt.Sprintf("%f", res.Point.At(h, j)),
					fmt.Sprintf("%f", res.Lower.At(h, j)),
					fmt.Sprintf("%f", res.Upper.At(h, j)),
				})
			}
		}
	}
	return writeCSV(path, header, rows)
}
