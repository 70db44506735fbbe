package report

import (
	"fmt"
	"io"

	"github.com/tkusuma/macrovar/internal/pipeline"
	"github.com/tkusuma/macrovar/internal/stattest"
)

// WriteSummary renders the run as a plain-text report.
func WriteSummary(w io.Writer, res *pipeline.Result) error {
	fmt.Fprintln(w, "=========== Macro Pipeline Summary ===========")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Order of integration:")
	for _, v := range res.Verdicts {
		fmt.Fprintf(w, "  %-14s %-4s (trend %s)\n", v.Variable, v.Order, v.Trend)
		writeTriple(w, "level", v.Level)
		if v.Difference != nil {
			writeTriple(w, "diff", *v.Difference)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Model path: %s\n", res.Path)
	fmt.Fprintln(w)

	if res.Bounds != nil {
		m := res.ARDL
		spec := fmt.Sprintf("ARDL(%d", m.P)
		for _, q := range m.Q {
			spec += fmt.Sprintf(",%d", q)
		}
		spec += ")"
		fmt.Fprintf(w, "Bounds test (%s, selected by %s, level %s):\n", spec, m.Criterion, res.Bounds.Level)
		fmt.Fprintf(w, "  F = %8.4f  bounds [%.3f, %.3f]  -> %s (p ~ %.4f)\n",
			res.Bounds.FStat, res.Bounds.FBounds.Lower, res.Bounds.FBounds.Upper,
			res.Bounds.FVerdict, res.Bounds.FPValue)
		fmt.Fprintf(w, "  t = %8.4f  bounds [%.3f, %.3f]  -> %s\n",
			res.Bounds.TStat, res.Bounds.TBounds.Lower, res.Bounds.TBounds.Upper,
			res.Bounds.TVerdict)
		fmt.Fprintf(w, "  Verdict: %s\n", res.Bounds.Verdict)
		fmt.Fprintln(w)
	}

	if res.LagChoice != nil {
		fmt.Fprintf(w, "VAR order search (criterion %s):\n", res.LagChoice.Criterion)
		fmt.Fprintf(w, "  %5s %12s %12s %12s %12s\n", "p", "AIC", "HQ", "SC", "FPE")
		for _, r := range res.LagChoice.Table {
			mark := " "
			if r.Order == res.LagChoice.Order {
				mark = "*"
			}
			if !r.Feasible {
				fmt.Fprintf(w, "  %4d%s %12s\n", r.Order, mark, "infeasible")
				continue
			}
			fmt.Fprintf(w, "  %4d%s %12.4f %12.4f %12.4f %12.4g\n", r.Order, mark, r.AIC, r.HQ, r.SC, r.FPE)
		}
		fmt.Fprintln(w)
	}

	if res.Diagnostics != nil {
		d := res.Diagnostics
		fmt.Fprintf(w, "Residual diagnostics (h = %d, alpha = %.2f):\n", d.Lags, d.Alpha)
		writeDiag(w, "Portmanteau", d.SerialCorrelation)
		writeDiag(w, "ARCH-LM", d.Heteroskedasticity)
		writeDiag(w, "Jarque-Bera", d.Normality)
		fmt.Fprintf(w, "  Covariance policy: %s\n", d.Policy)
		for name, cs := range d.Stability {
			status := "stable"
			if !cs.Stable() {
				status = "UNSTABLE"
			}
			fmt.Fprintf(w, "  CUSUM %-14s %s\n", name, status)
		}
		fmt.Fprintln(w)
	}

	if len(res.Causality) > 0 {
		fmt.Fprintln(w, "Granger causality:")
		fmt.Fprintf(w, "  %-14s -> %-14s %10s %10s  %s\n", "Cause", "Effect", "F", "p", "Decision")
		for _, v := range res.Causality {
			fmt.Fprintf(w, "  %-14s -> %-14s %10.4f %10.4f  %s (%s errors)\n",
				v.Cause, v.Effect, v.FStat, v.PValue, v.Decision, v.Cov)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "==============================================")
	return nil
}

func writeTriple(w io.Writer, sample string, t pipeline.TestTriple) {
	for _, res := range []*stattest.Result{t.ADF, t.PP, t.KPSS} {
		if res == nil {
			continue
		}
		fmt.Fprintf(w, "      %-5s %-12s stat %9.4f  p %7.4f  lags %d\n",
			sample, res.Test, res.Stat, res.PValue, res.Lags)
	}
}

func writeDiag(w io.Writer, name string, res *stattest.Result) {
	if res == nil {
		return
	}
	fmt.Fprintf(w, "  %-12s stat %10.4f  p %7.4f\n", name, res.Stat, res.PValue)
}
