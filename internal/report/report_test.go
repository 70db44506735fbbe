package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/tkusuma/macrovar/internal/ols"
	"github.com/tkusuma/macrovar/internal/pipeline"
	"github.com/tkusuma/macrovar/internal/stattest"
	"github.com/tkusuma/macrovar/internal/varm"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func sampleResult() *pipeline.Result {
	level := pipeline.TestTriple{
		ADF:  &stattest.Result{Test: "ADF", Stat: -1.2, PValue: 0.65, Lags: 2, NObs: 90},
		PP:   &stattest.Result{Test: "PP", Stat: -1.1, PValue: 0.70, Lags: 4, NObs: 90},
		KPSS: &stattest.Result{Test: "KPSS", Stat: 0.9, PValue: 0.01, Lags: 8, NObs: 90},
	}
	diffTriple := pipeline.TestTriple{
		PP:   &stattest.Result{Test: "PP", Stat: -9.4, PValue: 0.0001, Lags: 4, NObs: 89},
		KPSS: &stattest.Result{Test: "KPSS", Stat: 0.1, PValue: 0.9, Lags: 8, NObs: 89},
	}
	return &pipeline.Result{
		Verdicts: []*pipeline.IntegrationVerdict{
			{Variable: "ExchangeRate", Order: pipeline.OrderI1, Trend: stattest.TrendConst,
				Level: level, Difference: &diffTriple},
			{Variable: "Inflation", Order: pipeline.OrderI0, Trend: stattest.TrendConst, Level: level},
		},
		Path: pipeline.AttemptCointegration,
		ARDL: &pipeline.ARDLModel{
			Dep: "ExchangeRate", Regressors: []string{"Inflation", "OutputGap"},
			P: 2, Q: []int{1, 0}, Criterion: "aic", CritValue: 312.4,
		},
		Bounds: &pipeline.BoundsTestResult{
			FStat: 6.4, FBounds: stattest.Bounds{Lower: 3.79, Upper: 4.85},
			FVerdict: pipeline.Cointegrated, FPValue: 0.01,
			TStat: -4.2, TBounds: stattest.Bounds{Lower: -2.86, Upper: -3.53},
			TVerdict: pipeline.Cointegrated,
			Level:    "5%", Verdict: pipeline.Cointegrated,
		},
		LagChoice: &pipeline.LagChoice{
			Order: 2, Criterion: "aic",
			Table: []pipeline.LagRow{
				{Order: 1, AIC: -1.2, HQ: -1.1, SC: -1.0, FPE: 0.3, Feasible: true},
				{Order: 2, AIC: -1.5, HQ: -1.3, SC: -1.1, FPE: 0.25, Feasible: true},
			},
		},
		Diagnostics: &pipeline.DiagnosticReport{
			SerialCorrelation:  &stattest.Result{Test: "Portmanteau", Stat: 30.1, PValue: 0.3, Lags: 5},
			Heteroskedasticity: &stattest.Result{Test: "ARCH-LM", Stat: 12.2, PValue: 0.02, Lags: 5},
			Normality:          &stattest.Result{Test: "Jarque-Bera", Stat: 2.2, PValue: 0.33},
			Lags:               5, Alpha: 0.05, Policy: pipeline.PolicyRobustHC,
			Stability: map[string]*stattest.CUSUMResult{
				"ExchangeRate": {W: []float64{0.1, 0.4}, Upper: []float64{1, 1.2}, Lower: []float64{-1, -1.2}},
			},
		},
		Causality: []*pipeline.CausalityVerdict{
			{Cause: "Inflation", Effect: "ExchangeRate", FStat: 4.4, PValue: 0.013,
				Lags: 2, Cov: ols.CovHC1, Decision: pipeline.Causal},
			{Cause: "ExchangeRate", Effect: "Inflation", FStat: 0.8, PValue: 0.45,
				Lags: 2, Cov: ols.CovHC1, Decision: pipeline.NotCausal},
		},
	}
}

func TestWriteVerdictsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "verdicts.csv")
	res := sampleResult()
	require.NoError(t, WriteVerdictsCSV(path, res.Verdicts))

	rows := readCSV(t, path)
	// header + 3 level tests + 2 diff tests for ExchangeRate + 3 for Inflation
	require.Len(t, rows, 1+3+2+3)
	assert.Equal(t, []string{"Variable", "Sample", "Test", "Statistic", "PValue", "Lags", "Order"}, rows[0])
	assert.Equal(t, "ExchangeRate", rows[1][0])
	assert.Equal(t, "level", rows[1][1])
	assert.Equal(t, "difference", rows[4][1])
	assert.Equal(t, "I(1)", rows[1][6])
}

func TestWriteBoundsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounds.csv")
	res := sampleResult()
	require.NoError(t, WriteBoundsCSV(path, res.ARDL, res.Bounds))

	rows := readCSV(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "ExchangeRate", rows[1][0])
	assert.Equal(t, "ARDL(2,1,0)", rows[1][1])
	assert.Equal(t, res.Bounds.Verdict.String(), rows[1][len(rows[1])-1])
}

func TestWriteLagTableCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lags.csv")
	require.NoError(t, WriteLagTableCSV(path, sampleResult().LagChoice))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "false", rows[1][6], "order 1 not selected")
	assert.Equal(t, "true", rows[2][6], "order 2 selected")
}

func TestWriteDiagnosticsAndCausalityCSV(t *testing.T) {
	dir := t.TempDir()
	res := sampleResult()

	diagPath := filepath.Join(dir, "diag.csv")
	require.NoError(t, WriteDiagnosticsCSV(diagPath, res.Diagnostics))
	rows := readCSV(t, diagPath)
	require.Len(t, rows, 4)
	for _, row := range rows[1:] {
		assert.Equal(t, "robust-hc", row[4])
	}

	causPath := filepath.Join(dir, "causality.csv")
	require.NoError(t, WriteCausalityCSV(causPath, res.Causality))
	rows = readCSV(t, causPath)
	require.Len(t, rows, 3)
	assert.Equal(t, "Inflation", rows[1][0])
	assert.Equal(t, "ExchangeRate", rows[1][1])

	cusumPath := filepath.Join(dir, "cusum.csv")
	require.NoError(t, WriteCUSUMCSV(cusumPath, res.Diagnostics))
	rows = readCSV(t, cusumPath)
	require.Len(t, rows, 3)
}

func TestWriteForecastAndIRFCSV(t *testing.T) {
	dir := t.TempDir()
	names := []string{"a", "b"}

	fc := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	fcPath := filepath.Join(dir, "fc.csv")
	require.NoError(t, WriteForecastCSV(fcPath, fc, names))
	rows := readCSV(t, fcPath)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Step", "a", "b"}, rows[0])
	assert.Equal(t, "1", rows[1][0])

	bands := map[int]*varm.IRFBands{
		0: {
			ShockIndex: 0, Horizon: 2, Alpha: 0.05,
			Point: mat.NewDense(2, 2, []float64{1, 0, 0.5, 0.1}),
			Lower: mat.NewDense(2, 2, []float64{0.8, -0.1, 0.3, -0.1}),
			Upper: mat.NewDense(2, 2, []float64{1.2, 0.1, 0.7, 0.3}),
		},
	}
	irfPath := filepath.Join(dir, "irf.csv")
	require.NoError(t, WriteIRFBandsCSV(irfPath, bands, names))
	rows = readCSV(t, irfPath)
	require.Len(t, rows, 1+2*2)
	assert.Equal(t, "a", rows[1][0], "shock variable name")
}

func TestWriteSummary(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, WriteSummary(&sb, sampleResult()))
	out := sb.String()

	assert.Contains(t, out, "ExchangeRate")
	assert.Contains(t, out, "ARDL(2,1,0)")
	assert.Contains(t, out, "Granger causality")
	assert.Contains(t, out, "robust-hc")
}

func TestStoreRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	store, err := OpenStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	res := sampleResult()
	id, err := store.SaveRun("data/panel.csv", res)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	id2, err := store.SaveRun("data/panel.csv", res)
	require.NoError(t, err)
	assert.Greater(t, id2, id)

	runs, err := store.ListRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, id2, runs[0].ID, "newest first")
	assert.Equal(t, "data/panel.csv", runs[0].InputPath)
	assert.Equal(t, res.Path.String(), runs[0].Path)
	assert.False(t, runs[0].CreatedAt.IsZero())
}
