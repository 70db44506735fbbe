// Command macrovar runs the exchange-rate / inflation / output-gap analysis
// pipeline: integration classification, ARDL bounds testing, differenced VAR
// estimation, residual diagnostics and Granger causality.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tkusuma/macrovar/internal/config"
	"github.com/tkusuma/macrovar/internal/dataset"
	"github.com/tkusuma/macrovar/internal/pipeline"
	"github.com/tkusuma/macrovar/internal/plots"
	"github.com/tkusuma/macrovar/internal/report"
	"github.com/tkusuma/macrovar/internal/stattest"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "macrovar",
		Short:         "Macroeconomic time-series pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(log), runsCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func runCmd(log zerolog.Logger) *cobra.Command {
	var (
		configPath string
		inputPath  string
		outDir     string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline over a CSV panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if inputPath != "" {
				cfg.Input.CSVPath = inputPath
			}
			if outDir != "" {
				cfg.Output.Dir = outDir
			}
			return run(cfg, log)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file (defaults apply when omitted)")
	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input CSV (overrides config)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (overrides config)")
	return cmd
}

func runsCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List archived runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := report.OpenStore(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()
			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			for _, r := range runs {
				fmt.Printf("%4d  %s  %-24s  %s\n",
					r.ID, r.CreatedAt.Format(time.RFC3339), r.Path, r.InputPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "macrovar.db", "SQLite archive path")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum runs to list")
	return cmd
}

func run(cfg *config.Config, log zerolog.Logger) error {
	panel, err := dataset.Load(cfg.Input.CSVPath, cfg.Input.HPLambda)
	if err != nil {
		return err
	}
	data, err := panel.Dataset()
	if err != nil {
		return err
	}
	log.Info().Str("input", cfg.Input.CSVPath).
		Int("observations", data.Len()).Int("variables", data.K()).
		Msg("panel loaded")

	trends := make(map[string]stattest.Trend, len(cfg.Tests.Trends))
	for name, t := range cfg.Tests.Trends {
		if t == "ct" {
			trends[name] = stattest.TrendConstTrend
		} else {
			trends[name] = stattest.TrendConst
		}
	}

	dep := cfg.Input.Dependent
	var regressors []string
	for _, name := range data.Names {
		if name != dep {
			regressors = append(regressors, name)
		}
	}
	if len(regressors) == len(data.Names) {
		return fmt.Errorf("dependent variable %q is not in the panel", dep)
	}

	var pairs []pipeline.Pair
	for _, cause := range data.Names {
		for _, effect := range data.Names {
			if cause != effect {
				pairs = append(pairs, pipeline.Pair{Cause: cause, Effect: effect})
			}
		}
	}

	runner := pipeline.Runner{
		Alpha:         cfg.Tests.Alpha,
		ClassifierLag: cfg.Lags.ClassifierMax,
		ARDLMaxLag:    cfg.Lags.ARDLMax,
		BoundsLevel:   cfg.Tests.BoundsLevel,
		VARMaxLag:     cfg.Lags.VARMax,
		Criterion:     cfg.Lags.Criterion,
		DiagLags:      cfg.Lags.Diagnostic,
		ForecastSteps: cfg.Extras.ForecastSteps,
		IRFHorizon:    cfg.Extras.IRFHorizon,
		BootstrapReps: cfg.Extras.BootstrapReps,
		BootstrapSeed: cfg.Extras.Seed,
		Log:           log,
	}
	res, err := runner.Run(data, trends, dep, regressors, pairs)
	if err != nil {
		return err
	}

	if err := writeArtifacts(cfg, panel, res, log); err != nil {
		return err
	}
	return report.WriteSummary(os.Stdout, res)
}

func writeArtifacts(cfg *config.Config, panel *dataset.Panel, res *pipeline.Result, log zerolog.Logger) error {
	dir := cfg.Output.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out := func(name string) string { return filepath.Join(dir, name) }

	if err := report.WriteVerdictsCSV(out("unit_root_tests.csv"), res.Verdicts); err != nil {
		return err
	}
	if res.Bounds != nil {
		if err := report.WriteBoundsCSV(out("bounds_test.csv"), res.ARDL, res.Bounds); err != nil {
			return err
		}
	}
	if res.LagChoice != nil {
		if err := report.WriteLagTableCSV(out("lag_selection.csv"), res.LagChoice); err != nil {
			return err
		}
	}
	if res.Diagnostics != nil {
		if err := report.WriteDiagnosticsCSV(out("diagnostics.csv"), res.Diagnostics); err != nil {
			return err
		}
		if len(res.Diagnostics.Stability) > 0 {
			if err := report.WriteCUSUMCSV(out("cusum.csv"), res.Diagnostics); err != nil {
				return err
			}
		}
	}
	if len(res.Causality) > 0 {
		if err := report.WriteCausalityCSV(out("causality.csv"), res.Causality); err != nil {
			return err
		}
	}
	if res.Model != nil {
		names := res.Model.Data.Names
		if res.Forecast != nil {
			if err := report.WriteForecastCSV(out("forecast.csv"), res.Forecast, names); err != nil {
				return err
			}
		}
		if len(res.IRFBands) > 0 {
			if err := report.WriteIRFBandsCSV(out("irf_bands.csv"), res.IRFBands, names); err != nil {
				return err
			}
		}
	}

	f, err := os.Create(out("summary.txt"))
	if err != nil {
		return err
	}
	if err := report.WriteSummary(f, res); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	if cfg.Output.SQLitePath != "" {
		store, err := report.OpenStore(cfg.Output.SQLitePath)
		if err != nil {
			return err
		}
		runID, err := store.SaveRun(cfg.Input.CSVPath, res)
		closeErr := store.Close()
		if err != nil {
			return err
		}
		if closeErr != nil {
			return closeErr
		}
		log.Info().Int64("run_id", runID).Str("db", cfg.Output.SQLitePath).Msg("run archived")
	}

	if cfg.Output.Plots {
		if err := writePlots(dir, panel, res); err != nil {
			return err
		}
	}
	log.Info().Str("dir", dir).Msg("artifacts written")
	return nil
}

func writePlots(dir string, panel *dataset.Panel, res *pipeline.Result) error {
	out := func(name string) string { return filepath.Join(dir, name) }

	if err := plots.Series(out("levels.png"), "Input series",
		panel.ExchangeRate, panel.Inflation, panel.Production); err != nil {
		return err
	}
	if err := plots.Series(out("output_gap.png"), "Output gap (HP cycle)", panel.OutputGap); err != nil {
		return err
	}
	if res.Model == nil {
		return nil
	}
	if err := plots.Residuals(out("residuals.png"), res.Model.Model); err != nil {
		return err
	}
	if res.Diagnostics != nil {
		for name, cs := range res.Diagnostics.Stability {
			if err := plots.CUSUM(out("cusum_"+name+".png"), name, cs); err != nil {
				return err
			}
		}
	}
	names := res.Model.Data.Names
	for shock, bands := range res.IRFBands {
		for resp := range names {
			file := fmt.Sprintf("irf_%s_to_%s.png", names[resp], names[shock])
			if err := plots.IRF(out(file), bands, names, resp); err != nil {
				return err
			}
		}
	}
	return nil
}
