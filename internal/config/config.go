// Package config holds the run configuration. A YAML file overrides the
// defaults field by field; validation rejects values the pipeline cannot use.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tkusuma/macrovar/internal/timeseries"
)

// Config is the full run configuration.
type Config struct {
	Input  InputConfig  `yaml:"input"`
	Tests  TestConfig   `yaml:"tests"`
	Lags   LagConfig    `yaml:"lags"`
	Extras ExtrasConfig `yaml:"extras"`
	Output OutputConfig `yaml:"output"`
}

// InputConfig locates the panel and controls the output-gap derivation.
type InputConfig struct {
	CSVPath   string  `yaml:"csv_path"`
	HPLambda  float64 `yaml:"hp_lambda"`
	Dependent string  `yaml:"dependent"`
}

// TestConfig sets significance levels and deterministic trend assumptions.
type TestConfig struct {
	Alpha       float64           `yaml:"alpha"`
	BoundsLevel string            `yaml:"bounds_level"`
	Trends      map[string]string `yaml:"trends"` // variable -> "c" or "ct"
}

// LagConfig bounds the lag searches.
type LagConfig struct {
	Criterion     string `yaml:"criterion"` // aic, bic, hq
	ClassifierMax int    `yaml:"classifier_max"`
	ARDLMax       int    `yaml:"ardl_max"`
	VARMax        int    `yaml:"var_max"`
	Diagnostic    int    `yaml:"diagnostic"` // 0 means automatic
}

// ExtrasConfig controls the forecast and bootstrap IRF artifacts.
type ExtrasConfig struct {
	ForecastSteps int   `yaml:"forecast_steps"`
	IRFHorizon    int   `yaml:"irf_horizon"`
	BootstrapReps int   `yaml:"bootstrap_reps"`
	Seed          int64 `yaml:"seed"`
}

// OutputConfig names the artifact destinations.
type OutputConfig struct {
	Dir        string `yaml:"dir"`
	SQLitePath string `yaml:"sqlite_path"` // empty disables the store
	Plots      bool   `yaml:"plots"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			CSVPath:   "data/panel.csv",
			HPLambda:  timeseries.MonthlyLambda,
			Dependent: "ExchangeRate",
		},
		Tests: TestConfig{
			Alpha:       0.05,
			BoundsLevel: "5%",
			Trends:      map[string]string{},
		},
		Lags: LagConfig{
			Criterion:     "aic",
			ClassifierMax: 12,
			ARDLMax:       4,
			VARMax:        8,
		},
		Extras: ExtrasConfig{
			ForecastSteps: 12,
			IRFHorizon:    24,
			BootstrapReps: 500,
		},
		Output: OutputConfig{
			Dir:   "out",
			Plots: true,
		},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Input.CSVPath == "" {
		return fmt.Errorf("config: input.csv_path is required")
	}
	if c.Input.HPLambda <= 0 {
		return fmt.Errorf("config: input.hp_lambda must be positive, got %g", c.Input.HPLambda)
	}
	if c.Tests.Alpha <= 0 || c.Tests.Alpha >= 1 {
		return fmt.Errorf("config: tests.alpha must be in (0,1), got %g", c.Tests.Alpha)
	}
	switch c.Tests.BoundsLevel {
	case "10%", "5%", "1%":
	default:
		return fmt.Errorf("config: tests.bounds_level must be one of 10%%, 5%%, 1%%, got %q", c.Tests.BoundsLevel)
	}
	switch c.Lags.Criterion {
	case "aic", "bic", "hq":
	default:
		return fmt.Errorf("config: lags.criterion must be aic, bic or hq, got %q", c.Lags.Criterion)
	}
	for _, v := range []struct {
		name  string
		value int
	}{
		{"lags.classifier_max", c.Lags.ClassifierMax},
		{"lags.ardl_max", c.Lags.ARDLMax},
		{"lags.var_max", c.Lags.VARMax},
	} {
		if v.value < 1 {
			return fmt.Errorf("config: %s must be at least 1, got %d", v.name, v.value)
		}
	}
	for name, trend := range c.Tests.Trends {
		switch trend {
		case "c", "ct":
		default:
			return fmt.Errorf("config: tests.trends[%s] must be \"c\" or \"ct\", got %q", name, trend)
		}
	}
	return nil
}
