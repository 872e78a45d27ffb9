package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config carries every knob the pipeline recognizes. It is built once in the
// CLI layer and passed explicitly into each component; nothing reads the
// environment after Load returns.
type Config struct {
	Data     DataConfig
	Analysis AnalysisConfig
	Forecast ForecastConfig
	Reorder  ReorderConfig
	Report   ReportConfig
	LogLevel string
	Workers  int
	Lenient  bool
}

type DataConfig struct {
	DataDir         string
	OutputDir       string
	DefaultLeadTime int
}

type AnalysisConfig struct {
	ShortWindow    int
	LongWindow     int
	VelocityRatio  float64
	ABCThresholdA  float64
	ABCThresholdB  float64
	SeasonalPeriod int
}

type ForecastConfig struct {
	Model       string
	HorizonDays int
}

type ReorderConfig struct {
	SafetyPolicy string
	SafetyParam  float64
}

type ReportConfig struct {
	PlotExamples int
}

// Safety margin policies recognized by ReorderConfig.SafetyPolicy.
const (
	SafetyPolicyZScore  = "zscore"
	SafetyPolicyPercent = "percent"
)

// Forecast models recognized by ForecastConfig.Model.
const (
	ModelHoltWinters = "holtwinters"
	ModelNaive       = "naive"
)

// Load builds a Config from environment variables (with a .env file picked up
// when present), applying defaults for everything not set.
func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("OUTPUT_DIR", "./outputs")
	v.SetDefault("DEFAULT_LEAD_TIME_DAYS", 7)
	v.SetDefault("SHORT_WINDOW_DAYS", 7)
	v.SetDefault("LONG_WINDOW_DAYS", 30)
	v.SetDefault("VELOCITY_RATIO", 1.3)
	v.SetDefault("ABC_THRESHOLD_A", 0.80)
	v.SetDefault("ABC_THRESHOLD_B", 0.95)
	v.SetDefault("SEASONAL_PERIOD_DAYS", 7)
	v.SetDefault("FORECAST_MODEL", ModelHoltWinters)
	v.SetDefault("FORECAST_HORIZON_DAYS", 30)
	v.SetDefault("SAFETY_POLICY", SafetyPolicyZScore)
	v.SetDefault("SAFETY_PARAM", 1.65)
	v.SetDefault("PLOT_EXAMPLES", 3)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PIPELINE_WORKERS", 0)
	v.SetDefault("LENIENT_VALIDATION", true)

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		Data: DataConfig{
			DataDir:         v.GetString("DATA_DIR"),
			OutputDir:       v.GetString("OUTPUT_DIR"),
			DefaultLeadTime: v.GetInt("DEFAULT_LEAD_TIME_DAYS"),
		},
		Analysis: AnalysisConfig{
			ShortWindow:    v.GetInt("SHORT_WINDOW_DAYS"),
			LongWindow:     v.GetInt("LONG_WINDOW_DAYS"),
			VelocityRatio:  v.GetFloat64("VELOCITY_RATIO"),
			ABCThresholdA:  v.GetFloat64("ABC_THRESHOLD_A"),
			ABCThresholdB:  v.GetFloat64("ABC_THRESHOLD_B"),
			SeasonalPeriod: v.GetInt("SEASONAL_PERIOD_DAYS"),
		},
		Forecast: ForecastConfig{
			Model:       v.GetString("FORECAST_MODEL"),
			HorizonDays: v.GetInt("FORECAST_HORIZON_DAYS"),
		},
		Reorder: ReorderConfig{
			SafetyPolicy: v.GetString("SAFETY_POLICY"),
			SafetyParam:  v.GetFloat64("SAFETY_PARAM"),
		},
		Report: ReportConfig{
			PlotExamples: v.GetInt("PLOT_EXAMPLES"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
		Workers:  v.GetInt("PIPELINE_WORKERS"),
		Lenient:  v.GetBool("LENIENT_VALIDATION"),
	}
}

// Validate checks cross-field constraints that cannot be defaulted away.
func (c *Config) Validate() error {
	if c.Forecast.HorizonDays < 1 {
		return fmt.Errorf("forecast horizon must be at least 1 day, got %d", c.Forecast.HorizonDays)
	}
	if c.Analysis.ShortWindow < 1 || c.Analysis.LongWindow < c.Analysis.ShortWindow {
		return fmt.Errorf("invalid rolling windows: short=%d long=%d", c.Analysis.ShortWindow, c.Analysis.LongWindow)
	}
	if c.Analysis.ABCThresholdA <= 0 || c.Analysis.ABCThresholdA >= c.Analysis.ABCThresholdB || c.Analysis.ABCThresholdB > 1 {
		return fmt.Errorf("invalid ABC thresholds: A=%.2f B=%.2f", c.Analysis.ABCThresholdA, c.Analysis.ABCThresholdB)
	}
	switch c.Reorder.SafetyPolicy {
	case SafetyPolicyZScore, SafetyPolicyPercent:
	default:
		return fmt.Errorf("unknown safety policy %q", c.Reorder.SafetyPolicy)
	}
	switch c.Forecast.Model {
	case ModelHoltWinters, ModelNaive:
	default:
		return fmt.Errorf("unknown forecast model %q", c.Forecast.Model)
	}
	return nil
}
