package forecast

import (
	"github.com/stockwise/inventory-pipeline/internal/config"
	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

// Forecaster produces a fixed-horizon demand forecast from one product's
// daily series. Implementations must not mutate the series.
type Forecaster interface {
	Name() string
	Fit(series domain.DemandSeries, horizon int) (domain.Forecast, error)
}

// New returns the configured primary forecaster.
func New(cfg config.ForecastConfig, seasonalPeriod int) Forecaster {
	switch cfg.Model {
	case config.ModelNaive:
		return &Naive{}
	default:
		return &HoltWinters{SeasonLength: seasonalPeriod}
	}
}

// WithFallback fits the primary forecaster and recovers from any fit error by
// substituting the deterministic naive model, flagging the forecast so
// downstream consumers can tell the paths apart. The returned error is
// non-nil only when even the fallback cannot produce a forecast (empty
// series).
func WithFallback(primary Forecaster, series domain.DemandSeries, horizon int) (domain.Forecast, error) {
	fc, err := primary.Fit(series, horizon)
	if err == nil {
		return fc, nil
	}

	fitErr := &domain.ModelFitError{ProductID: series.ProductID, Model: primary.Name(), Err: err}
	logger.Log.Warn().Str("product_id", series.ProductID).Err(fitErr).Msg("primary model failed, using fallback")

	fallback := &Naive{}
	fc, err = fallback.Fit(series, horizon)
	if err != nil {
		return domain.Forecast{}, &domain.ModelFitError{ProductID: series.ProductID, Model: fallback.Name(), Err: err}
	}
	fc.Fallback = true
	return fc, nil
}
