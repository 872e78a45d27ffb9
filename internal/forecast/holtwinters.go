package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// HoltWinters is the primary model: additive triple exponential smoothing
// with a level, a linear trend and a repeating seasonal component (weekly by
// default). Point forecasts are clamped to zero from below; uncertainty
// bounds are ±1.96 standard deviations of the in-sample one-step residuals.
type HoltWinters struct {
	SeasonLength int

	// Smoothing constants; the zero value selects the defaults below.
	Alpha, Beta, Gamma float64
}

const (
	defaultAlpha = 0.35
	defaultBeta  = 0.05
	defaultGamma = 0.15
)

func (hw *HoltWinters) Name() string { return "holtwinters" }

// Fit runs the smoothing recursions over the series and extrapolates
// level + trend + seasonal for each horizon day.
func (hw *HoltWinters) Fit(series domain.DemandSeries, horizon int) (domain.Forecast, error) {
	period := hw.SeasonLength
	if period < 2 {
		period = 7
	}

	values := series.Values()
	n := len(values)
	if n < 2*period {
		return domain.Forecast{}, fmt.Errorf("need at least %d observations, have %d", 2*period, n)
	}

	alpha, beta, gamma := hw.Alpha, hw.Beta, hw.Gamma
	if alpha == 0 {
		alpha = defaultAlpha
	}
	if beta == 0 {
		beta = defaultBeta
	}
	if gamma == 0 {
		gamma = defaultGamma
	}

	level, trend, seasonal := hw.initialState(values, period)

	residuals := make([]float64, 0, n-period)
	for i := period; i < n; i++ {
		predicted := level + trend + seasonal[i%period]
		residuals = append(residuals, values[i]-predicted)

		prevLevel := level
		level = alpha*(values[i]-seasonal[i%period]) + (1-alpha)*(level+trend)
		trend = beta*(level-prevLevel) + (1-beta)*trend
		seasonal[i%period] = gamma*(values[i]-level) + (1-gamma)*seasonal[i%period]
	}

	sigma := stat.StdDev(residuals, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}

	last := series.LastDate()
	points := make([]domain.ForecastPoint, horizon)
	for h := 1; h <= horizon; h++ {
		value := level + float64(h)*trend + seasonal[(n+h-1)%period]
		if value < 0 {
			value = 0
		}
		points[h-1] = domain.ForecastPoint{
			Date:  last.AddDate(0, 0, h),
			Value: value,
			Lower: math.Max(0, value-1.96*sigma),
			Upper: value + 1.96*sigma,
		}
	}

	return domain.Forecast{
		ProductID: series.ProductID,
		Method:    hw.Name(),
		HasBounds: true,
		Points:    points,
	}, nil
}

// initialState seeds level and trend from the first two seasonal cycles and
// the seasonal indices from first-cycle deviations.
func (hw *HoltWinters) initialState(values []float64, period int) (level, trend float64, seasonal []float64) {
	first := stat.Mean(values[:period], nil)
	second := stat.Mean(values[period:2*period], nil)

	level = first
	trend = (second - first) / float64(period)

	seasonal = make([]float64, period)
	for k := 0; k < period; k++ {
		seasonal[k] = values[k] - first
	}
	return level, trend, seasonal
}
