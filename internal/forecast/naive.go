package forecast

import (
	"fmt"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// Naive is the always-available fallback model: the trailing moving average
// of recent demand, repeated flat across the horizon. Lower fidelity than the
// primary model but fully deterministic, with no minimum history beyond a
// single observation.
type Naive struct {
	// Window is the number of trailing days averaged; the zero value uses 7.
	Window int
}

func (m *Naive) Name() string { return "naive" }

func (m *Naive) Fit(series domain.DemandSeries, horizon int) (domain.Forecast, error) {
	values := series.Values()
	if len(values) == 0 {
		return domain.Forecast{}, fmt.Errorf("empty series")
	}

	window := m.Window
	if window < 1 {
		window = 7
	}
	if window > len(values) {
		window = len(values)
	}

	var sum float64
	for _, v := range values[len(values)-window:] {
		sum += v
	}
	avg := sum / float64(window)

	last := series.LastDate()
	points := make([]domain.ForecastPoint, horizon)
	for h := 1; h <= horizon; h++ {
		points[h-1] = domain.ForecastPoint{
			Date:  last.AddDate(0, 0, h),
			Value: avg,
		}
	}

	return domain.Forecast{
		ProductID: series.ProductID,
		Method:    m.Name(),
		Points:    points,
	}, nil
}
