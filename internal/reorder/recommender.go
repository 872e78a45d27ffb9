package reorder

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/stockwise/inventory-pipeline/internal/config"
	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// Recommender turns forecasts and stock positions into reorder
// recommendations.
type Recommender struct {
	policy  string
	param   float64
	horizon int
}

// NewRecommender creates a recommender with the configured safety-margin
// policy.
func NewRecommender(cfg config.ReorderConfig, horizonDays int) *Recommender {
	return &Recommender{
		policy:  cfg.SafetyPolicy,
		param:   cfg.SafetyParam,
		horizon: horizonDays,
	}
}

// Recommend computes the reorder row for one product. It returns a
// *domain.ConfigError when the forecast horizon cannot cover the product's
// lead time; that error aborts this product only.
func (r *Recommender) Recommend(
	p domain.Product,
	demand domain.DemandSeries,
	stock domain.StockEstimate,
	fc domain.Forecast,
	class domain.ABCClass,
) (domain.Recommendation, error) {
	leadTime := p.LeadTimeDays
	if leadTime < 1 {
		leadTime = 1
	}
	if leadTime > r.horizon {
		return domain.Recommendation{}, &domain.ConfigError{
			ProductID: p.ProductID,
			Reason:    fmt.Sprintf("lead time %dd exceeds forecast horizon %dd", leadTime, r.horizon),
		}
	}

	current, _ := stock.Current()
	leadDemand := fc.DemandThrough(leadTime)
	safety := r.safetyStock(demand, leadTime, leadDemand)

	qty := math.Ceil(math.Max(0, leadDemand+safety-current))

	rec := domain.Recommendation{
		ProductID:        p.ProductID,
		LeadTimeDays:     leadTime,
		DemandDuringLead: leadDemand,
		SafetyStock:      safety,
		CurrentStock:     current,
		ReorderQuantity:  qty,
		ForecastMethod:   fc.Method,
		UsedFallback:     fc.Fallback,
	}

	if p.Expiration != nil {
		r.applyShelfLife(&rec, p, fc, current)
	}

	rec.NextOrderDate = r.nextOrderDate(p, fc, current)
	rec.Priority = priorityFor(current, float64(p.ReorderLevel), class)

	return rec, nil
}

// safetyStock applies the configured policy: a z-score buffer scaled by
// demand variability over the lead time, or a flat percentage of lead-time
// demand.
func (r *Recommender) safetyStock(demand domain.DemandSeries, leadTime int, leadDemand float64) float64 {
	switch r.policy {
	case config.SafetyPolicyPercent:
		return r.param * leadDemand
	default:
		sigma := stat.StdDev(demand.Values(), nil)
		if math.IsNaN(sigma) {
			sigma = 0
		}
		return r.param * sigma * math.Sqrt(float64(leadTime))
	}
}

// applyShelfLife caps the reorder quantity by what can plausibly sell before
// expiry and records the projected waste.
func (r *Recommender) applyShelfLife(rec *domain.Recommendation, p domain.Product, fc domain.Forecast, current float64) {
	if len(fc.Points) == 0 {
		return
	}
	seriesEnd := fc.Points[0].Date.AddDate(0, 0, -1)
	shelfDays := int(p.Expiration.Sub(seriesEnd).Hours() / 24)

	dailyRate := fc.DemandThrough(len(fc.Points)) / float64(len(fc.Points))

	if shelfDays <= 0 {
		// Already expired: nothing to reorder, everything on hand is waste.
		rec.ReorderQuantity = 0
		waste := current
		rec.WasteEstimate = &waste
		return
	}

	limit := math.Max(0, math.Ceil(float64(shelfDays)*dailyRate))
	if rec.ReorderQuantity > limit {
		rec.ReorderQuantity = limit
	}

	// Demand until expiry: forecast days inside the horizon, extrapolated at
	// the mean daily rate beyond it.
	var demandUntilExpiry float64
	if shelfDays <= len(fc.Points) {
		demandUntilExpiry = fc.DemandThrough(shelfDays)
	} else {
		demandUntilExpiry = fc.DemandThrough(len(fc.Points)) + float64(shelfDays-len(fc.Points))*dailyRate
	}
	waste := math.Max(0, current-demandUntilExpiry)
	rec.WasteEstimate = &waste
}

// nextOrderDate walks the forecast forward from the current stock estimate
// and returns the first day the projected position drops below the reorder
// level, or nil when it never does within the horizon.
func (r *Recommender) nextOrderDate(p domain.Product, fc domain.Forecast, current float64) *time.Time {
	projected := current
	for _, pt := range fc.Points {
		projected -= pt.Value
		if projected < float64(p.ReorderLevel) {
			d := pt.Date
			return &d
		}
	}
	return nil
}

func priorityFor(current, reorderLevel float64, class domain.ABCClass) domain.Priority {
	var tier int
	switch {
	case current <= 0:
		tier = 0
	case reorderLevel > 0 && current < reorderLevel/2:
		tier = 1
	case reorderLevel > 0 && current < reorderLevel:
		tier = 2
	default:
		tier = 3
	}
	// A-class stockouts hurt the most; bump them one tier.
	if class == domain.ClassA && tier > 0 {
		tier--
	}
	switch tier {
	case 0:
		return domain.PriorityUrgent
	case 1:
		return domain.PriorityHigh
	case 2:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
