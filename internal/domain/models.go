package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is immutable reference data for a single SKU, loaded once per run.
type Product struct {
	ProductID    string
	Category     string
	LeadTimeDays int
	ReorderLevel int
	InitialStock int
	UnitCost     float64
	// Expiration is set only for perishables (grocery adapter inputs).
	Expiration *time.Time
}

// Transaction is one row of the append-only sales log.
type Transaction struct {
	Date      time.Time
	ProductID string
	Category  string
	Quantity  int
}

// DemandDay is one calendar day of a product's demand series.
type DemandDay struct {
	Date     time.Time
	Quantity float64
}

// DemandSeries is a product's zero-filled daily demand over a contiguous,
// strictly increasing date range.
type DemandSeries struct {
	ProductID string
	Days      []DemandDay
}

// Values returns the demand quantities in date order.
func (s DemandSeries) Values() []float64 {
	out := make([]float64, len(s.Days))
	for i, d := range s.Days {
		out[i] = d.Quantity
	}
	return out
}

// Total returns the sum of daily demand over the whole series.
func (s DemandSeries) Total() float64 {
	var total float64
	for _, d := range s.Days {
		total += d.Quantity
	}
	return total
}

// LastDate returns the final date of the series, or the zero time when empty.
func (s DemandSeries) LastDate() time.Time {
	if len(s.Days) == 0 {
		return time.Time{}
	}
	return s.Days[len(s.Days)-1].Date
}

// StockDay is one day of a product's derived stock position.
type StockDay struct {
	Date       time.Time
	Cumulative float64
	Estimate   float64
	// Stockout marks days where initial stock minus cumulative sales went
	// negative; Estimate is clamped to zero on those days.
	Stockout bool
}

// StockEstimate is the derived running stock position for one product. It is
// a lower bound: receipts are not tracked, only initial stock minus sales.
type StockEstimate struct {
	ProductID string
	Days      []StockDay
}

// Current returns the latest stock estimate and whether the product ever hit
// a (clamped) stockout.
func (e StockEstimate) Current() (estimate float64, stockedOut bool) {
	for _, d := range e.Days {
		if d.Stockout {
			stockedOut = true
		}
	}
	if len(e.Days) == 0 {
		return 0, stockedOut
	}
	return e.Days[len(e.Days)-1].Estimate, stockedOut
}

// ABCClass is a Pareto revenue tier.
type ABCClass string

const (
	ClassA ABCClass = "A"
	ClassB ABCClass = "B"
	ClassC ABCClass = "C"
)

// ABCEntry is one product's revenue classification.
type ABCEntry struct {
	ProductID string
	Category  string
	Revenue   decimal.Decimal
	// CumShare is the cumulative revenue share at this product's position in
	// the descending-revenue ordering, in (0, 1].
	CumShare float64
	Class    ABCClass
}

// VelocityLabel classifies a product's demand rate against its own history.
type VelocityLabel string

const (
	VelocityFast         VelocityLabel = "fast"
	VelocitySlow         VelocityLabel = "slow"
	VelocityNormal       VelocityLabel = "normal"
	VelocityInsufficient VelocityLabel = "insufficient-data"
)

// VelocityEntry is one product's rolling-window velocity result.
type VelocityEntry struct {
	ProductID string
	ShortAvg  float64
	LongAvg   float64
	Label     VelocityLabel
}

// SeasonalityEntry is one product's seasonality-strength score in [0, 1].
// OK is false when the series was too short or degenerate to decompose.
type SeasonalityEntry struct {
	ProductID string
	Strength  float64
	OK        bool
}

// MonthlyDemand is one product's demand total for a calendar month.
type MonthlyDemand struct {
	ProductID string
	Month     time.Time
	Quantity  float64
}

// ForecastPoint is a single forecasted day. Lower/Upper are zero when the
// producing model does not emit uncertainty bounds.
type ForecastPoint struct {
	Date  time.Time
	Value float64
	Lower float64
	Upper float64
}

// Forecast is a fixed-horizon, per-product demand forecast.
type Forecast struct {
	ProductID string
	// Method names the model that produced the points, so downstream
	// consumers can tell primary fits from fallbacks.
	Method    string
	Fallback  bool
	HasBounds bool
	Points    []ForecastPoint
}

// DemandThrough sums the first n days of forecasted demand.
func (f Forecast) DemandThrough(n int) float64 {
	if n > len(f.Points) {
		n = len(f.Points)
	}
	var total float64
	for _, p := range f.Points[:n] {
		total += p.Value
	}
	return total
}

// Priority tiers for reorder recommendations.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is the per-product reorder output row.
type Recommendation struct {
	ProductID        string
	LeadTimeDays     int
	DemandDuringLead float64
	SafetyStock      float64
	CurrentStock     float64
	ReorderQuantity  float64
	Priority         Priority
	ForecastMethod   string
	UsedFallback     bool
	// NextOrderDate is the first day the stock estimate is projected to cross
	// the reorder level; nil when stock never crosses within the horizon.
	NextOrderDate *time.Time
	// WasteEstimate is set only for perishables with an expiration date.
	WasteEstimate *float64
}
