package series

import (
	"sort"
	"time"

	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

// Result holds the derived per-product series for one run.
type Result struct {
	// Start/End bound the shared calendar range of every series.
	Start time.Time
	End   time.Time
	// Demand and Stock are keyed by product_id.
	Demand map[string]domain.DemandSeries
	Stock  map[string]domain.StockEstimate
}

// Build reshapes the transaction log into zero-filled daily demand series and
// running stock estimates.
//
// Every product's series spans the same global min(date)..max(date) range of
// the whole log (not the product's own observed range), so series stay
// calendar-aligned across products and day-by-day cross-product comparisons
// are valid. Products with no transactions at all get an all-zero series.
func Build(products []domain.Product, txs []domain.Transaction) Result {
	res := Result{
		Demand: make(map[string]domain.DemandSeries, len(products)),
		Stock:  make(map[string]domain.StockEstimate, len(products)),
	}
	if len(txs) == 0 {
		return res
	}

	res.Start, res.End = dateRange(txs)
	days := int(res.End.Sub(res.Start).Hours()/24) + 1

	// Aggregate transactions per product per day offset.
	perProduct := make(map[string]map[int]float64, len(products))
	for _, tx := range txs {
		offset := int(tx.Date.Sub(res.Start).Hours() / 24)
		if offset < 0 || offset >= days {
			continue
		}
		m, ok := perProduct[tx.ProductID]
		if !ok {
			m = make(map[int]float64)
			perProduct[tx.ProductID] = m
		}
		m[offset] += float64(tx.Quantity)
	}

	for _, p := range products {
		demand := domain.DemandSeries{
			ProductID: p.ProductID,
			Days:      make([]domain.DemandDay, days),
		}
		stock := domain.StockEstimate{
			ProductID: p.ProductID,
			Days:      make([]domain.StockDay, days),
		}

		byOffset := perProduct[p.ProductID]
		var cumulative float64
		stockedOut := false
		for i := 0; i < days; i++ {
			date := res.Start.AddDate(0, 0, i)
			qty := byOffset[i]
			cumulative += qty

			demand.Days[i] = domain.DemandDay{Date: date, Quantity: qty}

			estimate := float64(p.InitialStock) - cumulative
			day := domain.StockDay{Date: date, Cumulative: cumulative}
			if estimate < 0 {
				day.Estimate = 0
				day.Stockout = true
				stockedOut = true
			} else {
				day.Estimate = estimate
			}
			stock.Days[i] = day
		}

		if stockedOut {
			logger.Log.Debug().Str("product_id", p.ProductID).
				Msg("stock estimate clamped to zero; sales exceed initial stock")
		}

		res.Demand[p.ProductID] = demand
		res.Stock[p.ProductID] = stock
	}

	return res
}

// dateRange returns the day-truncated min and max transaction dates.
func dateRange(txs []domain.Transaction) (time.Time, time.Time) {
	dates := make([]time.Time, len(txs))
	for i, tx := range txs {
		dates[i] = tx.Date
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates[0], dates[len(dates)-1]
}
