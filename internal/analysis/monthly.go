package analysis

import (
	"sort"
	"time"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// SummarizeMonthly rolls each product's daily demand up into calendar-month
// totals, feeding the monthly trend charts.
func SummarizeMonthly(demand map[string]domain.DemandSeries) []domain.MonthlyDemand {
	type key struct {
		productID string
		month     time.Time
	}
	totals := make(map[key]float64)
	for _, s := range demand {
		for _, d := range s.Days {
			k := key{
				productID: s.ProductID,
				month:     time.Date(d.Date.Year(), d.Date.Month(), 1, 0, 0, 0, 0, time.UTC),
			}
			totals[k] += d.Quantity
		}
	}

	out := make([]domain.MonthlyDemand, 0, len(totals))
	for k, qty := range totals {
		out = append(out, domain.MonthlyDemand{ProductID: k.productID, Month: k.month, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// sortByProductID keeps result tables in a stable, deterministic order no
// matter the map iteration order they were built from.
func sortByProductID[T any](entries []T, id func(T) string) {
	sort.Slice(entries, func(i, j int) bool { return id(entries[i]) < id(entries[j]) })
}
