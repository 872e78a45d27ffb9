package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// ClassifyABC assigns Pareto revenue tiers. Revenue per product is total
// demand times unit cost, computed in decimal to keep money math exact.
// Products are ordered by descending revenue with ties broken by ascending
// product_id, then classified by cumulative revenue share against the
// configured thresholds (class A up to thresholdA, B up to thresholdB,
// C for the rest).
func ClassifyABC(products []domain.Product, demand map[string]domain.DemandSeries, thresholdA, thresholdB float64) []domain.ABCEntry {
	entries := make([]domain.ABCEntry, 0, len(products))
	total := decimal.Zero
	for _, p := range products {
		var sold float64
		if s, ok := demand[p.ProductID]; ok {
			sold = s.Total()
		}
		revenue := decimal.NewFromFloat(sold).Mul(decimal.NewFromFloat(p.UnitCost))
		entries = append(entries, domain.ABCEntry{
			ProductID: p.ProductID,
			Category:  p.Category,
			Revenue:   revenue,
		})
		total = total.Add(revenue)
	}

	sort.Slice(entries, func(i, j int) bool {
		if c := entries[i].Revenue.Cmp(entries[j].Revenue); c != 0 {
			return c > 0
		}
		return entries[i].ProductID < entries[j].ProductID
	})

	if total.IsZero() {
		// No revenue at all: everything is class A with full share, so the
		// partition property still holds.
		for i := range entries {
			entries[i].CumShare = 1
			entries[i].Class = domain.ClassA
		}
		return entries
	}

	cum := decimal.Zero
	for i := range entries {
		cum = cum.Add(entries[i].Revenue)
		share := cum.Div(total).InexactFloat64()
		entries[i].CumShare = share
		switch {
		case share <= thresholdA:
			entries[i].Class = domain.ClassA
		case share <= thresholdB:
			entries[i].Class = domain.ClassB
		default:
			entries[i].Class = domain.ClassC
		}
	}

	// The first product always lands in A even when it alone exceeds the A
	// threshold; a partition with an empty top tier is useless.
	if len(entries) > 0 {
		entries[0].Class = domain.ClassA
	}

	return entries
}
