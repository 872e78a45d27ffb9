package analysis

import (
	"gonum.org/v1/gonum/stat"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// FlagVelocity labels each product fast, slow or normal by comparing the
// trailing short-window mean of daily demand against the trailing long-window
// mean. A product is fast when shortAvg > longAvg*ratio, slow when
// shortAvg < longAvg/ratio, and normal otherwise.
//
// History is counted from the first day with any demand (series are
// zero-filled over the global calendar range, so leading zeros are padding,
// not history); products with less than one full long window of history are
// labeled insufficient-data.
func FlagVelocity(demand map[string]domain.DemandSeries, shortWindow, longWindow int, ratio float64) []domain.VelocityEntry {
	entries := make([]domain.VelocityEntry, 0, len(demand))
	for _, s := range demand {
		entries = append(entries, flagOne(s, shortWindow, longWindow, ratio))
	}
	sortByProductID(entries, func(e domain.VelocityEntry) string { return e.ProductID })
	return entries
}

func flagOne(s domain.DemandSeries, shortWindow, longWindow int, ratio float64) domain.VelocityEntry {
	entry := domain.VelocityEntry{ProductID: s.ProductID}

	values := s.Values()
	firstSale := -1
	for i, v := range values {
		if v > 0 {
			firstSale = i
			break
		}
	}
	if firstSale < 0 || len(values)-firstSale < longWindow {
		entry.Label = domain.VelocityInsufficient
		return entry
	}

	entry.ShortAvg = stat.Mean(values[len(values)-shortWindow:], nil)
	entry.LongAvg = stat.Mean(values[len(values)-longWindow:], nil)

	switch {
	case entry.ShortAvg > entry.LongAvg*ratio:
		entry.Label = domain.VelocityFast
	case entry.ShortAvg < entry.LongAvg/ratio:
		entry.Label = domain.VelocitySlow
	default:
		entry.Label = domain.VelocityNormal
	}
	return entry
}
