package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

// SeasonalityStrength scores how much of each series' variance is explained
// by a repeating weekly pattern, via a classical additive decomposition:
// a centered moving-average trend, per-position seasonal means on the
// detrended series, and the leftover residual. The score is
//
//	1 - Var(residual) / Var(seasonal + residual)
//
// clamped to [0, 1]. Series shorter than two full periods, or with no
// variance left after detrending, report OK=false.
func SeasonalityStrength(demand map[string]domain.DemandSeries, period int) []domain.SeasonalityEntry {
	entries := make([]domain.SeasonalityEntry, 0, len(demand))
	for _, s := range demand {
		entry := domain.SeasonalityEntry{ProductID: s.ProductID}
		if strength, ok := decomposeStrength(s.Values(), period); ok {
			entry.Strength = strength
			entry.OK = true
		}
		entries = append(entries, entry)
	}
	sortByProductID(entries, func(e domain.SeasonalityEntry) string { return e.ProductID })
	return entries
}

func decomposeStrength(values []float64, period int) (float64, bool) {
	n := len(values)
	if period < 2 || n < 2*period {
		return 0, false
	}

	trend := centeredMovingAverage(values, period)

	// Detrend where the trend is defined.
	half := period / 2
	detrended := make([]float64, 0, n-2*half)
	positions := make([]int, 0, n-2*half)
	for i := half; i < n-half; i++ {
		detrended = append(detrended, values[i]-trend[i])
		positions = append(positions, i%period)
	}
	if len(detrended) < period {
		return 0, false
	}

	// Seasonal component: mean detrended value per position, centered so the
	// seasonal indices sum to zero.
	sums := make([]float64, period)
	counts := make([]float64, period)
	for i, pos := range positions {
		sums[pos] += detrended[i]
		counts[pos]++
	}
	indices := make([]float64, period)
	var indexMean float64
	for k := 0; k < period; k++ {
		if counts[k] > 0 {
			indices[k] = sums[k] / counts[k]
		}
		indexMean += indices[k] / float64(period)
	}
	for k := range indices {
		indices[k] -= indexMean
	}

	residual := make([]float64, len(detrended))
	for i, pos := range positions {
		residual[i] = detrended[i] - indices[pos]
	}

	denom := stat.Variance(detrended, nil)
	if denom <= 1e-12 || math.IsNaN(denom) {
		return 0, false
	}
	strength := 1 - stat.Variance(residual, nil)/denom
	return math.Max(0, math.Min(1, strength)), true
}

// centeredMovingAverage smooths with a window of the given period; for even
// periods the conventional 2xMA is applied so the average stays centered.
func centeredMovingAverage(values []float64, period int) []float64 {
	n := len(values)
	out := make([]float64, n)
	half := period / 2

	if period%2 == 1 {
		for i := half; i < n-half; i++ {
			var sum float64
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
			out[i] = sum / float64(period)
		}
		return out
	}

	for i := half; i < n-half; i++ {
		var sum float64
		// half weight on the window edges
		sum += values[i-half] / 2
		sum += values[i+half] / 2
		for j := i - half + 1; j <= i+half-1; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(period)
	}
	return out
}
