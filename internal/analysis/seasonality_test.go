package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

func TestSeasonalityStrength_StrongWeeklyPattern(t *testing.T) {
	// A perfectly repeating weekly shape decomposes with near-zero residual.
	pattern := []float64{20, 4, 4, 4, 4, 4, 12}
	values := make([]float64, 0, len(pattern)*8)
	for i := 0; i < 8; i++ {
		values = append(values, pattern...)
	}

	entries := SeasonalityStrength(map[string]domain.DemandSeries{
		"P001": seriesFromValues("P001", values),
	}, 7)
	require.Len(t, entries, 1)
	require.True(t, entries[0].OK)
	assert.Greater(t, entries[0].Strength, 0.9)
	assert.LessOrEqual(t, entries[0].Strength, 1.0)
}

func TestSeasonalityStrength_NoisyAperiodicIsWeak(t *testing.T) {
	// Deterministic pseudo-noise with no weekly structure.
	values := make([]float64, 70)
	for i := range values {
		values[i] = float64((i*37)%11) + float64((i*13)%5)
	}

	entries := SeasonalityStrength(map[string]domain.DemandSeries{
		"P001": seriesFromValues("P001", values),
	}, 7)
	require.Len(t, entries, 1)
	require.True(t, entries[0].OK)
	assert.Less(t, entries[0].Strength, 0.7)
}

func TestSeasonalityStrength_ShortSeriesNotOK(t *testing.T) {
	entries := SeasonalityStrength(map[string]domain.DemandSeries{
		"P001": flatSeries("P001", 10, 5),
	}, 7)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].OK)
	assert.Zero(t, entries[0].Strength)
}

func TestSeasonalityStrength_ConstantSeriesNotOK(t *testing.T) {
	// No variance left after detrending, so the score is undefined.
	entries := SeasonalityStrength(map[string]domain.DemandSeries{
		"P001": flatSeries("P001", 56, 5),
	}, 7)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].OK)
}

func TestSeasonalityStrength_ScoreBounds(t *testing.T) {
	for name, values := range map[string][]float64{
		"trending": trendingValues(42),
		"spiky":    spikyValues(42),
	} {
		entries := SeasonalityStrength(map[string]domain.DemandSeries{
			"P001": seriesFromValues("P001", values),
		}, 7)
		require.Len(t, entries, 1, name)
		if entries[0].OK {
			assert.GreaterOrEqual(t, entries[0].Strength, 0.0, name)
			assert.LessOrEqual(t, entries[0].Strength, 1.0, name)
		}
	}
}

func trendingValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i) * 0.5
	}
	return values
}

func spikyValues(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		if i%11 == 0 {
			values[i] = 40
		} else {
			values[i] = 1
		}
	}
	return values
}
