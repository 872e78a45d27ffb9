package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

func demandSeries(productID string, days int, qty float64) domain.DemandSeries {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.DemandSeries{ProductID: productID, Days: make([]domain.DemandDay, days)}
	for i := range s.Days {
		s.Days[i] = domain.DemandDay{Date: start.AddDate(0, 0, i), Quantity: qty}
	}
	return s
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "\x89PNG", string(data[:4]), "file should carry the PNG signature")
}

func TestStockVsSales(t *testing.T) {
	dir := t.TempDir()
	p := &Plotter{OutputDir: dir}

	products := []domain.Product{{ProductID: "P001"}, {ProductID: "P002"}}
	demand := map[string]domain.DemandSeries{
		"P001": demandSeries("P001", 10, 5),
		"P002": demandSeries("P002", 10, 2),
	}
	stock := map[string]domain.StockEstimate{
		"P001": {ProductID: "P001", Days: []domain.StockDay{{Estimate: 50}}},
		"P002": {ProductID: "P002", Days: []domain.StockDay{{Estimate: 80}}},
	}

	require.NoError(t, p.StockVsSales(products, demand, stock))
	assertPNG(t, filepath.Join(dir, "plots", "stock_vs_sales.png"))
}

func TestStockVsSales_TooFewProducts(t *testing.T) {
	p := &Plotter{OutputDir: t.TempDir()}
	err := p.StockVsSales([]domain.Product{{ProductID: "P001"}}, nil, nil)
	assert.Error(t, err)
}

func TestABCPie(t *testing.T) {
	dir := t.TempDir()
	p := &Plotter{OutputDir: dir}

	err := p.ABCPie([]domain.ABCEntry{
		{ProductID: "P001", Class: domain.ClassA},
		{ProductID: "P002", Class: domain.ClassB},
		{ProductID: "P003", Class: domain.ClassC},
		{ProductID: "P004", Class: domain.ClassC},
	})
	require.NoError(t, err)
	assertPNG(t, filepath.Join(dir, "plots", "abc_distribution.png"))
}

func TestABCPie_NoEntries(t *testing.T) {
	p := &Plotter{OutputDir: t.TempDir()}
	assert.Error(t, p.ABCPie(nil))
}

func TestMonthlyTrend(t *testing.T) {
	dir := t.TempDir()
	p := &Plotter{OutputDir: dir}

	monthly := []domain.MonthlyDemand{
		{ProductID: "P001", Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Quantity: 120},
		{ProductID: "P001", Month: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Quantity: 95},
		{ProductID: "P001", Month: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Quantity: 140},
		{ProductID: "P999", Month: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Quantity: 7},
	}

	require.NoError(t, p.MonthlyTrend(monthly, "P001"))
	assertPNG(t, filepath.Join(dir, "plots", "monthly_trend_P001.png"))

	// A product with a single month cannot be drawn as a trend.
	assert.Error(t, p.MonthlyTrend(monthly, "P999"))
}

func TestForecastPlot(t *testing.T) {
	dir := t.TempDir()
	p := &Plotter{OutputDir: dir}

	s := demandSeries("P001", 120, 5)
	fc := domain.Forecast{ProductID: "P001", Method: "holtwinters", HasBounds: true}
	last := s.LastDate()
	for h := 1; h <= 14; h++ {
		fc.Points = append(fc.Points, domain.ForecastPoint{
			Date:  last.AddDate(0, 0, h),
			Value: 5,
			Lower: 3,
			Upper: 7,
		})
	}

	require.NoError(t, p.ForecastPlot(s, fc))
	assertPNG(t, filepath.Join(dir, "plots", "forecast_P001.png"))
}

func TestForecastPlot_EmptyForecast(t *testing.T) {
	p := &Plotter{OutputDir: t.TempDir()}
	err := p.ForecastPlot(demandSeries("P001", 10, 5), domain.Forecast{ProductID: "P001"})
	assert.Error(t, err)
}
