package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

// Plotter renders PNG charts under <OutputDir>/plots. Chart failures are
// reported but never fail the run; charts are a convenience layer over the
// CSV outputs.
type Plotter struct {
	OutputDir string
}

func (p *Plotter) plotDir() (string, error) {
	dir := filepath.Join(p.OutputDir, "plots")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create plot directory: %w", err)
	}
	return dir, nil
}

func (p *Plotter) save(name string, render func(f *os.File) error) error {
	dir, err := p.plotDir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := render(f); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	logger.Log.Info().Str("file", path).Msg("wrote chart")
	return nil
}

// StockVsSales draws current stock estimates against total historical sales,
// one dot per product.
func (p *Plotter) StockVsSales(products []domain.Product, demand map[string]domain.DemandSeries, stock map[string]domain.StockEstimate) error {
	xs := make([]float64, 0, len(products))
	ys := make([]float64, 0, len(products))
	for _, prod := range products {
		est, ok := stock[prod.ProductID]
		if !ok {
			continue
		}
		current, _ := est.Current()
		xs = append(xs, current)
		ys = append(ys, demand[prod.ProductID].Total())
	}
	if len(xs) < 2 {
		return fmt.Errorf("not enough products to plot stock vs sales")
	}

	graph := chart.Chart{
		Title:  "Current Stock vs Historical Sales",
		Width:  900,
		Height: 600,
		XAxis:  chart.XAxis{Name: "Current Stock"},
		YAxis:  chart.YAxis{Name: "Historical Sales"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: chart.Disabled,
					DotWidth:    4,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return p.save("stock_vs_sales.png", func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// ABCPie draws the share of products in each revenue class.
func (p *Plotter) ABCPie(entries []domain.ABCEntry) error {
	counts := map[domain.ABCClass]int{}
	for _, e := range entries {
		counts[e.Class]++
	}
	values := make([]chart.Value, 0, len(counts))
	for _, class := range []domain.ABCClass{domain.ClassA, domain.ClassB, domain.ClassC} {
		if counts[class] == 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: float64(counts[class]),
			Label: fmt.Sprintf("%s (%d)", class, counts[class]),
		})
	}
	if len(values) == 0 {
		return fmt.Errorf("no classified products to plot")
	}

	pie := chart.PieChart{
		Title:  "ABC Classification Share",
		Width:  600,
		Height: 600,
		Values: values,
	}
	return p.save("abc_distribution.png", func(f *os.File) error {
		return pie.Render(chart.PNG, f)
	})
}

// MonthlyTrend draws one product's monthly demand totals.
func (p *Plotter) MonthlyTrend(monthly []domain.MonthlyDemand, productID string) error {
	var xs []time.Time
	var ys []float64
	for _, m := range monthly {
		if m.ProductID != productID {
			continue
		}
		xs = append(xs, m.Month)
		ys = append(ys, m.Quantity)
	}
	if len(xs) < 2 {
		return fmt.Errorf("product %s: not enough monthly data to plot", productID)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Monthly Demand Trend - %s", productID),
		Width:  900,
		Height: 400,
		XAxis: chart.XAxis{
			Name:           "Month",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{Name: "Units"},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Monthly Sales",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	return p.save(fmt.Sprintf("monthly_trend_%s.png", productID), func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}

// ForecastPlot draws recent history and the forecast, with the uncertainty
// band as dashed lines when the model produced bounds.
func (p *Plotter) ForecastPlot(series domain.DemandSeries, fc domain.Forecast) error {
	if len(series.Days) < 2 || len(fc.Points) == 0 {
		return fmt.Errorf("product %s: not enough data to plot forecast", series.ProductID)
	}

	// Trailing 90 days of history keeps the chart readable.
	days := series.Days
	if len(days) > 90 {
		days = days[len(days)-90:]
	}
	histX := make([]time.Time, len(days))
	histY := make([]float64, len(days))
	for i, d := range days {
		histX[i] = d.Date
		histY[i] = d.Quantity
	}

	fcX := make([]time.Time, len(fc.Points))
	fcY := make([]float64, len(fc.Points))
	lower := make([]float64, len(fc.Points))
	upper := make([]float64, len(fc.Points))
	for i, pt := range fc.Points {
		fcX[i] = pt.Date
		fcY[i] = pt.Value
		lower[i] = pt.Lower
		upper[i] = pt.Upper
	}

	seriesList := []chart.Series{
		chart.TimeSeries{Name: "History", XValues: histX, YValues: histY},
		chart.TimeSeries{
			Name:    "Forecast",
			Style:   chart.Style{StrokeWidth: 2},
			XValues: fcX,
			YValues: fcY,
		},
	}
	if fc.HasBounds {
		dashed := chart.Style{StrokeDashArray: []float64{4, 4}}
		seriesList = append(seriesList,
			chart.TimeSeries{Name: "Lower", Style: dashed, XValues: fcX, YValues: lower},
			chart.TimeSeries{Name: "Upper", Style: dashed, XValues: fcX, YValues: upper},
		)
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Forecast for %s (%s)", fc.ProductID, fc.Method),
		Width:  900,
		Height: 400,
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis:  chart.YAxis{Name: "Units"},
		Series: seriesList,
	}
	return p.save(fmt.Sprintf("forecast_%s.png", fc.ProductID), func(f *os.File) error {
		return graph.Render(chart.PNG, f)
	})
}
