package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

// Writer persists result tables as CSV files under OutputDir. Each run fully
// overwrites the previous outputs.
type Writer struct {
	OutputDir string
}

func (w *Writer) writeCSV(name string, headers []string, rows [][]string) error {
	if err := os.MkdirAll(w.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(w.OutputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)

	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	for _, rec := range rows {
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	logger.Log.Info().Str("file", path).Int("rows", len(rows)).Msg("wrote report")
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteABC writes abc_classification.csv.
func (w *Writer) WriteABC(entries []domain.ABCEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ProductID,
			e.Category,
			e.Revenue.StringFixed(2),
			formatFloat(e.CumShare),
			string(e.Class),
		})
	}
	return w.writeCSV("abc_classification.csv",
		[]string{"product_id", "category", "revenue", "cumulative_share", "abc_class"}, rows)
}

// WriteVelocity writes velocity_metrics.csv.
func (w *Writer) WriteVelocity(entries []domain.VelocityEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ProductID,
			formatFloat(e.ShortAvg),
			formatFloat(e.LongAvg),
			string(e.Label),
		})
	}
	return w.writeCSV("velocity_metrics.csv",
		[]string{"product_id", "short_avg", "long_avg", "velocity_label"}, rows)
}

// WriteSeasonality writes seasonality_strength.csv. Products whose series
// could not be decomposed get an empty score rather than a misleading zero.
func (w *Writer) WriteSeasonality(entries []domain.SeasonalityEntry) error {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		score := ""
		if e.OK {
			score = strconv.FormatFloat(e.Strength, 'f', 4, 64)
		}
		rows = append(rows, []string{e.ProductID, score})
	}
	return w.writeCSV("seasonality_strength.csv",
		[]string{"product_id", "seasonality_score"}, rows)
}

// WriteRecommendations writes reorder_recommendations.csv. Optional columns
// (next_order_date, waste_estimate) are empty when not applicable.
func (w *Writer) WriteRecommendations(recs []domain.Recommendation) error {
	rows := make([][]string, 0, len(recs))
	for _, r := range recs {
		nextOrder := ""
		if r.NextOrderDate != nil {
			nextOrder = r.NextOrderDate.Format("2006-01-02")
		}
		waste := ""
		if r.WasteEstimate != nil {
			waste = formatFloat(*r.WasteEstimate)
		}
		rows = append(rows, []string{
			r.ProductID,
			strconv.Itoa(r.LeadTimeDays),
			formatFloat(r.DemandDuringLead),
			formatFloat(r.SafetyStock),
			formatFloat(r.CurrentStock),
			formatFloat(r.ReorderQuantity),
			string(r.Priority),
			r.ForecastMethod,
			strconv.FormatBool(r.UsedFallback),
			nextOrder,
			waste,
		})
	}
	return w.writeCSV("reorder_recommendations.csv",
		[]string{
			"product_id", "lead_time_days", "demand_during_lead_time", "safety_stock",
			"current_stock", "reorder_quantity", "priority", "forecast_method",
			"used_fallback", "next_order_date", "waste_estimate",
		}, rows)
}

// RunSummary is the bookkeeping row persisted for each pipeline run.
type RunSummary struct {
	RunID              string
	Products           int
	Transactions       int
	ValidationWarnings int
	FallbackForecasts  int
	SkippedProducts    int
	DurationSeconds    float64
}

// WriteRunSummary writes run_summary.csv.
func (w *Writer) WriteRunSummary(s RunSummary) error {
	return w.writeCSV("run_summary.csv",
		[]string{
			"run_id", "products", "transactions", "validation_warnings",
			"fallback_forecasts", "skipped_products", "duration_seconds",
		},
		[][]string{{
			s.RunID,
			strconv.Itoa(s.Products),
			strconv.Itoa(s.Transactions),
			strconv.Itoa(s.ValidationWarnings),
			strconv.Itoa(s.FallbackForecasts),
			strconv.Itoa(s.SkippedProducts),
			formatFloat(s.DurationSeconds),
		}})
}
