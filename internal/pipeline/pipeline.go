package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/stockwise/inventory-pipeline/internal/analysis"
	"github.com/stockwise/inventory-pipeline/internal/config"
	"github.com/stockwise/inventory-pipeline/internal/dataset"
	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/internal/forecast"
	"github.com/stockwise/inventory-pipeline/internal/reorder"
	"github.com/stockwise/inventory-pipeline/internal/report"
	"github.com/stockwise/inventory-pipeline/internal/series"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

// Pipeline sequences load -> series -> analytics/forecasting -> reorder ->
// report for one run. All components receive their configuration explicitly
// at construction.
type Pipeline struct {
	cfg         *config.Config
	loader      *dataset.Loader
	forecaster  forecast.Forecaster
	recommender *reorder.Recommender
	writer      *report.Writer
	plotter     *report.Plotter
}

// New wires a pipeline from configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		loader: &dataset.Loader{
			Lenient:         cfg.Lenient,
			DefaultLeadTime: cfg.Data.DefaultLeadTime,
		},
		forecaster:  forecast.New(cfg.Forecast, cfg.Analysis.SeasonalPeriod),
		recommender: reorder.NewRecommender(cfg.Reorder, cfg.Forecast.HorizonDays),
		writer:      &report.Writer{OutputDir: cfg.Data.OutputDir},
		plotter:     &report.Plotter{OutputDir: cfg.Data.OutputDir},
	}
}

// analyticsResult collects the outputs of the feature/analytics stage.
type analyticsResult struct {
	abc         []domain.ABCEntry
	velocity    []domain.VelocityEntry
	seasonality []domain.SeasonalityEntry
	monthly     []domain.MonthlyDemand
}

// Run executes the full pipeline. Whole-run failures (schema, output IO)
// return an error; per-product failures are isolated, recorded on the report
// and never abort sibling products.
func (p *Pipeline) Run(ctx context.Context) (*RunReport, error) {
	run := &RunReport{
		RunID:         uuid.New().String(),
		Status:        StatusProcessing,
		StartedAt:     time.Now(),
		ProductErrors: make(map[string]string),
	}
	log := logger.Log.With().Str("run_id", run.RunID).Logger()
	log.Info().Str("data_dir", p.cfg.Data.DataDir).Str("output_dir", p.cfg.Data.OutputDir).Msg("starting pipeline run")

	fail := func(err error) (*RunReport, error) {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		run.CompletedAt = time.Now()
		return run, err
	}

	// 1) Load and validate inputs.
	products, prodWarnings, err := p.loader.LoadProducts(filepath.Join(p.cfg.Data.DataDir, "products.csv"))
	if err != nil {
		return fail(fmt.Errorf("loading products: %w", err))
	}
	txs, txWarnings, err := p.loader.LoadTransactions(filepath.Join(p.cfg.Data.DataDir, "transactions.csv"))
	if err != nil {
		return fail(fmt.Errorf("loading transactions: %w", err))
	}
	run.Products = len(products)
	run.Transactions = len(txs)
	run.ValidationWarnings = prodWarnings + txWarnings
	log.Info().Int("products", len(products)).Int("transactions", len(txs)).
		Int("warnings", run.ValidationWarnings).Msg("inputs loaded")

	// 2) Derive per-product demand series and stock estimates.
	derived := series.Build(products, txs)

	// 3) Analytics and forecasting are independent; run them concurrently.
	var analytics analyticsResult
	forecasts := make(map[string]domain.Forecast, len(products))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		analytics.abc = analysis.ClassifyABC(products, derived.Demand, p.cfg.Analysis.ABCThresholdA, p.cfg.Analysis.ABCThresholdB)
		analytics.velocity = analysis.FlagVelocity(derived.Demand, p.cfg.Analysis.ShortWindow, p.cfg.Analysis.LongWindow, p.cfg.Analysis.VelocityRatio)
		analytics.seasonality = analysis.SeasonalityStrength(derived.Demand, p.cfg.Analysis.SeasonalPeriod)
		analytics.monthly = analysis.SummarizeMonthly(derived.Demand)
		return nil
	})
	g.Go(func() error {
		p.forecastAll(gctx, run, derived.Demand, forecasts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fail(err)
	}

	// 4) Reorder recommendations, per product, failures isolated.
	classByID := make(map[string]domain.ABCClass, len(analytics.abc))
	for _, e := range analytics.abc {
		classByID[e.ProductID] = e.Class
	}
	recs := make([]domain.Recommendation, 0, len(products))
	for _, prod := range products {
		fc, ok := forecasts[prod.ProductID]
		if !ok {
			continue
		}
		rec, err := p.recommender.Recommend(prod, derived.Demand[prod.ProductID], derived.Stock[prod.ProductID], fc, classByID[prod.ProductID])
		if err != nil {
			var cfgErr *domain.ConfigError
			if errors.As(err, &cfgErr) {
				log.Warn().Str("product_id", prod.ProductID).Err(err).Msg("skipping reorder computation")
				run.ProductErrors[prod.ProductID] = err.Error()
				continue
			}
			return fail(fmt.Errorf("reorder for %s: %w", prod.ProductID, err))
		}
		recs = append(recs, rec)
	}

	// 5) Persist outputs. CSV failures are fatal; chart failures are not.
	if err := p.writeReports(run, analytics, recs); err != nil {
		return fail(err)
	}
	p.writeCharts(products, derived, analytics, forecasts)

	run.Status = StatusCompleted
	run.CompletedAt = time.Now()
	log.Info().
		Int("recommendations", len(recs)).
		Int("fallback_forecasts", len(run.FallbackProducts)).
		Int("skipped_products", len(run.ProductErrors)).
		Dur("duration", run.Duration()).
		Msg("pipeline run completed")
	return run, nil
}

// forecastAll fans product forecasts out over a worker pool. Results are
// keyed by product_id so completion order never affects output; a failed
// product is recorded and its siblings keep going.
func (p *Pipeline) forecastAll(ctx context.Context, run *RunReport, demand map[string]domain.DemandSeries, out map[string]domain.Forecast) {
	workerCount := p.cfg.Workers
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	jobs := make(chan domain.DemandSeries, len(demand))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range jobs {
				fc, err := forecast.WithFallback(p.forecaster, s, p.cfg.Forecast.HorizonDays)
				mu.Lock()
				if err != nil {
					run.ProductErrors[s.ProductID] = err.Error()
				} else {
					out[s.ProductID] = fc
					if fc.Fallback {
						run.FallbackProducts = append(run.FallbackProducts, s.ProductID)
					}
				}
				mu.Unlock()
			}
		}()
	}

	// Deterministic enqueue order; the pool may still finish out of order.
	ids := make([]string, 0, len(demand))
	for id := range demand {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		case jobs <- demand[id]:
		}
	}
	close(jobs)
	wg.Wait()
	sort.Strings(run.FallbackProducts)
}

func (p *Pipeline) writeReports(run *RunReport, analytics analyticsResult, recs []domain.Recommendation) error {
	if err := p.writer.WriteABC(analytics.abc); err != nil {
		return err
	}
	if err := p.writer.WriteVelocity(analytics.velocity); err != nil {
		return err
	}
	if err := p.writer.WriteSeasonality(analytics.seasonality); err != nil {
		return err
	}
	if err := p.writer.WriteRecommendations(recs); err != nil {
		return err
	}
	return p.writer.WriteRunSummary(report.RunSummary{
		RunID:              run.RunID,
		Products:           run.Products,
		Transactions:       run.Transactions,
		ValidationWarnings: run.ValidationWarnings,
		FallbackForecasts:  len(run.FallbackProducts),
		SkippedProducts:    len(run.ProductErrors),
		DurationSeconds:    time.Since(run.StartedAt).Seconds(),
	})
}

// writeCharts renders the PNG layer. Every failure here is logged and
// swallowed: the CSV outputs are already on disk.
func (p *Pipeline) writeCharts(products []domain.Product, derived series.Result, analytics analyticsResult, forecasts map[string]domain.Forecast) {
	if err := p.plotter.StockVsSales(products, derived.Demand, derived.Stock); err != nil {
		logger.Log.Warn().Err(err).Msg("stock vs sales chart failed")
	}
	if err := p.plotter.ABCPie(analytics.abc); err != nil {
		logger.Log.Warn().Err(err).Msg("abc pie chart failed")
	}

	// Focus charts on the top revenue products.
	limit := p.cfg.Report.PlotExamples
	for i, entry := range analytics.abc {
		if i >= limit {
			break
		}
		if err := p.plotter.MonthlyTrend(analytics.monthly, entry.ProductID); err != nil {
			logger.Log.Warn().Str("product_id", entry.ProductID).Err(err).Msg("monthly trend chart failed")
		}
		if fc, ok := forecasts[entry.ProductID]; ok {
			if err := p.plotter.ForecastPlot(derived.Demand[entry.ProductID], fc); err != nil {
				logger.Log.Warn().Str("product_id", entry.ProductID).Err(err).Msg("forecast chart failed")
			}
		}
	}
}
