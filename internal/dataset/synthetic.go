package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

var syntheticCategories = []string{
	"Electronics",
	"Apparel",
	"Home",
	"Grocery",
	"Beauty",
}

// SyntheticGenerator writes a deterministic synthetic dataset for
// experimentation and tests. The same seed always yields the same files.
type SyntheticGenerator struct {
	Products int
	Start    time.Time
	End      time.Time
	Seed     int64
}

type syntheticProduct struct {
	ProductID    string
	Category     string
	LeadTimeDays int
	ReorderLevel int
	InitialStock int
	UnitCost     float64
}

// Generate writes products.csv and transactions.csv into outDir.
func (g *SyntheticGenerator) Generate(outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rng := rand.New(rand.NewSource(g.Seed))
	products := g.buildProducts(rng)

	if err := g.writeProducts(filepath.Join(outDir, "products.csv"), products); err != nil {
		return err
	}

	txRng := rand.New(rand.NewSource(g.Seed + 7))
	count, err := g.writeTransactions(filepath.Join(outDir, "transactions.csv"), products, txRng)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Int("products", len(products)).
		Int("transactions", count).
		Str("out_dir", outDir).
		Msg("generated synthetic dataset")
	return nil
}

func (g *SyntheticGenerator) buildProducts(rng *rand.Rand) []syntheticProduct {
	products := make([]syntheticProduct, 0, g.Products)
	for i := 1; i <= g.Products; i++ {
		products = append(products, syntheticProduct{
			ProductID:    fmt.Sprintf("P%04d", i),
			Category:     syntheticCategories[rng.Intn(len(syntheticCategories))],
			LeadTimeDays: 2 + rng.Intn(19),
			ReorderLevel: 20 + rng.Intn(160),
			InitialStock: 100 + rng.Intn(1400),
			UnitCost:     math.Round((3+rng.Float64()*347)*100) / 100,
		})
	}
	return products
}

func (g *SyntheticGenerator) writeProducts(path string, products []syntheticProduct) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"product_id", "category", "lead_time_days", "reorder_level", "initial_stock", "unit_cost"}); err != nil {
		return err
	}
	for _, p := range products {
		rec := []string{
			p.ProductID,
			p.Category,
			strconv.Itoa(p.LeadTimeDays),
			strconv.Itoa(p.ReorderLevel),
			strconv.Itoa(p.InitialStock),
			strconv.FormatFloat(p.UnitCost, 'f', 2, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// seasonalMultiplier applies a simple per-category monthly pattern.
func seasonalMultiplier(month time.Month, category string) float64 {
	base := 1.0
	switch category {
	case "Electronics":
		if month >= time.October || month <= time.January {
			base += 0.6
		}
	case "Apparel":
		if month >= time.March && month <= time.May {
			base += 0.4
		}
	case "Grocery":
		base += 0.1
		if month == time.December {
			base += 0.2
		}
	case "Beauty":
		if month == time.February {
			base += 0.2
		}
	}
	return base
}

func (g *SyntheticGenerator) writeTransactions(path string, products []syntheticProduct, rng *rand.Rand) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "product_id", "category", "sales_quantity"}); err != nil {
		return 0, err
	}

	count := 0
	for _, p := range products {
		baseDemand := math.Max(2.0, 800.0/(p.UnitCost+10.0))
		dayIdx := 0
		for d := g.Start; !d.After(g.End); d = d.AddDate(0, 0, 1) {
			weekly := 1.0 + 0.2*math.Sin(float64(dayIdx)*(2*math.Pi/7))
			seasonal := seasonalMultiplier(d.Month(), p.Category)
			noise := 1.0 + rng.NormFloat64()*0.2
			qty := int(math.Round(math.Max(0, baseDemand*weekly*seasonal*noise)))
			dayIdx++
			if qty <= 0 {
				continue
			}
			rec := []string{
				d.Format("2006-01-02"),
				p.ProductID,
				p.Category,
				strconv.Itoa(qty),
			}
			if err := w.Write(rec); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, w.Error()
}
