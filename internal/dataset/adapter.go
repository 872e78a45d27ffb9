package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

// GroceryAdapter converts the grocery-store vendor CSV export into the
// internal products/transactions schema. The vendor file has no transaction
// log, so daily sales are synthesized by spreading Sales_Volume across the
// received..last-order date range with a weekend-weighted profile.
type GroceryAdapter struct {
	// DefaultLeadTime is used when the vendor file carries no lead time.
	DefaultLeadTime int
	// Seed drives the remainder allocation so conversion is reproducible.
	Seed int64
}

// groceryRow is one parsed vendor record.
type groceryRow struct {
	ProductID    string
	Category     string
	Received     *time.Time
	LastOrder    *time.Time
	Expiration   *time.Time
	StockQty     int
	ReorderLevel int
	UnitCost     float64
	SalesVolume  int
}

// parseMoney strips currency symbols and thousands separators; anything
// unparseable becomes zero, matching the lenient vendor-data handling.
func parseMoney(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// Convert reads the vendor CSV and writes products.csv and transactions.csv
// into outDir.
func (a *GroceryAdapter) Convert(inputPath, outDir string) error {
	rows, err := a.readVendorCSV(inputPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := a.writeProducts(filepath.Join(outDir, "products.csv"), rows); err != nil {
		return err
	}
	if err := a.writeTransactions(filepath.Join(outDir, "transactions.csv"), rows); err != nil {
		return err
	}

	logger.Log.Info().Int("products", len(rows)).Str("out_dir", outDir).Msg("converted vendor file")
	return nil
}

func (a *GroceryAdapter) readVendorCSV(path string) ([]groceryRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vendor file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	h, _, err := readHeader(reader)
	if err != nil {
		return nil, err
	}

	idxID := h.col("product_id")
	// The source dataset spells it "Catagory"; accept both.
	idxCategory := h.col("category", "catagory")
	idxReceived := h.col("date_received")
	idxLastOrder := h.col("last_order_date")
	idxExpiration := h.col("expiration_date")
	idxStock := h.col("stock_quantity")
	idxReorderLevel := h.col("reorder_level")
	idxUnitPrice := h.col("unit_price")
	idxSalesVolume := h.col("sales_volume")

	if idxID < 0 {
		return nil, &domain.SchemaError{File: path, Missing: []string{"Product_ID"}}
	}

	var rows []groceryRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read vendor record: %w", err)
		}

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}
		getInt := func(idx int) int {
			v, err := strconv.ParseFloat(strings.ReplaceAll(get(idx), ",", ""), 64)
			if err != nil || v < 0 {
				return 0
			}
			return int(v)
		}
		getDate := func(idx int) *time.Time {
			if t, ok := parseDate(get(idx)); ok {
				return &t
			}
			return nil
		}

		id := get(idxID)
		if id == "" {
			continue
		}
		category := get(idxCategory)
		if category == "" {
			category = "Grocery"
		}

		rows = append(rows, groceryRow{
			ProductID:    id,
			Category:     category,
			Received:     getDate(idxReceived),
			LastOrder:    getDate(idxLastOrder),
			Expiration:   getDate(idxExpiration),
			StockQty:     getInt(idxStock),
			ReorderLevel: getInt(idxReorderLevel),
			UnitCost:     parseMoney(get(idxUnitPrice)),
			SalesVolume:  getInt(idxSalesVolume),
		})
	}

	return rows, nil
}

func (a *GroceryAdapter) writeProducts(path string, rows []groceryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"product_id", "category", "lead_time_days", "reorder_level", "initial_stock", "unit_cost", "expiration_date"}); err != nil {
		return err
	}
	for _, r := range rows {
		expiration := ""
		if r.Expiration != nil {
			expiration = r.Expiration.Format("2006-01-02")
		}
		rec := []string{
			r.ProductID,
			r.Category,
			strconv.Itoa(a.DefaultLeadTime),
			strconv.Itoa(r.ReorderLevel),
			strconv.Itoa(r.StockQty),
			strconv.FormatFloat(r.UnitCost, 'f', 2, 64),
			expiration,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func (a *GroceryAdapter) writeTransactions(path string, rows []groceryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"date", "product_id", "category", "sales_quantity"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(a.Seed))
	today := time.Now().UTC().Truncate(24 * time.Hour)

	for _, r := range rows {
		start := today.AddDate(0, 0, -90)
		if r.Received != nil {
			start = *r.Received
		}
		end := today
		if r.LastOrder != nil {
			end = *r.LastOrder
		}
		if start.After(end) {
			start, end = end, start
		}

		for _, tx := range allocateDaily(r, start, end, rng) {
			rec := []string{
				tx.Date.Format("2006-01-02"),
				tx.ProductID,
				tx.Category,
				strconv.Itoa(tx.Quantity),
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// allocateDaily spreads a product's total sales volume across the date range,
// weighting weekend days +30%, then distributes the integer remainder with
// the seeded RNG.
func allocateDaily(r groceryRow, start, end time.Time, rng *rand.Rand) []domain.Transaction {
	days := int(end.Sub(start).Hours()/24) + 1
	if days <= 0 || r.SalesVolume <= 0 {
		return nil
	}

	weights := make([]float64, days)
	var totalWeight float64
	for i := range weights {
		d := start.AddDate(0, 0, i)
		w := 1.0
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			w = 1.3
		}
		weights[i] = w
		totalWeight += w
	}

	alloc := make([]int, days)
	allocated := 0
	for i, w := range weights {
		alloc[i] = int(w / totalWeight * float64(r.SalesVolume))
		allocated += alloc[i]
	}
	for remainder := r.SalesVolume - allocated; remainder > 0; remainder-- {
		alloc[rng.Intn(days)]++
	}

	var txs []domain.Transaction
	for i, qty := range alloc {
		if qty <= 0 {
			continue
		}
		txs = append(txs, domain.Transaction{
			Date:      start.AddDate(0, 0, i),
			ProductID: r.ProductID,
			Category:  r.Category,
			Quantity:  qty,
		})
	}
	return txs
}
