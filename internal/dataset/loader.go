package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stockwise/inventory-pipeline/internal/domain"
	"github.com/stockwise/inventory-pipeline/pkg/logger"
)

var columnNameSanitizer = strings.NewReplacer(" ", "", "_", "", ".", "", "-", "", "/", "")

func normalizeColumnName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	return columnNameSanitizer.Replace(name)
}

// header maps normalized column names to their index in the CSV header row.
type header map[string]int

func readHeader(r *csv.Reader) (header, []string, error) {
	row, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	h := make(header, len(row))
	for i, col := range row {
		h[normalizeColumnName(col)] = i
	}
	return h, row, nil
}

// col resolves the first matching alias to a column index, or -1.
func (h header) col(names ...string) int {
	for _, name := range names {
		if idx, ok := h[normalizeColumnName(name)]; ok {
			return idx
		}
	}
	return -1
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"1/2/2006",
	time.RFC3339,
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// Loader reads and validates the internal-schema CSV inputs.
type Loader struct {
	// Lenient drops and warns on malformed rows instead of failing the run.
	Lenient bool
	// DefaultLeadTime fills a missing lead_time_days column.
	DefaultLeadTime int
}

// LoadProducts reads and validates products.csv. Missing numeric fields are
// imputed with the column median; the number of imputed or dropped rows is
// returned as the warning count.
func (l *Loader) LoadProducts(path string) ([]domain.Product, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open products file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	h, _, err := readHeader(reader)
	if err != nil {
		return nil, 0, err
	}

	idxID := h.col("product_id")
	idxCategory := h.col("category", "catagory")
	idxLeadTime := h.col("lead_time_days", "lead_time")
	idxReorderLevel := h.col("reorder_level")
	idxInitialStock := h.col("initial_stock")
	idxUnitCost := h.col("unit_cost")
	idxExpiration := h.col("expiration_date")

	var missing []string
	for name, idx := range map[string]int{
		"product_id":    idxID,
		"category":      idxCategory,
		"reorder_level": idxReorderLevel,
		"initial_stock": idxInitialStock,
		"unit_cost":     idxUnitCost,
	} {
		if idx < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, 0, &domain.SchemaError{File: path, Missing: missing}
	}

	type rawProduct struct {
		product domain.Product
		// per-field presence, for median imputation
		hasLeadTime, hasReorderLevel, hasInitialStock, hasUnitCost bool
	}

	var rows []rawProduct
	warnings := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warnings, fmt.Errorf("products line %d: %w", line+1, err)
		}
		line++

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		id := get(idxID)
		if id == "" {
			logger.Log.Warn().Int("line", line).Msg("dropping product row without product_id")
			warnings++
			continue
		}

		row := rawProduct{product: domain.Product{
			ProductID: id,
			Category:  get(idxCategory),
		}}

		parseInt := func(idx int, field string) (int, bool, error) {
			s := get(idx)
			if s == "" {
				return 0, false, nil
			}
			v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
			if err != nil || v < 0 {
				if l.Lenient {
					logger.Log.Warn().Str("product_id", id).Str("column", field).Str("value", s).
						Msg("unparseable numeric value, will impute")
					return 0, false, nil
				}
				return 0, false, fmt.Errorf("product %s: invalid %s value %q", id, field, s)
			}
			return int(v), true, nil
		}

		if idxLeadTime >= 0 {
			v, ok, err := parseInt(idxLeadTime, "lead_time_days")
			if err != nil {
				return nil, warnings, err
			}
			row.product.LeadTimeDays, row.hasLeadTime = v, ok
		}
		v, ok, err := parseInt(idxReorderLevel, "reorder_level")
		if err != nil {
			return nil, warnings, err
		}
		row.product.ReorderLevel, row.hasReorderLevel = v, ok

		v, ok, err = parseInt(idxInitialStock, "initial_stock")
		if err != nil {
			return nil, warnings, err
		}
		row.product.InitialStock, row.hasInitialStock = v, ok

		costStr := get(idxUnitCost)
		if costStr != "" {
			cost, err := strconv.ParseFloat(strings.ReplaceAll(costStr, ",", ""), 64)
			if err != nil || cost <= 0 {
				if !l.Lenient {
					return nil, warnings, fmt.Errorf("product %s: invalid unit_cost value %q", id, costStr)
				}
				logger.Log.Warn().Str("product_id", id).Str("value", costStr).Msg("unparseable unit_cost, will impute")
			} else {
				row.product.UnitCost, row.hasUnitCost = cost, true
			}
		}

		if idxExpiration >= 0 {
			if t, ok := parseDate(get(idxExpiration)); ok {
				row.product.Expiration = &t
			}
		}

		rows = append(rows, row)
	}

	// Median imputation for missing numeric fields, matching the reference
	// preprocessing behaviour.
	leadMedian := medianInt(rows, func(r rawProduct) (int, bool) { return r.product.LeadTimeDays, r.hasLeadTime })
	if leadMedian == 0 {
		leadMedian = l.DefaultLeadTime
	}
	reorderMedian := medianInt(rows, func(r rawProduct) (int, bool) { return r.product.ReorderLevel, r.hasReorderLevel })
	stockMedian := medianInt(rows, func(r rawProduct) (int, bool) { return r.product.InitialStock, r.hasInitialStock })
	costMedian := medianFloat(rows, func(r rawProduct) (float64, bool) { return r.product.UnitCost, r.hasUnitCost })

	products := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		p := row.product
		if !row.hasLeadTime {
			p.LeadTimeDays = leadMedian
			// Only a warning when the column exists; an absent column is the
			// documented default-lead-time path, not a data problem.
			if idxLeadTime >= 0 {
				warnings++
			}
		}
		if !row.hasReorderLevel {
			p.ReorderLevel = reorderMedian
			warnings++
		}
		if !row.hasInitialStock {
			p.InitialStock = stockMedian
			warnings++
		}
		if !row.hasUnitCost {
			p.UnitCost = costMedian
			warnings++
		}
		products = append(products, p)
	}

	return products, warnings, nil
}

// LoadTransactions reads and validates transactions.csv. Rows with
// unparseable dates or negative quantities are dropped with a warning in
// lenient mode and fail the load otherwise.
func (l *Loader) LoadTransactions(path string) ([]domain.Transaction, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open transactions file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	h, _, err := readHeader(reader)
	if err != nil {
		return nil, 0, err
	}

	idxDate := h.col("date")
	idxID := h.col("product_id")
	idxCategory := h.col("category")
	idxSales := h.col("sales_quantity", "sales")

	var missing []string
	if idxDate < 0 {
		missing = append(missing, "date")
	}
	if idxID < 0 {
		missing = append(missing, "product_id")
	}
	if idxSales < 0 {
		missing = append(missing, "sales_quantity")
	}
	if len(missing) > 0 {
		return nil, 0, &domain.SchemaError{File: path, Missing: missing}
	}

	var txs []domain.Transaction
	warnings := 0
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, warnings, fmt.Errorf("transactions line %d: %w", line+1, err)
		}
		line++

		get := func(idx int) string {
			if idx < 0 || idx >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[idx])
		}

		id := get(idxID)
		if id == "" {
			warnings++
			continue
		}

		date, ok := parseDate(get(idxDate))
		if !ok {
			if !l.Lenient {
				return nil, warnings, fmt.Errorf("transactions line %d (product %s): unparseable date %q", line, id, get(idxDate))
			}
			logger.Log.Warn().Int("line", line).Str("product_id", id).Str("value", get(idxDate)).
				Msg("dropping transaction with unparseable date")
			warnings++
			continue
		}

		qty, err := strconv.Atoi(get(idxSales))
		if err != nil || qty < 0 {
			if !l.Lenient {
				return nil, warnings, fmt.Errorf("transactions line %d (product %s): invalid sales_quantity %q", line, id, get(idxSales))
			}
			logger.Log.Warn().Int("line", line).Str("product_id", id).Str("value", get(idxSales)).
				Msg("dropping transaction with invalid sales_quantity")
			warnings++
			continue
		}

		txs = append(txs, domain.Transaction{
			Date:      date,
			ProductID: id,
			Category:  get(idxCategory),
			Quantity:  qty,
		})
	}

	return txs, warnings, nil
}

func medianInt[T any](rows []T, get func(T) (int, bool)) int {
	var vals []int
	for _, r := range rows {
		if v, ok := get(r); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Ints(vals)
	return vals[len(vals)/2]
}

func medianFloat[T any](rows []T, get func(T) (float64, bool)) float64 {
	var vals []float64
	for _, r := range rows {
		if v, ok := get(r); ok {
			vals = append(vals, v)
		}
	}
	if len(vals) == 0 {
		return 0
	}
	sort.Float64s(vals)
	return vals[len(vals)/2]
}
