package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stockwise/inventory-pipeline/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestLoadProducts_Basic(t *testing.T) {
	path := writeFile(t, "products.csv",
		"product_id,category,lead_time_days,reorder_level,initial_stock,unit_cost\n"+
			"P001,Electronics,5,20,100,49.90\n"+
			"P002,Apparel,10,15,80,12.50\n")

	l := &Loader{Lenient: true, DefaultLeadTime: 7}
	products, warnings, err := l.LoadProducts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warnings != 0 {
		t.Fatalf("got %d warnings, want 0", warnings)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}
	p := products[0]
	if p.ProductID != "P001" || p.Category != "Electronics" || p.LeadTimeDays != 5 ||
		p.ReorderLevel != 20 || p.InitialStock != 100 || p.UnitCost != 49.90 {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestLoadProducts_MissingColumnsIsSchemaError(t *testing.T) {
	path := writeFile(t, "products.csv",
		"product_id,lead_time_days\nP001,5\n")

	l := &Loader{Lenient: true}
	_, _, err := l.LoadProducts(path)
	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
	want := []string{"category", "initial_stock", "reorder_level", "unit_cost"}
	if len(schemaErr.Missing) != len(want) {
		t.Fatalf("missing columns %v, want %v", schemaErr.Missing, want)
	}
	for i, name := range want {
		if schemaErr.Missing[i] != name {
			t.Fatalf("missing columns %v, want %v", schemaErr.Missing, want)
		}
	}
}

func TestLoadProducts_HeaderNormalization(t *testing.T) {
	// Mixed case, spaces and underscores all resolve to the same columns.
	path := writeFile(t, "products.csv",
		"Product ID,Category,Lead Time Days,Reorder Level,Initial Stock,Unit Cost\n"+
			"P001,Home,3,10,50,9.99\n")

	l := &Loader{Lenient: true}
	products, _, err := l.LoadProducts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(products) != 1 || products[0].LeadTimeDays != 3 {
		t.Fatalf("header aliases not resolved: %+v", products)
	}
}

func TestLoadProducts_MedianImputation(t *testing.T) {
	// P002 is missing reorder_level and unit_cost; both get the column median.
	path := writeFile(t, "products.csv",
		"product_id,category,lead_time_days,reorder_level,initial_stock,unit_cost\n"+
			"P001,A,5,10,100,10.0\n"+
			"P002,A,5,,100,\n"+
			"P003,A,5,30,100,30.0\n")

	l := &Loader{Lenient: true}
	products, warnings, err := l.LoadProducts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warnings != 2 {
		t.Fatalf("got %d warnings, want 2", warnings)
	}
	if products[1].ReorderLevel != 30 {
		t.Fatalf("reorder_level not imputed: got %d", products[1].ReorderLevel)
	}
	if products[1].UnitCost != 30.0 {
		t.Fatalf("unit_cost not imputed: got %v", products[1].UnitCost)
	}
}

func TestLoadProducts_AbsentLeadTimeUsesDefault(t *testing.T) {
	path := writeFile(t, "products.csv",
		"product_id,category,reorder_level,initial_stock,unit_cost\n"+
			"P001,A,10,100,10.0\n")

	l := &Loader{Lenient: true, DefaultLeadTime: 9}
	products, warnings, err := l.LoadProducts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products[0].LeadTimeDays != 9 {
		t.Fatalf("got lead time %d, want default 9", products[0].LeadTimeDays)
	}
	// A missing column is the documented default path, not a data problem.
	if warnings != 0 {
		t.Fatalf("got %d warnings, want 0", warnings)
	}
}

func TestLoadProducts_ExpirationDate(t *testing.T) {
	path := writeFile(t, "products.csv",
		"product_id,category,reorder_level,initial_stock,unit_cost,expiration_date\n"+
			"P001,Grocery,10,100,2.5,2026-10-15\n"+
			"P002,Grocery,10,100,2.5,\n")

	l := &Loader{Lenient: true}
	products, _, err := l.LoadProducts(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if products[0].Expiration == nil {
		t.Fatal("expected expiration date on P001")
	}
	if got := products[0].Expiration.Format("2006-01-02"); got != "2026-10-15" {
		t.Fatalf("got expiration %s, want 2026-10-15", got)
	}
	if products[1].Expiration != nil {
		t.Fatal("expected nil expiration on P002")
	}
}

func TestLoadTransactions_Basic(t *testing.T) {
	path := writeFile(t, "transactions.csv",
		"date,product_id,category,sales_quantity\n"+
			"2025-01-01,P001,Electronics,5\n"+
			"2025-01-02,P001,Electronics,3\n")

	l := &Loader{Lenient: true}
	txs, warnings, err := l.LoadTransactions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if warnings != 0 || len(txs) != 2 {
		t.Fatalf("got %d txs and %d warnings", len(txs), warnings)
	}
	if txs[0].Quantity != 5 || txs[0].ProductID != "P001" {
		t.Fatalf("unexpected transaction: %+v", txs[0])
	}
}

func TestLoadTransactions_SalesAlias(t *testing.T) {
	path := writeFile(t, "transactions.csv",
		"date,product_id,sales\n2025-01-01,P001,4\n")

	l := &Loader{Lenient: true}
	txs, _, err := l.LoadTransactions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 1 || txs[0].Quantity != 4 {
		t.Fatalf("sales alias not resolved: %+v", txs)
	}
}

func TestLoadTransactions_LenientDropsBadRows(t *testing.T) {
	path := writeFile(t, "transactions.csv",
		"date,product_id,sales_quantity\n"+
			"2025-01-01,P001,5\n"+
			"not-a-date,P001,5\n"+
			"2025-01-03,P001,-2\n"+
			"2025-01-04,P001,3\n")

	l := &Loader{Lenient: true}
	txs, warnings, err := l.LoadTransactions(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d txs, want 2", len(txs))
	}
	if warnings != 2 {
		t.Fatalf("got %d warnings, want 2", warnings)
	}
}

func TestLoadTransactions_StrictFailsOnBadRow(t *testing.T) {
	path := writeFile(t, "transactions.csv",
		"date,product_id,sales_quantity\nnot-a-date,P001,5\n")

	l := &Loader{Lenient: false}
	_, _, err := l.LoadTransactions(path)
	if err == nil {
		t.Fatal("expected error in strict mode, got nil")
	}
}

func TestLoadTransactions_MissingColumnsIsSchemaError(t *testing.T) {
	path := writeFile(t, "transactions.csv", "product_id,quantity\nP001,5\n")

	l := &Loader{Lenient: true}
	_, _, err := l.LoadTransactions(path)
	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestParseDate_Layouts(t *testing.T) {
	for _, in := range []string{"2025-03-09", "2025/03/09", "3/9/2025", "2025-03-09 14:30:00"} {
		got, ok := parseDate(in)
		if !ok {
			t.Fatalf("failed to parse %q", in)
		}
		if got.Year() != 2025 || got.Month() != 3 || got.Day() != 9 {
			t.Fatalf("parsed %q as %v", in, got)
		}
		if got.Hour() != 0 {
			t.Fatalf("date %q not truncated to midnight: %v", in, got)
		}
	}
	if _, ok := parseDate("yesterday"); ok {
		t.Fatal("expected parse failure for garbage input")
	}
}
