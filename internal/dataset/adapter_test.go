package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const vendorFixture = "Product_ID,Catagory,Date_Received,Last_Order_Date,Expiration_Date,Stock_Quantity,Reorder_Level,Unit_Price,Sales_Volume\n" +
	"G001,Dairy,2025-01-01,2025-03-01,2025-04-15,40,20,$2.50,300\n" +
	"G002,Bakery,2025-01-10,2025-02-20,2025-03-01,15,10,\"$1,250.00\",120\n"

func convertFixture(t *testing.T, seed int64) string {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "vendor.csv")
	if err := os.WriteFile(input, []byte(vendorFixture), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	outDir := filepath.Join(dir, "out")
	a := &GroceryAdapter{DefaultLeadTime: 7, Seed: seed}
	if err := a.Convert(input, outDir); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	return outDir
}

func TestGroceryAdapter_ProductsOutput(t *testing.T) {
	outDir := convertFixture(t, 42)

	l := &Loader{Lenient: true, DefaultLeadTime: 7}
	products, _, err := l.LoadProducts(filepath.Join(outDir, "products.csv"))
	if err != nil {
		t.Fatalf("converted products not loadable: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	p := products[0]
	if p.ProductID != "G001" || p.Category != "Dairy" {
		t.Fatalf("unexpected product: %+v", p)
	}
	if p.LeadTimeDays != 7 {
		t.Fatalf("default lead time not applied: %d", p.LeadTimeDays)
	}
	if p.UnitCost != 2.50 {
		t.Fatalf("unit price not parsed: %v", p.UnitCost)
	}
	if p.Expiration == nil || !p.Expiration.Equal(time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expiration date not carried through: %v", p.Expiration)
	}

	// Thousands separator inside quotes.
	if products[1].UnitCost != 1250.00 {
		t.Fatalf("money with separators not parsed: %v", products[1].UnitCost)
	}
}

func TestGroceryAdapter_TransactionsPreserveVolume(t *testing.T) {
	outDir := convertFixture(t, 42)

	l := &Loader{Lenient: true}
	txs, _, err := l.LoadTransactions(filepath.Join(outDir, "transactions.csv"))
	if err != nil {
		t.Fatalf("converted transactions not loadable: %v", err)
	}

	totals := make(map[string]int)
	for _, tx := range txs {
		totals[tx.ProductID] += tx.Quantity
		received := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		lastOrder := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		if tx.ProductID == "G001" && (tx.Date.Before(received) || tx.Date.After(lastOrder)) {
			t.Fatalf("G001 transaction outside received..last-order range: %v", tx.Date)
		}
	}
	if totals["G001"] != 300 {
		t.Fatalf("G001 allocated %d units, want 300", totals["G001"])
	}
	if totals["G002"] != 120 {
		t.Fatalf("G002 allocated %d units, want 120", totals["G002"])
	}
}

func TestGroceryAdapter_Deterministic(t *testing.T) {
	a := convertFixture(t, 7)
	b := convertFixture(t, 7)

	for _, name := range []string{"products.csv", "transactions.csv"} {
		fa, err := os.ReadFile(filepath.Join(a, name))
		if err != nil {
			t.Fatal(err)
		}
		fb, err := os.ReadFile(filepath.Join(b, name))
		if err != nil {
			t.Fatal(err)
		}
		if string(fa) != string(fb) {
			t.Fatalf("%s differs between identical-seed conversions", name)
		}
	}
}

func TestParseMoney(t *testing.T) {
	cases := map[string]float64{
		"$2.50":     2.50,
		"1,250.00":  1250.00,
		" $99 ":     99,
		"not-money": 0,
		"":          0,
	}
	for in, want := range cases {
		if got := parseMoney(in); got != want {
			t.Fatalf("parseMoney(%q) = %v, want %v", in, got, want)
		}
	}
}
