package feed

import (
	"strings"
	"testing"
)

const headerLine = "Product Name,Variant,Location,Vendor,SKU,Qty,List Price,Cost Unit"

func feedWithPreamble(preambleLines int, dataLines ...string) []byte {
	var b strings.Builder
	for i := 0; i < preambleLines; i++ {
		b.WriteString("Vendor Report Metadata\n")
	}
	for _, line := range dataLines {
		b.WriteString(line)
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func TestRows_HeaderDetection(t *testing.T) {
	raw := feedWithPreamble(3,
		headerLine,
		"Organic Honey,12oz,Main St,Acme Foods,SKU-100,12,9.99,4.50",
		"Blue Corn Chips,,Main St,Acme Foods,SKU-200,40,3.49,1.10",
	)
	result := NewNormalizer(raw).Rows()

	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors[0])
	}
	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(result.Rows))
	}
	row := result.Rows[0]
	if row.ProductName != "Organic Honey" || row.Variant != "12oz" || row.Sku != "SKU-100" {
		t.Fatalf("unexpected first row: %+v", row)
	}
	if row.Quantity.String() != "12" || row.ListPrice.String() != "9.99" || row.CostUnit.String() != "4.5" {
		t.Fatalf("unexpected amounts: %+v", row)
	}
}

func TestRows_LegacyPreambleFallback(t *testing.T) {
	// no header row at all: the fixed 9-line offset applies
	raw := feedWithPreamble(9,
		"Organic Honey,12oz,Main St,Acme Foods,SKU-100,12,9.99,4.50",
	)
	result := NewNormalizer(raw).Rows()

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d rows and %d errors", len(result.Rows), len(result.Errors))
	}
	if result.Rows[0].ProductName != "Organic Honey" {
		t.Fatalf("unexpected row: %+v", result.Rows[0])
	}
}

func TestRows_QuotedFieldsWithCommas(t *testing.T) {
	raw := feedWithPreamble(0,
		headerLine,
		`"Honey, Raw & Organic",12oz,Main St,"Acme, Inc.",SKU-100,"1,200",9.99,4.50`,
	)
	result := NewNormalizer(raw).Rows()

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d rows and %d errors", len(result.Rows), len(result.Errors))
	}
	row := result.Rows[0]
	if row.ProductName != "Honey, Raw & Organic" {
		t.Fatalf("quoted product name mangled: %q", row.ProductName)
	}
	if row.Vendor != "Acme, Inc." {
		t.Fatalf("quoted vendor mangled: %q", row.Vendor)
	}
	if row.Quantity.String() != "1200" {
		t.Fatalf("quoted quantity mangled: %s", row.Quantity)
	}
}

func TestRows_MalformedRowsAreRecovered(t *testing.T) {
	raw := feedWithPreamble(0,
		headerLine,
		"Organic Honey,12oz,Main St,Acme Foods,SKU-100,12,9.99,4.50",
		"Missing Fields,,,,",
		"Bad Quantity,12oz,Main St,Acme Foods,SKU-300,twelve,9.99,4.50",
		"Blue Corn Chips,,Main St,Acme Foods,SKU-200,40,3.49,1.10",
	)
	result := NewNormalizer(raw).Rows()

	if len(result.Rows) != 2 {
		t.Fatalf("expected 2 good rows, got %d", len(result.Rows))
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 recovered errors, got %d", len(result.Errors))
	}
	// the batch continued past the bad rows
	if result.Rows[1].Sku != "SKU-200" {
		t.Fatalf("row after malformed rows missing: %+v", result.Rows[1])
	}
	// error lines point at the offending source lines
	if result.Errors[0].Line != 3 || result.Errors[1].Line != 4 {
		t.Fatalf("unexpected error lines: %d, %d", result.Errors[0].Line, result.Errors[1].Line)
	}
}

func TestRows_ProcessedAccounting(t *testing.T) {
	raw := feedWithPreamble(2,
		headerLine,
		"Organic Honey,12oz,Main St,Acme Foods,SKU-100,12,9.99,4.50",
		"",
		"Missing Fields,,,,",
		"Blue Corn Chips,,Main St,Acme Foods,SKU-200,40,3.49,1.10",
	)
	result := NewNormalizer(raw).Rows()

	// blank rows are skipped entirely, not processed
	if result.Processed != len(result.Rows)+len(result.Errors) {
		t.Fatalf("processed=%d, rows=%d, errors=%d", result.Processed, len(result.Rows), len(result.Errors))
	}
	if result.Processed != 3 {
		t.Fatalf("expected 3 processed, got %d", result.Processed)
	}
}

func TestRows_MissingPricesDefaultToZero(t *testing.T) {
	raw := feedWithPreamble(0,
		headerLine,
		"Organic Honey,12oz,Main St,Acme Foods,SKU-100,12",
	)
	result := NewNormalizer(raw).Rows()

	if len(result.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d rows and %d errors", len(result.Rows), len(result.Errors))
	}
	row := result.Rows[0]
	if !row.ListPrice.IsZero() || !row.CostUnit.IsZero() {
		t.Fatalf("expected zero prices, got list=%s cost=%s", row.ListPrice, row.CostUnit)
	}
}

func TestRows_Restartable(t *testing.T) {
	raw := feedWithPreamble(1,
		headerLine,
		"Organic Honey,12oz,Main St,Acme Foods,SKU-100,12,9.99,4.50",
		"Missing Fields,,,,",
	)
	n := NewNormalizer(raw)

	first := n.Rows()
	second := n.Rows()

	if len(first.Rows) != len(second.Rows) || len(first.Errors) != len(second.Errors) || first.Processed != second.Processed {
		t.Fatalf("second pass differs: first=%+v second=%+v", first, second)
	}
	if first.Rows[0].ProductName != second.Rows[0].ProductName {
		t.Fatalf("row content differs between passes")
	}
}
