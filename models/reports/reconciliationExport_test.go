package reports

import (
	"testing"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"github.com/shopspring/decimal"
)

func TestRenderReconciliation(t *testing.T) {
	report := models.BuildReconciliationReport(1,
		[]*models.PrimaryItem{
			{ID: 1, LocationId: 1, Name: "Organic Honey 12oz", Sku: "SKU-100", QuantityOnHand: decimal.NewFromInt(15), UnitCost: decimal.RequireFromString("4.00")},
		},
		[]*models.SecondaryRow{
			{ID: 10, LocationId: 1, ProductName: "Organic Honey", Variant: "12oz", Vendor: "Acme Foods", Sku: "SKU-100", Quantity: decimal.NewFromInt(12), CostUnit: decimal.RequireFromString("4.50")},
		},
		[]*models.MatchRecord{
			{ID: 100, SecondaryRowId: 10, PrimaryItemId: 1, LocationId: 1, Method: models.MatchMethodSku, Score: 100},
		},
	)

	f := renderReconciliation(report)
	defer f.Close()

	header, err := f.GetCellValue(reconciliationSheet, "A1")
	if err != nil || header != "ItemName" {
		t.Fatalf("header cell: %q, %v", header, err)
	}
	name, _ := f.GetCellValue(reconciliationSheet, "A2")
	if name != "Organic Honey 12oz" {
		t.Fatalf("first data row: %q", name)
	}
	delta, _ := f.GetCellValue(reconciliationSheet, "H2")
	if delta != "3" {
		t.Fatalf("delta cell: %q", delta)
	}
	status, _ := f.GetCellValue(reconciliationSheet, "I2")
	if status != "discrepancy" {
		t.Fatalf("status cell: %q", status)
	}
}
