package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func reportFixture() ([]*PrimaryItem, []*SecondaryRow, []*MatchRecord) {
	items := []*PrimaryItem{
		{ID: 1, LocationId: 1, Name: "Organic Honey 12oz", Sku: "SKU-100", QuantityOnHand: dec("15"), UnitCost: dec("4.00")},
		{ID: 2, LocationId: 1, Name: "Blue Corn Chips", Sku: "SKU-200", QuantityOnHand: dec("40"), UnitCost: dec("1.10")},
		{ID: 3, LocationId: 1, Name: "Granola Bar", Sku: "SKU-300", QuantityOnHand: dec("5"), UnitCost: dec("2.00")},
	}
	rows := []*SecondaryRow{
		{ID: 10, LocationId: 1, ProductName: "Organic Honey", Variant: "12oz", Vendor: "Acme Foods", Sku: "SKU-100", Quantity: dec("12"), CostUnit: dec("4.50")},
		{ID: 11, LocationId: 1, ProductName: "Blue Corn Chips", Vendor: "Acme Foods", Sku: "SKU-200", Quantity: dec("40"), CostUnit: dec("1.10")},
		{ID: 12, LocationId: 1, ProductName: "Seltzer Water", Vendor: "Beverage Co", Quantity: dec("7"), CostUnit: dec("3.00")},
	}
	matches := []*MatchRecord{
		{ID: 100, SecondaryRowId: 10, PrimaryItemId: 1, LocationId: 1, Method: MatchMethodSku, Score: 100},
		{ID: 101, SecondaryRowId: 11, PrimaryItemId: 2, LocationId: 1, Method: MatchMethodSku, Score: 100},
	}
	return items, rows, matches
}

func TestBuildReconciliationReport_DeltasAndCounts(t *testing.T) {
	items, rows, matches := reportFixture()
	report := BuildReconciliationReport(1, items, rows, matches)

	if len(report.Results) != 2 {
		t.Fatalf("expected 2 matched pairs, got %d", len(report.Results))
	}
	honey := report.Results[0]
	if honey.Sku != "SKU-100" {
		t.Fatalf("unexpected pair order: %+v", honey)
	}
	// delta is primary minus secondary
	if honey.Delta.String() != "3" {
		t.Fatalf("expected delta 3, got %s", honey.Delta)
	}
	if honey.Status != DiscrepancyStatusDiscrepancy {
		t.Fatalf("expected discrepancy status, got %s", honey.Status)
	}
	chips := report.Results[1]
	if !chips.Delta.IsZero() || chips.Status != DiscrepancyStatusSynced {
		t.Fatalf("expected synced pair, got delta=%s status=%s", chips.Delta, chips.Status)
	}
	if report.SyncedCount != 1 || report.DiscrepancyCount != 1 {
		t.Fatalf("counts: synced=%d discrepancy=%d", report.SyncedCount, report.DiscrepancyCount)
	}
}

func TestBuildReconciliationReport_ValuationsStaySeparate(t *testing.T) {
	items, rows, matches := reportFixture()
	report := BuildReconciliationReport(1, items, rows, matches)

	// primary: 15*4.00 + 40*1.10; secondary: 12*4.50 + 40*1.10
	if report.PrimaryValuation.String() != "104" {
		t.Fatalf("primary valuation: %s", report.PrimaryValuation)
	}
	if report.SecondaryValuation.String() != "98" {
		t.Fatalf("secondary valuation: %s", report.SecondaryValuation)
	}
}

func TestBuildReconciliationReport_SingleSourceBuckets(t *testing.T) {
	items, rows, matches := reportFixture()
	report := BuildReconciliationReport(1, items, rows, matches)

	if len(report.PrimaryOnly) != 1 || report.PrimaryOnly[0].ID != 3 {
		t.Fatalf("primary-only bucket: %+v", report.PrimaryOnly)
	}
	if report.PrimaryOnlyValuation.String() != "10" {
		t.Fatalf("primary-only valuation: %s", report.PrimaryOnlyValuation)
	}
	if len(report.SecondaryOnly) != 1 || report.SecondaryOnly[0].ID != 12 {
		t.Fatalf("secondary-only bucket: %+v", report.SecondaryOnly)
	}
	if report.SecondaryOnlyValuation.String() != "21" {
		t.Fatalf("secondary-only valuation: %s", report.SecondaryOnlyValuation)
	}
}

func TestBuildReconciliationReport_VendorSummaries(t *testing.T) {
	items, rows, matches := reportFixture()
	report := BuildReconciliationReport(1, items, rows, matches)

	if len(report.Vendors) != 1 {
		t.Fatalf("expected 1 vendor with matched pairs, got %d", len(report.Vendors))
	}
	acme := report.Vendors[0]
	if acme.Vendor != "Acme Foods" || acme.MatchedCount != 2 || acme.DiscrepancyCount != 1 {
		t.Fatalf("vendor summary: %+v", acme)
	}
	if acme.SecondaryValuation.String() != "98" {
		t.Fatalf("vendor valuation: %s", acme.SecondaryValuation)
	}
}

func TestBuildReconciliationReport_SkipsStaleMatches(t *testing.T) {
	items, rows, matches := reportFixture()
	// match whose row no longer exists (superseded import)
	matches = append(matches, &MatchRecord{ID: 102, SecondaryRowId: 999, PrimaryItemId: 3, LocationId: 1})

	report := BuildReconciliationReport(1, items, rows, matches)

	if len(report.Results) != 2 {
		t.Fatalf("stale match fabricated a pair: %d results", len(report.Results))
	}
	// item 3 still counts as primary-only since its match is unusable
	if len(report.PrimaryOnly) != 1 || report.PrimaryOnly[0].ID != 3 {
		t.Fatalf("primary-only bucket after stale match: %+v", report.PrimaryOnly)
	}
}
