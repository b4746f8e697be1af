package models

import (
	"context"

	"github.com/shopspring/decimal"
)

// DiscrepancyResult is derived, never persisted; it is recomputed on every
// read, so results mid-mutation may be transiently stale. Mutation
// correctness does not depend on this view.
type DiscrepancyResult struct {
	Match             *MatchRecord      `json:"match"`
	ItemName          string            `json:"item_name"`
	Sku               string            `json:"sku"`
	Vendor            string            `json:"vendor"`
	PrimaryQuantity   decimal.Decimal   `json:"primary_quantity"`
	SecondaryQuantity decimal.Decimal   `json:"secondary_quantity"`
	Delta             decimal.Decimal   `json:"delta"`
	Status            DiscrepancyStatus `json:"status"`
}

type VendorSummary struct {
	Vendor             string          `json:"vendor"`
	MatchedCount       int             `json:"matched_count"`
	DiscrepancyCount   int             `json:"discrepancy_count"`
	SecondaryValuation decimal.Decimal `json:"secondary_valuation"`
}

// ReconciliationReport carries the two valuations side by side. They use
// different cost bases (POS unit cost vs vendor cost) and are never summed
// together. Items present in only one source live in their own buckets with
// their own subtotals, never folded into the matched-pair counts.
type ReconciliationReport struct {
	LocationId            int                  `json:"location_id"`
	Results               []*DiscrepancyResult `json:"results"`
	SyncedCount           int                  `json:"synced_count"`
	DiscrepancyCount      int                  `json:"discrepancy_count"`
	PrimaryValuation      decimal.Decimal      `json:"primary_valuation"`
	SecondaryValuation    decimal.Decimal      `json:"secondary_valuation"`
	PrimaryOnly           []*PrimaryItem       `json:"primary_only"`
	PrimaryOnlyValuation  decimal.Decimal      `json:"primary_only_valuation"`
	SecondaryOnly         []*SecondaryRow      `json:"secondary_only"`
	SecondaryOnlyValuation decimal.Decimal     `json:"secondary_only_valuation"`
	Vendors               []*VendorSummary     `json:"vendors"`
}

// BuildReconciliationReport classifies every matched pair and sorts the rest
// into single-source buckets. Pure; the inputs come from one location.
func BuildReconciliationReport(locationId int, items []*PrimaryItem, rows []*SecondaryRow, matches []*MatchRecord) *ReconciliationReport {

	itemsById := make(map[int]*PrimaryItem, len(items))
	for _, item := range items {
		itemsById[item.ID] = item
	}
	rowsById := make(map[int]*SecondaryRow, len(rows))
	for _, row := range rows {
		rowsById[row.ID] = row
	}

	report := &ReconciliationReport{
		LocationId:             locationId,
		PrimaryValuation:       decimal.Zero,
		SecondaryValuation:     decimal.Zero,
		PrimaryOnlyValuation:   decimal.Zero,
		SecondaryOnlyValuation: decimal.Zero,
	}

	matchedItems := make(map[int]bool, len(matches))
	matchedRows := make(map[int]bool, len(matches))
	vendors := make(map[string]*VendorSummary)

	for _, match := range matches {
		item, okItem := itemsById[match.PrimaryItemId]
		row, okRow := rowsById[match.SecondaryRowId]
		if !okItem || !okRow {
			// match outlived one of its sides (item deactivated or row
			// superseded); skip rather than fabricate a pair
			continue
		}
		matchedItems[item.ID] = true
		matchedRows[row.ID] = true

		delta := item.QuantityOnHand.Sub(row.Quantity)
		status := DiscrepancyStatusSynced
		if !delta.IsZero() {
			status = DiscrepancyStatusDiscrepancy
			report.DiscrepancyCount++
		} else {
			report.SyncedCount++
		}

		result := &DiscrepancyResult{
			Match:             match,
			ItemName:          item.Name,
			Sku:               item.Sku,
			Vendor:            row.Vendor,
			PrimaryQuantity:   item.QuantityOnHand,
			SecondaryQuantity: row.Quantity,
			Delta:             delta,
			Status:            status,
		}
		report.Results = append(report.Results, result)

		// valuations stay per source: primary uses POS unit cost, secondary
		// uses the vendor cost unit
		report.PrimaryValuation = report.PrimaryValuation.Add(item.QuantityOnHand.Mul(item.UnitCost))
		report.SecondaryValuation = report.SecondaryValuation.Add(row.Quantity.Mul(row.CostUnit))

		vendor := vendors[row.Vendor]
		if vendor == nil {
			vendor = &VendorSummary{Vendor: row.Vendor, SecondaryValuation: decimal.Zero}
			vendors[row.Vendor] = vendor
			report.Vendors = append(report.Vendors, vendor)
		}
		vendor.MatchedCount++
		if status == DiscrepancyStatusDiscrepancy {
			vendor.DiscrepancyCount++
		}
		vendor.SecondaryValuation = vendor.SecondaryValuation.Add(row.Quantity.Mul(row.CostUnit))
	}

	for _, item := range items {
		if !matchedItems[item.ID] {
			report.PrimaryOnly = append(report.PrimaryOnly, item)
			report.PrimaryOnlyValuation = report.PrimaryOnlyValuation.Add(item.QuantityOnHand.Mul(item.UnitCost))
		}
	}
	for _, row := range rows {
		if !matchedRows[row.ID] {
			report.SecondaryOnly = append(report.SecondaryOnly, row)
			report.SecondaryOnlyValuation = report.SecondaryOnlyValuation.Add(row.Quantity.Mul(row.CostUnit))
		}
	}

	return report
}

// ComputeReconciliation loads one location's current state and derives the
// report. Nothing here writes.
func ComputeReconciliation(ctx context.Context, locationId int) (*ReconciliationReport, error) {

	items, err := ListPrimaryItemsByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}
	rows, err := ListSecondaryRowsByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}
	matches, err := ListActiveMatchesByLocation(ctx, locationId)
	if err != nil {
		return nil, err
	}

	return BuildReconciliationReport(locationId, items, rows, matches), nil
}
