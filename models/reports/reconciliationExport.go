// Package reports renders derived reports into exportable formats.
package reports

import (
	"context"
	"fmt"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"github.com/xuri/excelize/v2"
)

const reconciliationSheet = "Reconciliation"

// BuildReconciliationWorkbook renders one location's reconciliation report as
// an xlsx workbook: matched pairs first, then the single-source buckets and a
// per-vendor summary. The two valuations stay in separate columns; they use
// different cost bases and are never totalled together.
func BuildReconciliationWorkbook(ctx context.Context, locationId int) (*excelize.File, error) {

	report, err := models.ComputeReconciliation(ctx, locationId)
	if err != nil {
		return nil, err
	}
	return renderReconciliation(report), nil
}

func renderReconciliation(report *models.ReconciliationReport) *excelize.File {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", reconciliationSheet)

	headers := []string{"ItemName", "SKU", "Vendor", "Method", "Score", "PrimaryQty", "SecondaryQty", "Delta", "Status"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(reconciliationSheet, cell, h)
	}

	rowNo := 2
	setRow := func(values ...interface{}) {
		for i, value := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, rowNo)
			f.SetCellValue(reconciliationSheet, cell, value)
		}
		rowNo++
	}

	for _, result := range report.Results {
		setRow(
			result.ItemName,
			result.Sku,
			result.Vendor,
			string(result.Match.Method),
			result.Match.Score,
			result.PrimaryQuantity.String(),
			result.SecondaryQuantity.String(),
			result.Delta.String(),
			string(result.Status),
		)
	}

	rowNo++
	setRow("PrimaryOnly")
	for _, item := range report.PrimaryOnly {
		setRow(item.Name, item.Sku, "", "", "", item.QuantityOnHand.String(), "", "", "primary-only")
	}
	setRow("PrimaryOnlyValuation", report.PrimaryOnlyValuation.String())

	rowNo++
	setRow("SecondaryOnly")
	for _, row := range report.SecondaryOnly {
		name := row.ProductName
		if row.Variant != "" {
			name = fmt.Sprintf("%s (%s)", row.ProductName, row.Variant)
		}
		setRow(name, row.Sku, row.Vendor, "", "", "", row.Quantity.String(), "", "secondary-only")
	}
	setRow("SecondaryOnlyValuation", report.SecondaryOnlyValuation.String())

	rowNo++
	setRow("Vendor", "MatchedCount", "DiscrepancyCount", "SecondaryValuation")
	for _, vendor := range report.Vendors {
		setRow(vendor.Vendor, vendor.MatchedCount, vendor.DiscrepancyCount, vendor.SecondaryValuation.String())
	}

	rowNo++
	setRow("SyncedCount", report.SyncedCount)
	setRow("DiscrepancyCount", report.DiscrepancyCount)
	setRow("PrimaryValuation", report.PrimaryValuation.String())
	setRow("SecondaryValuation", report.SecondaryValuation.String())

	return f
}
