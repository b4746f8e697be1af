package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SecondaryRow is one line of the vendor cost/quantity feed. Rows are created
// fresh on every CSV import; the previous import's rows for the same
// vendor+location are superseded, not merged ("last import wins").
type SecondaryRow struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ImportRunId int             `gorm:"index;not null" json:"import_run_id"`
	ProductName string          `gorm:"size:255;not null;index" json:"product_name"`
	Variant     string          `gorm:"size:255" json:"variant"`
	LocationId  int             `gorm:"index;not null" json:"location_id"`
	LocationName string         `gorm:"size:100" json:"location_name"`
	Vendor      string          `gorm:"size:100;index;not null" json:"vendor"`
	Sku         string          `gorm:"size:100;index" json:"sku"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	ListPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"list_price"`
	CostUnit    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cost_unit"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// Fingerprint identifies the same logical feed line across imports, so match
// decisions survive the truncate-and-reload cycle.
func (r *SecondaryRow) Fingerprint() string {
	return strings.ToLower(strings.Join([]string{r.Vendor, r.Sku, r.ProductName, r.Variant}, "|"))
}

func GetSecondaryRow(ctx context.Context, id int) (*SecondaryRow, error) {
	return utils.FetchModel[SecondaryRow](ctx, id)
}

func ListSecondaryRowsByLocation(ctx context.Context, locationId int) ([]*SecondaryRow, error) {
	db := config.GetDB()
	var results []*SecondaryRow
	err := db.WithContext(ctx).
		Where("location_id = ?", locationId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ReplaceSecondaryRows applies "last import wins" inside the caller's
// transaction: previous rows for the vendor+location are deleted, their
// active matches deactivated, and the new rows inserted. It returns the
// inserted rows plus the deactivated matches keyed by row fingerprint so the
// caller can carry decisions over to the new rows.
func ReplaceSecondaryRows(tx *gorm.DB, vendor string, locationId int, rows []*SecondaryRow) ([]*SecondaryRow, map[string]*MatchRecord, error) {

	var oldRows []*SecondaryRow
	if err := tx.Where("vendor = ? AND location_id = ?", vendor, locationId).
		Find(&oldRows).Error; err != nil {
		return nil, nil, err
	}

	carryOver := make(map[string]*MatchRecord, len(oldRows))
	if len(oldRows) > 0 {
		oldIds := make([]int, 0, len(oldRows))
		byId := make(map[int]*SecondaryRow, len(oldRows))
		for _, row := range oldRows {
			oldIds = append(oldIds, row.ID)
			byId[row.ID] = row
		}

		var activeMatches []*MatchRecord
		if err := tx.Where("secondary_row_id IN ? AND is_active = true", oldIds).
			Find(&activeMatches).Error; err != nil {
			return nil, nil, err
		}
		for _, match := range activeMatches {
			if row, ok := byId[match.SecondaryRowId]; ok {
				carryOver[row.Fingerprint()] = match
			}
		}
		if len(activeMatches) > 0 {
			now := time.Now()
			if err := tx.Model(&MatchRecord{}).
				Where("secondary_row_id IN ? AND is_active = true", oldIds).
				Updates(map[string]interface{}{
					"IsActive":     false,
					"SupersededAt": &now,
				}).Error; err != nil {
				return nil, nil, err
			}
		}

		if err := tx.Where("vendor = ? AND location_id = ?", vendor, locationId).
			Delete(&SecondaryRow{}).Error; err != nil {
			return nil, nil, err
		}
	}

	for _, row := range rows {
		if err := tx.Create(row).Error; err != nil {
			return nil, nil, err
		}
	}

	return rows, carryOver, nil
}
