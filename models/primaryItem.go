package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PrimaryItem mirrors the point-of-sale item record per location. The POS
// remains authoritative for live stock and sale price; quantity writes go
// through the stock mutation workflow only, which signals the POS after the
// local write commits.
type PrimaryItem struct {
	ID             int             `gorm:"primary_key" json:"id"`
	PosItemId      string          `gorm:"size:100;index" json:"pos_item_id"`
	Name           string          `gorm:"size:255;not null;index" json:"name" binding:"required"`
	Sku            string          `gorm:"size:100;index" json:"sku"`
	Barcode        string          `gorm:"size:100;index" json:"barcode"`
	LocationId     int             `gorm:"index;not null" json:"location_id" binding:"required"`
	QuantityOnHand decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_on_hand"`
	UnitCost       decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_cost"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPrimaryItem struct {
	PosItemId      string          `json:"pos_item_id"`
	Name           string          `json:"name" binding:"required"`
	Sku            string          `json:"sku"`
	Barcode        string          `json:"barcode"`
	LocationId     int             `json:"location_id" binding:"required"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewPrimaryItem) validate(ctx context.Context, id int) error {
	if err := utils.ValidateResourceId[Location](ctx, input.LocationId); err != nil {
		return errors.New("location not found")
	}
	// sku must be unique within its location
	if sku := strings.TrimSpace(input.Sku); sku != "" {
		count, err := utils.ResourceCountWhere[PrimaryItem](ctx,
			"sku = ? AND location_id = ? AND NOT id = ?", sku, input.LocationId, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.New("duplicate sku at location")
		}
	}
	if input.QuantityOnHand.IsNegative() {
		return errors.New("quantity on hand cannot be negative")
	}
	return nil
}

func CreatePrimaryItem(ctx context.Context, input *NewPrimaryItem) (*PrimaryItem, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	item := PrimaryItem{
		PosItemId:      input.PosItemId,
		Name:           input.Name,
		Sku:            strings.TrimSpace(input.Sku),
		Barcode:        strings.TrimSpace(input.Barcode),
		LocationId:     input.LocationId,
		QuantityOnHand: input.QuantityOnHand,
		UnitCost:       input.UnitCost,
		UnitPrice:      input.UnitPrice,
		IsActive:       utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func UpdatePrimaryItem(ctx context.Context, id int, input *NewPrimaryItem) (*PrimaryItem, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	item, err := utils.FetchModel[PrimaryItem](ctx, id)
	if err != nil {
		return nil, err
	}

	// QuantityOnHand deliberately excluded: stock changes go through the
	// mutation workflow so every change lands in the audit log.
	db := config.GetDB()
	err = db.WithContext(ctx).Model(&item).Updates(map[string]interface{}{
		"PosItemId": input.PosItemId,
		"Name":      input.Name,
		"Sku":       strings.TrimSpace(input.Sku),
		"Barcode":   strings.TrimSpace(input.Barcode),
		"UnitCost":  input.UnitCost,
		"UnitPrice": input.UnitPrice,
	}).Error
	if err != nil {
		return nil, err
	}

	return item, nil
}

func GetPrimaryItem(ctx context.Context, id int) (*PrimaryItem, error) {
	return utils.FetchModel[PrimaryItem](ctx, id)
}

func ListPrimaryItemsByLocation(ctx context.Context, locationId int) ([]*PrimaryItem, error) {
	db := config.GetDB()
	var results []*PrimaryItem
	err := db.WithContext(ctx).
		Where("location_id = ? AND is_active = true", locationId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetPrimaryItemBySku looks an item up by SKU or barcode within a location.
func GetPrimaryItemBySku(ctx context.Context, locationId int, sku string) (*PrimaryItem, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, utils.ErrorRecordNotFound
	}
	db := config.GetDB()
	var item PrimaryItem
	err := db.WithContext(ctx).
		Where("location_id = ? AND (LOWER(sku) = LOWER(?) OR LOWER(barcode) = LOWER(?))", locationId, sku, sku).
		Order("id").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetCounterpartItem finds the record for the same logical item at another
// location: same SKU when present, otherwise exact name.
func GetCounterpartItem(ctx context.Context, item *PrimaryItem, locationId int) (*PrimaryItem, error) {
	db := config.GetDB()
	var counterpart PrimaryItem

	dbCtx := db.WithContext(ctx).Where("location_id = ? AND is_active = true", locationId)
	if item.Sku != "" {
		dbCtx = dbCtx.Where("LOWER(sku) = LOWER(?)", item.Sku)
	} else {
		dbCtx = dbCtx.Where("LOWER(name) = LOWER(?)", item.Name)
	}
	err := dbCtx.Order("id").First(&counterpart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &counterpart, nil
}
