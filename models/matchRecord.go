package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MatchRecord is an established correspondence between a secondary feed row
// and a primary item. A secondary row has at most one active match; a primary
// item may be matched by at most one secondary row at a time within a
// location. Re-matching supersedes, never duplicates or deletes.
type MatchRecord struct {
	ID             int         `gorm:"primary_key" json:"id"`
	SecondaryRowId int         `gorm:"index;not null" json:"secondary_row_id"`
	PrimaryItemId  int         `gorm:"index;not null" json:"primary_item_id"`
	LocationId     int         `gorm:"index;not null" json:"location_id"`
	Method         MatchMethod `gorm:"type:enum('sku','name-fuzzy','manual');not null" json:"method"`
	Score          int         `gorm:"not null;default:0" json:"score"`
	IsActive       *bool       `gorm:"not null;default:true;index" json:"is_active"`
	DecidedBy      int         `gorm:"index" json:"decided_by"`
	DecidedAt      time.Time   `gorm:"not null" json:"decided_at"`
	SupersededAt   *time.Time  `json:"superseded_at"`
	CreatedAt      time.Time   `gorm:"autoCreateTime" json:"created_at"`
}

func GetActiveMatchForRow(tx *gorm.DB, secondaryRowId int) (*MatchRecord, error) {
	var match MatchRecord
	err := tx.Where("secondary_row_id = ? AND is_active = true", secondaryRowId).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &match, nil
}

func GetActiveMatchForItem(tx *gorm.DB, primaryItemId int) (*MatchRecord, error) {
	var match MatchRecord
	err := tx.Where("primary_item_id = ? AND is_active = true", primaryItemId).
		First(&match).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &match, nil
}

func ListActiveMatchesByLocation(ctx context.Context, locationId int) ([]*MatchRecord, error) {
	db := config.GetDB()
	var results []*MatchRecord
	err := db.WithContext(ctx).
		Where("location_id = ? AND is_active = true", locationId).
		Order("id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CreateMatch records a match decision inside the caller's transaction,
// superseding any active match on either side. Callers enforce conflict
// policy (manual matching rejects a taken item, carry-over does not).
func CreateMatch(tx *gorm.DB, row *SecondaryRow, primaryItemId int, method MatchMethod, score int, decidedBy int) (*MatchRecord, error) {

	now := time.Now()
	if err := tx.Model(&MatchRecord{}).
		Where("(secondary_row_id = ? OR primary_item_id = ?) AND is_active = true", row.ID, primaryItemId).
		Updates(map[string]interface{}{
			"IsActive":     false,
			"SupersededAt": &now,
		}).Error; err != nil {
		return nil, err
	}

	match := MatchRecord{
		SecondaryRowId: row.ID,
		PrimaryItemId:  primaryItemId,
		LocationId:     row.LocationId,
		Method:         method,
		Score:          score,
		IsActive:       utils.NewTrue(),
		DecidedBy:      decidedBy,
		DecidedAt:      now,
	}
	if err := tx.Create(&match).Error; err != nil {
		return nil, err
	}
	return &match, nil
}

// CreateManualMatch is the operator confirmation path. Method is always
// "manual" regardless of the originating suggestion score; the score is
// provenance metadata, not an approval.
func CreateManualMatch(ctx context.Context, secondaryRowId int, primaryItemId int, score int) (*MatchRecord, error) {

	row, err := GetSecondaryRow(ctx, secondaryRowId)
	if err != nil {
		return nil, err
	}
	item, err := GetPrimaryItem(ctx, primaryItemId)
	if err != nil {
		return nil, err
	}
	if item.LocationId != row.LocationId {
		return nil, NewValidationError("item and row belong to different locations")
	}

	actorId, _ := utils.GetActorIdFromContext(ctx)

	db := config.GetDB()
	var match *MatchRecord
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// lock the item row so concurrent confirmations serialize here;
		// otherwise two of them can both see "no active match" below
		var lockedItem PrimaryItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&lockedItem, primaryItemId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}

		existing, err := GetActiveMatchForItem(tx, primaryItemId)
		if err != nil {
			return err
		}
		if existing != nil && existing.SecondaryRowId != secondaryRowId {
			return ErrAlreadyMatched
		}

		match, err = CreateMatch(tx, row, primaryItemId, MatchMethodManual, score, actorId)
		return err
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}
