package models

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"gorm.io/gorm"
)

// ImportRun keeps one row per vendor-feed import for the dashboard history
// panel. The counts mirror the import endpoint response.
type ImportRun struct {
	ID          int       `gorm:"primary_key" json:"id"`
	Vendor      string    `gorm:"size:100;index;not null" json:"vendor"`
	LocationId  int       `gorm:"index;not null" json:"location_id"`
	Processed   int       `gorm:"not null;default:0" json:"processed"`
	Updated     int       `gorm:"not null;default:0" json:"updated"`
	Matched     int       `gorm:"not null;default:0" json:"matched"`
	Unmatched   int       `gorm:"not null;default:0" json:"unmatched"`
	ErrorCount  int       `gorm:"not null;default:0" json:"error_count"`
	ErrorSample string    `gorm:"type:text" json:"error_sample"`
	ActorId     int       `gorm:"index" json:"actor_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func CreateImportRun(tx *gorm.DB, run *ImportRun) error {
	return tx.Create(run).Error
}

func ListImportRuns(ctx context.Context, limit int) ([]*ImportRun, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	db := config.GetDB()
	var results []*ImportRun
	err := db.WithContext(ctx).Order("id DESC").Limit(limit).Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
