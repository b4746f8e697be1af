package models

import (
	"context"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
)

// ReasonOther allows a free-text reason carried in the mutation notes.
const ReasonOther = "Other"

const reasonCacheKey = "reasons:active"

// Reason is the managed list of adjustment reasons. Mutation requests must
// name one of these (or "Other") before validation passes.
type Reason struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewReason struct {
	Name string `json:"name" binding:"required"`
}

func (input *NewReason) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Reason](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateReason(ctx context.Context, input *NewReason) (*Reason, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	db := config.GetDB()
	reason := Reason{
		Name:     input.Name,
		IsActive: utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&reason).Error; err != nil {
		return nil, err
	}
	config.RemoveRedisKey(reasonCacheKey)

	return &reason, nil
}

func UpdateReason(ctx context.Context, id int, input *NewReason) (*Reason, error) {

	db := config.GetDB()
	reason, err := utils.FetchModel[Reason](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&reason).Updates(map[string]interface{}{
		"Name": input.Name,
	}).Error; err != nil {
		return nil, err
	}
	config.RemoveRedisKey(reasonCacheKey)

	return reason, nil
}

func ListReasons(ctx context.Context) ([]*Reason, error) {
	db := config.GetDB()
	var results []*Reason
	if err := db.WithContext(ctx).Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// activeReasonNames reads the active reason list, redis or db, caching result.
func activeReasonNames(ctx context.Context) (map[string]bool, error) {
	names := make(map[string]bool)
	exists, err := config.GetRedisObject(reasonCacheKey, &names)
	if err != nil {
		return nil, err
	}
	if !exists {
		db := config.GetDB()
		var reasons []*Reason
		if err := db.WithContext(ctx).Where("is_active = true").Find(&reasons).Error; err != nil {
			return nil, err
		}
		for _, r := range reasons {
			names[strings.ToLower(r.Name)] = true
		}
		if err := config.SetRedisObject(reasonCacheKey, &names, time.Hour); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// ValidateReason enforces the reason invariant on mutation requests:
// non-empty, and either a managed reason or the literal "Other".
func ValidateReason(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return ErrMissingReason
	}
	if strings.EqualFold(reason, ReasonOther) {
		return nil
	}
	names, err := activeReasonNames(ctx)
	if err != nil {
		return err
	}
	if !names[strings.ToLower(reason)] {
		return ErrUnknownReason
	}
	return nil
}

// SeedReasons inserts the default reason list. Idempotent.
func SeedReasons(ctx context.Context) error {
	defaults := []string{
		"Cycle Count",
		"Damaged",
		"Expired",
		"Theft/Loss",
		"Received",
		"Return to Vendor",
		"Promotion",
		"Internal Use",
	}
	db := config.GetDB()
	for _, name := range defaults {
		var count int64
		if err := db.WithContext(ctx).Model(&Reason{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		reason := Reason{Name: name, IsActive: utils.NewTrue()}
		if err := db.WithContext(ctx).Create(&reason).Error; err != nil {
			return err
		}
	}
	config.RemoveRedisKey(reasonCacheKey)
	return nil
}
