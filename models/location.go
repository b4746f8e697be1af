package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/config"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
)

type Location struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Code      string    `gorm:"size:20;index" json:"code"`
	Address   string    `gorm:"type:text" json:"address"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLocation struct {
	Name    string `json:"name" binding:"required"`
	Code    string `json:"code"`
	Address string `json:"address"`
}

// validate input for both create & update. (id = 0 for create)
func (input *NewLocation) validate(ctx context.Context, id int) error {
	if err := utils.ValidateUnique[Location](ctx, "name", input.Name, id); err != nil {
		return err
	}
	return nil
}

func CreateLocation(ctx context.Context, input *NewLocation) (*Location, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	location := Location{
		Name:     input.Name,
		Code:     input.Code,
		Address:  input.Address,
		IsActive: utils.NewTrue(),
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Create(&location).Error
	if err != nil {
		return nil, err
	}
	return &location, nil
}

func UpdateLocation(ctx context.Context, id int, input *NewLocation) (*Location, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	location, err := utils.FetchModel[Location](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(&location).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Code":    input.Code,
		"Address": input.Address,
	}).Error
	if err != nil {
		return nil, err
	}

	return location, nil
}

func DeleteLocation(ctx context.Context, id int) (*Location, error) {

	db := config.GetDB()
	result, err := utils.FetchModel[Location](ctx, id)
	if err != nil {
		return nil, err
	}

	// check if location still carries item records
	var count int64
	if err := db.WithContext(ctx).Model(&PrimaryItem{}).
		Where("location_id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("location has items")
	}

	err = db.WithContext(ctx).Delete(&result).Error
	if err != nil {
		return nil, err
	}
	return result, nil
}

func GetLocation(ctx context.Context, id int) (*Location, error) {
	return utils.FetchModel[Location](ctx, id)
}

func ListLocations(ctx context.Context, name *string) ([]*Location, error) {
	db := config.GetDB()
	var results []*Location

	dbCtx := db.WithContext(ctx)
	if name != nil && len(*name) > 0 {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	err := dbCtx.Order("name").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetLocationByName resolves a vendor-feed location name to a Location.
// Matching is case-insensitive on name, then on code.
func GetLocationByName(ctx context.Context, name string) (*Location, error) {
	db := config.GetDB()
	var location Location
	err := db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?) OR LOWER(code) = LOWER(?)", name, name).
		First(&location).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &location, nil
}
