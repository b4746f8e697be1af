package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"github.com/gin-gonic/gin"
)

func CreatePrimaryItem(c *gin.Context) {
	var input models.NewPrimaryItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := models.CreatePrimaryItem(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func UpdatePrimaryItem(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewPrimaryItem
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	item, err := models.UpdatePrimaryItem(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func GetPrimaryItem(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	item, err := models.GetPrimaryItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// ListPrimaryItems serves the per-location item list. When a sku query is
// present it resolves a single item by SKU or barcode instead.
func ListPrimaryItems(c *gin.Context) {
	locationId, ok := requiredLocationId(c)
	if !ok {
		return
	}
	if sku := c.Query("sku"); sku != "" {
		item, err := models.GetPrimaryItemBySku(c.Request.Context(), locationId, sku)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": []*models.PrimaryItem{item}})
		return
	}
	items, err := models.ListPrimaryItemsByLocation(c.Request.Context(), locationId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
