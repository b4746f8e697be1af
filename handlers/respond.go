// Package handlers is the REST surface. Handlers bind and translate; all
// business rules live in models and workflow.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/utils"
	"bitbucket.org/mmdatafocus/retail_backend/workflow"
	"github.com/gin-gonic/gin"
)

// respondError maps typed domain errors onto HTTP statuses. Unrecognized
// errors become 500 without leaking internals beyond the message.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case models.IsValidationError(err),
		errors.Is(err, models.ErrMissingReason),
		errors.Is(err, models.ErrUnknownReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case models.IsInsufficientStock(err):
		var stockErr *models.InsufficientStockError
		errors.As(err, &stockErr)
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":       err.Error(),
			"item_id":     stockErr.ItemId,
			"location_id": stockErr.LocationId,
			"requested":   stockErr.Requested,
			"on_hand":     stockErr.OnHand,
		})
	case errors.Is(err, models.ErrAlreadyMatched):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, workflow.ErrImportInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func respondBindingError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func requiredLocationId(c *gin.Context) (int, bool) {
	locationId, ok := queryInt(c, "location_id")
	if !ok || locationId <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location_id is required"})
		return 0, false
	}
	return locationId, true
}
