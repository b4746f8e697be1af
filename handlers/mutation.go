package handlers

import (
	"context"
	"net/http"
	"time"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/workflow"
	"github.com/gin-gonic/gin"
)

func IncreaseStock(c *gin.Context) {
	runMutation(c, workflow.IncreaseStock)
}

func DecreaseStock(c *gin.Context) {
	runMutation(c, workflow.DecreaseStock)
}

func TransferStock(c *gin.Context) {
	runMutation(c, workflow.TransferStock)
}

func runMutation(c *gin.Context, run func(ctx context.Context, input *workflow.NewStockMutation) (*models.StockMutation, error)) {
	var input workflow.NewStockMutation
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	mutation, err := run(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mutation)
}

// ListStockMutations is the audit query surface: filters by item, location,
// actor and date range with cursor pagination.
func ListStockMutations(c *gin.Context) {
	var filter models.StockMutationFilter

	if v, ok := queryInt(c, "item_id"); ok {
		filter.ItemId = &v
	}
	if v, ok := queryInt(c, "location_id"); ok {
		filter.LocationId = &v
	}
	if v, ok := queryInt(c, "actor_id"); ok {
		filter.ActorId = &v
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be RFC3339"})
			return
		}
		filter.From = &t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "to must be RFC3339"})
			return
		}
		filter.To = &t
	}
	if v, ok := queryInt(c, "limit"); ok {
		filter.Limit = v
	}
	if cursor := c.Query("cursor"); cursor != "" {
		filter.Cursor = &cursor
	}

	page, err := models.PaginateStockMutations(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
