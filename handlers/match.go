package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/workflow"
	"github.com/gin-gonic/gin"
)

// ListUnmatchedRows returns the manual-match worklist: every feed row without
// an active match, with ranked candidate suggestions.
func ListUnmatchedRows(c *gin.Context) {
	locationId, ok := requiredLocationId(c)
	if !ok {
		return
	}
	rows, err := workflow.ListUnmatchedRows(c.Request.Context(), locationId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unmatched": rows})
}

type newManualMatch struct {
	SecondaryRowId int `json:"secondary_row_id" binding:"required"`
	PrimaryItemId  int `json:"primary_item_id" binding:"required"`
	Score          int `json:"score"`
}

// CreateManualMatch confirms a suggestion (or a free pick). A 409 means the
// item is already matched to a different row; the operator must unmatch there
// first by confirming a different pairing.
func CreateManualMatch(c *gin.Context) {
	var input newManualMatch
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	match, err := models.CreateManualMatch(c.Request.Context(), input.SecondaryRowId, input.PrimaryItemId, input.Score)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, match)
}

func ListMatches(c *gin.Context) {
	locationId, ok := requiredLocationId(c)
	if !ok {
		return
	}
	matches, err := models.ListActiveMatchesByLocation(c.Request.Context(), locationId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches})
}
