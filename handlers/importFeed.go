package handlers

import (
	"io"
	"net/http"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/workflow"
	"github.com/gin-gonic/gin"
)

// maxFeedBytes caps the raw CSV body at 32 MiB.
const maxFeedBytes = 32 << 20

// ImportVendorFeed accepts the raw CSV as the request body. vendor and
// location_id come from the query string so the body stays a plain file
// upload from curl or the dashboard.
func ImportVendorFeed(c *gin.Context) {
	vendor := c.Query("vendor")
	if vendor == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vendor is required"})
		return
	}
	locationId, ok := requiredLocationId(c)
	if !ok {
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFeedBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if len(raw) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty feed"})
		return
	}
	if len(raw) > maxFeedBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "feed too large"})
		return
	}

	summary, err := workflow.ProcessVendorFeed(c.Request.Context(), vendor, locationId, raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func ListImportRuns(c *gin.Context) {
	limit, _ := queryInt(c, "limit")
	runs, err := models.ListImportRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"import_runs": runs})
}
