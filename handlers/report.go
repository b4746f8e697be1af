package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"bitbucket.org/mmdatafocus/retail_backend/models/reports"
	"github.com/gin-gonic/gin"
)

func GetReconciliationReport(c *gin.Context) {
	locationId, ok := requiredLocationId(c)
	if !ok {
		return
	}
	report, err := models.ComputeReconciliation(c.Request.Context(), locationId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func ExportReconciliationReport(c *gin.Context) {
	locationId, ok := requiredLocationId(c)
	if !ok {
		return
	}
	f, err := reports.BuildReconciliationWorkbook(c.Request.Context(), locationId)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=reconciliation.xlsx")
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to write file"})
	}
}
