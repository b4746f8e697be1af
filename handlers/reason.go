package handlers

import (
	"net/http"

	"bitbucket.org/mmdatafocus/retail_backend/models"
	"github.com/gin-gonic/gin"
)

func CreateReason(c *gin.Context) {
	var input models.NewReason
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	reason, err := models.CreateReason(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reason)
}

func UpdateReason(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewReason
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindingError(c, err)
		return
	}
	reason, err := models.UpdateReason(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reason)
}

func ListReasons(c *gin.Context) {
	reasons, err := models.ListReasons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reasons": reasons})
}
