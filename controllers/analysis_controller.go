package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListAnalyses returns stored reports newest-first.
func ListAnalyses(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	analyses, err := deps.Analyses.ListAnalyses(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analyses)
}

func GetAnalysis(c *gin.Context) {
	analysis, err := deps.Analyses.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if analysis == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "analysis not found"})
		return
	}
	c.JSON(http.StatusOK, analysis)
}
