package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/newsgap/newsgap/models"
)

type trendInsightRequest struct {
	AnalysisIDs []string `json:"analysis_ids" binding:"required"`
	Backend     string   `json:"llm_backend" binding:"required"`
	Model       string   `json:"llm_model"`
}

// CreateTrendInsight runs a meta-analysis across stored reports and
// persists the resulting insight. At least two existing reports are
// required; unknown ids fail the request rather than shrinking the set
// silently.
func CreateTrendInsight(c *gin.Context) {
	var req trendInsightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	analyses := make([]models.Analysis, 0, len(req.AnalysisIDs))
	for _, id := range req.AnalysisIDs {
		analysis, err := deps.Analyses.GetAnalysis(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if analysis == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "analysis " + id + " not found"})
			return
		}
		analyses = append(analyses, *analysis)
	}

	insight, err := deps.LLM.AnalyzeTrend(ctx, analyses, req.Backend, req.Model)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := deps.TrendInsights.InsertInsight(ctx, insight); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, insight)
}

// ListTrendInsights returns insights newest-first, optionally filtered
// by industry.
func ListTrendInsights(c *gin.Context) {
	limit, offset := 0, 0
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			offset = n
		}
	}
	insights, err := deps.TrendInsights.ListInsights(c.Request.Context(), c.Query("industry"), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func GetTrendInsight(c *gin.Context) {
	insight, err := deps.TrendInsights.GetInsight(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if insight == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "trend insight not found"})
		return
	}
	c.JSON(http.StatusOK, insight)
}
