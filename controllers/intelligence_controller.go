package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/newsgap/newsgap/global"
	"github.com/newsgap/newsgap/intelligence"
	"github.com/newsgap/newsgap/models"
)

// RunIntelligence executes the full pipeline for one target: ingest,
// volume-gate, persist, analyze, store the report.
func RunIntelligence(c *gin.Context) {
	var req intelligence.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WindowHours <= 0 {
		req.WindowHours = deps.Cfg.Crawler.DefaultWindowHours
	}
	if req.Backend == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "llm_backend is required"})
		return
	}

	result, err := deps.Orchestrator.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	invalidateArticleCache()
	c.JSON(http.StatusOK, result)
}

type fetchRequest struct {
	Industry    string `json:"industry" binding:"required"`
	WindowHours int    `json:"hours"`
}

// FetchArticles ingests an industry's sources without running analysis.
func FetchArticles(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.WindowHours <= 0 {
		req.WindowHours = deps.Cfg.Crawler.DefaultWindowHours
	}

	ctx := c.Request.Context()
	sources, err := deps.Sources.SourcesByIndustry(ctx, req.Industry)
	if err != nil {
		writeError(c, err)
		return
	}
	if len(sources) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no enabled sources for industry " + req.Industry})
		return
	}

	articles, srcErrs := deps.Crawler.FetchMultiple(ctx, sources, req.WindowHours)
	if err := deps.Articles.UpsertArticles(ctx, articles); err != nil {
		writeError(c, err)
		return
	}

	failed := make(map[string]error, len(srcErrs))
	warnings := make([]string, 0, len(srcErrs))
	for _, se := range srcErrs {
		failed[se.SourceID] = se.Err
		warnings = append(warnings, se.Error())
	}
	now := time.Now()
	for _, source := range sources {
		if err := deps.Sources.RecordFetchResult(ctx, source.ID, now, failed[source.ID]); err != nil {
			global.Logger.Warn("record fetch result", zap.String("source", source.Name), zap.Error(err))
		}
	}

	invalidateArticleCache()
	c.JSON(http.StatusOK, gin.H{
		"fetched":  len(articles),
		"sources":  len(sources),
		"warnings": warnings,
	})
}

type analyzeStoredRequest struct {
	ArticleIDs   []string `json:"article_ids" binding:"required"`
	Backend      string   `json:"llm_backend" binding:"required"`
	Model        string   `json:"llm_model"`
	CustomPrompt string   `json:"custom_prompt"`
}

// AnalyzeStored runs analysis over articles already in the store, skipping
// ingestion entirely.
func AnalyzeStored(c *gin.Context) {
	var req analyzeStoredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	articles := make([]models.Article, 0, len(req.ArticleIDs))
	for _, id := range req.ArticleIDs {
		article, err := deps.Articles.GetArticle(ctx, id)
		if err != nil {
			writeError(c, err)
			return
		}
		if article == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "article " + id + " not found"})
			return
		}
		articles = append(articles, *article)
	}
	if len(articles) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "article_ids must not be empty"})
		return
	}

	analysis, err := deps.LLM.Analyze(ctx, articles, req.Backend, req.Model, req.CustomPrompt)
	if err != nil {
		writeError(c, err)
		return
	}
	analysis.Industry = dominantArticleIndustry(articles)
	if err := deps.Analyses.InsertAnalysis(ctx, analysis); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// dominantArticleIndustry picks the most common industry in the batch.
func dominantArticleIndustry(articles []models.Article) string {
	counts := make(map[string]int)
	for _, a := range articles {
		if a.Industry != "" {
			counts[a.Industry]++
		}
	}
	dominant, best := "other", 0
	for industry, n := range counts {
		if n > best {
			dominant, best = industry, n
		}
	}
	return dominant
}

// GetBackends lists the registered AI backends and their model catalogs.
func GetBackends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"backends": deps.LLM.Registry().Describe()})
}
