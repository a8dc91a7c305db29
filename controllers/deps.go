package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/config"
	"github.com/newsgap/newsgap/crawler"
	"github.com/newsgap/newsgap/intelligence"
	"github.com/newsgap/newsgap/llm"
	"github.com/newsgap/newsgap/repository"
)

// Deps holds everything the handlers need. Bound once at startup via Init;
// handlers stay plain functions.
type Deps struct {
	Articles      *repository.ArticleRepo
	Sources       *repository.SourceRepo
	Categories    *repository.CategoryRepo
	Analyses      *repository.AnalysisRepo
	TrendInsights *repository.TrendInsightRepo
	Credentials   *repository.CredentialRepo
	Crawler       *crawler.Crawler
	LLM           *llm.Client
	Orchestrator  *intelligence.Orchestrator
	Cfg           *config.Config
}

var deps Deps

func Init(d Deps) {
	deps = d
}

// writeError maps pipeline failures onto HTTP statuses. Not-found cases
// are handled at the call site; everything else funnels through here.
func writeError(c *gin.Context, err error) {
	var lowVolume *intelligence.LowVolumeError
	if errors.As(err, &lowVolume) {
		c.JSON(http.StatusConflict, gin.H{
			"error":      lowVolume.Error(),
			"count":      lowVolume.Count,
			"threshold":  lowVolume.Threshold,
			"force_hint": "repeat the request with force=true to analyze anyway",
		})
		return
	}
	if errors.Is(err, intelligence.ErrRunInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	switch apperr.KindOf(err) {
	case apperr.KindConfiguration:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.KindVolume:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperr.KindNetwork, apperr.KindParse:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
