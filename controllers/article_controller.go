package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/newsgap/newsgap/global"
	"github.com/newsgap/newsgap/models"
	"github.com/newsgap/newsgap/repository"
)

const (
	articleCacheKey = "newsgap:articles"
	articleCacheTTL = 10 * time.Minute
)

// GetArticles lists stored articles newest-first. The unfiltered default
// query is served from redis; filtered queries go straight to the database.
func GetArticles(c *gin.Context) {
	ctx := c.Request.Context()

	filters := repository.ArticleFilters{
		Industry: c.Query("industry"),
	}
	if raw := c.Query("archived"); raw != "" {
		archived := raw == "true"
		filters.Archived = &archived
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.Limit = n
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			filters.Offset = n
		}
	}

	cacheable := filters == (repository.ArticleFilters{})
	if cacheable {
		if cached, err := global.RedisDB.Get(ctx, articleCacheKey).Result(); err == nil {
			var articles []models.Article
			if err := json.Unmarshal([]byte(cached), &articles); err == nil {
				c.JSON(http.StatusOK, articles)
				return
			}
		} else if err != redis.Nil {
			global.Logger.Warn("article cache read", zap.Error(err))
		}
	}

	articles, err := deps.Articles.QueryArticles(ctx, filters)
	if err != nil {
		writeError(c, err)
		return
	}

	if cacheable {
		if payload, err := json.Marshal(articles); err == nil {
			if err := global.RedisDB.Set(ctx, articleCacheKey, payload, articleCacheTTL).Err(); err != nil {
				global.Logger.Warn("article cache write", zap.Error(err))
			}
		}
	}
	c.JSON(http.StatusOK, articles)
}

func GetArticleByID(c *gin.Context) {
	article, err := deps.Articles.GetArticle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if article == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
		return
	}
	c.JSON(http.StatusOK, article)
}

type patchArticleRequest struct {
	Archived *bool              `json:"archived,omitempty"`
	Industry *string            `json:"industry,omitempty"`
	Tags     *models.StringList `json:"tags,omitempty"`
}

// PatchArticle updates only the fields present in the request body.
func PatchArticle(c *gin.Context) {
	var req patchArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if req.Archived != nil {
		fields["archived"] = *req.Archived
	}
	if req.Industry != nil {
		fields["industry"] = *req.Industry
	}
	if req.Tags != nil {
		fields["tags"] = *req.Tags
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := deps.Articles.PatchArticle(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}
	invalidateArticleCache()
	c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
}

type articleIDsRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// ArchiveArticles flips the archived flag on a batch of articles.
func ArchiveArticles(c *gin.Context) {
	var req articleIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := deps.Articles.ArchiveArticles(c.Request.Context(), req.IDs); err != nil {
		writeError(c, err)
		return
	}
	invalidateArticleCache()
	c.JSON(http.StatusOK, gin.H{"archived": len(req.IDs)})
}

// DeleteArticles hard-deletes a batch of articles.
func DeleteArticles(c *gin.Context) {
	var req articleIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := deps.Articles.DeleteArticles(c.Request.Context(), req.IDs); err != nil {
		writeError(c, err)
		return
	}
	invalidateArticleCache()
	c.JSON(http.StatusOK, gin.H{"deleted": len(req.IDs)})
}

// invalidateArticleCache drops the cached list without blocking the
// request that triggered the change.
func invalidateArticleCache() {
	go func() {
		_ = global.RedisDB.Del(context.Background(), articleCacheKey).Err()
	}()
}
