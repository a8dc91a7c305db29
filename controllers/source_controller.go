package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newsgap/newsgap/models"
)

// ListSources returns every configured source, enabled or not.
func ListSources(c *gin.Context) {
	sources, err := deps.Sources.ListSources(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sources)
}

type createSourceRequest struct {
	Name     string `json:"name" binding:"required"`
	URL      string `json:"url" binding:"required"`
	Type     string `json:"type"`
	Industry string `json:"industry" binding:"required"`
	Enabled  *bool  `json:"enabled"`
}

func CreateSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	source := models.Source{
		Name:     req.Name,
		URL:      req.URL,
		Type:     req.Type,
		Industry: req.Industry,
		Enabled:  enabled,
	}
	if err := deps.Sources.CreateSource(c.Request.Context(), &source); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, source)
}

type updateSourceRequest struct {
	Name     *string `json:"name,omitempty"`
	URL      *string `json:"url,omitempty"`
	Industry *string `json:"industry,omitempty"`
	Enabled  *bool   `json:"enabled,omitempty"`
}

func UpdateSource(c *gin.Context) {
	var req updateSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.URL != nil {
		fields["url"] = *req.URL
	}
	if req.Industry != nil {
		fields["industry"] = *req.Industry
	}
	if req.Enabled != nil {
		fields["enabled"] = *req.Enabled
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no fields to update"})
		return
	}

	if err := deps.Sources.UpdateSource(c.Request.Context(), c.Param("id"), fields); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": c.Param("id")})
}

// DeleteSource removes the source and its category memberships.
func DeleteSource(c *gin.Context) {
	if err := deps.Sources.DeleteSource(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
