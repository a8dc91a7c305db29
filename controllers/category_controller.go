package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/newsgap/newsgap/models"
)

func ListCategories(c *gin.Context) {
	enabledOnly := c.Query("enabled") == "true"
	categories, err := deps.Categories.ListCategories(c.Request.Context(), enabledOnly)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func GetCategory(c *gin.Context) {
	category, err := deps.Categories.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if category == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}
	c.JSON(http.StatusOK, category)
}

type categoryRequest struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	CustomPrompt string   `json:"custom_prompt" binding:"required"`
	Enabled      *bool    `json:"enabled"`
	SourceIDs    []string `json:"source_ids"`
}

func (r categoryRequest) toModel(id string) models.CustomCategory {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return models.CustomCategory{
		ID:           id,
		Name:         r.Name,
		Description:  r.Description,
		CustomPrompt: r.CustomPrompt,
		Enabled:      enabled,
		SourceIDs:    r.SourceIDs,
	}
}

// CreateCategory stores a new custom category with its source membership.
func CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := req.toModel("")
	if err := deps.Categories.SaveCategory(c.Request.Context(), &category); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory replaces the category and its source membership in one
// transaction.
func UpdateCategory(c *gin.Context) {
	existing, err := deps.Categories.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	category := req.toModel(existing.ID)
	category.CreatedAt = existing.CreatedAt
	if err := deps.Categories.SaveCategory(c.Request.Context(), &category); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func DeleteCategory(c *gin.Context) {
	if err := deps.Categories.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}
