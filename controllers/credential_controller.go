package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ListCredentials reports which backends have a stored API key. Only the
// masked preview ever leaves the server.
func ListCredentials(c *gin.Context) {
	masked, err := deps.Credentials.ListMasked(c.Request.Context(), deps.LLM.Registry().IDs())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, masked)
}

type setCredentialRequest struct {
	Backend string `json:"backend" binding:"required"`
	APIKey  string `json:"api_key" binding:"required"`
}

// SetCredential stores or replaces the API key for one backend.
func SetCredential(c *gin.Context) {
	var req setCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := deps.LLM.Registry().Lookup(req.Backend); err != nil {
		writeError(c, err)
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_key must not be blank"})
		return
	}

	if err := deps.Credentials.SetSecret(c.Request.Context(), req.Backend, req.APIKey); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backend": req.Backend, "has_key": true})
}

func DeleteCredential(c *gin.Context) {
	backend := c.Param("backend")
	if _, err := deps.LLM.Registry().Lookup(backend); err != nil {
		writeError(c, err)
		return
	}
	if err := deps.Credentials.DeleteSecret(c.Request.Context(), backend); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"backend": backend, "has_key": false})
}
