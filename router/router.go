package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/newsgap/newsgap/controllers"
)

func InitRouter() *gin.Engine {
	r := gin.Default()

	allowedOrigins := []string{"http://localhost:5173", "http://localhost:8080"}
	if raw := os.Getenv("FRONTEND_ORIGINS"); raw != "" {
		split := strings.Split(raw, ",")
		allowedOrigins = allowedOrigins[:0]
		for _, v := range split {
			trimmed := strings.TrimSpace(v)
			if trimmed != "" {
				allowedOrigins = append(allowedOrigins, trimmed)
			}
		}
		if len(allowedOrigins) == 0 {
			allowedOrigins = []string{"*"}
		}
	}

	allowCreds := true
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		allowCreds = false
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: allowCreds,
		MaxAge:           12 * time.Hour,
	}))

	// Public health endpoint for liveness/readiness checks
	r.GET("/api/health", controllers.Health)

	api := r.Group("/api")
	{
		api.GET("/articles", controllers.GetArticles)
		api.GET("/articles/:id", controllers.GetArticleByID)
		api.PATCH("/articles/:id", controllers.PatchArticle)
		api.POST("/articles/archive", controllers.ArchiveArticles)
		api.POST("/articles/delete", controllers.DeleteArticles)

		api.POST("/intelligence", controllers.RunIntelligence)
		api.POST("/fetch", controllers.FetchArticles)
		api.POST("/analyze", controllers.AnalyzeStored)

		api.GET("/analyses", controllers.ListAnalyses)
		api.GET("/analyses/:id", controllers.GetAnalysis)

		api.POST("/trend-insight", controllers.CreateTrendInsight)
		api.GET("/trend-insights", controllers.ListTrendInsights)
		api.GET("/trend-insights/:id", controllers.GetTrendInsight)

		api.GET("/sources", controllers.ListSources)
		api.POST("/sources", controllers.CreateSource)
		api.PUT("/sources/:id", controllers.UpdateSource)
		api.DELETE("/sources/:id", controllers.DeleteSource)

		api.GET("/categories", controllers.ListCategories)
		api.POST("/categories", controllers.CreateCategory)
		api.GET("/categories/:id", controllers.GetCategory)
		api.PUT("/categories/:id", controllers.UpdateCategory)
		api.DELETE("/categories/:id", controllers.DeleteCategory)

		api.GET("/config/llm-backends", controllers.GetBackends)
		api.GET("/config/api-keys", controllers.ListCredentials)
		api.POST("/config/api-keys", controllers.SetCredential)
		api.DELETE("/config/api-keys/:backend", controllers.DeleteCredential)
	}

	return r
}
