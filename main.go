package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/newsgap/newsgap/config"
	"github.com/newsgap/newsgap/controllers"
	"github.com/newsgap/newsgap/crawler"
	"github.com/newsgap/newsgap/global"
	"github.com/newsgap/newsgap/intelligence"
	"github.com/newsgap/newsgap/llm"
	"github.com/newsgap/newsgap/repository"
	"github.com/newsgap/newsgap/router"
	"github.com/newsgap/newsgap/scheduler"
)

func main() {
	config.InitConfig()
	cfg := config.AppConfig
	log := global.Logger

	// Run database migrations
	config.MigrateDB()

	articleRepo := repository.NewArticleRepo(global.DB)
	sourceRepo := repository.NewSourceRepo(global.DB)
	categoryRepo := repository.NewCategoryRepo(global.DB)
	analysisRepo := repository.NewAnalysisRepo(global.DB)
	trendInsightRepo := repository.NewTrendInsightRepo(global.DB)
	credentialRepo := repository.NewCredentialRepo(global.DB, cfg.Security.CredentialKey)

	feedCrawler := crawler.New(cfg.FetchTimeout(), cfg.Crawler.UserAgent, log)
	registry := llm.NewRegistry(cfg.LLM.OllamaHost)
	llmClient := llm.NewClient(registry, credentialRepo, cfg.LLMTimeout())

	opts := intelligence.DefaultOptions()
	opts.MinThreshold = cfg.Intelligence.MinThreshold
	opts.MaxAttempts = cfg.Intelligence.MaxAttempts
	opts.RetryDelay = cfg.RetryDelay()
	orchestrator := intelligence.NewOrchestrator(
		feedCrawler,
		llmClient,
		articleRepo,
		analysisRepo,
		sourceRepo,
		categoryRepo,
		intelligence.NewRedisLocker(global.RedisDB),
		opts,
		log,
	)

	controllers.Init(controllers.Deps{
		Articles:      articleRepo,
		Sources:       sourceRepo,
		Categories:    categoryRepo,
		Analyses:      analysisRepo,
		TrendInsights: trendInsightRepo,
		Credentials:   credentialRepo,
		Crawler:       feedCrawler,
		LLM:           llmClient,
		Orchestrator:  orchestrator,
		Cfg:           cfg,
	})

	var sched *scheduler.Scheduler
	if cfg.Schedule.Enabled {
		sched = scheduler.New(feedCrawler, sourceRepo, articleRepo, cfg.Crawler.DefaultWindowHours, log)
		if err := sched.Start(cfg.Schedule.Cron); err != nil {
			log.Fatal("start scheduler", zap.Error(err))
		}
	}

	r := router.InitRouter()
	port := cfg.App.Port
	if port == "" {
		port = ":8080"
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("addr", port))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Info("shutting down")

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown", zap.Error(err))
	}
	log.Info("server exiting")
}
