package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/newsgap/newsgap/crawler"
	"github.com/newsgap/newsgap/models"
	"github.com/newsgap/newsgap/repository"
)

// Scheduler runs periodic background ingestion of every enabled source.
// It never triggers analysis; reports are only produced on explicit
// request.
type Scheduler struct {
	cron        *cron.Cron
	crawler     *crawler.Crawler
	sources     *repository.SourceRepo
	articles    *repository.ArticleRepo
	windowHours int
	log         *zap.Logger
}

func New(c *crawler.Crawler, sources *repository.SourceRepo, articles *repository.ArticleRepo, windowHours int, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		crawler:     c,
		sources:     sources,
		articles:    articles,
		windowHours: windowHours,
		log:         log,
	}
}

// Start registers the ingestion job on the given cron spec and launches
// the scheduler.
func (s *Scheduler) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runIngestion); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("background ingestion scheduled", zap.String("cron", spec))
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runIngestion() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	sources, err := s.sources.EnabledSources(ctx)
	if err != nil {
		s.log.Error("scheduled ingestion: list sources", zap.Error(err))
		return
	}
	if len(sources) == 0 {
		return
	}

	articles, srcErrs := s.crawler.FetchMultiple(ctx, sources, s.windowHours)
	if err := s.articles.UpsertArticles(ctx, articles); err != nil {
		s.log.Error("scheduled ingestion: persist articles", zap.Error(err))
		return
	}
	s.recordResults(ctx, sources, srcErrs)

	s.log.Info("scheduled ingestion complete",
		zap.Int("sources", len(sources)),
		zap.Int("articles", len(articles)),
		zap.Int("failures", len(srcErrs)))
}

func (s *Scheduler) recordResults(ctx context.Context, sources []models.Source, srcErrs []crawler.SourceError) {
	failed := make(map[string]error, len(srcErrs))
	for _, se := range srcErrs {
		failed[se.SourceID] = se.Err
	}
	now := time.Now()
	for _, source := range sources {
		if err := s.sources.RecordFetchResult(ctx, source.ID, now, failed[source.ID]); err != nil {
			s.log.Warn("scheduled ingestion: record fetch result",
				zap.String("source", source.Name), zap.Error(err))
		}
	}
}
