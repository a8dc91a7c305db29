package intelligence

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/crawler"
	"github.com/newsgap/newsgap/models"
)

// Ports are bound once at the composition root; the orchestrator never
// re-resolves an implementation per call.
type (
	// IngestionPort is the parallel feed fetcher.
	IngestionPort interface {
		FetchMultiple(ctx context.Context, sources []models.Source, windowHours int) ([]models.Article, []crawler.SourceError)
	}

	// AnalysisPort produces a finished report from a set of articles.
	AnalysisPort interface {
		Analyze(ctx context.Context, articles []models.Article, backendID, modelID, customPrompt string) (*models.Analysis, error)
	}

	// ArticleStore persists ingested articles idempotently.
	ArticleStore interface {
		UpsertArticles(ctx context.Context, articles []models.Article) error
	}

	// AnalysisStore persists finished reports.
	AnalysisStore interface {
		InsertAnalysis(ctx context.Context, analysis *models.Analysis) error
	}

	// SourceCatalog resolves what to fetch and records fetch outcomes.
	SourceCatalog interface {
		SourcesByIndustry(ctx context.Context, industry string) ([]models.Source, error)
		CategorySources(ctx context.Context, categoryID string) ([]models.Source, error)
		RecordFetchResult(ctx context.Context, id string, fetchedAt time.Time, fetchErr error) error
	}

	// CategoryCatalog resolves a custom category and its prompt override.
	CategoryCatalog interface {
		GetCategory(ctx context.Context, id string) (*models.CustomCategory, error)
	}

	// RunLocker serializes concurrent runs for the same target.
	RunLocker interface {
		Acquire(ctx context.Context, target string, ttl time.Duration) (bool, error)
		Release(ctx context.Context, target string) error
	}
)

// Request describes one orchestration run. Exactly one of Industry or
// CategoryID selects the target. Force overrides a low-volume warning.
type Request struct {
	Industry    string `json:"industry,omitempty"`
	CategoryID  string `json:"custom_category_id,omitempty"`
	WindowHours int    `json:"hours"`
	Backend     string `json:"llm_backend"`
	Model       string `json:"llm_model,omitempty"`
	Force       bool   `json:"force,omitempty"`
}

// Result is the outcome of one successful run.
type Result struct {
	AnalysisID     string   `json:"analysis_id"`
	ArticleCount   int      `json:"article_count"`
	ElapsedSeconds float64  `json:"total_time_seconds"`
	Attempts       int      `json:"attempts"`
	SourceErrors   []string `json:"source_errors,omitempty"`
}

// LowVolumeError signals a below-threshold but non-zero harvest. The
// caller may re-run with Force to proceed anyway.
type LowVolumeError struct {
	Count     int
	Threshold int
	Attempts  int
}

func (e *LowVolumeError) Error() string {
	return fmt.Sprintf("only %d articles fetched (threshold %d) after %d attempts; re-run with force to analyze anyway",
		e.Count, e.Threshold, e.Attempts)
}

// ErrRunInProgress is returned when the target is already being processed.
var ErrRunInProgress = fmt.Errorf("an analysis run for this target is already in progress")

// Options tune the volume gate.
type Options struct {
	MinThreshold int
	MaxAttempts  int
	RetryDelay   time.Duration
	LockTTL      time.Duration
}

func DefaultOptions() Options {
	return Options{
		MinThreshold: 5,
		MaxAttempts:  2,
		RetryDelay:   3 * time.Second,
		LockTTL:      10 * time.Minute,
	}
}

// ingestState is the explicit retry state machine for the volume gate.
type ingestState int

const (
	stateFetching ingestState = iota
	stateRetrying
	stateSucceeded
	stateExhausted
)

// Orchestrator runs the full pipeline: resolve target, ingest, gate,
// persist articles, analyze, persist the analysis.
type Orchestrator struct {
	ingest     IngestionPort
	analyzer   AnalysisPort
	articles   ArticleStore
	analyses   AnalysisStore
	sources    SourceCatalog
	categories CategoryCatalog
	locker     RunLocker
	opts       Options
	log        *zap.Logger

	// sleep is injectable so the retry policy is testable without
	// real delays.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(
	ingest IngestionPort,
	analyzer AnalysisPort,
	articles ArticleStore,
	analyses AnalysisStore,
	sources SourceCatalog,
	categories CategoryCatalog,
	locker RunLocker,
	opts Options,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		ingest:     ingest,
		analyzer:   analyzer,
		articles:   articles,
		analyses:   analyses,
		sources:    sources,
		categories: categories,
		locker:     locker,
		opts:       opts,
		log:        log,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run executes one orchestration. Macro-steps are sequential; only the
// ingestion fan-out inside FetchMultiple is parallel. Articles are
// persisted before the AI call so ingested data survives an analysis
// failure.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	target, err := targetKey(req)
	if err != nil {
		return nil, err
	}

	acquired, err := o.locker.Acquire(ctx, target, o.opts.LockTTL)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, err, "acquire run lock")
	}
	if !acquired {
		return nil, ErrRunInProgress
	}
	defer func() {
		if err := o.locker.Release(context.Background(), target); err != nil {
			o.log.Warn("release run lock", zap.String("target", target), zap.Error(err))
		}
	}()

	sources, customPrompt, err := o.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, apperr.New(apperr.KindConfiguration, "no enabled sources for target %s", target)
	}

	articles, srcErrs, attempts, err := o.ingestWithGate(ctx, sources, req)
	if err != nil {
		return nil, err
	}

	if err := o.articles.UpsertArticles(ctx, articles); err != nil {
		return nil, err
	}
	o.recordFetchResults(ctx, sources, srcErrs)

	analysis, err := o.analyzer.Analyze(ctx, articles, req.Backend, req.Model, customPrompt)
	if err != nil {
		// Articles stay persisted; no rollback of prior steps.
		return nil, err
	}

	analysis.Industry = req.Industry
	if req.CategoryID != "" {
		analysis.Industry = "custom"
	}

	if err := o.analyses.InsertAnalysis(ctx, analysis); err != nil {
		return nil, err
	}

	result := &Result{
		AnalysisID:     analysis.ID,
		ArticleCount:   len(articles),
		ElapsedSeconds: time.Since(start).Seconds(),
		Attempts:       attempts,
	}
	for _, se := range srcErrs {
		result.SourceErrors = append(result.SourceErrors, se.Error())
	}

	o.log.Info("intelligence run complete",
		zap.String("target", target),
		zap.String("analysis_id", analysis.ID),
		zap.Int("articles", len(articles)),
		zap.Int("attempts", attempts),
		zap.Float64("elapsed_s", result.ElapsedSeconds))
	return result, nil
}

// ingestWithGate runs the bounded {Fetching, Retrying(n), Succeeded,
// Exhausted} machine. A thin harvest is retried after a delay so newly
// published items can trickle in; exhaustion with zero articles is a hard
// failure and never reaches the AI backend.
func (o *Orchestrator) ingestWithGate(ctx context.Context, sources []models.Source, req Request) ([]models.Article, []crawler.SourceError, int, error) {
	var (
		articles []models.Article
		srcErrs  []crawler.SourceError
		attempts int
	)

	state := stateFetching
	for state == stateFetching || state == stateRetrying {
		if state == stateRetrying {
			o.log.Info("volume below threshold, retrying ingestion",
				zap.Int("count", len(articles)),
				zap.Int("threshold", o.opts.MinThreshold),
				zap.Duration("delay", o.opts.RetryDelay))
			if err := o.sleep(ctx, o.opts.RetryDelay); err != nil {
				return nil, nil, attempts, apperr.Wrap(apperr.KindNetwork, err, "ingestion cancelled")
			}
		}

		attempts++
		articles, srcErrs = o.ingest.FetchMultiple(ctx, sources, req.WindowHours)

		switch {
		case len(articles) >= o.opts.MinThreshold:
			state = stateSucceeded
		case attempts < o.opts.MaxAttempts:
			state = stateRetrying
		default:
			state = stateExhausted
		}
	}

	if state == stateExhausted {
		if len(articles) == 0 {
			return nil, nil, attempts, apperr.New(apperr.KindVolume,
				"no articles fetched after %d attempts", attempts)
		}
		if !req.Force {
			return nil, nil, attempts, &LowVolumeError{
				Count:     len(articles),
				Threshold: o.opts.MinThreshold,
				Attempts:  attempts,
			}
		}
	}
	return articles, srcErrs, attempts, nil
}

func (o *Orchestrator) resolveTarget(ctx context.Context, req Request) ([]models.Source, string, error) {
	if req.CategoryID != "" {
		category, err := o.categories.GetCategory(ctx, req.CategoryID)
		if err != nil {
			return nil, "", err
		}
		if category == nil {
			return nil, "", apperr.New(apperr.KindConfiguration, "custom category %s not found", req.CategoryID)
		}
		sources, err := o.sources.CategorySources(ctx, req.CategoryID)
		if err != nil {
			return nil, "", err
		}
		return sources, category.CustomPrompt, nil
	}

	sources, err := o.sources.SourcesByIndustry(ctx, req.Industry)
	if err != nil {
		return nil, "", err
	}
	return sources, "", nil
}

// recordFetchResults updates per-source bookkeeping; failures here are
// logged, never fatal to the run.
func (o *Orchestrator) recordFetchResults(ctx context.Context, sources []models.Source, srcErrs []crawler.SourceError) {
	failed := make(map[string]error, len(srcErrs))
	for _, se := range srcErrs {
		failed[se.SourceID] = se.Err
	}
	now := time.Now()
	for _, source := range sources {
		if err := o.sources.RecordFetchResult(ctx, source.ID, now, failed[source.ID]); err != nil {
			o.log.Warn("record fetch result", zap.String("source", source.Name), zap.Error(err))
		}
	}
}

func targetKey(req Request) (string, error) {
	switch {
	case req.CategoryID != "" && req.Industry != "":
		return "", apperr.New(apperr.KindConfiguration, "specify either industry or custom_category_id, not both")
	case req.CategoryID != "":
		return "category:" + req.CategoryID, nil
	case req.Industry != "":
		return "industry:" + req.Industry, nil
	default:
		return "", apperr.New(apperr.KindConfiguration, "a target industry or custom_category_id is required")
	}
}
