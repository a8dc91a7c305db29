package intelligence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/crawler"
	"github.com/newsgap/newsgap/models"
)

func makeArticles(n int) []models.Article {
	articles := make([]models.Article, n)
	for i := range articles {
		articles[i] = models.Article{ID: fmt.Sprintf("id-%d", i), Title: "t", PublishedAt: time.Now()}
	}
	return articles
}

// fakeIngestion returns one canned harvest per call.
type fakeIngestion struct {
	harvests [][]models.Article
	srcErrs  []crawler.SourceError
	calls    int
	log      *[]string
}

func (f *fakeIngestion) FetchMultiple(context.Context, []models.Source, int) ([]models.Article, []crawler.SourceError) {
	harvest := f.harvests[f.calls]
	f.calls++
	if f.log != nil {
		*f.log = append(*f.log, "fetch")
	}
	return harvest, f.srcErrs
}

type fakeAnalyzer struct {
	calls int
	log   *[]string
	err   error
}

func (f *fakeAnalyzer) Analyze(_ context.Context, articles []models.Article, backendID, modelID, customPrompt string) (*models.Analysis, error) {
	f.calls++
	if f.log != nil {
		*f.log = append(*f.log, "analyze")
	}
	if f.err != nil {
		return nil, f.err
	}
	return &models.Analysis{ID: "analysis-1", LLMBackend: backendID}, nil
}

type fakeArticleStore struct {
	upserted int
	log      *[]string
}

func (f *fakeArticleStore) UpsertArticles(_ context.Context, articles []models.Article) error {
	f.upserted += len(articles)
	if f.log != nil {
		*f.log = append(*f.log, "persist")
	}
	return nil
}

type fakeAnalysisStore struct {
	inserted []*models.Analysis
}

func (f *fakeAnalysisStore) InsertAnalysis(_ context.Context, analysis *models.Analysis) error {
	f.inserted = append(f.inserted, analysis)
	return nil
}

type fakeSourceCatalog struct {
	sources  []models.Source
	recorded map[string]error
}

func (f *fakeSourceCatalog) SourcesByIndustry(context.Context, string) ([]models.Source, error) {
	return f.sources, nil
}

func (f *fakeSourceCatalog) CategorySources(context.Context, string) ([]models.Source, error) {
	return f.sources, nil
}

func (f *fakeSourceCatalog) RecordFetchResult(_ context.Context, id string, _ time.Time, fetchErr error) error {
	if f.recorded == nil {
		f.recorded = map[string]error{}
	}
	f.recorded[id] = fetchErr
	return nil
}

type fakeCategoryCatalog struct {
	category *models.CustomCategory
}

func (f *fakeCategoryCatalog) GetCategory(context.Context, string) (*models.CustomCategory, error) {
	return f.category, nil
}

type fakeLocker struct {
	busy     bool
	acquired []string
	released []string
}

func (f *fakeLocker) Acquire(_ context.Context, target string, _ time.Duration) (bool, error) {
	if f.busy {
		return false, nil
	}
	f.acquired = append(f.acquired, target)
	return true, nil
}

func (f *fakeLocker) Release(_ context.Context, target string) error {
	f.released = append(f.released, target)
	return nil
}

type fixture struct {
	orch      *Orchestrator
	ingestion *fakeIngestion
	analyzer  *fakeAnalyzer
	articles  *fakeArticleStore
	analyses  *fakeAnalysisStore
	sources   *fakeSourceCatalog
	locker    *fakeLocker
	slept     []time.Duration
	events    []string
}

func newFixture(harvests ...[]models.Article) *fixture {
	f := &fixture{
		ingestion: &fakeIngestion{harvests: harvests},
		analyzer:  &fakeAnalyzer{},
		articles:  &fakeArticleStore{},
		analyses:  &fakeAnalysisStore{},
		sources: &fakeSourceCatalog{sources: []models.Source{
			{ID: "s1", Name: "alpha", Industry: "tech", Enabled: true},
			{ID: "s2", Name: "beta", Industry: "tech", Enabled: true},
		}},
		locker: &fakeLocker{},
	}
	f.ingestion.log = &f.events
	f.analyzer.log = &f.events
	f.articles.log = &f.events

	opts := DefaultOptions()
	opts.RetryDelay = 3 * time.Second
	f.orch = NewOrchestrator(
		f.ingestion, f.analyzer, f.articles, f.analyses, f.sources,
		&fakeCategoryCatalog{}, f.locker, opts, zap.NewNop(),
	)
	f.orch.sleep = func(_ context.Context, d time.Duration) error {
		f.slept = append(f.slept, d)
		return nil
	}
	return f
}

func techRequest() Request {
	return Request{Industry: "tech", WindowHours: 24, Backend: "openai"}
}

func TestRunSucceedsFirstAttempt(t *testing.T) {
	f := newFixture(makeArticles(8))

	result, err := f.orch.Run(context.Background(), techRequest())

	require.NoError(t, err)
	assert.Equal(t, "analysis-1", result.AnalysisID)
	assert.Equal(t, 8, result.ArticleCount)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, f.slept)
	assert.Equal(t, 8, f.articles.upserted)
	require.Len(t, f.analyses.inserted, 1)
	assert.Equal(t, "tech", f.analyses.inserted[0].Industry)
}

func TestRunRetriesThinHarvestThenProceeds(t *testing.T) {
	f := newFixture(makeArticles(2), makeArticles(8))

	result, err := f.orch.Run(context.Background(), techRequest())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, 8, result.ArticleCount)
	require.Len(t, f.slept, 1, "exactly one delay between the two attempts")
	assert.Equal(t, 3*time.Second, f.slept[0])
	assert.Equal(t, 1, f.analyzer.calls)
}

func TestRunZeroVolumeNeverCallsBackend(t *testing.T) {
	f := newFixture(makeArticles(0), makeArticles(0))

	_, err := f.orch.Run(context.Background(), techRequest())

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindVolume))
	assert.Zero(t, f.analyzer.calls, "an empty harvest must not burn an AI call")
	assert.Zero(t, f.articles.upserted)
	assert.Equal(t, 2, f.ingestion.calls, "both attempts are still spent")
}

func TestRunLowVolumeIsRecoverable(t *testing.T) {
	f := newFixture(makeArticles(1), makeArticles(3))

	_, err := f.orch.Run(context.Background(), techRequest())

	require.Error(t, err)
	var lowVolume *LowVolumeError
	require.ErrorAs(t, err, &lowVolume)
	assert.Equal(t, 3, lowVolume.Count)
	assert.Equal(t, 5, lowVolume.Threshold)
	assert.Zero(t, f.analyzer.calls)
}

func TestRunForceOverridesLowVolume(t *testing.T) {
	f := newFixture(makeArticles(1), makeArticles(3))

	req := techRequest()
	req.Force = true
	result, err := f.orch.Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, 3, result.ArticleCount)
	assert.Equal(t, 1, f.analyzer.calls)
}

func TestRunForceNeverOverridesZeroVolume(t *testing.T) {
	f := newFixture(makeArticles(0), makeArticles(0))

	req := techRequest()
	req.Force = true
	_, err := f.orch.Run(context.Background(), req)

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindVolume))
	assert.Zero(t, f.analyzer.calls)
}

func TestRunPersistsArticlesBeforeAnalyzing(t *testing.T) {
	f := newFixture(makeArticles(8))

	_, err := f.orch.Run(context.Background(), techRequest())

	require.NoError(t, err)
	assert.Equal(t, []string{"fetch", "persist", "analyze"}, f.events)
}

func TestRunArticlesSurviveAnalysisFailure(t *testing.T) {
	f := newFixture(makeArticles(8))
	f.analyzer.err = apperr.New(apperr.KindNetwork, "provider down")

	_, err := f.orch.Run(context.Background(), techRequest())

	require.Error(t, err)
	assert.Equal(t, 8, f.articles.upserted, "ingested data outlives the failed analysis")
	assert.Empty(t, f.analyses.inserted)
}

func TestRunRecordsFetchResults(t *testing.T) {
	f := newFixture(makeArticles(8))
	f.ingestion.srcErrs = []crawler.SourceError{{SourceID: "s2", SourceName: "beta", Err: assert.AnError}}

	result, err := f.orch.Run(context.Background(), techRequest())

	require.NoError(t, err)
	assert.NoError(t, f.sources.recorded["s1"])
	assert.Error(t, f.sources.recorded["s2"])
	require.Len(t, result.SourceErrors, 1)
	assert.Contains(t, result.SourceErrors[0], "beta")
}

func TestRunBusyTargetIsRejected(t *testing.T) {
	f := newFixture(makeArticles(8))
	f.locker.busy = true

	_, err := f.orch.Run(context.Background(), techRequest())

	require.ErrorIs(t, err, ErrRunInProgress)
	assert.Zero(t, f.ingestion.calls)
}

func TestRunReleasesLockOnFailure(t *testing.T) {
	f := newFixture(makeArticles(0), makeArticles(0))

	_, err := f.orch.Run(context.Background(), techRequest())

	require.Error(t, err)
	assert.Equal(t, []string{"industry:tech"}, f.locker.acquired)
	assert.Equal(t, []string{"industry:tech"}, f.locker.released)
}

func TestRunCategoryTargetUsesCustomPrompt(t *testing.T) {
	f := newFixture(makeArticles(8))
	categories := &fakeCategoryCatalog{category: &models.CustomCategory{
		ID: "cat-1", Name: "chips", CustomPrompt: "Focus on semiconductor supply.",
	}}
	f.orch.categories = categories

	var gotPrompt string
	f.orch.analyzer = analyzerFunc(func(_ context.Context, articles []models.Article, backendID, modelID, customPrompt string) (*models.Analysis, error) {
		gotPrompt = customPrompt
		return &models.Analysis{ID: "analysis-2"}, nil
	})

	req := Request{CategoryID: "cat-1", WindowHours: 24, Backend: "openai"}
	result, err := f.orch.Run(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "analysis-2", result.AnalysisID)
	assert.Equal(t, "Focus on semiconductor supply.", gotPrompt)
	assert.Equal(t, []string{"category:cat-1"}, f.locker.acquired)
}

func TestRunRejectsAmbiguousTarget(t *testing.T) {
	f := newFixture(makeArticles(8))

	_, err := f.orch.Run(context.Background(), Request{Industry: "tech", CategoryID: "cat-1", Backend: "openai"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))

	_, err = f.orch.Run(context.Background(), Request{Backend: "openai"})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
}

type analyzerFunc func(context.Context, []models.Article, string, string, string) (*models.Analysis, error)

func (f analyzerFunc) Analyze(ctx context.Context, articles []models.Article, backendID, modelID, customPrompt string) (*models.Analysis, error) {
	return f(ctx, articles, backendID, modelID, customPrompt)
}
