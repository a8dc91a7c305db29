package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

type fakeCreds map[string]string

func (f fakeCreds) GetSecret(_ context.Context, backend string) (string, bool, error) {
	secret, ok := f[backend]
	return secret, ok, nil
}

type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	t.calls++
	return nil, http.ErrHandlerTimeout
}

func testArticles() []models.Article {
	return []models.Article{{
		ID:          "a1",
		Title:       "Something happened",
		URL:         "https://example.com/a1",
		Content:     "details",
		PublishedAt: time.Now(),
		SourceName:  "wire",
	}}
}

func TestAnalyzeMissingCredentialNeverHitsNetwork(t *testing.T) {
	client := NewClient(NewRegistry(""), fakeCreds{}, time.Second)
	transport := &countingTransport{}
	client.http.Transport = transport

	_, err := client.Analyze(context.Background(), testArticles(), "gemini", "", "")

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
	assert.Contains(t, err.Error(), "no API key configured")
	assert.Zero(t, transport.calls, "credential gate must fire before any request")
}

func TestAnalyzeUnknownBackend(t *testing.T) {
	client := NewClient(NewRegistry(""), fakeCreds{}, time.Second)

	_, err := client.Analyze(context.Background(), testArticles(), "clippy", "", "")

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
}

func TestAnalyzeSuccess(t *testing.T) {
	report := "## Executive Summary\n- Markets wobbled.\n- Chips rallied.\n- Rates held.\n\n## Details\nLong analysis."
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(ollamaResponse{Response: report})
	}))
	defer srv.Close()

	client := NewClient(NewRegistry(srv.URL), fakeCreds{}, time.Second)
	analysis, err := client.Analyze(context.Background(), testArticles(), "ollama", "", "")

	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "[1] Something happened")
	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, report, analysis.MarkdownReport)
	assert.Contains(t, analysis.ExecutiveBrief, "Markets wobbled.")
	assert.Equal(t, models.StringList{"a1"}, analysis.ArticleIDs)
	assert.Equal(t, "ollama", analysis.LLMBackend)
	assert.Equal(t, "llama3.1", analysis.LLMModel, "default model fills in when none is given")
	assert.Equal(t, models.AnalysisTypeComprehensive, analysis.AnalysisType)
}

func TestAnalyzeProviderFailureIsNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(NewRegistry(srv.URL), fakeCreds{}, time.Second)
	_, err := client.Analyze(context.Background(), testArticles(), "ollama", "", "")

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNetwork))
	assert.Contains(t, err.Error(), "503")
}

func TestAnalyzeMalformedResponseIsParse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": true}`))
	}))
	defer srv.Close()

	client := NewClient(NewRegistry(srv.URL), fakeCreds{}, time.Second)
	_, err := client.Analyze(context.Background(), testArticles(), "ollama", "", "")

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindParse))
}
