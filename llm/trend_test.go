package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

func testAnalyses() []models.Analysis {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return []models.Analysis{
		{
			ID:             "r1",
			Industry:       "finance",
			MarkdownReport: "## Week one\nRates held steady.",
			CreatedAt:      base,
		},
		{
			ID:             "r2",
			Industry:       "finance",
			MarkdownReport: "## Week two\nRates cut by 25bp.",
			CreatedAt:      base.AddDate(0, 0, 7),
		},
	}
}

func TestAnalyzeTrendRequiresTwoReports(t *testing.T) {
	client := NewClient(NewRegistry(""), fakeCreds{}, time.Second)

	_, err := client.AnalyzeTrend(context.Background(), testAnalyses()[:1], "ollama", "")

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
	assert.Contains(t, err.Error(), "at least 2")
}

func TestAnalyzeTrendMissingCredentialNeverHitsNetwork(t *testing.T) {
	client := NewClient(NewRegistry(""), fakeCreds{}, time.Second)
	transport := &countingTransport{}
	client.http.Transport = transport

	_, err := client.AnalyzeTrend(context.Background(), testAnalyses(), "openai", "")

	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConfiguration))
	assert.Zero(t, transport.calls)
}

func TestAnalyzeTrendSuccess(t *testing.T) {
	report := "# Trend Insight\n\nRates moved from holding to cutting over the period.\n\n## Outlook\nMore cuts likely."
	var gotPrompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(ollamaResponse{Response: report})
	}))
	defer srv.Close()

	client := NewClient(NewRegistry(srv.URL), fakeCreds{}, time.Second)
	// Pass reports newest-first to check they are reordered before prompting.
	analyses := testAnalyses()
	analyses[0], analyses[1] = analyses[1], analyses[0]

	insight, err := client.AnalyzeTrend(context.Background(), analyses, "ollama", "")

	require.NoError(t, err)
	assert.Contains(t, gotPrompt, "### Report 1 - 2026-08-01")
	assert.Contains(t, gotPrompt, "### Report 2 - 2026-08-08")
	assert.Less(t, strings.Index(gotPrompt, "Week one"), strings.Index(gotPrompt, "Week two"))

	assert.NotEmpty(t, insight.ID)
	assert.Equal(t, models.StringList{"r1", "r2"}, insight.SourceAnalysisIDs)
	assert.Equal(t, "finance", insight.Industry)
	assert.Equal(t, "2026-08-01", insight.DateRangeStart.Format("2006-01-02"))
	assert.Equal(t, "2026-08-08", insight.DateRangeEnd.Format("2006-01-02"))
	assert.Equal(t, report, insight.MarkdownReport)
	assert.Equal(t, "Rates moved from holding to cutting over the period.", insight.ExecutiveSummary)
	assert.Equal(t, "ollama", insight.LLMBackend)
	assert.Equal(t, "llama3.1", insight.LLMModel)
}

func TestBuildTrendPromptCompressesLongReports(t *testing.T) {
	analyses := testAnalyses()
	analyses[0].MarkdownReport = strings.Repeat("见", maxReportRunes+50)

	prompt := BuildTrendPrompt(analyses, "finance", "2026-08-01 to 2026-08-08")

	assert.True(t, utf8.ValidString(prompt))
	assert.Contains(t, prompt, strings.Repeat("见", maxReportRunes)+"\n...[content compressed]")
	assert.NotContains(t, prompt, strings.Repeat("见", maxReportRunes+1))
	assert.Contains(t, prompt, "# Reports (2 total, finance, covering 2026-08-01 to 2026-08-08)")
}

func TestBuildTrendPromptFallsBackToBrief(t *testing.T) {
	analyses := testAnalyses()
	analyses[1].MarkdownReport = ""
	analyses[1].ExecutiveBrief = "Short take on week two."

	prompt := BuildTrendPrompt(analyses, "finance", "2026-08-01 to 2026-08-08")

	assert.Contains(t, prompt, "Short take on week two.")
}

func TestExtractSummarySkipsHeadings(t *testing.T) {
	report := "# Trend Insight\n\n## Summary\n- **Rates** pivoted downward.\nMore detail below."

	assert.Equal(t, "Rates pivoted downward.", ExtractSummary(report))
}

func TestDominantIndustryFallsBackToOther(t *testing.T) {
	analyses := testAnalyses()
	analyses[0].Industry = ""
	analyses[1].Industry = ""

	assert.Equal(t, "other", dominantIndustry(analyses))
}
