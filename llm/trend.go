package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/newsgap/newsgap/apperr"
	"github.com/newsgap/newsgap/models"
)

const (
	// minTrendReports is the smallest report set a trend can be read from.
	minTrendReports = 2
	// maxReportRunes compresses each source report fed into the trend prompt.
	maxReportRunes = 3000
	// summaryLen bounds the extracted trend executive summary.
	summaryLen = 500
)

const trendPromptTemplate = `You are a professional trend analyst. The reports below were produced over a period of time for the same coverage area. Read them in chronological order and produce one cross-report trend insight.

## Insight requirements

1. **Trend summary** (3-5 core points)
   - The movements that persist across reports, not single-report events.

2. **Recurring themes**
   - Storylines that appear in two or more reports; note whether each is strengthening or fading.

3. **Inflection points**
   - Where the narrative changed direction between reports; cite the report numbers on both sides.

4. **Emerging and fading signals**
   - What is new in the latest reports, and what has quietly disappeared.

5. **Outlook**
   - Concrete expectations for the coming period, with the supporting report numbers.

## Principles

- Compare across reports; never summarize a single report in isolation.
- Every conclusion cites the report numbers that support it.
- Stay measured; no hype.

Output the insight in Markdown.`

// BuildTrendPrompt assembles the cross-report prompt. Reports must be in
// chronological order; each is enumerated "### Report n" so the model can
// cite them, and long reports are compressed to keep the batch in budget.
func BuildTrendPrompt(analyses []models.Analysis, industry, dateRange string) string {
	var sb strings.Builder
	for i, a := range analyses {
		report := a.MarkdownReport
		if report == "" {
			report = a.ExecutiveBrief
		}
		report, truncated := truncateRunes(report, maxReportRunes)
		if truncated {
			report += "\n...[content compressed]"
		}
		fmt.Fprintf(&sb, "### Report %d - %s\n\n%s\n", i+1, a.CreatedAt.Format("2006-01-02"), report)
		if i < len(analyses)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return fmt.Sprintf("%s\n\n# Reports (%d total, %s, covering %s)\n\n%s\n\nGenerate the trend insight from the reports above.",
		trendPromptTemplate, len(analyses), industry, dateRange, sb.String())
}

// ExtractSummary pulls the first substantive line out of a trend report:
// the first non-empty, non-heading line, bounded to the summary length.
func ExtractSummary(report string) string {
	for _, line := range strings.Split(report, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		summary, _ := truncateRunes(strings.TrimSpace(stripMarkdown(trimmed)), summaryLen)
		return summary
	}
	summary, _ := truncateRunes(report, summaryLen)
	return summary
}

// AnalyzeTrend runs a meta-analysis over previously stored reports and
// returns the finished, immutable insight. At least two reports are
// required; the credential gate matches Analyze.
func (c *Client) AnalyzeTrend(ctx context.Context, analyses []models.Analysis, backendID, modelID string) (*models.TrendInsight, error) {
	if len(analyses) < minTrendReports {
		return nil, apperr.New(apperr.KindConfiguration,
			"trend insight needs at least %d analysis reports, got %d", minTrendReports, len(analyses))
	}

	backend, err := c.registry.Lookup(backendID)
	if err != nil {
		return nil, err
	}

	var apiKey string
	if backend.RequiresKey() {
		secret, ok, err := c.creds.GetSecret(ctx, backendID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.New(apperr.KindConfiguration,
				"no API key configured for backend %q", backendID)
		}
		apiKey = secret
	}

	model := modelID
	if model == "" {
		model = backend.DefaultModel()
	}

	sorted := make([]models.Analysis, len(analyses))
	copy(sorted, analyses)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	industry := dominantIndustry(sorted)
	start := sorted[0].CreatedAt
	end := sorted[len(sorted)-1].CreatedAt
	dateRange := fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))

	prompt := BuildTrendPrompt(sorted, industry, dateRange)

	req, err := backend.BuildRequest(ctx, apiKey, model, prompt)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, err, "build %s request", backendID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, err, "call %s", backendID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindNetwork, err, "read %s response", backendID)
	}

	report, err := backend.ParseResponse(resp.StatusCode, body)
	if err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, apperr.Wrap(apperr.KindNetwork, err, "%s call failed", backendID)
		}
		return nil, apperr.Wrap(apperr.KindParse, err, "%s response", backendID)
	}

	sourceIDs := make(models.StringList, 0, len(sorted))
	for _, a := range sorted {
		sourceIDs = append(sourceIDs, a.ID)
	}

	return &models.TrendInsight{
		ID:                uuid.NewString(),
		SourceAnalysisIDs: sourceIDs,
		Industry:          industry,
		DateRangeStart:    start,
		DateRangeEnd:      end,
		ExecutiveSummary:  ExtractSummary(report),
		MarkdownReport:    report,
		LLMBackend:        backendID,
		LLMModel:          model,
		CreatedAt:         time.Now(),
	}, nil
}

// dominantIndustry picks the most common industry across the reports,
// falling back to "other" when none carry one.
func dominantIndustry(analyses []models.Analysis) string {
	counts := make(map[string]int)
	for _, a := range analyses {
		if a.Industry != "" {
			counts[a.Industry]++
		}
	}
	dominant, best := "other", 0
	for industry, n := range counts {
		if n > best {
			dominant, best = industry, n
		}
	}
	return dominant
}
