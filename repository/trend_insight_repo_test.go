package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsgap/newsgap/models"
)

func testInsight(industry string, createdAt time.Time) models.TrendInsight {
	return models.TrendInsight{
		ID:                uuid.NewString(),
		SourceAnalysisIDs: models.StringList{"r1", "r2"},
		Industry:          industry,
		DateRangeStart:    createdAt.AddDate(0, 0, -7),
		DateRangeEnd:      createdAt,
		ExecutiveSummary:  "summary",
		MarkdownReport:    "# Trend",
		LLMBackend:        "ollama",
		LLMModel:          "llama3.1",
		CreatedAt:         createdAt,
	}
}

func TestGetInsightRoundTrip(t *testing.T) {
	repo := NewTrendInsightRepo(openTestDB(t))
	ctx := context.Background()

	insight := testInsight("finance", time.Now())
	require.NoError(t, repo.InsertInsight(ctx, &insight))

	got, err := repo.GetInsight(ctx, insight.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.StringList{"r1", "r2"}, got.SourceAnalysisIDs)
	assert.Equal(t, "finance", got.Industry)

	missing, err := repo.GetInsight(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListInsightsNewestFirstWithIndustryFilter(t *testing.T) {
	repo := NewTrendInsightRepo(openTestDB(t))
	ctx := context.Background()

	older := testInsight("finance", time.Now().Add(-time.Hour))
	newer := testInsight("finance", time.Now())
	tech := testInsight("technology", time.Now().Add(-30*time.Minute))
	for _, insight := range []models.TrendInsight{older, newer, tech} {
		i := insight
		require.NoError(t, repo.InsertInsight(ctx, &i))
	}

	all, err := repo.ListInsights(ctx, "", 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, newer.ID, all[0].ID)

	finance, err := repo.ListInsights(ctx, "finance", 0, 0)
	require.NoError(t, err)
	require.Len(t, finance, 2)
	assert.Equal(t, newer.ID, finance[0].ID)
	assert.Equal(t, older.ID, finance[1].ID)

	paged, err := repo.ListInsights(ctx, "finance", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, older.ID, paged[0].ID)
}
