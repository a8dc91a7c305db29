package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newsgap/newsgap/models"
)

func seedSource(t *testing.T, repo *SourceRepo, name, industry string, enabled bool) models.Source {
	t.Helper()
	source := models.Source{
		Name:     name,
		URL:      "https://example.com/" + name + ".xml",
		Industry: industry,
		Enabled:  enabled,
	}
	require.NoError(t, repo.CreateSource(context.Background(), &source))
	return source
}

func TestSourcesByIndustrySkipsDisabled(t *testing.T) {
	repo := NewSourceRepo(openTestDB(t))
	ctx := context.Background()

	seedSource(t, repo, "alpha", "tech", true)
	seedSource(t, repo, "beta", "tech", false)
	seedSource(t, repo, "gamma", "finance", true)

	sources, err := repo.SourcesByIndustry(ctx, "tech")
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "alpha", sources[0].Name)
	assert.Equal(t, models.SourceTypeRSS, sources[0].Type, "type defaults to rss")
}

func TestRecordFetchResult(t *testing.T) {
	repo := NewSourceRepo(openTestDB(t))
	ctx := context.Background()

	source := seedSource(t, repo, "alpha", "tech", true)

	require.NoError(t, repo.RecordFetchResult(ctx, source.ID, time.Now(), errors.New("timeout")))
	require.NoError(t, repo.RecordFetchResult(ctx, source.ID, time.Now(), errors.New("timeout")))

	got, err := repo.GetSource(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "timeout", got.LastError)
	assert.Equal(t, 2, got.ErrorCount)
	require.NotNil(t, got.LastFetchedAt)

	require.NoError(t, repo.RecordFetchResult(ctx, source.ID, time.Now(), nil))
	got, err = repo.GetSource(ctx, source.ID)
	require.NoError(t, err)
	assert.Empty(t, got.LastError, "success clears the error message")
	assert.Equal(t, 2, got.ErrorCount, "the counter keeps its history")
}

func TestDeleteSourceRemovesCategoryMembership(t *testing.T) {
	db := openTestDB(t)
	sources := NewSourceRepo(db)
	categories := NewCategoryRepo(db)
	ctx := context.Background()

	source := seedSource(t, sources, "alpha", "tech", true)
	category := models.CustomCategory{
		Name:         "chips",
		CustomPrompt: "Focus on semiconductor supply.",
		Enabled:      true,
		SourceIDs:    []string{source.ID},
	}
	require.NoError(t, categories.SaveCategory(ctx, &category))

	require.NoError(t, sources.DeleteSource(ctx, source.ID))

	got, err := categories.GetCategory(ctx, category.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, got.SourceIDs, "deleting a source detaches it from every category")
}
