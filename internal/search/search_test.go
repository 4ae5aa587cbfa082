package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reachlyapp/reachly-server/internal/discovery"
	"github.com/reachlyapp/reachly-server/internal/domain"
)

func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()
	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func influencer(id, name, category, country, niche string, ig, yt int64, engagement float64) *domain.Influencer {
	inf := &domain.Influencer{
		Record: discovery.Record{
			ID:             id,
			Name:           name,
			Category:       category,
			Country:        &discovery.Place{Name: country},
			Niche:          &discovery.Niche{Name: niche},
			EngagementRate: &engagement,
			Data:           map[discovery.Platform]*discovery.PlatformStats{},
		},
		Slug:         id,
		PricePerPost: 10_000,
		CreatedAt:    time.Now(),
	}
	if ig > 0 {
		inf.Data[discovery.Instagram] = &discovery.PlatformStats{TotalFollowers: ig}
	}
	if yt > 0 {
		inf.Data[discovery.YouTube] = &discovery.PlatformStats{TotalFollowers: yt}
	}
	return inf
}

func seedIndex(t *testing.T, index *SearchIndex) {
	t.Helper()
	docs := []*Document{
		InfluencerToDocument(influencer("inf-1", "Amara Okafor", "Beauty", "Nigeria", "Skincare", 250_000, 0, 4.2)),
		InfluencerToDocument(influencer("inf-2", "Chloe Lin", "Food", "Singapore", "Street Food", 80_000, 120_000, 6.5)),
		InfluencerToDocument(influencer("inf-3", "Diego Ramos", "Fitness", "Mexico", "Calisthenics", 0, 900_000, 2.1)),
		InfluencerToDocument(influencer("inf-4", "Amaka Eze", "Food", "Nigeria", "Home Cooking", 40_000, 0, 8.0)),
	}
	require.NoError(t, index.IndexDocuments(docs))
}

func hitIDs(result *SearchResult) []string {
	ids := make([]string, len(result.Hits))
	for i, h := range result.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.True(t, index.Fresh())
}

func TestNewSearchIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	seedIndex(t, index)
	require.NoError(t, index.Close())

	reopened, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer reopened.Close()

	assert.False(t, reopened.Fresh())
	count, err := reopened.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestNewSearchIndex_RebuildsOnVersionChange(t *testing.T) {
	dir := t.TempDir()
	index, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	seedIndex(t, index)
	require.NoError(t, index.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "search.version"), []byte("0"), 0o644))

	rebuilt, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer rebuilt.Close()

	assert.True(t, rebuilt.Fresh())
	count, err := rebuilt.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearchIndex_IndexAndDeleteInfluencer(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	inf := influencer("inf-1", "Amara Okafor", "Beauty", "Nigeria", "Skincare", 1, 0, 1)
	require.NoError(t, index.IndexInfluencer(ctx, inf))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	require.NoError(t, index.DeleteInfluencer(ctx, "inf-1"))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestSearch_TextQuery(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	params := DefaultSearchParams()
	params.Query = "Okafor"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "inf-1", result.Hits[0].ID)
	assert.Equal(t, "Amara Okafor", result.Hits[0].Name)
	assert.Equal(t, int64(250_000), result.Hits[0].Followers)
	assert.Equal(t, []string{"instagram"}, result.Hits[0].Platforms)
}

func TestSearch_MatchesNiche(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	params := DefaultSearchParams()
	params.Query = "skincare"
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Contains(t, hitIDs(result), "inf-1")
}

func TestSearch_KeywordFilters(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	params := DefaultSearchParams()
	params.Country = "Nigeria"
	params.SortBy = SortFollowers
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"inf-1", "inf-4"}, hitIDs(result))
}

func TestSearch_PlatformFilterIsAnyOf(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	params := DefaultSearchParams()
	params.Platforms = []string{"youtube"}
	params.SortBy = SortFollowers
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"inf-3", "inf-2"}, hitIDs(result))
}

func TestSearch_NumericRangesAreInclusive(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	params := DefaultSearchParams()
	params.MinFollowers = 200_000
	params.MaxFollowers = 250_000
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inf-1", "inf-2"}, hitIDs(result))

	params = DefaultSearchParams()
	params.MinEngagement = 6.5
	result, err = index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"inf-2", "inf-4"}, hitIDs(result))
}

func TestSearch_Facets(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	result, err := index.Search(context.Background(), DefaultSearchParams())
	require.NoError(t, err)

	assert.Equal(t, uint64(4), result.Total)
	require.Contains(t, result.Facets, FacetCountry)
	countries := result.Facets[FacetCountry]
	require.NotEmpty(t, countries)
	assert.Equal(t, FacetCount{Value: "Nigeria", Count: 2}, countries[0])
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	params := DefaultSearchParams()
	params.SortBy = SortFollowers
	params.Limit = 2
	params.Offset = 2
	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, uint64(4), result.Total)
	assert.Equal(t, []string{"inf-2", "inf-4"}, hitIDs(result))
}

func TestRebuild(t *testing.T) {
	index := setupTestIndex(t)
	seedIndex(t, index)

	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestDocument_ToMapOmitsEmpty(t *testing.T) {
	doc := InfluencerToDocument(&domain.Influencer{Record: discovery.Record{ID: "inf-x", Name: "X"}})
	m := doc.ToMap()

	assert.Equal(t, "inf-x", m["id"])
	assert.NotContains(t, m, "country")
	assert.NotContains(t, m, "platforms")
	assert.NotContains(t, m, "location")
	assert.NotContains(t, m, "age")
}
