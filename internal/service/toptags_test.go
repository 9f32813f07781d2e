package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illustash/illustash-server/internal/store"
)

func TestTopTags_NoFilters(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景", "夜景"}},
		{id: 2, tags: []string{"風景"}},
		{id: 3, tags: []string{"風景", "モノクロ"}},
	})

	result, err := svc.TopTags(context.Background(), SearchRequest{})
	require.NoError(t, err)

	require.Len(t, result.Tags, 3)
	assert.Equal(t, "風景", result.Tags[0].Name.Original)
	assert.Equal(t, 3, result.Tags[0].Count)
	assert.False(t, result.Tags[0].IsIncludeTag)

	// Equal counts break ties by name, so output is stable across runs.
	assert.Equal(t, "モノクロ", result.Tags[1].Name.Original)
	assert.Equal(t, "夜景", result.Tags[2].Name.Original)
}

func TestTopTags_ScopedByScalarFilters(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
		{id: 2, tags: []string{"風景", "夜景"}, private: true},
	})

	result, err := svc.TopTags(context.Background(), SearchRequest{
		Filters: store.SearchFilters{Restrict: store.RestrictPublic},
	})
	require.NoError(t, err)

	require.Len(t, result.Tags, 1)
	assert.Equal(t, "風景", result.Tags[0].Name.Original)
	assert.Equal(t, 1, result.Tags[0].Count)
}

func TestTopTags_IncludeTagsForcedAndFlagged(t *testing.T) {
	svc, st := setupSearchTest(t)

	// Many distinct tags so the include tag would fall outside the top ten
	// on count alone.
	var fixtures []illustFixture
	for id := int64(1); id <= 12; id++ {
		fixtures = append(fixtures, illustFixture{
			id:   id,
			tags: []string{"common", tagNameFor(id)},
		})
	}
	fixtures = append(fixtures, illustFixture{id: 100, tags: []string{"common", "rare"}})
	seedIllusts(t, st, fixtures)

	result, err := svc.TopTags(context.Background(), SearchRequest{
		IncludeTags: []string{"rare"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Tags)

	// Include entries come first, flagged.
	assert.Equal(t, "rare", result.Tags[0].Name.Original)
	assert.True(t, result.Tags[0].IsIncludeTag)
	assert.Equal(t, 1, result.Tags[0].Count)

	for _, entry := range result.Tags[1:] {
		assert.False(t, entry.IsIncludeTag, "tag %s", entry.Name.Original)
	}
}

func TestTopTags_NonIncludeLimit(t *testing.T) {
	svc, st := setupSearchTest(t)

	var fixtures []illustFixture
	for id := int64(1); id <= 15; id++ {
		fixtures = append(fixtures, illustFixture{id: id, tags: []string{tagNameFor(id)}})
	}
	seedIllusts(t, st, fixtures)

	result, err := svc.TopTags(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Len(t, result.Tags, topTagLimit)
}

func TestTopTags_UnknownIncludeTag(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
	})

	// An unknown include tag empties the result set; names that resolve to
	// no tag row contribute no forced entry either.
	result, err := svc.TopTags(context.Background(), SearchRequest{
		IncludeTags: []string{"no-such-tag"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Tags)
}

func TestTopTags_IncludeTagWithEmptyResultSet(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}, private: true},
	})

	// The include tag exists, but the scalar filters leave nothing to
	// count. No forced zero-count entry appears for an empty population.
	result, err := svc.TopTags(context.Background(), SearchRequest{
		IncludeTags: []string{"風景"},
		Filters:     store.SearchFilters{Restrict: store.RestrictPublic},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Tags)
}

func TestTopTags_EmptyDatabase(t *testing.T) {
	svc, _ := setupSearchTest(t)

	result, err := svc.TopTags(context.Background(), SearchRequest{})
	require.NoError(t, err)
	assert.Empty(t, result.Tags)
}

func tagNameFor(id int64) string {
	return string(rune('a'+id-1)) + "-tag"
}
