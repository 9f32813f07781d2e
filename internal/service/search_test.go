package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
	"github.com/illustash/illustash-server/internal/store/sqlite"
)

// setupSearchTest creates a search service over a temporary SQLite store.
func setupSearchTest(t *testing.T) (*SearchService, store.Store) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := sqlite.Open(dbPath, logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return NewSearchService(st, logger), st
}

// illustFixture describes one seeded illustration.
type illustFixture struct {
	id      int64
	userID  int64
	tags    []string
	private bool
	width   int
	height  int
	pages   int
	aiType  int
}

// seedIllusts inserts fixtures, creating user and tag rows on first use.
// Tag IDs are assigned sequentially in first-seen order, like the seed tool
// does on import.
func seedIllusts(t *testing.T, st store.Store, fixtures []illustFixture) {
	t.Helper()
	ctx := context.Background()

	users := make(map[int64]bool)
	tagIDs := make(map[string]int64)

	for _, f := range fixtures {
		il := &domain.Illust{
			ID:         f.id,
			Title:      fmt.Sprintf("illust %d", f.id),
			Type:       domain.IllustTypeIllust,
			CreateDate: "2024-01-15T12:00:00+09:00",
			PageCount:  max(f.pages, 1),
			Width:      f.width,
			Height:     f.height,
			AIType:     f.aiType,
			ImageURLs: domain.ImageURLs{
				Medium: fmt.Sprintf("https://img.example/%d/medium.jpg", f.id),
			},
			MetaPages:       []domain.MetaPage{},
			Tools:           []string{},
			BookmarkPrivate: f.private,
		}
		if il.Width == 0 {
			il.Width = 1920
		}
		if il.Height == 0 {
			il.Height = 1080
		}
		require.NoError(t, st.CreateIllust(ctx, il), "illust %d", f.id)

		if f.userID != 0 {
			if !users[f.userID] {
				require.NoError(t, st.CreateUser(ctx, &domain.User{
					ID:      f.userID,
					Name:    fmt.Sprintf("user %d", f.userID),
					Account: fmt.Sprintf("user%d", f.userID),
				}))
				users[f.userID] = true
			}
			require.NoError(t, st.LinkIllustUser(ctx, f.id, f.userID))
		}

		for _, name := range f.tags {
			tagID, ok := tagIDs[name]
			if !ok {
				tagID = int64(len(tagIDs) + 1)
				require.NoError(t, st.CreateTag(ctx, &domain.Tag{ID: tagID, Name: name}))
				tagIDs[name] = tagID
			}
			require.NoError(t, st.LinkIllustTag(ctx, f.id, tagID))
		}
	}
}

func resultIDs(result *SearchResult) []int64 {
	ids := make([]int64, len(result.Illusts))
	for i, il := range result.Illusts {
		ids[i] = il.ID
	}
	return ids
}

func TestSearch_NoFilters(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, userID: 501, tags: []string{"風景"}},
		{id: 2, userID: 501, tags: []string{"風景", "夜景"}},
		{id: 3, userID: 502, tags: []string{"夜景"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Count)
	assert.Equal(t, []int64{3, 2, 1}, resultIDs(result))
	assert.Equal(t, Paginate{Current: 1, Max: 1}, result.Paginate)

	// Authors and tags are projected onto each illust.
	require.NotNil(t, result.Illusts[0].User)
	assert.Equal(t, int64(502), result.Illusts[0].User.ID)
	assert.Len(t, result.Illusts[2].Tags, 1)
	assert.Equal(t, "風景", result.Illusts[2].Tags[0].Name)
}

func TestSearch_IncludeTagIntersection(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
		{id: 2, tags: []string{"風景", "夜景"}},
		{id: 3, tags: []string{"夜景"}},
		{id: 4, tags: []string{"風景", "夜景"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		IncludeTags: []string{"風景", "夜景"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []int64{4, 2}, resultIDs(result))
}

func TestSearch_ExcludeTagSubtraction(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
		{id: 2, tags: []string{"風景", "夜景"}},
		{id: 3, tags: []string{"夜景"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		ExcludeTags: []string{"夜景"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	assert.Equal(t, []int64{1}, resultIDs(result))
}

func TestSearch_IncludeAndExcludeCombined(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
		{id: 2, tags: []string{"風景", "夜景"}},
		{id: 3, tags: []string{"風景", "モノクロ"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		IncludeTags: []string{"風景"},
		ExcludeTags: []string{"夜景"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []int64{3, 1}, resultIDs(result))
}

func TestSearch_UnknownIncludeTagIsEmpty(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		IncludeTags: []string{"風景", "no-such-tag"},
	})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Illusts)
	assert.Equal(t, Paginate{Current: 1, Max: 0}, result.Paginate)
}

func TestSearch_UnknownExcludeTagIsIgnored(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
		{id: 2, tags: []string{"夜景"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		ExcludeTags: []string{"no-such-tag"},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Count)
	assert.Equal(t, []int64{2, 1}, resultIDs(result))
}

func TestSearch_TagFilterCombinesWithScalarFilters(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景"}},
		{id: 2, tags: []string{"風景"}, private: true},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		IncludeTags: []string{"風景"},
		Filters:     store.SearchFilters{Restrict: store.RestrictPublic},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Count)
	assert.Equal(t, []int64{1}, resultIDs(result))
}

func TestSearch_Pagination(t *testing.T) {
	svc, st := setupSearchTest(t)

	// 35 public landscapes and 5 private portraits across three users.
	var fixtures []illustFixture
	for id := int64(1); id <= 35; id++ {
		fixtures = append(fixtures, illustFixture{
			id: id, userID: 500 + id%3, tags: []string{"風景"},
			width: 1920, height: 1080,
		})
	}
	for id := int64(36); id <= 40; id++ {
		fixtures = append(fixtures, illustFixture{
			id: id, userID: 501, private: true,
			width: 1080, height: 1920,
		})
	}
	seedIllusts(t, st, fixtures)

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:    2,
		Filters: store.SearchFilters{Restrict: store.RestrictPublic},
	})
	require.NoError(t, err)

	assert.Equal(t, 35, result.Count)
	assert.Equal(t, Paginate{Current: 2, Max: 2}, result.Paginate)
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, resultIDs(result))
}

func TestSearch_TagFilteredPagination(t *testing.T) {
	svc, st := setupSearchTest(t)

	// Tag filtering materializes the full ID set and slices it in memory,
	// so page two goes through a different path than the LIMIT/OFFSET one.
	var fixtures []illustFixture
	for id := int64(1); id <= 35; id++ {
		fixtures = append(fixtures, illustFixture{
			id: id, userID: 500 + id%3, tags: []string{"風景"},
			width: 1920, height: 1080,
		})
	}
	for id := int64(36); id <= 40; id++ {
		fixtures = append(fixtures, illustFixture{
			id: id, userID: 501, private: true,
			width: 1080, height: 1920,
		})
	}
	seedIllusts(t, st, fixtures)

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        2,
		IncludeTags: []string{"風景"},
		Filters:     store.SearchFilters{Restrict: store.RestrictPublic},
	})
	require.NoError(t, err)

	assert.Equal(t, 35, result.Count)
	assert.Equal(t, Paginate{Current: 2, Max: 2}, result.Paginate)
	assert.Equal(t, []int64{5, 4, 3, 2, 1}, resultIDs(result))
}

func TestSearch_PageClampAndPastEnd(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{{id: 1}, {id: 2}})

	// Page zero and negatives clamp to page one.
	result, err := svc.Search(context.Background(), SearchRequest{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Paginate.Current)
	assert.Len(t, result.Illusts, 2)

	// A page past the end keeps count and paginate but has no illusts.
	result, err = svc.Search(context.Background(), SearchRequest{Page: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Count)
	assert.Empty(t, result.Illusts)
	assert.Equal(t, Paginate{Current: 5, Max: 1}, result.Paginate)
}

func TestSearch_RelatedTags(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, tags: []string{"風景", "夜景"}},
		{id: 2, tags: []string{"風景", "夜景", "モノクロ"}},
		{id: 3, tags: []string{"風景"}},
	})

	result, err := svc.Search(context.Background(), SearchRequest{
		Page:        1,
		IncludeTags: []string{"風景"},
	})
	require.NoError(t, err)

	// The include tag itself never appears in the suggestions.
	require.Len(t, result.Tags, 2)
	assert.Equal(t, "夜景", result.Tags[0].Name.Original)
	assert.Equal(t, 2, result.Tags[0].Count)
	assert.Equal(t, "モノクロ", result.Tags[1].Name.Original)
	assert.Equal(t, 1, result.Tags[1].Count)
}

func TestSearch_EmptyDatabase(t *testing.T) {
	svc, _ := setupSearchTest(t)

	result, err := svc.Search(context.Background(), SearchRequest{Page: 1})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Count)
	assert.Empty(t, result.Illusts)
	assert.Empty(t, result.Tags)
	assert.Equal(t, Paginate{Current: 1, Max: 0}, result.Paginate)
}

func TestGetIllust(t *testing.T) {
	svc, st := setupSearchTest(t)
	seedIllusts(t, st, []illustFixture{
		{id: 1, userID: 501, tags: []string{"風景", "夜景"}},
	})

	il, err := svc.GetIllust(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), il.ID)
	require.NotNil(t, il.User)
	assert.Equal(t, int64(501), il.User.ID)
	assert.Len(t, il.Tags, 2)

	_, err = svc.GetIllust(context.Background(), 999)
	require.Error(t, err)
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.ErrNotFound.Code, storeErr.HTTPCode())
}
