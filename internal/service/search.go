package service

import (
	"context"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

// SearchService orchestrates faceted illustration search, tag aggregation
// and tag autocomplete over the store. It holds no per-request state; every
// call builds fresh local sets and maps.
type SearchService struct {
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(st store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		store:  st,
		logger: logger,
	}
}

// Search runs a faceted search and returns one page of fully projected
// illustrations plus the top related tags for that page.
func (s *SearchService) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}

	include := normalizeTags(req.IncludeTags)
	exclude := normalizeTags(req.ExcludeTags)

	targetIDs, restricted, err := s.resolveTagFilters(ctx, include, exclude, req.Filters)
	if err != nil {
		return nil, err
	}
	if restricted && len(targetIDs) == 0 {
		return emptySearchResult(page), nil
	}

	var total int
	if restricted {
		total = len(targetIDs)
	} else {
		total, err = s.store.CountIllusts(ctx, req.Filters)
		if err != nil {
			return nil, err
		}
	}
	if total == 0 {
		return emptySearchResult(page), nil
	}

	offset := (page - 1) * pageSize

	// With a tag filter the candidate set is already materialized, so the
	// page is sliced in memory; otherwise the store paginates.
	var pageIDs []int64
	if restricted {
		sort.Slice(targetIDs, func(i, j int) bool { return targetIDs[i] > targetIDs[j] })
		if offset < len(targetIDs) {
			end := offset + pageSize
			if end > len(targetIDs) {
				end = len(targetIDs)
			}
			pageIDs = targetIDs[offset:end]
		}
	} else {
		pageIDs, err = s.store.ListIllustIDsPage(ctx, req.Filters, pageSize, offset)
		if err != nil {
			return nil, err
		}
	}

	maxPage := (total + pageSize - 1) / pageSize
	if len(pageIDs) == 0 {
		// Page past the end: empty page, count and paginate still filled in.
		return &SearchResult{
			Illusts:  []*domain.Illust{},
			Count:    total,
			Tags:     []TagEntry{},
			Paginate: Paginate{Current: page, Max: maxPage},
		}, nil
	}

	illusts, err := s.store.GetIllustsByIDs(ctx, pageIDs)
	if err != nil {
		return nil, err
	}

	// Author and tag joins touch disjoint junction tables; fetch them
	// concurrently.
	var (
		authors map[int64]*domain.User
		assocs  []store.TagAssociation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		authors, err = s.store.GetAuthorsByIllustIDs(gctx, pageIDs)
		return err
	})
	g.Go(func() error {
		var err error
		assocs, err = s.store.GetTagsByIllustIDs(gctx, pageIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tagsByIllust := make(map[int64][]domain.Tag)
	for _, a := range assocs {
		tagsByIllust[a.IllustID] = append(tagsByIllust[a.IllustID], a.Tag)
	}
	for _, il := range illusts {
		il.User = authors[il.ID]
		il.Tags = tagsByIllust[il.ID]
	}

	return &SearchResult{
		Illusts:  illusts,
		Count:    total,
		Tags:     relatedTags(assocs, include, exclude),
		Paginate: Paginate{Current: page, Max: maxPage},
	}, nil
}

// GetIllust fetches one fully projected illustration by ID.
// Returns store.ErrNotFound when it does not exist.
func (s *SearchService) GetIllust(ctx context.Context, id int64) (*domain.Illust, error) {
	illusts, err := s.store.GetIllustsByIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	if len(illusts) == 0 {
		return nil, store.ErrNotFound.WithMessage("illust not found")
	}
	il := illusts[0]

	authors, err := s.store.GetAuthorsByIllustIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	assocs, err := s.store.GetTagsByIllustIDs(ctx, []int64{id})
	if err != nil {
		return nil, err
	}

	il.User = authors[id]
	il.Tags = make([]domain.Tag, 0, len(assocs))
	for _, a := range assocs {
		il.Tags = append(il.Tags, a.Tag)
	}
	return il, nil
}

// relatedTags counts tag occurrences across the current page, drops tags the
// request already includes or excludes, and returns the most frequent ones
// as contextual suggestions.
func relatedTags(assocs []store.TagAssociation, include, exclude []string) []TagEntry {
	active := make(map[string]struct{}, len(include)+len(exclude))
	for _, name := range include {
		active[name] = struct{}{}
	}
	for _, name := range exclude {
		active[name] = struct{}{}
	}

	type counted struct {
		tag   domain.Tag
		count int
	}
	counts := make(map[string]*counted)
	for _, a := range assocs {
		if _, ok := active[a.Tag.Name]; ok {
			continue
		}
		if c, ok := counts[a.Tag.Name]; ok {
			c.count++
		} else {
			counts[a.Tag.Name] = &counted{tag: a.Tag, count: 1}
		}
	}

	entries := make([]TagEntry, 0, len(counts))
	for _, c := range counts {
		entries = append(entries, TagEntry{
			Name:  TagName{Original: c.tag.Name, Translated: c.tag.TranslatedName},
			Count: c.count,
		})
	}
	sortTagEntries(entries)
	if len(entries) > relatedTagLimit {
		entries = entries[:relatedTagLimit]
	}
	return entries
}

// sortTagEntries orders entries by descending count, breaking ties by
// original name so repeated runs yield identical output.
func sortTagEntries(entries []TagEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name.Original < entries[j].Name.Original
	})
}

func emptySearchResult(page int) *SearchResult {
	return &SearchResult{
		Illusts:  []*domain.Illust{},
		Count:    0,
		Tags:     []TagEntry{},
		Paginate: Paginate{Current: page, Max: 0},
	}
}
