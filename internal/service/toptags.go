package service

import "context"

// TopTags aggregates tag frequencies across the entire filtered result set,
// not just one page. It returns the most frequent tags, with every include
// tag of the request force-included and flagged, so the client can render
// active selections even when they fall outside the top ranks.
func (s *SearchService) TopTags(ctx context.Context, req SearchRequest) (*TagSearchResult, error) {
	include := normalizeTags(req.IncludeTags)
	exclude := normalizeTags(req.ExcludeTags)

	targetIDs, restricted, err := s.resolveTagFilters(ctx, include, exclude, req.Filters)
	if err != nil {
		return nil, err
	}
	// An empty filtered population yields no tags at all, before any
	// include tag gets force-included.
	if restricted && len(targetIDs) == 0 {
		return &TagSearchResult{Tags: []TagEntry{}}, nil
	}
	if !restricted {
		targetIDs, err = s.store.ListIllustIDs(ctx, req.Filters)
		if err != nil {
			return nil, err
		}
	}

	counts := make(map[int64]int)
	if len(targetIDs) > 0 {
		counts, err = s.store.CountTagsForIllustIDs(ctx, targetIDs)
		if err != nil {
			return nil, err
		}
	}

	// Include tags always appear in the output, at count zero if need be.
	// Names that resolve to no tag row are dropped silently.
	includeIDs := make(map[int64]struct{})
	if len(include) > 0 {
		resolved, err := s.store.GetTagIDsByNames(ctx, include)
		if err != nil {
			return nil, err
		}
		for _, id := range resolved {
			includeIDs[id] = struct{}{}
			if _, ok := counts[id]; !ok {
				counts[id] = 0
			}
		}
	}

	allIDs := make([]int64, 0, len(counts))
	for id := range counts {
		allIDs = append(allIDs, id)
	}
	tags, err := s.store.GetTagsByIDs(ctx, allIDs)
	if err != nil {
		return nil, err
	}

	var includeEntries, others []TagEntry
	for _, tag := range tags {
		entry := TagEntry{
			Name:  TagName{Original: tag.Name, Translated: tag.TranslatedName},
			Count: counts[tag.ID],
		}
		if _, ok := includeIDs[tag.ID]; ok {
			entry.IsIncludeTag = true
			includeEntries = append(includeEntries, entry)
		} else {
			others = append(others, entry)
		}
	}

	sortTagEntries(includeEntries)
	sortTagEntries(others)
	if len(others) > topTagLimit {
		others = others[:topTagLimit]
	}

	entries := make([]TagEntry, 0, len(includeEntries)+len(others))
	entries = append(entries, includeEntries...)
	entries = append(entries, others...)
	return &TagSearchResult{Tags: entries}, nil
}

// resolveSelectedScope materializes the set of illustration IDs carrying all
// selected tags. Unlike the search path there are no scalar filters here;
// the scope is the raw intersection of the tags' member sets. The second
// return is false when any selected tag is unknown, which can never match.
func (s *SearchService) resolveSelectedScope(ctx context.Context, selected []string) ([]int64, bool, error) {
	selected = uniqueStrings(selected)
	tagIDs, err := s.store.GetTagIDsByNames(ctx, selected)
	if err != nil {
		return nil, false, err
	}
	if len(tagIDs) < len(selected) {
		return nil, false, nil
	}

	memberSets := make([][]int64, 0, len(selected))
	for _, name := range selected {
		members, err := s.store.ListIllustIDsWithTag(ctx, tagIDs[name])
		if err != nil {
			return nil, false, err
		}
		if len(members) == 0 {
			return nil, false, nil
		}
		memberSets = append(memberSets, members)
	}

	scope := intersect(memberSets)
	if len(scope) == 0 {
		return nil, false, nil
	}
	return scope, true, nil
}
