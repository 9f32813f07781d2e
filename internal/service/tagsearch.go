package service

import (
	"context"
	"strings"
)

// SearchTags implements tag autocomplete. When selected tags are given, the
// candidate universe narrows to tags co-occurring with all of them and
// counts reflect that scope; otherwise counts span the whole corpus. The
// query matches case-insensitively against both the original name and the
// translation. Tags the client already selected are excluded, duplicates by
// name keep the higher count, and the result is truncated to the limit.
func (s *SearchService) SearchTags(ctx context.Context, req TagSearchRequest) (*TagSearchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultTagSearchLimit
	}

	selected := normalizeTags(req.SelectedTags)
	already := normalizeTags(req.AlreadySelectedTags)

	var (
		counts map[int64]int
		err    error
	)
	if len(selected) > 0 {
		scope, ok, scopeErr := s.resolveSelectedScope(ctx, selected)
		if scopeErr != nil {
			return nil, scopeErr
		}
		if !ok {
			return &TagSearchResult{Tags: []TagEntry{}}, nil
		}
		counts, err = s.store.CountTagsForIllustIDs(ctx, scope)
	} else {
		counts, err = s.store.CountAllTags(ctx)
	}
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	tags, err := s.store.GetTagsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	skip := make(map[string]struct{}, len(selected)+len(already))
	for _, name := range selected {
		skip[name] = struct{}{}
	}
	for _, name := range already {
		skip[name] = struct{}{}
	}

	query := strings.ToLower(req.Query)

	entries := make([]TagEntry, 0, len(tags))
	for _, tag := range tags {
		if _, ok := skip[tag.Name]; ok {
			continue
		}
		if query != "" && !tagMatches(tag.Name, tag.TranslatedName, query) {
			continue
		}
		entries = append(entries, TagEntry{
			Name:  TagName{Original: tag.Name, Translated: tag.TranslatedName},
			Count: counts[tag.ID],
		})
	}

	entries = dedupeTagEntries(entries)
	sortTagEntries(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return &TagSearchResult{Tags: entries}, nil
}

// dedupeTagEntries collapses entries sharing an original name, keeping the
// one with the higher count.
func dedupeTagEntries(entries []TagEntry) []TagEntry {
	best := make(map[string]TagEntry, len(entries))
	for _, entry := range entries {
		if prev, ok := best[entry.Name.Original]; !ok || entry.Count > prev.Count {
			best[entry.Name.Original] = entry
		}
	}

	out := make([]TagEntry, 0, len(best))
	for _, entry := range best {
		out = append(out, entry)
	}
	return out
}

// tagMatches reports whether the lowercased query is a substring of the
// tag's original name or its translation.
func tagMatches(name string, translated *string, query string) bool {
	if strings.Contains(strings.ToLower(name), query) {
		return true
	}
	return translated != nil && strings.Contains(strings.ToLower(*translated), query)
}
