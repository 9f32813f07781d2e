// Package service contains the search, aggregation and tag lookup logic of
// the Illustash server.
package service

import (
	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

// pageSize is the fixed number of illustrations per result page.
const pageSize = 30

// defaultTagSearchLimit caps tag search responses when no limit is given.
const defaultTagSearchLimit = 20

// relatedTagLimit is the number of contextual tag suggestions attached to a
// search result page.
const relatedTagLimit = 10

// topTagLimit is the number of non-include tags returned by TopTags.
const topTagLimit = 10

// SearchRequest is a fully normalized search request. Tag fields are always
// slices here; the string-or-array leniency of the query string is resolved
// at the API boundary. A Page of zero or below means page 1.
type SearchRequest struct {
	Page        int
	IncludeTags []string
	ExcludeTags []string
	Filters     store.SearchFilters
}

// TagSearchRequest is a normalized tag autocomplete request.
type TagSearchRequest struct {
	Query               string
	SelectedTags        []string
	AlreadySelectedTags []string
	Limit               int
}

// TagName pairs a tag's original name with its optional translation.
type TagName struct {
	Original   string  `json:"original"`
	Translated *string `json:"translated"`
}

// TagEntry is one counted tag in a search or aggregation response.
// IsIncludeTag marks tags that were force-included because the request
// already selected them.
type TagEntry struct {
	Name         TagName `json:"name"`
	Count        int     `json:"count"`
	IsIncludeTag bool    `json:"isIncludeTag,omitempty"`
}

// Paginate describes the current position within a paged result.
type Paginate struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// SearchResult is the response of an illustration search.
type SearchResult struct {
	Illusts  []*domain.Illust `json:"illusts"`
	Count    int              `json:"count"`
	Tags     []TagEntry       `json:"tags"`
	Paginate Paginate         `json:"paginate"`
}

// TagSearchResult is the response of the top-tags and tag-search operations.
type TagSearchResult struct {
	Tags []TagEntry `json:"tags"`
}

// normalizeTags drops empty strings, mirroring the query-string convention
// that an empty value means "no value".
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
