package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/illustash/illustash-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTopTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/top",
		Summary:     "Get top tags",
		Description: "Returns the most frequent tags across the filtered result set, with include tags force-included",
		Tags:        []string{"Tags"},
	}, s.handleGetTopTags)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/search",
		Summary:     "Search tags",
		Description: "Tag autocomplete, optionally scoped to tags co-occurring with a current selection",
		Tags:        []string{"Tags"},
	}, s.handleSearchTags)
}

// TopTagsInput contains parameters for the top-tags operation.
type TopTagsInput struct {
	SearchFilterParams
}

// TagsOutput wraps a tag list response for Huma.
type TagsOutput struct {
	Body service.TagSearchResult
}

func (s *Server) handleGetTopTags(ctx context.Context, input *TopTagsInput) (*TagsOutput, error) {
	req := searchRequest("", input.SearchFilterParams)

	result, err := s.search.TopTags(ctx, req)
	if err != nil {
		s.logger.Error("top tags failed", "error", err)
		return nil, err
	}
	return &TagsOutput{Body: *result}, nil
}

// TagSearchInput contains parameters for tag autocomplete.
type TagSearchInput struct {
	Query               string   `query:"query" doc:"Substring to match against tag names and translations"`
	SelectedTags        []string `query:"selectedTags" doc:"Scope candidates to tags co-occurring with these"`
	AlreadySelectedTags []string `query:"alreadySelectedTags" doc:"Tags to exclude from the results"`
	Limit               string   `query:"limit" doc:"Maximum number of tags to return (default 20)"`
}

// TagSearchOutput wraps the tag autocomplete response for Huma.
// Results change only when the library is re-imported, so clients may cache
// briefly.
type TagSearchOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         service.TagSearchResult
}

func (s *Server) handleSearchTags(ctx context.Context, input *TagSearchInput) (*TagSearchOutput, error) {
	result, err := s.search.SearchTags(ctx, service.TagSearchRequest{
		Query:               input.Query,
		SelectedTags:        input.SelectedTags,
		AlreadySelectedTags: input.AlreadySelectedTags,
		Limit:               parseIntDefault(input.Limit, 0),
	})
	if err != nil {
		s.logger.Error("tag search failed", "error", err)
		return nil, err
	}
	return &TagSearchOutput{
		CacheControl: "max-age=60",
		Body:         *result,
	}, nil
}
