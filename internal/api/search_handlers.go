package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/illustash/illustash-server/internal/service"
	"github.com/illustash/illustash-server/internal/store"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchIllusts",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search illusts",
		Description: "Returns one page of illusts matching the tag and scalar filters, with related tag suggestions",
		Tags:        []string{"Search"},
	}, s.handleSearchIllusts)
}

// SearchFilterParams are the scalar and tag filter query parameters shared by
// the search and top-tags operations. Numeric fields are declared as strings
// and parsed leniently: a malformed value falls back to its default instead
// of rejecting the request.
type SearchFilterParams struct {
	IncludeTags      []string `query:"includeTags" doc:"Tags every result must carry"`
	ExcludeTags      []string `query:"excludeTags" doc:"Tags no result may carry"`
	Restrict         string   `query:"restrict" doc:"Bookmark visibility: all, public, or private"`
	Aspect           string   `query:"aspect" doc:"Orientation: all, horizontal, or vertical"`
	SizerMode        string   `query:"sizerMode" doc:"Dimension for the minimum-size filter: none, width, or height"`
	SizerSize        string   `query:"sizerSize" doc:"Minimum size in pixels for the sizer dimension"`
	MinimumPageCount string   `query:"minimumPageCount" doc:"Minimum page count"`
	MaximumPageCount string   `query:"maximumPageCount" doc:"Maximum page count, 0 for unbounded"`
	AIMode           string   `query:"aiMode" doc:"AI filter: all, non-ai-only, or ai-only"`
}

// SearchInput contains parameters for the search operation.
type SearchInput struct {
	Page string `query:"page" doc:"Page number, starting at 1"`
	SearchFilterParams
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body service.SearchResult
}

func (s *Server) handleSearchIllusts(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	req := searchRequest(input.Page, input.SearchFilterParams)

	result, err := s.search.Search(ctx, req)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		return nil, err
	}
	return &SearchOutput{Body: *result}, nil
}

// searchRequest normalizes the raw query parameters into a service request.
func searchRequest(page string, p SearchFilterParams) service.SearchRequest {
	return service.SearchRequest{
		Page:        parseIntDefault(page, 1),
		IncludeTags: p.IncludeTags,
		ExcludeTags: p.ExcludeTags,
		Filters: store.SearchFilters{
			Restrict:     store.Restrict(p.Restrict),
			Aspect:       store.Aspect(p.Aspect),
			SizerMode:    store.SizerMode(p.SizerMode),
			SizerSize:    parseIntDefault(p.SizerSize, 0),
			MinPageCount: parseIntDefault(p.MinimumPageCount, 0),
			MaxPageCount: parseIntDefault(p.MaximumPageCount, 0),
			AIMode:       store.AIMode(p.AIMode),
		},
	}
}

// parseIntDefault parses an integer query value, falling back to def on
// empty or malformed input.
func parseIntDefault(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}
