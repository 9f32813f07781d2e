package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/illustash/illustash-server/internal/domain"
)

func (s *Server) registerIllustRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getIllust",
		Method:      http.MethodGet,
		Path:        "/api/v1/illusts/{id}",
		Summary:     "Get illust",
		Description: "Returns a single illust by ID with its author and tags",
		Tags:        []string{"Illusts"},
	}, s.handleGetIllust)
}

// GetIllustInput contains parameters for getting an illust.
type GetIllustInput struct {
	ID int64 `path:"id" doc:"Illust ID"`
}

// IllustOutput wraps the illust response for Huma.
type IllustOutput struct {
	Body domain.Illust
}

func (s *Server) handleGetIllust(ctx context.Context, input *GetIllustInput) (*IllustOutput, error) {
	illust, err := s.search.GetIllust(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &IllustOutput{Body: *illust}, nil
}
