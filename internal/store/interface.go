// Package store defines the persistence interface for the Illustash server.
package store

import (
	"context"

	"github.com/illustash/illustash-server/internal/domain"
)

// TagAssociation is one row of the illust_tags junction joined with its tag.
type TagAssociation struct {
	IllustID int64
	Tag      domain.Tag
}

// Store defines the interface for all persistence operations.
// The search core is read-only; the write path exists for the seed tool and
// for test fixtures, since the live data set is populated out of band.
type Store interface {
	// Lifecycle
	Close() error

	// Illustrations (read side)
	CountIllusts(ctx context.Context, f SearchFilters) (int, error)
	ListIllustIDs(ctx context.Context, f SearchFilters) ([]int64, error)
	ListIllustIDsPage(ctx context.Context, f SearchFilters, limit, offset int) ([]int64, error)
	GetIllustsByIDs(ctx context.Context, ids []int64) ([]*domain.Illust, error)
	GetAuthorsByIllustIDs(ctx context.Context, illustIDs []int64) (map[int64]*domain.User, error)
	GetTagsByIllustIDs(ctx context.Context, illustIDs []int64) ([]TagAssociation, error)

	// Tags (read side)
	GetTagIDsByNames(ctx context.Context, names []string) (map[string]int64, error)
	GetTagsByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error)
	FilterIllustIDsByTag(ctx context.Context, tagID int64, candidates []int64) ([]int64, error)
	ListIllustIDsWithTag(ctx context.Context, tagID int64) ([]int64, error)
	CountTagsForIllustIDs(ctx context.Context, illustIDs []int64) (map[int64]int, error)
	CountAllTags(ctx context.Context) (map[int64]int, error)

	// Write path (seed tool and tests only)
	CreateIllust(ctx context.Context, illust *domain.Illust) error
	CreateUser(ctx context.Context, user *domain.User) error
	CreateTag(ctx context.Context, tag *domain.Tag) error
	LinkIllustUser(ctx context.Context, illustID, userID int64) error
	LinkIllustTag(ctx context.Context, illustID, tagID int64) error
}
