package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

// CreateUser inserts a new user. Returns store.ErrAlreadyExists on a
// duplicate ID.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	profileURLs, err := json.Marshal(u.ProfileImageURLs)
	if err != nil {
		return fmt.Errorf("marshal profile_image_urls: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, account, profile_image_urls, is_followed)
		VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Account, string(profileURLs), nullBool(u.IsFollowed))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}
