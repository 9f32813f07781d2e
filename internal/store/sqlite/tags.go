package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

// GetTagIDsByNames resolves tag names to their IDs. Names with no matching
// tag row are simply absent from the result; callers decide whether a miss
// is fail-closed (include semantics) or ignorable (exclude semantics).
func (s *Store) GetTagIDsByNames(ctx context.Context, names []string) (map[string]int64, error) {
	type nameID struct {
		name string
		id   int64
	}

	rows, err := store.BatchedQuery(names, func(chunk []string) ([]nameID, error) {
		args := make([]any, len(chunk))
		for i, name := range chunk {
			args[i] = name
		}
		dbRows, err := s.db.QueryContext(ctx,
			`SELECT name, id FROM tags WHERE name IN `+inPlaceholders(len(chunk)), args...)
		if err != nil {
			return nil, fmt.Errorf("query tag ids: %w", err)
		}
		defer dbRows.Close()

		var out []nameID
		for dbRows.Next() {
			var r nameID
			if err := dbRows.Scan(&r.name, &r.id); err != nil {
				return nil, fmt.Errorf("scan tag id: %w", err)
			}
			out = append(out, r)
		}
		return out, dbRows.Err()
	})
	if err != nil {
		return nil, err
	}

	ids := make(map[string]int64, len(rows))
	for _, r := range rows {
		ids[r.name] = r.id
	}
	return ids, nil
}

// GetTagsByIDs fetches tag detail rows for the given IDs, batched.
func (s *Store) GetTagsByIDs(ctx context.Context, ids []int64) ([]domain.Tag, error) {
	return store.BatchedQuery(ids, func(chunk []int64) ([]domain.Tag, error) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT id, name, translated_name FROM tags WHERE id IN `+inPlaceholders(len(chunk)),
			int64Args(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query tags: %w", err)
		}
		defer rows.Close()

		var tags []domain.Tag
		for rows.Next() {
			var (
				t          domain.Tag
				translated sql.NullString
			)
			if err := rows.Scan(&t.ID, &t.Name, &translated); err != nil {
				return nil, fmt.Errorf("scan tag: %w", err)
			}
			t.TranslatedName = stringPtr(translated)
			tags = append(tags, t)
		}
		return tags, rows.Err()
	})
}

// FilterIllustIDsByTag returns the subset of candidates carrying the given
// tag. Membership checks go through the junction table in batches.
func (s *Store) FilterIllustIDsByTag(ctx context.Context, tagID int64, candidates []int64) ([]int64, error) {
	return store.BatchedQuery(candidates, func(chunk []int64) ([]int64, error) {
		args := append([]any{tagID}, int64Args(chunk)...)
		rows, err := s.db.QueryContext(ctx,
			`SELECT illust_id FROM illust_tags WHERE tag_id = ? AND illust_id IN `+inPlaceholders(len(chunk)),
			args...)
		if err != nil {
			return nil, fmt.Errorf("filter illust ids by tag: %w", err)
		}
		defer rows.Close()

		return scanIDs(rows)
	})
}

// ListIllustIDsWithTag returns every illustration ID carrying the given tag.
func (s *Store) ListIllustIDsWithTag(ctx context.Context, tagID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT illust_id FROM illust_tags WHERE tag_id = ?`, tagID)
	if err != nil {
		return nil, fmt.Errorf("list illust ids with tag: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// CountTagsForIllustIDs computes tag frequencies across the given
// illustrations. Grouped counts are taken per batch and accumulated into a
// single map, so batch boundaries never skew totals.
func (s *Store) CountTagsForIllustIDs(ctx context.Context, illustIDs []int64) (map[int64]int, error) {
	type tagCount struct {
		tagID int64
		count int
	}

	rows, err := store.BatchedQuery(illustIDs, func(chunk []int64) ([]tagCount, error) {
		dbRows, err := s.db.QueryContext(ctx, `
			SELECT tag_id, COUNT(illust_id)
			FROM illust_tags
			WHERE illust_id IN `+inPlaceholders(len(chunk))+`
			GROUP BY tag_id`,
			int64Args(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("count tags per batch: %w", err)
		}
		defer dbRows.Close()

		var out []tagCount
		for dbRows.Next() {
			var tc tagCount
			if err := dbRows.Scan(&tc.tagID, &tc.count); err != nil {
				return nil, fmt.Errorf("scan tag count: %w", err)
			}
			out = append(out, tc)
		}
		return out, dbRows.Err()
	})
	if err != nil {
		return nil, err
	}

	counts := make(map[int64]int)
	for _, tc := range rows {
		counts[tc.tagID] += tc.count
	}
	return counts, nil
}

// CountAllTags computes tag frequencies across the entire junction table in
// one grouped query. This is the cheap path when no entity-set scoping is
// needed.
func (s *Store) CountAllTags(ctx context.Context) (map[int64]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_id, COUNT(illust_id) FROM illust_tags GROUP BY tag_id`)
	if err != nil {
		return nil, fmt.Errorf("count all tags: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			tagID int64
			count int
		)
		if err := rows.Scan(&tagID, &count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		counts[tagID] = count
	}
	return counts, rows.Err()
}

// CreateTag inserts a new tag. Returns store.ErrAlreadyExists on a duplicate
// ID or name.
func (s *Store) CreateTag(ctx context.Context, t *domain.Tag) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tags (id, name, translated_name) VALUES (?, ?, ?)`,
		t.ID, t.Name, nullString(t.TranslatedName))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// LinkIllustTag associates an illustration with a tag. Idempotent.
func (s *Store) LinkIllustTag(ctx context.Context, illustID, tagID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO illust_tags (illust_id, tag_id) VALUES (?, ?)`,
		illustID, tagID)
	if err != nil {
		return fmt.Errorf("link illust tag: %w", err)
	}
	return nil
}
