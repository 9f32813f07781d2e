package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

// illustColumns is the ordered list of columns selected in illust queries.
// Must match the scan order in scanIllust.
const illustColumns = `id, title, type, caption, create_date, page_count, width, height,
	sanity_level, total_view, total_bookmarks, is_bookmarked, visible, x_restrict,
	is_muted, total_comments, illust_ai_type, illust_book_style, restrict,
	bookmark_private, image_urls, meta_single_page, meta_pages, tools, url`

// scanIllust scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Illust, parsing the JSON-serialized blob columns. A malformed blob
// is a data integrity failure and surfaces as an error.
func scanIllust(scanner interface{ Scan(dest ...any) error }) (*domain.Illust, error) {
	var il domain.Illust

	var (
		imageURLs      string
		metaSinglePage string
		metaPages      string
		tools          string
		url            sql.NullString
	)

	err := scanner.Scan(
		&il.ID,
		&il.Title,
		&il.Type,
		&il.Caption,
		&il.CreateDate,
		&il.PageCount,
		&il.Width,
		&il.Height,
		&il.SanityLevel,
		&il.TotalView,
		&il.TotalBookmarks,
		&il.IsBookmarked,
		&il.Visible,
		&il.XRestrict,
		&il.IsMuted,
		&il.TotalComments,
		&il.AIType,
		&il.BookStyle,
		&il.Restrict,
		&il.BookmarkPrivate,
		&imageURLs,
		&metaSinglePage,
		&metaPages,
		&tools,
		&url,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(imageURLs), &il.ImageURLs); err != nil {
		return nil, fmt.Errorf("parse image_urls for illust %d: %w", il.ID, err)
	}
	if err := json.Unmarshal([]byte(metaSinglePage), &il.MetaSinglePage); err != nil {
		return nil, fmt.Errorf("parse meta_single_page for illust %d: %w", il.ID, err)
	}
	if err := json.Unmarshal([]byte(metaPages), &il.MetaPages); err != nil {
		return nil, fmt.Errorf("parse meta_pages for illust %d: %w", il.ID, err)
	}
	if err := json.Unmarshal([]byte(tools), &il.Tools); err != nil {
		return nil, fmt.Errorf("parse tools for illust %d: %w", il.ID, err)
	}
	il.URL = stringPtr(url)

	return &il, nil
}

// CountIllusts returns the number of illustrations matching the scalar filters.
func (s *Store) CountIllusts(ctx context.Context, f store.SearchFilters) (int, error) {
	where, args := whereClause(buildPredicates(f))

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM illusts`+where, args...).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count illusts: %w", err)
	}
	return total, nil
}

// ListIllustIDs returns the IDs of all illustrations matching the scalar
// filters, in no particular order.
func (s *Store) ListIllustIDs(ctx context.Context, f store.SearchFilters) ([]int64, error) {
	where, args := whereClause(buildPredicates(f))

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM illusts`+where, args...)
	if err != nil {
		return nil, fmt.Errorf("list illust ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// ListIllustIDsPage returns one page of scalar-filtered illustration IDs
// ordered by id descending (IDs are assigned monotonically upstream, so this
// is newest-first).
func (s *Store) ListIllustIDsPage(ctx context.Context, f store.SearchFilters, limit, offset int) ([]int64, error) {
	where, args := whereClause(buildPredicates(f))
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM illusts`+where+` ORDER BY id DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list illust ids page: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// GetIllustsByIDs fetches full illustration rows for the given IDs, ordered
// by id descending. Lookups are batched to stay under the parameter limit.
func (s *Store) GetIllustsByIDs(ctx context.Context, ids []int64) ([]*domain.Illust, error) {
	return store.BatchedQuery(ids, func(chunk []int64) ([]*domain.Illust, error) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+illustColumns+` FROM illusts WHERE id IN `+inPlaceholders(len(chunk))+` ORDER BY id DESC`,
			int64Args(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query illusts: %w", err)
		}
		defer rows.Close()

		var illusts []*domain.Illust
		for rows.Next() {
			il, err := scanIllust(rows)
			if err != nil {
				return nil, err
			}
			illusts = append(illusts, il)
		}
		return illusts, rows.Err()
	})
}

// GetAuthorsByIllustIDs returns the uploader of each given illustration,
// keyed by illustration ID, via the illust_users junction.
func (s *Store) GetAuthorsByIllustIDs(ctx context.Context, illustIDs []int64) (map[int64]*domain.User, error) {
	type authorRow struct {
		illustID int64
		user     *domain.User
	}

	rows, err := store.BatchedQuery(illustIDs, func(chunk []int64) ([]authorRow, error) {
		dbRows, err := s.db.QueryContext(ctx, `
			SELECT iu.illust_id, u.id, u.name, u.account, u.profile_image_urls, u.is_followed
			FROM illust_users iu
			INNER JOIN users u ON iu.user_id = u.id
			WHERE iu.illust_id IN `+inPlaceholders(len(chunk)),
			int64Args(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query illust authors: %w", err)
		}
		defer dbRows.Close()

		var out []authorRow
		for dbRows.Next() {
			var (
				r           authorRow
				u           domain.User
				profileURLs string
				isFollowed  sql.NullBool
			)
			if err := dbRows.Scan(&r.illustID, &u.ID, &u.Name, &u.Account, &profileURLs, &isFollowed); err != nil {
				return nil, fmt.Errorf("scan illust author: %w", err)
			}
			if err := json.Unmarshal([]byte(profileURLs), &u.ProfileImageURLs); err != nil {
				return nil, fmt.Errorf("parse profile_image_urls for user %d: %w", u.ID, err)
			}
			u.IsFollowed = boolPtr(isFollowed)
			r.user = &u
			out = append(out, r)
		}
		return out, dbRows.Err()
	})
	if err != nil {
		return nil, err
	}

	authors := make(map[int64]*domain.User, len(rows))
	for _, r := range rows {
		authors[r.illustID] = r.user
	}
	return authors, nil
}

// GetTagsByIllustIDs returns every (illustration, tag) association for the
// given illustrations, with tag details joined in.
func (s *Store) GetTagsByIllustIDs(ctx context.Context, illustIDs []int64) ([]store.TagAssociation, error) {
	return store.BatchedQuery(illustIDs, func(chunk []int64) ([]store.TagAssociation, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT it.illust_id, t.id, t.name, t.translated_name
			FROM illust_tags it
			INNER JOIN tags t ON it.tag_id = t.id
			WHERE it.illust_id IN `+inPlaceholders(len(chunk)),
			int64Args(chunk)...)
		if err != nil {
			return nil, fmt.Errorf("query illust tags: %w", err)
		}
		defer rows.Close()

		var out []store.TagAssociation
		for rows.Next() {
			var (
				assoc      store.TagAssociation
				translated sql.NullString
			)
			if err := rows.Scan(&assoc.IllustID, &assoc.Tag.ID, &assoc.Tag.Name, &translated); err != nil {
				return nil, fmt.Errorf("scan illust tag: %w", err)
			}
			assoc.Tag.TranslatedName = stringPtr(translated)
			out = append(out, assoc)
		}
		return out, rows.Err()
	})
}

// CreateIllust inserts a new illustration row. The JSON blob fields are
// serialized from their parsed forms. Returns store.ErrAlreadyExists on a
// duplicate ID.
func (s *Store) CreateIllust(ctx context.Context, il *domain.Illust) error {
	imageURLs, err := json.Marshal(il.ImageURLs)
	if err != nil {
		return fmt.Errorf("marshal image_urls: %w", err)
	}
	metaSinglePage, err := json.Marshal(il.MetaSinglePage)
	if err != nil {
		return fmt.Errorf("marshal meta_single_page: %w", err)
	}
	metaPages, err := json.Marshal(il.MetaPages)
	if err != nil {
		return fmt.Errorf("marshal meta_pages: %w", err)
	}
	tools, err := json.Marshal(il.Tools)
	if err != nil {
		return fmt.Errorf("marshal tools: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO illusts (
			id, title, type, caption, create_date, page_count, width, height,
			sanity_level, total_view, total_bookmarks, is_bookmarked, visible,
			x_restrict, is_muted, total_comments, illust_ai_type,
			illust_book_style, restrict, bookmark_private, image_urls,
			meta_single_page, meta_pages, tools, url
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		il.ID,
		il.Title,
		il.Type,
		il.Caption,
		il.CreateDate,
		il.PageCount,
		il.Width,
		il.Height,
		il.SanityLevel,
		il.TotalView,
		il.TotalBookmarks,
		il.IsBookmarked,
		il.Visible,
		il.XRestrict,
		il.IsMuted,
		il.TotalComments,
		il.AIType,
		il.BookStyle,
		il.Restrict,
		il.BookmarkPrivate,
		string(imageURLs),
		string(metaSinglePage),
		string(metaPages),
		string(tools),
		nullString(il.URL),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// LinkIllustUser records the uploader of an illustration. Idempotent.
func (s *Store) LinkIllustUser(ctx context.Context, illustID, userID int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO illust_users (illust_id, user_id) VALUES (?, ?)`,
		illustID, userID)
	if err != nil {
		return fmt.Errorf("link illust user: %w", err)
	}
	return nil
}

// scanIDs drains a single-column int64 result set.
func scanIDs(rows *sql.Rows) ([]int64, error) {
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
