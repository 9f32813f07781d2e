package sqlite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// makeTestIllust creates a public, non-AI, single-page landscape illust with
// sensible defaults. Tests override fields as needed.
func makeTestIllust(id int64) *domain.Illust {
	return &domain.Illust{
		ID:         id,
		Title:      fmt.Sprintf("illust %d", id),
		Type:       domain.IllustTypeIllust,
		Caption:    "",
		CreateDate: "2024-01-15T12:00:00+09:00",
		PageCount:  1,
		Width:      1920,
		Height:     1080,
		AIType:     domain.AITypeNone,
		ImageURLs: domain.ImageURLs{
			SquareMedium: fmt.Sprintf("https://img.example/%d/square.jpg", id),
			Medium:       fmt.Sprintf("https://img.example/%d/medium.jpg", id),
			Large:        fmt.Sprintf("https://img.example/%d/large.jpg", id),
		},
		MetaSinglePage: domain.MetaSinglePage{
			OriginalImageURL: fmt.Sprintf("https://img.example/%d/original.jpg", id),
		},
		MetaPages: []domain.MetaPage{},
		Tools:     []string{},
	}
}

func makeTestUser(id int64) *domain.User {
	return &domain.User{
		ID:      id,
		Name:    fmt.Sprintf("user %d", id),
		Account: fmt.Sprintf("user%d", id),
		ProfileImageURLs: domain.ImageURLs{
			Medium: fmt.Sprintf("https://img.example/profile/%d.jpg", id),
		},
	}
}

// mustCreateIllust inserts an illust with its author and tags wired through
// the junction tables, creating user and tag rows on first use.
func mustCreateIllust(t *testing.T, s *Store, il *domain.Illust, user *domain.User, tags ...domain.Tag) {
	t.Helper()
	ctx := context.Background()

	if err := s.CreateIllust(ctx, il); err != nil {
		t.Fatalf("CreateIllust(%d): %v", il.ID, err)
	}
	if user != nil {
		if err := s.CreateUser(ctx, user); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			t.Fatalf("CreateUser(%d): %v", user.ID, err)
		}
		if err := s.LinkIllustUser(ctx, il.ID, user.ID); err != nil {
			t.Fatalf("LinkIllustUser: %v", err)
		}
	}
	for _, tag := range tags {
		if err := s.CreateTag(ctx, &tag); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			t.Fatalf("CreateTag(%q): %v", tag.Name, err)
		}
		if err := s.LinkIllustTag(ctx, il.ID, tag.ID); err != nil {
			t.Fatalf("LinkIllustTag: %v", err)
		}
	}
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	// Verify WAL mode is set.
	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	// Verify foreign keys are enabled.
	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	// Verify tables exist.
	tables := []string{"illusts", "users", "tags", "illust_tags", "illust_users"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}
