// Package main provides the seed tool that imports a bookmarks JSON export
// into the Illustash SQLite database.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/logger"
	"github.com/illustash/illustash-server/internal/store"
	"github.com/illustash/illustash-server/internal/store/sqlite"
)

// progressInterval is how many illusts to import between progress log lines.
const progressInterval = 100

func main() {
	inputPath := flag.String("input", "bookmarks.json", "Path to the bookmarks JSON export")
	dbPath := flag.String("db-path", "", "Path to the SQLite database file")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(logger.Config{
		Level: logger.ParseLevel(*logLevel),
	})

	if *dbPath == "" {
		log.Fatal("db-path is required")
	}

	if err := run(*inputPath, *dbPath, log); err != nil {
		log.Fatal("Import failed", "error", err)
	}
}

func run(inputPath, dbPath string, log *logger.Logger) error {
	data, err := os.ReadFile(inputPath) //#nosec G304 -- Input path from user input is expected
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	// The export embeds each illust's author and tags inline.
	var illusts []*domain.Illust
	if err := json.Unmarshal(data, &illusts); err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	log.Info("Loaded bookmarks export", "path", inputPath, "illusts", len(illusts))

	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	// Users are keyed by their upstream ID. Tags have no upstream ID, so
	// they get sequential IDs in first-seen order.
	users := make(map[int64]*domain.User)
	tagIDs := make(map[string]int64)
	var tags []*domain.Tag

	for _, il := range illusts {
		if il.User != nil {
			if _, ok := users[il.User.ID]; !ok {
				users[il.User.ID] = il.User
			}
		}
		for i := range il.Tags {
			tag := il.Tags[i]
			if _, ok := tagIDs[tag.Name]; ok {
				continue
			}
			id := int64(len(tags) + 1)
			tagIDs[tag.Name] = id
			tags = append(tags, &domain.Tag{
				ID:             id,
				Name:           tag.Name,
				TranslatedName: tag.TranslatedName,
			})
		}
	}

	log.Info("Importing users", "count", len(users))
	for _, user := range users {
		if err := st.CreateUser(ctx, user); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("insert user %d: %w", user.ID, err)
		}
	}

	log.Info("Importing tags", "count", len(tags))
	for _, tag := range tags {
		if err := st.CreateTag(ctx, tag); err != nil && !errors.Is(err, store.ErrAlreadyExists) {
			return fmt.Errorf("insert tag %q: %w", tag.Name, err)
		}
	}

	log.Info("Importing illusts", "count", len(illusts))
	imported := 0
	skipped := 0
	for i, il := range illusts {
		if err := importIllust(ctx, st, il, tagIDs); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				skipped++
			} else {
				return fmt.Errorf("insert illust %d: %w", il.ID, err)
			}
		} else {
			imported++
		}

		if (i+1)%progressInterval == 0 || i+1 == len(illusts) {
			log.Info("Import progress", "done", i+1, "total", len(illusts))
		}
	}

	log.Info("Import completed", "imported", imported, "skipped", skipped)
	return nil
}

// importIllust inserts one illust row and its author and tag links. The
// embedded author and tags are stripped before insertion since they live in
// their own tables.
func importIllust(ctx context.Context, st *sqlite.Store, il *domain.Illust, tagIDs map[string]int64) error {
	user := il.User
	tags := il.Tags
	il.User = nil
	il.Tags = nil

	if err := st.CreateIllust(ctx, il); err != nil {
		return err
	}

	if user != nil {
		if err := st.LinkIllustUser(ctx, il.ID, user.ID); err != nil {
			return err
		}
	}
	for _, tag := range tags {
		tagID, ok := tagIDs[tag.Name]
		if !ok {
			continue
		}
		if err := st.LinkIllustTag(ctx, il.ID, tagID); err != nil {
			return err
		}
	}
	return nil
}
