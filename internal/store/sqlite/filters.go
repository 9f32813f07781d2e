package sqlite

import (
	"strings"

	"github.com/illustash/illustash-server/internal/domain"
	"github.com/illustash/illustash-server/internal/store"
)

// predicate is one independent scalar condition on the illusts table.
// Predicates are ANDed together; an empty list matches everything.
type predicate struct {
	expr string
	args []any
}

// buildPredicates translates the scalar filters of a search request into SQL
// predicates. Each request field contributes a predicate only when it
// deviates from its no-op default.
func buildPredicates(f store.SearchFilters) []predicate {
	var preds []predicate

	switch f.Restrict {
	case store.RestrictPublic:
		preds = append(preds, predicate{expr: "bookmark_private = 0"})
	case store.RestrictPrivate:
		preds = append(preds, predicate{expr: "bookmark_private = 1"})
	}

	// Integer division mirrors the upstream query: a square image passes
	// both orientation filters.
	switch f.Aspect {
	case store.AspectHorizontal:
		preds = append(preds, predicate{expr: "width / height >= 1"})
	case store.AspectVertical:
		preds = append(preds, predicate{expr: "width / height <= 1"})
	}

	if f.SizerSize > 0 {
		switch f.SizerMode {
		case store.SizerWidth:
			preds = append(preds, predicate{expr: "width >= ?", args: []any{f.SizerSize}})
		case store.SizerHeight:
			preds = append(preds, predicate{expr: "height >= ?", args: []any{f.SizerSize}})
		}
	}

	if f.MinPageCount > 0 {
		preds = append(preds, predicate{expr: "page_count >= ?", args: []any{f.MinPageCount}})
	}
	// Zero or negative means no upper bound.
	if f.MaxPageCount > 0 {
		preds = append(preds, predicate{expr: "page_count <= ?", args: []any{f.MaxPageCount}})
	}

	switch f.AIMode {
	case store.AIModeNonAIOnly:
		preds = append(preds, predicate{expr: "illust_ai_type != ?", args: []any{domain.AITypeGenerated}})
	case store.AIModeAIOnly:
		preds = append(preds, predicate{expr: "illust_ai_type = ?", args: []any{domain.AITypeGenerated}})
	}

	return preds
}

// whereClause renders predicates into a WHERE clause and its bound arguments.
// Returns an empty clause when no predicates apply.
func whereClause(preds []predicate) (string, []any) {
	if len(preds) == 0 {
		return "", nil
	}
	exprs := make([]string, len(preds))
	var args []any
	for i, p := range preds {
		exprs[i] = p.expr
		args = append(args, p.args...)
	}
	return " WHERE " + strings.Join(exprs, " AND "), args
}

// inPlaceholders renders an IN (...) placeholder list for n values.
func inPlaceholders(n int) string {
	if n == 0 {
		return "()"
	}
	return "(?" + strings.Repeat(", ?", n-1) + ")"
}

// int64Args widens an ID slice for use as bound query arguments.
func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
