package service

import (
	"context"

	"github.com/illustash/illustash-server/internal/store"
)

// resolveTagFilters turns include/exclude tag name lists into a concrete set
// of illustration IDs. restricted is false when neither list constrains the
// search, in which case the caller should rely on the scalar filters alone.
//
// Include semantics are fail-closed: an unknown include tag can never be
// satisfied, so the result is immediately empty. Unknown exclude tags are
// silently ignored; they simply exclude nothing.
func (s *SearchService) resolveTagFilters(ctx context.Context, include, exclude []string, f store.SearchFilters) (ids []int64, restricted bool, err error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, false, nil
	}

	var (
		working     []int64
		haveWorking bool
	)

	if len(include) > 0 {
		include = uniqueStrings(include)
		tagIDs, err := s.store.GetTagIDsByNames(ctx, include)
		if err != nil {
			return nil, false, err
		}
		if len(tagIDs) < len(include) {
			return []int64{}, true, nil
		}

		base, err := s.store.ListIllustIDs(ctx, f)
		if err != nil {
			return nil, false, err
		}
		if len(base) == 0 {
			return []int64{}, true, nil
		}

		// One membership set per include tag, each scoped to the
		// base-filtered candidates.
		memberSets := make([][]int64, 0, len(include))
		for _, name := range include {
			members, err := s.store.FilterIllustIDsByTag(ctx, tagIDs[name], base)
			if err != nil {
				return nil, false, err
			}
			if len(members) == 0 {
				return []int64{}, true, nil
			}
			memberSets = append(memberSets, members)
		}

		working = intersect(memberSets)
		haveWorking = true
		if len(working) == 0 {
			return []int64{}, true, nil
		}
	}

	if len(exclude) > 0 {
		tagIDs, err := s.store.GetTagIDsByNames(ctx, uniqueStrings(exclude))
		if err != nil {
			return nil, false, err
		}
		if len(tagIDs) > 0 {
			scope := working
			if !haveWorking {
				scope, err = s.store.ListIllustIDs(ctx, f)
				if err != nil {
					return nil, false, err
				}
				if len(scope) == 0 {
					return []int64{}, true, nil
				}
			}

			excluded := make(map[int64]struct{})
			for _, tagID := range tagIDs {
				members, err := s.store.FilterIllustIDsByTag(ctx, tagID, scope)
				if err != nil {
					return nil, false, err
				}
				for _, id := range members {
					excluded[id] = struct{}{}
				}
			}

			kept := make([]int64, 0, len(scope))
			for _, id := range scope {
				if _, ok := excluded[id]; !ok {
					kept = append(kept, id)
				}
			}
			working = kept
			haveWorking = true
		}
		// All exclude names unknown and no include tags: nothing is
		// excluded and the search stays unrestricted.
	}

	if !haveWorking {
		return nil, false, nil
	}
	return working, true, nil
}

// intersect computes the intersection of the given ID sets, iterating the
// smallest set and probing the others so large sets are only hashed, never
// walked.
func intersect(sets [][]int64) []int64 {
	if len(sets) == 0 {
		return nil
	}
	if len(sets) == 1 {
		return sets[0]
	}

	smallest := 0
	for i, set := range sets {
		if len(set) < len(sets[smallest]) {
			smallest = i
		}
	}

	probes := make([]map[int64]struct{}, 0, len(sets)-1)
	for i, set := range sets {
		if i == smallest {
			continue
		}
		m := make(map[int64]struct{}, len(set))
		for _, id := range set {
			m[id] = struct{}{}
		}
		probes = append(probes, m)
	}

	var out []int64
	for _, id := range sets[smallest] {
		in := true
		for _, probe := range probes {
			if _, ok := probe[id]; !ok {
				in = false
				break
			}
		}
		if in {
			out = append(out, id)
		}
	}
	return out
}

// uniqueStrings removes duplicates preserving first-seen order.
func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
