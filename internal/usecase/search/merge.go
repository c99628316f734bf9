package search

import (
	"sort"

	"github.com/civiclens/civicsearch/internal/domain"
)

// Merge collapses duplicate records across successful outcomes and orders
// the survivors deterministically. Outcomes must be in adapter enumeration
// order: within a duplicate group the most complete record wins, ties broken
// by first-seen position.
func Merge(outcomes []domain.AdapterOutcome) []domain.SearchResult {
	type slot struct {
		result domain.SearchResult
		seen   int
	}

	best := make(map[string]*slot)
	order := 0
	for _, o := range outcomes {
		if o.Status != domain.StatusOK {
			continue
		}
		for _, r := range o.Results {
			key := r.DuplicateKey()
			cur, ok := best[key]
			if !ok {
				best[key] = &slot{result: r, seen: order}
			} else if r.Completeness() > cur.result.Completeness() {
				// Keep the earlier seen position: identity is first-seen,
				// only the payload upgrades.
				cur.result = r
			}
			order++
		}
	}

	merged := make([]domain.SearchResult, 0, len(best))
	for _, s := range best {
		merged = append(merged, s.result)
	}

	sort.Slice(merged, func(i, j int) bool {
		return lessResult(merged[i], merged[j])
	})
	return merged
}

// lessResult is the response ordering contract: source priority first, then
// descending date with nil dates last, then title for full determinism.
func lessResult(a, b domain.SearchResult) bool {
	pa, pb := domain.PriorityIndex(a.Source), domain.PriorityIndex(b.Source)
	if pa != pb {
		return pa < pb
	}
	if a.Source != b.Source {
		return a.Source < b.Source
	}
	switch {
	case a.Date == nil && b.Date == nil:
		// fall through to title
	case a.Date == nil:
		return false
	case b.Date == nil:
		return true
	case !a.Date.Equal(*b.Date):
		return a.Date.After(*b.Date)
	}
	if a.Title != b.Title {
		return a.Title < b.Title
	}
	return a.DuplicateKey() < b.DuplicateKey()
}
