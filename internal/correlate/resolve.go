package correlate

import (
	"sort"

	"nexo/internal/model"
)

// ResolvePersons groups records into resolved persons by union-find over the
// match edges. The person key is the smallest record id in each group, which
// keeps keys stable across runs over the same data.
func ResolvePersons(records []*model.Identity, matches []model.MatchResult) map[string][]*model.Identity {
	parent := make(map[string]string, len(records))
	byID := make(map[string]*model.Identity, len(records))
	for _, r := range records {
		parent[r.ID] = r.ID
		byID[r.ID] = r
	}

	var find func(string) string
	find = func(id string) string {
		if parent[id] != id {
			parent[id] = find(parent[id])
		}
		return parent[id]
	}

	union := func(a, b string) {
		ra, rb := find(a), find(b)
		if ra == rb {
			return
		}
		// Smaller id becomes the root so the person key is deterministic.
		if rb < ra {
			ra, rb = rb, ra
		}
		parent[rb] = ra
	}

	for _, m := range matches {
		if _, ok := parent[m.SourceID]; !ok {
			continue
		}
		if _, ok := parent[m.TargetID]; !ok {
			continue
		}
		union(m.SourceID, m.TargetID)
	}

	groups := make(map[string][]*model.Identity)
	for id, rec := range byID {
		root := find(id)
		groups[root] = append(groups[root], rec)
	}
	for key := range groups {
		sort.Slice(groups[key], func(i, j int) bool { return groups[key][i].ID < groups[key][j].ID })
	}
	return groups
}
