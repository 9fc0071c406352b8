package service

import (
	"slices"

	"governance/internal/model"

	"github.com/google/uuid"
)

// ResolveChain orders every version of start's identifier, newest version
// first. versions is the bulk fetch for that identifier; start need not be
// part of it. The walk tolerates dangling and cyclic previous-version links.
func ResolveChain(start model.Compliance, versions []model.Compliance) []model.Compliance {
	byID := make(map[uuid.UUID]model.Compliance, len(versions)+1)
	children := make(map[uuid.UUID][]uuid.UUID)
	order := make([]uuid.UUID, 0, len(versions)+1)

	add := func(c model.Compliance) {
		if c.Identifier != start.Identifier {
			return
		}
		if _, seen := byID[c.ID]; seen {
			return
		}
		byID[c.ID] = c
		order = append(order, c.ID)
		if c.PreviousVersionID != nil {
			children[*c.PreviousVersionID] = append(children[*c.PreviousVersionID], c.ID)
		}
	}
	add(start)
	for _, c := range versions {
		add(c)
	}

	// Walk back to the root. A link that does not resolve ends the walk.
	root := start
	seen := map[uuid.UUID]bool{root.ID: true}
	for root.PreviousVersionID != nil {
		prev, ok := byID[*root.PreviousVersionID]
		if !ok || seen[prev.ID] {
			break
		}
		seen[prev.ID] = true
		root = prev
	}

	// Breadth-first over descendants.
	visited := map[uuid.UUID]bool{root.ID: true}
	chain := []model.Compliance{root}
	queue := []uuid.UUID{root.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if visited[child] {
				continue
			}
			visited[child] = true
			chain = append(chain, byID[child])
			queue = append(queue, child)
		}
	}

	// Versions cut off by a broken link still belong to the identifier.
	for _, id := range order {
		if !visited[id] {
			visited[id] = true
			chain = append(chain, byID[id])
		}
	}

	slices.SortStableFunc(chain, func(a, b model.Compliance) int {
		if c := compareRecordVersions(b.Version, a.Version); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return chain
}
