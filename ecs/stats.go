package ecs

import (
	"cmp"
	"slices"
)

// WorldStats is a point-in-time summary of a World, used by inspectors and
// the stress harness.
type WorldStats struct {
	EntityCount     int
	RegisteredCount int
	QueryCount      int
	Queries         []QueryStats
	Components      []ComponentCount
}

// QueryStats describes one memoized query.
type QueryStats struct {
	Types       []string
	EntityCount int
}

// ComponentCount is the number of live instances of one concrete type.
type ComponentCount struct {
	Type  string
	Count int
}

// CollectStats walks the World and its queries. Queries are sorted by size,
// largest first; component counts by type name.
func (w *World) CollectStats() WorldStats {
	stats := WorldStats{
		EntityCount:     len(w.entities),
		RegisteredCount: w.registered.Len(),
	}

	for _, bucket := range w.queries {
		for _, q := range bucket {
			names := make([]string, len(q.types))
			for i, t := range q.types {
				names[i] = t.String()
			}
			stats.Queries = append(stats.Queries, QueryStats{
				Types:       names,
				EntityCount: q.Len(),
			})
		}
	}
	stats.QueryCount = len(stats.Queries)
	slices.SortFunc(stats.Queries, func(a, b QueryStats) int {
		if c := cmp.Compare(b.EntityCount, a.EntityCount); c != 0 {
			return c
		}
		return slices.Compare(a.Types, b.Types)
	})

	counts := make(map[TypeID]int)
	for _, entity := range w.entities {
		for _, info := range entity.types {
			counts[info.id]++
		}
	}
	for id, n := range counts {
		stats.Components = append(stats.Components, ComponentCount{
			Type:  w.types.byID[id].typ.String(),
			Count: n,
		})
	}
	slices.SortFunc(stats.Components, func(a, b ComponentCount) int {
		return cmp.Compare(a.Type, b.Type)
	})

	return stats
}
