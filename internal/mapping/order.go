package mapping

import (
	"slices"

	"struct-mapper/internal/common"
)

// orderDataSources sorts sources of one member by Order then registration, then moves
// entries behind the entries they name in After. Unknown names and cycles are reported
// by Validate; here they leave the Order sequence untouched.
func orderDataSources(sources []*DataSource) []*DataSource {
	if len(sources) < 2 {
		return sources
	}

	slices.SortStableFunc(sources, func(a, b *DataSource) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}

		return a.seq - b.seq
	})

	byName := make(map[string]int, len(sources))
	for i, d := range sources {
		if d.Name != "" {
			byName[d.Name] = i
		}
	}

	order, _, err := common.TopoSort(len(sources), func(i int) []int {
		var deps []int

		for _, name := range sources[i].After {
			if j, ok := byName[name]; ok && j != i {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		return sources
	}

	sorted := make([]*DataSource, len(order))
	for i, idx := range order {
		sorted[i] = sources[idx]
	}

	return sorted
}
