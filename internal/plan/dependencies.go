package plan

import (
	"cmp"
	"slices"

	"struct-mapper/internal/common"
)

// orderMembers sorts member plans by the lowest Order of their configured sources.
// A member whose source names another member's source in After is populated after
// that member. Cycles keep the sorted order; the store reports them on Validate.
func orderMembers(members []*MemberPlan) []*MemberPlan {
	rank := func(m *MemberPlan) int {
		order := 0

		for i, ds := range m.Sources {
			if ds.Configured && (i == 0 || ds.Order < order) {
				order = ds.Order
			}
		}

		return order
	}

	slices.SortStableFunc(members, func(a, b *MemberPlan) int {
		return cmp.Compare(rank(a), rank(b))
	})

	producer := make(map[string]int)

	for i, m := range members {
		for _, ds := range m.Sources {
			if ds.Name != "" {
				producer[ds.Name] = i
			}
		}
	}

	if len(producer) == 0 {
		return members
	}

	order, _, err := common.TopoSort(len(members), func(i int) []int {
		var deps []int

		for _, ds := range members[i].Sources {
			for _, name := range ds.After {
				if j, ok := producer[name]; ok && j != i && !slices.Contains(deps, j) {
					deps = append(deps, j)
				}
			}
		}

		return deps
	})
	if err != nil {
		return members
	}

	out := make([]*MemberPlan, len(order))
	for k, i := range order {
		out[k] = members[i]
	}

	return out
}
