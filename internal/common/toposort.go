package common

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// ErrCycle reports ordering constraints that cannot be satisfied.
var ErrCycle = errors.New("cycle detected")

// TopoSort returns indices in execution order.
//
// Nodes are by index in the input slice.
// depsFn(i) yields indices that must be executed before i.
//
// The result is deterministic: when multiple nodes are available, we pick the
// smallest index. If a cycle exists, the nodes left on it are returned with ErrCycle.
func TopoSort(n int, depsFn func(i int) []int) ([]int, []int, error) {
	if n <= 0 {
		return nil, nil, nil
	}

	indeg := make([]int, n)
	out := make([][]int, n)

	for i := range n {
		for _, d := range depsFn(i) {
			if d < 0 || d >= n {
				return nil, nil, fmt.Errorf("dependency index out of range: %d depends on %d", i, d)
			}

			indeg[i]++
			out[d] = append(out[d], i)
		}
	}

	for i := range out {
		sort.Ints(out[i])
	}

	var ready []int

	for i := range n {
		if indeg[i] == 0 {
			ready = append(ready, i)
		}
	}

	order := make([]int, 0, n)

	for len(ready) > 0 {
		i := ready[0]
		ready = ready[1:]

		order = append(order, i)

		for _, j := range out[i] {
			indeg[j]--
			if indeg[j] == 0 {
				// Insert while keeping ready sorted.
				k := sort.SearchInts(ready, j)
				ready = slices.Insert(ready, k, j)
			}
		}
	}

	if len(order) != n {
		var cyclic []int

		for i := range n {
			if indeg[i] > 0 {
				cyclic = append(cyclic, i)
			}
		}

		return order, cyclic, ErrCycle
	}

	return order, nil, nil
}
