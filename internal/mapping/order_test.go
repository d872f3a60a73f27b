package mapping

import (
	"slices"
	"testing"
)

func TestOrderDataSources(t *testing.T) {
	first := &DataSource{Name: "first", Order: 0, seq: 1}
	late := &DataSource{Name: "late", Order: 5, seq: 2}
	dependent := &DataSource{Name: "dependent", Order: -1, After: []string{"late"}, seq: 3}

	got := orderDataSources([]*DataSource{first, late, dependent})

	var names []string
	for _, d := range got {
		names = append(names, d.Name)
	}

	exp := []string{"first", "late", "dependent"}
	if !slices.Equal(names, exp) {
		t.Fatalf("expected %v, got %v", exp, names)
	}
}
