package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func namedMember(path string, sources ...*DataSource) *MemberPlan {
	return &MemberPlan{Target: &QualifiedMember{Path: path}, Sources: sources}
}

func paths(members []*MemberPlan) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Target.Path
	}

	return out
}

func TestOrderMembers(t *testing.T) {
	tests := []struct {
		name    string
		members []*MemberPlan
		want    []string
	}{
		{
			name: "declaration order without configuration",
			members: []*MemberPlan{
				namedMember("A", &DataSource{}),
				namedMember("B", &DataSource{}),
			},
			want: []string{"A", "B"},
		},
		{
			name: "lower order first",
			members: []*MemberPlan{
				namedMember("A", &DataSource{Configured: true, Order: 2}),
				namedMember("B", &DataSource{Configured: true, Order: 1}),
				namedMember("C"),
			},
			want: []string{"C", "B", "A"},
		},
		{
			name: "after another member's source",
			members: []*MemberPlan{
				namedMember("Total", &DataSource{Configured: true, Name: "total", After: []string{"price"}}),
				namedMember("Price", &DataSource{Configured: true, Name: "price"}),
			},
			want: []string{"Price", "Total"},
		},
		{
			name: "cycles keep the sorted order",
			members: []*MemberPlan{
				namedMember("A", &DataSource{Configured: true, Name: "a", After: []string{"b"}}),
				namedMember("B", &DataSource{Configured: true, Name: "b", After: []string{"a"}}),
			},
			want: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, paths(orderMembers(tt.members)))
		})
	}
}
