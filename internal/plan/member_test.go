package plan

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/warehouse"
)

func TestQualifiedMember_Paths(t *testing.T) {
	model := analyze.NewReflectModel()
	order := model.TypeOf(dstOrder)
	item := model.TypeOf(reflect.TypeFor[warehouse.OrderItem]())

	root := NewRoot(dstOrder)
	assert.Equal(t, "Order", root.Path)

	items := root.Child(order.Member("Items"))
	elem := items.Element(reflect.TypeFor[*warehouse.OrderItem]())
	name := elem.Child(item.Member("Name"))
	tags := root.Child(order.Member("Tags"))
	entry := tags.Entry("gift", reflect.TypeFor[string]())

	tests := []struct {
		member   *QualifiedMember
		path     string
		relative string
		depth    int
	}{
		{items, "Order.Items", "Items", 1},
		{elem, "Order.Items[i]", "Items[]", 2},
		{name, "Order.Items[i].Name", "Items[].Name", 3},
		{entry, "Order.Tags[gift]", "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.path, tt.member.Path)
			assert.Equal(t, tt.relative, tt.member.RelativePath(root))
			assert.Equal(t, tt.depth, tt.member.Depth)
		})
	}

	assert.Equal(t, "Name", name.RelativePath(elem))
	assert.Equal(t, "", root.RelativePath(name))
	assert.True(t, entry.IsKeyed())
	assert.False(t, name.IsKeyed())
}

func TestQualifiedMember_Recursion(t *testing.T) {
	model := analyze.NewReflectModel()
	customer := model.TypeOf(reflect.TypeFor[warehouse.Customer]())

	root := NewRoot(reflect.TypeFor[warehouse.Customer]())
	referrer := root.Child(customer.Member("Referrer"))
	address := root.Child(customer.Member("Address"))

	assert.True(t, referrer.IsRecursion)
	assert.False(t, address.IsRecursion)
	assert.Equal(t, 2, referrer.Occurrences(reflect.TypeFor[warehouse.Customer]()))

	category := model.TypeOf(dstCategory)
	subs := NewRoot(dstCategory).Child(category.Member("SubCategories"))
	assert.True(t, subs.IsRecursion, "collections recurse on their element type")
	assert.Equal(t, dstCategory, subs.RecursionType())
}

func TestQualifiedMember_Unconstructable(t *testing.T) {
	q := NewRoot(dstMoney)
	assert.False(t, q.IsUnconstructable())

	q.MarkUnconstructable()
	q.MarkUnconstructable()
	assert.True(t, q.IsUnconstructable())
}

func TestDecideStrategy(t *testing.T) {
	model := analyze.NewReflectModel()
	category := model.TypeOf(dstCategory)
	subs := category.Member("SubCategories")

	root := NewRoot(dstCategory)
	first := root.Child(subs).Element(dstCategory)
	second := first.Child(subs).Element(dstCategory)
	third := second.Child(subs).Element(dstCategory)

	keyedRoot := NewRoot(reflect.TypeFor[map[string]any]())
	keyed := keyedRoot.Entry("Category", dstCategory)
	keyed2 := keyed.Entry("SubCategories", reflect.TypeFor[[]warehouse.CategoryDto]()).Element(dstCategory)
	keyed3 := keyed2.Entry("SubCategories", reflect.TypeFor[[]warehouse.CategoryDto]()).Element(dstCategory)

	tests := []struct {
		name   string
		member *QualifiedMember
		rule   mapping.RecursionRule
		want   RecursionStrategy
	}{
		{"root", root, mapping.RecursionRule{}, Inline},
		{"recursive element", first, mapping.RecursionRule{}, RepeatFunc},
		{"never expand", first, mapping.RecursionRule{NeverExpand: true}, ShortCircuit},
		{"within max depth", second, mapping.RecursionRule{MaxDepth: 2}, RepeatFunc},
		{"past max depth", third, mapping.RecursionRule{MaxDepth: 2}, ShortCircuit},
		{"keyed first", keyed, mapping.RecursionRule{}, Inline},
		{"keyed within bound", keyed2, mapping.RecursionRule{}, Inline},
		{"keyed past bound", keyed3, mapping.RecursionRule{}, ShortCircuit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideStrategy(tt.member, tt.rule)
			if got != tt.want {
				t.Errorf("DecideStrategy(%s) = %v, want %v", tt.member.Path, got, tt.want)
			}
		})
	}

	require.Equal(t, "short-circuit", ShortCircuit.String())
}
