package mapping

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"struct-mapper/internal/analyze"
	"struct-mapper/options"
	"struct-mapper/store"
	"struct-mapper/warehouse"
)

func sampleModel() *analyze.ReflectModel {
	model := analyze.NewReflectModel()
	model.Register(
		reflect.TypeFor[store.Order](),
		reflect.TypeFor[store.OrderItem](),
		reflect.TypeFor[store.Customer](),
		reflect.TypeFor[store.Category](),
		reflect.TypeFor[warehouse.Order](),
		reflect.TypeFor[warehouse.OrderItem](),
		reflect.TypeFor[warehouse.Customer](),
		reflect.TypeFor[warehouse.CategoryDto](),
	)

	return model
}

func sampleFuncs() *TransformRegistry {
	funcs := NewTransformRegistry()
	funcs.AddValue("JoinNotes", func(Context) (any, error) { return []string{"joined"}, nil })
	funcs.AddCondition("HasNotes", func(Context) bool { return true })
	funcs.AddFactory("NewOrder", func(Context) (any, error) { return &warehouse.Order{}, nil })
	funcs.AddCallback("Audit", func(Context) error { return nil })

	return funcs
}

func TestApply(t *testing.T) {
	mf, err := Parse([]byte(orderYAML), FormatYAML)
	require.NoError(t, err)

	s := NewStore()
	require.NoError(t, Apply(mf, s, sampleModel(), sampleFuncs()))

	assert.Equal(t, 4, s.Settings().MaxRecursionDepth)
	assert.Equal(t, "de-DE", s.Settings().Culture)

	id, ok := s.Identity(reflect.TypeFor[warehouse.OrderItem]())
	require.True(t, ok)
	assert.Equal(t, "ProductID", id)

	rule, ok := s.Recursion(reflect.TypeFor[warehouse.CategoryDto]())
	require.True(t, ok)
	assert.Equal(t, 2, rule.MaxDepth)

	city := s.DataSourcesFor(srcOrder, dstOrder, "ShippingAddress.City", options.Merge)
	require.Len(t, city, 1)
	assert.Equal(t, "ShippingAddressCity", city[0].SourcePath)
	assert.Contains(t, city[0].Origin, "121")

	// the mapping is restricted to create_new and merge
	assert.Empty(t, s.DataSourcesFor(srcOrder, dstOrder, "ShippingAddress.City", options.Overwrite))

	currency := s.DataSourcesFor(srcOrder, dstOrder, "Currency", options.CreateNew)
	require.Len(t, currency, 1)
	assert.True(t, currency[0].HasConstant)
	assert.Equal(t, "EUR", currency[0].Constant)

	notes := s.DataSourcesFor(srcOrder, dstOrder, "Notes", options.CreateNew)
	require.Len(t, notes, 1)
	assert.NotNil(t, notes[0].Value)
	assert.True(t, notes[0].IsConditional())

	assert.Len(t, s.IgnoresFor(srcOrder, dstOrder, "Tags", options.CreateNew), 1)
	assert.True(t, s.Pair(srcOrder, dstOrder).ThrowIfIncomplete)

	require.NoError(t, s.Validate())
}

func TestApply_Functions(t *testing.T) {
	mf := &MappingFile{TypeMappings: []TypeMapping{{
		Target:   "warehouse.Order",
		Factory:  "NewOrder",
		Before:   StringArray{"Audit"},
		After:    StringArray{"Audit"},
		IgnoreIf: []ConditionalIgnore{{Condition: "HasNotes", Targets: StringArray{"Notes"}}},
	}}}

	s := NewStore()
	require.NoError(t, Apply(mf, s, sampleModel(), sampleFuncs()))

	assert.NotNil(t, s.FactoryFor(srcOrder, dstOrder))
	assert.Len(t, s.CallbacksFor(srcOrder, dstOrder, options.CreateNew, BeforeMapping), 1)
	assert.Len(t, s.CallbacksFor(srcOrder, dstOrder, options.CreateNew, AfterMapping), 1)

	ignores := s.IgnoresFor(srcOrder, dstOrder, "Notes", options.CreateNew)
	require.Len(t, ignores, 1)
	assert.NotNil(t, ignores[0].Condition)
}

func TestApply_Errors(t *testing.T) {
	mf := &MappingFile{TypeMappings: []TypeMapping{
		{Source: "store.Nope", Target: "warehouse.Order"},
		{
			Source:   "store.Order",
			Target:   "warehouse.Order",
			RuleSets: StringArray{"sometimes"},
			Fields: []FieldMapping{
				{Target: "Notes", Transform: "Missing"},
				{Target: "Number", Source: "ID"},
			},
			Factory: "Unknown",
		},
	}}

	s := NewStore()
	err := Apply(mf, s, sampleModel(), nil)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.ErrorIs(t, err, ErrMissingType)
	assert.Len(t, cfgErr.Errors(), 4)

	// entries that resolve are still registered
	assert.Len(t, s.DataSourcesFor(srcOrder, dstOrder, "Number", options.CreateNew), 1)
}
