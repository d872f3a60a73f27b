package plan

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/options"
	"struct-mapper/store"
	"struct-mapper/warehouse"
)

var (
	srcOrder    = reflect.TypeFor[store.Order]()
	dstOrder    = reflect.TypeFor[warehouse.Order]()
	srcCategory = reflect.TypeFor[store.Category]()
	dstCategory = reflect.TypeFor[warehouse.CategoryDto]()
	dstMoney    = reflect.TypeFor[warehouse.Money]()
)

type price struct {
	Amount   int64
	Currency string
}

type amountOnly struct {
	Value int64
}

type partialSource struct {
	Value1 string
}

type partialTarget struct {
	Value1 string
	Value2 string
}

func newTestCompiler(t *testing.T) (*Compiler, *analyze.ReflectModel, *mapping.Store) {
	t.Helper()

	model := analyze.NewReflectModel()
	st := mapping.NewStore()

	return NewCompiler(model, st, nil, testr.New(t)), model, st
}

func memberNamed(obj *ObjectPlan, name string) *MemberPlan {
	for _, m := range obj.Members {
		if m.Target.Name() == name {
			return m
		}
	}

	return nil
}

func unmappedPaths(p *MappingPlan) []string {
	return ValidateCompleteness(p)
}

func TestCompile_Order(t *testing.T) {
	c, _, _ := newTestCompiler(t)

	p, err := c.Compile(srcOrder, dstOrder, options.CreateNew)
	require.NoError(t, err)

	require.Equal(t, StrategyObject, p.Value.Strategy)
	assert.Equal(t, reflect.PointerTo(dstOrder), p.Value.TargetType)
	assert.Equal(t, ConstructZero, p.Value.Object.Construction.Kind)

	root := p.Value.Object

	number := memberNamed(root, "Number")
	require.NotNil(t, number)
	require.Len(t, number.Sources, 1)
	assert.Equal(t, StrategyAssign, number.Sources[0].Value.Strategy)
	assert.Equal(t, "Number", number.Sources[0].Description)

	id := memberNamed(root, "ID")
	require.NotNil(t, id)
	assert.Equal(t, StrategyConvert, id.Sources[0].Value.Strategy)

	items := memberNamed(root, "Items")
	require.NotNil(t, items)
	require.Equal(t, StrategyEnumerable, items.Sources[0].Value.Strategy)

	elem := items.Sources[0].Value.Enumerable.Element
	require.Equal(t, StrategyObject, elem.Strategy)
	assert.Equal(t, "Order.Items[i]", elem.Object.Member.Path)

	customer := memberNamed(root, "Customer")
	require.NotNil(t, customer)
	require.Equal(t, StrategyObject, customer.Sources[0].Value.Strategy)

	referrer := memberNamed(customer.Sources[0].Value.Object, "Referrer")
	require.NotNil(t, referrer)
	require.Equal(t, StrategyRepeat, referrer.Sources[0].Value.Strategy)
	assert.Equal(t, reflect.TypeFor[store.Customer](), referrer.Sources[0].Value.Repeat.Key.Source)
	assert.Nil(t, referrer.Sources[0].Value.Repeat.Plan)

	missing := unmappedPaths(p)
	assert.Contains(t, missing, "Order.Currency")
	assert.Contains(t, missing, "Order.ShippingAddress.Line2")
	assert.Contains(t, missing, "Order.ShippingAddress.PostalCode")
	assert.NotContains(t, missing, "Order.ShippingAddress.Line1")
}

func TestCompile_Unflatten(t *testing.T) {
	c, _, _ := newTestCompiler(t)

	p, err := c.Compile(srcOrder, dstOrder, options.CreateNew)
	require.NoError(t, err)

	shipping := memberNamed(p.Value.Object, "ShippingAddress")
	require.NotNil(t, shipping)
	require.Len(t, shipping.Sources, 1)

	value := shipping.Sources[0].Value
	require.Equal(t, StrategyObject, value.Strategy)
	assert.True(t, value.Object.SameSource)
	assert.Equal(t, "ShippingAddress", value.Object.Prefix)
	assert.False(t, value.Object.Track)

	line1 := memberNamed(value.Object, "Line1")
	require.NotNil(t, line1)
	require.Len(t, line1.Sources, 1)
	assert.Equal(t, "ShippingAddressLine1", line1.Sources[0].Description)
}

func TestCompile_RecursiveTypeSharesPlan(t *testing.T) {
	c, _, _ := newTestCompiler(t)

	p, err := c.Compile(srcCategory, dstCategory, options.CreateNew)
	require.NoError(t, err)

	require.Len(t, p.Repeats, 1)
	assert.Same(t, p, p.Repeats[0].Plan)
	assert.Equal(t, options.Defaults().MaxRecursionDepth, p.Repeats[0].MaxDepth)

	subs := memberNamed(p.Value.Object, "SubCategories")
	require.NotNil(t, subs)
	require.Equal(t, StrategyEnumerable, subs.Sources[0].Value.Strategy)
	assert.Equal(t, StrategyRepeat, subs.Sources[0].Value.Enumerable.Element.Strategy)
}

func TestCompile_NeverExpand(t *testing.T) {
	c, _, st := newTestCompiler(t)

	st.SetRecursion(dstCategory, mapping.RecursionRule{NeverExpand: true})

	p, err := c.Compile(srcCategory, dstCategory, options.CreateNew)
	require.NoError(t, err)

	assert.Empty(t, p.Repeats)

	subs := memberNamed(p.Value.Object, "SubCategories")
	require.NotNil(t, subs)
	assert.Equal(t, StrategyShortCircuit, subs.Sources[0].Value.Enumerable.Element.Strategy)
}

func TestCompile_Constructor(t *testing.T) {
	c, model, _ := newTestCompiler(t)

	require.NoError(t, model.RegisterConstructor(warehouse.NewMoney, "Amount", "Currency"))

	p, err := c.Compile(reflect.TypeFor[price](), dstMoney, options.CreateNew)
	require.NoError(t, err)

	construction := p.Value.Object.Construction
	require.Equal(t, ConstructConstructor, construction.Kind)
	require.Len(t, construction.Args, 2)
	assert.Equal(t, "Amount", construction.Args[0].Sources[0].Description)
	assert.Equal(t, "Currency", construction.Args[1].Sources[0].Description)
	assert.Empty(t, p.Unmapped)
}

func TestCompile_ConstructionError(t *testing.T) {
	c, model, _ := newTestCompiler(t)

	require.NoError(t, model.RegisterConstructor(warehouse.NewMoney, "Amount", "Currency"))

	_, err := c.Compile(reflect.TypeFor[amountOnly](), dstMoney, options.CreateNew)
	require.Error(t, err)

	var ce *ConstructionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Money", ce.Path)

	// populating existing instances needs no construction
	p, err := c.Compile(reflect.TypeFor[amountOnly](), dstMoney, options.Merge)
	require.NoError(t, err)
	assert.Equal(t, ConstructNone, p.Value.Object.Construction.Kind)
	assert.True(t, p.Root.IsUnconstructable())
}

func TestCompile_Strict(t *testing.T) {
	c, _, st := newTestCompiler(t)

	src, dst := reflect.TypeFor[partialSource](), reflect.TypeFor[partialTarget]()

	p, err := c.Compile(src, dst, options.CreateNew)
	require.NoError(t, err)
	assert.Equal(t, []string{"partialTarget.Value2"}, unmappedPaths(p))

	st.For(src, dst).ThrowIfIncomplete()

	_, err = c.Compile(src, dst, options.CreateNew)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, []string{"partialTarget.Value2"}, ve.Unmapped)
	assert.Contains(t, err.Error(), "Value2")
}

func TestCompile_ConfiguredSourceFromOuterObject(t *testing.T) {
	c, _, st := newTestCompiler(t)

	st.For(srcOrder, dstOrder).Map("ShippingAddress.Line2").From("Customer.Address.Line2")
	st.For(srcOrder, dstOrder).Ignore("Currency")

	p, err := c.Compile(srcOrder, dstOrder, options.CreateNew)
	require.NoError(t, err)

	shipping := memberNamed(p.Value.Object, "ShippingAddress").Sources[0].Value.Object

	line2 := memberNamed(shipping, "Line2")
	require.NotNil(t, line2)
	require.Len(t, line2.Sources, 1)

	ds := line2.Sources[0]
	assert.True(t, ds.Configured)
	assert.Equal(t, 1, ds.FrameUp)
	assert.Equal(t, "Customer.Address.Line2", ds.Description)
	assert.Len(t, ds.Path, 3)

	currency := memberNamed(p.Value.Object, "Currency")
	require.NotNil(t, currency)
	assert.True(t, currency.Ignored)

	missing := unmappedPaths(p)
	assert.NotContains(t, missing, "Order.ShippingAddress.Line2")
	assert.NotContains(t, missing, "Order.Currency")
}

func TestCompile_ConditionalSourcesKeepConvention(t *testing.T) {
	c, _, st := newTestCompiler(t)

	never := func(mapping.Context) bool { return false }
	st.For(srcOrder, dstOrder).Map("Number").If(never).Const("fallback")

	p, err := c.Compile(srcOrder, dstOrder, options.CreateNew)
	require.NoError(t, err)

	number := memberNamed(p.Value.Object, "Number")
	require.Len(t, number.Sources, 2)
	assert.Equal(t, SourceConstant, number.Sources[0].Kind)
	assert.NotNil(t, number.Sources[0].Condition)
	assert.Equal(t, SourceMember, number.Sources[1].Kind)
}

func TestCompile_Flatten(t *testing.T) {
	c, _, _ := newTestCompiler(t)

	p, err := c.Compile(reflect.TypeFor[store.Customer](), reflect.TypeFor[map[string]any](), options.CreateNew)
	require.NoError(t, err)

	require.Equal(t, StrategyFlatten, p.Value.Strategy)

	keys := make(map[string]*FlattenField)
	for _, f := range p.Value.Flatten.Fields {
		keys[f.Key] = f
	}

	require.Contains(t, keys, "Email")
	assert.NotNil(t, keys["Email"].Leaf)
	require.Contains(t, keys, "Address")
	assert.NotNil(t, keys["Address"].Nested)
	require.Contains(t, keys, "Referrer")
	assert.NotNil(t, keys["Referrer"].Nested)
}

func TestCompile_FromDictionary(t *testing.T) {
	c, _, _ := newTestCompiler(t)

	p, err := c.Compile(reflect.TypeFor[map[string]string](), reflect.TypeFor[warehouse.Address](), options.CreateNew)
	require.NoError(t, err)

	require.Equal(t, StrategyObject, p.Value.Strategy)
	assert.True(t, p.Value.Object.Keyed)

	line1 := memberNamed(p.Value.Object, "Line1")
	require.NotNil(t, line1)
	require.Len(t, line1.Sources, 1)
	assert.Equal(t, SourceEntry, line1.Sources[0].Kind)
	assert.Equal(t, "Line1", line1.Sources[0].Key)
}

func TestCompile_Uncompilable(t *testing.T) {
	c, _, _ := newTestCompiler(t)

	_, err := c.Compile(reflect.TypeFor[int](), reflect.TypeFor[warehouse.Address](), options.CreateNew)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnmappable)
}
