package analyze

import (
	"errors"
	"iter"
	"reflect"
	"sync"
	"testing"

	"struct-mapper/store"
	"struct-mapper/warehouse"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		typ  reflect.Type
		want TypeKind
	}{
		{"int", reflect.TypeFor[int](), TypeKindSimple},
		{"pointer to string", reflect.TypeFor[*string](), TypeKindSimple},
		{"enum", reflect.TypeFor[store.OrderStatus](), TypeKindSimple},
		{"struct", reflect.TypeFor[store.Order](), TypeKindComplex},
		{"pointer to struct", reflect.TypeFor[*store.Customer](), TypeKindComplex},
		{"slice", reflect.TypeFor[[]store.OrderItem](), TypeKindEnumerable},
		{"array", reflect.TypeFor[[3]int](), TypeKindEnumerable},
		{"set", reflect.TypeFor[map[string]struct{}](), TypeKindEnumerable},
		{"sequence", reflect.TypeFor[iter.Seq[int]](), TypeKindEnumerable},
		{"map", reflect.TypeFor[map[string]any](), TypeKindDictionary},
		{"interface", reflect.TypeFor[any](), TypeKindInterface},
		{"chan", reflect.TypeFor[chan int](), TypeKindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.typ); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.typ, got, tt.want)
			}
		})
	}
}

func TestReflectModel_Members(t *testing.T) {
	model := NewReflectModel()

	order := model.TypeOf(reflect.TypeFor[*warehouse.Order]())
	require.NotNil(t, order)
	assert.Equal(t, TypeKindComplex, order.Kind)
	assert.Equal(t, "warehouse.Order", order.ID.Short())

	// renamed by tag, hidden by tag
	number := order.Member("Number")
	require.NotNil(t, number)
	assert.Equal(t, "Reference", number.GoName)
	assert.Nil(t, order.Member("Reference"))
	assert.Nil(t, order.Member("Internal"))
	assert.Nil(t, order.Member("currency"))

	// getter + setter property
	currency := order.Member("Currency")
	require.NotNil(t, currency)
	assert.Equal(t, MemberProperty, currency.Kind)
	assert.True(t, currency.IsReadable)
	assert.True(t, currency.IsWritable)
	assert.False(t, currency.IsReadOnly)

	items := order.Member("Items")
	require.NotNil(t, items)
	assert.Equal(t, TypeKindEnumerable, items.TypeKind)

	customer := model.TypeOf(reflect.TypeFor[warehouse.Customer]())
	hash := customer.Member("PasswordHash")
	require.NotNil(t, hash)
	assert.True(t, hash.IsReadOnly)
	assert.NotContains(t, customer.Targets(), hash)
	assert.Contains(t, customer.Readable(), hash)

	// cached instance
	assert.Same(t, order, model.TypeOf(reflect.TypeFor[warehouse.Order]()))
}

func TestReflectModel_GetSet(t *testing.T) {
	model := NewReflectModel()
	info := model.TypeOf(reflect.TypeFor[warehouse.Order]())

	target := reflect.New(info.Type).Elem()

	info.Member("Currency").Set(target, reflect.ValueOf("EUR"))
	info.Member("Number").Set(target, reflect.ValueOf("A-1"))

	order := target.Interface().(warehouse.Order)
	assert.Equal(t, "EUR", order.Currency())
	assert.Equal(t, "A-1", order.Reference)

	assert.Equal(t, "EUR", info.Member("Currency").Get(target).String())

	// getters work on non-addressable values too
	assert.Equal(t, "EUR", info.Member("Currency").Get(reflect.ValueOf(order)).String())
}

type Base struct {
	ID      int
	Created string
}

type hidden struct {
	Secret string
}

type Derived struct {
	*Base
	hidden
	Name string
}

func TestReflectModel_PromotedFields(t *testing.T) {
	model := NewReflectModel()
	info := model.TypeOf(reflect.TypeFor[Derived]())

	names := make([]string, 0, len(info.Members))
	for _, m := range info.Members {
		names = append(names, m.Name)
	}

	assert.Equal(t, []string{"ID", "Created", "Name"}, names)

	// reading through a nil embedded pointer yields no value
	var d Derived
	assert.False(t, info.Member("ID").Get(reflect.ValueOf(d)).IsValid())

	// writing allocates it
	target := reflect.ValueOf(&d).Elem()
	info.Member("ID").Set(target, reflect.ValueOf(7))
	require.NotNil(t, d.Base)
	assert.Equal(t, 7, d.ID)
}

func TestReflectModel_Collections(t *testing.T) {
	model := NewReflectModel()

	set := model.TypeOf(reflect.TypeFor[map[int]struct{}]())
	require.NotNil(t, set.Enumerable)
	assert.Equal(t, ShapeSet, set.Enumerable.Shape)
	assert.False(t, set.Enumerable.Indexable)

	arr := model.TypeOf(reflect.TypeFor[[4]string]())
	assert.Equal(t, 4, arr.Enumerable.Len)
	assert.True(t, arr.Enumerable.Indexable)

	seq := model.TypeOf(reflect.TypeFor[iter.Seq[string]]())
	assert.Equal(t, ShapeSequence, seq.Enumerable.Shape)
	assert.Equal(t, reflect.TypeFor[string](), seq.Enumerable.Elem)

	dict := model.TypeOf(reflect.TypeFor[map[string]int]())
	require.NotNil(t, dict.Dictionary)
	assert.True(t, dict.Dictionary.StringKeys)
}

func TestReflectModel_Constructors(t *testing.T) {
	model := NewReflectModel()

	require.NoError(t, model.RegisterConstructor(warehouse.NewMoney, "amount", "currency"))
	require.NoError(t, model.RegisterConstructor(func(amount int64) (*warehouse.Money, error) {
		if amount < 0 {
			return nil, errors.New("negative")
		}

		m := warehouse.NewMoney(amount, "USD")

		return &m, nil
	}))

	ctors := model.Constructors(reflect.TypeFor[*warehouse.Money]())
	require.Len(t, ctors, 2)
	assert.Len(t, ctors[0].Params, 2, "greediest first")
	assert.True(t, ctors[0].HasNames())
	assert.False(t, ctors[1].HasNames())

	v, err := ctors[1].Call([]reflect.Value{reflect.ValueOf(int64(5))})
	require.NoError(t, err)
	assert.Equal(t, "USD", v.Interface().(warehouse.Money).Currency())

	_, err = ctors[1].Call([]reflect.Value{reflect.ValueOf(int64(-1))})
	require.Error(t, err)

	require.ErrorIs(t, model.RegisterConstructor(42), ErrNotAConstructor)
	require.ErrorIs(t, model.RegisterConstructor(warehouse.NewMoney, "amount"), ErrConstructorNames)
	require.ErrorIs(t, model.RegisterConstructor(func(...int) warehouse.Money { return warehouse.Money{} }), ErrConstructorVariadic)
}

func TestReflectModel_Concurrent(t *testing.T) {
	model := NewReflectModel()

	var wg sync.WaitGroup

	results := make([]*TypeInfo, 16)
	for i := range results {
		wg.Add(1)

		go func() {
			defer wg.Done()
			results[i] = model.TypeOf(reflect.TypeFor[store.Order]())
		}()
	}

	wg.Wait()

	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestRegistryLookup(t *testing.T) {
	model := NewReflectModel()
	model.Register(reflect.TypeFor[store.Order](), reflect.TypeFor[*warehouse.Order](), reflect.TypeFor[store.Category]())

	for _, name := range []string{"store.Order", "struct-mapper/store.Order", "*store.Order"} {
		got, ok := model.Lookup(name)
		if !ok || got != reflect.TypeFor[store.Order]() {
			t.Errorf("Lookup(%q) = %v, %v", name, got, ok)
		}
	}

	got, ok := model.Lookup("Category")
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[store.Category](), got)

	// ambiguous name-only lookup
	_, ok = model.Lookup("Order")
	assert.False(t, ok)

	_, ok = model.Lookup("billing.Invoice")
	assert.False(t, ok)
}

func TestTypePath(t *testing.T) {
	p := NewTypePath("Order").Field("Items")
	assert.Equal(t, "Order.Items", p.String())
	assert.Equal(t, "Order.Items[]", p.Slice().String())
	assert.Equal(t, "Order.Items[2].ProductID", p.Index(2).Field("ProductID").String())
	assert.Equal(t, "Order.Tags[color]", NewTypePath("Order").Field("Tags").Key("color").String())
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "store.Order", TypeString(reflect.TypeFor[store.Order]()))
	assert.Equal(t, "[]*warehouse.OrderItem", TypeString(reflect.TypeFor[[]*warehouse.OrderItem]()))
	assert.Equal(t, "map[string]int", TypeString(reflect.TypeFor[map[string]int]()))
	assert.Equal(t, "[2]string", TypeString(reflect.TypeFor[[2]string]()))
}

func TestFieldPaths(t *testing.T) {
	model := NewReflectModel()
	paths := FieldPaths(model, reflect.TypeFor[store.Order](), 2)

	assert.Contains(t, paths, "Customer.Address.City")
	assert.Contains(t, paths, "Items[].UnitPrice")
	assert.NotContains(t, paths, "Customer.Referrer.Referrer.Email")
}
