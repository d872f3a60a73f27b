package mapping

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"struct-mapper/options"
	"struct-mapper/store"
	"struct-mapper/warehouse"
)

var (
	srcOrder = reflect.TypeFor[store.Order]()
	dstOrder = reflect.TypeFor[warehouse.Order]()
)

func TestStore_DataSourceOrdering(t *testing.T) {
	s := NewStore()

	s.For(srcOrder, dstOrder).Map("Number").Named("late").Order(5).Const("c")
	s.For(srcOrder, dstOrder).Map("Number").Named("first").From("Number")
	s.For(srcOrder, dstOrder).Map("Number").Named("second").After("third").Const("b")
	s.For(nil, dstOrder).Map("Number").Named("third").Const("a")

	got := s.DataSourcesFor(srcOrder, dstOrder, "Number", options.CreateNew)
	require.Len(t, got, 4)

	names := make([]string, len(got))
	for i, d := range got {
		names[i] = d.Name
	}

	assert.Equal(t, []string{"first", "third", "second", "late"}, names)

	// source restricted entries do not apply to other sources
	other := s.DataSourcesFor(reflect.TypeFor[store.Customer](), dstOrder, "Number", options.CreateNew)
	require.Len(t, other, 1)
	assert.Equal(t, "third", other[0].Name)
}

func TestStore_RuleSets(t *testing.T) {
	s := NewStore()

	s.For(srcOrder, dstOrder).On(options.Merge).Map("Number").Const("merge-only")
	s.For(srcOrder, dstOrder).Ignore("Notes")

	assert.Empty(t, s.DataSourcesFor(srcOrder, dstOrder, "Number", options.CreateNew))
	assert.Len(t, s.DataSourcesFor(srcOrder, reflect.PointerTo(dstOrder), "Number", options.Merge), 1)

	assert.Len(t, s.IgnoresFor(srcOrder, dstOrder, "Notes", options.Project), 1)
	assert.Empty(t, s.IgnoresFor(srcOrder, dstOrder, "Tags", options.Project))
}

func TestStore_FingerprintChanges(t *testing.T) {
	s := NewStore()
	initial := s.Fingerprint()

	s.For(srcOrder, dstOrder).Ignore("Notes")
	afterIgnore := s.Fingerprint()
	assert.NotEqual(t, initial, afterIgnore)

	require.NoError(t, s.ApplySettings(options.Settings{MaxRecursionDepth: 3}))
	assert.NotEqual(t, afterIgnore, s.Fingerprint())
	assert.Equal(t, 3, s.Settings().MaxRecursionDepth)
	assert.Equal(t, options.DefaultSeparator, s.Settings().Separator)

	// identical registrations still move the fingerprint
	before := s.Fingerprint()
	s.For(srcOrder, dstOrder).Ignore("Notes")
	assert.NotEqual(t, before, s.Fingerprint())
}

func TestStore_FactoriesAndCallbacks(t *testing.T) {
	s := NewStore()

	general := func(Context) (any, error) { return warehouse.Order{Internal: "general"}, nil }
	specific := func(Context) (any, error) { return warehouse.Order{Internal: "specific"}, nil }

	s.For(srcOrder, dstOrder).CreateWith(specific)
	s.For(nil, dstOrder).CreateWith(general)

	f := s.FactoryFor(srcOrder, dstOrder)
	require.NotNil(t, f)
	assert.Equal(t, srcOrder, f.SourceType)

	f = s.FactoryFor(reflect.TypeFor[store.Customer](), dstOrder)
	require.NotNil(t, f)
	assert.Nil(t, f.SourceType)

	assert.Nil(t, s.FactoryFor(srcOrder, reflect.TypeFor[warehouse.Customer]()))

	var calls []string

	s.For(srcOrder, dstOrder).
		Before(func(Context) error { calls = append(calls, "before"); return nil }).
		After(func(Context) error { calls = append(calls, "after"); return nil })

	before := s.CallbacksFor(srcOrder, dstOrder, options.CreateNew, BeforeMapping)
	after := s.CallbacksFor(srcOrder, dstOrder, options.CreateNew, AfterMapping)
	require.Len(t, before, 1)
	require.Len(t, after, 1)

	require.NoError(t, before[0](nil))
	require.NoError(t, after[0](nil))
	assert.Equal(t, []string{"before", "after"}, calls)
}

type shape interface{ Area() float64 }

type square struct{ Side float64 }

func (s square) Area() float64 { return s.Side * s.Side }

type circle struct{ R float64 }

func (c circle) Area() float64 { return 3 * c.R * c.R }

type squareDto struct{ Side float64 }

func TestStore_DerivedTarget(t *testing.T) {
	s := NewStore()
	shapeType := reflect.TypeFor[shape]()

	s.For(nil, shapeType).Derive(reflect.TypeFor[squareDto](), reflect.TypeFor[circle]())
	s.For(nil, shapeType).Derive(reflect.TypeFor[squareDto](), reflect.TypeFor[square]())

	assert.True(t, s.HasDerivedPairs(shapeType))

	concrete, ok := s.DerivedTarget(reflect.TypeFor[*squareDto](), shapeType)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[square](), concrete)

	_, ok = s.DerivedTarget(srcOrder, shapeType)
	assert.False(t, ok)
}

func TestStore_TypeRules(t *testing.T) {
	s := NewStore()
	category := reflect.TypeFor[warehouse.CategoryDto]()

	s.IdentifyBy(reflect.TypeFor[*warehouse.OrderItem](), "ProductID").
		MaxDepth(category, 3).
		NeverExpand(category)

	id, ok := s.Identity(reflect.TypeFor[warehouse.OrderItem]())
	require.True(t, ok)
	assert.Equal(t, "ProductID", id)

	rule, ok := s.Recursion(category)
	require.True(t, ok)
	assert.Equal(t, RecursionRule{MaxDepth: 3, NeverExpand: true}, rule)

	s.For(srcOrder, dstOrder).ThrowIfIncomplete().KeySeparator("_")
	assert.Equal(t, PairSettings{ThrowIfIncomplete: true, KeySeparator: "_"}, s.Pair(srcOrder, dstOrder))
	assert.Equal(t, "_", s.Separator(srcOrder, dstOrder))
	assert.Equal(t, options.DefaultSeparator, s.Separator(srcOrder, category))
}

func TestStore_ValidateOK(t *testing.T) {
	s := NewStore()

	s.For(srcOrder, dstOrder).
		Map("Number").Named("a").From("Number").
		Map("Number").After("a").Const("fallback").
		Ignore("Items[].Name").
		KeySeparator("_")

	require.NoError(t, s.Validate())
}

func TestStore_ValidateErrors(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(s *Store)
		expected []error
	}{
		{
			name: "cyclic after",
			setup: func(s *Store) {
				s.For(srcOrder, dstOrder).
					Map("Number").Named("a").After("b").Const("x").
					Map("Number").Named("b").After("a").Const("y")
			},
			expected: []error{ErrCyclicOrder},
		},
		{
			name: "duplicate and unknown names",
			setup: func(s *Store) {
				s.For(srcOrder, dstOrder).
					Map("Number").Named("a").Const("x").
					Map("Notes").Named("a").After("missing").Const("y")
			},
			expected: []error{ErrDuplicateName, ErrUnknownAfter},
		},
		{
			name: "value count",
			setup: func(s *Store) {
				s.AddDataSource(DataSource{TargetType: dstOrder, TargetPath: "Number"})
				s.AddDataSource(DataSource{TargetType: dstOrder, TargetPath: "Number", SourcePath: "Number", HasConstant: true})
			},
			expected: []error{ErrNoValue, ErrAmbiguousValue},
		},
		{
			name: "paths",
			setup: func(s *Store) {
				s.For(srcOrder, dstOrder).Ignore("").Map("Items[x]").Const(1)
			},
			expected: []error{ErrEmptyTargetPath, ErrInvalidPath},
		},
		{
			name: "separators",
			setup: func(s *Store) {
				s.For(srcOrder, dstOrder).KeySeparator(".")
				s.For(srcOrder, reflect.TypeFor[warehouse.Customer]()).KeySeparator("_").KeySeparator("/")
				s.For(nil, dstOrder).KeySeparator("[")
			},
			expected: []error{ErrRedundantSeparator, ErrConflictingSeparator, ErrInvalidSeparator},
		},
		{
			name: "depth and types",
			setup: func(s *Store) {
				s.MaxDepth(reflect.TypeFor[warehouse.CategoryDto](), -1)
				s.AddDerivedPair(DerivedPair{Source: srcOrder})
				s.AddIgnore(Ignore{TargetPath: "Notes"})
			},
			expected: []error{ErrNegativeDepth, ErrMissingType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			tt.setup(s)

			err := s.Validate()
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)

			for _, want := range tt.expected {
				assert.ErrorIs(t, err, want)
			}

			assert.GreaterOrEqual(t, len(cfgErr.Errors()), len(tt.expected))
			assert.Contains(t, err.Error(), "mapping configuration")
		})
	}
}

func TestConfigurationError_Unwrap(t *testing.T) {
	err := &ConfigurationError{Err: multierr.Combine(ErrNoValue, ErrCyclicOrder)}
	assert.ErrorIs(t, err, ErrCyclicOrder)
}
