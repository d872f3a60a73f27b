package mapper_test

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"struct-mapper/internal/mapping"
	"struct-mapper/internal/plan"
	"struct-mapper/mapper"
	"struct-mapper/options"
	"struct-mapper/store"
	"struct-mapper/warehouse"
)

type contact struct {
	Name  string
	Email string
}

type contactDto struct {
	Name  string
	Email string
	Phone string
}

type counted struct {
	Count string
}

type countedDto struct {
	Count int
}

func newMapper(t *testing.T) *mapper.Mapper {
	t.Helper()

	m, err := mapper.New(
		mapper.WithLogger(testr.New(t)),
		mapper.WithSettings(options.Settings{Culture: "invariant"}),
		mapper.WithTypes(contact{}, contactDto{}),
	)
	require.NoError(t, err)
	require.NoError(t, m.RegisterEnum(warehouse.StatusPending, warehouse.StatusPaid, warehouse.StatusShipped, warehouse.StatusCancelled))

	return m
}

func TestMap_Order(t *testing.T) {
	m := newMapper(t)

	src := &store.Order{
		ID:       7,
		Number:   "SO-7",
		Customer: &store.Customer{ID: 3, FullName: "Ann", Address: &store.Address{City: "Springfield"}},
		Status:   store.StatusShipped,
		Items:    []store.OrderItem{{ProductID: 10, Quantity: 2, UnitPrice: "12.50"}},
	}

	got, err := mapper.Map[*warehouse.Order](m, src)
	require.NoError(t, err)

	assert.Equal(t, "SO-7", got.Reference)
	assert.Equal(t, warehouse.StatusShipped, got.Status)
	assert.Equal(t, "Springfield", got.Customer.Address.City)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 12.5, got.Items[0].UnitPrice)
}

func TestMap_NilSource(t *testing.T) {
	m := newMapper(t)

	got, err := mapper.Map[*contactDto](m, (*contact)(nil))
	require.NoError(t, err)
	assert.Nil(t, got)
}

type postal struct {
	Line1 *string
	Line2 *string
}

func text(s string) *string { return &s }

func TestMap_DictionaryGaps(t *testing.T) {
	m := newMapper(t)

	got, err := mapper.Map[[]postal](m, map[string]string{
		"[0].Line1": "Line 1.1",
		"[0].Line2": "Line 1.2",
		"[1].Line1": "Line 2.1",
		"[2].Line1": "Line 3.1",
		"[2].Line2": "Line 3.2",
		"[3].Line2": "Line 4.2",
	})
	require.NoError(t, err)

	assert.Equal(t, []postal{
		{Line1: text("Line 1.1"), Line2: text("Line 1.2")},
		{Line1: text("Line 2.1")},
		{Line1: text("Line 3.1"), Line2: text("Line 3.2")},
		{Line2: text("Line 4.2")},
	}, got)
}

func TestMap_DictionaryIndexLimit(t *testing.T) {
	m := newMapper(t)

	_, err := mapper.Map[[]postal](m, map[string]string{"[900000000000].Line1": "x"})
	require.ErrorIs(t, err, mapper.ErrIndexLimit)

	var me *mapper.MappingError
	require.ErrorAs(t, err, &me)

	_, err = mapper.Map[[]postal](m, map[string]string{"[99999999999999999999].Line1": "x"})
	require.ErrorIs(t, err, mapper.ErrIndexLimit)

	require.NoError(t, m.ApplySettings(options.Settings{MaxDictionaryIndex: 2}))

	_, err = mapper.Map[[]postal](m, map[string]string{"[2].Line1": "x"})
	require.ErrorIs(t, err, mapper.ErrIndexLimit)

	got, err := mapper.Map[[]postal](m, map[string]string{"[1].Line1": "x"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

type reading struct {
	value int
}

func newReading(v int) *reading { return &reading{value: v} }

func (r reading) Value() int { return r.value }

type gauge struct {
	level int
	Unit  string
}

func newGauge(level int, unit string) gauge { return gauge{level: level, Unit: unit} }

func (g gauge) Level() int { return g.level }

func TestMap_ConstructFromDictionary(t *testing.T) {
	m := newMapper(t)
	require.NoError(t, m.RegisterConstructor(newReading))
	require.NoError(t, m.RegisterConstructor(newGauge, "Level", "Unit"))

	r, err := mapper.Map[*reading](m, map[string]any{"Value": 123})
	require.NoError(t, err)
	assert.Equal(t, 123, r.Value())

	g, err := mapper.Map[gauge](m, map[string]any{"level": 7, "Unit": "bar"})
	require.NoError(t, err)
	assert.Equal(t, gauge{level: 7, Unit: "bar"}, g)
}

func TestProject(t *testing.T) {
	m := newMapper(t)

	got, err := mapper.Project[contactDto](m, contact{Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, contactDto{Name: "Ann"}, got)
}

func TestMergeAndOverwrite(t *testing.T) {
	m := newMapper(t)

	target := &contactDto{Name: "Kept", Phone: "555"}
	require.NoError(t, m.Merge(contact{Name: "Ann", Email: "ann@example.com"}, target))
	assert.Equal(t, contactDto{Name: "Kept", Email: "ann@example.com", Phone: "555"}, *target)

	require.NoError(t, m.Overwrite(contact{Name: "Bob"}, target))
	assert.Equal(t, contactDto{Name: "Bob", Phone: "555"}, *target)
}

type lineIn struct {
	SKU string
}

type lineOut struct {
	SKU string
}

type labelled struct {
	Tags  []string
	Meta  map[string]string
	Lines []lineIn
}

type labelledDto struct {
	Tags  map[string]struct{}
	Meta  map[string]string
	Lines []*lineOut
}

func TestMerge_CollectionsKeepReference(t *testing.T) {
	m := newMapper(t)

	tags := map[string]struct{}{"a": {}}
	meta := map[string]string{"x": "1"}
	lines := make([]*lineOut, 1, 10)
	lines[0] = &lineOut{SKU: "kept"}

	target := &labelledDto{Tags: tags, Meta: meta, Lines: lines}
	src := labelled{Tags: []string{"b"}, Meta: map[string]string{"y": "2"}, Lines: []lineIn{{SKU: "new"}}}

	require.NoError(t, m.Merge(src, target))

	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, tags)
	assert.Equal(t, map[string]string{"x": "1", "y": "2"}, meta)

	require.Len(t, target.Lines, 2)
	assert.Same(t, &lines[0], &target.Lines[0])
	assert.Equal(t, "kept", target.Lines[0].SKU)
	assert.Equal(t, "new", lines[:2][1].SKU)
}

func TestMapInto(t *testing.T) {
	m := newMapper(t)

	var codes []string
	require.NoError(t, m.MapInto([]int{1, 2}, &codes, options.CreateNew))
	assert.Equal(t, []string{"1", "2"}, codes)

	err := m.MapInto(contact{}, contactDto{}, options.CreateNew)
	require.ErrorIs(t, err, mapper.ErrInvalidTarget)

	err = m.MapInto(contact{}, (*contactDto)(nil), options.CreateNew)
	require.ErrorIs(t, err, mapper.ErrInvalidTarget)
}

func TestMapTo(t *testing.T) {
	m := newMapper(t)

	got, err := m.MapTo(contact{Name: "Ann"}, reflect.TypeFor[*contactDto](), options.CreateNew)
	require.NoError(t, err)
	assert.Equal(t, &contactDto{Name: "Ann"}, got)
}

func TestMappingError(t *testing.T) {
	m := newMapper(t)

	_, err := mapper.Map[countedDto](m, counted{Count: "lots"})
	require.Error(t, err)

	var me *mapper.MappingError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "countedDto.Count", me.Path)
	assert.Equal(t, options.CreateNew, me.RuleSet)
}

func TestConfigure_AppliesToLaterCalls(t *testing.T) {
	m := newMapper(t)

	before, err := mapper.Map[contactDto](m, contact{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Empty(t, before.Phone)

	mapper.Configure[contact, contactDto](m).Map("Phone").From("Email")

	after, err := mapper.Map[contactDto](m, contact{Name: "Ann", Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", after.Phone)
}

func TestRegisterCaster(t *testing.T) {
	m := newMapper(t)

	got, err := mapper.Map[countedDto](m, counted{Count: "7"})
	require.NoError(t, err)
	assert.Equal(t, 7, got.Count)

	require.NoError(t, m.RegisterCaster(func(s string) int { return len(s) * 10 }))

	got, err = mapper.Map[countedDto](m, counted{Count: "7"})
	require.NoError(t, err)
	assert.Equal(t, 10, got.Count)
}

func TestStats(t *testing.T) {
	m := newMapper(t)

	for range 3 {
		_, err := mapper.Map[contactDto](m, contact{Name: "Ann"})
		require.NoError(t, err)
	}

	stats := m.Stats()
	assert.Equal(t, int64(1), stats.PlansCompiled)
	assert.Equal(t, 1, stats.PlansCached)
	assert.Equal(t, int64(1), stats.FuncsCompiled)
}

func TestConcurrentMapping(t *testing.T) {
	m := newMapper(t)

	var g errgroup.Group

	for i := range 32 {
		g.Go(func() error {
			name := strings.Repeat("a", i)

			got, err := mapper.Map[*contactDto](m, &contact{Name: name})
			if err != nil {
				return err
			}

			if got.Name != name {
				t.Errorf("got %q, want %q", got.Name, name)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int64(1), m.Stats().PlansCompiled)
}

func TestEnsureComplete(t *testing.T) {
	m := newMapper(t)

	mapper.Configure[contact, contactDto](m).Ignore("Email")

	err := m.EnsureComplete()
	require.ErrorIs(t, err, plan.ErrIncomplete)
	assert.Contains(t, err.Error(), "Phone")

	mapper.Configure[contact, contactDto](m).Ignore("Phone")
	require.NoError(t, m.EnsureComplete())
}

func TestValidate(t *testing.T) {
	m := newMapper(t)

	mapper.Configure[contact, contactDto](m).
		Map("Phone").Named("a").After("b").From("Name").
		Map("Phone").Named("b").After("a").Const("none")

	var ce *mapping.ConfigurationError
	require.ErrorAs(t, m.Validate(), &ce)
}

const contactYAML = `
version: "1"
mappings:
  - source: mapper_test.contact
    target: mapper_test.contactDto
    121:
      Email: Phone
`

func TestLoadConfig(t *testing.T) {
	m := newMapper(t)

	path := filepath.Join(t.TempDir(), "contact.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contactYAML), 0o600))
	require.NoError(t, m.LoadConfig(path))

	got, err := mapper.Map[contactDto](m, contact{Email: "ann@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", got.Phone)

	require.Error(t, m.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestLoadConfig_UnknownType(t *testing.T) {
	m := newMapper(t)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.ReplaceAll(contactYAML, "contactDto", "nobody")), 0o600))

	var ce *mapping.ConfigurationError
	require.ErrorAs(t, m.LoadConfig(path), &ce)
}

func TestInspection(t *testing.T) {
	m := newMapper(t)

	src, dst := reflect.TypeFor[contact](), reflect.TypeFor[contactDto]()

	out, err := m.PlanString(src, dst, options.CreateNew)
	require.NoError(t, err)
	assert.Contains(t, out, "# mapper_test.contact -> mapper_test.contactDto (CreateNew)")
	assert.Contains(t, out, "target1.Name = source.Name")

	unmapped, err := m.Unmapped(src, dst, options.CreateNew)
	require.NoError(t, err)
	require.Len(t, unmapped, 1)
	assert.Contains(t, unmapped[0], "Phone")

	exported, err := m.Export(src, dst, options.CreateNew)
	require.NoError(t, err)
	assert.Contains(t, string(exported), "mapper_test.contactDto")

	dump, err := m.Dump(src, dst, options.CreateNew)
	require.NoError(t, err)
	assert.Contains(t, dump, "Phone")

	p, err := mapper.PlanOf[contact, contactDto](m, options.CreateNew)
	require.NoError(t, err)
	assert.Equal(t, src, p.Key.Source)
}

func TestDefault(t *testing.T) {
	assert.Same(t, mapper.Default(), mapper.Default())
}
