// Package mapper maps objects onto objects of other types: nested objects,
// collections, dictionaries and recursive graphs, driven by conventions and
// optional configuration.
//
// A Mapper compiles one plan per source type, target type and rule set and reuses
// it for every later call, so the first call of a pair is the expensive one.
//
//	m, err := mapper.New(mapper.WithLogger(log))
//	order, err := mapper.Map[*warehouse.Order](m, incoming)
package mapper

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/go-logr/logr"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/internal/plan"
	"struct-mapper/node"
	"struct-mapper/options"
	"struct-mapper/primitive"
)

type (
	// Context is what conditions, value funcs, factories and callbacks see of the
	// member being mapped.
	Context = mapping.Context
	// Condition decides at mapping time whether a configured entry applies.
	Condition = mapping.Condition
	// ValueFunc computes a member value.
	ValueFunc = mapping.ValueFunc
	// Factory builds a target instance.
	Factory = mapping.Factory
	// Callback runs before or after a target object is populated.
	Callback = mapping.Callback
	// PairConfig configures the mapping of one source type onto one target type.
	PairConfig = mapping.PairConfig
	// Plan is a compiled mapping plan.
	Plan = plan.MappingPlan
	// MappingError reports a failure while mapping one member.
	MappingError = node.MappingError
)

// Mapper maps values using conventions and the configuration registered on it.
// It is safe for concurrent use once configured; configuration changes made later
// apply to plans compiled after them.
type Mapper struct {
	log logr.Logger

	model    *analyze.ReflectModel
	store    *mapping.Store
	enums    *primitive.EnumRegistry
	casts    *node.Casters
	funcs    *mapping.TransformRegistry
	compiler *plan.Compiler
	cache    *plan.Cache
	engine   *node.Engine

	overlays []options.Settings
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger. Compilations are logged at V(1).
var WithLogger = func(log logr.Logger) Option {
	return func(m *Mapper) {
		m.log = log
	}
}

// WithSettings overlays the non-zero fields of s on the default settings.
var WithSettings = func(s options.Settings) Option {
	return func(m *Mapper) {
		m.overlays = append(m.overlays, s)
	}
}

// WithTypes makes the types of samples resolvable by name in mapping files.
var WithTypes = func(samples ...any) Option {
	return func(m *Mapper) {
		for _, s := range samples {
			m.model.Register(reflect.TypeOf(s))
		}
	}
}

// New creates a Mapper.
func New(opts ...Option) (*Mapper, error) {
	m := &Mapper{
		log:   logr.Discard(),
		model: analyze.NewReflectModel(),
		store: mapping.NewStore(),
		enums: primitive.NewEnumRegistry(),
		casts: node.NewCasters(),
		funcs: mapping.NewTransformRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	for _, s := range m.overlays {
		if err := m.store.ApplySettings(s); err != nil {
			return nil, err
		}
	}

	m.compiler = plan.NewCompiler(m.model, m.store, m.enums, m.log.WithName("compiler"))
	m.compiler.Casts = m.casts
	m.cache = plan.NewCache(m.compiler.CompileKey)
	m.engine = node.NewEngine(m.cache, m.store, m.casts, m.log.WithName("executor"))

	return m, nil
}

var defaultMapper = sync.OnceValue(func() *Mapper {
	m, err := New()
	if err != nil {
		panic(fmt.Sprintf("mapper: default instance: %v", err))
	}

	return m
})

// Default returns the process-wide Mapper with default settings.
func Default() *Mapper {
	return defaultMapper()
}

// Settings returns the settings plans are compiled with.
func (m *Mapper) Settings() options.Settings {
	return m.store.Settings()
}

// ApplySettings overlays the non-zero fields of s on the current settings.
func (m *Mapper) ApplySettings(s options.Settings) error {
	return m.store.ApplySettings(s)
}

// RegisterTypes makes the types of samples resolvable by name in mapping files.
func (m *Mapper) RegisterTypes(samples ...any) {
	for _, s := range samples {
		m.model.Register(reflect.TypeOf(s))
	}
}

// RegisterConstructor adds a constructor func for the type it returns. names label the
// parameters for member matching; without them parameters match by position and type.
func (m *Mapper) RegisterConstructor(fn any, names ...string) error {
	if err := m.model.RegisterConstructor(fn, names...); err != nil {
		return err
	}

	m.store.Invalidate()

	return nil
}

// RegisterEnum declares the complete value set of an enum type.
func (m *Mapper) RegisterEnum(values ...any) error {
	if err := m.enums.Register(values...); err != nil {
		return err
	}

	m.store.Invalidate()

	return nil
}

// RegisterCaster adds a converter func used for its exact type pair, in any shape
// node.ParseCaster accepts.
func (m *Mapper) RegisterCaster(fn any) error {
	if err := m.casts.Register(fn); err != nil {
		return err
	}

	m.store.Invalidate()

	return nil
}

// RegisterValue names a value func for mapping files.
func (m *Mapper) RegisterValue(name string, fn ValueFunc) {
	m.funcs.AddValue(name, fn)
}

// RegisterCondition names a condition for mapping files.
func (m *Mapper) RegisterCondition(name string, fn Condition) {
	m.funcs.AddCondition(name, fn)
}

// RegisterFactory names a factory for mapping files.
func (m *Mapper) RegisterFactory(name string, fn Factory) {
	m.funcs.AddFactory(name, fn)
}

// RegisterCallback names a callback for mapping files.
func (m *Mapper) RegisterCallback(name string, fn Callback) {
	m.funcs.AddCallback(name, fn)
}

// Stats counts the work done so far.
type Stats struct {
	PlansCompiled int64 // compilations run, failed ones included
	PlansCached   int   // plans kept by the cache
	FuncsCompiled int64 // plans turned into executable funcs
}

// Stats returns the compilation counters.
func (m *Mapper) Stats() Stats {
	return Stats{
		PlansCompiled: m.cache.Compiles(),
		PlansCached:   m.cache.Len(),
		FuncsCompiled: m.engine.Compiled(),
	}
}
