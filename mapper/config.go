package mapper

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"struct-mapper/internal/mapping"
	"struct-mapper/internal/plan"
	"struct-mapper/options"
)

// Configure starts the configuration of mapping S onto T.
func Configure[S, T any](m *Mapper) *PairConfig {
	return m.store.For(reflect.TypeFor[S](), reflect.TypeFor[T]())
}

// ConfigureTypes starts the configuration of mapping source onto target. A nil
// source applies the configuration to every source type.
func (m *Mapper) ConfigureTypes(source, target reflect.Type) *PairConfig {
	return m.store.For(source, target)
}

// IdentifyBy names the member identifying elements of T when collections are merged
// or overwritten.
func IdentifyBy[T any](m *Mapper, member string) {
	m.store.IdentifyBy(reflect.TypeFor[T](), member)
}

// NeverExpand maps recursive occurrences of T to its zero value.
func NeverExpand[T any](m *Mapper) {
	m.store.NeverExpand(reflect.TypeFor[T]())
}

// MaxDepth bounds how deep recursive occurrences of T are expanded.
func MaxDepth[T any](m *Mapper, depth int) {
	m.store.MaxDepth(reflect.TypeFor[T](), depth)
}

// LoadConfig applies the mapping file at path. Type names resolve through the types
// registered with WithTypes or RegisterTypes, function names through the Register*
// methods. The whole configuration is validated afterwards.
func (m *Mapper) LoadConfig(path string) error {
	log := m.log.WithName("config")

	mf, err := mapping.LoadFile(path)
	if err != nil {
		return err
	}

	if err := m.ApplyConfig(mf); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	log.Info("loaded mapping file", "path", path, "mappings", len(mf.TypeMappings), "types", len(mf.Types))

	return nil
}

// ApplyConfig registers the content of a parsed mapping file and validates the result.
func (m *Mapper) ApplyConfig(mf *mapping.MappingFile) error {
	if err := mapping.Apply(mf, m.store, m.model, m.funcs); err != nil {
		return err
	}

	return m.Validate()
}

// Validate checks the configuration: After cycles, duplicate names, unknown
// references, separators and paths.
func (m *Mapper) Validate() error {
	return m.store.Validate()
}

// EnsureComplete compiles every configured type pair under every rule set and reports
// each plan leaving target members unmapped.
func (m *Mapper) EnsureComplete() error {
	var errs error

	for _, pair := range m.store.Pairs() {
		for _, rs := range options.All() {
			p, err := m.engine.Program(m.engine.Key(pair[0], pair[1], rs))
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}

			if unmapped := plan.ValidateCompleteness(p); len(unmapped) > 0 {
				errs = multierr.Append(errs, &plan.ValidationError{Key: p.Key, Unmapped: unmapped})
			}
		}
	}

	return errs
}
