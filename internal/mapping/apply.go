package mapping

import (
	"fmt"
	"reflect"

	"go.uber.org/multierr"

	"struct-mapper/internal/analyze"
	"struct-mapper/options"
)

// TypeResolver resolves type names used in mapping files.
type TypeResolver interface {
	Lookup(name string) (reflect.Type, bool)
}

// Apply registers the content of mf in store. Type names resolve through types and
// function names through funcs. Every unresolvable name is reported; entries that
// resolve are registered even when others fail.
func Apply(mf *MappingFile, store *Store, types TypeResolver, funcs *TransformRegistry) error {
	if funcs == nil {
		funcs = NewTransformRegistry()
	}

	a := &applier{store: store, types: types, funcs: funcs, origin: "file"}

	if mf.Settings != nil {
		a.add(store.ApplySettings(*mf.Settings))
	}

	for _, rule := range mf.Types {
		t := a.resolve(rule.Type)
		if t == nil {
			continue
		}

		if rule.Identity != "" {
			store.SetIdentity(t, rule.Identity)
		}

		if rule.MaxDepth != 0 || rule.NeverExpand {
			store.SetRecursion(t, rule.Recursion())
		}
	}

	for i := range mf.TypeMappings {
		a.mapping(&mf.TypeMappings[i])
	}

	if a.errs == nil {
		return nil
	}

	return &ConfigurationError{Err: a.errs}
}

type applier struct {
	store  *Store
	types  TypeResolver
	funcs  *TransformRegistry
	origin string
	errs   error
}

func (a *applier) add(err error) {
	a.errs = multierr.Append(a.errs, err)
}

func (a *applier) resolve(name string) reflect.Type {
	t, ok := a.types.Lookup(name)
	if !ok {
		a.add(fmt.Errorf("%w: type %q not found", ErrMissingType, name))
		return nil
	}

	return t
}

func (a *applier) mapping(tm *TypeMapping) {
	var source reflect.Type
	if tm.Source != "" {
		if source = a.resolve(tm.Source); source == nil {
			return
		}
	}

	target := a.resolve(tm.Target)
	if target == nil {
		return
	}

	pair := a.store.For(source, target)

	if len(tm.RuleSets) > 0 {
		ruleSets := make([]options.RuleSet, 0, len(tm.RuleSets))

		for _, name := range tm.RuleSets {
			rs, err := options.ParseRuleSet(name)
			if err != nil {
				a.add(err)
				continue
			}

			ruleSets = append(ruleSets, rs)
		}

		pair = pair.On(ruleSets...)
	}

	origin := a.origin + ": " + tm.Source + " -> " + tm.Target

	for _, entry := range tm.sortedOneToOne() {
		a.field(pair, FieldMapping{Source: entry[0], Target: entry[1]}, origin+" 121")
	}

	for _, fm := range tm.Fields {
		a.field(pair, fm, origin+" fields")
	}

	for _, fm := range tm.Auto {
		a.field(pair, fm, origin+" auto")
	}

	pair.Ignore(tm.Ignore...)

	for _, ig := range tm.IgnoreIf {
		cond, err := a.funcs.Condition(ig.Condition)
		if err != nil {
			a.add(err)
			continue
		}

		pair.IgnoreIf(cond, ig.Targets...)
	}

	if tm.Factory != "" {
		if fn, err := a.funcs.Factory(tm.Factory); err != nil {
			a.add(err)
		} else {
			pair.CreateWith(fn)
		}
	}

	for _, name := range tm.Before {
		if fn, err := a.funcs.Callback(name); err != nil {
			a.add(err)
		} else {
			pair.Before(fn)
		}
	}

	for _, name := range tm.After {
		if fn, err := a.funcs.Callback(name); err != nil {
			a.add(err)
		} else {
			pair.After(fn)
		}
	}

	for _, d := range tm.Derived {
		derivedSource, concrete := a.resolve(d.Source), a.resolve(d.Concrete)
		if derivedSource != nil && concrete != nil {
			pair.Derive(derivedSource, concrete)
		}
	}

	if tm.ThrowIfIncomplete {
		pair.ThrowIfIncomplete()
	}

	if tm.KeySeparator != "" {
		pair.KeySeparator(tm.KeySeparator)
	}
}

func (a *applier) field(pair *PairConfig, fm FieldMapping, origin string) {
	d := DataSource{
		Name:       fm.Name,
		SourceType: pair.source,
		TargetType: pair.target,
		RuleSets:   pair.ruleSets,
		TargetPath: fm.Target,
		SourcePath: fm.Source,
		Order:      fm.Order,
		After:      fm.After,
		Origin:     origin,
	}

	if fm.Constant != nil {
		d.Constant = fm.Constant
		d.HasConstant = true
	}

	if fm.Transform != "" {
		fn, err := a.funcs.Value(fm.Transform)
		if err != nil {
			a.add(err)
			return
		}

		d.Value = fn
	}

	if fm.Condition != "" {
		cond, err := a.funcs.Condition(fm.Condition)
		if err != nil {
			a.add(err)
			return
		}

		d.Condition = cond
	}

	a.store.AddDataSource(d)
}

var _ TypeResolver = (*analyze.ReflectModel)(nil)
