package mapping

import (
	"reflect"

	"struct-mapper/options"
)

// PairConfig configures the mapping of one source type to one target type.
// A nil source type configures the target for every source.
type PairConfig struct {
	store    *Store
	source   reflect.Type
	target   reflect.Type
	ruleSets RuleSets
}

// For starts configuring source -> target.
func (s *Store) For(source, target reflect.Type) *PairConfig {
	return &PairConfig{store: s, source: source, target: target}
}

// On restricts the following registrations to the given rule sets.
func (p *PairConfig) On(ruleSets ...options.RuleSet) *PairConfig {
	restricted := *p
	restricted.ruleSets = append(RuleSets(nil), ruleSets...)

	return &restricted
}

// Map starts configuring the data source of the target member at path.
func (p *PairConfig) Map(path string) *MemberConfig {
	return &MemberConfig{pair: p, path: path}
}

// Ignore excludes target members from mapping.
func (p *PairConfig) Ignore(paths ...string) *PairConfig {
	return p.IgnoreIf(nil, paths...)
}

// IgnoreIf excludes target members when cond holds.
func (p *PairConfig) IgnoreIf(cond Condition, paths ...string) *PairConfig {
	for _, path := range paths {
		p.store.AddIgnore(Ignore{
			SourceType: p.source,
			TargetType: p.target,
			RuleSets:   p.ruleSets,
			TargetPath: path,
			Condition:  cond,
		})
	}

	return p
}

// CreateWith builds target instances with fn instead of a constructor.
func (p *PairConfig) CreateWith(fn Factory) *PairConfig {
	p.store.AddFactory(FactoryEntry{SourceType: p.source, TargetType: p.target, Func: fn})
	return p
}

// Before runs fn before each target object of the pair is populated.
func (p *PairConfig) Before(fn Callback) *PairConfig {
	p.store.AddCallback(CallbackEntry{
		SourceType: p.source,
		TargetType: p.target,
		RuleSets:   p.ruleSets,
		Timing:     BeforeMapping,
		Func:       fn,
	})

	return p
}

// After runs fn after each target object of the pair is populated.
func (p *PairConfig) After(fn Callback) *PairConfig {
	p.store.AddCallback(CallbackEntry{
		SourceType: p.source,
		TargetType: p.target,
		RuleSets:   p.ruleSets,
		Timing:     AfterMapping,
		Func:       fn,
	})

	return p
}

// Derive builds concrete when the target is the pair's (interface) target and the
// runtime source has type source.
func (p *PairConfig) Derive(source, concrete reflect.Type) *PairConfig {
	p.store.AddDerivedPair(DerivedPair{Source: source, Target: p.target, Concrete: concrete})
	return p
}

// ThrowIfIncomplete fails compilation of the pair when target members stay unmapped.
func (p *PairConfig) ThrowIfIncomplete() *PairConfig {
	p.store.SetThrowIfIncomplete(p.source, p.target)
	return p
}

// KeySeparator sets the separator of flattened dictionary keys for the pair.
func (p *PairConfig) KeySeparator(separator string) *PairConfig {
	p.store.SetKeySeparator(p.source, p.target, separator)
	return p
}

// MemberConfig collects the options of one configured data source.
type MemberConfig struct {
	pair  *PairConfig
	path  string
	name  string
	cond  Condition
	order int
	after []string
}

// Named names the data source so others can order themselves After it.
func (m *MemberConfig) Named(name string) *MemberConfig {
	m.name = name
	return m
}

// If makes the data source conditional.
func (m *MemberConfig) If(cond Condition) *MemberConfig {
	m.cond = cond
	return m
}

// Order sets the priority among data sources of the same member; lower first.
func (m *MemberConfig) Order(order int) *MemberConfig {
	m.order = order
	return m
}

// After tries the data source only after the named ones.
func (m *MemberConfig) After(names ...string) *MemberConfig {
	m.after = append(m.after, names...)
	return m
}

// From reads the value from a source member path.
func (m *MemberConfig) From(sourcePath string) *PairConfig {
	return m.register(DataSource{SourcePath: sourcePath})
}

// FromFunc computes the value.
func (m *MemberConfig) FromFunc(fn ValueFunc) *PairConfig {
	return m.register(DataSource{Value: fn})
}

// Const assigns a constant value, converted to the member type when needed.
func (m *MemberConfig) Const(value any) *PairConfig {
	return m.register(DataSource{Constant: value, HasConstant: true})
}

func (m *MemberConfig) register(d DataSource) *PairConfig {
	d.Name = m.name
	d.SourceType = m.pair.source
	d.TargetType = m.pair.target
	d.RuleSets = m.pair.ruleSets
	d.TargetPath = m.path
	d.Condition = m.cond
	d.Order = m.order
	d.After = m.after

	m.pair.store.AddDataSource(d)

	return m.pair
}

// IdentifyBy names the member identifying elements of t when collections are merged.
func (s *Store) IdentifyBy(t reflect.Type, member string) *Store {
	s.SetIdentity(t, member)
	return s
}

// NeverExpand maps recursive occurrences of t to the zero value.
func (s *Store) NeverExpand(t reflect.Type) *Store {
	rule, _ := s.Recursion(t)
	rule.NeverExpand = true
	s.SetRecursion(t, rule)

	return s
}

// MaxDepth bounds how deep recursive occurrences of t are expanded.
func (s *Store) MaxDepth(t reflect.Type, depth int) *Store {
	rule, _ := s.Recursion(t)
	rule.MaxDepth = depth
	s.SetRecursion(t, rule)

	return s
}
