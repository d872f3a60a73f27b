package mapping

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"

	"struct-mapper/internal/analyze"
	"struct-mapper/options"
)

// Store holds the configuration a mapper compiles plans from. It is safe for concurrent
// use; every change moves the fingerprint so plans compiled before it are not reused.
type Store struct {
	mu sync.RWMutex

	settings    options.Settings
	dataSources []*DataSource
	ignores     []*Ignore
	derived     []*DerivedPair
	factories   []*FactoryEntry
	callbacks   []*CallbackEntry
	identities  map[reflect.Type]string
	recursion   map[reflect.Type]RecursionRule
	pairs       map[pairKey]*PairSettings
	separators  []separatorEntry

	seq         int
	fingerprint uint64
}

type separatorEntry struct {
	pair      pairKey
	separator string
}

// NewStore creates an empty store with default settings.
func NewStore() *Store {
	s := &Store{
		settings:   options.Defaults(),
		identities: make(map[reflect.Type]string),
		recursion:  make(map[reflect.Type]RecursionRule),
		pairs:      make(map[pairKey]*PairSettings),
	}
	s.touch()

	return s
}

// touch advances the registration sequence and recomputes the fingerprint. Callers hold mu.
func (s *Store) touch() int {
	s.seq++

	h := xxhash.New()
	_, _ = fmt.Fprintf(h, "seq=%d;settings=%+v;", s.seq, s.settings)
	_, _ = h.WriteString(s.describe())
	s.fingerprint = h.Sum64()

	return s.seq
}

// describe renders the function-free part of the configuration canonically.
func (s *Store) describe() string {
	var sb strings.Builder

	for _, d := range s.dataSources {
		fmt.Fprintf(&sb, "ds:%s|%v|%v|%v|%s|%s|%v|%d|%v;",
			d.Name, d.SourceType, d.TargetType, d.RuleSets, d.TargetPath, d.SourcePath, d.Constant, d.Order, d.After)
	}

	for _, i := range s.ignores {
		fmt.Fprintf(&sb, "ig:%v|%v|%v|%s|%t;", i.SourceType, i.TargetType, i.RuleSets, i.TargetPath, i.Condition != nil)
	}

	for _, d := range s.derived {
		fmt.Fprintf(&sb, "dv:%v|%v|%v;", d.Source, d.Target, d.Concrete)
	}

	for _, f := range s.factories {
		fmt.Fprintf(&sb, "fa:%v|%v;", f.SourceType, f.TargetType)
	}

	for _, c := range s.callbacks {
		fmt.Fprintf(&sb, "cb:%v|%v|%v|%s;", c.SourceType, c.TargetType, c.RuleSets, c.Timing)
	}

	for _, t := range sortedTypes(s.identities) {
		fmt.Fprintf(&sb, "id:%v|%s;", t, s.identities[t])
	}

	for _, t := range sortedTypes(s.recursion) {
		fmt.Fprintf(&sb, "rc:%v|%+v;", t, s.recursion[t])
	}

	for _, e := range s.separators {
		fmt.Fprintf(&sb, "sp:%v|%v|%q;", e.pair.source, e.pair.target, e.separator)
	}

	return sb.String()
}

func sortedTypes[V any](m map[reflect.Type]V) []reflect.Type {
	keys := make([]reflect.Type, 0, len(m))
	for t := range m {
		keys = append(keys, t)
	}

	slices.SortFunc(keys, func(a, b reflect.Type) int {
		return strings.Compare(a.PkgPath()+"."+a.String(), b.PkgPath()+"."+b.String())
	})

	return keys
}

// Fingerprint identifies the current configuration. It changes with every registration.
func (s *Store) Fingerprint() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fingerprint
}

// Settings returns the engine settings.
func (s *Store) Settings() options.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// ApplySettings overlays the non-zero fields of overlay on the current settings.
func (s *Store) ApplySettings(overlay options.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, err := s.settings.Merge(overlay)
	if err != nil {
		return err
	}

	s.settings = merged
	s.touch()

	return nil
}

// Invalidate moves the fingerprint for changes plans depend on that live outside the
// store: converter funcs, constructors and enums.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch()
}

// AddDataSource registers a configured source.
func (s *Store) AddDataSource(d DataSource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.SourceType = analyze.Deref(d.SourceType)
	d.TargetType = analyze.Deref(d.TargetType)
	d.TargetPath = NormalizePath(d.TargetPath)
	d.seq = s.touch()
	s.dataSources = append(s.dataSources, &d)
}

// AddIgnore registers an ignored member.
func (s *Store) AddIgnore(i Ignore) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i.SourceType = analyze.Deref(i.SourceType)
	i.TargetType = analyze.Deref(i.TargetType)
	i.TargetPath = NormalizePath(i.TargetPath)
	i.seq = s.touch()
	s.ignores = append(s.ignores, &i)
}

// AddDerivedPair registers the concrete target built for a source type.
func (s *Store) AddDerivedPair(d DerivedPair) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d.Source = analyze.Deref(d.Source)
	d.seq = s.touch()
	s.derived = append(s.derived, &d)
}

// AddFactory registers an object factory.
func (s *Store) AddFactory(f FactoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.SourceType = analyze.Deref(f.SourceType)
	f.TargetType = analyze.Deref(f.TargetType)
	f.seq = s.touch()
	s.factories = append(s.factories, &f)
}

// AddCallback registers a before or after callback.
func (s *Store) AddCallback(c CallbackEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.SourceType = analyze.Deref(c.SourceType)
	c.TargetType = analyze.Deref(c.TargetType)
	c.seq = s.touch()
	s.callbacks = append(s.callbacks, &c)
}

// SetIdentity names the member identifying elements of t when collections are merged.
func (s *Store) SetIdentity(t reflect.Type, member string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[analyze.Deref(t)] = member
	s.touch()
}

// SetRecursion sets the recursion rule of target type t.
func (s *Store) SetRecursion(t reflect.Type, rule RecursionRule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recursion[analyze.Deref(t)] = rule
	s.touch()
}

// SetThrowIfIncomplete makes compilation of the pair fail on unmapped members.
func (s *Store) SetThrowIfIncomplete(source, target reflect.Type) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pair(source, target).ThrowIfIncomplete = true
	s.touch()
}

// SetKeySeparator overrides the dictionary key separator for a pair. Every call is kept
// so Validate can report redundant and conflicting settings.
func (s *Store) SetKeySeparator(source, target reflect.Type, separator string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{source: analyze.Deref(source), target: analyze.Deref(target)}
	s.separators = append(s.separators, separatorEntry{pair: key, separator: separator})
	s.pair(source, target).KeySeparator = separator
	s.touch()
}

func (s *Store) pair(source, target reflect.Type) *PairSettings {
	key := pairKey{source: analyze.Deref(source), target: analyze.Deref(target)}

	p, ok := s.pairs[key]
	if !ok {
		p = &PairSettings{}
		s.pairs[key] = p
	}

	return p
}

// Pairs lists the source and target types configured together. Entries without a
// source type are left out: they apply to any source.
func (s *Store) Pairs() [][2]reflect.Type {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out [][2]reflect.Type

	seen := make(map[pairKey]bool)
	add := func(source, target reflect.Type) {
		key := pairKey{source: source, target: target}
		if source != nil && target != nil && !seen[key] {
			seen[key] = true
			out = append(out, [2]reflect.Type{source, target})
		}
	}

	for _, d := range s.dataSources {
		add(d.SourceType, d.TargetType)
	}

	for _, i := range s.ignores {
		add(i.SourceType, i.TargetType)
	}

	for key, p := range s.pairs {
		if p.ThrowIfIncomplete {
			add(key.source, key.target)
		}
	}

	return out
}

// DataSourcesFor lists the configured sources of the member at path below target that
// apply to source and rs, ordered by Order, registration and After constraints.
func (s *Store) DataSourcesFor(source, target reflect.Type, path string, rs options.RuleSet) []*DataSource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target = analyze.Deref(target)

	var out []*DataSource

	for _, d := range s.dataSources {
		if d.TargetType == target && d.TargetPath == path && d.RuleSets.Has(rs) && sourceApplies(d.SourceType, source) {
			out = append(out, d)
		}
	}

	return orderDataSources(out)
}

// IgnoresFor lists the ignores of the member at path below target.
func (s *Store) IgnoresFor(source, target reflect.Type, path string, rs options.RuleSet) []*Ignore {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target = analyze.Deref(target)

	var out []*Ignore

	for _, i := range s.ignores {
		if i.TargetType == target && i.TargetPath == path && i.RuleSets.Has(rs) && sourceApplies(i.SourceType, source) {
			out = append(out, i)
		}
	}

	return out
}

// DerivedTarget returns the concrete type to build for target when mapping from source.
// The most recently registered pairing wins.
func (s *Store) DerivedTarget(source, target reflect.Type) (reflect.Type, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source = analyze.Deref(source)

	for _, d := range slices.Backward(s.derived) {
		if d.Target == target && sourceApplies(d.Source, source) {
			return d.Concrete, true
		}
	}

	return nil, false
}

// HasDerivedPairs reports whether any pairing targets target.
func (s *Store) HasDerivedPairs(target reflect.Type) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.derived {
		if d.Target == target {
			return true
		}
	}

	return false
}

// FactoryFor returns the factory for target, preferring the latest source-specific one.
func (s *Store) FactoryFor(source, target reflect.Type) *FactoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target = analyze.Deref(target)

	var general *FactoryEntry

	for _, f := range slices.Backward(s.factories) {
		if f.TargetType != target || !sourceApplies(f.SourceType, source) {
			continue
		}

		if f.SourceType != nil {
			return f
		}

		if general == nil {
			general = f
		}
	}

	return general
}

// CallbacksFor lists callbacks for the pair in registration order.
func (s *Store) CallbacksFor(source, target reflect.Type, rs options.RuleSet, timing CallbackTiming) []Callback {
	s.mu.RLock()
	defer s.mu.RUnlock()

	target = analyze.Deref(target)

	var out []Callback

	for _, c := range s.callbacks {
		if c.Timing == timing && c.TargetType == target && c.RuleSets.Has(rs) && sourceApplies(c.SourceType, source) {
			out = append(out, c.Func)
		}
	}

	return out
}

// Identity returns the identity member of element type t.
func (s *Store) Identity(t reflect.Type) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	member, ok := s.identities[analyze.Deref(t)]

	return member, ok
}

// Recursion returns the recursion rule of target type t.
func (s *Store) Recursion(t reflect.Type) (RecursionRule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rule, ok := s.recursion[analyze.Deref(t)]

	return rule, ok
}

// Pair returns the settings of a type pair.
func (s *Store) Pair(source, target reflect.Type) PairSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.pairs[pairKey{source: analyze.Deref(source), target: analyze.Deref(target)}]; ok {
		return *p
	}

	return PairSettings{}
}

// Separator returns the dictionary key separator for the pair.
func (s *Store) Separator(source, target reflect.Type) string {
	if sep := s.Pair(source, target).KeySeparator; sep != "" {
		return sep
	}

	if sep := s.Settings().Separator; sep != "" {
		return sep
	}

	return options.DefaultSeparator
}
