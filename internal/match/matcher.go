package match

import (
	"reflect"
	"strings"
	"sync"

	"struct-mapper/internal/analyze"
	"struct-mapper/primitive"
)

// MatchKind ranks how a source path was found for a target member. Higher wins.
type MatchKind int

//go:generate go tool stringer -type=MatchKind -trimprefix=Match
const (
	MatchNone MatchKind = iota
	MatchPositional
	MatchFlattened
	MatchCaseInsensitive
	MatchExact
)

// maxFlattenDepth bounds the source descent for flattened names such as CustomerAddressCity.
const maxFlattenDepth = 3

// Match is the convention source of one target member.
type Match struct {
	Target      *analyze.MemberInfo
	SourcePath  []*analyze.MemberInfo // getters applied from the source root, outermost first
	Kind        MatchKind
	Compat      TypeCompatibilityResult
	Suggestions []string // closest source names when Kind is MatchNone
}

// Matched reports whether a source was found.
func (m Match) Matched() bool {
	return m.Kind != MatchNone
}

// SourceName renders the source path as dotted member names.
func (m Match) SourceName() string {
	names := make([]string, len(m.SourcePath))
	for i, member := range m.SourcePath {
		names[i] = member.Name
	}

	return strings.Join(names, ".")
}

type typePair struct {
	source reflect.Type
	target reflect.Type
}

// Matcher proposes convention sources for target members. Results per type pair are
// computed once and never replaced.
type Matcher struct {
	model   analyze.TypeModel
	checker *Checker
	cache   sync.Map // typePair -> []Match
}

// NewMatcher creates a matcher over model, scoring simple types with converter.
func NewMatcher(model analyze.TypeModel, converter *primitive.Converter) *Matcher {
	return &Matcher{
		model:   model,
		checker: &Checker{Model: model, Converter: converter},
	}
}

// Checker returns the compatibility checker used for candidates.
func (m *Matcher) Checker() *Checker {
	return m.checker
}

// MatchMembers matches every populatable target member, in target declaration order.
func (m *Matcher) MatchMembers(source, target reflect.Type) []Match {
	key := typePair{source: analyze.Deref(source), target: analyze.Deref(target)}
	if cached, ok := m.cache.Load(key); ok {
		return cached.([]Match)
	}

	targets := m.model.TypeOf(key.target).Targets()
	matches := make([]Match, 0, len(targets))

	for _, member := range targets {
		matches = append(matches, m.MatchMember(key.source, member, ""))
	}

	actual, _ := m.cache.LoadOrStore(key, matches)

	return actual.([]Match)
}

// MatchMember finds the source path for target below prefix, a flattened name already
// consumed by enclosing members (ShippingAddress for ShippingAddressCity).
func (m *Matcher) MatchMember(source reflect.Type, target *analyze.MemberInfo, prefix string) Match {
	info := m.model.TypeOf(source)
	name := prefix + target.Name

	if info == nil || info.Kind != analyze.TypeKindComplex {
		return Match{Target: target}
	}

	if strings.Contains(target.Name, ".") {
		if match, ok := m.dotted(info, target, prefix); ok {
			return match
		}
	}

	if member := info.Member(name); member != nil && member.IsReadable {
		if match, ok := m.accept(target, MatchExact, member); ok {
			return match
		}
	}

	normalized := NormalizeIdent(name)

	for _, member := range info.Readable() {
		if member.Name == name || NormalizeIdent(member.Name) != normalized {
			continue
		}

		if match, ok := m.accept(target, MatchCaseInsensitive, member); ok {
			return match
		}
	}

	if path := m.flattened(info, target, normalized, 0); path != nil {
		if match, ok := m.accept(target, MatchFlattened, path...); ok {
			return match
		}
	}

	return Match{Target: target, Suggestions: m.Suggest(info, target)}
}

func (m *Matcher) accept(target *analyze.MemberInfo, kind MatchKind, path ...*analyze.MemberInfo) (Match, bool) {
	compat := m.checker.Score(path[len(path)-1].Type, target.Type)
	if compat.Compatibility == TypeIncompatible {
		return Match{}, false
	}

	return Match{Target: target, SourcePath: path, Kind: kind, Compat: compat}, true
}

// dotted resolves a target named by a path such as `map:"Customer.Email"`.
func (m *Matcher) dotted(info *analyze.TypeInfo, target *analyze.MemberInfo, prefix string) (Match, bool) {
	var path []*analyze.MemberInfo

	for i, part := range strings.Split(target.Name, ".") {
		if i == 0 {
			part = prefix + part
		}

		if info == nil || info.Kind != analyze.TypeKindComplex {
			return Match{}, false
		}

		member := info.Member(part)
		if member == nil || !member.IsReadable {
			return Match{}, false
		}

		path = append(path, member)
		info = m.model.TypeOf(member.Type)
	}

	return m.accept(target, MatchFlattened, path...)
}

// flattened descends into complex source members whose normalized name prefixes rest.
func (m *Matcher) flattened(info *analyze.TypeInfo, target *analyze.MemberInfo, rest string, depth int) []*analyze.MemberInfo {
	if depth >= maxFlattenDepth {
		return nil
	}

	for _, member := range info.Readable() {
		name := NormalizeIdent(member.Name)
		if depth > 0 && name == rest {
			if m.checker.Score(member.Type, target.Type).Compatibility > TypeIncompatible {
				return []*analyze.MemberInfo{member}
			}

			continue
		}

		if member.TypeKind != analyze.TypeKindComplex || len(name) >= len(rest) || !strings.HasPrefix(rest, name) {
			continue
		}

		if tail := m.flattened(m.model.TypeOf(member.Type), target, rest[len(name):], depth+1); tail != nil {
			return append([]*analyze.MemberInfo{member}, tail...)
		}
	}

	return nil
}

// HasPrefixedMembers reports whether source exposes members named prefix+X, the flattened
// shape of a complex target member named prefix. The prefix must end on a word boundary.
func (m *Matcher) HasPrefixedMembers(source reflect.Type, prefix string) bool {
	info := m.model.TypeOf(source)
	if info == nil || info.Kind != analyze.TypeKindComplex || prefix == "" {
		return false
	}

	for _, member := range info.Readable() {
		if HasTokenPrefix(member.Name, prefix) {
			return true
		}
	}

	return false
}

// MatchParams matches constructor parameters by name, or by position and type when the
// constructor carries no names. The result is in parameter order.
func (m *Matcher) MatchParams(source reflect.Type, ctor *analyze.Constructor, prefix string) []Match {
	matches := make([]Match, len(ctor.Params))

	if ctor.HasNames() {
		for i, param := range ctor.Params {
			matches[i] = m.MatchMember(source, param, prefix)
		}

		return matches
	}

	info := m.model.TypeOf(source)

	var readable []*analyze.MemberInfo
	if info != nil && info.Kind == analyze.TypeKindComplex {
		readable = info.Readable()
	}

	for i, param := range ctor.Params {
		matches[i] = Match{Target: param}

		if i >= len(readable) {
			continue
		}

		if match, ok := m.accept(param, MatchPositional, readable[i]); ok && match.Compat.Compatibility >= TypeConvertible {
			matches[i] = match
		}
	}

	return matches
}

// Suggest lists the source member names closest to target.
func (m *Matcher) Suggest(info *analyze.TypeInfo, target *analyze.MemberInfo) []string {
	if info == nil {
		return nil
	}

	return RankCandidates(target, info.Readable(), m.checker).
		AboveThreshold(DefaultSuggestionScore).
		Top(DefaultSuggestionCount).
		Names()
}
