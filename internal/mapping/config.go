package mapping

import (
	"reflect"
	"slices"

	"struct-mapper/options"
)

// Context is the view conditions, value funcs, factories and callbacks get of the
// member being mapped.
type Context interface {
	// Source is the source object of the enclosing mapping.
	Source() any
	// Target is the target object of the enclosing mapping; nil before construction.
	Target() any
	// Parent is the enclosing mapping context, nil at the root.
	Parent() Context
	// RuleSet is the rule set of the current mapping call.
	RuleSet() options.RuleSet
	// Path is the qualified target path, "Order.Items[2].Name".
	Path() string
	// ElementIndex is the index of the enclosing collection element, -1 outside collections.
	ElementIndex() int
}

type (
	// Condition decides at mapping time whether a configured entry applies.
	Condition func(ctx Context) bool
	// ValueFunc computes a member value.
	ValueFunc func(ctx Context) (any, error)
	// Factory builds a target instance. It may return T or *T.
	Factory func(ctx Context) (any, error)
	// Callback runs before or after a target object is populated.
	Callback func(ctx Context) error
)

// RuleSets restricts an entry to some rule sets. Empty means all.
type RuleSets []options.RuleSet

// Has reports whether rs is covered.
func (r RuleSets) Has(rs options.RuleSet) bool {
	return len(r) == 0 || slices.Contains(r, rs)
}

// DataSource is one configured source for a target member.
type DataSource struct {
	// Name identifies the entry for After ordering. Optional.
	Name string
	// SourceType restricts the entry to sources assignable to it; nil means any source.
	SourceType reflect.Type
	// TargetType is the type TargetPath is relative to.
	TargetType reflect.Type
	RuleSets   RuleSets
	// TargetPath is the member path below TargetType: "Email", "Address.Line1", "Items[].Name".
	TargetPath string
	// Condition makes the entry conditional; nil means always.
	Condition Condition

	// Exactly one of the following provides the value.
	SourcePath  string
	Value       ValueFunc
	Constant    any
	HasConstant bool

	// Order sorts entries of the same member; lower first. Ties keep registration order.
	Order int
	// After names entries that must be tried before this one.
	After []string

	// Origin is the file or call site that registered the entry, for diagnostics.
	Origin string

	seq int
}

// IsConditional reports whether the entry only applies when its condition holds.
func (d *DataSource) IsConditional() bool {
	return d.Condition != nil
}

// Ignore excludes a target member from mapping.
type Ignore struct {
	SourceType reflect.Type
	TargetType reflect.Type
	RuleSets   RuleSets
	TargetPath string
	// Condition makes the ignore conditional; the member is mapped when it is false.
	Condition Condition
	Origin    string

	seq int
}

// DerivedPair selects the concrete target built for an interface or base target
// when the runtime source has type Source.
type DerivedPair struct {
	Source   reflect.Type
	Target   reflect.Type // declared target type, usually an interface
	Concrete reflect.Type // type actually constructed

	seq int
}

// FactoryEntry builds instances of TargetType, optionally only for sources of SourceType.
type FactoryEntry struct {
	SourceType reflect.Type
	TargetType reflect.Type
	Func       Factory

	seq int
}

// CallbackTiming says when a callback runs.
type CallbackTiming int

const (
	BeforeMapping CallbackTiming = iota
	AfterMapping
)

func (t CallbackTiming) String() string {
	if t == AfterMapping {
		return "after"
	}

	return "before"
}

// CallbackEntry runs around the population of TargetType objects.
type CallbackEntry struct {
	SourceType reflect.Type
	TargetType reflect.Type
	RuleSets   RuleSets
	Timing     CallbackTiming
	Func       Callback

	seq int
}

// RecursionRule bounds the expansion of a recursive target type.
type RecursionRule struct {
	// MaxDepth stops expansion below this depth; zero defers to the global setting.
	MaxDepth int
	// NeverExpand assigns the zero value instead of mapping recursive occurrences.
	NeverExpand bool
}

// PairSettings are per type pair switches.
type PairSettings struct {
	// ThrowIfIncomplete fails compilation when target members stay unmapped.
	ThrowIfIncomplete bool
	// KeySeparator overrides the flattened dictionary key separator.
	KeySeparator string
}

type pairKey struct {
	source reflect.Type
	target reflect.Type
}

// sourceApplies reports whether an entry restricted to want covers the actual source type.
func sourceApplies(want, actual reflect.Type) bool {
	if want == nil {
		return true
	}

	if actual == nil {
		return false
	}

	if actual == want || actual.AssignableTo(want) {
		return true
	}

	return actual.Kind() == reflect.Ptr && actual.Elem() == want
}
