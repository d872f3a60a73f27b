package mapping

import (
	"cmp"
	"maps"
	"slices"

	"struct-mapper/options"
)

// MappingFile represents the root of a mapping configuration file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty" toml:"version,omitempty" json:"version,omitempty"`

	// Settings overlay the engine defaults.
	Settings *options.Settings `yaml:"settings,omitempty" toml:"settings,omitempty" json:"settings,omitempty"`

	// Types holds per-type rules: element identity and recursion limits.
	Types []TypeRule `yaml:"types,omitempty" toml:"types,omitempty" json:"types,omitempty"`

	// TypeMappings is a list of type pair mappings.
	TypeMappings []TypeMapping `yaml:"mappings" toml:"mappings" json:"mappings"`
}

// TypeRule configures one type wherever it appears.
type TypeRule struct {
	// Type identifier (e.g., "warehouse.OrderItem" or full path).
	Type string `yaml:"type" toml:"type" json:"type"`

	// Identity names the member identifying elements of this type in merged collections.
	Identity string `yaml:"identity,omitempty" toml:"identity,omitempty" json:"identity,omitempty"`

	// MaxDepth and NeverExpand bound recursive occurrences of the type.
	MaxDepth    int  `yaml:"max_depth,omitempty" toml:"max_depth,omitempty" json:"max_depth,omitempty"`
	NeverExpand bool `yaml:"never_expand,omitempty" toml:"never_expand,omitempty" json:"never_expand,omitempty"`
}

// Recursion returns the recursion rule of the type.
func (r TypeRule) Recursion() RecursionRule {
	return RecursionRule{MaxDepth: r.MaxDepth, NeverExpand: r.NeverExpand}
}

// TypeMapping defines how to map one source type to one target type.
type TypeMapping struct {
	// Source type identifier (e.g., "store.Order" or full path). Empty means any source.
	Source string `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`

	// Target type identifier (e.g., "warehouse.Order" or full path).
	Target string `yaml:"target" toml:"target" json:"target"`

	// RuleSets restricts the entries of this mapping; empty means all rule sets.
	RuleSets StringArray `yaml:"rule_sets,omitempty" toml:"rule_sets,omitempty" json:"rule_sets,omitempty"`

	// OneToOne is a simplified syntax where keys are source paths and values are
	// target paths. Example: { "Number": "Reference" }
	OneToOne map[string]string `yaml:"121,omitempty" toml:"121,omitempty" json:"121,omitempty"`

	// Fields defines explicit data sources with full control.
	Fields []FieldMapping `yaml:"fields,omitempty" toml:"fields,omitempty" json:"fields,omitempty"`

	// Ignore lists target members that should not be mapped.
	Ignore StringArray `yaml:"ignore,omitempty" toml:"ignore,omitempty" json:"ignore,omitempty"`

	// IgnoreIf lists target members ignored when a named condition holds.
	IgnoreIf []ConditionalIgnore `yaml:"ignore_if,omitempty" toml:"ignore_if,omitempty" json:"ignore_if,omitempty"`

	// Factory names a registered factory building target instances.
	Factory string `yaml:"factory,omitempty" toml:"factory,omitempty" json:"factory,omitempty"`

	// Before and After name registered callbacks.
	Before StringArray `yaml:"before,omitempty" toml:"before,omitempty" json:"before,omitempty"`
	After  StringArray `yaml:"after,omitempty" toml:"after,omitempty" json:"after,omitempty"`

	// Derived selects concrete targets per runtime source type.
	Derived []DerivedMapping `yaml:"derived,omitempty" toml:"derived,omitempty" json:"derived,omitempty"`

	// ThrowIfIncomplete fails compilation when target members stay unmapped.
	ThrowIfIncomplete bool `yaml:"throw_if_incomplete,omitempty" toml:"throw_if_incomplete,omitempty" json:"throw_if_incomplete,omitempty"`

	// KeySeparator overrides the flattened dictionary key separator.
	KeySeparator string `yaml:"key_separator,omitempty" toml:"key_separator,omitempty" json:"key_separator,omitempty"`

	// Auto pins convention matches exported from a compiled plan. Lowest priority.
	Auto []FieldMapping `yaml:"auto,omitempty" toml:"auto,omitempty" json:"auto,omitempty"`
}

// FieldMapping defines one data source of a target member. Exactly one of Source,
// Transform and Constant provides the value.
type FieldMapping struct {
	// Target is the target member path (e.g., "Address.Line1", "Items[].Name").
	Target string `yaml:"target" toml:"target" json:"target"`

	// Source is the source member path.
	Source string `yaml:"source,omitempty" toml:"source,omitempty" json:"source,omitempty"`

	// Transform names a registered value func.
	Transform string `yaml:"transform,omitempty" toml:"transform,omitempty" json:"transform,omitempty"`

	// Constant is a literal value, converted to the member type.
	Constant any `yaml:"constant,omitempty" toml:"constant,omitempty" json:"constant,omitempty"`

	// Condition names a registered condition making the source conditional.
	Condition string `yaml:"condition,omitempty" toml:"condition,omitempty" json:"condition,omitempty"`

	// Name identifies the source for After ordering.
	Name string `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`

	// Order sorts sources of one member; lower first.
	Order int `yaml:"order,omitempty" toml:"order,omitempty" json:"order,omitempty"`

	// After names sources tried before this one.
	After StringArray `yaml:"after,omitempty" toml:"after,omitempty" json:"after,omitempty"`
}

// ConditionalIgnore ignores target members while a named condition holds.
type ConditionalIgnore struct {
	Condition string      `yaml:"condition" toml:"condition" json:"condition"`
	Targets   StringArray `yaml:"targets" toml:"targets" json:"targets"`
}

// DerivedMapping builds Concrete for sources of type Source.
type DerivedMapping struct {
	Source   string `yaml:"source" toml:"source" json:"source"`
	Concrete string `yaml:"concrete" toml:"concrete" json:"concrete"`
}

// MappingPriority represents the priority level of a mapping rule.
type MappingPriority int

const (
	PriorityAuto     MappingPriority = iota // Lowest: pinned convention matches
	PriorityIgnore                          // Third: explicitly ignored
	PriorityFields                          // Second: explicit field mappings
	PriorityOneToOne                        // Highest: 121 shorthand mappings
)

// String returns a human-readable representation of the priority.
func (p MappingPriority) String() string {
	switch p {
	case PriorityOneToOne:
		return "121"
	case PriorityFields:
		return "fields"
	case PriorityIgnore:
		return "ignore"
	case PriorityAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// sortedOneToOne returns the 121 entries as source/target pairs ordered by target path.
func (tm *TypeMapping) sortedOneToOne() [][2]string {
	sources := slices.SortedFunc(maps.Keys(tm.OneToOne), func(a, b string) int {
		return cmp.Or(cmp.Compare(tm.OneToOne[a], tm.OneToOne[b]), cmp.Compare(a, b))
	})

	pairs := make([][2]string, len(sources))
	for i, source := range sources {
		pairs[i] = [2]string{source, tm.OneToOne[source]}
	}

	return pairs
}
