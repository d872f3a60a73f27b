package plan

import (
	"struct-mapper/internal/common"
	"struct-mapper/internal/mapping"
)

// DictionaryRecursionBound is how many occurrences of one type a keyed graph expands
// before recursion short-circuits. Keyed graphs cannot delegate to a repeat plan.
const DictionaryRecursionBound = 2

// RecursionStrategy is how an object position is compiled.
type RecursionStrategy int

const (
	// Inline compiles the object in place, specific to its path.
	Inline RecursionStrategy = iota
	// RepeatFunc delegates to the shared plan of the type pair.
	RepeatFunc
	// ShortCircuit assigns the zero value.
	ShortCircuit
)

// String returns a human-readable representation of the RecursionStrategy.
func (r RecursionStrategy) String() string {
	switch r {
	case Inline:
		return "inline"
	case RepeatFunc:
		return "repeat"
	case ShortCircuit:
		return "short-circuit"
	default:
		return common.UnknownStr
	}
}

// DecideStrategy decides how the object at m is compiled, given the recursion rule
// of its target type.
func DecideStrategy(m *QualifiedMember, rule mapping.RecursionRule) RecursionStrategy {
	t := m.RecursionType()

	switch {
	case m.IsRecursion && rule.NeverExpand:
		return ShortCircuit
	case m.IsKeyed() && m.Occurrences(t) > DictionaryRecursionBound:
		return ShortCircuit
	case rule.MaxDepth > 0 && m.Occurrences(t)-1 > rule.MaxDepth:
		return ShortCircuit
	case m.IsRecursion && !m.IsKeyed():
		return RepeatFunc
	default:
		return Inline
	}
}
