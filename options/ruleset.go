// Package options holds the mapping rule sets and the engine-wide settings.
package options

import (
	"fmt"
	"strings"
)

// RuleSet is the mapping mode governing construction and overwrite semantics.
type RuleSet int

const (
	CreateNew RuleSet = iota // map onto a newly constructed target
	Merge                    // fill only the unset parts of an existing target
	Overwrite                // replace the values of an existing target
	Project                  // create new, without callbacks, factories or object tracking

	// RuleSetTotal is the number of rule sets defined
	RuleSetTotal = int(iota)
)

// RuleSetSettings are the behavioral switches a rule set carries.
type RuleSetSettings struct {
	// OverwriteExisting allows replacing non-zero target values.
	OverwriteExisting bool
	// MergeEnumerables appends missing source elements to existing target collections.
	MergeEnumerables bool
	// ReplaceEnumerables builds a fresh target collection.
	ReplaceEnumerables bool
	// NullSourceClearsTarget assigns nil/zero when the source value is nil.
	NullSourceClearsTarget bool
	// AllowCallbacks runs configured before/after callbacks.
	AllowCallbacks bool
	// AllowObjectTracking reuses targets for source instances already mapped in the same call.
	AllowObjectTracking bool
	// AllowFactories uses configured object factories.
	AllowFactories bool
}

func (r RuleSet) String() string {
	switch r {
	case CreateNew:
		return "CreateNew"
	case Merge:
		return "Merge"
	case Overwrite:
		return "Overwrite"
	case Project:
		return "Project"
	default:
		return fmt.Sprintf("RuleSet(%d)", int(r))
	}
}

// Settings returns the switches of the rule set.
func (r RuleSet) Settings() RuleSetSettings {
	switch r {
	case Merge:
		return RuleSetSettings{
			MergeEnumerables:    true,
			AllowCallbacks:      true,
			AllowObjectTracking: true,
			AllowFactories:      true,
		}
	case Overwrite:
		return RuleSetSettings{
			OverwriteExisting:      true,
			ReplaceEnumerables:     true,
			NullSourceClearsTarget: true,
			AllowCallbacks:         true,
			AllowObjectTracking:    true,
			AllowFactories:         true,
		}
	case Project:
		return RuleSetSettings{
			OverwriteExisting:  true,
			ReplaceEnumerables: true,
		}
	default:
		return RuleSetSettings{
			OverwriteExisting:   true,
			ReplaceEnumerables:  true,
			AllowCallbacks:      true,
			AllowObjectTracking: true,
			AllowFactories:      true,
		}
	}
}

// ParseRuleSet accepts rule set names case-insensitively, with or without separators ("create_new").
func ParseRuleSet(s string) (RuleSet, error) {
	normalized := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(s))

	for r := range RuleSet(RuleSetTotal) {
		if strings.ToLower(r.String()) == normalized {
			return r, nil
		}
	}

	return 0, fmt.Errorf("unknown rule set %q", s)
}

// All returns every rule set in declaration order.
func All() []RuleSet {
	return []RuleSet{CreateNew, Merge, Overwrite, Project}
}
