package plan

import (
	"fmt"
	"reflect"

	"struct-mapper/internal/analyze"
	"struct-mapper/options"
)

// Key identifies a compiled plan. Plans compiled under an older configuration carry an
// older fingerprint and are never looked up again.
type Key struct {
	Source      reflect.Type // base source type
	Target      reflect.Type // base target type
	RuleSet     options.RuleSet
	Fingerprint uint64
}

// NewKey builds a key with pointer levels stripped from both types.
func NewKey(source, target reflect.Type, rs options.RuleSet, fingerprint uint64) Key {
	return Key{
		Source:      analyze.Deref(source),
		Target:      analyze.Deref(target),
		RuleSet:     rs,
		Fingerprint: fingerprint,
	}
}

// String returns "store.Order -> warehouse.Order (CreateNew)".
func (k Key) String() string {
	return fmt.Sprintf("%s -> %s (%s)", analyze.TypeString(k.Source), analyze.TypeString(k.Target), k.RuleSet)
}

// ID is a stable textual identity of the key, unique across packages.
func (k Key) ID() string {
	return fmt.Sprintf("%s|%s|%d|%x", typeID(k.Source), typeID(k.Target), k.RuleSet, k.Fingerprint)
}

// With returns the key for another type pair under the same rule set and configuration.
func (k Key) With(source, target reflect.Type) Key {
	return NewKey(source, target, k.RuleSet, k.Fingerprint)
}

func typeID(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.PkgPath() + ":" + t.String()
}
