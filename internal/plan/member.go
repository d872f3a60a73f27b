package plan

import (
	"reflect"
	"slices"
	"strings"
	"sync/atomic"

	"struct-mapper/internal/analyze"
)

// QualifiedMember is a target member at one position of the target graph. The same
// member of the same type is a distinct QualifiedMember under every parent, so
// configuration and recursion decisions are path-specific.
type QualifiedMember struct {
	// Member is nil for roots, collection elements and dictionary entries.
	Member *analyze.MemberInfo
	// Type is the declared type of the value at this position.
	Type   reflect.Type
	Parent *QualifiedMember
	Depth  int
	// Path is "Order.Items[i].Name"; entries render as "Values[key]".
	Path string

	// IsRecursion is set when the target type (element type for enumerables) equals the
	// type of an ancestor.
	IsRecursion         bool
	IsEnumerableElement bool
	IsDictionaryEntry   bool
	ElementKey          string

	keyed           bool
	unconstructable atomic.Bool
}

// NewRoot starts a member graph at target type t.
func NewRoot(t reflect.Type) *QualifiedMember {
	name := analyze.TypeString(analyze.Deref(t))
	if i := strings.LastIndexByte(name, '.'); i >= 0 && !strings.ContainsAny(name, "[]*") {
		name = name[i+1:]
	}

	return &QualifiedMember{Type: t, Path: name}
}

// Child returns the member m below q.
func (q *QualifiedMember) Child(m *analyze.MemberInfo) *QualifiedMember {
	child := q.derive(m.Type, q.Path+"."+m.Name)
	child.Member = m

	return child.finish()
}

// Element returns the collection element of q, a member of enumerable type.
func (q *QualifiedMember) Element(elem reflect.Type) *QualifiedMember {
	child := q.derive(elem, q.Path+"[i]")
	child.IsEnumerableElement = true

	return child.finish()
}

// Entry returns the dictionary entry key of q. Entries below q are keyed.
func (q *QualifiedMember) Entry(key string, t reflect.Type) *QualifiedMember {
	child := q.derive(t, q.Path+"["+key+"]")
	child.IsDictionaryEntry = true
	child.ElementKey = key
	child.keyed = true

	return child.finish()
}

// setKeyed marks q and every member derived from it as read or written by key.
func (q *QualifiedMember) setKeyed() {
	q.keyed = true
}

func (q *QualifiedMember) derive(t reflect.Type, path string) *QualifiedMember {
	return &QualifiedMember{
		Type:   t,
		Parent: q,
		Depth:  q.Depth + 1,
		Path:   path,
		keyed:  q.keyed,
	}
}

func (q *QualifiedMember) finish() *QualifiedMember {
	rt := q.RecursionType()
	if analyze.Classify(rt) == analyze.TypeKindComplex {
		for a := q.Parent; a != nil; a = a.Parent {
			if analyze.Deref(a.Type) == rt {
				q.IsRecursion = true
				break
			}
		}
	}

	return q
}

// Name is the last path segment: the member name, "[i]" or the entry key.
func (q *QualifiedMember) Name() string {
	switch {
	case q.Member != nil:
		return q.Member.Name
	case q.IsDictionaryEntry:
		return q.ElementKey
	case q.IsEnumerableElement:
		return "[i]"
	default:
		return q.Path
	}
}

// RecursionType is the type recursion is detected on: the element type for
// enumerables, the base type otherwise.
func (q *QualifiedMember) RecursionType() reflect.Type {
	t := analyze.Deref(q.Type)
	if t == nil {
		return nil
	}

	if analyze.Classify(t) == analyze.TypeKindEnumerable {
		switch t.Kind() {
		case reflect.Slice, reflect.Array:
			return analyze.Deref(t.Elem())
		case reflect.Map:
			return analyze.Deref(t.Key())
		}
	}

	return t
}

// Occurrences counts q and its ancestors whose base type is t.
func (q *QualifiedMember) Occurrences(t reflect.Type) int {
	n := 0

	for a := q; a != nil; a = a.Parent {
		if analyze.Deref(a.Type) == t {
			n++
		}
	}

	return n
}

// IsKeyed reports whether q sits beneath a dictionary, read or written by key.
func (q *QualifiedMember) IsKeyed() bool {
	return q.keyed
}

// MarkUnconstructable records that no instance could be built for q. Set once, never cleared.
func (q *QualifiedMember) MarkUnconstructable() {
	q.unconstructable.Store(true)
}

// IsUnconstructable reports whether MarkUnconstructable was called.
func (q *QualifiedMember) IsUnconstructable() bool {
	return q.unconstructable.Load()
}

// RelativePath renders q relative to the ancestor frame as configured member paths
// are written: "Email", "Address.Line1", "Items[].Name". It returns "" when q is not
// below frame or the path crosses a dictionary entry.
func (q *QualifiedMember) RelativePath(frame *QualifiedMember) string {
	var (
		parts  []string
		suffix string
	)

	for n := q; n != frame; n = n.Parent {
		switch {
		case n == nil, n.IsDictionaryEntry:
			return ""
		case n.IsEnumerableElement:
			suffix = "[]" + suffix
		case n.Member != nil:
			parts = append(parts, n.Member.Name+suffix)
			suffix = ""
		default:
			return ""
		}
	}

	if suffix != "" || len(parts) == 0 {
		return ""
	}

	slices.Reverse(parts)

	return strings.Join(parts, ".")
}
