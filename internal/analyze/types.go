package analyze

import (
	"reflect"

	"struct-mapper/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "struct-mapper/store"
	Name    string // e.g., "Order"
}

// IDOf returns the TypeID of a named type, dereferencing pointers. Unnamed types have an empty ID.
func IDOf(t reflect.Type) TypeID {
	t = Deref(t)
	if t == nil {
		return TypeID{}
	}

	return TypeID{PkgPath: t.PkgPath(), Name: t.Name()}
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Short returns "pkg.Name" using the last package path element.
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// TypeKind is the mapping classification of a type.
type TypeKind int

const (
	TypeKindUnknown    TypeKind = iota
	TypeKindSimple              // primitives, strings, enums, dates, GUIDs, pointers to those
	TypeKindComplex             // struct or pointer to struct
	TypeKindEnumerable          // slice, array, set or sequence
	TypeKindDictionary          // map other than a set
	TypeKindInterface           // interface, resolved on the runtime value
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindSimple:
		return "simple"
	case TypeKindComplex:
		return "complex"
	case TypeKindEnumerable:
		return "enumerable"
	case TypeKindDictionary:
		return "dictionary"
	case TypeKindInterface:
		return "interface"
	default:
		return common.UnknownStr
	}
}

// MemberKind tells how a member is accessed.
type MemberKind int

const (
	MemberField MemberKind = iota
	MemberProperty
	MemberCtorParam
)

// String returns a human-readable representation of the MemberKind.
func (k MemberKind) String() string {
	switch k {
	case MemberField:
		return "field"
	case MemberProperty:
		return "property"
	case MemberCtorParam:
		return "ctor-param"
	default:
		return common.UnknownStr
	}
}

// EnumerableShape is the concrete collection form.
type EnumerableShape int

const (
	ShapeSlice    EnumerableShape = iota // []T
	ShapeArray                           // [N]T
	ShapeSet                             // map[T]struct{}
	ShapeSequence                        // iter.Seq[T], read-only
)

// String returns a human-readable representation of the EnumerableShape.
func (s EnumerableShape) String() string {
	switch s {
	case ShapeSlice:
		return "slice"
	case ShapeArray:
		return "array"
	case ShapeSet:
		return "set"
	case ShapeSequence:
		return "sequence"
	default:
		return common.UnknownStr
	}
}

// EnumerableInfo describes a collection type so population loops can be chosen up front.
type EnumerableInfo struct {
	Elem      reflect.Type
	Shape     EnumerableShape
	Indexable bool // direct index access and length are available
	Len       int  // array length, -1 otherwise
}

// DictionaryInfo describes a map type.
type DictionaryInfo struct {
	Key        reflect.Type
	Value      reflect.Type
	StringKeys bool // keys are strings and may carry flattened member paths
}

// TypeInfo describes a type in the model. Immutable once built.
type TypeInfo struct {
	ID         TypeID
	Type       reflect.Type // base type, pointers removed
	Kind       TypeKind
	Members    []*MemberInfo // fields then properties, declaration order
	Enumerable *EnumerableInfo
	Dictionary *DictionaryInfo

	byName map[string]*MemberInfo
}

// IsNamed returns true if this type has a name (TypeID is set).
func (t *TypeInfo) IsNamed() bool {
	return t.ID.Name != ""
}

// Member returns the member with the exact name, or nil.
func (t *TypeInfo) Member(name string) *MemberInfo {
	return t.byName[name]
}

// Readable returns the members a value can be read from.
func (t *TypeInfo) Readable() []*MemberInfo {
	var out []*MemberInfo

	for _, m := range t.Members {
		if m.IsReadable {
			out = append(out, m)
		}
	}

	return out
}

// Targets returns the members a mapping may populate: writable members and read-only
// members whose value can be populated in place.
func (t *TypeInfo) Targets() []*MemberInfo {
	var out []*MemberInfo

	for _, m := range t.Members {
		if m.IsWritable || (m.IsReadOnly && m.PopulatableInPlace()) {
			out = append(out, m)
		}
	}

	return out
}
