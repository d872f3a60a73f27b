package analyze

import (
	"reflect"
	"slices"
	"strings"
	"sync"

	"struct-mapper/primitive"
)

// TagName is the struct tag consulted for member names: `map:"Name"` renames, `map:"-"` hides.
const TagName = "map"

// TypeModel is the type introspection capability the engine depends on.
type TypeModel interface {
	// TypeOf describes t. The result is shared and must not be modified.
	TypeOf(t reflect.Type) *TypeInfo
	// Constructors lists the registered constructors of t, greediest first.
	Constructors(t reflect.Type) []*Constructor
	// Lookup resolves a registered type by name.
	Lookup(name string) (reflect.Type, bool)
}

// ReflectModel is a TypeModel backed by package reflect.
type ReflectModel struct {
	mu    sync.RWMutex
	types map[reflect.Type]*TypeInfo

	ctorMu sync.RWMutex
	ctors  map[reflect.Type][]*Constructor

	registry Registry
}

var _ TypeModel = (*ReflectModel)(nil)

// NewReflectModel creates an empty model.
func NewReflectModel() *ReflectModel {
	return &ReflectModel{
		types: make(map[reflect.Type]*TypeInfo),
		ctors: make(map[reflect.Type][]*Constructor),
	}
}

// Deref strips every pointer level from t.
func Deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

// Classify returns the mapping classification of t.
func Classify(t reflect.Type) TypeKind {
	t = Deref(t)
	if t == nil {
		return TypeKindUnknown
	}

	if primitive.FromReflectType(t) != 0 {
		return TypeKindSimple
	}

	switch t.Kind() {
	case reflect.Interface:
		return TypeKindInterface
	case reflect.Slice, reflect.Array:
		return TypeKindEnumerable
	case reflect.Map:
		if isSet(t) {
			return TypeKindEnumerable
		}

		return TypeKindDictionary
	case reflect.Func:
		if _, ok := sequenceElem(t); ok {
			return TypeKindEnumerable
		}

		return TypeKindUnknown
	case reflect.Struct:
		return TypeKindComplex
	default:
		return TypeKindUnknown
	}
}

func isSet(t reflect.Type) bool {
	return t.Kind() == reflect.Map && t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0
}

// sequenceElem recognizes func(yield func(T) bool), the shape of iter.Seq[T].
func sequenceElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Func || t.NumIn() != 1 || t.NumOut() != 0 {
		return nil, false
	}

	yield := t.In(0)
	if yield.Kind() != reflect.Func || yield.NumIn() != 1 || yield.NumOut() != 1 || yield.Out(0).Kind() != reflect.Bool {
		return nil, false
	}

	return yield.In(0), true
}

// TypeOf describes t, pointers removed. Safe for concurrent use.
func (m *ReflectModel) TypeOf(t reflect.Type) *TypeInfo {
	t = Deref(t)
	if t == nil {
		return nil
	}

	m.mu.RLock()
	info, ok := m.types[t]
	m.mu.RUnlock()

	if ok {
		return info
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if info, ok = m.types[t]; ok {
		return info
	}

	info = buildTypeInfo(t)
	m.types[t] = info

	return info
}

func buildTypeInfo(t reflect.Type) *TypeInfo {
	info := &TypeInfo{
		ID:     IDOf(t),
		Type:   t,
		Kind:   Classify(t),
		byName: make(map[string]*MemberInfo),
	}

	switch info.Kind {
	case TypeKindComplex:
		info.Members = collectMembers(t)
		for _, member := range info.Members {
			info.byName[member.Name] = member
		}
	case TypeKindEnumerable:
		info.Enumerable = enumerableInfo(t)
	case TypeKindDictionary:
		info.Dictionary = &DictionaryInfo{
			Key:        t.Key(),
			Value:      t.Elem(),
			StringKeys: t.Key().Kind() == reflect.String,
		}
	}

	return info
}

func enumerableInfo(t reflect.Type) *EnumerableInfo {
	switch t.Kind() {
	case reflect.Slice:
		return &EnumerableInfo{Elem: t.Elem(), Shape: ShapeSlice, Indexable: true, Len: -1}
	case reflect.Array:
		return &EnumerableInfo{Elem: t.Elem(), Shape: ShapeArray, Indexable: true, Len: t.Len()}
	case reflect.Map:
		return &EnumerableInfo{Elem: t.Key(), Shape: ShapeSet, Len: -1}
	default:
		elem, _ := sequenceElem(t)
		return &EnumerableInfo{Elem: elem, Shape: ShapeSequence, Len: -1}
	}
}

// collectMembers lists exported fields (promoted ones included) and getter/setter properties.
func collectMembers(t reflect.Type) []*MemberInfo {
	var members []*MemberInfo

	taken := make(map[string]bool)

	for _, f := range reflect.VisibleFields(t) {
		if f.Anonymous && Deref(f.Type).Kind() == reflect.Struct {
			continue
		}

		if !exportedPath(t, f.Index) {
			continue
		}

		name := f.Name
		if tag, ok := f.Tag.Lookup(TagName); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}

			if tag != "" {
				name = tag
			}
		}

		if taken[name] {
			continue
		}

		taken[name] = true

		members = append(members, &MemberInfo{
			Name:       name,
			GoName:     f.Name,
			Type:       f.Type,
			Kind:       MemberField,
			TypeKind:   Classify(f.Type),
			IsReadable: true,
			IsWritable: true,
			Index:      f.Index,
			Position:   len(members),
			Tag:        f.Tag,
		})
	}

	return append(members, collectProperties(t, taken, len(members))...)
}

// exportedPath reports whether every field along index is exported, so the leaf is settable.
func exportedPath(t reflect.Type, index []int) bool {
	for _, i := range index {
		t = Deref(t)

		f := t.Field(i)
		if !f.IsExported() {
			return false
		}

		t = f.Type
	}

	return true
}

// ignoredMethods never become properties.
var ignoredMethods = map[string]bool{
	"String":   true,
	"GoString": true,
	"Error":    true,
	"IsValid":  true,
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func collectProperties(t reflect.Type, taken map[string]bool, position int) []*MemberInfo {
	ptr := reflect.PointerTo(t)

	getters := make(map[string]reflect.Method)
	setters := make(map[string]reflect.Method)

	for i := range ptr.NumMethod() {
		method := ptr.Method(i)
		mt := method.Type

		switch {
		case ignoredMethods[method.Name]:
		case mt.NumIn() == 1 && mt.NumOut() == 1 && mt.Out(0) != errorType && mt.Out(0).Kind() != reflect.Func:
			name := method.Name
			if trimmed, ok := strings.CutPrefix(name, "Get"); ok && trimmed != "" {
				name = trimmed
			}

			getters[name] = method
		case mt.NumIn() == 2 && mt.NumOut() == 0 && strings.HasPrefix(method.Name, "Set") && len(method.Name) > 3:
			setters[method.Name[3:]] = method
		}
	}

	var (
		members []*MemberInfo
		names   []string
	)

	for name := range getters {
		names = append(names, name)
	}

	for name := range setters {
		if _, ok := getters[name]; !ok {
			names = append(names, name)
		}
	}

	slices.Sort(names)

	for _, name := range names {
		if taken[name] {
			continue
		}

		getter, hasGetter := getters[name]
		setter, hasSetter := setters[name]

		member := &MemberInfo{
			Name:     name,
			Kind:     MemberProperty,
			Position: position + len(members),
		}

		if hasGetter {
			member.GoName = getter.Name
			member.Type = getter.Type.Out(0)
			member.IsReadable = true
			member.getter = getter.Func
		}

		if hasSetter {
			in := setter.Type.In(1)
			if hasGetter && in != member.Type {
				hasSetter = false
			} else {
				if !hasGetter {
					member.GoName = setter.Name
					member.Type = in
				}

				member.IsWritable = true
				member.setter = setter.Func
			}
		}

		member.IsReadOnly = member.IsReadable && !hasSetter
		member.TypeKind = Classify(member.Type)
		taken[name] = true

		members = append(members, member)
	}

	return members
}
