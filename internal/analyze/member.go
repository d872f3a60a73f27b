package analyze

import (
	"reflect"
)

// MemberInfo describes one named, typed accessor of a type.
type MemberInfo struct {
	Name       string            // matching name: field name, `map` tag or property name
	GoName     string            // Go identifier: field name or getter method name
	Type       reflect.Type      // declared type
	Kind       MemberKind        // field, property or constructor parameter
	TypeKind   TypeKind          // classification of Type
	IsReadable bool              // a value can be read
	IsWritable bool              // a value can be assigned
	IsReadOnly bool              // readable but not writable
	Index      []int             // field index path, promoted fields included
	Position   int               // declaration order, parameter position for ctor params
	Tag        reflect.StructTag // raw struct tag

	getter reflect.Value // func(*T) V
	setter reflect.Value // func(*T, V)
}

// JSONName returns the JSON tag name if present, otherwise the member name.
func (m *MemberInfo) JSONName() string {
	if tag := m.Tag.Get("json"); tag != "" && tag != "-" {
		// Parse first part before comma
		for i := range len(tag) {
			if tag[i] == ',' {
				return tag[:i]
			}
		}

		return tag
	}

	return m.Name
}

// HasTag returns true if the member has the specified tag.
func (m *MemberInfo) HasTag(key string) bool {
	return m.Tag.Get(key) != ""
}

// GetTag returns the value of the specified tag.
func (m *MemberInfo) GetTag(key string) string {
	return m.Tag.Get(key)
}

// PopulatableInPlace reports whether a read-only member still exposes a mutable
// object: a pointer to struct, a map, or a pointer to slice.
func (m *MemberInfo) PopulatableInPlace() bool {
	switch m.Type.Kind() {
	case reflect.Map:
		return true
	case reflect.Ptr:
		elem := m.Type.Elem().Kind()
		return elem == reflect.Struct || elem == reflect.Slice
	default:
		return false
	}
}

// Get reads the member from v, a value of the member's owner type. It returns the
// zero Value when a promoted field sits behind a nil embedded pointer.
func (m *MemberInfo) Get(v reflect.Value) reflect.Value {
	switch m.Kind {
	case MemberField:
		f, err := v.FieldByIndexErr(m.Index)
		if err != nil {
			return reflect.Value{}
		}

		return f
	case MemberProperty:
		if !m.getter.IsValid() {
			return reflect.Value{}
		}

		return m.getter.Call([]reflect.Value{addressOf(v)})[0]
	default:
		return reflect.Value{}
	}
}

// Set assigns x to the member of v. v must be addressable; nil embedded pointers on the way are allocated.
func (m *MemberInfo) Set(v, x reflect.Value) {
	switch m.Kind {
	case MemberField:
		fieldForSet(v, m.Index).Set(x)
	case MemberProperty:
		if m.setter.IsValid() {
			m.setter.Call([]reflect.Value{v.Addr(), x})
		}
	}
}

// Addressable returns the settable storage of a field member, for in-place population.
func (m *MemberInfo) Addressable(v reflect.Value) (reflect.Value, bool) {
	if m.Kind != MemberField || !v.CanAddr() {
		return reflect.Value{}, false
	}

	return fieldForSet(v, m.Index), true
}

func addressOf(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)

	return ptr
}

func fieldForSet(v reflect.Value, index []int) reflect.Value {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Ptr {
			if v.IsNil() {
				v.Set(reflect.New(v.Type().Elem()))
			}

			v = v.Elem()
		}

		v = v.Field(x)
	}

	return v
}
