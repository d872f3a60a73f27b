package primitive

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

var (
	ErrEnumMixedTypes = errors.New("enum values must share one type")
	ErrEnumNotEnum    = errors.New("enum values must be named integer or string types")
	ErrEnumNoName     = errors.New("integer enum values must implement fmt.Stringer")
)

type enumValue struct {
	Name  string
	Value reflect.Value
}

type enumInfo struct {
	values []enumValue
}

// EnumRegistry records the named values of enum types. Conversions of registered
// enums are validated against the recorded values; unregistered enums fall back to
// their String and IsValid methods.
type EnumRegistry struct {
	mu    sync.RWMutex
	enums map[reflect.Type]*enumInfo
}

func NewEnumRegistry() *EnumRegistry {
	return &EnumRegistry{enums: make(map[reflect.Type]*enumInfo)}
}

// Register records values of one enum type. Names come from String() or, for string enums, the value itself.
func (r *EnumRegistry) Register(values ...any) error {
	if len(values) == 0 {
		return nil
	}

	rtype := reflect.TypeOf(values[0])
	if FromReflectType(rtype) != KindPrimitiveEnum {
		return fmt.Errorf("%w: %v", ErrEnumNotEnum, rtype)
	}

	info := &enumInfo{}

	for _, v := range values {
		rv := reflect.ValueOf(v)
		if rv.Type() != rtype {
			return fmt.Errorf("%w: %v and %v", ErrEnumMixedTypes, rtype, rv.Type())
		}

		name, ok := enumName(rv)
		if !ok {
			return fmt.Errorf("%w: %v", ErrEnumNoName, rtype)
		}

		info.values = append(info.values, enumValue{Name: name, Value: rv})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.enums == nil {
		r.enums = make(map[reflect.Type]*enumInfo)
	}

	r.enums[rtype] = info

	return nil
}

// RegisterEnum is the typed form of EnumRegistry.Register.
func RegisterEnum[T comparable](r *EnumRegistry, values ...T) error {
	anyValues := make([]any, len(values))
	for i, v := range values {
		anyValues[i] = v
	}

	return r.Register(anyValues...)
}

func (r *EnumRegistry) lookup(rtype reflect.Type) *enumInfo {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.enums[rtype]
}

// Registered reports whether rtype has recorded values.
func (r *EnumRegistry) Registered(rtype reflect.Type) bool {
	return r.lookup(rtype) != nil
}

// ByName resolves an enum value by exact name, then case-insensitively.
func (r *EnumRegistry) ByName(rtype reflect.Type, name string) (reflect.Value, bool) {
	info := r.lookup(rtype)
	if info == nil {
		if rtype.Kind() != reflect.String {
			return reflect.Value{}, false
		}

		// unregistered string enum: the name is the value
		v := reflect.New(rtype).Elem()
		v.SetString(name)

		return v, isValidEnum(v)
	}

	for _, ev := range info.values {
		if ev.Name == name {
			return ev.Value, true
		}
	}

	for _, ev := range info.values {
		if strings.EqualFold(ev.Name, name) {
			return ev.Value, true
		}
	}

	return reflect.Value{}, false
}

// Known reports whether v is an accepted value of its enum type.
func (r *EnumRegistry) Known(v reflect.Value) bool {
	info := r.lookup(v.Type())
	if info == nil {
		return isValidEnum(v)
	}

	for _, ev := range info.values {
		if ev.Value.Equal(v) {
			return true
		}
	}

	return false
}

// Name returns the textual form of an enum value.
func (r *EnumRegistry) Name(v reflect.Value) string {
	if info := r.lookup(v.Type()); info != nil {
		for _, ev := range info.values {
			if ev.Value.Equal(v) {
				return ev.Name
			}
		}
	}

	if name, ok := enumName(v); ok {
		return name
	}

	switch {
	case v.CanInt():
		return fmt.Sprint(v.Int())
	case v.CanUint():
		return fmt.Sprint(v.Uint())
	default:
		return v.String()
	}
}

func enumName(v reflect.Value) (string, bool) {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String(), true
	}

	if v.Kind() == reflect.String {
		return v.String(), true
	}

	return "", false
}

type validator interface {
	IsValid() bool
}

func isValidEnum(v reflect.Value) bool {
	if iv, ok := v.Interface().(validator); ok {
		return iv.IsValid()
	}

	return true
}
