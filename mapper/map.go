package mapper

import (
	"errors"
	"fmt"
	"reflect"

	"struct-mapper/internal/analyze"
	"struct-mapper/node"
	"struct-mapper/options"
)

// ErrInvalidTarget is returned when a target to map into is not a non-nil pointer.
var ErrInvalidTarget = errors.New("target must be a non-nil pointer")

// ErrIndexLimit is wrapped by errors for dictionary keys with an element index at or
// past Settings.MaxDictionaryIndex.
var ErrIndexLimit = node.ErrIndexLimit

// Map maps source onto a new T.
func Map[T any](m *Mapper, source any) (T, error) {
	return mapNew[T](m, source, options.CreateNew)
}

// Project maps source onto a new T without callbacks, factories or object tracking.
func Project[T any](m *Mapper, source any) (T, error) {
	return mapNew[T](m, source, options.Project)
}

func mapNew[T any](m *Mapper, source any, rs options.RuleSet) (T, error) {
	var zero T

	out, err := m.engine.Map(reflect.ValueOf(source), reflect.TypeFor[T](), rs, reflect.Value{})
	if err != nil {
		return zero, err
	}

	if !out.IsValid() {
		return zero, nil
	}

	return out.Interface().(T), nil
}

// MapTo maps source onto a new value of type target and returns it.
func (m *Mapper) MapTo(source any, target reflect.Type, rs options.RuleSet) (any, error) {
	out, err := m.engine.Map(reflect.ValueOf(source), target, rs, reflect.Value{})
	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

// MapInto maps source onto the value target points at under rs.
func (m *Mapper) MapInto(source, target any, rs options.RuleSet) error {
	tv := reflect.ValueOf(target)
	if !tv.IsValid() || tv.Kind() != reflect.Ptr || tv.IsNil() {
		return fmt.Errorf("%w, got %T", ErrInvalidTarget, target)
	}

	src := reflect.ValueOf(source)

	if analyze.Classify(tv.Type().Elem()) == analyze.TypeKindComplex && tv.Elem().Kind() == reflect.Struct {
		out, err := m.engine.Map(src, tv.Type(), rs, tv)
		if err != nil {
			return err
		}

		if out.IsValid() && !out.IsNil() && out.Pointer() != tv.Pointer() {
			tv.Elem().Set(out.Elem())
		}

		return nil
	}

	out, err := m.engine.Map(src, tv.Type().Elem(), rs, tv.Elem())
	if err != nil {
		return err
	}

	tv.Elem().Set(out)

	return nil
}

// Merge fills the unset members of target from source. Collections gain the source
// elements they lack.
func (m *Mapper) Merge(source, target any) error {
	return m.MapInto(source, target, options.Merge)
}

// Overwrite replaces the members of target with the values of source.
func (m *Mapper) Overwrite(source, target any) error {
	return m.MapInto(source, target, options.Overwrite)
}
