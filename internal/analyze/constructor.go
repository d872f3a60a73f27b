package analyze

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
)

var (
	ErrNotAConstructor     = errors.New("constructor must be a function returning T, *T, (T, error) or (*T, error)")
	ErrConstructorNames    = errors.New("constructor parameter names do not match its arity")
	ErrConstructorVariadic = errors.New("variadic constructors are not supported")
)

// Constructor is a registered function building a type from parameters.
type Constructor struct {
	Type       reflect.Type // constructed base type
	Params     []*MemberInfo
	ReturnsPtr bool
	HasErr     bool

	fn reflect.Value
}

// Call invokes the constructor and returns the base value (never a pointer).
func (c *Constructor) Call(args []reflect.Value) (reflect.Value, error) {
	out := c.fn.Call(args)

	if c.HasErr && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	result := out[0]
	if c.ReturnsPtr {
		if result.IsNil() {
			return reflect.Value{}, fmt.Errorf("constructor of %v returned nil", c.Type)
		}

		result = result.Elem()
	}

	return result, nil
}

// HasNames reports whether parameters carry names usable for matching.
func (c *Constructor) HasNames() bool {
	return len(c.Params) > 0 && c.Params[0].Name != ""
}

// NewConstructor validates fn and describes it. Names, when given, must cover every parameter.
func NewConstructor(fn any, names ...string) (*Constructor, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, ErrNotAConstructor
	}

	ft := fv.Type()
	if ft.IsVariadic() {
		return nil, ErrConstructorVariadic
	}

	if len(names) != 0 && len(names) != ft.NumIn() {
		return nil, fmt.Errorf("%w: %d names for %d parameters", ErrConstructorNames, len(names), ft.NumIn())
	}

	ctor := &Constructor{fn: fv}

	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != errorType {
			return nil, ErrNotAConstructor
		}

		ctor.HasErr = true
	default:
		return nil, ErrNotAConstructor
	}

	result := ft.Out(0)
	if result.Kind() == reflect.Ptr {
		ctor.ReturnsPtr = true
		result = result.Elem()
	}

	if result.Kind() == reflect.Ptr {
		return nil, ErrNotAConstructor
	}

	ctor.Type = result

	for i := range ft.NumIn() {
		param := &MemberInfo{
			Type:       ft.In(i),
			Kind:       MemberCtorParam,
			TypeKind:   Classify(ft.In(i)),
			IsWritable: true,
			Position:   i,
		}

		if len(names) != 0 {
			param.Name = names[i]
			param.GoName = names[i]
		}

		ctor.Params = append(ctor.Params, param)
	}

	return ctor, nil
}

// RegisterConstructor adds a constructor for the type fn returns. Registered types are
// always built through a constructor, never as zero values.
func (m *ReflectModel) RegisterConstructor(fn any, names ...string) error {
	ctor, err := NewConstructor(fn, names...)
	if err != nil {
		return err
	}

	m.ctorMu.Lock()
	defer m.ctorMu.Unlock()

	if m.ctors == nil {
		m.ctors = make(map[reflect.Type][]*Constructor)
	}

	ctors := append(m.ctors[ctor.Type], ctor)
	slices.SortStableFunc(ctors, func(a, b *Constructor) int {
		return len(b.Params) - len(a.Params)
	})

	m.ctors[ctor.Type] = ctors

	return nil
}

// Constructors lists the constructors of t, greediest first.
func (m *ReflectModel) Constructors(t reflect.Type) []*Constructor {
	m.ctorMu.RLock()
	defer m.ctorMu.RUnlock()

	return m.ctors[Deref(t)]
}
