package node

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"struct-mapper/internal/analyze"
	"struct-mapper/utils"
)

var (
	ErrIsNotACaster         = errors.New("provided function is not a recognizable caster")
	ErrCasterIsNotAFunction = errors.New("provided caster is not a function")
	ErrDoublePointer        = errors.New("caster function does not support double pointers")
	ErrCasterExists         = errors.New("a caster is already registered for this type pair")
)

// Caster describes a user converter func.
type Caster struct {
	Src, Dst     reflect.Type
	PackageAlias string
	Name         string
	HasBool      bool
	HasErr       bool

	fn reflect.Value
}

// ParseCaster inspects the provided function and returns a Caster struct if it is a valid caster function.
//
// Supports interfaces:
//   - func(src Type) (dst Type)
//   - func(src Type) (dst Type, bool)
//   - func(src Type) (dst Type, error)
//   - func(src Type) (dst Type, bool, error)
func ParseCaster(fn any) (Caster, error) {
	fnVal := reflect.ValueOf(fn)
	if !fnVal.IsValid() || fnVal.Kind() != reflect.Func || fnVal.IsNil() {
		return Caster{}, ErrCasterIsNotAFunction
	}

	fnType := fnVal.Type()
	if fnType.NumIn() != 1 || fnType.NumOut() == 0 || fnType.IsVariadic() {
		return Caster{}, ErrIsNotACaster
	}

	src := fnType.In(0)
	if src.Kind() == reflect.Ptr && src.Elem().Kind() == reflect.Ptr {
		return Caster{}, ErrDoublePointer
	}

	dst := fnType.Out(0)
	if dst.Kind() == reflect.Ptr && dst.Elem().Kind() == reflect.Ptr {
		return Caster{}, ErrDoublePointer
	}

	// package path and func name, "strconv.Itoa"
	fnPC := runtime.FuncForPC(fnVal.Pointer())
	alias, name := utils.Unpack2(strings.SplitN(fnPC.Name(), ".", 2))

	caster := Caster{
		Src:          src,
		Dst:          dst,
		Name:         name,
		PackageAlias: utils.Second(path.Split(alias)),
		fn:           fnVal,
	}

	switch fnType.NumOut() {
	default:
		return Caster{}, ErrIsNotACaster

	case 1:
		return caster, nil

	case 2:
		last := fnType.Out(1)

		switch {
		default:
			return Caster{}, ErrIsNotACaster
		case last.Kind() == reflect.Bool:
			caster.HasBool = true
		case isError(last):
			caster.HasErr = true
		}

		return caster, nil

	case 3:
		tbool, terr := fnType.Out(1), fnType.Out(2)
		if tbool.Kind() != reflect.Bool || !isError(terr) {
			return Caster{}, ErrIsNotACaster
		}

		caster.HasBool = true
		caster.HasErr = true

		return caster, nil
	}
}

// String names the caster as "strconv.Itoa".
func (c Caster) String() string {
	return c.PackageAlias + "." + c.Name
}

// Call runs the caster on v. A false bool result yields the zero target value.
func (c Caster) Call(v reflect.Value) (reflect.Value, error) {
	out := c.fn.Call([]reflect.Value{adapt(v, c.Src)})

	if c.HasErr {
		if errv := out[len(out)-1]; !errv.IsNil() {
			return reflect.Value{}, fmt.Errorf("caster %s: %w", c, errv.Interface().(error))
		}
	}

	if c.HasBool && !out[1].Bool() {
		return reflect.Zero(c.Dst), nil
	}

	return out[0], nil
}

// Casters holds user converter funcs by their exact type pair. A registered caster
// replaces every other conversion between its two types. Safe for concurrent use.
type Casters struct {
	mu     sync.RWMutex
	byPair map[[2]reflect.Type]Caster
}

// NewCasters returns an empty registry.
func NewCasters() *Casters {
	return &Casters{byPair: make(map[[2]reflect.Type]Caster)}
}

// Register adds fn, any of the shapes ParseCaster accepts.
func (r *Casters) Register(fn any) error {
	c, err := ParseCaster(fn)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pair := [2]reflect.Type{c.Src, c.Dst}
	if prev, ok := r.byPair[pair]; ok {
		return fmt.Errorf("%w: %s and %s convert %s to %s", ErrCasterExists,
			prev, c, analyze.TypeString(c.Src), analyze.TypeString(c.Dst))
	}

	r.byPair[pair] = c

	return nil
}

// Lookup returns the caster of the exact pair.
func (r *Casters) Lookup(src, dst reflect.Type) (Caster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byPair[[2]reflect.Type{src, dst}]

	return c, ok
}

// CanCast reports whether a caster converts src to dst.
func (r *Casters) CanCast(src, dst reflect.Type) bool {
	_, ok := r.Lookup(src, dst)
	return ok
}

// Len counts the registered casters.
func (r *Casters) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byPair)
}
