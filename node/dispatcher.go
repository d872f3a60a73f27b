package node

import (
	"fmt"
	"reflect"

	"struct-mapper/internal/plan"
)

// valueFunc produces a value of the plan's target type from src. existing is the
// current target value, used by rule sets that populate instead of replacing.
type valueFunc func(s *scope, src, existing reflect.Value) (reflect.Value, error)

// builder turns the value plans of one mapping plan into closures.
type builder struct {
	engine *Engine
	plan   *plan.MappingPlan
}

// value dispatches on the plan strategy.
func (b *builder) value(vp *plan.ValuePlan) valueFunc {
	switch vp.Strategy {
	case plan.StrategyAssign:
		return b.assign(vp)
	case plan.StrategyConvert:
		return b.convert(vp)
	case plan.StrategyCast:
		return b.cast(vp)
	case plan.StrategyShortCircuit:
		return zeroOf(vp.TargetType)
	case plan.StrategyObject:
		return b.object(vp)
	case plan.StrategyRepeat:
		return b.repeat(vp)
	case plan.StrategyEnumerable:
		return b.enumerable(vp)
	case plan.StrategyIndexed:
		return b.indexed(vp)
	case plan.StrategyDictionary:
		return b.dictionary(vp)
	case plan.StrategyFlatten:
		return b.flatten(vp)
	case plan.StrategyDynamic:
		return b.dynamic(vp)
	default:
		err := fmt.Errorf("%w: strategy %s", plan.ErrUnmappable, vp.Strategy)
		return func(*scope, reflect.Value, reflect.Value) (reflect.Value, error) {
			return reflect.Value{}, err
		}
	}
}

func zeroOf(t reflect.Type) valueFunc {
	return func(*scope, reflect.Value, reflect.Value) (reflect.Value, error) {
		return reflect.Zero(t), nil
	}
}

// isNil reports whether v holds no value: invalid, or a nil pointer, interface, map,
// slice or func.
func isNil(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}

// indirect strips pointers and interfaces; nil yields the invalid value.
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}

		v = v.Elem()
	}

	return v
}

func ptrDepth(t reflect.Type) int {
	depth := 0
	for t != nil && t.Kind() == reflect.Ptr {
		depth++
		t = t.Elem()
	}

	return depth
}

// adapt fits v to type t: pointer levels are added or removed, interfaces unwrapped or
// filled. Plans only pair compatible types, so the remaining case is a plain conversion.
func adapt(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}

	vt := v.Type()

	switch {
	case vt == t:
		return v
	case vt.AssignableTo(t):
		out := reflect.New(t).Elem()
		out.Set(v)

		return out
	case v.Kind() == reflect.Interface:
		if v.IsNil() {
			return reflect.Zero(t)
		}

		return adapt(v.Elem(), t)
	case v.Kind() == reflect.Ptr && ptrDepth(vt) > ptrDepth(t):
		if v.IsNil() {
			return reflect.Zero(t)
		}

		return adapt(v.Elem(), t)
	case t.Kind() == reflect.Ptr:
		inner := adapt(v, t.Elem())
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(inner)

		return ptr
	case t.Kind() == reflect.Interface && reflect.PointerTo(vt).Implements(t):
		ptr := reflect.New(vt)
		ptr.Elem().Set(v)

		return adapt(ptr, t)
	case vt.ConvertibleTo(t):
		return v.Convert(t)
	default:
		return reflect.Zero(t)
	}
}
