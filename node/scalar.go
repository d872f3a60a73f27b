package node

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"struct-mapper/internal/plan"
)

func (b *builder) assign(vp *plan.ValuePlan) valueFunc {
	t := vp.TargetType

	return func(_ *scope, src, _ reflect.Value) (reflect.Value, error) {
		return adapt(src, t), nil
	}
}

func (b *builder) convert(vp *plan.ValuePlan) valueFunc {
	t, conv := vp.TargetType, b.plan.Converter

	return func(_ *scope, src, _ reflect.Value) (reflect.Value, error) {
		return conv.Convert(src, t)
	}
}

func (b *builder) cast(vp *plan.ValuePlan) valueFunc {
	t := vp.TargetType

	c, ok := b.engine.casts.Lookup(vp.SourceType, vp.TargetType)
	if !ok {
		err := fmt.Errorf("%w: caster for %s to %s was removed", plan.ErrUnmappable, vp.SourceType, t)
		return func(*scope, reflect.Value, reflect.Value) (reflect.Value, error) {
			return reflect.Value{}, err
		}
	}

	return func(_ *scope, src, _ reflect.Value) (reflect.Value, error) {
		if !src.IsValid() {
			return reflect.Zero(t), nil
		}

		out, err := c.Call(src)
		if err != nil {
			return reflect.Value{}, err
		}

		return adapt(out, t), nil
	}
}

// dynamic resolves the plan on the runtime type of an interface source.
func (b *builder) dynamic(vp *plan.ValuePlan) valueFunc {
	t, key := vp.TargetType, b.plan.Key

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		for src.IsValid() && src.Kind() == reflect.Interface {
			if src.IsNil() {
				return reflect.Zero(t), nil
			}

			src = src.Elem()
		}

		if isNil(src) {
			return reflect.Zero(t), nil
		}

		prog, err := b.engine.program(key.With(src.Type(), t))
		if err != nil {
			return reflect.Value{}, err
		}

		out, err := prog.run(s, src, existing)
		if err != nil {
			return reflect.Value{}, err
		}

		return adapt(out, t), nil
	}
}

// repeat runs the shared plan of a recursive type pair. The program is looked up on
// first use since it may be the one being built.
func (b *builder) repeat(vp *plan.ValuePlan) valueFunc {
	t, ref := vp.TargetType, vp.Repeat

	var cached atomic.Pointer[program]

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		prog := cached.Load()
		if prog == nil {
			var err error
			if prog, err = b.engine.program(ref.Key); err != nil {
				return reflect.Value{}, err
			}

			cached.Store(prog)
		}

		depth := s.call.depth
		if ref.MaxDepth > 0 && depth[ref.Key] >= ref.MaxDepth {
			return reflect.Zero(t), nil
		}

		if depth == nil {
			depth = make(map[plan.Key]int)
			s.call.depth = depth
		}

		depth[ref.Key]++
		defer func() { depth[ref.Key]-- }()

		out, err := prog.run(s, src, existing)
		if err != nil {
			return reflect.Value{}, err
		}

		return adapt(out, t), nil
	}
}
