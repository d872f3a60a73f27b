package node

import (
	"reflect"
	"strconv"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/plan"
	"struct-mapper/options"
)

func indexSegment(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}

// each calls fn for every element of a slice, array, set or sequence, stopping at
// the first error.
func each(src reflect.Value, fn func(i int, v reflect.Value) error) error {
	switch src.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range src.Len() {
			if err := fn(i, src.Index(i)); err != nil {
				return err
			}
		}
	case reflect.Map:
		i := 0

		iter := src.MapRange()
		for iter.Next() {
			if err := fn(i, iter.Key()); err != nil {
				return err
			}

			i++
		}
	case reflect.Func:
		var (
			i   int
			err error
		)

		yield := reflect.MakeFunc(src.Type().In(0), func(args []reflect.Value) []reflect.Value {
			err = fn(i, args[0])
			i++

			return []reflect.Value{reflect.ValueOf(err == nil)}
		})
		src.Call([]reflect.Value{yield})

		return err
	}

	return nil
}

// collect writes elems into a new collection of type t: a slice, an array (extra
// elements dropped, missing ones zero) or a set.
func collect(t reflect.Type, elems []reflect.Value) reflect.Value {
	switch t.Kind() {
	case reflect.Array:
		out := reflect.New(t).Elem()
		for i := range min(len(elems), t.Len()) {
			out.Index(i).Set(adapt(elems[i], t.Elem()))
		}

		return out
	case reflect.Map:
		out := reflect.MakeMapWithSize(t, len(elems))
		for _, e := range elems {
			k := adapt(e, t.Key())
			if k.Kind() == reflect.Ptr && k.IsNil() {
				continue
			}

			out.SetMapIndex(k, reflect.Zero(t.Elem()))
		}

		return out
	default:
		out := reflect.MakeSlice(t, 0, len(elems))
		for _, e := range elems {
			out = reflect.Append(out, adapt(e, t.Elem()))
		}

		return out
	}
}

// elements lists the elements of an existing collection.
func elements(cur reflect.Value) []reflect.Value {
	var out []reflect.Value

	_ = each(cur, func(_ int, v reflect.Value) error {
		out = append(out, v)
		return nil
	})

	return out
}

// keyer reads the identity key of source and target elements.
type keyer struct {
	id    *plan.Identity
	value valueFunc
}

func (k *keyer) source(s *scope, elem reflect.Value) (any, bool, error) {
	v, err := k.value(s, walk(elem, k.id.Source), reflect.Value{})
	if err != nil {
		return nil, false, err
	}

	key, ok := identityKey(v)

	return key, ok, nil
}

func (k *keyer) target(elem reflect.Value) (any, bool) {
	elem = indirect(elem)
	if !elem.IsValid() || elem.Kind() != reflect.Struct {
		return nil, false
	}

	return identityKey(k.id.Target.Get(elem))
}

// identityKey returns v as a map key. Zero keys never match.
func identityKey(v reflect.Value) (any, bool) {
	v = indirect(v)
	if !v.IsValid() || !v.CanInterface() || !v.Comparable() || v.IsZero() {
		return nil, false
	}

	return v.Interface(), true
}

func (b *builder) enumerable(vp *plan.ValuePlan) valueFunc {
	ep, t := vp.Enumerable, vp.TargetType
	elem := b.value(ep.Element)
	scalar := ep.Element.IsScalar()
	nullToNil := b.plan.Settings.MapNullCollectionsToNull

	var ids *keyer
	if ep.Identity != nil {
		ids = &keyer{id: ep.Identity, value: b.value(ep.Identity.Key)}
	}

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		src = indirect(src)
		if isNil(src) {
			if nullToNil {
				return reflect.Zero(t), nil
			}

			return adapt(collect(ep.TargetType, nil), t), nil
		}

		cur := indirect(existing)
		if s.call.createNew || !cur.IsValid() || cur.Type() != ep.TargetType {
			cur = reflect.Value{}
		}

		var current []reflect.Value
		if cur.IsValid() {
			current = elements(cur)
		}

		rules := s.call.rules

		var (
			out     []reflect.Value
			byKey   map[any]int
			matched map[int]bool
		)

		if rules.MergeEnumerables {
			out = append(out, current...)
		}

		if ids != nil && len(current) > 0 {
			byKey = make(map[any]int, len(current))
			matched = make(map[int]bool)

			for i, e := range current {
				if k, ok := ids.target(e); ok {
					byKey[k] = i
				}
			}
		}

		err := each(src, func(i int, v reflect.Value) error {
			es := s.element(i, indexSegment(i))

			if byKey != nil {
				k, ok, err := ids.source(es, v)
				if err != nil {
					return failAt(es, err)
				}

				if at, found := byKey[k]; ok && found && !matched[at] {
					matched[at] = true

					mapped, err := elem(es, v, current[at])
					if err != nil {
						return failAt(es, err)
					}

					if rules.MergeEnumerables {
						out[at] = mapped
					} else {
						out = append(out, mapped)
					}

					return nil
				}
			}

			mapped, err := elem(es, v, reflect.Value{})
			if err != nil {
				return failAt(es, err)
			}

			if rules.MergeEnumerables && scalar && ids == nil && containsValue(current, mapped) {
				return nil
			}

			out = append(out, mapped)

			return nil
		})
		if err != nil {
			return reflect.Value{}, err
		}

		if rules.MergeEnumerables && !isNil(cur) {
			if merged, ok := mergeInto(cur, out); ok {
				return adapt(merged, t), nil
			}
		}

		return adapt(collect(ep.TargetType, out), t), nil
	}
}

// mergeInto writes merged, which starts with the elements of cur, back into cur. Sets
// gain the new keys in place. Slices keep their backing array: existing slots are
// overwritten and new elements appended, so spare capacity is reused and only a full
// slice is reallocated. Arrays are values and are rebuilt by the caller.
func mergeInto(cur reflect.Value, merged []reflect.Value) (reflect.Value, bool) {
	t := cur.Type()

	switch cur.Kind() {
	case reflect.Map:
		for _, e := range merged {
			k := adapt(e, t.Key())
			if k.Kind() == reflect.Ptr && k.IsNil() {
				continue
			}

			cur.SetMapIndex(k, reflect.Zero(t.Elem()))
		}

		return cur, true
	case reflect.Slice:
		out, n := cur, cur.Len()

		for i, e := range merged {
			v := adapt(e, t.Elem())
			if i < n {
				out.Index(i).Set(v)
				continue
			}

			out = reflect.Append(out, v)
		}

		return out, true
	default:
		return reflect.Value{}, false
	}
}

func containsValue(values []reflect.Value, v reflect.Value) bool {
	for _, e := range values {
		if e.CanInterface() && v.CanInterface() && reflect.DeepEqual(e.Interface(), v.Interface()) {
			return true
		}
	}

	return false
}

func (b *builder) indexed(vp *plan.ValuePlan) valueFunc {
	ip, t := vp.Indexed, vp.TargetType
	elem := b.value(ip.Element)
	elemType := ip.Target.Elem

	limit := b.plan.Settings.MaxDictionaryIndex
	if limit <= 0 {
		limit = options.DefaultMaxDictionaryIndex
	}

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		src = indirect(src)
		if isNil(src) {
			return adapt(collect(ip.TargetType, nil), t), nil
		}

		var current []reflect.Value
		if cur := indirect(existing); !s.call.createNew && cur.IsValid() && cur.Type() == ip.TargetType {
			current = elements(cur)
		}

		idx := s.call.index(src)
		base := s.keyBase
		n, err := idx.count(base, limit)
		if err != nil {
			return reflect.Value{}, failAt(s, err)
		}

		if ip.Target.Shape == analyze.ShapeArray {
			n = min(n, ip.TargetType.Len())
		}

		out := make([]reflect.Value, n)

		for i := range n {
			es := s.element(i, indexSegment(i))
			key := base + indexSegment(i)

			var prev reflect.Value
			if i < len(current) {
				prev = current[i]
			}

			var (
				v   reflect.Value
				err error
			)

			if ip.Complex {
				if !idx.below(key, ip.Separator) {
					out[i] = reflect.Zero(elemType)
					continue
				}

				es.keyBase = key
				v, err = elem(es, src, prev)
			} else {
				entry, ok := idx.get(key)
				if !ok {
					out[i] = reflect.Zero(elemType)
					continue
				}

				v, err = elem(es, entry, prev)
			}

			if err != nil {
				return reflect.Value{}, failAt(es, err)
			}

			out[i] = v
		}

		return adapt(collect(ip.TargetType, out), t), nil
	}
}
