package node

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"struct-mapper/internal/plan"
)

// keyIndex finds the entries of a string-keyed map without regard to case.
type keyIndex struct {
	m      reflect.Value
	folded map[string]reflect.Value // lower-cased key -> map key
	keys   []string                 // lower-cased keys
}

func newKeyIndex(m reflect.Value) *keyIndex {
	idx := &keyIndex{m: m, folded: make(map[string]reflect.Value, m.Len())}

	iter := m.MapRange()
	for iter.Next() {
		k := strings.ToLower(iter.Key().String())
		if _, dup := idx.folded[k]; !dup {
			idx.keys = append(idx.keys, k)
		}

		idx.folded[k] = iter.Key()
	}

	return idx
}

// index returns the key index of m, shared by every frame of the call reading it.
func (c *call) index(m reflect.Value) *keyIndex {
	ptr := m.Pointer()
	if idx, ok := c.indexes[ptr]; ok {
		return idx
	}

	if c.indexes == nil {
		c.indexes = make(map[uintptr]*keyIndex)
	}

	idx := newKeyIndex(m)
	c.indexes[ptr] = idx

	return idx
}

func (x *keyIndex) get(key string) (reflect.Value, bool) {
	if v := x.m.MapIndex(reflect.ValueOf(key).Convert(x.m.Type().Key())); v.IsValid() {
		return v, true
	}

	k, ok := x.folded[strings.ToLower(key)]
	if !ok {
		return reflect.Value{}, false
	}

	return x.m.MapIndex(k), true
}

// below reports whether some key extends base as a member or element path.
func (x *keyIndex) below(base, sep string) bool {
	base = strings.ToLower(base)

	for _, k := range x.keys {
		if base == "" && k != "" {
			return true
		}

		rest, ok := strings.CutPrefix(k, base)
		if ok && (strings.HasPrefix(rest, "[") || (sep != "" && strings.HasPrefix(rest, strings.ToLower(sep)))) {
			return true
		}
	}

	return false
}

// count returns the max element index found as base[n] plus one. An index at or
// past limit fails instead of sizing the collection from it.
func (x *keyIndex) count(base string, limit int) (int, error) {
	prefix := strings.ToLower(base) + "["
	n := 0

	for _, k := range x.keys {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}

		end := strings.IndexByte(rest, ']')
		if end <= 0 {
			continue
		}

		i, err := strconv.Atoi(rest[:end])
		switch {
		case errors.Is(err, strconv.ErrRange), err == nil && i >= limit:
			return 0, fmt.Errorf("%w: key %q, limit %d", ErrIndexLimit, x.folded[k].String(), limit)
		case err != nil || i < 0:
			continue
		}

		n = max(n, i+1)
	}

	return n, nil
}

// dictView is how a keyed object frame reads its entries: full keys are the frame
// prefix followed by the member key.
type dictView struct {
	idx    *keyIndex
	prefix string
	sep    string
}

func (d *dictView) entry(key string) (reflect.Value, bool) {
	return d.idx.get(d.prefix + key)
}

// entries returns the key base of entries below key, if any.
func (d *dictView) entries(key string) (string, bool) {
	base := d.prefix + key
	return base, d.idx.below(base, d.sep)
}

func entrySegment(k reflect.Value) string {
	return "[" + fmt.Sprint(k.Interface()) + "]"
}

// reusable returns the existing map a dictionary value is written into, or the
// invalid value when a new one is made.
func reusable(s *scope, existing reflect.Value, t reflect.Type) reflect.Value {
	cur := indirect(existing)
	if !cur.IsValid() || cur.Type() != t || cur.IsNil() {
		return reflect.Value{}
	}

	if s.call.createNew && !s.inPlace {
		return reflect.Value{}
	}

	return cur
}

func (b *builder) dictionary(vp *plan.ValuePlan) valueFunc {
	dp, t := vp.Dictionary, vp.TargetType
	keyOf, valueOf := b.value(dp.Key), b.value(dp.Value)
	nullToNil := b.plan.Settings.MapNullCollectionsToNull

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		src = indirect(src)
		if isNil(src) {
			if nullToNil {
				return reflect.Zero(t), nil
			}

			return adapt(reflect.MakeMap(dp.TargetType), t), nil
		}

		cur := reusable(s, existing, dp.TargetType)
		replace := s.call.rules.ReplaceEnumerables
		merge := !s.call.rules.OverwriteExisting

		out := cur
		if !out.IsValid() || replace {
			out = reflect.MakeMapWithSize(dp.TargetType, src.Len())
		}

		iter := src.MapRange()
		for iter.Next() {
			es := s.child(entrySegment(iter.Key()))

			k, err := keyOf(es, iter.Key(), reflect.Value{})
			if err != nil {
				return reflect.Value{}, failAt(es, err)
			}

			k = adapt(k, dp.TargetType.Key())

			if merge && out.MapIndex(k).IsValid() {
				continue
			}

			var prev reflect.Value
			if cur.IsValid() {
				prev = cur.MapIndex(k)
			}

			v, err := valueOf(es, iter.Value(), prev)
			if err != nil {
				return reflect.Value{}, failAt(es, err)
			}

			out.SetMapIndex(k, adapt(v, dp.TargetType.Elem()))
		}

		if cur.IsValid() && out.Pointer() != cur.Pointer() && s.inPlace {
			cur.Clear()

			iter := out.MapRange()
			for iter.Next() {
				cur.SetMapIndex(iter.Key(), iter.Value())
			}

			out = cur
		}

		return adapt(out, t), nil
	}
}

func (b *builder) flatten(vp *plan.ValuePlan) valueFunc {
	fp, t := vp.Flatten, vp.TargetType
	mt := indirectType(t)
	nullToNil := b.plan.Settings.MapNullCollectionsToNull
	leaves := make(map[*plan.FlattenField]valueFunc)
	buildLeaves(b, fp, leaves)

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		src = indirect(src)
		if !src.IsValid() && nullToNil {
			return reflect.Zero(t), nil
		}

		out := reusable(s, existing, mt)
		if !out.IsValid() {
			out = reflect.MakeMap(mt)
		}

		w := &flattener{leaves: leaves, out: out, merge: !s.call.rules.OverwriteExisting}
		if err := w.level(s, fp, src, ""); err != nil {
			return reflect.Value{}, err
		}

		return adapt(out, t), nil
	}
}

func indirectType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

func buildLeaves(b *builder, fp *plan.FlattenPlan, leaves map[*plan.FlattenField]valueFunc) {
	fields := fp.Fields
	if fp.Element != nil {
		fields = append([]*plan.FlattenField{fp.Element}, fields...)
	}

	for _, f := range fields {
		switch {
		case f.Leaf != nil:
			leaves[f] = b.value(f.Leaf)
		case f.Nested != nil:
			buildLeaves(b, f.Nested, leaves)
		}
	}
}

// flattener writes one source graph into a dictionary during one call.
type flattener struct {
	leaves map[*plan.FlattenField]valueFunc

	out   reflect.Value
	merge bool
}

func (w *flattener) level(s *scope, fp *plan.FlattenPlan, src reflect.Value, prefix string) error {
	src = indirect(src)
	if !src.IsValid() {
		return nil
	}

	if fp.Element != nil {
		switch src.Kind() {
		case reflect.Slice, reflect.Array:
			for i := range src.Len() {
				key := prefix + "[" + strconv.Itoa(i) + "]"
				if err := w.field(s, fp, fp.Element, src.Index(i), key); err != nil {
					return err
				}
			}
		}

		return nil
	}

	if src.Kind() != reflect.Struct {
		return nil
	}

	for _, f := range fp.Fields {
		if err := w.field(s, fp, f, f.Read.Get(src), prefix+f.Key); err != nil {
			return err
		}
	}

	return nil
}

func (w *flattener) field(s *scope, fp *plan.FlattenPlan, f *plan.FlattenField, v reflect.Value, key string) error {
	if f.Nested != nil {
		if f.Nested.Element != nil {
			return w.level(s, f.Nested, v, key)
		}

		return w.level(s, f.Nested, v, key+fp.Separator)
	}

	leaf, ok := w.leaves[f]
	if !ok || isNil(v) {
		return nil
	}

	k := reflect.ValueOf(key).Convert(fp.KeyType)
	if w.merge && w.out.MapIndex(k).IsValid() {
		return nil
	}

	es := s.child("[" + key + "]")

	out, err := leaf(es, v, reflect.Value{})
	if err != nil {
		return failAt(es, err)
	}

	w.out.SetMapIndex(k, adapt(out, fp.ValueType))

	return nil
}
