package node

import (
	"fmt"
	"reflect"

	"struct-mapper/internal/analyze"
	"struct-mapper/internal/mapping"
	"struct-mapper/internal/plan"
	"struct-mapper/utils"
)

// reader reads what a data source points at. ok is false when the source has
// nothing to offer and the next one should be tried.
type reader func(ms *scope) (v reflect.Value, ok bool, err error)

// source is one executable data source.
type source struct {
	plan  *plan.DataSource
	read  reader
	value valueFunc
}

// member is one executable member plan.
type member struct {
	plan    *plan.MemberPlan
	info    *analyze.MemberInfo
	segment string
	scalar  bool
	sources []source
}

func (b *builder) sources(mp *plan.MemberPlan) []source {
	out := make([]source, 0, len(mp.Sources))

	for _, ds := range mp.Sources {
		out = append(out, source{plan: ds, read: readerOf(ds), value: b.value(ds.Value)})
	}

	return out
}

func (b *builder) member(mp *plan.MemberPlan) *member {
	m := &member{
		plan:    mp,
		info:    mp.Target.Member,
		segment: "." + mp.Target.Name(),
		sources: b.sources(mp),
	}

	if len(mp.Sources) > 0 {
		m.scalar = mp.Sources[0].Value.IsScalar()
	}

	return m
}

func readerOf(ds *plan.DataSource) reader {
	switch ds.Kind {
	case plan.SourceMember:
		return func(ms *scope) (reflect.Value, bool, error) {
			from := ms.up(ds.FrameUp)
			if from == nil {
				return reflect.Value{}, false, nil
			}

			return walk(from.source, ds.Path), true, nil
		}
	case plan.SourceEntry:
		return func(ms *scope) (reflect.Value, bool, error) {
			from := ms.up(ds.FrameUp)
			if from == nil || from.view == nil {
				return reflect.Value{}, false, nil
			}

			v, ok := from.view.entry(ds.Key)

			return v, ok, nil
		}
	case plan.SourceEntries:
		return func(ms *scope) (reflect.Value, bool, error) {
			from := ms.up(ds.FrameUp)
			if from == nil || from.view == nil {
				return reflect.Value{}, false, nil
			}

			base, ok := from.view.entries(ds.Key)
			if !ok {
				return reflect.Value{}, false, nil
			}

			ms.keyBase = base

			return from.source, true, nil
		}
	case plan.SourceFunc:
		return func(ms *scope) (reflect.Value, bool, error) {
			out, err := ds.Func(ms)
			if err != nil {
				return reflect.Value{}, false, err
			}

			return reflect.ValueOf(out), true, nil
		}
	default:
		return func(*scope) (reflect.Value, bool, error) {
			return ds.Constant, true, nil
		}
	}
}

// walk follows steps from v. A nil on the way, or an index out of range, reads as
// no value.
func walk(v reflect.Value, steps []plan.Step) reflect.Value {
	for _, step := range steps {
		v = indirect(v)
		if !v.IsValid() || v.Kind() != reflect.Struct {
			return reflect.Value{}
		}

		v = step.Member.Get(v)

		if step.Index != mapping.NoIndex {
			v = indirect(v)
			if !v.IsValid() || !utils.IsIndex(step.Index, v.Len()) {
				return reflect.Value{}
			}

			v = v.Index(step.Index)
		}
	}

	return v
}

// pick returns the first source that applies to ms and what it read.
func pick(ms *scope, sources []source) (*source, reflect.Value, error) {
	for i := range sources {
		src := &sources[i]

		if cond := src.plan.Condition; cond != nil && !cond(ms) {
			continue
		}

		v, ok, err := src.read(ms)
		if err != nil {
			return nil, reflect.Value{}, err
		}

		if ok {
			return src, v, nil
		}
	}

	return nil, reflect.Value{}, nil
}

func (m *member) apply(fs *scope) error {
	p := m.plan
	if p.Ignored || p.Consumed || len(m.sources) == 0 {
		return nil
	}

	ms := fs.child(m.segment)

	for _, cond := range p.IgnoreIf {
		if cond(ms) {
			return nil
		}
	}

	src, v, err := pick(ms, m.sources)
	if err != nil {
		return failAt(ms, err)
	}

	if src == nil {
		return nil
	}

	rules := fs.call.rules
	cur := m.info.Get(fs.target)

	if isNil(v) && !fs.call.createNew && !rules.NullSourceClearsTarget {
		return nil
	}

	if !rules.OverwriteExisting && m.scalar && cur.IsValid() && !cur.IsZero() {
		return nil
	}

	if p.InPlace {
		if isNil(cur) {
			return nil
		}

		ms.inPlace = true

		out, err := src.value(ms, v, cur)
		if err != nil {
			return failAt(ms, err)
		}

		// a pointer to slice is populated through its target
		if cur.Kind() == reflect.Ptr && !isNil(out) && out.Kind() == reflect.Ptr && out.Pointer() != cur.Pointer() {
			cur.Elem().Set(out.Elem())
		}

		return nil
	}

	out, err := src.value(ms, v, cur)
	if err != nil {
		return failAt(ms, err)
	}

	m.info.Set(fs.target, adapt(out, m.info.Type))

	return nil
}

func (b *builder) object(vp *plan.ValuePlan) valueFunc {
	op, t := vp.Object, vp.TargetType

	members := make([]*member, len(op.Members))
	for i, mp := range op.Members {
		members[i] = b.member(mp)
	}

	construct := b.construction(op)

	return func(s *scope, src, existing reflect.Value) (reflect.Value, error) {
		src = indirect(src)
		if !src.IsValid() {
			return reflect.Zero(t), nil
		}

		key, tracked := s.call.track(src, op)
		if tracked {
			if found, ok := s.call.seen(key); ok {
				return adapt(found, t), nil
			}
		}

		fs := s.newFrame(src)
		if op.Keyed {
			prefix := s.keyBase
			if prefix != "" {
				prefix += op.Separator
			}

			fs.view = &dictView{idx: s.call.index(src), prefix: prefix, sep: op.Separator}
		}

		target := reuse(s, existing, op.TargetType)
		if !target.IsValid() {
			var err error
			if target, err = construct(fs); err != nil {
				return reflect.Value{}, failAt(s, err)
			}

			if !target.IsValid() {
				return reflect.Zero(t), nil
			}
		}

		fs.target = target

		if tracked {
			s.call.remember(key, target.Addr())
		}

		for _, cb := range op.Before {
			if err := cb(fs); err != nil {
				return reflect.Value{}, failAt(s, err)
			}
		}

		for _, m := range members {
			if err := m.apply(fs); err != nil {
				return reflect.Value{}, err
			}
		}

		for _, cb := range op.After {
			if err := cb(fs); err != nil {
				return reflect.Value{}, failAt(s, err)
			}
		}

		return adapt(target.Addr(), t), nil
	}
}

// reuse returns the addressable existing object to populate, or the invalid value
// when a new one is built. Rule sets creating new objects only keep the root and
// read-only members.
func reuse(s *scope, existing reflect.Value, t reflect.Type) reflect.Value {
	if isNil(existing) {
		return reflect.Value{}
	}

	if s.call.createNew && !s.isRoot() && !s.inPlace {
		return reflect.Value{}
	}

	cur := indirect(existing)
	if !cur.IsValid() || cur.Type() != t {
		return reflect.Value{}
	}

	if cur.CanAddr() {
		return cur
	}

	out := reflect.New(t).Elem()
	out.Set(cur)

	return out
}

// construction returns how an instance is built. It yields the invalid value when
// none can be.
func (b *builder) construction(op *plan.ObjectPlan) func(fs *scope) (reflect.Value, error) {
	t := op.TargetType
	c := op.Construction

	switch c.Kind {
	case plan.ConstructZero:
		return func(*scope) (reflect.Value, error) {
			return reflect.New(t).Elem(), nil
		}
	case plan.ConstructFactory:
		return func(fs *scope) (reflect.Value, error) {
			out, err := c.Factory(fs)
			if err != nil {
				return reflect.Value{}, err
			}

			return instance(reflect.ValueOf(out), t)
		}
	case plan.ConstructConstructor:
		args := make([]*member, len(c.Args))
		for i, mp := range c.Args {
			args[i] = b.member(mp)
		}

		return func(fs *scope) (reflect.Value, error) {
			in := make([]reflect.Value, len(args))

			for i, arg := range args {
				param := c.Constructor.Params[i]
				as := fs.child(arg.segment)

				src, v, err := pick(as, arg.sources)
				if err != nil {
					return reflect.Value{}, failAt(as, err)
				}

				in[i] = reflect.Zero(param.Type)

				if src != nil {
					out, err := src.value(as, v, reflect.Value{})
					if err != nil {
						return reflect.Value{}, failAt(as, err)
					}

					in[i] = adapt(out, param.Type)
				}
			}

			built, err := c.Constructor.Call(in)
			if err != nil {
				return reflect.Value{}, err
			}

			return instance(built, t)
		}
	default:
		return func(*scope) (reflect.Value, error) {
			return reflect.Value{}, nil
		}
	}
}

// instance turns what a factory or constructor returned into an addressable t.
func instance(v reflect.Value, t reflect.Type) (reflect.Value, error) {
	switch {
	case !v.IsValid() || isNil(v):
		return reflect.Value{}, fmt.Errorf("%w: %s built as nil", ErrNoInstance, analyze.TypeString(t))
	case v.Type() == reflect.PointerTo(t):
		return v.Elem(), nil
	case v.Type() == t:
		out := reflect.New(t).Elem()
		out.Set(v)

		return out, nil
	default:
		return reflect.Value{}, fmt.Errorf("%w: got %s, want %s", ErrNoInstance,
			analyze.TypeString(v.Type()), analyze.TypeString(t))
	}
}
