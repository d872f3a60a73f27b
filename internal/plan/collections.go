package plan

import (
	"errors"
	"reflect"

	"struct-mapper/internal/analyze"
)

// enumerable plans a collection to collection mapping.
func (s *session) enumerable(vp *ValuePlan, src, dst reflect.Type, at *QualifiedMember, fr *frame, srcPath string) (*ValuePlan, error) {
	source := s.c.Model.TypeOf(src).Enumerable
	target := s.c.Model.TypeOf(dst).Enumerable

	if target.Shape == analyze.ShapeSequence {
		return nil, unmappable("%s is read-only", analyze.TypeString(dst))
	}

	element, err := s.value(source.Elem, target.Elem, at.Element(target.Elem), fr, srcPath+"[]")
	if err != nil {
		return nil, err
	}

	ep := &EnumerablePlan{
		Source:     source,
		Target:     target,
		TargetType: dst,
		Loop:       LoopIndexed,
		Element:    element,
		Identity:   s.identity(source.Elem, target.Elem),
	}

	if !source.Indexable {
		ep.Loop = LoopEnumerator
	}

	vp.Strategy = StrategyEnumerable
	vp.Enumerable = ep

	return vp, nil
}

// identity plans the element key comparison for types with a configured identity member.
func (s *session) identity(srcElem, dstElem reflect.Type) *Identity {
	name, ok := s.c.Store.Identity(dstElem)
	if !ok {
		return nil
	}

	info := s.c.Model.TypeOf(dstElem)
	if info == nil || info.Kind != analyze.TypeKindComplex {
		return nil
	}

	target := info.Member(name)
	if target == nil || !target.IsReadable {
		return nil
	}

	m := s.c.Matcher.MatchMember(analyze.Deref(srcElem), target, "")
	if !m.Matched() {
		return nil
	}

	key, err := s.value(m.SourcePath[len(m.SourcePath)-1].Type, target.Type, NewRoot(target.Type), nil, "")
	if err != nil || !key.IsScalar() {
		return nil
	}

	return &Identity{Target: target, Source: s.matchSource(m, &frame{}).Path, Key: key}
}

// indexed plans a collection rebuilt from "[i]"-keyed dictionary entries.
func (s *session) indexed(vp *ValuePlan, src, dst reflect.Type, at *QualifiedMember, fr *frame, srcPath string) (*ValuePlan, error) {
	target := s.c.Model.TypeOf(dst).Enumerable
	if target.Shape != analyze.ShapeSlice && target.Shape != analyze.ShapeArray {
		return nil, unmappable("%s is not indexable", analyze.TypeString(dst))
	}

	elem := at.Element(target.Elem)
	elem.setKeyed()

	elemBase := analyze.Deref(target.Elem)
	ip := &IndexedPlan{Target: target, TargetType: dst}

	if fr != nil && fr.keyed && fr.source == src {
		ip.Separator = fr.separator
	} else {
		ip.Separator = s.c.Store.Separator(src, elemBase)
	}

	var (
		element *ValuePlan
		err     error
	)

	if analyze.Classify(elemBase) == analyze.TypeKindComplex {
		ip.Complex = true
		element, err = s.objectValue(&ValuePlan{SourceType: src, TargetType: target.Elem},
			src, elemBase, elem, fr, srcPath+"[]", objectOrigin{keyed: true})
	} else {
		element, err = s.value(src.Elem(), target.Elem, elem, fr, srcPath+"[]")
	}

	if err != nil {
		return nil, err
	}

	ip.Element = element
	vp.Strategy = StrategyIndexed
	vp.Indexed = ip

	return vp, nil
}

// dictionary plans a dictionary to dictionary mapping.
func (s *session) dictionary(vp *ValuePlan, src, dst reflect.Type, at *QualifiedMember, fr *frame, srcPath string) (*ValuePlan, error) {
	source := s.c.Model.TypeOf(src).Dictionary
	target := s.c.Model.TypeOf(dst).Dictionary

	key, err := s.value(source.Key, target.Key, NewRoot(target.Key), nil, "")
	if err != nil {
		return nil, err
	}

	value, err := s.value(source.Value, target.Value, at.Entry("key", target.Value), fr, srcPath+"[key]")
	if err != nil {
		return nil, err
	}

	vp.Strategy = StrategyDictionary
	vp.Dictionary = &DictionaryPlan{TargetType: dst, Key: key, Value: value}

	return vp, nil
}

// flatten plans the members of a complex or collection source written as dictionary
// entries: "Customer.Email", "Items[0].Name".
func (s *session) flatten(vp *ValuePlan, src, dst reflect.Type, at *QualifiedMember) (*ValuePlan, error) {
	target := s.c.Model.TypeOf(dst).Dictionary
	if !target.StringKeys {
		return nil, unmappable("%s is not keyed by strings", analyze.TypeString(dst))
	}

	switch analyze.Classify(target.Value) {
	case analyze.TypeKindSimple, analyze.TypeKindInterface:
	default:
		return nil, unmappable("%s values are not simple", analyze.TypeString(dst))
	}

	at.setKeyed()

	fp, err := s.flattenLevel(src, target, s.c.Store.Separator(src, dst), at)
	if err != nil {
		return nil, err
	}

	vp.Strategy = StrategyFlatten
	vp.Flatten = fp

	return vp, nil
}

func (s *session) flattenLevel(src reflect.Type, target *analyze.DictionaryInfo, sep string, at *QualifiedMember) (*FlattenPlan, error) {
	fp := &FlattenPlan{
		SourceType: src,
		ValueType:  target.Value,
		KeyType:    target.Key,
		Separator:  sep,
	}

	info := s.c.Model.TypeOf(src)

	switch info.Kind {
	case analyze.TypeKindEnumerable:
		if !info.Enumerable.Indexable {
			return fp, nil
		}

		f, err := s.flattenField("", info.Enumerable.Elem, nil, at.Element(info.Enumerable.Elem), target, sep)
		if err != nil {
			return nil, err
		}

		fp.Element = f
	case analyze.TypeKindComplex:
		for _, m := range info.Readable() {
			f, err := s.flattenField(m.Name, m.Type, m, at.Entry(m.Name, m.Type), target, sep)
			if err != nil {
				return nil, err
			}

			if f != nil {
				fp.Fields = append(fp.Fields, f)
			}
		}
	}

	return fp, nil
}

// flattenField plans one entry or entry prefix. It returns nil for members that do
// not flatten: non-simple values a typed dictionary cannot hold, and recursion past
// the dictionary bound.
func (s *session) flattenField(key string, t reflect.Type, read *analyze.MemberInfo, q *QualifiedMember, target *analyze.DictionaryInfo, sep string) (*FlattenField, error) {
	f := &FlattenField{Key: key, Target: q, Read: read}

	switch analyze.Classify(t) {
	case analyze.TypeKindComplex, analyze.TypeKindEnumerable:
		rule, _ := s.c.Store.Recursion(q.RecursionType())
		if DecideStrategy(q, rule) == ShortCircuit {
			return nil, nil
		}

		nested, err := s.flattenLevel(analyze.Deref(t), target, sep, q)
		if err != nil {
			return nil, err
		}

		f.Nested = nested
	default:
		leaf, err := s.value(t, target.Value, q, nil, "")
		if err != nil {
			if errors.Is(err, ErrUnmappable) {
				return nil, nil
			}

			return nil, err
		}

		f.Leaf = leaf
	}

	return f, nil
}
