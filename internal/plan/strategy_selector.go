package plan

import (
	"reflect"

	"struct-mapper/internal/analyze"
)

// value selects the strategy turning a src value into a dst value at position at.
// It fails with ErrUnmappable when no strategy applies, and with a ConstructionError
// when an object must be created but cannot be.
func (s *session) value(src, dst reflect.Type, at *QualifiedMember, fr *frame, srcPath string) (*ValuePlan, error) {
	if src == nil || dst == nil {
		return nil, unmappable("unknown type")
	}

	vp := &ValuePlan{SourceType: src, TargetType: dst}

	if s.c.Casts != nil && s.c.Casts.CanCast(src, dst) {
		vp.Strategy = StrategyCast
		return vp, nil
	}

	srcBase, dstBase := analyze.Deref(src), analyze.Deref(dst)
	srcKind, dstKind := analyze.Classify(srcBase), analyze.Classify(dstBase)

	if dstKind == analyze.TypeKindInterface {
		return s.interfaceValue(vp, srcBase, dstBase, at, fr, srcPath)
	}

	if srcKind == analyze.TypeKindInterface {
		vp.Strategy = StrategyDynamic
		return vp, nil
	}

	switch dstKind {
	case analyze.TypeKindSimple:
		switch {
		case srcBase == dstBase || srcBase.AssignableTo(dstBase):
			vp.Strategy = StrategyAssign
		case s.conv.CanConvert(srcBase, dstBase):
			vp.Strategy = StrategyConvert
		default:
			return nil, unmappable("%s does not convert to %s", analyze.TypeString(src), analyze.TypeString(dst))
		}

		return vp, nil
	case analyze.TypeKindComplex:
		switch srcKind {
		case analyze.TypeKindComplex:
			return s.objectValue(vp, srcBase, dstBase, at, fr, srcPath, objectOrigin{})
		case analyze.TypeKindDictionary:
			if s.c.Model.TypeOf(srcBase).Dictionary.StringKeys {
				return s.objectValue(vp, srcBase, dstBase, at, fr, srcPath, objectOrigin{keyed: true})
			}
		}
	case analyze.TypeKindEnumerable:
		switch srcKind {
		case analyze.TypeKindEnumerable:
			return s.enumerable(vp, srcBase, dstBase, at, fr, srcPath)
		case analyze.TypeKindDictionary:
			if s.c.Model.TypeOf(srcBase).Dictionary.StringKeys {
				return s.indexed(vp, srcBase, dstBase, at, fr, srcPath)
			}
		}
	case analyze.TypeKindDictionary:
		switch srcKind {
		case analyze.TypeKindDictionary:
			return s.dictionary(vp, srcBase, dstBase, at, fr, srcPath)
		case analyze.TypeKindComplex, analyze.TypeKindEnumerable:
			return s.flatten(vp, srcBase, dstBase, at)
		}
	}

	return nil, unmappable("no strategy maps %s to %s", analyze.TypeString(src), analyze.TypeString(dst))
}

// interfaceValue handles interface targets: a derived pairing builds the configured
// concrete type, otherwise the source must implement the interface or be resolved at
// runtime.
func (s *session) interfaceValue(vp *ValuePlan, srcBase, dstBase reflect.Type, at *QualifiedMember, fr *frame, srcPath string) (*ValuePlan, error) {
	srcKind := analyze.Classify(srcBase)

	if srcKind != analyze.TypeKindInterface {
		if concrete, ok := s.c.Store.DerivedTarget(srcBase, dstBase); ok {
			if analyze.Classify(concrete) != analyze.TypeKindComplex {
				return nil, unmappable("derived target %s is not an object", analyze.TypeString(concrete))
			}

			return s.objectValue(vp, srcBase, analyze.Deref(concrete), at, fr, srcPath, objectOrigin{})
		}
	}

	switch {
	case srcBase.AssignableTo(dstBase), reflect.PointerTo(srcBase).Implements(dstBase):
		vp.Strategy = StrategyAssign
	case srcKind == analyze.TypeKindInterface:
		vp.Strategy = StrategyDynamic
	default:
		return nil, unmappable("%s does not implement %s and no derived type is configured",
			analyze.TypeString(srcBase), analyze.TypeString(dstBase))
	}

	return vp, nil
}

// objectValue plans a complex target, inline or through the recursion strategy.
func (s *session) objectValue(vp *ValuePlan, src, dst reflect.Type, at *QualifiedMember, fr *frame, srcPath string, o objectOrigin) (*ValuePlan, error) {
	if src == dst && !o.keyed && !o.sameSource &&
		len(s.c.Model.TypeOf(dst).Targets()) == 0 && len(s.c.Model.Constructors(dst)) == 0 {
		// Nothing to populate member by member: copy the value.
		vp.Strategy = StrategyAssign
		return vp, nil
	}

	if o.keyed {
		at.setKeyed()
	}

	rule, _ := s.c.Store.Recursion(dst)

	switch DecideStrategy(at, rule) {
	case ShortCircuit:
		vp.Strategy = StrategyShortCircuit
		return vp, nil
	case RepeatFunc:
		if !o.sameSource {
			vp.Strategy = StrategyRepeat
			vp.Repeat = s.repeat(src, dst)

			return vp, nil
		}
	}

	obj, err := s.object(src, dst, at, fr, srcPath, o)
	if err != nil {
		return nil, err
	}

	vp.Strategy = StrategyObject
	vp.Object = obj

	return vp, nil
}
