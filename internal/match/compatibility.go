package match

import (
	"reflect"

	"struct-mapper/internal/analyze"
	"struct-mapper/primitive"
)

// TypeCompatibility represents the level of compatibility between two types.
type TypeCompatibility int

const (
	// TypeIncompatible means no value of the source can populate the target.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsTransform means a nested mapping (object, collection, dictionary or runtime dispatch) is required.
	TypeNeedsTransform
	// TypeConvertible means a simple-type conversion applies.
	TypeConvertible
	// TypeAssignable means the source can be assigned directly, pointer wrapping aside.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

const (
	VerdictIdentical      = "identical"
	VerdictAssignable     = "assignable"
	VerdictConvertible    = "convertible"
	VerdictNeedsTransform = "needs_transform"
	VerdictIncompatible   = "incompatible"
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return VerdictIdentical
	case TypeAssignable:
		return VerdictAssignable
	case TypeConvertible:
		return VerdictConvertible
	case TypeNeedsTransform:
		return VerdictNeedsTransform
	case TypeIncompatible:
		return VerdictIncompatible
	default:
		return "unknown"
	}
}

var compatibilityWeights = map[TypeCompatibility]float64{
	TypeIdentical:      1.0,
	TypeAssignable:     0.9,
	TypeConvertible:    0.7,
	TypeNeedsTransform: 0.4,
}

// Weight is the share of a perfect type match the level is worth when ranking
// candidates, from 0 to 1.
func (c TypeCompatibility) Weight() float64 {
	return compatibilityWeights[c]
}

// TypeCompatibilityResult contains detailed information about type compatibility.
type TypeCompatibilityResult struct {
	Compatibility TypeCompatibility
	Reason        string // Human-readable explanation
	SourceType    string // String representation of source type
	TargetType    string // String representation of target type
}

// Checker scores type pairs against the model classification and the converter.
type Checker struct {
	Model     analyze.TypeModel
	Converter *primitive.Converter
}

func result(c TypeCompatibility, reason string, source, target reflect.Type) TypeCompatibilityResult {
	return TypeCompatibilityResult{
		Compatibility: c,
		Reason:        reason,
		SourceType:    analyze.TypeString(source),
		TargetType:    analyze.TypeString(target),
	}
}

// Score determines the compatibility between a source and target type.
func (c *Checker) Score(source, target reflect.Type) TypeCompatibilityResult {
	switch {
	case source == nil || target == nil:
		return result(TypeIncompatible, "type information unavailable", source, target)
	case source == target:
		return result(TypeIdentical, "types are identical", source, target)
	case source.AssignableTo(target):
		return result(TypeAssignable, "source is assignable to target", source, target)
	}

	sourceBase, targetBase := analyze.Deref(source), analyze.Deref(target)
	if sourceBase == targetBase {
		return result(TypeAssignable, "pointer depth differs", source, target)
	}

	sourceKind, targetKind := analyze.Classify(sourceBase), analyze.Classify(targetBase)

	switch {
	case targetKind == analyze.TypeKindInterface:
		if sourceBase.Implements(targetBase) || source.Implements(targetBase) {
			return result(TypeAssignable, "source implements target interface", source, target)
		}

		return result(TypeNeedsTransform, "requires a derived type pairing", source, target)

	case sourceKind == analyze.TypeKindInterface:
		return result(TypeNeedsTransform, "resolved on the runtime value", source, target)

	case targetKind == analyze.TypeKindSimple:
		if c.converter().CanConvert(sourceBase, targetBase) {
			return result(TypeConvertible, "simple-type conversion", source, target)
		}

		return result(TypeIncompatible, "no simple-type conversion", source, target)

	case sourceKind == analyze.TypeKindComplex && targetKind == analyze.TypeKindComplex:
		return result(TypeNeedsTransform, "nested object mapping", source, target)

	case sourceKind == analyze.TypeKindEnumerable && targetKind == analyze.TypeKindEnumerable:
		sourceElem := c.Model.TypeOf(sourceBase).Enumerable.Elem
		targetElem := c.Model.TypeOf(targetBase).Enumerable.Elem

		if c.Score(sourceElem, targetElem).Compatibility > TypeIncompatible {
			return result(TypeNeedsTransform, "element-wise mapping", source, target)
		}

		return result(TypeIncompatible, "element types are not compatible", source, target)

	case sourceKind == analyze.TypeKindDictionary:
		switch targetKind {
		case analyze.TypeKindDictionary, analyze.TypeKindComplex:
			return result(TypeNeedsTransform, "dictionary source mapping", source, target)
		case analyze.TypeKindEnumerable:
			if c.Model.TypeOf(sourceBase).Dictionary.StringKeys {
				return result(TypeNeedsTransform, "indexed dictionary keys", source, target)
			}
		}

	case targetKind == analyze.TypeKindDictionary && sourceKind == analyze.TypeKindComplex:
		if c.Model.TypeOf(targetBase).Dictionary.StringKeys {
			return result(TypeNeedsTransform, "flattened into dictionary keys", source, target)
		}
	}

	return result(TypeIncompatible, "types are not compatible", source, target)
}

func (c *Checker) converter() *primitive.Converter {
	if c.Converter == nil {
		return primitive.NewConverter()
	}

	return c.Converter
}
