package primitive

import (
	"fmt"
	"strings"
)

// CategoryEnum is a bit set of conversion families a Converter may use.
type CategoryEnum int

const (
	CategorySafeNumber   CategoryEnum = 1 << iota // number to number, lossless
	CategoryUnsafeNumber                          // number to number, may truncate or overflow
	CategoryTextNumber                            // number <-> string
	CategoryNumericBool                           // integer <-> bool as 0 and 1
	CategoryTextualBool                           // string <-> bool, yes/no/on/off/true/false
	CategoryDatetime                              // string <-> time.Time
	CategoryTimestamp                             // integer Unix seconds <-> time.Time
	CategoryDuration                              // string such as 2h45m <-> time.Duration
	CategoryNanoseconds                           // integer nanoseconds <-> time.Duration
	CategorySeconds                               // float seconds <-> time.Duration
	CategoryEnumString                            // string <-> enum by name
	CategoryEnumNumber                            // number <-> enum by underlying value
	CategoryGUID                                  // string <-> uuid.UUID
	CategoryStringer                              // fmt.Stringer -> string, never a kind pair

	CategoryAll  CategoryEnum = (1 << iota) - 1
	CategoryNone CategoryEnum = 0
)

// categoryRules decides membership of a pair per category. Rules are consulted in
// bit order, so the first matching category wins.
var categoryRules = []struct {
	category CategoryEnum
	match    func(from, to KindEnum) bool
}{
	{CategorySafeNumber, safeNumber},
	{CategoryUnsafeNumber, func(from, to KindEnum) bool {
		return from.IsNumber() && to.IsNumber()
	}},
	{CategoryTextNumber, func(from, to KindEnum) bool {
		return either(from, to, KindString, KindEnum.IsNumber)
	}},
	{CategoryNumericBool, func(from, to KindEnum) bool {
		return either(from, to, KindBool, KindEnum.IsInteger)
	}},
	{CategoryTextualBool, exactly(KindString, KindBool)},
	{CategoryDatetime, exactly(KindString, KindTime)},
	{CategoryTimestamp, func(from, to KindEnum) bool {
		return either(from, to, KindTime, KindEnum.IsInteger)
	}},
	{CategoryDuration, exactly(KindString, KindDuration)},
	{CategoryNanoseconds, func(from, to KindEnum) bool {
		return either(from, to, KindDuration, func(k KindEnum) bool {
			return k.IsInteger() && k != KindUint64
		})
	}},
	{CategorySeconds, func(from, to KindEnum) bool {
		return either(from, to, KindDuration, KindEnum.IsFloat)
	}},
	{CategoryEnumString, func(from, to KindEnum) bool {
		return from == KindPrimitiveEnum && to == KindPrimitiveEnum ||
			exactly(KindString, KindPrimitiveEnum)(from, to)
	}},
	{CategoryEnumNumber, func(from, to KindEnum) bool {
		return either(from, to, KindPrimitiveEnum, KindEnum.IsNumber)
	}},
	{CategoryGUID, exactly(KindString, KindUUID)},
}

// exactly matches a and b in either direction.
func exactly(a, b KindEnum) func(from, to KindEnum) bool {
	return func(from, to KindEnum) bool {
		return from == a && to == b || from == b && to == a
	}
}

// either matches fixed on one side and a kind accepted by other on the opposite side.
func either(from, to, fixed KindEnum, other func(KindEnum) bool) bool {
	return from == fixed && other(to) || to == fixed && other(from)
}

// guaranteedBits is the width a number kind is known to fit in as a source, or known
// to provide as a target. int and uint hold at least 32 and at most 64 bits
// regardless of platform.
func guaranteedBits(k KindEnum, asTarget bool) int {
	if k == KindInt || k == KindUint {
		if asTarget {
			return 32
		}

		return 64
	}

	return k.Bits()
}

// mantissaBits is the number of integer bits a float kind represents exactly.
func mantissaBits(k KindEnum) int {
	if k == KindFloat32 {
		return 24
	}

	return 53
}

func safeNumber(from, to KindEnum) bool {
	if !from.IsNumber() || !to.IsNumber() {
		return false
	}

	if from == to {
		return true
	}

	src, dst := guaranteedBits(from, false), guaranteedBits(to, true)

	switch {
	case to.IsFloat() && from.IsFloat():
		return src <= dst
	case to.IsFloat():
		return src <= mantissaBits(to)
	case from.IsFloat():
		return false
	case from.IsSigned() == to.IsSigned():
		return src <= dst
	case from.IsUnsigned():
		return src < dst
	default:
		return false
	}
}

// Has reports whether every bit of other is set in c.
func (c CategoryEnum) Has(other CategoryEnum) bool {
	return c&other == other
}

// Lookup returns the category a kind pair belongs to.
func Lookup(from, to KindEnum) (CategoryEnum, bool) {
	for _, rule := range categoryRules {
		if rule.match(from, to) {
			return rule.category, true
		}
	}

	return CategoryNone, false
}

var categoryNames = map[string]CategoryEnum{
	"safe_number":   CategorySafeNumber,
	"unsafe_number": CategoryUnsafeNumber,
	"text_number":   CategoryTextNumber,
	"numeric_bool":  CategoryNumericBool,
	"textual_bool":  CategoryTextualBool,
	"datetime":      CategoryDatetime,
	"timestamp":     CategoryTimestamp,
	"duration":      CategoryDuration,
	"nanoseconds":   CategoryNanoseconds,
	"seconds":       CategorySeconds,
	"enum_string":   CategoryEnumString,
	"enum_number":   CategoryEnumNumber,
	"guid":          CategoryGUID,
	"stringer":      CategoryStringer,
	"all":           CategoryAll,
	"none":          CategoryNone,
}

// ParseCategories combines category names as used in mapping files, e.g. "text_number".
func ParseCategories(names []string) (CategoryEnum, error) {
	var result CategoryEnum

	for _, name := range names {
		category, ok := categoryNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return CategoryNone, fmt.Errorf("unknown conversion category %q", name)
		}

		result |= category
	}

	return result, nil
}
