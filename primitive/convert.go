package primitive

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()

// Converter coerces values between simple types. It is safe for concurrent use once configured.
type Converter struct {
	// Culture drives number separators and accepted date layouts.
	Culture Culture
	// Categories enables conversion families; identity and same-kind conversions are always on.
	Categories CategoryEnum
	// StrictNumeric turns numeric overflow into an error instead of a zero value.
	StrictNumeric bool
	// Lenient turns parse failures into zero values instead of errors.
	Lenient bool
	// Enums validates and names enum values. Nil means only String/IsValid methods are consulted.
	Enums *EnumRegistry
}

// NewConverter returns a converter for the current culture with every category enabled.
func NewConverter() *Converter {
	return &Converter{
		Culture:    CurrentCulture(),
		Categories: CategoryAll,
		Enums:      NewEnumRegistry(),
	}
}

func deref(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t
}

// CanConvert reports whether Convert may succeed for values of type from.
func (c *Converter) CanConvert(from, to reflect.Type) bool {
	from, to = deref(from), deref(to)
	if from == nil || to == nil {
		return false
	}

	if from == to {
		return true
	}

	fk, tk := FromReflectType(from), FromReflectType(to)
	if tk == 0 {
		return false
	}

	if fk == 0 {
		return tk == KindString && c.Categories.Has(CategoryStringer) && implementsStringer(from)
	}

	if fk == tk && fk != KindPrimitiveEnum {
		return true
	}

	category, ok := category(from, to, fk, tk)

	return ok && c.Categories.Has(category)
}

func implementsStringer(t reflect.Type) bool {
	return t.Implements(stringerType) || reflect.PointerTo(t).Implements(stringerType)
}

// category refines Lookup with the representation of enum types.
func category(from, to reflect.Type, fk, tk KindEnum) (CategoryEnum, bool) {
	cat, ok := Lookup(fk, tk)
	if !ok {
		return CategoryNone, false
	}

	if cat == CategoryEnumNumber {
		enum := from
		if tk == KindPrimitiveEnum {
			enum = to
		}

		if underlyingNumber(enum) == 0 {
			return CategoryNone, false
		}
	}

	return cat, true
}

// Convert coerces v to type to. Nil pointers and interfaces convert to the zero value of to.
func (c *Converter) Convert(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Zero(to), nil
		}

		v = v.Elem()
	}

	if !v.IsValid() {
		return reflect.Zero(to), nil
	}

	if to.Kind() == reflect.Ptr {
		out, err := c.Convert(v, to.Elem())
		if err != nil {
			return reflect.Value{}, err
		}

		ptr := reflect.New(to.Elem())
		ptr.Elem().Set(out)

		return ptr, nil
	}

	from := v.Type()
	if from == to {
		return v, nil
	}

	if to.Kind() == reflect.Interface && from.Implements(to) {
		return v.Convert(to), nil
	}

	fk, tk := FromReflectType(from), FromReflectType(to)

	switch {
	case tk == 0:
		return reflect.Value{}, conversionError(v, to, ErrUnsupported)
	case fk == 0:
		return c.stringer(v, to, tk)
	case fk == KindString && strings.TrimSpace(v.String()) == "":
		return reflect.Zero(to), nil
	case fk == tk && fk != KindPrimitiveEnum && from.ConvertibleTo(to):
		return v.Convert(to), nil
	}

	cat, ok := category(from, to, fk, tk)
	if !ok {
		return reflect.Value{}, conversionError(v, to, ErrUnsupported)
	}

	if !c.Categories.Has(cat) {
		return reflect.Value{}, conversionError(v, to, ErrNotAllowed)
	}

	var (
		out reflect.Value
		err error
	)

	switch cat {
	case CategorySafeNumber, CategoryUnsafeNumber:
		out, err = writeNumber(readNumber(v), to)
	case CategoryTextNumber:
		if fk == KindString {
			out, err = c.parseNumber(v.String(), to)
		} else {
			out = c.formatNumber(v, to)
		}
	case CategoryNumericBool:
		out, err = numericBool(v, to, fk)
	case CategoryTextualBool:
		out, err = textualBool(v, to, fk)
	case CategoryDatetime:
		out, err = c.datetime(v, to, fk)
	case CategoryTimestamp:
		out, err = timestamp(v, to, fk)
	case CategoryDuration:
		out, err = textDuration(v, to, fk)
	case CategoryNanoseconds:
		out, err = nanoseconds(v, to, fk)
	case CategorySeconds:
		out, err = seconds(v, to, fk)
	case CategoryEnumString:
		out, err = c.enumString(v, to, fk, tk)
	case CategoryEnumNumber:
		out, err = c.enumNumber(v, to, tk)
	case CategoryGUID:
		out, err = guid(v, to, fk)
	default:
		err = ErrUnsupported
	}

	if err != nil {
		return c.fail(v, to, err)
	}

	return out, nil
}

// fail applies the overflow and leniency policies to a conversion error.
func (c *Converter) fail(v reflect.Value, to reflect.Type, err error) (reflect.Value, error) {
	switch {
	case errors.Is(err, ErrOverflow) && !c.StrictNumeric:
		return reflect.Zero(to), nil
	case c.Lenient && (errors.Is(err, ErrUnparseable) || errors.Is(err, ErrUnknownEnum) || errors.Is(err, ErrOutOfBoolSet)):
		return reflect.Zero(to), nil
	}

	return reflect.Value{}, conversionError(v, to, err)
}

func (c *Converter) stringer(v reflect.Value, to reflect.Type, tk KindEnum) (reflect.Value, error) {
	if tk != KindString || !c.Categories.Has(CategoryStringer) {
		return reflect.Value{}, conversionError(v, to, ErrUnsupported)
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return setString(to, s.String()), nil
	}

	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)

	if s, ok := ptr.Interface().(fmt.Stringer); ok {
		return setString(to, s.String()), nil
	}

	return reflect.Value{}, conversionError(v, to, ErrUnsupported)
}

type number struct {
	kind byte // 'i', 'u' or 'f'
	i    int64
	u    uint64
	f    float64
}

func readNumber(v reflect.Value) number {
	switch {
	case v.CanInt():
		return number{kind: 'i', i: v.Int()}
	case v.CanUint():
		return number{kind: 'u', u: v.Uint()}
	default:
		return number{kind: 'f', f: v.Float()}
	}
}

// writeNumber stores n into a value of type to. Out of range values report ErrOverflow, never wrap.
func writeNumber(n number, to reflect.Type) (reflect.Value, error) {
	out := reflect.New(to).Elem()

	switch {
	case out.CanInt():
		var i int64

		switch n.kind {
		case 'i':
			i = n.i
		case 'u':
			if n.u > math.MaxInt64 {
				return reflect.Value{}, ErrOverflow
			}

			i = int64(n.u)
		default:
			if math.IsNaN(n.f) || n.f < math.MinInt64 || n.f >= math.MaxInt64 {
				return reflect.Value{}, ErrOverflow
			}

			i = int64(n.f)
		}

		if out.OverflowInt(i) {
			return reflect.Value{}, ErrOverflow
		}

		out.SetInt(i)
	case out.CanUint():
		var u uint64

		switch n.kind {
		case 'i':
			if n.i < 0 {
				return reflect.Value{}, ErrOverflow
			}

			u = uint64(n.i)
		case 'u':
			u = n.u
		default:
			if math.IsNaN(n.f) || n.f < 0 || n.f >= math.MaxUint64 {
				return reflect.Value{}, ErrOverflow
			}

			u = uint64(n.f)
		}

		if out.OverflowUint(u) {
			return reflect.Value{}, ErrOverflow
		}

		out.SetUint(u)
	case out.CanFloat():
		var f float64

		switch n.kind {
		case 'i':
			f = float64(n.i)
		case 'u':
			f = float64(n.u)
		default:
			f = n.f
		}

		if !math.IsInf(f, 0) && out.OverflowFloat(f) {
			return reflect.Value{}, ErrOverflow
		}

		out.SetFloat(f)
	default:
		return reflect.Value{}, ErrUnsupported
	}

	return out, nil
}

// NormalizeNumber rewrites a culture formatted number into the invariant form strconv accepts.
func (c Culture) NormalizeNumber(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.TrimSpace(s) {
		switch {
		case r == c.Decimal:
			b.WriteByte('.')
		case r == c.Group, r == ' ', r == '\u00a0', r == '\u202f':
			continue
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func (c *Converter) parseNumber(s string, to reflect.Type) (reflect.Value, error) {
	s = c.Culture.NormalizeNumber(s)

	out := reflect.New(to).Elem()

	switch {
	case out.CanInt():
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return writeNumber(number{kind: 'i', i: i}, to)
		} else if errors.Is(err, strconv.ErrRange) {
			return reflect.Value{}, ErrOverflow
		}
	case out.CanUint():
		if u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64); err == nil {
			return writeNumber(number{kind: 'u', u: u}, to)
		} else if errors.Is(err, strconv.ErrRange) {
			return reflect.Value{}, ErrOverflow
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return reflect.Value{}, ErrOverflow
		}

		return reflect.Value{}, fmt.Errorf("%w: %q is not a number", ErrUnparseable, s)
	}

	if !out.CanFloat() && f != math.Trunc(f) {
		return reflect.Value{}, fmt.Errorf("%w: %q is not an integer", ErrUnparseable, s)
	}

	return writeNumber(number{kind: 'f', f: f}, to)
}

func (c *Converter) formatNumber(v reflect.Value, to reflect.Type) reflect.Value {
	var s string

	n := readNumber(v)

	switch n.kind {
	case 'i':
		s = strconv.FormatInt(n.i, 10)
	case 'u':
		s = strconv.FormatUint(n.u, 10)
	default:
		s = strconv.FormatFloat(n.f, 'f', -1, v.Type().Bits())
		if c.Culture.Decimal != '.' {
			s = strings.Replace(s, ".", string(c.Culture.Decimal), 1)
		}
	}

	return setString(to, s)
}

func setString(to reflect.Type, s string) reflect.Value {
	out := reflect.New(to).Elem()
	out.SetString(s)

	return out
}

func numericBool(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindBool {
		var n int64
		if v.Bool() {
			n = 1
		}

		return writeNumber(number{kind: 'i', i: n}, to)
	}

	out := reflect.New(to).Elem()

	switch n := readNumber(v); {
	case n.kind == 'i' && n.i == 0, n.kind == 'u' && n.u == 0:
		out.SetBool(false)
	case n.kind == 'i' && n.i == 1, n.kind == 'u' && n.u == 1:
		out.SetBool(true)
	default:
		return reflect.Value{}, ErrOutOfBoolSet
	}

	return out, nil
}

// ParseBool accepts true/false, yes/no, on/off, y/n, t/f and 1/0, ignoring case.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "y", "t", "1":
		return true, nil
	case "false", "no", "off", "n", "f", "0":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not a boolean", ErrUnparseable, s)
	}
}

func textualBool(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindBool {
		return setString(to, strconv.FormatBool(v.Bool())), nil
	}

	b, err := ParseBool(v.String())
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(to).Elem()
	out.SetBool(b)

	return out, nil
}

func (c *Converter) datetime(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindTime {
		return setString(to, v.Interface().(time.Time).Format(time.RFC3339Nano)), nil
	}

	s := strings.TrimSpace(v.String())
	for _, layout := range c.Culture.Layouts() {
		if t, err := time.Parse(layout, s); err == nil {
			return reflect.ValueOf(t), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("%w: %q is not a date in culture %s", ErrUnparseable, s, c.Culture)
}

func timestamp(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindTime {
		return writeNumber(number{kind: 'i', i: v.Interface().(time.Time).Unix()}, to)
	}

	n := readNumber(v)
	if n.kind == 'u' {
		if n.u > math.MaxInt64 {
			return reflect.Value{}, ErrOverflow
		}

		n.i = int64(n.u)
	}

	return reflect.ValueOf(time.Unix(n.i, 0).UTC()), nil
}

func textDuration(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindDuration {
		return setString(to, time.Duration(v.Int()).String()), nil
	}

	d, err := time.ParseDuration(strings.TrimSpace(v.String()))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	return reflect.ValueOf(d).Convert(to), nil
}

func nanoseconds(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindDuration {
		return writeNumber(number{kind: 'i', i: v.Int()}, to)
	}

	return writeNumber(readNumber(v), to)
}

func seconds(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindDuration {
		return writeNumber(number{kind: 'f', f: time.Duration(v.Int()).Seconds()}, to)
	}

	return writeNumber(number{kind: 'f', f: v.Float() * float64(time.Second)}, to)
}

func guid(v reflect.Value, to reflect.Type, fk KindEnum) (reflect.Value, error) {
	if fk == KindUUID {
		return setString(to, v.Interface().(uuid.UUID).String()), nil
	}

	id, err := uuid.Parse(strings.TrimSpace(v.String()))
	if err != nil {
		return reflect.Value{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}

	return reflect.ValueOf(id), nil
}

func (c *Converter) enumString(v reflect.Value, to reflect.Type, fk, tk KindEnum) (reflect.Value, error) {
	switch {
	case tk == KindString:
		return setString(to, c.Enums.Name(v)), nil
	case fk == KindString:
		return c.enumByName(v.String(), to)
	default:
		out, err := c.enumByName(c.Enums.Name(v), to)
		if err == nil || underlyingNumber(v.Type()) == 0 || underlyingNumber(to) == 0 {
			return out, err
		}

		return c.enumNumber(v, to, tk)
	}
}

func (c *Converter) enumByName(name string, to reflect.Type) (reflect.Value, error) {
	name = strings.TrimSpace(name)

	if out, ok := c.Enums.ByName(to, name); ok {
		return out, nil
	}

	if underlyingNumber(to) != 0 {
		if out, err := c.parseNumber(name, to); err == nil && c.Enums.Known(out) {
			return out, nil
		}
	}

	return reflect.Value{}, fmt.Errorf("%w: %q of %v", ErrUnknownEnum, name, to)
}

func (c *Converter) enumNumber(v reflect.Value, to reflect.Type, tk KindEnum) (reflect.Value, error) {
	out, err := writeNumber(readNumber(v), to)
	if err != nil {
		return reflect.Value{}, err
	}

	if tk == KindPrimitiveEnum && !c.Enums.Known(out) {
		return reflect.Value{}, fmt.Errorf("%w: %v of %v", ErrUnknownEnum, out, to)
	}

	return out, nil
}
