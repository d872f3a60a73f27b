package primitive_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"struct-mapper/primitive"
)

type Color int

const (
	ColorRed Color = iota + 1
	ColorGreen
	ColorBlue
)

func (c Color) String() string {
	switch c {
	case ColorRed:
		return "Red"
	case ColorGreen:
		return "Green"
	case ColorBlue:
		return "Blue"
	default:
		return "Color(?)"
	}
}

type Shade string

const (
	ShadeRed   Shade = "Red"
	ShadeGreen Shade = "Green"
)

func (s Shade) IsValid() bool { return s == ShadeRed || s == ShadeGreen }

func newConverter(t *testing.T) *primitive.Converter {
	t.Helper()

	c := &primitive.Converter{
		Culture:    primitive.Invariant,
		Categories: primitive.CategoryAll,
		Enums:      primitive.NewEnumRegistry(),
	}
	require.NoError(t, primitive.RegisterEnum(c.Enums, ColorRed, ColorGreen, ColorBlue))

	return c
}

func convert[T any](t *testing.T, c *primitive.Converter, v any) (T, error) {
	t.Helper()

	out, err := c.Convert(reflect.ValueOf(v), reflect.TypeFor[T]())
	if err != nil {
		var zero T
		return zero, err
	}

	return out.Interface().(T), nil
}

func TestConvertNumbers(t *testing.T) {
	t.Parallel()

	c := newConverter(t)

	i8, err := convert[int8](t, c, 100)
	require.NoError(t, err)
	assert.Equal(t, int8(100), i8)

	// overflow never wraps: zero value unless strict
	i8, err = convert[int8](t, c, 300)
	require.NoError(t, err)
	assert.Equal(t, int8(0), i8)

	u, err := convert[uint](t, c, -1)
	require.NoError(t, err)
	assert.Equal(t, uint(0), u)

	strict := newConverter(t)
	strict.StrictNumeric = true

	_, err = convert[int8](t, strict, 300)
	require.ErrorIs(t, err, primitive.ErrOverflow)

	var ce *primitive.ConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, reflect.TypeFor[int](), ce.From)
	assert.Equal(t, reflect.TypeFor[int8](), ce.To)

	f, err := convert[float64](t, c, int64(42))
	require.NoError(t, err)
	assert.InDelta(t, 42.0, f, 1e-9)

	i, err := convert[int](t, c, 12.9)
	require.NoError(t, err)
	assert.Equal(t, 12, i)
}

func TestConvertTextNumbers(t *testing.T) {
	t.Parallel()

	c := newConverter(t)

	tests := []struct {
		culture string
		input   string
		want    float64
	}{
		{"invariant", "1,234.5", 1234.5},
		{"en-US", "1,234.5", 1234.5},
		{"de-DE", "1.234,5", 1234.5},
		{"fr-FR", "1 234,5", 1234.5},
		{"de-CH", "1'234.5", 1234.5},
	}

	for _, tt := range tests {
		culture, err := primitive.ParseCulture(tt.culture)
		require.NoError(t, err)

		cc := *c
		cc.Culture = culture

		got, err := convert[float64](t, &cc, tt.input)
		if err != nil || got != tt.want {
			t.Errorf("[%s] convert %q = %v, %v; want %v", tt.culture, tt.input, got, err, tt.want)
		}
	}

	n, err := convert[int](t, c, " 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	n, err = convert[int](t, c, "12.0")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = convert[int](t, c, "12.5")
	require.ErrorIs(t, err, primitive.ErrUnparseable)

	_, err = convert[int](t, c, "twelve")
	require.ErrorIs(t, err, primitive.ErrUnparseable)

	n, err = convert[int](t, c, "   ")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	lenient := newConverter(t)
	lenient.Lenient = true

	n, err = convert[int](t, lenient, "twelve")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	de := newConverter(t)
	de.Culture = primitive.CultureFor(language.MustParse("de-DE"))

	s, err := convert[string](t, de, 2.5)
	require.NoError(t, err)
	assert.Equal(t, "2,5", s)
}

func TestConvertBoolsAndTimes(t *testing.T) {
	t.Parallel()

	c := newConverter(t)

	b, err := convert[bool](t, c, "Yes")
	require.NoError(t, err)
	assert.True(t, b)

	b, err = convert[bool](t, c, 0)
	require.NoError(t, err)
	assert.False(t, b)

	_, err = convert[bool](t, c, 7)
	require.ErrorIs(t, err, primitive.ErrOutOfBoolSet)

	n, err := convert[int](t, c, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	ts, err := convert[time.Time](t, c, "2024-03-01T10:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, ts.Year())

	us := newConverter(t)
	us.Culture = primitive.CultureFor(language.AmericanEnglish)

	ts, err = convert[time.Time](t, us, "03/01/2024")
	require.NoError(t, err)
	assert.Equal(t, time.March, ts.Month())

	gb := newConverter(t)
	gb.Culture = primitive.CultureFor(language.BritishEnglish)

	ts, err = convert[time.Time](t, gb, "03/01/2024")
	require.NoError(t, err)
	assert.Equal(t, time.January, ts.Month())

	unix, err := convert[int64](t, c, time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), unix)

	d, err := convert[time.Duration](t, c, "2h45m")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+45*time.Minute, d)

	d, err = convert[time.Duration](t, c, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	secs, err := convert[float64](t, c, 90*time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 90.0, secs, 1e-9)
}

func TestConvertDurationNumbers(t *testing.T) {
	t.Parallel()

	c := newConverter(t)

	d, err := convert[time.Duration](t, c, int64(1500))
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Nanosecond, d)

	p, err := convert[*time.Duration](t, c, int32(7))
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 7*time.Nanosecond, *p)

	d, err = convert[time.Duration](t, c, float32(0.25))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	ns, err := convert[int64](t, c, 2*time.Microsecond)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), ns)

	c.StrictNumeric = true
	_, err = convert[int8](t, c, time.Second)
	require.ErrorIs(t, err, primitive.ErrOverflow)
}

func TestConvertEnums(t *testing.T) {
	t.Parallel()

	c := newConverter(t)

	color, err := convert[Color](t, c, "Green")
	require.NoError(t, err)
	assert.Equal(t, ColorGreen, color)

	color, err = convert[Color](t, c, "blue")
	require.NoError(t, err)
	assert.Equal(t, ColorBlue, color)

	color, err = convert[Color](t, c, "3")
	require.NoError(t, err)
	assert.Equal(t, ColorBlue, color)

	_, err = convert[Color](t, c, "Purple")
	require.ErrorIs(t, err, primitive.ErrUnknownEnum)

	color, err = convert[Color](t, c, 1)
	require.NoError(t, err)
	assert.Equal(t, ColorRed, color)

	_, err = convert[Color](t, c, 42)
	require.ErrorIs(t, err, primitive.ErrUnknownEnum)

	n, err := convert[int](t, c, ColorBlue)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	s, err := convert[string](t, c, ColorGreen)
	require.NoError(t, err)
	assert.Equal(t, "Green", s)

	shade, err := convert[Shade](t, c, ColorRed)
	require.NoError(t, err)
	assert.Equal(t, ShadeRed, shade)

	_, err = convert[Shade](t, c, ColorBlue)
	require.ErrorIs(t, err, primitive.ErrUnknownEnum)

	back, err := convert[Color](t, c, ShadeGreen)
	require.NoError(t, err)
	assert.Equal(t, ColorGreen, back)
}

func TestConvertMisc(t *testing.T) {
	t.Parallel()

	c := newConverter(t)

	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	got, err := convert[uuid.UUID](t, c, id.String())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	s, err := convert[string](t, c, id)
	require.NoError(t, err)
	assert.Equal(t, id.String(), s)

	p, err := convert[*int](t, c, "5")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 5, *p)

	var nilPtr *string
	n, err := convert[int](t, c, nilPtr)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	s, err = convert[string](t, c, language.German)
	require.NoError(t, err)
	assert.Equal(t, "de", s)

	restricted := newConverter(t)
	restricted.Categories = primitive.CategorySafeNumber

	_, err = convert[string](t, restricted, 1)
	require.ErrorIs(t, err, primitive.ErrNotAllowed)
	assert.False(t, restricted.CanConvert(reflect.TypeFor[int](), reflect.TypeFor[string]()))
	assert.True(t, restricted.CanConvert(reflect.TypeFor[int8](), reflect.TypeFor[*int64]()))

	_, err = convert[struct{ A int }](t, c, 1)
	require.ErrorIs(t, err, primitive.ErrUnsupported)
}
