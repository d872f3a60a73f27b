package primitive_test

import (
	"fmt"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"struct-mapper/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Celsius float64
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Celsius(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(uuid.UUID{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindFloat64
	// KindDuration
	// KindTime
	// KindUUID
	// KindEnum(0)
}

func TestIsSimple(t *testing.T) {
	t.Parallel()

	assert.True(t, primitive.IsSimple(reflect.TypeFor[*int]()))
	assert.True(t, primitive.IsSimple(reflect.TypeFor[**string]()))
	assert.True(t, primitive.IsSimple(reflect.TypeFor[*time.Time]()))
	assert.False(t, primitive.IsSimple(reflect.TypeFor[[]int]()))
	assert.False(t, primitive.IsSimple(reflect.TypeFor[struct{ A int }]()))
	assert.False(t, primitive.IsSimple(nil))
}

func TestLookupCategory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to primitive.KindEnum
		want     primitive.CategoryEnum
	}{
		{primitive.KindInt8, primitive.KindInt64, primitive.CategorySafeNumber},
		{primitive.KindInt64, primitive.KindInt8, primitive.CategoryUnsafeNumber},
		{primitive.KindString, primitive.KindFloat64, primitive.CategoryTextNumber},
		{primitive.KindBool, primitive.KindInt, primitive.CategoryNumericBool},
		{primitive.KindString, primitive.KindBool, primitive.CategoryTextualBool},
		{primitive.KindTime, primitive.KindString, primitive.CategoryDatetime},
		{primitive.KindInt64, primitive.KindTime, primitive.CategoryTimestamp},
		{primitive.KindString, primitive.KindDuration, primitive.CategoryDuration},
		{primitive.KindInt, primitive.KindDuration, primitive.CategoryNanoseconds},
		{primitive.KindFloat64, primitive.KindDuration, primitive.CategorySeconds},
		{primitive.KindPrimitiveEnum, primitive.KindString, primitive.CategoryEnumString},
		{primitive.KindInt32, primitive.KindPrimitiveEnum, primitive.CategoryEnumNumber},
		{primitive.KindUUID, primitive.KindString, primitive.CategoryGUID},
	}

	for _, tt := range tests {
		got, ok := primitive.Lookup(tt.from, tt.to)
		if !ok || got != tt.want {
			t.Errorf("Lookup(%v, %v) = %v, %v; want %v", tt.from, tt.to, got, ok, tt.want)
		}
	}

	_, ok := primitive.Lookup(primitive.KindTime, primitive.KindBool)
	assert.False(t, ok)
}

func TestLookup_SafeNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to primitive.KindEnum
		safe     bool
	}{
		{primitive.KindInt, primitive.KindInt64, true},
		{primitive.KindInt64, primitive.KindInt, false},
		{primitive.KindInt32, primitive.KindInt, true},
		{primitive.KindInt, primitive.KindInt32, false},
		{primitive.KindUint8, primitive.KindInt16, true},
		{primitive.KindUint8, primitive.KindInt8, false},
		{primitive.KindUint32, primitive.KindInt64, true},
		{primitive.KindUint, primitive.KindInt64, false},
		{primitive.KindInt8, primitive.KindUint64, false},
		{primitive.KindInt16, primitive.KindFloat32, true},
		{primitive.KindInt32, primitive.KindFloat32, false},
		{primitive.KindUint32, primitive.KindFloat64, true},
		{primitive.KindInt64, primitive.KindFloat64, false},
		{primitive.KindFloat32, primitive.KindFloat64, true},
		{primitive.KindFloat64, primitive.KindFloat32, false},
		{primitive.KindFloat32, primitive.KindInt64, false},
	}

	for _, tt := range tests {
		got, ok := primitive.Lookup(tt.from, tt.to)
		assert.True(t, ok)
		assert.Equal(t, tt.safe, got == primitive.CategorySafeNumber, "%v -> %v", tt.from, tt.to)
	}
}

func TestKindBits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, strconv.IntSize, primitive.KindUint.Bits())
	assert.Equal(t, 16, primitive.KindInt16.Bits())
	assert.Equal(t, 32, primitive.KindFloat32.Bits())
	assert.Panics(t, func() { primitive.KindString.Bits() })
}

func TestParseCategories(t *testing.T) {
	t.Parallel()

	got, err := primitive.ParseCategories([]string{"text_number", " GUID "})
	assert.NoError(t, err)
	assert.Equal(t, primitive.CategoryTextNumber|primitive.CategoryGUID, got)

	enabled := primitive.CategoryAll
	enabled &^= got
	assert.False(t, enabled.Has(primitive.CategoryGUID))
	assert.True(t, enabled.Has(primitive.CategorySafeNumber))

	_, err = primitive.ParseCategories([]string{"bogus"})
	assert.Error(t, err)
}
