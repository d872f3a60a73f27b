package primitive

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrOverflow      = errors.New("value overflows target type")
	ErrUnparseable   = errors.New("value cannot be parsed")
	ErrNotAllowed    = errors.New("conversion category is not enabled")
	ErrUnsupported   = errors.New("no conversion between types")
	ErrUnknownEnum   = errors.New("value is not a member of the enum")
	ErrOutOfBoolSet  = errors.New("number is neither 0 nor 1")
	ErrNilConversion = errors.New("cannot convert nil value")
)

// ConversionError describes a failed simple-type coercion.
type ConversionError struct {
	Value    any
	From, To reflect.Type
	Err      error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert %v (%v) to %v: %v", e.Value, e.From, e.To, e.Err)
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

func conversionError(v reflect.Value, to reflect.Type, err error) *ConversionError {
	ce := &ConversionError{To: to, Err: err}
	if v.IsValid() {
		ce.From = v.Type()
		if v.CanInterface() {
			ce.Value = v.Interface()
		}
	}

	return ce
}
