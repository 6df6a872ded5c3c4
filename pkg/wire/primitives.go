package wire

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// uintVisitor accepts any unsigned integer no larger than max.
type uintVisitor struct {
	BaseVisitor
	max uint64
	out uint64
}

func (v *uintVisitor) accept(n uint64) error {
	if n > v.max {
		return rangeError("%d overflows %s", n, v.Expected)
	}
	v.out = n
	return nil
}

func (v *uintVisitor) negative(n int64) error {
	return rangeError("%d cannot be stored in %s", n, v.Expected)
}

func (v *uintVisitor) VisitUint8(n uint8) error   { return v.accept(uint64(n)) }
func (v *uintVisitor) VisitUint16(n uint16) error { return v.accept(uint64(n)) }
func (v *uintVisitor) VisitUint32(n uint32) error { return v.accept(uint64(n)) }
func (v *uintVisitor) VisitUint64(n uint64) error { return v.accept(n) }
func (v *uintVisitor) VisitInt8(n int8) error     { return v.negative(int64(n)) }
func (v *uintVisitor) VisitInt16(n int16) error   { return v.negative(int64(n)) }
func (v *uintVisitor) VisitInt32(n int32) error   { return v.negative(int64(n)) }
func (v *uintVisitor) VisitInt64(n int64) error   { return v.negative(n) }

// intVisitor accepts any integer in [min, max].
type intVisitor struct {
	BaseVisitor
	min, max int64
	out      int64
}

func (v *intVisitor) unsigned(n uint64) error {
	if n > uint64(v.max) {
		return rangeError("%d overflows %s", n, v.Expected)
	}
	v.out = int64(n)
	return nil
}

func (v *intVisitor) signed(n int64) error {
	if n < v.min || n > v.max {
		return rangeError("%d overflows %s", n, v.Expected)
	}
	v.out = n
	return nil
}

func (v *intVisitor) VisitUint8(n uint8) error   { return v.unsigned(uint64(n)) }
func (v *intVisitor) VisitUint16(n uint16) error { return v.unsigned(uint64(n)) }
func (v *intVisitor) VisitUint32(n uint32) error { return v.unsigned(uint64(n)) }
func (v *intVisitor) VisitUint64(n uint64) error { return v.unsigned(n) }
func (v *intVisitor) VisitInt8(n int8) error     { return v.signed(int64(n)) }
func (v *intVisitor) VisitInt16(n int16) error   { return v.signed(int64(n)) }
func (v *intVisitor) VisitInt32(n int32) error   { return v.signed(int64(n)) }
func (v *intVisitor) VisitInt64(n int64) error   { return v.signed(n) }

// floatVisitor accepts floats. A double is narrowed to single precision
// only when no information is lost.
type floatVisitor struct {
	BaseVisitor
	single bool
	out    float64
}

func (v *floatVisitor) VisitFloat32(f float32) error {
	v.out = float64(f)
	return nil
}

func (v *floatVisitor) VisitFloat64(f float64) error {
	if v.single && !math.IsNaN(f) && float64(float32(f)) != f {
		return rangeError("%g cannot be represented as float32", f)
	}
	v.out = f
	return nil
}

type boolVisitor struct {
	BaseVisitor
	out bool
}

func (v *boolVisitor) VisitBool(b bool) error {
	v.out = b
	return nil
}

type stringVisitor struct {
	BaseVisitor
	out string
}

func (v *stringVisitor) VisitString(s string) error {
	v.out = s
	return nil
}

type bytesVisitor struct {
	BaseVisitor
	out []byte
}

func (v *bytesVisitor) VisitBytes(b []byte) error {
	v.out = b
	return nil
}

type unitVisitor struct {
	BaseVisitor
}

func (unitVisitor) VisitUnit() error { return nil }

func (d *Decoder) decodeUint(t Type, max uint64) (uint64, error) {
	v := &uintVisitor{BaseVisitor: BaseVisitor{Expected: t}, max: max}
	if err := d.DecodeAny(v); err != nil {
		return 0, err
	}
	return v.out, nil
}

func (d *Decoder) decodeInt(t Type, min, max int64) (int64, error) {
	v := &intVisitor{BaseVisitor: BaseVisitor{Expected: t}, min: min, max: max}
	if err := d.DecodeAny(v); err != nil {
		return 0, err
	}
	return v.out, nil
}

// DecodeBool decodes a boolean.
func (d *Decoder) DecodeBool() (bool, error) {
	v := &boolVisitor{BaseVisitor: BaseVisitor{Expected: TypeBool}}
	err := d.DecodeAny(v)
	return v.out, err
}

// DecodeUint8 decodes an unsigned integer that fits in 8 bits. Any
// encoded width is accepted.
func (d *Decoder) DecodeUint8() (uint8, error) {
	n, err := d.decodeUint(TypeUint8, math.MaxUint8)
	return uint8(n), err
}

func (d *Decoder) DecodeUint16() (uint16, error) {
	n, err := d.decodeUint(TypeUint16, math.MaxUint16)
	return uint16(n), err
}

func (d *Decoder) DecodeUint32() (uint32, error) {
	n, err := d.decodeUint(TypeUint32, math.MaxUint32)
	return uint32(n), err
}

func (d *Decoder) DecodeUint64() (uint64, error) {
	return d.decodeUint(TypeUint64, math.MaxUint64)
}

func (d *Decoder) DecodeUint() (uint, error) {
	n, err := d.decodeUint(TypeUint, math.MaxUint)
	return uint(n), err
}

// DecodeInt8 decodes an integer that fits in a signed 8-bit value.
func (d *Decoder) DecodeInt8() (int8, error) {
	n, err := d.decodeInt(TypeInt8, math.MinInt8, math.MaxInt8)
	return int8(n), err
}

func (d *Decoder) DecodeInt16() (int16, error) {
	n, err := d.decodeInt(TypeInt16, math.MinInt16, math.MaxInt16)
	return int16(n), err
}

func (d *Decoder) DecodeInt32() (int32, error) {
	n, err := d.decodeInt(TypeInt32, math.MinInt32, math.MaxInt32)
	return int32(n), err
}

func (d *Decoder) DecodeInt64() (int64, error) {
	return d.decodeInt(TypeInt64, math.MinInt64, math.MaxInt64)
}

func (d *Decoder) DecodeInt() (int, error) {
	n, err := d.decodeInt(TypeInt, math.MinInt, math.MaxInt)
	return int(n), err
}

// DecodeFloat32 decodes a half or single precision float, or a double that
// is exactly representable in single precision.
func (d *Decoder) DecodeFloat32() (float32, error) {
	v := &floatVisitor{BaseVisitor: BaseVisitor{Expected: TypeFloat32}, single: true}
	err := d.DecodeAny(v)
	return float32(v.out), err
}

// DecodeFloat64 decodes a float of any precision.
func (d *Decoder) DecodeFloat64() (float64, error) {
	v := &floatVisitor{BaseVisitor: BaseVisitor{Expected: TypeFloat64}}
	err := d.DecodeAny(v)
	return v.out, err
}

// DecodeString decodes a text string.
func (d *Decoder) DecodeString() (string, error) {
	v := &stringVisitor{BaseVisitor: BaseVisitor{Expected: TypeText}}
	err := d.DecodeAny(v)
	return v.out, err
}

// DecodeRune decodes a text string holding exactly one character.
func (d *Decoder) DecodeRune() (rune, error) {
	at := d.Offset()
	s, err := d.DecodeString()
	if err != nil {
		return 0, err
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		err := newError(KindTypeMismatch, fmt.Sprintf("expected a single character, got %d bytes", len(s)))
		err.Expected, err.Got = TypeText, TypeText
		return 0, annotate(err, at)
	}
	return r, nil
}

// DecodeBytes decodes a byte string.
func (d *Decoder) DecodeBytes() ([]byte, error) {
	v := &bytesVisitor{BaseVisitor: BaseVisitor{Expected: TypeBytes}}
	err := d.DecodeAny(v)
	return v.out, err
}

// DecodeUnit decodes null.
func (d *Decoder) DecodeUnit() error {
	return d.DecodeAny(unitVisitor{BaseVisitor{Expected: TypeNull}})
}
