// Package value provides a dynamic model of CBOR data items.
//
// A Value is one of Null, Bool, Uint, Int, Float32, Float64, Bytes, Text,
// Array, Map or Tag. Values decode from any well-formed input the wire
// decoder accepts and encode canonically through the wire encoder, so
// they are useful for inspecting data of unknown shape.
package value

import (
	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Kind identifies the concrete type of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindUint
	KindInt
	KindFloat32
	KindFloat64
	KindBytes
	KindText
	KindArray
	KindMap
	KindTag
)

var kindNames = [...]string{
	KindNull:    "null",
	KindBool:    "bool",
	KindUint:    "uint",
	KindInt:     "int",
	KindFloat32: "float32",
	KindFloat64: "float64",
	KindBytes:   "bytes",
	KindText:    "text",
	KindArray:   "array",
	KindMap:     "map",
	KindTag:     "tag",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is a CBOR data item.
type Value interface {
	wire.Encodable
	Kind() Kind
}

type (
	// Null is the null simple value.
	Null struct{}

	// Bool is true or false.
	Bool bool

	// Uint is a non-negative integer.
	Uint uint64

	// Int is a signed integer. Decoding produces Int only for negative
	// values; non-negative ones become Uint.
	Int int64

	// Float32 is a single precision float. Half precision input decodes
	// to Float32 as well.
	Float32 float32

	// Float64 is a double precision float.
	Float64 float64

	// Bytes is a byte string.
	Bytes []byte

	// Text is a UTF-8 text string.
	Text string

	// Array is a sequence of values.
	Array []Value

	// Map is a sequence of key/value pairs in stream order.
	Map []Pair
)

// Pair is one entry of a Map.
type Pair struct {
	Key   Value
	Value Value
}

// Tag is a tagged value.
type Tag struct {
	Number  uint64
	Content Value
}

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Uint) Kind() Kind    { return KindUint }
func (Int) Kind() Kind     { return KindInt }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }
func (Bytes) Kind() Kind   { return KindBytes }
func (Text) Kind() Kind    { return KindText }
func (Array) Kind() Kind   { return KindArray }
func (Map) Kind() Kind     { return KindMap }
func (Tag) Kind() Kind     { return KindTag }

func (Null) EncodeCBOR(e *wire.Encoder) error      { return e.EncodeUnit() }
func (v Bool) EncodeCBOR(e *wire.Encoder) error    { return e.EncodeBool(bool(v)) }
func (v Uint) EncodeCBOR(e *wire.Encoder) error    { return e.EncodeUint64(uint64(v)) }
func (v Int) EncodeCBOR(e *wire.Encoder) error     { return e.EncodeInt64(int64(v)) }
func (v Float32) EncodeCBOR(e *wire.Encoder) error { return e.EncodeFloat32(float32(v)) }
func (v Float64) EncodeCBOR(e *wire.Encoder) error { return e.EncodeFloat64(float64(v)) }
func (v Bytes) EncodeCBOR(e *wire.Encoder) error   { return e.EncodeBytes(v) }
func (v Text) EncodeCBOR(e *wire.Encoder) error    { return e.EncodeString(string(v)) }

func (v Array) EncodeCBOR(e *wire.Encoder) error {
	return e.EncodeSeq(len(v), func(e *wire.Encoder) error {
		for _, item := range v {
			if err := e.Encode(orNull(item)); err != nil {
				return err
			}
		}
		return nil
	})
}

// EncodeCBOR writes the pairs in order. Keys must be Text.
func (v Map) EncodeCBOR(e *wire.Encoder) error {
	return e.EncodeMap(len(v), func(m *wire.MapEncoder) error {
		for _, p := range v {
			if err := m.Entry(orNull(p.Key), orNull(p.Value)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (v Tag) EncodeCBOR(e *wire.Encoder) error {
	return e.EncodeTag(v.Number, orNull(v.Content))
}

// orNull stands in for a nil Value.
func orNull(v Value) Value {
	if v == nil {
		return Null{}
	}
	return v
}

// Get returns the value stored under the text key, if present.
func (v Map) Get(key string) (Value, bool) {
	for _, p := range v {
		if t, ok := p.Key.(Text); ok && string(t) == key {
			return p.Value, true
		}
	}
	return nil, false
}

// Marshal encodes v with the default wire mode. A nil v encodes as null.
func Marshal(v Value) ([]byte, error) {
	return wire.Marshal(orNull(v))
}

var (
	_ Value = Null{}
	_ Value = Array(nil)
	_ Value = Map(nil)
	_ Value = Tag{}
)
