package value

import (
	"errors"
	"io"

	"github.com/mash-protocol/cbor-go/pkg/wire"
)

// Any holds a Value of unknown kind. It is the wire.Decodable side of the
// model: decode into an *Any wherever the shape of an item is not known.
type Any struct {
	Value Value
}

func (a Any) EncodeCBOR(e *wire.Encoder) error {
	return e.Encode(orNull(a.Value))
}

func (a *Any) DecodeCBOR(d *wire.Decoder) error {
	v, err := decodeItem(d)
	if err != nil {
		return err
	}
	a.Value = v
	return nil
}

// Decode reads the next top-level item from d.
func Decode(d *wire.Decoder) (Value, error) {
	var a Any
	if err := d.Decode(&a); err != nil {
		return nil, err
	}
	return a.Value, nil
}

// ReadAll reads items from d until the stream ends cleanly.
func ReadAll(d *wire.Decoder) ([]Value, error) {
	var out []Value
	for {
		v, err := Decode(d)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}

// Parse decodes a sequence of concatenated items.
func Parse(data []byte) ([]Value, error) {
	return ReadAll(wire.NewDecoderBytes(data))
}

// decodeItem decodes one item. Tags are handled here because the visitor
// sees a tag number as a plain unsigned integer.
func decodeItem(d *wire.Decoder) (Value, error) {
	major, err := d.PeekMajor()
	if err != nil {
		return nil, err
	}
	if major == wire.MajorTag {
		var t Tag
		err := d.DecodeTag(func(n uint64, d *wire.Decoder) error {
			t.Number = n
			var err error
			t.Content, err = decodeItem(d)
			return err
		})
		return t, err
	}

	var b builder
	if err := d.DecodeAny(&b); err != nil {
		return nil, err
	}
	return b.out, nil
}

// builder turns visitor callbacks into a Value.
type builder struct {
	out Value
}

func (b *builder) set(v Value) error {
	b.out = v
	return nil
}

func (b *builder) VisitBool(v bool) error       { return b.set(Bool(v)) }
func (b *builder) VisitUint8(v uint8) error     { return b.set(Uint(v)) }
func (b *builder) VisitUint16(v uint16) error   { return b.set(Uint(v)) }
func (b *builder) VisitUint32(v uint32) error   { return b.set(Uint(v)) }
func (b *builder) VisitUint64(v uint64) error   { return b.set(Uint(v)) }
func (b *builder) VisitInt8(v int8) error       { return b.set(Int(v)) }
func (b *builder) VisitInt16(v int16) error     { return b.set(Int(v)) }
func (b *builder) VisitInt32(v int32) error     { return b.set(Int(v)) }
func (b *builder) VisitInt64(v int64) error     { return b.set(Int(v)) }
func (b *builder) VisitFloat32(v float32) error { return b.set(Float32(v)) }
func (b *builder) VisitFloat64(v float64) error { return b.set(Float64(v)) }
func (b *builder) VisitString(v string) error   { return b.set(Text(v)) }
func (b *builder) VisitBytes(v []byte) error    { return b.set(Bytes(v)) }
func (b *builder) VisitUnit() error             { return b.set(Null{}) }

func (b *builder) VisitSeq(s *wire.SeqAccess) error {
	arr := make(Array, 0, s.SizeHint())
	for {
		var item Any
		ok, err := s.Next(&item)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		arr = append(arr, item.Value)
	}
	b.out = arr
	return nil
}

func (b *builder) VisitMap(m *wire.MapAccess) error {
	out := make(Map, 0, m.SizeHint())
	for {
		var k, v Any
		ok, err := m.NextKey(&k)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := m.Value(&v); err != nil {
			return err
		}
		out = append(out, Pair{Key: k.Value, Value: v.Value})
	}
	b.out = out
	return nil
}

var (
	_ wire.Visitor   = (*builder)(nil)
	_ wire.Decodable = (*Any)(nil)
)
