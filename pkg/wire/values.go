package wire

// Wrappers that make Go primitives usable wherever an Encodable or
// Decodable is expected, e.g. wire.Int64(42) or &wire.String{}.

type (
	Bool    bool
	Uint8   uint8
	Uint16  uint16
	Uint32  uint32
	Uint64  uint64
	Int8    int8
	Int16   int16
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
	String  string
	Rune    rune
)

// Bytes is a byte string. A plain []byte field would otherwise have to
// choose between a byte string and an array of integers.
type Bytes []byte

// Unit is the null value.
type Unit struct{}

func (v Bool) EncodeCBOR(e *Encoder) error    { return e.EncodeBool(bool(v)) }
func (v Uint8) EncodeCBOR(e *Encoder) error   { return e.EncodeUint8(uint8(v)) }
func (v Uint16) EncodeCBOR(e *Encoder) error  { return e.EncodeUint16(uint16(v)) }
func (v Uint32) EncodeCBOR(e *Encoder) error  { return e.EncodeUint32(uint32(v)) }
func (v Uint64) EncodeCBOR(e *Encoder) error  { return e.EncodeUint64(uint64(v)) }
func (v Int8) EncodeCBOR(e *Encoder) error    { return e.EncodeInt8(int8(v)) }
func (v Int16) EncodeCBOR(e *Encoder) error   { return e.EncodeInt16(int16(v)) }
func (v Int32) EncodeCBOR(e *Encoder) error   { return e.EncodeInt32(int32(v)) }
func (v Int64) EncodeCBOR(e *Encoder) error   { return e.EncodeInt64(int64(v)) }
func (v Float32) EncodeCBOR(e *Encoder) error { return e.EncodeFloat32(float32(v)) }
func (v Float64) EncodeCBOR(e *Encoder) error { return e.EncodeFloat64(float64(v)) }
func (v String) EncodeCBOR(e *Encoder) error  { return e.EncodeString(string(v)) }
func (v Rune) EncodeCBOR(e *Encoder) error    { return e.EncodeRune(rune(v)) }
func (v Bytes) EncodeCBOR(e *Encoder) error   { return e.EncodeBytes(v) }
func (Unit) EncodeCBOR(e *Encoder) error      { return e.EncodeUnit() }

func (v *Bool) DecodeCBOR(d *Decoder) error {
	b, err := d.DecodeBool()
	*v = Bool(b)
	return err
}

func (v *Uint8) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeUint8()
	*v = Uint8(n)
	return err
}

func (v *Uint16) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeUint16()
	*v = Uint16(n)
	return err
}

func (v *Uint32) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeUint32()
	*v = Uint32(n)
	return err
}

func (v *Uint64) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeUint64()
	*v = Uint64(n)
	return err
}

func (v *Int8) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeInt8()
	*v = Int8(n)
	return err
}

func (v *Int16) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeInt16()
	*v = Int16(n)
	return err
}

func (v *Int32) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeInt32()
	*v = Int32(n)
	return err
}

func (v *Int64) DecodeCBOR(d *Decoder) error {
	n, err := d.DecodeInt64()
	*v = Int64(n)
	return err
}

func (v *Float32) DecodeCBOR(d *Decoder) error {
	f, err := d.DecodeFloat32()
	*v = Float32(f)
	return err
}

func (v *Float64) DecodeCBOR(d *Decoder) error {
	f, err := d.DecodeFloat64()
	*v = Float64(f)
	return err
}

func (v *String) DecodeCBOR(d *Decoder) error {
	s, err := d.DecodeString()
	*v = String(s)
	return err
}

func (v *Rune) DecodeCBOR(d *Decoder) error {
	r, err := d.DecodeRune()
	*v = Rune(r)
	return err
}

func (v *Bytes) DecodeCBOR(d *Decoder) error {
	b, err := d.DecodeBytes()
	*v = b
	return err
}

func (*Unit) DecodeCBOR(d *Decoder) error { return d.DecodeUnit() }

// Tag is a tagged value. On encode Content must be Encodable; on decode it
// must be a Decodable that receives the payload.
type Tag struct {
	Number  uint64
	Content any
}

func (t Tag) EncodeCBOR(e *Encoder) error {
	c, ok := t.Content.(Encodable)
	if !ok {
		return newError(KindUnsupported, "tag content is not encodable")
	}
	return e.EncodeTag(t.Number, c)
}

func (t *Tag) DecodeCBOR(d *Decoder) error {
	c, ok := t.Content.(Decodable)
	if !ok {
		return newError(KindUnsupported, "tag content is not decodable")
	}
	return d.DecodeTag(func(n uint64, d *Decoder) error {
		t.Number = n
		return c.DecodeCBOR(d)
	})
}

// Option is an optional value encoded as null when absent.
type Option[T any] struct {
	Value T
	Valid bool
}

// Some returns a present Option.
func Some[T any](v T) Option[T] {
	return Option[T]{Value: v, Valid: true}
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return Option[T]{}
}

func (o Option[T]) EncodeCBOR(e *Encoder) error {
	if !o.Valid {
		return e.EncodeNone()
	}
	v, ok := any(o.Value).(Encodable)
	if !ok {
		return newError(KindUnsupported, "option value is not encodable")
	}
	return e.EncodeSome(v)
}

func (o *Option[T]) DecodeCBOR(d *Decoder) error {
	v, ok := any(&o.Value).(Decodable)
	if !ok {
		return newError(KindUnsupported, "option value is not decodable")
	}
	some, err := d.DecodeOption(v)
	if err != nil {
		return err
	}
	o.Valid = some
	if !some {
		var zero T
		o.Value = zero
	}
	return nil
}

// Seq is a homogeneous array.
type Seq[T any] []T

func (s Seq[T]) EncodeCBOR(e *Encoder) error {
	return EncodeSlice(e, s, func(e *Encoder, v T) error {
		ev, ok := any(v).(Encodable)
		if !ok {
			return newError(KindUnsupported, "sequence element is not encodable")
		}
		return e.Encode(ev)
	})
}

func (s *Seq[T]) DecodeCBOR(d *Decoder) error {
	out, err := DecodeSlice(d, func(d *Decoder) (T, error) {
		var v T
		dv, ok := any(&v).(Decodable)
		if !ok {
			return v, newError(KindUnsupported, "sequence element is not decodable")
		}
		err := dv.DecodeCBOR(d)
		return v, err
	})
	if err != nil {
		return err
	}
	*s = out
	return nil
}

var (
	_ Encodable = Int64(0)
	_ Decodable = (*Int64)(nil)
	_ Encodable = Tag{}
	_ Decodable = (*Tag)(nil)
	_ Encodable = Option[Int64]{}
	_ Decodable = (*Option[Int64])(nil)
	_ Encodable = Seq[String]{}
	_ Decodable = (*Seq[String])(nil)
)
