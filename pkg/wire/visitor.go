package wire

// Decodable is implemented by types that build themselves from a Decoder.
// DecodeCBOR must consume exactly one item.
type Decodable interface {
	DecodeCBOR(d *Decoder) error
}

// Encodable is implemented by types that drive an Encoder. EncodeCBOR must
// produce exactly one item.
type Encodable interface {
	EncodeCBOR(e *Encoder) error
}

// DecodeFunc adapts a function to Decodable.
type DecodeFunc func(d *Decoder) error

// DecodeCBOR calls f(d).
func (f DecodeFunc) DecodeCBOR(d *Decoder) error { return f(d) }

// EncodeFunc adapts a function to Encodable.
type EncodeFunc func(e *Encoder) error

// EncodeCBOR calls f(e).
func (f EncodeFunc) EncodeCBOR(e *Encoder) error { return f(e) }

// Visitor receives exactly one callback per decoded item.
//
// Integers arrive through the narrowest callback that holds the decoded
// value: inline and one-byte unsigned values as VisitUint8, two-byte as
// VisitUint16, and so on. Negative integers are promoted to the next wider
// signed callback when the narrower one cannot hold them.
//
// Tag numbers (major type 6) arrive as unsigned integers; the tagged
// payload is the next item.
type Visitor interface {
	VisitBool(v bool) error
	VisitUint8(v uint8) error
	VisitUint16(v uint16) error
	VisitUint32(v uint32) error
	VisitUint64(v uint64) error
	VisitInt8(v int8) error
	VisitInt16(v int16) error
	VisitInt32(v int32) error
	VisitInt64(v int64) error
	VisitFloat32(v float32) error
	VisitFloat64(v float64) error
	VisitString(v string) error
	VisitBytes(v []byte) error
	VisitUnit() error
	VisitSeq(s *SeqAccess) error
	VisitMap(m *MapAccess) error
}

// BaseVisitor rejects every callback with a type mismatch naming Expected.
// Embed it and override the callbacks a visitor accepts.
type BaseVisitor struct {
	Expected Type
}

func (b BaseVisitor) VisitBool(bool) error       { return mismatch(b.Expected, TypeBool) }
func (b BaseVisitor) VisitUint8(uint8) error     { return mismatch(b.Expected, TypeUint8) }
func (b BaseVisitor) VisitUint16(uint16) error   { return mismatch(b.Expected, TypeUint16) }
func (b BaseVisitor) VisitUint32(uint32) error   { return mismatch(b.Expected, TypeUint32) }
func (b BaseVisitor) VisitUint64(uint64) error   { return mismatch(b.Expected, TypeUint64) }
func (b BaseVisitor) VisitInt8(int8) error       { return mismatch(b.Expected, TypeInt8) }
func (b BaseVisitor) VisitInt16(int16) error     { return mismatch(b.Expected, TypeInt16) }
func (b BaseVisitor) VisitInt32(int32) error     { return mismatch(b.Expected, TypeInt32) }
func (b BaseVisitor) VisitInt64(int64) error     { return mismatch(b.Expected, TypeInt64) }
func (b BaseVisitor) VisitFloat32(float32) error { return mismatch(b.Expected, TypeFloat32) }
func (b BaseVisitor) VisitFloat64(float64) error { return mismatch(b.Expected, TypeFloat64) }
func (b BaseVisitor) VisitString(string) error   { return mismatch(b.Expected, TypeText) }
func (b BaseVisitor) VisitBytes([]byte) error    { return mismatch(b.Expected, TypeBytes) }
func (b BaseVisitor) VisitUnit() error           { return mismatch(b.Expected, TypeNull) }
func (b BaseVisitor) VisitSeq(*SeqAccess) error  { return mismatch(b.Expected, TypeArray) }
func (b BaseVisitor) VisitMap(*MapAccess) error  { return mismatch(b.Expected, TypeMap) }

var _ Visitor = BaseVisitor{}

// ignoreVisitor accepts and discards any item.
type ignoreVisitor struct{}

func (ignoreVisitor) VisitBool(bool) error       { return nil }
func (ignoreVisitor) VisitUint8(uint8) error     { return nil }
func (ignoreVisitor) VisitUint16(uint16) error   { return nil }
func (ignoreVisitor) VisitUint32(uint32) error   { return nil }
func (ignoreVisitor) VisitUint64(uint64) error   { return nil }
func (ignoreVisitor) VisitInt8(int8) error       { return nil }
func (ignoreVisitor) VisitInt16(int16) error     { return nil }
func (ignoreVisitor) VisitInt32(int32) error     { return nil }
func (ignoreVisitor) VisitInt64(int64) error     { return nil }
func (ignoreVisitor) VisitFloat32(float32) error { return nil }
func (ignoreVisitor) VisitFloat64(float64) error { return nil }
func (ignoreVisitor) VisitString(string) error   { return nil }
func (ignoreVisitor) VisitBytes([]byte) error    { return nil }
func (ignoreVisitor) VisitUnit() error           { return nil }

func (v ignoreVisitor) VisitSeq(s *SeqAccess) error {
	for {
		ok, err := s.NextAny(v)
		if err != nil || !ok {
			return err
		}
	}
}

func (v ignoreVisitor) VisitMap(m *MapAccess) error {
	for {
		ok, err := m.NextKeyAny(v)
		if err != nil || !ok {
			return err
		}
		if err := m.ValueAny(v); err != nil {
			return err
		}
	}
}

// seqVisitor hands an array to fn.
type seqVisitor struct {
	BaseVisitor
	fn func(*SeqAccess) error
}

func (v seqVisitor) VisitSeq(s *SeqAccess) error { return v.fn(s) }

// mapVisitor hands a map to fn.
type mapVisitor struct {
	BaseVisitor
	fn func(*MapAccess) error
}

func (v mapVisitor) VisitMap(m *MapAccess) error { return v.fn(m) }
