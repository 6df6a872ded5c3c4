package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/mash-protocol/cbor-go/pkg/log"
)

// encodeContext selects how the next item is written. It is fixed when an
// Encoder is created; nested items get a fresh child Encoder.
type encodeContext struct {
	// key restricts the item to a text string (map keys).
	key bool
	// byteString writes each EncodeUint8 as a raw byte of an enclosing
	// byte string.
	byteString bool
	// skipKey omits field names of a struct, leaving positional values.
	skipKey bool
}

// encodeSink is the output shared by an Encoder and all its children.
type encodeSink struct {
	w       io.Writer
	buf     [9]byte
	written int64

	capture   []byte
	capturing bool
	truncated bool
}

func (s *encodeSink) write(p []byte) error {
	n, err := s.w.Write(p)
	s.written += int64(n)
	if s.capturing && n > 0 {
		keep := min(n, log.MaxLogDataSize-len(s.capture))
		if keep < n {
			s.truncated = true
		}
		s.capture = append(s.capture, p[:keep]...)
	}
	if err != nil {
		return wrapError(KindIO, err)
	}
	if n < len(p) {
		return wrapError(KindIO, io.ErrShortWrite)
	}
	return nil
}

// writeHead writes a marker and its argument in the narrowest form.
func (s *encodeSink) writeHead(major Major, n uint64) error {
	var size int
	switch {
	case n <= addMaxInline:
		s.buf[0] = Marker(major, uint8(n))
		size = 1
	case n <= math.MaxUint8:
		s.buf[0] = Marker(major, addUint8)
		s.buf[1] = uint8(n)
		size = 2
	case n <= math.MaxUint16:
		s.buf[0] = Marker(major, addUint16)
		binary.BigEndian.PutUint16(s.buf[1:], uint16(n))
		size = 3
	case n <= math.MaxUint32:
		s.buf[0] = Marker(major, addUint32)
		binary.BigEndian.PutUint32(s.buf[1:], uint32(n))
		size = 5
	default:
		s.buf[0] = Marker(major, addUint64)
		binary.BigEndian.PutUint64(s.buf[1:], n)
		size = 9
	}
	return s.write(s.buf[:size])
}

func (s *encodeSink) writeText(str string) error {
	if err := s.writeHead(MajorText, uint64(len(str))); err != nil {
		return err
	}
	return s.write([]byte(str))
}

// Encoder writes CBOR items to a stream, always in canonical (shortest)
// form. Each call to Encode writes exactly one top-level item.
//
// An Encoder is not safe for concurrent use.
type Encoder struct {
	sink *encodeSink
	mode EncMode
	ctx  encodeContext

	depth  int
	items  int
	active bool

	session string
}

// NewEncoder returns an Encoder with the default mode writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

func newEncoder(w io.Writer, mode EncMode) *Encoder {
	e := &Encoder{sink: &encodeSink{w: w}, mode: mode}
	if mode.logger != nil {
		e.session = uuid.NewString()
	}
	return e
}

// BytesWritten returns the number of bytes written so far.
func (e *Encoder) BytesWritten() int64 {
	return e.sink.written
}

// Encode writes v as one top-level item. Called from inside an EncodeCBOR
// method, Encode simply delegates to v.
func (e *Encoder) Encode(v Encodable) error {
	if e.active {
		return v.EncodeCBOR(e)
	}

	start := e.sink.written
	e.active = true
	e.items = 0
	e.sink.capture = e.sink.capture[:0]
	e.sink.truncated = false
	e.sink.capturing = e.mode.logger != nil

	err := v.EncodeCBOR(e)
	if err == nil && e.items != 1 {
		err = countError("value", 1, e.items)
	}

	e.active = false
	e.sink.capturing = false
	e.trace(start, err)
	return err
}

// EncodeAll writes each value as its own top-level item.
func (e *Encoder) EncodeAll(vs ...Encodable) error {
	for _, v := range vs {
		if err := e.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) trace(start int64, err error) {
	if e.mode.logger == nil {
		return
	}
	event := log.Event{
		Timestamp: time.Now(),
		SessionID: e.session,
		Direction: log.DirectionEncode,
	}
	if err != nil {
		event.Category = log.CategoryError
		event.Error = &log.ErrorEventData{Message: err.Error(), Offset: -1}
		var cerr *Error
		if errors.As(err, &cerr) {
			event.Error.Kind = cerr.Kind.String()
		}
	} else {
		event.Category = log.CategoryValue
		var major uint8
		if len(e.sink.capture) > 0 {
			major = uint8(MajorOf(e.sink.capture[0]))
		}
		event.Value = &log.ValueEvent{
			Major:     major,
			Offset:    start,
			Size:      e.sink.written - start,
			Data:      append([]byte(nil), e.sink.capture...),
			Truncated: e.sink.truncated,
		}
	}
	e.mode.logger.Log(event)
}

func countError(what string, want, got int) *Error {
	err := structural(ErrLengthMismatch)
	err.Msg = fmt.Sprintf("%s declared %d items, wrote %d", what, want, got)
	return err
}

// item runs write as one item of type t, checking the context allows it.
func (e *Encoder) item(t Type, write func() error) error {
	if !e.active {
		return e.Encode(EncodeFunc(func(e *Encoder) error { return e.item(t, write) }))
	}
	switch {
	case e.ctx.key && t != TypeText:
		return invalidMapKey(t)
	case e.ctx.byteString:
		return mismatch(TypeUint8, t)
	}
	e.items++
	return write()
}

func (e *Encoder) child(ctx encodeContext) (*Encoder, error) {
	if e.depth+1 > e.mode.maxNested {
		return nil, newError(KindDepthExceeded, fmt.Sprintf("depth %d > %d", e.depth+1, e.mode.maxNested))
	}
	return &Encoder{
		sink:    e.sink,
		mode:    e.mode,
		ctx:     ctx,
		depth:   e.depth + 1,
		active:  true,
		session: e.session,
	}, nil
}

// single encodes v with a fresh child and checks it wrote one item.
func (e *Encoder) single(ctx encodeContext, what string, v Encodable) error {
	c, err := e.child(ctx)
	if err != nil {
		return err
	}
	if err := v.EncodeCBOR(c); err != nil {
		return err
	}
	if c.items != 1 {
		return countError(what, 1, c.items)
	}
	return nil
}

// EncodeUnit writes null.
func (e *Encoder) EncodeUnit() error {
	return e.item(TypeNull, func() error {
		return e.sink.write([]byte{Marker(MajorSimple, simpleNull)})
	})
}

// EncodeNone writes an absent optional value (null).
func (e *Encoder) EncodeNone() error {
	return e.item(TypeOption, func() error {
		return e.sink.write([]byte{Marker(MajorSimple, simpleNull)})
	})
}

// EncodeSome writes a present optional value. Presence is implicit: the
// value is written as is.
func (e *Encoder) EncodeSome(v Encodable) error {
	return e.Encode(v)
}

// EncodeBool writes true or false.
func (e *Encoder) EncodeBool(b bool) error {
	return e.item(TypeBool, func() error {
		m := Marker(MajorSimple, simpleFalse)
		if b {
			m = Marker(MajorSimple, simpleTrue)
		}
		return e.sink.write([]byte{m})
	})
}

func (e *Encoder) encodeUint(t Type, n uint64) error {
	return e.item(t, func() error { return e.sink.writeHead(MajorUint, n) })
}

// EncodeUint8 writes n as an unsigned integer, or as a raw byte when
// called while writing a byte sequence.
func (e *Encoder) EncodeUint8(n uint8) error {
	if e.ctx.byteString {
		e.items++
		return e.sink.write([]byte{n})
	}
	return e.encodeUint(TypeUint8, uint64(n))
}

func (e *Encoder) EncodeUint16(n uint16) error { return e.encodeUint(TypeUint16, uint64(n)) }
func (e *Encoder) EncodeUint32(n uint32) error { return e.encodeUint(TypeUint32, uint64(n)) }
func (e *Encoder) EncodeUint64(n uint64) error { return e.encodeUint(TypeUint64, n) }
func (e *Encoder) EncodeUint(n uint) error     { return e.encodeUint(TypeUint, uint64(n)) }

func (e *Encoder) encodeInt(t Type, n int64) error {
	return e.item(t, func() error {
		if n >= 0 {
			return e.sink.writeHead(MajorUint, uint64(n))
		}
		return e.sink.writeHead(MajorNegInt, uint64(-1-n))
	})
}

func (e *Encoder) EncodeInt8(n int8) error   { return e.encodeInt(TypeInt8, int64(n)) }
func (e *Encoder) EncodeInt16(n int16) error { return e.encodeInt(TypeInt16, int64(n)) }
func (e *Encoder) EncodeInt32(n int32) error { return e.encodeInt(TypeInt32, int64(n)) }
func (e *Encoder) EncodeInt64(n int64) error { return e.encodeInt(TypeInt64, n) }
func (e *Encoder) EncodeInt(n int) error     { return e.encodeInt(TypeInt, int64(n)) }

// EncodeFloat32 writes a single precision float. Floats are never narrowed.
func (e *Encoder) EncodeFloat32(f float32) error {
	return e.item(TypeFloat32, func() error {
		var b [5]byte
		b[0] = Marker(MajorSimple, simpleFloat32)
		binary.BigEndian.PutUint32(b[1:], math.Float32bits(f))
		return e.sink.write(b[:])
	})
}

// EncodeFloat64 writes a double precision float.
func (e *Encoder) EncodeFloat64(f float64) error {
	return e.item(TypeFloat64, func() error {
		var b [9]byte
		b[0] = Marker(MajorSimple, simpleFloat64)
		binary.BigEndian.PutUint64(b[1:], math.Float64bits(f))
		return e.sink.write(b[:])
	})
}

// EncodeString writes a text string.
func (e *Encoder) EncodeString(s string) error {
	return e.item(TypeText, func() error { return e.sink.writeText(s) })
}

// EncodeRune writes a character as a one-character text string.
func (e *Encoder) EncodeRune(r rune) error {
	if !utf8.ValidRune(r) {
		return newError(KindInvalidUTF8, fmt.Sprintf("invalid rune %U", r))
	}
	return e.EncodeString(string(r))
}

// EncodeBytes writes a byte string.
func (e *Encoder) EncodeBytes(b []byte) error {
	return e.item(TypeBytes, func() error {
		if err := e.sink.writeHead(MajorBytes, uint64(len(b))); err != nil {
			return err
		}
		return e.sink.write(b)
	})
}

// EncodeSeq writes an array of n elements. fn must write exactly n items
// to the child Encoder it receives.
func (e *Encoder) EncodeSeq(n int, fn func(*Encoder) error) error {
	return e.item(TypeArray, func() error { return e.seq(n, encodeContext{}, fn) })
}

func (e *Encoder) seq(n int, ctx encodeContext, fn func(*Encoder) error) error {
	if err := e.sink.writeHead(MajorArray, uint64(n)); err != nil {
		return err
	}
	c, err := e.child(ctx)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if c.items != n {
		return countError("array", n, c.items)
	}
	return nil
}

// EncodeByteSeq writes a byte string of n bytes, each supplied by fn
// through EncodeUint8 on the child Encoder.
func (e *Encoder) EncodeByteSeq(n int, fn func(*Encoder) error) error {
	return e.item(TypeBytes, func() error {
		if err := e.sink.writeHead(MajorBytes, uint64(n)); err != nil {
			return err
		}
		c, err := e.child(encodeContext{byteString: true})
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}
		if c.items != n {
			return countError("byte string", n, c.items)
		}
		return nil
	})
}

// MapEncoder writes the pairs of a map.
type MapEncoder struct {
	e     *Encoder
	pairs int
}

// Entry writes one pair. The key must encode as a text string.
func (m *MapEncoder) Entry(key, value Encodable) error {
	if err := m.e.single(encodeContext{key: true}, "map key", key); err != nil {
		return err
	}
	if err := m.e.single(encodeContext{}, "map value", value); err != nil {
		return err
	}
	m.pairs++
	return nil
}

// StringEntry writes one pair with a text key.
func (m *MapEncoder) StringEntry(key string, value Encodable) error {
	return m.Entry(String(key), value)
}

// EncodeMap writes a map of n pairs. fn must write exactly n entries.
func (e *Encoder) EncodeMap(n int, fn func(*MapEncoder) error) error {
	return e.item(TypeMap, func() error {
		if err := e.sink.writeHead(MajorMap, uint64(n)); err != nil {
			return err
		}
		m := &MapEncoder{e: e}
		if err := fn(m); err != nil {
			return err
		}
		if m.pairs != n {
			return countError("map", n, m.pairs)
		}
		return nil
	})
}

// StructEncoder writes the fields of a record.
type StructEncoder struct {
	e      *Encoder
	fields int
}

// Field writes one named field. Inside a struct variant only the value is
// written.
func (s *StructEncoder) Field(name string, value Encodable) error {
	if !s.e.ctx.skipKey {
		if err := s.e.sink.writeText(name); err != nil {
			return err
		}
	}
	if err := s.e.single(encodeContext{}, "field "+name, value); err != nil {
		return err
	}
	s.fields++
	return nil
}

// EncodeStruct writes a record as a map of n text-keyed fields.
func (e *Encoder) EncodeStruct(n int, fn func(*StructEncoder) error) error {
	return e.item(TypeMap, func() error {
		if err := e.sink.writeHead(MajorMap, uint64(n)); err != nil {
			return err
		}
		return e.fields(n, encodeContext{}, fn)
	})
}

func (e *Encoder) fields(n int, ctx encodeContext, fn func(*StructEncoder) error) error {
	c, err := e.child(ctx)
	if err != nil {
		return err
	}
	s := &StructEncoder{e: c}
	if err := fn(s); err != nil {
		return err
	}
	if s.fields != n {
		return countError("struct", n, s.fields)
	}
	return nil
}

// EncodeUnitVariant writes a case without data as its name.
func (e *Encoder) EncodeUnitVariant(variant string) error {
	return e.EncodeString(variant)
}

// variant writes the single-pair map head and the case name.
func (e *Encoder) variant(name string, payload func() error) error {
	return e.item(TypeVariant, func() error {
		if err := e.sink.writeHead(MajorMap, 1); err != nil {
			return err
		}
		if err := e.sink.writeText(name); err != nil {
			return err
		}
		return payload()
	})
}

// EncodeNewtypeVariant writes a single-field case as {name: [v]}.
func (e *Encoder) EncodeNewtypeVariant(variant string, v Encodable) error {
	return e.variant(variant, func() error {
		return e.seq(1, encodeContext{}, func(c *Encoder) error { return c.Encode(v) })
	})
}

// EncodeTupleVariant writes a positional case as {name: [fields...]}.
func (e *Encoder) EncodeTupleVariant(variant string, n int, fn func(*Encoder) error) error {
	return e.variant(variant, func() error {
		return e.seq(n, encodeContext{}, fn)
	})
}

// EncodeStructVariant writes a named-field case as {name: [values...]},
// field names omitted.
func (e *Encoder) EncodeStructVariant(variant string, n int, fn func(*StructEncoder) error) error {
	return e.variant(variant, func() error {
		if err := e.sink.writeHead(MajorArray, uint64(n)); err != nil {
			return err
		}
		return e.fields(n, encodeContext{skipKey: true}, fn)
	})
}

// EncodeTag writes a tag number followed by its payload.
func (e *Encoder) EncodeTag(tag uint64, payload Encodable) error {
	return e.item(TypeTag, func() error {
		if err := e.sink.writeHead(MajorTag, tag); err != nil {
			return err
		}
		return e.single(encodeContext{}, "tag payload", payload)
	})
}

// EncodeSlice writes items as an array, each through elem.
func EncodeSlice[T any](e *Encoder, items []T, elem func(*Encoder, T) error) error {
	return e.EncodeSeq(len(items), func(c *Encoder) error {
		for _, it := range items {
			if err := elem(c, it); err != nil {
				return err
			}
		}
		return nil
	})
}
