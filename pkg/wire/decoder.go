package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/x448/float16"

	"github.com/mash-protocol/cbor-go/pkg/log"
)

// readChunk is the largest buffer allocated up front for a string whose
// length cannot be checked against the remaining input.
const readChunk = 64 * 1024

// Decoder reads CBOR items from a stream. Each call to Decode consumes
// exactly one top-level item, so concatenated items can be read with
// repeated calls until io.EOF.
//
// A Decoder is not safe for concurrent use. After a failed Decode the
// stream position is undefined and every later call fails.
type Decoder struct {
	cur  *Cursor
	mode DecMode

	// first is the lookahead marker, valid when hasFirst is set.
	first    byte
	hasFirst bool

	depth  int
	active bool
	err    error

	// topMarker is the first marker of the current top-level item.
	topMarker byte
	sawMarker bool

	session string
}

// NewDecoder returns a Decoder with the default mode reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// NewDecoderBytes returns a Decoder with the default mode reading from b.
func NewDecoderBytes(b []byte) *Decoder {
	return decMode.NewDecoder(bytes.NewReader(b))
}

func newDecoder(cur *Cursor, mode DecMode) *Decoder {
	d := &Decoder{cur: cur, mode: mode}
	if mode.logger != nil {
		d.session = uuid.NewString()
	}
	return d
}

// Cursor returns the decoder's byte source.
func (d *Decoder) Cursor() *Cursor { return d.cur }

// Offset returns the number of bytes of the stream consumed so far,
// not counting a peeked marker.
func (d *Decoder) Offset() int64 {
	off := d.cur.Offset()
	if d.hasFirst {
		off--
	}
	return off
}

// Release hands back the underlying byte source, with a peeked but
// unconsumed marker pushed back into it.
func (d *Decoder) Release() io.Reader {
	if d.hasFirst {
		// A single byte always fits the pushback buffer.
		_ = d.cur.Unread([]byte{d.first})
		d.hasFirst = false
	}
	return d.cur
}

// Decode decodes one top-level item into v. It returns an error wrapping
// io.EOF when the stream ends cleanly before the item starts.
//
// Called from inside a DecodeCBOR method, Decode simply delegates to v.
func (d *Decoder) Decode(v Decodable) error {
	if d.active {
		return v.DecodeCBOR(d)
	}
	if d.err != nil {
		return fmt.Errorf("%w: %w", ErrDecoderFailed, d.err)
	}

	start := d.Offset()
	d.active = true
	d.depth = 0
	d.sawMarker = d.hasFirst
	d.topMarker = d.first
	err := v.DecodeCBOR(d)
	d.active = false

	if err != nil {
		if errors.Is(err, io.EOF) && d.Offset() == start {
			return err
		}
		d.err = err
		d.trace(start, err)
		return err
	}
	d.trace(start, nil)
	return nil
}

func (d *Decoder) trace(start int64, err error) {
	if d.mode.logger == nil {
		return
	}
	event := log.Event{
		Timestamp: time.Now(),
		SessionID: d.session,
		Direction: log.DirectionDecode,
	}
	if err != nil {
		event.Category = log.CategoryError
		event.Error = &log.ErrorEventData{Message: err.Error(), Offset: -1}
		var cerr *Error
		if errors.As(err, &cerr) {
			event.Error.Kind = cerr.Kind.String()
			event.Error.Offset = cerr.Offset
		}
	} else {
		event.Category = log.CategoryValue
		event.Value = &log.ValueEvent{
			Major:  uint8(MajorOf(d.topMarker)),
			Offset: start,
			Size:   d.Offset() - start,
		}
	}
	d.mode.logger.Log(event)
}

// ioError wraps a stream error. io.EOF becomes io.ErrUnexpectedEOF unless
// nothing of the current top-level item has been read.
func (d *Decoder) ioError(err error, atItemStart bool) error {
	if err == io.EOF && !atItemStart {
		err = io.ErrUnexpectedEOF
	}
	return wrapError(KindIO, err)
}

// annotate attaches the offset of the failing item to codec errors that
// lack one. Nested items annotate first, so the innermost offset wins.
func annotate(err error, at int64) error {
	var cerr *Error
	if errors.As(err, &cerr) && cerr.Offset < 0 && cerr.Kind != KindIO {
		cerr.Offset = at
	}
	return err
}

// PeekMarker returns the next marker byte without consuming it.
func (d *Decoder) PeekMarker() (byte, error) {
	if d.hasFirst {
		return d.first, nil
	}
	atStart := !d.active || !d.sawMarker
	b, err := d.cur.ReadByte()
	if err != nil {
		return 0, d.ioError(err, atStart)
	}
	d.noteMarker(b)
	d.first = b
	d.hasFirst = true
	return b, nil
}

// ReadMarker consumes and returns the next marker byte.
func (d *Decoder) ReadMarker() (byte, error) {
	if d.hasFirst {
		d.hasFirst = false
		return d.first, nil
	}
	atStart := !d.active || !d.sawMarker
	b, err := d.cur.ReadByte()
	if err != nil {
		return 0, d.ioError(err, atStart)
	}
	d.noteMarker(b)
	return b, nil
}

// PeekMajor returns the major type of the next item without consuming it.
func (d *Decoder) PeekMajor() (Major, error) {
	m, err := d.PeekMarker()
	if err != nil {
		return 0, err
	}
	return MajorOf(m), nil
}

func (d *Decoder) noteMarker(b byte) {
	if !d.sawMarker {
		d.topMarker = b
		d.sawMarker = true
	}
}

// DecodeAny reads one item and drives v with it.
func (d *Decoder) DecodeAny(v Visitor) error {
	if !d.active {
		return d.Decode(DecodeFunc(func(d *Decoder) error { return d.DecodeAny(v) }))
	}
	at := d.Offset()
	m, err := d.ReadMarker()
	if err != nil {
		return err
	}
	return annotate(d.dispatch(m, v), at)
}

// Skip reads and discards one item.
func (d *Decoder) Skip() error {
	return d.DecodeAny(ignoreVisitor{})
}

func (d *Decoder) dispatch(m byte, v Visitor) error {
	switch MajorOf(m) {
	case MajorUint, MajorTag:
		n, width, err := d.readArg(m)
		if err != nil {
			return err
		}
		return visitUnsigned(v, n, width)
	case MajorNegInt:
		n, width, err := d.readArg(m)
		if err != nil {
			return err
		}
		return visitNegative(v, n, width)
	case MajorBytes:
		b, err := d.readPayload(m)
		if err != nil {
			return err
		}
		return v.VisitBytes(b)
	case MajorText:
		b, err := d.readPayload(m)
		if err != nil {
			return err
		}
		if !utf8.Valid(b) {
			return markerError(KindInvalidUTF8, m)
		}
		return v.VisitString(string(b))
	case MajorArray:
		return d.readArray(m, v)
	case MajorMap:
		return d.readMap(m, v)
	default:
		return d.readSimple(m, v)
	}
}

// readArg decodes the argument of a marker: an inline value or a following
// big-endian integer. width is the number of bytes that followed.
func (d *Decoder) readArg(m byte) (n uint64, width int, err error) {
	add := AdditionalOf(m)
	switch {
	case add <= addMaxInline:
		return uint64(add), 0, nil
	case add <= addUint64:
		width = 1 << (add - addUint8)
		var buf [8]byte
		if err := d.cur.ReadFull(buf[:width]); err != nil {
			return 0, 0, d.ioError(err, false)
		}
		switch width {
		case 1:
			n = uint64(buf[0])
		case 2:
			n = uint64(binary.BigEndian.Uint16(buf[:2]))
		case 4:
			n = uint64(binary.BigEndian.Uint32(buf[:4]))
		default:
			n = binary.BigEndian.Uint64(buf[:8])
		}
		return n, width, nil
	case add == addIndefinite:
		err := markerError(KindStructural, m)
		err.Err = ErrIndefiniteLength
		return 0, 0, err
	default:
		return 0, 0, markerError(KindUnassigned, m)
	}
}

func visitUnsigned(v Visitor, n uint64, width int) error {
	switch width {
	case 0, 1:
		return v.VisitUint8(uint8(n))
	case 2:
		return v.VisitUint16(uint16(n))
	case 4:
		return v.VisitUint32(uint32(n))
	default:
		return v.VisitUint64(n)
	}
}

// visitNegative delivers -1-n through the narrowest signed callback.
func visitNegative(v Visitor, n uint64, width int) error {
	switch {
	case n <= math.MaxInt8:
		return v.VisitInt8(-1 - int8(n))
	case n <= math.MaxInt16:
		return v.VisitInt16(-1 - int16(n))
	case n <= math.MaxInt32:
		return v.VisitInt32(-1 - int32(n))
	case n <= math.MaxInt64:
		return v.VisitInt64(-1 - int64(n))
	default:
		return rangeError("negative integer -1-%d (%d-byte argument) overflows int64", n, width)
	}
}

// readPayload reads the content of a byte or text string. The declared
// length is checked against the configured limit and the known remaining
// input before anything is allocated; when the remaining input is unknown
// the buffer grows as data arrives.
func (d *Decoder) readPayload(m byte) ([]byte, error) {
	n, _, err := d.readArg(m)
	if err != nil {
		return nil, err
	}
	if n > d.mode.maxString {
		err := markerError(KindStructural, m)
		err.Err = ErrLengthLimit
		err.Msg = fmt.Sprintf("string length %d > %d", n, d.mode.maxString)
		return nil, err
	}
	if rem, ok := d.cur.Remaining(); ok && n > uint64(rem) {
		err := markerError(KindStructural, m)
		err.Err = ErrLengthExceedsInput
		err.Msg = fmt.Sprintf("string length %d, %d bytes left", n, rem)
		return nil, err
	}

	size := int(n)
	if size <= readChunk {
		buf := make([]byte, size)
		if err := d.cur.ReadFull(buf); err != nil {
			return nil, d.ioError(err, false)
		}
		return buf, nil
	}

	buf := make([]byte, 0, readChunk)
	for len(buf) < size {
		have := len(buf)
		next := min(size, have+max(have, readChunk))
		buf = append(buf, make([]byte, next-have)...)
		if err := d.cur.ReadFull(buf[have:]); err != nil {
			return nil, d.ioError(err, false)
		}
	}
	return buf, nil
}

// checkCount validates a declared element count. Every item takes at least
// one byte, so a count of n items needs at least n*minBytes bytes of input.
func (d *Decoder) checkCount(m byte, n, limit, minBytes uint64) error {
	if n > limit {
		err := markerError(KindStructural, m)
		err.Err = ErrLengthLimit
		err.Msg = fmt.Sprintf("count %d > %d", n, limit)
		return err
	}
	if rem, ok := d.cur.Remaining(); ok && n > uint64(rem)/minBytes {
		err := markerError(KindStructural, m)
		err.Err = ErrLengthExceedsInput
		err.Msg = fmt.Sprintf("count %d, %d bytes left", n, rem)
		return err
	}
	return nil
}

func (d *Decoder) enter() error {
	d.depth++
	if d.depth > d.mode.maxNested {
		return &Error{
			Kind:   KindDepthExceeded,
			Offset: -1,
			Msg:    fmt.Sprintf("depth %d > %d", d.depth, d.mode.maxNested),
		}
	}
	return nil
}

func (d *Decoder) leave() {
	d.depth--
}

func (d *Decoder) readArray(m byte, v Visitor) error {
	n, _, err := d.readArg(m)
	if err != nil {
		return err
	}
	if err := d.checkCount(m, n, d.mode.maxArray, 1); err != nil {
		return err
	}
	defer d.leave()
	if err := d.enter(); err != nil {
		return err
	}
	s := &SeqAccess{d: d, declared: n, remaining: n}
	if err := v.VisitSeq(s); err != nil {
		return err
	}
	return s.end()
}

func (d *Decoder) readMap(m byte, v Visitor) error {
	n, _, err := d.readArg(m)
	if err != nil {
		return err
	}
	if err := d.checkCount(m, n, d.mode.maxMapPairs, 2); err != nil {
		return err
	}
	defer d.leave()
	if err := d.enter(); err != nil {
		return err
	}
	ma := &MapAccess{d: d, declared: n, remaining: n}
	if err := v.VisitMap(ma); err != nil {
		return err
	}
	return ma.end()
}

func (d *Decoder) readSimple(m byte, v Visitor) error {
	add := AdditionalOf(m)
	switch {
	case add <= addMaxInline:
		return visitSimple(add, v)
	case add == simpleExtended:
		b, err := d.cur.ReadByte()
		if err != nil {
			return d.ioError(err, false)
		}
		return visitSimple(b, v)
	case add == simpleFloat16:
		var buf [2]byte
		if err := d.cur.ReadFull(buf[:]); err != nil {
			return d.ioError(err, false)
		}
		return v.VisitFloat32(float16.Frombits(binary.BigEndian.Uint16(buf[:])).Float32())
	case add == simpleFloat32:
		var buf [4]byte
		if err := d.cur.ReadFull(buf[:]); err != nil {
			return d.ioError(err, false)
		}
		return v.VisitFloat32(math.Float32frombits(binary.BigEndian.Uint32(buf[:])))
	case add == simpleFloat64:
		var buf [8]byte
		if err := d.cur.ReadFull(buf[:]); err != nil {
			return d.ioError(err, false)
		}
		return v.VisitFloat64(math.Float64frombits(binary.BigEndian.Uint64(buf[:])))
	case add == addIndefinite:
		err := markerError(KindStructural, m)
		err.Err = ErrIndefiniteLength
		return err
	default:
		return markerError(KindUnassigned, m)
	}
}

// visitSimple handles simple values, inline or from the extension byte.
func visitSimple(val uint8, v Visitor) error {
	switch {
	case val < simpleFalse:
		return simpleError(KindUnassigned, val)
	case val == simpleFalse:
		return v.VisitBool(false)
	case val == simpleTrue:
		return v.VisitBool(true)
	case val == simpleNull:
		return v.VisitUnit()
	case val == simpleUndefined:
		err := simpleError(KindUnsupported, val)
		err.Msg = "undefined is not supported"
		return err
	case val < 32:
		return simpleError(KindReserved, val)
	default:
		return simpleError(KindUnassigned, val)
	}
}

// DecodeSeq decodes an array, handing its pull cursor to fn.
func (d *Decoder) DecodeSeq(fn func(*SeqAccess) error) error {
	return d.DecodeAny(seqVisitor{BaseVisitor{Expected: TypeArray}, fn})
}

// DecodeMap decodes a map, handing its pull cursor to fn.
func (d *Decoder) DecodeMap(fn func(*MapAccess) error) error {
	return d.DecodeAny(mapVisitor{BaseVisitor{Expected: TypeMap}, fn})
}

// DecodeStruct decodes a map with text keys, calling field once per pair.
// field must decode exactly one item from d, or call d.Skip for unknown
// names.
func (d *Decoder) DecodeStruct(field func(name string, d *Decoder) error) error {
	return d.DecodeMap(func(m *MapAccess) error {
		for {
			name, ok, err := m.NextStringKey()
			if err != nil || !ok {
				return err
			}
			err = m.Value(DecodeFunc(func(d *Decoder) error {
				return field(name, d)
			}))
			if err != nil {
				return err
			}
		}
	})
}

// DecodeVariant decodes a sum-type value. A text string is a unit case; a
// map with exactly one pair is a data case whose key names the case. fn
// receives the case name and an accessor for the payload.
func (d *Decoder) DecodeVariant(fn func(name string, va *VariantAccess) error) error {
	if !d.active {
		return d.Decode(DecodeFunc(func(d *Decoder) error { return d.DecodeVariant(fn) }))
	}
	m, err := d.PeekMarker()
	if err != nil {
		return err
	}
	at := d.Offset()
	switch MajorOf(m) {
	case MajorText:
		name, err := d.DecodeString()
		if err != nil {
			return err
		}
		return fn(name, &VariantAccess{d: d, unit: true})
	case MajorMap:
		d.hasFirst = false
		n, _, err := d.readArg(m)
		if err != nil {
			return annotate(err, at)
		}
		if n != 1 {
			err := markerError(KindStructural, m)
			err.Err = ErrVariantShape
			err.Msg = fmt.Sprintf("variant map has %d pairs", n)
			return annotate(err, at)
		}
		defer d.leave()
		if err := d.enter(); err != nil {
			return annotate(err, at)
		}
		name, err := d.DecodeString()
		if err != nil {
			return err
		}
		return fn(name, &VariantAccess{d: d})
	default:
		d.hasFirst = false
		err := markerError(KindStructural, m)
		err.Err = ErrVariantShape
		return annotate(err, at)
	}
}

// DecodeTagNumber consumes a tag marker and returns the tag number. The
// tagged payload is the next item.
func (d *Decoder) DecodeTagNumber() (uint64, error) {
	if !d.active {
		var n uint64
		err := d.Decode(DecodeFunc(func(d *Decoder) (err error) {
			n, err = d.DecodeTagNumber()
			return err
		}))
		return n, err
	}
	m, err := d.PeekMarker()
	if err != nil {
		return 0, err
	}
	at := d.Offset()
	if MajorOf(m) != MajorTag {
		d.hasFirst = false
		return 0, annotate(mismatch(TypeTag, typeOfMajor(MajorOf(m))), at)
	}
	d.hasFirst = false
	n, _, err := d.readArg(m)
	if err != nil {
		return 0, annotate(err, at)
	}
	return n, nil
}

// DecodeTag decodes a tag number and hands the tagged payload to fn. The
// payload counts as one level of nesting.
func (d *Decoder) DecodeTag(fn func(tag uint64, d *Decoder) error) error {
	if !d.active {
		return d.Decode(DecodeFunc(func(d *Decoder) error { return d.DecodeTag(fn) }))
	}
	at := d.Offset()
	n, err := d.DecodeTagNumber()
	if err != nil {
		return err
	}
	defer d.leave()
	if err := d.enter(); err != nil {
		return annotate(err, at)
	}
	return fn(n, d)
}

// DecodeOption decodes an optional value: null yields false, anything else
// is decoded into v.
func (d *Decoder) DecodeOption(v Decodable) (bool, error) {
	if !d.active {
		var some bool
		err := d.Decode(DecodeFunc(func(d *Decoder) (err error) {
			some, err = d.DecodeOption(v)
			return err
		}))
		return some, err
	}
	m, err := d.PeekMarker()
	if err != nil {
		return false, err
	}
	if m == Marker(MajorSimple, simpleNull) {
		d.hasFirst = false
		return false, nil
	}
	if err := v.DecodeCBOR(d); err != nil {
		return false, err
	}
	return true, nil
}

// DecodeSlice decodes an array, building each element with elem.
func DecodeSlice[T any](d *Decoder, elem func(*Decoder) (T, error)) ([]T, error) {
	var out []T
	err := d.DecodeSeq(func(s *SeqAccess) error {
		out = make([]T, 0, s.SizeHint())
		for {
			ok, err := s.Next(DecodeFunc(func(d *Decoder) error {
				v, err := elem(d)
				if err != nil {
					return err
				}
				out = append(out, v)
				return nil
			}))
			if err != nil || !ok {
				return err
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
