package wire

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies codec errors.
type ErrorKind uint8

const (
	// KindIO is a failure of the underlying stream, including a premature
	// end of input.
	KindIO ErrorKind = iota

	// KindTypeMismatch means the marker holds a different type than the
	// caller expected.
	KindTypeMismatch

	// KindUnassigned is an additional-info or simple value with no
	// assigned meaning.
	KindUnassigned

	// KindReserved is an additional-info or simple value reserved by the
	// format.
	KindReserved

	// KindRange is an integer that does not fit the target width.
	KindRange

	// KindInvalidUTF8 is a text string that is not valid UTF-8.
	KindInvalidUTF8

	// KindStructural covers shape errors: variant maps with more than one
	// pair, count mismatches, indefinite lengths and oversized lengths.
	KindStructural

	// KindInvalidMapKey is a non-string value encoded as a map key.
	KindInvalidMapKey

	// KindDepthExceeded means nesting went past the configured limit.
	KindDepthExceeded

	// KindUnsupported is a well-formed item this codec does not implement
	// (the undefined simple value).
	KindUnsupported
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindTypeMismatch:
		return "type mismatch"
	case KindUnassigned:
		return "unassigned"
	case KindReserved:
		return "reserved"
	case KindRange:
		return "out of range"
	case KindInvalidUTF8:
		return "invalid utf-8"
	case KindStructural:
		return "structural"
	case KindInvalidMapKey:
		return "invalid map key"
	case KindDepthExceeded:
		return "depth exceeded"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Kind sentinels, matched with errors.Is against any *Error of that kind.
var (
	ErrIO            = errors.New("cbor: i/o error")
	ErrTypeMismatch  = errors.New("cbor: type mismatch")
	ErrUnassigned    = errors.New("cbor: unassigned value")
	ErrReserved      = errors.New("cbor: reserved value")
	ErrRange         = errors.New("cbor: integer out of range")
	ErrInvalidUTF8   = errors.New("cbor: invalid utf-8 in text string")
	ErrStructural    = errors.New("cbor: malformed structure")
	ErrInvalidMapKey = errors.New("cbor: map keys must be text strings")
	ErrDepthExceeded = errors.New("cbor: maximum nesting depth exceeded")
	ErrUnsupported   = errors.New("cbor: unsupported item")
)

// Structural causes.
var (
	// ErrIndefiniteLength is returned for additional info 31.
	ErrIndefiniteLength = errors.New("indefinite-length items are not supported")

	// ErrLengthMismatch is returned when a composite ends with a different
	// number of items than it declared.
	ErrLengthMismatch = errors.New("declared and actual item count differ")

	// ErrVariantShape is returned when a variant is neither a text string
	// nor a map with exactly one pair.
	ErrVariantShape = errors.New("variant must be a text string or a single-pair map")

	// ErrLengthExceedsInput is returned when a declared length cannot be
	// backed by the remaining input.
	ErrLengthExceedsInput = errors.New("declared length exceeds remaining input")

	// ErrLengthLimit is returned when a declared length exceeds a
	// configured limit.
	ErrLengthLimit = errors.New("declared length exceeds configured limit")

	// ErrExtraneousData is returned by Unmarshal when bytes follow the
	// decoded value.
	ErrExtraneousData = errors.New("extraneous data after value")

	// ErrKeyOrder is returned when map access calls are made out of
	// key/value order.
	ErrKeyOrder = errors.New("map key and value must alternate")
)

// ErrDecoderFailed is returned by a Decoder after a previous call failed.
var ErrDecoderFailed = errors.New("cbor: decoder failed earlier; resuming is not supported")

var kindSentinels = [...]error{
	KindIO:            ErrIO,
	KindTypeMismatch:  ErrTypeMismatch,
	KindUnassigned:    ErrUnassigned,
	KindReserved:      ErrReserved,
	KindRange:         ErrRange,
	KindInvalidUTF8:   ErrInvalidUTF8,
	KindStructural:    ErrStructural,
	KindInvalidMapKey: ErrInvalidMapKey,
	KindDepthExceeded: ErrDepthExceeded,
	KindUnsupported:   ErrUnsupported,
}

// Error is the error type returned by the codec.
type Error struct {
	// Kind classifies the error.
	Kind ErrorKind

	// Offset is the stream offset of the read that failed, or -1 when
	// unknown (I/O and encode errors).
	Offset int64

	// Major and Additional describe the offending marker, when relevant.
	Major      Major
	Additional uint8
	hasMarker  bool

	// Expected and Got are set for type mismatches and invalid map keys.
	Expected Type
	Got      Type

	// Msg is extra detail.
	Msg string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("cbor: ")
	b.WriteString(e.Kind.String())
	switch e.Kind {
	case KindTypeMismatch:
		fmt.Fprintf(&b, ": expected %s, got %s", e.Expected, e.Got)
	case KindInvalidMapKey:
		fmt.Fprintf(&b, ": got %s", e.Got)
	}
	if e.hasMarker {
		fmt.Fprintf(&b, " (major %d, additional %d)", e.Major, e.Additional)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Offset >= 0 {
		fmt.Fprintf(&b, " at offset %d", e.Offset)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	if int(e.Kind) < len(kindSentinels) {
		return kindSentinels[e.Kind] == target
	}
	return false
}

// HasOffset reports whether the error carries a stream offset.
func (e *Error) HasOffset() bool {
	return e.Offset >= 0
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Offset: -1, Msg: msg}
}

func wrapError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Offset: -1, Err: err}
}

func markerError(kind ErrorKind, marker byte) *Error {
	return &Error{
		Kind:       kind,
		Offset:     -1,
		Major:      MajorOf(marker),
		Additional: AdditionalOf(marker),
		hasMarker:  true,
	}
}

func simpleError(kind ErrorKind, value uint8) *Error {
	return &Error{
		Kind:       kind,
		Offset:     -1,
		Major:      MajorSimple,
		Additional: value,
		hasMarker:  true,
	}
}

// mismatch reports that a visitor expecting one type received another.
func mismatch(expected, got Type) *Error {
	return &Error{Kind: KindTypeMismatch, Offset: -1, Expected: expected, Got: got}
}

func invalidMapKey(got Type) *Error {
	return &Error{Kind: KindInvalidMapKey, Offset: -1, Got: got}
}

func rangeError(format string, args ...any) *Error {
	return newError(KindRange, fmt.Sprintf(format, args...))
}

func structural(cause error) *Error {
	return wrapError(KindStructural, cause)
}

// KindOf returns the kind of a codec error and whether err is one.
func KindOf(err error) (ErrorKind, bool) {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind, true
	}
	return 0, false
}
