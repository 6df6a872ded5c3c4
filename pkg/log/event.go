package log

import (
	"strings"
	"time"
)

// MaxLogDataSize bounds the encoded bytes kept in a ValueEvent.
const MaxLogDataSize = 4096

// Event is one traced codec call: a value encoded or decoded, or the error
// that stopped it. CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the call finished (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the Encoder or Decoder instance (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction is encode or decode.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"4,keyasint"`

	// Source optionally names the stream, e.g. a file path.
	Source string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Value *ValueEvent     `cbor:"6,keyasint,omitempty"`
	Error *ErrorEventData `cbor:"7,keyasint,omitempty"`
}

// Direction indicates whether a value was written or read.
type Direction uint8

const (
	// DirectionDecode indicates a value read from a stream.
	DirectionDecode Direction = 0
	// DirectionEncode indicates a value written to a stream.
	DirectionEncode Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionDecode:
		return "DECODE"
	case DirectionEncode:
		return "ENCODE"
	default:
		return "UNKNOWN"
	}
}

// ParseDirection parses a direction name as printed by String,
// case-insensitively.
func ParseDirection(s string) (Direction, bool) {
	switch {
	case strings.EqualFold(s, "decode"):
		return DirectionDecode, true
	case strings.EqualFold(s, "encode"):
		return DirectionEncode, true
	default:
		return 0, false
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryValue indicates a complete top-level value.
	CategoryValue Category = 0
	// CategoryError indicates a failed call.
	CategoryError Category = 1
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryValue:
		return "VALUE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory parses a category name as printed by String,
// case-insensitively.
func ParseCategory(s string) (Category, bool) {
	switch {
	case strings.EqualFold(s, "value"):
		return CategoryValue, true
	case strings.EqualFold(s, "error"):
		return CategoryError, true
	default:
		return 0, false
	}
}

// ValueEvent describes one top-level value.
type ValueEvent struct {
	// Major is the major type of the value's first marker.
	Major uint8 `cbor:"1,keyasint"`

	// Offset is the stream position where the value starts.
	Offset int64 `cbor:"2,keyasint"`

	// Size is the encoded size in bytes.
	Size int64 `cbor:"3,keyasint"`

	// Data is the encoded value (may be truncated for large values).
	// Decoders do not record it.
	Data []byte `cbor:"4,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"5,keyasint,omitempty"`
}

// ErrorEventData describes a failed call.
type ErrorEventData struct {
	// Kind is the codec error kind, empty for foreign errors.
	Kind string `cbor:"1,keyasint,omitempty"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Offset is the stream offset of the failure, -1 when unknown.
	Offset int64 `cbor:"3,keyasint"`
}
