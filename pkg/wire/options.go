package wire

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/mash-protocol/cbor-go/pkg/log"
)

// Default limits, matching the defaults of common CBOR decoders.
const (
	DefaultMaxNestedLevels  = 32
	DefaultMaxArrayElements = 131072
	DefaultMaxMapPairs      = 131072
	DefaultMaxStringLen     = 16 * 1024 * 1024

	minNestedLevels = 4
	maxNestedLevels = 65535
)

// DecOptions configures a DecMode. Zero fields take the defaults.
type DecOptions struct {
	// MaxNestedLevels bounds array/map/variant nesting.
	MaxNestedLevels int

	// MaxArrayElements bounds the declared element count of an array.
	MaxArrayElements uint64

	// MaxMapPairs bounds the declared pair count of a map.
	MaxMapPairs uint64

	// MaxStringLen bounds the declared length of text and byte strings.
	MaxStringLen uint64

	// Logger receives one trace event per top-level Decode call.
	// Nil disables tracing.
	Logger log.Logger
}

// EncOptions configures an EncMode. Zero fields take the defaults.
type EncOptions struct {
	// MaxNestedLevels bounds array/map/variant nesting.
	MaxNestedLevels int

	// Logger receives one trace event per top-level Encode call.
	// Nil disables tracing.
	Logger log.Logger
}

// DecMode is an immutable decoder configuration.
type DecMode struct {
	maxNested   int
	maxArray    uint64
	maxMapPairs uint64
	maxString   uint64
	logger      log.Logger
}

// EncMode is an immutable encoder configuration.
type EncMode struct {
	maxNested int
	logger    log.Logger
}

// DecMode validates the options and returns a DecMode.
func (o DecOptions) DecMode() (DecMode, error) {
	m := DecMode{
		maxNested:   o.MaxNestedLevels,
		maxArray:    o.MaxArrayElements,
		maxMapPairs: o.MaxMapPairs,
		maxString:   o.MaxStringLen,
		logger:      o.Logger,
	}
	if m.maxNested == 0 {
		m.maxNested = DefaultMaxNestedLevels
	}
	if m.maxNested < minNestedLevels || m.maxNested > maxNestedLevels {
		return DecMode{}, fmt.Errorf("cbor: MaxNestedLevels %d out of range [%d, %d]",
			m.maxNested, minNestedLevels, maxNestedLevels)
	}
	if m.maxArray == 0 {
		m.maxArray = DefaultMaxArrayElements
	}
	if m.maxMapPairs == 0 {
		m.maxMapPairs = DefaultMaxMapPairs
	}
	if m.maxString == 0 {
		m.maxString = DefaultMaxStringLen
	}
	if m.maxString > uint64(math.MaxInt) {
		return DecMode{}, errors.New("cbor: MaxStringLen exceeds platform int")
	}
	return m, nil
}

// EncMode validates the options and returns an EncMode.
func (o EncOptions) EncMode() (EncMode, error) {
	m := EncMode{maxNested: o.MaxNestedLevels, logger: o.Logger}
	if m.maxNested == 0 {
		m.maxNested = DefaultMaxNestedLevels
	}
	if m.maxNested < minNestedLevels || m.maxNested > maxNestedLevels {
		return EncMode{}, fmt.Errorf("cbor: MaxNestedLevels %d out of range [%d, %d]",
			m.maxNested, minNestedLevels, maxNestedLevels)
	}
	return m, nil
}

// DecOptions returns the options this mode was built from, with defaults
// filled in.
func (m DecMode) DecOptions() DecOptions {
	return DecOptions{
		MaxNestedLevels:  m.maxNested,
		MaxArrayElements: m.maxArray,
		MaxMapPairs:      m.maxMapPairs,
		MaxStringLen:     m.maxString,
		Logger:           m.logger,
	}
}

// NewDecoder returns a Decoder reading from r with this mode.
func (m DecMode) NewDecoder(r io.Reader) *Decoder {
	return newDecoder(NewCursor(r), m)
}

// Unmarshal decodes a single value from data into v. Bytes left after the
// value are an error.
func (m DecMode) Unmarshal(data []byte, v Decodable) error {
	d := m.NewDecoder(bytes.NewReader(data))
	if err := d.Decode(v); err != nil {
		return err
	}
	if d.cur.Offset() != int64(len(data)) {
		return &Error{Kind: KindStructural, Offset: d.cur.Offset(), Err: ErrExtraneousData}
	}
	return nil
}

// NewEncoder returns an Encoder writing to w with this mode.
func (m EncMode) NewEncoder(w io.Writer) *Encoder {
	return newEncoder(w, m)
}

// Marshal encodes v and returns the bytes.
func (m EncMode) Marshal(v Encodable) ([]byte, error) {
	var buf bytes.Buffer
	if err := m.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encMode and decMode are the package defaults.
var (
	encMode EncMode
	decMode DecMode
)

func init() {
	var err error

	encMode, err = EncOptions{}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decMode, err = DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}
