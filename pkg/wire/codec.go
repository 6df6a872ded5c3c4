package wire

import (
	"bytes"
	"fmt"
)

// Marshal encodes v to CBOR bytes with the default mode.
func Marshal(v Encodable) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes one value from data into v with the default mode.
// Trailing bytes are an error.
func Unmarshal(data []byte, v Decodable) error {
	return decMode.Unmarshal(data, v)
}

// Clone copies src into dst by encoding and decoding it.
func Clone(src Encodable, dst Decodable) error {
	data, err := Marshal(src)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	if err := Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode: %w", err)
	}
	return nil
}

// Equal reports whether a and b have the same encoding. Because encoding
// is canonical this compares values, not representations.
func Equal(a, b Encodable) bool {
	aData, err := Marshal(a)
	if err != nil {
		return false
	}
	bData, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(aData, bData)
}
