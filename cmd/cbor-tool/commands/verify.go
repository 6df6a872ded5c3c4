package commands

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/mash-protocol/cbor-go/pkg/value"
)

// RunVerify checks that the input is a well-formed CBOR sequence that this
// codec reads and writes back byte for byte. Well-formedness is checked
// first with fxamacker/cbor, so input that is valid CBOR but outside the
// supported subset is reported as such.
func RunVerify(env *Env, in *Input, w io.Writer) error {
	if err := noArgs("verify", in); err != nil {
		return err
	}
	if len(in.Data) == 0 {
		return errors.New("empty input: expected CBOR data")
	}

	if err := wellformed(in.Data); err != nil {
		return err
	}

	var reencoded bytes.Buffer
	enc := env.Enc.NewEncoder(&reencoded)
	count := 0
	err := eachValue(env.Dec.NewDecoder(bytes.NewReader(in.Data)), func(_ int64, v value.Value) error {
		count++
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("re-encode item %d: %w", count-1, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("well-formed but not supported: %w", err)
	}

	if !bytes.Equal(in.Data, reencoded.Bytes()) {
		return describeMismatch(in.Data, reencoded.Bytes())
	}
	_, err = fmt.Fprintf(w, "valid: %d items, %d bytes\n", count, len(in.Data))
	return err
}

// wellformed checks every item of a sequence.
func wellformed(data []byte) error {
	remaining := data
	for len(remaining) > 0 {
		var raw cbor.RawMessage
		rest, err := cbor.UnmarshalFirst(remaining, &raw)
		if err != nil {
			return fmt.Errorf("not well-formed at byte %d: %w", len(data)-len(remaining), err)
		}
		remaining = rest
	}
	return nil
}

func describeMismatch(original, reencoded []byte) error {
	offset := 0
	n := min(len(original), len(reencoded))
	for offset < n && original[offset] == reencoded[offset] {
		offset++
	}
	return fmt.Errorf("not canonical: first difference at byte %d (original %d bytes, re-encoded %d bytes)",
		offset, len(original), len(reencoded))
}
